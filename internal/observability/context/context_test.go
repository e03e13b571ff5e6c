package context

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContextValues(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, RequestIDFromContext(ctx))
	assert.Empty(t, CompanyIDFromContext(ctx))

	ctx = WithRequestID(ctx, " req-1 ")
	ctx = WithCompanyID(ctx, "company-9")
	ctx = WithActor(ctx, "user", "u-1")

	assert.Equal(t, "req-1", RequestIDFromContext(ctx))
	assert.Equal(t, "company-9", CompanyIDFromContext(ctx))
	typ, id := ActorFromContext(ctx)
	assert.Equal(t, "user", typ)
	assert.Equal(t, "u-1", id)
}

func TestBlankValuesAreIgnored(t *testing.T) {
	ctx := WithCompanyID(context.Background(), "company-9")
	ctx = WithCompanyID(ctx, "   ")
	assert.Equal(t, "company-9", CompanyIDFromContext(ctx))
}

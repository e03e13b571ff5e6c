package server

import (
	"strings"

	"github.com/gin-gonic/gin"
	obscontext "github.com/mustafashaheen1/legacy-prime-workflow-suite-sub005/internal/observability/context"
)

const contextCompanyIDKey = "company_id"

// scopeCompany tags the request with the company it acts for so logs and spans carry it.
func scopeCompany(c *gin.Context, companyID string) {
	companyID = strings.TrimSpace(companyID)
	if companyID == "" {
		return
	}
	c.Set(contextCompanyIDKey, companyID)
	c.Request = c.Request.WithContext(obscontext.WithCompanyID(c.Request.Context(), companyID))
}

// scopeActor records who submitted the request when the client says so.
func scopeActor(c *gin.Context, uploadedBy string) {
	uploadedBy = strings.TrimSpace(uploadedBy)
	if uploadedBy == "" {
		return
	}
	c.Request = c.Request.WithContext(obscontext.WithActor(c.Request.Context(), "user", uploadedBy))
}

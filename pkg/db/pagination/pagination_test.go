package pagination

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct{ id int }

func TestCursorRoundTrip(t *testing.T) {
	token, err := EncodeCursor(Cursor{ID: "42", Date: "2024-03-01T00:00:00Z"})
	require.NoError(t, err)

	cursor, err := DecodeCursor(token)
	require.NoError(t, err)
	assert.Equal(t, "42", cursor.ID)
	assert.Equal(t, "2024-03-01T00:00:00Z", cursor.Date)
}

func TestDecodeCursorRejectsGarbage(t *testing.T) {
	for _, token := range []string{"%%%", "bm90LWpzb24", "e30"} {
		_, err := DecodeCursor(token)
		assert.ErrorIs(t, err, ErrInvalidCursor, token)
	}
}

func TestBuildCursorPageInfo(t *testing.T) {
	extract := func(r *row) string { return strconv.Itoa(r.id) }

	short := BuildCursorPageInfo([]*row{{1}, {2}}, 2, extract)
	assert.False(t, short.HasMore)
	assert.Empty(t, short.NextPageToken)

	full := BuildCursorPageInfo([]*row{{1}, {2}, {3}}, 2, extract)
	assert.True(t, full.HasMore)
	assert.Equal(t, "2", full.NextPageToken)
}

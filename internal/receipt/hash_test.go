package receipt

import (
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHash_Deterministic(t *testing.T) {
	inputs := []string{"", "abc123==", "iVBORw0KGgoAAAANSUhEUgAAAAEAAAAB", "not base64 at all"}
	for _, in := range inputs {
		first := Hash(in)
		second := Hash(in)
		assert.Equal(t, first, second)
		assert.Len(t, first, 64)
	}
}

func TestHash_MatchesSHA256OfText(t *testing.T) {
	sum := sha256.Sum256([]byte("abc123=="))
	assert.Equal(t, hex.EncodeToString(sum[:]), Hash("abc123=="))
}

func TestHash_EmptyInput(t *testing.T) {
	sum := sha256.Sum256(nil)
	assert.Equal(t, hex.EncodeToString(sum[:]), Hash(""))
}

func TestHash_IgnoresDataURLPrefix(t *testing.T) {
	payload := "/9j/4AAQSkZJRgABAQAAAQABAAD"
	for _, prefix := range []string{
		"data:image/png;base64,",
		"data:image/jpeg;base64,",
		"data:image/webp;base64,",
	} {
		assert.Equal(t, Hash(payload), Hash(prefix+payload), prefix)
	}
}

func TestHash_KeepsUnknownPrefix(t *testing.T) {
	payload := "abc123=="
	assert.NotEqual(t, Hash(payload), Hash("data:application/pdf;base64,"+payload))
	assert.NotEqual(t, Hash(payload), Hash("data:image/svg+xml;base64,"+payload))
}

func TestStripDataURLPrefix(t *testing.T) {
	assert.Equal(t, "abc", StripDataURLPrefix("data:image/png;base64,abc"))
	assert.Equal(t, "abc", StripDataURLPrefix("abc"))
	assert.Equal(t, "xdata:image/png;base64,abc", StripDataURLPrefix("xdata:image/png;base64,abc"))
}

func TestByteSize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want int64
	}{
		{name: "empty", in: "", want: 0},
		{name: "no padding", in: "YWJj", want: 3},
		{name: "one pad", in: "YWI=", want: 2},
		{name: "two pads", in: "YQ==", want: 1},
		{name: "prefixed", in: "data:image/png;base64,YWJj", want: 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ByteSize(tt.in))
		})
	}
}

func TestValidBase64(t *testing.T) {
	assert.True(t, ValidBase64("abc123=="))
	assert.True(t, ValidBase64("data:image/png;base64,YWJj"))
	assert.False(t, ValidBase64(""))
	assert.False(t, ValidBase64("data:image/png;base64,"))
	assert.False(t, ValidBase64("abc$123"))
	assert.False(t, ValidBase64("abc==="))
}

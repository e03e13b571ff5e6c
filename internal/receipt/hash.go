package receipt

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
)

var (
	dataURLPrefix = regexp.MustCompile(`^data:image/[a-z]+;base64,`)
	base64Payload = regexp.MustCompile(`^[A-Za-z0-9+/]*={0,2}$`)
)

// StripDataURLPrefix removes a leading data:image/<type>;base64, marker.
func StripDataURLPrefix(imageBase64 string) string {
	return dataURLPrefix.ReplaceAllString(imageBase64, "")
}

// Hash returns the lowercase hex SHA-256 of the base64 text with any data URL
// prefix removed. The digest is taken over the text, not the decoded bytes, so it
// stays comparable with hashes computed by existing clients.
func Hash(imageBase64 string) string {
	sum := sha256.Sum256([]byte(StripDataURLPrefix(imageBase64)))
	return hex.EncodeToString(sum[:])
}

// ByteSize approximates the decoded size of a base64 payload.
func ByteSize(imageBase64 string) int64 {
	content := StripDataURLPrefix(imageBase64)
	padding := int64(strings.Count(content, "="))
	size := (int64(len(content))*3 + 3) / 4
	return size - padding
}

// ValidBase64 reports whether the payload, once stripped, only carries base64 characters.
func ValidBase64(imageBase64 string) bool {
	content := StripDataURLPrefix(imageBase64)
	if content == "" {
		return false
	}
	return base64Payload.MatchString(content)
}

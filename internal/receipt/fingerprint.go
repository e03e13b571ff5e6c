package receipt

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
)

const (
	dateOnlyLayout    = "2006-01-02"
	localTimeLayout   = "2006-01-02T15:04:05.999999999"
	fingerprintLayout = "20060102"
)

var (
	ErrInvalidDate = errors.New("invalid_date")

	// whitespace here is the ECMAScript set, which is wider than RE2's ASCII \s
	storeDisallowed = regexp.MustCompile(`[^a-z0-9\p{Z}\t\n\v\f\r\x{FEFF}]`)
	storeWhitespace = regexp.MustCompile(`[\p{Z}\t\n\v\f\r\x{FEFF}]+`)
)

// NormalizeStore lowercases the name, drops punctuation and joins words with underscores.
func NormalizeStore(store string) string {
	normalized := strings.TrimFunc(strings.ToLower(store), isStoreSpace)
	normalized = storeDisallowed.ReplaceAllString(normalized, "")
	return storeWhitespace.ReplaceAllString(normalized, "_")
}

func isStoreSpace(r rune) bool {
	switch r {
	case '\uFEFF':
		return true
	case '\u0085':
		return false
	}
	return unicode.IsSpace(r)
}

// Fingerprint builds the {store}_{amount}_{YYYYMMDD} key used for similar matching.
// The date is reduced to its UTC calendar day.
func Fingerprint(store string, amount float64, date time.Time) string {
	return NormalizeStore(store) + "_" +
		strconv.FormatFloat(amount, 'f', 2, 64) + "_" +
		date.UTC().Format(fingerprintLayout)
}

// ParseDate applies the boundary date policy: RFC3339 values are converted to UTC,
// timestamps without an offset and bare dates are read as UTC.
func ParseDate(value string) (time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return time.Time{}, ErrInvalidDate
	}
	if parsed, err := time.Parse(time.RFC3339Nano, trimmed); err == nil {
		return parsed.UTC(), nil
	}
	if parsed, err := time.Parse(localTimeLayout, trimmed); err == nil {
		return parsed, nil
	}
	if parsed, err := time.Parse(dateOnlyLayout, trimmed); err == nil {
		return parsed.UTC(), nil
	}
	return time.Time{}, ErrInvalidDate
}

// FormatDate renders the UTC calendar day of t.
func FormatDate(t time.Time) string {
	return t.UTC().Format(dateOnlyLayout)
}

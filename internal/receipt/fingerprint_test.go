package receipt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDate(t *testing.T, value string) time.Time {
	t.Helper()
	d, err := ParseDate(value)
	require.NoError(t, err)
	return d
}

func TestFingerprint_ConcreteScenario(t *testing.T) {
	got := Fingerprint("Lowe's #204", 49.99, mustDate(t, "2024-03-01"))
	assert.Equal(t, "lowes_204_49.99_20240301", got)
}

func TestFingerprint_CaseAndWhitespaceInsensitive(t *testing.T) {
	d := mustDate(t, "2024-01-15")
	assert.Equal(t, Fingerprint("Home Depot", 10, d), Fingerprint("  HOME    DEPOT!!", 10, d))
	assert.Equal(t, "home_depot_10.00_20240115", Fingerprint("Home Depot", 10, d))
}

func TestFingerprint_AmountPrecision(t *testing.T) {
	d := mustDate(t, "2024-01-15")
	assert.Equal(t, Fingerprint("shop", 10, d), Fingerprint("shop", 10.00, d))
	assert.Equal(t, Fingerprint("shop", 10, d), Fingerprint("shop", 10.001, d))
	assert.NotEqual(t, Fingerprint("shop", 10, d), Fingerprint("shop", 10.01, d))
	assert.Equal(t, "shop_125.50_20240115", Fingerprint("shop", 125.5, d))
}

func TestFingerprint_UsesUTCCalendarDay(t *testing.T) {
	late := mustDate(t, "2024-03-01T23:30:00-05:00")
	assert.Equal(t, "cafe_5.00_20240302", Fingerprint("Cafe", 5, late))

	jakarta := time.FixedZone("WIB", 7*60*60)
	early := time.Date(2024, 3, 2, 3, 0, 0, 0, jakarta)
	assert.Equal(t, "cafe_5.00_20240301", Fingerprint("Cafe", 5, early))
}

func TestNormalizeStore(t *testing.T) {
	tests := map[string]string{
		"Lowe's #204":        "lowes_204",
		"  Home   Depot  ":   "home_depot",
		"7-Eleven":           "7eleven",
		"ACE\tHardware\nInc": "ace_hardware_inc",
		"Café Rouge":         "caf_rouge",
		"Home\vDepot":        "home_depot",
		"Home\u00a0Depot":    "home_depot",
		"Home\u3000Depot":    "home_depot",
		"":                   "",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeStore(in), in)
	}

	assert.Equal(t, "home_depot", NormalizeStore("\ufeffHome Depot\u2028"))
	assert.Equal(t, "home_depot_10.00_20240301",
		Fingerprint("Home\u00a0Depot", 10, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)))
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-03-01")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), d)

	d, err = ParseDate("2024-03-01T10:15:00.250+02:00")
	require.NoError(t, err)
	assert.Equal(t, time.UTC, d.Location())
	assert.Equal(t, 8, d.Hour())

	d, err = ParseDate("2024-03-01T23:30:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 23, 30, 0, 0, time.UTC), d)

	d, err = ParseDate("2024-03-01T23:30:00.125")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 23, 30, 0, 125000000, time.UTC), d)
	assert.Equal(t, "20240301", d.Format("20060102"))

	for _, bad := range []string{"", "   ", "03/01/2024", "2024-13-01", "yesterday", "2024-03-01T25:00:00"} {
		_, err := ParseDate(bad)
		assert.ErrorIs(t, err, ErrInvalidDate, bad)
	}
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "2024-03-01", FormatDate(time.Date(2024, 3, 1, 18, 0, 0, 0, time.UTC)))
}

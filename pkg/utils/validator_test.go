package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClock(t *testing.T) {
	minutes, err := ParseClock("09:30")
	require.NoError(t, err)
	assert.Equal(t, 570, minutes)

	minutes, err = ParseClock("23:59")
	require.NoError(t, err)
	assert.Equal(t, 1439, minutes)

	_, err = ParseClock("25:00")
	assert.Error(t, err)

	_, err = ParseClock("")
	assert.Error(t, err)
}

func TestFormatClock(t *testing.T) {
	assert.Equal(t, "09:05", FormatClock(545))
	assert.Equal(t, "00:00", FormatClock(0))
	assert.Equal(t, "23:59", FormatClock(1439))

	minutes, err := ParseClock("9:00")
	require.NoError(t, err)
	assert.Equal(t, "09:00", FormatClock(minutes))
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-08-01")
	require.NoError(t, err)
	assert.Equal(t, 2024, d.Year())

	_, err = ParseDate("2024/08/01")
	assert.Error(t, err)
}

func TestValidateEmail(t *testing.T) {
	assert.NoError(t, ValidateEmail("agent@example.co.jp"))
	assert.Error(t, ValidateEmail("not-an-email"))
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "line one", SanitizeString("line\x00 one"))
}

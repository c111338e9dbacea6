package facilities

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsValidOSID(t *testing.T) {
	valid := []string{
		"US2025123456ABCD",
		"BD2019000001A1B2",
		"DE20240000010000",
	}
	for _, id := range valid {
		assert.True(t, IsValidOSID(id), id)
	}

	invalid := []string{
		"",
		"US2025123456ABC",    // too short
		"US2025123456ABCDE",  // too long
		"us2025123456abcd",   // lower case
		"U52025123456ABCD",   // digit in country code
		"USA202512345ABCD",   // three-letter country
		"US2025123456AB-D",   // punctuation in suffix
		"US20251234A6ABCD",   // letter in serial
	}
	for _, id := range invalid {
		assert.False(t, IsValidOSID(id), id)
	}
}

func TestGenerateOSID(t *testing.T) {
	now := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)

	id := GenerateOSID("us", now)
	require.True(t, IsValidOSID(id), id)
	assert.Equal(t, "US", id[:2])
	assert.Equal(t, "2025", id[2:6])
}

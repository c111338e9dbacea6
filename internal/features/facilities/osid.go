package facilities

import (
	"fmt"
	"math/rand"
	"regexp"
	"strings"
	"time"
)

// An OS ID is the stable public identifier for a facility: a two-letter
// country code, the four-digit year of first registration, a six-digit
// serial, and a four-character uppercase alphanumeric suffix.
// Example: US2025123456ABCD
var osIDPattern = regexp.MustCompile(`^[A-Z]{2}\d{4}\d{6}[A-Z0-9]{4}$`)

const osIDSuffixAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// IsValidOSID reports whether id is a well-formed OS ID.
func IsValidOSID(id string) bool {
	return osIDPattern.MatchString(id)
}

// GenerateOSID mints a new OS ID for a facility registered now in the given
// country. Collisions are possible in theory; the unique index on osId makes
// the insert fail and the caller retries.
func GenerateOSID(countryCode string, now time.Time) string {
	serial := rand.Intn(1000000)

	suffix := make([]byte, 4)
	for i := range suffix {
		suffix[i] = osIDSuffixAlphabet[rand.Intn(len(osIDSuffixAlphabet))]
	}

	return fmt.Sprintf("%s%04d%06d%s",
		strings.ToUpper(countryCode), now.Year(), serial, string(suffix))
}

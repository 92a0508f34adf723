package invoice

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"regexp"
	"time"
)

// Invoice numbers are the one external-facing booking identifier, so they
// must be globally unique and unguessable. Format: INV-YYYYMMDD-<12 hex>.
const randomBytes = 6

var invoicePattern = regexp.MustCompile(`^INV-\d{8}-[0-9a-f]{12}$`)

// Generate returns a new invoice number for the given day
func Generate(now time.Time) (string, error) {
	b := make([]byte, randomBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return fmt.Sprintf("INV-%s-%s", now.Format("20060102"), hex.EncodeToString(b)), nil
}

// IsValid reports whether a string matches the invoice number format
func IsValid(invoice string) bool {
	return invoicePattern.MatchString(invoice)
}

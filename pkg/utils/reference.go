package utils

import (
	"strings"

	"github.com/google/uuid"
)

// GenerateReferenceNo returns a short human-readable reference such as
// "SL-3F2A9C1B" for printed receipts and invoices.
func GenerateReferenceNo(prefix string) string {
	return prefix + "-" + strings.ToUpper(uuid.New().String()[:8])
}

package normalization

import "strings"

// NormalizeEmail lower-cases and trims an address so lookups and the unique
// index agree on one spelling.
func NormalizeEmail(input string) string {
	return strings.ToLower(strings.TrimSpace(input))
}

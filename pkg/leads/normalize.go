package leads

import "strings"

// NormalizeContactNumber strips formatting from a phone number, keeping only
// digits and a single leading plus sign. "+1 (555) 010-2030" becomes
// "+15550102030".
func NormalizeContactNumber(raw string) string {
	trimmed := strings.TrimSpace(raw)

	var b strings.Builder
	b.Grow(len(trimmed))
	for i, r := range trimmed {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		} else if r == '+' && i == 0 {
			b.WriteRune(r)
		}
	}
	return b.String()
}

package format

import "strings"

// Mask hides a secret for display. Values longer than 8 characters keep
// their first and last 4 runes; shorter ones are fully starred.
func Mask(secret string) string {
	r := []rune(secret)
	if len(r) > 8 {
		return string(r[:4]) + "..." + string(r[len(r)-4:])
	}
	return strings.Repeat("*", len(r))
}

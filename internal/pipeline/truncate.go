package pipeline

import "unicode/utf8"

// Truncate returns the prefix of s that fits within n bytes, backing up to
// the nearest rune boundary. It is a cost and latency control, not a
// semantic one: truncation always happens before network dispatch, never
// after. Truncate is idempotent and pure.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if len(s) <= n {
		return s
	}
	cut := n
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

// Package sanitize cleans raw amount-field input while keeping the caret
// stable, so mid-string edits don't jump the cursor to the end.
package sanitize

import "strings"

// NoLimit disables fractional-digit truncation.
const NoLimit = -1

// Clean strips everything that is not a digit or the first decimal point.
// Digits after later points are kept ("1.2.3" becomes "1.23"). When
// maxDecimals >= 0 the fractional part is truncated, never rounded. A lone
// "." survives: it is an intermediate typing state, not an error.
func Clean(raw string, maxDecimals int) string {
	var b strings.Builder
	b.Grow(len(raw))
	seenDot := false
	for _, r := range raw {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' && !seenDot:
			seenDot = true
			b.WriteRune(r)
		}
	}
	out := b.String()

	if maxDecimals >= 0 {
		if i := strings.IndexByte(out, '.'); i != -1 {
			frac := out[i+1:]
			if len(frac) > maxDecimals {
				frac = frac[:maxDecimals]
			}
			out = out[:i+1] + frac
		}
	}
	return out
}

// Sanitize cleans raw and recomputes the caret: the prefix left of the
// original caret is cleaned with the same rules, and the new caret is the
// cleaned prefix length capped at the cleaned text length.
func Sanitize(raw string, caret, maxDecimals int) (string, int) {
	if caret < 0 {
		caret = 0
	}
	if caret > len(raw) {
		caret = len(raw)
	}

	clean := Clean(raw, maxDecimals)
	prefix := Clean(raw[:caret], maxDecimals)

	pos := len(prefix)
	if pos > len(clean) {
		pos = len(clean)
	}
	return clean, pos
}

package reference

import (
	"strings"
	"unicode"
)

// Normalize reduces a question reference to its matching form: lower case
// without parentheses, dots or whitespace. "7(a)", "7a" and " 7.A " all
// normalize to "7a".
func Normalize(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}

		switch r {
		case '(', ')', '.':
			return -1
		}

		return unicode.ToLower(r)
	}, s)
}

// Equal reports whether a and b refer to the same question.
func Equal(a, b string) bool {
	return Normalize(a) == Normalize(b)
}

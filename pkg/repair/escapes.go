package repair

import (
	"strings"
)

type escapeState int

const (
	stateOutside escapeState = iota
	stateString
	stateEscape
)

// Escapes doubles every backslash inside a JSON string literal that does not
// start a valid JSON escape. Valid escapes are \n \t \r \b \f \" \\ \/ and
// \u followed by four hex digits. Text outside string literals is copied
// unchanged.
func Escapes(text string) string {
	var b strings.Builder
	b.Grow(len(text) + 16)

	state := stateOutside

	for i := 0; i < len(text); i++ {
		c := text[i]

		switch state {
		case stateOutside:
			b.WriteByte(c)

			if c == '"' {
				state = stateString
			}

		case stateString:
			switch c {
			case '\\':
				state = stateEscape

			case '"':
				b.WriteByte(c)
				state = stateOutside

			default:
				b.WriteByte(c)
			}

		case stateEscape:
			state = stateString

			switch c {
			case 'n', 't', 'r', 'b', 'f', '"', '\\', '/':
				b.WriteByte('\\')
				b.WriteByte(c)

			case 'u':
				if i+4 < len(text) && isHex(text[i+1:i+5]) {
					b.WriteString(text[i-1 : i+5])
					i += 4
					continue
				}

				b.WriteString(`\\u`)

			default:
				b.WriteString(`\\`)
				b.WriteByte(c)
			}
		}
	}

	if state == stateEscape {
		b.WriteString(`\\`)
	}

	return b.String()
}

func isHex(s string) bool {
	if len(s) != 4 {
		return false
	}

	for i := 0; i < len(s); i++ {
		c := s[i]

		if !('0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F') {
			return false
		}
	}

	return true
}

package valueobject

import (
	"strings"
	"unicode"
)

// spaceClass is a regexp class body matching every Unicode space separator,
// vertical tab and the byte order mark, not only ASCII whitespace.
const spaceClass = `\s\p{Z}\x{0B}\x{FEFF}`

func isSpace(r rune) bool {
	return unicode.IsSpace(r) || unicode.Is(unicode.Z, r) || r == '\uFEFF'
}

func trimSpace(s string) string { return strings.TrimFunc(s, isSpace) }

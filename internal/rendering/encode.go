package rendering

import (
	"strings"

	"golang.org/x/text/encoding/charmap"
)

// toWinAnsi converts UTF-8 text to the Windows-1252 bytes the PDF core fonts
// expect. Runes outside the code page become '?'.
func toWinAnsi(text string) string {
	if text == "" {
		return ""
	}

	var result strings.Builder
	result.Grow(len(text))

	for _, r := range text {
		switch r {
		case '\t':
			result.WriteString("    ")
			continue
		case '\r':
			continue
		}
		if b, ok := charmap.Windows1252.EncodeRune(r); ok {
			result.WriteByte(b)
		} else {
			result.WriteByte('?')
		}
	}

	return result.String()
}

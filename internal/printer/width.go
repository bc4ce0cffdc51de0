package printer

import (
	"strings"

	"github.com/rivo/uniseg"
)

// textWidth is the number of columns s occupies. Wide characters count per
// their East Asian width and every tab counts as a full tabWidth.
func textWidth(s string, tabWidth int) int {
	if !strings.ContainsRune(s, '\t') {
		return uniseg.StringWidth(s)
	}
	w := 0
	for i, part := range strings.Split(s, "\t") {
		if i > 0 {
			w += tabWidth
		}
		w += uniseg.StringWidth(part)
	}
	return w
}

// leadingWidth measures the indentation at the start of line.
func leadingWidth(line string, tabWidth int) int {
	w := 0
	for _, c := range line {
		switch c {
		case ' ':
			w++
		case '\t':
			w += tabWidth
		default:
			return w
		}
	}
	return w
}

// trailingWhitespace is the byte length and column width of the run of
// spaces and tabs ending s.
func trailingWhitespace[S ~string | ~[]byte](s S, tabWidth int) (n, width int) {
	for i := len(s) - 1; i >= 0; i-- {
		switch s[i] {
		case ' ':
			width++
		case '\t':
			width += tabWidth
		default:
			return n, width
		}
		n++
	}
	return n, width
}

// Package textwidth measures the terminal display width of strings, counting
// East Asian wide characters as two columns; the CLI's multi-diagnostic
// printer uses it to pad the diagnostic Kind column, the same column-alignment concern golang.org/x/text/width
// serves for wide-character-aware layout elsewhere in the example pack.
package textwidth

import "golang.org/x/text/width"

// StringWidth returns s's display width in terminal columns: each rune
// counts 2 columns if its East Asian width property is Wide or Fullwidth,
// 1 column otherwise.
func StringWidth(s string) int {
	w := 0
	for _, r := range s {
		w += RuneWidth(r)
	}
	return w
}

// RuneWidth returns one rune's display width in terminal columns.
func RuneWidth(r rune) int {
	switch width.LookupRune(r).Kind() {
	case width.EastAsianWide, width.EastAsianFullwidth:
		return 2
	default:
		return 1
	}
}

// PadRight returns s followed by enough spaces to reach total columns wide,
// or s unchanged if it is already at least that wide.
func PadRight(s string, total int) string {
	w := StringWidth(s)
	if w >= total {
		return s
	}
	pad := make([]byte, total-w)
	for i := range pad {
		pad[i] = ' '
	}
	return s + string(pad)
}

package diag

import (
	"fmt"
	"io"

	"github.com/halfpeak/hidc/internal/textwidth"
)

// Print writes one aligned line per diagnostic in l to w: the "Kind" column
// is padded to the widest kind name seen so source positions line up,
// matching the column-aligned diagnostic dumps conventional Go build tools
// print to a terminal.
func Print(w io.Writer, l *List) {
	items := l.All()
	if len(items) == 0 {
		return
	}
	widest := 0
	for _, d := range items {
		if n := textwidth.StringWidth(string(d.Kind)); n > widest {
			widest = n
		}
	}
	for _, d := range items {
		kind := textwidth.PadRight(string(d.Kind), widest)
		fmt.Fprintf(w, "%s  %s: %s\n", kind, d.Span, d.Message)
	}
}

// Summary returns a one-line count, e.g. "3 diagnostics".
func Summary(l *List) string {
	n := len(l.All())
	if n == 1 {
		return "1 diagnostic"
	}
	return fmt.Sprintf("%d diagnostics", n)
}

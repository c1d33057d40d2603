package diag

import (
	"fmt"
	"strings"

	"github.com/rivo/uniseg"
)

// SourceLines supplies the source text of a diagnostic's line for display.
// The CLI glue wires this to whatever read the file in the first place; the
// core never owns file handles.
type SourceLines func(path string, line int) (string, bool)

// Render formats a diagnostic as file path, starting
// line:column, a caret underline spanning the position's width, and the
// message, with the source line printed above the caret when available.
//
// The caret width is measured in grapheme clusters via uniseg, not bytes or
// runes, so that multi-byte and combining characters underline correctly —
// the same reason a diagnostic renderer reaches for uniseg here.
func Render(d *Diagnostic, lines SourceLines) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s: %s\n", d.Position, d.Kind, d.Message)
	if len(d.Expected) > 0 {
		fmt.Fprintf(&b, "  expected one of: %s\n", strings.Join(d.Expected, ", "))
	}
	if d.Context != "" {
		fmt.Fprintf(&b, "  in %s\n", d.Context)
	}

	if lines == nil {
		return b.String()
	}
	line, ok := lines(d.Position.Path, d.Position.Start.Line)
	if !ok {
		return b.String()
	}
	b.WriteString("  " + line + "\n")

	width := d.Position.Width()
	lead := graphemeColumn(line, d.Position.Start.Col)
	caretWidth := graphemeSpan(line, d.Position.Start.Col, width)
	b.WriteString("  " + strings.Repeat(" ", lead) + strings.Repeat("^", max(1, caretWidth)) + "\n")
	return b.String()
}

// graphemeColumn returns the display-column offset of the col'th grapheme
// cluster in line.
func graphemeColumn(line string, col int) int {
	g := uniseg.NewGraphemes(line)
	width := 0
	for i := 0; i < col && g.Next(); i++ {
		width += uniseg.StringWidth(g.Str())
	}
	return width
}

// graphemeSpan returns the display width, in grapheme clusters, of the span
// [col, col+n) of line.
func graphemeSpan(line string, col, n int) int {
	g := uniseg.NewGraphemes(line)
	for i := 0; i < col && g.Next(); i++ {
	}
	width := 0
	for i := 0; i < n && g.Next(); i++ {
		width += uniseg.StringWidth(g.Str())
	}
	return width
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

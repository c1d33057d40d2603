// Package emit renders a pyast.Node core IR tree as Python source text. It
// is the last pipeline stage: every node it receives has already passed
// through desugar, so the only failures it can hit are internal invariant
// violations (an unrecognized Kind, a payload of the wrong type), reported
// as diag.ICE rather than a panic.
//
// The output is plain text, not a token stream with preserved formatting
// (unlike the teacher's own protobuf printer, which replays original
// whitespace from a token cursor): every Module this package is handed was
// synthesized by desugar, so there is no original formatting to preserve,
// and the renderer always produces its own canonical layout.
package emit

import (
	"fmt"
	"strings"

	"github.com/mambac/mambac/diag"
	"github.com/mambac/mambac/pyast"
)

const indentWidth = 4

// writer accumulates rendered Python source, tracking the current indent
// depth the way a line-oriented pretty printer does.
type writer struct {
	buf    strings.Builder
	depth  int
	report *diag.Report
}

func (w *writer) line(format string, args ...any) {
	w.buf.WriteString(strings.Repeat(" ", w.depth*indentWidth))
	fmt.Fprintf(&w.buf, format, args...)
	w.buf.WriteByte('\n')
}

func (w *writer) indent(body func()) {
	w.depth++
	body()
	w.depth--
}

func (w *writer) ice(n pyast.Node, format string, args ...any) {
	w.report.Errorf(diag.ICE, n.Position, format, args...)
}

// File renders a whole module: the imports desugar collected, plus the
// `collections` import the rendering itself needs for a defaultdict-backed
// match, followed by the module body.
func File(mod pyast.Node) (string, []*diag.Diagnostic) {
	w := &writer{report: &diag.Report{}}
	m, ok := mod.Data.(pyast.Module)
	if !ok {
		w.ice(mod, "emit: expected a module, got %s", mod.Kind)
		return "", w.report.Diagnostics()
	}

	imports := collectImports(mod)
	for _, path := range imports {
		w.line("import %s", path)
	}
	for _, imp := range m.Imports {
		w.decl(imp)
	}
	if len(imports) > 0 || len(m.Imports) > 0 {
		w.buf.WriteByte('\n')
	}

	for i, decl := range m.Body {
		if i > 0 {
			w.buf.WriteByte('\n')
		}
		w.decl(decl)
	}

	return w.buf.String(), w.report.Diagnostics()
}

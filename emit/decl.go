package emit

import (
	"strings"

	"github.com/mambac/mambac/pyast"
)

func (w *writer) decl(n pyast.Node) {
	switch n.Kind {
	case pyast.KindImport:
		imp := n.Data.(pyast.Import)
		if len(imp.Names) == 0 {
			w.line("import %s", imp.Path)
			return
		}
		w.line("from %s import %s", imp.Path, strings.Join(imp.Names, ", "))
	case pyast.KindClassDef:
		w.classDef(n)
	case pyast.KindFunctionDef:
		w.functionDef(n)
	case pyast.KindAssign:
		w.stmt(n)
	default:
		w.ice(n, "emit: unexpected top-level node kind %s", n.Kind)
	}
}

func (w *writer) classDef(n pyast.Node) {
	c := n.Data.(pyast.ClassDef)
	if len(c.Bases) == 0 {
		w.line("class %s:", c.Name)
	} else {
		w.line("class %s(%s):", c.Name, strings.Join(c.Bases, ", "))
	}
	w.indent(func() {
		if len(c.Body) == 0 {
			w.line("pass")
			return
		}
		for _, member := range c.Body {
			w.decl(member)
		}
	})
}

func (w *writer) functionDef(n pyast.Node) {
	fd := n.Data.(pyast.FunctionDef)
	w.line("def %s(%s):", fd.Name, w.argList(fd.Args))
	w.indent(func() {
		w.stmts(fd.Body)
	})
}

func (w *writer) argList(args []pyast.Arg) string {
	parts := make([]string, len(args))
	for i, a := range args {
		switch {
		case a.Vararg:
			parts[i] = "*" + a.Name
		case a.HasDefault:
			parts[i] = a.Name + "=" + w.exprString(a.Default)
		default:
			parts[i] = a.Name
		}
	}
	return strings.Join(parts, ", ")
}

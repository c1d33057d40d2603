// Package desugar lowers a checked ast.Node tree into the pyast core IR.
// Every node it produces still carries the source position it was lowered
// from, so diagnostics raised here (DesugarError, reported as ICE — a
// structurally impossible AST is an internal invariant violation, never a
// panic) still point at real source.
package desugar

import (
	"fmt"

	"github.com/mambac/mambac/ast"
	"github.com/mambac/mambac/diag"
	"github.com/mambac/mambac/pyast"
)

// Desugarer walks one file's checked AST and lowers it to pyast, assigning
// fresh temporary names for the nullable-coalesce rewrite as it goes.
type Desugarer struct {
	report diag.Report
	tmp    int

	// hoist points at the statement list currently being built by block();
	// nil outside one. Expressions that need Python statements of their own
	// (handle used for its value) append to *hoist rather than returning
	// them inline, since expressions can't contain statements.
	hoist *[]pyast.Node
}

// File lowers a whole module: an optional run of imports followed by
// top-level class/function/field declarations.
func File(file ast.Node) (pyast.Node, []*diag.Diagnostic) {
	d := &Desugarer{}
	f := file.Data.(ast.File)

	imports := make([]pyast.Node, len(f.Imports))
	for i, imp := range f.Imports {
		imports[i] = d.decl(imp)
	}
	body := make([]pyast.Node, 0, len(f.Decls))
	for _, decl := range f.Decls {
		body = append(body, d.decl(decl))
	}
	n := pyast.Node{Kind: pyast.KindModule, Position: file.Position, Data: pyast.Module{Imports: imports, Body: body}}
	return n, d.report.Diagnostics()
}

func (d *Desugarer) nextTemp() string {
	d.tmp++
	return fmt.Sprintf("%st%d", pyast.TempPrefix, d.tmp)
}

func (d *Desugarer) ice(n ast.Node, format string, args ...any) pyast.Node {
	d.report.Errorf(diag.Desugar, n.Position, format, args...)
	return pyast.Node{Position: n.Position}
}

func (d *Desugarer) decl(n ast.Node) pyast.Node {
	switch n.Kind {
	case ast.KindImport:
		imp := n.Data.(ast.Import)
		return pyast.Node{Kind: pyast.KindImport, Position: n.Position, Data: pyast.Import{Path: imp.Path, Names: imp.Names}}
	case ast.KindClassDef:
		return d.class(n)
	case ast.KindFunctionDef:
		return d.function(n, false)
	case ast.KindFieldDef:
		return d.topLevelField(n)
	default:
		return d.ice(n, "desugar: unexpected top-level node kind %s", n.Kind)
	}
}

// topLevelField lowers a bare module-level `name = value` declaration to a
// plain assignment; there is no class to attach it to as a field.
func (d *Desugarer) topLevelField(n ast.Node) pyast.Node {
	fd := n.Data.(ast.FieldDef)
	var value pyast.Node
	if !fd.Value.IsZero() {
		value = d.expr(fd.Value)
	} else {
		value = pyast.Node{Kind: pyast.KindNoneLit, Position: n.Position, Data: pyast.NoneLit{}}
	}
	return pyast.Node{Kind: pyast.KindAssign, Position: n.Position, Data: pyast.Assign{Name: fd.Name, Value: value}}
}

package typecontext

import (
	"fmt"
	"sort"

	"golang.org/x/exp/maps"

	"github.com/mambac/mambac/ast"
	"github.com/mambac/mambac/constraint"
	"github.com/mambac/mambac/diag"
	"github.com/mambac/mambac/token"
)

// genericClass is a not-yet-concretized class descriptor: declarations as
// written, with parent references recorded as strings rather than resolved
// Classes.
type genericClass struct {
	name     string
	generics []string
	args     []ast.FunctionArg
	parents  []ast.ParentRef
	fields   []ast.FieldDef
	funcs    []ast.FunctionDef
	position token.Position
}

// genericFunction is a not-yet-concretized top-level function descriptor.
type genericFunction struct {
	def ast.FunctionDef
	pos token.Position
}

// Context is the resolved table of classes and functions that the
// constraint generator and unifier consult: `{classes, functions}` built in
// two phases: a generic phase that captures declarations
// without substitution, and a concretization phase that substitutes
// generics and resolves parents transitively.
type Context struct {
	classes   map[string]*Class
	functions map[string][]Function

	generics      map[string]*genericClass
	genericFuncs  map[string][]genericFunction
}

// New builds an empty Context seeded with the primitive types
// step 3): Int, Float, String, Bool, Complex, Enum, Range, Set, List,
// undefined, Exception. These map 1:1 to Python identifiers via PyName.
func New() *Context {
	c := &Context{
		classes:      map[string]*Class{},
		functions:    map[string][]Function{},
		generics:     map[string]*genericClass{},
		genericFuncs: map[string][]genericFunction{},
	}
	for _, name := range primitiveOrder {
		c.classes[name] = &Class{
			Name:     constraint.Single(name),
			Concrete: true,
			IsPyType: true,
		}
	}
	return c
}

var primitiveOrder = []string{
	"Int", "Float", "String", "Bool", "Complex", "Enum", "Range", "Set", "List", "undefined", "Exception",
}

// PyNames maps primitive type names to their Python runtime identifiers.
var PyNames = map[string]string{
	"Int": "int", "Float": "float", "String": "str", "Bool": "bool",
	"Complex": "complex", "Enum": "enum.Enum", "Range": "range",
	"Set": "set", "List": "list", "undefined": "None", "Exception": "Exception",
}

// Build assembles a Context from a forest of file ASTs plus whatever
// primitives/stdlib descriptors were already loaded via LoadStdlib. It
// returns the diagnostics for any unresolved/cyclic reference rather than
// panicking.
func Build(files []ast.Node, base *Context) (*Context, []*diag.Diagnostic) {
	var report diag.Report
	c := base
	if c == nil {
		c = New()
	}

	// Phase 1: collect generic descriptors from every file.
	for _, f := range files {
		collectGenerics(c, f, &report)
	}

	// Phase 2: concretize in dependency order over `parents`, detecting
	// cycles rather than looping forever.
	order, cyc := topoOrderClasses(c.generics)
	if cyc != nil {
		report.Errorf(diag.Context, cyc.position, "cyclic inheritance detected: %v", cyc.cycle)
		return c, report.Diagnostics()
	}
	for _, name := range order {
		concretizeClass(c, name, &report)
	}
	for name, fns := range c.genericFuncs {
		for _, gf := range fns {
			c.functions[name] = append(c.functions[name], concretizeFunction(c, gf.def))
		}
	}

	return c, report.Diagnostics()
}

func collectGenerics(c *Context, file ast.Node, report *diag.Report) {
	if file.Kind != ast.KindFile {
		return
	}
	f := file.Data.(ast.File)
	for _, decl := range f.Decls {
		switch decl.Kind {
		case ast.KindClassDef:
			d := decl.Data.(ast.ClassDef)
			if _, dup := c.generics[d.Name]; dup {
				report.Errorf(diag.Context, decl.Position, "duplicate class definition %q", d.Name)
				continue
			}
			var fields []ast.FieldDef
			var funcs []ast.FunctionDef
			for _, member := range d.Body {
				switch member.Kind {
				case ast.KindFieldDef:
					fields = append(fields, member.Data.(ast.FieldDef))
				case ast.KindFunctionDef:
					funcs = append(funcs, member.Data.(ast.FunctionDef))
				}
			}
			c.generics[d.Name] = &genericClass{
				name: d.Name, generics: d.Generics, args: d.Args,
				parents: d.Parents, fields: fields, funcs: funcs, position: decl.Position,
			}
		case ast.KindFunctionDef:
			d := decl.Data.(ast.FunctionDef)
			c.genericFuncs[d.Name] = append(c.genericFuncs[d.Name], genericFunction{def: d, pos: decl.Position})
		}
	}
}

type cycleErr struct {
	cycle    []string
	position token.Position
}

// topoOrderClasses produces a parent-first visitation order over the
// generic class table, detecting cycles. It is a recursive DFS with a
// visiting/done marker per node and a stack of the names on the current
// path (used to report the cycle), returning a diagnosable cycle
// instead of panicking — panicking on a cyclic *user* inheritance graph
// would mean panicking on malformed user input instead of reporting it.
func topoOrderClasses(generics map[string]*genericClass) ([]string, *cycleErr) {
	const (
		unvisited = 0
		visiting  = 1
		done      = 2
	)
	state := make(map[string]int, len(generics))
	var order []string
	var stack []string

	var visit func(name string) *cycleErr
	visit = func(name string) *cycleErr {
		g, ok := generics[name]
		if !ok {
			return nil // unresolved parent reported separately at concretization time
		}
		switch state[name] {
		case done:
			return nil
		case visiting:
			idx := indexOf(stack, name)
			return &cycleErr{cycle: append(append([]string{}, stack[idx:]...), name), position: g.position}
		}
		state[name] = visiting
		stack = append(stack, name)
		for _, p := range g.parents {
			if err := visit(p.Name); err != nil {
				return err
			}
		}
		stack = stack[:len(stack)-1]
		state[name] = done
		order = append(order, name)
		return nil
	}

	names := maps.Keys(generics)
	sort.Strings(names)
	for _, name := range names {
		if err := visit(name); err != nil {
			return nil, err
		}
	}
	return order, nil
}

func indexOf(s []string, v string) int {
	for i, x := range s {
		if x == v {
			return i
		}
	}
	return 0
}

func concretizeClass(c *Context, name string, report *diag.Report) *Class {
	if cls, ok := c.classes[name]; ok {
		return cls
	}
	g := c.generics[name]
	if g == nil {
		return nil // unknown class; the caller reports it
	}
	cls := &Class{
		Name:     constraint.Single(name),
		Concrete: true,
		Position: g.position,
	}
	for _, a := range g.args {
		cls.Args = append(cls.Args, resolveFunctionArg(c, a))
	}

	var selfFields []Field
	for _, fd := range g.fields {
		selfFields = append(selfFields, Field{
			Name: fd.Name, Ty: resolveTypeAnnotation(c, fd.Ty), Mutable: fd.Mutable,
			Private: fd.Private, InClass: name,
		})
	}
	// Inline constructor arguments that are not shadowed by an explicit
	// field declaration are themselves fields (desugaring
	// depends on this).
	for _, a := range g.args {
		dup := false
		for _, f := range selfFields {
			if f.Name == a.Name {
				dup = true
			}
		}
		if !dup {
			selfFields = append(selfFields, Field{Name: a.Name, Ty: resolveTypeAnnotation(c, a.Ty), Mutable: a.Mutable, InClass: name})
		}
	}

	var selfFuncs []Function
	for _, fn := range g.funcs {
		selfFuncs = append(selfFuncs, concretizeMethod(c, fn, name))
	}
	cls.PushLayer(selfFields, selfFuncs)

	for _, pref := range g.parents {
		cls.Parents = append(cls.Parents, constraint.Single(pref.Name))
		parent := c.classes[pref.Name]
		if parent == nil {
			parent = concretizeClass(c, pref.Name, report)
		}
		if parent == nil {
			report.Errorf(diag.Context, g.position, "unknown parent class %q", pref.Name)
			continue
		}
		for _, l := range parent.layers {
			cls.PushLayer(l.fields, l.functions)
		}
	}

	c.classes[name] = cls
	return cls
}

func concretizeMethod(c *Context, fn ast.FunctionDef, inClass string) Function {
	f := concretizeFunction(c, fn)
	f.InClass = inClass
	return f
}

func concretizeFunction(c *Context, fn ast.FunctionDef) Function {
	f := Function{
		Name: constraint.Single(fn.Name), Private: fn.Private, Pure: fn.Pure,
		Ret: resolveTypeAnnotation(c, fn.Ret),
	}
	for _, raiseName := range fn.Raises {
		f.Raises = append(f.Raises, constraint.Single(raiseName))
	}
	for _, a := range fn.Args {
		f.Args = append(f.Args, resolveFunctionArg(c, a))
	}
	return f
}

func resolveFunctionArg(c *Context, a ast.FunctionArg) FunctionArg {
	return FunctionArg{
		Name: a.Name, Ty: resolveTypeAnnotation(c, a.Ty),
		HasDefault: a.HasDefault, Vararg: a.Vararg, Mutable: a.Mutable,
	}
}

func resolveTypeAnnotation(c *Context, n ast.Node) *constraint.TypeName {
	if n.IsZero() {
		return nil
	}
	t := typeNameOf(n)
	return &t
}

func typeNameOf(n ast.Node) constraint.TypeName {
	d := n.Data.(ast.TypeNameExpr)
	if len(d.Union) > 0 {
		members := make([]constraint.TypeName, len(d.Union))
		for i, m := range d.Union {
			members[i] = typeNameOf(m)
		}
		return constraint.UnionOf(members...)
	}
	generics := make([]constraint.TypeName, len(d.Generics))
	for i, g := range d.Generics {
		generics[i] = typeNameOf(g)
	}
	return constraint.TypeName{Literal: d.Literal, Generics: generics}
}

// Lookup resolves a class by name, producing a diagnostic that enumerates
// known alternatives on failure.
func (c *Context) Lookup(name string, pos token.Position) (*Class, *diag.Diagnostic) {
	if cls, ok := c.classes[name]; ok {
		return cls, nil
	}
	return nil, &diag.Diagnostic{
		Kind: diag.Context, Level: diag.Error, Position: pos,
		Message: fmt.Sprintf("unknown type %q; known types: %s", name, c.knownClassNames()),
	}
}

func (c *Context) knownClassNames() string {
	names := maps.Keys(c.classes)
	sort.Strings(names)
	return fmt.Sprintf("%v", names)
}

// LookupFunctionArgs returns every overload (the "set of argument tuples")
// registered for a free function name.
func (c *Context) LookupFunctionArgs(name string, pos token.Position) ([]Function, *diag.Diagnostic) {
	if fns, ok := c.functions[name]; ok {
		return fns, nil
	}
	return nil, &diag.Diagnostic{
		Kind: diag.Context, Level: diag.Error, Position: pos,
		Message: fmt.Sprintf("unknown function %q", name),
	}
}

// Classes exposes every concrete class by name. It returns the map itself,
// so ranging over it visits classes in no particular order.
func (c *Context) Classes() map[string]*Class { return c.classes }

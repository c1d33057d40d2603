package pyast

// TempPrefix marks identifiers the desugarer synthesizes (nullable-coalesce
// temporaries and the result variables of handle used as a value). FreeIdents
// excludes them: they never appear in the source the user wrote, so
// counting them would fail the round-trip property test comparing
// ast.FreeIdents(input) against FreeIdents(desugared).
const TempPrefix = "__mamba_"

// FreeIdents returns the set of identifier names referenced (not bound) by
// n. The desugarer's round-trip property test compares this against
// ast.FreeIdents on the input tree: apart from the Python builtins some
// lowerings call by name (range, isinstance, ...), which are counted here
// like any other identifier, desugaring must not invent or drop a
// referenced name, only rewrite how it's reached.
func FreeIdents(n Node) map[string]bool {
	free := map[string]bool{}
	var walk func(n Node, bound map[string]bool)
	walk = func(n Node, bound map[string]bool) {
		if n.IsZero() {
			return
		}
		switch n.Kind {
		case KindIdent:
			name := n.Data.(Ident).Name
			if len(name) >= len(TempPrefix) && name[:len(TempPrefix)] == TempPrefix {
				return
			}
			if !bound[name] {
				free[name] = true
			}
		case KindLambda:
			d := n.Data.(Lambda)
			inner := cloneSet(bound)
			for _, a := range d.Args {
				inner[a.Name] = true
			}
			walk(d.Body, inner)
		case KindFor:
			d := n.Data.(For)
			walk(d.Iter, bound)
			inner := cloneSet(bound)
			inner[d.Var] = true
			for _, s := range d.Body {
				walk(s, inner)
			}
		case KindWith:
			d := n.Data.(With)
			walk(d.Resource, bound)
			inner := cloneSet(bound)
			inner[d.As] = true
			for _, s := range d.Body {
				walk(s, inner)
			}
		case KindExceptHandler:
			d := n.Data.(ExceptHandler)
			inner := cloneSet(bound)
			if d.Bind != "" {
				inner[d.Bind] = true
			}
			for _, s := range d.Body {
				walk(s, inner)
			}
		case KindFunctionDef:
			d := n.Data.(FunctionDef)
			inner := cloneSet(bound)
			for _, a := range d.Args {
				inner[a.Name] = true
			}
			for _, s := range d.Body {
				walk(s, inner)
			}
		default:
			for _, c := range Children(n) {
				walk(c, bound)
			}
		}
	}
	walk(n, map[string]bool{})
	return free
}

func cloneSet(s map[string]bool) map[string]bool {
	out := make(map[string]bool, len(s)+1)
	for k := range s {
		out[k] = true
	}
	return out
}

// Children returns the immediate child nodes of n. Exhaustive per Kind;
// used by FreeIdents' default case and by the emitter's import-collection
// walk. Nodes without children (Pass, Break, Continue, literals) return nil.
func Children(n Node) []Node {
	switch n.Kind {
	case KindModule:
		d := n.Data.(Module)
		out := append([]Node{}, d.Imports...)
		return append(out, d.Body...)
	case KindClassDef:
		return n.Data.(ClassDef).Body
	case KindFunctionDef:
		return n.Data.(FunctionDef).Body
	case KindAssign:
		return []Node{n.Data.(Assign).Value}
	case KindAttrAssign:
		d := n.Data.(AttrAssign)
		return []Node{d.Receiver, d.Value}
	case KindExprStmt:
		return []Node{n.Data.(ExprStmt).Value}
	case KindReturn:
		d := n.Data.(Return)
		if d.Value.IsZero() {
			return nil
		}
		return []Node{d.Value}
	case KindIf:
		d := n.Data.(If)
		out := []Node{d.Cond}
		out = append(out, d.Then...)
		return append(out, d.Else...)
	case KindWhile:
		d := n.Data.(While)
		return append([]Node{d.Cond}, d.Body...)
	case KindFor:
		d := n.Data.(For)
		return append([]Node{d.Iter}, d.Body...)
	case KindTry:
		d := n.Data.(Try)
		out := append([]Node{}, d.Body...)
		return append(out, d.Handlers...)
	case KindExceptHandler:
		return n.Data.(ExceptHandler).Body
	case KindWith:
		d := n.Data.(With)
		return append([]Node{d.Resource}, d.Body...)
	case KindRaise:
		return n.Data.(Raise).Args
	case KindPrint:
		return []Node{n.Data.(Print).Value}
	case KindTuple:
		return n.Data.(Tuple).Elements
	case KindList:
		return n.Data.(List).Elements
	case KindSetLit:
		return n.Data.(SetLit).Elements
	case KindDictLit:
		d := n.Data.(DictLit)
		out := append([]Node{}, d.Keys...)
		out = append(out, d.Values...)
		if !d.Default.IsZero() {
			out = append(out, d.Default)
		}
		return out
	case KindCall:
		d := n.Data.(Call)
		return append([]Node{d.Func}, d.Args...)
	case KindAttribute:
		return []Node{n.Data.(Attribute).Receiver}
	case KindIndex:
		d := n.Data.(Index)
		return []Node{d.Receiver, d.Key}
	case KindBinOp:
		d := n.Data.(BinOp)
		return []Node{d.Left, d.Right}
	case KindUnaryOp:
		return []Node{n.Data.(UnaryOp).Operand}
	case KindBoolOp:
		d := n.Data.(BoolOp)
		return []Node{d.Left, d.Right}
	case KindCompare:
		d := n.Data.(Compare)
		return []Node{d.Left, d.Right}
	case KindIfExp:
		d := n.Data.(IfExp)
		return []Node{d.Cond, d.Then, d.Else}
	case KindNamedExpr:
		return []Node{n.Data.(NamedExpr).Value}
	default:
		return nil
	}
}

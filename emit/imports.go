package emit

import "github.com/mambac/mambac/pyast"

// collectImports walks the module looking for core-IR shapes that need a
// standard-library import the source text never asked for directly: a
// DictLit with a Default arm (desugared from a wildcard match case) needs
// collections.defaultdict.
func collectImports(mod pyast.Node) []string {
	needsCollections := false
	walk(mod, func(n pyast.Node) {
		if n.Kind == pyast.KindDictLit {
			if d, ok := n.Data.(pyast.DictLit); ok && !d.Default.IsZero() {
				needsCollections = true
			}
		}
	})
	var imports []string
	if needsCollections {
		imports = append(imports, "collections")
	}
	return imports
}

// walk visits n and every descendant via pyast.Children, depth-first.
func walk(n pyast.Node, visit func(pyast.Node)) {
	if n.IsZero() {
		return
	}
	visit(n)
	for _, c := range pyast.Children(n) {
		walk(c, visit)
	}
}

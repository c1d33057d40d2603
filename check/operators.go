package check

// opFunctions maps source operator spellings to the function name the
// unifier looks up via Implements (operators map to a fixed
// function-name table").
var opFunctions = map[string]string{
	"+": "add", "-": "sub", "*": "mul", "/": "fdiv", "//": "fdiv",
	"%": "mod", "**": "pow", "sqrt": "sqrt",
	"<": "le", ">": "ge", "<=": "leq", ">=": "geq", "==": "eq", "!=": "neq",
	"&": "and_", "|": "or_", "^": "xor",
}

// comparisonOps are handled specially: `is`/`isa`/`in` never reach the
// general binary-operator rule; they're handled as separate forms.
var comparisonOps = map[string]bool{
	"<": true, ">": true, "<=": true, ">=": true, "==": true, "!=": true,
}

var logicalOps = map[string]bool{"and": true, "or": true}

var bitwiseOps = map[string]bool{"&": true, "|": true, "^": true, "<<": true, ">>": true}

package constraint

import (
	"fmt"
	"reflect"

	"github.com/mambac/mambac/ast"
	"github.com/mambac/mambac/token"
)

// ShapeKind discriminates the closed set of Expected shapes. As with ast.Kind,
// this is a tagged variant rather than an interface hierarchy: every
// consumer (principally the unifier's shape-pair table) does exhaustive
// case analysis over it.
type ShapeKind int

const (
	ShapeType ShapeKind = iota
	ShapeExpression
	ShapeFunction
	ShapeHasFunction
	ShapeHasField
	ShapeAccess
	ShapeCollection
	ShapeMutable
	ShapeNullable
	ShapeTruthy
	ShapeStringy
	ShapeRaises
	ShapeRaisesAny
	ShapeExpressionAny
	ShapeImplements
)

func (s ShapeKind) String() string {
	switch s {
	case ShapeType:
		return "Type"
	case ShapeExpression:
		return "Expression"
	case ShapeFunction:
		return "Function"
	case ShapeHasFunction:
		return "HasFunction"
	case ShapeHasField:
		return "HasField"
	case ShapeAccess:
		return "Access"
	case ShapeCollection:
		return "Collection"
	case ShapeMutable:
		return "Mutable"
	case ShapeNullable:
		return "Nullable"
	case ShapeTruthy:
		return "Truthy"
	case ShapeStringy:
		return "Stringy"
	case ShapeRaises:
		return "Raises"
	case ShapeRaisesAny:
		return "RaisesAny"
	case ShapeExpressionAny:
		return "ExpressionAny"
	case ShapeImplements:
		return "Implements"
	default:
		return "?"
	}
}

// Shape payloads, one per ShapeKind.

type TypeShape struct{ Name TypeName }
type ExpressionShape struct{ AST ast.Node }
type FunctionShape struct {
	Name TypeName
	Args []Expected
}
type HasFunctionShape struct {
	Name TypeName
	Args []Expected
}
type HasFieldShape struct{ Name TypeName }
type AccessShape struct {
	Entity Expected
	Name   TypeName
}
type CollectionShape struct{ Of Expected }
type MutableShape struct{ Of Expected }
type NullableShape struct{ Of Expected }
type TruthyShape struct{}
type StringyShape struct{}
type RaisesShape struct{ Name TypeName }
type RaisesAnyShape struct{}
type ExpressionAnyShape struct{}
type ImplementsShape struct {
	Name TypeName
	Args []Expected
}

// Expected is a positioned symbolic type obligation. Two expecteds are
// equal iff their shapes are structurally equal; position does not
// participate in equality.
type Expected struct {
	Position token.Position
	Kind     ShapeKind
	Data     any
}

// Equal compares shapes structurally, ignoring position.
func (e Expected) Equal(o Expected) bool {
	if e.Kind != o.Kind {
		return false
	}
	return reflect.DeepEqual(e.Data, o.Data)
}

// IsExpr reports whether e wraps a raw AST expression (used to decide
// display formatting and the unifier's substitution rule).
func (e Expected) IsExpr() bool { return e.Kind == ShapeExpression }

// IsType reports whether e is a concrete Type shape.
func (e Expected) IsType() bool { return e.Kind == ShapeType }

func (e Expected) String() string {
	switch e.Kind {
	case ShapeType:
		return e.Data.(TypeShape).Name.String()
	case ShapeExpression:
		return fmt.Sprintf("expr@%s", e.Position)
	case ShapeTruthy:
		return "Truthy"
	case ShapeStringy:
		return "Stringy"
	case ShapeRaisesAny:
		return "RaisesAny"
	case ShapeExpressionAny:
		return "ExpressionAny"
	case ShapeNullable:
		return fmt.Sprintf("Nullable<%s>", e.Data.(NullableShape).Of)
	case ShapeMutable:
		return fmt.Sprintf("Mutable<%s>", e.Data.(MutableShape).Of)
	case ShapeCollection:
		return fmt.Sprintf("Collection<%s>", e.Data.(CollectionShape).Of)
	case ShapeHasField:
		return fmt.Sprintf("HasField(%s)", e.Data.(HasFieldShape).Name)
	case ShapeHasFunction:
		d := e.Data.(HasFunctionShape)
		return fmt.Sprintf("HasFunction(%s, %d args)", d.Name, len(d.Args))
	case ShapeFunction:
		d := e.Data.(FunctionShape)
		return fmt.Sprintf("Function(%s, %d args)", d.Name, len(d.Args))
	case ShapeAccess:
		d := e.Data.(AccessShape)
		return fmt.Sprintf("Access(%s, %s)", d.Entity, d.Name)
	case ShapeRaises:
		return fmt.Sprintf("Raises(%s)", e.Data.(RaisesShape).Name)
	case ShapeImplements:
		d := e.Data.(ImplementsShape)
		return fmt.Sprintf("Implements(%s, %d args)", d.Name, len(d.Args))
	default:
		return e.Kind.String()
	}
}

// Constructors. Position is supplied explicitly by callers alongside the
// `{position, shape}` pair.

func Type(pos token.Position, name TypeName) Expected {
	return Expected{Position: pos, Kind: ShapeType, Data: TypeShape{Name: name}}
}

func Expr(n ast.Node) Expected {
	return Expected{Position: n.Position, Kind: ShapeExpression, Data: ExpressionShape{AST: n}}
}

func Function(pos token.Position, name TypeName, args []Expected) Expected {
	return Expected{Position: pos, Kind: ShapeFunction, Data: FunctionShape{Name: name, Args: args}}
}

func HasFunction(pos token.Position, name TypeName, args []Expected) Expected {
	return Expected{Position: pos, Kind: ShapeHasFunction, Data: HasFunctionShape{Name: name, Args: args}}
}

func HasField(pos token.Position, name TypeName) Expected {
	return Expected{Position: pos, Kind: ShapeHasField, Data: HasFieldShape{Name: name}}
}

func Access(pos token.Position, entity Expected, name TypeName) Expected {
	return Expected{Position: pos, Kind: ShapeAccess, Data: AccessShape{Entity: entity, Name: name}}
}

func Collection(pos token.Position, of Expected) Expected {
	return Expected{Position: pos, Kind: ShapeCollection, Data: CollectionShape{Of: of}}
}

func Mutable(pos token.Position, of Expected) Expected {
	return Expected{Position: pos, Kind: ShapeMutable, Data: MutableShape{Of: of}}
}

func Nullable(pos token.Position, of Expected) Expected {
	return Expected{Position: pos, Kind: ShapeNullable, Data: NullableShape{Of: of}}
}

func Truthy(pos token.Position) Expected { return Expected{Position: pos, Kind: ShapeTruthy} }
func Stringy(pos token.Position) Expected { return Expected{Position: pos, Kind: ShapeStringy} }

func Raises(pos token.Position, name TypeName) Expected {
	return Expected{Position: pos, Kind: ShapeRaises, Data: RaisesShape{Name: name}}
}

func RaisesAny(pos token.Position) Expected { return Expected{Position: pos, Kind: ShapeRaisesAny} }

func ExpressionAny(pos token.Position) Expected {
	return Expected{Position: pos, Kind: ShapeExpressionAny}
}

func Implements(pos token.Position, name TypeName, args []Expected) Expected {
	return Expected{Position: pos, Kind: ShapeImplements, Data: ImplementsShape{Name: name, Args: args}}
}

package parser

import (
	"strings"

	"github.com/mambac/mambac/ast"
	"github.com/mambac/mambac/token"
)

// parseExpr is the entry point into the expression grammar, stratified by
// precedence from loosest to tightest: ternary/nullable-coalesce, logical
// OR, logical AND, NOT, comparison (including is/isa/in), range, bitwise
// OR/XOR/AND, shift, additive, multiplicative, power, unary, postfix
// (call/property/index), primary.
func (p *Parser) parseExpr() ast.Node {
	return p.parseTernary()
}

// parseTernary handles the keyword-spelled `if cond then A else B` form;
// everything else falls through to nullable-coalesce.
func (p *Parser) parseTernary() ast.Node {
	if !p.peekIs(token.Keyword, "if") {
		return p.parseNullCoalesce()
	}
	start := p.startPos()
	p.cur.next()
	cond := p.parseExpr()
	p.eat(token.Keyword, "then", "if expression")
	then := p.parseExpr()
	var els ast.Node
	if _, ok := p.eatIf(token.Keyword, "else"); ok {
		els = p.parseExpr()
	}
	return ast.Node{Kind: ast.KindTernary, Position: p.posFrom(start), Data: ast.Ternary{Cond: cond, Then: then, Else: els}}
}

func (p *Parser) parseNullCoalesce() ast.Node {
	start := p.startPos()
	left := p.parseLogicalOr()
	for {
		if _, ok := p.eatIf(token.Punct, "?or"); !ok {
			return left
		}
		right := p.parseLogicalOr()
		left = ast.Node{Kind: ast.KindNullCoalesce, Position: p.posFrom(start), Data: ast.NullCoalesce{Left: left, Right: right}}
	}
}

func (p *Parser) parseLogicalOr() ast.Node {
	start := p.startPos()
	left := p.parseLogicalAnd()
	for p.peekIs(token.Keyword, "or") {
		p.cur.next()
		right := p.parseLogicalAnd()
		left = ast.Node{Kind: ast.KindBinaryOp, Position: p.posFrom(start), Data: ast.BinaryOp{Op: "or", Left: left, Right: right}}
	}
	return left
}

func (p *Parser) parseLogicalAnd() ast.Node {
	start := p.startPos()
	left := p.parseNot()
	for p.peekIs(token.Keyword, "and") {
		p.cur.next()
		right := p.parseNot()
		left = ast.Node{Kind: ast.KindBinaryOp, Position: p.posFrom(start), Data: ast.BinaryOp{Op: "and", Left: left, Right: right}}
	}
	return left
}

func (p *Parser) parseNot() ast.Node {
	if p.peekIs(token.Keyword, "not") {
		start := p.startPos()
		p.cur.next()
		operand := p.parseNot()
		return ast.Node{Kind: ast.KindUnaryOp, Position: p.posFrom(start), Data: ast.UnaryOp{Op: "not", Operand: operand}}
	}
	return p.parseComparison()
}

// parseComparison handles the non-chaining comparison tier: relational
// operators, and the three-spelling is/isa/in family (`is`, `is not`,
// `isa`, `is not a`, `in`).
func (p *Parser) parseComparison() ast.Node {
	start := p.startPos()
	left := p.parseRange()

	if p.peekIs(token.Keyword, "is") {
		p.cur.next()
		negated := false
		if _, ok := p.eatIf(token.Keyword, "not"); ok {
			negated = true
		}
		if p.peekIs(token.Keyword, "a") || p.peekIs(token.Ident, "a") {
			p.cur.next()
			right := p.parseRange()
			if negated {
				return ast.Node{Kind: ast.KindIsNotA, Position: p.posFrom(start), Data: ast.IsNotA{Left: left, Right: right}}
			}
			return ast.Node{Kind: ast.KindIsA, Position: p.posFrom(start), Data: ast.IsA{Left: left, Right: right}}
		}
		right := p.parseRange()
		if negated {
			return ast.Node{Kind: ast.KindIsNot, Position: p.posFrom(start), Data: ast.IsNot{Left: left, Right: right}}
		}
		return ast.Node{Kind: ast.KindIs, Position: p.posFrom(start), Data: ast.Is{Left: left, Right: right}}
	}
	if p.peekIs(token.Keyword, "isa") {
		p.cur.next()
		right := p.parseRange()
		return ast.Node{Kind: ast.KindIsA, Position: p.posFrom(start), Data: ast.IsA{Left: left, Right: right}}
	}
	if p.peekIs(token.Keyword, "in") {
		p.cur.next()
		right := p.parseRange()
		return ast.Node{Kind: ast.KindIn, Position: p.posFrom(start), Data: ast.In{Elem: left, Coll: right}}
	}

	for _, op := range []string{"<=", ">=", "==", "!=", "<", ">"} {
		if p.peekIs(token.Punct, op) {
			p.cur.next()
			right := p.parseRange()
			return ast.Node{Kind: ast.KindBinaryOp, Position: p.posFrom(start), Data: ast.BinaryOp{Op: op, Left: left, Right: right}}
		}
	}
	return left
}

// parseRange handles `a..b` (exclusive) and `a..=b` (inclusive), with an
// optional `:step`. A `:` followed by the end of the line is left alone, so
// the colon closing a `for i in a..b:` header is not taken for a step.
func (p *Parser) parseRange() ast.Node {
	start := p.startPos()
	first := p.parseBitwiseOr()

	inclusive := false
	matched := false
	if _, ok := p.eatIf(token.Punct, "..="); ok {
		inclusive = true
		matched = true
	} else if _, ok := p.eatIf(token.Punct, ".."); ok {
		matched = true
	}
	if !matched {
		return first
	}
	end := p.parseBitwiseOr()
	var step ast.Node
	if p.peekIs(token.Punct, ":") {
		switch p.cur.peekAt(1).Kind {
		case token.Newline, token.Indent, token.Dedent, token.EOF:
		default:
			p.cur.next()
			step = p.parseBitwiseOr()
		}
	}
	return ast.Node{Kind: ast.KindRange, Position: p.posFrom(start), Data: ast.Range{Start: first, End: end, Step: step, Inclusive: inclusive}}
}

func (p *Parser) parseBitwiseOr() ast.Node {
	start := p.startPos()
	left := p.parseBitwiseXor()
	for p.peekIs(token.Punct, "|") {
		p.cur.next()
		right := p.parseBitwiseXor()
		left = ast.Node{Kind: ast.KindBinaryOp, Position: p.posFrom(start), Data: ast.BinaryOp{Op: "|", Left: left, Right: right}}
	}
	return left
}

func (p *Parser) parseBitwiseXor() ast.Node {
	start := p.startPos()
	left := p.parseBitwiseAnd()
	for p.peekIs(token.Punct, "^") {
		p.cur.next()
		right := p.parseBitwiseAnd()
		left = ast.Node{Kind: ast.KindBinaryOp, Position: p.posFrom(start), Data: ast.BinaryOp{Op: "^", Left: left, Right: right}}
	}
	return left
}

func (p *Parser) parseBitwiseAnd() ast.Node {
	start := p.startPos()
	left := p.parseShift()
	for p.peekIs(token.Punct, "&") {
		p.cur.next()
		right := p.parseShift()
		left = ast.Node{Kind: ast.KindBinaryOp, Position: p.posFrom(start), Data: ast.BinaryOp{Op: "&", Left: left, Right: right}}
	}
	return left
}

func (p *Parser) parseShift() ast.Node {
	start := p.startPos()
	left := p.parseAdditive()
	for p.peekIs(token.Punct, "<<") || p.peekIs(token.Punct, ">>") {
		op := p.cur.next().Lexeme
		right := p.parseAdditive()
		left = ast.Node{Kind: ast.KindBinaryOp, Position: p.posFrom(start), Data: ast.BinaryOp{Op: op, Left: left, Right: right}}
	}
	return left
}

func (p *Parser) parseAdditive() ast.Node {
	start := p.startPos()
	left := p.parseMultiplicative()
	for p.peekIs(token.Punct, "+") || p.peekIs(token.Punct, "-") {
		op := p.cur.next().Lexeme
		right := p.parseMultiplicative()
		left = ast.Node{Kind: ast.KindBinaryOp, Position: p.posFrom(start), Data: ast.BinaryOp{Op: op, Left: left, Right: right}}
	}
	return left
}

func (p *Parser) parseMultiplicative() ast.Node {
	start := p.startPos()
	left := p.parsePower()
	for {
		op, matched := p.peekOneOf("//", "*", "/", "%")
		if !matched {
			return left
		}
		p.cur.next()
		right := p.parsePower()
		left = ast.Node{Kind: ast.KindBinaryOp, Position: p.posFrom(start), Data: ast.BinaryOp{Op: op, Left: left, Right: right}}
	}
}

// peekOneOf reports whether the front token is punctuation matching one of
// the given spellings, preferring the earliest (and therefore longest, by
// caller convention) match.
func (p *Parser) peekOneOf(ops ...string) (string, bool) {
	for _, op := range ops {
		if p.peekIs(token.Punct, op) {
			return op, true
		}
	}
	return "", false
}

// parsePower is right-associative: `2 ** 3 ** 2` parses as `2 ** (3 ** 2)`.
func (p *Parser) parsePower() ast.Node {
	start := p.startPos()
	left := p.parseUnary()
	if _, ok := p.eatIf(token.Punct, "**"); !ok {
		return left
	}
	right := p.parsePower()
	return ast.Node{Kind: ast.KindBinaryOp, Position: p.posFrom(start), Data: ast.BinaryOp{Op: "**", Left: left, Right: right}}
}

func (p *Parser) parseUnary() ast.Node {
	if p.peekIs(token.Punct, "-") {
		start := p.startPos()
		p.cur.next()
		operand := p.parseUnary()
		return ast.Node{Kind: ast.KindUnaryOp, Position: p.posFrom(start), Data: ast.UnaryOp{Op: "-", Operand: operand}}
	}
	return p.parsePostfix()
}

// parsePostfix handles calls, property access (plain or call-shaped), and
// indexing, any number of which may chain off a primary expression.
func (p *Parser) parsePostfix() ast.Node {
	start := p.startPos()
	n := p.parsePrimary()
	for {
		switch {
		case p.peekIs(token.Punct, "("):
			args := p.parseCallArgs()
			if n.Kind == ast.KindIdent && isTypeName(n.Data.(ast.Ident).Name) {
				n = ast.Node{Kind: ast.KindConstructorCall, Position: p.posFrom(start), Data: ast.ConstructorCall{
					Type: ast.Node{Kind: ast.KindTypeName, Position: n.Position, Data: ast.TypeNameExpr{Literal: n.Data.(ast.Ident).Name}},
					Args: args,
				}}
				continue
			}
			n = ast.Node{Kind: ast.KindCall, Position: p.posFrom(start), Data: ast.Call{Func: n, Args: args}}
		case p.peekIs(token.Punct, "."):
			p.cur.next()
			name := p.parseIdentName("property name")
			if p.peekIs(token.Punct, "(") {
				args := p.parseCallArgs()
				n = ast.Node{Kind: ast.KindPropertyCall, Position: p.posFrom(start), Data: ast.PropertyCall{Receiver: n, Name: name, Args: args}}
				continue
			}
			n = ast.Node{Kind: ast.KindProperty, Position: p.posFrom(start), Data: ast.Property{Receiver: n, Name: name}}
		case p.peekIs(token.Punct, "["):
			p.cur.next()
			key := p.parseExpr()
			p.eat(token.Punct, "]", "index expression")
			n = ast.Node{Kind: ast.KindIndex, Position: p.posFrom(start), Data: ast.Index{Receiver: n, Key: key}}
		default:
			return n
		}
	}
}

func (p *Parser) parseCallArgs() []ast.Node {
	p.eat(token.Punct, "(", "call arguments")
	var args []ast.Node
	p.peekWhileNot(token.Punct, ")", func() {
		args = append(args, p.parseExpr())
		p.eatIf(token.Punct, ",")
	})
	p.eat(token.Punct, ")", "call arguments")
	return args
}

// isTypeName applies the surface convention that a capitalized identifier
// called like a function is a constructor invocation rather than a plain
// call.
func isTypeName(name string) bool {
	return name != "" && strings.ToUpper(name[:1]) == name[:1]
}

package parser

import (
	"github.com/mambac/mambac/ast"
	"github.com/mambac/mambac/token"
)

// parsePrimary handles literals, identifiers, parenthesized/tuple
// expressions, list/set/comprehension literals, lambdas, and the
// expression forms of match/handle. Parenthesized single-element groups
// collapse to their element here, at the parsing site, rather than in a
// post-pass: `(E)` parses as `E`, `(E,)`/`(E1, E2, …)` as a tuple.
func (p *Parser) parsePrimary() ast.Node {
	start := p.startPos()
	t := p.cur.peek()
	switch {
	case t.Kind == token.Int:
		p.cur.next()
		return ast.Node{Kind: ast.KindIntLit, Position: p.posFrom(start), Data: ast.IntLit{Lexeme: t.Lexeme}}
	case t.Kind == token.Real:
		p.cur.next()
		return ast.Node{Kind: ast.KindRealLit, Position: p.posFrom(start), Data: ast.RealLit{Lexeme: t.Lexeme}}
	case t.Kind == token.Exponential:
		p.cur.next()
		return ast.Node{Kind: ast.KindExpLit, Position: p.posFrom(start), Data: ast.ExpLit{Lexeme: t.Lexeme}}
	case t.Kind == token.String:
		p.cur.next()
		return ast.Node{Kind: ast.KindStringLit, Position: p.posFrom(start), Data: ast.StringLit{Value: t.Lexeme}}
	case t.Kind == token.Bool:
		p.cur.next()
		return ast.Node{Kind: ast.KindBoolLit, Position: p.posFrom(start), Data: ast.BoolLit{Value: t.Lexeme == "true"}}
	case t.Is(token.Keyword, "undefined"):
		p.cur.next()
		return ast.Node{Kind: ast.KindUndefined, Position: p.posFrom(start)}
	case t.Is(token.Keyword, "lambda"):
		return p.parseLambda()
	case t.Is(token.Keyword, "match"):
		return p.parseMatch()
	case t.Is(token.Keyword, "handle"):
		return p.parseHandle()
	case t.Kind == token.Ident:
		p.cur.next()
		return ast.Node{Kind: ast.KindIdent, Position: p.posFrom(start), Data: ast.Ident{Name: t.Lexeme}}
	case t.Is(token.Punct, "("):
		return p.parseParenOrTuple()
	case t.Is(token.Punct, "["):
		return p.parseListOrComprehension()
	case t.Is(token.Punct, "{"):
		return p.parseSetOrComprehension()
	default:
		n := p.expectedOneOf("expression", "literal", "identifier", `"("`, `"["`, `"{"`)
		p.cur.next()
		return n
	}
}

func (p *Parser) parseParenOrTuple() ast.Node {
	start := p.startPos()
	p.eat(token.Punct, "(", "parenthesized expression")
	if p.peekIs(token.Punct, ")") {
		p.cur.next()
		return ast.Node{Kind: ast.KindTuple, Position: p.posFrom(start), Data: ast.Tuple{}}
	}
	first := p.parseExpr()
	if _, ok := p.eatIf(token.Punct, ","); !ok {
		p.eat(token.Punct, ")", "parenthesized expression")
		return first
	}
	elements := []ast.Node{first}
	p.peekWhileNot(token.Punct, ")", func() {
		elements = append(elements, p.parseExpr())
		p.eatIf(token.Punct, ",")
	})
	p.eat(token.Punct, ")", "tuple expression")
	return ast.Node{Kind: ast.KindTuple, Position: p.posFrom(start), Data: ast.Tuple{Elements: elements}}
}

// parseListOrComprehension parses `[e1, e2, …]` or `[result for x in src
// [if cond]]`.
func (p *Parser) parseListOrComprehension() ast.Node {
	start := p.startPos()
	p.eat(token.Punct, "[", "list expression")
	if p.peekIs(token.Punct, "]") {
		p.cur.next()
		return ast.Node{Kind: ast.KindList, Position: p.posFrom(start), Data: ast.List{}}
	}
	first := p.parseExpr()
	if p.peekIs(token.Keyword, "for") {
		n := p.finishComprehension(start, first, ast.CollList)
		p.eat(token.Punct, "]", "list comprehension")
		return n
	}
	elements := []ast.Node{first}
	p.eatIf(token.Punct, ",")
	p.peekWhileNot(token.Punct, "]", func() {
		elements = append(elements, p.parseExpr())
		p.eatIf(token.Punct, ",")
	})
	p.eat(token.Punct, "]", "list expression")
	return ast.Node{Kind: ast.KindList, Position: p.posFrom(start), Data: ast.List{Elements: elements}}
}

// parseSetOrComprehension parses `{e1, e2, …}` or `{result for x in src
// [if cond]}`.
func (p *Parser) parseSetOrComprehension() ast.Node {
	start := p.startPos()
	p.eat(token.Punct, "{", "set expression")
	if p.peekIs(token.Punct, "}") {
		p.cur.next()
		return ast.Node{Kind: ast.KindSet, Position: p.posFrom(start), Data: ast.Set{}}
	}
	first := p.parseExpr()
	if p.peekIs(token.Keyword, "for") {
		n := p.finishComprehension(start, first, ast.CollSet)
		p.eat(token.Punct, "}", "set comprehension")
		return n
	}
	elements := []ast.Node{first}
	p.eatIf(token.Punct, ",")
	p.peekWhileNot(token.Punct, "}", func() {
		elements = append(elements, p.parseExpr())
		p.eatIf(token.Punct, ",")
	})
	p.eat(token.Punct, "}", "set expression")
	return ast.Node{Kind: ast.KindSet, Position: p.posFrom(start), Data: ast.Set{Elements: elements}}
}

func (p *Parser) finishComprehension(start token.Point, result ast.Node, kind ast.CollectionKind) ast.Node {
	p.eat(token.Keyword, "for", "comprehension")
	v := p.parseIdentName("comprehension variable")
	p.eat(token.Keyword, "in", "comprehension")
	source := p.parseExpr()
	var cond ast.Node
	if _, ok := p.eatIf(token.Keyword, "if"); ok {
		cond = p.parseExpr()
	}
	return ast.Node{
		Kind: ast.KindComprehension, Position: p.posFrom(start),
		Data: ast.Comprehension{Result: result, Var: v, Source: source, Cond: cond, Kind: kind},
	}
}

func (p *Parser) parseLambda() ast.Node {
	start := p.startPos()
	p.cur.next()
	var args []ast.FunctionArg
	p.peekWhileNot(token.Punct, ":", func() {
		name := p.parseIdentName("lambda parameter")
		args = append(args, ast.FunctionArg{Name: name})
		p.eatIf(token.Punct, ",")
	})
	p.eat(token.Punct, ":", "lambda expression")
	body := p.parseExpr()
	return ast.Node{Kind: ast.KindLambda, Position: p.posFrom(start), Data: ast.Lambda{Args: args, Body: body}}
}

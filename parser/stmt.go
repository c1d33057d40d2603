package parser

import (
	"github.com/mambac/mambac/ast"
	"github.com/mambac/mambac/token"
)

// parseIndentedBlock parses an Indent...Dedent-delimited sequence of
// statements, the body of a function, while, for, or with.
func (p *Parser) parseIndentedBlock() []ast.Node {
	var stmts []ast.Node
	if _, ok := p.eatIf(token.Indent, ""); !ok {
		return stmts
	}
	p.peekWhileNot(token.Dedent, "", func() {
		stmts = append(stmts, p.parseStatement())
	})
	p.eatIf(token.Dedent, "")
	return stmts
}

// parseStatement dispatches on the leading token per the statement grammar:
// assignment, reassignment, return, pass, break, continue, while, for, if,
// match, handle, with, raise, retry, print, nested declarations, or a bare
// expression statement.
func (p *Parser) parseStatement() ast.Node {
	switch {
	case p.peekIs(token.Keyword, "while"):
		return p.parseWhile()
	case p.peekIs(token.Keyword, "for"):
		return p.parseFor()
	case p.peekIs(token.Keyword, "if"):
		return p.parseIfStmt()
	case p.peekIs(token.Keyword, "match"):
		return p.parseMatch()
	case p.peekIs(token.Keyword, "handle"):
		return p.parseHandle()
	case p.peekIs(token.Keyword, "with"):
		return p.parseWith()
	case p.peekIs(token.Keyword, "raise"):
		return p.parseRaise()
	case p.peekIs(token.Keyword, "retry"):
		return p.parseSimpleKeywordStmt(ast.KindRetry, ast.Retry{})
	case p.peekIs(token.Keyword, "return"):
		return p.parseReturn()
	case p.peekIs(token.Keyword, "pass"):
		return p.parseSimpleKeywordStmt(ast.KindPass, ast.Pass{})
	case p.peekIs(token.Keyword, "break"):
		return p.parseSimpleKeywordStmt(ast.KindBreak, ast.Break{})
	case p.peekIs(token.Keyword, "continue"):
		return p.parseSimpleKeywordStmt(ast.KindContinue, ast.Continue{})
	case p.peekIs(token.Keyword, "print"):
		return p.parsePrint()
	case p.peekIs(token.Keyword, "class"), p.peekIs(token.Keyword, "def"),
		p.peekIs(token.Keyword, "private"), p.peekIs(token.Keyword, "pure"):
		return p.parseTopLevelDecl()
	case p.peekIs(token.Newline, ""):
		p.cur.next()
		return p.parseStatement()
	default:
		return p.parseAssignOrExprStmt()
	}
}

func (p *Parser) parseSimpleKeywordStmt(kind ast.Kind, data any) ast.Node {
	start := p.startPos()
	p.cur.next()
	p.eatIf(token.Newline, "")
	return ast.Node{Kind: kind, Position: p.posFrom(start), Data: data}
}

func (p *Parser) parseWhile() ast.Node {
	start := p.startPos()
	p.cur.next()
	cond := p.parseExpr()
	p.eat(token.Punct, ":", "while loop")
	p.eatIf(token.Newline, "")
	body := p.parseIndentedBlock()
	return ast.Node{Kind: ast.KindWhile, Position: p.posFrom(start), Data: ast.While{Cond: cond, Body: body}}
}

func (p *Parser) parseFor() ast.Node {
	start := p.startPos()
	p.cur.next()
	v := p.parseIdentName("for-loop variable")
	p.eat(token.Keyword, "in", "for loop")
	coll := p.parseExpr()
	p.eat(token.Punct, ":", "for loop")
	p.eatIf(token.Newline, "")
	body := p.parseIndentedBlock()
	return ast.Node{Kind: ast.KindFor, Position: p.posFrom(start), Data: ast.For{Var: v, Coll: coll, Body: body}}
}

// parseIfStmt parses `if cond then A else B` in statement position. The
// grammar makes no distinction between the statement and expression forms
// of if/else; both produce a Ternary node, and whether the emitter renders
// a conditional expression or an if/else block is decided by context, not
// by the AST shape.
func (p *Parser) parseIfStmt() ast.Node {
	n := p.parseTernary()
	p.eatIf(token.Newline, "")
	return n
}

func (p *Parser) parseMatch() ast.Node {
	start := p.startPos()
	p.cur.next()
	subject := p.parseExpr()
	p.eat(token.Punct, ":", "match expression")
	p.eatIf(token.Newline, "")
	var cases []ast.Node
	if _, ok := p.eatIf(token.Indent, ""); ok {
		p.peekWhileNot(token.Dedent, "", func() {
			cases = append(cases, p.parseMatchCase())
		})
		p.eatIf(token.Dedent, "")
	}
	return ast.Node{Kind: ast.KindMatch, Position: p.posFrom(start), Data: ast.Match{Subject: subject, Cases: cases}}
}

func (p *Parser) parseMatchCase() ast.Node {
	start := p.startPos()
	p.eat(token.Keyword, "case", "match case")
	var cond ast.Node
	if !p.peekIs(token.Ident, "_") {
		cond = p.parseExpr()
	} else {
		p.cur.next()
	}
	p.eat(token.Punct, "=>", "match case")
	body := p.parseExpr()
	p.eatIf(token.Newline, "")
	return ast.Node{Kind: ast.KindMatchCase, Position: p.posFrom(start), Data: ast.MatchCase{Cond: cond, Body: body}}
}

func (p *Parser) parseHandle() ast.Node {
	start := p.startPos()
	p.cur.next()
	body := p.parseExpr()
	p.eat(token.Punct, ":", "handle expression")
	p.eatIf(token.Newline, "")
	var arms []ast.Node
	if _, ok := p.eatIf(token.Indent, ""); ok {
		p.peekWhileNot(token.Dedent, "", func() {
			arms = append(arms, p.parseHandleArm())
		})
		p.eatIf(token.Dedent, "")
	}
	return ast.Node{Kind: ast.KindHandle, Position: p.posFrom(start), Data: ast.Handle{Body: body, Arms: arms}}
}

func (p *Parser) parseHandleArm() ast.Node {
	start := p.startPos()
	p.eat(token.Keyword, "with", "handle arm")
	errType := p.parseIdentName("handled error type")
	bind := ""
	if _, ok := p.eatIf(token.Keyword, "as"); ok {
		bind = p.parseIdentName("handle binding")
	}
	p.eat(token.Punct, ":", "handle arm")
	p.eatIf(token.Newline, "")
	armBody := p.parseStatementsOrExpr()
	return ast.Node{Kind: ast.KindHandleArm, Position: p.posFrom(start), Data: ast.HandleArm{ErrType: errType, Bind: bind, Body: armBody}}
}

// parseStatementsOrExpr parses either an indented statement block (wrapped
// in a Block node) or a single trailing expression/statement on the same
// line, matching the grammar's allowance for one-line arms.
func (p *Parser) parseStatementsOrExpr() ast.Node {
	if p.peekIs(token.Indent, "") {
		start := p.startPos()
		stmts := p.parseIndentedBlock()
		return ast.Node{Kind: ast.KindBlock, Position: p.posFrom(start), Data: ast.Block{Statements: stmts}}
	}
	return p.parseStatement()
}

func (p *Parser) parseWith() ast.Node {
	start := p.startPos()
	p.cur.next()
	resource := p.parseExpr()
	p.eat(token.Keyword, "as", "with statement")
	name := p.parseIdentName("with binding")
	p.eat(token.Punct, ":", "with statement")
	p.eatIf(token.Newline, "")
	body := p.parseIndentedBlock()
	return ast.Node{Kind: ast.KindWith, Position: p.posFrom(start), Data: ast.With{Resource: resource, As: name, Body: body}}
}

func (p *Parser) parseRaise() ast.Node {
	start := p.startPos()
	p.cur.next()
	errType := p.parseIdentName("raised error type")
	var args []ast.Node
	if p.peekIs(token.Punct, "(") {
		p.cur.next()
		p.peekWhileNot(token.Punct, ")", func() {
			args = append(args, p.parseExpr())
			p.eatIf(token.Punct, ",")
		})
		p.eat(token.Punct, ")", "raise arguments")
	}
	p.eatIf(token.Newline, "")
	return ast.Node{Kind: ast.KindRaise, Position: p.posFrom(start), Data: ast.Raise{ErrType: errType, Args: args}}
}

func (p *Parser) parseReturn() ast.Node {
	start := p.startPos()
	p.cur.next()
	var value ast.Node
	if !p.peekIs(token.Newline, "") && !p.cur.atEOF() && !p.peekIs(token.Dedent, "") {
		value = p.parseExpr()
	}
	p.eatIf(token.Newline, "")
	return ast.Node{Kind: ast.KindReturn, Position: p.posFrom(start), Data: ast.Return{Value: value}}
}

func (p *Parser) parsePrint() ast.Node {
	start := p.startPos()
	p.cur.next()
	value := p.parseExpr()
	p.eatIf(token.Newline, "")
	return ast.Node{Kind: ast.KindPrint, Position: p.posFrom(start), Data: ast.Print{Value: value}}
}

// parseAssignOrExprStmt disambiguates `name = expr`, `name: Type = expr`,
// `target <- expr` (reassignment), and a bare expression used as a
// statement (e.g. a call for its side effects).
func (p *Parser) parseAssignOrExprStmt() ast.Node {
	start := p.startPos()
	expr := p.parseExpr()

	if _, ok := p.eatIf(token.Punct, "<-"); ok {
		value := p.parseExpr()
		p.eatIf(token.Newline, "")
		return ast.Node{Kind: ast.KindReassign, Position: p.posFrom(start), Data: ast.Reassign{Target: expr, Value: value}}
	}

	if expr.Kind == ast.KindIdent {
		if p.peekIs(token.Punct, ":") || p.peekIs(token.Punct, "=") {
			name := expr.Data.(ast.Ident).Name
			var ty ast.Node
			if _, ok := p.eatIf(token.Punct, ":"); ok {
				ty = p.parseTypeName()
			}
			p.eat(token.Punct, "=", "assignment")
			value := p.parseExpr()
			p.eatIf(token.Newline, "")
			return ast.Node{Kind: ast.KindAssign, Position: p.posFrom(start), Data: ast.Assign{Name: name, Ty: ty, Value: value}}
		}
	}

	p.eatIf(token.Newline, "")
	return expr
}

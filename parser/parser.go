// Package parser implements the hand-written recursive-descent parser: it
// consumes a token stream produced by the lexer, explicit Indent/Dedent/
// Newline layout tokens included, and produces a positioned ast.Node tree.
// It never panics on malformed input — every failure path records a
// diagnostic and attempts to resynchronize at the next Newline or Dedent so
// that one bad statement doesn't abort the rest of the file.
package parser

import (
	"fmt"

	"github.com/mambac/mambac/ast"
	"github.com/mambac/mambac/diag"
	"github.com/mambac/mambac/token"
)

// Parser drives a cursor over one file's token stream, accumulating
// diagnostics as it goes.
type Parser struct {
	path   string
	cur    *cursor
	report diag.Report
}

// New builds a Parser for one file's already-lexed token stream.
func New(path string, toks []token.Token) *Parser {
	return &Parser{path: path, cur: newCursor(toks)}
}

// ParseFile parses a module: an optional run of import statements followed
// by top-level class/function/field declarations.
func ParseFile(path string, toks []token.Token) (ast.Node, []*diag.Diagnostic) {
	p := New(path, toks)
	start := p.startPos()
	var imports []ast.Node
	for p.peekIs(token.Keyword, "import") || p.peekIs(token.Keyword, "from") {
		imports = append(imports, p.parseImport())
	}
	var decls []ast.Node
	for !p.cur.atEOF() {
		decls = append(decls, p.parseTopLevelDecl())
	}
	n := ast.Node{Kind: ast.KindFile, Position: p.posFrom(start), Data: ast.File{Imports: imports, Decls: decls}}
	return n, p.report.Diagnostics()
}

// ParseScript parses a bare sequence of top-level statements, the entry
// point used for scripts rather than modules. Scripts share the file
// grammar's statement and expression rules; only the entry production
// differs.
func ParseScript(path string, toks []token.Token) (ast.Node, []*diag.Diagnostic) {
	p := New(path, toks)
	start := p.startPos()
	var stmts []ast.Node
	for !p.cur.atEOF() {
		stmts = append(stmts, p.parseStatement())
	}
	n := ast.Node{Kind: ast.KindBlock, Position: p.posFrom(start), Data: ast.Block{Statements: stmts}}
	return n, p.report.Diagnostics()
}

// --- iterator primitives ---

// startPos records the position the current construct begins at.
func (p *Parser) startPos() token.Point {
	return p.cur.peek().Position.Start
}

// posFrom closes a position begun at start using the token just consumed
// (or the current token, if nothing has been consumed since).
func (p *Parser) posFrom(start token.Point) token.Position {
	end := start
	if p.cur.pos > 0 {
		end = p.cur.toks[p.cur.pos-1].Position.End
	}
	return token.Position{Path: p.path, Start: start, End: end}
}

// peekIs reports whether the front token matches kind and lexeme.
func (p *Parser) peekIs(kind token.Kind, lexeme string) bool {
	return p.cur.peek().Is(kind, lexeme)
}

// eat consumes exactly the given kind/lexeme or records a diagnostic citing
// context and returns the zero token with ok=false.
func (p *Parser) eat(kind token.Kind, lexeme, context string) (token.Token, bool) {
	if p.peekIs(kind, lexeme) {
		return p.cur.next(), true
	}
	got := p.cur.peek()
	d := &diag.Diagnostic{
		Kind: diag.Parse, Level: diag.Error, Position: got.Position,
		Message:  fmt.Sprintf("unexpected %s %q", got.Kind, got.Lexeme),
		Context:  context,
		Expected: []string{describeExpected(kind, lexeme)},
	}
	p.report.Add(d)
	return token.Token{}, false
}

// eatIf consumes the front token if it matches, returning ok=false (without
// recording a diagnostic) otherwise.
func (p *Parser) eatIf(kind token.Kind, lexeme string) (token.Token, bool) {
	if p.peekIs(kind, lexeme) {
		return p.cur.next(), true
	}
	return token.Token{}, false
}

// peekWhileNot loops, invoking body, until the front token matches kind
// (or EOF is reached, which always breaks the loop to avoid hanging on
// malformed input missing its closing token).
func (p *Parser) peekWhileNot(kind token.Kind, lexeme string, body func()) {
	for !p.peekIs(kind, lexeme) && !p.cur.atEOF() {
		body()
	}
}

// resync skips tokens until a Newline or Dedent, the recovery point used
// after a malformed statement so a single bad line doesn't cascade into
// spurious diagnostics for the rest of the file.
func (p *Parser) resync() {
	for !p.cur.atEOF() {
		if p.peekIs(token.Newline, "") || p.peekIs(token.Dedent, "") {
			p.cur.next()
			return
		}
		p.cur.next()
	}
}

func describeExpected(kind token.Kind, lexeme string) string {
	if lexeme != "" {
		return fmt.Sprintf("%q", lexeme)
	}
	return kind.String()
}

// expectedOneOf records a diagnostic offering several acceptable spellings,
// used at primary-expression and statement dispatch points where no single
// eat() call is appropriate.
func (p *Parser) expectedOneOf(context string, alts ...string) ast.Node {
	got := p.cur.peek()
	p.report.Add(&diag.Diagnostic{
		Kind: diag.Parse, Level: diag.Error, Position: got.Position,
		Message:  fmt.Sprintf("unexpected %s %q", got.Kind, got.Lexeme),
		Context:  context,
		Expected: alts,
	})
	return ast.Node{Kind: ast.Invalid, Position: got.Position}
}

package parser

import (
	"github.com/mambac/mambac/ast"
	"github.com/mambac/mambac/token"
)

// parseImport handles `import path` and `from path import a, b`.
func (p *Parser) parseImport() ast.Node {
	start := p.startPos()
	if _, ok := p.eatIf(token.Keyword, "from"); ok {
		path := p.parseDottedPath()
		p.eat(token.Keyword, "import", "import statement")
		var names []string
		names = append(names, p.parseIdentName("import name"))
		for {
			if _, ok := p.eatIf(token.Punct, ","); !ok {
				break
			}
			names = append(names, p.parseIdentName("import name"))
		}
		p.eatIf(token.Newline, "")
		return ast.Node{Kind: ast.KindImport, Position: p.posFrom(start), Data: ast.Import{Path: path, Names: names}}
	}
	p.eat(token.Keyword, "import", "import statement")
	path := p.parseDottedPath()
	p.eatIf(token.Newline, "")
	return ast.Node{Kind: ast.KindImport, Position: p.posFrom(start), Data: ast.Import{Path: path}}
}

func (p *Parser) parseDottedPath() string {
	name := p.parseIdentName("module path")
	for p.peekIs(token.Punct, ".") {
		p.cur.next()
		name += "." + p.parseIdentName("module path")
	}
	return name
}

func (p *Parser) parseIdentName(context string) string {
	tok, ok := p.eat(token.Ident, "", context)
	if !ok {
		return ""
	}
	return tok.Lexeme
}

// parseTopLevelDecl dispatches on the leading keyword: `class`, `private`,
// `pure`, `def`, or a bare field declaration.
func (p *Parser) parseTopLevelDecl() ast.Node {
	switch {
	case p.peekIs(token.Keyword, "class"):
		return p.parseClassDef()
	case p.peekIs(token.Keyword, "private") &&
		!p.cur.peekAt(1).Is(token.Keyword, "def") && !p.cur.peekAt(1).Is(token.Keyword, "pure"):
		return p.parseFieldDef()
	case p.peekIs(token.Keyword, "private"), p.peekIs(token.Keyword, "pure"), p.peekIs(token.Keyword, "def"):
		return p.parseFunctionOrFieldDef()
	case p.peekIs(token.Keyword, "mutable"), p.peekIs(token.Ident, ""):
		return p.parseFieldDef()
	default:
		n := p.expectedOneOf("top-level declaration", `"class"`, `"def"`, "identifier")
		p.resync()
		return n
	}
}

// parseClassDef handles `class Name(args…) isa Parent(args…), Parent2:`
// followed by an indented body.
func (p *Parser) parseClassDef() ast.Node {
	start := p.startPos()
	p.eat(token.Keyword, "class", "class definition")
	name := p.parseIdentName("class name")
	var generics []string
	if _, ok := p.eatIf(token.Punct, "<"); ok {
		generics = append(generics, p.parseIdentName("generic parameter"))
		for {
			if _, ok := p.eatIf(token.Punct, ","); !ok {
				break
			}
			generics = append(generics, p.parseIdentName("generic parameter"))
		}
		p.eat(token.Punct, ">", "generic parameter list")
	}
	var args []ast.FunctionArg
	if p.peekIs(token.Punct, "(") {
		args = p.parseFunctionArgs()
	}
	var parents []ast.ParentRef
	if _, ok := p.eatIf(token.Keyword, "isa"); ok {
		parents = append(parents, p.parseParentRef())
		for {
			if _, ok := p.eatIf(token.Punct, ","); !ok {
				break
			}
			parents = append(parents, p.parseParentRef())
		}
	}
	p.eat(token.Punct, ":", "class definition")
	p.eatIf(token.Newline, "")
	body := p.parseIndentedDecls()
	return ast.Node{
		Kind: ast.KindClassDef, Position: p.posFrom(start),
		Data: ast.ClassDef{Name: name, Generics: generics, Args: args, Parents: parents, Body: body},
	}
}

func (p *Parser) parseParentRef() ast.ParentRef {
	name := p.parseIdentName("parent class")
	var args []ast.Node
	if p.peekIs(token.Punct, "(") {
		p.cur.next()
		p.peekWhileNot(token.Punct, ")", func() {
			args = append(args, p.parseExpr())
			p.eatIf(token.Punct, ",")
		})
		p.eat(token.Punct, ")", "parent argument list")
	}
	return ast.ParentRef{Name: name, Args: args}
}

// parseIndentedDecls parses the Indent...Dedent-delimited body of a class:
// a mix of field and function definitions.
func (p *Parser) parseIndentedDecls() []ast.Node {
	var body []ast.Node
	if _, ok := p.eatIf(token.Indent, ""); !ok {
		return body
	}
	p.peekWhileNot(token.Dedent, "", func() {
		body = append(body, p.parseTopLevelDecl())
	})
	p.eatIf(token.Dedent, "")
	return body
}

// parseFunctionOrFieldDef disambiguates `private`/`pure`/`def` prefixes: all
// three only ever lead into a function definition here (bare private/mutable
// fields are handled by parseFieldDef).
func (p *Parser) parseFunctionOrFieldDef() ast.Node {
	start := p.startPos()
	private := false
	pure := false
	for {
		if _, ok := p.eatIf(token.Keyword, "private"); ok {
			private = true
			continue
		}
		if _, ok := p.eatIf(token.Keyword, "pure"); ok {
			pure = true
			continue
		}
		break
	}
	p.eat(token.Keyword, "def", "function definition")
	name := p.parseIdentName("function name")
	args := p.parseFunctionArgs()
	var ret ast.Node
	if _, ok := p.eatIf(token.Punct, "->"); ok {
		ret = p.parseTypeName()
	}
	var raises []string
	if _, ok := p.eatIf(token.Keyword, "raises"); ok {
		raises = append(raises, p.parseIdentName("raised error type"))
		for {
			if _, ok := p.eatIf(token.Punct, ","); !ok {
				break
			}
			raises = append(raises, p.parseIdentName("raised error type"))
		}
	}
	p.eat(token.Punct, ":", "function definition")
	p.eatIf(token.Newline, "")
	body := p.parseIndentedBlock()
	return ast.Node{
		Kind: ast.KindFunctionDef, Position: p.posFrom(start),
		Data: ast.FunctionDef{Name: name, Args: args, Ret: ret, Raises: raises, Private: private, Pure: pure, Body: body},
	}
}

// parseFieldDef handles a class-body variable declaration:
// `[private] [mutable] name[: Type] [= value]`.
func (p *Parser) parseFieldDef() ast.Node {
	start := p.startPos()
	private := false
	mutable := false
	for {
		if _, ok := p.eatIf(token.Keyword, "private"); ok {
			private = true
			continue
		}
		if _, ok := p.eatIf(token.Keyword, "mutable"); ok {
			mutable = true
			continue
		}
		break
	}
	name := p.parseIdentName("field name")
	var ty ast.Node
	if _, ok := p.eatIf(token.Punct, ":"); ok {
		ty = p.parseTypeName()
	}
	var value ast.Node
	if _, ok := p.eatIf(token.Punct, "="); ok {
		value = p.parseExpr()
	}
	p.eatIf(token.Newline, "")
	return ast.Node{
		Kind: ast.KindFieldDef, Position: p.posFrom(start),
		Data: ast.FieldDef{Name: name, Ty: ty, Mutable: mutable, Private: private, Value: value},
	}
}

// parseFunctionArgs parses a parenthesized, comma-separated parameter list.
func (p *Parser) parseFunctionArgs() []ast.FunctionArg {
	var args []ast.FunctionArg
	p.eat(token.Punct, "(", "parameter list")
	p.peekWhileNot(token.Punct, ")", func() {
		args = append(args, p.parseOneFunctionArg())
		p.eatIf(token.Punct, ",")
	})
	p.eat(token.Punct, ")", "parameter list")
	return args
}

func (p *Parser) parseOneFunctionArg() ast.FunctionArg {
	mutable := false
	if _, ok := p.eatIf(token.Keyword, "mutable"); ok {
		mutable = true
	}
	vararg := false
	if _, ok := p.eatIf(token.Punct, "*"); ok {
		vararg = true
	}
	name := p.parseIdentName("parameter name")
	var ty ast.Node
	if _, ok := p.eatIf(token.Punct, ":"); ok {
		ty = p.parseTypeName()
	}
	hasDefault := false
	var def ast.Node
	if _, ok := p.eatIf(token.Punct, "="); ok {
		hasDefault = true
		def = p.parseExpr()
	}
	return ast.FunctionArg{Name: name, Ty: ty, HasDefault: hasDefault, Default: def, Vararg: vararg, Mutable: mutable}
}

// parseTypeName parses a type annotation: `Name`, `Name<A, B>`, or `A | B`.
func (p *Parser) parseTypeName() ast.Node {
	start := p.startPos()
	first := p.parseOneTypeName()
	if !p.peekIs(token.Punct, "|") {
		return first
	}
	union := []ast.Node{first}
	for {
		if _, ok := p.eatIf(token.Punct, "|"); !ok {
			break
		}
		union = append(union, p.parseOneTypeName())
	}
	return ast.Node{Kind: ast.KindTypeName, Position: p.posFrom(start), Data: ast.TypeNameExpr{Union: union}}
}

func (p *Parser) parseOneTypeName() ast.Node {
	start := p.startPos()
	name := p.parseIdentName("type name")
	var generics []ast.Node
	if _, ok := p.eatIf(token.Punct, "<"); ok {
		generics = append(generics, p.parseTypeName())
		for {
			if _, ok := p.eatIf(token.Punct, ","); !ok {
				break
			}
			generics = append(generics, p.parseTypeName())
		}
		p.eat(token.Punct, ">", "generic type arguments")
	}
	return ast.Node{Kind: ast.KindTypeName, Position: p.posFrom(start), Data: ast.TypeNameExpr{Literal: name, Generics: generics}}
}

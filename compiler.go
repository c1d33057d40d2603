// Package mambac ties together the lexer, parser, type context builder,
// constraint generator, unifier, desugarer and emitter into a single
// pipeline: source text in, Python source text (and diagnostics) out.
package mambac

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/mambac/mambac/ast"
	"github.com/mambac/mambac/check"
	"github.com/mambac/mambac/desugar"
	"github.com/mambac/mambac/diag"
	"github.com/mambac/mambac/emit"
	"github.com/mambac/mambac/parser"
	"github.com/mambac/mambac/token"
	"github.com/mambac/mambac/typecontext"
	"github.com/mambac/mambac/unify"
)

// Source is one input file: a path (used only for positions and
// diagnostics) and its raw source bytes.
type Source struct {
	Path string
	Text []byte
}

// Output is one file's compiled result. Diagnostics is always sorted by
// (path, position); Python is empty if any stage recorded an error.
type Output struct {
	Path        string
	Python      string
	Diagnostics []*diag.Diagnostic
}

// Compiler runs the full pipeline over a set of sources. Classes may
// inherit across files, so the type context is built from every file's AST
// together; everything else (lex, parse, constraint generation,
// unification, desugaring, emission) runs independently per file and is
// safe to parallelize, per the determinism requirement that the result
// never depends on which file happens to finish first.
type Compiler struct {
	// MaxParallelism bounds how many files are processed concurrently.
	// Zero (the default) means unbounded: one goroutine per file.
	MaxParallelism int
}

// parsedFile carries one source through lex+parse so later stages don't
// redo it.
type parsedFile struct {
	source Source
	file   ast.Node // zero if lexing/parsing failed outright
	diags  []*diag.Diagnostic
}

// CompileAll runs every stage over sources and returns one Output per
// input, in the same order sources were given. It only returns a non-nil
// error for something outside the compiler's own diagnostic system (a
// cancelled context, a corrupt embedded standard-library descriptor);
// malformed input is always reported via Output.Diagnostics instead.
func (c *Compiler) CompileAll(ctx context.Context, sources []Source) ([]Output, error) {
	parsed, err := c.parseAll(ctx, sources)
	if err != nil {
		return nil, err
	}

	stdlib, err := typecontext.LoadStdlib()
	if err != nil {
		return nil, fmt.Errorf("mambac: loading standard library descriptors: %w", err)
	}

	files := make([]ast.Node, 0, len(parsed))
	for _, p := range parsed {
		if !p.file.IsZero() {
			files = append(files, p.file)
		}
	}
	typeCtx, ctxDiags := typecontext.Build(files, stdlib)

	outputs := make([]Output, len(parsed))
	g, gctx := errgroup.WithContext(ctx)
	if c.MaxParallelism > 0 {
		g.SetLimit(c.MaxParallelism)
	}
	for i, p := range parsed {
		i, p := i, p
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			outputs[i] = compileOne(p, typeCtx, ctxDiags)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outputs, nil
}

// parseAll lexes and parses every source concurrently; there's no
// cross-file dependency at this stage.
func (c *Compiler) parseAll(ctx context.Context, sources []Source) ([]parsedFile, error) {
	parsed := make([]parsedFile, len(sources))
	g, gctx := errgroup.WithContext(ctx)
	if c.MaxParallelism > 0 {
		g.SetLimit(c.MaxParallelism)
	}
	for i, src := range sources {
		i, src := i, src
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			parsed[i] = parseOne(src)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return parsed, nil
}

func parseOne(src Source) parsedFile {
	toks, lexErrs := token.Lex(src.Path, src.Text)
	var diags []*diag.Diagnostic
	for _, e := range lexErrs {
		diags = append(diags, &diag.Diagnostic{Kind: diag.Lex, Level: diag.Error, Position: e.Position, Message: e.Message})
	}

	file, parseDiags := parser.ParseFile(src.Path, toks)
	diags = append(diags, parseDiags...)
	return parsedFile{source: src, file: file, diags: diags}
}

// compileOne runs constraint generation, unification, desugaring and
// emission for one already-parsed file against the shared type context.
func compileOne(p parsedFile, ctx *typecontext.Context, ctxDiags []*diag.Diagnostic) Output {
	var report diag.Report
	for _, d := range p.diags {
		report.Add(d)
	}
	for _, d := range ctxDiags {
		if d.Position.Path == p.source.Path {
			report.Add(d)
		}
	}

	// Per spec: when a stage's diagnostic list is non-empty, downstream
	// stages are skipped for that file rather than run against malformed
	// or unresolved input.
	out := Output{Path: p.source.Path}
	if p.file.IsZero() || report.HasErrors() {
		out.Diagnostics = report.Diagnostics()
		return out
	}

	result := check.Generate(p.file, ctx)
	for _, d := range result.Diagnostics {
		report.Add(d)
	}
	if report.HasErrors() {
		out.Diagnostics = report.Diagnostics()
		return out
	}

	u := unify.New(ctx)
	for _, set := range result.Sets {
		_, diags := u.Solve(set)
		for _, d := range diags {
			report.Add(d)
		}
	}
	if report.HasErrors() {
		out.Diagnostics = report.Diagnostics()
		return out
	}

	core, desugarDiags := desugar.File(p.file)
	for _, d := range desugarDiags {
		report.Add(d)
	}
	if report.HasErrors() {
		out.Diagnostics = report.Diagnostics()
		return out
	}

	python, emitDiags := emit.File(core)
	for _, d := range emitDiags {
		report.Add(d)
	}
	if !report.HasErrors() {
		out.Python = python
	}
	out.Diagnostics = report.Diagnostics()
	return out
}

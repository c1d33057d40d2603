// Package diag contains the diagnostic types used across every compiler
// stage: lex, parse, context, type, and desugar errors. Every stage returns
// either its result or a non-empty list of diagnostics, never a single
// error and never a panic on malformed input, per the compiler's error
// handling design.
package diag

import (
	"errors"
	"fmt"
	"sort"

	"github.com/mambac/mambac/token"
)

// Kind classifies which stage produced a diagnostic, mirroring the
// taxonomy: LexError, ParseError, ContextError, TypeError, DesugarError
// (reported as ICE — an internal invariant violation, never swallowed).
type Kind int

const (
	Lex Kind = iota
	Parse
	Context
	Type
	Desugar
	ICE
)

func (k Kind) String() string {
	switch k {
	case Lex:
		return "lex error"
	case Parse:
		return "parse error"
	case Context:
		return "context error"
	case Type:
		return "type error"
	case Desugar:
		return "internal error"
	case ICE:
		return "internal compiler error"
	default:
		return "error"
	}
}

// Level distinguishes errors (which fail compilation) from warnings (which
// don't).
type Level int

const (
	Error Level = iota
	Warning
)

// Diagnostic is a single positioned message. Expected, when non-empty, lists
// the token kinds the parser would have accepted instead — used to build
// "expected one of {...}" messages.
type Diagnostic struct {
	Kind     Kind
	Level    Level
	Position token.Position
	Message  string
	Context  string
	Expected []string
}

func (d *Diagnostic) Error() string {
	msg := d.Message
	if d.Context != "" {
		msg = fmt.Sprintf("%s (in %s)", msg, d.Context)
	}
	return fmt.Sprintf("%s: %s: %s", d.Position, d.Kind, msg)
}

// ErrInvalidInput is returned by Report.Err once any error-level diagnostic
// has been recorded.
var ErrInvalidInput = errors.New("mambac: compilation failed, see diagnostics")

// Report accumulates diagnostics across an arbitrarily deep call stack. It
// is the stateful counterpart to the otherwise-pure compiler stages,
// playing the same role a reporter.Handler plays relative to
// its pure ast/parser/linker packages.
type Report struct {
	diags []*Diagnostic
}

// Errorf records an error-level diagnostic.
func (r *Report) Errorf(kind Kind, pos token.Position, format string, args ...any) *Diagnostic {
	d := &Diagnostic{Kind: kind, Level: Error, Position: pos, Message: fmt.Sprintf(format, args...)}
	r.diags = append(r.diags, d)
	return d
}

// Warnf records a warning-level diagnostic.
func (r *Report) Warnf(kind Kind, pos token.Position, format string, args ...any) *Diagnostic {
	d := &Diagnostic{Kind: kind, Level: Warning, Position: pos, Message: fmt.Sprintf(format, args...)}
	r.diags = append(r.diags, d)
	return d
}

// Add appends an already-built diagnostic (used when a stage needs to set
// Expected/Context fields before recording).
func (r *Report) Add(d *Diagnostic) { r.diags = append(r.diags, d) }

// Merge appends another report's diagnostics into r, used when merging
// per-file reports produced by a parallel pipeline.
func (r *Report) Merge(other *Report) { r.diags = append(r.diags, other.diags...) }

// HasErrors reports whether any error-level diagnostic was recorded.
func (r *Report) HasErrors() bool {
	for _, d := range r.diags {
		if d.Level == Error {
			return true
		}
	}
	return false
}

// Err returns ErrInvalidInput if any error-level diagnostic was recorded,
// else nil.
func (r *Report) Err() error {
	if r.HasErrors() {
		return ErrInvalidInput
	}
	return nil
}

// Diagnostics returns all recorded diagnostics sorted by (path, position),
// so diagnostic ordering is deterministic regardless of which file finished first.
func (r *Report) Diagnostics() []*Diagnostic {
	out := make([]*Diagnostic, len(r.diags))
	copy(out, r.diags)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Position, out[j].Position
		if a.Path != b.Path {
			return a.Path < b.Path
		}
		return a.Start.Less(b.Start)
	})
	return out
}

// Package diag is the single non-recoverable error sink shared by the
// type checker and code generator (spec.md §6.2, §7), modeled on the
// teacher's codegen.prog.Err sticky-field idiom: once set, every
// subsequent dispatch is expected to check OK() and bail out without
// doing further work.
package diag

import (
	"errors"
	"fmt"

	"github.com/fdanielsen/lobster/ast"
	"go.uber.org/zap"
)

// Sentinel error kinds, one per spec.md §7 bullet.
var (
	ErrTypeMismatch        = errors.New("type mismatch")
	ErrArityMismatch       = errors.New("arity mismatch")
	ErrOverloadResolution  = errors.New("overload resolution failed")
	ErrLvalueRequired      = errors.New("lvalue required")
	ErrFieldAbsent         = errors.New("field absent")
	ErrUnknownSuperField   = errors.New("unknown field in super")
	ErrIterationError      = errors.New("iteration error")
	ErrCoroutineConstruct  = errors.New("coroutine construction error")
	ErrMultiDispatchAmbig  = errors.New("multi-dispatch ambiguity")
	ErrNonLocalReturn      = errors.New("non-local return from untyped context")
	ErrTooFewReturnValues  = errors.New("too few return values")
)

// Frame is one entry of the backtrace TypeError appends to a failure:
// the enclosing function's display signature and its locals.
type Frame struct {
	Signature string
	Locals    []string
}

// Sink accumulates at most one error; every call after the first is a
// no-op, matching spec.md §7's "non-recoverable; the pass terminates."
type Sink struct {
	Err    error
	scopes []Frame
	log    *zap.Logger
}

// NewSink builds a Sink that logs through l, the way the teacher's
// compiler/server packages log through zap elsewhere in the codebase:
// Warn diagnostics at warning level, and the first recorded failure
// once at error level. If l is nil, a no-op logger is used.
func NewSink(l *zap.Logger) *Sink {
	if l == nil {
		l = zap.NewNop()
	}
	return &Sink{log: l}
}

// OK reports whether the pass may keep going.
func (s *Sink) OK() bool { return s.Err == nil }

// PushScope records an enclosing function scope for the backtrace.
func (s *Sink) PushScope(f Frame) { s.scopes = append(s.scopes, f) }

// PopScope removes the innermost scope.
func (s *Sink) PopScope() {
	if len(s.scopes) > 0 {
		s.scopes = s.scopes[:len(s.scopes)-1]
	}
}

// Fail records the first error only; later calls are no-ops, mirroring
// the teacher's `if c.prog.Err == nil { c.prog.Err = err }` check sites.
func (s *Sink) Fail(n ast.Node, kind error, detail string) {
	if s.Err != nil {
		return
	}
	var pos ast.Pos
	if n != nil {
		pos = n.Pos()
	}
	msg := fmt.Errorf("%s:%d: %w: %s", filename(pos.File), pos.Line, kind, detail)
	s.Err = s.withBacktrace(msg)
	s.log.Error("compile error", zap.Error(s.Err))
}

func (s *Sink) withBacktrace(err error) error {
	if len(s.scopes) == 0 {
		return err
	}
	var bt string
	for i := len(s.scopes) - 1; i >= 0; i-- {
		f := s.scopes[i]
		bt += fmt.Sprintf("\n  in %s", f.Signature)
		for _, l := range f.Locals {
			bt += fmt.Sprintf("\n    %s", l)
		}
	}
	return fmt.Errorf("%w%s", err, bt)
}

// Warn logs a non-fatal diagnostic without touching Err.
func (s *Sink) Warn(n ast.Node, msg string) {
	pos := ast.Pos{}
	if n != nil {
		pos = n.Pos()
	}
	s.log.Warn(msg, zap.Int("file", pos.File), zap.Int("line", pos.Line))
}

func filename(idx int) string { return fmt.Sprintf("<file#%d>", idx) }

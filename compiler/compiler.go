// Package compiler is the thin top-level driver (spec.md §6): it
// wires the type checker and code generator into the two-call
// pipeline described by spec.md §6's contract, the same shape as the
// teacher's own top-level Compile/CompileWithDebugInfo pair, minus
// the Go-source loading step since this module's input is an
// already-built AST and symbol table (spec.md §1 excludes
// lexing/parsing).
package compiler

import (
	"github.com/fdanielsen/lobster/ast"
	"github.com/fdanielsen/lobster/codegen"
	"github.com/fdanielsen/lobster/emit"
	"github.com/fdanielsen/lobster/internal/diag"
	"github.com/fdanielsen/lobster/natives"
	"github.com/fdanielsen/lobster/symtab"
	"github.com/fdanielsen/lobster/typecheck"
)

// Options carries the driver's knobs, mirroring the teacher's own
// Options struct in shape (a handful of independent toggles) though
// none of its NEF/manifest-specific fields apply here.
type Options struct {
	// EmitDebugInfo requests a DebugInfo alongside the bytecode,
	// analogous to the teacher's CompileWithDebugInfo.
	EmitDebugInfo bool
	// Verbose turns on codegen's field-dispatch diagnostics report.
	Verbose bool
}

// DebugInfo is the simplified, self-contained analogue of the
// teacher's DebugInfo: a source-line map over the emitted code,
// without NEF/manifest-format concerns this module does not have.
type DebugInfo struct {
	Lines []emit.LineEntry
}

// Compile runs the full pipeline over an already-built program: type
// checking (spec.md §4.2/§4.3), then, only if that pass succeeded,
// code generation (spec.md §4.4/§4.5). The first failing pass's error
// is returned; neither pass runs past the other's failure.
func Compile(top []ast.Node, syms *symtab.Table, nat natives.Catalog, opts Options) (*emit.Program, error) {
	prog, _, err := CompileWithDebugInfo(top, syms, nat, opts)
	return prog, err
}

// CompileWithDebugInfo is Compile plus a DebugInfo built from the
// generator's recorded line-info table, mirroring the teacher's
// CompileWithDebugInfo/Compile split.
func CompileWithDebugInfo(top []ast.Node, syms *symtab.Table, nat natives.Catalog, opts Options) (*emit.Program, *DebugInfo, error) {
	checkSink := diag.NewSink(nil)
	checker := typecheck.New(syms, nat, checkSink)
	if err := checker.CheckProgram(top); err != nil {
		return nil, nil, err
	}

	genSink := diag.NewSink(nil)
	gen := codegen.New(syms, nat, genSink, codegen.Options{Verbose: opts.Verbose})
	prog, err := gen.Generate(top)
	if err != nil {
		return nil, nil, err
	}

	var dbg *DebugInfo
	if opts.EmitDebugInfo {
		dbg = &DebugInfo{Lines: prog.Lines}
	}
	return prog, dbg, nil
}

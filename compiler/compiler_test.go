package compiler

import (
	"testing"

	"github.com/fdanielsen/lobster/ast"
	"github.com/fdanielsen/lobster/natives"
	"github.com/fdanielsen/lobster/symtab"
	"github.com/fdanielsen/lobster/types"
	"github.com/stretchr/testify/require"
)

func TestCompileRunsTypecheckThenCodegen(t *testing.T) {
	var vars types.Vars
	syms := symtab.NewTable(&vars)

	lit3 := ast.NewIntLit(ast.Pos{Line: 1}, 3)
	lit4 := ast.NewFloatLit(ast.Pos{Line: 1}, 4.0)
	add := ast.NewBinary(ast.Pos{Line: 1}, ast.Add, lit3, lit4)

	prog, err := Compile([]ast.Node{add}, syms, natives.SliceCatalog(nil), Options{})
	require.NoError(t, err)
	require.NotNil(t, prog)
	// typecheck must have run first: the left operand is coerced to
	// float before codegen ever sees it.
	_, ok := add.L.(*ast.Coerce)
	require.True(t, ok)
}

func TestCompileWithDebugInfoReturnsLineTable(t *testing.T) {
	var vars types.Vars
	syms := symtab.NewTable(&vars)
	lit := ast.NewIntLit(ast.Pos{Line: 1}, 1)

	_, dbg, err := CompileWithDebugInfo([]ast.Node{lit}, syms, natives.SliceCatalog(nil), Options{EmitDebugInfo: true})
	require.NoError(t, err)
	require.NotNil(t, dbg)
	require.NotEmpty(t, dbg.Lines, "the generator must actually record a line-info entry")
	require.Equal(t, 1, dbg.Lines[0].Line)
}

func TestCompileFailsOnNonLvalueAssignTarget(t *testing.T) {
	var vars types.Vars
	syms := symtab.NewTable(&vars)

	// The checker accepts Int = Int; the literal target is rejected by
	// codegen's lvalue check, and Compile returns that error.
	lval := ast.NewIntLit(ast.Pos{Line: 1}, 1)
	assign := ast.NewAssign(ast.Pos{Line: 1}, lval, ast.NewIntLit(ast.Pos{Line: 1}, 2))

	_, err := Compile([]ast.Node{assign}, syms, natives.SliceCatalog(nil), Options{})
	require.Error(t, err)
}

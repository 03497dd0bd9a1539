package codegen

import (
	"testing"

	"github.com/fdanielsen/lobster/ast"
	"github.com/fdanielsen/lobster/internal/diag"
	"github.com/fdanielsen/lobster/natives"
	"github.com/fdanielsen/lobster/opcode"
	"github.com/stretchr/testify/require"
)

func TestGenCoroutineWithoutYieldFails(t *testing.T) {
	g, _ := newGenerator()
	body := ast.NewIntLit(ast.Pos{Line: 1}, 1)
	coro := ast.NewCoroutine(ast.Pos{Line: 1}, body)

	_, err := g.Generate([]ast.Node{coro})
	require.Error(t, err)
	require.ErrorIs(t, err, diag.ErrCoroutineConstruct)
}

func TestGenCoroutineWithYieldEmitsCoroAndCoend(t *testing.T) {
	g, _ := newGenerator()
	g.Natives = natives.SliceCatalog{{Name: "yield", Idx: 0}}
	yieldCall := ast.NewNatCall(ast.Pos{Line: 1}, 0, nil)
	coro := ast.NewCoroutine(ast.Pos{Line: 1}, yieldCall)

	prog, err := g.Generate([]ast.Node{coro})
	require.NoError(t, err)

	ops := opsOf(prog.Code)
	require.Contains(t, ops, opcode.CORO)
	require.Contains(t, ops, opcode.COEND)
	require.Contains(t, ops, opcode.BCALL)
}

func TestGenCoroutineCapturesLiveIdents(t *testing.T) {
	g, _ := newGenerator()
	g.Natives = natives.SliceCatalog{{Name: "yield", Idx: 0}}
	x := ast.NewIdent(ast.Pos{Line: 1}, "x", 3)
	yieldCall := ast.NewNatCall(ast.Pos{Line: 1}, 0, []ast.Node{x})
	coro := ast.NewCoroutine(ast.Pos{Line: 1}, yieldCall)

	prog, err := g.Generate([]ast.Node{coro})
	require.NoError(t, err)
	require.Contains(t, opsOf(prog.Code), opcode.CORO)
	// CORO end-offset, live count, then each captured identifier index.
	code := stripFieldTables(prog.Code)
	require.Equal(t, int32(opcode.CORO), code[0])
	require.Equal(t, int32(1), code[2])
	require.Equal(t, int32(3), code[3])
}

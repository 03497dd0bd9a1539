package codegen

import (
	"testing"

	"github.com/fdanielsen/lobster/ast"
	"github.com/fdanielsen/lobster/internal/diag"
	"github.com/fdanielsen/lobster/natives"
	"github.com/fdanielsen/lobster/opcode"
	"github.com/fdanielsen/lobster/symtab"
	"github.com/fdanielsen/lobster/types"
	"github.com/stretchr/testify/require"
)

func newGenerator() (*Generator, *symtab.Table) {
	var vars types.Vars
	syms := symtab.NewTable(&vars)
	g := New(syms, natives.SliceCatalog(nil), diag.NewSink(nil), Options{})
	return g, syms
}

// stripFieldTables drops the leading FIELDTABLES n header every
// Generate() call emits, so statement-level assertions don't have to
// account for it.
func stripFieldTables(code []int32) []int32 {
	size := int(code[1])
	return code[2+size:]
}

func TestGenerateIntLiteralStatementIsElided(t *testing.T) {
	g, _ := newGenerator()
	lit := ast.NewIntLit(ast.Pos{Line: 1}, 42)
	prog, err := g.Generate([]ast.Node{lit})
	require.NoError(t, err)
	require.Equal(t, []int32{int32(opcode.EXIT)}, stripFieldTables(prog.Code))
}

func TestGenerateBinaryIntAdd(t *testing.T) {
	g, _ := newGenerator()
	lhs := ast.NewIntLit(ast.Pos{Line: 1}, 1)
	rhs := ast.NewIntLit(ast.Pos{Line: 1}, 2)
	lhs.SetExpType(types.IntT())
	rhs.SetExpType(types.IntT())
	bin := ast.NewBinary(ast.Pos{Line: 1}, ast.Add, lhs, rhs)
	bin.SetExpType(types.IntT())

	prog, err := g.Generate([]ast.Node{bin})
	require.NoError(t, err)
	code := stripFieldTables(prog.Code)

	require.Equal(t, int32(opcode.PUSHINT), code[0])
	require.Equal(t, int32(opcode.PUSHINT), code[3])
	require.Equal(t, int32(opcode.IADD), code[6])
	// the sum is a statement-position value with no further use, so it
	// is popped before EXIT.
	require.Equal(t, int32(opcode.POP), code[7])
	require.Equal(t, int32(opcode.EXIT), code[8])
}

func TestGenerateIfBothBranchesPushOneValue(t *testing.T) {
	g, _ := newGenerator()
	cond := ast.NewIntLit(ast.Pos{Line: 1}, 1)
	then := ast.NewIntLit(ast.Pos{Line: 1}, 2)
	els := ast.NewIntLit(ast.Pos{Line: 1}, 3)
	ifNode := ast.NewIf(ast.Pos{Line: 1}, cond, then, els)

	prog, err := g.Generate([]ast.Node{ifNode})
	require.NoError(t, err)
	require.Contains(t, opsOf(stripFieldTables(prog.Code)), opcode.JUMPFAIL)
	require.Contains(t, opsOf(stripFieldTables(prog.Code)), opcode.JUMP)
	// Each branch pushes exactly one PUSHINT; the if's single value is
	// then popped in statement position. Jump targets are absolute and
	// include the two-word FIELDTABLES header.
	require.Equal(t, []int32{
		int32(opcode.PUSHINT), 0, 1,
		int32(opcode.JUMPFAIL), 12,
		int32(opcode.PUSHINT), 0, 2,
		int32(opcode.JUMP), 15,
		int32(opcode.PUSHINT), 0, 3,
		int32(opcode.POP),
		int32(opcode.EXIT),
	}, stripFieldTables(prog.Code))
}

func TestGenerateWhileLoopJumpsBack(t *testing.T) {
	g, _ := newGenerator()
	cond := ast.NewIntLit(ast.Pos{Line: 1}, 1)
	body := ast.NewIntLit(ast.Pos{Line: 1}, 2)
	loop := ast.NewWhile(ast.Pos{Line: 1}, cond, body)

	prog, err := g.Generate([]ast.Node{loop})
	require.NoError(t, err)
	ops := opsOf(stripFieldTables(prog.Code))
	require.Contains(t, ops, opcode.JUMPFAIL)
	require.Contains(t, ops, opcode.JUMP)
	require.Contains(t, ops, opcode.PUSHUNDEF)
}

func TestGenerateCoroutineAtReadEmitsPushloc(t *testing.T) {
	g, _ := newGenerator()
	co := ast.NewIdent(ast.Pos{Line: 1}, "co", 0)
	at := ast.NewCoroutineAt(ast.Pos{Line: 1}, co, 3)
	at.SetExpType(types.AnyT())

	prog, err := g.Generate([]ast.Node{ast.NewAssign(ast.Pos{Line: 1}, ast.NewIdent(ast.Pos{Line: 1}, "x", 1), at)})
	require.NoError(t, err)
	ops := opsOf(stripFieldTables(prog.Code))
	require.Contains(t, ops, opcode.PUSHLOC)
}

func TestGenerateCoroutineAtWriteEmitsLvalloc(t *testing.T) {
	g, _ := newGenerator()
	co := ast.NewIdent(ast.Pos{Line: 1}, "co", 0)
	at := ast.NewCoroutineAt(ast.Pos{Line: 1}, co, 2)
	rhs := ast.NewIntLit(ast.Pos{Line: 1}, 5)
	assign := ast.NewAssign(ast.Pos{Line: 1}, at, rhs)

	prog, err := g.Generate([]ast.Node{assign})
	require.NoError(t, err)
	ops := opsOf(stripFieldTables(prog.Code))
	require.Contains(t, ops, opcode.LVALLOC)
}

func TestGenerateRecordsLineInfoOnLineChange(t *testing.T) {
	g, _ := newGenerator()
	first := ast.NewIntLit(ast.Pos{Line: 1, File: 0}, 1)
	second := ast.NewIntLit(ast.Pos{Line: 2, File: 0}, 2)
	prog, err := g.Generate([]ast.Node{ast.NewSeq(ast.Pos{Line: 1}, first, second)})
	require.NoError(t, err)
	require.Len(t, prog.Lines, 2, "one entry per distinct (line,file) the generator actually visited")
	require.Equal(t, 1, prog.Lines[0].Line)
	require.Equal(t, 2, prog.Lines[1].Line)
}

func opsOf(code []int32) []opcode.Op {
	out := make([]opcode.Op, len(code))
	for i, w := range code {
		out[i] = opcode.Op(w)
	}
	return out
}

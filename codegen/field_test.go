package codegen

import (
	"testing"

	"github.com/fdanielsen/lobster/ast"
	"github.com/fdanielsen/lobster/opcode"
	"github.com/fdanielsen/lobster/symtab"
	"github.com/stretchr/testify/require"
)

func TestClassifyFieldUniform(t *testing.T) {
	f := &symtab.SharedField{Name: "x", Offsets: []symtab.FieldOffset{{RecordIdx: 0, Offset: 2}, {RecordIdx: 1, Offset: 2}}}
	require.Equal(t, symtab.Uniform, classifyField(f))
}

func TestClassifyFieldConditional(t *testing.T) {
	f := &symtab.SharedField{Name: "x", Offsets: []symtab.FieldOffset{{RecordIdx: 0, Offset: 2}, {RecordIdx: 1, Offset: 2}, {RecordIdx: 2, Offset: 3}}}
	require.Equal(t, symtab.Conditional, classifyField(f))
}

func TestClassifyFieldTable(t *testing.T) {
	f := &symtab.SharedField{Name: "x", Offsets: []symtab.FieldOffset{{RecordIdx: 0, Offset: 1}, {RecordIdx: 1, Offset: 2}, {RecordIdx: 2, Offset: 3}}}
	require.Equal(t, symtab.Table, classifyField(f))
}

func TestGenFieldReadUniformEmitsSingleOperand(t *testing.T) {
	g, syms := newGenerator()
	syms.Fields = append(syms.Fields, &symtab.SharedField{
		Name:    "x",
		Offsets: []symtab.FieldOffset{{RecordIdx: 0, Offset: 2}},
	})
	recv := ast.NewIdent(ast.Pos{Line: 1}, "o", 0)
	access := ast.NewFieldAccess(ast.Pos{Line: 1}, recv, "x", false)

	prog, err := g.Generate([]ast.Node{access})
	require.NoError(t, err)

	ops := opsOf(prog.Code)
	require.Contains(t, ops, opcode.PUSHFLDO)
	// receiver read, PUSHFLDO with the one inline offset, then the
	// statement-position POP.
	require.Equal(t, []int32{
		int32(opcode.PUSHVAR), 0,
		int32(opcode.PUSHFLDO), 2,
		int32(opcode.POP),
		int32(opcode.EXIT),
	}, stripFieldTables(prog.Code))
}

func TestGenFieldReadTableModeReservesDispatchBlock(t *testing.T) {
	g, syms := newGenerator()
	syms.Fields = append(syms.Fields, &symtab.SharedField{
		Name: "x",
		Offsets: []symtab.FieldOffset{
			{RecordIdx: 0, Offset: 1},
			{RecordIdx: 1, Offset: 2},
			{RecordIdx: 2, Offset: 3},
		},
	})
	recv := ast.NewIdent(ast.Pos{Line: 1}, "o", 0)
	access := ast.NewFieldAccess(ast.Pos{Line: 1}, recv, "x", false)

	prog, err := g.Generate([]ast.Node{access})
	require.NoError(t, err)

	// FIELDTABLES, size=3 (one table entry per record up to idx 2, plus
	// the zero entries for any gaps), then the field read itself.
	require.Equal(t, int32(opcode.FIELDTABLES), prog.Code[0])
	ops := opsOf(prog.Code)
	require.Contains(t, ops, opcode.PUSHFLDT)
}

func TestGenFieldReadMissingFieldFails(t *testing.T) {
	g, _ := newGenerator()
	recv := ast.NewIdent(ast.Pos{Line: 1}, "o", 0)
	access := ast.NewFieldAccess(ast.Pos{Line: 1}, recv, "nope", false)

	_, err := g.Generate([]ast.Node{access})
	require.Error(t, err)
}

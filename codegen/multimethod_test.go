package codegen

import (
	"testing"

	"github.com/fdanielsen/lobster/internal/diag"
	"github.com/fdanielsen/lobster/opcode"
	"github.com/fdanielsen/lobster/symtab"
	"github.com/fdanielsen/lobster/types"
	"github.com/stretchr/testify/require"
)

func TestGenMultimethodSortsByArgType(t *testing.T) {
	g, syms := newGenerator()
	fn := syms.AddFunction(&symtab.Function{Name: "f", Multimethod: true, NArgs: 1})
	subStr := &symtab.SubFunction{Parent: fn, Args: []symtab.Field{{Type: types.StringT()}}, Typechecked: true}
	subInt := &symtab.SubFunction{Parent: fn, Args: []symtab.Field{{Type: types.IntT()}}, Typechecked: true}
	fn.Subs = []*symtab.SubFunction{subStr, subInt}

	// Generate always emits the FIELDTABLES header before any function,
	// so no function body starts at offset 0; mirror that here.
	g.genFieldTables()
	g.genFunction(fn)
	require.NoError(t, g.Sink.Err)
	require.NotZero(t, fn.BytecodeStart)
	require.NotZero(t, subStr.SubBytecodeStart)
	require.NotZero(t, subInt.SubBytecodeStart)

	require.Contains(t, opsOf(g.prog.Code), opcode.FUNMULTI)
	// FUNMULTI nsubs nargs, then (tag, idx, start) per overload: the Int
	// overload sorts before the String one although it was declared second.
	hdr := g.prog.Code[fn.BytecodeStart:]
	require.Equal(t, int32(opcode.FUNMULTI), hdr[0])
	require.Equal(t, int32(types.Int), hdr[3])
	require.Equal(t, int32(subInt.SubBytecodeStart), hdr[5])
	require.Equal(t, int32(types.String), hdr[6])
	require.Equal(t, int32(subStr.SubBytecodeStart), hdr[8])
}

func TestGenMultimethodAmbiguousOverlapFails(t *testing.T) {
	g, syms := newGenerator()
	fn := syms.AddFunction(&symtab.Function{Name: "f", Multimethod: true, NArgs: 1})
	sub1 := &symtab.SubFunction{Parent: fn, Args: []symtab.Field{{Type: types.IntT()}}, Typechecked: true}
	sub2 := &symtab.SubFunction{Parent: fn, Args: []symtab.Field{{Type: types.IntT()}}, Typechecked: true}
	fn.Subs = []*symtab.SubFunction{sub1, sub2}

	g.genFunction(fn)
	require.Error(t, g.Sink.Err)
	require.ErrorIs(t, g.Sink.Err, diag.ErrMultiDispatchAmbig)
}

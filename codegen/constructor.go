package codegen

import (
	"github.com/fdanielsen/lobster/ast"
	"github.com/fdanielsen/lobster/opcode"
	"github.com/fdanielsen/lobster/types"
)

// genConstructor implements spec.md §4.3/§4.4's Constructor rule:
// each element is pushed and, where the target record's field has a
// concrete (non-Any) type, followed by a runtime type-check op; the
// optional superclass value is pushed first with PUSHPARENT. NEWVEC
// then closes the vector, tagged with ResolvedStructIdx (-1 for an
// untyped vector literal).
func (g *Generator) genConstructor(v *ast.Constructor) {
	structIdx := v.ResolvedStructIdx
	nfields := len(v.Elems)

	fieldOffset := 0
	if v.Super != nil {
		g.genExpr(v.Super)
		g.prog.Op(int32(opcode.PUSHPARENT))
		g.prog.Int(int32(structIdx))
		nfields++
		fieldOffset = 1
	}

	var fields []types.Type
	if structIdx >= 0 {
		rec := g.Syms.Record(structIdx)
		for _, f := range rec.Fields {
			fields = append(fields, f.Type)
		}
	}

	for i, e := range v.Elems {
		g.genExpr(e)
		fi := fieldOffset + i
		if fi < len(fields) {
			g.genFieldTypeCheck(fields[fi], fi)
		}
	}

	g.prog.Op(int32(opcode.NEWVEC))
	g.prog.Int(int32(structIdx))
	g.prog.Int(int32(nfields))
}

// genFieldTypeCheck emits the runtime type-check instruction a
// concrete-typed constructor field needs (spec.md §4.3): TT/TTFLT/
// TTSTR for the scalar kinds, TTSTRUCT for a struct field, or
// PUSHONCE (no check, single evaluation already done) for anything
// else, including Any-typed fields left unspecialized.
func (g *Generator) genFieldTypeCheck(t types.Type, fieldIdx int) {
	switch t.Kind {
	case types.Int:
		g.prog.Op(int32(opcode.TT))
		g.prog.Int(int32(fieldIdx))
	case types.Float:
		g.prog.Op(int32(opcode.TTFLT))
		g.prog.Int(int32(fieldIdx))
	case types.String:
		g.prog.Op(int32(opcode.TTSTR))
		g.prog.Int(int32(fieldIdx))
	case types.Struct:
		g.prog.Op(int32(opcode.TTSTRUCT))
		g.prog.Int(int32(fieldIdx))
		g.prog.Int(int32(t.Idx))
	default:
		g.prog.Op(int32(opcode.PUSHONCE))
	}
}

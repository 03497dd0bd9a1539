package codegen

import (
	"github.com/fdanielsen/lobster/ast"
	"github.com/fdanielsen/lobster/internal/diag"
	"github.com/fdanielsen/lobster/opcode"
	"github.com/fdanielsen/lobster/symtab"
)

// findSharedField looks up the module-wide SharedField backing a dot
// access by name; field dispatch (spec.md §4.5) is keyed on the field
// name across every record that carries it, not on any one record.
func (g *Generator) findSharedField(name string) *symtab.SharedField {
	for _, f := range g.Syms.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// genFieldRead implements the read half of spec.md §4.5: recurse into
// the receiver, then PUSHFLDx (or PUSHFLDMx for `.?`), followed by
// the selected encoding's inline operands.
func (g *Generator) genFieldRead(v *ast.FieldAccess) {
	g.genExpr(v.X)
	f := g.findSharedField(v.Field)
	if f == nil {
		g.fail(v, diag.ErrFieldAbsent, "no shared-field entry for %q", v.Field)
		return
	}
	mode, operands := g.fieldDispatchOperands(f)
	base := opcode.PUSHFLDO
	if v.Maybe {
		base = opcode.PUSHFLDMO
	}
	g.prog.Op(int32(base) + int32(mode))
	for _, o := range operands {
		g.prog.Int(o)
	}
}

// genLvalField implements the lvalue half of spec.md §4.5:
// LVALFLDO+om, the lvalue sub-op, then the encoding's operands. The
// object value must already be on the stack (genLvalOp emits it).
func (g *Generator) genLvalField(v *ast.FieldAccess, op opcode.LvalOp) {
	f := g.findSharedField(v.Field)
	if f == nil {
		g.fail(v, diag.ErrFieldAbsent, "no shared-field entry for %q", v.Field)
		return
	}
	mode, operands := g.fieldDispatchOperands(f)
	g.prog.Op(int32(opcode.LVALFLDO) + int32(mode))
	g.prog.Int(int32(op))
	for _, o := range operands {
		g.prog.Int(o)
	}
}

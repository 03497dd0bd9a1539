package codegen

import (
	"github.com/fdanielsen/lobster/ast"
	"github.com/fdanielsen/lobster/internal/diag"
	"github.com/fdanielsen/lobster/opcode"
)

// genLvalOp implements GenAssign (spec.md §4.4): if a result is
// wanted the op is bumped to its read-back twin, the RHS (if any) is
// emitted, and then the lvalue-specific write instruction follows the
// object/index prerequisites its shape requires.
func (g *Generator) genLvalOp(lval ast.Node, op opcode.LvalOp, wantResult bool, rhs ast.Node) {
	if wantResult {
		op = op.ReadBack()
	}
	if rhs != nil {
		g.genExpr(rhs)
	}
	switch v := lval.(type) {
	case *ast.Ident:
		g.prog.Op(int32(opcode.LVALVAR))
		g.prog.Int(int32(op))
		g.prog.Int(int32(v.Idx))
	case *ast.FieldAccess:
		g.genExpr(v.X)
		g.genLvalField(v, op)
	case *ast.Index:
		g.genExpr(v.X)
		g.genExpr(v.I)
		g.prog.Op(int32(opcode.LVALIDX))
		g.prog.Int(int32(op))
	case *ast.CoroutineAt:
		g.genExpr(v.X)
		g.prog.Op(int32(opcode.LVALLOC))
		g.prog.Int(int32(op))
		g.prog.Int(int32(v.Idx))
	default:
		g.fail(lval, diag.ErrLvalueRequired, "%T is not a valid assignment target", lval)
	}
}

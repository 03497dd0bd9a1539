package codegen

import (
	"github.com/fdanielsen/lobster/ast"
	"github.com/fdanielsen/lobster/internal/diag"
	"github.com/fdanielsen/lobster/opcode"
	"github.com/fdanielsen/lobster/types"
)

// genStmt lowers n in statement position (its value, if any, is not
// needed by anything).
func (g *Generator) genStmt(n ast.Node) { g.genValue(n, 0) }

// genExpr lowers n in a single-value expression position.
func (g *Generator) genExpr(n ast.Node) { g.genValue(n, 1) }

// genValue lowers n, then performs the arity reconciliation of
// spec.md §4.4: pad with DUP 0 if n naturally supplied one value but
// want asked for more, or drop the excess with POP if it supplied
// more than asked.
func (g *Generator) genValue(n ast.Node, want int) {
	if !g.Sink.OK() || n == nil {
		return
	}
	pos := n.Pos()
	g.prog.MarkLine(pos.Line, pos.File)
	if want == 0 && isElidable(n) {
		return
	}
	supplied := g.lower(n, want)
	g.reconcile(n, supplied, want)
}

// isElidable reports whether n is a side-effect-free literal/read
// whose value can simply be skipped in a discarded statement position
// (spec.md §4.4: "literals push ...; or are elided when the value is
// unused").
func isElidable(n ast.Node) bool {
	switch n.(type) {
	case *ast.IntLit, *ast.FloatLit, *ast.StringLit, *ast.NilLit, *ast.Ident:
		return true
	}
	return false
}

func (g *Generator) reconcile(n ast.Node, supplied, want int) {
	if supplied == want {
		return
	}
	if supplied == 1 && want > 1 {
		for i := 0; i < want-1; i++ {
			g.prog.Op(int32(opcode.DUP))
			g.prog.Int(0)
		}
		return
	}
	if supplied > want {
		for i := 0; i < supplied-want; i++ {
			g.prog.Op(int32(opcode.POP))
		}
		return
	}
	g.fail(n, diag.ErrArityMismatch, "expected %d value(s), only %d supplied", want, supplied)
}

// lower emits n's instructions and returns how many values it
// naturally leaves on the stack before reconciliation against want.
func (g *Generator) lower(n ast.Node, want int) int {
	switch v := n.(type) {
	case *ast.IntLit:
		g.prog.Op(int32(opcode.PUSHINT))
		g.prog.Int64(v.Value)
		return 1
	case *ast.FloatLit:
		g.prog.Op(int32(opcode.PUSHFLT))
		g.prog.Float(v.Value)
		return 1
	case *ast.StringLit:
		g.prog.Op(int32(opcode.PUSHSTR))
		g.prog.String(v.Value)
		return 1
	case *ast.NilLit:
		g.prog.Op(int32(opcode.PUSHNIL))
		return 1
	case *ast.Ident:
		g.prog.Op(int32(opcode.PUSHVAR))
		g.prog.Int(int32(v.Idx))
		return 1
	case *ast.Coerce:
		g.genExpr(v.X)
		if v.Kind == ast.CoerceI2F {
			g.prog.Op(int32(opcode.I2F))
		} else {
			g.prog.Op(int32(opcode.A2S))
		}
		return 1
	case *ast.UnaryMinus:
		g.genExpr(v.X)
		g.prog.Op(int32(opcode.UMINUS))
		return 1
	case *ast.LogNot:
		g.genExpr(v.X)
		g.prog.Op(int32(opcode.LOGNOT))
		return 1
	case *ast.IncDec:
		return g.genIncDec(v, want)
	case *ast.CompoundAssign:
		return g.genCompoundAssign(v, want)
	case *ast.Binary:
		return g.genBinary(v)
	case *ast.Def:
		return g.genDef(v)
	case *ast.Assign:
		return g.genAssign(v, want)
	case *ast.AssignList:
		return g.genAssignList(v)
	case *ast.FieldAccess:
		g.genFieldRead(v)
		return 1
	case *ast.Index:
		g.genExpr(v.X)
		g.genExpr(v.I)
		g.prog.Op(int32(opcode.PUSHIDX))
		return 1
	case *ast.Constructor:
		g.genConstructor(v)
		return 1
	case *ast.Is:
		g.genExpr(v.X)
		tag, idx := dispatchTag(v.TestType)
		g.prog.Op(int32(opcode.ISTYPE))
		g.prog.Int(int32(tag))
		g.prog.Int(int32(idx))
		return 1
	case *ast.If:
		return g.genIf(v)
	case *ast.While:
		return g.genWhile(v)
	case *ast.For:
		return g.genFor(v)
	case *ast.Return:
		return g.genReturn(v)
	case *ast.And:
		return g.genAnd(v)
	case *ast.Or:
		return g.genOr(v)
	case *ast.Seq:
		g.genStmt(v.L)
		g.genValue(v.R, want)
		return want
	case *ast.List:
		return g.genList(v, want)
	case *ast.MultiRet:
		for _, e := range v.Elems {
			g.genExpr(e)
		}
		return len(v.Elems)
	case *ast.Call:
		return g.genCall(v, want)
	case *ast.DynCall:
		return g.genDynCall(v, want)
	case *ast.NatCall:
		return g.genNatCall(v, want)
	case *ast.FuncVal:
		return g.genFuncVal(v)
	case *ast.CoClosure:
		g.prog.Op(int32(opcode.COCL))
		return 1
	case *ast.Coroutine:
		return g.genCoroutine(v)
	case *ast.CoroutineAt:
		g.genExpr(v.X)
		g.prog.Op(int32(opcode.PUSHLOC))
		g.prog.Int(int32(v.Idx))
		return 1
	default:
		g.fail(n, diag.ErrTypeMismatch, "unhandled node kind %T in codegen", n)
		return 0
	}
}

func (g *Generator) genList(v *ast.List, want int) int {
	if len(v.Stmts) == 0 {
		for i := 0; i < want; i++ {
			g.prog.Op(int32(opcode.PUSHUNDEF))
		}
		return want
	}
	for _, s := range v.Stmts[:len(v.Stmts)-1] {
		g.genStmt(s)
	}
	g.genValue(v.Stmts[len(v.Stmts)-1], want)
	return want
}

// genBinary implements spec.md §4.2/§4.4's numeric-binary-operator
// lowering: the opcode is chosen from the left operand's final (post-
// coercion) type kind, which is always Int, Float, or the catch-all
// Any-run (vector/struct/string/nilable).
func (g *Generator) genBinary(v *ast.Binary) int {
	g.genExpr(v.L)
	g.genExpr(v.R)
	kind := arithKindOf(g.Syms.Vars.Promote(v.L.ExpType()))
	base := opcode.ArithBase(kind)
	g.prog.Op(int32(base) + int32(v.Op))
	return 1
}

func arithKindOf(t types.Type) opcode.ArithKind {
	switch t.Kind {
	case types.Int:
		return opcode.ArithInt
	case types.Float:
		return opcode.ArithFloat
	default:
		return opcode.ArithAny
	}
}

func (g *Generator) genIncDec(v *ast.IncDec, want int) int {
	var op opcode.LvalOp
	switch {
	case v.Inc && !v.Post:
		op = opcode.PP
	case !v.Inc && !v.Post:
		op = opcode.MM
	case v.Inc && v.Post:
		op = opcode.PPP
	default:
		op = opcode.MMP
	}
	wantResult := want > 0
	g.genLvalOp(v.X, op, wantResult, nil)
	if wantResult {
		return 1
	}
	return 0
}

func (g *Generator) genCompoundAssign(v *ast.CompoundAssign, want int) int {
	var op opcode.LvalOp
	switch v.Op {
	case ast.CPlus:
		op = opcode.PLUS
	case ast.CMinus:
		op = opcode.SUB
	case ast.CMul:
		op = opcode.MUL
	case ast.CDiv:
		op = opcode.DIV
	case ast.CMod:
		op = opcode.MOD
	}
	wantResult := want > 0
	g.genLvalOp(v.LHS, op, wantResult, v.RHS)
	if wantResult {
		return 1
	}
	return 0
}

func (g *Generator) genAssign(v *ast.Assign, want int) int {
	wantResult := want > 0
	g.genLvalOp(v.LHS, opcode.WRITE, wantResult, v.RHS)
	if wantResult {
		return 1
	}
	return 0
}

func (g *Generator) genDef(v *ast.Def) int {
	want := len(v.Idents)
	g.genValue(v.RHS, want)
	for i := len(v.Idents) - 1; i >= 0; i-- {
		id := v.Idents[i]
		if i < len(v.Logvars) && v.Logvars[i] {
			g.prog.Op(int32(opcode.LOGREAD))
			g.prog.Int(int32(id.Idx))
		}
		g.prog.Op(int32(opcode.LVALVAR))
		g.prog.Int(int32(opcode.WRITED))
		g.prog.Int(int32(id.Idx))
	}
	return 0
}

func (g *Generator) genAssignList(v *ast.AssignList) int {
	want := len(v.LHS)
	g.genValue(v.RHS, want)
	for i := len(v.LHS) - 1; i >= 0; i-- {
		g.genLvalOp(v.LHS[i], opcode.WRITE, false, nil)
	}
	return 0
}

func (g *Generator) genIf(v *ast.If) int {
	g.genExpr(v.Cond)
	g.prog.Op(int32(opcode.JUMPFAIL))
	failJmp := g.prog.Reserve()
	g.genExpr(v.Then)
	g.prog.Op(int32(opcode.JUMP))
	endJmp := g.prog.Reserve()
	g.prog.PatchAt(failJmp, int32(g.prog.Len()))
	if v.Else != nil {
		g.genExpr(v.Else)
	} else {
		g.prog.Op(int32(opcode.PUSHUNDEF))
	}
	g.prog.PatchAt(endJmp, int32(g.prog.Len()))
	return 1
}

func (g *Generator) genAnd(v *ast.And) int {
	g.genExpr(v.L)
	g.prog.Op(int32(opcode.JUMPFAILR))
	endJmp := g.prog.Reserve()
	g.prog.Op(int32(opcode.POP))
	g.genExpr(v.R)
	g.prog.PatchAt(endJmp, int32(g.prog.Len()))
	return 1
}

func (g *Generator) genOr(v *ast.Or) int {
	g.genExpr(v.L)
	g.prog.Op(int32(opcode.JUMPNOFAILR))
	endJmp := g.prog.Reserve()
	g.prog.Op(int32(opcode.POP))
	g.genExpr(v.R)
	g.prog.PatchAt(endJmp, int32(g.prog.Len()))
	return 1
}

func (g *Generator) genWhile(v *ast.While) int {
	loopStart := g.prog.Len()
	g.genExpr(v.Cond)
	g.prog.Op(int32(opcode.JUMPFAIL))
	exitJmp := g.prog.Reserve()
	g.genExpr(v.Body)
	g.prog.Op(int32(opcode.POP))
	g.prog.Op(int32(opcode.JUMP))
	g.prog.Int(int32(loopStart))
	g.prog.PatchAt(exitJmp, int32(g.prog.Len()))
	g.prog.Op(int32(opcode.PUSHUNDEF))
	return 1
}

func (g *Generator) genFor(v *ast.For) int {
	g.prog.Op(int32(opcode.PUSHINT))
	g.prog.Int64(-1)
	g.genExpr(v.Iter)
	g.genExpr(v.Body)
	g.prog.Op(int32(opcode.PUSHUNDEF))
	g.prog.Op(int32(opcode.FOR))
	return 1
}

func (g *Generator) genReturn(v *ast.Return) int {
	funcIdx := -1
	var retCount int
	if v.FuncIdx >= 0 {
		fn := g.Syms.Function(v.FuncIdx)
		funcIdx = fn.Idx
		if len(fn.Subs[0].ReturnTypes) > 0 {
			retCount = len(fn.Subs[0].ReturnTypes)
		}
	} else if g.curFunc != nil {
		funcIdx = g.curFunc.Idx
		if g.curSub != nil && len(g.curSub.ReturnTypes) > 0 {
			retCount = len(g.curSub.ReturnTypes)
		}
	}
	if v.X == nil {
		g.prog.Op(int32(opcode.PUSHUNDEF))
	} else {
		want := 1
		if retCount > want {
			want = retCount
		}
		g.genValue(v.X, want)
	}
	g.prog.Op(int32(opcode.RETURN))
	g.prog.Int(int32(funcIdx))
	return 0
}

package codegen

import (
	"github.com/fdanielsen/lobster/ast"
	"github.com/fdanielsen/lobster/opcode"
)

// emitStaticCall implements the statically-resolved half of spec.md
// §4.4's Call rule shared by *ast.Call and the statically-resolvable
// branch of *ast.DynCall: CALL/CALLMULTI nargs funcidx target,
// incrementing the callee's ncalls and recording the call-site fixup.
func (g *Generator) emitStaticCall(nargs, funcIdx, subIdx int, multimethod bool, want int) int {
	fn := g.Syms.Function(funcIdx)
	fn.NCalls++

	op := opcode.CALL
	fixSub := subIdx
	if multimethod {
		op = opcode.CALLMULTI
		fixSub = -1
	}
	g.prog.Op(int32(op))
	g.prog.Int(int32(nargs))
	g.prog.Int(int32(funcIdx))
	off := g.prog.Reserve()
	g.fixups = append(g.fixups, fixup{offset: off, funcIdx: funcIdx, subIdx: fixSub})

	supplied := 1
	if subIdx >= 0 && subIdx < len(fn.Subs) {
		sub := fn.Subs[subIdx]
		if len(sub.ReturnTypes) > 0 {
			supplied = len(sub.ReturnTypes)
		}
		if supplied > 1 && want > sub.MaxRetsRequested {
			sub.MaxRetsRequested = want
		}
	}
	return supplied
}

func (g *Generator) genCall(v *ast.Call, want int) int {
	for _, a := range v.Args {
		g.genExpr(a)
	}
	return g.emitStaticCall(len(v.Args), v.ResolvedFuncIdx, v.ResolvedSubIdx, v.Multimethod, want)
}

// genDynCall implements spec.md §4.4's DynCall rule: a statically-
// known, non-istype callee lowers its function value for side effect
// only and falls through to a static call; otherwise args and the
// callee value are pushed and CALLV dispatches at runtime.
func (g *Generator) genDynCall(v *ast.DynCall, want int) int {
	if v.ResolvedFuncIdx >= 0 {
		fn := g.Syms.Function(v.ResolvedFuncIdx)
		if !fn.IsType {
			g.genExpr(v.Callee)
			g.prog.Op(int32(opcode.POP))
			for _, a := range v.Args {
				g.genExpr(a)
			}
			return g.emitStaticCall(len(v.Args), v.ResolvedFuncIdx, v.ResolvedSubIdx, v.Multimethod, want)
		}
	}
	for _, a := range v.Args {
		g.genExpr(a)
	}
	g.genExpr(v.Callee)
	g.prog.Op(int32(opcode.CALLV))
	g.prog.Int(int32(len(v.Args)))
	return 1
}

// genNatCall implements spec.md §4.4's NatCall rule: BCALL nfidx
// nargs, plus a CALLVCOND/CONT1 pair for a ContExit-tagged builtin
// whose last argument was not the literal nil.
func (g *Generator) genNatCall(v *ast.NatCall, want int) int {
	for _, a := range v.Args {
		g.genExpr(a)
	}
	sig := g.Natives.Native(v.NativeIdx)
	g.prog.Op(int32(opcode.BCALL))
	g.prog.Int(int32(v.NativeIdx))
	g.prog.Int(int32(len(v.Args)))

	if sig != nil && sig.ContExit {
		lastIsNil := false
		if len(v.Args) > 0 {
			_, lastIsNil = v.Args[len(v.Args)-1].(*ast.NilLit)
		}
		if !lastIsNil {
			g.prog.Op(int32(opcode.CALLVCOND))
			g.prog.Int(0)
			g.prog.Op(int32(opcode.CONT1))
			g.prog.Int(int32(v.NativeIdx))
		}
	}

	if sig != nil && len(sig.Rets) > 0 {
		return len(sig.Rets)
	}
	return 1
}

// genFuncVal implements spec.md §4.4's "Function definition as a
// value" rule: an anonymous literal is generated in place and its
// PUSHFUN target back-patched; a named function value defers to the
// call site and pushes a placeholder.
func (g *Generator) genFuncVal(v *ast.FuncVal) int {
	if v.Anonymous {
		g.prog.Op(int32(opcode.PUSHFUN))
		targetOff := g.prog.Reserve()
		fn := g.Syms.Function(v.FuncIdx)
		sub := fn.Subs[v.SubIdx]
		g.genSubFunction(fn, sub)
		g.prog.PatchAt(targetOff, int32(sub.SubBytecodeStart))
		return 1
	}
	g.prog.Op(int32(opcode.PUSHUNDEF))
	return 1
}

package codegen

import (
	"github.com/fdanielsen/lobster/ast"
	"github.com/fdanielsen/lobster/opcode"
	"github.com/fdanielsen/lobster/symtab"
)

// genFunction implements the Function-emission rule of spec.md §4.4:
// non-multimethod functions set bytecodestart and emit every
// typechecked SubFunction in chain order; multimethods emit every
// sub's body first, then a sorted dispatch header.
func (g *Generator) genFunction(fn *symtab.Function) {
	if fn.Multimethod {
		g.genMultimethod(fn)
		return
	}
	fn.BytecodeStart = g.prog.Len()
	for _, sub := range fn.Subs {
		if !sub.Typechecked {
			continue
		}
		g.genSubFunction(fn, sub)
	}
}

// genMultimethod emits every overload's body, then FUNMULTI nsubs
// nargs followed by one (type-tag,type-idx)×nargs,subbytecodestart
// record per overload, in the sfcompare-sorted order (spec.md §4.4).
func (g *Generator) genMultimethod(fn *symtab.Function) {
	typechecked := make([]*symtab.SubFunction, 0, len(fn.Subs))
	for _, sub := range fn.Subs {
		if sub.Typechecked {
			typechecked = append(typechecked, sub)
		}
	}
	for _, sub := range typechecked {
		g.genSubFunction(fn, sub)
	}
	fn.BytecodeStart = g.prog.Len()
	sorted := g.sortMultimethod(nil, fn.Name, typechecked)
	g.prog.Op(int32(opcode.FUNMULTI))
	g.prog.Int(int32(len(sorted)))
	g.prog.Int(int32(fn.NArgs))
	for _, sub := range sorted {
		for i := 0; i < fn.NArgs; i++ {
			var tag, idx int32
			if i < len(sub.Args) {
				k, ti := dispatchTag(sub.Args[i].Type)
				tag, idx = int32(k), int32(ti)
			}
			g.prog.Int(tag)
			g.prog.Int(idx)
		}
		g.prog.Int(int32(sub.SubBytecodeStart))
	}
}

// collectLocals implements the "walk the body to collect definitions
// and logvars" rule of spec.md §4.4. It descends into nested control
// structures (If/While/For/Seq/List bodies) but not into nested
// function-value or coroutine bodies, which own their own FUNSTART
// frame. Multi-target Def statements contribute their logvar indices
// in reverse order, matching runtime stack-unwind order.
func collectLocals(body []ast.Node) (defs, logvars []int) {
	var walk func(n ast.Node)
	walk = func(n ast.Node) {
		switch v := n.(type) {
		case *ast.Def:
			var stmtLogvars []int
			for i, id := range v.Idents {
				if i < len(v.Logvars) && v.Logvars[i] {
					stmtLogvars = append(stmtLogvars, id.Idx)
				} else {
					defs = append(defs, id.Idx)
				}
			}
			for i := len(stmtLogvars) - 1; i >= 0; i-- {
				logvars = append(logvars, stmtLogvars[i])
			}
			walk(v.RHS)
		case *ast.If:
			walk(v.Cond)
			walk(v.Then)
			if v.Else != nil {
				walk(v.Else)
			}
		case *ast.While:
			walk(v.Cond)
			walk(v.Body)
		case *ast.For:
			defs = append(defs, v.ElemIdx, v.IdxIdx)
			walk(v.Iter)
			walk(v.Body)
		case *ast.Seq:
			walk(v.L)
			walk(v.R)
		case *ast.List:
			for _, s := range v.Stmts {
				walk(s)
			}
		case *ast.AssignList:
			walk(v.RHS)
		case *ast.MultiRet:
			for _, e := range v.Elems {
				walk(e)
			}
		case *ast.Return:
			if v.X != nil {
				walk(v.X)
			}
		}
	}
	for _, n := range body {
		walk(n)
	}
	return defs, logvars
}

// genSubFunction implements the SubFunction-body-emission rule of
// spec.md §4.4: FUNSTART header (arg slots, local+logvar tables),
// body, FUNEND.
func (g *Generator) genSubFunction(fn *symtab.Function, sub *symtab.SubFunction) {
	sub.SubBytecodeStart = g.prog.Len()
	defs, logvars := collectLocals(sub.Body)

	g.prog.Op(int32(opcode.FUNSTART))
	g.prog.Int(int32(len(sub.Args)))
	for i := range sub.Args {
		g.prog.Int(int32(i))
	}
	g.prog.Int(int32(len(defs) + len(logvars)))
	for _, idx := range defs {
		g.prog.Int(int32(idx))
	}
	for _, idx := range logvars {
		g.prog.Int(int32(idx))
	}
	g.prog.Int(int32(len(logvars)))

	prevFunc, prevSub := g.curFunc, g.curSub
	g.curFunc, g.curSub = fn, sub
	for _, n := range sub.Body {
		if !g.Sink.OK() {
			break
		}
		g.genStmt(n)
	}
	g.curFunc, g.curSub = prevFunc, prevSub

	g.prog.Op(int32(opcode.FUNEND))
}

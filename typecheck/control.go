package typecheck

import (
	"github.com/fdanielsen/lobster/ast"
	"github.com/fdanielsen/lobster/flow"
	"github.com/fdanielsen/lobster/internal/diag"
	"github.com/fdanielsen/lobster/symtab"
	"github.com/fdanielsen/lobster/types"
)

// narrowTrueBranch implements CheckFlowTypeChanges (spec.md §4.2): for
// an Is node, the true branch narrows the LHS path to the tested
// type; a Not node flips polarity; nested And/Or descend when their
// polarity matches (And -> true, Or -> false); otherwise a Nilable(E)
// condition narrows to E in the true branch.
func (c *Checker) narrowTrueBranch(cond ast.Node, wantTrue bool) {
	switch v := cond.(type) {
	case *ast.Is:
		if !wantTrue {
			return
		}
		if p, ok := flow.PathOf(v.X); ok {
			c.flow.Push(p, c.exptypeOf(v.X), v.TestType)
		}
	case *ast.LogNot:
		c.narrowTrueBranch(v.X, !wantTrue)
	case *ast.And:
		if wantTrue {
			c.narrowTrueBranch(v.L, true)
			c.narrowTrueBranch(v.R, true)
		}
	case *ast.Or:
		if !wantTrue {
			c.narrowTrueBranch(v.L, false)
			c.narrowTrueBranch(v.R, false)
		}
	default:
		if !wantTrue {
			return
		}
		if p, ok := flow.PathOf(cond); ok {
			t := c.exptypeOf(cond)
			if t.Kind == types.Nilable {
				c.flow.Push(p, t, *t.Elem)
			}
		}
	}
}

// checkInFlowFrame evaluates n under a fresh flow-stack frame scoped
// to the branch (pushed narrowings from cond), truncating back on
// exit.
func (c *Checker) checkInFlowFrame(n ast.Node, cond ast.Node, wantTrue bool) types.Type {
	mark := c.flow.Mark()
	if cond != nil {
		c.narrowTrueBranch(cond, wantTrue)
	}
	t := c.check(n, 1)
	c.flow.Truncate(mark)
	return t
}

func (c *Checker) checkIf(v *ast.If) types.Type {
	c.checkAndOrTop(v.Cond)
	thenT := c.checkInFlowFrame(v.Then, v.Cond, true)
	if v.Else == nil {
		return types.AnyT()
	}
	elseT := c.checkInFlowFrame(v.Else, v.Cond, false)
	u := c.Vars.Union(thenT, elseT, false, c.Syms)
	if ok, _ := c.Vars.ConvertsTo(thenT, u, false, c.Syms); !ok {
		c.fail(v.Then, diag.ErrTypeMismatch, "then-branch does not convert to %s", c.Syms.TypeName(u))
	}
	if ok, _ := c.Vars.ConvertsTo(elseT, u, false, c.Syms); !ok {
		c.fail(v.Else, diag.ErrTypeMismatch, "else-branch does not convert to %s", c.Syms.TypeName(u))
	}
	return u
}

// checkAndOrTop type-checks a condition position (not top-level
// coerced) via TypeCheckAndOr when it is itself And/Or, else plainly.
func (c *Checker) checkAndOrTop(cond ast.Node) types.Type {
	switch v := cond.(type) {
	case *ast.And:
		return c.checkAndOr(v, true, false)
	case *ast.Or:
		return c.checkAndOr(v, false, false)
	default:
		return c.check(cond, 1)
	}
}

// checkAndOr implements TypeCheckAndOr (spec.md §4.2): the narrowed
// LHS flows into the RHS check with polarity reversed for Or. In
// onlyTrueType mode a Nilable wrapper is stripped from both operand
// types and an And yields the RHS type alone; every caller
// (checkAndOrTop, checkNode) passes false, so nested operands are
// never checked in that mode.
func (c *Checker) checkAndOr(v ast.Node, isAnd bool, onlyTrueType bool) types.Type {
	var l, r ast.Node
	switch n := v.(type) {
	case *ast.And:
		l, r = n.L, n.R
	case *ast.Or:
		l, r = n.L, n.R
	}
	lt := c.checkAndOrTop(l)
	if onlyTrueType && lt.Kind == types.Nilable {
		lt = *lt.Elem
	}
	rt := c.checkInFlowFrame(r, l, isAnd)
	if onlyTrueType && rt.Kind == types.Nilable {
		rt = *rt.Elem
	}
	if onlyTrueType && isAnd {
		return rt
	}
	return c.Vars.Union(lt, rt, true, c.Syms)
}

func (c *Checker) checkWhile(v *ast.While) types.Type {
	c.checkAndOrTop(v.Cond)
	c.checkInFlowFrame(v.Body, v.Cond, true)
	return types.AnyT()
}

func (c *Checker) checkFor(v *ast.For) types.Type {
	c.check(v.Iter, 1)
	it := c.exptypeOf(v.Iter)
	var elemT types.Type
	switch it.Kind {
	case types.Int, types.String:
		elemT = types.IntT()
	case types.Vector:
		elemT = *it.Elem
	default:
		c.fail(v, diag.ErrIterationError, "for iterator must be Int, String, or Vector")
		elemT = types.AnyT()
	}
	sf := c.currentSub()
	if sf != nil {
		c.setSlotType(sf, v.ElemIdx, elemT)
		c.setSlotType(sf, v.IdxIdx, types.IntT())
	}
	c.check(v.Body, 1)
	return types.AnyT()
}

// checkReturn implements spec.md §4.2's Return rule: the target
// function is the lexically enclosing scope unless FuncIdx names an
// explicit non-local target (only legal once that target has itself
// been type-checked). A MultiRet RHS pushes each sub-value into the
// target's returntypes slot; an otherwise-multi-returning Call is
// passed through; anything else binds slot 0.
func (c *Checker) checkReturn(v *ast.Return) types.Type {
	if v.X == nil {
		return types.AnyT()
	}
	target := c.currentSub()
	if v.FuncIdx >= 0 {
		fn := c.Syms.Function(v.FuncIdx)
		target = fn.Subs[0]
		if !target.Typechecked {
			c.fail(v, diag.ErrNonLocalReturn, "non-local return targets an un-typechecked function")
			c.check(v.X, 1)
			return types.AnyT()
		}
	}
	if target == nil {
		c.check(v.X, 1)
		return types.AnyT()
	}
	switch rhs := v.X.(type) {
	case *ast.MultiRet:
		for i, e := range rhs.Elems {
			c.check(e, 1)
			c.bindReturnSlot(target, i, c.exptypeOf(e))
		}
	case *ast.Call:
		c.check(rhs, len(target.ReturnTypes))
		if rhs.ResolvedFuncIdx >= 0 && rhs.ResolvedSubIdx >= 0 {
			callee := c.Syms.Function(rhs.ResolvedFuncIdx).Subs[rhs.ResolvedSubIdx]
			for i, rt := range callee.ReturnTypes {
				c.bindReturnSlot(target, i, rt)
			}
		} else {
			c.bindReturnSlot(target, 0, c.exptypeOf(rhs))
		}
	default:
		c.check(v.X, 1)
		c.bindReturnSlot(target, 0, c.exptypeOf(v.X))
	}
	return types.AnyT()
}

func (c *Checker) bindReturnSlot(sf *symtab.SubFunction, i int, t types.Type) {
	for len(sf.ReturnTypes) <= i {
		sf.ReturnTypes = append(sf.ReturnTypes, types.UndefinedT())
	}
	if sf.ReturnTypes[i].Kind == types.Undefined {
		sf.ReturnTypes[i] = t
		return
	}
	sf.ReturnTypes[i] = c.Vars.Union(sf.ReturnTypes[i], t, true, c.Syms)
}

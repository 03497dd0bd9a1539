package typecheck

import (
	"github.com/fdanielsen/lobster/ast"
	"github.com/fdanielsen/lobster/flow"
	"github.com/fdanielsen/lobster/internal/diag"
	"github.com/fdanielsen/lobster/natives"
	"github.com/fdanielsen/lobster/types"
)

// rhsElemTypes implements spec.md §4.2's Def/AssignList destructuring
// rule: recognize Call/NatCall/MultiRet RHS shapes and pull element
// types positionally; otherwise the RHS type binds index 0 only.
func (c *Checker) rhsElemTypes(rhs ast.Node, want int) []types.Type {
	switch v := rhs.(type) {
	case *ast.Call:
		if v.ResolvedFuncIdx >= 0 && v.ResolvedSubIdx >= 0 {
			sub := c.Syms.Function(v.ResolvedFuncIdx).Subs[v.ResolvedSubIdx]
			out := make([]types.Type, 0, want)
			for i := 0; i < want; i++ {
				if i >= len(sub.ReturnTypes) {
					c.fail(rhs, diag.ErrTooFewReturnValues, "callee returns only %d value(s)", len(sub.ReturnTypes))
					out = append(out, types.AnyT())
					continue
				}
				out = append(out, sub.ReturnTypes[i])
			}
			return out
		}
	case *ast.NatCall:
		sig := c.Syms.Native(v.NativeIdx)
		arg0 := c.exptypeOf(v.Args[0])
		out := make([]types.Type, 0, want)
		for i := 0; i < want; i++ {
			if i >= len(sig.Rets) {
				c.fail(rhs, diag.ErrTooFewReturnValues, "native returns only %d value(s)", len(sig.Rets))
				out = append(out, types.AnyT())
				continue
			}
			ret := sig.Rets[i]
			if i >= 1 && ret.Flag != 0 {
				c.fail(rhs, diag.ErrTypeMismatch, "non-zero return %d must not be flagged", i)
			}
			out = append(out, natives.Specialize(ret, arg0, c.Vars))
		}
		return out
	case *ast.MultiRet:
		out := make([]types.Type, 0, want)
		for i := 0; i < want; i++ {
			if i >= len(v.Elems) {
				out = append(out, types.AnyT())
				continue
			}
			out = append(out, c.exptypeOf(v.Elems[i]))
		}
		return out
	}
	out := make([]types.Type, want)
	out[0] = c.exptypeOf(rhs)
	for i := 1; i < want; i++ {
		out[i] = types.AnyT()
	}
	return out
}

func (c *Checker) checkDef(v *ast.Def) types.Type {
	c.check(v.RHS, 1)
	elems := c.rhsElemTypes(v.RHS, len(v.Idents))
	sf := c.currentSub()
	for i, id := range v.Idents {
		id.SetExpType(elems[i])
		if sf != nil {
			c.setSlotType(sf, id.Idx, elems[i])
		}
	}
	return types.AnyT()
}

func (c *Checker) checkAssign(v *ast.Assign) types.Type {
	c.check(v.LHS, 1)
	if p, ok := flow.PathOf(v.LHS); ok {
		c.flow.AssignFlow(p)
	}
	c.check(v.RHS, 1)
	lt := c.exptypeOf(v.LHS)
	if !c.coerceTo(func() ast.Node { return v.RHS }, func(n ast.Node) { v.RHS = n }, lt, true) {
		c.fail(v, diag.ErrTypeMismatch, "assignment right-hand side does not convert to %s", c.Syms.TypeName(lt))
	}
	return lt
}

func (c *Checker) checkAssignList(v *ast.AssignList) types.Type {
	for _, l := range v.LHS {
		c.check(l, 1)
		if p, ok := flow.PathOf(l); ok {
			c.flow.AssignFlow(p)
		}
	}
	c.check(v.RHS, 1)
	elems := c.rhsElemTypes(v.RHS, len(v.LHS))
	for i, l := range v.LHS {
		lt := c.exptypeOf(l)
		ok, _ := c.Vars.ConvertsTo(elems[i], lt, false, c.Syms)
		if !ok {
			c.fail(v, diag.ErrTypeMismatch, "destructured value %d does not convert to %s", i, c.Syms.TypeName(lt))
		}
	}
	return types.AnyT()
}


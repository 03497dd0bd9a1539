package typecheck

import (
	"github.com/fdanielsen/lobster/ast"
	"github.com/fdanielsen/lobster/internal/diag"
	"github.com/fdanielsen/lobster/natives"
	"github.com/fdanielsen/lobster/symtab"
	"github.com/fdanielsen/lobster/types"
)

// typecheckSub type-checks sub's body once, pushing/popping the
// enclosing-scope stack (used both for nested-function lookup of
// Return targets and for the diag.Sink backtrace).
func (c *Checker) typecheckSub(sub *symtab.SubFunction) {
	if sub.Typechecked {
		return
	}
	c.scope = append(c.scope, sub)
	c.Sink.PushScope(diag.Frame{Signature: sub.Parent.Name, Locals: localNames(sub)})
	for _, n := range sub.Body {
		if !c.Sink.OK() {
			break
		}
		c.check(n, 1)
	}
	sub.Typechecked = true
	c.Sink.PopScope()
	c.scope = c.scope[:len(c.scope)-1]
}

func localNames(sub *symtab.SubFunction) []string {
	out := make([]string, 0, len(sub.Args)+len(sub.Locals))
	for _, f := range sub.Args {
		out = append(out, f.Name+": "+f.Type.String())
	}
	for _, f := range sub.Locals {
		out = append(out, f.Name+": "+f.Type.String())
	}
	return out
}

func hasAnyTypeArg(sub *symtab.SubFunction) bool {
	for _, a := range sub.Args {
		if a.AnyType {
			return true
		}
	}
	return false
}

func specMatches(sub *symtab.SubFunction, argTypes []types.Type) bool {
	if !sub.Typechecked {
		return false
	}
	for i, a := range sub.Args {
		if !a.AnyType || i >= len(argTypes) {
			continue
		}
		if !types.Equal(a.Type, argTypes[i]) {
			return false
		}
	}
	for _, fv := range sub.FreeVars {
		_ = fv // free-variable current-type matching is a symbol-table
		// concern (live identifier bindings outside the function);
		// this module treats a free var's recorded type as fixed at
		// capture time, so matching reduces to the AnyType-argument
		// comparison above. See DESIGN.md "Open Question decisions".
	}
	return true
}

// checkCall implements TypeCheckCall (spec.md §4.2).
func (c *Checker) checkCall(v *ast.Call, nvals int) types.Type {
	for _, a := range v.Args {
		c.check(a, 1)
	}
	fn := c.Syms.Function(v.FuncIdx)
	argTypes := make([]types.Type, len(v.Args))
	for i, a := range v.Args {
		argTypes[i] = c.exptypeOf(a)
	}

	if fn.Multimethod {
		v.Multimethod = true
		v.ResolvedFuncIdx = fn.Idx
		v.ResolvedSubIdx = -1
		var u types.Type
		first := true
		for _, sub := range fn.Subs {
			c.typecheckSub(sub)
			if len(sub.ReturnTypes) == 0 {
				continue
			}
			if first {
				u, first = sub.ReturnTypes[0], false
			} else {
				u = c.Vars.Union(u, sub.ReturnTypes[0], true, c.Syms)
			}
		}
		if first {
			u = types.AnyT()
		}
		return u
	}

	template := fn.Subs[0]
	var sub *symtab.SubFunction
	if hasAnyTypeArg(template) || len(template.FreeVars) > 0 {
		for _, cand := range fn.Subs {
			if specMatches(cand, argTypes) {
				sub = cand
				break
			}
		}
		if sub == nil {
			sub = c.Syms.CloneSubFunction(fn, template)
			sub.Body = cloneBody(template.Body)
			for i := range sub.Args {
				if sub.Args[i].AnyType && i < len(argTypes) {
					sub.Args[i].Type = argTypes[i]
				}
			}
			c.typecheckSub(sub)
		}
	} else {
		sub = template
		c.typecheckSub(sub)
	}

	for i, a := range v.Args {
		if i >= len(sub.Args) {
			c.fail(v, diag.ErrArityMismatch, "too many arguments to %s", fn.Name)
			break
		}
		if sub.Args[i].AnyType {
			continue
		}
		idx := i
		if !c.coerceTo(func() ast.Node { return v.Args[idx] }, func(n ast.Node) { v.Args[idx] = n }, sub.Args[i].Type, true) {
			c.fail(a, diag.ErrTypeMismatch, "argument %d of %s does not convert to %s", i, fn.Name, c.Syms.TypeName(sub.Args[i].Type))
		}
	}
	if len(v.Args) < len(sub.Args) {
		c.fail(v, diag.ErrArityMismatch, "too few arguments to %s", fn.Name)
	}

	v.ResolvedFuncIdx = fn.Idx
	v.ResolvedSubIdx = sub.Idx
	if len(sub.ReturnTypes) == 0 {
		return types.AnyT()
	}
	return sub.ReturnTypes[0]
}

func cloneBody(body []ast.Node) []ast.Node {
	out := make([]ast.Node, len(body))
	for i, n := range body {
		out[i] = ast.Clone(n)
	}
	return out
}

// checkDynCall implements the dynamic-call rule (spec.md §4.2): a
// statically Function(idx>=0)-typed callee dispatches through
// TypeCheckCall; otherwise the result is Any (runtime-dispatched).
func (c *Checker) checkDynCall(v *ast.DynCall) types.Type {
	c.check(v.Callee, 1)
	for _, a := range v.Args {
		c.check(a, 1)
	}
	ct := c.exptypeOf(v.Callee)
	if ct.Kind == types.Function && ct.Idx >= 0 {
		synthetic := ast.NewCall(v.Pos(), ct.Idx, v.Args)
		t := c.checkCall(synthetic, 1)
		v.ResolvedFuncIdx = synthetic.ResolvedFuncIdx
		v.ResolvedSubIdx = synthetic.ResolvedSubIdx
		v.Multimethod = synthetic.Multimethod
		v.SetExpType(t)
		return t
	}
	return types.AnyT()
}

// checkNatCall implements the builtin-call rule (spec.md §4.2, §6.3).
func (c *Checker) checkNatCall(v *ast.NatCall, nvals int) types.Type {
	for _, a := range v.Args {
		c.check(a, 1)
	}
	sig := c.Syms.Native(v.NativeIdx)
	if sig == nil {
		c.fail(v, diag.ErrOverloadResolution, "no native at index %d", v.NativeIdx)
		return types.AnyT()
	}
	if len(v.Args) != len(sig.Args) {
		c.fail(v, diag.ErrArityMismatch, "native %s expects %d arguments", sig.Name, len(sig.Args))
	}
	var arg0 types.Type
	if len(v.Args) > 0 {
		arg0 = c.exptypeOf(v.Args[0])
	}
	for i, a := range v.Args {
		if i >= len(sig.Args) {
			break
		}
		want := natives.Specialize(sig.Args[i], arg0, c.Vars)
		idx := i
		if !c.coerceTo(func() ast.Node { return v.Args[idx] }, func(n ast.Node) { v.Args[idx] = n }, want, true) {
			c.fail(a, diag.ErrTypeMismatch, "argument %d of %s does not convert to %s", i, sig.Name, c.Syms.TypeName(want))
		}
	}
	if len(sig.Rets) == 0 {
		return types.AnyT()
	}
	return natives.Specialize(sig.Rets[0], arg0, c.Vars)
}

func (c *Checker) checkFuncVal(v *ast.FuncVal) types.Type {
	if v.Body != nil {
		fn := c.Syms.Function(v.FuncIdx)
		sub := fn.Subs[v.SubIdx]
		c.typecheckSub(sub)
	}
	return types.FunctionT(v.FuncIdx)
}

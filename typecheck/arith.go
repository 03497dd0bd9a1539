package typecheck

import (
	"github.com/fdanielsen/lobster/ast"
	"github.com/fdanielsen/lobster/flow"
	"github.com/fdanielsen/lobster/internal/diag"
	"github.com/fdanielsen/lobster/types"
)

// coerceTo enforces that slot (addressed via getter/setter closures)
// converts to target, inserting an I2F/A2S coercion node when needed.
// This is the "helper that swaps a child slot" spec.md §9 calls for.
func (c *Checker) coerceTo(get func() ast.Node, set func(ast.Node), target types.Type, allowCoercions bool) bool {
	n := get()
	from := c.exptypeOf(n)
	ok, co := c.Vars.ConvertsTo(from, target, allowCoercions, c.Syms)
	if !ok {
		return false
	}
	switch co {
	case types.CoerceIntToFloat:
		wrapped := ast.NewCoerce(ast.CoerceI2F, n)
		wrapped.SetExpType(types.FloatT())
		set(wrapped)
	case types.CoerceToString:
		wrapped := ast.NewCoerce(ast.CoerceA2S, n)
		wrapped.SetExpType(types.StringT())
		set(wrapped)
	}
	return true
}

func isStringVectorStructNilable(t types.Type) bool {
	switch t.Kind {
	case types.String, types.Vector, types.Struct, types.Nilable:
		return true
	}
	return false
}

func (c *Checker) checkBinary(v *ast.Binary) types.Type {
	c.check(v.L, 1)
	c.check(v.R, 1)
	lt := c.exptypeOf(v.L)
	rt := c.exptypeOf(v.R)

	switch v.Op {
	case ast.Mod:
		if lt.Kind != types.Int || rt.Kind != types.Int {
			c.fail(v, diag.ErrTypeMismatch, "%% requires Int operands")
			return types.AnyT()
		}
		return types.IntT()
	case ast.Add:
		lOk := types.IsNumeric(lt) || isStringVectorStructNilable(lt)
		rOk := types.IsNumeric(rt) || isStringVectorStructNilable(rt)
		if !(lt.Kind == types.String || rt.Kind == types.String || (lOk && rOk)) {
			c.fail(v, diag.ErrTypeMismatch, "+ requires numeric/vector/struct operands or a string")
			return types.AnyT()
		}
		return c.unifyArith(v)
	case ast.Sub, ast.Mul, ast.Div:
		lOk := types.IsNumeric(lt) || isStringVectorStructNilable(lt)
		rOk := types.IsNumeric(rt) || isStringVectorStructNilable(rt)
		if !lOk || !rOk {
			c.fail(v, diag.ErrTypeMismatch, "arithmetic requires numeric/vector/struct/string operands")
			return types.AnyT()
		}
		return c.unifyArith(v)
	case ast.Lt, ast.Gt, ast.Le, ast.Ge:
		if !((types.IsNumeric(lt) || lt.Kind == types.String) && (types.IsNumeric(rt) || rt.Kind == types.String)) {
			c.fail(v, diag.ErrTypeMismatch, "comparison requires numeric or string operands")
		}
		c.unifyArith(v)
		return types.IntT()
	case ast.Eq, ast.Ne:
		c.unifyArith(v)
		return types.IntT()
	}
	c.fail(v, diag.ErrTypeMismatch, "unknown binary operator")
	return types.AnyT()
}

// unifyArith computes U = Union(left,right,coercions) and enforces
// both sides convert to U, inserting I2F/A2S where needed, per
// spec.md §4.2's numeric-binary-operator rule.
func (c *Checker) unifyArith(v *ast.Binary) types.Type {
	lt := c.exptypeOf(v.L)
	rt := c.exptypeOf(v.R)
	u := c.Vars.Union(lt, rt, true, c.Syms)
	if !c.coerceTo(func() ast.Node { return v.L }, func(n ast.Node) { v.L = n }, u, true) {
		c.fail(v, diag.ErrTypeMismatch, "left operand does not convert to %s", c.Syms.TypeName(u))
	}
	if !c.coerceTo(func() ast.Node { return v.R }, func(n ast.Node) { v.R = n }, u, true) {
		c.fail(v, diag.ErrTypeMismatch, "right operand does not convert to %s", c.Syms.TypeName(u))
	}
	return u
}

func (c *Checker) checkUnaryMinus(v *ast.UnaryMinus) types.Type {
	c.check(v.X, 1)
	t := c.exptypeOf(v.X)
	if !types.IsNumeric(t) && t.Kind != types.Vector {
		c.fail(v, diag.ErrTypeMismatch, "unary - requires numeric or vector operand")
	}
	return t
}

func (c *Checker) checkCompoundAssign(v *ast.CompoundAssign) types.Type {
	c.check(v.LHS, 1)
	c.check(v.RHS, 1)
	lt := c.exptypeOf(v.LHS)
	if p, ok := flow.PathOf(v.LHS); ok {
		c.flow.AssignFlow(p)
	}
	if v.Op == ast.CMod && lt.Kind != types.Int {
		c.fail(v, diag.ErrTypeMismatch, "%%= requires Int")
	}
	if !c.coerceTo(func() ast.Node { return v.RHS }, func(n ast.Node) { v.RHS = n }, lt, true) {
		c.fail(v, diag.ErrTypeMismatch, "right-hand side does not convert to %s", c.Syms.TypeName(lt))
	}
	return lt
}

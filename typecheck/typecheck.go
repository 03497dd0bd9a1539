// Package typecheck implements the type checker pass (spec.md §4.2,
// §4.3): bottom-up type inference, function/struct specialization,
// overload resolution, flow-sensitive narrowing, and implicit
// coercion insertion. Grounded rule-for-rule on
// _examples/original_source/dev/src/typecheck.h; Go traversal idiom
// follows the teacher's ast.Visitor-style big switch in codegen.go,
// reshaped as a type switch over our own closed ast.Node kinds.
package typecheck

import (
	"fmt"

	"github.com/fdanielsen/lobster/ast"
	"github.com/fdanielsen/lobster/flow"
	"github.com/fdanielsen/lobster/internal/diag"
	"github.com/fdanielsen/lobster/natives"
	"github.com/fdanielsen/lobster/symtab"
	"github.com/fdanielsen/lobster/types"
)

// Checker carries all state for one type-checking pass. One Checker
// is built per compilation and discarded afterward (spec.md §5: a
// well-defined single-pass lifecycle).
type Checker struct {
	Syms    *symtab.Table
	Vars    *types.Vars
	Natives natives.Catalog
	Sink    *diag.Sink

	flow  flow.Stack
	scope []*symtab.SubFunction // enclosing-function stack, innermost last
}

// New builds a Checker over an already-constructed symbol table.
func New(syms *symtab.Table, nat natives.Catalog, sink *diag.Sink) *Checker {
	return &Checker{Syms: syms, Vars: syms.Vars, Natives: nat, Sink: sink}
}

// CheckProgram type-checks every statement in the top-level list and
// every function reachable from it. Returns the sink's recorded error
// (nil on success).
func (c *Checker) CheckProgram(top []ast.Node) error {
	for _, n := range top {
		if !c.Sink.OK() {
			break
		}
		c.check(n, 1)
	}
	return c.Sink.Err
}

func (c *Checker) fail(n ast.Node, kind error, format string, args ...interface{}) {
	c.Sink.Fail(n, kind, fmt.Sprintf(format, args...))
}

// currentSub returns the innermost enclosing SubFunction, or nil at
// top level.
func (c *Checker) currentSub() *symtab.SubFunction {
	if len(c.scope) == 0 {
		return nil
	}
	return c.scope[len(c.scope)-1]
}

// check type-checks n and returns its (possibly flow-narrowed) type.
// nvals is the number of values the caller wants from a
// multi-value-capable position; most callers pass 1. It is not
// consulted: every node is checked the same way whatever nvals is.
func (c *Checker) check(n ast.Node, nvals int) types.Type {
	if !c.Sink.OK() {
		return types.AnyT()
	}
	t := c.checkNode(n)
	n.SetExpType(t)
	return t
}

func (c *Checker) checkNode(n ast.Node) types.Type {
	switch v := n.(type) {
	case *ast.IntLit:
		return types.IntT()
	case *ast.FloatLit:
		return types.FloatT()
	case *ast.StringLit:
		return types.StringT()
	case *ast.NilLit:
		return types.NilT()
	case *ast.Ident:
		return c.checkIdent(v)
	case *ast.Binary:
		return c.checkBinary(v)
	case *ast.CompoundAssign:
		return c.checkCompoundAssign(v)
	case *ast.UnaryMinus:
		return c.checkUnaryMinus(v)
	case *ast.LogNot:
		c.check(v.X, 1)
		return types.IntT()
	case *ast.IncDec:
		c.check(v.X, 1)
		return c.exptypeOf(v.X)
	case *ast.Def:
		return c.checkDef(v)
	case *ast.Assign:
		return c.checkAssign(v)
	case *ast.AssignList:
		return c.checkAssignList(v)
	case *ast.FieldAccess:
		return c.checkFieldAccess(v)
	case *ast.Index:
		return c.checkIndex(v)
	case *ast.Constructor:
		return c.checkConstructor(v)
	case *ast.Is:
		c.check(v.X, 1)
		return types.IntT()
	case *ast.If:
		return c.checkIf(v)
	case *ast.While:
		return c.checkWhile(v)
	case *ast.For:
		return c.checkFor(v)
	case *ast.Return:
		return c.checkReturn(v)
	case *ast.And:
		return c.checkAndOr(v, true, false)
	case *ast.Or:
		return c.checkAndOr(v, false, false)
	case *ast.Seq:
		c.check(v.L, 1)
		return c.check(v.R, 1)
	case *ast.List:
		var last types.Type = types.AnyT()
		for _, s := range v.Stmts {
			last = c.check(s, 1)
		}
		return last
	case *ast.MultiRet:
		for _, e := range v.Elems {
			c.check(e, 1)
		}
		if len(v.Elems) == 0 {
			return types.AnyT()
		}
		return c.exptypeOf(v.Elems[0])
	case *ast.Call:
		return c.checkCall(v, 1)
	case *ast.DynCall:
		return c.checkDynCall(v)
	case *ast.NatCall:
		return c.checkNatCall(v, 1)
	case *ast.FuncVal:
		return c.checkFuncVal(v)
	case *ast.CoClosure:
		return types.CoroutineT()
	case *ast.Coroutine:
		c.check(v.Body, 1)
		return types.CoroutineT()
	case *ast.CoroutineAt:
		c.check(v.X, 1)
		return types.AnyT()
	case *ast.Coerce:
		c.check(v.X, 1)
		if v.Kind == ast.CoerceI2F {
			return types.FloatT()
		}
		return types.StringT()
	default:
		c.fail(n, diag.ErrTypeMismatch, "unhandled node kind %T", n)
		return types.AnyT()
	}
}

func (c *Checker) exptypeOf(n ast.Node) types.Type { return c.Vars.Promote(n.ExpType()) }

func (c *Checker) checkIdent(id *ast.Ident) types.Type {
	declared := c.declaredIdentType(id)
	if p, ok := flow.PathOf(id); ok {
		if t, ok := c.flow.UseFlow(p); ok {
			return t
		}
	}
	return declared
}

// declaredIdentType returns the declared type of an identifier: the
// symbol table holds the declared type for a given identifier index,
// but the exact storage (arg/local/free-var/global table) is a detail
// of how the out-of-scope symbol-table builder laid slots out. We
// look it up the same way the checker looks up everything else scope-
// relative: through the current SubFunction's arg/local/free-var
// lists, falling back to Any for a global the builder resolved
// elsewhere. id.Idx is a flat index across Args then Locals then
// FreeVars, in that order — the same layout setSlotType writes to.
func (c *Checker) declaredIdentType(id *ast.Ident) types.Type {
	sf := c.currentSub()
	if sf == nil {
		return types.AnyT()
	}
	idx := id.Idx
	if idx >= 0 && idx < len(sf.Args) {
		return sf.Args[idx].Type
	}
	idx -= len(sf.Args)
	if idx >= 0 && idx < len(sf.Locals) {
		return sf.Locals[idx].Type
	}
	idx -= len(sf.Locals)
	if idx >= 0 && idx < len(sf.FreeVars) {
		return sf.FreeVars[idx].Type
	}
	return types.AnyT()
}

func (c *Checker) setSlotType(sf *symtab.SubFunction, idx int, t types.Type) {
	if idx >= 0 && idx < len(sf.Args) {
		sf.Args[idx].Type = t
		return
	}
	if idx >= len(sf.Args) && idx-len(sf.Args) < len(sf.Locals) {
		sf.Locals[idx-len(sf.Args)].Type = t
	}
}

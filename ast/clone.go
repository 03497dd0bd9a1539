package ast

// Clone deep-copies n, recreating every child. Specializing a
// SubFunction template (spec.md §4.3) must clone its body so that
// each specialization's exptype annotations do not alias the
// template's or a sibling specialization's.
func Clone(n Node) Node {
	if n == nil {
		return nil
	}
	switch v := n.(type) {
	case *IntLit:
		c := *v
		return &c
	case *FloatLit:
		c := *v
		return &c
	case *StringLit:
		c := *v
		return &c
	case *NilLit:
		c := *v
		return &c
	case *Ident:
		c := *v
		return &c
	case *Binary:
		c := *v
		c.L, c.R = Clone(v.L), Clone(v.R)
		return &c
	case *CompoundAssign:
		c := *v
		c.LHS, c.RHS = Clone(v.LHS), Clone(v.RHS)
		return &c
	case *UnaryMinus:
		c := *v
		c.X = Clone(v.X)
		return &c
	case *LogNot:
		c := *v
		c.X = Clone(v.X)
		return &c
	case *IncDec:
		c := *v
		c.X = Clone(v.X)
		return &c
	case *Coerce:
		c := *v
		c.X = Clone(v.X)
		return &c
	case *Def:
		c := *v
		c.Idents = make([]*Ident, len(v.Idents))
		for i, id := range v.Idents {
			c.Idents[i] = Clone(id).(*Ident)
		}
		c.RHS = Clone(v.RHS)
		return &c
	case *Assign:
		c := *v
		c.LHS, c.RHS = Clone(v.LHS), Clone(v.RHS)
		return &c
	case *AssignList:
		c := *v
		c.LHS = cloneSlice(v.LHS)
		c.RHS = Clone(v.RHS)
		return &c
	case *FieldAccess:
		c := *v
		c.X = Clone(v.X)
		return &c
	case *Index:
		c := *v
		c.X, c.I = Clone(v.X), Clone(v.I)
		return &c
	case *Constructor:
		c := *v
		c.Elems = cloneSlice(v.Elems)
		c.Super = Clone(v.Super)
		return &c
	case *Is:
		c := *v
		c.X = Clone(v.X)
		return &c
	case *If:
		c := *v
		c.Cond, c.Then, c.Else = Clone(v.Cond), Clone(v.Then), Clone(v.Else)
		return &c
	case *While:
		c := *v
		c.Cond, c.Body = Clone(v.Cond), Clone(v.Body)
		return &c
	case *For:
		c := *v
		c.Iter, c.Body = Clone(v.Iter), Clone(v.Body)
		return &c
	case *Return:
		c := *v
		c.X = Clone(v.X)
		return &c
	case *And:
		c := *v
		c.L, c.R = Clone(v.L), Clone(v.R)
		return &c
	case *Or:
		c := *v
		c.L, c.R = Clone(v.L), Clone(v.R)
		return &c
	case *Seq:
		c := *v
		c.L, c.R = Clone(v.L), Clone(v.R)
		return &c
	case *List:
		c := *v
		c.Stmts = cloneSlice(v.Stmts)
		return &c
	case *MultiRet:
		c := *v
		c.Elems = cloneSlice(v.Elems)
		return &c
	case *Call:
		c := *v
		c.Args = cloneSlice(v.Args)
		return &c
	case *DynCall:
		c := *v
		c.Callee = Clone(v.Callee)
		c.Args = cloneSlice(v.Args)
		return &c
	case *NatCall:
		c := *v
		c.Args = cloneSlice(v.Args)
		return &c
	case *FuncVal:
		c := *v
		c.Body = Clone(v.Body)
		return &c
	case *CoClosure:
		c := *v
		return &c
	case *Coroutine:
		c := *v
		c.Body = Clone(v.Body)
		return &c
	case *CoroutineAt:
		c := *v
		c.X = Clone(v.X)
		return &c
	default:
		return n
	}
}

func cloneSlice(ns []Node) []Node {
	if ns == nil {
		return nil
	}
	out := make([]Node, len(ns))
	for i, n := range ns {
		out[i] = Clone(n)
	}
	return out
}

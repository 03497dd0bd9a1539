package typecheck

import (
	"github.com/fdanielsen/lobster/ast"
	"github.com/fdanielsen/lobster/flow"
	"github.com/fdanielsen/lobster/internal/diag"
	"github.com/fdanielsen/lobster/symtab"
	"github.com/fdanielsen/lobster/types"
)

// findField searches rec and its superclass chain for a field named
// name, returning its declared type and the record that carries it.
func (c *Checker) findField(rec *symtab.Record, name string) (types.Type, *symtab.Record, bool) {
	for rec != nil {
		for _, f := range rec.Fields {
			if f.Name == name {
				return f.Type, rec, true
			}
		}
		if rec.Superclass < 0 {
			break
		}
		rec = c.Syms.Record(rec.Superclass)
	}
	return types.Type{}, nil, false
}

func (c *Checker) checkFieldAccess(v *ast.FieldAccess) types.Type {
	c.check(v.X, 1)
	xt := c.exptypeOf(v.X)

	nilableReceiver := false
	base := xt
	if v.Maybe && xt.Kind == types.Nilable {
		nilableReceiver = true
		base = *xt.Elem
	}
	if base.Kind != types.Struct {
		c.fail(v, diag.ErrFieldAbsent, "dot access on non-struct type %s", c.Syms.TypeName(xt))
		return types.AnyT()
	}
	rec := c.Syms.Record(base.Idx)
	ft, _, ok := c.findField(rec, v.Field)
	if !ok {
		c.fail(v, diag.ErrFieldAbsent, "record %s has no field %q", rec.Name, v.Field)
		return types.AnyT()
	}
	result := ft
	if nilableReceiver && ft.Kind != types.Nilable {
		result = types.NilableT(ft)
	}
	if p, ok := flow.PathOf(v); ok {
		if narrowed, ok := c.flow.UseFlow(p); ok {
			return narrowed
		}
	}
	return result
}

func (c *Checker) checkIndex(v *ast.Index) types.Type {
	c.check(v.X, 1)
	c.check(v.I, 1)
	xt := c.exptypeOf(v.X)
	it := c.exptypeOf(v.I)

	if xt.Kind != types.Vector && xt.Kind != types.String {
		c.fail(v, diag.ErrTypeMismatch, "index requires a Vector or String")
		return types.AnyT()
	}

	// Peel one Vector layer per Int-typed field of a struct index.
	peel := func() bool {
		if it.Kind == types.Int {
			return true
		}
		if it.Kind == types.Struct {
			rec := c.Syms.Record(it.Idx)
			for _, f := range rec.Fields {
				if f.Type.Kind != types.Int {
					return false
				}
			}
			return len(rec.Fields) > 0
		}
		return false
	}
	if !peel() {
		c.fail(v, diag.ErrTypeMismatch, "index must be Int or an all-Int struct")
		return types.AnyT()
	}

	if xt.Kind == types.String {
		return types.IntT()
	}
	result := *xt.Elem
	if it.Kind == types.Struct {
		rec := c.Syms.Record(it.Idx)
		for i := 1; i < len(rec.Fields); i++ {
			if result.Kind == types.Vector {
				result = *result.Elem
			}
		}
	}
	return result
}

// SpecializeStruct implements spec.md §4.3: collect the constructor's
// argument types (expanding a super child into the superclass's field
// prefix), find a matching existing specialization along head's chain
// or clone+specialize a new one, and recompute the vector element
// type.
func (c *Checker) SpecializeStruct(head *symtab.Record, argTypes []types.Type) *symtab.Record {
	cur := head
	for cur != nil {
		if specializationMatches(cur, argTypes) {
			return cur
		}
		cur = cur.Next
	}
	var target *symtab.Record
	if !head.Typechecked {
		target = head
	} else {
		target = c.Syms.CloneRecord(head)
	}
	for i, f := range target.Fields {
		if f.AnyType && i < len(argTypes) {
			target.Fields[i].Type = argTypes[i]
		}
	}
	target.Typechecked = true
	recomputeVectorElem(target)
	return target
}

func specializationMatches(r *symtab.Record, argTypes []types.Type) bool {
	if !r.Typechecked {
		return false
	}
	for i, f := range r.Fields {
		if !f.AnyType || i >= len(argTypes) {
			continue
		}
		if !types.Equal(f.Type, argTypes[i]) {
			return false
		}
	}
	return true
}

func recomputeVectorElem(r *symtab.Record) {
	if len(r.Fields) == 0 {
		r.VectorElem = types.UndefinedT()
		return
	}
	common := r.Fields[0].Type
	uniform := true
	for _, f := range r.Fields[1:] {
		if !types.Equal(f.Type, common) {
			uniform = false
			break
		}
	}
	if uniform {
		r.VectorElem = common
	} else {
		r.VectorElem = types.UndefinedT()
	}
}

func (c *Checker) checkConstructor(v *ast.Constructor) types.Type {
	for _, e := range v.Elems {
		c.check(e, 1)
	}
	if v.Super != nil {
		c.check(v.Super, 1)
	}

	if v.StructIdx < 0 {
		// untyped vector literal
		if len(v.Elems) == 0 {
			return types.VectorT(c.Vars.NewVar())
		}
		u := c.exptypeOf(v.Elems[0])
		for i := 1; i < len(v.Elems); i++ {
			u = c.Vars.Union(u, c.exptypeOf(v.Elems[i]), true, c.Syms)
		}
		for i, e := range v.Elems {
			idx := i
			if !c.coerceTo(func() ast.Node { return v.Elems[idx] }, func(n ast.Node) { v.Elems[idx] = n }, u, true) {
				c.fail(e, diag.ErrTypeMismatch, "vector element does not convert to %s", c.Syms.TypeName(u))
			}
		}
		return types.VectorT(u)
	}

	head := c.Syms.Record(v.StructIdx)
	argTypes := make([]types.Type, 0, len(v.Elems))
	if v.Super != nil {
		superType := c.exptypeOf(v.Super)
		if superType.Kind == types.Struct {
			for _, f := range c.Syms.Record(superType.Idx).Fields {
				argTypes = append(argTypes, f.Type)
			}
		}
	}
	for _, e := range v.Elems {
		argTypes = append(argTypes, c.exptypeOf(e))
	}

	target := head
	anyAnyType := false
	for _, f := range head.Fields {
		if f.AnyType {
			anyAnyType = true
			break
		}
	}
	if anyAnyType {
		target = c.SpecializeStruct(head, argTypes)
	}
	v.ResolvedStructIdx = target.Idx

	fieldOffset := 0
	if v.Super != nil {
		superType := c.exptypeOf(v.Super)
		if superType.Kind == types.Struct {
			fieldOffset = len(c.Syms.Record(superType.Idx).Fields)
		}
	}
	for i, e := range v.Elems {
		fi := fieldOffset + i
		if fi >= len(target.Fields) {
			c.fail(e, diag.ErrArityMismatch, "too many constructor arguments for %s", target.Name)
			continue
		}
		ft := target.Fields[fi].Type
		idx := i
		if !c.coerceTo(func() ast.Node { return v.Elems[idx] }, func(n ast.Node) { v.Elems[idx] = n }, ft, true) {
			c.fail(e, diag.ErrTypeMismatch, "field %s expects %s", target.Fields[fi].Name, c.Syms.TypeName(ft))
		}
	}
	return types.StructT(target.Idx)
}

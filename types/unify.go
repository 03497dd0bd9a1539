package types

// RecordQuery is the subset of the symbol table's record facilities
// the conversion/union rules need. symtab.Table implements it; types
// does not import symtab to keep the dependency one-directional (the
// leaf type-representation package must not depend on the symbol
// table package that embeds it).
type RecordQuery interface {
	// IsSuperTypeOrSame reports whether super is sub's superclass,
	// transitively, or sub == super.
	IsSuperTypeOrSame(sub, super int) bool
	// VectorElemType returns the computed common field type of the
	// record at idx (Undefined if fields are non-uniform).
	VectorElemType(idx int) Type
}

// Coercion identifies the implicit conversion (if any) ConvertsTo
// determined was necessary to make `from` satisfy `to`.
type Coercion int

const (
	NoCoercion Coercion = iota
	CoerceIntToFloat
	CoerceToString
)

// Vars is the type checker's unification table: a growing sequence of
// cells, each Undefined (free) or bound to a concrete type. Bindings
// are monotonic and never rewritten once set, per spec.
type Vars struct {
	cells []Type
}

// NewVar appends a fresh Undefined cell and returns a reference to it.
func (v *Vars) NewVar() Type {
	v.cells = append(v.cells, UndefinedT())
	return VarT(len(v.cells) - 1)
}

// Cell returns the current binding of unification variable idx.
func (v *Vars) Cell(idx int) Type { return v.cells[idx] }

// Promote recursively resolves a Var chain to its bound type and
// rebuilds any wrapper around the resolved element. It never
// allocates new variables and performs no binding.
func (v *Vars) Promote(t Type) Type {
	switch t.Kind {
	case Var:
		cell := v.cells[t.Idx]
		if cell.Kind == Undefined {
			return t
		}
		return v.Promote(cell)
	case Nilable:
		e := v.Promote(*t.Elem)
		return NilableT(e)
	case Vector:
		e := v.Promote(*t.Elem)
		return VectorT(e)
	default:
		return t
	}
}

// UnifyVar binds variable vr's cell to Promote(t), provided the cell
// is currently free and the promoted value is not the same variable
// (which would self-bind). Returns whether a binding occurred or was
// already consistent.
func (v *Vars) UnifyVar(t Type, vr Type) bool {
	p := v.Promote(t)
	if p.Kind == Var && p.Idx == vr.Idx {
		return true
	}
	if cell := v.cells[vr.Idx]; cell.Kind != Undefined {
		return Equal(v.Promote(cell), p)
	}
	v.cells[vr.Idx] = p
	return true
}

// ConvertsTo implements spec.md §3.1's ConvertsTo(from, to,
// allow_coercions) relation, returning the coercion (if any) that
// must be inserted to realize the conversion.
func (v *Vars) ConvertsTo(from, to Type, allowCoercions bool, rq RecordQuery) (bool, Coercion) {
	if Equal(from, to) {
		return true, NoCoercion
	}
	if to.Kind == Any {
		return true, NoCoercion
	}
	if to.Kind == Var {
		return v.UnifyVar(from, to), NoCoercion
	}
	if from.Kind == Var {
		return v.UnifyVar(to, from), NoCoercion
	}
	if to.Kind == Float && from.Kind == Int {
		if allowCoercions {
			return true, CoerceIntToFloat
		}
		return false, NoCoercion
	}
	if to.Kind == String {
		if allowCoercions {
			return true, CoerceToString
		}
		return false, NoCoercion
	}
	if to.Kind == Function && to.Idx == -1 && from.Kind == Function {
		return true, NoCoercion
	}
	if to.Kind == Nilable {
		if from.Kind == Nil {
			return true, NoCoercion
		}
		inner := *to.Elem
		if from.Kind == Nilable {
			ok, _ := v.ConvertsTo(*from.Elem, inner, false, rq)
			return ok, NoCoercion
		}
		ok, _ := v.ConvertsTo(from, inner, false, rq)
		return ok, NoCoercion
	}
	if to.Kind == Vector {
		if from.Kind == Vector {
			ok, _ := v.ConvertsTo(*from.Elem, *to.Elem, false, rq)
			return ok, NoCoercion
		}
		if from.Kind == Struct {
			elem := rq.VectorElemType(from.Idx)
			ok, _ := v.ConvertsTo(elem, *to.Elem, false, rq)
			return ok, NoCoercion
		}
		return false, NoCoercion
	}
	if to.Kind == Struct {
		if from.Kind != Struct {
			return false, NoCoercion
		}
		return rq.IsSuperTypeOrSame(from.Idx, to.Idx), NoCoercion
	}
	return false, NoCoercion
}

// Union computes U(a,b) per spec.md §3.1: b if a converts to b, else a
// if b converts to a, else Vector(Any) if both are vectors, else Any.
func (v *Vars) Union(a, b Type, allowCoercions bool, rq RecordQuery) Type {
	if ok, _ := v.ConvertsTo(a, b, allowCoercions, rq); ok {
		return b
	}
	if ok, _ := v.ConvertsTo(b, a, allowCoercions, rq); ok {
		return a
	}
	if a.Kind == Vector && b.Kind == Vector {
		return VectorT(AnyT())
	}
	return AnyT()
}

// Package natives models the native/built-in function catalog
// consumed (never implemented) by the type checker and code generator
// (spec.md §6.3). Only per-builtin signature metadata is relied upon;
// the actual built-in implementations are an external collaborator.
package natives

import "github.com/fdanielsen/lobster/types"

// ArgFlag tags how an argument's (or return value's) type should be
// specialized against the call site.
type ArgFlag int

const (
	None ArgFlag = iota
	SubArg1
	AnyVar
)

// Param is one argument or return-value slot of a native signature.
type Param struct {
	Type types.Type
	Flag ArgFlag
}

// Signature is one overload of a native function (spec.md §6.3).
// ContExit marks a "continuation" builtin that takes a closure and
// may re-enter it (emitted as CALLVCOND+CONT1 by codegen).
type Signature struct {
	Name     string
	Idx      int
	Args     []Param
	Rets     []Param
	Next     *Signature // overload chain link
	ContExit bool
}

// Catalog is the lookup contract the checker and codegen take as a
// parameter.
type Catalog interface {
	Native(idx int) *Signature
}

// SliceCatalog is the simplest Catalog implementation: a flat slice
// indexed directly by native index.
type SliceCatalog []*Signature

func (c SliceCatalog) Native(idx int) *Signature { return c[idx] }

// Specialize resolves a SubArg1/AnyVar-flagged parameter type against
// the call site's argument-0 type, per spec.md §6.3.
func Specialize(p Param, arg0 types.Type, vars *types.Vars) types.Type {
	switch p.Flag {
	case SubArg1:
		if p.Type.Kind == types.Vector {
			return arg0
		}
		if arg0.Kind == types.Vector {
			return *arg0.Elem
		}
		return arg0
	case AnyVar:
		v := vars.NewVar()
		if p.Type.Kind == types.Vector {
			return types.VectorT(v)
		}
		return v
	default:
		return p.Type
	}
}

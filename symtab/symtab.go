// Package symtab implements the data model and query contract of the
// symbol table the type checker and code generator consume (spec.md
// §3.2-3.4, §6.1). Its construction remains an external collaborator;
// this package only models what a built table looks like and how it
// is queried and cloned during specialization.
package symtab

import (
	"github.com/fdanielsen/lobster/ast"
	"github.com/fdanielsen/lobster/natives"
	"github.com/fdanielsen/lobster/types"
)

// Field is one (name, type, specializable) slot of a Record, in
// declared order.
type Field struct {
	Name    string
	Type    types.Type
	AnyType bool // placeholder awaiting specialization
}

// Record models a struct/class declaration and its specialization
// chain (spec.md §3.2).
type Record struct {
	Name         string
	Idx          int
	Fields       []Field
	Superclass   int // -1 if none
	VectorElem   types.Type
	Typechecked  bool
	Next         *Record // specialization chain, head is unspecialized template
}

// SubFunction is one typed instantiation of a Function (spec.md
// §3.3).
type SubFunction struct {
	Parent       *Function
	Idx          int // index within Parent.Subs
	Args         []Field
	Locals       []Field
	FreeVars     []Field
	Body         []ast.Node
	ReturnTypes  []types.Type
	Typechecked  bool
	SubBytecodeStart int
	// MaxRetsRequested is the largest value-count any call site has
	// asked of this SubFunction, recorded by codegen when it lowers a
	// Call whose callee returns more than one value (spec.md §4.4).
	MaxRetsRequested int
}

// Function is an overload chain of SubFunction specializations
// (spec.md §3.3).
type Function struct {
	Name          string
	Idx           int
	Subs          []*SubFunction // subf chain; Subs[0] is the unspecialized template
	NArgs         int
	NReturns      int
	Multimethod   bool
	Anonymous     bool
	IsType        bool
	BytecodeStart int
	NCalls        int
}

// FieldOffset is one (record, offset) pair in a SharedField's
// dispatch table.
type FieldOffset struct {
	RecordIdx int
	Offset    int
}

// DispatchMode selects the field-access encoding (spec.md §4.5).
type DispatchMode int

const (
	Uniform DispatchMode = iota
	Conditional
	Table
)

// SharedField records one field name shared across records with
// potentially differing offsets (spec.md §3.4).
type SharedField struct {
	Name    string
	Idx     int
	Offsets []FieldOffset
}

// NumUnique returns the count of distinct offsets across Offsets.
func (f *SharedField) NumUnique() int {
	seen := map[int]bool{}
	for _, o := range f.Offsets {
		seen[o.Offset] = true
	}
	return len(seen)
}

// Offset returns the slot offset of this field within record idx, and
// whether the record has the field at all.
func (f *SharedField) Offset(recordIdx int) (int, bool) {
	for _, o := range f.Offsets {
		if o.RecordIdx == recordIdx {
			return o.Offset, true
		}
	}
	return 0, false
}

// Table is the symbol table contract of spec.md §6.1: lookups by
// index, superclass queries, record cloning, field iteration, and
// type-name formatting.
type Table struct {
	Records []*Record
	Funcs   []*Function
	Natives natives.SliceCatalog
	Fields  []*SharedField

	Vars *types.Vars
}

func NewTable(vars *types.Vars) *Table {
	return &Table{Vars: vars}
}

func (t *Table) Record(idx int) *Record     { return t.Records[idx] }
func (t *Table) Function(idx int) *Function { return t.Funcs[idx] }

// Native implements natives.Catalog.
func (t *Table) Native(idx int) *natives.Signature { return t.Natives[idx] }

// IsSuperTypeOrSame implements types.RecordQuery.
func (t *Table) IsSuperTypeOrSame(sub, super int) bool {
	for sub != -1 {
		if sub == super {
			return true
		}
		sub = t.Records[sub].Superclass
	}
	return false
}

// VectorElemType implements types.RecordQuery.
func (t *Table) VectorElemType(idx int) types.Type {
	return t.Records[idx].VectorElem
}

// CloneRecord appends a new Record to the table, copying Fields and
// the inheritance link, and linking it onto head's specialization
// chain. Returns the clone, whose Idx is its position in t.Records.
func (t *Table) CloneRecord(head *Record) *Record {
	fields := make([]Field, len(head.Fields))
	copy(fields, head.Fields)
	clone := &Record{
		Name:       head.Name,
		Idx:        len(t.Records),
		Fields:     fields,
		Superclass: head.Superclass,
	}
	t.Records = append(t.Records, clone)
	// append to the end of the chain starting at head
	cur := head
	for cur.Next != nil {
		cur = cur.Next
	}
	cur.Next = clone
	return clone
}

// CloneSubFunction clones template's argument/local/free-var lists and
// body for specialization against a concrete call site; callers fill
// in the specialized argument types afterward.
func (t *Table) CloneSubFunction(parent *Function, template *SubFunction) *SubFunction {
	sf := &SubFunction{
		Parent:   parent,
		Idx:      len(parent.Subs),
		Args:     append([]Field(nil), template.Args...),
		Locals:   append([]Field(nil), template.Locals...),
		FreeVars: append([]Field(nil), template.FreeVars...),
		Body:     template.Body, // body AST is shared/re-walked per spec's "cloned body"; see typecheck for deep clone
	}
	parent.Subs = append(parent.Subs, sf)
	return sf
}

// AddRecord appends a new top-level record and returns it.
func (t *Table) AddRecord(r *Record) *Record {
	r.Idx = len(t.Records)
	t.Records = append(t.Records, r)
	return r
}

// AddFunction appends a new top-level function and returns it.
func (t *Table) AddFunction(f *Function) *Function {
	f.Idx = len(t.Funcs)
	t.Funcs = append(t.Funcs, f)
	return f
}

// TypeName formats t for diagnostics, resolving Var cells through
// vars (spec.md §6.1's required TypeName formatter).
func (t *Table) TypeName(ty types.Type) string {
	p := t.Vars.Promote(ty)
	switch p.Kind {
	case types.Struct:
		return t.Records[p.Idx].Name
	case types.Function:
		if p.Idx < 0 {
			return "function"
		}
		return t.Funcs[p.Idx].Name
	default:
		return p.String()
	}
}

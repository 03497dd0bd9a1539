// Package ast defines the closed AST node contract the type checker
// and code generator consume (spec.md §3.5, §6.2). The node set is
// owned by this module, unlike go/ast's open hierarchy: lexing and
// parsing are out of scope, but the shape of what a parser hands us
// is fixed here.
package ast

import "github.com/fdanielsen/lobster/types"

// Pos is a source location: a file-table index plus a line number,
// matching the pair the line-info table in emit.Program keys on.
type Pos struct {
	File int
	Line int
}

// Node is satisfied by every concrete AST kind. ExpType is the
// mutable slot the type checker fills in; it starts Undefined.
type Node interface {
	Pos() Pos
	ExpType() types.Type
	SetExpType(t types.Type)
	Children() []Node
}

type base struct {
	P   Pos
	Exp types.Type
}

func (b *base) Pos() Pos               { return b.P }
func (b *base) ExpType() types.Type    { return b.Exp }
func (b *base) SetExpType(t types.Type) { b.Exp = t }

func newBase(p Pos) base { return base{P: p, Exp: types.UndefinedT()} }

// Replace swaps the Node stored at *slot for repl, the "helper that
// swaps a child slot" spec.md §9 calls for when inserting or removing
// a coercion. The old subtree is simply dropped (Go's GC reclaims it);
// there is no separate disposal step to remember.
func Replace(slot *Node, repl Node) { *slot = repl }

// --- literals ---

type IntLit struct {
	base
	Value int64
}

func NewIntLit(p Pos, v int64) *IntLit { return &IntLit{base: newBase(p), Value: v} }
func (n *IntLit) Children() []Node     { return nil }

type FloatLit struct {
	base
	Value float64
}

func NewFloatLit(p Pos, v float64) *FloatLit { return &FloatLit{base: newBase(p), Value: v} }
func (n *FloatLit) Children() []Node         { return nil }

type StringLit struct {
	base
	Value string
}

func NewStringLit(p Pos, v string) *StringLit { return &StringLit{base: newBase(p), Value: v} }
func (n *StringLit) Children() []Node         { return nil }

type NilLit struct{ base }

func NewNilLit(p Pos) *NilLit   { return &NilLit{base: newBase(p)} }
func (n *NilLit) Children() []Node { return nil }

// --- identifiers ---

// Ident references a local, argument, free-variable, or global slot.
// Idx is resolved by the symbol table builder (out of scope here); the
// type checker reads it as a flat slot index across the enclosing
// SubFunction's Args, then Locals, then FreeVars.
type Ident struct {
	base
	Name string
	Idx  int
}

func NewIdent(p Pos, name string, idx int) *Ident { return &Ident{base: newBase(p), Name: name, Idx: idx} }
func (n *Ident) Children() []Node                 { return nil }

// --- operators ---

type BinOp int

const (
	Add BinOp = iota
	Sub
	Mul
	Div
	Mod
	Lt
	Gt
	Le
	Ge
	Eq
	Ne
)

type Binary struct {
	base
	Op    BinOp
	L, R  Node
}

func NewBinary(p Pos, op BinOp, l, r Node) *Binary { return &Binary{base: newBase(p), Op: op, L: l, R: r} }
func (n *Binary) Children() []Node                 { return []Node{n.L, n.R} }

type CompoundOp int

const (
	CPlus CompoundOp = iota
	CMinus
	CMul
	CDiv
	CMod
)

type CompoundAssign struct {
	base
	Op       CompoundOp
	LHS, RHS Node
	NeedsVal bool
}

func NewCompoundAssign(p Pos, op CompoundOp, lhs, rhs Node) *CompoundAssign {
	return &CompoundAssign{base: newBase(p), Op: op, LHS: lhs, RHS: rhs}
}
func (n *CompoundAssign) Children() []Node { return []Node{n.LHS, n.RHS} }

type UnaryMinus struct {
	base
	X Node
}

func NewUnaryMinus(p Pos, x Node) *UnaryMinus { return &UnaryMinus{base: newBase(p), X: x} }
func (n *UnaryMinus) Children() []Node        { return []Node{n.X} }

type LogNot struct {
	base
	X Node
}

func NewLogNot(p Pos, x Node) *LogNot  { return &LogNot{base: newBase(p), X: x} }
func (n *LogNot) Children() []Node     { return []Node{n.X} }

// IncDec covers PP/MM/PPP/MMP: pre/post inc/dec of an lvalue.
type IncDec struct {
	base
	X    Node
	Inc  bool // true: ++, false: --
	Post bool
}

func NewIncDec(p Pos, x Node, inc, post bool) *IncDec {
	return &IncDec{base: newBase(p), X: x, Inc: inc, Post: post}
}
func (n *IncDec) Children() []Node { return []Node{n.X} }

// Coerce wraps a node with an implicit conversion the checker
// inserted (I2F or A2S).
type CoerceKind int

const (
	CoerceI2F CoerceKind = iota
	CoerceA2S
)

type Coerce struct {
	base
	Kind CoerceKind
	X    Node
}

func NewCoerce(kind CoerceKind, x Node) *Coerce {
	c := &Coerce{base: newBase(x.Pos()), Kind: kind, X: x}
	return c
}
func (n *Coerce) Children() []Node { return []Node{n.X} }

// --- bindings ---

// Def introduces one or more new identifiers bound to the (possibly
// multi-valued) RHS.
type Def struct {
	base
	Idents  []*Ident
	Logvars []bool // parallel to Idents: true if flagged "log"
	RHS     Node
}

func NewDef(p Pos, idents []*Ident, logvars []bool, rhs Node) *Def {
	return &Def{base: newBase(p), Idents: idents, Logvars: logvars, RHS: rhs}
}
func (n *Def) Children() []Node {
	out := make([]Node, 0, len(n.Idents)+1)
	for _, id := range n.Idents {
		out = append(out, id)
	}
	return append(out, n.RHS)
}

// Assign is a single-target `lhs = rhs`.
type Assign struct {
	base
	LHS, RHS Node
}

func NewAssign(p Pos, lhs, rhs Node) *Assign { return &Assign{base: newBase(p), LHS: lhs, RHS: rhs} }
func (n *Assign) Children() []Node           { return []Node{n.LHS, n.RHS} }

// AssignList destructures a multi-valued RHS across several LHS
// targets.
type AssignList struct {
	base
	LHS []Node
	RHS Node
}

func NewAssignList(p Pos, lhs []Node, rhs Node) *AssignList {
	return &AssignList{base: newBase(p), LHS: lhs, RHS: rhs}
}
func (n *AssignList) Children() []Node { return append(append([]Node{}, n.LHS...), n.RHS) }

// --- access ---

type FieldAccess struct {
	base
	X     Node
	Field string
	Maybe bool
}

func NewFieldAccess(p Pos, x Node, field string, maybe bool) *FieldAccess {
	return &FieldAccess{base: newBase(p), X: x, Field: field, Maybe: maybe}
}
func (n *FieldAccess) Children() []Node { return []Node{n.X} }

type Index struct {
	base
	X, I Node
}

func NewIndex(p Pos, x, i Node) *Index { return &Index{base: newBase(p), X: x, I: i} }
func (n *Index) Children() []Node      { return []Node{n.X, n.I} }

// --- constructors ---

// Constructor builds a struct (StructIdx >= 0) or an untyped vector
// (StructIdx == -1). Super, if non-nil, contributes the superclass's
// field prefix. ResolvedStructIdx is filled in by the type checker
// once struct specialization (spec.md §4.3) picks the concrete
// specialization to construct; it equals StructIdx when the record
// has no AnyType fields to specialize.
type Constructor struct {
	base
	StructIdx         int
	Elems             []Node
	Super             Node
	ResolvedStructIdx int
}

func NewConstructor(p Pos, structIdx int, elems []Node, super Node) *Constructor {
	return &Constructor{base: newBase(p), StructIdx: structIdx, Elems: elems, Super: super, ResolvedStructIdx: structIdx}
}
func (n *Constructor) Children() []Node {
	if n.Super != nil {
		return append(append([]Node{}, n.Elems...), n.Super)
	}
	return n.Elems
}

// --- type test / control flow ---

type Is struct {
	base
	X        Node
	TestType types.Type
}

func NewIs(p Pos, x Node, testType types.Type) *Is { return &Is{base: newBase(p), X: x, TestType: testType} }
func (n *Is) Children() []Node                     { return []Node{n.X} }

type If struct {
	base
	Cond, Then, Else Node
}

func NewIf(p Pos, cond, then, els Node) *If { return &If{base: newBase(p), Cond: cond, Then: then, Else: els} }
func (n *If) Children() []Node {
	if n.Else != nil {
		return []Node{n.Cond, n.Then, n.Else}
	}
	return []Node{n.Cond, n.Then}
}

type While struct {
	base
	Cond, Body Node
}

func NewWhile(p Pos, cond, body Node) *While { return &While{base: newBase(p), Cond: cond, Body: body} }
func (n *While) Children() []Node            { return []Node{n.Cond, n.Body} }

// For iterates Iter, binding two locals (element, index) inside Body.
type For struct {
	base
	Iter, Body     Node
	ElemIdx, IdxIdx int
}

func NewFor(p Pos, iter, body Node, elemIdx, idxIdx int) *For {
	return &For{base: newBase(p), Iter: iter, Body: body, ElemIdx: elemIdx, IdxIdx: idxIdx}
}
func (n *For) Children() []Node { return []Node{n.Iter, n.Body} }

// Return targets a function either by lexical scope (handled by the
// checker's scope stack) or by explicit FuncIdx (non-local return).
// FuncIdx == -1 means "return from program".
type Return struct {
	base
	X       Node
	FuncIdx int
}

func NewReturn(p Pos, x Node, funcIdx int) *Return { return &Return{base: newBase(p), X: x, FuncIdx: funcIdx} }
func (n *Return) Children() []Node {
	if n.X != nil {
		return []Node{n.X}
	}
	return nil
}

// --- logic ---

type And struct {
	base
	L, R Node
}

func NewAnd(p Pos, l, r Node) *And { return &And{base: newBase(p), L: l, R: r} }
func (n *And) Children() []Node    { return []Node{n.L, n.R} }

type Or struct {
	base
	L, R Node
}

func NewOr(p Pos, l, r Node) *Or { return &Or{base: newBase(p), L: l, R: r} }
func (n *Or) Children() []Node   { return []Node{n.L, n.R} }

// --- sequencing ---

type Seq struct {
	base
	L, R Node
}

func NewSeq(p Pos, l, r Node) *Seq { return &Seq{base: newBase(p), L: l, R: r} }
func (n *Seq) Children() []Node    { return []Node{n.L, n.R} }

type List struct {
	base
	Stmts []Node
}

func NewList(p Pos, stmts []Node) *List { return &List{base: newBase(p), Stmts: stmts} }
func (n *List) Children() []Node        { return n.Stmts }

type MultiRet struct {
	base
	Elems []Node
}

func NewMultiRet(p Pos, elems []Node) *MultiRet { return &MultiRet{base: newBase(p), Elems: elems} }
func (n *MultiRet) Children() []Node            { return n.Elems }

// --- calls ---

// Call invokes a statically-known Function. ResolvedFuncIdx/SubIdx are
// filled in by the type checker (spec.md §9: "resolved by index, not
// by owning pointers" — ownership stays in the symbol table's
// function table).
type Call struct {
	base
	FuncIdx         int
	Args            []Node
	ResolvedFuncIdx int
	ResolvedSubIdx  int
	Multimethod     bool
}

func NewCall(p Pos, funcIdx int, args []Node) *Call {
	return &Call{base: newBase(p), FuncIdx: funcIdx, Args: args, ResolvedSubIdx: -1}
}
func (n *Call) Children() []Node { return n.Args }

// DynCall invokes a first-class function value. ResolvedFuncIdx is
// filled in by the type checker when the callee's static type is a
// concrete Function(idx) (spec.md §4.2's dynamic-call rule); it stays
// -1 when the callee is only known at runtime.
type DynCall struct {
	base
	Callee          Node
	Args            []Node
	ResolvedFuncIdx int
	ResolvedSubIdx  int
	Multimethod     bool
}

func NewDynCall(p Pos, callee Node, args []Node) *DynCall {
	return &DynCall{base: newBase(p), Callee: callee, Args: args, ResolvedFuncIdx: -1, ResolvedSubIdx: -1}
}
func (n *DynCall) Children() []Node { return append([]Node{n.Callee}, n.Args...) }

// NatCall invokes a native/builtin by index into the natives catalog.
type NatCall struct {
	base
	NativeIdx int
	Args      []Node
}

func NewNatCall(p Pos, nativeIdx int, args []Node) *NatCall {
	return &NatCall{base: newBase(p), NativeIdx: nativeIdx, Args: args}
}
func (n *NatCall) Children() []Node { return n.Args }

// --- functions as values, coroutines ---

// FuncVal denotes a function used as a value (anonymous literal, or a
// named function referenced without being called). SubIdx resolves
// into the symbol table the same way Call.Resolved{Func,Sub}Idx does.
type FuncVal struct {
	base
	FuncIdx   int
	SubIdx    int
	Anonymous bool
	Body      Node
}

func NewFuncVal(p Pos, funcIdx, subIdx int, anonymous bool, body Node) *FuncVal {
	return &FuncVal{base: newBase(p), FuncIdx: funcIdx, SubIdx: subIdx, Anonymous: anonymous, Body: body}
}
func (n *FuncVal) Children() []Node {
	if n.Body != nil {
		return []Node{n.Body}
	}
	return nil
}

type CoClosure struct{ base }

func NewCoClosure(p Pos) *CoClosure  { return &CoClosure{base: newBase(p)} }
func (n *CoClosure) Children() []Node { return nil }

type Coroutine struct {
	base
	Body Node
}

func NewCoroutine(p Pos, body Node) *Coroutine { return &Coroutine{base: newBase(p), Body: body} }
func (n *Coroutine) Children() []Node          { return []Node{n.Body} }

// CoroutineAt is the "coroutine-at" access of spec.md §4.4: reading
// (or, as an lvalue, writing) a variable inside a live coroutine's
// frame by identifier index, addressed through the coroutine value X.
type CoroutineAt struct {
	base
	X   Node
	Idx int // identifier_idx within the coroutine's frame
}

func NewCoroutineAt(p Pos, x Node, idx int) *CoroutineAt {
	return &CoroutineAt{base: newBase(p), X: x, Idx: idx}
}
func (n *CoroutineAt) Children() []Node { return []Node{n.X} }

// --- generic traversal helper ---

// Walk calls visit on n and recursively on every child, depth-first,
// pre-order. visit returning false prunes the subtree.
func Walk(n Node, visit func(Node) bool) {
	if n == nil || !visit(n) {
		return
	}
	for _, c := range n.Children() {
		Walk(c, visit)
	}
}

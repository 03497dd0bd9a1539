// Package flow implements the flow-narrowing stack (spec.md §3.6):
// the type checker's cheap alternative to SSA for tracking in-branch
// type refinements of identifier and dot-path accesses.
package flow

import (
	"github.com/fdanielsen/lobster/ast"
	"github.com/fdanielsen/lobster/types"
)

// Path identifies the lvalue shape a flow entry narrows: either a bare
// identifier (Field == "") or a dot access rooted at that identifier.
type Path struct {
	IdentIdx int
	Field    string
}

// Item is one flow-stack entry: the accessed path, its type before
// narrowing, and its narrowed type within the current branch.
type Item struct {
	Path Path
	Old  types.Type
	Now  types.Type
}

// Stack is the ordered flow-narrowing stack. Lifetime is strictly
// scoped to the branch being analyzed: callers Push entries when
// entering a narrowing branch and Truncate back to a saved mark when
// leaving it.
type Stack struct {
	items []Item
}

// Mark returns the current stack depth, to be passed to Truncate when
// the enclosing branch is left.
func (s *Stack) Mark() int { return len(s.items) }

// Truncate drops every entry pushed since mark.
func (s *Stack) Truncate(mark int) { s.items = s.items[:mark] }

// Push records a narrowing of path from old to now.
func (s *Stack) Push(path Path, old, now types.Type) {
	s.items = append(s.items, Item{Path: path, Old: old, Now: now})
}

// PathOf extracts the Path a node denotes, if it is a bare identifier
// or a dot access rooted at one; ok is false for any other shape.
func PathOf(n ast.Node) (Path, bool) {
	switch v := n.(type) {
	case *ast.Ident:
		return Path{IdentIdx: v.Idx}, true
	case *ast.FieldAccess:
		if id, ok := v.X.(*ast.Ident); ok {
			return Path{IdentIdx: id.Idx, Field: v.Field}, true
		}
	}
	return Path{}, false
}

// UseFlow consults the stack top-down for the first entry matching
// path, returning its narrowed type; ok is false if nothing narrows
// path (the caller should use the identifier's declared type as-is).
func (s *Stack) UseFlow(path Path) (types.Type, bool) {
	for i := len(s.items) - 1; i >= 0; i-- {
		if s.items[i].Path == path {
			return s.items[i].Now, true
		}
	}
	return types.Type{}, false
}

// AssignFlow invalidates every entry matching path by resetting Now
// to Old, reflecting that an assignment destroys any narrowing.
func (s *Stack) AssignFlow(path Path) {
	for i := range s.items {
		if s.items[i].Path == path {
			s.items[i].Now = s.items[i].Old
		}
	}
}

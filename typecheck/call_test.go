package typecheck

import (
	"testing"

	"github.com/fdanielsen/lobster/ast"
	"github.com/fdanielsen/lobster/symtab"
	"github.com/fdanielsen/lobster/types"
	"github.com/stretchr/testify/require"
)

// TestFreeVarSpecializationIgnoresCapturedType documents the open-
// question decision recorded in DESIGN.md: specMatches does not
// compare a free variable's captured type across call sites, so two
// calls into the same free-var-capturing function always reuse one
// specialization instead of cloning a second one per distinct
// captured type.
func TestFreeVarSpecializationIgnoresCapturedType(t *testing.T) {
	c, syms := newChecker()
	fn := syms.AddFunction(&symtab.Function{Name: "f", NArgs: 0})
	template := &symtab.SubFunction{
		Parent:      fn,
		Idx:         0,
		FreeVars:    []symtab.Field{{Name: "fv", Type: types.IntT()}},
		Body:        []ast.Node{ast.NewIntLit(ast.Pos{Line: 1}, 0)},
		ReturnTypes: []types.Type{types.IntT()},
	}
	fn.Subs = append(fn.Subs, template)

	call1 := ast.NewCall(ast.Pos{Line: 1}, fn.Idx, nil)
	c.check(call1, 1)
	require.NoError(t, c.Sink.Err)
	require.Len(t, fn.Subs, 2, "first call clones a specialization off the unchecked template")

	call2 := ast.NewCall(ast.Pos{Line: 1}, fn.Idx, nil)
	c.check(call2, 1)
	require.NoError(t, c.Sink.Err)
	require.Len(t, fn.Subs, 2, "second call reuses the existing specialization")
	require.Equal(t, call1.ResolvedSubIdx, call2.ResolvedSubIdx)
}

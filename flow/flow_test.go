package flow

import (
	"testing"

	"github.com/fdanielsen/lobster/types"
	"github.com/stretchr/testify/require"
)

func TestUseFlowTopDown(t *testing.T) {
	var s Stack
	p := Path{IdentIdx: 1}
	// The older entry narrows to a different type than the newer one, so
	// only a top-down scan returns Int.
	s.Push(p, types.AnyT(), types.NilableT(types.IntT()))
	s.Push(p, types.NilableT(types.IntT()), types.IntT())

	got, ok := s.UseFlow(p)
	require.True(t, ok)
	require.True(t, types.Equal(got, types.IntT()))
}

func TestAssignFlowInvalidates(t *testing.T) {
	var s Stack
	p := Path{IdentIdx: 2}
	s.Push(p, types.NilableT(types.IntT()), types.IntT())
	s.AssignFlow(p)

	got, ok := s.UseFlow(p)
	require.True(t, ok)
	require.True(t, types.Equal(got, types.NilableT(types.IntT())))
}

func TestTruncateToMark(t *testing.T) {
	var s Stack
	p := Path{IdentIdx: 3}
	mark := s.Mark()
	s.Push(p, types.AnyT(), types.IntT())
	require.Equal(t, 1, s.Mark())
	s.Truncate(mark)
	_, ok := s.UseFlow(p)
	require.False(t, ok)
}

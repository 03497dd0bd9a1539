package emit

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMarkLineNonRepeating(t *testing.T) {
	var p Program
	p.MarkLine(1, 0)
	p.Int(42)
	p.MarkLine(1, 0) // same pair: must not duplicate
	p.Int(43)
	p.MarkLine(2, 0)

	require.Len(t, p.Lines, 2)
	require.Equal(t, 1, p.Lines[0].Line)
	require.Equal(t, 0, p.Lines[0].CodeOffset)
	require.Equal(t, 2, p.Lines[1].Line)
	require.Equal(t, 2, p.Lines[1].CodeOffset)
}

func TestReserveAndPatch(t *testing.T) {
	var p Program
	p.Int(1)
	slot := p.Reserve()
	p.Int(3)
	require.EqualValues(t, 0, p.At(slot))
	p.PatchAt(slot, 99)
	require.EqualValues(t, 99, p.At(slot))
}

func TestStringTerminatorAndFloatRoundtrip(t *testing.T) {
	var p Program
	p.String("hi")
	require.Len(t, p.Code, 3)
	require.EqualValues(t, 'h', p.Code[0])
	require.EqualValues(t, 'i', p.Code[1])
	require.EqualValues(t, 0, p.Code[2])

	p2 := &Program{}
	p2.Float(3.5)
	require.Len(t, p2.Code, 2)
	bits := uint64(uint32(p2.Code[0]))<<32 | uint64(uint32(p2.Code[1]))
	require.Equal(t, 3.5, math.Float64frombits(bits))
}

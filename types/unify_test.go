package types

import "testing"

import "github.com/stretchr/testify/require"

type fakeRecords struct {
	supers map[int]int
	elems  map[int]Type
}

func (f *fakeRecords) IsSuperTypeOrSame(sub, super int) bool {
	if sub == super {
		return true
	}
	for s, ok := f.supers[sub]; ok; s, ok = f.supers[s] {
		if s == super {
			return true
		}
	}
	return false
}

func (f *fakeRecords) VectorElemType(idx int) Type {
	if t, ok := f.elems[idx]; ok {
		return t
	}
	return UndefinedT()
}

func TestPromoteIdempotent(t *testing.T) {
	var v Vars
	a := v.NewVar()
	v.UnifyVar(IntT(), a)
	p1 := v.Promote(a)
	p2 := v.Promote(p1)
	require.True(t, Equal(p1, p2))
}

func TestPromoteNeverRebinds(t *testing.T) {
	var v Vars
	a := v.NewVar()
	require.True(t, v.UnifyVar(IntT(), a))
	require.False(t, v.UnifyVar(FloatT(), a))
	require.True(t, Equal(v.Promote(a), IntT()))
}

func TestConvertsToAnyAlwaysTrue(t *testing.T) {
	var v Vars
	rq := &fakeRecords{}
	for _, ty := range []Type{IntT(), FloatT(), StringT(), NilT(), VectorT(IntT()), StructT(0), CoroutineT()} {
		ok, _ := v.ConvertsTo(ty, AnyT(), false, rq)
		require.True(t, ok, "%s -> Any", ty)
	}
}

func TestUnionCommutative(t *testing.T) {
	var v Vars
	rq := &fakeRecords{}
	cases := [][2]Type{{IntT(), FloatT()}, {StringT(), IntT()}, {VectorT(IntT()), VectorT(StringT())}}
	for _, c := range cases {
		u1 := v.Union(c[0], c[1], true, rq)
		u2 := v.Union(c[1], c[0], true, rq)
		require.True(t, Equal(u1, u2), "Union(%s,%s)=%s != Union(%s,%s)=%s", c[0], c[1], u1, c[1], c[0], u2)
	}
}

func TestConvertsToCoercions(t *testing.T) {
	var v Vars
	rq := &fakeRecords{}
	ok, co := v.ConvertsTo(IntT(), FloatT(), true, rq)
	require.True(t, ok)
	require.Equal(t, CoerceIntToFloat, co)

	ok, co = v.ConvertsTo(IntT(), FloatT(), false, rq)
	require.False(t, ok)

	ok, co = v.ConvertsTo(IntT(), StringT(), true, rq)
	require.True(t, ok)
	require.Equal(t, CoerceToString, co)
}

func TestConvertsToStructSubclass(t *testing.T) {
	var v Vars
	rq := &fakeRecords{supers: map[int]int{1: 0}}
	ok, _ := v.ConvertsTo(StructT(1), StructT(0), false, rq)
	require.True(t, ok)
	ok, _ = v.ConvertsTo(StructT(0), StructT(1), false, rq)
	require.False(t, ok)
}

func TestConvertsToNilable(t *testing.T) {
	var v Vars
	rq := &fakeRecords{}
	ok, _ := v.ConvertsTo(NilT(), NilableT(IntT()), false, rq)
	require.True(t, ok)
	ok, _ = v.ConvertsTo(IntT(), NilableT(IntT()), false, rq)
	require.True(t, ok)
	ok, _ = v.ConvertsTo(NilableT(IntT()), NilableT(FloatT()), false, rq)
	require.False(t, ok)
}

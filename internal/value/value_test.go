package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssignStrict(t *testing.T) {
	dest := NewUint32(0)
	out, err := dest.Assign(NewUint32(42))
	require.NoError(t, err)
	u, ok := out.AsUint64()
	assert.True(t, ok)
	assert.Equal(t, uint64(42), u)

	_, err = dest.Assign(NewInt32(1))
	assert.Error(t, err, "strict assign must reject type mismatch")
}

func TestAssignStrictIntoEmptyAllowsAnyType(t *testing.T) {
	out, err := Empty().Assign(NewString("hello"))
	require.NoError(t, err)
	s, ok := out.AsString()
	assert.True(t, ok)
	assert.Equal(t, "hello", s)
}

func TestConvertAssignNumericWidening(t *testing.T) {
	dest := NewInt64(0)
	out, err := dest.ConvertAssign(NewInt8(-5))
	require.NoError(t, err)
	i, _ := out.AsInt64()
	assert.Equal(t, int64(-5), i)
}

func TestConvertAssignOverflowRejected(t *testing.T) {
	dest := NewInt8(0)
	_, err := dest.ConvertAssign(NewInt32(1000))
	assert.Error(t, err)
}

func TestConvertAssignRejectsBoolNumeric(t *testing.T) {
	_, err := NewInt32(0).ConvertAssign(NewBool(true))
	assert.Error(t, err)
}

func TestConvertAssignRejectsString(t *testing.T) {
	_, err := NewInt32(0).ConvertAssign(NewString("5"))
	assert.Error(t, err)
}

func TestDynamicAssignOverwritesRegardlessOfType(t *testing.T) {
	dest := NewUint32(0)
	out := dest.DynamicAssign(NewStruct("Pair", []Field{
		{Name: "a", Value: NewInt8(1)},
		{Name: "b", Value: NewInt8(2)},
	}))
	assert.Equal(t, KindStruct, out.TypeOf())
}

func TestGetFieldNestedPath(t *testing.T) {
	inner := NewStruct("Inner", []Field{{Name: "c", Value: NewInt32(7)}})
	arr, err := NewArrayOf(KindStruct, []Value{inner, inner})
	require.NoError(t, err)
	root := NewStruct("Outer", []Field{
		{Name: "b", Value: arr},
	})
	got, ok := root.GetField("b[1].c")
	require.True(t, ok)
	i, _ := got.AsInt64()
	assert.Equal(t, int64(7), i)
}

func TestGetFieldMissingPathFails(t *testing.T) {
	root := NewStruct("Outer", []Field{{Name: "a", Value: NewInt32(1)}})
	_, ok := root.GetField("nonexistent")
	assert.False(t, ok)
}

func TestSetFieldNested(t *testing.T) {
	inner := NewStruct("Inner", []Field{{Name: "c", Value: NewInt32(7)}})
	arr, err := NewArrayOf(KindStruct, []Value{inner})
	require.NoError(t, err)
	root := NewStruct("Outer", []Field{{Name: "b", Value: arr}})

	updated, err := root.SetField("b[0].c", NewInt32(99))
	require.NoError(t, err)
	got, ok := updated.GetField("b[0].c")
	require.True(t, ok)
	i, _ := got.AsInt64()
	assert.Equal(t, int64(99), i)

	// original is untouched (values are immutable copies)
	orig, _ := root.GetField("b[0].c")
	origI, _ := orig.AsInt64()
	assert.Equal(t, int64(7), origI)
}

func TestSetFieldMissingPathFails(t *testing.T) {
	root := NewStruct("Outer", []Field{{Name: "a", Value: NewInt32(1)}})
	_, err := root.SetField("missing", NewInt32(5))
	assert.Error(t, err)
}

func TestCompareOrdering(t *testing.T) {
	ord, err := NewInt32(1).Compare(NewInt32(2))
	require.NoError(t, err)
	assert.Equal(t, OrderLess, ord)

	_, err = NewInt32(1).Compare(NewUint32(1))
	assert.Error(t, err, "mismatched types are unordered")
}

func TestEqualStructural(t *testing.T) {
	a := NewStruct("P", []Field{{Name: "x", Value: NewInt8(1)}})
	b := NewStruct("P", []Field{{Name: "x", Value: NewInt8(1)}})
	assert.True(t, a.Equal(b))
}

func TestJSONEmission(t *testing.T) {
	v := NewStruct("P", []Field{
		{Name: "x", Value: NewInt32(1)},
		{Name: "y", Value: NewString("hi")},
	})
	assert.JSONEq(t, `{"x":1,"y":"hi"}`, v.String())
}

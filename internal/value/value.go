// Package value implements the engine's typed value model: a tagged
// union that carries scalars, fixed-length arrays, and named structures
// across the workspace and instruction layers.
package value

import "fmt"

// Kind identifies the concrete shape a Value currently holds.
type Kind int

const (
	KindEmpty Kind = iota
	KindBool
	KindInt8
	KindInt16
	KindInt32
	KindInt64
	KindUint8
	KindUint16
	KindUint32
	KindUint64
	KindFloat32
	KindFloat64
	KindChar8
	KindString
	KindArray
	KindStruct
)

func (k Kind) String() string {
	switch k {
	case KindEmpty:
		return "empty"
	case KindBool:
		return "bool"
	case KindInt8:
		return "int8"
	case KindInt16:
		return "int16"
	case KindInt32:
		return "int32"
	case KindInt64:
		return "int64"
	case KindUint8:
		return "uint8"
	case KindUint16:
		return "uint16"
	case KindUint32:
		return "uint32"
	case KindUint64:
		return "uint64"
	case KindFloat32:
		return "float32"
	case KindFloat64:
		return "float64"
	case KindChar8:
		return "char8"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindStruct:
		return "struct"
	default:
		return "unknown"
	}
}

func isSignedInt(k Kind) bool {
	return k == KindInt8 || k == KindInt16 || k == KindInt32 || k == KindInt64
}

func isUnsignedInt(k Kind) bool {
	return k == KindUint8 || k == KindUint16 || k == KindUint32 || k == KindUint64
}

func isFloat(k Kind) bool {
	return k == KindFloat32 || k == KindFloat64
}

func isNumeric(k Kind) bool {
	return isSignedInt(k) || isUnsignedInt(k) || isFloat(k)
}

// Field is one named, ordered member of a struct-kind Value.
type Field struct {
	Name  string
	Value Value
}

// Value is the tagged union. The zero Value is KindEmpty.
type Value struct {
	kind Kind

	b bool
	i int64
	u uint64
	f float64
	c byte
	s string

	elemKind Kind
	arr      []Value

	structName string
	fields     []Field
}

// Empty returns the canonical empty value.
func Empty() Value { return Value{kind: KindEmpty} }

// IsEmpty reports whether v carries no type yet.
func (v Value) IsEmpty() bool { return v.kind == KindEmpty }

// TypeOf returns the kind currently held by v.
func (v Value) TypeOf() Kind { return v.kind }

// StructName returns the struct type name, or "" if v is not KindStruct.
func (v Value) StructName() string { return v.structName }

// ElementKind returns the declared element kind of an array, or KindEmpty
// if v is not KindArray.
func (v Value) ElementKind() Kind { return v.elemKind }

// Len returns the number of elements for an array, or the number of
// fields for a struct; 0 otherwise.
func (v Value) Len() int {
	switch v.kind {
	case KindArray:
		return len(v.arr)
	case KindStruct:
		return len(v.fields)
	default:
		return 0
	}
}

func NewBool(b bool) Value    { return Value{kind: KindBool, b: b} }
func NewInt8(i int8) Value    { return Value{kind: KindInt8, i: int64(i)} }
func NewInt16(i int16) Value  { return Value{kind: KindInt16, i: int64(i)} }
func NewInt32(i int32) Value  { return Value{kind: KindInt32, i: int64(i)} }
func NewInt64(i int64) Value  { return Value{kind: KindInt64, i: i} }
func NewUint8(u uint8) Value  { return Value{kind: KindUint8, u: uint64(u)} }
func NewUint16(u uint16) Value { return Value{kind: KindUint16, u: uint64(u)} }
func NewUint32(u uint32) Value { return Value{kind: KindUint32, u: uint64(u)} }
func NewUint64(u uint64) Value { return Value{kind: KindUint64, u: u} }
func NewFloat32(f float32) Value { return Value{kind: KindFloat32, f: float64(f)} }
func NewFloat64(f float64) Value { return Value{kind: KindFloat64, f: f} }
func NewChar8(c byte) Value   { return Value{kind: KindChar8, c: c} }
func NewString(s string) Value { return Value{kind: KindString, s: s} }

// NewArray builds a fixed-length array of elemKind, all elements empty.
func NewArray(elemKind Kind, length int) Value {
	arr := make([]Value, length)
	return Value{kind: KindArray, elemKind: elemKind, arr: arr}
}

// NewArrayOf builds an array of elemKind from already-constructed
// elements; every non-empty element must be of elemKind.
func NewArrayOf(elemKind Kind, elems []Value) (Value, error) {
	for i, e := range elems {
		if !e.IsEmpty() && e.TypeOf() != elemKind {
			return Value{}, fmt.Errorf("value: array element %d has type %s, want %s", i, e.TypeOf(), elemKind)
		}
	}
	cp := make([]Value, len(elems))
	copy(cp, elems)
	return Value{kind: KindArray, elemKind: elemKind, arr: cp}, nil
}

// NewStruct builds a named structure from ordered fields.
func NewStruct(name string, fields []Field) Value {
	cp := make([]Field, len(fields))
	copy(cp, fields)
	return Value{kind: KindStruct, structName: name, fields: cp}
}

func (v Value) AsBool() (bool, bool)       { return v.b, v.kind == KindBool }
func (v Value) AsInt64() (int64, bool)     { return v.i, isSignedInt(v.kind) }
func (v Value) AsUint64() (uint64, bool)   { return v.u, isUnsignedInt(v.kind) }
func (v Value) AsFloat64() (float64, bool) { return v.f, isFloat(v.kind) }
func (v Value) AsChar8() (byte, bool)      { return v.c, v.kind == KindChar8 }
func (v Value) AsString() (string, bool)   { return v.s, v.kind == KindString }

// Elements returns a copy of the array elements, or nil if v is not
// KindArray.
func (v Value) Elements() []Value {
	if v.kind != KindArray {
		return nil
	}
	cp := make([]Value, len(v.arr))
	copy(cp, v.arr)
	return cp
}

// Fields returns a copy of the struct fields in declaration order, or
// nil if v is not KindStruct.
func (v Value) Fields() []Field {
	if v.kind != KindStruct {
		return nil
	}
	cp := make([]Field, len(v.fields))
	copy(cp, v.fields)
	return cp
}

// FieldByName returns a struct field's value by name.
func (v Value) FieldByName(name string) (Value, bool) {
	if v.kind != KindStruct {
		return Value{}, false
	}
	for _, f := range v.fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return Value{}, false
}

// withFieldByName returns a copy of v with the named field replaced.
func (v Value) withFieldByName(name string, newVal Value) (Value, bool) {
	if v.kind != KindStruct {
		return Value{}, false
	}
	cp := make([]Field, len(v.fields))
	copy(cp, v.fields)
	for i, f := range cp {
		if f.Name == name {
			cp[i].Value = newVal
			return Value{kind: KindStruct, structName: v.structName, fields: cp}, true
		}
	}
	return Value{}, false
}

// withElement returns a copy of v (an array) with element i replaced.
func (v Value) withElement(i int, newVal Value) (Value, bool) {
	if v.kind != KindArray || i < 0 || i >= len(v.arr) {
		return Value{}, false
	}
	cp := make([]Value, len(v.arr))
	copy(cp, v.arr)
	cp[i] = newVal
	return Value{kind: KindArray, elemKind: v.elemKind, arr: cp}, true
}

// Equal reports structural equality.
func (v Value) Equal(other Value) bool {
	cmp, err := v.Compare(other)
	return err == nil && cmp == OrderEqual
}

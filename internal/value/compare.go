package value

import "fmt"

// Ordering is the result of comparing two values.
type Ordering int

const (
	OrderLess Ordering = iota
	OrderEqual
	OrderGreater
	OrderUnordered
)

// Compare orders two values. Mismatched or incomparable types yield
// OrderUnordered with a descriptive error (callers that only need a
// boolean equality check should use Equal, which treats error+Unordered
// as "not equal").
func (v Value) Compare(other Value) (Ordering, error) {
	if v.kind != other.kind {
		return OrderUnordered, fmt.Errorf("value: cannot compare %s with %s", v.kind, other.kind)
	}
	switch v.kind {
	case KindEmpty:
		return OrderEqual, nil
	case KindBool:
		if v.b == other.b {
			return OrderEqual, nil
		}
		if !v.b && other.b {
			return OrderLess, nil
		}
		return OrderGreater, nil
	case KindInt8, KindInt16, KindInt32, KindInt64:
		return compareInt64(v.i, other.i), nil
	case KindUint8, KindUint16, KindUint32, KindUint64:
		return compareUint64(v.u, other.u), nil
	case KindFloat32, KindFloat64:
		return compareFloat64(v.f, other.f), nil
	case KindChar8:
		return compareInt64(int64(v.c), int64(other.c)), nil
	case KindString:
		if v.s == other.s {
			return OrderEqual, nil
		}
		if v.s < other.s {
			return OrderLess, nil
		}
		return OrderGreater, nil
	case KindArray:
		return compareArrays(v, other)
	case KindStruct:
		return compareStructs(v, other)
	default:
		return OrderUnordered, fmt.Errorf("value: unknown kind %s", v.kind)
	}
}

func compareInt64(a, b int64) Ordering {
	switch {
	case a == b:
		return OrderEqual
	case a < b:
		return OrderLess
	default:
		return OrderGreater
	}
}

func compareUint64(a, b uint64) Ordering {
	switch {
	case a == b:
		return OrderEqual
	case a < b:
		return OrderLess
	default:
		return OrderGreater
	}
}

func compareFloat64(a, b float64) Ordering {
	switch {
	case a == b:
		return OrderEqual
	case a < b:
		return OrderLess
	default:
		return OrderGreater
	}
}

func compareArrays(a, b Value) (Ordering, error) {
	if a.elemKind != b.elemKind || len(a.arr) != len(b.arr) {
		return OrderUnordered, fmt.Errorf("value: arrays not comparable: shape mismatch")
	}
	for i := range a.arr {
		ord, err := a.arr[i].Compare(b.arr[i])
		if err != nil {
			return OrderUnordered, err
		}
		if ord != OrderEqual {
			return ord, nil
		}
	}
	return OrderEqual, nil
}

func compareStructs(a, b Value) (Ordering, error) {
	if a.structName != b.structName || len(a.fields) != len(b.fields) {
		return OrderUnordered, fmt.Errorf("value: structs not comparable: shape mismatch")
	}
	for i := range a.fields {
		if a.fields[i].Name != b.fields[i].Name {
			return OrderUnordered, fmt.Errorf("value: structs not comparable: field name mismatch")
		}
		ord, err := a.fields[i].Value.Compare(b.fields[i].Value)
		if err != nil {
			return OrderUnordered, err
		}
		if ord != OrderEqual {
			return ord, nil
		}
	}
	return OrderEqual, nil
}

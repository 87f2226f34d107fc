package value

import (
	"fmt"
	"math"
)

// Assign performs a strict assignment: the destination type must equal
// the source type, or the destination must be empty. Returns the
// resulting value (TypedValue is copied, never mutated in place by the
// caller's own reference).
func (v Value) Assign(src Value) (Value, error) {
	if !v.IsEmpty() && v.kind != src.kind {
		return Value{}, fmt.Errorf("value: strict assign type mismatch: dest=%s src=%s", v.kind, src.kind)
	}
	if v.kind == KindStruct && src.kind == KindStruct && v.structName != "" && v.structName != src.structName {
		return Value{}, fmt.Errorf("value: strict assign struct type mismatch: dest=%s src=%s", v.structName, src.structName)
	}
	if v.kind == KindArray && src.kind == KindArray && !v.IsEmpty() && v.elemKind != src.elemKind {
		return Value{}, fmt.Errorf("value: strict assign array element mismatch: dest=%s src=%s", v.elemKind, src.elemKind)
	}
	return src, nil
}

// ConvertAssign assigns src into a value of v's declared type, allowing
// numeric widening/narrowing when the value fits. Bool<->numeric and any
// conversion to/from string are rejected.
func (v Value) ConvertAssign(src Value) (Value, error) {
	if v.IsEmpty() {
		return src, nil
	}
	if v.kind == src.kind {
		return v.Assign(src)
	}
	if v.kind == KindString || src.kind == KindString {
		return Value{}, fmt.Errorf("value: convert assign: string is never implicitly converted (dest=%s src=%s)", v.kind, src.kind)
	}
	if v.kind == KindBool || src.kind == KindBool {
		return Value{}, fmt.Errorf("value: convert assign: bool<->numeric conversion disallowed (dest=%s src=%s)", v.kind, src.kind)
	}
	if !isNumeric(v.kind) || !isNumeric(src.kind) {
		return Value{}, fmt.Errorf("value: convert assign: unsupported conversion %s -> %s", src.kind, v.kind)
	}
	return convertNumeric(v.kind, src)
}

// DynamicAssign overwrites v with a copy of src regardless of type. Used
// only when a variable has opted into dynamic typing.
func (v Value) DynamicAssign(src Value) Value {
	return src
}

func convertNumeric(destKind Kind, src Value) (Value, error) {
	switch {
	case isSignedInt(src.kind):
		return fromInt64(destKind, src.i)
	case isUnsignedInt(src.kind):
		return fromUint64(destKind, src.u)
	case isFloat(src.kind):
		return fromFloat64(destKind, src.f)
	default:
		return Value{}, fmt.Errorf("value: convert assign: source %s is not numeric", src.kind)
	}
}

func fromInt64(destKind Kind, i int64) (Value, error) {
	switch destKind {
	case KindInt8:
		if i < math.MinInt8 || i > math.MaxInt8 {
			return Value{}, fmt.Errorf("value: %d does not fit in int8", i)
		}
		return NewInt8(int8(i)), nil
	case KindInt16:
		if i < math.MinInt16 || i > math.MaxInt16 {
			return Value{}, fmt.Errorf("value: %d does not fit in int16", i)
		}
		return NewInt16(int16(i)), nil
	case KindInt32:
		if i < math.MinInt32 || i > math.MaxInt32 {
			return Value{}, fmt.Errorf("value: %d does not fit in int32", i)
		}
		return NewInt32(int32(i)), nil
	case KindInt64:
		return NewInt64(i), nil
	case KindUint8, KindUint16, KindUint32, KindUint64:
		if i < 0 {
			return Value{}, fmt.Errorf("value: negative %d does not fit in %s", i, destKind)
		}
		return fromUint64(destKind, uint64(i))
	case KindFloat32:
		return NewFloat32(float32(i)), nil
	case KindFloat64:
		return NewFloat64(float64(i)), nil
	default:
		return Value{}, fmt.Errorf("value: unsupported destination kind %s", destKind)
	}
}

func fromUint64(destKind Kind, u uint64) (Value, error) {
	switch destKind {
	case KindUint8:
		if u > math.MaxUint8 {
			return Value{}, fmt.Errorf("value: %d does not fit in uint8", u)
		}
		return NewUint8(uint8(u)), nil
	case KindUint16:
		if u > math.MaxUint16 {
			return Value{}, fmt.Errorf("value: %d does not fit in uint16", u)
		}
		return NewUint16(uint16(u)), nil
	case KindUint32:
		if u > math.MaxUint32 {
			return Value{}, fmt.Errorf("value: %d does not fit in uint32", u)
		}
		return NewUint32(uint32(u)), nil
	case KindUint64:
		return NewUint64(u), nil
	case KindInt8, KindInt16, KindInt32, KindInt64:
		if u > math.MaxInt64 {
			return Value{}, fmt.Errorf("value: %d does not fit in signed destination", u)
		}
		return fromInt64(destKind, int64(u))
	case KindFloat32:
		return NewFloat32(float32(u)), nil
	case KindFloat64:
		return NewFloat64(float64(u)), nil
	default:
		return Value{}, fmt.Errorf("value: unsupported destination kind %s", destKind)
	}
}

func fromFloat64(destKind Kind, f float64) (Value, error) {
	switch destKind {
	case KindFloat32:
		return NewFloat32(float32(f)), nil
	case KindFloat64:
		return NewFloat64(f), nil
	case KindInt8, KindInt16, KindInt32, KindInt64, KindUint8, KindUint16, KindUint32, KindUint64:
		if f != math.Trunc(f) {
			return Value{}, fmt.Errorf("value: %v has a fractional part, cannot convert to %s", f, destKind)
		}
		if f >= 0 {
			return fromUint64(destKind, uint64(f))
		}
		return fromInt64(destKind, int64(f))
	default:
		return Value{}, fmt.Errorf("value: unsupported destination kind %s", destKind)
	}
}

// TryConvert is the attribute-layer-facing convenience wrapper around
// ConvertAssign: it builds an empty value of wantKind and converts src
// into it.
func TryConvert(src Value, wantKind Kind) (Value, error) {
	dest := emptyOfKind(wantKind)
	return dest.ConvertAssign(src)
}

func emptyOfKind(k Kind) Value {
	switch k {
	case KindBool:
		return NewBool(false)
	case KindInt8:
		return NewInt8(0)
	case KindInt16:
		return NewInt16(0)
	case KindInt32:
		return NewInt32(0)
	case KindInt64:
		return NewInt64(0)
	case KindUint8:
		return NewUint8(0)
	case KindUint16:
		return NewUint16(0)
	case KindUint32:
		return NewUint32(0)
	case KindUint64:
		return NewUint64(0)
	case KindFloat32:
		return NewFloat32(0)
	case KindFloat64:
		return NewFloat64(0)
	case KindChar8:
		return NewChar8(0)
	case KindString:
		return NewString("")
	default:
		return Empty()
	}
}

package value

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// MarshalJSON emits v as plain JSON: scalars as JSON scalars, arrays as
// JSON arrays, structs as JSON objects in field-declaration order.
// Emission only ever writes JSON (gjson, used in internal/attribute, is
// read-only), so it goes through encoding/json directly.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindEmpty:
		return []byte("null"), nil
	case KindBool:
		return json.Marshal(v.b)
	case KindInt8, KindInt16, KindInt32, KindInt64:
		return json.Marshal(v.i)
	case KindUint8, KindUint16, KindUint32, KindUint64:
		return json.Marshal(v.u)
	case KindFloat32, KindFloat64:
		return json.Marshal(v.f)
	case KindChar8:
		return json.Marshal(string(rune(v.c)))
	case KindString:
		return json.Marshal(v.s)
	case KindArray:
		var buf bytes.Buffer
		buf.WriteByte('[')
		for i, e := range v.arr {
			if i > 0 {
				buf.WriteByte(',')
			}
			b, err := e.MarshalJSON()
			if err != nil {
				return nil, err
			}
			buf.Write(b)
		}
		buf.WriteByte(']')
		return buf.Bytes(), nil
	case KindStruct:
		var buf bytes.Buffer
		buf.WriteByte('{')
		for i, f := range v.fields {
			if i > 0 {
				buf.WriteByte(',')
			}
			name, err := json.Marshal(f.Name)
			if err != nil {
				return nil, err
			}
			buf.Write(name)
			buf.WriteByte(':')
			b, err := f.Value.MarshalJSON()
			if err != nil {
				return nil, err
			}
			buf.Write(b)
		}
		buf.WriteByte('}')
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("value: cannot marshal kind %s", v.kind)
	}
}

func (v Value) String() string {
	b, err := v.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("<value kind=%s unmarshalable: %v>", v.kind, err)
	}
	return string(b)
}

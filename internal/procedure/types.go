package procedure

import (
	"encoding/json"
	"fmt"

	"github.com/lyzr/sequencer/internal/value"
)

// jsonTypeDescriptor is the inline/file shape a RegisterTypeDoc names:
// a struct type name and its field kinds, in declaration order isn't
// preserved by a Go map but RegisterType only needs the field set, not
// an ordering (spec.md §4.1's struct comparison is by field name, not
// position).
type jsonTypeDescriptor struct {
	Name   string            `json:"name"`
	Fields map[string]string `json:"fields"`
}

func zeroValueOfKind(kind value.Kind) value.Value {
	switch kind {
	case value.KindBool:
		return value.NewBool(false)
	case value.KindInt8:
		return value.NewInt8(0)
	case value.KindInt16:
		return value.NewInt16(0)
	case value.KindInt32:
		return value.NewInt32(0)
	case value.KindInt64:
		return value.NewInt64(0)
	case value.KindUint8:
		return value.NewUint8(0)
	case value.KindUint16:
		return value.NewUint16(0)
	case value.KindUint32:
		return value.NewUint32(0)
	case value.KindUint64:
		return value.NewUint64(0)
	case value.KindFloat32:
		return value.NewFloat32(0)
	case value.KindFloat64:
		return value.NewFloat64(0)
	case value.KindChar8:
		return value.NewChar8(0)
	case value.KindString:
		return value.NewString("")
	default:
		return value.Empty()
	}
}

// decodeRegisterType turns one RegisterTypeDoc into a KindStruct
// prototype value.Workspace.RegisterType can store. JSONFile entries
// are loaded through loader (the same DocLoader a Store uses to read
// procedure files), since a type descriptor file is just another
// small JSON document keyed by path.
func decodeRegisterType(rt RegisterTypeDoc, loader DocLoader) (value.Value, error) {
	raw := []byte(rt.JSONType)
	if rt.JSONType == "" {
		if rt.JSONFile == "" {
			return value.Value{}, fmt.Errorf("procedure: RegisterType entry has neither JSONType nor JSONFile")
		}
		loaded, err := loader.Load(rt.JSONFile)
		if err != nil {
			return value.Value{}, fmt.Errorf("procedure: RegisterType: load %q: %w", rt.JSONFile, err)
		}
		raw = loaded
	}

	var desc jsonTypeDescriptor
	if err := json.Unmarshal(raw, &desc); err != nil {
		return value.Value{}, fmt.Errorf("procedure: RegisterType: decode: %w", err)
	}
	if desc.Name == "" {
		return value.Value{}, fmt.Errorf("procedure: RegisterType: type descriptor has no name")
	}

	fields := make([]value.Field, 0, len(desc.Fields))
	for name, kindName := range desc.Fields {
		kind, err := kindByName(kindName)
		if err != nil {
			return value.Value{}, fmt.Errorf("procedure: RegisterType %q: field %q: %w", desc.Name, name, err)
		}
		fields = append(fields, value.Field{Name: name, Value: zeroValueOfKind(kind)})
	}
	return value.NewStruct(desc.Name, fields), nil
}

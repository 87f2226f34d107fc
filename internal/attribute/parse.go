package attribute

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/lyzr/sequencer/internal/value"
)

// parseLiteral turns a supplied attribute's raw string into a typed
// value.Value per the target kind, following spec.md §4.2's literal
// parsing rules: booleans accept "true"/"yes"/"on" case-insensitively
// (anything else is false), strings pass through unchanged, and every
// other scalar goes through strict JSON-scalar parsing that rejects
// trailing garbage or multi-token input. Array and struct kinds are not
// literal-parseable attribute types and are rejected.
//
// gjson is used here (rather than encoding/json) because the engine
// already has the raw string and only needs a single scalar token
// recognized, not a full unmarshal target allocated per call.
func parseLiteral(raw string, kind value.Kind) (value.Value, error) {
	switch kind {
	case value.KindBool:
		trimmed := strings.TrimSpace(raw)
		switch strings.ToLower(trimmed) {
		case "true", "yes", "on":
			return value.NewBool(true), nil
		default:
			return value.NewBool(false), nil
		}
	case value.KindString:
		return value.NewString(raw), nil
	case value.KindChar8:
		if len(raw) != 1 {
			return value.Value{}, fmt.Errorf("attribute: char8 literal %q must be exactly one byte", raw)
		}
		return value.NewChar8(raw[0]), nil
	case value.KindInt8, value.KindInt16, value.KindInt32, value.KindInt64,
		value.KindUint8, value.KindUint16, value.KindUint32, value.KindUint64,
		value.KindFloat32, value.KindFloat64:
		return parseScalarJSON(raw, kind)
	default:
		return value.Value{}, fmt.Errorf("attribute: kind %s is not literal-parseable", kind)
	}
}

func parseScalarJSON(raw string, kind value.Kind) (value.Value, error) {
	trimmed := strings.TrimSpace(raw)
	if !gjson.Valid(trimmed) {
		return value.Value{}, fmt.Errorf("attribute: %q is not a valid scalar literal for %s", raw, kind)
	}
	res := gjson.Parse(trimmed)
	if res.Type != gjson.Number {
		return value.Value{}, fmt.Errorf("attribute: %q is not a numeric literal for %s", raw, kind)
	}
	switch kind {
	case value.KindInt8, value.KindInt16, value.KindInt32, value.KindInt64:
		i, err := strconv.ParseInt(trimmed, 10, 64)
		if err != nil {
			return value.Value{}, fmt.Errorf("attribute: %q does not fit integer literal for %s: %w", raw, kind, err)
		}
		return intOfKind(kind, i)
	case value.KindUint8, value.KindUint16, value.KindUint32, value.KindUint64:
		u, err := strconv.ParseUint(trimmed, 10, 64)
		if err != nil {
			return value.Value{}, fmt.Errorf("attribute: %q does not fit unsigned literal for %s: %w", raw, kind, err)
		}
		return uintOfKind(kind, u)
	default:
		return floatOfKind(kind, res.Float())
	}
}

func intOfKind(kind value.Kind, i int64) (value.Value, error) {
	switch kind {
	case value.KindInt8:
		if i < -128 || i > 127 {
			return value.Value{}, fmt.Errorf("attribute: %d overflows int8", i)
		}
		return value.NewInt8(int8(i)), nil
	case value.KindInt16:
		if i < -32768 || i > 32767 {
			return value.Value{}, fmt.Errorf("attribute: %d overflows int16", i)
		}
		return value.NewInt16(int16(i)), nil
	case value.KindInt32:
		if i < -2147483648 || i > 2147483647 {
			return value.Value{}, fmt.Errorf("attribute: %d overflows int32", i)
		}
		return value.NewInt32(int32(i)), nil
	default:
		return value.NewInt64(i), nil
	}
}

func uintOfKind(kind value.Kind, u uint64) (value.Value, error) {
	switch kind {
	case value.KindUint8:
		if u > 255 {
			return value.Value{}, fmt.Errorf("attribute: %d overflows uint8", u)
		}
		return value.NewUint8(uint8(u)), nil
	case value.KindUint16:
		if u > 65535 {
			return value.Value{}, fmt.Errorf("attribute: %d overflows uint16", u)
		}
		return value.NewUint16(uint16(u)), nil
	case value.KindUint32:
		if u > 4294967295 {
			return value.Value{}, fmt.Errorf("attribute: %d overflows uint32", u)
		}
		return value.NewUint32(uint32(u)), nil
	default:
		return value.NewUint64(u), nil
	}
}

func floatOfKind(kind value.Kind, f float64) (value.Value, error) {
	if kind == value.KindFloat32 {
		return value.NewFloat32(float32(f)), nil
	}
	return value.NewFloat64(f), nil
}

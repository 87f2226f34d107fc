package value

import (
	"fmt"
	"strconv"
	"strings"
)

// pathSegment is either a struct field name or an array index.
type pathSegment struct {
	name    string
	index   int
	isIndex bool
}

// parsePath splits a dotted/indexed path like "a.b[2].c" into segments.
// Path navigation needs type-checked traversal of the TypedValue union
// (struct field lookup vs. array bounds), which a JSON-text query engine
// like gjson cannot provide on a non-JSON in-memory value; gjson is used
// instead where the engine already has JSON text (attribute literal
// parsing in internal/attribute).
func parsePath(path string) ([]pathSegment, error) {
	if path == "" {
		return nil, nil
	}
	var segments []pathSegment
	for _, dotPart := range strings.Split(path, ".") {
		if dotPart == "" {
			return nil, fmt.Errorf("value: empty path segment in %q", path)
		}
		name := dotPart
		var indices []int
		for {
			open := strings.IndexByte(name, '[')
			if open < 0 {
				break
			}
			close := strings.IndexByte(name[open:], ']')
			if close < 0 {
				return nil, fmt.Errorf("value: unterminated index in %q", path)
			}
			close += open
			idxStr := name[open+1 : close]
			idx, err := strconv.Atoi(idxStr)
			if err != nil {
				return nil, fmt.Errorf("value: invalid index %q in %q", idxStr, path)
			}
			indices = append(indices, idx)
			name = name[:open] + name[close+1:]
		}
		if name != "" {
			segments = append(segments, pathSegment{name: name})
		}
		for _, idx := range indices {
			segments = append(segments, pathSegment{index: idx, isIndex: true})
		}
	}
	return segments, nil
}

// HasField reports whether path resolves to an existing sub-value.
func (v Value) HasField(path string) bool {
	_, ok := v.GetField(path)
	return ok
}

// GetField navigates path ("a.b[2].c") and returns the sub-value found.
// It fails (returns false) without mutating v if the path does not
// exist.
func (v Value) GetField(path string) (Value, bool) {
	segments, err := parsePath(path)
	if err != nil {
		return Value{}, false
	}
	cur := v
	for _, seg := range segments {
		if seg.isIndex {
			if cur.kind != KindArray || seg.index < 0 || seg.index >= len(cur.arr) {
				return Value{}, false
			}
			cur = cur.arr[seg.index]
			continue
		}
		next, ok := cur.FieldByName(seg.name)
		if !ok {
			return Value{}, false
		}
		cur = next
	}
	return cur, true
}

// SetField navigates path and assigns newVal at the resolved location
// using convert-assign rules, returning the updated root value. It fails
// if the path does not exist or the leaf assignment is rejected.
func (v Value) SetField(path string, newVal Value) (Value, error) {
	segments, err := parsePath(path)
	if err != nil {
		return Value{}, err
	}
	if len(segments) == 0 {
		return v.ConvertAssign(newVal)
	}
	return setFieldRec(v, segments, newVal)
}

func setFieldRec(cur Value, segments []pathSegment, newVal Value) (Value, error) {
	seg := segments[0]
	rest := segments[1:]

	if seg.isIndex {
		if cur.kind != KindArray || seg.index < 0 || seg.index >= len(cur.arr) {
			return Value{}, fmt.Errorf("value: set_field: index %d out of range", seg.index)
		}
		elem := cur.arr[seg.index]
		var updated Value
		var err error
		if len(rest) == 0 {
			updated, err = elem.ConvertAssign(newVal)
		} else {
			updated, err = setFieldRec(elem, rest, newVal)
		}
		if err != nil {
			return Value{}, err
		}
		out, ok := cur.withElement(seg.index, updated)
		if !ok {
			return Value{}, fmt.Errorf("value: set_field: failed to update index %d", seg.index)
		}
		return out, nil
	}

	field, ok := cur.FieldByName(seg.name)
	if !ok {
		return Value{}, fmt.Errorf("value: set_field: field %q does not exist", seg.name)
	}
	var updated Value
	var err error
	if len(rest) == 0 {
		updated, err = field.ConvertAssign(newVal)
	} else {
		updated, err = setFieldRec(field, rest, newVal)
	}
	if err != nil {
		return Value{}, err
	}
	out, ok := cur.withFieldByName(seg.name, updated)
	if !ok {
		return Value{}, fmt.Errorf("value: set_field: failed to update field %q", seg.name)
	}
	return out, nil
}

package attribute

import (
	"fmt"

	"github.com/lyzr/sequencer/internal/value"
)

// ValueInfo is the result of resolving a supplied attribute string
// against its Definition's category: whether the effective string
// names a workspace variable, and the (possibly sigil-stripped) string
// itself. Grounded on original_source's AttributeValueInfo /
// GetAttributeValueInfo.
type ValueInfo struct {
	IsVariableName bool
	Value          string
}

// Handler is the engine's per-instruction attribute layer: it holds the
// defined attribute schema, the validation constraints over it, and the
// string attributes actually supplied on an instruction instance. It is
// grounded on original_source's AttributeHandler
// (attributes/attribute_handler.cpp), replacing AnyType/AnyValue with
// this module's value.Kind/value.Value.
type Handler struct {
	definitions       []Definition
	constraints       []Constraint
	attrs             []StringAttr
	failedConstraints []string
}

// NewHandler returns an empty attribute handler.
func NewHandler() *Handler {
	return &Handler{}
}

// Define registers a new attribute definition and returns it for
// further fluent configuration (mandatory flag, category).
func (h *Handler) Define(name string, kind value.Kind) *Definition {
	h.definitions = append(h.definitions, Definition{Name: name, Type: kind, Category: CategoryLiteral})
	return &h.definitions[len(h.definitions)-1]
}

// Definitions returns the registered attribute definitions in
// declaration order.
func (h *Handler) Definitions() []Definition {
	cp := make([]Definition, len(h.definitions))
	copy(cp, h.definitions)
	return cp
}

func (h *Handler) definitionFor(name string) (Definition, bool) {
	for _, d := range h.definitions {
		if d.Name == name {
			return d, true
		}
	}
	return Definition{}, false
}

// AddConstraint registers a validation constraint, checked in
// registration order by Validate.
func (h *Handler) AddConstraint(c Constraint) {
	h.constraints = append(h.constraints, c)
}

// HasString reports whether an attribute named name was supplied.
func (h *Handler) HasString(name string) bool {
	_, ok := findAttr(h.attrs, name)
	return ok
}

// AddString supplies a string attribute. It fails (returns false) if an
// attribute with this name was already supplied; use SetString to
// overwrite.
func (h *Handler) AddString(name, val string) bool {
	if h.HasString(name) {
		return false
	}
	h.attrs = append(h.attrs, StringAttr{Name: name, Value: val})
	return true
}

// SetString supplies or overwrites a string attribute.
func (h *Handler) SetString(name, val string) {
	for i, a := range h.attrs {
		if a.Name == name {
			h.attrs[i].Value = val
			return
		}
	}
	h.attrs = append(h.attrs, StringAttr{Name: name, Value: val})
}

// StringAttributes returns the supplied attributes in insertion order.
func (h *Handler) StringAttributes() []StringAttr {
	cp := make([]StringAttr, len(h.attrs))
	copy(cp, h.attrs)
	return cp
}

// Validate checks every mandatory definition is supplied, every
// supplied defined attribute that is not a variable name parses as its
// defined kind, and every registered constraint holds, recording the
// human-readable representation of each constraint (definitional or
// explicit) that fails. It returns true iff nothing failed.
func (h *Handler) Validate() bool {
	h.failedConstraints = nil
	for _, d := range h.definitions {
		if d.Mandatory && !h.HasString(d.Name) {
			h.failedConstraints = append(h.failedConstraints,
				fmt.Sprintf("MandatoryAttribute(%s) not supplied", d.Name))
		}
		raw, ok := findAttr(h.attrs, d.Name)
		if !ok {
			continue
		}
		if info, _ := h.GetValueInfo(d.Name); info.IsVariableName {
			continue
		}
		if _, err := parseLiteral(raw, d.Type); err != nil {
			h.failedConstraints = append(h.failedConstraints,
				fmt.Sprintf("ParseableAttribute(%s) as %s", d.Name, d.Type))
		}
	}
	for _, c := range h.constraints {
		if !c.Check(h.attrs, h.definitions) {
			h.failedConstraints = append(h.failedConstraints, c.String())
		}
	}
	return len(h.failedConstraints) == 0
}

// ClearFailedConstraints discards the result of the last Validate call.
func (h *Handler) ClearFailedConstraints() {
	h.failedConstraints = nil
}

// FailedConstraints returns the failed-constraint representations from
// the last Validate call.
func (h *Handler) FailedConstraints() []string {
	cp := make([]string, len(h.failedConstraints))
	copy(cp, h.failedConstraints)
	return cp
}

// GetValue resolves attr_name's supplied string into a typed value per
// its definition's declared kind, using strict literal parsing (see
// parse.go). It fails if the attribute was not supplied, has no
// definition, or does not parse as its declared kind.
func (h *Handler) GetValue(attrName string) (value.Value, bool) {
	raw, ok := findAttr(h.attrs, attrName)
	if !ok {
		return value.Value{}, false
	}
	def, ok := h.definitionFor(attrName)
	if !ok {
		return value.Value{}, false
	}
	v, err := parseLiteral(raw, def.Type)
	if err != nil {
		return value.Value{}, false
	}
	return v, true
}

// GetValueInfo resolves attr_name per its definition's category: for
// CategoryLiteral (or an undefined attribute) the raw string is
// literal; for CategoryVariableName it always names a variable; for
// CategoryBoth it names a variable iff it starts with ReservedSigil, in
// which case the sigil is stripped. Grounded on original_source's
// GetAttributeValueInfo.
func (h *Handler) GetValueInfo(attrName string) (ValueInfo, error) {
	raw, ok := findAttr(h.attrs, attrName)
	if !ok {
		return ValueInfo{}, fmt.Errorf("attribute: get_value_info: attribute %q was not supplied", attrName)
	}
	def, ok := h.definitionFor(attrName)
	if !ok {
		return ValueInfo{IsVariableName: false, Value: raw}, nil
	}
	switch def.Category {
	case CategoryVariableName:
		return ValueInfo{IsVariableName: true, Value: raw}, nil
	case CategoryBoth:
		if len(raw) > 0 && raw[0] == ReservedSigil {
			return ValueInfo{IsVariableName: true, Value: raw[1:]}, nil
		}
		return ValueInfo{IsVariableName: false, Value: raw}, nil
	default:
		return ValueInfo{IsVariableName: false, Value: raw}, nil
	}
}

package instruction

import (
	"github.com/lyzr/sequencer/internal/attribute"
	"github.com/lyzr/sequencer/internal/value"
	"github.com/lyzr/sequencer/internal/workspace"
)

// ResolveAttributeValue implements spec.md §4.4's get_attribute_value:
// if the named attribute is a variable-reference, fetch the variable's
// current value from ws; otherwise parse the literal per its
// definition. An undefined attribute (no Definition registered) is
// literal per attribute.Handler.GetValueInfo, but Handler.GetValue has
// no kind to parse it as, so it does not resolve (false).
func ResolveAttributeValue(h *attribute.Handler, ws *workspace.Workspace, name string) (value.Value, bool) {
	info, err := h.GetValueInfo(name)
	if err != nil {
		return value.Value{}, false
	}
	if info.IsVariableName {
		return ws.Get(info.Value)
	}
	return h.GetValue(name)
}

// AssignAttributeTarget implements spec.md §4.4's
// set_attribute_target: writes v back through a variable-name
// attribute. Returns false if the attribute is not a variable
// reference or the workspace write fails.
func AssignAttributeTarget(h *attribute.Handler, ws *workspace.Workspace, name string, v value.Value) bool {
	info, err := h.GetValueInfo(name)
	if err != nil || !info.IsVariableName {
		return false
	}
	return ws.Set(info.Value, v) == nil
}

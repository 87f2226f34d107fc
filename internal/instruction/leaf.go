package instruction

import (
	"time"

	"github.com/lyzr/sequencer/internal/attribute"
	"github.com/lyzr/sequencer/internal/value"
)

// Wait is a leaf that succeeds once a timeout elapses (spec.md §4.5):
// on first tick, records a deadline; every tick after, SUCCEEDs once
// now >= deadline, else stays NOT_FINISHED. No sleeping: the deadline
// is polled cooperatively, consistent with §5's "spin-until-deadline
// via cooperative ticks, no sleep" suspension point.
type Wait struct {
	*Base
	deadline time.Time
}

// NewWait builds a Wait leaf; the optional "timeout" attribute
// (seconds, BOTH category so it may be a literal or a workspace
// reference) sets the delay. When it is absent or does not resolve to
// a number, the delay is zero.
func NewWait() *Wait {
	w := &Wait{Base: NewBase("Wait")}
	w.Bind(w)
	w.Attrs().Define("timeout", value.KindFloat64).SetCategory(attribute.CategoryBoth)
	return w
}

func (w *Wait) Children() []Instruction        { return nil }
func (w *Wait) NextInstructions() []Instruction { return []Instruction{w} }

func (w *Wait) InitHook(ctx *Context) error {
	timeout, ok := ResolveAttributeValue(w.Attrs(), ctx.Workspace, "timeout")
	var seconds float64
	if ok {
		if f, isFloat := timeout.AsFloat64(); isFloat {
			seconds = f
		} else if i, isInt := timeout.AsInt64(); isInt {
			seconds = float64(i)
		}
	}
	w.deadline = time.Now().Add(time.Duration(seconds * float64(time.Second)))
	return nil
}

func (w *Wait) ExecuteStep(ctx *Context) Status {
	if !time.Now().Before(w.deadline) {
		return StatusSuccess
	}
	return StatusNotFinished
}

func (w *Wait) ResetHook(ctx *Context) {}
func (w *Wait) HaltImpl()              {}

// comparisonLeaf backs both Equals and GreaterThanOrEqual: read two
// workspace values (attributes "left"/"right", VARIABLE_NAME category),
// compare, map to SUCCESS/FAILURE. Mismatched-or-unordered types yield
// FAILURE and a warning log, per spec.md §4.5.
type comparisonLeaf struct {
	*Base
	accept func(value.Ordering) bool
}

func newComparisonLeaf(kind string, accept func(value.Ordering) bool) *comparisonLeaf {
	c := &comparisonLeaf{Base: NewBase(kind), accept: accept}
	c.Bind(c)
	c.Attrs().Define("left", value.KindString).SetMandatory(true).SetCategory(attribute.CategoryVariableName)
	c.Attrs().Define("right", value.KindString).SetMandatory(true).SetCategory(attribute.CategoryVariableName)
	return c
}

// NewEquals builds the Equals leaf.
func NewEquals() *comparisonLeaf {
	return newComparisonLeaf("Equals", func(o value.Ordering) bool { return o == value.OrderEqual })
}

// NewGreaterThanOrEqual builds the GreaterThanOrEqual leaf.
func NewGreaterThanOrEqual() *comparisonLeaf {
	return newComparisonLeaf("GreaterThanOrEqual", func(o value.Ordering) bool {
		return o == value.OrderEqual || o == value.OrderGreater
	})
}

func (c *comparisonLeaf) Children() []Instruction        { return nil }
func (c *comparisonLeaf) NextInstructions() []Instruction { return []Instruction{c} }
func (c *comparisonLeaf) InitHook(ctx *Context) error     { return nil }

func (c *comparisonLeaf) ExecuteStep(ctx *Context) Status {
	left, lok := ResolveAttributeValue(c.Attrs(), ctx.Workspace, "left")
	right, rok := ResolveAttributeValue(c.Attrs(), ctx.Workspace, "right")
	if !lok || !rok {
		ctx.Observer.Log(SeverityWarning, c.Kind()+": could not resolve left/right attribute")
		return StatusFailure
	}
	ord, err := left.Compare(right)
	if err != nil {
		ctx.Observer.Log(SeverityWarning, c.Kind()+": "+err.Error())
		return StatusFailure
	}
	if c.accept(ord) {
		return StatusSuccess
	}
	return StatusFailure
}

func (c *comparisonLeaf) ResetHook(ctx *Context) {}
func (c *comparisonLeaf) HaltImpl()              {}

// AddElement fetches input and output variables; validates that
// output is an array and input's type matches the element type;
// appends; writes back; on any mismatch, FAILURE with an explanatory
// warning (spec.md §4.5).
type AddElement struct {
	*Base
}

// NewAddElement builds the AddElement leaf. "input" and "output" are
// mandatory VARIABLE_NAME attributes.
func NewAddElement() *AddElement {
	a := &AddElement{Base: NewBase("AddElement")}
	a.Bind(a)
	a.Attrs().Define("input", value.KindString).SetMandatory(true).SetCategory(attribute.CategoryVariableName)
	a.Attrs().Define("output", value.KindString).SetMandatory(true).SetCategory(attribute.CategoryVariableName)
	return a
}

func (a *AddElement) Children() []Instruction        { return nil }
func (a *AddElement) NextInstructions() []Instruction { return []Instruction{a} }
func (a *AddElement) InitHook(ctx *Context) error     { return nil }

func (a *AddElement) ExecuteStep(ctx *Context) Status {
	input, iok := ResolveAttributeValue(a.Attrs(), ctx.Workspace, "input")
	output, ook := ResolveAttributeValue(a.Attrs(), ctx.Workspace, "output")
	if !iok || !ook {
		ctx.Observer.Log(SeverityWarning, "AddElement: could not resolve input/output attribute")
		return StatusFailure
	}
	if output.TypeOf() != value.KindArray {
		ctx.Observer.Log(SeverityWarning, "AddElement: output is not an array")
		return StatusFailure
	}
	if !input.IsEmpty() && input.TypeOf() != output.ElementKind() {
		ctx.Observer.Log(SeverityWarning, "AddElement: input type does not match output element type")
		return StatusFailure
	}
	elems := append(output.Elements(), input)
	updated, err := value.NewArrayOf(output.ElementKind(), elems)
	if err != nil {
		ctx.Observer.Log(SeverityWarning, "AddElement: "+err.Error())
		return StatusFailure
	}
	if !AssignAttributeTarget(a.Attrs(), ctx.Workspace, "output", updated) {
		ctx.Observer.Log(SeverityWarning, "AddElement: failed to write back output")
		return StatusFailure
	}
	return StatusSuccess
}

func (a *AddElement) ResetHook(ctx *Context) {}
func (a *AddElement) HaltImpl()              {}

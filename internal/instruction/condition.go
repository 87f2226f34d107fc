package instruction

import (
	"fmt"

	"github.com/google/cel-go/cel"

	"github.com/lyzr/sequencer/internal/attribute"
	"github.com/lyzr/sequencer/internal/value"
)

// Condition is a supplemental leaf (SPEC_FULL.md §4, recovered from
// original_source's equals.cpp/greaterthanorequal.cpp comparison
// pattern and generalized): it evaluates a CEL boolean expression
// ("expr", a literal attribute) whose free variables are resolved
// against a set of caller-declared input attributes, each bound into
// the expression under its own attribute name. SUCCESS iff the
// expression evaluates to true.
type Condition struct {
	*Base
	inputNames []string
	env        *cel.Env
	program    cel.Program
}

// NewCondition builds a Condition leaf. inputNames declares which
// additional attributes (besides "expr") are CEL inputs; each is
// registered as a VARIABLE_NAME attribute so its value comes from the
// workspace, and becomes a CEL variable of the same name.
func NewCondition(inputNames ...string) *Condition {
	c := &Condition{Base: NewBase("Condition"), inputNames: inputNames}
	c.Bind(c)
	c.Attrs().Define("expr", value.KindString).SetMandatory(true)
	for _, name := range inputNames {
		c.Attrs().Define(name, value.KindString).SetMandatory(true).SetCategory(attribute.CategoryVariableName)
	}
	return c
}

func (c *Condition) Children() []Instruction        { return nil }
func (c *Condition) NextInstructions() []Instruction { return []Instruction{c} }

func (c *Condition) InitHook(ctx *Context) error {
	exprVal, ok := c.Attrs().GetValue("expr")
	if !ok {
		return fmt.Errorf("condition: expr attribute did not parse as string")
	}
	expr, _ := exprVal.AsString()

	opts := make([]cel.EnvOption, 0, len(c.inputNames))
	for _, name := range c.inputNames {
		opts = append(opts, cel.Variable(name, cel.DynType))
	}
	env, err := cel.NewEnv(opts...)
	if err != nil {
		return fmt.Errorf("condition: build CEL env: %w", err)
	}
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return fmt.Errorf("condition: compile %q: %w", expr, issues.Err())
	}
	prg, err := env.Program(ast)
	if err != nil {
		return fmt.Errorf("condition: build CEL program: %w", err)
	}
	c.env = env
	c.program = prg
	return nil
}

func (c *Condition) ExecuteStep(ctx *Context) Status {
	vars := make(map[string]interface{}, len(c.inputNames))
	for _, name := range c.inputNames {
		v, ok := ResolveAttributeValue(c.Attrs(), ctx.Workspace, name)
		if !ok {
			ctx.Observer.Log(SeverityWarning, "Condition: could not resolve input "+name)
			return StatusFailure
		}
		vars[name] = celNative(v)
	}
	out, _, err := c.program.Eval(vars)
	if err != nil {
		ctx.Observer.Log(SeverityWarning, "Condition: evaluation failed: "+err.Error())
		return StatusFailure
	}
	b, ok := out.Value().(bool)
	if !ok {
		ctx.Observer.Log(SeverityWarning, "Condition: expression did not evaluate to a bool")
		return StatusFailure
	}
	if b {
		return StatusSuccess
	}
	return StatusFailure
}

func (c *Condition) ResetHook(ctx *Context) {}
func (c *Condition) HaltImpl()              {}

// celNative converts a Value into the nearest Go-native type CEL's
// dynamic typing understands.
func celNative(v value.Value) interface{} {
	switch v.TypeOf() {
	case value.KindBool:
		b, _ := v.AsBool()
		return b
	case value.KindString:
		s, _ := v.AsString()
		return s
	case value.KindInt8, value.KindInt16, value.KindInt32, value.KindInt64:
		i, _ := v.AsInt64()
		return i
	case value.KindUint8, value.KindUint16, value.KindUint32, value.KindUint64:
		u, _ := v.AsUint64()
		return u
	case value.KindFloat32, value.KindFloat64:
		f, _ := v.AsFloat64()
		return f
	default:
		return v.String()
	}
}

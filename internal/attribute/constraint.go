package attribute

import (
	"fmt"
	"strings"

	"github.com/google/cel-go/cel"

	"github.com/lyzr/sequencer/internal/value"
)

// Constraint is a predicate over the supplied attribute list. A failed
// constraint contributes its String() representation to validate's
// result list.
type Constraint interface {
	Check(attrs []StringAttr, defs []Definition) bool
	String() string
}

func findAttr(attrs []StringAttr, name string) (string, bool) {
	for _, a := range attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// existsConstraint requires a named attribute to be present.
type existsConstraint struct{ name string }

func Exists(name string) Constraint { return existsConstraint{name} }

func (c existsConstraint) Check(attrs []StringAttr, _ []Definition) bool {
	_, ok := findAttr(attrs, c.name)
	return ok
}

func (c existsConstraint) String() string { return fmt.Sprintf("Exists(%s)", c.name) }

// fixedTypeConstraint requires a defined attribute's declared type to
// equal a specific kind (used to pin a caller-chosen type against the
// schema, e.g. a leaf that only accepts numeric input attributes).
type fixedTypeConstraint struct {
	name string
	kind value.Kind
}

func FixedType(name string, kind value.Kind) Constraint {
	return fixedTypeConstraint{name: name, kind: kind}
}

func (c fixedTypeConstraint) Check(_ []StringAttr, defs []Definition) bool {
	for _, d := range defs {
		if d.Name == c.name {
			return d.Type == c.kind
		}
	}
	return false
}

func (c fixedTypeConstraint) String() string {
	return fmt.Sprintf("FixedType(%s, %s)", c.name, c.kind.String())
}

// andConstraint, orConstraint, xorConstraint, notConstraint are boolean
// combinators over other constraints.
type andConstraint struct{ parts []Constraint }
type orConstraint struct{ parts []Constraint }
type xorConstraint struct{ a, b Constraint }
type notConstraint struct{ inner Constraint }

func And(parts ...Constraint) Constraint { return andConstraint{parts} }
func Or(parts ...Constraint) Constraint  { return orConstraint{parts} }
func Xor(a, b Constraint) Constraint     { return xorConstraint{a, b} }
func Not(inner Constraint) Constraint    { return notConstraint{inner} }

func (c andConstraint) Check(attrs []StringAttr, defs []Definition) bool {
	for _, p := range c.parts {
		if !p.Check(attrs, defs) {
			return false
		}
	}
	return true
}
func (c andConstraint) String() string { return joinParts("And", c.parts) }

func (c orConstraint) Check(attrs []StringAttr, defs []Definition) bool {
	for _, p := range c.parts {
		if p.Check(attrs, defs) {
			return true
		}
	}
	return false
}
func (c orConstraint) String() string { return joinParts("Or", c.parts) }

func (c xorConstraint) Check(attrs []StringAttr, defs []Definition) bool {
	return c.a.Check(attrs, defs) != c.b.Check(attrs, defs)
}
func (c xorConstraint) String() string {
	return fmt.Sprintf("Xor(%s, %s)", c.a.String(), c.b.String())
}

func (c notConstraint) Check(attrs []StringAttr, defs []Definition) bool {
	return !c.inner.Check(attrs, defs)
}
func (c notConstraint) String() string { return fmt.Sprintf("Not(%s)", c.inner.String()) }

func joinParts(op string, parts []Constraint) string {
	reprs := make([]string, len(parts))
	for i, p := range parts {
		reprs[i] = p.String()
	}
	return fmt.Sprintf("%s(%s)", op, strings.Join(reprs, ", "))
}

// ExpressionConstraint is a supplemental constraint (beyond the four
// named in spec.md §4.2) that evaluates a CEL boolean expression over
// the supplied attribute strings, keyed by name. It is grounded on
// cmd/workflow-runner/condition/evaluator.go's cached CEL evaluator in
// the teacher repo, generalized from workflow branch/loop conditions to
// an attribute-list predicate.
type ExpressionConstraint struct {
	expression string
	program    cel.Program
}

// NewExpressionConstraint compiles expr once; expr may reference any
// attribute named in attrNames as a CEL string variable. Check binds
// only the supplied attributes, so if expr reads a name that was not
// supplied, evaluation fails and the constraint does not hold.
func NewExpressionConstraint(expr string, attrNames []string) (*ExpressionConstraint, error) {
	opts := make([]cel.EnvOption, 0, len(attrNames))
	for _, name := range attrNames {
		opts = append(opts, cel.Variable(name, cel.StringType))
	}
	env, err := cel.NewEnv(opts...)
	if err != nil {
		return nil, fmt.Errorf("attribute: expression constraint env: %w", err)
	}
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("attribute: expression constraint compile: %w", issues.Err())
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("attribute: expression constraint program: %w", err)
	}
	return &ExpressionConstraint{expression: expr, program: prg}, nil
}

func (c *ExpressionConstraint) Check(attrs []StringAttr, _ []Definition) bool {
	vars := make(map[string]interface{}, len(attrs))
	for _, a := range attrs {
		vars[a.Name] = a.Value
	}
	out, _, err := c.program.Eval(vars)
	if err != nil {
		return false
	}
	b, ok := out.Value().(bool)
	return ok && b
}

func (c *ExpressionConstraint) String() string {
	return fmt.Sprintf("Expression(%s)", c.expression)
}

// Package attribute implements the string-keyed attribute layer:
// definitions, validation constraints, and category-aware resolution
// (literal / variable-reference / both) described by spec.md §4.2.
package attribute

import "github.com/lyzr/sequencer/internal/value"

// Category describes how an attribute's string is turned into an
// effective value.
type Category int

const (
	// CategoryLiteral: the string is the value, parsed per its defined type.
	CategoryLiteral Category = iota
	// CategoryVariableName: the string names a workspace variable whose
	// current value is the effective value.
	CategoryVariableName
	// CategoryBoth: the string is a variable name iff it begins with the
	// variable-reference sigil '@', else literal.
	CategoryBoth
)

// ReservedSigil marks a variable reference in a Both-category attribute.
const ReservedSigil = '@'

// PlaceholderSigil marks an include-time placeholder substitution.
const PlaceholderSigil = '$'

// Definition bundles a defined attribute's name, declared type,
// mandatoriness, and resolution category.
type Definition struct {
	Name      string
	Type      value.Kind
	Mandatory bool
	Category  Category
}

// NewDefinition returns a literal, optional definition; use the fluent
// setters to adjust.
func NewDefinition(name string, kind value.Kind) *Definition {
	return &Definition{Name: name, Type: kind, Category: CategoryLiteral}
}

func (d *Definition) SetMandatory(mandatory bool) *Definition {
	d.Mandatory = mandatory
	return d
}

func (d *Definition) SetCategory(c Category) *Definition {
	d.Category = c
	return d
}

// StringAttr is one supplied (name, literal-string) pair.
type StringAttr struct {
	Name  string
	Value string
}

// Package procedure implements the procedure document model and the
// builder that turns a parsed document into a runnable instruction
// tree plus workspace (spec.md §4.7): preamble (plugin/type
// registration), workspace variables, the root instruction, and the
// per-path include cache a Include instruction resolves against.
package procedure

// VariableDoc describes one Workspace child element (spec.md §6): a
// name, a variable type tag ("Local", "Redis"), the value kind it
// holds, and any type-specific attributes (e.g. Redis's "key"/"addr",
// Local's "value" initial literal).
type VariableDoc struct {
	Name  string
	Type  string
	Kind  string
	Attrs map[string]string
}

// RegisterTypeDoc describes one preamble RegisterType element: a
// struct shape, given either inline (JSONType, a JSON object literal)
// or via a file reference (JSONFile). Exactly one should be set; the
// builder prefers JSONType when both are.
type RegisterTypeDoc struct {
	JSONFile string
	JSONType string
}

// InstructionDoc is one node of the instruction tree: an archetype
// kind name, its supplied string attributes, and nested children in
// tree order (leaves carry none).
type InstructionDoc struct {
	Kind     string
	Attrs    map[string]string
	Children []InstructionDoc
}

// Doc is the whole parsed procedure document (spec.md §6's root
// "Procedure" element): its own attributes (name, tick-timeout),
// preamble (RegisterType entries and plugin names), one Workspace of
// variables, and the top-level instruction tree. The first top-level
// instruction is the root; any further top-level instructions are kept
// here but never built, and an "isRoot" attribute on them is not
// consulted.
type Doc struct {
	Attrs         map[string]string
	RegisterTypes []RegisterTypeDoc
	Plugins       []string
	Workspace     []VariableDoc
	Instructions  []InstructionDoc
}

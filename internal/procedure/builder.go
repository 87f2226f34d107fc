package procedure

import (
	"fmt"

	"github.com/lyzr/sequencer/internal/instruction"
)

// buildInstruction walks doc depth-first, building children before
// the node itself so every factory receives an already-constructed
// child slice (compounds/decorators never recurse).
func buildInstruction(cat *Catalogue, doc InstructionDoc) (instruction.Instruction, error) {
	children := make([]instruction.Instruction, 0, len(doc.Children))
	for _, childDoc := range doc.Children {
		child, err := buildInstruction(cat, childDoc)
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}
	inst, err := cat.Build(doc.Kind, doc.Attrs, children)
	if err != nil {
		return nil, fmt.Errorf("procedure: build %q: %w", doc.Kind, err)
	}
	return inst, nil
}

// buildRoot builds every top-level instruction in doc.Instructions and
// returns the first as root, per Doc's "first top-level instruction is
// root" convention.
func buildRoot(cat *Catalogue, doc Doc) (instruction.Instruction, error) {
	if len(doc.Instructions) == 0 {
		return nil, fmt.Errorf("procedure: document has no top-level instruction")
	}
	root, err := buildInstruction(cat, doc.Instructions[0])
	if err != nil {
		return nil, err
	}
	return root, nil
}

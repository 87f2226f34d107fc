package procedure

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lyzr/sequencer/internal/instruction"
)

// InstructionFactory builds one tree node from its doc attributes and
// already-built children (compounds/decorators never recurse
// themselves; the Builder walks the tree depth-first and hands each
// factory its children pre-built).
type InstructionFactory func(attrs map[string]string, children []instruction.Instruction) (instruction.Instruction, error)

// Catalogue maps archetype kind names to factories, consulted by the
// Builder while walking an InstructionDoc tree.
type Catalogue struct {
	factories map[string]InstructionFactory
}

// NewCatalogue returns an empty catalogue.
func NewCatalogue() *Catalogue {
	return &Catalogue{factories: make(map[string]InstructionFactory)}
}

// Register adds or replaces the factory for kind.
func (c *Catalogue) Register(kind string, f InstructionFactory) {
	c.factories[kind] = f
}

// Build constructs one instruction of the named kind.
func (c *Catalogue) Build(kind string, attrs map[string]string, children []instruction.Instruction) (instruction.Instruction, error) {
	f, ok := c.factories[kind]
	if !ok {
		return nil, fmt.Errorf("procedure: unknown instruction kind %q", kind)
	}
	return f(attrs, children)
}

func setAttrs(inst instruction.Instruction, attrs map[string]string) instruction.Instruction {
	for k, v := range attrs {
		inst.Attrs().SetString(k, v)
	}
	return inst
}

func requireOneChild(kind string, children []instruction.Instruction) (instruction.Instruction, error) {
	if len(children) != 1 {
		return nil, fmt.Errorf("procedure: %s requires exactly one child, got %d", kind, len(children))
	}
	return children[0], nil
}

func splitCSV(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, strings.TrimSpace(p))
	}
	return out
}

// DefaultCatalogue returns a Catalogue pre-registered with every
// built-in archetype (spec.md §4.5), with Include wired to store so
// nested includes share the same per-procedure include cache. Callers
// building a Store+Catalogue pair should call store.SetCatalogue on
// the result before any Include is ever resolved.
func DefaultCatalogue(store *Store) *Catalogue {
	c := NewCatalogue()

	c.Register("Sequence", func(attrs map[string]string, children []instruction.Instruction) (instruction.Instruction, error) {
		return setAttrs(instruction.NewSequence(children...), attrs), nil
	})
	c.Register("Fallback", func(attrs map[string]string, children []instruction.Instruction) (instruction.Instruction, error) {
		return setAttrs(instruction.NewFallback(children...), attrs), nil
	})
	c.Register("Parallel", func(attrs map[string]string, children []instruction.Instruction) (instruction.Instruction, error) {
		successTh, failureTh := 0, 0
		if v, ok := attrs["successThreshold"]; ok {
			successTh, _ = strconv.Atoi(v)
		}
		if v, ok := attrs["failureThreshold"]; ok {
			failureTh, _ = strconv.Atoi(v)
		}
		rest := withoutKeys(attrs, "successThreshold", "failureThreshold")
		return setAttrs(instruction.NewParallel(children, successTh, failureTh), rest), nil
	})
	c.Register("Inverter", func(attrs map[string]string, children []instruction.Instruction) (instruction.Instruction, error) {
		child, err := requireOneChild("Inverter", children)
		if err != nil {
			return nil, err
		}
		return setAttrs(instruction.NewInverter(child), attrs), nil
	})
	c.Register("ForceSuccess", func(attrs map[string]string, children []instruction.Instruction) (instruction.Instruction, error) {
		child, err := requireOneChild("ForceSuccess", children)
		if err != nil {
			return nil, err
		}
		return setAttrs(instruction.NewForceSuccess(child), attrs), nil
	})
	c.Register("Repeat", func(attrs map[string]string, children []instruction.Instruction) (instruction.Instruction, error) {
		child, err := requireOneChild("Repeat", children)
		if err != nil {
			return nil, err
		}
		maxCount := 0
		if v, ok := attrs["maxCount"]; ok {
			maxCount, _ = strconv.Atoi(v)
		}
		rest := withoutKeys(attrs, "maxCount")
		return setAttrs(instruction.NewRepeat(child, maxCount), rest), nil
	})
	c.Register("Wait", func(attrs map[string]string, children []instruction.Instruction) (instruction.Instruction, error) {
		return setAttrs(instruction.NewWait(), attrs), nil
	})
	c.Register("Equals", func(attrs map[string]string, children []instruction.Instruction) (instruction.Instruction, error) {
		return setAttrs(instruction.NewEquals(), attrs), nil
	})
	c.Register("GreaterThanOrEqual", func(attrs map[string]string, children []instruction.Instruction) (instruction.Instruction, error) {
		return setAttrs(instruction.NewGreaterThanOrEqual(), attrs), nil
	})
	c.Register("AddElement", func(attrs map[string]string, children []instruction.Instruction) (instruction.Instruction, error) {
		return setAttrs(instruction.NewAddElement(), attrs), nil
	})
	c.Register("Condition", func(attrs map[string]string, children []instruction.Instruction) (instruction.Instruction, error) {
		inputs := splitCSV(attrs["inputs"])
		rest := withoutKeys(attrs, "inputs")
		return setAttrs(instruction.NewCondition(inputs...), rest), nil
	})
	c.Register("UserConfirmation", func(attrs map[string]string, children []instruction.Instruction) (instruction.Instruction, error) {
		return setAttrs(instruction.NewUserConfirmation(), attrs), nil
	})
	c.Register("UserChoice", func(attrs map[string]string, children []instruction.Instruction) (instruction.Instruction, error) {
		return setAttrs(instruction.NewUserChoice(), attrs), nil
	})
	c.Register("UserInput", func(attrs map[string]string, children []instruction.Instruction) (instruction.Instruction, error) {
		return setAttrs(instruction.NewUserInput(), attrs), nil
	})
	c.Register("Include", func(attrs map[string]string, children []instruction.Instruction) (instruction.Instruction, error) {
		path, ok := attrs["path"]
		if !ok || path == "" {
			return nil, fmt.Errorf("procedure: Include requires a \"path\" attribute")
		}
		key := store.registerInclude(path, attrs["patch"])
		inc := instruction.NewInclude(store, key)
		rest := withoutKeys(attrs, "path", "patch")
		return setAttrs(inc, rest), nil
	})

	return c
}

func withoutKeys(attrs map[string]string, keys ...string) map[string]string {
	drop := make(map[string]bool, len(keys))
	for _, k := range keys {
		drop[k] = true
	}
	out := make(map[string]string, len(attrs))
	for k, v := range attrs {
		if !drop[k] {
			out[k] = v
		}
	}
	return out
}

package instruction

import "fmt"

// ProcedureResolver looks up a named/pathed procedure's root instruction
// tree. internal/procedure implements this; instruction depends only on
// the interface to avoid a cyclic import (Procedure owns an instruction
// tree, so internal/procedure must import internal/instruction, not the
// reverse).
type ProcedureResolver interface {
	ResolveRoot(path string) (Instruction, error)
}

// Include resolves another procedure from a procedure store by path
// (spec.md §4.5) and delegates ticking to its root instruction, exactly
// as if that root had been inlined at this point in the tree. Resolution
// happens once, in Setup, via the resolver bound at construction.
type Include struct {
	*Base
	resolver ProcedureResolver
	path     string
	root     Instruction
}

// NewInclude builds an Include leaf that, on setup, resolves path
// through resolver into a root Instruction and ticks it thereafter.
func NewInclude(resolver ProcedureResolver, path string) *Include {
	i := &Include{Base: NewBase("Include"), resolver: resolver, path: path}
	i.Bind(i)
	return i
}

func (i *Include) Children() []Instruction {
	if i.root == nil {
		return nil
	}
	return []Instruction{i.root}
}

func (i *Include) NextInstructions() []Instruction {
	if i.root == nil {
		return []Instruction{i}
	}
	return i.root.NextInstructions()
}

// Setup resolves the include path before delegating to Base.Setup, so
// that Base's child-recursion (which reads Children() right after this
// returns) walks into an already-resolved root and validates it.
// Base.Setup itself never calls InitHook (spec.md §4.4 makes init_hook
// a Tick-only, first-tick step), so resolution can't happen there.
func (i *Include) Setup(ctx *Context) error {
	if err := i.resolve(); err != nil {
		return err
	}
	return i.Base.Setup(ctx)
}

func (i *Include) resolve() error {
	if i.root != nil {
		return nil
	}
	root, err := i.resolver.ResolveRoot(i.path)
	if err != nil {
		return fmt.Errorf("include: resolve %q: %w", i.path, err)
	}
	i.root = root
	return nil
}

// InitHook is idempotent with resolve, covering the (degenerate) case
// where Tick is called without Setup having run first.
func (i *Include) InitHook(ctx *Context) error { return i.resolve() }

func (i *Include) ExecuteStep(ctx *Context) Status {
	if i.root == nil {
		return StatusFailure
	}
	return i.root.Tick(ctx)
}

func (i *Include) ResetHook(ctx *Context) {
	if i.root != nil {
		i.root.Reset(ctx)
	}
}

func (i *Include) HaltImpl() {
	if i.root != nil {
		i.root.Halt()
	}
}

package instruction

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/lyzr/sequencer/internal/attribute"
	"github.com/lyzr/sequencer/internal/errs"
)

// Instruction is the engine's tree node contract (spec.md §4.4). Every
// archetype in the catalogue (§4.5) implements it by embedding *Base
// and supplying Hooks.
type Instruction interface {
	ID() string
	Kind() string
	Attrs() *attribute.Handler
	Status() Status
	Setup(ctx *Context) error
	Tick(ctx *Context) Status
	Reset(ctx *Context)
	Halt()
	IsHaltRequested() bool
	Children() []Instruction
	NextInstructions() []Instruction
}

// Hooks is the subclass-specific behavior Base's template methods
// invoke. kind implementations (Sequence, Fallback, ...) each build a
// *Base and pass themselves (or a thin adapter) as Hooks.
type Hooks interface {
	// InitHook validates attribute-to-value coupling and any
	// subclass-specific setup semantics; called exactly once, lazily,
	// on the first tick (NOT_STARTED -> NOT_FINISHED transition). Never
	// called from Setup.
	InitHook(ctx *Context) error
	// ExecuteStep runs one tick's worth of work and returns the new
	// status.
	ExecuteStep(ctx *Context) Status
	// ResetHook waits for any owned worker and resets children.
	ResetHook(ctx *Context)
	// HaltImpl propagates a halt request to children, if any.
	HaltImpl()
	// Children returns this instruction's children in tree order
	// (nil for leaves).
	Children() []Instruction
	// NextInstructions returns the children (or, for a leaf, itself)
	// the engine will tick next, used by the breakpoint manager.
	NextInstructions() []Instruction
}

// Base implements the common status machine, attribute handler,
// halt flag, and observer notification every instruction shares
// (spec.md §4.4's per-tick algorithm, Setup, Reset, and Halt).
type Base struct {
	id   string
	kind string

	attrs *attribute.Handler

	mu     sync.Mutex
	status Status

	halted atomic.Bool

	hooks Hooks
}

// NewBase constructs the shared instruction state. kind is the
// archetype name used in logs and breakpoint listings (e.g.
// "Sequence"). Bind must be called once the concrete type has a
// pointer to itself to satisfy Hooks.
func NewBase(kind string) *Base {
	return &Base{id: uuid.NewString(), kind: kind, attrs: attribute.NewHandler()}
}

// Bind attaches the concrete instruction's Hooks implementation. Every
// archetype constructor calls this once after building its *Base.
func (b *Base) Bind(hooks Hooks) { b.hooks = hooks }

func (b *Base) ID() string               { return b.id }
func (b *Base) Kind() string             { return b.kind }
func (b *Base) Attrs() *attribute.Handler { return b.attrs }

// Children and NextInstructions are deliberately NOT implemented on
// Base: each concrete archetype holds its own children slice and must
// define these itself. If Base delegated to b.hooks.Children() and a
// concrete type relied on Go's method promotion instead of defining
// its own, the promoted call would resolve back to this method and
// recurse forever — so there is no promotion path to fall into.

func (b *Base) Status() Status {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.status
}

func (b *Base) setStatus(ctx *Context, s Status) {
	b.mu.Lock()
	b.status = s
	b.mu.Unlock()
	if ctx != nil && ctx.Observer != nil {
		ctx.Observer.UpdateInstructionStatus(topLevelOrSelf(b))
	}
}

// topLevelOrSelf exists only so setStatus can pass *something*
// implementing Instruction to the observer even though Base itself
// does not (Hooks does); the bound hooks value always also implements
// Instruction for every concrete archetype in this package.
func topLevelOrSelf(b *Base) Instruction {
	if i, ok := b.hooks.(Instruction); ok {
		return i
	}
	return nil
}

// Setup validates attributes (constraints + type parseability for
// defined non-variable attributes) and recurses into children. It
// deliberately does NOT call InitHook — per spec.md §4.4, init_hook is
// a Tick-time, first-tick-only step, not a Setup-time one. On failure
// it raises errs.KindInstructionSetup wrapping the originating error.
func (b *Base) Setup(ctx *Context) error {
	if !b.attrs.Validate() {
		return errs.InstructionSetup(b.kind, errs.AttributeValidation(
			"attribute validation failed", b.attrs.FailedConstraints()))
	}
	for _, child := range b.hooks.Children() {
		if err := child.Setup(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Tick runs one step of spec.md §4.4's per-tick algorithm: lazily runs
// InitHook on first tick, snapshots status, runs ExecuteStep, and
// notifies the observer iff status changed.
func (b *Base) Tick(ctx *Context) Status {
	before := b.Status()

	if before == StatusNotStarted {
		if b.halted.Load() {
			b.setStatus(ctx, StatusFailure)
			return StatusFailure
		}
		if err := b.hooks.InitHook(ctx); err != nil {
			if ctx != nil && ctx.Observer != nil {
				ctx.Observer.Log(SeverityErr, b.kind+": init failed: "+err.Error())
			}
			b.setStatus(ctx, StatusFailure)
			return StatusFailure
		}
		b.setStatus(ctx, StatusNotFinished)
		before = StatusNotFinished
	}

	if b.halted.Load() {
		b.setStatus(ctx, StatusFailure)
		return StatusFailure
	}

	newStatus := b.hooks.ExecuteStep(ctx)
	if newStatus != before {
		b.setStatus(ctx, newStatus)
	}
	return newStatus
}

// Reset calls ResetHook (which must wait for any owned thread and
// reset children), returns status to NOT_STARTED, and clears the halt
// flag.
func (b *Base) Reset(ctx *Context) {
	b.hooks.ResetHook(ctx)
	b.mu.Lock()
	b.status = StatusNotStarted
	b.mu.Unlock()
	b.halted.Store(false)
}

// Halt sets the halt flag atomically and calls HaltImpl, which
// propagates to children.
func (b *Base) Halt() {
	b.halted.Store(true)
	b.hooks.HaltImpl()
}

func (b *Base) IsHaltRequested() bool { return b.halted.Load() }

package runner

import (
	"sync/atomic"
	"time"

	"github.com/lyzr/sequencer/internal/instruction"
	"github.com/lyzr/sequencer/internal/procedure"
	"github.com/lyzr/sequencer/internal/value"
	"github.com/lyzr/sequencer/internal/workspace"
)

// Runner is the synchronous tick driver (spec.md §4.8): it owns one
// procedure's lifecycle from SetProcedure through repeated
// ExecuteProcedure/ExecuteSingle calls, honoring breakpoints and a
// loop-level pause/halt distinct from the procedure's own halt.
type Runner struct {
	proc     *procedure.Procedure
	observer instruction.Observer
	bpMgr    *BreakpointManager
	listener *workspace.Guard

	tickCallback func()

	loopHalt atomic.Bool
	lastHit  []instruction.Instruction
}

// New constructs a Runner with no procedure yet attached.
func New() *Runner { return &Runner{} }

// SetTickCallback installs a hook invoked once per ExecuteSingle call,
// after the tick and after breakpoint bookkeeping (used by a monitor
// server to push status after each step).
func (r *Runner) SetTickCallback(cb func()) { r.tickCallback = cb }

// SetProcedure attaches p to this runner: subscribes obs to workspace
// changes, runs p.Setup(), and builds a fresh BreakpointManager from
// p.Root() — in that order, since any Include nodes only resolve their
// nested root during Setup and Children() must see it to make the
// included instructions valid breakpoint targets.
func (r *Runner) SetProcedure(p *procedure.Procedure, obs instruction.Observer) error {
	if obs == nil {
		obs = instruction.DefaultObserver{}
	}
	if r.listener != nil {
		r.listener.Release()
		r.listener = nil
	}
	r.proc = p
	r.observer = obs
	r.listener = p.Workspace().RegisterGenericListener(func(name string, v value.Value, connected bool) {
		obs.VariableUpdated(name, v, connected)
	})
	if err := p.Setup(); err != nil {
		return err
	}
	r.bpMgr = NewBreakpointManager(p.Root())
	r.loopHalt.Store(false)
	r.lastHit = nil
	return nil
}

// Breakpoints returns the manager built for the currently attached
// procedure, or nil if none is attached.
func (r *Runner) Breakpoints() *BreakpointManager { return r.bpMgr }

// Procedure returns the currently attached procedure, or nil if none
// is attached.
func (r *Runner) Procedure() *procedure.Procedure { return r.proc }

// LastHit returns the breakpoints that stopped the most recent
// ExecuteProcedure call, if any.
func (r *Runner) LastHit() []instruction.Instruction { return r.lastHit }

// ExecuteProcedure runs the attached procedure to completion, one tick
// at a time, stopping early on loop-halt or on hitting a SET
// breakpoint (spec.md §4.8): check is_finished / loop-halt, compute
// next_instructions, check breakpoints, else tick once.
func (r *Runner) ExecuteProcedure() {
	r.lastHit = nil
	for {
		if r.IsFinished() || r.loopHalt.Load() {
			return
		}
		next := r.proc.NextInstructions()
		if hit := r.bpMgr.Handle(next); len(hit) > 0 {
			r.lastHit = hit
			return
		}
		r.ExecuteSingle()
	}
}

// ExecuteSingle ticks the root once, resets any RELEASED breakpoints
// back to SET, and invokes the tick callback if one is installed
// (spec.md §4.7's execute_single).
func (r *Runner) ExecuteSingle() instruction.Status {
	status := r.proc.ExecuteSingle(r.observer)
	r.bpMgr.ResetReleased()
	if r.tickCallback != nil {
		r.tickCallback()
	}
	return status
}

// IsFinished reports whether the root has reached a terminal status or
// has an outstanding halt request (spec.md §4.8's is_finished()).
func (r *Runner) IsFinished() bool {
	root := r.proc.Root()
	return root.Status().IsTerminal() || root.IsHaltRequested()
}

// ProcedureStatus returns the root instruction's current status, used
// by a job controller to tell a genuine RUNNING tick-timeout wait from
// a finished or halted procedure.
func (r *Runner) ProcedureStatus() instruction.Status { return r.proc.Root().Status() }

// IsHaltRequested reports whether Halt has been called on the
// attached procedure's root, distinguishing a halted run from a
// naturally-failed one (both land on StatusFailure).
func (r *Runner) IsHaltRequested() bool { return r.proc.Root().IsHaltRequested() }

// TickTimeout returns the attached procedure's configured tick
// timeout (spec.md §4.7), used by a job controller's run loop to pace
// its wait while the root is RUNNING.
func (r *Runner) TickTimeout() time.Duration { return r.proc.TickTimeout() }

// Pause sets the loop-level halt flag only: ExecuteProcedure will stop
// before its next tick, but the procedure itself (and any in-flight
// async worker) is left running, unlike Halt.
func (r *Runner) Pause() { r.loopHalt.Store(true) }

// Resume clears the loop-level halt flag set by Pause.
func (r *Runner) Resume() { r.loopHalt.Store(false) }

// Halt sets the loop-level halt flag and propagates an instruction
// halt to the procedure's root, requesting every running instruction
// (including async workers) stop at its next observable point.
func (r *Runner) Halt() {
	r.loopHalt.Store(true)
	r.proc.Halt()
}

// Reset tears down and re-initializes the attached procedure, clearing
// the loop-halt flag and any pending breakpoint hits.
func (r *Runner) Reset() error {
	if err := r.proc.Reset(r.observer); err != nil {
		return err
	}
	r.loopHalt.Store(false)
	r.lastHit = nil
	return nil
}

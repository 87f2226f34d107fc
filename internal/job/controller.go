package job

import (
	"sync"
	"time"

	"github.com/lyzr/sequencer/internal/instruction"
	"github.com/lyzr/sequencer/internal/procedure"
	"github.com/lyzr/sequencer/internal/runner"
)

// Controller is the job controller (spec.md §4.10): it owns a Runner,
// a priority command queue, a job-state machine, and a single
// background loop goroutine. Its public methods (Start/Step/Pause/
// Reset/Halt/Terminate) only enqueue a command and return immediately;
// all state transitions happen on the background goroutine.
type Controller struct {
	runner        *runner.Runner
	queue         *commandQueue
	onTick        func(p *procedure.Procedure)
	onStateChange func(State)

	mu        sync.Mutex
	state     State
	keepAlive bool

	wg sync.WaitGroup
}

// NewController builds a Controller around an already-SetProcedure'd
// Runner, starting in INITIAL state.
func NewController(r *runner.Runner) *Controller {
	return &Controller{
		runner:    r,
		queue:     newCommandQueue(),
		state:     StateInitial,
		keepAlive: true,
	}
}

// SetOnTick installs a hook the background loop calls once per tick
// (both during a run and during a single step) with the attached
// procedure, standing in for "notifies observer of a tick" in
// spec.md §4.10 — this is the job-state monitor's
// on_procedure_tick(procedure) (spec.md §6).
func (c *Controller) SetOnTick(cb func(p *procedure.Procedure)) { c.onTick = cb }

// SetOnStateChange installs the job-state monitor's
// on_state_change(state) hook (spec.md §6), called after every state
// transition.
func (c *Controller) SetOnStateChange(cb func(State)) { c.onStateChange = cb }

// State returns the controller's current job state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) setState(s State) {
	c.mu.Lock()
	c.state = s
	cb := c.onStateChange
	c.mu.Unlock()
	if cb != nil {
		cb(s)
	}
}

func (c *Controller) keepAliveFlag() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.keepAlive
}

func (c *Controller) clearKeepAlive() {
	c.mu.Lock()
	c.keepAlive = false
	c.mu.Unlock()
	c.queue.wake()
}

// Start begins the background loop goroutine. Call once per
// Controller; Terminate (and Wait) tear it back down.
func (c *Controller) Start() {
	c.wg.Add(1)
	go c.loop()
}

// Wait blocks until the background loop has exited, mirroring
// spec.md §4.10's "the destructor waits for this exit" after
// Terminate.
func (c *Controller) Wait() { c.wg.Wait() }

// RequestStart enqueues a Start command.
func (c *Controller) RequestStart() { c.queue.push(CmdStart) }

// RequestStep enqueues a Step command.
func (c *Controller) RequestStep() { c.queue.push(CmdStep) }

// RequestPause enqueues a Pause command.
func (c *Controller) RequestPause() { c.queue.push(CmdPause) }

// RequestReset enqueues a Reset command.
func (c *Controller) RequestReset() { c.queue.push(CmdReset) }

// RequestHalt enqueues a (priority) Halt command.
func (c *Controller) RequestHalt() { c.queue.push(CmdHalt) }

// RequestTerminate enqueues a (priority) Terminate command.
func (c *Controller) RequestTerminate() { c.queue.push(CmdTerminate) }

func (c *Controller) loop() {
	defer c.wg.Done()
	for {
		cmd, ok := c.queue.popBlocking(func() bool { return !c.keepAliveFlag() })
		if !ok {
			return
		}
		c.handle(cmd)
	}
}

// handle dispatches one dequeued command against the current state per
// spec.md §4.10's transition table. It always runs on the single
// background goroutine, so it never races a run() or step() call
// already in flight — those are themselves synchronous calls made
// from right here.
func (c *Controller) handle(cmd Command) {
	switch cmd {
	case CmdStart:
		if c.State().isStartable() {
			c.setState(StateRunning)
			c.runLoop()
		}
	case CmdStep:
		if c.State().isStartable() {
			c.setState(StateStepping)
			c.stepOnce()
		}
	case CmdPause:
		if c.State() == StateRunning {
			c.runner.Pause()
			c.setState(StatePaused)
		}
	case CmdReset:
		if c.State().IsTerminal() {
			if err := c.runner.Reset(); err == nil {
				c.setState(StateInitial)
			}
		}
	case CmdHalt:
		c.runner.Halt()
		c.setState(StateHalted)
	case CmdTerminate:
		c.runner.Halt()
		c.setState(StateHalted)
		c.clearKeepAlive()
	}
}

// runLoop drives the runner to completion with a tick callback that
// itself drains the next pending command without blocking (spec.md
// §4.10's run()): Pause/Step interrupt into PAUSED, Halt/Terminate
// invoke runner.Halt() synchronously on this same thread to unblock
// the tick loop. Absent any pending command, it sleeps for the
// procedure's tick timeout while the root is RUNNING so the loop
// doesn't busy-spin waiting on an async worker.
func (c *Controller) runLoop() {
	c.runner.Resume()
	var interrupted bool
	c.runner.SetTickCallback(func() {
		if c.onTick != nil {
			c.onTick(c.runner.Procedure())
		}
		cmd, ok := c.queue.popNonBlocking()
		if !ok {
			if c.runner.ProcedureStatus() == instruction.StatusRunning {
				time.Sleep(c.runner.TickTimeout())
			}
			return
		}
		interrupted = true
		switch cmd {
		case CmdPause, CmdStep:
			c.runner.Pause()
			c.setState(StatePaused)
		case CmdHalt:
			c.runner.Halt()
			c.setState(StateHalted)
		case CmdTerminate:
			c.runner.Halt()
			c.setState(StateHalted)
			c.clearKeepAlive()
		case CmdStart, CmdReset:
			// no transition defined for these while RUNNING (spec.md §4.10);
			// the command is simply dropped, same as it would be if handle()
			// dispatched it against state RUNNING.
		}
	})
	c.runner.ExecuteProcedure()
	if !interrupted {
		c.finishAfterRun()
	}
}

// finishAfterRun derives the job's terminal (or PAUSED) state from why
// ExecuteProcedure returned on its own, without any command
// interrupting it: a breakpoint hit, a halt request, or the root
// reaching SUCCESS/FAILURE.
func (c *Controller) finishAfterRun() {
	if len(c.runner.LastHit()) > 0 {
		c.setState(StatePaused)
		return
	}
	switch c.runner.ProcedureStatus() {
	case instruction.StatusSuccess:
		c.setState(StateSucceeded)
	case instruction.StatusFailure:
		if c.runner.IsHaltRequested() {
			c.setState(StateHalted)
		} else {
			c.setState(StateFailed)
		}
	default:
		c.setState(StatePaused)
	}
}

// stepOnce installs a minimal tick callback (notify only, no command
// draining) and ticks the root exactly once (spec.md §4.10's step()).
func (c *Controller) stepOnce() {
	c.runner.SetTickCallback(func() {
		if c.onTick != nil {
			c.onTick(c.runner.Procedure())
		}
	})
	status := c.runner.ExecuteSingle()
	if !status.IsTerminal() {
		c.setState(StatePaused)
		return
	}
	if status == instruction.StatusSuccess {
		c.setState(StateSucceeded)
		return
	}
	if c.runner.IsHaltRequested() {
		c.setState(StateHalted)
	} else {
		c.setState(StateFailed)
	}
}

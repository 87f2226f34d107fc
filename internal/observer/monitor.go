package observer

import (
	"context"
	"sync"

	"github.com/lyzr/sequencer/internal/instruction"
	"github.com/lyzr/sequencer/internal/job"
	"github.com/lyzr/sequencer/internal/procedure"
	"github.com/lyzr/sequencer/internal/runner"
)

// JobStateMonitor is the external job-state watcher contract
// (spec.md §6): on_state_change, on_breakpoint_change, and
// on_procedure_tick.
type JobStateMonitor interface {
	OnStateChange(state job.State)
	OnBreakpointChange(i instruction.Instruction, set bool)
	OnProcedureTick(p *procedure.Procedure)
}

// Monitor is a JobStateMonitor that additionally lets a caller block
// until the job reaches a terminal state, the capability a CLI
// front-end's "run to completion" needs that a raw event callback does
// not provide on its own.
type Monitor struct {
	delegate JobStateMonitor

	mu         sync.Mutex
	state      job.State
	finished   bool
	finishedCh chan struct{}
}

// NewMonitor builds a Monitor. delegate may be nil if the caller only
// wants WaitForFinished and has no other use for the raw events.
func NewMonitor(delegate JobStateMonitor) *Monitor {
	return &Monitor{delegate: delegate, state: job.StateInitial, finishedCh: make(chan struct{})}
}

// Attach wires this Monitor into a Controller and a BreakpointManager:
// state changes and breakpoint changes call through OnStateChange /
// OnBreakpointChange, and every tick calls OnProcedureTick.
func (m *Monitor) Attach(c *job.Controller, bp *runner.BreakpointManager) {
	c.SetOnStateChange(m.OnStateChange)
	c.SetOnTick(m.OnProcedureTick)
	if bp != nil {
		bp.SetOnChange(m.OnBreakpointChange)
	}
}

func (m *Monitor) OnStateChange(state job.State) {
	m.mu.Lock()
	m.state = state
	switch {
	case state.IsTerminal() && !m.finished:
		m.finished = true
		close(m.finishedCh)
	case !state.IsTerminal() && m.finished:
		// A Reset (or a fresh SetProcedure) left the terminal state
		// behind; arm a new channel so a later WaitForFinished call
		// blocks for the run actually in progress now.
		m.finished = false
		m.finishedCh = make(chan struct{})
	}
	m.mu.Unlock()
	if m.delegate != nil {
		m.delegate.OnStateChange(state)
	}
}

func (m *Monitor) OnBreakpointChange(i instruction.Instruction, set bool) {
	if m.delegate != nil {
		m.delegate.OnBreakpointChange(i, set)
	}
}

func (m *Monitor) OnProcedureTick(p *procedure.Procedure) {
	if m.delegate != nil {
		m.delegate.OnProcedureTick(p)
	}
}

// State returns the last state this Monitor observed.
func (m *Monitor) State() job.State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// WaitForFinished blocks until a terminal state is observed or ctx is
// done, returning the terminal state (or the last-seen state plus
// ctx.Err() on cancellation).
func (m *Monitor) WaitForFinished(ctx context.Context) (job.State, error) {
	m.mu.Lock()
	ch := m.finishedCh
	m.mu.Unlock()

	select {
	case <-ch:
		return m.State(), nil
	case <-ctx.Done():
		return m.State(), ctx.Err()
	}
}

// Package runner implements the synchronous tick driver and its
// breakpoint manager (spec.md §4.8/§4.9).
package runner

import (
	"fmt"
	"sync"

	"github.com/lyzr/sequencer/internal/instruction"
)

// BreakpointStatus is a breakpoint's position in its own tiny
// two-state machine: SET (will trigger next time its instruction is
// about to be ticked), RELEASED (already triggered once this pass,
// will not re-trigger until ResetReleased runs).
type BreakpointStatus int

const (
	BreakpointSet BreakpointStatus = iota
	BreakpointReleased
)

func (s BreakpointStatus) String() string {
	if s == BreakpointReleased {
		return "RELEASED"
	}
	return "SET"
}

// BreakpointManager tracks (instruction, status) pairs under a mutex
// (spec.md §4.9), scoped to the set of instructions reachable from one
// procedure's root at construction time.
type BreakpointManager struct {
	mu       sync.Mutex
	known    map[instruction.Instruction]bool
	bps      map[instruction.Instruction]BreakpointStatus
	onChange func(i instruction.Instruction, set bool)
}

// SetOnChange installs a hook called after Set or Remove actually
// changes a breakpoint's presence — the job-state monitor's
// on_breakpoint_change(instruction, set?) (spec.md §6).
func (m *BreakpointManager) SetOnChange(cb func(i instruction.Instruction, set bool)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onChange = cb
}

// NewBreakpointManager walks root's tree (via Children()) and records
// every reachable instruction as a valid Set/Remove target. Call this
// after the procedure's root has been set up, so any Include nodes
// have already resolved their nested root and Children() reports it.
func NewBreakpointManager(root instruction.Instruction) *BreakpointManager {
	known := make(map[instruction.Instruction]bool)
	markReachable(root, known)
	return &BreakpointManager{known: known, bps: make(map[instruction.Instruction]BreakpointStatus)}
}

func markReachable(i instruction.Instruction, seen map[instruction.Instruction]bool) {
	if i == nil || seen[i] {
		return
	}
	seen[i] = true
	for _, c := range i.Children() {
		markReachable(c, seen)
	}
}

// Set inserts a SET breakpoint on i, rejecting an instruction this
// manager never saw reachable from its root. Re-setting an existing
// breakpoint (in either state) is a no-op.
func (m *BreakpointManager) Set(i instruction.Instruction) error {
	m.mu.Lock()
	if !m.known[i] {
		m.mu.Unlock()
		return fmt.Errorf("runner: breakpoint: unknown instruction %q", i.Kind())
	}
	_, exists := m.bps[i]
	if !exists {
		m.bps[i] = BreakpointSet
	}
	cb := m.onChange
	m.mu.Unlock()
	if !exists && cb != nil {
		cb(i, true)
	}
	return nil
}

// Remove deletes any breakpoint on i; a no-op if none exists.
func (m *BreakpointManager) Remove(i instruction.Instruction) {
	m.mu.Lock()
	_, existed := m.bps[i]
	delete(m.bps, i)
	cb := m.onChange
	m.mu.Unlock()
	if existed && cb != nil {
		cb(i, false)
	}
}

// Handle checks next (the instructions about to be ticked) against
// SET breakpoints: each match moves to RELEASED and is returned in
// hit, so the engine may resume past it on the very next pass without
// re-triggering immediately.
func (m *BreakpointManager) Handle(next []instruction.Instruction) []instruction.Instruction {
	m.mu.Lock()
	defer m.mu.Unlock()
	var hit []instruction.Instruction
	for _, n := range next {
		if status, ok := m.bps[n]; ok && status == BreakpointSet {
			m.bps[n] = BreakpointReleased
			hit = append(hit, n)
		}
	}
	return hit
}

// ResetReleased moves every RELEASED breakpoint back to SET. Called
// after every tick so a breakpoint re-arms once its instruction has
// actually been ticked past.
func (m *BreakpointManager) ResetReleased() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, s := range m.bps {
		if s == BreakpointReleased {
			m.bps[i] = BreakpointSet
		}
	}
}

// List returns a snapshot copy of all tracked breakpoints.
func (m *BreakpointManager) List() map[instruction.Instruction]BreakpointStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make(map[instruction.Instruction]BreakpointStatus, len(m.bps))
	for k, v := range m.bps {
		cp[k] = v
	}
	return cp
}

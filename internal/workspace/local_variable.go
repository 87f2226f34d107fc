package workspace

import (
	"sync"

	"github.com/lyzr/sequencer/internal/value"
)

// LocalVariable holds its value in process memory. Per spec.md §8's
// setup/teardown invariant, a local variable retains its configured
// initial value across a teardown+setup cycle; only externally-backed
// variables (RedisVariable) lose their value on teardown.
type LocalVariable struct {
	mu      sync.Mutex
	initial value.Value
	current value.Value
	onSet   func(path string, v value.Value)
}

// NewLocalVariable constructs a local variable with an initial value
// (may be value.Empty() for one whose type is only known once set).
func NewLocalVariable(initial value.Value) *LocalVariable {
	return &LocalVariable{initial: initial, current: initial}
}

// OnSet installs a callback invoked after every successful Set, used
// by Workspace to drive change notification. Not part of the Variable
// interface; Workspace type-asserts for it.
func (v *LocalVariable) OnSet(cb func(path string, val value.Value)) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.onSet = cb
}

func (v *LocalVariable) TypeTag() string { return "Local" }

func (v *LocalVariable) Setup() (*SharedSetup, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.current = v.initial
	return nil, nil
}

func (v *LocalVariable) Teardown() error { return nil }

func (v *LocalVariable) IsAvailable() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return !v.current.IsEmpty()
}

func (v *LocalVariable) Get(path string) (value.Value, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if path == "" {
		return v.current, !v.current.IsEmpty()
	}
	return v.current.GetField(path)
}

func (v *LocalVariable) Set(path string, val value.Value) error {
	v.mu.Lock()
	updated, err := v.current.SetField(path, val)
	if err != nil {
		v.mu.Unlock()
		return err
	}
	v.current = updated
	cb := v.onSet
	v.mu.Unlock()
	if cb != nil {
		cb(path, updated)
	}
	return nil
}

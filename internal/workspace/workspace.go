package workspace

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/lyzr/sequencer/internal/value"
)

// ChangeFunc is notified on a successful variable change.
// connected reports the variable's current IsAvailable(); for local
// variables this is always true once set, for externally-backed
// variables it tracks the backing connection.
type ChangeFunc func(name string, val value.Value, connected bool)

// Guard unregisters its associated listener exactly once, either
// explicitly via Release or (idiomatically for this codebase) never —
// callers that want deterministic teardown call Release themselves;
// there is no finalizer-based auto-release, matching spec.md §4.3's
// "guards unregister on drop" intent translated to Go's lack of
// deterministic destructors.
type Guard struct {
	once     sync.Once
	release  func()
}

// Release unregisters the listener this guard was returned for.
func (g *Guard) Release() {
	g.once.Do(func() {
		if g.release != nil {
			g.release()
		}
	})
}

type namedEntry struct {
	id    uint64
	owner string
	cb    ChangeFunc
}

type genericEntry struct {
	id uint64
	cb ChangeFunc
}

// Workspace is the ordered, named scope of typed variables shared by
// every instruction of one procedure (spec.md §4.3).
type Workspace struct {
	mu    sync.Mutex
	order []string
	vars  map[string]Variable

	listenerMu   sync.Mutex
	nextID       uint64
	generic      []genericEntry
	named        map[string][]namedEntry

	typeMu sync.Mutex
	types  map[string]value.Value

	setupState *setupState

	waitMu   sync.Mutex
	waitCond *sync.Cond
}

type setupState struct {
	sharedTeardowns []func() error
	varTeardowns    []func() error
}

// New returns an empty workspace.
func New() *Workspace {
	w := &Workspace{
		vars:  make(map[string]Variable),
		named: make(map[string][]namedEntry),
		types: make(map[string]value.Value),
	}
	w.waitCond = sync.NewCond(&w.waitMu)
	return w
}

// Add registers a named variable; it is an error to reuse a name.
func (w *Workspace) Add(name string, v Variable) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, exists := w.vars[name]; exists {
		return fmt.Errorf("workspace: variable %q already exists", name)
	}
	w.vars[name] = v
	w.order = append(w.order, name)
	if local, ok := v.(*LocalVariable); ok {
		local.OnSet(func(path string, val value.Value) {
			w.notify(name, val, true)
		})
	}
	if rv, ok := v.(*RedisVariable); ok {
		rv.OnChange(func(val value.Value) {
			w.notify(name, val, rv.conn.isConnected())
		})
	}
	return nil
}

// Names returns variable names in insertion order.
func (w *Workspace) Names() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	cp := make([]string, len(w.order))
	copy(cp, w.order)
	return cp
}

func (w *Workspace) lookup(name string) (Variable, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	v, ok := w.vars[name]
	return v, ok
}

// Setup runs every variable's Setup, deduplicating any published
// SharedSetup by Identifier so a resource shared by several variables
// (e.g. one Redis connection) is set up exactly once. Idempotent: a
// second call is a no-op unless Teardown ran first.
func (w *Workspace) Setup() error {
	w.mu.Lock()
	alreadySetup := w.setupState != nil
	names := make([]string, len(w.order))
	copy(names, w.order)
	vars := make(map[string]Variable, len(w.vars))
	for k, v := range w.vars {
		vars[k] = v
	}
	w.mu.Unlock()

	if alreadySetup {
		return nil
	}

	state := &setupState{}
	seenShared := make(map[string]bool)

	for _, name := range names {
		v := vars[name]
		shared, err := v.Setup()
		if err != nil {
			return fmt.Errorf("workspace: setup variable %q: %w", name, err)
		}
		state.varTeardowns = append(state.varTeardowns, v.Teardown)
		if shared != nil && !seenShared[shared.Identifier] {
			seenShared[shared.Identifier] = true
			if shared.Teardown != nil {
				state.sharedTeardowns = append(state.sharedTeardowns, shared.Teardown)
			}
		}
	}

	w.mu.Lock()
	w.setupState = state
	w.mu.Unlock()
	return nil
}

// Teardown runs shared teardowns first, then per-variable teardowns,
// then clears setup state so a later Setup call runs fresh.
func (w *Workspace) Teardown() error {
	w.mu.Lock()
	state := w.setupState
	w.setupState = nil
	w.mu.Unlock()

	if state == nil {
		return nil
	}
	var firstErr error
	for _, fn := range state.sharedTeardowns {
		if err := fn(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	for _, fn := range state.varTeardowns {
		if err := fn(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func splitPath(path string) (name, rest string) {
	idx := strings.IndexAny(path, ".[")
	if idx < 0 {
		return path, ""
	}
	if path[idx] == '[' {
		return path[:idx], path[idx:]
	}
	return path[:idx], path[idx+1:]
}

// Get splits path into (variable name, field path) and delegates to
// the named variable. Returns false if the variable is absent or the
// per-variable Get fails.
func (w *Workspace) Get(path string) (value.Value, bool) {
	name, rest := splitPath(path)
	v, ok := w.lookup(name)
	if !ok {
		return value.Value{}, false
	}
	return v.Get(rest)
}

// Set splits path into (variable name, field path) and delegates to
// the named variable's Set.
func (w *Workspace) Set(path string, val value.Value) error {
	name, rest := splitPath(path)
	v, ok := w.lookup(name)
	if !ok {
		return fmt.Errorf("workspace: variable %q does not exist", name)
	}
	return v.Set(rest, val)
}

// WaitFor blocks until the named variable's IsAvailable() equals
// available, or timeout elapses, returning whether the condition was
// observed (vs. timing out). Implements spec.md §4.3's wait_for using
// a condition variable broadcast on every notify, rather than polling.
func (w *Workspace) WaitFor(name string, timeout time.Duration, available bool) bool {
	deadline := time.Now().Add(timeout)

	check := func() (matched bool, exists bool) {
		v, ok := w.lookup(name)
		if !ok {
			return false, false
		}
		return v.IsAvailable() == available, true
	}

	w.waitMu.Lock()
	defer w.waitMu.Unlock()
	for {
		match, exists := check()
		if !exists {
			return false
		}
		if match {
			return true
		}
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return false
		}
		timer := time.AfterFunc(remaining, func() {
			w.waitMu.Lock()
			w.waitCond.Broadcast()
			w.waitMu.Unlock()
		})
		w.waitCond.Wait()
		timer.Stop()
	}
}

// RegisterType inserts a user-defined structured type (represented as
// a prototype KindStruct value describing its shape) into the
// workspace's type registry. Succeeds if the name is absent or the
// existing entry is structurally equal.
func (w *Workspace) RegisterType(shape value.Value) error {
	if shape.TypeOf() != value.KindStruct {
		return fmt.Errorf("workspace: register_type requires a struct shape, got %s", shape.TypeOf())
	}
	name := shape.StructName()
	w.typeMu.Lock()
	defer w.typeMu.Unlock()
	existing, ok := w.types[name]
	if ok {
		if !existing.Equal(shape) {
			return fmt.Errorf("workspace: type %q already registered with a different shape", name)
		}
		return nil
	}
	w.types[name] = shape
	return nil
}

// LookupType returns a previously registered type's prototype shape.
func (w *Workspace) LookupType(name string) (value.Value, bool) {
	w.typeMu.Lock()
	defer w.typeMu.Unlock()
	v, ok := w.types[name]
	return v, ok
}

// RegisterGenericListener registers cb to be called on every variable
// change, in insertion order relative to other generic listeners and
// before any named listener.
func (w *Workspace) RegisterGenericListener(cb ChangeFunc) *Guard {
	w.listenerMu.Lock()
	defer w.listenerMu.Unlock()
	id := w.nextID
	w.nextID++
	w.generic = append(w.generic, genericEntry{id: id, cb: cb})
	return &Guard{release: func() {
		w.listenerMu.Lock()
		defer w.listenerMu.Unlock()
		for i, e := range w.generic {
			if e.id == id {
				w.generic = append(w.generic[:i], w.generic[i+1:]...)
				break
			}
		}
	}}
}

// RegisterListener registers cb for changes to the named variable
// only. owner is a free-form label (e.g. instruction identity) carried
// for diagnostics; it has no effect on dispatch order beyond insertion
// order among listeners on the same name.
func (w *Workspace) RegisterListener(name string, cb ChangeFunc, owner string) *Guard {
	w.listenerMu.Lock()
	defer w.listenerMu.Unlock()
	id := w.nextID
	w.nextID++
	w.named[name] = append(w.named[name], namedEntry{id: id, owner: owner, cb: cb})
	return &Guard{release: func() {
		w.listenerMu.Lock()
		defer w.listenerMu.Unlock()
		entries := w.named[name]
		for i, e := range entries {
			if e.id == id {
				w.named[name] = append(entries[:i], entries[i+1:]...)
				break
			}
		}
	}}
}

// notify runs the generic listeners in insertion order, then the
// per-name listeners in insertion order, on copies of the listener
// lists taken under the listener lock; no lock is held while the
// callbacks run. It then wakes any WaitFor callers.
func (w *Workspace) notify(name string, val value.Value, connected bool) {
	w.listenerMu.Lock()
	generic := make([]genericEntry, len(w.generic))
	copy(generic, w.generic)
	named := make([]namedEntry, len(w.named[name]))
	copy(named, w.named[name])
	w.listenerMu.Unlock()

	for _, e := range generic {
		e.cb(name, val, connected)
	}
	for _, e := range named {
		e.cb(name, val, connected)
	}

	w.waitMu.Lock()
	w.waitCond.Broadcast()
	w.waitMu.Unlock()
}

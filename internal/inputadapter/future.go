package inputadapter

import (
	"time"

	"github.com/lyzr/sequencer/internal/instruction"
)

// Future is the cancellable handle Adapter.Submit returns. It
// implements instruction.Future so any input-requesting leaf
// (UserConfirmation, UserChoice, UserInput) can poll it directly.
type Future struct {
	adapter *Adapter
	id      uint64
}

// IsValid reports whether this Future still names a live request: it
// becomes invalid once its reply has been consumed via Get, or once
// Cancel has been called on it.
func (f *Future) IsValid() bool { return f.id != 0 }

// IsReady reports whether a reply is available to consume.
func (f *Future) IsReady() bool {
	if f.id == 0 {
		return false
	}
	return f.adapter.isReady(f.id)
}

// WaitFor blocks until a reply is ready or timeout elapses, returning
// whether one became ready. A zero or negative timeout only checks
// the current state.
func (f *Future) WaitFor(timeout time.Duration) bool {
	if f.id == 0 {
		return false
	}
	if f.adapter.isReady(f.id) {
		return true
	}
	ch, ok := f.adapter.waitChan(f.id)
	if !ok {
		return f.adapter.isReady(f.id)
	}
	if timeout <= 0 {
		select {
		case <-ch:
		default:
			return false
		}
		return f.adapter.isReady(f.id)
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-ch:
		return f.adapter.isReady(f.id)
	case <-timer.C:
		return false
	}
}

// Get consumes and returns the reply; the Future becomes invalid
// afterward and subsequent calls return (zero value, false). This
// also satisfies instruction.Future's Get method.
func (f *Future) Get() (instruction.InputReply, bool) {
	if f.id == 0 {
		return instruction.InputReply{}, false
	}
	reply, ok := f.adapter.takeReply(f.id)
	f.id = 0
	return reply, ok
}

// Cancel abandons this request if it is still valid: still queued,
// already replied but unread, or presently being handled (in which
// case the adapter's configured InterruptFunc runs). A no-op once the
// Future is already invalid.
func (f *Future) Cancel() {
	if f.id == 0 {
		return
	}
	f.adapter.Cancel(f.id)
	f.id = 0
}

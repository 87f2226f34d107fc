package instruction

import "github.com/lyzr/sequencer/internal/workspace"

// Context is threaded through every tick/setup/reset call instead of a
// parent back-reference (the C++ source uses raw child pointers and
// parent back-references for observer dispatch; this port uses exclusive ownership — parent holds
// children, children hold none — with Context carrying the observer
// and workspace handles a child needs to report through).
type Context struct {
	Workspace *workspace.Workspace
	Observer  Observer
}

// NewContext builds a tick context. A nil observer is replaced with
// DefaultObserver.
func NewContext(ws *workspace.Workspace, obs Observer) *Context {
	if obs == nil {
		obs = DefaultObserver{}
	}
	return &Context{Workspace: ws, Observer: obs}
}

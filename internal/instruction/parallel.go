package instruction

// Parallel ticks all children concurrently via async wrappers;
// success/failure thresholds (spec.md §4.6) drive termination: SUCCESS
// once successCount >= successTh, FAILURE once failureCount >= failureTh
// (checked in that order), else RUNNING while any wrapper still has
// work in flight. Unlike Sequence/Fallback's direct ticking, Parallel's
// unresolved state is always reported as RUNNING rather than
// NOT_FINISHED: every wrapper dispatches its child's work to a worker
// goroutine, so progress genuinely is worker-owned for as long as
// Parallel itself is unresolved (spec.md §4.4's RUNNING/NOT_FINISHED
// distinction). On reaching a terminal result it halts every wrapper,
// stopping any still-running workers.
type Parallel struct {
	*Base
	children  []Instruction
	wrappers  []*asyncWrapper
	successTh int
	failureTh int
}

// NewParallel builds a Parallel compound over children with the given
// thresholds. Both are capped to len(children); if successTh <= 0 it
// defaults to len(children), and if failureTh <= 0 it defaults to 1 —
// spec.md §4.5's "(s=N, f=1)" defaults. If only one of the two
// non-default thresholds is supplied by the caller, pass 0 for the
// other to have it derived: failureTh = N - successTh + 1, or
// successTh = N - failureTh + 1.
func NewParallel(children []Instruction, successTh, failureTh int) *Parallel {
	n := len(children)
	switch {
	case successTh > 0 && failureTh <= 0:
		failureTh = n - successTh + 1
	case failureTh > 0 && successTh <= 0:
		successTh = n - failureTh + 1
	case successTh <= 0 && failureTh <= 0:
		successTh, failureTh = n, 1
	}
	if successTh > n {
		successTh = n
	}
	if failureTh > n {
		failureTh = n
	}
	if successTh < 1 {
		successTh = 1
	}
	if failureTh < 1 {
		failureTh = 1
	}

	wrappers := make([]*asyncWrapper, n)
	for i, c := range children {
		wrappers[i] = newAsyncWrapper(c)
	}

	p := &Parallel{Base: NewBase("Parallel"), children: children, wrappers: wrappers, successTh: successTh, failureTh: failureTh}
	p.Bind(p)
	return p
}

func (p *Parallel) Children() []Instruction { return p.children }

func (p *Parallel) NextInstructions() []Instruction {
	var next []Instruction
	for _, c := range p.children {
		if c.Status() != StatusSuccess && c.Status() != StatusFailure {
			next = append(next, c.NextInstructions()...)
		}
	}
	return next
}

func (p *Parallel) InitHook(ctx *Context) error { return nil }

func (p *Parallel) ExecuteStep(ctx *Context) Status {
	ns, nf := 0, 0
	for _, w := range p.wrappers {
		switch w.tick(ctx) {
		case StatusSuccess:
			ns++
		case StatusFailure:
			nf++
		}
	}

	switch {
	case ns >= p.successTh:
		p.haltAll()
		return StatusSuccess
	case nf >= p.failureTh:
		p.haltAll()
		return StatusFailure
	default:
		return StatusRunning
	}
}

func (p *Parallel) haltAll() {
	for _, w := range p.wrappers {
		w.halt()
	}
}

func (p *Parallel) ResetHook(ctx *Context) {
	for _, w := range p.wrappers {
		w.reset(ctx)
	}
}

func (p *Parallel) HaltImpl() { p.haltAll() }

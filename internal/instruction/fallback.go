package instruction

// Fallback is the ordered-OR compound (spec.md §4.5): iterate children
// in order, skip FAILURE children, tick the first non-finished child
// and stop; SUCCESS in any child succeeds the fallback; all-FAILURE
// fails.
type Fallback struct {
	*Base
	children []Instruction
}

// NewFallback builds a Fallback over children, in tree order.
func NewFallback(children ...Instruction) *Fallback {
	f := &Fallback{Base: NewBase("Fallback"), children: children}
	f.Bind(f)
	return f
}

func (f *Fallback) Children() []Instruction { return f.children }

func (f *Fallback) NextInstructions() []Instruction {
	for _, c := range f.children {
		if c.Status() != StatusFailure {
			return c.NextInstructions()
		}
	}
	return nil
}

func (f *Fallback) InitHook(ctx *Context) error { return nil }

func (f *Fallback) ExecuteStep(ctx *Context) Status {
	for i, c := range f.children {
		if c.Status() == StatusFailure {
			continue
		}
		result := c.Tick(ctx)
		if result == StatusSuccess {
			return StatusSuccess
		}
		if result == StatusFailure {
			if i == len(f.children)-1 {
				return StatusFailure
			}
			return StatusNotFinished
		}
		return result
	}
	return StatusFailure
}

func (f *Fallback) ResetHook(ctx *Context) {
	for _, c := range f.children {
		c.Reset(ctx)
	}
}

func (f *Fallback) HaltImpl() {
	for _, c := range f.children {
		c.Halt()
	}
}

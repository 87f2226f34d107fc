package instruction

// Sequence is the ordered-AND compound (spec.md §4.5): iterate children
// in order, skip SUCCESS children, tick the first non-finished child
// and stop; FAILURE in any child fails the sequence; all-SUCCESS
// succeeds.
type Sequence struct {
	*Base
	children []Instruction
}

// NewSequence builds a Sequence over children, in tree order.
func NewSequence(children ...Instruction) *Sequence {
	s := &Sequence{Base: NewBase("Sequence"), children: children}
	s.Bind(s)
	return s
}

func (s *Sequence) Children() []Instruction { return s.children }

func (s *Sequence) NextInstructions() []Instruction {
	for _, c := range s.children {
		if c.Status() != StatusSuccess {
			return c.NextInstructions()
		}
	}
	return nil
}

func (s *Sequence) InitHook(ctx *Context) error { return nil }

func (s *Sequence) ExecuteStep(ctx *Context) Status {
	for i, c := range s.children {
		if c.Status() == StatusSuccess {
			continue
		}
		result := c.Tick(ctx)
		if result == StatusFailure {
			return StatusFailure
		}
		if result == StatusSuccess {
			if i == len(s.children)-1 {
				return StatusSuccess
			}
			return StatusNotFinished
		}
		return result
	}
	return StatusSuccess
}

func (s *Sequence) ResetHook(ctx *Context) {
	for _, c := range s.children {
		c.Reset(ctx)
	}
}

func (s *Sequence) HaltImpl() {
	for _, c := range s.children {
		c.Halt()
	}
}

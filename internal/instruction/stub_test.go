package instruction

// stubInstruction is a minimal Instruction used to drive compound/
// decorator tests without depending on any real leaf's semantics. Each
// Tick call pops the next status off the script (repeating the last
// entry once exhausted).
type stubInstruction struct {
	*Base
	script    []Status
	tickCount int
	setupErr  error
	halted    bool
}

func newStub(script ...Status) *stubInstruction {
	s := &stubInstruction{Base: NewBase("Stub"), script: script}
	s.Bind(s)
	return s
}

func (s *stubInstruction) Children() []Instruction        { return nil }
func (s *stubInstruction) NextInstructions() []Instruction { return []Instruction{s} }
func (s *stubInstruction) InitHook(ctx *Context) error     { return s.setupErr }

func (s *stubInstruction) ExecuteStep(ctx *Context) Status {
	if len(s.script) == 0 {
		return StatusSuccess
	}
	idx := s.tickCount
	if idx >= len(s.script) {
		idx = len(s.script) - 1
	}
	s.tickCount++
	return s.script[idx]
}

func (s *stubInstruction) ResetHook(ctx *Context) { s.tickCount = 0 }
func (s *stubInstruction) HaltImpl()              { s.halted = true }

package instruction

// Inverter ticks its child once per tick and maps SUCCESS<->FAILURE;
// NOT_FINISHED/RUNNING pass through unchanged.
type Inverter struct {
	*Base
	child Instruction
}

// NewInverter wraps child.
func NewInverter(child Instruction) *Inverter {
	i := &Inverter{Base: NewBase("Inverter"), child: child}
	i.Bind(i)
	return i
}

func (i *Inverter) Children() []Instruction        { return []Instruction{i.child} }
func (i *Inverter) NextInstructions() []Instruction { return i.child.NextInstructions() }
func (i *Inverter) InitHook(ctx *Context) error     { return nil }

func (i *Inverter) ExecuteStep(ctx *Context) Status {
	result := i.child.Tick(ctx)
	switch result {
	case StatusSuccess:
		return StatusFailure
	case StatusFailure:
		return StatusSuccess
	default:
		return result
	}
}

func (i *Inverter) ResetHook(ctx *Context) { i.child.Reset(ctx) }
func (i *Inverter) HaltImpl()              { i.child.Halt() }

// ForceSuccess ticks its child and always surfaces SUCCESS once the
// child completes, regardless of the child's terminal result.
type ForceSuccess struct {
	*Base
	child Instruction
}

// NewForceSuccess wraps child.
func NewForceSuccess(child Instruction) *ForceSuccess {
	f := &ForceSuccess{Base: NewBase("ForceSuccess"), child: child}
	f.Bind(f)
	return f
}

func (f *ForceSuccess) Children() []Instruction        { return []Instruction{f.child} }
func (f *ForceSuccess) NextInstructions() []Instruction { return f.child.NextInstructions() }
func (f *ForceSuccess) InitHook(ctx *Context) error     { return nil }

func (f *ForceSuccess) ExecuteStep(ctx *Context) Status {
	result := f.child.Tick(ctx)
	if result.IsTerminal() {
		return StatusSuccess
	}
	return result
}

func (f *ForceSuccess) ResetHook(ctx *Context) { f.child.Reset(ctx) }
func (f *ForceSuccess) HaltImpl()              { f.child.Halt() }

// Repeat ticks its child repeatedly, at most once per parent tick (to
// preserve cooperative scheduling): each child SUCCESS increments a
// counter and resets the child; Repeat reaches SUCCESS when the
// counter equals maxCount (or never, if maxCount <= 0, i.e.
// unbounded); a child FAILURE propagates immediately.
type Repeat struct {
	*Base
	child    Instruction
	maxCount int
	count    int
}

// NewRepeat wraps child, succeeding after maxCount child successes.
// maxCount <= 0 means unbounded (Repeat never reaches SUCCESS on its
// own; only a child FAILURE or external halt ends it).
func NewRepeat(child Instruction, maxCount int) *Repeat {
	r := &Repeat{Base: NewBase("Repeat"), child: child, maxCount: maxCount}
	r.Bind(r)
	return r
}

func (r *Repeat) Children() []Instruction        { return []Instruction{r.child} }
func (r *Repeat) NextInstructions() []Instruction { return r.child.NextInstructions() }
func (r *Repeat) InitHook(ctx *Context) error {
	r.count = 0
	return nil
}

func (r *Repeat) ExecuteStep(ctx *Context) Status {
	result := r.child.Tick(ctx)
	switch result {
	case StatusFailure:
		return StatusFailure
	case StatusSuccess:
		r.count++
		if r.maxCount > 0 && r.count >= r.maxCount {
			return StatusSuccess
		}
		r.child.Reset(ctx)
		return StatusNotFinished
	default:
		return result
	}
}

func (r *Repeat) ResetHook(ctx *Context) {
	r.count = 0
	r.child.Reset(ctx)
}

func (r *Repeat) HaltImpl() { r.child.Halt() }

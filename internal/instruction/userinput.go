package instruction

import (
	"strings"

	"github.com/lyzr/sequencer/internal/attribute"
	"github.com/lyzr/sequencer/internal/value"
)

// userInputLeaf shares the poll-a-future protocol behind
// UserConfirmation, UserChoice, and UserInput (spec.md §4.5): issue a
// request on first tick, poll the returned future each tick while not
// halted and not ready, and on reply delegate to onReply to produce
// the leaf's terminal status. On halt, the outstanding future is
// cancelled.
type userInputLeaf struct {
	*Base
	buildRequest func(ctx *Context) InputRequest
	onReply      func(ctx *Context, reply InputReply) Status

	future Future
}

func (u *userInputLeaf) Children() []Instruction        { return nil }
func (u *userInputLeaf) NextInstructions() []Instruction { return []Instruction{u} }

func (u *userInputLeaf) InitHook(ctx *Context) error {
	u.future = ctx.Observer.RequestUserInput(u.buildRequest(ctx))
	return nil
}

func (u *userInputLeaf) ExecuteStep(ctx *Context) Status {
	if u.future == nil {
		return StatusFailure
	}
	if u.IsHaltRequested() {
		u.future.Cancel()
		return StatusFailure
	}
	if !u.future.IsReady() {
		return StatusNotFinished
	}
	reply, ok := u.future.Get()
	if !ok {
		return StatusFailure
	}
	return u.onReply(ctx, reply)
}

func (u *userInputLeaf) ResetHook(ctx *Context) {
	if u.future != nil {
		u.future.Cancel()
		u.future = nil
	}
}

func (u *userInputLeaf) HaltImpl() {
	if u.future != nil {
		u.future.Cancel()
	}
}

// NewUserConfirmation builds a leaf that asks the operator to confirm
// or deny; the mandatory "message" attribute is the prompt. SUCCESS
// iff the operator accepted and confirmed true.
func NewUserConfirmation() Instruction {
	u := &userInputLeaf{Base: NewBase("UserConfirmation")}
	u.Bind(u)
	u.Attrs().Define("message", value.KindString).SetMandatory(true)

	u.buildRequest = func(ctx *Context) InputRequest {
		msg, _ := u.Attrs().GetValue("message")
		description, _ := msg.AsString()
		return InputRequest{Description: description, Prototype: value.NewBool(false)}
	}
	u.onReply = func(ctx *Context, reply InputReply) Status {
		if !reply.Accepted {
			return StatusFailure
		}
		confirmed, _ := reply.Value.AsBool()
		if confirmed {
			return StatusSuccess
		}
		return StatusFailure
	}
	return u
}

// NewUserChoice builds a leaf that presents an ordered set of options
// (the "options" attribute, a comma-separated literal list) and writes
// the chosen index into the "result" VARIABLE_NAME attribute target.
func NewUserChoice() Instruction {
	u := &userInputLeaf{Base: NewBase("UserChoice")}
	u.Bind(u)
	u.Attrs().Define("message", value.KindString).SetMandatory(true)
	u.Attrs().Define("options", value.KindString).SetMandatory(true)
	u.Attrs().Define("result", value.KindString).SetMandatory(true).SetCategory(attribute.CategoryVariableName)

	u.buildRequest = func(ctx *Context) InputRequest {
		msg, _ := u.Attrs().GetValue("message")
		description, _ := msg.AsString()
		optsVal, _ := u.Attrs().GetValue("options")
		optsStr, _ := optsVal.AsString()
		var options []string
		for _, o := range strings.Split(optsStr, ",") {
			options = append(options, strings.TrimSpace(o))
		}
		return InputRequest{Description: description, Options: options}
	}
	u.onReply = func(ctx *Context, reply InputReply) Status {
		if !reply.Accepted {
			return StatusFailure
		}
		if !AssignAttributeTarget(u.Attrs(), ctx.Workspace, "result", value.NewInt32(int32(reply.Index))) {
			ctx.Observer.Log(SeverityWarning, "UserChoice: failed to write back result")
			return StatusFailure
		}
		return StatusSuccess
	}
	return u
}

// NewUserInput builds a leaf that requests an arbitrary typed value
// from the operator and writes it into the "output" VARIABLE_NAME
// attribute target.
func NewUserInput() Instruction {
	u := &userInputLeaf{Base: NewBase("UserInput")}
	u.Bind(u)
	u.Attrs().Define("message", value.KindString).SetMandatory(true)
	u.Attrs().Define("output", value.KindString).SetMandatory(true).SetCategory(attribute.CategoryVariableName)

	u.buildRequest = func(ctx *Context) InputRequest {
		msg, _ := u.Attrs().GetValue("message")
		description, _ := msg.AsString()
		prototype, _ := ResolveAttributeValue(u.Attrs(), ctx.Workspace, "output")
		return InputRequest{Description: description, Prototype: prototype}
	}
	u.onReply = func(ctx *Context, reply InputReply) Status {
		if !reply.Accepted {
			return StatusFailure
		}
		if !AssignAttributeTarget(u.Attrs(), ctx.Workspace, "output", reply.Value) {
			ctx.Observer.Log(SeverityWarning, "UserInput: failed to write back output")
			return StatusFailure
		}
		return StatusSuccess
	}
	return u
}

package observer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lyzr/sequencer/common/logger"
	"github.com/lyzr/sequencer/internal/instruction"
	"github.com/lyzr/sequencer/internal/value"
)

func TestLoggingObserverRequestUserInputReturnsNilFuture(t *testing.T) {
	o := NewLogging(logger.New("debug", "json"))
	f := o.RequestUserInput(instruction.InputRequest{Description: "confirm?"})
	assert.Nil(t, f)
}

func TestLoggingObserverPutValueReturnsFalse(t *testing.T) {
	o := NewLogging(logger.New("debug", "json"))
	assert.False(t, o.PutValue(value.NewInt32(1), "no front end attached"))
}

func TestLoggingObserverMethodsDoNotPanic(t *testing.T) {
	o := NewLogging(logger.New("debug", "json"))
	assert.NotPanics(t, func() {
		o.VariableUpdated("x", value.NewInt32(1), true)
		o.Message("hello")
		o.Log(instruction.SeverityWarning, "careful")
		o.Log(instruction.SeverityTrace, "fine detail")
		o.UpdateInstructionStatus(instruction.NewWait())
	})
}

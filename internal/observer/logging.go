// Package observer provides concrete instruction.Observer and
// job-state monitor implementations (spec.md §6): a logging observer
// for the engine's own callbacks, and a Monitor that bridges a job
// controller's state/tick/breakpoint events to an external watcher.
package observer

import (
	"context"
	"log/slog"

	"github.com/lyzr/sequencer/common/logger"
	"github.com/lyzr/sequencer/internal/instruction"
	"github.com/lyzr/sequencer/internal/value"
)

// Logging is an instruction.Observer that routes every callback
// through a *logger.Logger, refusing engine-to-user I/O the way
// spec.md §6's default implementation does (no attached front end to
// ask a human anything) while still surfacing everything to the log.
type Logging struct {
	log *logger.Logger
}

// NewLogging builds a Logging observer writing through log.
func NewLogging(log *logger.Logger) *Logging { return &Logging{log: log} }

func (o *Logging) UpdateInstructionStatus(i instruction.Instruction) {
	o.log.Debug("instruction status", "kind", i.Kind(), "id", i.ID(), "status", i.Status().String())
}

func (o *Logging) VariableUpdated(name string, v value.Value, connected bool) {
	o.log.Debug("variable updated", "name", name, "connected", connected)
}

func (o *Logging) PutValue(v value.Value, description string) bool {
	o.log.Info("put_value", "description", description)
	return false
}

func (o *Logging) RequestUserInput(req instruction.InputRequest) instruction.Future {
	o.log.Warn("input requested with no input adapter attached", "description", req.Description)
	return nil
}

func (o *Logging) Message(text string) {
	o.log.Info(text)
}

func (o *Logging) Log(severity instruction.Severity, text string) {
	o.log.Log(context.Background(), severityToSlog(severity), text)
}

func severityToSlog(s instruction.Severity) slog.Level {
	switch s {
	case instruction.SeverityEmerg, instruction.SeverityAlert, instruction.SeverityCrit, instruction.SeverityErr:
		return slog.LevelError
	case instruction.SeverityWarning:
		return slog.LevelWarn
	case instruction.SeverityNotice, instruction.SeverityInfo:
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}

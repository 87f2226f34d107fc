package instruction

import "github.com/lyzr/sequencer/internal/value"

// Severity mirrors syslog's severity levels (spec.md §6's log(severity,
// text)).
type Severity int

const (
	SeverityEmerg Severity = iota
	SeverityAlert
	SeverityCrit
	SeverityErr
	SeverityWarning
	SeverityNotice
	SeverityInfo
	SeverityDebug
	SeverityTrace
)

func (s Severity) String() string {
	switch s {
	case SeverityEmerg:
		return "emerg"
	case SeverityAlert:
		return "alert"
	case SeverityCrit:
		return "crit"
	case SeverityErr:
		return "err"
	case SeverityWarning:
		return "warning"
	case SeverityNotice:
		return "notice"
	case SeverityInfo:
		return "info"
	case SeverityDebug:
		return "debug"
	case SeverityTrace:
		return "trace"
	default:
		return "unknown"
	}
}

// InputRequest is the payload for an engine-to-user input request.
// Exactly one of Prototype (UserValue) or Options (UserChoice) is set,
// per spec.md §4.11.
type InputRequest struct {
	Description string
	Prototype   value.Value // UserValue: the expected shape/type
	Options     []string    // UserChoice: ordered option labels
	Metadata    value.Value // UserChoice: opaque caller metadata
}

// InputReply is the reply to an InputRequest: Accepted plus either the
// supplied Value (UserValue) or the chosen Index (UserChoice).
type InputReply struct {
	Accepted bool
	Value    value.Value
	Index    int
}

// Future is the cancellable handle for an outstanding input request
// (backed by internal/inputadapter.Future; declared here to keep the
// instruction package decoupled from that package's concrete type).
type Future interface {
	IsValid() bool
	IsReady() bool
	Get() (InputReply, bool)
	Cancel()
}

// Observer is the capability set the engine calls into (spec.md §6).
type Observer interface {
	UpdateInstructionStatus(i Instruction)
	VariableUpdated(name string, v value.Value, connected bool)
	PutValue(v value.Value, description string) bool
	RequestUserInput(req InputRequest) Future
	Message(text string)
	Log(severity Severity, text string)
}

// DefaultObserver returns failure for input/value operations and
// ignores everything else, per spec.md §6's "default implementation".
type DefaultObserver struct{}

func (DefaultObserver) UpdateInstructionStatus(Instruction)             {}
func (DefaultObserver) VariableUpdated(string, value.Value, bool)       {}
func (DefaultObserver) PutValue(value.Value, string) bool               { return false }
func (DefaultObserver) RequestUserInput(InputRequest) Future            { return nil }
func (DefaultObserver) Message(string)                                  {}
func (DefaultObserver) Log(Severity, string)                            {}

// Package errs defines the engine's error taxonomy (spec.md §7): a
// fixed set of kinds carried by every error the core raises, so callers
// can branch on errors.As without string-matching messages.
package errs

import "fmt"

// Kind identifies which part of the error taxonomy an error belongs to.
type Kind int

const (
	// KindAttributeValidation: one or more constraints failed during
	// setup; carries the human-readable failed-constraint list.
	KindAttributeValidation Kind = iota
	// KindInstructionSetup wraps AttributeValidation or a
	// subclass-specific semantic error at instruction setup time.
	KindInstructionSetup
	// KindProcedureSetup: plugin load, type registration, workspace
	// setup, or root resolution failed.
	KindProcedureSetup
	// KindVariableSetup: a variable could not configure itself from
	// its attributes (e.g. an unparsable initial value).
	KindVariableSetup
	// KindParse is non-core: surfaced from collaborators (procedure
	// document parsing) for completeness.
	KindParse
	// KindInvalidOperation: programmatic misuse (breakpoint on unknown
	// instruction, duplicate attribute definition, reading a future
	// twice).
	KindInvalidOperation
	// KindRuntime: leaf-action runtime failure. By convention leaf
	// actions do not raise these; they log a warning and return
	// FAILURE instead. Reserved for the rare case a leaf's failure
	// must propagate past the tick loop (e.g. procedure-level setup
	// plumbing).
	KindRuntime
)

func (k Kind) String() string {
	switch k {
	case KindAttributeValidation:
		return "AttributeValidation"
	case KindInstructionSetup:
		return "InstructionSetup"
	case KindProcedureSetup:
		return "ProcedureSetup"
	case KindVariableSetup:
		return "VariableSetup"
	case KindParse:
		return "Parse"
	case KindInvalidOperation:
		return "InvalidOperation"
	case KindRuntime:
		return "Runtime"
	default:
		return "Unknown"
	}
}

// Error is the engine's single error type, carrying a Kind plus an
// optional wrapped cause and a list of failed-constraint
// representations (populated for KindAttributeValidation; a
// KindInstructionSetup error carries them through its Cause).
type Error struct {
	Kind              Kind
	Message           string
	FailedConstraints []string
	Cause             error
}

func (e *Error) Error() string {
	if len(e.FailedConstraints) > 0 {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.FailedConstraints)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// New builds a bare error of kind with message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap builds an error of kind with message, wrapping cause.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// AttributeValidation builds a KindAttributeValidation error carrying
// the failed constraints' human-readable representations.
func AttributeValidation(message string, failed []string) *Error {
	return &Error{Kind: KindAttributeValidation, Message: message, FailedConstraints: failed}
}

// InstructionSetup wraps cause (typically an *Error of kind
// AttributeValidation, or a subclass-specific semantic error) as a
// KindInstructionSetup error attributed to instructionKind.
func InstructionSetup(instructionKind string, cause error) *Error {
	return &Error{
		Kind:    KindInstructionSetup,
		Message: fmt.Sprintf("instruction %q failed setup", instructionKind),
		Cause:   cause,
	}
}

// Is reports whether err, or an *Error reached through the Cause chain
// of nested *Error values, is of the given kind. Other wrappers (such
// as fmt.Errorf's %w) are not unwrapped.
func Is(err error, kind Kind) bool {
	var e *Error
	for err != nil {
		if ee, ok := err.(*Error); ok {
			e = ee
			if e.Kind == kind {
				return true
			}
			err = e.Cause
			continue
		}
		break
	}
	return false
}

// Package workspace implements the typed variable scope (spec.md §4.3)
// shared by every instruction in a procedure: named variables with
// setup/teardown lifecycle, path-addressed get/set, change
// notification, and wait-for-availability.
package workspace

import "github.com/lyzr/sequencer/internal/value"

// SharedSetup is an optional (identifier, setup, teardown) triple a
// Variable may publish from Setup so that several variables sharing a
// resource (e.g. one Redis connection) run that resource's setup and
// teardown exactly once per workspace, keyed by Identifier.
type SharedSetup struct {
	Identifier string
	Setup      func() error
	Teardown   func() error
}

// Variable is one named, typed slot in a Workspace. Implementations:
// LocalVariable (in-process value) and RedisVariable (externally
// backed, §3 of SPEC_FULL.md).
type Variable interface {
	// TypeTag identifies the variable's kind, e.g. "Local", "Redis".
	TypeTag() string

	// Setup prepares the variable for use, returning an optional shared
	// setup descriptor. Called once per workspace Setup call.
	Setup() (*SharedSetup, error)

	// Teardown releases any per-variable resources acquired in Setup.
	Teardown() error

	// IsAvailable reports whether the variable currently holds a
	// defined value (and, for externally-backed variables, whether the
	// backing connection is live).
	IsAvailable() bool

	// Get resolves a dotted/indexed field path against the variable's
	// current value ("" selects the whole value).
	Get(path string) (value.Value, bool)

	// Set assigns v at the resolved field path via convert-assign
	// semantics ("" selects the whole value).
	Set(path string, v value.Value) error
}

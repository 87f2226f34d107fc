package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeProcedureFile(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "procedure.json")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

const succeedingProcedure = `{
	"instructions": [
		{"kind": "Wait", "attrs": {}}
	]
}`

const unknownKindProcedure = `{
	"instructions": [
		{"kind": "NoSuchInstruction", "attrs": {}}
	]
}`

// With no AUDIT_DB_ENABLED and no MONITOR_ENABLED set, run() never
// dials Postgres or opens a listening socket, so these exercise the
// full bootstrap → parse → build → setup → controller path against
// nothing but the filesystem.

func TestRunRequiresFileFlag(t *testing.T) {
	assert.Equal(t, 1, run([]string{}))
}

func TestRunHelpFlagExitsZero(t *testing.T) {
	assert.Equal(t, 0, run([]string{"-h"}))
}

func TestRunMissingFileExitsOne(t *testing.T) {
	assert.Equal(t, 1, run([]string{"-f", "/no/such/file.json"}))
}

func TestRunUnknownInstructionKindExitsOne(t *testing.T) {
	path := writeProcedureFile(t, unknownKindProcedure)
	assert.Equal(t, 1, run([]string{"-f", path}))
}

func TestRunSucceedingProcedureExitsZeroWithoutMonitor(t *testing.T) {
	path := writeProcedureFile(t, succeedingProcedure)
	assert.Equal(t, 0, run([]string{"--file", path, "--verbose", "INFO"}))
}

func TestSeverityToLogLevelCollapsesNineLevelsToFour(t *testing.T) {
	cases := map[string]string{
		"EMERG":   "error",
		"WARNING": "warn",
		"INFO":    "info",
		"TRACE":   "debug",
		"unknown": "warn",
	}
	for in, want := range cases {
		assert.Equal(t, want, severityToLogLevel(in), "severity %s", in)
	}
}

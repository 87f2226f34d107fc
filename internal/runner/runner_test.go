package runner

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lyzr/sequencer/internal/instruction"
	"github.com/lyzr/sequencer/internal/procedure"
	"github.com/lyzr/sequencer/internal/value"
)

// fakeLoader mirrors internal/procedure's test fixture loader: an
// in-memory file map with a minimal JSON decode path, enough to build
// procedures for runner tests without a filesystem.
type fakeLoader struct {
	files map[string][]byte
}

func (l *fakeLoader) Load(path string) ([]byte, error) {
	raw, ok := l.files[path]
	if !ok {
		return nil, fmt.Errorf("fakeLoader: no such file: %s", path)
	}
	return raw, nil
}

func (l *fakeLoader) Decode(raw []byte) (procedure.Doc, error) {
	var jd jsonDoc
	if err := json.Unmarshal(raw, &jd); err != nil {
		return procedure.Doc{}, err
	}
	return jd.toDoc(), nil
}

type jsonDoc struct {
	Attrs        map[string]string `json:"attrs"`
	Instructions []jsonInstruction `json:"instructions"`
}

type jsonInstruction struct {
	Kind     string            `json:"kind"`
	Attrs    map[string]string `json:"attrs"`
	Children []jsonInstruction `json:"children"`
}

func (ji jsonInstruction) toDoc() procedure.InstructionDoc {
	children := make([]procedure.InstructionDoc, 0, len(ji.Children))
	for _, c := range ji.Children {
		children = append(children, c.toDoc())
	}
	return procedure.InstructionDoc{Kind: ji.Kind, Attrs: ji.Attrs, Children: children}
}

func (jd jsonDoc) toDoc() procedure.Doc {
	instrs := make([]procedure.InstructionDoc, 0, len(jd.Instructions))
	for _, i := range jd.Instructions {
		instrs = append(instrs, i.toDoc())
	}
	return procedure.Doc{Attrs: jd.Attrs, Instructions: instrs}
}

// twoStepSequence builds a Sequence of two zero-timeout Waits: each
// tick finishes one Wait, so the whole tree needs exactly two ticks to
// reach SUCCESS, giving breakpoint tests a predictable two-instruction
// next_instructions() sequence.
func twoStepSequence() procedure.Doc {
	return procedure.Doc{
		Instructions: []procedure.InstructionDoc{
			{
				Kind: "Sequence",
				Children: []procedure.InstructionDoc{
					{Kind: "Wait", Attrs: map[string]string{"timeout": "0"}},
					{Kind: "Wait", Attrs: map[string]string{"timeout": "0"}},
				},
			},
		},
	}
}

func buildProc(t *testing.T, doc procedure.Doc) *procedure.Procedure {
	t.Helper()
	loader := &fakeLoader{files: map[string][]byte{}}
	store := procedure.NewStore(loader)
	proc, err := procedure.Build(doc, store)
	require.NoError(t, err)
	return proc
}

func TestExecuteProcedureRunsToCompletionWithNoBreakpoints(t *testing.T) {
	proc := buildProc(t, twoStepSequence())
	r := New()
	require.NoError(t, r.SetProcedure(proc, nil))

	r.ExecuteProcedure()

	assert.True(t, r.IsFinished())
	assert.Equal(t, instruction.StatusSuccess, proc.Root().Status())
	assert.Empty(t, r.LastHit())
}

func TestExecuteProcedureStopsAtBreakpointThenResumes(t *testing.T) {
	proc := buildProc(t, twoStepSequence())
	r := New()
	require.NoError(t, r.SetProcedure(proc, nil))

	first := proc.NextInstructions()
	require.NotEmpty(t, first)
	require.NoError(t, r.Breakpoints().Set(first[0]))

	r.ExecuteProcedure()
	assert.False(t, r.IsFinished())
	assert.NotEmpty(t, r.LastHit())
	assert.Equal(t, instruction.StatusNotStarted, proc.Root().Status())

	r.ExecuteProcedure()
	assert.True(t, r.IsFinished())
	assert.Equal(t, instruction.StatusSuccess, proc.Root().Status())
}

func TestBreakpointSetRejectsUnreachableInstruction(t *testing.T) {
	procA := buildProc(t, twoStepSequence())
	procB := buildProc(t, twoStepSequence())
	r := New()
	require.NoError(t, r.SetProcedure(procA, nil))

	foreign := procB.NextInstructions()[0]
	assert.Error(t, r.Breakpoints().Set(foreign))
}

func TestPauseStopsLoopWithoutHaltingProcedure(t *testing.T) {
	proc := buildProc(t, twoStepSequence())
	r := New()
	require.NoError(t, r.SetProcedure(proc, nil))
	r.Pause()

	r.ExecuteProcedure()

	assert.False(t, r.IsFinished())
	assert.False(t, proc.Root().IsHaltRequested())
	assert.Equal(t, instruction.StatusNotStarted, proc.Root().Status())
}

func TestHaltSetsLoopFlagAndRequestsInstructionHalt(t *testing.T) {
	proc := buildProc(t, twoStepSequence())
	r := New()
	require.NoError(t, r.SetProcedure(proc, nil))

	r.Halt()

	assert.True(t, r.IsFinished())
	assert.True(t, proc.Root().IsHaltRequested())
}

func TestResetClearsLoopHaltAndLastHit(t *testing.T) {
	proc := buildProc(t, twoStepSequence())
	r := New()
	require.NoError(t, r.SetProcedure(proc, nil))
	first := proc.NextInstructions()
	require.NoError(t, r.Breakpoints().Set(first[0]))
	r.ExecuteProcedure()
	require.NotEmpty(t, r.LastHit())

	require.NoError(t, r.Reset())

	assert.Empty(t, r.LastHit())
	assert.Equal(t, instruction.StatusNotStarted, proc.Root().Status())
}

func TestSetProcedureForwardsVariableUpdatesToObserver(t *testing.T) {
	doc := procedure.Doc{
		Workspace: []procedure.VariableDoc{
			{Name: "count", Type: "Local", Kind: "int32", Attrs: map[string]string{"value": "1"}},
		},
		Instructions: []procedure.InstructionDoc{
			{Kind: "Wait", Attrs: map[string]string{"timeout": "0"}},
		},
	}
	proc := buildProc(t, doc)

	var seen []string
	obs := &recordingObserver{onVar: func(name string, v value.Value, connected bool) {
		seen = append(seen, name)
	}}

	r := New()
	require.NoError(t, r.SetProcedure(proc, obs))
	require.NoError(t, proc.Workspace().Set("count", value.NewInt32(2)))

	assert.Contains(t, seen, "count")
}

type recordingObserver struct {
	instruction.DefaultObserver
	onVar func(name string, v value.Value, connected bool)
}

func (o *recordingObserver) VariableUpdated(name string, v value.Value, connected bool) {
	if o.onVar != nil {
		o.onVar(name, v, connected)
	}
}

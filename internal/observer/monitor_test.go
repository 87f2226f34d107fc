package observer

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lyzr/sequencer/internal/instruction"
	"github.com/lyzr/sequencer/internal/job"
	"github.com/lyzr/sequencer/internal/procedure"
	"github.com/lyzr/sequencer/internal/runner"
)

type fakeLoader struct{ files map[string][]byte }

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
	return procedure.Doc{Instructions: instrs}
}

func oneStepDoc() procedure.Doc {
	return procedure.Doc{Instructions: []procedure.InstructionDoc{
		{Kind: "Wait", Attrs: map[string]string{"timeout": "0"}},
	}}
}

func newAttachedController(t *testing.T) (*Monitor, *job.Controller) {
	t.Helper()
	loader := &fakeLoader{files: map[string][]byte{}}
	store := procedure.NewStore(loader)
	proc, err := procedure.Build(oneStepDoc(), store)
	require.NoError(t, err)

	r := runner.New()
	require.NoError(t, r.SetProcedure(proc, nil))

	c := job.NewController(r)
	m := NewMonitor(nil)
	m.Attach(c, r.Breakpoints())
	c.Start()
	t.Cleanup(func() {
		c.RequestTerminate()
		c.Wait()
	})
	return m, c
}

func TestMonitorWaitForFinishedReturnsAfterRunCompletes(t *testing.T) {
	m, c := newAttachedController(t)
	c.RequestStart()

	state, err := m.WaitForFinished(context.Background())
	require.NoError(t, err)
	assert.Equal(t, job.StateSucceeded, state)
}

func TestMonitorWaitForFinishedRespectsContextCancellation(t *testing.T) {
	m, _ := newAttachedController(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()

	_, err := m.WaitForFinished(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestMonitorTracksBreakpointChanges(t *testing.T) {
	loader := &fakeLoader{files: map[string][]byte{}}
	store := procedure.NewStore(loader)
	proc, err := procedure.Build(oneStepDoc(), store)
	require.NoError(t, err)

	r := runner.New()
	require.NoError(t, r.SetProcedure(proc, nil))

	var sawSet, sawCleared bool
	rec := &recordingDelegate{
		onBreakpoint: func(set bool) {
			if set {
				sawSet = true
			} else {
				sawCleared = true
			}
		},
	}
	m := NewMonitor(rec)
	m.Attach(job.NewController(r), r.Breakpoints())

	target := r.Procedure().NextInstructions()[0]
	require.NoError(t, r.Breakpoints().Set(target))
	r.Breakpoints().Remove(target)

	assert.True(t, sawSet)
	assert.True(t, sawCleared)
}

type recordingDelegate struct {
	onBreakpoint func(set bool)
}

func (r *recordingDelegate) OnStateChange(job.State) {}
func (r *recordingDelegate) OnBreakpointChange(i instruction.Instruction, set bool) {
	if r.onBreakpoint != nil {
		r.onBreakpoint(set)
	}
}
func (r *recordingDelegate) OnProcedureTick(*procedure.Procedure) {}

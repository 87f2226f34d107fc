package procedure

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lyzr/sequencer/internal/instruction"
)

// fakeLoader implements DocLoader over an in-memory file map, keyed by
// path, for tests that exercise Include without touching a filesystem.
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

func (l *fakeLoader) Decode(raw []byte) (Doc, error) {
	var jd jsonDoc
	if err := json.Unmarshal(raw, &jd); err != nil {
		return Doc{}, err
	}
	return jd.toDoc(), nil
}

// jsonDoc is a minimal JSON shape for test fixtures only; the real
// internal/parser collaborator owns the production decode path.
type jsonDoc struct {
	Attrs        map[string]string `json:"attrs"`
	Instructions []jsonInstruction `json:"instructions"`
}

type jsonInstruction struct {
	Kind     string            `json:"kind"`
	Attrs    map[string]string `json:"attrs"`
	Children []jsonInstruction `json:"children"`
}

func (ji jsonInstruction) toDoc() InstructionDoc {
	children := make([]InstructionDoc, 0, len(ji.Children))
	for _, c := range ji.Children {
		children = append(children, c.toDoc())
	}
	return InstructionDoc{Kind: ji.Kind, Attrs: ji.Attrs, Children: children}
}

func (jd jsonDoc) toDoc() Doc {
	instrs := make([]InstructionDoc, 0, len(jd.Instructions))
	for _, i := range jd.Instructions {
		instrs = append(instrs, i.toDoc())
	}
	return Doc{Attrs: jd.Attrs, Instructions: instrs}
}

func simpleSequenceDoc() Doc {
	return Doc{
		Instructions: []InstructionDoc{
			{
				Kind: "Sequence",
				Children: []InstructionDoc{
					{Kind: "Wait", Attrs: map[string]string{"timeout": "0"}},
					{Kind: "Wait", Attrs: map[string]string{"timeout": "0"}},
				},
			},
		},
	}
}

func TestBuildAndSetupRunsSequenceToSuccess(t *testing.T) {
	loader := &fakeLoader{files: map[string][]byte{}}
	store := NewStore(loader)
	proc, err := Build(simpleSequenceDoc(), store)
	require.NoError(t, err)
	require.NoError(t, proc.Setup())

	status := proc.ExecuteSingle(nil)
	for status == instruction.StatusNotFinished || status == instruction.StatusRunning {
		status = proc.ExecuteSingle(nil)
	}
	assert.Equal(t, instruction.StatusSuccess, status)
}

func TestBuildRejectsUnknownInstructionKind(t *testing.T) {
	loader := &fakeLoader{files: map[string][]byte{}}
	store := NewStore(loader)
	doc := Doc{Instructions: []InstructionDoc{{Kind: "NoSuchThing"}}}
	_, err := Build(doc, store)
	assert.Error(t, err)
}

func TestBuildRejectsEmptyDocument(t *testing.T) {
	loader := &fakeLoader{files: map[string][]byte{}}
	store := NewStore(loader)
	_, err := Build(Doc{}, store)
	assert.Error(t, err)
}

func TestIncludeResolvesThroughStore(t *testing.T) {
	subRaw, err := json.Marshal(jsonDoc{
		Instructions: []jsonInstruction{{Kind: "Wait", Attrs: map[string]string{"timeout": "0"}}},
	})
	require.NoError(t, err)

	loader := &fakeLoader{files: map[string][]byte{"sub.json": subRaw}}
	store := NewStore(loader)

	doc := Doc{
		Instructions: []InstructionDoc{
			{Kind: "Include", Attrs: map[string]string{"path": "sub.json"}},
		},
	}
	proc, err := Build(doc, store)
	require.NoError(t, err)
	require.NoError(t, proc.Setup())

	status := proc.ExecuteSingle(nil)
	for status == instruction.StatusNotFinished || status == instruction.StatusRunning {
		status = proc.ExecuteSingle(nil)
	}
	assert.Equal(t, instruction.StatusSuccess, status)
}

func TestIncludeFailsSetupWhenPathMissing(t *testing.T) {
	loader := &fakeLoader{files: map[string][]byte{}}
	store := NewStore(loader)

	doc := Doc{
		Instructions: []InstructionDoc{
			{Kind: "Include", Attrs: map[string]string{"path": "missing.json"}},
		},
	}
	proc, err := Build(doc, store)
	require.NoError(t, err)
	assert.Error(t, proc.Setup())
}

func TestIncludeWithPlaceholderPatchOverridesNestedAttribute(t *testing.T) {
	subRaw, err := json.Marshal(jsonDoc{
		Instructions: []jsonInstruction{{Kind: "Wait", Attrs: map[string]string{"timeout": "99"}}},
	})
	require.NoError(t, err)

	loader := &fakeLoader{files: map[string][]byte{"sub.json": subRaw}}
	store := NewStore(loader)

	patch := `[{"op":"replace","path":"/instructions/0/attrs/timeout","value":"0"}]`
	doc := Doc{
		Instructions: []InstructionDoc{
			{Kind: "Include", Attrs: map[string]string{"path": "sub.json", "patch": patch}},
		},
	}
	proc, err := Build(doc, store)
	require.NoError(t, err)
	require.NoError(t, proc.Setup())

	status := proc.ExecuteSingle(nil)
	for status == instruction.StatusNotFinished || status == instruction.StatusRunning {
		status = proc.ExecuteSingle(nil)
	}
	assert.Equal(t, instruction.StatusSuccess, status)
}

func TestResetReinitializesWorkspaceAndRoot(t *testing.T) {
	loader := &fakeLoader{files: map[string][]byte{}}
	store := NewStore(loader)
	proc, err := Build(simpleSequenceDoc(), store)
	require.NoError(t, err)
	require.NoError(t, proc.Setup())

	status := proc.ExecuteSingle(nil)
	for status == instruction.StatusNotFinished || status == instruction.StatusRunning {
		status = proc.ExecuteSingle(nil)
	}
	require.Equal(t, instruction.StatusSuccess, status)

	require.NoError(t, proc.Reset(nil))
	assert.Equal(t, instruction.StatusNotStarted, proc.Root().Status())
}

func TestTickTimeoutDefaultsWhenUnset(t *testing.T) {
	loader := &fakeLoader{files: map[string][]byte{}}
	store := NewStore(loader)
	proc, err := Build(simpleSequenceDoc(), store)
	require.NoError(t, err)
	assert.Equal(t, defaultTickTimeout, proc.TickTimeout())
}

func TestTickTimeoutHonorsAttribute(t *testing.T) {
	loader := &fakeLoader{files: map[string][]byte{}}
	store := NewStore(loader)
	doc := simpleSequenceDoc()
	doc.Attrs = map[string]string{"tickTimeoutMs": "250"}
	proc, err := Build(doc, store)
	require.NoError(t, err)
	assert.Equal(t, 250_000_000, int(proc.TickTimeout()))
}

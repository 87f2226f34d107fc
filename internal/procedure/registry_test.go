package procedure

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lyzr/sequencer/internal/instruction"
)

func TestCatalogueBuildsRepeatWithMaxCountFromAttrs(t *testing.T) {
	store := NewStore(&fakeLoader{files: map[string][]byte{}})
	cat := DefaultCatalogue(store)
	store.SetCatalogue(cat)

	child := instruction.NewWait()
	child.Attrs().SetString("timeout", "0")
	inst, err := cat.Build("Repeat", map[string]string{"maxCount": "3"}, []instruction.Instruction{child})
	require.NoError(t, err)
	assert.Equal(t, "Repeat", inst.Kind())
}

func TestCatalogueRejectsDecoratorWithWrongChildCount(t *testing.T) {
	store := NewStore(&fakeLoader{files: map[string][]byte{}})
	cat := DefaultCatalogue(store)
	store.SetCatalogue(cat)

	_, err := cat.Build("Inverter", nil, nil)
	assert.Error(t, err)

	a := instruction.NewWait()
	b := instruction.NewWait()
	_, err = cat.Build("Inverter", nil, []instruction.Instruction{a, b})
	assert.Error(t, err)
}

func TestCatalogueBuildUnknownKindFails(t *testing.T) {
	store := NewStore(&fakeLoader{files: map[string][]byte{}})
	cat := DefaultCatalogue(store)
	store.SetCatalogue(cat)

	_, err := cat.Build("Nope", nil, nil)
	assert.Error(t, err)
}

func TestSplitCSVTrimsAndIgnoresEmpty(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, splitCSV(" a, b ,c"))
	assert.Nil(t, splitCSV(""))
	assert.Nil(t, splitCSV("   "))
}

func TestWithoutKeysRemovesOnlyNamed(t *testing.T) {
	in := map[string]string{"path": "x", "patch": "y", "keep": "z"}
	out := withoutKeys(in, "path", "patch")
	assert.Equal(t, map[string]string{"keep": "z"}, out)
}

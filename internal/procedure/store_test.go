package procedure

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreResolveRootReturnsFreshInstancePerCall(t *testing.T) {
	subRaw, err := json.Marshal(jsonDoc{
		Instructions: []jsonInstruction{{Kind: "Wait", Attrs: map[string]string{"timeout": "0"}}},
	})
	require.NoError(t, err)

	loader := &fakeLoader{files: map[string][]byte{"sub.json": subRaw}}
	store := NewStore(loader)
	cat := DefaultCatalogue(store)
	store.SetCatalogue(cat)

	key := store.registerInclude("sub.json", "")
	first, err := store.ResolveRoot(key)
	require.NoError(t, err)
	second, err := store.ResolveRoot(key)
	require.NoError(t, err)

	assert.NotSame(t, first, second, "each ResolveRoot call must build an independent instruction instance")
}

func TestIncludeKeyDiffersByPatch(t *testing.T) {
	k1 := includeKey("a.json", "")
	k2 := includeKey("a.json", `[{"op":"replace","path":"/x","value":1}]`)
	assert.NotEqual(t, k1, k2)
	assert.Equal(t, "a.json", k1)
}

func TestStoreDocIsCachedAcrossResolveCalls(t *testing.T) {
	calls := 0
	loader := &countingLoader{fakeLoader: fakeLoader{files: map[string][]byte{
		"sub.json": []byte(`{"instructions":[{"kind":"Wait","attrs":{"timeout":"0"}}]}`),
	}}, loadCount: &calls}
	store := NewStore(loader)
	cat := DefaultCatalogue(store)
	store.SetCatalogue(cat)

	key := store.registerInclude("sub.json", "")
	_, err := store.ResolveRoot(key)
	require.NoError(t, err)
	_, err = store.ResolveRoot(key)
	require.NoError(t, err)

	assert.Equal(t, 1, calls, "the underlying file should be loaded at most once per cache key")
}

type countingLoader struct {
	fakeLoader
	loadCount *int
}

func (l *countingLoader) Load(path string) ([]byte, error) {
	*l.loadCount++
	return l.fakeLoader.Load(path)
}

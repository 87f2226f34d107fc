package procedure

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lyzr/sequencer/internal/value"
)

func TestDecodeRegisterTypeFromInlineJSON(t *testing.T) {
	rt := RegisterTypeDoc{JSONType: `{"name":"Pair","fields":{"x":"int32","y":"string"}}`}
	shape, err := decodeRegisterType(rt, &fakeLoader{files: map[string][]byte{}})
	require.NoError(t, err)
	assert.Equal(t, value.KindStruct, shape.TypeOf())
	assert.Equal(t, "Pair", shape.StructName())
}

func TestDecodeRegisterTypeFromFile(t *testing.T) {
	loader := &fakeLoader{files: map[string][]byte{
		"pair.json": []byte(`{"name":"Pair","fields":{"x":"int32"}}`),
	}}
	rt := RegisterTypeDoc{JSONFile: "pair.json"}
	shape, err := decodeRegisterType(rt, loader)
	require.NoError(t, err)
	assert.Equal(t, "Pair", shape.StructName())
}

func TestDecodeRegisterTypeRejectsEmptyEntry(t *testing.T) {
	_, err := decodeRegisterType(RegisterTypeDoc{}, &fakeLoader{files: map[string][]byte{}})
	assert.Error(t, err)
}

func TestDecodeRegisterTypeRejectsUnknownFieldKind(t *testing.T) {
	rt := RegisterTypeDoc{JSONType: `{"name":"Bad","fields":{"x":"nope"}}`}
	_, err := decodeRegisterType(rt, &fakeLoader{files: map[string][]byte{}})
	assert.Error(t, err)
}

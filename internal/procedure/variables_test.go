package procedure

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildVariableLocalWithInitialValue(t *testing.T) {
	v, err := buildVariable(VariableDoc{
		Name: "count", Type: "Local", Kind: "int32", Attrs: map[string]string{"value": "7"},
	}, newRedisConnPool())
	require.NoError(t, err)
	require.NoError(t, func() error { _, err := v.Setup(); return err }())

	got, ok := v.Get("")
	require.True(t, ok)
	i, _ := got.AsInt64()
	assert.Equal(t, int64(7), i)
}

func TestBuildVariableLocalWithoutInitialValueIsEmpty(t *testing.T) {
	v, err := buildVariable(VariableDoc{Name: "x", Type: "Local", Kind: "string"}, newRedisConnPool())
	require.NoError(t, err)
	_, err = v.Setup()
	require.NoError(t, err)
	assert.False(t, v.IsAvailable())
}

func TestBuildVariableRejectsUnknownKind(t *testing.T) {
	_, err := buildVariable(VariableDoc{Name: "x", Type: "Local", Kind: "nope"}, newRedisConnPool())
	assert.Error(t, err)
}

func TestBuildVariableRedisRequiresAddr(t *testing.T) {
	_, err := buildVariable(VariableDoc{Name: "x", Type: "Redis", Kind: "int32"}, newRedisConnPool())
	assert.Error(t, err)
}

func TestBuildVariableRejectsUnknownType(t *testing.T) {
	_, err := buildVariable(VariableDoc{Name: "x", Type: "Weird", Kind: "int32"}, newRedisConnPool())
	assert.Error(t, err)
}

func TestBuildWorkspaceSharesRedisConnByAddr(t *testing.T) {
	pool := newRedisConnPool()
	v1, err := buildVariable(VariableDoc{Name: "a", Type: "Redis", Kind: "int32", Attrs: map[string]string{"addr": "localhost:6379"}}, pool)
	require.NoError(t, err)
	v2, err := buildVariable(VariableDoc{Name: "b", Type: "Redis", Kind: "int32", Attrs: map[string]string{"addr": "localhost:6379"}}, pool)
	require.NoError(t, err)

	s1, errS1 := v1.Setup()
	s2, errS2 := v2.Setup()
	_ = errS1
	_ = errS2
	if s1 != nil && s2 != nil {
		assert.Equal(t, s1.Identifier, s2.Identifier)
	}
}

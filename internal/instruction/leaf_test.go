package instruction

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lyzr/sequencer/internal/value"
	"github.com/lyzr/sequencer/internal/workspace"
)

func TestWaitSucceedsAfterDeadline(t *testing.T) {
	w := NewWait()
	w.Attrs().SetString("timeout", "0.01")
	ctx := newTestContext()
	require.NoError(t, w.Setup(ctx))

	assert.Equal(t, StatusNotFinished, w.Tick(ctx))
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, StatusSuccess, w.Tick(ctx))
}

func newEqualsContext(t *testing.T, left, right value.Value) (*comparisonLeaf, *Context) {
	t.Helper()
	ws := workspace.New()
	require.NoError(t, ws.Add("l", workspace.NewLocalVariable(left)))
	require.NoError(t, ws.Add("r", workspace.NewLocalVariable(right)))
	require.NoError(t, ws.Setup())

	eq := NewEquals()
	eq.Attrs().SetString("left", "l")
	eq.Attrs().SetString("right", "r")
	return eq, NewContext(ws, nil)
}

func TestEqualsSucceedsOnEqualValues(t *testing.T) {
	eq, ctx := newEqualsContext(t, value.NewInt32(7), value.NewInt32(7))
	require.NoError(t, eq.Setup(ctx))
	assert.Equal(t, StatusSuccess, eq.Tick(ctx))
}

func TestEqualsFailsOnDifferentValues(t *testing.T) {
	eq, ctx := newEqualsContext(t, value.NewInt32(7), value.NewInt32(8))
	require.NoError(t, eq.Setup(ctx))
	assert.Equal(t, StatusFailure, eq.Tick(ctx))
}

func TestGreaterThanOrEqualSucceedsWhenLeftExceedsRight(t *testing.T) {
	ws := workspace.New()
	require.NoError(t, ws.Add("l", workspace.NewLocalVariable(value.NewInt32(9))))
	require.NoError(t, ws.Add("r", workspace.NewLocalVariable(value.NewInt32(4))))
	require.NoError(t, ws.Setup())

	gte := NewGreaterThanOrEqual()
	gte.Attrs().SetString("left", "l")
	gte.Attrs().SetString("right", "r")
	ctx := NewContext(ws, nil)
	require.NoError(t, gte.Setup(ctx))
	assert.Equal(t, StatusSuccess, gte.Tick(ctx))
}

func TestAddElementAppendsAndWritesBack(t *testing.T) {
	ws := workspace.New()
	arr := value.NewArray(value.KindInt32, 0)
	require.NoError(t, ws.Add("in", workspace.NewLocalVariable(value.NewInt32(3))))
	require.NoError(t, ws.Add("out", workspace.NewLocalVariable(arr)))
	require.NoError(t, ws.Setup())

	add := NewAddElement()
	add.Attrs().SetString("input", "in")
	add.Attrs().SetString("output", "out")
	ctx := NewContext(ws, nil)
	require.NoError(t, add.Setup(ctx))

	assert.Equal(t, StatusSuccess, add.Tick(ctx))
	got, ok := ws.Get("out")
	require.True(t, ok)
	assert.Equal(t, 1, len(got.Elements()))
}

func TestAddElementFailsWhenOutputNotArray(t *testing.T) {
	ws := workspace.New()
	require.NoError(t, ws.Add("in", workspace.NewLocalVariable(value.NewInt32(3))))
	require.NoError(t, ws.Add("out", workspace.NewLocalVariable(value.NewInt32(0))))
	require.NoError(t, ws.Setup())

	add := NewAddElement()
	add.Attrs().SetString("input", "in")
	add.Attrs().SetString("output", "out")
	ctx := NewContext(ws, nil)
	require.NoError(t, add.Setup(ctx))

	assert.Equal(t, StatusFailure, add.Tick(ctx))
}

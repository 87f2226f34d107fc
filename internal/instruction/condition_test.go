package instruction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lyzr/sequencer/internal/value"
	"github.com/lyzr/sequencer/internal/workspace"
)

func newConditionContext(t *testing.T, expr string, n int32) (*Condition, *Context) {
	t.Helper()
	ws := workspace.New()
	require.NoError(t, ws.Add("n", workspace.NewLocalVariable(value.NewInt32(n))))
	require.NoError(t, ws.Setup())

	c := NewCondition("n")
	c.Attrs().SetString("expr", expr)
	c.Attrs().SetString("n", "n")
	return c, NewContext(ws, nil)
}

func TestConditionSucceedsWhenExpressionTrue(t *testing.T) {
	c, ctx := newConditionContext(t, "n > 5", 10)
	require.NoError(t, c.Setup(ctx))
	assert.Equal(t, StatusSuccess, c.Tick(ctx))
}

func TestConditionFailsWhenExpressionFalse(t *testing.T) {
	c, ctx := newConditionContext(t, "n > 5", 2)
	require.NoError(t, c.Setup(ctx))
	assert.Equal(t, StatusFailure, c.Tick(ctx))
}

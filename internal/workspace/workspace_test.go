package workspace

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lyzr/sequencer/internal/value"
)

func TestAddRejectsDuplicateName(t *testing.T) {
	ws := New()
	require.NoError(t, ws.Add("a", NewLocalVariable(value.NewInt32(1))))
	err := ws.Add("a", NewLocalVariable(value.NewInt32(2)))
	assert.Error(t, err)
}

func TestGetSetDelegatesToVariable(t *testing.T) {
	ws := New()
	inner := value.NewStruct("Pair", []value.Field{{Name: "x", Value: value.NewInt32(1)}})
	require.NoError(t, ws.Add("p", NewLocalVariable(inner)))
	require.NoError(t, ws.Setup())

	got, ok := ws.Get("p.x")
	require.True(t, ok)
	i, _ := got.AsInt64()
	assert.Equal(t, int64(1), i)

	require.NoError(t, ws.Set("p.x", value.NewInt32(42)))
	got, ok = ws.Get("p.x")
	require.True(t, ok)
	i, _ = got.AsInt64()
	assert.Equal(t, int64(42), i)
}

func TestGetMissingVariableFails(t *testing.T) {
	ws := New()
	_, ok := ws.Get("missing")
	assert.False(t, ok)
}

func TestSetupTeardownRetainsLocalInitialValue(t *testing.T) {
	ws := New()
	require.NoError(t, ws.Add("x", NewLocalVariable(value.NewInt32(7))))
	require.NoError(t, ws.Setup())
	require.NoError(t, ws.Set("x", value.NewInt32(99)))
	require.NoError(t, ws.Teardown())
	require.NoError(t, ws.Setup())

	got, ok := ws.Get("x")
	require.True(t, ok)
	i, _ := got.AsInt64()
	assert.Equal(t, int64(7), i, "local variable must retain its configured initial value across teardown+setup")
}

func TestGenericListenerFiresBeforeNamedListener(t *testing.T) {
	ws := New()
	require.NoError(t, ws.Add("x", NewLocalVariable(value.NewInt32(0))))
	require.NoError(t, ws.Setup())

	var order []string
	guard1 := ws.RegisterGenericListener(func(name string, v value.Value, connected bool) {
		order = append(order, "generic")
	})
	defer guard1.Release()
	guard2 := ws.RegisterListener("x", func(name string, v value.Value, connected bool) {
		order = append(order, "named")
	}, "test")
	defer guard2.Release()

	require.NoError(t, ws.Set("x", value.NewInt32(1)))
	assert.Equal(t, []string{"generic", "named"}, order)
}

func TestGuardReleaseStopsNotification(t *testing.T) {
	ws := New()
	require.NoError(t, ws.Add("x", NewLocalVariable(value.NewInt32(0))))
	require.NoError(t, ws.Setup())

	calls := 0
	guard := ws.RegisterGenericListener(func(name string, v value.Value, connected bool) {
		calls++
	})
	require.NoError(t, ws.Set("x", value.NewInt32(1)))
	guard.Release()
	require.NoError(t, ws.Set("x", value.NewInt32(2)))
	assert.Equal(t, 1, calls)
}

func TestWaitForSucceedsOnAsyncSet(t *testing.T) {
	ws := New()
	require.NoError(t, ws.Add("x", NewLocalVariable(value.Empty())))
	require.NoError(t, ws.Setup())

	done := make(chan bool, 1)
	go func() {
		done <- ws.WaitFor("x", 2*time.Second, true)
	}()

	time.Sleep(20 * time.Millisecond)
	require.NoError(t, ws.Set("x", value.NewInt32(5)))

	select {
	case ok := <-done:
		assert.True(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("WaitFor did not return after variable became available")
	}
}

func TestWaitForTimesOut(t *testing.T) {
	ws := New()
	require.NoError(t, ws.Add("x", NewLocalVariable(value.Empty())))
	require.NoError(t, ws.Setup())

	ok := ws.WaitFor("x", 30*time.Millisecond, true)
	assert.False(t, ok)
}

func TestWaitForUnknownVariableFails(t *testing.T) {
	ws := New()
	ok := ws.WaitFor("nope", 10*time.Millisecond, true)
	assert.False(t, ok)
}

func TestRegisterTypeAcceptsStructurallyEqualRedefinition(t *testing.T) {
	ws := New()
	shape := value.NewStruct("Pair", []value.Field{{Name: "x", Value: value.NewInt32(0)}})
	require.NoError(t, ws.RegisterType(shape))
	require.NoError(t, ws.RegisterType(shape))
}

func TestRegisterTypeRejectsConflictingRedefinition(t *testing.T) {
	ws := New()
	shape1 := value.NewStruct("Pair", []value.Field{{Name: "x", Value: value.NewInt32(0)}})
	shape2 := value.NewStruct("Pair", []value.Field{{Name: "x", Value: value.NewString("")}})
	require.NoError(t, ws.RegisterType(shape1))
	assert.Error(t, ws.RegisterType(shape2))
}

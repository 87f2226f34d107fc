package inputadapter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lyzr/sequencer/internal/instruction"
	"github.com/lyzr/sequencer/internal/value"
)

func TestSubmitAndGetRoundTrip(t *testing.T) {
	a := New(func(id uint64, req instruction.InputRequest) instruction.InputReply {
		return instruction.InputReply{Accepted: true, Value: value.NewInt32(42)}
	}, nil)
	defer a.Close()

	f := a.Submit(instruction.InputRequest{Description: "pick a number"})
	require.True(t, f.WaitFor(time.Second))
	assert.True(t, f.IsReady())

	reply, ok := f.Get()
	require.True(t, ok)
	assert.True(t, reply.Accepted)
	i, _ := reply.Value.AsInt64()
	assert.Equal(t, int64(42), i)

	assert.False(t, f.IsValid())
	_, ok = f.Get()
	assert.False(t, ok)
}

func TestFutureIsValidBeforeReplyArrives(t *testing.T) {
	block := make(chan struct{})
	a := New(func(id uint64, req instruction.InputRequest) instruction.InputReply {
		<-block
		return instruction.InputReply{Accepted: true}
	}, nil)
	defer func() {
		close(block)
		a.Close()
	}()

	f := a.Submit(instruction.InputRequest{Description: "slow"})
	assert.True(t, f.IsValid())
	assert.False(t, f.IsReady())
}

func TestCancelQueuedRequestNeverInvokesHandler(t *testing.T) {
	block := make(chan struct{})
	called := make(chan uint64, 1)
	a := New(func(id uint64, req instruction.InputRequest) instruction.InputReply {
		<-block
		called <- id
		return instruction.InputReply{Accepted: true}
	}, nil)
	defer a.Close()

	first := a.Submit(instruction.InputRequest{Description: "first"})
	second := a.Submit(instruction.InputRequest{Description: "second"})

	second.Cancel()
	assert.False(t, second.IsValid())

	close(block)
	require.True(t, first.WaitFor(time.Second))
	_, ok := first.Get()
	assert.True(t, ok)

	select {
	case id := <-called:
		assert.Equal(t, uint64(1), id)
	case <-time.After(time.Second):
		t.Fatal("handler never ran for the first request")
	}
	assert.False(t, second.IsReady())
}

func TestCancelInFlightRequestCallsInterrupt(t *testing.T) {
	started := make(chan uint64, 1)
	release := make(chan struct{})
	var interruptedID uint64

	a := New(func(id uint64, req instruction.InputRequest) instruction.InputReply {
		started <- id
		<-release
		return instruction.InputReply{Accepted: true}
	}, func(id uint64) {
		interruptedID = id
	})
	defer a.Close()

	f := a.Submit(instruction.InputRequest{Description: "interruptible"})
	id := <-started

	f.Cancel()
	close(release)

	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, id, interruptedID)
	assert.False(t, f.IsReady())
}

func TestWaitForTimesOutWhenNoReply(t *testing.T) {
	block := make(chan struct{})
	a := New(func(id uint64, req instruction.InputRequest) instruction.InputReply {
		<-block
		return instruction.InputReply{Accepted: true}
	}, nil)
	defer func() {
		close(block)
		a.Close()
	}()

	f := a.Submit(instruction.InputRequest{Description: "slow"})
	assert.False(t, f.WaitFor(10*time.Millisecond))
}

func TestUserChoiceReplyCarriesIndex(t *testing.T) {
	a := New(func(id uint64, req instruction.InputRequest) instruction.InputReply {
		require.Len(t, req.Options, 3)
		return instruction.InputReply{Accepted: true, Index: 2}
	}, nil)
	defer a.Close()

	f := a.Submit(instruction.InputRequest{Options: []string{"a", "b", "c"}})
	require.True(t, f.WaitFor(time.Second))
	reply, ok := f.Get()
	require.True(t, ok)
	assert.Equal(t, 2, reply.Index)
}

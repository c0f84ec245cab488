package durable

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMemory_GetSetRemove(t *testing.T) {
	defer goleak.VerifyNone(t)

	handle := NewMemory().Open()
	ctx := context.Background()

	_, ok, err := handle.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, handle.Set(ctx, "k", "v"))

	got, ok, err := handle.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", got)

	require.NoError(t, handle.Remove(ctx, "k"))

	_, ok, err = handle.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemory_WatchSeesOtherHandlesWrites(t *testing.T) {
	defer goleak.VerifyNone(t)

	backend := NewMemory()
	writer := backend.Open()
	reader := backend.Open()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := reader.Watch(ctx, "k")
	require.NoError(t, err)

	require.NoError(t, writer.Set(ctx, "k", "v1"))

	select {
	case ev := <-events:
		assert.Equal(t, "k", ev.Key)
		assert.Equal(t, "v1", ev.Value)
		assert.False(t, ev.Removed)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for change event")
	}

	require.NoError(t, writer.Remove(ctx, "k"))

	select {
	case ev := <-events:
		assert.True(t, ev.Removed)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for removal event")
	}
}

func TestMemory_WatchFiltersOwnWrites(t *testing.T) {
	defer goleak.VerifyNone(t)

	backend := NewMemory()
	writer := backend.Open()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := writer.Watch(ctx, "k")
	require.NoError(t, err)

	require.NoError(t, writer.Set(ctx, "k", "v1"))

	select {
	case ev := <-events:
		t.Fatalf("writer observed its own write: %+v", ev)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestMemory_WatchClosesOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	backend := NewMemory()
	handle := backend.Open()

	ctx, cancel := context.WithCancel(context.Background())
	events, err := handle.Watch(ctx, "k")
	require.NoError(t, err)

	cancel()

	select {
	case _, open := <-events:
		assert.False(t, open)
	case <-time.After(time.Second):
		t.Fatal("watch channel did not close after cancel")
	}
}

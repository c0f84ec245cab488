package cartstore

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/aurelia-atelier/aurelia-backend/internal/cart"
	"github.com/aurelia-atelier/aurelia-backend/internal/durable"
)

func testProduct(id uint, price int64) cart.Snapshot {
	return cart.Snapshot{
		ProductID: id,
		Name:      "Test Ring",
		Slug:      "test-ring",
		Price:     decimal.NewFromInt(price),
		Category:  "rings",
		SKU:       "TST-0001",
	}
}

func newTestStore(t *testing.T, d durable.Store, key string) *Store {
	t.Helper()
	st := New(d, key)
	require.NoError(t, st.Init(context.Background()))
	t.Cleanup(st.Close)
	return st
}

func TestStore_DispatchPersists(t *testing.T) {
	t.Cleanup(func() { goleak.VerifyNone(t) })

	backend := durable.NewMemory()
	handle := backend.Open()
	st := newTestStore(t, handle, "cart:s1")
	ctx := context.Background()

	state := st.Dispatch(ctx, cart.AddItem{Product: testProduct(1, 100), Quantity: 2})
	assert.Equal(t, 2, state.ItemCount)

	raw, ok, err := handle.Get(ctx, "cart:s1")
	require.NoError(t, err)
	require.True(t, ok)

	persisted, err := Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, 2, persisted.ItemCount)
}

func TestStore_EmptyCartRemovesKey(t *testing.T) {
	t.Cleanup(func() { goleak.VerifyNone(t) })

	backend := durable.NewMemory()
	handle := backend.Open()
	st := newTestStore(t, handle, "cart:s1")
	ctx := context.Background()

	st.Dispatch(ctx, cart.AddItem{Product: testProduct(1, 100), Quantity: 1})
	st.Dispatch(ctx, cart.Clear{})

	_, ok, err := handle.Get(ctx, "cart:s1")
	require.NoError(t, err)
	assert.False(t, ok, "empty cart should delete the persisted key")
}

func TestStore_InitRehydrates(t *testing.T) {
	t.Cleanup(func() { goleak.VerifyNone(t) })

	backend := durable.NewMemory()
	writer := newTestStore(t, backend.Open(), "cart:s1")
	writer.Dispatch(context.Background(), cart.AddItem{Product: testProduct(1, 100), Quantity: 3})

	// A fresh context for the same session picks up the persisted cart.
	fresh := newTestStore(t, backend.Open(), "cart:s1")

	state := fresh.State()
	require.Len(t, state.Lines, 1)
	assert.Equal(t, 3, state.ItemCount)
	assert.True(t, state.Subtotal.Equal(decimal.NewFromInt(300)))
}

func TestStore_InitToleratesMalformedData(t *testing.T) {
	t.Cleanup(func() { goleak.VerifyNone(t) })

	backend := durable.NewMemory()
	handle := backend.Open()
	require.NoError(t, handle.Set(context.Background(), "cart:s1", "{corrupt"))

	st := newTestStore(t, handle, "cart:s1")

	assert.True(t, st.State().IsEmpty())
}

func TestStore_CrossContextSync(t *testing.T) {
	t.Cleanup(func() { goleak.VerifyNone(t) })

	backend := durable.NewMemory()
	tabA := newTestStore(t, backend.Open(), "cart:s1")
	tabB := newTestStore(t, backend.Open(), "cart:s1")
	ctx := context.Background()

	tabA.Dispatch(ctx, cart.AddItem{Product: testProduct(1, 100), Quantity: 2})

	require.Eventually(t, func() bool {
		return tabB.State().ItemCount == 2
	}, time.Second, 5*time.Millisecond, "tab B never observed tab A's write")

	// And back the other way.
	lineID := tabB.State().Lines[0].ID
	tabB.Dispatch(ctx, cart.UpdateQuantity{LineID: lineID, Quantity: 7})

	require.Eventually(t, func() bool {
		return tabA.State().ItemCount == 7
	}, time.Second, 5*time.Millisecond, "tab A never observed tab B's write")
}

func TestStore_RemoteClearPreservesLocalOpenFlag(t *testing.T) {
	t.Cleanup(func() { goleak.VerifyNone(t) })

	backend := durable.NewMemory()
	tabA := newTestStore(t, backend.Open(), "cart:s1")
	tabB := newTestStore(t, backend.Open(), "cart:s1")
	ctx := context.Background()

	tabA.Dispatch(ctx, cart.AddItem{Product: testProduct(1, 100), Quantity: 1})
	require.Eventually(t, func() bool {
		return tabB.State().ItemCount == 1
	}, time.Second, 5*time.Millisecond)

	// Tab B has its panel open; tab A clears the cart.
	tabB.Dispatch(ctx, cart.Toggle{})
	require.True(t, tabB.State().Open)

	tabA.Dispatch(ctx, cart.Clear{})

	require.Eventually(t, func() bool {
		state := tabB.State()
		return state.IsEmpty() && state.Open
	}, time.Second, 5*time.Millisecond, "clear should empty tab B without closing its panel")
}

func TestStore_SubscribeReceivesChanges(t *testing.T) {
	t.Cleanup(func() { goleak.VerifyNone(t) })

	backend := durable.NewMemory()
	st := newTestStore(t, backend.Open(), "cart:s1")

	states := st.Subscribe()
	st.Dispatch(context.Background(), cart.AddItem{Product: testProduct(1, 100), Quantity: 1})

	select {
	case state := <-states:
		assert.Equal(t, 1, state.ItemCount)
	case <-time.After(time.Second):
		t.Fatal("subscriber never notified")
	}
}

func TestManager_SharesStorePerSession(t *testing.T) {
	t.Cleanup(func() { goleak.VerifyNone(t) })

	backend := durable.NewMemory()
	manager := NewManager(backend.Open())
	t.Cleanup(manager.Close)
	ctx := context.Background()

	a, err := manager.Get(ctx, "session-1")
	require.NoError(t, err)
	b, err := manager.Get(ctx, "session-1")
	require.NoError(t, err)
	other, err := manager.Get(ctx, "session-2")
	require.NoError(t, err)

	assert.Same(t, a, b)
	assert.NotSame(t, a, other)

	a.Dispatch(ctx, cart.AddItem{Product: testProduct(1, 100), Quantity: 1})
	assert.Equal(t, 1, b.State().ItemCount)
	assert.True(t, other.State().IsEmpty())
}

package cart

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// decimals compare by value, not representation.
var decimalComparer = cmp.Comparer(func(a, b decimal.Decimal) bool {
	return a.Equal(b)
})

func testSnapshot(id uint, name string, price int64) Snapshot {
	return Snapshot{
		ProductID: id,
		Name:      name,
		Slug:      name,
		Price:     decimal.NewFromInt(price),
		Category:  "rings",
		SKU:       "TST-0001",
	}
}

func TestApply_AddItemCreatesLine(t *testing.T) {
	state := Apply(Empty(), AddItem{
		Product:  testSnapshot(1, "gold-band", 100),
		Quantity: 2,
	})

	require.Len(t, state.Lines, 1)
	line := state.Lines[0]
	assert.NotEmpty(t, line.ID)
	assert.Equal(t, uint(1), line.ProductID)
	assert.Equal(t, 2, line.Quantity)
	assert.False(t, line.AddedAt.IsZero())
	assert.Equal(t, 2, state.ItemCount)
	assert.True(t, state.Subtotal.Equal(decimal.NewFromInt(200)))
	assert.False(t, state.LastUpdated.IsZero())
}

func TestApply_AddItemMergesSameIdentity(t *testing.T) {
	product := testSnapshot(1, "gold-band", 100)

	state := Apply(Empty(), AddItem{Product: product, Quantity: 1})
	state = Apply(state, AddItem{Product: product, Quantity: 2})

	require.Len(t, state.Lines, 1)
	assert.Equal(t, 3, state.Lines[0].Quantity)
	assert.Equal(t, 3, state.ItemCount)
	assert.True(t, state.Subtotal.Equal(decimal.NewFromInt(300)))
}

func TestApply_AddItemDistinctVariantsStaySeparate(t *testing.T) {
	product := testSnapshot(1, "gold-band", 100)
	sizeSix := &Variant{Name: "Ring Size", Value: "6", PriceAdjustment: decimal.Zero}
	sizeSeven := &Variant{Name: "Ring Size", Value: "7", PriceAdjustment: decimal.Zero}

	state := Apply(Empty(), AddItem{Product: product, Variant: sizeSix, Quantity: 1})
	state = Apply(state, AddItem{Product: product, Variant: sizeSeven, Quantity: 1})

	assert.Len(t, state.Lines, 2)
	assert.Equal(t, 2, state.ItemCount)
}

func TestApply_AddItemDistinctEngravingsStaySeparate(t *testing.T) {
	product := testSnapshot(1, "locket", 100)

	state := Apply(Empty(), AddItem{Product: product, Engraving: &Engraving{Text: "Forever"}, Quantity: 1})
	state = Apply(state, AddItem{Product: product, Engraving: &Engraving{Text: "Always"}, Quantity: 1})
	state = Apply(state, AddItem{Product: product, Engraving: &Engraving{Text: "Forever"}, Quantity: 1})

	require.Len(t, state.Lines, 2)
	assert.Equal(t, 3, state.ItemCount)
}

func TestApply_QuantityClampedToMax(t *testing.T) {
	product := testSnapshot(1, "gold-band", 100)

	state := Apply(Empty(), AddItem{Product: product, Quantity: 150})
	require.Len(t, state.Lines, 1)
	assert.Equal(t, MaxQuantity, state.Lines[0].Quantity)

	// Merging into an existing line clamps too.
	state = Apply(state, AddItem{Product: product, Quantity: 10})
	assert.Equal(t, MaxQuantity, state.Lines[0].Quantity)
}

func TestApply_AddItemZeroQuantityDefaultsToOne(t *testing.T) {
	state := Apply(Empty(), AddItem{Product: testSnapshot(1, "gold-band", 100)})

	require.Len(t, state.Lines, 1)
	assert.Equal(t, 1, state.Lines[0].Quantity)
}

func TestApply_UpdateQuantity(t *testing.T) {
	state := Apply(Empty(), AddItem{Product: testSnapshot(1, "gold-band", 100), Quantity: 1})
	lineID := state.Lines[0].ID

	state = Apply(state, UpdateQuantity{LineID: lineID, Quantity: 5})

	assert.Equal(t, 5, state.Lines[0].Quantity)
	assert.True(t, state.Subtotal.Equal(decimal.NewFromInt(500)))
}

func TestApply_UpdateQuantityZeroRemovesLine(t *testing.T) {
	state := Apply(Empty(), AddItem{Product: testSnapshot(1, "gold-band", 100), Quantity: 2})
	lineID := state.Lines[0].ID

	state = Apply(state, UpdateQuantity{LineID: lineID, Quantity: 0})

	assert.True(t, state.IsEmpty())
	assert.Equal(t, 0, state.ItemCount)
	assert.True(t, state.Subtotal.IsZero())
}

func TestApply_UpdateQuantityUnknownLineIsNoop(t *testing.T) {
	state := Apply(Empty(), AddItem{Product: testSnapshot(1, "gold-band", 100), Quantity: 2})

	next := Apply(state, UpdateQuantity{LineID: "missing", Quantity: 9})

	if diff := cmp.Diff(state.Lines, next.Lines, decimalComparer); diff != "" {
		t.Errorf("lines changed for unknown id (-before +after):\n%s", diff)
	}
}

func TestApply_RemoveItemIsIdempotent(t *testing.T) {
	state := Apply(Empty(), AddItem{Product: testSnapshot(1, "gold-band", 100), Quantity: 1})
	lineID := state.Lines[0].ID

	state = Apply(state, RemoveItem{LineID: lineID})
	assert.True(t, state.IsEmpty())

	state = Apply(state, RemoveItem{LineID: lineID})
	assert.True(t, state.IsEmpty())
}

func TestApply_UpdateVariantRecomputesTotals(t *testing.T) {
	state := Apply(Empty(), AddItem{Product: testSnapshot(1, "chain", 100), Quantity: 2})
	lineID := state.Lines[0].ID

	longer := &Variant{Name: "Chain Length", Value: "50cm", PriceAdjustment: decimal.NewFromInt(15)}
	state = Apply(state, UpdateVariant{LineID: lineID, Variant: longer})

	require.NotNil(t, state.Lines[0].Variant)
	assert.Equal(t, "50cm", state.Lines[0].Variant.Value)
	assert.True(t, state.Subtotal.Equal(decimal.NewFromInt(230)))
}

func TestApply_UpdateEngravingAddsSurcharge(t *testing.T) {
	state := Apply(Empty(), AddItem{Product: testSnapshot(1, "locket", 100), Quantity: 1})
	lineID := state.Lines[0].ID

	state = Apply(state, UpdateEngraving{
		LineID:    lineID,
		Engraving: &Engraving{Text: "Forever", Font: "script", Placement: "inside"},
	})

	require.NotNil(t, state.Lines[0].Engraving)
	assert.True(t, state.Subtotal.Equal(decimal.NewFromInt(125)))

	// Clearing the engraving drops the surcharge again.
	state = Apply(state, UpdateEngraving{LineID: lineID, Engraving: nil})
	assert.Nil(t, state.Lines[0].Engraving)
	assert.True(t, state.Subtotal.Equal(decimal.NewFromInt(100)))
}

func TestApply_ClearPreservesOpenFlag(t *testing.T) {
	state := Apply(Empty(), AddItem{Product: testSnapshot(1, "gold-band", 100), Quantity: 1})
	state = Apply(state, Toggle{})
	require.True(t, state.Open)

	state = Apply(state, Clear{})

	assert.True(t, state.IsEmpty())
	assert.True(t, state.Open)
}

func TestApply_Toggle(t *testing.T) {
	state := Apply(Empty(), Toggle{})
	assert.True(t, state.Open)

	state = Apply(state, Toggle{})
	assert.False(t, state.Open)

	open := true
	state = Apply(state, Toggle{Open: &open})
	assert.True(t, state.Open)

	state = Apply(state, Toggle{Open: &open})
	assert.True(t, state.Open)
}

func TestApply_LoadReplacesState(t *testing.T) {
	local := Apply(Empty(), AddItem{Product: testSnapshot(1, "gold-band", 100), Quantity: 1})

	incoming := Apply(Empty(), AddItem{Product: testSnapshot(2, "pendant", 250), Quantity: 2})
	state := Apply(local, Load{State: incoming})

	require.Len(t, state.Lines, 1)
	assert.Equal(t, uint(2), state.Lines[0].ProductID)
	assert.Equal(t, 2, state.ItemCount)
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	state := Apply(Empty(), AddItem{Product: testSnapshot(1, "gold-band", 100), Quantity: 1})
	lineID := state.Lines[0].ID

	_ = Apply(state, UpdateQuantity{LineID: lineID, Quantity: 50})

	assert.Equal(t, 1, state.Lines[0].Quantity)
}

func TestApply_DerivedFieldsStayConsistent(t *testing.T) {
	band := testSnapshot(1, "gold-band", 100)
	pendant := testSnapshot(2, "pendant", 250)

	state := Empty()
	state = Apply(state, AddItem{Product: band, Quantity: 2})
	state = Apply(state, AddItem{Product: pendant, Quantity: 1, Engraving: &Engraving{Text: "A"}})
	state = Apply(state, UpdateQuantity{LineID: state.Lines[0].ID, Quantity: 1})
	state = Apply(state, RemoveItem{LineID: state.Lines[0].ID})

	count := 0
	total := decimal.Zero
	for _, line := range state.Lines {
		count += line.Quantity
		total = total.Add(LineTotal(line))
	}
	assert.Equal(t, count, state.ItemCount)
	assert.True(t, total.Equal(state.Subtotal))
}

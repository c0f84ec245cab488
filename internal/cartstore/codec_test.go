package cartstore

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aurelia-atelier/aurelia-backend/internal/cart"
)

func sampleState(t *testing.T) cart.State {
	t.Helper()

	sale := decimal.NewFromInt(150)
	state := cart.Apply(cart.Empty(), cart.AddItem{
		Product: cart.Snapshot{
			ProductID: 7,
			Name:      "Gold Locket",
			Slug:      "gold-locket",
			Price:     decimal.NewFromInt(200),
			SalePrice: &sale,
			Images:    []string{"https://cdn.example/locket.jpg"},
			Category:  "necklaces",
			SKU:       "AUR-NEC-0007",
		},
		Variant:   &cart.Variant{Name: "Chain Length", Value: "45cm", PriceAdjustment: decimal.Zero},
		Engraving: &cart.Engraving{Text: "Always", Font: "script", Placement: "back"},
		Quantity:  2,
	})
	return cart.Apply(state, cart.Toggle{})
}

func TestCodecRoundTrip(t *testing.T) {
	state := sampleState(t)

	raw, err := Encode(state)
	require.NoError(t, err)

	decoded, err := Decode(raw)
	require.NoError(t, err)

	require.Len(t, decoded.Lines, 1)
	got, want := decoded.Lines[0], state.Lines[0]
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.ProductID, got.ProductID)
	assert.Equal(t, want.Quantity, got.Quantity)
	assert.Equal(t, want.Product.Name, got.Product.Name)
	require.NotNil(t, got.Product.SalePrice)
	assert.True(t, got.Product.SalePrice.Equal(*want.Product.SalePrice))
	require.NotNil(t, got.Variant)
	assert.Equal(t, "45cm", got.Variant.Value)
	require.NotNil(t, got.Engraving)
	assert.Equal(t, "Always", got.Engraving.Text)

	// Timestamps survive at millisecond precision.
	assert.Equal(t, want.AddedAt.Truncate(time.Millisecond).UTC(), got.AddedAt.UTC())
	assert.Equal(t, state.LastUpdated.Truncate(time.Millisecond).UTC(), decoded.LastUpdated.UTC())

	assert.Equal(t, state.Open, decoded.Open)
}

func TestDecodeRecomputesDerivedFields(t *testing.T) {
	state := sampleState(t)

	raw, err := Encode(state)
	require.NoError(t, err)

	// The encoded form carries no subtotal or item count.
	assert.NotContains(t, raw, "subtotal")
	assert.NotContains(t, raw, "item_count")

	decoded, err := Decode(raw)
	require.NoError(t, err)

	// Sale price 150 plus engraving surcharge, times two.
	assert.Equal(t, 2, decoded.ItemCount)
	assert.True(t, decoded.Subtotal.Equal(decimal.NewFromInt(350)))
}

func TestDecodeMalformed(t *testing.T) {
	_, err := Decode("{not json")
	assert.Error(t, err)

	_, err = Decode(`{"lines":[{"id":"a","added_at":"yesterday"}],"last_updated":"2026-01-01T00:00:00.000Z"}`)
	assert.Error(t, err)

	_, err = Decode(`{"lines":[],"last_updated":"not-a-time"}`)
	assert.Error(t, err)
}

func TestDecodeEmptyObject(t *testing.T) {
	decoded, err := Decode(`{}`)
	require.NoError(t, err)

	assert.True(t, decoded.IsEmpty())
	assert.True(t, decoded.LastUpdated.IsZero())
}

package cart

import (
	"time"

	"github.com/shopspring/decimal"
)

// Inventory is the optional stock information carried inside a product
// snapshot. It is advisory only: the reducer never blocks a mutation on it.
type Inventory struct {
	Stock          int  `json:"stock"`
	TrackInventory bool `json:"track_inventory"`
	AllowBackorder bool `json:"allow_backorder"`
}

// Snapshot is the denormalized copy of catalog data captured when a line is
// added. Prices already in the cart do not follow later catalog changes.
type Snapshot struct {
	ProductID uint             `json:"product_id"`
	Name      string           `json:"name"`
	Slug      string           `json:"slug"`
	Price     decimal.Decimal  `json:"price"`
	SalePrice *decimal.Decimal `json:"sale_price,omitempty"`
	Images    []string         `json:"images,omitempty"`
	Category  string           `json:"category"`
	SKU       string           `json:"sku"`
	Inventory *Inventory       `json:"inventory,omitempty"`
}

// PrimaryImage returns the first image of the snapshot, or "".
func (s Snapshot) PrimaryImage() string {
	if len(s.Images) == 0 {
		return ""
	}
	return s.Images[0]
}

// Variant is a chosen product option (e.g. ring size) that adjusts the unit
// price by a fixed amount.
type Variant struct {
	Name            string          `json:"name"`
	Value           string          `json:"value"`
	PriceAdjustment decimal.Decimal `json:"price_adjustment"`
}

// Engraving is a custom engraving request. Its presence on a line implies
// the fixed engraving surcharge.
type Engraving struct {
	Text      string `json:"text"`
	Font      string `json:"font"`
	Placement string `json:"placement"`
}

// Line is one row in the cart.
type Line struct {
	ID        string     `json:"id"`
	ProductID uint       `json:"product_id"`
	Product   Snapshot   `json:"product"`
	Quantity  int        `json:"quantity"`
	Variant   *Variant   `json:"variant,omitempty"`
	Engraving *Engraving `json:"engraving,omitempty"`
	AddedAt   time.Time  `json:"added_at"`
}

// State is the cart aggregate. Subtotal and ItemCount are derived from Lines
// and must never be set directly; every transition recomputes them.
type State struct {
	Lines       []Line          `json:"lines"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	ItemCount   int             `json:"item_count"`
	LastUpdated time.Time       `json:"last_updated"`
	Open        bool            `json:"is_open"`
}

// Empty returns a zero-value cart state with derived fields initialized.
func Empty() State {
	return State{Subtotal: decimal.Zero}
}

// IsEmpty reports whether the cart holds no lines.
func (s State) IsEmpty() bool {
	return len(s.Lines) == 0
}

func (s State) findLine(lineID string) int {
	for i := range s.Lines {
		if s.Lines[i].ID == lineID {
			return i
		}
	}
	return -1
}

// SameIdentity reports whether two lines represent the same logical item:
// same product, deep-equal variant, and same engraving text (or absence on
// both sides). Adding an item matching an existing line merges quantities
// instead of creating a second line.
func SameIdentity(a, b Line) bool {
	return a.ProductID == b.ProductID &&
		variantEqual(a.Variant, b.Variant) &&
		engravingText(a.Engraving) == engravingText(b.Engraving)
}

func variantEqual(a, b *Variant) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Name == b.Name &&
		a.Value == b.Value &&
		a.PriceAdjustment.Equal(b.PriceAdjustment)
}

func engravingText(e *Engraving) string {
	if e == nil {
		return ""
	}
	return e.Text
}

// Normalize recomputes the derived fields from Lines. LastUpdated is left
// untouched; the reducer stamps it on every mutation.
func Normalize(s State) State {
	s.Subtotal = Subtotal(s.Lines)
	count := 0
	for i := range s.Lines {
		count += s.Lines[i].Quantity
	}
	s.ItemCount = count
	return s
}

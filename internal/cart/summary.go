package cart

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// SummaryLine is the checkout-ready projection of a single cart line.
type SummaryLine struct {
	LineID    string          `json:"line_id"`
	ProductID uint            `json:"product_id"`
	Name      string          `json:"name"`
	Slug      string          `json:"slug"`
	SKU       string          `json:"sku"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
	Image     string          `json:"image,omitempty"`
	Variant   *Variant        `json:"variant,omitempty"`
	Engraving *Engraving      `json:"engraving,omitempty"`
}

// Summary is the payload shape handed to order creation. The engine builds
// it; submitting it anywhere is the checkout flow's job.
type Summary struct {
	Lines     []SummaryLine `json:"lines"`
	ItemCount int           `json:"item_count"`
	Totals    Totals        `json:"totals"`
}

// Summarize projects the lines into a checkout payload with totals.
func Summarize(lines []Line, taxRate decimal.Decimal) Summary {
	out := Summary{
		Lines:  make([]SummaryLine, 0, len(lines)),
		Totals: CartTotals(lines, taxRate),
	}
	for i := range lines {
		l := lines[i]
		out.Lines = append(out.Lines, SummaryLine{
			LineID:    l.ID,
			ProductID: l.ProductID,
			Name:      l.Product.Name,
			Slug:      l.Product.Slug,
			SKU:       l.Product.SKU,
			Quantity:  l.Quantity,
			UnitPrice: UnitPrice(l),
			LineTotal: LineTotal(l),
			Image:     l.Product.PrimaryImage(),
			Variant:   l.Variant,
			Engraving: l.Engraving,
		})
		out.ItemCount += l.Quantity
	}
	return out
}

// StockIssue describes one line whose requested quantity the snapshot's
// inventory cannot cover.
type StockIssue struct {
	LineID    string `json:"line_id"`
	ProductID uint   `json:"product_id"`
	Name      string `json:"name"`
	Reason    string `json:"reason"`
}

// StockReport is the result of an advisory stock check.
type StockReport struct {
	Available bool         `json:"available"`
	Issues    []StockIssue `json:"issues,omitempty"`
}

// CheckStock compares each inventory-tracked line against its snapshot
// stock. Purely informational: callers (the checkout flow) decide what to
// do with the report; the reducer never consults it.
func CheckStock(lines []Line) StockReport {
	report := StockReport{Available: true}
	for i := range lines {
		l := lines[i]
		inv := l.Product.Inventory
		if inv == nil || !inv.TrackInventory || inv.AllowBackorder {
			continue
		}
		switch {
		case inv.Stock == 0:
			report.Issues = append(report.Issues, StockIssue{
				LineID:    l.ID,
				ProductID: l.ProductID,
				Name:      l.Product.Name,
				Reason:    "unavailable",
			})
		case l.Quantity > inv.Stock:
			report.Issues = append(report.Issues, StockIssue{
				LineID:    l.ID,
				ProductID: l.ProductID,
				Name:      l.Product.Name,
				Reason:    fmt.Sprintf("insufficient (only %d available)", inv.Stock),
			})
		}
	}
	report.Available = len(report.Issues) == 0
	return report
}

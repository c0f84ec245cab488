// Package cartstore bridges the pure cart engine to the durable store:
// dispatching commands, persisting after every mutation, rehydrating on
// startup, and folding in changes made by other execution contexts.
package cartstore

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/aurelia-atelier/aurelia-backend/internal/cart"
)

// timeLayout keeps persisted timestamps portable and millisecond-precise.
const timeLayout = "2006-01-02T15:04:05.000Z07:00"

type persistedLine struct {
	ID        string          `json:"id"`
	ProductID uint            `json:"product_id"`
	Product   cart.Snapshot   `json:"product"`
	Quantity  int             `json:"quantity"`
	Variant   *cart.Variant   `json:"variant,omitempty"`
	Engraving *cart.Engraving `json:"engraving,omitempty"`
	AddedAt   string          `json:"added_at"`
}

// persistedState deliberately omits the derived fields; they are recomputed
// on decode so a stale or hand-edited blob can never smuggle in an
// inconsistent subtotal.
type persistedState struct {
	Lines       []persistedLine `json:"lines"`
	Open        bool            `json:"is_open"`
	LastUpdated string          `json:"last_updated"`
}

// Encode serializes a cart state for the durable store.
func Encode(s cart.State) (string, error) {
	p := persistedState{
		Lines:       make([]persistedLine, 0, len(s.Lines)),
		Open:        s.Open,
		LastUpdated: s.LastUpdated.Format(timeLayout),
	}
	for i := range s.Lines {
		l := s.Lines[i]
		p.Lines = append(p.Lines, persistedLine{
			ID:        l.ID,
			ProductID: l.ProductID,
			Product:   l.Product,
			Quantity:  l.Quantity,
			Variant:   l.Variant,
			Engraving: l.Engraving,
			AddedAt:   l.AddedAt.Format(timeLayout),
		})
	}

	raw, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("failed to encode cart state: %w", err)
	}
	return string(raw), nil
}

// Decode parses a serialized cart state and recomputes the derived fields.
func Decode(raw string) (cart.State, error) {
	var p persistedState
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return cart.State{}, fmt.Errorf("failed to decode cart state: %w", err)
	}

	state := cart.Empty()
	state.Open = p.Open

	if p.LastUpdated != "" {
		ts, err := time.Parse(timeLayout, p.LastUpdated)
		if err != nil {
			return cart.State{}, fmt.Errorf("invalid last_updated timestamp: %w", err)
		}
		state.LastUpdated = ts
	}

	for _, pl := range p.Lines {
		added, err := time.Parse(timeLayout, pl.AddedAt)
		if err != nil {
			return cart.State{}, fmt.Errorf("invalid added_at timestamp: %w", err)
		}
		state.Lines = append(state.Lines, cart.Line{
			ID:        pl.ID,
			ProductID: pl.ProductID,
			Product:   pl.Product,
			Quantity:  pl.Quantity,
			Variant:   pl.Variant,
			Engraving: pl.Engraving,
			AddedAt:   added,
		})
	}

	return cart.Normalize(state), nil
}

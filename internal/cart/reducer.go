package cart

import (
	"time"

	"github.com/google/uuid"
)

// Quantity bounds for a single line. Out-of-range requests are clamped,
// never rejected.
const (
	MinQuantity = 1
	MaxQuantity = 99
)

// Apply runs one command against the state and returns the next state.
// It is a pure transition: the input state is not mutated, derived fields
// are always recomputed, and no command errors across this boundary.
func Apply(s State, cmd Command) State {
	switch c := cmd.(type) {
	case AddItem:
		return applyAdd(s, c)
	case RemoveItem:
		next := cloneState(s)
		if i := next.findLine(c.LineID); i >= 0 {
			next.Lines = append(next.Lines[:i], next.Lines[i+1:]...)
		}
		return stamp(Normalize(next))
	case UpdateQuantity:
		if c.Quantity <= 0 {
			return Apply(s, RemoveItem{LineID: c.LineID})
		}
		next := cloneState(s)
		if i := next.findLine(c.LineID); i >= 0 {
			next.Lines[i].Quantity = clampQuantity(c.Quantity)
		}
		return stamp(Normalize(next))
	case UpdateVariant:
		next := cloneState(s)
		if i := next.findLine(c.LineID); i >= 0 {
			next.Lines[i].Variant = c.Variant
		}
		return stamp(Normalize(next))
	case UpdateEngraving:
		next := cloneState(s)
		if i := next.findLine(c.LineID); i >= 0 {
			next.Lines[i].Engraving = c.Engraving
		}
		return stamp(Normalize(next))
	case Clear:
		next := Empty()
		next.Open = s.Open
		return stamp(next)
	case Toggle:
		next := cloneState(s)
		if c.Open != nil {
			next.Open = *c.Open
		} else {
			next.Open = !next.Open
		}
		return stamp(next)
	case Load:
		return c.State
	}
	// Unreachable for the closed command set.
	return s
}

func applyAdd(s State, c AddItem) State {
	qty := c.Quantity
	if qty < MinQuantity {
		qty = MinQuantity
	}

	candidate := Line{
		ProductID: c.Product.ProductID,
		Product:   c.Product,
		Variant:   c.Variant,
		Engraving: c.Engraving,
	}

	next := cloneState(s)
	for i := range next.Lines {
		if SameIdentity(next.Lines[i], candidate) {
			next.Lines[i].Quantity = clampQuantity(next.Lines[i].Quantity + qty)
			return stamp(Normalize(next))
		}
	}

	candidate.ID = uuid.NewString()
	candidate.Quantity = clampQuantity(qty)
	candidate.AddedAt = time.Now()
	next.Lines = append(next.Lines, candidate)
	return stamp(Normalize(next))
}

func clampQuantity(q int) int {
	if q < MinQuantity {
		return MinQuantity
	}
	if q > MaxQuantity {
		return MaxQuantity
	}
	return q
}

// cloneState copies the state with its own lines slice so transitions never
// alias the caller's backing array.
func cloneState(s State) State {
	next := s
	next.Lines = make([]Line, len(s.Lines))
	copy(next.Lines, s.Lines)
	return next
}

func stamp(s State) State {
	s.LastUpdated = time.Now()
	return s
}

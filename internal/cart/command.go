package cart

// Command is the closed set of cart mutations. Apply dispatches on the
// concrete type; adding a command without handling it in Apply is a
// programming error caught by the exhaustive switch there.
type Command interface {
	isCommand()
}

// AddItem adds a candidate line to the cart. If a line with the same logical
// identity already exists its quantity is merged (clamped at MaxQuantity),
// otherwise a new line is created with a fresh id.
type AddItem struct {
	Product   Snapshot
	Variant   *Variant
	Engraving *Engraving
	Quantity  int
}

// RemoveItem drops the line with the given id. Unknown ids are a no-op.
type RemoveItem struct {
	LineID string
}

// UpdateQuantity sets a line's quantity. Values <= 0 remove the line,
// values above MaxQuantity are clamped. Unknown ids are a no-op.
type UpdateQuantity struct {
	LineID   string
	Quantity int
}

// UpdateVariant replaces a line's variant wholesale (nil clears it).
type UpdateVariant struct {
	LineID  string
	Variant *Variant
}

// UpdateEngraving replaces a line's engraving wholesale (nil clears it).
type UpdateEngraving struct {
	LineID    string
	Engraving *Engraving
}

// Clear empties the cart. The Open flag survives: it is UI chrome, not
// commerce state.
type Clear struct{}

// Toggle sets the cart panel visibility, or flips it when Open is nil.
type Toggle struct {
	Open *bool
}

// Load replaces the whole state, trusting its input. Used for rehydration
// and for applying externally-originated store changes.
type Load struct {
	State State
}

func (AddItem) isCommand()         {}
func (RemoveItem) isCommand()      {}
func (UpdateQuantity) isCommand()  {}
func (UpdateVariant) isCommand()   {}
func (UpdateEngraving) isCommand() {}
func (Clear) isCommand()           {}
func (Toggle) isCommand()          {}
func (Load) isCommand()            {}

package groupsort

// Source answers the read-only questions the machine asks about the
// caller's group items.
type Source[T comparable] interface {
	// Value returns the sortable value of item, or false when it has none.
	Value(item T) (float64, bool)
	// NextSelected picks the item to select after moving by delta from
	// current. Returning false clears the selection.
	NextSelected(delta float64, current T) (T, bool)
	// ItemToSelect is the default selection used on focus and after the
	// range invalidates the current selection.
	ItemToSelect() (T, bool)
}

// NumberKeyMapper maps a digit key to a value to commit directly.
type NumberKeyMapper func(key string) (float64, bool)

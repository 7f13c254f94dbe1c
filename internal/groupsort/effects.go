package groupsort

// Effect is a command produced by Machine.Step for the caller to execute.
type Effect[T comparable] interface {
	effect()
}

// Grab is emitted when the selected item becomes grabbed.
type Grab[T comparable] struct {
	Item T
}

// Release is emitted when a grab ends through Enter, Space or Escape.
// Blur, disabling and pointer takeover release silently.
type Release[T comparable] struct {
	Item T
}

// Commit asks the caller to store a new, already clamped, value.
type Commit[T comparable] struct {
	Item  T
	Value float64
}

// Sort reports a sort keystroke with the value read before the commit.
type Sort[T comparable] struct {
	Item     T
	OldValue float64
}

// Select reports a change of selection; Has is false when it was cleared.
type Select[T comparable] struct {
	Item T
	Has  bool
}

// GroupItemChanged asks the caller to bring Item into view.
type GroupItemChanged[T comparable] struct {
	Item T
}

// PositionSortCue asks the caller to move the sort cue to the selection.
type PositionSortCue[T comparable] struct{}

// HighlightStyle selects the border drawn around the focused item.
type HighlightStyle uint8

const (
	HighlightSolid HighlightStyle = iota
	HighlightDashed
)

func (h HighlightStyle) String() string {
	if h == HighlightDashed {
		return "dashed"
	}
	return "solid"
}

// Highlight describes the focus highlight for the current selection.
type Highlight[T comparable] struct {
	Item    T
	Visible bool
	Style   HighlightStyle
}

func (Grab[T]) effect()             {}
func (Release[T]) effect()          {}
func (Commit[T]) effect()           {}
func (Sort[T]) effect()             {}
func (Select[T]) effect()           {}
func (GroupItemChanged[T]) effect() {}
func (PositionSortCue[T]) effect()  {}
func (Highlight[T]) effect()        {}

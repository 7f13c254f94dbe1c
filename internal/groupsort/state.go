package groupsort

// Mode is the interaction state of the keyboard controller.
type Mode uint8

const (
	// ModeSelecting moves the selection between group items.
	ModeSelecting Mode = iota
	// ModeGrabbed changes the value of the selected group item.
	ModeGrabbed
)

func (m Mode) String() string {
	if m == ModeGrabbed {
		return "grabbed"
	}
	return "selecting"
}

// State is the durable interaction state. It is owned by the caller and
// threaded through Machine.Step.
type State[T comparable] struct {
	Selected     T
	HasSelection bool
	Mode         Mode
	Enabled      bool

	Focused         bool
	KeyboardFocused bool

	// Set once the user has grabbed, selected or sorted by keyboard; used to
	// retire onboarding hints.
	HasKeyboardGrabbed  bool
	HasKeyboardSelected bool
	HasKeyboardSorted   bool

	Range Range
}

// NewState returns an enabled, selecting state over r.
func NewState[T comparable](r Range) State[T] {
	return State[T]{Mode: ModeSelecting, Enabled: true, Range: r}
}

// Grabbed reports whether the selected item is being sorted.
func (s State[T]) Grabbed() bool {
	return s.Mode == ModeGrabbed
}

// Selection returns the selected item, if any.
func (s State[T]) Selection() (T, bool) {
	return s.Selected, s.HasSelection
}

func (s *State[T]) setSelection(item T, ok bool) {
	if !ok {
		var zero T
		s.Selected = zero
		s.HasSelection = false
		return
	}
	s.Selected = item
	s.HasSelection = true
}

func (s *State[T]) clearSelection() {
	var zero T
	s.setSelection(zero, false)
}

func (s State[T]) sameSelection(o State[T]) bool {
	if s.HasSelection != o.HasSelection {
		return false
	}
	return !s.HasSelection || s.Selected == o.Selected
}

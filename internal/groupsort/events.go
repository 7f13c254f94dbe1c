package groupsort

import "fmt"

// Event is an input delivered to the machine. Keyboard, focus and pointer
// events share this channel so their relative order is explicit.
type Event interface {
	fmt.Stringer
	event()
}

// Focus is delivered when the group gains focus.
type Focus struct{}

// Blur is delivered when the group loses focus.
type Blur struct{}

// KeyDown carries one key press, including auto-repeat firings.
type KeyDown struct {
	Key string
}

// SetEnabled toggles whether keyboard input is honoured.
type SetEnabled struct {
	Enabled bool
}

// PointerInteractionStarted is delivered when mouse or touch input takes over.
type PointerInteractionStarted struct{}

// RangeChanged carries a new sorting range.
type RangeChanged struct {
	Range Range
}

func (Focus) event()                     {}
func (Blur) event()                      {}
func (KeyDown) event()                   {}
func (SetEnabled) event()                {}
func (PointerInteractionStarted) event() {}
func (RangeChanged) event()              {}

func (Focus) String() string                     { return "focus" }
func (Blur) String() string                      { return "blur" }
func (e KeyDown) String() string                 { return "keydown(" + e.Key + ")" }
func (e SetEnabled) String() string              { return fmt.Sprintf("enabled(%t)", e.Enabled) }
func (PointerInteractionStarted) String() string { return "pointer" }
func (e RangeChanged) String() string {
	return fmt.Sprintf("range(%g..%g)", e.Range.Min, e.Range.Max)
}

package groupsort

import (
	"errors"
	"fmt"
)

var (
	// ErrNoValue means the selected item reported no value while a key
	// needed one.
	ErrNoValue = errors.New("groupsort: selected item has no value")
	// ErrUnknownEvent means Step was given an event type it does not know.
	ErrUnknownEvent = errors.New("groupsort: unknown event")
	// ErrDisposed is returned by Interaction.Handle after Dispose.
	ErrDisposed = errors.New("groupsort: interaction disposed")
)

// MachineConfig tunes the transition rules.
type MachineConfig struct {
	Steps                Steps
	NumberKeyMapper      NumberKeyMapper
	ClearSelectionOnBlur bool
}

// Machine is the pure transition function of the group sort interaction.
// It holds no interaction state of its own.
type Machine[T comparable] struct {
	src Source[T]
	cfg MachineConfig
}

// NewMachine builds a machine over src.
func NewMachine[T comparable](src Source[T], cfg MachineConfig) *Machine[T] {
	return &Machine[T]{src: src, cfg: cfg}
}

// Step applies ev to s. On error the returned state equals s and no effects
// are produced.
func (m *Machine[T]) Step(s State[T], ev Event) (State[T], []Effect[T], error) {
	next := s
	var (
		fx  []Effect[T]
		err error
	)
	switch e := ev.(type) {
	case Focus:
		m.focus(&next)
	case Blur:
		m.blur(&next)
	case SetEnabled:
		next.Enabled = e.Enabled
		if !e.Enabled {
			next.Mode = ModeSelecting
		}
	case PointerInteractionStarted:
		next.clearSelection()
		next.Mode = ModeSelecting
		next.KeyboardFocused = false
	case RangeChanged:
		m.rangeChanged(&next, e.Range)
	case KeyDown:
		fx, err = m.keyDown(&next, e.Key)
	default:
		err = fmt.Errorf("%w: %T", ErrUnknownEvent, ev)
	}
	if err != nil {
		return s, nil, err
	}
	return next, append(fx, syncEffects(s, next)...), nil
}

func (m *Machine[T]) focus(s *State[T]) {
	s.Focused = true
	s.KeyboardFocused = true
	if !s.HasSelection {
		s.setSelection(m.src.ItemToSelect())
	}
}

func (m *Machine[T]) blur(s *State[T]) {
	s.Mode = ModeSelecting
	s.Focused = false
	s.KeyboardFocused = false
	if m.cfg.ClearSelectionOnBlur {
		s.clearSelection()
	}
}

func (m *Machine[T]) rangeChanged(s *State[T], r Range) {
	s.Range = r
	if !s.HasSelection {
		return
	}
	// a selection that left the source or the range is replaced, and a grab
	// on it ends silently like a blur
	v, ok := m.src.Value(s.Selected)
	if !ok || !r.Contains(v) {
		s.Mode = ModeSelecting
		s.setSelection(m.src.ItemToSelect())
	}
}

func (m *Machine[T]) keyDown(s *State[T], key string) ([]Effect[T], error) {
	canon := CanonicalKey(key)
	switch {
	case isGrabKey(canon):
		return m.toggleGrab(s), nil
	case isReleaseKey(canon):
		return m.escape(s), nil
	}
	if combo := DecodeKey(canon); combo != ComboUnrecognized {
		return m.deltaKey(s, combo)
	}
	if _, ok := DigitKey(canon); ok && m.cfg.NumberKeyMapper != nil {
		return m.directValue(s, canon)
	}
	return nil, nil
}

func (m *Machine[T]) toggleGrab(s *State[T]) []Effect[T] {
	s.KeyboardFocused = true
	if !s.Enabled || !s.HasSelection {
		return nil
	}
	if s.Mode == ModeGrabbed {
		s.Mode = ModeSelecting
		return []Effect[T]{Release[T]{Item: s.Selected}}
	}
	s.Mode = ModeGrabbed
	s.HasKeyboardGrabbed = true
	return []Effect[T]{Grab[T]{Item: s.Selected}}
}

func (m *Machine[T]) escape(s *State[T]) []Effect[T] {
	s.KeyboardFocused = true
	if s.Mode != ModeGrabbed {
		return nil
	}
	s.Mode = ModeSelecting
	if !s.HasSelection {
		return nil
	}
	return []Effect[T]{Release[T]{Item: s.Selected}}
}

func (m *Machine[T]) deltaKey(s *State[T], combo KeyCombo) ([]Effect[T], error) {
	if !s.Enabled || !s.HasSelection {
		return nil, nil
	}
	item := s.Selected
	old, ok := m.src.Value(item)
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrNoValue, item)
	}
	delta, _ := combo.Delta(m.cfg.Steps, s.Range)

	if s.Mode == ModeGrabbed {
		s.HasKeyboardSorted = true
		return sortEffects(item, old, s.Range.Clamp(old+delta)), nil
	}

	s.setSelection(m.src.NextSelected(s.Range.ClampDelta(old, delta), item))
	s.HasKeyboardSelected = true
	if !s.HasSelection {
		return nil, nil
	}
	return []Effect[T]{GroupItemChanged[T]{Item: s.Selected}}, nil
}

func (m *Machine[T]) directValue(s *State[T], key string) ([]Effect[T], error) {
	if !s.Enabled || s.Mode != ModeGrabbed || !s.HasSelection {
		return nil, nil
	}
	value, ok := m.cfg.NumberKeyMapper(key)
	if !ok {
		return nil, nil
	}
	item := s.Selected
	old, ok := m.src.Value(item)
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrNoValue, item)
	}
	s.HasKeyboardSorted = true
	return sortEffects(item, old, s.Range.Clamp(value)), nil
}

// Sort fires even when clamping made the commit a no-op.
func sortEffects[T comparable](item T, old, value float64) []Effect[T] {
	return []Effect[T]{
		Commit[T]{Item: item, Value: value},
		Sort[T]{Item: item, OldValue: old},
		GroupItemChanged[T]{Item: item},
	}
}

// syncEffects mirrors selection and mode changes into selection, highlight
// and sort cue effects.
func syncEffects[T comparable](prev, next State[T]) []Effect[T] {
	var fx []Effect[T]
	selectionChanged := !prev.sameSelection(next)
	if selectionChanged {
		fx = append(fx, Select[T]{Item: next.Selected, Has: next.HasSelection})
	}
	if selectionChanged || prev.Mode != next.Mode {
		style := HighlightSolid
		if next.Mode == ModeGrabbed {
			style = HighlightDashed
		}
		fx = append(fx, Highlight[T]{
			Item:    next.Selected,
			Visible: next.HasSelection,
			Style:   style,
		})
	}
	if selectionChanged && next.HasSelection {
		fx = append(fx, PositionSortCue[T]{})
	}
	return fx
}

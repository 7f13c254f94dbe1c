package groupsort

import (
	"io"
	"log/slog"
	"sync"
)

// Handler executes the effects of the interaction. Embed NopHandler to
// implement only the callbacks you need.
type Handler[T comparable] interface {
	Grab(item T)
	Release(item T)
	Sort(item T, oldValue float64)
	Commit(item T, value float64)
	Changed(item T)
	Selected(item T, ok bool)
	Highlight(h Highlight[T])
}

// Views is optionally implemented by a Handler that can tell whether an
// item has something to draw a highlight around.
type Views[T comparable] interface {
	HasHighlightTarget(item T) bool
}

// NopHandler ignores every effect.
type NopHandler[T comparable] struct{}

func (NopHandler[T]) Grab(T)                 {}
func (NopHandler[T]) Release(T)              {}
func (NopHandler[T]) Sort(T, float64)        {}
func (NopHandler[T]) Commit(T, float64)      {}
func (NopHandler[T]) Changed(T)              {}
func (NopHandler[T]) Selected(T, bool)       {}
func (NopHandler[T]) Highlight(Highlight[T]) {}

// Options configures an Interaction.
type Options struct {
	Steps                Steps
	Range                Range
	NumberKeyMapper      NumberKeyMapper
	ClearSelectionOnBlur bool
	Logger               *slog.Logger
}

// Interaction owns a State, runs events through a Machine and executes the
// resulting effects against a Handler. Events are applied one at a time in
// the order Handle is called.
type Interaction[T comparable] struct {
	dispatch sync.Mutex
	machine  *Machine[T]
	handler  Handler[T]
	views    Views[T]
	log      *slog.Logger

	mu        sync.RWMutex
	state     State[T]
	cues      map[int]func()
	nextCueID int
	disposed  bool
}

// NewInteraction wires src and handler. A nil handler behaves as NopHandler.
func NewInteraction[T comparable](
	src Source[T],
	handler Handler[T],
	opts Options,
) *Interaction[T] {
	if handler == nil {
		handler = NopHandler[T]{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	views, _ := handler.(Views[T])
	return &Interaction[T]{
		machine: NewMachine(src, MachineConfig{
			Steps:                opts.Steps,
			NumberKeyMapper:      opts.NumberKeyMapper,
			ClearSelectionOnBlur: opts.ClearSelectionOnBlur,
		}),
		handler: handler,
		views:   views,
		log:     logger,
		state:   NewState[T](opts.Range),
		cues:    make(map[int]func()),
	}
}

// State returns a snapshot of the interaction state. It is safe to call
// from handler callbacks.
func (in *Interaction[T]) State() State[T] {
	in.mu.RLock()
	defer in.mu.RUnlock()
	return in.state
}

// OnPositionSortCue registers fn to run whenever the sort cue should move.
// The returned func removes the listener.
func (in *Interaction[T]) OnPositionSortCue(fn func()) func() {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.disposed || fn == nil {
		return func() {}
	}
	id := in.nextCueID
	in.nextCueID++
	in.cues[id] = fn
	return func() {
		in.mu.Lock()
		delete(in.cues, id)
		in.mu.Unlock()
	}
}

// Handle applies one event. Handlers must not call Handle or Dispose.
func (in *Interaction[T]) Handle(ev Event) error {
	in.dispatch.Lock()
	defer in.dispatch.Unlock()

	in.mu.RLock()
	prev, disposed := in.state, in.disposed
	in.mu.RUnlock()
	if disposed {
		return ErrDisposed
	}

	next, fx, err := in.machine.Step(prev, ev)
	if err != nil {
		in.log.Warn("groupsort event rejected", "event", ev.String(), "err", err)
		return err
	}

	in.mu.Lock()
	in.state = next
	in.mu.Unlock()

	in.log.Debug(
		"groupsort event",
		"event", ev.String(),
		"mode", next.Mode.String(),
		"selected", next.HasSelection,
		"effects", len(fx),
	)
	for _, effect := range fx {
		in.apply(effect)
	}
	return nil
}

// Dispose detaches the handler and every cue listener. Later events are
// rejected with ErrDisposed.
func (in *Interaction[T]) Dispose() {
	in.dispatch.Lock()
	defer in.dispatch.Unlock()
	in.mu.Lock()
	defer in.mu.Unlock()
	in.disposed = true
	in.handler = NopHandler[T]{}
	in.views = nil
	in.cues = make(map[int]func())
}

func (in *Interaction[T]) apply(effect Effect[T]) {
	switch e := effect.(type) {
	case Grab[T]:
		in.handler.Grab(e.Item)
	case Release[T]:
		in.handler.Release(e.Item)
	case Commit[T]:
		in.handler.Commit(e.Item, e.Value)
	case Sort[T]:
		in.handler.Sort(e.Item, e.OldValue)
	case Select[T]:
		in.handler.Selected(e.Item, e.Has)
	case GroupItemChanged[T]:
		in.handler.Changed(e.Item)
	case Highlight[T]:
		if e.Visible && in.views != nil && !in.views.HasHighlightTarget(e.Item) {
			e.Visible = false
		}
		in.handler.Highlight(e)
	case PositionSortCue[T]:
		in.mu.RLock()
		listeners := make([]func(), 0, len(in.cues))
		for _, fn := range in.cues {
			listeners = append(listeners, fn)
		}
		in.mu.RUnlock()
		for _, fn := range listeners {
			fn()
		}
	}
}

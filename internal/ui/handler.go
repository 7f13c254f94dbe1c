package ui

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/unkn0wn-root/groupsort/internal/dataset"
	"github.com/unkn0wn-root/groupsort/internal/groupsort"
	"github.com/unkn0wn-root/groupsort/internal/history"
	"github.com/unkn0wn-root/groupsort/internal/telemetry"
)

// session receives the effects of the interaction. It is shared by every
// copy of the Model, so view state that effects produce lives here.
type session struct {
	ctx         context.Context
	data        *dataset.Model
	history     *history.Store
	journal     history.Session
	tracer      telemetry.Instrumenter
	log         *slog.Logger
	interaction *groupsort.Interaction[string]
	cancelCue   func()

	// key being delivered, recorded with grabs and sorts
	lastKey string

	selected    string
	hasSelected bool
	highlight   groupsort.Highlight[string]
	changed     string
	cueItem     string
	cueMoves    int
	sorts       int
	recent      []history.Entry

	span     telemetry.GrabSpan
	spanItem string

	notices []statusMsg
}

var (
	_ groupsort.Handler[string] = (*session)(nil)
	_ groupsort.Views[string]   = (*session)(nil)
)

func (s *session) Grab(item string) {
	launch, _ := s.data.Launch(item)
	_, span := s.tracer.StartGrab(s.ctx, telemetry.GrabStart{
		Dataset: s.data.Name(),
		ItemID:  item,
		Label:   launch.Label,
		Value:   launch.Distance,
		Key:     s.lastKey,
	})
	s.span = span
	s.spanItem = item
	s.notify(statusInfo, "Grabbed %s", launch.Label)
}

func (s *session) Release(item string) {
	launch, _ := s.data.Launch(item)
	s.endGrab(s.releaseReason(), nil)
	s.notify(statusInfo, "Released %s at %s", launch.Label, formatValue(launch.Distance, s.data.Unit()))
}

func (s *session) Commit(item string, value float64) {
	if !s.data.SetValue(item, value) {
		s.log.Warn("commit for unknown launch", "item", item, "value", value)
	}
}

func (s *session) Sort(item string, oldValue float64) {
	launch, _ := s.data.Launch(item)
	s.sorts++
	s.recordSort(launch, oldValue)
}

func (s *session) Changed(item string) {
	s.changed = item
}

func (s *session) Selected(item string, ok bool) {
	s.selected, s.hasSelected = item, ok
	if !ok {
		s.cueItem = ""
	}
}

func (s *session) Highlight(h groupsort.Highlight[string]) {
	s.highlight = h
}

// HasHighlightTarget reports whether item has a visible row. Launches
// outside the active range are not drawn.
func (s *session) HasHighlightTarget(item string) bool {
	v, ok := s.data.Value(item)
	return ok && s.data.Range().Contains(v)
}

func (s *session) positionCue() {
	s.cueItem = s.selected
	s.cueMoves++
}

func (s *session) recordSort(launch dataset.Launch, oldValue float64) {
	if s.span != nil && s.spanItem == launch.ID {
		s.span.RecordSort(telemetry.SortRecord{
			Key:      s.lastKey,
			OldValue: oldValue,
			NewValue: launch.Distance,
		})
	}
	if s.history == nil || s.journal.ID == "" {
		return
	}
	_, err := s.history.Append(s.ctx, history.Entry{
		SessionID: s.journal.ID,
		ItemID:    launch.ID,
		Label:     launch.Label,
		Key:       s.lastKey,
		OldValue:  oldValue,
		NewValue:  launch.Distance,
	})
	if err != nil {
		s.log.Error("history append failed", "item", launch.ID, "err", err)
		s.notify(statusWarn, "History not recorded: %v", err)
		return
	}
	s.refreshRecent()
}

// syncGrab closes the grab span when the interaction left grabbed mode
// without a release effect, as blur, pointer input and disabling do.
func (s *session) syncGrab(reason string) {
	if s.span == nil || s.interaction.State().Grabbed() {
		return
	}
	s.endGrab(reason, nil)
}

func (s *session) endGrab(reason string, err error) {
	if s.span == nil {
		return
	}
	value, _ := s.data.Value(s.spanItem)
	s.span.End(telemetry.GrabResult{Value: value, Reason: reason, Err: err})
	s.span = nil
	s.spanItem = ""
}

func (s *session) releaseReason() string {
	if groupsort.CanonicalKey(s.lastKey) == "esc" {
		return "cancel"
	}
	return "release"
}

func (s *session) notify(level statusLevel, format string, args ...any) {
	s.notices = append(s.notices, statusMsg{text: fmt.Sprintf(format, args...), level: level})
}

func (s *session) takeNotices() []statusMsg {
	out := s.notices
	s.notices = nil
	return out
}

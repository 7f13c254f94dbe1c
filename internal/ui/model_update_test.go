package ui

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/unkn0wn-root/groupsort/internal/config"
	"github.com/unkn0wn-root/groupsort/internal/dataset"
	"github.com/unkn0wn-root/groupsort/internal/errdef"
	"github.com/unkn0wn-root/groupsort/internal/groupsort"
	"github.com/unkn0wn-root/groupsort/internal/history"
	"github.com/unkn0wn-root/groupsort/internal/telemetry"
)

func testSet() dataset.Set {
	return dataset.Set{
		Name: "test launches",
		Unit: "m",
		Min:  0,
		Max:  100,
		Launches: []dataset.Launch{
			{ID: "c", Label: "Gamma", Distance: 30},
			{ID: "a", Label: "Alpha", Distance: 10},
			{ID: "d", Label: "Delta", Distance: 95},
			{ID: "b", Label: "Beta", Distance: 20},
		},
	}
}

func newTestModel(t *testing.T, mutate ...func(*Config)) *Model {
	t.Helper()
	cfg := Config{
		Data:     dataset.NewModel(testSet()),
		Settings: config.DefaultSettings(),
	}
	for _, fn := range mutate {
		fn(&cfg)
	}
	model := New(cfg)
	t.Cleanup(model.Close)
	return &model
}

func sendKeys(t *testing.T, model *Model, keys ...string) {
	t.Helper()
	for _, key := range keys {
		if cmd := model.handleKey(keyMsgFor(key)); cmd != nil {
			msg := cmd()
			if _, quit := msg.(tea.QuitMsg); quit {
				continue
			}
			updated, _ := model.Update(msg)
			*model = updated.(Model)
		}
	}
}

func keyMsgFor(key string) tea.KeyMsg {
	switch key {
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "space":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "shift+right":
		return tea.KeyMsg{Type: tea.KeyShiftRight}
	case "home":
		return tea.KeyMsg{Type: tea.KeyHome}
	case "pgup":
		return tea.KeyMsg{Type: tea.KeyPgUp}
	case "ctrl+e":
		return tea.KeyMsg{Type: tea.KeyCtrlE}
	case "ctrl+r":
		return tea.KeyMsg{Type: tea.KeyCtrlR}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
}

func assertSelected(t *testing.T, model *Model, want string) {
	t.Helper()
	got, ok := model.State().Selection()
	if !ok {
		t.Fatalf("expected %q to be selected, got no selection", want)
	}
	if got != want {
		t.Fatalf("expected %q to be selected, got %q", want, got)
	}
}

func assertValue(t *testing.T, model *Model, id string, want float64) {
	t.Helper()
	got, ok := model.data.Value(id)
	if !ok {
		t.Fatalf("expected launch %q to exist", id)
	}
	if got != want {
		t.Fatalf("expected launch %q at %v, got %v", id, want, got)
	}
}

func TestNewFocusesFirstLaunchInValueOrder(t *testing.T) {
	model := newTestModel(t)
	state := model.State()
	if !state.Focused || !state.KeyboardFocused {
		t.Fatalf("expected group focused on start, got %+v", state)
	}
	assertSelected(t, model, "a")
	if !model.sess.highlight.Visible || model.sess.highlight.Item != "a" {
		t.Fatalf("expected solid highlight on a, got %+v", model.sess.highlight)
	}
	if model.sess.cueItem != "a" {
		t.Fatalf("expected sort cue positioned on a, got %q", model.sess.cueItem)
	}
}

func TestSelectionFollowsBindings(t *testing.T) {
	model := newTestModel(t)

	sendKeys(t, model, "right")
	assertSelected(t, model, "b")

	sendKeys(t, model, "l")
	assertSelected(t, model, "c")

	sendKeys(t, model, "G")
	assertSelected(t, model, "d")

	sendKeys(t, model, "g", "g")
	assertSelected(t, model, "a")

	// page step 20 from a (10) aims at 30
	sendKeys(t, model, "pgup")
	assertSelected(t, model, "c")

	if !model.State().HasKeyboardSelected {
		t.Fatalf("expected keyboard selection flag to be set")
	}
	assertValue(t, model, "a", 10)
}

func TestUnresolvedChordReplaysPrefix(t *testing.T) {
	model := newTestModel(t)
	sendKeys(t, model, "g", "right")
	if model.hasPendingChord {
		t.Fatalf("expected pending chord to clear")
	}
	assertSelected(t, model, "b")
}

func TestGrabSortAndRelease(t *testing.T) {
	model := newTestModel(t)

	sendKeys(t, model, "enter")
	if !model.State().Grabbed() {
		t.Fatalf("expected enter to grab the selection")
	}
	if model.sess.highlight.Style != groupsort.HighlightDashed {
		t.Fatalf("expected dashed highlight while grabbed")
	}

	sendKeys(t, model, "right")
	assertValue(t, model, "a", 11)

	sendKeys(t, model, "shift+right")
	assertValue(t, model, "a", 13)

	sendKeys(t, model, "9")
	assertValue(t, model, "a", 100)

	sendKeys(t, model, "esc")
	if model.State().Grabbed() {
		t.Fatalf("expected esc to release")
	}
	assertValue(t, model, "a", 100)
	if model.sess.sorts != 3 {
		t.Fatalf("expected 3 sorts, got %d", model.sess.sorts)
	}
	if !model.Dirty() {
		t.Fatalf("expected data set to be dirty after sorting")
	}
	if !strings.Contains(model.statusMessage.text, "Released Alpha") {
		t.Fatalf("expected release status, got %q", model.statusMessage.text)
	}
}

func TestSpaceTogglesGrab(t *testing.T) {
	model := newTestModel(t)
	sendKeys(t, model, "space")
	if !model.State().Grabbed() {
		t.Fatalf("expected space to grab")
	}
	sendKeys(t, model, "space")
	if model.State().Grabbed() {
		t.Fatalf("expected second space to release")
	}
}

func TestDigitsIgnoredWhenNumberKeysDisabled(t *testing.T) {
	model := newTestModel(t, func(cfg *Config) {
		cfg.Settings.Sort.DisableNumberKeys = true
	})
	sendKeys(t, model, "enter", "5")
	assertValue(t, model, "a", 10)
}

func TestDisabledGroupIgnoresSortKeys(t *testing.T) {
	model := newTestModel(t)
	sendKeys(t, model, "ctrl+e")
	if model.State().Enabled {
		t.Fatalf("expected ctrl+e to disable sorting")
	}
	sendKeys(t, model, "right", "enter")
	assertSelected(t, model, "a")
	if model.State().Grabbed() {
		t.Fatalf("expected grab to be ignored while disabled")
	}
	if model.keys.entries["step_inc"].Enabled() {
		t.Fatalf("expected step help to be disabled")
	}
	sendKeys(t, model, "ctrl+e")
	if !model.State().Enabled {
		t.Fatalf("expected ctrl+e to enable sorting again")
	}
}

func TestTabTogglesGroupFocus(t *testing.T) {
	model := newTestModel(t)
	sendKeys(t, model, "tab")
	if model.State().Focused {
		t.Fatalf("expected tab to blur the group")
	}
	sendKeys(t, model, "right")
	assertSelected(t, model, "a")
	if !strings.Contains(model.statusMessage.text, "to focus") {
		t.Fatalf("expected focus hint, got %q", model.statusMessage.text)
	}

	updated, _ := model.Update(tea.FocusMsg{})
	*model = updated.(Model)
	if model.State().Focused {
		t.Fatalf("expected terminal focus not to refocus a parked group")
	}

	sendKeys(t, model, "tab", "right")
	assertSelected(t, model, "b")
}

func TestPointerPressClearsKeyboardSelection(t *testing.T) {
	model := newTestModel(t)
	sendKeys(t, model, "enter")

	model.handleMouse(tea.MouseMsg{
		X:      4,
		Y:      bodyTop + 3,
		Button: tea.MouseButtonLeft,
		Action: tea.MouseActionPress,
	})
	state := model.State()
	if state.HasSelection || state.Grabbed() || state.KeyboardFocused {
		t.Fatalf("expected pointer to take over, got %+v", state)
	}
	if model.pointerItem != "b" {
		t.Fatalf("expected pointer on b, got %q", model.pointerItem)
	}
	if model.sess.highlight.Visible {
		t.Fatalf("expected keyboard highlight hidden")
	}

	sendKeys(t, model, "right")
	assertSelected(t, model, "a")
	if model.pointerItem != "" {
		t.Fatalf("expected keyboard to clear pointer item")
	}
}

func TestWheelSortsLaunchUnderPointer(t *testing.T) {
	model := newTestModel(t)
	model.handleMouse(tea.MouseMsg{
		X:      4,
		Y:      bodyTop + 3,
		Button: tea.MouseButtonWheelUp,
		Action: tea.MouseActionPress,
	})
	assertValue(t, model, "b", 21)
	if model.State().HasSelection {
		t.Fatalf("expected wheel to switch to pointer mode")
	}
	if model.sess.sorts != 1 {
		t.Fatalf("expected wheel sort counted, got %d", model.sess.sorts)
	}
}

func TestRangeNarrowingReselects(t *testing.T) {
	model := newTestModel(t)
	sendKeys(t, model, "G")
	assertSelected(t, model, "d")

	sendKeys(t, model, "[")
	if got := model.data.Range(); got != groupsort.NewRange(5, 95) {
		t.Fatalf("expected range 5..95, got %+v", got)
	}
	assertSelected(t, model, "d")

	sendKeys(t, model, "[")
	if got := model.State().Range; got != groupsort.NewRange(10, 90) {
		t.Fatalf("expected interaction range 10..90, got %+v", got)
	}
	assertSelected(t, model, "a")

	sendKeys(t, model, "]", "]", "]")
	if got := model.data.Range(); got != groupsort.NewRange(0, 100) {
		t.Fatalf("expected range restored to bounds, got %+v", got)
	}
	if !strings.Contains(model.statusMessage.text, "already spans") {
		t.Fatalf("expected bounds status, got %q", model.statusMessage.text)
	}
}

func TestRangeNarrowingDropsGrabOfExcludedLaunch(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	inst, err := telemetry.New(telemetry.Config{ServiceName: "groupsort-test"}, telemetry.WithSpanProcessor(recorder))
	if err != nil {
		t.Fatalf("telemetry: %v", err)
	}
	t.Cleanup(func() { _ = inst.Shutdown(context.Background()) })

	model := newTestModel(t, func(cfg *Config) {
		cfg.Telemetry = inst
	})
	sendKeys(t, model, "G", "enter", "[")
	if !model.State().Grabbed() {
		t.Fatalf("expected d to stay grabbed inside 5..95")
	}

	sendKeys(t, model, "[")
	if model.State().Grabbed() {
		t.Fatalf("expected grab dropped once d left the range")
	}
	assertSelected(t, model, "a")
	if model.sess.span != nil {
		t.Fatalf("expected grab span closed")
	}
	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 ended span, got %d", len(spans))
	}
	var reason string
	for _, kv := range spans[0].Attributes() {
		if string(kv.Key) == "groupsort.release.reason" {
			reason = kv.Value.AsString()
		}
	}
	if reason != "range(10..90)" {
		t.Fatalf("expected range release reason, got %q", reason)
	}

	sendKeys(t, model, "right")
	assertSelected(t, model, "b")
	assertValue(t, model, "a", 10)
}

func TestCopyWritesSelectedValue(t *testing.T) {
	var copied string
	model := newTestModel(t, func(cfg *Config) {
		cfg.Clipboard = func(text string) error {
			copied = text
			return nil
		}
	})
	sendKeys(t, model, "right", "y")
	if copied != "20.0 m" {
		t.Fatalf("expected clipboard to receive 20.0 m, got %q", copied)
	}
	if model.statusMessage.level != statusSuccess {
		t.Fatalf("expected success status, got %+v", model.statusMessage)
	}
}

func TestCopyFailureReportsCode(t *testing.T) {
	model := newTestModel(t, func(cfg *Config) {
		cfg.Clipboard = func(string) error { return errors.New("no display") }
	})
	sendKeys(t, model, "y")
	if model.statusMessage.level != statusError {
		t.Fatalf("expected error status, got %+v", model.statusMessage)
	}
	if !strings.Contains(model.statusMessage.text, string(errdef.CodeClipboard)) {
		t.Fatalf("expected clipboard code in status, got %q", model.statusMessage.text)
	}
}

func TestResetRestoresDistances(t *testing.T) {
	model := newTestModel(t)
	sendKeys(t, model, "enter", "right", "esc", "ctrl+r")
	assertValue(t, model, "a", 10)
	if model.Dirty() {
		t.Fatalf("expected reset to clear dirty state")
	}
}

func TestSaveWritesDataFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "launches.yaml")
	model := newTestModel(t, func(cfg *Config) {
		cfg.SourcePath = path
	})
	sendKeys(t, model, "enter", "right", "esc", "ctrl+s")
	if model.statusMessage.level != statusSuccess {
		t.Fatalf("expected save success, got %+v", model.statusMessage)
	}
	if model.Dirty() {
		t.Fatalf("expected saved values to become the baseline")
	}
	saved, err := dataset.Load(path)
	if err != nil {
		t.Fatalf("load saved data set: %v", err)
	}
	for _, l := range saved.Launches {
		if l.ID == "a" && l.Distance != 11 {
			t.Fatalf("expected saved distance 11, got %v", l.Distance)
		}
	}
}

func TestSaveWithoutFileWarns(t *testing.T) {
	model := newTestModel(t)
	if cmd := model.handleKey(keyMsgFor("ctrl+s")); cmd != nil {
		t.Fatalf("expected no save command without a data file")
	}
	if model.statusMessage.level != statusWarn {
		t.Fatalf("expected warning, got %+v", model.statusMessage)
	}
	if !strings.Contains(model.statusMessage.text, "(dataset)") {
		t.Fatalf("expected dataset error code in %q", model.statusMessage.text)
	}
	if model.keys.entries["save_values"].Enabled() {
		t.Fatalf("expected save help disabled without a data file")
	}
}

func TestQuitReturnsQuitCommand(t *testing.T) {
	model := newTestModel(t)
	cmd := model.handleKey(keyMsgFor("q"))
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected tea.QuitMsg")
	}
	if model.View() != "" {
		t.Fatalf("expected empty view after quit")
	}
}

func TestSortsAreJournalled(t *testing.T) {
	ctx := context.Background()
	store, err := history.Open(ctx, filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("open history: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	sess, err := store.BeginSession(ctx, "test launches")
	if err != nil {
		t.Fatalf("begin session: %v", err)
	}

	model := newTestModel(t, func(cfg *Config) {
		cfg.History = store
		cfg.Session = sess
	})
	sendKeys(t, model, "enter", "right", "shift+right", "esc")

	entries, err := store.Entries(ctx, sess.ID, 0)
	if err != nil {
		t.Fatalf("entries: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 journal entries, got %d", len(entries))
	}
	latest := entries[0]
	if latest.ItemID != "a" || latest.Label != "Alpha" || latest.Key != "shift+right" {
		t.Fatalf("unexpected latest entry %+v", latest)
	}
	if latest.OldValue != 11 || latest.NewValue != 13 {
		t.Fatalf("expected 11 -> 13, got %v -> %v", latest.OldValue, latest.NewValue)
	}
}

func TestFullHelpShowsBuildAndRecentSorts(t *testing.T) {
	ctx := context.Background()
	store, err := history.Open(ctx, filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("open history: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	sess, err := store.BeginSession(ctx, "test launches")
	if err != nil {
		t.Fatalf("begin session: %v", err)
	}

	model := newTestModel(t, func(cfg *Config) {
		cfg.History = store
		cfg.Session = sess
		cfg.Version = "v1.4.0"
		cfg.ThemeKey = "nord"
	})
	sendKeys(t, model, "enter", "right", "esc")
	if strings.Contains(model.View(), "v1.4.0") {
		t.Fatalf("expected build line only with the full help")
	}

	sendKeys(t, model, "?")
	view := model.View()
	for _, want := range []string{"groupsort v1.4.0", "theme nord", "Alpha 10.0 → 11.0 m (right)"} {
		if !strings.Contains(view, want) {
			t.Fatalf("expected %q in full help view:\n%s", want, view)
		}
	}
}

func TestStartupSummarisesPreviousSession(t *testing.T) {
	ctx := context.Background()
	store, err := history.Open(ctx, filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("open history: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	prev, err := store.BeginSession(ctx, "old launches")
	if err != nil {
		t.Fatalf("begin session: %v", err)
	}
	for _, v := range []float64{11, 12} {
		if _, err := store.Append(ctx, history.Entry{
			SessionID: prev.ID,
			ItemID:    "a",
			Label:     "Alpha",
			OldValue:  v - 1,
			NewValue:  v,
		}); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	if err := store.EndSession(ctx, prev.ID); err != nil {
		t.Fatalf("end session: %v", err)
	}
	cur, err := store.BeginSession(ctx, "test launches")
	if err != nil {
		t.Fatalf("begin session: %v", err)
	}

	model := newTestModel(t, func(cfg *Config) {
		cfg.History = store
		cfg.Session = cur
	})
	text := model.statusMessage.text
	if !strings.Contains(text, "Last session on old launches") || !strings.Contains(text, "2 sorts") {
		t.Fatalf("expected previous session summary, got %q", text)
	}
}

func TestGrabSpanEndsOnBlur(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	inst, err := telemetry.New(telemetry.Config{ServiceName: "groupsort-test"}, telemetry.WithSpanProcessor(recorder))
	if err != nil {
		t.Fatalf("telemetry: %v", err)
	}
	t.Cleanup(func() { _ = inst.Shutdown(context.Background()) })

	model := newTestModel(t, func(cfg *Config) {
		cfg.Telemetry = inst
	})
	sendKeys(t, model, "enter", "right")
	if len(recorder.Ended()) != 0 {
		t.Fatalf("expected grab span to stay open while grabbed")
	}

	updated, _ := model.Update(tea.BlurMsg{})
	*model = updated.(Model)

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 ended span, got %d", len(spans))
	}
	var reason string
	for _, kv := range spans[0].Attributes() {
		if string(kv.Key) == "groupsort.release.reason" {
			reason = kv.Value.AsString()
		}
	}
	if reason != "blur" {
		t.Fatalf("expected release reason blur, got %q", reason)
	}
	if len(spans[0].Events()) != 1 {
		t.Fatalf("expected one sort event, got %d", len(spans[0].Events()))
	}
}

package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/unkn0wn-root/groupsort/internal/bindings"
	"github.com/unkn0wn-root/groupsort/internal/dataset"
	"github.com/unkn0wn-root/groupsort/internal/errdef"
	"github.com/unkn0wn-root/groupsort/internal/groupsort"
	"github.com/unkn0wn-root/groupsort/internal/ui/scroll"
)

const wheelKey = "wheel"

func (m Model) Init() tea.Cmd {
	return waitForSourceChange(m.cfg.Watcher)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch typed := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = typed.Width
		m.height = typed.Height
		m.help.Width = max(typed.Width-4, 0)
		m.ready = true
		m.alignSelection()
	case tea.KeyMsg:
		if cmd := m.handleKey(typed); cmd != nil {
			cmds = append(cmds, cmd)
		}
	case tea.MouseMsg:
		m.handleMouse(typed)
	case tea.FocusMsg:
		if !m.parked {
			m.dispatch(groupsort.Focus{}, "")
		}
	case tea.BlurMsg:
		m.dispatch(groupsort.Blur{}, "")
	case statusMsg:
		m.setStatusMessage(typed)
	case savedMsg:
		if typed.err != nil {
			m.setStatusMessage(errorStatus("Save", typed.err))
			break
		}
		m.data.MarkSaved()
		m.setStatusMessage(statusMsg{text: fmt.Sprintf("Saved %s", typed.path), level: statusSuccess})
	case sourceChangedMsg:
		m.handleSourceChange(typed.event)
		cmds = append(cmds, waitForSourceChange(m.cfg.Watcher))
	case copiedMsg:
		if typed.err != nil {
			m.setStatusMessage(errorStatus("Copy", typed.err))
			break
		}
		m.setStatusMessage(statusMsg{text: fmt.Sprintf("Copied %s", typed.text), level: statusSuccess})
	}

	return m, batchCommands(cmds...)
}

// dispatch runs ev through the interaction and folds the effects it
// produced back into the view. key is recorded with grabs and sorts.
func (m *Model) dispatch(ev groupsort.Event, key string) {
	m.sess.lastKey = key
	err := m.sess.interaction.Handle(ev)
	m.sess.lastKey = ""
	if err != nil {
		m.setStatusMessage(statusMsg{text: err.Error(), level: statusError})
		return
	}
	reason := key
	if reason == "" {
		reason = ev.String()
	}
	m.sess.syncGrab(reason)
	m.drainNotices()
	m.keys.setSortEnabled(m.State().Enabled)
	m.alignSelection()
}

func canonicalShortcutKey(msg tea.KeyMsg) string {
	return bindings.NormalizeKeyString(msg.String())
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	key := canonicalShortcutKey(msg)
	if key == "" {
		return nil
	}

	if !m.hasPendingChord && m.repeatChordActive {
		if handled, cmd := m.resolveChord(m.repeatChordPrefix, key); handled {
			return cmd
		}
		m.repeatChordActive = false
		m.repeatChordPrefix = ""
	}
	if m.hasPendingChord {
		prefix := m.pendingChord
		m.pendingChord = ""
		m.hasPendingChord = false
		if handled, cmd := m.resolveChord(prefix, key); handled {
			return cmd
		}
		prefixCmd := m.handleShortcutKey(prefix)
		return batchCommands(prefixCmd, m.handleKey(msg))
	}
	if m.canStartChord(key) {
		m.pendingChord = key
		m.hasPendingChord = true
		return nil
	}
	return m.handleShortcutKey(key)
}

func (m *Model) handleShortcutKey(key string) tea.Cmd {
	if binding, ok := m.bindingsMap.MatchSingle(key); ok {
		return m.runShortcutBinding(binding)
	}
	// unbound digits reach the direct-value controller as typed
	if _, ok := groupsort.DigitKey(key); ok {
		m.sendKey(key)
	}
	return nil
}

func (m *Model) canStartChord(key string) bool {
	if key == "" || m.bindingsMap == nil {
		return false
	}
	return m.bindingsMap.HasChordPrefix(key)
}

func (m *Model) resolveChord(prefix, next string) (bool, tea.Cmd) {
	if m.bindingsMap == nil || prefix == "" || next == "" {
		return false, nil
	}
	binding, ok := m.bindingsMap.ResolveChord(prefix, next)
	if !ok {
		return false, nil
	}
	if binding.Repeatable {
		m.repeatChordPrefix = prefix
		m.repeatChordActive = true
	} else {
		m.repeatChordActive = false
		m.repeatChordPrefix = ""
	}
	return true, m.runShortcutBinding(binding)
}

func (m *Model) runShortcutBinding(binding bindings.Binding) tea.Cmd {
	if sortKey, ok := bindings.SortKey(binding.Action); ok {
		m.sendKey(sortKey)
		return nil
	}
	switch binding.Action {
	case bindings.ActionToggleFocus:
		m.toggleFocus()
	case bindings.ActionToggleEnabled:
		enabled := !m.State().Enabled
		m.dispatch(groupsort.SetEnabled{Enabled: enabled}, "")
		if enabled {
			m.setStatusMessage(statusMsg{text: "Sorting enabled", level: statusInfo})
		} else {
			m.setStatusMessage(statusMsg{text: "Sorting disabled", level: statusWarn})
		}
	case bindings.ActionNarrowRange:
		m.resizeRange(-1)
	case bindings.ActionWidenRange:
		m.resizeRange(1)
	case bindings.ActionCopyValue:
		return m.copySelectedValue()
	case bindings.ActionResetValues:
		m.resetValues()
	case bindings.ActionSaveValues:
		return m.saveValues()
	case bindings.ActionToggleHelp:
		m.showHelp = !m.showHelp
		m.help.ShowAll = m.showHelp
		m.alignSelection()
	case bindings.ActionQuit:
		m.quitting = true
		return tea.Quit
	}
	return nil
}

// sendKey delivers a key press to the interaction. The first key after
// pointer input only hands the group back to the keyboard.
func (m *Model) sendKey(key string) {
	state := m.State()
	if !state.Focused {
		m.setStatusMessage(statusMsg{
			text:  fmt.Sprintf("Press %s to focus the launches", m.keyHint(bindings.ActionToggleFocus)),
			level: statusInfo,
		})
		return
	}
	if !state.KeyboardFocused && !state.HasSelection {
		m.pointerItem = ""
		m.dispatch(groupsort.Focus{}, "")
		m.setStatusMessage(statusMsg{text: "Keyboard sorting resumed", level: statusInfo})
		return
	}
	m.pointerItem = ""
	m.dispatch(groupsort.KeyDown{Key: key}, key)
}

func (m *Model) toggleFocus() {
	if m.State().Focused {
		m.parked = true
		m.dispatch(groupsort.Blur{}, "")
		return
	}
	m.parked = false
	m.dispatch(groupsort.Focus{}, "")
}

// resizeRange narrows (dir < 0) or widens (dir > 0) the active range around
// its centre, never past the data set bounds.
func (m *Model) resizeRange(dir float64) {
	bounds := m.data.Bounds()
	cur := m.data.Range()
	step := bounds.Length() * rangeStepRatio / 2
	next := groupsort.NewRange(
		max(cur.Min-dir*step, bounds.Min),
		min(cur.Max+dir*step, bounds.Max),
	)
	switch {
	case dir < 0 && next.Length() < bounds.Length()*minRangeRatio:
		m.setStatusMessage(statusMsg{text: "Range cannot be narrowed further", level: statusWarn})
		return
	case next == cur:
		m.setStatusMessage(statusMsg{text: "Range already spans the data set", level: statusInfo})
		return
	}
	m.data.SetRange(next)
	m.dispatch(groupsort.RangeChanged{Range: next}, "")
	unit := m.data.Unit()
	m.setStatusMessage(statusMsg{
		text:  fmt.Sprintf("Range %s to %s", formatValue(next.Min, unit), formatValue(next.Max, unit)),
		level: statusInfo,
	})
}

func (m *Model) selectedItem() (string, bool) {
	if id, ok := m.State().Selection(); ok {
		return id, true
	}
	if m.pointerItem != "" {
		return m.pointerItem, true
	}
	return "", false
}

func (m *Model) copySelectedValue() tea.Cmd {
	id, ok := m.selectedItem()
	if !ok {
		m.setStatusMessage(statusMsg{text: "No launch selected", level: statusWarn})
		return nil
	}
	value, _ := m.data.Value(id)
	text := formatValue(value, m.data.Unit())
	write := m.cfg.Clipboard
	return func() tea.Msg {
		err := write(text)
		return copiedMsg{text: text, err: errdef.Wrap(errdef.CodeClipboard, err, "write clipboard")}
	}
}

func (m *Model) resetValues() {
	if !m.data.Dirty() {
		m.setStatusMessage(statusMsg{text: "Nothing to reset", level: statusInfo})
		return
	}
	m.data.Reset()
	m.dispatch(groupsort.RangeChanged{Range: m.data.Range()}, "")
	m.setStatusMessage(statusMsg{text: "Distances reset", level: statusInfo})
}

func (m *Model) saveValues() tea.Cmd {
	path := strings.TrimSpace(m.cfg.SourcePath)
	if path == "" {
		err := errdef.New(errdef.CodeDataset, "no data file to save to (start with -file)")
		m.setStatusMessage(statusMsg{text: errorStatus("Save", err).text, level: statusWarn})
		return nil
	}
	snapshot := m.data.Snapshot()
	w := m.cfg.Watcher
	return func() tea.Msg {
		save := func() error { return dataset.Save(path, snapshot) }
		if w != nil {
			return savedMsg{path: path, err: w.Write(save)}
		}
		return savedMsg{path: path, err: save()}
	}
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	if msg.Action != tea.MouseActionPress {
		return
	}
	id, onRow := m.rowAt(msg.Y)
	switch msg.Button {
	case tea.MouseButtonLeft:
		m.dispatch(groupsort.PointerInteractionStarted{}, "")
		m.pointerItem = ""
		if onRow {
			m.pointerItem = id
		}
	case tea.MouseButtonWheelUp:
		if onRow {
			m.pointerSort(id, 1)
		}
	case tea.MouseButtonWheelDown:
		if onRow {
			m.pointerSort(id, -1)
		}
	}
}

// pointerSort moves a launch by one step from the mouse wheel. It bypasses
// the keyboard interaction but is journalled like a keyboard sort.
func (m *Model) pointerSort(id string, dir float64) {
	state := m.State()
	if !state.Enabled {
		return
	}
	if state.KeyboardFocused || state.HasSelection {
		m.dispatch(groupsort.PointerInteractionStarted{}, "")
	}
	m.pointerItem = id
	old, ok := m.data.Value(id)
	if !ok {
		return
	}
	r := m.data.Range()
	steps := m.cfg.Settings.Sort.Steps().Resolve(r)
	m.data.SetValue(id, r.Clamp(old+dir*steps.Step))
	launch, _ := m.data.Launch(id)
	m.sess.lastKey = wheelKey
	m.sess.sorts++
	m.sess.recordSort(launch, old)
	m.sess.lastKey = ""
	m.drainNotices()
	m.revealItem(id)
}

func (m Model) keyHint(action bindings.ActionID) string {
	if b, ok := m.keys.entries[action]; ok {
		return b.Help().Key
	}
	return string(action)
}

// alignSelection scrolls the launch list so the last changed launch, or
// failing that the selection, stays in view.
func (m *Model) alignSelection() {
	if changed := m.sess.changed; changed != "" {
		m.sess.changed = ""
		m.revealItem(changed)
		return
	}
	id, ok := m.selectedItem()
	if !ok {
		return
	}
	order := m.data.Ordered()
	idx := indexOf(order, id)
	if idx < 0 {
		return
	}
	m.offset = scroll.Align(idx, m.offset, m.viewportRows(), len(order))
}

func (m *Model) revealItem(id string) {
	order := m.data.Ordered()
	idx := indexOf(order, id)
	if idx < 0 {
		return
	}
	m.offset = scroll.Reveal(idx, idx, m.offset, m.viewportRows(), len(order))
}

func indexOf(ids []string, id string) int {
	for i, candidate := range ids {
		if candidate == id {
			return i
		}
	}
	return -1
}

func batchCommands(cmds ...tea.Cmd) tea.Cmd {
	var nonNil []tea.Cmd
	for _, cmd := range cmds {
		if cmd != nil {
			nonNil = append(nonNil, cmd)
		}
	}
	switch len(nonNil) {
	case 0:
		return nil
	case 1:
		return nonNil[0]
	default:
		return tea.Batch(nonNil...)
	}
}

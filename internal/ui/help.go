package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"

	"github.com/unkn0wn-root/groupsort/internal/bindings"
	"github.com/unkn0wn-root/groupsort/internal/theme"
)

const helpKeysPerAction = 2

var (
	shortHelpActions = []bindings.ActionID{
		bindings.ActionGrabToggle,
		bindings.ActionStepInc,
		bindings.ActionToggleHelp,
		bindings.ActionQuit,
	}
	fullHelpActions = [][]bindings.ActionID{
		{
			bindings.ActionGrabToggle,
			bindings.ActionRelease,
			bindings.ActionStepDec,
			bindings.ActionStepInc,
			bindings.ActionShiftStepDec,
			bindings.ActionShiftStepInc,
		},
		{
			bindings.ActionPageDec,
			bindings.ActionPageInc,
			bindings.ActionJumpMin,
			bindings.ActionJumpMax,
		},
		{
			bindings.ActionToggleFocus,
			bindings.ActionToggleEnabled,
			bindings.ActionNarrowRange,
			bindings.ActionWidenRange,
		},
		{
			bindings.ActionCopyValue,
			bindings.ActionResetValues,
			bindings.ActionSaveValues,
			bindings.ActionToggleHelp,
			bindings.ActionQuit,
		},
	}
)

var keyGlyphs = map[string]string{
	"left":    "←",
	"right":   "→",
	"up":      "↑",
	"down":    "↓",
	"shift+/": "?",
	"pgdown":  "pgdn",
}

// keyMap adapts the remappable bindings to bubbles/help.
type keyMap struct {
	entries map[bindings.ActionID]key.Binding
}

var _ help.KeyMap = keyMap{}

func newKeyMap(m *bindings.Map) keyMap {
	entries := make(map[bindings.ActionID]key.Binding)
	for _, action := range bindings.KnownActions() {
		bound := m.Bindings(action)
		if len(bound) == 0 {
			continue
		}
		keys := make([]string, 0, len(bound))
		labels := make([]string, 0, helpKeysPerAction)
		for _, b := range bound {
			seq := strings.Join(b.Steps, " ")
			keys = append(keys, seq)
			if len(labels) < helpKeysPerAction {
				labels = append(labels, keyLabel(b.Steps))
			}
		}
		entries[action] = key.NewBinding(
			key.WithKeys(keys...),
			key.WithHelp(strings.Join(labels, "/"), bindings.Help(action)),
		)
	}
	return keyMap{entries: entries}
}

func keyLabel(steps []string) string {
	parts := make([]string, len(steps))
	for i, step := range steps {
		if glyph, ok := keyGlyphs[step]; ok {
			parts[i] = glyph
			continue
		}
		parts[i] = step
	}
	return strings.Join(parts, " ")
}

func (k keyMap) setEnabled(action bindings.ActionID, enabled bool) {
	b, ok := k.entries[action]
	if !ok {
		return
	}
	b.SetEnabled(enabled)
	k.entries[action] = b
}

func (k keyMap) setSaveEnabled(enabled bool) {
	k.setEnabled(bindings.ActionSaveValues, enabled)
}

// setSortEnabled greys out the keys the interaction ignores while disabled.
func (k keyMap) setSortEnabled(enabled bool) {
	for _, group := range fullHelpActions[:2] {
		for _, action := range group {
			k.setEnabled(action, enabled)
		}
	}
}

func (k keyMap) collect(actions []bindings.ActionID) []key.Binding {
	out := make([]key.Binding, 0, len(actions))
	for _, action := range actions {
		if b, ok := k.entries[action]; ok {
			out = append(out, b)
		}
	}
	return out
}

func (k keyMap) ShortHelp() []key.Binding {
	return k.collect(shortHelpActions)
}

func (k keyMap) FullHelp() [][]key.Binding {
	out := make([][]key.Binding, 0, len(fullHelpActions))
	for _, group := range fullHelpActions {
		if col := k.collect(group); len(col) > 0 {
			out = append(out, col)
		}
	}
	return out
}

func newHelpModel(th theme.Theme) help.Model {
	h := help.New()
	h.Styles.ShortKey = th.HelpKey
	h.Styles.ShortDesc = th.HelpDesc
	h.Styles.ShortSeparator = th.HelpDesc
	h.Styles.FullKey = th.HelpKey
	h.Styles.FullDesc = th.HelpDesc
	h.Styles.FullSeparator = th.HelpDesc
	h.Styles.Ellipsis = th.HelpDesc
	return h
}

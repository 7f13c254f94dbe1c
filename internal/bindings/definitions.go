package bindings

const (
	ActionGrabToggle    ActionID = "grab_toggle"
	ActionRelease       ActionID = "release"
	ActionStepDec       ActionID = "step_dec"
	ActionStepInc       ActionID = "step_inc"
	ActionShiftStepDec  ActionID = "shift_step_dec"
	ActionShiftStepInc  ActionID = "shift_step_inc"
	ActionPageDec       ActionID = "page_dec"
	ActionPageInc       ActionID = "page_inc"
	ActionJumpMin       ActionID = "jump_min"
	ActionJumpMax       ActionID = "jump_max"
	ActionToggleFocus   ActionID = "toggle_focus"
	ActionToggleEnabled ActionID = "toggle_enabled"
	ActionNarrowRange   ActionID = "narrow_range"
	ActionWidenRange    ActionID = "widen_range"
	ActionCopyValue     ActionID = "copy_value"
	ActionResetValues   ActionID = "reset_values"
	ActionSaveValues    ActionID = "save_values"
	ActionToggleHelp    ActionID = "toggle_help"
	ActionQuit          ActionID = "quit"
)

type definition struct {
	id         ActionID
	help       string
	defaults   [][]string
	repeatable bool
	// sort actions are delivered to the interaction as this key
	sortKey    string
	singleOnly bool
}

var definitions = []definition{
	{
		id:         ActionGrabToggle,
		help:       "grab / release",
		defaults:   [][]string{{"enter"}, {"space"}},
		sortKey:    "enter",
		singleOnly: true,
	},
	{
		id:         ActionRelease,
		help:       "cancel grab",
		defaults:   [][]string{{"esc"}},
		sortKey:    "esc",
		singleOnly: true,
	},
	{
		id:         ActionStepDec,
		help:       "step down",
		defaults:   [][]string{{"left"}, {"down"}, {"a"}, {"s"}, {"h"}, {"j"}},
		repeatable: true,
		sortKey:    "left",
	},
	{
		id:         ActionStepInc,
		help:       "step up",
		defaults:   [][]string{{"right"}, {"up"}, {"d"}, {"w"}, {"l"}, {"k"}},
		repeatable: true,
		sortKey:    "right",
	},
	{
		id:         ActionShiftStepDec,
		help:       "big step down",
		defaults:   [][]string{{"shift+left"}, {"shift+down"}, {"shift+a"}, {"shift+s"}},
		repeatable: true,
		sortKey:    "shift+left",
	},
	{
		id:         ActionShiftStepInc,
		help:       "big step up",
		defaults:   [][]string{{"shift+right"}, {"shift+up"}, {"shift+d"}, {"shift+w"}},
		repeatable: true,
		sortKey:    "shift+right",
	},
	{
		id:         ActionPageDec,
		help:       "page down",
		defaults:   [][]string{{"pgdown"}},
		repeatable: true,
		sortKey:    "pgdown",
	},
	{
		id:         ActionPageInc,
		help:       "page up",
		defaults:   [][]string{{"pgup"}},
		repeatable: true,
		sortKey:    "pgup",
	},
	{
		id:       ActionJumpMin,
		help:     "jump to minimum",
		defaults: [][]string{{"home"}, {"g", "g"}},
		sortKey:  "home",
	},
	{
		id:       ActionJumpMax,
		help:     "jump to maximum",
		defaults: [][]string{{"end"}, {"shift+g"}},
		sortKey:  "end",
	},
	{
		id:       ActionToggleFocus,
		help:     "focus / blur group",
		defaults: [][]string{{"tab"}},
	},
	{
		id:       ActionToggleEnabled,
		help:     "enable / disable",
		defaults: [][]string{{"ctrl+e"}},
	},
	{
		id:         ActionNarrowRange,
		help:       "narrow range",
		defaults:   [][]string{{"["}},
		repeatable: true,
	},
	{
		id:         ActionWidenRange,
		help:       "widen range",
		defaults:   [][]string{{"]"}},
		repeatable: true,
	},
	{
		id:       ActionCopyValue,
		help:     "copy value",
		defaults: [][]string{{"y"}},
	},
	{
		id:       ActionResetValues,
		help:     "reset values",
		defaults: [][]string{{"ctrl+r"}},
	},
	{
		id:       ActionSaveValues,
		help:     "save data set",
		defaults: [][]string{{"ctrl+s"}},
	},
	{
		id:       ActionToggleHelp,
		help:     "toggle help",
		defaults: [][]string{{"shift+/"}},
	},
	{
		id:       ActionQuit,
		help:     "quit",
		defaults: [][]string{{"q"}, {"ctrl+c"}},
	},
}

var definitionLookup = func() map[ActionID]definition {
	out := make(map[ActionID]definition, len(definitions))
	for _, def := range definitions {
		out[def.id] = def
	}
	return out
}()

// SortKey returns the key an action is delivered to the interaction as.
// Actions that do not sort or select report false.
func SortKey(action ActionID) (string, bool) {
	def, ok := definitionLookup[action]
	if !ok || def.sortKey == "" {
		return "", false
	}
	return def.sortKey, true
}

// Help returns the short description of an action.
func Help(action ActionID) string {
	return definitionLookup[action].help
}

package groupsort

import (
	"math"
	"strings"
	"unicode"
)

// KeyCombo classifies a key press for sorting and selection.
type KeyCombo uint8

const (
	ComboUnrecognized KeyCombo = iota
	ComboHome
	ComboEnd
	ComboPageUp
	ComboPageDown
	ComboStepNeg
	ComboStepPos
	ComboShiftStepNeg
	ComboShiftStepPos
)

func (c KeyCombo) String() string {
	switch c {
	case ComboHome:
		return "home"
	case ComboEnd:
		return "end"
	case ComboPageUp:
		return "page-up"
	case ComboPageDown:
		return "page-down"
	case ComboStepNeg:
		return "step-"
	case ComboStepPos:
		return "step+"
	case ComboShiftStepNeg:
		return "shift-step-"
	case ComboShiftStepPos:
		return "shift-step+"
	default:
		return "unrecognized"
	}
}

// Steps holds the increments applied by unit, shift and page keys.
// A zero field falls back to its default when resolved against a range.
type Steps struct {
	Step  float64
	Shift float64
	Page  float64
}

const (
	DefaultStep      = 1
	DefaultShiftStep = 2
	pageDivisions    = 5
)

// DefaultSteps returns unit and shift steps; the page step is derived from
// the range on every event.
func DefaultSteps() Steps {
	return Steps{Step: DefaultStep, Shift: DefaultShiftStep}
}

// Resolve fills unset steps for the given range.
func (s Steps) Resolve(r Range) Steps {
	out := s
	if out.Step <= 0 {
		out.Step = DefaultStep
	}
	if out.Shift <= 0 {
		out.Shift = DefaultShiftStep
	}
	if out.Page <= 0 {
		out.Page = math.Ceil(r.Length() / pageDivisions)
	}
	return out
}

var comboTable = map[string]KeyCombo{
	"home":        ComboHome,
	"end":         ComboEnd,
	"pgup":        ComboPageUp,
	"pgdown":      ComboPageDown,
	"left":        ComboStepNeg,
	"a":           ComboStepNeg,
	"down":        ComboStepNeg,
	"s":           ComboStepNeg,
	"right":       ComboStepPos,
	"d":           ComboStepPos,
	"up":          ComboStepPos,
	"w":           ComboStepPos,
	"shift+left":  ComboShiftStepNeg,
	"shift+a":     ComboShiftStepNeg,
	"shift+down":  ComboShiftStepNeg,
	"shift+s":     ComboShiftStepNeg,
	"shift+right": ComboShiftStepPos,
	"shift+d":     ComboShiftStepPos,
	"shift+up":    ComboShiftStepPos,
	"shift+w":     ComboShiftStepPos,
}

var keyAliases = map[string]string{
	"arrowleft":  "left",
	"arrowright": "right",
	"arrowup":    "up",
	"arrowdown":  "down",
	"pageup":     "pgup",
	"page_up":    "pgup",
	"pagedown":   "pgdown",
	"page_down":  "pgdown",
	"pgdn":       "pgdown",
	"return":     "enter",
	"escape":     "esc",
	"spacebar":   "space",
	"control":    "ctrl",
	"option":     "alt",
}

// DecodeKey classifies a key string such as "right", "shift+left", "D" or
// "pageup". Keys outside the sorting set decode to ComboUnrecognized.
func DecodeKey(key string) KeyCombo {
	if combo, ok := comboTable[CanonicalKey(key)]; ok {
		return combo
	}
	return ComboUnrecognized
}

// Delta returns the signed step for a combo; Home and End span the whole
// range. The result is not clamped.
func (c KeyCombo) Delta(steps Steps, r Range) (float64, bool) {
	steps = steps.Resolve(r)
	switch c {
	case ComboHome:
		return -r.Length(), true
	case ComboEnd:
		return r.Length(), true
	case ComboPageDown:
		return -steps.Page, true
	case ComboPageUp:
		return steps.Page, true
	case ComboStepNeg:
		return -steps.Step, true
	case ComboStepPos:
		return steps.Step, true
	case ComboShiftStepNeg:
		return -steps.Shift, true
	case ComboShiftStepPos:
		return steps.Shift, true
	default:
		return 0, false
	}
}

// DeltaForKey decodes key and returns its delta, or false when the key is
// not a sorting key.
func DeltaForKey(key string, steps Steps, r Range) (float64, bool) {
	return DecodeKey(key).Delta(steps, r)
}

// DigitKey reports the digit of a single-digit key press.
func DigitKey(key string) (int, bool) {
	canon := CanonicalKey(key)
	if len(canon) != 1 || canon[0] < '0' || canon[0] > '9' {
		return 0, false
	}
	return int(canon[0] - '0'), true
}

func isGrabKey(canon string) bool {
	return canon == "enter" || canon == "space"
}

func isReleaseKey(canon string) bool {
	return canon == "esc"
}

// CanonicalKey lower-cases a key string, resolves aliases and orders
// modifiers as ctrl, alt, shift. An upper-case letter becomes shift+letter.
func CanonicalKey(raw string) string {
	if raw == " " {
		return "space"
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	runes := []rune(raw)
	if len(runes) == 1 {
		r := runes[0]
		if unicode.IsLetter(r) && unicode.IsUpper(r) {
			return "shift+" + string(unicode.ToLower(r))
		}
		return strings.ToLower(raw)
	}

	parts := strings.Split(strings.ToLower(raw), "+")
	mods := make(map[string]bool, len(parts))
	var name string
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if alias, ok := keyAliases[part]; ok {
			part = alias
		}
		switch part {
		case "":
			continue
		case "ctrl", "alt", "shift":
			mods[part] = true
		default:
			name = part
		}
	}
	if name == "" {
		return ""
	}
	var b strings.Builder
	for _, mod := range []string{"ctrl", "alt", "shift"} {
		if mods[mod] {
			b.WriteString(mod)
			b.WriteByte('+')
		}
	}
	b.WriteString(name)
	return b.String()
}

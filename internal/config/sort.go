package config

import (
	"math"
	"strings"

	"github.com/unkn0wn-root/groupsort/internal/groupsort"
)

type SortSettings struct {
	Step                 float64 `json:"step"                    toml:"step"`
	ShiftStep            float64 `json:"shift_step"              toml:"shift_step"`
	PageStep             float64 `json:"page_step"               toml:"page_step"`
	Min                  float64 `json:"min"                     toml:"min"`
	Max                  float64 `json:"max"                     toml:"max"`
	ClearSelectionOnBlur bool    `json:"clear_selection_on_blur" toml:"clear_selection_on_blur"`
	DisableNumberKeys    bool    `json:"disable_number_keys"     toml:"disable_number_keys"`
	CueScale             int     `json:"cue_scale"               toml:"cue_scale"`
}

const (
	SortStepMin      = 0.01
	SortStepMax      = 1000
	SortShiftStepMin = 0.01
	SortShiftStepMax = 1000
	SortPageStepMin  = 0.01
	SortPageStepMax  = 10000
	SortCueScaleMin  = 1
	SortCueScaleMax  = 4
)

func DefaultSortSettings() SortSettings {
	return SortSettings{
		Step:      groupsort.DefaultStep,
		ShiftStep: groupsort.DefaultShiftStep,
		CueScale:  1,
	}
}

// NormaliseSortSettings clamps steps into sane bounds. A zero page step is
// kept so the page size follows the live range. Min/Max are only honoured
// as a pair; a degenerate pair defers to the data set's own range.
func NormaliseSortSettings(in SortSettings) SortSettings {
	out := DefaultSortSettings()
	out.Step = clampFloat(in.Step, SortStepMin, SortStepMax, groupsort.DefaultStep)
	out.ShiftStep = clampFloat(
		in.ShiftStep,
		SortShiftStepMin,
		SortShiftStepMax,
		groupsort.DefaultShiftStep,
	)
	out.PageStep = clampFloat(in.PageStep, SortPageStepMin, SortPageStepMax, 0)
	if isFinite(in.Min) && isFinite(in.Max) && in.Min != in.Max {
		out.Min, out.Max = in.Min, in.Max
		if out.Min > out.Max {
			out.Min, out.Max = out.Max, out.Min
		}
	}
	out.ClearSelectionOnBlur = in.ClearSelectionOnBlur
	out.DisableNumberKeys = in.DisableNumberKeys
	out.CueScale = clampInt(in.CueScale, SortCueScaleMin, SortCueScaleMax, 1)
	return out
}

func (s SortSettings) Steps() groupsort.Steps {
	return groupsort.Steps{Step: s.Step, Shift: s.ShiftStep, Page: s.PageStep}
}

// RangeOverride reports the configured range, if any.
func (s SortSettings) RangeOverride() (groupsort.Range, bool) {
	if s.Min == s.Max {
		return groupsort.Range{}, false
	}
	return groupsort.NewRange(s.Min, s.Max), true
}

type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

func NormaliseLogLevel(in LogLevel, def LogLevel) LogLevel {
	switch LogLevel(strings.ToLower(strings.TrimSpace(string(in)))) {
	case LogLevelDebug, "trace":
		return LogLevelDebug
	case LogLevelInfo:
		return LogLevelInfo
	case LogLevelWarn, "warning":
		return LogLevelWarn
	case LogLevelError:
		return LogLevelError
	default:
		return def
	}
}

func clampFloat[T ~float64](value, min, max, fallback T) T {
	if value == 0 || !isFinite(float64(value)) {
		return fallback
	}
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

func clampInt(value, min, max, fallback int) int {
	if value == 0 {
		return fallback
	}
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

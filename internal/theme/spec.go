package theme

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type Metadata struct {
	Name        string   `json:"name"        toml:"name"`
	Description string   `json:"description" toml:"description"`
	Author      string   `json:"author"      toml:"author"`
	Version     string   `json:"version"     toml:"version"`
	Tags        []string `json:"tags"        toml:"tags"`
}

// ThemeSpec is the on-disk form of a theme. Every field is optional and
// overrides the builtin it is layered on.
type ThemeSpec struct {
	Metadata *Metadata  `json:"metadata" toml:"metadata"`
	Base     string     `json:"base"     toml:"base"`
	Styles   StylesSpec `json:"styles"   toml:"styles"`
	Colors   ColorsSpec `json:"colors"   toml:"colors"`
}

type StylesSpec struct {
	AppFrame        *StyleSpec `json:"app_frame"        toml:"app_frame"`
	Header          *StyleSpec `json:"header"           toml:"header"`
	HeaderTitle     *StyleSpec `json:"header_title"     toml:"header_title"`
	HeaderValue     *StyleSpec `json:"header_value"     toml:"header_value"`
	HeaderSeparator *StyleSpec `json:"header_separator" toml:"header_separator"`
	RowLabel        *StyleSpec `json:"row_label"        toml:"row_label"`
	RowValue        *StyleSpec `json:"row_value"        toml:"row_value"`
	RowSelected     *StyleSpec `json:"row_selected"     toml:"row_selected"`
	RowGrabbed      *StyleSpec `json:"row_grabbed"      toml:"row_grabbed"`
	RowOutOfRange   *StyleSpec `json:"row_out_of_range" toml:"row_out_of_range"`
	HighlightSolid  *StyleSpec `json:"highlight_solid"  toml:"highlight_solid"`
	HighlightDashed *StyleSpec `json:"highlight_dashed" toml:"highlight_dashed"`
	SortCue         *StyleSpec `json:"sort_cue"         toml:"sort_cue"`
	Hint            *StyleSpec `json:"hint"             toml:"hint"`
	StatusBar       *StyleSpec `json:"status_bar"       toml:"status_bar"`
	StatusBarKey    *StyleSpec `json:"status_bar_key"   toml:"status_bar_key"`
	StatusBarValue  *StyleSpec `json:"status_bar_value" toml:"status_bar_value"`
	HelpKey         *StyleSpec `json:"help_key"         toml:"help_key"`
	HelpDesc        *StyleSpec `json:"help_desc"        toml:"help_desc"`
	Error           *StyleSpec `json:"error"            toml:"error"`
	Success         *StyleSpec `json:"success"          toml:"success"`
}

type ColorsSpec struct {
	BarFill     *string `json:"bar_fill"     toml:"bar_fill"`
	BarEmpty    *string `json:"bar_empty"    toml:"bar_empty"`
	FocusBorder *string `json:"focus_border" toml:"focus_border"`
	BlurBorder  *string `json:"blur_border"  toml:"blur_border"`
}

type StyleSpec struct {
	Foreground       *string `json:"foreground"        toml:"foreground"`
	Background       *string `json:"background"        toml:"background"`
	BorderColor      *string `json:"border_color"      toml:"border_color"`
	BorderBackground *string `json:"border_background" toml:"border_background"`
	BorderStyle      *string `json:"border_style"      toml:"border_style"`
	Bold             *bool   `json:"bold"              toml:"bold"`
	Italic           *bool   `json:"italic"            toml:"italic"`
	Underline        *bool   `json:"underline"         toml:"underline"`
	Faint            *bool   `json:"faint"             toml:"faint"`
	Strikethrough    *bool   `json:"strikethrough"     toml:"strikethrough"`
	Align            *string `json:"align"             toml:"align"`
}

type styleSlot struct {
	name     string
	target   *lipgloss.Style
	override *StyleSpec
}

type colorSlot struct {
	name     string
	target   *lipgloss.Color
	override *string
}

func ApplySpec(base Theme, spec ThemeSpec) (Theme, error) {
	out := base
	styles := []styleSlot{
		{"app_frame", &out.AppFrame, spec.Styles.AppFrame},
		{"header", &out.Header, spec.Styles.Header},
		{"header_title", &out.HeaderTitle, spec.Styles.HeaderTitle},
		{"header_value", &out.HeaderValue, spec.Styles.HeaderValue},
		{"header_separator", &out.HeaderSeparator, spec.Styles.HeaderSeparator},
		{"row_label", &out.RowLabel, spec.Styles.RowLabel},
		{"row_value", &out.RowValue, spec.Styles.RowValue},
		{"row_selected", &out.RowSelected, spec.Styles.RowSelected},
		{"row_grabbed", &out.RowGrabbed, spec.Styles.RowGrabbed},
		{"row_out_of_range", &out.RowOutOfRange, spec.Styles.RowOutOfRange},
		{"highlight_solid", &out.HighlightSolid, spec.Styles.HighlightSolid},
		{"highlight_dashed", &out.HighlightDashed, spec.Styles.HighlightDashed},
		{"sort_cue", &out.SortCue, spec.Styles.SortCue},
		{"hint", &out.Hint, spec.Styles.Hint},
		{"status_bar", &out.StatusBar, spec.Styles.StatusBar},
		{"status_bar_key", &out.StatusBarKey, spec.Styles.StatusBarKey},
		{"status_bar_value", &out.StatusBarValue, spec.Styles.StatusBarValue},
		{"help_key", &out.HelpKey, spec.Styles.HelpKey},
		{"help_desc", &out.HelpDesc, spec.Styles.HelpDesc},
		{"error", &out.Error, spec.Styles.Error},
		{"success", &out.Success, spec.Styles.Success},
	}
	for _, slot := range styles {
		if slot.override == nil {
			continue
		}
		next, err := slot.override.apply(*slot.target)
		if err != nil {
			return Theme{}, fmt.Errorf("%s: %w", slot.name, err)
		}
		*slot.target = next
	}

	colors := []colorSlot{
		{"bar_fill", &out.BarFill, spec.Colors.BarFill},
		{"bar_empty", &out.BarEmpty, spec.Colors.BarEmpty},
		{"focus_border", &out.FocusBorder, spec.Colors.FocusBorder},
		{"blur_border", &out.BlurBorder, spec.Colors.BlurBorder},
	}
	for _, slot := range colors {
		if slot.override == nil {
			continue
		}
		color, err := toColor(slot.name, *slot.override)
		if err != nil {
			return Theme{}, err
		}
		*slot.target = color
	}
	return out, nil
}

func (s *StyleSpec) apply(base lipgloss.Style) (lipgloss.Style, error) {
	if s == nil {
		return base, nil
	}
	current := base
	if s.Foreground != nil {
		color, err := toColor("foreground", *s.Foreground)
		if err != nil {
			return lipgloss.Style{}, err
		}
		current = current.Foreground(color)
	}
	if s.Background != nil {
		color, err := toColor("background", *s.Background)
		if err != nil {
			return lipgloss.Style{}, err
		}
		current = current.Background(color)
	}
	if s.BorderColor != nil {
		color, err := toColor("border_color", *s.BorderColor)
		if err != nil {
			return lipgloss.Style{}, err
		}
		current = current.BorderForeground(color)
	}
	if s.BorderBackground != nil {
		color, err := toColor("border_background", *s.BorderBackground)
		if err != nil {
			return lipgloss.Style{}, err
		}
		current = current.BorderBackground(color)
	}
	if s.BorderStyle != nil {
		normalized := strings.ToLower(strings.TrimSpace(*s.BorderStyle))
		if normalized != "inherit" {
			border, err := parseBorderStyle(normalized)
			if err != nil {
				return lipgloss.Style{}, err
			}
			current = current.BorderStyle(border)
		}
	}
	if s.Bold != nil {
		current = current.Bold(*s.Bold)
	}
	if s.Italic != nil {
		current = current.Italic(*s.Italic)
	}
	if s.Underline != nil {
		current = current.Underline(*s.Underline)
	}
	if s.Faint != nil {
		current = current.Faint(*s.Faint)
	}
	if s.Strikethrough != nil {
		current = current.Strikethrough(*s.Strikethrough)
	}
	if s.Align != nil {
		align, err := parseAlign(*s.Align)
		if err != nil {
			return lipgloss.Style{}, err
		}
		current = current.Align(align)
	}
	return current, nil
}

func toColor(field string, value string) (lipgloss.Color, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", fmt.Errorf("%s: colour value may not be empty", field)
	}
	return lipgloss.Color(trimmed), nil
}

func parseAlign(value string) (lipgloss.Position, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "left", "start", "default", "":
		return lipgloss.Left, nil
	case "center", "centre", "middle":
		return lipgloss.Center, nil
	case "right", "end":
		return lipgloss.Right, nil
	default:
		return lipgloss.Left, fmt.Errorf("align: unknown alignment %q", value)
	}
}

func parseBorderStyle(value string) (lipgloss.Border, error) {
	switch value {
	case "":
		return lipgloss.Border{}, fmt.Errorf("border_style: value may not be empty")
	case "none", "hidden", "off":
		return lipgloss.Border{}, nil
	case "normal", "single":
		return lipgloss.NormalBorder(), nil
	case "rounded":
		return lipgloss.RoundedBorder(), nil
	case "thick", "heavy":
		return lipgloss.ThickBorder(), nil
	case "double":
		return lipgloss.DoubleBorder(), nil
	case "ascii":
		return lipgloss.Border{
			Top:         "-",
			Bottom:      "-",
			Left:        "|",
			Right:       "|",
			TopLeft:     "+",
			TopRight:    "+",
			BottomLeft:  "+",
			BottomRight: "+",
		}, nil
	case "block":
		return lipgloss.BlockBorder(), nil
	case "dashed":
		return DashedBorder(), nil
	default:
		return lipgloss.Border{}, fmt.Errorf("border_style: unknown border style %q", value)
	}
}

package theme

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

type Theme struct {
	AppFrame        lipgloss.Style
	Header          lipgloss.Style
	HeaderTitle     lipgloss.Style
	HeaderValue     lipgloss.Style
	HeaderSeparator lipgloss.Style
	RowLabel        lipgloss.Style
	RowValue        lipgloss.Style
	RowSelected     lipgloss.Style
	RowGrabbed      lipgloss.Style
	RowOutOfRange   lipgloss.Style
	HighlightSolid  lipgloss.Style
	HighlightDashed lipgloss.Style
	SortCue         lipgloss.Style
	Hint            lipgloss.Style
	StatusBar       lipgloss.Style
	StatusBarKey    lipgloss.Style
	StatusBarValue  lipgloss.Style
	HelpKey         lipgloss.Style
	HelpDesc        lipgloss.Style
	Error           lipgloss.Style
	Success         lipgloss.Style
	BarFill         lipgloss.Color
	BarEmpty        lipgloss.Color
	FocusBorder     lipgloss.Color
	BlurBorder      lipgloss.Color
}

// DashedBorder marks a grabbed item. It keeps the rounded corners of the
// solid selection border so the row does not shift when the mode flips.
func DashedBorder() lipgloss.Border {
	return lipgloss.Border{
		Top:         "╌",
		Bottom:      "╌",
		Left:        "╎",
		Right:       "╎",
		TopLeft:     "╭",
		TopRight:    "╮",
		BottomLeft:  "╰",
		BottomRight: "╯",
	}
}

func DefaultTheme() Theme {
	accent := lipgloss.Color("#7D56F4")
	focus := lipgloss.Color("#FFD46A")

	return Theme{
		AppFrame: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#403B59")),
		Header:          lipgloss.NewStyle().Foreground(lipgloss.Color("#E5E1FF")).Padding(0, 1),
		HeaderTitle:     lipgloss.NewStyle().Foreground(accent).Bold(true),
		HeaderValue:     lipgloss.NewStyle().Foreground(lipgloss.Color("#D1CFF6")),
		HeaderSeparator: lipgloss.NewStyle().Foreground(lipgloss.Color("#867CC1")).Bold(true),
		RowLabel:        lipgloss.NewStyle().Foreground(lipgloss.Color("#E6E1FF")),
		RowValue:        lipgloss.NewStyle().Foreground(lipgloss.Color("#A6A1BB")),
		RowSelected: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#0F111A")).
			Background(focus).
			Bold(true),
		RowGrabbed: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FDFBFF")).
			Background(accent).
			Bold(true),
		RowOutOfRange: lipgloss.NewStyle().Foreground(lipgloss.Color("#5E5A72")).Faint(true),
		HighlightSolid: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(focus),
		HighlightDashed: lipgloss.NewStyle().
			BorderStyle(DashedBorder()).
			BorderForeground(accent),
		SortCue:        lipgloss.NewStyle().Foreground(lipgloss.Color("#FF8B39")).Bold(true),
		Hint:           lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6A86")).Italic(true),
		StatusBar:      lipgloss.NewStyle().Foreground(lipgloss.Color("#A6A1BB")).Padding(0, 1),
		StatusBarKey:   lipgloss.NewStyle().Foreground(lipgloss.Color("#FF8B39")).Bold(true),
		StatusBarValue: lipgloss.NewStyle().Foreground(lipgloss.Color("#EAEAEA")),
		HelpKey:        lipgloss.NewStyle().Foreground(lipgloss.Color("#B9A5FF")).Bold(true),
		HelpDesc:       lipgloss.NewStyle().Foreground(lipgloss.Color("#7d7b87")),
		Error:          lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6E6E")),
		Success:        lipgloss.NewStyle().Foreground(lipgloss.Color("#6EF17E")),
		BarFill:        lipgloss.Color("#5FB3B3"),
		BarEmpty:       lipgloss.Color("#2C2840"),
		FocusBorder:    accent,
		BlurBorder:     lipgloss.Color("#403B59"),
	}
}

// LightTheme is the builtin for terminals with a light background.
func LightTheme() Theme {
	t := DefaultTheme()
	accent := lipgloss.Color("#5B3CC4")
	t.AppFrame = t.AppFrame.BorderForeground(lipgloss.Color("#B8B2D6"))
	t.Header = t.Header.Foreground(lipgloss.Color("#2A2540"))
	t.HeaderTitle = t.HeaderTitle.Foreground(accent)
	t.HeaderValue = t.HeaderValue.Foreground(lipgloss.Color("#4A4560"))
	t.RowLabel = t.RowLabel.Foreground(lipgloss.Color("#1A1626"))
	t.RowValue = t.RowValue.Foreground(lipgloss.Color("#5E5A72"))
	t.RowSelected = t.RowSelected.Background(lipgloss.Color("#F5C542"))
	t.RowGrabbed = t.RowGrabbed.Background(accent)
	t.RowOutOfRange = t.RowOutOfRange.Foreground(lipgloss.Color("#A6A1BB"))
	t.HighlightSolid = t.HighlightSolid.BorderForeground(lipgloss.Color("#C89B00"))
	t.HighlightDashed = t.HighlightDashed.BorderForeground(accent)
	t.SortCue = t.SortCue.Foreground(lipgloss.Color("#D9480F"))
	t.StatusBar = t.StatusBar.Foreground(lipgloss.Color("#4A4560"))
	t.StatusBarValue = t.StatusBarValue.Foreground(lipgloss.Color("#1A1626"))
	t.HelpDesc = t.HelpDesc.Foreground(lipgloss.Color("#6E6A86"))
	t.Error = t.Error.Foreground(lipgloss.Color("#C92A2A"))
	t.Success = t.Success.Foreground(lipgloss.Color("#2B8A3E"))
	t.BarFill = lipgloss.Color("#1C7C7C")
	t.BarEmpty = lipgloss.Color("#E4E0F2")
	t.FocusBorder = accent
	t.BlurBorder = lipgloss.Color("#B8B2D6")
	return t
}

// PreferredKey picks the builtin that matches the terminal background.
func PreferredKey(output *termenv.Output) string {
	if output == nil {
		output = termenv.DefaultOutput()
	}
	if output.HasDarkBackground() {
		return KeyDefault
	}
	return KeyLight
}

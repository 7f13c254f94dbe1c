package ui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/unkn0wn-root/groupsort/internal/bindings"
	"github.com/unkn0wn-root/groupsort/internal/groupsort"
)

const (
	frameLines     = 2
	chromeLines    = 3 // header, hint, status bar
	highlightExtra = 2 // border above and below the highlighted row
	bodyTop        = 3 // frame border, header, hint
	minInnerWidth  = 24
	maxLabelWidth  = 18
	appTitle       = "groupsort"
)

type rowSpan struct {
	id     string
	top    int
	height int
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	inner := max(m.width-2, minInnerWidth)
	state := m.State()
	order := m.data.Ordered()

	sections := []string{
		m.renderHeader(inner, state),
		m.renderHint(inner, state),
		m.renderRows(inner, state, order),
		m.renderStatus(inner, order),
		m.renderHelp(),
	}
	border := m.theme.BlurBorder
	if state.Focused {
		border = m.theme.FocusBorder
	}
	return m.theme.AppFrame.
		BorderForeground(border).
		Width(inner).
		Render(strings.Join(sections, "\n"))
}

func (m Model) bodyRows() int {
	helpLines := lipgloss.Height(m.renderHelp())
	return max(m.height-frameLines-chromeLines-helpLines, 1)
}

// viewportRows is the number of launches that fit with room left for the
// highlight border.
func (m Model) viewportRows() int {
	return max(m.bodyRows()-highlightExtra, 1)
}

func (m Model) highlighted(id string) bool {
	hl := m.sess.highlight
	return hl.Visible && hl.Item == id
}

func (m Model) rowSpans(order []string) []rowSpan {
	limit := m.bodyRows()
	start := min(m.offset, max(len(order)-1, 0))
	var spans []rowSpan
	y := 0
	for _, id := range order[start:] {
		h := 1
		if m.highlighted(id) {
			h += highlightExtra
		}
		if y+h > limit {
			break
		}
		spans = append(spans, rowSpan{id: id, top: y, height: h})
		y += h
	}
	return spans
}

// rowAt maps a terminal row to the launch drawn there.
func (m Model) rowAt(y int) (string, bool) {
	rel := y - bodyTop
	if rel < 0 {
		return "", false
	}
	for _, span := range m.rowSpans(m.data.Ordered()) {
		if rel >= span.top && rel < span.top+span.height {
			return span.id, true
		}
	}
	return "", false
}

func (m Model) renderHeader(inner int, state groupsort.State[string]) string {
	th := m.theme
	r := m.data.Range()
	unit := m.data.Unit()
	parts := []string{
		th.HeaderTitle.Render(appTitle),
		th.HeaderValue.Render(m.data.Name()),
		th.HeaderValue.Render(fmt.Sprintf("%s to %s", formatValue(r.Min, ""), formatValue(r.Max, unit))),
		th.HeaderValue.Render(state.Mode.String()),
	}
	if !state.Enabled {
		parts = append(parts, th.Error.Render("disabled"))
	}
	if m.data.Dirty() {
		parts = append(parts, th.HeaderValue.Render("modified"))
	}
	line := strings.Join(parts, th.HeaderSeparator.Render(" │ "))
	return th.Header.Render(fitLine(line, inner-2))
}

func (m Model) renderHint(inner int, state groupsort.State[string]) string {
	var text string
	switch {
	case !state.Focused:
		text = fmt.Sprintf("%s to focus the launches", m.keyHint(bindings.ActionToggleFocus))
	case !state.Enabled:
		text = fmt.Sprintf("sorting is disabled, %s to enable", m.keyHint(bindings.ActionToggleEnabled))
	case state.Grabbed() && !state.HasKeyboardSorted:
		text = fmt.Sprintf(
			"%s/%s to change the distance, 0-9 to jump, %s to cancel",
			m.keyHint(bindings.ActionStepDec),
			m.keyHint(bindings.ActionStepInc),
			m.keyHint(bindings.ActionRelease),
		)
	case !state.Grabbed() && !state.HasKeyboardSelected:
		text = fmt.Sprintf("%s/%s to pick a launch", m.keyHint(bindings.ActionStepDec), m.keyHint(bindings.ActionStepInc))
	case !state.Grabbed() && !state.HasKeyboardGrabbed:
		text = fmt.Sprintf("%s to grab the selected launch", m.keyHint(bindings.ActionGrabToggle))
	}
	return m.theme.Hint.Render(fitLine(text, inner))
}

func (m Model) renderRows(inner int, state groupsort.State[string], order []string) string {
	limit := m.bodyRows()
	lines := make([]string, 0, limit)
	if len(order) == 0 {
		lines = append(lines, m.theme.Hint.Render(" No launches inside the range"))
	}
	for _, span := range m.rowSpans(order) {
		lines = append(lines, m.renderRow(span.id, inner, state))
	}
	out := strings.Join(lines, "\n")
	if pad := limit - lipgloss.Height(out); pad > 0 {
		out += strings.Repeat("\n", pad)
	}
	return out
}

func (m Model) renderRow(id string, inner int, state groupsort.State[string]) string {
	th := m.theme
	launch, _ := m.data.Launch(id)
	r := m.data.Range()
	unit := m.data.Unit()
	scale := m.cfg.Settings.Sort.CueScale
	hl := m.highlighted(id)

	w := inner - 2
	valueW := lipgloss.Width(formatValue(m.data.Bounds().Max, unit)) + 1
	cueW := 2*max(scale, 1) + 1
	labelW := min(maxLabelWidth, max(w/3, 1))
	barW := max(w-labelW-valueW-cueW-3, 0)

	labelStyle := th.RowLabel
	switch {
	case hl && state.Grabbed():
		labelStyle = th.RowGrabbed
	case hl || id == m.pointerItem:
		labelStyle = th.RowSelected
	}
	if !r.Contains(launch.Distance) {
		labelStyle = th.RowOutOfRange
	}

	value := formatValue(launch.Distance, unit)
	value = strings.Repeat(" ", max(valueW-lipgloss.Width(value), 0)) + value
	cue := SortCue(th.SortCue, m.cueVisible(id, state), scale)

	line := labelStyle.Render(padRight(truncateLabel(launch.Label, labelW), labelW)) +
		" " + m.renderBar(launch.Distance, r, barW) +
		" " + th.RowValue.Render(value) +
		" " + cue
	line = fitLine(line, w)

	if !hl {
		return " " + line
	}
	style := th.HighlightSolid
	if m.sess.highlight.Style == groupsort.HighlightDashed {
		style = th.HighlightDashed
	}
	return style.Width(w).Render(line)
}

func (m Model) cueVisible(id string, state groupsort.State[string]) bool {
	return id == m.sess.cueItem && state.Grabbed() && !state.HasKeyboardSorted
}

func (m Model) renderBar(v float64, r groupsort.Range, width int) string {
	if width <= 0 {
		return ""
	}
	frac := 0.0
	if r.Length() > 0 {
		frac = (v - r.Min) / r.Length()
	}
	filled := int(math.Round(min(max(frac, 0), 1) * float64(width)))
	fill := lipgloss.NewStyle().Foreground(m.theme.BarFill)
	empty := lipgloss.NewStyle().Foreground(m.theme.BarEmpty)
	return fill.Render(strings.Repeat("█", filled)) + empty.Render(strings.Repeat("░", width-filled))
}

func (m Model) renderStatus(inner int, order []string) string {
	th := m.theme
	var left string
	if text := m.statusMessage.text; text != "" {
		switch m.statusMessage.level {
		case statusError:
			left = th.Error.Render(text)
		case statusSuccess:
			left = th.Success.Render(text)
		default:
			left = th.StatusBarValue.Render(text)
		}
	}
	right := th.StatusBarKey.Render("sorts") + " " + th.StatusBarValue.Render(fmt.Sprint(m.sess.sorts))
	if hidden := m.data.Len() - len(order); hidden > 0 {
		right += "  " + th.StatusBarKey.Render("outside") + " " + th.StatusBarValue.Render(fmt.Sprint(hidden))
	}
	width := inner - 2
	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		return th.StatusBar.Render(fitLine(left, width))
	}
	return th.StatusBar.Render(left + strings.Repeat(" ", gap) + right)
}

// renderHelp stacks the full help in two bands so it fits a standard
// terminal width.
func (m Model) renderHelp() string {
	if !m.help.ShowAll {
		return m.help.ShortHelpView(m.keys.ShortHelp())
	}
	groups := m.keys.FullHelp()
	half := (len(groups) + 1) / 2
	return m.help.FullHelpView(groups[:half]) + "\n\n" +
		m.help.FullHelpView(groups[half:]) + "\n\n" +
		m.renderAbout()
}

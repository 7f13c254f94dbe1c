package ui

import (
	"fmt"
	"strings"
)

// sorts listed under the full help
const recentSortLimit = 3

// refreshRecent reloads the latest sorts of this session from the journal.
func (s *session) refreshRecent() {
	if s.history == nil || s.journal.ID == "" {
		return
	}
	entries, err := s.history.Entries(s.ctx, s.journal.ID, recentSortLimit)
	if err != nil {
		s.log.Warn("read history", "err", err)
		s.notify(statusWarn, "History unavailable: %v", err)
		return
	}
	s.recent = entries
}

// previousSessionNote summarises the newest journalled session other than
// the current one.
func (s *session) previousSessionNote() (string, bool) {
	if s.history == nil {
		return "", false
	}
	sessions, err := s.history.Sessions(s.ctx, 2)
	if err != nil {
		s.log.Warn("read history sessions", "err", err)
		return "", false
	}
	for _, prev := range sessions {
		if prev.ID == s.journal.ID {
			continue
		}
		entries, err := s.history.Entries(s.ctx, prev.ID, 0)
		if err != nil {
			s.log.Warn("read history", "session", prev.ID, "err", err)
			return "", false
		}
		return fmt.Sprintf(
			"Last session on %s (%s): %d sorts",
			prev.Dataset,
			prev.StartedAt.Local().Format("Jan 2 15:04"),
			len(entries),
		), true
	}
	return "", false
}

// renderAbout is the band under the full help: build, theme and the
// latest journalled sorts.
func (m Model) renderAbout() string {
	version := strings.TrimSpace(m.cfg.Version)
	if version == "" {
		version = "dev"
	}
	head := appTitle + " " + version
	if key := strings.TrimSpace(m.cfg.ThemeKey); key != "" {
		head += " · theme " + key
	}
	lines := []string{head}
	unit := m.data.Unit()
	for _, e := range m.sess.recent {
		line := fmt.Sprintf("  %s %s → %s", e.Label, formatValue(e.OldValue, ""), formatValue(e.NewValue, unit))
		if e.Key != "" {
			line += " (" + e.Key + ")"
		}
		lines = append(lines, line)
	}
	return m.theme.Hint.Render(strings.Join(lines, "\n"))
}

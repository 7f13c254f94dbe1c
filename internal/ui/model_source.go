package ui

import (
	"fmt"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/unkn0wn-root/groupsort/internal/dataset"
	"github.com/unkn0wn-root/groupsort/internal/errdef"
	"github.com/unkn0wn-root/groupsort/internal/groupsort"
	"github.com/unkn0wn-root/groupsort/internal/watcher"
)

func waitForSourceChange(w *watcher.Watcher) tea.Cmd {
	if w == nil {
		return nil
	}
	return func() tea.Msg {
		evt, ok := <-w.Events()
		if !ok {
			return nil
		}
		return sourceChangedMsg{event: evt}
	}
}

// handleSourceChange reloads the data file after an outside edit unless
// doing so would drop unsaved distances or pull a grabbed launch away.
func (m *Model) handleSourceChange(evt watcher.Event) {
	name := filepath.Base(evt.Path)
	if evt.Kind == watcher.EventMissing {
		m.setStatusMessage(statusMsg{
			text:  fmt.Sprintf("%s was removed from disk", name),
			level: statusWarn,
		})
		return
	}
	if m.data.Dirty() || m.State().Grabbed() {
		m.setStatusMessage(statusMsg{
			text:  fmt.Sprintf("%s changed on disk; saving will overwrite it", name),
			level: statusWarn,
		})
		return
	}
	set, err := dataset.Load(evt.Path)
	if err != nil {
		m.setStatusMessage(errorStatus("Reload", errdef.Wrap(errdef.CodeDataset, err, "reload %s", name)))
		return
	}
	m.data.Replace(set)
	m.dispatch(groupsort.RangeChanged{Range: m.data.Range()}, "")
	m.setStatusMessage(statusMsg{text: fmt.Sprintf("Reloaded %s", name), level: statusInfo})
}

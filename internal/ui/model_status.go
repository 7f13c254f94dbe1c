package ui

import (
	"fmt"
	"strings"

	"github.com/unkn0wn-root/groupsort/internal/errdef"
)

func (m *Model) setStatusMessage(msg statusMsg) {
	msg.text = strings.TrimSpace(msg.text)
	m.statusMessage = msg
	switch msg.level {
	case statusError:
		m.log.Error("status", "text", msg.text)
	case statusWarn:
		m.log.Warn("status", "text", msg.text)
	}
}

func (m *Model) drainNotices() {
	for _, notice := range m.sess.takeNotices() {
		m.setStatusMessage(notice)
	}
}

func errorStatus(action string, err error) statusMsg {
	text := fmt.Sprintf("%s: %v", action, err)
	if code := errdef.CodeOf(err); code != errdef.CodeUnknown {
		text = fmt.Sprintf("%s failed (%s): %v", action, code, err)
	}
	return statusMsg{text: text, level: statusError}
}

func formatValue(v float64, unit string) string {
	if unit == "" {
		return fmt.Sprintf("%.1f", v)
	}
	return fmt.Sprintf("%.1f %s", v, unit)
}

package ui

import "github.com/unkn0wn-root/groupsort/internal/watcher"

type statusLevel int

const (
	statusInfo statusLevel = iota
	statusWarn
	statusError
	statusSuccess
)

type statusMsg struct {
	text  string
	level statusLevel
}

type savedMsg struct {
	path string
	err  error
}

type copiedMsg struct {
	text string
	err  error
}

type sourceChangedMsg struct {
	event watcher.Event
}

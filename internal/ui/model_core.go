package ui

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/unkn0wn-root/groupsort/internal/bindings"
	"github.com/unkn0wn-root/groupsort/internal/config"
	"github.com/unkn0wn-root/groupsort/internal/dataset"
	"github.com/unkn0wn-root/groupsort/internal/groupsort"
	"github.com/unkn0wn-root/groupsort/internal/history"
	"github.com/unkn0wn-root/groupsort/internal/telemetry"
	"github.com/unkn0wn-root/groupsort/internal/theme"
	"github.com/unkn0wn-root/groupsort/internal/watcher"
)

var _ tea.Model = (*Model)(nil)

const (
	// share of the range removed or restored by one narrow/widen step
	rangeStepRatio = 0.1
	minRangeRatio  = 0.1

	defaultWidth  = 80
	defaultHeight = 24
)

type Config struct {
	Data       *dataset.Model
	SourcePath string
	Settings   config.Settings
	Bindings   *bindings.Map
	Theme      *theme.Theme
	ThemeKey   string
	History    *history.Store
	Session    history.Session
	Telemetry  telemetry.Instrumenter
	Logger     *slog.Logger
	Clipboard  func(string) error
	Version    string
	// Watcher reports edits to SourcePath made outside the app. Its path
	// stands in for an empty SourcePath.
	Watcher *watcher.Watcher
}

// Model is the bubbletea front end of a group sort interaction over a
// data set of launches.
type Model struct {
	cfg         Config
	theme       theme.Theme
	data        *dataset.Model
	bindingsMap *bindings.Map
	sess        *session
	log         *slog.Logger

	help help.Model
	keys keyMap

	width       int
	height      int
	ready       bool
	offset      int
	pointerItem string
	// blurred from the keyboard; terminal focus does not refocus the group
	parked   bool
	showHelp bool
	quitting bool

	statusMessage statusMsg

	pendingChord      string
	hasPendingChord   bool
	repeatChordPrefix string
	repeatChordActive bool
}

func New(cfg Config) Model {
	th := theme.DefaultTheme()
	if cfg.Theme != nil {
		th = *cfg.Theme
	}
	data := cfg.Data
	if data == nil {
		data = dataset.NewModel(dataset.Sample())
	}
	cfg.Data = data
	bindingMap := cfg.Bindings
	if bindingMap == nil {
		bindingMap = bindings.DefaultMap()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if cfg.Telemetry == nil {
		cfg.Telemetry = telemetry.Noop()
	}
	if cfg.Clipboard == nil {
		cfg.Clipboard = clipboard.WriteAll
	}
	if strings.TrimSpace(cfg.SourcePath) == "" && cfg.Watcher != nil {
		cfg.SourcePath = cfg.Watcher.Path()
	}
	cfg.Settings.Sort = config.NormaliseSortSettings(cfg.Settings.Sort)

	if r, ok := cfg.Settings.Sort.RangeOverride(); ok {
		data.SetRange(r)
	}

	sess := &session{
		ctx:     context.Background(),
		data:    data,
		history: cfg.History,
		journal: cfg.Session,
		tracer:  cfg.Telemetry,
		log:     logger,
	}
	var mapper groupsort.NumberKeyMapper
	if !cfg.Settings.Sort.DisableNumberKeys {
		mapper = data.MapNumberKey
	}
	sess.interaction = groupsort.NewInteraction[string](data, sess, groupsort.Options{
		Steps:                cfg.Settings.Sort.Steps(),
		Range:                data.Range(),
		NumberKeyMapper:      mapper,
		ClearSelectionOnBlur: cfg.Settings.Sort.ClearSelectionOnBlur,
		Logger:               logger,
	})
	sess.cancelCue = sess.interaction.OnPositionSortCue(sess.positionCue)

	model := Model{
		cfg:         cfg,
		theme:       th,
		data:        data,
		bindingsMap: bindingMap,
		sess:        sess,
		log:         logger,
		help:        newHelpModel(th),
		keys:        newKeyMap(bindingMap),
		width:       defaultWidth,
		height:      defaultHeight,
	}
	model.help.Width = defaultWidth - 4
	model.keys.setSaveEnabled(strings.TrimSpace(cfg.SourcePath) != "")
	model.dispatch(groupsort.Focus{}, "")
	sess.refreshRecent()
	if note, ok := sess.previousSessionNote(); ok {
		model.setStatusMessage(statusMsg{text: note, level: statusInfo})
	}
	return model
}

// State exposes the interaction state for callers that render around the
// model.
func (m Model) State() groupsort.State[string] {
	return m.sess.interaction.State()
}

// Close ends an open grab and detaches the interaction. The model must not
// be used afterwards.
func (m Model) Close() {
	m.sess.endGrab("quit", nil)
	m.sess.cancelCue()
	m.sess.interaction.Dispose()
}

func (m Model) Dirty() bool {
	return m.data.Dirty()
}

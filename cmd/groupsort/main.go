package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/MakeNowJust/heredoc"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/termenv"

	"github.com/unkn0wn-root/groupsort/internal/bindings"
	"github.com/unkn0wn-root/groupsort/internal/config"
	"github.com/unkn0wn-root/groupsort/internal/dataset"
	"github.com/unkn0wn-root/groupsort/internal/history"
	"github.com/unkn0wn-root/groupsort/internal/telemetry"
	"github.com/unkn0wn-root/groupsort/internal/theme"
	"github.com/unkn0wn-root/groupsort/internal/ui"
	"github.com/unkn0wn-root/groupsort/internal/watcher"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run holds the whole program so deferred cleanup happens before the exit
// code is returned.
func run(args []string, stdout, stderr io.Writer) int {
	var (
		filePath    string
		configDir   string
		themeName   string
		logLevel    string
		noHistory   bool
		showDiff    bool
		showVersion bool
	)

	telemetryCfg := telemetry.ConfigFromEnv(os.Getenv)
	errLog := log.New(stderr, "", log.LstdFlags)

	flags := flag.NewFlagSet("groupsort", flag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.StringVar(&filePath, "file", "", "Launch data set to sort (.yaml, .json or .toml)")
	flags.StringVar(&configDir, "config-dir", "", "Config directory (defaults to $"+config.EnvDir+")")
	flags.StringVar(&themeName, "theme", "", "Theme key to use for this run")
	flags.StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn or error")
	flags.BoolVar(&noHistory, "no-history", false, "Do not journal sorts to the history database")
	flags.BoolVar(&showDiff, "diff", false, "Print a diff of changed distances on exit")
	flags.BoolVar(&showVersion, "version", false, "Show groupsort version")
	flags.Usage = func() { usage(flags) }
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	telemetryCfg.Version = version

	if showVersion {
		fmt.Fprintf(stdout, "groupsort %s\n", version)
		fmt.Fprintf(stdout, "  commit: %s\n", commit)
		fmt.Fprintf(stdout, "  built:  %s\n", date)
		return 0
	}

	if filePath == "" && flags.NArg() > 0 {
		filePath = flags.Arg(0)
	}

	dir := configDir
	if dir == "" {
		dir = config.Dir()
	}

	settings, _, err := config.LoadSettings(dir)
	if err != nil {
		errLog.Printf("settings load error: %v", err)
		settings = config.DefaultSettings()
	}
	if filePath == "" {
		filePath = settings.DataFile
	}

	level := config.NormaliseLogLevel(config.LogLevel(logLevel), settings.LogLevel)
	logger, closeLog := openLogger(config.LogPath(dir), level)
	defer closeLog()

	bindingMap, source, err := bindings.Load(dir)
	if err != nil {
		errLog.Printf("bindings load error: %v", err)
		bindingMap = bindings.DefaultMap()
	}
	logger.Debug("bindings loaded", "source", source)

	catalog, err := theme.LoadCatalog([]string{config.ThemeDir(dir)})
	if err != nil {
		logger.Warn("theme load error", "err", err)
	}
	requested := themeName
	if requested == "" {
		requested = settings.DefaultTheme
	}
	def := catalog.Resolve(requested, theme.PreferredKey(nil))
	if requested != "" && !strings.EqualFold(def.Key, strings.TrimSpace(requested)) {
		errLog.Printf("theme %q not found; using %s", requested, def.Key)
	}
	th := def.Theme

	set := dataset.Sample()
	if filePath != "" {
		filePath = filepath.Clean(filePath)
		set, err = dataset.Load(filePath)
		if err != nil {
			errLog.Printf("load data set: %v", err)
			return 1
		}
	}
	data := dataset.NewModel(set)

	var fileWatcher *watcher.Watcher
	if filePath != "" {
		fileWatcher = watcher.New(filePath, watcher.Options{})
		fileWatcher.Start()
		defer fileWatcher.Stop()
	}

	ctx := context.Background()

	provider, err := telemetry.New(telemetryCfg)
	if err != nil {
		if telemetryCfg.Enabled() {
			errLog.Printf("telemetry init error: %v", err)
		}
		provider = telemetry.Noop()
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := provider.Shutdown(ctx); shutdownErr != nil {
			errLog.Printf("telemetry shutdown: %v", shutdownErr)
		}
	}()

	var (
		store   *history.Store
		session history.Session
	)
	if !noHistory && !settings.DisableHistory {
		store, session = openHistory(ctx, config.HistoryPath(dir), set.Name, logger)
	}
	if store != nil {
		defer func() {
			if err := store.EndSession(ctx, session.ID); err != nil {
				logger.Warn("end history session", "err", err)
			}
			if err := store.Close(); err != nil {
				logger.Warn("close history", "err", err)
			}
		}()
	}

	model := ui.New(ui.Config{
		Data:      data,
		Settings:  settings,
		Bindings:  bindingMap,
		Theme:     &th,
		ThemeKey:  def.Key,
		History:   store,
		Session:   session,
		Telemetry: provider,
		Logger:    logger,
		Version:   version,
		Watcher:   fileWatcher,
	})

	program := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithReportFocus(),
	)
	final, runErr := program.Run()
	if m, ok := final.(ui.Model); ok {
		m.Close()
	} else {
		model.Close()
	}
	if runErr != nil {
		fmt.Fprintf(stderr, "error: %v\n", runErr)
		return 1
	}

	if showDiff {
		color := termenv.NewOutput(stdout).ColorProfile() != termenv.Ascii
		if err := printDiff(stdout, set, data.Snapshot(), color); err != nil {
			errLog.Printf("diff: %v", err)
		}
	}
	return 0
}

func usage(flags *flag.FlagSet) {
	out := flags.Output()
	fmt.Fprint(out, heredoc.Doc(`
		Usage: groupsort [flags] [file]

		Sort a group of launches by distance from the keyboard.
		Without a file a built-in sample data set is used.

		Flags:
	`))
	flags.PrintDefaults()
	fmt.Fprint(out, heredoc.Docf(`

		Environment:
		  %s	config directory override
		  OTEL_EXPORTER_OTLP_ENDPOINT	trace grab sessions to an OTLP collector
	`, config.EnvDir))
}

// openLogger writes structured logs to path. The terminal belongs to the
// UI, so logging is discarded when the file cannot be opened.
func openLogger(path string, level config.LogLevel) (*slog.Logger, func()) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil)), func() {}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil)), func() {}
	}
	handler := slog.NewTextHandler(f, &slog.HandlerOptions{Level: slogLevel(level)})
	return slog.New(handler), func() { _ = f.Close() }
}

func slogLevel(level config.LogLevel) slog.Level {
	switch level {
	case config.LogLevelDebug:
		return slog.LevelDebug
	case config.LogLevelWarn:
		return slog.LevelWarn
	case config.LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func openHistory(
	ctx context.Context,
	path string,
	name string,
	logger *slog.Logger,
) (*history.Store, history.Session) {
	store, err := history.Open(ctx, path)
	if err != nil {
		log.Printf("history open error: %v", err)
		return nil, history.Session{}
	}
	session, err := store.BeginSession(ctx, name)
	if err != nil {
		logger.Warn("begin history session", "err", err)
		_ = store.Close()
		return nil, history.Session{}
	}
	return store, session
}

package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadSettingsReturnsDefaultHandleWhenMissing(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvDir, dir)

	settings, handle, err := LoadSettings("")
	if err != nil {
		t.Fatalf("LoadSettings returned error: %v", err)
	}
	expectedPath := filepath.Join(dir, "settings.toml")
	if handle.Path != expectedPath {
		t.Fatalf("expected handle path %q, got %q", expectedPath, handle.Path)
	}
	if handle.Format != SettingsFormatTOML {
		t.Fatalf("expected format %q, got %q", SettingsFormatTOML, handle.Format)
	}
	if settings.Sort.Step != 1 || settings.Sort.ShiftStep != 2 {
		t.Fatalf("expected default steps 1/2, got %v/%v", settings.Sort.Step, settings.Sort.ShiftStep)
	}
	if settings.Sort.PageStep != 0 {
		t.Fatalf("expected derived page step, got %v", settings.Sort.PageStep)
	}
	if settings.LogLevel != LogLevelInfo {
		t.Fatalf("expected info log level, got %q", settings.LogLevel)
	}
	if settings.DefaultTheme != "" {
		t.Fatalf("expected empty default theme, got %q", settings.DefaultTheme)
	}
}

func TestSaveAndLoadSettingsTOML(t *testing.T) {
	dir := t.TempDir()

	want := Settings{
		DefaultTheme: "oceanic",
		DataFile:     "launches.yaml",
		Sort:         SortSettings{Step: 0.5, ClearSelectionOnBlur: true},
	}
	handle := SettingsHandle{Path: filepath.Join(dir, "settings.toml")}
	if err := SaveSettings(want, handle); err != nil {
		t.Fatalf("SaveSettings failed: %v", err)
	}

	got, loaded, err := LoadSettings(dir)
	if err != nil {
		t.Fatalf("LoadSettings failed: %v", err)
	}
	if got.DefaultTheme != want.DefaultTheme {
		t.Fatalf("expected theme %q, got %q", want.DefaultTheme, got.DefaultTheme)
	}
	if got.DataFile != want.DataFile {
		t.Fatalf("expected data file %q, got %q", want.DataFile, got.DataFile)
	}
	if got.Sort.Step != 0.5 || !got.Sort.ClearSelectionOnBlur {
		t.Fatalf("expected sort settings to round trip, got %+v", got.Sort)
	}
	if loaded.Format != SettingsFormatTOML {
		t.Fatalf("expected format %q after save, got %q", SettingsFormatTOML, loaded.Format)
	}
}

func TestLoadSettingsJSON(t *testing.T) {
	dir := t.TempDir()

	payload := map[string]any{
		"default_theme": "sunset",
		"log_level":     "WARNING",
		"sort":          map[string]any{"shift_step": 5000},
	}
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		t.Fatalf("marshal json: %v", err)
	}
	path := filepath.Join(dir, "settings.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write json settings: %v", err)
	}

	got, handle, err := LoadSettings(dir)
	if err != nil {
		t.Fatalf("LoadSettings failed: %v", err)
	}
	if got.DefaultTheme != "sunset" {
		t.Fatalf("expected theme %q, got %q", "sunset", got.DefaultTheme)
	}
	if got.LogLevel != LogLevelWarn {
		t.Fatalf("expected warn log level, got %q", got.LogLevel)
	}
	if got.Sort.ShiftStep != SortShiftStepMax {
		t.Fatalf("expected shift step clamped to %v, got %v", SortShiftStepMax, got.Sort.ShiftStep)
	}
	if handle.Format != SettingsFormatJSON {
		t.Fatalf("expected json format, got %q", handle.Format)
	}
	if handle.Path != path {
		t.Fatalf("expected handle path %q, got %q", path, handle.Path)
	}
}

func TestLoadSettingsRejectsMalformedFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "settings.toml"), []byte("sort = ["), 0o644); err != nil {
		t.Fatalf("write settings: %v", err)
	}
	if _, _, err := LoadSettings(dir); err == nil {
		t.Fatal("expected parse error, got nil")
	}
}

func TestPathsFollowConfigDir(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvDir, dir)

	if got := Dir(); got != dir {
		t.Fatalf("expected config dir %q, got %q", dir, got)
	}
	if got := HistoryPath(""); got != filepath.Join(dir, "history.db") {
		t.Fatalf("unexpected history path %q", got)
	}
	if got := ThemeDir("/tmp/other"); got != filepath.Join("/tmp/other", "themes") {
		t.Fatalf("unexpected theme dir %q", got)
	}
}

package theme

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestLoadCatalogIncludesBuiltinsAndUserThemes(t *testing.T) {
	dir := t.TempDir()

	tomlContent := []byte(`
[metadata]
name = "Oceanic"
author = "QA"

[styles.header]
foreground = "#ddeeff"

[colors]
bar_fill = "#335577"
`)
	if err := os.WriteFile(filepath.Join(dir, "oceanic.toml"), tomlContent, 0o644); err != nil {
		t.Fatalf("write toml theme: %v", err)
	}

	jsonContent := []byte(`{
  "metadata": {
    "name": "Oceanic",
    "author": "QA"
  },
  "base": "light",
  "colors": {
    "focus_border": "#ff9900"
  }
}`)
	if err := os.WriteFile(filepath.Join(dir, "sunset.json"), jsonContent, 0o644); err != nil {
		t.Fatalf("write json theme: %v", err)
	}

	catalog, err := LoadCatalog([]string{dir})
	if err != nil {
		t.Fatalf("LoadCatalog returned error: %v", err)
	}

	for _, key := range []string{KeyDefault, KeyLight} {
		if _, ok := catalog.Get(key); !ok {
			t.Fatalf("expected builtin %q to be present", key)
		}
	}

	oceanic, ok := catalog.Get("oceanic")
	if !ok {
		t.Fatalf("expected oceanic theme to load")
	}
	if oceanic.Metadata.Author != "QA" {
		t.Fatalf("expected author QA, got %q", oceanic.Metadata.Author)
	}
	if oceanic.Theme.BarFill != "#335577" {
		t.Fatalf("expected bar fill override, got %q", oceanic.Theme.BarFill)
	}
	if got := oceanic.Theme.Header.GetForeground(); got != lipgloss.Color("#ddeeff") {
		t.Fatalf("expected header foreground override, got %v", got)
	}

	duplicate, ok := catalog.Get("oceanic-1")
	if !ok {
		t.Fatalf("expected duplicate slug to be uniquified")
	}
	if duplicate.Theme.FocusBorder != "#ff9900" {
		t.Fatalf("expected JSON theme color override, got %q", duplicate.Theme.FocusBorder)
	}
	if duplicate.Theme.BarEmpty != LightTheme().BarEmpty {
		t.Fatalf("expected JSON theme to layer on the light builtin, got %q", duplicate.Theme.BarEmpty)
	}
}

func TestLoadCatalogHandlesMissingDirectory(t *testing.T) {
	catalog, err := LoadCatalog([]string{"/nonexistent/path"})
	if err != nil {
		t.Fatalf("LoadCatalog should not error on missing directories: %v", err)
	}
	if len(catalog.All()) != 2 {
		t.Fatalf("expected only builtin themes, got %d", len(catalog.All()))
	}
}

func TestLoadCatalogReportsBrokenThemeButKeepsOthers(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "bad.toml"), []byte("base = \"neon\""), 0o644); err != nil {
		t.Fatalf("write theme: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "ok.toml"), []byte("[colors]\nbar_fill = \"#010101\""), 0o644); err != nil {
		t.Fatalf("write theme: %v", err)
	}

	catalog, err := LoadCatalog([]string{dir})
	if err == nil {
		t.Fatal("expected error for unknown base theme")
	}
	if _, ok := catalog.Get("ok"); !ok {
		t.Fatalf("expected valid theme to load despite sibling error, keys=%v", catalog.Keys())
	}
}

func TestCatalogResolveFallsBack(t *testing.T) {
	catalog, err := LoadCatalog(nil)
	if err != nil {
		t.Fatalf("LoadCatalog returned error: %v", err)
	}
	if def := catalog.Resolve("missing", KeyLight); def.Key != KeyLight {
		t.Fatalf("expected fallback to light, got %q", def.Key)
	}
	if def := catalog.Resolve(" Light ", ""); def.Key != KeyLight {
		t.Fatalf("expected case-insensitive lookup, got %q", def.Key)
	}
	if def := catalog.Resolve("", ""); def.Key != KeyDefault {
		t.Fatalf("expected default builtin, got %q", def.Key)
	}
}

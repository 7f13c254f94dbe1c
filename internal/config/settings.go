package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

const (
	SettingsFormatTOML SettingsFormat = "toml"
	SettingsFormatJSON SettingsFormat = "json"
)

type Settings struct {
	DefaultTheme   string       `json:"default_theme"             toml:"default_theme"`
	DataFile       string       `json:"data_file,omitempty"       toml:"data_file,omitempty"`
	LogLevel       LogLevel     `json:"log_level,omitempty"       toml:"log_level,omitempty"`
	DisableHistory bool         `json:"disable_history,omitempty" toml:"disable_history,omitempty"`
	Sort           SortSettings `json:"sort"                      toml:"sort"`
}

type SettingsFormat string

// SettingsHandle remembers where settings came from so SaveSettings writes
// them back in the same place and format.
type SettingsHandle struct {
	Path   string
	Format SettingsFormat
}

type settingsCodec struct {
	decode func([]byte, *Settings) error
	encode func(Settings) ([]byte, error)
}

var settingsCodecs = map[SettingsFormat]settingsCodec{
	SettingsFormatTOML: {
		decode: func(data []byte, s *Settings) error { return toml.Unmarshal(data, s) },
		encode: func(s Settings) ([]byte, error) { return toml.Marshal(s) },
	},
	SettingsFormatJSON: {
		decode: func(data []byte, s *Settings) error {
			dec := json.NewDecoder(bytes.NewReader(data))
			dec.DisallowUnknownFields()
			return dec.Decode(s)
		},
		encode: func(s Settings) ([]byte, error) {
			var buf bytes.Buffer
			enc := json.NewEncoder(&buf)
			enc.SetIndent("", "  ")
			err := enc.Encode(s)
			return buf.Bytes(), err
		},
	},
}

func settingsCandidates(dir string) []SettingsHandle {
	return []SettingsHandle{
		{Path: filepath.Join(dir, "settings.toml"), Format: SettingsFormatTOML},
		{Path: filepath.Join(dir, "settings.json"), Format: SettingsFormatJSON},
	}
}

// LoadSettings reads settings.toml, then settings.json, from dir (or Dir()
// when empty). A missing file is not an error; a malformed one is.
func LoadSettings(dir string) (Settings, SettingsHandle, error) {
	candidates := settingsCandidates(resolveDir(dir))

	var readErrs error
	for _, handle := range candidates {
		data, err := os.ReadFile(handle.Path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			readErrs = errors.Join(readErrs, fmt.Errorf("read settings %q: %w", handle.Path, err))
			continue
		}
		var settings Settings
		if err := settingsCodecs[handle.Format].decode(data, &settings); err != nil {
			return Settings{}, SettingsHandle{}, fmt.Errorf("parse settings %q: %w", handle.Path, err)
		}
		return normaliseSettings(settings), handle, nil
	}
	if readErrs != nil {
		return Settings{}, SettingsHandle{}, readErrs
	}
	return DefaultSettings(), candidates[0], nil
}

func DefaultSettings() Settings {
	return Settings{
		LogLevel: LogLevelInfo,
		Sort:     DefaultSortSettings(),
	}
}

func normaliseSettings(in Settings) Settings {
	in.DefaultTheme = strings.TrimSpace(in.DefaultTheme)
	in.DataFile = strings.TrimSpace(in.DataFile)
	in.LogLevel = NormaliseLogLevel(in.LogLevel, LogLevelInfo)
	in.Sort = NormaliseSortSettings(in.Sort)
	return in
}

// SaveSettings normalises settings and writes them atomically to handle.
// An empty handle means settings.toml under Dir().
func SaveSettings(settings Settings, handle SettingsHandle) error {
	if handle.Path == "" {
		handle.Path = filepath.Join(Dir(), "settings.toml")
	}
	if handle.Format == "" {
		handle.Format = SettingsFormatTOML
	}
	codec, ok := settingsCodecs[handle.Format]
	if !ok {
		return fmt.Errorf("unsupported settings format %q", handle.Format)
	}

	data, err := codec.encode(normaliseSettings(settings))
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(handle.Path), 0o755); err != nil {
		return fmt.Errorf("ensure settings directory: %w", err)
	}
	if err := WriteFileAtomic(handle.Path, data, 0o644); err != nil {
		return fmt.Errorf("write settings %q: %w", handle.Path, err)
	}
	return nil
}

// WriteFileAtomic writes to a temp file in the target directory and renames
// it over path, so readers never observe a partial file.
func WriteFileAtomic(path string, data []byte, perm fs.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer func() { _ = os.Remove(tmpPath) }()

	_, err = tmp.Write(data)
	if err == nil {
		err = tmp.Chmod(perm)
	}
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}

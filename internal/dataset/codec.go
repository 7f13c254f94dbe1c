package dataset

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/unkn0wn-root/groupsort/internal/config"
)

type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
)

func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("dataset: unsupported file extension %q", filepath.Ext(path))
	}
}

func Load(path string) (Set, error) {
	format, err := FormatFor(path)
	if err != nil {
		return Set{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Set{}, fmt.Errorf("dataset: read %q: %w", path, err)
	}
	set, err := Decode(data, format)
	if err != nil {
		return Set{}, fmt.Errorf("dataset: parse %q: %w", path, err)
	}
	return set, nil
}

func Decode(data []byte, format Format) (Set, error) {
	var set Set
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&set); err != nil {
			return Set{}, err
		}
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&set); err != nil {
			return Set{}, err
		}
	case FormatTOML:
		if err := toml.Unmarshal(data, &set); err != nil {
			return Set{}, err
		}
	default:
		return Set{}, fmt.Errorf("unsupported format %q", format)
	}
	if err := set.Normalise(); err != nil {
		return Set{}, err
	}
	return set, nil
}

func Encode(set Set, format Format) ([]byte, error) {
	switch format {
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(set); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case FormatJSON:
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetIndent("", "  ")
		if err := enc.Encode(set); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case FormatTOML:
		return toml.Marshal(set)
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
}

// Save writes set to path in the format implied by its extension.
func Save(path string, set Set) error {
	format, err := FormatFor(path)
	if err != nil {
		return err
	}
	data, err := Encode(set, format)
	if err != nil {
		return fmt.Errorf("dataset: encode %q: %w", path, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("dataset: ensure directory: %w", err)
	}
	if err := config.WriteFileAtomic(path, data, 0o644); err != nil {
		return fmt.Errorf("dataset: write %q: %w", path, err)
	}
	return nil
}

package bindings

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	toml "github.com/pelletier/go-toml/v2"
)

type Format string

const (
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
)

// Source is the file the map was built from. Path points at the default
// bindings.toml when no file exists.
type Source struct {
	Path   string
	Format Format
}

type ActionID string

// Binding is one key sequence of an action. Steps holds one key, or two
// for a chord.
type Binding struct {
	Action ActionID
	Steps  []string
	// the chord's second key may be pressed again without the prefix
	Repeatable bool
}

type chordKey struct {
	prefix string
	next   string
}

// Map resolves runtime keys to actions.
type Map struct {
	single   map[string]Binding
	chords   map[chordKey]Binding
	prefixes map[string]struct{}
	byAction map[ActionID][]Binding
}

const maxSteps = 2

var modifierOrder = []string{"ctrl", "alt", "shift", "cmd"}

var modifierAliases = map[string]string{
	"ctrl":    "ctrl",
	"control": "ctrl",
	"alt":     "alt",
	"option":  "alt",
	"shift":   "shift",
	"cmd":     "cmd",
	"command": "cmd",
	"meta":    "cmd",
}

// Load builds the map from bindings.toml or bindings.json in dir, in that
// order of preference. Actions a file leaves out keep their defaults.
func Load(dir string) (*Map, Source, error) {
	candidates := []Source{
		{Path: filepath.Join(dir, "bindings.toml"), Format: FormatTOML},
		{Path: filepath.Join(dir, "bindings.json"), Format: FormatJSON},
	}

	var readErrs error
	for _, src := range candidates {
		data, err := os.ReadFile(src.Path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			continue
		case err != nil:
			readErrs = errors.Join(readErrs, fmt.Errorf("read bindings %q: %w", src.Path, err))
			continue
		}
		overrides, err := decodeOverrides(data, src.Format)
		if err != nil {
			return nil, Source{}, fmt.Errorf("parse bindings %q: %w", src.Path, err)
		}
		m, err := build(overrides)
		if err != nil {
			return nil, Source{}, fmt.Errorf("apply bindings %q: %w", src.Path, err)
		}
		return m, src, nil
	}
	if readErrs != nil {
		return nil, Source{}, readErrs
	}
	return DefaultMap(), candidates[0], nil
}

// DefaultMap is the built-in key map.
func DefaultMap() *Map {
	m, err := build(nil)
	if err != nil {
		panic(fmt.Sprintf("bindings: invalid defaults: %v", err))
	}
	return m
}

func (m *Map) MatchSingle(key string) (Binding, bool) {
	if m == nil {
		return Binding{}, false
	}
	b, ok := m.single[key]
	return b.clone(), ok
}

// HasChordPrefix reports whether key starts at least one chord.
func (m *Map) HasChordPrefix(key string) bool {
	if m == nil {
		return false
	}
	_, ok := m.prefixes[key]
	return ok
}

func (m *Map) ResolveChord(prefix, next string) (Binding, bool) {
	if m == nil {
		return Binding{}, false
	}
	b, ok := m.chords[chordKey{prefix: prefix, next: next}]
	return b.clone(), ok
}

// Bindings lists the sequences bound to action in configuration order.
func (m *Map) Bindings(action ActionID) []Binding {
	if m == nil {
		return nil
	}
	list := m.byAction[action]
	if len(list) == 0 {
		return nil
	}
	out := make([]Binding, len(list))
	for i, b := range list {
		out[i] = b.clone()
	}
	return out
}

func (b Binding) clone() Binding {
	b.Steps = append([]string(nil), b.Steps...)
	return b
}

type overridesFile struct {
	Bindings map[string][]string `json:"bindings" toml:"bindings"`
}

func decodeOverrides(data []byte, format Format) (map[ActionID][][]string, error) {
	var file overridesFile
	switch format {
	case FormatTOML:
		if err := toml.Unmarshal(data, &file); err != nil {
			return nil, err
		}
	case FormatJSON:
		if len(data) == 0 {
			return nil, nil
		}
		if err := json.Unmarshal(data, &file); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}

	out := make(map[ActionID][][]string, len(file.Bindings))
	for name, raw := range file.Bindings {
		id := ActionID(name)
		if _, ok := definitionLookup[id]; !ok {
			return nil, fmt.Errorf("unknown action %q", name)
		}
		seqs := make([][]string, 0, len(raw))
		for _, text := range raw {
			seq, err := parseSequence(text)
			if err != nil {
				return nil, fmt.Errorf("action %q: %w", name, err)
			}
			seqs = append(seqs, seq)
		}
		out[id] = seqs
	}
	return out, nil
}

// build walks the definitions in declaration order so conflict errors are
// stable from run to run.
func build(overrides map[ActionID][][]string) (*Map, error) {
	m := &Map{
		single:   make(map[string]Binding),
		chords:   make(map[chordKey]Binding),
		prefixes: make(map[string]struct{}),
		byAction: make(map[ActionID][]Binding, len(definitions)),
	}
	for _, def := range definitions {
		seqs := def.defaults
		if custom, ok := overrides[def.id]; ok {
			seqs = custom
		}
		seen := make(map[string]bool, len(seqs))
		for _, seq := range seqs {
			if err := m.add(def, seq, seen); err != nil {
				return nil, err
			}
		}
	}
	for prefix := range m.prefixes {
		if b, ok := m.single[prefix]; ok {
			return nil, fmt.Errorf(
				"key %q starts a chord and is also bound alone to %s",
				prefix,
				b.Action,
			)
		}
	}
	return m, nil
}

func (m *Map) add(def definition, seq []string, seen map[string]bool) error {
	switch {
	case len(seq) == 0:
		return nil
	case len(seq) > maxSteps:
		return fmt.Errorf("action %s: bindings may not exceed %d steps", def.id, maxSteps)
	case def.singleOnly && len(seq) > 1:
		return fmt.Errorf("action %s only supports single-step bindings", def.id)
	}
	text := strings.Join(seq, " ")
	if seen[text] {
		return fmt.Errorf("action %s: duplicate binding %q", def.id, text)
	}
	seen[text] = true

	b := Binding{
		Action:     def.id,
		Steps:      append([]string(nil), seq...),
		Repeatable: def.repeatable && len(seq) > 1,
	}
	if len(seq) == 1 {
		if prev, ok := m.single[seq[0]]; ok {
			return fmt.Errorf("binding %q assigned to both %s and %s", seq[0], prev.Action, def.id)
		}
		m.single[seq[0]] = b
	} else {
		key := chordKey{prefix: seq[0], next: seq[1]}
		if prev, ok := m.chords[key]; ok {
			return fmt.Errorf("binding %q assigned to both %s and %s", text, prev.Action, def.id)
		}
		m.chords[key] = b
		m.prefixes[seq[0]] = struct{}{}
	}
	m.byAction[def.id] = append(m.byAction[def.id], b)
	return nil
}

func parseSequence(text string) ([]string, error) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return nil, errors.New("empty binding")
	}
	seq := make([]string, len(fields))
	for i, field := range fields {
		step, err := canonicalStep(field)
		if err != nil {
			return nil, err
		}
		seq[i] = step
	}
	return seq, nil
}

// canonicalStep lowercases a key, spells shifted letters as shift+<letter>
// and orders modifiers ctrl, alt, shift, cmd. This matches the strings
// bubbletea reports at runtime.
func canonicalStep(raw string) (string, error) {
	switch raw {
	case " ":
		return "space", nil
	case "?":
		return "shift+/", nil
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", errors.New("empty key step")
	}
	if utf8.RuneCountInString(raw) == 1 {
		lower := strings.ToLower(raw)
		if lower != raw {
			return "shift+" + lower, nil
		}
		return raw, nil
	}
	if !strings.Contains(raw, "+") {
		return strings.ToLower(raw), nil
	}

	mods := make(map[string]bool, len(modifierOrder))
	var keys []string
	for _, part := range strings.Split(raw, "+") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part == "" {
			continue
		}
		if mod, ok := modifierAliases[part]; ok {
			mods[mod] = true
			continue
		}
		keys = append(keys, part)
	}
	if len(keys) == 0 {
		return "", fmt.Errorf("binding %q missing key", raw)
	}
	parts := make([]string, 0, len(mods)+len(keys))
	for _, mod := range modifierOrder {
		if mods[mod] {
			parts = append(parts, mod)
		}
	}
	return strings.Join(append(parts, keys...), "+"), nil
}

// NormalizeKeyString maps a runtime key string onto the form used in the
// map. Unparseable input yields "".
func NormalizeKeyString(raw string) string {
	step, err := canonicalStep(raw)
	if err != nil {
		return ""
	}
	return step
}

// KnownActions returns every action id, sorted.
func KnownActions() []ActionID {
	ids := make([]ActionID, 0, len(definitions))
	for _, def := range definitions {
		ids = append(ids, def.id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

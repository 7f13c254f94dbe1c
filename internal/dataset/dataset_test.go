package dataset

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/unkn0wn-root/groupsort/internal/groupsort"
)

func testSet() Set {
	return Set{
		Name: "test",
		Unit: "m",
		Min:  0,
		Max:  100,
		Launches: []Launch{
			{ID: "a", Label: "A", Distance: 10},
			{ID: "b", Label: "B", Distance: 30},
			{ID: "c", Label: "C", Distance: 31},
			{ID: "d", Label: "D", Distance: 80},
			{ID: "e", Label: "E", Distance: 30},
		},
	}
}

func TestSampleIsNormalised(t *testing.T) {
	set := Sample()
	if err := set.Normalise(); err != nil {
		t.Fatalf("Normalise returned error: %v", err)
	}
	if len(set.Launches) == 0 {
		t.Fatalf("expected sample launches")
	}
	r := set.Range()
	for _, l := range set.Launches {
		if !r.Contains(l.Distance) {
			t.Fatalf("expected %s (%v) inside %v..%v", l.ID, l.Distance, r.Min, r.Max)
		}
	}
}

func TestRangeDistanceAt45Degrees(t *testing.T) {
	got := RangeDistance(45, 9.81)
	if got < 9.80 || got > 9.82 {
		t.Fatalf("expected ~9.81m, got %v", got)
	}
}

func TestNormaliseFillsIDsAndRejectsDuplicates(t *testing.T) {
	set := Set{Launches: []Launch{{Distance: 4}, {ID: "x", Distance: 7}}}
	if err := set.Normalise(); err != nil {
		t.Fatalf("Normalise returned error: %v", err)
	}
	if set.Launches[0].ID == "" {
		t.Fatalf("expected generated id")
	}
	if set.Launches[0].Label != "Launch 1" {
		t.Fatalf("expected generated label, got %q", set.Launches[0].Label)
	}
	if set.Min != 0 || set.Max != 10 {
		t.Fatalf("expected fitted range 0..10, got %v..%v", set.Min, set.Max)
	}

	dup := Set{Launches: []Launch{{ID: "x"}, {ID: "x"}}}
	if err := dup.Normalise(); err == nil {
		t.Fatal("expected duplicate id error, got nil")
	}
}

func TestSaveAndLoadRoundTripsEveryFormat(t *testing.T) {
	dir := t.TempDir()
	want := testSet()
	for _, name := range []string{"set.yaml", "set.json", "set.toml"} {
		path := filepath.Join(dir, name)
		if err := Save(path, want); err != nil {
			t.Fatalf("Save(%s) failed: %v", name, err)
		}
		got, err := Load(path)
		if err != nil {
			t.Fatalf("Load(%s) failed: %v", name, err)
		}
		if got.Name != want.Name || len(got.Launches) != len(want.Launches) {
			t.Fatalf("%s: unexpected set %+v", name, got)
		}
		for i := range want.Launches {
			if got.Launches[i] != want.Launches[i] {
				t.Fatalf("%s: launch %d = %+v, want %+v", name, i, got.Launches[i], want.Launches[i])
			}
		}
	}
}

func TestLoadRejectsUnknownExtensionAndFields(t *testing.T) {
	if _, err := Load("launches.csv"); err == nil {
		t.Fatal("expected unsupported extension error")
	}
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(path, []byte("name: x\nvelocity: 3\n"), 0o644); err != nil {
		t.Fatalf("write yaml: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected unknown field error")
	}
}

func TestModelOrderAndSelection(t *testing.T) {
	m := NewModel(testSet())

	order := strings.Join(m.Ordered(), ",")
	if order != "a,b,e,c,d" {
		t.Fatalf("unexpected order %s", order)
	}
	if id, ok := m.ItemToSelect(); !ok || id != "a" {
		t.Fatalf("expected a to be selected first, got %q (ok=%v)", id, ok)
	}

	cases := []struct {
		from  string
		delta float64
		want  string
	}{
		{"a", 1, "b"},
		{"b", 1, "c"},
		{"c", -1, "e"},
		{"e", -1, "b"},
		{"b", -1, "a"},
		{"a", -10, "a"},
		{"a", 90, "d"},
		{"d", -80, "a"},
		{"b", 2, "c"},
		{"b", 0.25, "e"},
	}
	for _, tc := range cases {
		got, ok := m.NextSelected(tc.delta, tc.from)
		if !ok || got != tc.want {
			t.Fatalf("NextSelected(%v, %s) = %q (ok=%v), want %q", tc.delta, tc.from, got, ok, tc.want)
		}
	}
}

func TestModelNextSelectedUsesValuesNotPositions(t *testing.T) {
	set := Set{Name: "dense", Min: 0, Max: 1}
	for i := range 20 {
		set.Launches = append(set.Launches, Launch{
			ID:       fmt.Sprintf("l%d", i),
			Label:    fmt.Sprintf("L%d", i),
			Distance: float64(i) * 0.05,
		})
	}
	m := NewModel(set)
	r := m.Range()
	steps := groupsort.DefaultSteps().Resolve(r)

	move := func(key, from string) string {
		t.Helper()
		delta, ok := groupsort.DeltaForKey(key, steps, r)
		if !ok {
			t.Fatalf("expected %q to be a sort key", key)
		}
		v, _ := m.Value(from)
		got, ok := m.NextSelected(r.ClampDelta(v, delta), from)
		if !ok {
			t.Fatalf("NextSelected(%s from %s) found nothing", key, from)
		}
		return got
	}

	if got := move("end", "l0"); got != "l19" {
		t.Fatalf("expected End to reach l19, got %s", got)
	}
	if got := move("home", "l19"); got != "l0" {
		t.Fatalf("expected Home to reach l0, got %s", got)
	}
	if got := move("right", "l0"); got != "l19" {
		t.Fatalf("expected a unit step wider than the range to reach l19, got %s", got)
	}
	// page step is ceil(1/5) = 1, the whole range
	if got := move("pageup", "l5"); got != "l19" {
		t.Fatalf("expected PageUp to reach l19, got %s", got)
	}
	if got, _ := m.NextSelected(0.1, "l5"); got != "l7" {
		t.Fatalf("expected +0.1 from 0.25 to land on 0.35 (l7), got %s", got)
	}
	if got, _ := m.NextSelected(-0.01, "l5"); got != "l4" {
		t.Fatalf("expected a small step to take one neighbour, got %s", got)
	}
}

func TestModelRespectsActiveRange(t *testing.T) {
	m := NewModel(testSet())
	m.SetRange(groupsort.NewRange(20, 50))

	if id, ok := m.ItemToSelect(); !ok || id != "b" {
		t.Fatalf("expected b as first in-range launch, got %q (ok=%v)", id, ok)
	}
	if got, _ := m.NextSelected(1, "a"); got != "b" {
		t.Fatalf("expected out-of-range current to restart at b, got %q", got)
	}
	if got, _ := m.NextSelected(100, "b"); got != "c" {
		t.Fatalf("expected End to stop at the last in-range launch, got %q", got)
	}

	m.SetRange(groupsort.NewRange(90, 95))
	if _, ok := m.ItemToSelect(); ok {
		t.Fatalf("expected no selectable launch in an empty range")
	}
}

func TestModelMapNumberKey(t *testing.T) {
	m := NewModel(testSet())
	if v, ok := m.MapNumberKey("0"); !ok || v != 0 {
		t.Fatalf("expected 0 -> 0, got %v (ok=%v)", v, ok)
	}
	if v, ok := m.MapNumberKey("9"); !ok || v != 100 {
		t.Fatalf("expected 9 -> 100, got %v (ok=%v)", v, ok)
	}
	if v, ok := m.MapNumberKey("3"); !ok || v != 33.3 {
		t.Fatalf("expected 3 -> 33.3, got %v (ok=%v)", v, ok)
	}
	if _, ok := m.MapNumberKey("x"); ok {
		t.Fatalf("expected non-digit to be ignored")
	}
}

func TestModelResetDirtyAndDiff(t *testing.T) {
	m := NewModel(testSet())
	if m.Dirty() {
		t.Fatalf("expected fresh model to be clean")
	}
	if !m.SetValue("a", 12) {
		t.Fatalf("expected SetValue to accept a known id")
	}
	if m.SetValue("zzz", 1) {
		t.Fatalf("expected SetValue to reject unknown id")
	}
	if !m.Dirty() {
		t.Fatalf("expected model to be dirty after change")
	}

	diff, err := Diff(m.Original(), m.Snapshot())
	if err != nil {
		t.Fatalf("Diff returned error: %v", err)
	}
	if !strings.Contains(diff, "-    distance: 10") || !strings.Contains(diff, "+    distance: 12") {
		t.Fatalf("unexpected diff:\n%s", diff)
	}

	m.Reset()
	if v, _ := m.Value("a"); v != 10 {
		t.Fatalf("expected reset value 10, got %v", v)
	}
	if diff, _ := Diff(m.Original(), m.Snapshot()); diff != "" {
		t.Fatalf("expected empty diff after reset, got:\n%s", diff)
	}

	m.SetValue("b", 44)
	m.MarkSaved()
	if m.Dirty() {
		t.Fatalf("expected MarkSaved to reset the baseline")
	}
}

func TestModelReplaceKeepsFittingRange(t *testing.T) {
	m := NewModel(testSet())
	m.SetRange(groupsort.Range{Min: 20, Max: 60})
	m.SetValue("a", 15)

	next := testSet()
	next.Launches = next.Launches[:2]
	next.Launches[1].Distance = 50
	m.Replace(next)

	if m.Dirty() {
		t.Fatalf("expected replaced model to be clean")
	}
	if m.Len() != 2 {
		t.Fatalf("expected 2 launches after replace, got %d", m.Len())
	}
	if _, ok := m.Value("d"); ok {
		t.Fatalf("expected dropped launch to be gone")
	}
	if r := m.Range(); r.Min != 20 || r.Max != 60 {
		t.Fatalf("expected active range kept, got %+v", r)
	}

	next.Max = 40
	m.Replace(next)
	if r := m.Range(); r.Min != 0 || r.Max != 40 {
		t.Fatalf("expected range reset to new bounds, got %+v", r)
	}
}

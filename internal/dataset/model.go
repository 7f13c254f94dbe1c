package dataset

import (
	"math"
	"slices"
	"sort"
	"sync"

	"github.com/unkn0wn-root/groupsort/internal/groupsort"
)

// boundEpsilon absorbs rounding when a clamped delta lands on a bound.
const boundEpsilon = 1e-9

// Model is the live, mutable view of a Set. It answers the interaction's
// queries over launch ids.
type Model struct {
	mu       sync.RWMutex
	set      Set
	original Set
	index    map[string]int
	active   groupsort.Range
}

var _ groupsort.Source[string] = (*Model)(nil)

func NewModel(set Set) *Model {
	m := &Model{
		set:      set.Clone(),
		original: set.Clone(),
		active:   set.Range(),
	}
	m.reindex()
	return m
}

func (m *Model) reindex() {
	m.index = make(map[string]int, len(m.set.Launches))
	for i, l := range m.set.Launches {
		m.index[l.ID] = i
	}
}

func (m *Model) Name() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.set.Name
}

func (m *Model) Unit() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.set.Unit
}

// Bounds is the full range stored with the data set.
func (m *Model) Bounds() groupsort.Range {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.set.Range()
}

// Range is the range currently offered to the interaction. It may be
// narrower than Bounds.
func (m *Model) Range() groupsort.Range {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.active
}

func (m *Model) SetRange(r groupsort.Range) {
	m.mu.Lock()
	m.active = r
	m.mu.Unlock()
}

func (m *Model) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.set.Launches)
}

func (m *Model) Launch(id string) (Launch, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	idx, ok := m.index[id]
	if !ok {
		return Launch{}, false
	}
	return m.set.Launches[idx], true
}

func (m *Model) Value(id string) (float64, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	idx, ok := m.index[id]
	if !ok {
		return 0, false
	}
	return m.set.Launches[idx].Distance, true
}

// SetValue stores value for id. It reports false for unknown ids.
func (m *Model) SetValue(id string, value float64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	idx, ok := m.index[id]
	if !ok {
		return false
	}
	m.set.Launches[idx].Distance = value
	return true
}

// Ordered returns ids of launches inside the active range, by ascending
// distance. Ties keep file order.
func (m *Model) Ordered() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.orderedLocked()
}

func (m *Model) orderedLocked() []string {
	idx := make([]int, 0, len(m.set.Launches))
	for i, l := range m.set.Launches {
		if m.active.Contains(l.Distance) {
			idx = append(idx, i)
		}
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return m.set.Launches[idx[a]].Distance < m.set.Launches[idx[b]].Distance
	})
	out := make([]string, len(idx))
	for i, j := range idx {
		out[i] = m.set.Launches[j].ID
	}
	return out
}

func (m *Model) ItemToSelect() (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	order := m.orderedLocked()
	if len(order) == 0 {
		return "", false
	}
	return order[0], true
}

// NextSelected moves from current toward Value(current)+delta: it picks
// the in-range launch nearest that target on the side of travel, taking at
// least one neighbour for any non-zero delta. A target at or past a range
// bound lands on the first or last launch. Equal distances prefer the launch
// closer to current in value order. When current is out of range the first
// in-range launch is chosen.
func (m *Model) NextSelected(delta float64, current string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	order := m.orderedLocked()
	if len(order) == 0 {
		return "", false
	}
	pos := slices.Index(order, current)
	if pos < 0 {
		return order[0], true
	}
	if delta == 0 {
		return current, true
	}

	target := m.set.Launches[m.index[current]].Distance + delta
	eps := boundEpsilon * max(m.active.Length(), 1)
	switch {
	case delta > 0 && target >= m.active.Max-eps:
		return order[len(order)-1], true
	case delta < 0 && target <= m.active.Min+eps:
		return order[0], true
	}

	best := pos
	bestDist := math.Inf(1)
	visit := func(i int) {
		d := math.Abs(m.set.Launches[m.index[order[i]]].Distance - target)
		if d < bestDist {
			best, bestDist = i, d
		}
	}
	if delta > 0 {
		for i := pos + 1; i < len(order); i++ {
			visit(i)
		}
	} else {
		for i := pos - 1; i >= 0; i-- {
			visit(i)
		}
	}
	return order[best], true
}

// MapNumberKey spreads the digits over the active range: 0 is the minimum,
// 9 the maximum.
func (m *Model) MapNumberKey(key string) (float64, bool) {
	d, ok := groupsort.DigitKey(key)
	if !ok {
		return 0, false
	}
	r := m.Range()
	v := r.Min + float64(d)*r.Length()/9
	return math.Round(v*10) / 10, true
}

func (m *Model) Snapshot() Set {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.set.Clone()
}

func (m *Model) Original() Set {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.original.Clone()
}

func (m *Model) Dirty() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for i, l := range m.set.Launches {
		if l.Distance != m.original.Launches[i].Distance {
			return true
		}
	}
	return false
}

// Reset restores every distance to its loaded value.
func (m *Model) Reset() {
	m.mu.Lock()
	m.set = m.original.Clone()
	m.reindex()
	m.mu.Unlock()
}

// MarkSaved makes the current values the new baseline for Dirty and Reset.
func (m *Model) MarkSaved() {
	m.mu.Lock()
	m.original = m.set.Clone()
	m.mu.Unlock()
}

// Replace swaps in a freshly loaded set as both the current values and the
// baseline. The active range survives when it still fits the new bounds.
func (m *Model) Replace(set Set) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.set = set.Clone()
	m.original = set.Clone()
	bounds := set.Range()
	if !bounds.Contains(m.active.Min) || !bounds.Contains(m.active.Max) {
		m.active = bounds
	}
	m.reindex()
}

package groupsort

import "math"

// Range is the closed interval of values a group item may take.
type Range struct {
	Min float64
	Max float64
}

// NewRange builds a range, swapping the bounds when given in reverse.
func NewRange(lo, hi float64) Range {
	if lo > hi {
		lo, hi = hi, lo
	}
	return Range{Min: lo, Max: hi}
}

// Length is the distance between the bounds.
func (r Range) Length() float64 {
	return r.Max - r.Min
}

// Contains reports whether v lies inside the range, bounds included.
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// Clamp pins v to the nearest bound when it falls outside the range.
func (r Range) Clamp(v float64) float64 {
	return math.Min(math.Max(v, r.Min), r.Max)
}

// ClampDelta shortens delta so that v+delta stays inside the range.
func (r Range) ClampDelta(v, delta float64) float64 {
	next := v + delta
	if next < r.Min {
		return r.Min - v
	}
	if next > r.Max {
		return r.Max - v
	}
	return delta
}

package dataset

import (
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"

	"github.com/unkn0wn-root/groupsort/internal/groupsort"
)

const gravity = 9.81

// Launch is one projectile launch. Distance is the sortable value.
type Launch struct {
	ID       string  `json:"id"              yaml:"id"              toml:"id"`
	Label    string  `json:"label"           yaml:"label"           toml:"label"`
	Angle    float64 `json:"angle,omitempty" yaml:"angle,omitempty" toml:"angle,omitempty"`
	Speed    float64 `json:"speed,omitempty" yaml:"speed,omitempty" toml:"speed,omitempty"`
	Distance float64 `json:"distance"        yaml:"distance"        toml:"distance"`
}

type Set struct {
	Name     string   `json:"name"           yaml:"name"           toml:"name"`
	Unit     string   `json:"unit,omitempty" yaml:"unit,omitempty" toml:"unit,omitempty"`
	Min      float64  `json:"min"            yaml:"min"            toml:"min"`
	Max      float64  `json:"max"            yaml:"max"            toml:"max"`
	Launches []Launch `json:"launches"       yaml:"launches"       toml:"launches"`
}

func (s Set) Range() groupsort.Range {
	return groupsort.NewRange(s.Min, s.Max)
}

func (s Set) Clone() Set {
	out := s
	out.Launches = append([]Launch(nil), s.Launches...)
	return out
}

// Normalise fills missing ids, labels and bounds, and rejects duplicate ids.
func (s *Set) Normalise() error {
	if strings.TrimSpace(s.Name) == "" {
		s.Name = "launches"
	}
	if s.Unit == "" {
		s.Unit = "m"
	}
	seen := make(map[string]int, len(s.Launches))
	for i := range s.Launches {
		l := &s.Launches[i]
		l.ID = strings.TrimSpace(l.ID)
		if l.ID == "" {
			l.ID = uuid.NewString()
		}
		if prev, ok := seen[l.ID]; ok {
			return fmt.Errorf("launch %d: duplicate id %q (first used by launch %d)", i, l.ID, prev)
		}
		seen[l.ID] = i
		if strings.TrimSpace(l.Label) == "" {
			l.Label = fmt.Sprintf("Launch %d", i+1)
		}
		if math.IsNaN(l.Distance) || math.IsInf(l.Distance, 0) {
			return fmt.Errorf("launch %q: distance is not a finite number", l.ID)
		}
	}
	if s.Min == s.Max {
		s.Min, s.Max = fitRange(s.Launches)
	}
	if s.Min > s.Max {
		s.Min, s.Max = s.Max, s.Min
	}
	return nil
}

func fitRange(launches []Launch) (float64, float64) {
	if len(launches) == 0 {
		return 0, 100
	}
	hi := 0.0
	for _, l := range launches {
		hi = math.Max(hi, l.Distance)
	}
	hi = math.Ceil(hi/10) * 10
	if hi == 0 {
		hi = 10
	}
	return 0, hi
}

// RangeDistance is the flat-ground range of a projectile launched at angle
// degrees with speed metres per second.
func RangeDistance(angle, speed float64) float64 {
	rad := angle * math.Pi / 180
	return speed * speed * math.Sin(2*rad) / gravity
}

// Sample builds the builtin data set.
func Sample() Set {
	shots := []struct {
		label string
		angle float64
		speed float64
	}{
		{"Cannonball", 45, 18},
		{"Pumpkin", 30, 15},
		{"Golf ball", 20, 22},
		{"Football", 55, 14},
		{"Piano", 60, 12},
		{"Tank shell", 35, 20},
		{"Baseball", 40, 16},
		{"Human", 70, 11},
	}
	set := Set{Name: "Projectile launches", Unit: "m"}
	for i, shot := range shots {
		set.Launches = append(set.Launches, Launch{
			ID:       fmt.Sprintf("launch-%d", i+1),
			Label:    shot.label,
			Angle:    shot.angle,
			Speed:    shot.speed,
			Distance: math.Round(RangeDistance(shot.angle, shot.speed)*10) / 10,
		})
	}
	set.Min, set.Max = fitRange(set.Launches)
	return set
}

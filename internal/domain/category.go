package domain

import "strings"

// Location is one concrete place where a category's activity can happen.
type Location struct {
	ID      string
	Address string
}

// Category is a recurring daily activity type and its placement constraints.
type Category struct {
	ID               string
	Name             string
	Locations        []Location
	ActivityDuration int // minutes
	TimeRange        TimeRange
	Repetitions      int
	AllowConsecutive bool
}

// Schedulable reports whether c carries enough data to be placed in a routine.
// Blank locations are ignored; see UsableLocations.
func (c Category) Schedulable() bool {
	if strings.TrimSpace(c.Name) == "" {
		return false
	}
	if c.ActivityDuration <= 0 || c.Repetitions <= 0 {
		return false
	}
	if _, _, err := c.TimeRange.Minutes(); err != nil {
		return false
	}
	return len(c.UsableLocations()) > 0
}

// UsableLocations returns the locations with a non-blank address, in order.
func (c Category) UsableLocations() []Location {
	out := make([]Location, 0, len(c.Locations))
	for _, l := range c.Locations {
		if strings.TrimSpace(l.Address) == "" {
			continue
		}
		out = append(out, l)
	}
	return out
}

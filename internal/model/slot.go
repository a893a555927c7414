package model

import "time"

// Slot is a candidate time interval offered to the user.
type Slot struct {
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Label     string    `json:"label"`
	EnergyFit bool      `json:"energy_fit,omitempty"`
}

// Overlaps reports whether the half-open intervals [s.Start, s.End) and [o.Start, o.End) intersect.
func (s Slot) Overlaps(o Slot) bool {
	return s.Start.Before(o.End) && o.Start.Before(s.End)
}

// BusyPeriod is an interval where the user's calendar is occupied.
type BusyPeriod struct {
	Start time.Time
	End   time.Time
}

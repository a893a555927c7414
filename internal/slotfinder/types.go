package slotfinder

import (
	"errors"
	"time"

	"task-scheduling-assistant/internal/model"
)

var (
	ErrBusyLookup      = errors.New("busy period lookup failed")
	ErrInvalidDuration = errors.New("duration must be positive")
)

type FindInput struct {
	UserID          string
	DurationMinutes int
	Priority        int
	EnergyLevel     int
	Deadline        *time.Time
}

type FindOutput struct {
	Slots []model.Slot
}

// Options tunes the search. Zero values fall back to defaults.
type Options struct {
	LookaheadDays   int
	MaxSlots        int
	StepMinutes     int
	BreakMinutes    int
	DefaultTimezone string
	Now             func() time.Time
}

const (
	defaultLookaheadDays = 7
	defaultMaxSlots      = 3
	defaultStepMinutes   = 30
	defaultBreakMinutes  = 10
	morningEndHour       = 12
	afternoonStartHour   = 14
	eveningHours         = 2
)

func (o Options) withDefaults() Options {
	if o.LookaheadDays <= 0 {
		o.LookaheadDays = defaultLookaheadDays
	}
	if o.MaxSlots <= 0 {
		o.MaxSlots = defaultMaxSlots
	}
	if o.StepMinutes <= 0 {
		o.StepMinutes = defaultStepMinutes
	}
	if o.BreakMinutes < 0 {
		o.BreakMinutes = 0
	} else if o.BreakMinutes == 0 {
		o.BreakMinutes = defaultBreakMinutes
	}
	if o.DefaultTimezone == "" {
		o.DefaultTimezone = model.DefaultTimezone
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// period is a half-open range of hours within a day.
type period struct {
	from, to int
}

func (p period) contains(hour, minute int) bool {
	m := hour*60 + minute
	return m >= p.from*60 && m < p.to*60
}

type candidate struct {
	start, end time.Time
	fit        bool
}

package datemath

import (
	"fmt"
	"time"
)

// Zone does wall-clock arithmetic in a single location.
type Zone struct {
	loc *time.Location
}

// NewZone loads an IANA timezone.
func NewZone(timezone string) (*Zone, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", timezone, err)
	}
	return &Zone{loc: loc}, nil
}

// ZoneOf wraps an already loaded location.
func ZoneOf(loc *time.Location) *Zone {
	return &Zone{loc: loc}
}

func (z *Zone) Location() *time.Location {
	return z.loc
}

// StartOfDay returns midnight of t's day in the zone.
func (z *Zone) StartOfDay(t time.Time) time.Time {
	t = t.In(z.loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, z.loc)
}

// EndOfDay returns 23:59:59 of t's day in the zone.
func (z *Zone) EndOfDay(t time.Time) time.Time {
	t = t.In(z.loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, z.loc)
}

// At returns hour:minute on day's date in the zone.
func (z *Zone) At(day time.Time, hour, minute int) time.Time {
	day = day.In(z.loc)
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, z.loc)
}

// ISOWeekday returns 1 for Monday through 7 for Sunday.
func (z *Zone) ISOWeekday(t time.Time) int {
	wd := int(t.In(z.loc).Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

// Days returns the start of every day touched by [from, to].
func (z *Zone) Days(from, to time.Time) []time.Time {
	if to.Before(from) {
		return nil
	}
	var days []time.Time
	last := z.StartOfDay(to)
	for d := z.StartOfDay(from); !d.After(last); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// FormatDuration renders minutes as "45 min", "1h" or "1h30".
func FormatDuration(minutes int) string {
	if minutes < 60 {
		return fmt.Sprintf("%d min", minutes)
	}
	h, m := minutes/60, minutes%60
	if m == 0 {
		return fmt.Sprintf("%dh", h)
	}
	return fmt.Sprintf("%dh%02d", h, m)
}

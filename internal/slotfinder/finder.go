package slotfinder

import (
	"context"
	"fmt"
	"sort"
	"time"

	"task-scheduling-assistant/internal/model"
	"task-scheduling-assistant/pkg/datemath"
	"task-scheduling-assistant/pkg/log"
)

type implFinder struct {
	l     log.Logger
	busy  BusySource
	prefs PreferencesSource
	opt   Options
}

// New creates a Finder over the given busy and preference sources.
func New(l log.Logger, busy BusySource, prefs PreferencesSource, opt Options) Finder {
	return &implFinder{l: l, busy: busy, prefs: prefs, opt: opt.withDefaults()}
}

func (f *implFinder) FindBestSlots(ctx context.Context, input FindInput) (FindOutput, error) {
	if input.DurationMinutes <= 0 {
		return FindOutput{}, ErrInvalidDuration
	}

	now := f.opt.Now()
	horizon := now.AddDate(0, 0, f.opt.LookaheadDays)
	if input.Deadline != nil {
		horizon = *input.Deadline
	}
	if !horizon.After(now) {
		f.l.Infof(ctx, "slotfinder.FindBestSlots: user=%s deadline already passed", input.UserID)
		return FindOutput{}, nil
	}

	prefs, err := f.prefs.GetPreferences(ctx, input.UserID)
	if err != nil {
		f.l.Warnf(ctx, "slotfinder.FindBestSlots: preferences for %s: %v, using defaults", input.UserID, err)
		prefs = model.DefaultPreferences(input.UserID)
	}
	zone := f.zone(ctx, prefs.Timezone)

	busy, err := f.busy.BusyPeriods(ctx, input.UserID, now, horizon)
	if err != nil {
		return FindOutput{}, fmt.Errorf("%w: %v", ErrBusyLookup, err)
	}

	f.l.Debugf(ctx, "slotfinder.FindBestSlots: user=%s duration=%d priority=%d energy=%d busy=%d",
		input.UserID, input.DurationMinutes, input.Priority, input.EnergyLevel, len(busy))

	candidates := f.candidates(zone, prefs, input, now, horizon, busy)

	// Energy fit first, then earliest start.
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].fit != candidates[j].fit {
			return candidates[i].fit
		}
		return candidates[i].start.Before(candidates[j].start)
	})

	slots := make([]model.Slot, 0, f.opt.MaxSlots)
	for _, c := range candidates {
		if len(slots) == f.opt.MaxSlots {
			break
		}
		s := model.Slot{Start: c.start.UTC(), End: c.end.UTC(), EnergyFit: c.fit}
		if overlapsAny(s, slots) {
			continue
		}
		s.Label = Label(c.start, c.end, zone.Location(), prefs.Language)
		slots = append(slots, s)
	}

	return FindOutput{Slots: slots}, nil
}

func (f *implFinder) candidates(zone *datemath.Zone, prefs model.UserPreferences, input FindInput, now, horizon time.Time, busy []model.BusyPeriod) []candidate {
	duration := time.Duration(input.DurationMinutes) * time.Minute
	step := time.Duration(f.opt.StepMinutes) * time.Minute
	breakBuf := time.Duration(f.opt.BreakMinutes) * time.Minute

	periods := []period{
		{prefs.StartHour, morningEndHour},
		{afternoonStartHour, prefs.EndHour - eveningHours},
		{prefs.EndHour - eveningHours, prefs.EndHour},
	}
	target := targetPeriod(input.EnergyLevel)

	var out []candidate
	for _, day := range zone.Days(now, horizon) {
		if !prefs.AllowsDay(zone.ISOWeekday(day)) {
			continue
		}
		dayEnd := zone.At(day, prefs.EndHour, 0)

		for start := zone.At(day, prefs.StartHour, 0); start.Before(dayEnd); start = start.Add(step) {
			end := start.Add(duration)
			if start.Before(now) || end.After(dayEnd) || end.After(horizon) {
				continue
			}

			local := start.In(zone.Location())
			idx := periodIndex(periods, local.Hour(), local.Minute())
			if idx < 0 {
				continue
			}
			if busyOverlap(start, end.Add(breakBuf), busy) {
				continue
			}
			out = append(out, candidate{start: start, end: end, fit: idx == target})
		}
	}
	return out
}

func (f *implFinder) zone(ctx context.Context, tz string) *datemath.Zone {
	if tz != "" {
		if z, err := datemath.NewZone(tz); err == nil {
			return z
		}
		f.l.Warnf(ctx, "slotfinder: unknown timezone %q, using %s", tz, f.opt.DefaultTimezone)
	}
	z, err := datemath.NewZone(f.opt.DefaultTimezone)
	if err != nil {
		return datemath.ZoneOf(time.UTC)
	}
	return z
}

// targetPeriod maps energy 2-3 to morning, 1 to afternoon and 0 to evening.
func targetPeriod(energy int) int {
	switch {
	case energy >= 2:
		return 0
	case energy == 1:
		return 1
	default:
		return 2
	}
}

func periodIndex(periods []period, hour, minute int) int {
	for i, p := range periods {
		if p.contains(hour, minute) {
			return i
		}
	}
	return -1
}

func busyOverlap(start, end time.Time, busy []model.BusyPeriod) bool {
	for _, b := range busy {
		if b.Start.Before(end) && start.Before(b.End) {
			return true
		}
	}
	return false
}

func overlapsAny(s model.Slot, chosen []model.Slot) bool {
	for _, c := range chosen {
		if s.Overlaps(c) {
			return true
		}
	}
	return false
}

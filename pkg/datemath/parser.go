package datemath

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var inDurationRe = regexp.MustCompile(`^(?:in|dans) (\d+) (day|days|jour|jours|week|weeks|semaine|semaines|month|months|mois)$`)

// Parser converts relative deadline strings to absolute times in one timezone.
type Parser struct {
	zone *Zone
}

// NewParser creates a new date parser for the given IANA timezone string, e.g. "Europe/Paris".
func NewParser(timezone string) (*Parser, error) {
	zone, err := NewZone(timezone)
	if err != nil {
		return nil, err
	}
	return &Parser{zone: zone}, nil
}

// Parse converts a deadline string to an absolute time.
// RFC3339 and "2006-01-02" are accepted as-is; relative words resolve to the end of the matching day.
func (p *Parser) Parse(value string, baseTime time.Time) (time.Time, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}

	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation(time.DateOnly, value, p.zone.Location()); err == nil {
		return p.zone.EndOfDay(t), nil
	}

	switch value {
	case "today", "aujourd'hui", "aujourdhui":
		return p.zone.EndOfDay(baseTime), nil
	case "tomorrow", "demain":
		return p.zone.EndOfDay(baseTime.AddDate(0, 0, 1)), nil
	}

	if m := inDurationRe.FindStringSubmatch(value); m != nil {
		return p.parseInDuration(m[1], m[2], baseTime)
	}

	if strings.HasPrefix(value, "next ") {
		return p.parseNextWeekday(strings.TrimPrefix(value, "next "), baseTime)
	}

	return time.Time{}, fmt.Errorf("unrecognized date %q", value)
}

func (p *Parser) parseInDuration(amountStr, unit string, baseTime time.Time) (time.Time, error) {
	amount, err := strconv.Atoi(amountStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid amount %q: %w", amountStr, err)
	}

	switch {
	case strings.HasPrefix(unit, "day"), strings.HasPrefix(unit, "jour"):
		return p.zone.EndOfDay(baseTime.AddDate(0, 0, amount)), nil
	case strings.HasPrefix(unit, "week"), strings.HasPrefix(unit, "semaine"):
		return p.zone.EndOfDay(baseTime.AddDate(0, 0, amount*7)), nil
	default:
		return p.zone.EndOfDay(baseTime.AddDate(0, amount, 0)), nil
	}
}

func (p *Parser) parseNextWeekday(dayName string, baseTime time.Time) (time.Time, error) {
	weekdays := map[string]time.Weekday{
		"monday":    time.Monday,
		"tuesday":   time.Tuesday,
		"wednesday": time.Wednesday,
		"thursday":  time.Thursday,
		"friday":    time.Friday,
		"saturday":  time.Saturday,
		"sunday":    time.Sunday,
	}

	target, ok := weekdays[dayName]
	if !ok {
		return time.Time{}, fmt.Errorf("unknown weekday: %q", dayName)
	}

	daysUntil := int(target - baseTime.In(p.zone.Location()).Weekday())
	if daysUntil <= 0 {
		daysUntil += 7
	}
	return p.zone.EndOfDay(baseTime.AddDate(0, 0, daysUntil)), nil
}

package slotfinder

import (
	"fmt"
	"time"
)

var (
	frWeekdays = [...]string{"dimanche", "lundi", "mardi", "mercredi", "jeudi", "vendredi", "samedi"}
	frMonths   = [...]string{"janv.", "févr.", "mars", "avr.", "mai", "juin", "juil.", "août", "sept.", "oct.", "nov.", "déc."}
)

// Label renders a slot like "lundi 19 oct. 09:00–10:00" (fr) or "Monday 19 Oct 09:00–10:00" (en).
func Label(start, end time.Time, loc *time.Location, lang string) string {
	s, e := start.In(loc), end.In(loc)
	hours := fmt.Sprintf("%s–%s", s.Format("15:04"), e.Format("15:04"))

	if lang == "en" {
		return fmt.Sprintf("%s %d %s %s", s.Weekday(), s.Day(), s.Format("Jan"), hours)
	}
	return fmt.Sprintf("%s %d %s %s", frWeekdays[s.Weekday()], s.Day(), frMonths[s.Month()-1], hours)
}

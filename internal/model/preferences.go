package model

import "slices"

const (
	DefaultTimezone  = "Europe/Paris"
	DefaultLanguage  = "fr"
	DefaultStartHour = 8
	DefaultEndHour   = 20
)

// UserPreferences drive slot search and notification behaviour.
type UserPreferences struct {
	UserID               string
	Timezone             string
	Language             string
	StartHour            int
	EndHour              int
	AllowedDays          []int // 1 = Monday .. 7 = Sunday
	NotificationsEnabled bool
}

// DefaultPreferences returns the preferences used for users who never set any.
func DefaultPreferences(userID string) UserPreferences {
	return UserPreferences{
		UserID:               userID,
		Timezone:             DefaultTimezone,
		Language:             DefaultLanguage,
		StartHour:            DefaultStartHour,
		EndHour:              DefaultEndHour,
		AllowedDays:          []int{1, 2, 3, 4, 5},
		NotificationsEnabled: true,
	}
}

// AllowsDay reports whether the ISO weekday is a working day.
func (p UserPreferences) AllowsDay(isoWeekday int) bool {
	return slices.Contains(p.AllowedDays, isoWeekday)
}

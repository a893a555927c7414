package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"task-scheduling-assistant/internal/model"
	"task-scheduling-assistant/internal/scheduling"
	"task-scheduling-assistant/internal/scheduling/repository"
)

// CurrentState returns the user's live conversation, if any.
func (uc *implUseCase) CurrentState(ctx context.Context, sc model.Scope) (model.ConversationState, bool, error) {
	if sc.UserID == "" {
		return model.ConversationState{}, false, scheduling.ErrEmptyUser
	}
	return uc.repo.GetState(ctx, sc.UserID)
}

type preferencesChanged struct {
	Timezone             string `json:"timezone"`
	Language             string `json:"language"`
	StartHour            int    `json:"start_hour"`
	EndHour              int    `json:"end_hour"`
	AllowedDays          []int  `json:"allowed_days"`
	NotificationsEnabled bool   `json:"notifications_enabled"`
}

// UpdatePreferences merges input into the stored preferences and enqueues a
// preferences_changed notification in the same transaction.
func (uc *implUseCase) UpdatePreferences(ctx context.Context, sc model.Scope, input scheduling.PreferencesInput) (model.UserPreferences, error) {
	if sc.UserID == "" {
		return model.UserPreferences{}, scheduling.ErrEmptyUser
	}

	ctx, done := uc.begin(ctx, sc.UserID)
	defer done()

	prefs, err := uc.repo.GetPreferences(ctx, sc.UserID)
	if err != nil {
		return model.UserPreferences{}, err
	}
	prefs.UserID = sc.UserID

	if input.Timezone != nil {
		prefs.Timezone = *input.Timezone
	}
	if input.Language != nil {
		prefs.Language = *input.Language
	}
	if input.StartHour != nil {
		prefs.StartHour = *input.StartHour
	}
	if input.EndHour != nil {
		prefs.EndHour = *input.EndHour
	}
	if input.AllowedDays != nil {
		days := slices.Clone(input.AllowedDays)
		slices.Sort(days)
		prefs.AllowedDays = slices.Compact(days)
	}
	if input.NotificationsEnabled != nil {
		prefs.NotificationsEnabled = *input.NotificationsEnabled
	}

	if err := uc.validatePreferences(prefs); err != nil {
		return model.UserPreferences{}, err
	}

	payload, err := json.Marshal(preferencesChanged{
		Timezone:             prefs.Timezone,
		Language:             prefs.Language,
		StartHour:            prefs.StartHour,
		EndHour:              prefs.EndHour,
		AllowedDays:          prefs.AllowedDays,
		NotificationsEnabled: prefs.NotificationsEnabled,
	})
	if err != nil {
		return model.UserPreferences{}, err
	}

	err = uc.repo.UpsertPreferences(ctx, repository.UpsertPreferencesOptions{
		Preferences: prefs,
		Outbox: &model.Notification{
			Kind:    model.KindPreferencesChanged,
			UserID:  sc.UserID,
			Payload: payload,
		},
	})
	if err != nil {
		return model.UserPreferences{}, err
	}

	uc.l.Infof(ctx, "UpdatePreferences: user=%s tz=%s lang=%s hours=%d-%d", sc.UserID, prefs.Timezone, prefs.Language, prefs.StartHour, prefs.EndHour)
	return prefs, nil
}

func (uc *implUseCase) validatePreferences(p model.UserPreferences) error {
	if _, err := time.LoadLocation(p.Timezone); err != nil || p.Timezone == "" {
		return fmt.Errorf("%w: timezone %q", scheduling.ErrInvalidPreferences, p.Timezone)
	}
	if !uc.tr.Supported(p.Language) {
		return fmt.Errorf("%w: language %q", scheduling.ErrInvalidPreferences, p.Language)
	}
	if p.StartHour < 0 || p.EndHour > 24 || p.StartHour >= p.EndHour {
		return fmt.Errorf("%w: working hours %d-%d", scheduling.ErrInvalidPreferences, p.StartHour, p.EndHour)
	}
	if len(p.AllowedDays) == 0 {
		return fmt.Errorf("%w: no allowed day", scheduling.ErrInvalidPreferences)
	}
	for _, d := range p.AllowedDays {
		if d < 1 || d > 7 {
			return fmt.Errorf("%w: day %d", scheduling.ErrInvalidPreferences, d)
		}
	}
	return nil
}

package http

import (
	"time"

	"task-scheduling-assistant/internal/model"
	"task-scheduling-assistant/internal/scheduling"
)

// --- Request DTOs ---

type messageReq struct {
	UserID string `json:"user_id" binding:"required"`
	Text   string `json:"text"`
}

func (r messageReq) toInput() scheduling.MessageInput {
	return scheduling.MessageInput{Text: r.Text}
}

// ---

type createTaskReq struct {
	UserID           string `json:"user_id"           binding:"required"`
	Title            string `json:"title"             binding:"required,max=255"`
	Description      string `json:"description"       binding:"max=2000"`
	EstimatedMinutes int    `json:"estimated_minutes" binding:"gte=0,lte=1440"`
	Priority         int    `json:"priority"          binding:"gte=0,lte=4"`
	EnergyLevel      int    `json:"energy_level"      binding:"gte=0,lte=3"`
	Deadline         string `json:"deadline"`
}

func (r createTaskReq) toInput() scheduling.CreateTaskInput {
	return scheduling.CreateTaskInput{
		Title:            r.Title,
		Description:      r.Description,
		EstimatedMinutes: r.EstimatedMinutes,
		Priority:         r.Priority,
		EnergyLevel:      r.EnergyLevel,
		Deadline:         r.Deadline,
	}
}

// ---

type proposeReq struct {
	TaskID string `json:"-"` // populated from URI param
	UserID string `json:"user_id" binding:"required"`
}

// ---

type respondReq struct {
	EventID       string `json:"-"` // populated from URI param
	UserID        string `json:"user_id"        binding:"required"`
	Response      string `json:"response"       binding:"required,oneof=done not_done snoozed"`
	SnoozeMinutes int    `json:"snooze_minutes" binding:"gte=0,lte=240"`
}

func (r respondReq) toInput() scheduling.RespondInput {
	return scheduling.RespondInput{
		EventID:       r.EventID,
		Response:      model.UserResponse(r.Response),
		SnoozeMinutes: r.SnoozeMinutes,
	}
}

// ---

type preferencesReq struct {
	UserID               string  `json:"-"` // populated from URI param
	Timezone             *string `json:"timezone"`
	Language             *string `json:"language"`
	StartHour            *int    `json:"start_hour"`
	EndHour              *int    `json:"end_hour"`
	AllowedDays          []int   `json:"allowed_days"`
	NotificationsEnabled *bool   `json:"notifications_enabled"`
}

func (r preferencesReq) toInput() scheduling.PreferencesInput {
	return scheduling.PreferencesInput{
		Timezone:             r.Timezone,
		Language:             r.Language,
		StartHour:            r.StartHour,
		EndHour:              r.EndHour,
		AllowedDays:          r.AllowedDays,
		NotificationsEnabled: r.NotificationsEnabled,
	}
}

// --- Response DTOs ---

type messageResp struct {
	Handled bool   `json:"handled"`
	Reply   string `json:"reply"`
	State   string `json:"state"`
}

func (h *handler) newMessageResp(out scheduling.MessageOutput) messageResp {
	return messageResp{Handled: out.Handled, Reply: out.Reply, State: string(out.State)}
}

type proposalResp struct {
	Proposed bool         `json:"proposed"`
	Reply    string       `json:"reply"`
	Slots    []model.Slot `json:"slots"`
}

func (h *handler) newProposalResp(out scheduling.ProposeOutput) proposalResp {
	slots := out.Slots
	if slots == nil {
		slots = []model.Slot{}
	}
	return proposalResp{Proposed: out.Proposed, Reply: out.Reply, Slots: slots}
}

type taskResp struct {
	ID               string     `json:"id"`
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	EstimatedMinutes int        `json:"estimated_minutes"`
	Priority         int        `json:"priority"`
	EnergyLevel      int        `json:"energy_level"`
	Deadline         *time.Time `json:"deadline,omitempty"`
	SchedulingStatus string     `json:"scheduling_status"`
	CreatedAt        time.Time  `json:"created_at"`
}

type createTaskResp struct {
	Task     taskResp     `json:"task"`
	Proposal proposalResp `json:"proposal"`
}

func (h *handler) newCreateTaskResp(out scheduling.CreateTaskOutput) createTaskResp {
	t := out.Task
	return createTaskResp{
		Task: taskResp{
			ID:               t.ID,
			Title:            t.Title,
			Description:      t.Description,
			EstimatedMinutes: t.EstimatedMinutes,
			Priority:         t.Priority,
			EnergyLevel:      t.EnergyLevel,
			Deadline:         t.Deadline,
			SchedulingStatus: string(t.SchedulingStatus),
			CreatedAt:        t.CreatedAt,
		},
		Proposal: h.newProposalResp(out.Proposal),
	}
}

type conversationResp struct {
	Active      bool          `json:"active"`
	State       string        `json:"state,omitempty"`
	Payload     model.Payload `json:"payload,omitempty"`
	Version     int64         `json:"version,omitempty"`
	LastUpdated *time.Time    `json:"last_updated,omitempty"`
}

func (h *handler) newConversationResp(st model.ConversationState, found bool) conversationResp {
	if !found {
		return conversationResp{}
	}
	updated := st.LastUpdated
	return conversationResp{
		Active:      true,
		State:       string(st.State()),
		Payload:     st.Payload,
		Version:     st.Version,
		LastUpdated: &updated,
	}
}

type preferencesResp struct {
	UserID               string `json:"user_id"`
	Timezone             string `json:"timezone"`
	Language             string `json:"language"`
	StartHour            int    `json:"start_hour"`
	EndHour              int    `json:"end_hour"`
	AllowedDays          []int  `json:"allowed_days"`
	NotificationsEnabled bool   `json:"notifications_enabled"`
}

func (h *handler) newPreferencesResp(p model.UserPreferences) preferencesResp {
	return preferencesResp{
		UserID:               p.UserID,
		Timezone:             p.Timezone,
		Language:             p.Language,
		StartHour:            p.StartHour,
		EndHour:              p.EndHour,
		AllowedDays:          p.AllowedDays,
		NotificationsEnabled: p.NotificationsEnabled,
	}
}

package http

import (
	"encoding/json"
	"time"

	"task-scheduling-assistant/internal/model"
)

const (
	defaultLimit = 50
	maxLimit     = 500
)

type listDeadReq struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=500"`
}

type notificationResp struct {
	ID            string          `json:"id"`
	Kind          string          `json:"kind"`
	UserID        string          `json:"user_id"`
	Payload       json.RawMessage `json:"payload" swaggertype:"object"`
	Attempts      int             `json:"attempts"`
	LastError     string          `json:"last_error"`
	NextAttemptAt time.Time       `json:"next_attempt_at"`
	CreatedAt     time.Time       `json:"created_at"`
}

type listDeadResp struct {
	Items []notificationResp `json:"items"`
}

func newListDeadResp(rows []model.Notification) listDeadResp {
	items := make([]notificationResp, 0, len(rows))
	for _, n := range rows {
		items = append(items, notificationResp{
			ID:            n.ID,
			Kind:          n.Kind,
			UserID:        n.UserID,
			Payload:       n.Payload,
			Attempts:      n.Attempts,
			LastError:     n.LastError,
			NextAttemptAt: n.NextAttemptAt,
			CreatedAt:     n.CreatedAt,
		})
	}
	return listDeadResp{Items: items}
}

package model

import (
	"encoding/json"
	"time"
)

type NotificationStatus string

const (
	NotificationPending   NotificationStatus = "pending"
	NotificationDelivered NotificationStatus = "delivered"
	NotificationDead      NotificationStatus = "dead"
)

// Notification kinds.
const (
	KindPreferencesChanged = "preferences_changed"
)

// Notification is an outbox row delivered at least once to peer services.
type Notification struct {
	ID            string
	Kind          string
	UserID        string
	Payload       json.RawMessage
	Status        NotificationStatus
	Attempts      int
	NextAttemptAt time.Time
	LastError     string
	CreatedAt     time.Time
	DeliveredAt   *time.Time
}

package models

import "time"

// NotificationKind classifies what produced a notification.
type NotificationKind string

const (
	NotifyValidation NotificationKind = "validation"
	NotifyNotFound   NotificationKind = "not_found"
	NotifyBackend    NotificationKind = "backend"
	NotifyConflict   NotificationKind = "conflict"
	NotifyReminder   NotificationKind = "reminder"
	NotifyInfo       NotificationKind = "info"
)

// Notification is a user-visible message shown by the dashboard.
type Notification struct {
	ID        string           `bson:"id" json:"id"`
	SessionID string           `bson:"sessionId,omitempty" json:"sessionId,omitempty"`
	Kind      NotificationKind `bson:"kind" json:"kind"`
	Level     string           `bson:"level" json:"level"` // "error", "warning" or "info"
	Title     string           `bson:"title" json:"title"`
	Message   string           `bson:"message" json:"message"`
	Field     string           `bson:"field,omitempty" json:"field,omitempty"`
	MeetingID MeetingID        `bson:"meetingId,omitempty" json:"meetingId,omitempty"`
	CreatedAt time.Time        `bson:"createdAt" json:"createdAt"`
	Read      bool             `bson:"read" json:"read"`
}

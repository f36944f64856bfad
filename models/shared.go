package models

// ReminderPayload is the asynq payload of a meeting reminder.
type ReminderPayload struct {
	SessionID string    `json:"sessionId,omitempty"` // session that booked the meeting, if any
	MeetingID MeetingID `json:"meetingId"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	FireDate  string    `json:"fireDate"` // RFC 3339
}

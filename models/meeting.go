package models

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// MeetingStatus is the lifecycle state of a meeting.
type MeetingStatus string

const (
	StatusRequestSent MeetingStatus = "RequestSent"
	StatusConfirmed   MeetingStatus = "Confirmed"
	StatusCompleted   MeetingStatus = "Completed"
	StatusCanceled    MeetingStatus = "Canceled"
	StatusWaiting     MeetingStatus = "Waiting"
	StatusUnknown     MeetingStatus = "Unknown"
)

// AllStatuses lists the known statuses in lifecycle order.
var AllStatuses = []MeetingStatus{
	StatusRequestSent,
	StatusConfirmed,
	StatusWaiting,
	StatusCompleted,
	StatusCanceled,
}

// ParseStatus maps the backend's free-form status strings ("Request Sent",
// "request_sent", "Cancelled", ...) onto MeetingStatus.
func ParseStatus(raw string) MeetingStatus {
	key := strings.ToLower(raw)
	key = strings.NewReplacer(" ", "", "_", "", "-", "").Replace(key)
	switch key {
	case "requestsent", "request", "requested":
		return StatusRequestSent
	case "confirmed":
		return StatusConfirmed
	case "completed", "complete":
		return StatusCompleted
	case "canceled", "cancelled":
		return StatusCanceled
	case "waiting":
		return StatusWaiting
	}
	return StatusUnknown
}

// MeetingID is the backend identifier of a meeting; the backend sends either
// a number or a string.
type MeetingID string

func (id *MeetingID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*id = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = MeetingID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*id = MeetingID(n.String())
	return nil
}

func (id MeetingID) String() string { return string(id) }

// Meeting is the dashboard's read-through copy of a backend meeting.
type Meeting struct {
	ID             MeetingID     `json:"id"`
	Title          string        `json:"title"`
	Project        string        `json:"project"`
	ProjectID      string        `json:"projectId,omitempty"`
	Status         MeetingStatus `json:"status"`
	Date           string        `json:"date"`      // raw backend value, may be empty or "0000-00-00"
	StartTime      string        `json:"startTime"` // "HH:MM"
	EndTime        string        `json:"endTime"`   // "HH:MM"
	Description    string        `json:"description,omitempty"`
	Note           string        `json:"note,omitempty"`
	AttendeeCount  int           `json:"attendeeCount"`
	AttachmentName string        `json:"attachmentName,omitempty"`
	JitsiURL       string        `json:"jitsiUrl,omitempty"`
}

// TimeRange renders "HH:MM-HH:MM".
func (m Meeting) TimeRange() string {
	return ShortClock(m.StartTime) + "-" + ShortClock(m.EndTime)
}

type rawMeeting struct {
	ID             MeetingID       `json:"id"`
	MeetingName    string          `json:"meeting_name"`
	Title          string          `json:"title"`
	ProjectName    string          `json:"project_name"`
	ProjectID      json.RawMessage `json:"project_id"`
	Status         string          `json:"status"`
	Date           string          `json:"date"`
	StartTime      string          `json:"start_time"`
	EndTime        string          `json:"end_time"`
	Description    string          `json:"description"`
	Note           string          `json:"note"`
	AttendeeCount  int             `json:"attendee_count"`
	AttachmentName string          `json:"attachment_name"`
	JitsiURL       string          `json:"jitsi_url"`
}

func (r rawMeeting) toMeeting() Meeting {
	title := r.MeetingName
	if title == "" {
		title = r.Title
	}
	count := r.AttendeeCount
	if count < 0 {
		count = 0
	}
	return Meeting{
		ID:             r.ID,
		Title:          title,
		Project:        r.ProjectName,
		ProjectID:      looseString(r.ProjectID),
		Status:         ParseStatus(r.Status),
		Date:           strings.TrimSpace(r.Date),
		StartTime:      ShortClock(r.StartTime),
		EndTime:        ShortClock(r.EndTime),
		Description:    r.Description,
		Note:           r.Note,
		AttendeeCount:  count,
		AttachmentName: r.AttachmentName,
		JitsiURL:       r.JitsiURL,
	}
}

// DecodeMeetings converts the backend's meeting list payload.
func DecodeMeetings(data json.RawMessage) ([]Meeting, error) {
	if len(data) == 0 || string(data) == "null" {
		return []Meeting{}, nil
	}
	var raw []rawMeeting
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	meetings := make([]Meeting, 0, len(raw))
	for _, r := range raw {
		meetings = append(meetings, r.toMeeting())
	}
	return meetings, nil
}

// DecodeMeeting converts a single backend meeting record.
func DecodeMeeting(data json.RawMessage) (*Meeting, error) {
	var raw rawMeeting
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	m := raw.toMeeting()
	return &m, nil
}

// looseString accepts a JSON string or number and returns its text.
func looseString(b json.RawMessage) string {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var f json.Number
	if err := json.Unmarshal(b, &f); err == nil {
		if i, err := strconv.ParseInt(f.String(), 10, 64); err == nil {
			return strconv.FormatInt(i, 10)
		}
		return f.String()
	}
	return ""
}

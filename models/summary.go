package models

// MeetingSummary is the read-only post-meeting record.
type MeetingSummary struct {
	Attendees []Attendee       `json:"attendees"`
	Notes     []string         `json:"notes"`
	ActionLog []ActionLogEntry `json:"actionLog"`
}

type Attendee struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
}

// ActionLogEntry records one thing that happened to a meeting.
type ActionLogEntry struct {
	Date   string `json:"date"`
	Action string `json:"action"`
	By     string `json:"by,omitempty"`
}

// RawSummary mirrors the backend wire shape of a summary.
type RawSummary struct {
	Attendees []Attendee `json:"attendees"`
	Notes     []string   `json:"notes"`
	ActionLog []struct {
		Date   string `json:"date"`
		Action string `json:"action"`
		By     string `json:"by"`
	} `json:"action_log"`
}

// Summary converts the wire shape, never returning nil slices.
func (r RawSummary) Summary() MeetingSummary {
	s := MeetingSummary{
		Attendees: r.Attendees,
		Notes:     r.Notes,
		ActionLog: make([]ActionLogEntry, 0, len(r.ActionLog)),
	}
	if s.Attendees == nil {
		s.Attendees = []Attendee{}
	}
	if s.Notes == nil {
		s.Notes = []string{}
	}
	for _, e := range r.ActionLog {
		s.ActionLog = append(s.ActionLog, ActionLogEntry{Date: e.Date, Action: e.Action, By: e.By})
	}
	return s
}

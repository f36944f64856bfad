// Package summary tracks the summary modal of a board session so a late
// response never shows up under a different meeting.
package summary

import (
	"opsdash/models"
)

// ViewState is the stage of the summary modal.
type ViewState string

const (
	StateIdle    ViewState = "idle"
	StateLoading ViewState = "loading"
	StateReady   ViewState = "ready"
	StateFailed  ViewState = "failed"
)

// View is the summary currently shown. It is stored inside a board session.
type View struct {
	MeetingID models.MeetingID       `json:"meetingId,omitempty"`
	State     ViewState              `json:"state"`
	Summary   *models.MeetingSummary `json:"summary,omitempty"`
	Error     string                 `json:"error,omitempty"`
	Token     uint64                 `json:"token"`
}

// Begin switches the view to a meeting in loading state, dropping whatever
// was shown before, and returns the token the eventual result must present.
func (v *View) Begin(id models.MeetingID) uint64 {
	v.Token++
	v.MeetingID = id
	v.State = StateLoading
	v.Summary = nil
	v.Error = ""
	return v.Token
}

// Resolve stores a fetched summary if token is still current. It reports
// whether the result was applied.
func (v *View) Resolve(token uint64, s *models.MeetingSummary) bool {
	if !v.current(token) {
		return false
	}
	v.State = StateReady
	v.Summary = s
	return true
}

// Fail records a failed fetch if token is still current.
func (v *View) Fail(token uint64, msg string) bool {
	if !v.current(token) {
		return false
	}
	v.State = StateFailed
	v.Error = msg
	return true
}

// Close discards the view. The token keeps counting so results of fetches
// started before the close are rejected.
func (v *View) Close() {
	v.MeetingID = ""
	v.State = StateIdle
	v.Summary = nil
	v.Error = ""
	v.Token++
}

// For returns the summary only when it belongs to id and is ready.
func (v *View) For(id models.MeetingID) (*models.MeetingSummary, bool) {
	if v.MeetingID != id || v.State != StateReady {
		return nil, false
	}
	return v.Summary, true
}

func (v *View) current(token uint64) bool {
	return token == v.Token && v.State == StateLoading
}

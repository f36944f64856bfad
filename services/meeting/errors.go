package meeting

import (
	"errors"
	"fmt"
	"strings"

	"opsdash/models"
)

// ErrActionNotOffered is returned when a meeting's status does not offer the
// requested action.
var ErrActionNotOffered = errors.New("action not available for this meeting")

// ValidationError is a required form field that is missing or blank.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

func NewValidationError(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}

// NotFoundError references a meeting the backend does not know.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s not found: no id given", e.Resource)
	}
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

func newMeetingNotFound(id models.MeetingID) error {
	return &NotFoundError{Resource: "meeting", ID: id.String()}
}

// ActionError wraps ErrActionNotOffered with the meeting and action involved.
type ActionError struct {
	Action Action
	Status models.MeetingStatus
	ID     models.MeetingID
}

func (e *ActionError) Error() string {
	return fmt.Sprintf("%s is not offered for meeting %s in status %s", e.Action, e.ID, e.Status)
}

func (e *ActionError) Unwrap() error { return ErrActionNotOffered }

func blank(s string) bool { return strings.TrimSpace(s) == "" }

// Package board holds the per-browser scheduling state of the dashboard: the
// slot selection of an open form, the single active modal and the summary view.
package board

import (
	"encoding/json"
	"errors"
	"time"

	"opsdash/models"
	"opsdash/services/summary"
)

var (
	ErrSessionNotFound = errors.New("board session not found or expired")
	// ErrNoForm is returned when a form operation arrives while the matching
	// form is not the active modal.
	ErrNoForm = errors.New("no matching form is open")
	// ErrNothingToList is returned when a calendar day holds fewer than two
	// meetings, so there is no overflow list to open.
	ErrNothingToList = errors.New("calendar day has no overflow list")
	// ErrSessionConflict is returned by Store.Save when the stored session
	// changed since it was loaded.
	ErrSessionConflict = errors.New("board session was modified concurrently")
)

// Draft keeps the last submitted form values so a failed submit can be
// corrected without retyping.
type Draft struct {
	Create     *models.CreateMeetingInput `json:"create,omitempty"`
	Reschedule *models.RescheduleInput    `json:"reschedule,omitempty"`
}

// Session is one dashboard's scheduling state.
type Session struct {
	ID        string                `json:"id"`
	Selection models.SelectionState `json:"selection"`
	Modal     models.Modal          `json:"-"`
	Summary   summary.View          `json:"summary"`
	Draft     *Draft                `json:"draft,omitempty"`
	Version   int64                 `json:"version"` // bumped by every successful Save
	CreatedAt time.Time             `json:"createdAt"`
	UpdatedAt time.Time             `json:"updatedAt"`
}

type sessionAlias Session

type sessionJSON struct {
	*sessionAlias
	Modal json.RawMessage `json:"modal"`
}

func (s Session) MarshalJSON() ([]byte, error) {
	modal, err := models.MarshalModal(s.Modal)
	if err != nil {
		return nil, err
	}
	alias := sessionAlias(s)
	return json.Marshal(sessionJSON{sessionAlias: &alias, Modal: modal})
}

func (s *Session) UnmarshalJSON(b []byte) error {
	aux := sessionJSON{sessionAlias: (*sessionAlias)(s)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	modal, err := models.UnmarshalModal(aux.Modal)
	if err != nil {
		return err
	}
	s.Modal = modal
	return nil
}

// ActiveModal never returns nil.
func (s *Session) ActiveModal() models.Modal {
	if s.Modal == nil {
		return models.NoModal{}
	}
	return s.Modal
}

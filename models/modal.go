package models

import (
	"encoding/json"
	"fmt"
)

// ModalKind discriminates the dashboard's active modal.
type ModalKind string

const (
	ModalNone          ModalKind = "none"
	ModalAddMeeting    ModalKind = "addMeeting"
	ModalEditMeeting   ModalKind = "editMeeting"
	ModalDeleteConfirm ModalKind = "deleteConfirm"
	ModalSummary       ModalKind = "summary"
	ModalDayList       ModalKind = "dayList"
)

// Modal is the single active modal of a board session. The concrete types
// below are the only implementations, so two modals can never be open at once.
type Modal interface {
	Kind() ModalKind
	isModal()
}

type NoModal struct{}

type AddMeetingModal struct{}

type EditMeetingModal struct {
	Meeting Meeting `json:"meeting"`
}

type DeleteConfirmModal struct {
	Meeting Meeting `json:"meeting"`
}

type SummaryModal struct {
	MeetingID MeetingID `json:"meetingId"`
}

// DayListModal lists every meeting of an overflowing calendar day.
type DayListModal struct {
	Date string `json:"date"`
}

func (NoModal) Kind() ModalKind            { return ModalNone }
func (AddMeetingModal) Kind() ModalKind    { return ModalAddMeeting }
func (EditMeetingModal) Kind() ModalKind   { return ModalEditMeeting }
func (DeleteConfirmModal) Kind() ModalKind { return ModalDeleteConfirm }
func (SummaryModal) Kind() ModalKind       { return ModalSummary }
func (DayListModal) Kind() ModalKind       { return ModalDayList }

func (NoModal) isModal()            {}
func (AddMeetingModal) isModal()    {}
func (EditMeetingModal) isModal()   {}
func (DeleteConfirmModal) isModal() {}
func (SummaryModal) isModal()       {}
func (DayListModal) isModal()       {}

// IsForm reports whether the modal hosts a booking form with a slot selection.
func IsForm(m Modal) bool {
	if m == nil {
		return false
	}
	k := m.Kind()
	return k == ModalAddMeeting || k == ModalEditMeeting
}

// modalEnvelope is the tagged JSON form of a Modal.
type modalEnvelope struct {
	Kind      ModalKind `json:"kind"`
	Meeting   *Meeting  `json:"meeting,omitempty"`
	MeetingID MeetingID `json:"meetingId,omitempty"`
	Date      string    `json:"date,omitempty"`
}

// MarshalModal encodes a Modal with its kind tag.
func MarshalModal(m Modal) ([]byte, error) {
	env := modalEnvelope{Kind: ModalNone}
	switch v := m.(type) {
	case nil, NoModal:
	case AddMeetingModal:
		env.Kind = ModalAddMeeting
	case EditMeetingModal:
		env.Kind = ModalEditMeeting
		env.Meeting = &v.Meeting
	case DeleteConfirmModal:
		env.Kind = ModalDeleteConfirm
		env.Meeting = &v.Meeting
	case SummaryModal:
		env.Kind = ModalSummary
		env.MeetingID = v.MeetingID
	case DayListModal:
		env.Kind = ModalDayList
		env.Date = v.Date
	default:
		return nil, fmt.Errorf("unsupported modal type %T", m)
	}
	return json.Marshal(env)
}

// UnmarshalModal decodes the tagged JSON form produced by MarshalModal.
func UnmarshalModal(b []byte) (Modal, error) {
	if len(b) == 0 || string(b) == "null" {
		return NoModal{}, nil
	}
	var env modalEnvelope
	if err := json.Unmarshal(b, &env); err != nil {
		return nil, err
	}
	switch env.Kind {
	case "", ModalNone:
		return NoModal{}, nil
	case ModalAddMeeting:
		return AddMeetingModal{}, nil
	case ModalEditMeeting, ModalDeleteConfirm:
		if env.Meeting == nil {
			return nil, fmt.Errorf("modal %q without meeting", env.Kind)
		}
		if env.Kind == ModalEditMeeting {
			return EditMeetingModal{Meeting: *env.Meeting}, nil
		}
		return DeleteConfirmModal{Meeting: *env.Meeting}, nil
	case ModalSummary:
		return SummaryModal{MeetingID: env.MeetingID}, nil
	case ModalDayList:
		return DayListModal{Date: env.Date}, nil
	}
	return nil, fmt.Errorf("unknown modal kind %q", env.Kind)
}

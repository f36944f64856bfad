// Package selection implements the two-stage date-then-slot picker used by
// the meeting forms.
package selection

import (
	"errors"
	"strings"

	"opsdash/models"
	"opsdash/services/meeting"
)

// State is the stage of the picker.
type State int

const (
	Unselected State = iota
	DateChosen
	SlotChosen
)

func (s State) String() string {
	switch s {
	case DateChosen:
		return "dateChosen"
	case SlotChosen:
		return "slotChosen"
	}
	return "unselected"
}

var (
	ErrNoDateChosen     = errors.New("pick a date before picking a time slot")
	ErrSlotDateMismatch = errors.New("time slot does not belong to the selected date")
)

// Selector holds the date/slot choice. The zero value is Unselected.
type Selector struct {
	date string
	slot *models.AvailableSlot
}

// FromState restores a selector from a stored snapshot. A slot whose date does
// not match the stored date is dropped.
func FromState(st models.SelectionState) *Selector {
	s := &Selector{date: st.SelectedDate}
	if st.SelectedSlot != nil && st.SelectedDate != "" && st.SelectedSlot.Date == st.SelectedDate {
		slot := *st.SelectedSlot
		s.slot = &slot
	}
	return s
}

// State reports the current stage.
func (s *Selector) State() State {
	switch {
	case s.slot != nil:
		return SlotChosen
	case s.date != "":
		return DateChosen
	}
	return Unselected
}

// PickDate selects a date and always clears the slot, even when the same date
// is picked again.
func (s *Selector) PickDate(date string) error {
	date = strings.TrimSpace(date)
	if date == "" {
		return meeting.NewValidationError("date", "Please select a date")
	}
	s.slot = nil
	s.date = date
	return nil
}

// PickSlot selects a slot of the current date.
func (s *Selector) PickSlot(slot models.AvailableSlot) error {
	if s.date == "" {
		return ErrNoDateChosen
	}
	if slot.Date != s.date {
		return ErrSlotDateMismatch
	}
	s.slot = &slot
	return nil
}

// Reset returns to Unselected.
func (s *Selector) Reset() {
	s.date = ""
	s.slot = nil
}

// SelectedDate returns the chosen date or "".
func (s *Selector) SelectedDate() string { return s.date }

// SelectedSlot returns a copy of the chosen slot, or nil.
func (s *Selector) SelectedSlot() *models.AvailableSlot {
	if s.slot == nil {
		return nil
	}
	slot := *s.slot
	return &slot
}

// Submittable returns the chosen slot, or a validation error unless a slot
// has been chosen.
func (s *Selector) Submittable() (models.AvailableSlot, error) {
	if s.State() != SlotChosen {
		return models.AvailableSlot{}, meeting.NewValidationError("slot", "Please select a time slot")
	}
	return *s.slot, nil
}

// Snapshot returns the storable form of the selection.
func (s *Selector) Snapshot() models.SelectionState {
	return models.SelectionState{SelectedDate: s.date, SelectedSlot: s.SelectedSlot()}
}

package models

// SelectionState is the date/slot choice of an open booking form.
type SelectionState struct {
	SelectedDate string         `json:"selectedDate,omitempty"`
	SelectedSlot *AvailableSlot `json:"selectedSlot,omitempty"`
}

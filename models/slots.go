package models

import (
	"encoding/json"
	"strings"
)

// AvailableSlot represents a bookable window published by the backend.
type AvailableSlot struct {
	SlotID    int    `json:"slotId"`    // backend handle used when booking
	Date      string `json:"date"`      // e.g., "2025-12-01"
	StartTime string `json:"startTime"` // "HH:MM", 24-hour
	EndTime   string `json:"endTime"`   // "HH:MM", 24-hour
	IsOpen    bool   `json:"isOpen"`
}

// Key returns the identity of the slot: date, start and end.
func (s AvailableSlot) Key() string {
	return s.Date + "|" + s.StartTime + "|" + s.EndTime
}

// Label renders the slot the way pickers show it, e.g. "10:00-10:30".
func (s AvailableSlot) Label() string {
	return ShortClock(s.StartTime) + "-" + ShortClock(s.EndTime)
}

// rawSlot mirrors the backend wire shape.
type rawSlot struct {
	ID        *int   `json:"id"`
	SlotID    *int   `json:"slot_id"`
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	IsOpen    *bool  `json:"is_open"`
}

// DecodeSlots converts the backend's slot payload into AvailableSlot values.
// Slots without an explicit is_open flag are treated as open.
func DecodeSlots(data json.RawMessage) ([]AvailableSlot, error) {
	var raw []rawSlot
	if len(data) == 0 || string(data) == "null" {
		return []AvailableSlot{}, nil
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	slots := make([]AvailableSlot, 0, len(raw))
	for _, r := range raw {
		s := AvailableSlot{
			Date:      strings.TrimSpace(r.Date),
			StartTime: ShortClock(r.StartTime),
			EndTime:   ShortClock(r.EndTime),
			IsOpen:    true,
		}
		switch {
		case r.SlotID != nil:
			s.SlotID = *r.SlotID
		case r.ID != nil:
			s.SlotID = *r.ID
		}
		if r.IsOpen != nil {
			s.IsOpen = *r.IsOpen
		}
		slots = append(slots, s)
	}
	return slots, nil
}

// ShortClock trims an "HH:MM:SS" value down to "HH:MM". Other inputs are
// returned trimmed but otherwise untouched.
func ShortClock(v string) string {
	v = strings.TrimSpace(v)
	if len(v) == len("15:04:05") && v[2] == ':' && v[5] == ':' {
		return v[:5]
	}
	return v
}

package availability

import (
	"sort"

	"opsdash/models"
)

// Index is the date-grouped view over a raw slot list.
type Index struct {
	UniqueDates []string                          `json:"uniqueDates"`
	SlotsByDate map[string][]models.AvailableSlot `json:"slotsByDate"`
}

// IndexSlots groups slots by date. Dates are ISO "YYYY-MM-DD", so the lexical
// sort of UniqueDates is also chronological. Each date keeps its slots in the
// order they were received, duplicates included.
func IndexSlots(slots []models.AvailableSlot) Index {
	idx := Index{
		UniqueDates: make([]string, 0),
		SlotsByDate: make(map[string][]models.AvailableSlot),
	}
	for _, s := range slots {
		if _, seen := idx.SlotsByDate[s.Date]; !seen {
			idx.UniqueDates = append(idx.UniqueDates, s.Date)
		}
		idx.SlotsByDate[s.Date] = append(idx.SlotsByDate[s.Date], s)
	}
	sort.Strings(idx.UniqueDates)
	return idx
}

// SlotsFor returns the slots of one date, or nil.
func (idx Index) SlotsFor(date string) []models.AvailableSlot {
	return idx.SlotsByDate[date]
}

// Find looks a slot up by its backend id.
func (idx Index) Find(slotID int) (models.AvailableSlot, bool) {
	for _, d := range idx.UniqueDates {
		for _, s := range idx.SlotsByDate[d] {
			if s.SlotID == slotID {
				return s, true
			}
		}
	}
	return models.AvailableSlot{}, false
}

// Len is the total number of indexed slots.
func (idx Index) Len() int {
	n := 0
	for _, slots := range idx.SlotsByDate {
		n += len(slots)
	}
	return n
}

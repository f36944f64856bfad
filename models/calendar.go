package models

// CalendarCell is one day of the month grid.
type CalendarCell struct {
	Date     string    `json:"date"`
	InMonth  bool      `json:"inMonth"`
	Count    int       `json:"count"`
	Label    string    `json:"label,omitempty"` // first meeting, "Title HH:MM-HH:MM"
	Badge    string    `json:"badge,omitempty"` // "+N more", only when Count > 1
	Meetings []Meeting `json:"meetings,omitempty"`
}

// CalendarMonth is a Monday-first grid of weeks.
type CalendarMonth struct {
	Year  int              `json:"year"`
	Month int              `json:"month"`
	Weeks [][]CalendarCell `json:"weeks"`
}

package calendar

import (
	"io"
	"time"

	"opsdash/models"

	"github.com/emersion/go-ical"
)

const productID = "-//opsdash//meetings//EN"

// icsStatus maps the lifecycle onto iCalendar VEVENT statuses.
func icsStatus(s models.MeetingStatus) string {
	switch s {
	case models.StatusConfirmed, models.StatusCompleted:
		return "CONFIRMED"
	case models.StatusCanceled:
		return "CANCELLED"
	}
	return "TENTATIVE"
}

// ExportICS writes the meeting calendar as an iCalendar feed. Meetings are
// placed on the same normalized day the grid uses; a meeting without a usable
// start time becomes an all-day event.
func ExportICS(w io.Writer, meetings []models.Meeting, now time.Time) error {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, productID)

	loc := now.Location()
	for _, m := range meetings {
		day := NormalizeDate(m.Date, now)
		event := ical.NewEvent()
		event.Props.SetText(ical.PropUID, "meeting-"+m.ID.String()+"@opsdash")
		event.Props.SetDateTime(ical.PropDateTimeStamp, now.UTC())
		event.Props.SetText(ical.PropSummary, m.Title)
		event.Props.SetText(ical.PropStatus, icsStatus(m.Status))
		if m.Description != "" {
			event.Props.SetText(ical.PropDescription, m.Description)
		}
		if m.JitsiURL != "" {
			event.Props.SetText(ical.PropLocation, m.JitsiURL)
		}
		if m.Project != "" {
			event.Props.SetText(ical.PropCategories, m.Project)
		}

		start, startErr := time.ParseInLocation(dateLayout+" 15:04", day+" "+models.ShortClock(m.StartTime), loc)
		end, endErr := time.ParseInLocation(dateLayout+" 15:04", day+" "+models.ShortClock(m.EndTime), loc)
		if startErr != nil {
			d, _ := time.ParseInLocation(dateLayout, day, loc)
			event.Props.SetDate(ical.PropDateTimeStart, d)
		} else {
			event.Props.SetDateTime(ical.PropDateTimeStart, start)
			if endErr == nil && end.After(start) {
				event.Props.SetDateTime(ical.PropDateTimeEnd, end)
			}
		}
		cal.Children = append(cal.Children, event.Component)
	}
	return ical.NewEncoder(w).Encode(cal)
}

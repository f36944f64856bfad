package handlers

import (
	"net/http"

	"opsdash/utils"

	"github.com/gin-gonic/gin"
)

// Health handles GET /health.
func Health(c *gin.Context) {
	status := utils.GetHealthStatus()
	code := http.StatusOK
	if !status.Healthy() {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{"healthy": status.Healthy(), "status": status})
}

// NewHandlerBundle binds the handler methods into a HandlerBundle.
func NewHandlerBundle(b *BoardHandler, s *SchedulingHandler) *HandlerBundle {
	return &HandlerBundle{
		StartSession:     b.StartSession,
		GetSession:       b.GetSession,
		EndSession:       b.EndSession,
		OpenModal:        b.OpenModal,
		CloseModal:       b.CloseModal,
		PickDate:         b.PickDate,
		PickSlot:         b.PickSlot,
		SubmitCreate:     b.SubmitCreate,
		SubmitReschedule: b.SubmitReschedule,
		ConfirmDelete:    b.ConfirmDelete,
		GetSummaryView:   b.GetSummaryView,
		ListInbox:        b.ListInbox,
		MarkInboxRead:    b.MarkInboxRead,

		GetAvailability:     s.GetAvailability,
		RefreshAvailability: s.RefreshAvailability,

		ListMeetings:   s.ListMeetings,
		CancelMeeting:  s.CancelMeeting,
		DeleteMeeting:  s.DeleteMeeting,
		JoinMeeting:    s.JoinMeeting,
		MeetingSummary: s.MeetingSummary,
		ListProjects:   s.ListProjects,

		CalendarMonth: s.CalendarMonth,
		CalendarDay:   s.CalendarDay,
		CalendarICS:   s.CalendarICS,

		Health: Health,
	}
}

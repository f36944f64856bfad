package handlers

import (
	"net/http"

	"opsdash/services/availability"

	"github.com/gin-gonic/gin"
)

func availabilityBody(idx availability.Index, date string) gin.H {
	body := gin.H{"dates": idx.UniqueDates, "count": idx.Len()}
	if date != "" {
		body["date"] = date
		body["slots"] = idx.SlotsFor(date)
	} else {
		body["slotsByDate"] = idx.SlotsByDate
	}
	return body
}

// GetAvailability handles GET /availability, optionally narrowed to ?date=.
func (h *SchedulingHandler) GetAvailability(c *gin.Context) {
	idx, err := h.Availability.Get(c.Request.Context())
	if err != nil {
		fail(c, h.Notifications, c.GetHeader(SessionHeader), err)
		return
	}
	body := availabilityBody(idx, c.Query("date"))
	body["fetchedAt"] = h.Availability.FetchedAt()
	c.JSON(http.StatusOK, body)
}

// RefreshAvailability handles POST /availability/refresh.
func (h *SchedulingHandler) RefreshAvailability(c *gin.Context) {
	idx, err := h.Availability.Refresh(c.Request.Context())
	if err != nil {
		fail(c, h.Notifications, c.GetHeader(SessionHeader), err)
		return
	}
	body := availabilityBody(idx, "")
	body["fetchedAt"] = h.Availability.FetchedAt()
	c.JSON(http.StatusOK, body)
}

package handlers

import (
	"bytes"
	"net/http"
	"strconv"
	"time"

	"opsdash/services/calendar"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CalendarMonth handles GET /calendar?year=&month=. Missing values default
// to the current month.
func (h *SchedulingHandler) CalendarMonth(c *gin.Context) {
	now := h.now()
	year, month := now.Year(), now.Month()
	if raw := c.Query("year"); raw != "" {
		y, err := strconv.Atoi(raw)
		if err != nil || y < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid year"})
			return
		}
		year = y
	}
	if raw := c.Query("month"); raw != "" {
		m, err := strconv.Atoi(raw)
		if err != nil || m < 1 || m > 12 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid month"})
			return
		}
		month = time.Month(m)
	}

	meetings, err := h.Meetings.List(c.Request.Context())
	if err != nil {
		fail(c, h.Notifications, c.GetHeader(SessionHeader), err)
		return
	}
	grid := calendar.BuildMonth(year, month, calendar.GroupByDate(meetings, now))
	c.JSON(http.StatusOK, gin.H{"calendar": grid})
}

// CalendarDay handles GET /calendar/:date. Only days holding more than one
// meeting open a list.
func (h *SchedulingHandler) CalendarDay(c *gin.Context) {
	day, err := calendar.ParseDay(c.Param("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date", "message": err.Error()})
		return
	}
	meetings, err := h.Meetings.List(c.Request.Context())
	if err != nil {
		fail(c, h.Notifications, c.GetHeader(SessionHeader), err)
		return
	}
	list, ok := calendar.OpenCell(calendar.GroupByDate(meetings, h.now()), day)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Nothing to list", "date": day})
		return
	}
	c.JSON(http.StatusOK, gin.H{"date": day, "meetings": list})
}

// CalendarICS handles GET /calendar.ics.
func (h *SchedulingHandler) CalendarICS(c *gin.Context) {
	meetings, err := h.Meetings.List(c.Request.Context())
	if err != nil {
		fail(c, h.Notifications, c.GetHeader(SessionHeader), err)
		return
	}
	var buf bytes.Buffer
	if err := calendar.ExportICS(&buf, meetings, h.now()); err != nil {
		getLogger(c).Error("failed to encode calendar", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to export calendar"})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="meetings.ics"`)
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", buf.Bytes())
}

package handlers

import (
	"net/http"
	"time"

	"opsdash/models"
	"opsdash/services/availability"
	"opsdash/services/meeting"
	"opsdash/services/notification"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SessionHeader optionally ties a stateless request to a board session so
// failures land in that session's inbox.
const SessionHeader = "X-Session-ID"

// SchedulingHandler serves the meeting, availability and calendar endpoints.
type SchedulingHandler struct {
	Meetings      meeting.LifecycleManager
	Availability  *availability.Service
	Notifications notification.NotificationService
	Now           func() time.Time
}

func NewSchedulingHandler(m meeting.LifecycleManager, a *availability.Service, n notification.NotificationService) *SchedulingHandler {
	return &SchedulingHandler{Meetings: m, Availability: a, Notifications: n, Now: time.Now}
}

func (h *SchedulingHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

func meetingIDParam(c *gin.Context) models.MeetingID {
	return models.MeetingID(c.Param("meetingID"))
}

// ListMeetings handles GET /meetings. Each meeting carries the actions its
// status offers.
func (h *SchedulingHandler) ListMeetings(c *gin.Context) {
	meetings, err := h.Meetings.List(c.Request.Context())
	if err != nil {
		fail(c, h.Notifications, c.GetHeader(SessionHeader), err)
		return
	}
	if status := c.Query("status"); status != "" {
		want := models.ParseStatus(status)
		filtered := meetings[:0]
		for _, m := range meetings {
			if m.Status == want {
				filtered = append(filtered, m)
			}
		}
		meetings = filtered
	}
	c.JSON(http.StatusOK, gin.H{"meetings": meeting.Views(meetings)})
}

// CancelMeeting handles POST /meetings/:meetingID/cancel.
func (h *SchedulingHandler) CancelMeeting(c *gin.Context) {
	sessionID := c.GetHeader(SessionHeader)
	m, err := h.Meetings.Cancel(c.Request.Context(), meetingIDParam(c))
	if err != nil {
		fail(c, h.Notifications, sessionID, err)
		return
	}
	getLogger(c).Info("meeting canceled", zap.String("meetingID", m.ID.String()))
	n := h.Notifications.Info(c.Request.Context(), sessionID, "Meeting canceled", m.Title+" has been canceled", m.ID)
	c.JSON(http.StatusOK, gin.H{"meeting": meeting.MeetingView{Meeting: *m, Actions: meeting.ActionsFor(m.Status)}, "notification": n})
}

// DeleteMeeting handles DELETE /meetings/:meetingID.
func (h *SchedulingHandler) DeleteMeeting(c *gin.Context) {
	sessionID := c.GetHeader(SessionHeader)
	id := meetingIDParam(c)
	if err := h.Meetings.Delete(c.Request.Context(), id); err != nil {
		fail(c, h.Notifications, sessionID, err)
		return
	}
	getLogger(c).Info("meeting deleted", zap.String("meetingID", id.String()))
	n := h.Notifications.Info(c.Request.Context(), sessionID, "Meeting deleted", "The meeting has been removed", id)
	c.JSON(http.StatusOK, gin.H{"message": "Meeting deleted", "notification": n})
}

// JoinMeeting handles GET /meetings/:meetingID/join. With ?redirect=1 the
// client is sent straight to the conference URL.
func (h *SchedulingHandler) JoinMeeting(c *gin.Context) {
	url, err := h.Meetings.Join(c.Request.Context(), meetingIDParam(c))
	if err != nil {
		fail(c, h.Notifications, c.GetHeader(SessionHeader), err)
		return
	}
	if c.Query("redirect") == "1" {
		c.Redirect(http.StatusFound, url)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}

// MeetingSummary handles GET /meetings/:meetingID/summary.
func (h *SchedulingHandler) MeetingSummary(c *gin.Context) {
	s, err := h.Meetings.FetchSummary(c.Request.Context(), meetingIDParam(c))
	if err != nil {
		fail(c, h.Notifications, c.GetHeader(SessionHeader), err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"summary": s})
}

// ListProjects handles GET /projects.
func (h *SchedulingHandler) ListProjects(c *gin.Context) {
	projects, err := h.Meetings.Projects(c.Request.Context())
	if err != nil {
		fail(c, h.Notifications, c.GetHeader(SessionHeader), err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"projects": projects})
}

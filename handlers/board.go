package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"opsdash/models"
	"opsdash/services/board"
	"opsdash/services/notification"
	"opsdash/services/selection"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// maxAttachmentBytes bounds an uploaded meeting attachment.
const maxAttachmentBytes = 10 << 20

// BoardHandler serves the board session endpoints.
type BoardHandler struct {
	Board         *board.Service
	Notifications notification.NotificationService
}

func NewBoardHandler(b *board.Service, n notification.NotificationService) *BoardHandler {
	return &BoardHandler{Board: b, Notifications: n}
}

// stageOf names the selector stage of a session for the response body.
func stageOf(s *board.Session) string {
	if s == nil {
		return selection.Unselected.String()
	}
	return selection.FromState(s.Selection).State().String()
}

// StartSession handles POST /sessions.
func (h *BoardHandler) StartSession(c *gin.Context) {
	sess, err := h.Board.Start(c.Request.Context())
	if err != nil {
		fail(c, h.Notifications, "", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"session": sess, "stage": stageOf(sess)})
}

// GetSession handles GET /sessions/:sessionID.
func (h *BoardHandler) GetSession(c *gin.Context) {
	id := c.Param("sessionID")
	sess, err := h.Board.Get(c.Request.Context(), id)
	if err != nil {
		fail(c, h.Notifications, id, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": sess, "stage": stageOf(sess)})
}

// EndSession handles DELETE /sessions/:sessionID.
func (h *BoardHandler) EndSession(c *gin.Context) {
	id := c.Param("sessionID")
	if err := h.Board.End(c.Request.Context(), id); err != nil {
		fail(c, h.Notifications, id, err)
		return
	}
	if err := h.Notifications.Clear(c.Request.Context(), id); err != nil {
		getLogger(c).Warn("failed to clear session inbox", zap.String("sessionID", id), zap.Error(err))
	}
	c.JSON(http.StatusOK, gin.H{"message": "Session ended"})
}

// OpenModal handles POST /sessions/:sessionID/modal.
func (h *BoardHandler) OpenModal(c *gin.Context) {
	id := c.Param("sessionID")
	var req board.OpenModalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "message": err.Error()})
		return
	}
	sess, err := h.Board.OpenModal(c.Request.Context(), id, req)
	if err != nil {
		fail(c, h.Notifications, id, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": sess, "stage": stageOf(sess)})
}

// CloseModal handles DELETE /sessions/:sessionID/modal.
func (h *BoardHandler) CloseModal(c *gin.Context) {
	id := c.Param("sessionID")
	sess, err := h.Board.CloseModal(c.Request.Context(), id)
	if err != nil {
		fail(c, h.Notifications, id, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": sess, "stage": stageOf(sess)})
}

// PickDate handles PUT /sessions/:sessionID/date.
func (h *BoardHandler) PickDate(c *gin.Context) {
	id := c.Param("sessionID")
	var body struct {
		Date string `json:"date"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "message": err.Error()})
		return
	}
	sess, slots, err := h.Board.PickDate(c.Request.Context(), id, body.Date)
	if err != nil {
		fail(c, h.Notifications, id, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": sess, "stage": stageOf(sess), "slots": slots})
}

// PickSlot handles PUT /sessions/:sessionID/slot.
func (h *BoardHandler) PickSlot(c *gin.Context) {
	id := c.Param("sessionID")
	var body struct {
		SlotID *int `json:"slotId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing or invalid slotId", "message": err.Error()})
		return
	}
	sess, err := h.Board.PickSlot(c.Request.Context(), id, *body.SlotID)
	if err != nil {
		fail(c, h.Notifications, id, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": sess, "stage": stageOf(sess)})
}

// SubmitCreate handles POST /sessions/:sessionID/meetings. It accepts either
// JSON or multipart/form-data; only the latter can carry an attachment.
func (h *BoardHandler) SubmitCreate(c *gin.Context) {
	id := c.Param("sessionID")
	in, err := bindCreateInput(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "message": err.Error()})
		return
	}
	sess, created, err := h.Board.SubmitCreate(c.Request.Context(), id, in)
	if err != nil {
		fail(c, h.Notifications, id, err)
		return
	}
	getLogger(c).Info("meeting booked", zap.String("sessionID", id), zap.String("meetingID", created.ID.String()))
	n := h.Notifications.Info(c.Request.Context(), id, "Meeting requested", fmt.Sprintf("%q has been requested", created.Title), created.ID)
	c.JSON(http.StatusCreated, gin.H{"session": sess, "stage": stageOf(sess), "meeting": created, "notification": n})
}

func bindCreateInput(c *gin.Context) (models.CreateMeetingInput, error) {
	var in models.CreateMeetingInput
	if c.ContentType() == gin.MIMEJSON {
		err := c.ShouldBindJSON(&in)
		return in, err
	}
	in.ProjectName = c.PostForm("projectName")
	in.CategoryID = c.PostForm("categoryId")
	in.MeetingName = c.PostForm("meetingName")
	in.Description = c.PostForm("description")
	in.Note = c.PostForm("note")

	fh, err := c.FormFile("attachment")
	if errors.Is(err, http.ErrMissingFile) {
		return in, nil
	}
	if err != nil {
		return in, err
	}
	if fh.Size > maxAttachmentBytes {
		return in, fmt.Errorf("attachment exceeds %d bytes", maxAttachmentBytes)
	}
	f, err := fh.Open()
	if err != nil {
		return in, err
	}
	defer f.Close()
	content, err := io.ReadAll(io.LimitReader(f, maxAttachmentBytes))
	if err != nil {
		return in, err
	}
	in.Attachment = &models.Attachment{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Content:     content,
	}
	return in, nil
}

// SubmitReschedule handles POST /sessions/:sessionID/reschedule.
func (h *BoardHandler) SubmitReschedule(c *gin.Context) {
	id := c.Param("sessionID")
	var in models.RescheduleInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "message": err.Error()})
		return
	}
	sess, updated, err := h.Board.SubmitReschedule(c.Request.Context(), id, in)
	if err != nil {
		fail(c, h.Notifications, id, err)
		return
	}
	n := h.Notifications.Info(c.Request.Context(), id, "Meeting rescheduled", fmt.Sprintf("%q moved to %s %s", updated.Title, updated.Date, updated.TimeRange()), updated.ID)
	c.JSON(http.StatusOK, gin.H{"session": sess, "stage": stageOf(sess), "meeting": updated, "notification": n})
}

// ConfirmDelete handles POST /sessions/:sessionID/delete.
func (h *BoardHandler) ConfirmDelete(c *gin.Context) {
	id := c.Param("sessionID")
	sess, err := h.Board.ConfirmDelete(c.Request.Context(), id)
	if err != nil {
		fail(c, h.Notifications, id, err)
		return
	}
	n := h.Notifications.Info(c.Request.Context(), id, "Meeting deleted", "The meeting has been removed", "")
	c.JSON(http.StatusOK, gin.H{"session": sess, "stage": stageOf(sess), "notification": n})
}

// GetSummaryView handles GET /sessions/:sessionID/summary.
func (h *BoardHandler) GetSummaryView(c *gin.Context) {
	id := c.Param("sessionID")
	sess, err := h.Board.Get(c.Request.Context(), id)
	if err != nil {
		fail(c, h.Notifications, id, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"summary": sess.Summary})
}

// ListInbox handles GET /sessions/:sessionID/notifications.
func (h *BoardHandler) ListInbox(c *gin.Context) {
	id := c.Param("sessionID")
	if _, err := h.Board.Get(c.Request.Context(), id); err != nil {
		fail(c, h.Notifications, id, err)
		return
	}
	list, err := h.Notifications.List(c.Request.Context(), id)
	if err != nil {
		getLogger(c).Error("failed to list notifications", zap.String("sessionID", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load notifications"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": list})
}

// MarkInboxRead handles POST /sessions/:sessionID/notifications/read.
func (h *BoardHandler) MarkInboxRead(c *gin.Context) {
	id := c.Param("sessionID")
	n, err := h.Notifications.MarkRead(c.Request.Context(), id)
	if err != nil {
		getLogger(c).Error("failed to mark notifications read", zap.String("sessionID", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update notifications"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": n})
}

package handlers

import (
	"errors"
	"net/http"

	"opsdash/backend"
	"opsdash/services/board"
	"opsdash/services/meeting"
	"opsdash/services/notification"
	"opsdash/services/selection"
	"opsdash/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// statusFor maps scheduling errors onto HTTP statuses.
func statusFor(err error) int {
	var (
		verr *meeting.ValidationError
		nerr *meeting.NotFoundError
		berr *backend.Error
	)
	switch {
	case errors.As(err, &verr),
		errors.Is(err, selection.ErrNoDateChosen),
		errors.Is(err, selection.ErrSlotDateMismatch):
		return http.StatusUnprocessableEntity
	case errors.As(err, &nerr), errors.Is(err, board.ErrSessionNotFound), errors.Is(err, board.ErrNothingToList):
		return http.StatusNotFound
	case errors.Is(err, meeting.ErrActionNotOffered), errors.Is(err, board.ErrNoForm),
		errors.Is(err, board.ErrSessionConflict):
		return http.StatusConflict
	case errors.As(err, &berr):
		if berr.Status == 0 {
			return http.StatusServiceUnavailable
		}
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// fail reports err as a notification in the session inbox and writes it as
// the response. Every scheduling failure goes through here.
func fail(c *gin.Context, notifier notification.NotificationService, sessionID string, err error) {
	status := statusFor(err)
	switch {
	case errors.Is(err, board.ErrSessionNotFound):
		utils.JSONError(c, status, "Session expired", "Please reload the dashboard to start a new session.")
		return
	case errors.Is(err, board.ErrNoForm):
		utils.JSONError(c, status, "No form is open", "Open the meeting form again and retry.")
		return
	case errors.Is(err, board.ErrSessionConflict):
		utils.JSONError(c, status, "Session changed", "The board changed while saving. Please retry.")
		return
	case errors.Is(err, board.ErrNothingToList):
		utils.JSONError(c, status, "Nothing to list", "This day has no additional meetings.")
		return
	}

	n := notification.FromError(err)
	if notifier != nil {
		n = notifier.Report(c.Request.Context(), sessionID, err)
	}
	if status >= http.StatusInternalServerError {
		getLogger(c).Error("scheduling request failed", zap.Int("status", status), zap.Error(err))
	}
	utils.JSONNotification(c, status, n)
}

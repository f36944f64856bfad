package notification

import (
	"context"
	"errors"
	"time"

	"opsdash/backend"
	"opsdash/models"
	"opsdash/services/meeting"
	"opsdash/services/selection"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// InboxLimit caps how many notifications a listing returns.
const InboxLimit = 50

// Inbox persists notifications per board session.
type Inbox interface {
	Create(ctx context.Context, n models.Notification) (string, error)
	ListBySession(ctx context.Context, sessionID string, limit int64) ([]models.Notification, error)
	MarkSessionRead(ctx context.Context, sessionID string) (int64, error)
	DeleteBySession(ctx context.Context, sessionID string) error
}

// Pusher delivers a push message to a topic.
type Pusher interface {
	PushTopic(ctx context.Context, topic, title, body string, data map[string]string) error
}

// NotificationService turns scheduling failures and reminders into
// user-visible notifications.
type NotificationService interface {
	Report(ctx context.Context, sessionID string, err error) models.Notification
	Info(ctx context.Context, sessionID, title, message string, meetingID models.MeetingID) models.Notification
	Remind(ctx context.Context, p models.ReminderPayload) error
	List(ctx context.Context, sessionID string) ([]models.Notification, error)
	MarkRead(ctx context.Context, sessionID string) (int64, error)
	Clear(ctx context.Context, sessionID string) error
}

// DefaultNotificationService is the production implementation. Pusher and
// Inbox are optional.
type DefaultNotificationService struct {
	Inbox     Inbox
	Pusher    Pusher
	PushTopic string
	Logger    *zap.Logger
	Now       func() time.Time
}

func (s *DefaultNotificationService) log() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}

func (s *DefaultNotificationService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// FromError classifies err into a notification. It never returns an empty
// message.
func FromError(err error) models.Notification {
	var (
		verr *meeting.ValidationError
		nerr *meeting.NotFoundError
		aerr *meeting.ActionError
		berr *backend.Error
	)
	switch {
	case err == nil:
		return models.Notification{Kind: models.NotifyInfo, Level: "info", Title: "Done", Message: "Done"}
	case errors.As(err, &verr):
		return models.Notification{
			Kind:    models.NotifyValidation,
			Level:   "warning",
			Title:   "Missing information",
			Message: verr.Message,
			Field:   verr.Field,
		}
	case errors.Is(err, selection.ErrNoDateChosen):
		return models.Notification{
			Kind:    models.NotifyValidation,
			Level:   "warning",
			Title:   "Missing information",
			Message: "Please select a date first",
			Field:   "date",
		}
	case errors.Is(err, selection.ErrSlotDateMismatch):
		return models.Notification{
			Kind:    models.NotifyValidation,
			Level:   "warning",
			Title:   "Invalid time slot",
			Message: "The selected time slot is not available on the chosen date",
			Field:   "slot",
		}
	case errors.As(err, &nerr):
		return models.Notification{
			Kind:      models.NotifyNotFound,
			Level:     "error",
			Title:     "Meeting not found",
			Message:   "This meeting could not be found. It may have been removed.",
			MeetingID: models.MeetingID(nerr.ID),
		}
	case errors.As(err, &aerr):
		return models.Notification{
			Kind:      models.NotifyConflict,
			Level:     "warning",
			Title:     "Action unavailable",
			Message:   "This action is not available for a meeting that is " + string(aerr.Status) + ".",
			MeetingID: aerr.ID,
		}
	case errors.Is(err, meeting.ErrActionNotOffered):
		return models.Notification{
			Kind:    models.NotifyConflict,
			Level:   "warning",
			Title:   "Action unavailable",
			Message: "This action is not available for the meeting's current status.",
		}
	case errors.As(err, &berr):
		msg := berr.Message
		if msg == "" {
			msg = backend.FallbackMessage
		}
		return models.Notification{
			Kind:    models.NotifyBackend,
			Level:   "error",
			Title:   "Request failed",
			Message: msg,
		}
	}
	return models.Notification{
		Kind:    models.NotifyBackend,
		Level:   "error",
		Title:   "Request failed",
		Message: backend.FallbackMessage,
	}
}

// Report builds the notification for err and stores it in the session inbox.
// A storage failure is logged; the notification is still returned so the
// caller can show it.
func (s *DefaultNotificationService) Report(ctx context.Context, sessionID string, err error) models.Notification {
	n := FromError(err)
	s.log().Warn("scheduling operation failed",
		zap.String("sessionID", sessionID),
		zap.String("kind", string(n.Kind)),
		zap.Error(err),
	)
	return s.store(ctx, sessionID, n)
}

// Info records a success notification.
func (s *DefaultNotificationService) Info(ctx context.Context, sessionID, title, message string, meetingID models.MeetingID) models.Notification {
	return s.store(ctx, sessionID, models.Notification{
		Kind:      models.NotifyInfo,
		Level:     "info",
		Title:     title,
		Message:   message,
		MeetingID: meetingID,
	})
}

// Remind records a reminder and pushes it when a Pusher is configured.
// A failed push is logged and not returned, so a reminder task is never
// retried into a second inbox entry.
func (s *DefaultNotificationService) Remind(ctx context.Context, p models.ReminderPayload) error {
	s.store(ctx, p.SessionID, models.Notification{
		Kind:      models.NotifyReminder,
		Level:     "info",
		Title:     p.Title,
		Message:   p.Body,
		MeetingID: p.MeetingID,
	})
	if s.Pusher == nil || s.PushTopic == "" {
		return nil
	}
	data := map[string]string{
		"type":      "meeting_reminder",
		"meetingId": p.MeetingID.String(),
		"fireDate":  p.FireDate,
	}
	if err := s.Pusher.PushTopic(ctx, s.PushTopic, p.Title, p.Body, data); err != nil {
		s.log().Warn("failed to push meeting reminder",
			zap.String("sessionID", p.SessionID),
			zap.String("meetingID", p.MeetingID.String()),
			zap.Error(err),
		)
	}
	return nil
}

// List returns the inbox of a session, newest first.
func (s *DefaultNotificationService) List(ctx context.Context, sessionID string) ([]models.Notification, error) {
	if s.Inbox == nil {
		return []models.Notification{}, nil
	}
	return s.Inbox.ListBySession(ctx, sessionID, InboxLimit)
}

// MarkRead flags the session inbox as read.
func (s *DefaultNotificationService) MarkRead(ctx context.Context, sessionID string) (int64, error) {
	if s.Inbox == nil {
		return 0, nil
	}
	return s.Inbox.MarkSessionRead(ctx, sessionID)
}

// Clear drops the inbox of an ended session.
func (s *DefaultNotificationService) Clear(ctx context.Context, sessionID string) error {
	if s.Inbox == nil {
		return nil
	}
	return s.Inbox.DeleteBySession(ctx, sessionID)
}

func (s *DefaultNotificationService) store(ctx context.Context, sessionID string, n models.Notification) models.Notification {
	n.ID = uuid.New().String()
	n.SessionID = sessionID
	n.CreatedAt = s.now()
	if s.Inbox == nil || sessionID == "" {
		return n
	}
	// Detached from ctx: a failed request still gets its notification stored.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 3*time.Second)
	defer cancel()
	if _, err := s.Inbox.Create(ctx, n); err != nil {
		s.log().Error("failed to store notification", zap.String("sessionID", sessionID), zap.Error(err))
	}
	return n
}

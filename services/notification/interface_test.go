package notification

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"opsdash/backend"
	"opsdash/models"
	"opsdash/services/meeting"
	"opsdash/services/selection"
)

func TestFromError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		kind    models.NotificationKind
		message string
		field   string
	}{
		{"validation", meeting.NewValidationError("projectName", "Project name is required"), models.NotifyValidation, "Project name is required", "projectName"},
		{"no date", selection.ErrNoDateChosen, models.NotifyValidation, "Please select a date first", "date"},
		{"not found", &meeting.NotFoundError{Resource: "meeting"}, models.NotifyNotFound, "This meeting could not be found. It may have been removed.", ""},
		{"action", &meeting.ActionError{Action: meeting.ActionCancel, Status: models.StatusCompleted, ID: "1"}, models.NotifyConflict, "This action is not available for a meeting that is Completed.", ""},
		{"backend message", fmt.Errorf("failed to create meeting: %w", &backend.Error{Status: http.StatusBadRequest, Message: "Slot already booked"}), models.NotifyBackend, "Slot already booked", ""},
		{"backend empty", &backend.Error{Status: http.StatusBadGateway}, models.NotifyBackend, backend.FallbackMessage, ""},
		{"unknown", errors.New("boom"), models.NotifyBackend, backend.FallbackMessage, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := FromError(tt.err)
			if n.Kind != tt.kind || n.Message != tt.message || n.Field != tt.field {
				t.Fatalf("FromError = %+v", n)
			}
			if n.Message == "" || n.Title == "" {
				t.Fatal("notification without text")
			}
		})
	}
}

type memInbox struct {
	items   []models.Notification
	read    int64
	cleared []string
	failing bool
}

func (m *memInbox) Create(ctx context.Context, n models.Notification) (string, error) {
	if m.failing {
		return "", errors.New("mongo down")
	}
	m.items = append(m.items, n)
	return n.ID, nil
}

func (m *memInbox) ListBySession(ctx context.Context, sessionID string, limit int64) ([]models.Notification, error) {
	var out []models.Notification
	for i := len(m.items) - 1; i >= 0 && int64(len(out)) < limit; i-- {
		if m.items[i].SessionID == sessionID {
			out = append(out, m.items[i])
		}
	}
	return out, nil
}

func (m *memInbox) MarkSessionRead(ctx context.Context, sessionID string) (int64, error) {
	m.read++
	return int64(len(m.items)), nil
}

func (m *memInbox) DeleteBySession(ctx context.Context, sessionID string) error {
	m.cleared = append(m.cleared, sessionID)
	return nil
}

type recordingPusher struct {
	topic, title string
	data         map[string]string
	calls        int
	err          error
}

func (p *recordingPusher) PushTopic(ctx context.Context, topic, title, body string, data map[string]string) error {
	p.calls++
	p.topic, p.title, p.data = topic, title, data
	return p.err
}

func fixedNow() time.Time { return time.Date(2025, 12, 1, 9, 0, 0, 0, time.UTC) }

func TestReportStoresInSessionInbox(t *testing.T) {
	inbox := &memInbox{}
	svc := &DefaultNotificationService{Inbox: inbox, Now: fixedNow}

	n := svc.Report(context.Background(), "s1", meeting.NewValidationError("meetingName", "Meeting name is required"))
	if n.ID == "" || n.SessionID != "s1" || !n.CreatedAt.Equal(fixedNow()) {
		t.Fatalf("notification = %+v", n)
	}
	list, err := svc.List(context.Background(), "s1")
	if err != nil || len(list) != 1 || list[0].Field != "meetingName" {
		t.Fatalf("List = %+v, %v", list, err)
	}
	if other, _ := svc.List(context.Background(), "s2"); len(other) != 0 {
		t.Fatalf("other session sees %d notifications", len(other))
	}
}

func TestReportWithoutSessionIsNotStored(t *testing.T) {
	inbox := &memInbox{}
	svc := &DefaultNotificationService{Inbox: inbox}
	n := svc.Report(context.Background(), "", errors.New("boom"))
	if n.Message != backend.FallbackMessage || len(inbox.items) != 0 {
		t.Fatalf("notification = %+v, stored = %d", n, len(inbox.items))
	}
}

func TestReportSurvivesInboxFailure(t *testing.T) {
	svc := &DefaultNotificationService{Inbox: &memInbox{failing: true}}
	n := svc.Report(context.Background(), "s1", errors.New("boom"))
	if n.Message == "" {
		t.Fatal("notification lost when the inbox failed")
	}
}

func TestRemindPushesToTopic(t *testing.T) {
	inbox := &memInbox{}
	pusher := &recordingPusher{}
	svc := &DefaultNotificationService{Inbox: inbox, Pusher: pusher, PushTopic: "meetings"}

	err := svc.Remind(context.Background(), models.ReminderPayload{
		SessionID: "s1", MeetingID: "7", Title: "Upcoming meeting", Body: "Kickoff starts at 10:00", FireDate: "2025-12-01T09:45:00Z",
	})
	if err != nil {
		t.Fatalf("Remind: %v", err)
	}
	if pusher.topic != "meetings" || pusher.data["meetingId"] != "7" {
		t.Fatalf("push = %+v", pusher)
	}
	if len(inbox.items) != 1 || inbox.items[0].Kind != models.NotifyReminder {
		t.Fatalf("inbox = %+v", inbox.items)
	}
}

func TestRemindPushFailureIsNotRetried(t *testing.T) {
	inbox := &memInbox{}
	pusher := &recordingPusher{err: errors.New("fcm unavailable")}
	svc := &DefaultNotificationService{Inbox: inbox, Pusher: pusher, PushTopic: "meetings"}

	p := models.ReminderPayload{SessionID: "s1", MeetingID: "7", Title: "Upcoming meeting", Body: "Kickoff starts at 10:00"}
	if err := svc.Remind(context.Background(), p); err != nil {
		t.Fatalf("Remind with failing push = %v, want nil", err)
	}
	if pusher.calls != 1 {
		t.Fatalf("push calls = %d", pusher.calls)
	}
	if len(inbox.items) != 1 {
		t.Fatalf("inbox holds %d reminders, want 1", len(inbox.items))
	}
}

func TestRemindWithoutPusher(t *testing.T) {
	svc := &DefaultNotificationService{}
	if err := svc.Remind(context.Background(), models.ReminderPayload{MeetingID: "7"}); err != nil {
		t.Fatalf("Remind: %v", err)
	}
}

func TestMarkReadAndClear(t *testing.T) {
	inbox := &memInbox{}
	svc := &DefaultNotificationService{Inbox: inbox}
	svc.Info(context.Background(), "s1", "Meeting requested", "Kickoff has been requested", "7")
	if n, err := svc.MarkRead(context.Background(), "s1"); err != nil || n != 1 {
		t.Fatalf("MarkRead = %d, %v", n, err)
	}
	if err := svc.Clear(context.Background(), "s1"); err != nil || len(inbox.cleared) != 1 {
		t.Fatalf("Clear = %v, cleared %v", err, inbox.cleared)
	}
}

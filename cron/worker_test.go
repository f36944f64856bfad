package cron

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"opsdash/models"
	"opsdash/services/notification"
	"opsdash/services/tasks"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

type remindRecorder struct {
	notification.NotificationService
	got []models.ReminderPayload
}

func (r *remindRecorder) Remind(ctx context.Context, p models.ReminderPayload) error {
	r.got = append(r.got, p)
	return nil
}

func TestHandleReminderTask(t *testing.T) {
	rec := &remindRecorder{}
	h := HandleReminderTask(rec, zap.NewNop())

	payload, _ := json.Marshal(models.ReminderPayload{MeetingID: "7", Title: "Upcoming meeting"})
	if err := h(context.Background(), asynq.NewTask(tasks.TypeMeetingReminder, payload)); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if len(rec.got) != 1 || rec.got[0].MeetingID != "7" {
		t.Fatalf("reminders = %+v", rec.got)
	}
}

func TestHandleReminderTaskBadPayload(t *testing.T) {
	h := HandleReminderTask(&remindRecorder{}, zap.NewNop())
	err := h(context.Background(), asynq.NewTask(tasks.TypeMeetingReminder, []byte("{")))
	if !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("handler = %v, want SkipRetry", err)
	}
}

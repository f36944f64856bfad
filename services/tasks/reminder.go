package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"opsdash/models"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

const TypeMeetingReminder = "meeting:reminder"

type sessionKey struct{}

// WithSessionID tags ctx with the board session that triggered a booking, so
// reminders land in that session's inbox.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionKey{}, sessionID)
}

// SessionIDFrom returns the session tagged by WithSessionID, or "".
func SessionIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(sessionKey{}).(string)
	return id
}

func NewReminderTask(payload models.ReminderPayload, fireAt time.Time) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeMeetingReminder, b)
	opts := []asynq.Option{asynq.ProcessAt(fireAt), asynq.MaxRetry(3)}
	if payload.MeetingID != "" {
		opts = append(opts, asynq.TaskID(fmt.Sprintf("reminder:%s:%s", payload.MeetingID, payload.FireDate)))
	}
	return task, opts, nil
}

// Enqueuer is the part of asynq.Client the scheduler needs.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// ReminderScheduler queues a reminder Lead before a booked meeting starts.
type ReminderScheduler struct {
	Queue    Enqueuer
	Lead     time.Duration
	Location *time.Location
	Logger   *zap.Logger
	Now      func() time.Time
}

// ReminderTime returns when the reminder for m should fire. ok is false when
// the meeting has no usable date or start time.
func (s *ReminderScheduler) ReminderTime(m models.Meeting) (time.Time, bool) {
	loc := s.Location
	if loc == nil {
		loc = time.Local
	}
	start, err := time.ParseInLocation("2006-01-02 15:04", m.Date+" "+models.ShortClock(m.StartTime), loc)
	if err != nil {
		return time.Time{}, false
	}
	return start.Add(-s.Lead), true
}

// ScheduleReminder enqueues the reminder. Meetings without a start, or whose
// reminder time has already passed, are skipped.
func (s *ReminderScheduler) ScheduleReminder(ctx context.Context, m models.Meeting) error {
	fireAt, ok := s.ReminderTime(m)
	if !ok {
		return nil
	}
	now := time.Now()
	if s.Now != nil {
		now = s.Now()
	}
	if !fireAt.After(now) {
		return nil
	}

	body := fmt.Sprintf("%s starts at %s", m.Title, models.ShortClock(m.StartTime))
	if m.Project != "" {
		body += " (" + m.Project + ")"
	}
	payload := models.ReminderPayload{
		SessionID: SessionIDFrom(ctx),
		MeetingID: m.ID,
		Title:     "Upcoming meeting",
		Body:      body,
		FireDate:  fireAt.Format(time.RFC3339),
	}
	task, opts, err := NewReminderTask(payload, fireAt)
	if err != nil {
		return fmt.Errorf("failed to build reminder task: %w", err)
	}
	if _, err := s.Queue.EnqueueContext(ctx, task, opts...); err != nil {
		if errors.Is(err, asynq.ErrTaskIDConflict) {
			return nil
		}
		return fmt.Errorf("failed to enqueue reminder: %w", err)
	}
	if s.Logger != nil {
		s.Logger.Info("meeting reminder scheduled",
			zap.String("meetingID", m.ID.String()),
			zap.Time("fireAt", fireAt),
		)
	}
	return nil
}

package meeting

import (
	"context"
	"fmt"
	"strings"

	"opsdash/backend"
	"opsdash/models"
	"opsdash/services/availability"

	"go.uber.org/zap"
)

// LifecycleManager executes meeting operations against the backend.
type LifecycleManager interface {
	List(ctx context.Context) ([]models.Meeting, error)
	Get(ctx context.Context, id models.MeetingID) (*models.Meeting, error)
	Projects(ctx context.Context) ([]models.Project, error)
	Create(ctx context.Context, in models.CreateMeetingInput) (*models.Meeting, error)
	Reschedule(ctx context.Context, in models.RescheduleInput) (*models.Meeting, error)
	Cancel(ctx context.Context, id models.MeetingID) (*models.Meeting, error)
	Delete(ctx context.Context, id models.MeetingID) error
	Join(ctx context.Context, id models.MeetingID) (string, error)
	FetchSummary(ctx context.Context, id models.MeetingID) (*models.MeetingSummary, error)
}

// SlotRefresher re-derives the availability index after a booking.
type SlotRefresher interface {
	Refresh(ctx context.Context) (availability.Index, error)
}

// ReminderScheduler queues a reminder for a booked meeting.
type ReminderScheduler interface {
	ScheduleReminder(ctx context.Context, m models.Meeting) error
}

// DefaultLifecycleManager implements LifecycleManager.
type DefaultLifecycleManager struct {
	Backend   backend.Backend
	Slots     SlotRefresher
	Reminders ReminderScheduler // optional
	Logger    *zap.Logger
}

func (m *DefaultLifecycleManager) log() *zap.Logger {
	if m.Logger == nil {
		return zap.NewNop()
	}
	return m.Logger
}

// List fetches the current meeting list.
func (m *DefaultLifecycleManager) List(ctx context.Context) ([]models.Meeting, error) {
	meetings, err := m.Backend.ListMeetings(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch meetings: %w", err)
	}
	return meetings, nil
}

// Get resolves a meeting from a fresh list.
func (m *DefaultLifecycleManager) Get(ctx context.Context, id models.MeetingID) (*models.Meeting, error) {
	if blank(id.String()) {
		return nil, newMeetingNotFound(id)
	}
	meetings, err := m.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range meetings {
		if meetings[i].ID == id {
			return &meetings[i], nil
		}
	}
	return nil, newMeetingNotFound(id)
}

// Projects returns picker data for the meeting forms.
func (m *DefaultLifecycleManager) Projects(ctx context.Context) ([]models.Project, error) {
	projects, err := m.Backend.ListProjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch projects: %w", err)
	}
	return projects, nil
}

// ValidateCreate checks the required fields of the add-meeting form in form
// order and reports the first one missing.
func ValidateCreate(in models.CreateMeetingInput) error {
	switch {
	case blank(in.ProjectName):
		return NewValidationError("projectName", "Project name is required")
	case blank(in.CategoryID):
		return NewValidationError("categoryId", "Category is required")
	case blank(in.MeetingName):
		return NewValidationError("meetingName", "Meeting name is required")
	}
	return nil
}

// Create books a new meeting. Validation happens before any network call.
func (m *DefaultLifecycleManager) Create(ctx context.Context, in models.CreateMeetingInput) (*models.Meeting, error) {
	if err := ValidateCreate(in); err != nil {
		return nil, err
	}

	req := backend.CreateProjectRequest{
		Name:        strings.TrimSpace(in.ProjectName),
		Category:    strings.TrimSpace(in.CategoryID),
		MeetingName: strings.TrimSpace(in.MeetingName),
		Description: in.Description,
		Note:        in.Note,
		Attachment:  in.Attachment,
	}
	if in.Slot != nil {
		req.SlotID = in.Slot.SlotID
		req.StartTime = models.ShortClock(in.Slot.StartTime)
		req.EndTime = models.ShortClock(in.Slot.EndTime)
	}

	created, err := m.Backend.CreateProject(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create meeting: %w", err)
	}

	result := models.Meeting{
		Title:       req.MeetingName,
		Project:     req.Name,
		Status:      models.StatusRequestSent,
		Description: in.Description,
		Note:        in.Note,
	}
	if in.Slot != nil {
		result.Date = in.Slot.Date
		result.StartTime = req.StartTime
		result.EndTime = req.EndTime
	}
	if in.Attachment != nil {
		result.AttachmentName = in.Attachment.Filename
	}
	if created != nil {
		result = mergeMeeting(result, *created)
	}

	m.log().Info("meeting created",
		zap.String("meetingID", result.ID.String()),
		zap.String("project", result.Project),
		zap.Int("slotID", req.SlotID),
	)
	m.afterBooking(ctx, result)
	return &result, nil
}

// validateReschedule runs the client-side checks of the edit form.
func validateReschedule(in models.RescheduleInput) error {
	if blank(in.MeetingID.String()) {
		return newMeetingNotFound(in.MeetingID)
	}
	switch {
	case in.Slot == nil:
		return NewValidationError("slot", "Please select a time slot")
	case blank(in.MeetingName):
		return NewValidationError("meetingName", "Meeting name is required")
	case blank(in.ProjectID):
		return NewValidationError("projectId", "Please select a project")
	}
	return nil
}

// Reschedule moves a meeting onto a new slot. The meeting id never changes.
func (m *DefaultLifecycleManager) Reschedule(ctx context.Context, in models.RescheduleInput) (*models.Meeting, error) {
	if err := validateReschedule(in); err != nil {
		return nil, err
	}

	current, err := m.guard(ctx, in.MeetingID, ActionReschedule)
	if err != nil {
		return nil, err
	}

	status := in.Status
	if status == "" || status == models.StatusUnknown {
		status = current.Status
	}
	jitsi := in.JitsiURL
	if jitsi == "" {
		jitsi = current.JitsiURL
	}
	req := backend.RescheduleRequest{
		SlotID:      in.Slot.SlotID,
		MeetingName: strings.TrimSpace(in.MeetingName),
		Description: in.Description,
		StartTime:   models.ShortClock(in.Slot.StartTime),
		EndTime:     models.ShortClock(in.Slot.EndTime),
		ProjectID:   strings.TrimSpace(in.ProjectID),
		JitsiURL:    jitsi,
		Status:      string(status),
	}

	updated, err := m.Backend.RescheduleMeeting(ctx, in.MeetingID, req)
	if err != nil {
		return nil, m.mapNotFound(in.MeetingID, fmt.Errorf("failed to reschedule meeting: %w", err))
	}

	result := *current
	result.Title = req.MeetingName
	result.Description = req.Description
	result.Date = in.Slot.Date
	result.StartTime = req.StartTime
	result.EndTime = req.EndTime
	result.ProjectID = req.ProjectID
	result.JitsiURL = jitsi
	result.Status = status
	if updated != nil {
		result = mergeMeeting(result, *updated)
	}
	result.ID = in.MeetingID

	m.log().Info("meeting rescheduled",
		zap.String("meetingID", result.ID.String()),
		zap.Int("slotID", req.SlotID),
		zap.String("status", string(result.Status)),
	)
	m.afterBooking(ctx, result)
	return &result, nil
}

// Cancel moves a RequestSent or Confirmed meeting to Canceled.
func (m *DefaultLifecycleManager) Cancel(ctx context.Context, id models.MeetingID) (*models.Meeting, error) {
	current, err := m.guard(ctx, id, ActionCancel)
	if err != nil {
		return nil, err
	}
	updated, err := m.Backend.CancelMeeting(ctx, id)
	if err != nil {
		return nil, m.mapNotFound(id, fmt.Errorf("failed to cancel meeting: %w", err))
	}
	result := *current
	result.Status = models.StatusCanceled
	if updated != nil {
		result = mergeMeeting(result, *updated)
	}
	m.log().Info("meeting canceled", zap.String("meetingID", id.String()))
	return &result, nil
}

// Delete removes a Completed or Canceled meeting.
func (m *DefaultLifecycleManager) Delete(ctx context.Context, id models.MeetingID) error {
	if _, err := m.guard(ctx, id, ActionDelete); err != nil {
		return err
	}
	if err := m.Backend.DeleteMeeting(ctx, id); err != nil {
		return m.mapNotFound(id, fmt.Errorf("failed to delete meeting: %w", err))
	}
	m.log().Info("meeting deleted", zap.String("meetingID", id.String()))
	return nil
}

// Join resolves the conferencing URL. It does not change the meeting.
func (m *DefaultLifecycleManager) Join(ctx context.Context, id models.MeetingID) (string, error) {
	if _, err := m.guard(ctx, id, ActionJoin); err != nil {
		return "", err
	}
	link, err := m.Backend.JoinMeeting(ctx, id)
	if err != nil {
		return "", m.mapNotFound(id, fmt.Errorf("failed to join meeting: %w", err))
	}
	return link, nil
}

// FetchSummary returns the post-meeting record. RequestSent meetings are
// allowed too, as a pre-meeting peek.
func (m *DefaultLifecycleManager) FetchSummary(ctx context.Context, id models.MeetingID) (*models.MeetingSummary, error) {
	if _, err := m.guard(ctx, id, ActionViewSummary); err != nil {
		return nil, err
	}
	summary, err := m.Backend.GetMeetingSummary(ctx, id)
	if err != nil {
		return nil, m.mapNotFound(id, fmt.Errorf("failed to fetch meeting summary: %w", err))
	}
	return summary, nil
}

// guard resolves the meeting and checks the lifecycle table.
func (m *DefaultLifecycleManager) guard(ctx context.Context, id models.MeetingID, a Action) (*models.Meeting, error) {
	current, err := m.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !Allowed(current.Status, a) {
		m.log().Debug("action not offered",
			zap.String("meetingID", id.String()),
			zap.String("action", string(a)),
			zap.String("status", string(current.Status)),
		)
		return nil, &ActionError{Action: a, Status: current.Status, ID: id}
	}
	return current, nil
}

func (m *DefaultLifecycleManager) mapNotFound(id models.MeetingID, err error) error {
	if backend.IsNotFound(err) {
		return newMeetingNotFound(id)
	}
	return err
}

// afterBooking re-reads availability so the consumed slot disappears, then
// queues a reminder. Neither failure undoes the booking.
func (m *DefaultLifecycleManager) afterBooking(ctx context.Context, booked models.Meeting) {
	if m.Slots != nil {
		if _, err := m.Slots.Refresh(ctx); err != nil {
			m.log().Warn("availability refresh after booking failed", zap.Error(err))
		}
	}
	if m.Reminders != nil {
		if err := m.Reminders.ScheduleReminder(ctx, booked); err != nil {
			m.log().Warn("failed to schedule meeting reminder",
				zap.String("meetingID", booked.ID.String()),
				zap.Error(err),
			)
		}
	}
}

// mergeMeeting overlays the non-empty fields of the backend record.
func mergeMeeting(base, upstream models.Meeting) models.Meeting {
	if upstream.ID != "" {
		base.ID = upstream.ID
	}
	if upstream.Title != "" {
		base.Title = upstream.Title
	}
	if upstream.Project != "" {
		base.Project = upstream.Project
	}
	if upstream.ProjectID != "" {
		base.ProjectID = upstream.ProjectID
	}
	if upstream.Status != "" && upstream.Status != models.StatusUnknown {
		base.Status = upstream.Status
	}
	if upstream.Date != "" {
		base.Date = upstream.Date
	}
	if upstream.StartTime != "" {
		base.StartTime = upstream.StartTime
	}
	if upstream.EndTime != "" {
		base.EndTime = upstream.EndTime
	}
	if upstream.Description != "" {
		base.Description = upstream.Description
	}
	if upstream.Note != "" {
		base.Note = upstream.Note
	}
	if upstream.AttendeeCount > 0 {
		base.AttendeeCount = upstream.AttendeeCount
	}
	if upstream.AttachmentName != "" {
		base.AttachmentName = upstream.AttachmentName
	}
	if upstream.JitsiURL != "" {
		base.JitsiURL = upstream.JitsiURL
	}
	return base
}

package meeting

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"opsdash/backend"
	"opsdash/models"
	"opsdash/services/availability"
)

type fakeBackend struct {
	meetings []models.Meeting
	calls    []string

	createReq     *backend.CreateProjectRequest
	rescheduleReq *backend.RescheduleRequest
	failWith      error
}

func (f *fakeBackend) record(op string) error {
	f.calls = append(f.calls, op)
	return f.failWith
}

func (f *fakeBackend) ListAvailableSlots(ctx context.Context) ([]models.AvailableSlot, error) {
	f.calls = append(f.calls, "slots")
	return nil, nil
}

func (f *fakeBackend) ListMeetings(ctx context.Context) ([]models.Meeting, error) {
	f.calls = append(f.calls, "meetings")
	out := make([]models.Meeting, len(f.meetings))
	copy(out, f.meetings)
	return out, nil
}

func (f *fakeBackend) ListProjects(ctx context.Context) ([]models.Project, error) {
	return nil, f.record("projects")
}

func (f *fakeBackend) GetMeetingSummary(ctx context.Context, id models.MeetingID) (*models.MeetingSummary, error) {
	if err := f.record("summary"); err != nil {
		return nil, err
	}
	return &models.MeetingSummary{Notes: []string{"ok"}}, nil
}

func (f *fakeBackend) CreateProject(ctx context.Context, req backend.CreateProjectRequest) (*models.Meeting, error) {
	if err := f.record("create"); err != nil {
		return nil, err
	}
	f.createReq = &req
	return &models.Meeting{ID: "99"}, nil
}

func (f *fakeBackend) RescheduleMeeting(ctx context.Context, id models.MeetingID, req backend.RescheduleRequest) (*models.Meeting, error) {
	if err := f.record("reschedule"); err != nil {
		return nil, err
	}
	f.rescheduleReq = &req
	return nil, nil
}

func (f *fakeBackend) CancelMeeting(ctx context.Context, id models.MeetingID) (*models.Meeting, error) {
	if err := f.record("cancel"); err != nil {
		return nil, err
	}
	return nil, nil
}

func (f *fakeBackend) DeleteMeeting(ctx context.Context, id models.MeetingID) error {
	return f.record("delete")
}

func (f *fakeBackend) JoinMeeting(ctx context.Context, id models.MeetingID) (string, error) {
	if err := f.record("join"); err != nil {
		return "", err
	}
	return "https://meet.jit.si/" + id.String(), nil
}

type fakeRefresher struct{ calls int }

func (r *fakeRefresher) Refresh(ctx context.Context) (availability.Index, error) {
	r.calls++
	return availability.IndexSlots(nil), nil
}

type fakeReminders struct{ booked []models.Meeting }

func (r *fakeReminders) ScheduleReminder(ctx context.Context, m models.Meeting) error {
	r.booked = append(r.booked, m)
	return nil
}

func newManager(meetings ...models.Meeting) (*DefaultLifecycleManager, *fakeBackend, *fakeRefresher, *fakeReminders) {
	fb := &fakeBackend{meetings: meetings}
	fr := &fakeRefresher{}
	rem := &fakeReminders{}
	return &DefaultLifecycleManager{Backend: fb, Slots: fr, Reminders: rem}, fb, fr, rem
}

var kickoffSlot = &models.AvailableSlot{SlotID: 5, Date: "2025-12-01", StartTime: "10:00:00", EndTime: "10:30:00", IsOpen: true}

func TestCreateBlankProjectNameMakesNoCall(t *testing.T) {
	m, fb, _, _ := newManager()
	_, err := m.Create(context.Background(), models.CreateMeetingInput{
		ProjectName: "",
		CategoryID:  "3",
		MeetingName: "Kickoff",
		Slot:        kickoffSlot,
	})
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Field != "projectName" {
		t.Fatalf("Create = %v, want ValidationError on projectName", err)
	}
	if len(fb.calls) != 0 {
		t.Fatalf("backend called: %v", fb.calls)
	}
}

func TestCreateValidationOrder(t *testing.T) {
	tests := []struct {
		in    models.CreateMeetingInput
		field string
	}{
		{models.CreateMeetingInput{ProjectName: " ", CategoryID: "", MeetingName: ""}, "projectName"},
		{models.CreateMeetingInput{ProjectName: "Apollo", CategoryID: "  ", MeetingName: ""}, "categoryId"},
		{models.CreateMeetingInput{ProjectName: "Apollo", CategoryID: "3", MeetingName: "\t"}, "meetingName"},
	}
	for _, tt := range tests {
		var verr *ValidationError
		if err := ValidateCreate(tt.in); !errors.As(err, &verr) || verr.Field != tt.field {
			t.Errorf("ValidateCreate(%+v) = %v, want field %s", tt.in, err, tt.field)
		}
	}
}

func TestCreateNormalizesTimesAndRefreshes(t *testing.T) {
	m, fb, fr, rem := newManager()
	got, err := m.Create(context.Background(), models.CreateMeetingInput{
		ProjectName: "Apollo",
		CategoryID:  "3",
		MeetingName: "Kickoff",
		Slot:        kickoffSlot,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if fb.createReq.StartTime != "10:00" || fb.createReq.EndTime != "10:30" || fb.createReq.SlotID != 5 {
		t.Fatalf("create request = %+v", fb.createReq)
	}
	if got.ID != "99" || got.Status != models.StatusRequestSent || got.Date != "2025-12-01" {
		t.Fatalf("created meeting = %+v", got)
	}
	if fr.calls != 1 {
		t.Fatalf("availability refreshed %d times, want 1", fr.calls)
	}
	if len(rem.booked) != 1 {
		t.Fatalf("reminders scheduled = %d, want 1", len(rem.booked))
	}
}

func TestCreateBackendFailureSkipsRefresh(t *testing.T) {
	m, fb, fr, _ := newManager()
	fb.failWith = &backend.Error{Op: "CreateProject", Status: http.StatusBadRequest, Message: "Slot already taken"}
	_, err := m.Create(context.Background(), models.CreateMeetingInput{
		ProjectName: "Apollo", CategoryID: "3", MeetingName: "Kickoff", Slot: kickoffSlot,
	})
	var berr *backend.Error
	if !errors.As(err, &berr) || berr.Message != "Slot already taken" {
		t.Fatalf("Create = %v, want backend error", err)
	}
	if fr.calls != 0 {
		t.Fatal("availability refreshed after a failed booking")
	}
}

func TestRescheduleUndefinedIDIsNotFound(t *testing.T) {
	m, fb, _, _ := newManager()
	_, err := m.Reschedule(context.Background(), models.RescheduleInput{
		Slot:        kickoffSlot,
		MeetingName: "Kickoff",
		ProjectID:   "4",
	})
	var nerr *NotFoundError
	if !errors.As(err, &nerr) {
		t.Fatalf("Reschedule = %v, want NotFoundError", err)
	}
	if len(fb.calls) != 0 {
		t.Fatalf("backend called: %v", fb.calls)
	}
}

func TestRescheduleValidation(t *testing.T) {
	m, fb, _, _ := newManager()
	tests := []struct {
		in    models.RescheduleInput
		field string
	}{
		{models.RescheduleInput{MeetingID: "1", MeetingName: "Kickoff", ProjectID: "4"}, "slot"},
		{models.RescheduleInput{MeetingID: "1", Slot: kickoffSlot, ProjectID: "4"}, "meetingName"},
		{models.RescheduleInput{MeetingID: "1", Slot: kickoffSlot, MeetingName: "Kickoff"}, "projectId"},
	}
	for _, tt := range tests {
		var verr *ValidationError
		if _, err := m.Reschedule(context.Background(), tt.in); !errors.As(err, &verr) || verr.Field != tt.field {
			t.Errorf("Reschedule(%+v) = %v, want field %s", tt.in, err, tt.field)
		}
	}
	if len(fb.calls) != 0 {
		t.Fatalf("backend called: %v", fb.calls)
	}
}

func TestRescheduleKeepsID(t *testing.T) {
	m, fb, fr, _ := newManager(models.Meeting{ID: "7", Title: "Old", Status: models.StatusConfirmed, JitsiURL: "https://meet.jit.si/7"})
	got, err := m.Reschedule(context.Background(), models.RescheduleInput{
		MeetingID:   "7",
		Slot:        kickoffSlot,
		MeetingName: "New",
		ProjectID:   "4",
	})
	if err != nil {
		t.Fatalf("Reschedule: %v", err)
	}
	if got.ID != "7" || got.Title != "New" || got.Date != "2025-12-01" || got.StartTime != "10:00" {
		t.Fatalf("rescheduled = %+v", got)
	}
	if fb.rescheduleReq.Status != string(models.StatusConfirmed) || fb.rescheduleReq.JitsiURL != "https://meet.jit.si/7" {
		t.Fatalf("reschedule request = %+v", fb.rescheduleReq)
	}
	if fr.calls != 1 {
		t.Fatal("availability not refreshed after reschedule")
	}
}

func TestGuards(t *testing.T) {
	m, fb, _, _ := newManager(
		models.Meeting{ID: "1", Status: models.StatusCompleted},
		models.Meeting{ID: "2", Status: models.StatusConfirmed},
	)
	ctx := context.Background()

	if _, err := m.Cancel(ctx, "1"); !errors.Is(err, ErrActionNotOffered) {
		t.Errorf("Cancel completed = %v", err)
	}
	if err := m.Delete(ctx, "2"); !errors.Is(err, ErrActionNotOffered) {
		t.Errorf("Delete confirmed = %v", err)
	}
	if _, err := m.Join(ctx, "1"); !errors.Is(err, ErrActionNotOffered) {
		t.Errorf("Join completed = %v", err)
	}
	if _, err := m.FetchSummary(ctx, "2"); !errors.Is(err, ErrActionNotOffered) {
		t.Errorf("FetchSummary confirmed = %v", err)
	}
	for _, c := range fb.calls {
		if c != "meetings" {
			t.Fatalf("guarded operation reached backend: %v", fb.calls)
		}
	}

	got, err := m.Cancel(ctx, "2")
	if err != nil || got.Status != models.StatusCanceled {
		t.Fatalf("Cancel confirmed = %+v, %v", got, err)
	}
	if err := m.Delete(ctx, "1"); err != nil {
		t.Fatalf("Delete completed: %v", err)
	}
	link, err := m.Join(ctx, "2")
	if err != nil || link != "https://meet.jit.si/2" {
		t.Fatalf("Join = %q, %v", link, err)
	}
	if _, err := m.FetchSummary(ctx, "1"); err != nil {
		t.Fatalf("FetchSummary completed: %v", err)
	}
}

func TestUnknownMeetingIsNotFound(t *testing.T) {
	m, _, _, _ := newManager(models.Meeting{ID: "1", Status: models.StatusConfirmed})
	var nerr *NotFoundError
	if _, err := m.Cancel(context.Background(), "404"); !errors.As(err, &nerr) || nerr.ID != "404" {
		t.Fatalf("Cancel unknown = %v", err)
	}
}

func TestBackendNotFoundMapsToNotFoundError(t *testing.T) {
	m, fb, _, _ := newManager(models.Meeting{ID: "2", Status: models.StatusConfirmed})
	fb.failWith = &backend.Error{Op: "CancelMeeting", Status: http.StatusNotFound, Message: "gone"}
	var nerr *NotFoundError
	if _, err := m.Cancel(context.Background(), "2"); !errors.As(err, &nerr) {
		t.Fatalf("Cancel = %v, want NotFoundError", err)
	}
}

package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"opsdash/backend"
	"opsdash/handlers"
	"opsdash/models"
	"opsdash/routes"
	"opsdash/services/availability"
	"opsdash/services/board"
	"opsdash/services/meeting"
	"opsdash/services/notification"
	"opsdash/services/summary"

	"github.com/gin-gonic/gin"
)

type memStore struct {
	mu       sync.Mutex
	sessions map[string][]byte
}

func (m *memStore) Load(ctx context.Context, id string) (*board.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.sessions[id]
	if !ok {
		return nil, board.ErrSessionNotFound
	}
	var s board.Session
	err := json.Unmarshal(b, &s)
	return &s, err
}

func (m *memStore) Save(ctx context.Context, s *board.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if stored, ok := m.sessions[s.ID]; ok {
		var head struct {
			Version int64 `json:"version"`
		}
		if err := json.Unmarshal(stored, &head); err != nil {
			return err
		}
		if head.Version != s.Version {
			return board.ErrSessionConflict
		}
	} else if s.Version != 0 {
		return board.ErrSessionNotFound
	}
	next := *s
	next.Version++
	b, err := json.Marshal(next)
	if err != nil {
		return err
	}
	m.sessions[s.ID] = b
	s.Version = next.Version
	return nil
}

func (m *memStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

// stubBackend serves a fixed meeting list and slot list.
type stubBackend struct {
	backend.Backend
	meetings []models.Meeting
	slots    []models.AvailableSlot
	calls    int
}

func (b *stubBackend) ListAvailableSlots(ctx context.Context) ([]models.AvailableSlot, error) {
	return b.slots, nil
}

func (b *stubBackend) ListMeetings(ctx context.Context) ([]models.Meeting, error) {
	return b.meetings, nil
}

func (b *stubBackend) CreateProject(ctx context.Context, req backend.CreateProjectRequest) (*models.Meeting, error) {
	b.calls++
	return &models.Meeting{ID: "100", Title: req.MeetingName, Status: models.StatusRequestSent}, nil
}

func (b *stubBackend) JoinMeeting(ctx context.Context, id models.MeetingID) (string, error) {
	b.calls++
	return "https://meet.jit.si/" + id.String(), nil
}

type nopInbox struct{}

func (nopInbox) Create(ctx context.Context, n models.Notification) (string, error) { return n.ID, nil }
func (nopInbox) ListBySession(ctx context.Context, sessionID string, limit int64) ([]models.Notification, error) {
	return []models.Notification{}, nil
}
func (nopInbox) MarkSessionRead(ctx context.Context, sessionID string) (int64, error) { return 0, nil }
func (nopInbox) DeleteBySession(ctx context.Context, sessionID string) error          { return nil }

func setup(t *testing.T) (*gin.Engine, *stubBackend) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	be := &stubBackend{
		meetings: []models.Meeting{
			{ID: "1", Title: "Standup", Status: models.StatusConfirmed, Date: "2025-12-05", StartTime: "09:00", EndTime: "09:15"},
			{ID: "2", Title: "Retro", Status: models.StatusCompleted, Date: "2025-12-05", StartTime: "15:00", EndTime: "15:30"},
			{ID: "3", Title: "Planning", Status: models.StatusCanceled, Date: "2025-12-08", StartTime: "10:00", EndTime: "11:00"},
		},
		slots: []models.AvailableSlot{
			{SlotID: 0, Date: "2025-12-01", StartTime: "10:00", EndTime: "10:30", IsOpen: true},
			{SlotID: 2, Date: "2025-12-01", StartTime: "11:00", EndTime: "11:30", IsOpen: true},
		},
	}
	slots := availability.NewService(be, nil)
	manager := &meeting.DefaultLifecycleManager{Backend: be, Slots: slots}
	notifier := &notification.DefaultNotificationService{Inbox: nopInbox{}}
	now := func() time.Time { return time.Date(2025, 12, 1, 12, 0, 0, 0, time.UTC) }

	boardSvc := &board.Service{
		Store:        &memStore{sessions: map[string][]byte{}},
		Meetings:     manager,
		Availability: slots,
		Summaries:    summary.NewService(manager, nil),
		Now:          now,
	}
	sched := handlers.NewSchedulingHandler(manager, slots, notifier)
	sched.Now = now

	r := gin.New()
	routes.RegisterRoutes(r, handlers.NewHandlerBundle(handlers.NewBoardHandler(boardSvc, notifier), sched), 1000)
	return r, be
}

func do(r http.Handler, method, path string, body []byte, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return out
}

func startSession(t *testing.T, r http.Handler) string {
	t.Helper()
	w := do(r, http.MethodPost, "/api/scheduling/sessions", nil, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("start session: %d %s", w.Code, w.Body.String())
	}
	sess := decode(t, w)["session"].(map[string]any)
	return sess["id"].(string)
}

func TestUnknownSession(t *testing.T) {
	r, _ := setup(t)
	w := do(r, http.MethodGet, "/api/scheduling/sessions/nope", nil, "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestCreateMeetingMultipart(t *testing.T) {
	r, be := setup(t)
	id := startSession(t, r)
	base := "/api/scheduling/sessions/" + id

	if w := do(r, http.MethodPost, base+"/modal", []byte(`{"kind":"addMeeting"}`), "application/json"); w.Code != http.StatusOK {
		t.Fatalf("open modal: %d %s", w.Code, w.Body.String())
	}
	w := do(r, http.MethodPut, base+"/date", []byte(`{"date":"2025-12-01"}`), "application/json")
	if w.Code != http.StatusOK {
		t.Fatalf("pick date: %d %s", w.Code, w.Body.String())
	}
	if got := decode(t, w)["stage"]; got != "dateChosen" {
		t.Fatalf("stage = %v", got)
	}
	if w := do(r, http.MethodPut, base+"/slot", []byte(`{"slotId":2}`), "application/json"); w.Code != http.StatusOK {
		t.Fatalf("pick slot: %d %s", w.Code, w.Body.String())
	}

	form := func(project string) ([]byte, string) {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		mw.WriteField("projectName", project)
		mw.WriteField("categoryId", "3")
		mw.WriteField("meetingName", "Kickoff")
		fw, _ := mw.CreateFormFile("attachment", "agenda.txt")
		fw.Write([]byte("agenda"))
		mw.Close()
		return buf.Bytes(), mw.FormDataContentType()
	}

	body, ct := form("")
	w = do(r, http.MethodPost, base+"/meetings", body, ct)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("blank project: %d %s", w.Code, w.Body.String())
	}
	n := decode(t, w)["notification"].(map[string]any)
	if n["field"] != "projectName" {
		t.Fatalf("notification = %v", n)
	}
	if be.calls != 0 {
		t.Fatal("backend called for an invalid form")
	}

	body, ct = form("Apollo")
	w = do(r, http.MethodPost, base+"/meetings", body, ct)
	if w.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", w.Code, w.Body.String())
	}
	out := decode(t, w)
	if out["stage"] != "unselected" || out["meeting"].(map[string]any)["id"] != "100" {
		t.Fatalf("create response = %v", out)
	}
}

func TestListMeetingsCarriesActions(t *testing.T) {
	r, _ := setup(t)
	w := do(r, http.MethodGet, "/api/scheduling/meetings", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var out struct {
		Meetings []struct {
			ID      string   `json:"id"`
			Actions []string `json:"actions"`
		} `json:"meetings"`
	}
	json.Unmarshal(w.Body.Bytes(), &out)
	if len(out.Meetings) != 3 {
		t.Fatalf("meetings = %+v", out.Meetings)
	}
	got := strings.Join(out.Meetings[0].Actions, ",")
	if got != "reschedule,cancel,join" {
		t.Fatalf("confirmed actions = %s", got)
	}
}

func TestCancelNotOffered(t *testing.T) {
	r, _ := setup(t)
	w := do(r, http.MethodPost, "/api/scheduling/meetings/2/cancel", nil, "")
	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d %s", w.Code, w.Body.String())
	}
	w = do(r, http.MethodPost, "/api/scheduling/meetings/404/cancel", nil, "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("unknown meeting status = %d", w.Code)
	}
}

func TestJoinRedirect(t *testing.T) {
	r, _ := setup(t)
	w := do(r, http.MethodGet, "/api/scheduling/meetings/1/join?redirect=1", nil, "")
	if w.Code != http.StatusFound || w.Header().Get("Location") != "https://meet.jit.si/1" {
		t.Fatalf("join = %d %s", w.Code, w.Header().Get("Location"))
	}
	w = do(r, http.MethodGet, "/api/scheduling/meetings/1/join", nil, "")
	if w.Code != http.StatusOK || decode(t, w)["url"] != "https://meet.jit.si/1" {
		t.Fatalf("join = %d %s", w.Code, w.Body.String())
	}
}

func TestCalendar(t *testing.T) {
	r, _ := setup(t)

	w := do(r, http.MethodGet, "/api/scheduling/calendar/2025-12-05", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("overflow day = %d", w.Code)
	}
	if list := decode(t, w)["meetings"].([]any); len(list) != 2 {
		t.Fatalf("day list = %v", list)
	}
	if w := do(r, http.MethodGet, "/api/scheduling/calendar/2025-12-08", nil, ""); w.Code != http.StatusNotFound {
		t.Fatalf("single day = %d", w.Code)
	}
	if w := do(r, http.MethodGet, "/api/scheduling/calendar?year=2025&month=13", nil, ""); w.Code != http.StatusBadRequest {
		t.Fatalf("bad month = %d", w.Code)
	}

	w = do(r, http.MethodGet, "/api/scheduling/calendar?year=2025&month=12", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("month = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"badge":"+1 more"`) || !strings.Contains(w.Body.String(), `"label":"Standup 09:00-09:15"`) {
		t.Fatalf("month grid = %s", w.Body.String())
	}

	w = do(r, http.MethodGet, "/api/scheduling/calendar.ics", nil, "")
	if w.Code != http.StatusOK || !strings.HasPrefix(w.Header().Get("Content-Type"), "text/calendar") {
		t.Fatalf("ics = %d %s", w.Code, w.Header().Get("Content-Type"))
	}
}

func TestPickSlotAcceptsZeroID(t *testing.T) {
	r, _ := setup(t)
	id := startSession(t, r)
	base := "/api/scheduling/sessions/" + id
	do(r, http.MethodPost, base+"/modal", []byte(`{"kind":"addMeeting"}`), "application/json")
	do(r, http.MethodPut, base+"/date", []byte(`{"date":"2025-12-01"}`), "application/json")

	if w := do(r, http.MethodPut, base+"/slot", []byte(`{}`), "application/json"); w.Code != http.StatusBadRequest {
		t.Fatalf("missing slotId: %d %s", w.Code, w.Body.String())
	}

	w := do(r, http.MethodPut, base+"/slot", []byte(`{"slotId":0}`), "application/json")
	if w.Code != http.StatusOK {
		t.Fatalf("slotId 0: %d %s", w.Code, w.Body.String())
	}
	out := decode(t, w)
	if out["stage"] != "slotChosen" {
		t.Fatalf("stage = %v", out["stage"])
	}
	sel := out["session"].(map[string]any)["selection"].(map[string]any)
	slot, ok := sel["selectedSlot"].(map[string]any)
	if !ok || slot["slotId"] != float64(0) {
		t.Fatalf("selection = %v", sel)
	}
}

func TestAvailability(t *testing.T) {
	r, _ := setup(t)
	w := do(r, http.MethodGet, "/api/scheduling/availability?date=2025-12-01", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	out := decode(t, w)
	if dates := out["dates"].([]any); len(dates) != 1 || dates[0] != "2025-12-01" {
		t.Fatalf("dates = %v", dates)
	}
	if slots := out["slots"].([]any); len(slots) != 2 {
		t.Fatalf("slots = %v", slots)
	}
}

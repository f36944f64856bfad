package board

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"opsdash/models"
	"opsdash/services/availability"
	"opsdash/services/calendar"
	"opsdash/services/meeting"
	"opsdash/services/selection"
	"opsdash/services/summary"
	"opsdash/services/tasks"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AvailabilityReader is the read side of the availability service.
type AvailabilityReader interface {
	Get(ctx context.Context) (availability.Index, error)
}

// OpenModalRequest selects the modal to open.
type OpenModalRequest struct {
	Kind      models.ModalKind `json:"kind" binding:"required"`
	MeetingID models.MeetingID `json:"meetingId"`
	Date      string           `json:"date"`
}

// Service implements the board session operations.
type Service struct {
	Store        Store
	Meetings     meeting.LifecycleManager
	Availability AvailabilityReader
	Summaries    *summary.Service
	Logger       *zap.Logger
	Now          func() time.Time
}

func (s *Service) log() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Start opens a new session with nothing selected and no modal.
func (s *Service) Start(ctx context.Context) (*Session, error) {
	now := s.now()
	sess := &Session{
		ID:        uuid.New().String(),
		Modal:     models.NoModal{},
		Summary:   summary.View{State: summary.StateIdle},
		CreatedAt: now,
	}
	if err := s.save(ctx, sess); err != nil {
		return nil, err
	}
	s.log().Debug("board session started", zap.String("sessionID", sess.ID))
	return sess, nil
}

// Get loads a session.
func (s *Service) Get(ctx context.Context, id string) (*Session, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrSessionNotFound
	}
	return s.Store.Load(ctx, id)
}

// End discards a session.
func (s *Service) End(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.Store.Delete(ctx, id)
}

func (s *Service) save(ctx context.Context, sess *Session) error {
	sess.UpdatedAt = s.now()
	return s.Store.Save(ctx, sess)
}

// maxSaveAttempts bounds how often update re-applies a change after losing a
// race with another request on the same session.
const maxSaveAttempts = 5

// errModalChanged aborts an update whose result no longer belongs to the
// session's active modal.
var errModalChanged = errors.New("active modal changed")

// update loads the session, applies fn and saves it. When another request
// saved the session in between, fn runs again on the fresh copy, so every
// check inside fn sees the latest state. If fn fails the loaded session is
// returned unsaved together with the error.
func (s *Service) update(ctx context.Context, id string, fn func(*Session) error) (*Session, error) {
	for attempt := 1; ; attempt++ {
		sess, err := s.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if err := fn(sess); err != nil {
			return sess, err
		}
		err = s.save(ctx, sess)
		if err == nil {
			return sess, nil
		}
		if !errors.Is(err, ErrSessionConflict) || attempt == maxSaveAttempts {
			return nil, err
		}
		s.log().Debug("board session changed concurrently, retrying",
			zap.String("sessionID", id),
			zap.Int("attempt", attempt),
		)
	}
}

// resetModal drops everything tied to the current modal.
func resetModal(sess *Session) {
	sess.Selection = models.SelectionState{}
	sess.Draft = nil
	sess.Summary.Close()
	sess.Modal = models.NoModal{}
}

// CloseModal closes whatever is open, resetting the selection and discarding
// any summary.
func (s *Service) CloseModal(ctx context.Context, id string) (*Session, error) {
	sess, err := s.update(ctx, id, func(sess *Session) error {
		resetModal(sess)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sess, nil
}

// OpenModal replaces the active modal. Meeting modals are gated on the
// lifecycle table of the meeting's current status.
func (s *Service) OpenModal(ctx context.Context, id string, req OpenModalRequest) (*Session, error) {
	switch req.Kind {
	case models.ModalSummary:
		return s.OpenSummary(ctx, id, req.MeetingID)
	case models.ModalNone, "":
		return s.CloseModal(ctx, id)
	}

	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}

	var next models.Modal
	var draft *Draft
	switch req.Kind {
	case models.ModalAddMeeting:
		next = models.AddMeetingModal{}
	case models.ModalEditMeeting:
		m, err := s.gated(ctx, req.MeetingID, meeting.ActionReschedule)
		if err != nil {
			return nil, err
		}
		next = models.EditMeetingModal{Meeting: *m}
		draft = &Draft{Reschedule: &models.RescheduleInput{
			MeetingID:   m.ID,
			MeetingName: m.Title,
			Description: m.Description,
			Status:      m.Status,
			JitsiURL:    m.JitsiURL,
			ProjectID:   m.ProjectID,
		}}
	case models.ModalDeleteConfirm:
		m, err := s.gated(ctx, req.MeetingID, meeting.ActionDelete)
		if err != nil {
			return nil, err
		}
		next = models.DeleteConfirmModal{Meeting: *m}
	case models.ModalDayList:
		day, err := calendar.ParseDay(req.Date)
		if err != nil {
			return nil, meeting.NewValidationError("date", "Please pick a valid date")
		}
		if _, err := s.DayMeetings(ctx, day); err != nil {
			return nil, err
		}
		next = models.DayListModal{Date: day}
	default:
		return nil, meeting.NewValidationError("kind", fmt.Sprintf("Unknown modal %q", req.Kind))
	}

	sess, err := s.update(ctx, id, func(sess *Session) error {
		resetModal(sess)
		sess.Modal = next
		sess.Draft = draft
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log().Debug("modal opened", zap.String("sessionID", id), zap.String("kind", string(next.Kind())))
	return sess, nil
}

func (s *Service) gated(ctx context.Context, id models.MeetingID, a meeting.Action) (*models.Meeting, error) {
	m, err := s.Meetings.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !meeting.Allowed(m.Status, a) {
		return nil, &meeting.ActionError{Action: a, Status: m.Status, ID: m.ID}
	}
	return m, nil
}

// OpenDay opens the overflow list of a calendar day.
func (s *Service) OpenDay(ctx context.Context, id, date string) (*Session, error) {
	return s.OpenModal(ctx, id, OpenModalRequest{Kind: models.ModalDayList, Date: date})
}

// DayMeetings returns the meetings of an overflowing calendar day.
func (s *Service) DayMeetings(ctx context.Context, day string) ([]models.Meeting, error) {
	meetings, err := s.Meetings.List(ctx)
	if err != nil {
		return nil, err
	}
	list, ok := calendar.OpenCell(calendar.GroupByDate(meetings, s.now()), day)
	if !ok {
		return nil, ErrNothingToList
	}
	return list, nil
}

// formSession loads a session whose active modal is a booking form.
func (s *Service) formSession(ctx context.Context, id string) (*Session, error) {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !models.IsForm(sess.ActiveModal()) {
		return nil, ErrNoForm
	}
	return sess, nil
}

func requireForm(sess *Session) error {
	if !models.IsForm(sess.ActiveModal()) {
		return ErrNoForm
	}
	return nil
}

// PickDate selects a date on the open form and returns that date's slots.
// The previous slot is cleared before anything else happens.
func (s *Service) PickDate(ctx context.Context, id, date string) (*Session, []models.AvailableSlot, error) {
	sess, err := s.update(ctx, id, func(sess *Session) error {
		if err := requireForm(sess); err != nil {
			return err
		}
		sel := selection.FromState(sess.Selection)
		if err := sel.PickDate(date); err != nil {
			return err
		}
		sess.Selection = sel.Snapshot()
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	idx, err := s.Availability.Get(ctx)
	if err != nil {
		// The selection is already stored; only the slot list is missing.
		return sess, nil, err
	}
	slots := idx.SlotsFor(sess.Selection.SelectedDate)
	if slots == nil {
		slots = []models.AvailableSlot{}
	}
	return sess, slots, nil
}

// PickSlot selects a slot of the chosen date by its backend id. The slot is
// checked against the session as it is when the pick is stored, so a date
// picked while the slot index was loading wins over the older slot.
func (s *Service) PickSlot(ctx context.Context, id string, slotID int) (*Session, error) {
	if _, err := s.formSession(ctx, id); err != nil {
		return nil, err
	}
	idx, err := s.Availability.Get(ctx)
	if err != nil {
		return nil, err
	}
	slot, found := idx.Find(slotID)

	return s.update(ctx, id, func(sess *Session) error {
		if err := requireForm(sess); err != nil {
			return err
		}
		sel := selection.FromState(sess.Selection)
		if sel.State() == selection.Unselected {
			return selection.ErrNoDateChosen
		}
		if !found {
			return meeting.NewValidationError("slot", "This time slot is no longer available")
		}
		if err := sel.PickSlot(slot); err != nil {
			return err
		}
		sess.Selection = sel.Snapshot()
		return nil
	})
}

// SubmitCreate books a meeting from the add-meeting form. On failure the form
// stays open with its values; on success the selection is reset and the
// modal closes.
func (s *Service) SubmitCreate(ctx context.Context, id string, in models.CreateMeetingInput) (*Session, *models.Meeting, error) {
	sess, err := s.update(ctx, id, func(sess *Session) error {
		if sess.ActiveModal().Kind() != models.ModalAddMeeting {
			return ErrNoForm
		}
		draft := in
		sess.Draft = &Draft{Create: &draft}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	if err := meeting.ValidateCreate(in); err != nil {
		return sess, nil, err
	}
	slot, err := selection.FromState(sess.Selection).Submittable()
	if err != nil {
		return sess, nil, err
	}
	in.Slot = &slot

	created, err := s.Meetings.Create(tasks.WithSessionID(ctx, id), in)
	if err != nil {
		return sess, nil, err
	}
	sess, err = s.settle(ctx, id, models.ModalAddMeeting)
	return sess, created, err
}

// SubmitReschedule moves the edited meeting onto the selected slot.
func (s *Service) SubmitReschedule(ctx context.Context, id string, in models.RescheduleInput) (*Session, *models.Meeting, error) {
	sess, err := s.update(ctx, id, func(sess *Session) error {
		edit, ok := sess.ActiveModal().(models.EditMeetingModal)
		if !ok {
			return ErrNoForm
		}
		in.MeetingID = edit.Meeting.ID
		draft := in
		sess.Draft = &Draft{Reschedule: &draft}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	in.Slot = selection.FromState(sess.Selection).SelectedSlot()
	updated, err := s.Meetings.Reschedule(tasks.WithSessionID(ctx, id), in)
	if err != nil {
		return sess, nil, err
	}
	sess, err = s.settle(ctx, id, models.ModalEditMeeting)
	return sess, updated, err
}

// ConfirmDelete deletes the meeting of the delete-confirm modal.
func (s *Service) ConfirmDelete(ctx context.Context, id string) (*Session, error) {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	confirm, ok := sess.ActiveModal().(models.DeleteConfirmModal)
	if !ok {
		return nil, ErrNoForm
	}
	if err := s.Meetings.Delete(ctx, confirm.Meeting.ID); err != nil {
		return sess, err
	}
	return s.settle(ctx, id, models.ModalDeleteConfirm)
}

// settle closes the modal after a successful command. If the user already
// closed or replaced the modal while the request was in flight, the session
// is left as it is.
func (s *Service) settle(ctx context.Context, id string, kind models.ModalKind) (*Session, error) {
	sess, err := s.update(ctx, id, func(sess *Session) error {
		if sess.ActiveModal().Kind() != kind {
			return errModalChanged
		}
		resetModal(sess)
		return nil
	})
	switch {
	case errors.Is(err, errModalChanged):
		return sess, nil
	case errors.Is(err, ErrSessionNotFound):
		return nil, nil
	case err != nil:
		return nil, err
	}
	return sess, nil
}

// OpenSummary opens the summary modal for a meeting and fetches its record.
// While the fetch runs the view holds no summary; a result that arrives after
// the user moved to another meeting or closed the modal is dropped.
func (s *Service) OpenSummary(ctx context.Context, id string, meetingID models.MeetingID) (*Session, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	if strings.TrimSpace(meetingID.String()) == "" {
		return nil, &meeting.NotFoundError{Resource: "meeting"}
	}

	var token uint64
	if _, err := s.update(ctx, id, func(sess *Session) error {
		resetModal(sess)
		sess.Modal = models.SummaryModal{MeetingID: meetingID}
		token = s.Summaries.Start(&sess.Summary, meetingID)
		return nil
	}); err != nil {
		return nil, err
	}

	result, fetchErr := s.Summaries.Fetch(ctx, meetingID)

	var sess *Session
	var err error
	if fetchErr != nil && (errors.Is(fetchErr, meeting.ErrActionNotOffered) || isNotFound(fetchErr)) {
		// Not eligible: the modal never shows.
		sess, err = s.update(ctx, id, func(sess *Session) error {
			sm, ok := sess.ActiveModal().(models.SummaryModal)
			if !ok || sm.MeetingID != meetingID || sess.Summary.Token != token {
				return errModalChanged
			}
			resetModal(sess)
			return nil
		})
	} else {
		msg := ""
		if fetchErr != nil {
			msg = "Could not load the meeting summary"
		}
		sess, err = s.update(ctx, id, func(sess *Session) error {
			if !s.Summaries.Apply(&sess.Summary, token, result, fetchErr, msg) {
				return errModalChanged
			}
			return nil
		})
	}
	if err != nil && !errors.Is(err, errModalChanged) {
		return nil, err
	}
	return sess, fetchErr
}

func isNotFound(err error) bool {
	var nf *meeting.NotFoundError
	return errors.As(err, &nf)
}

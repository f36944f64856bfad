package meeting

import (
	"encoding/json"
	"sort"

	"opsdash/models"
)

// Action is something a user can do to an existing meeting.
type Action string

const (
	ActionReschedule  Action = "reschedule"
	ActionCancel      Action = "cancel"
	ActionDelete      Action = "delete"
	ActionJoin        Action = "join"
	ActionViewSummary Action = "viewSummary"
)

// AllActions lists every per-meeting action in display order.
var AllActions = []Action{ActionReschedule, ActionCancel, ActionDelete, ActionJoin, ActionViewSummary}

// ActionSet is an immutable set of actions.
type ActionSet struct {
	bits uint8
}

func bit(a Action) uint8 {
	for i, x := range AllActions {
		if x == a {
			return 1 << i
		}
	}
	return 0
}

func NewActionSet(actions ...Action) ActionSet {
	var s ActionSet
	for _, a := range actions {
		s.bits |= bit(a)
	}
	return s
}

func (s ActionSet) Has(a Action) bool {
	b := bit(a)
	return b != 0 && s.bits&b != 0
}

// List returns the actions in display order.
func (s ActionSet) List() []Action {
	out := make([]Action, 0, len(AllActions))
	for _, a := range AllActions {
		if s.Has(a) {
			out = append(out, a)
		}
	}
	return out
}

func (s ActionSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.List())
}

// statusActions is the lifecycle table. Nothing else decides which actions a
// meeting exposes.
var statusActions = map[models.MeetingStatus]ActionSet{
	models.StatusRequestSent: NewActionSet(ActionReschedule, ActionCancel, ActionJoin, ActionViewSummary),
	models.StatusConfirmed:   NewActionSet(ActionReschedule, ActionCancel, ActionJoin),
	models.StatusWaiting:     NewActionSet(ActionReschedule, ActionJoin),
	models.StatusCompleted:   NewActionSet(ActionDelete, ActionViewSummary),
	models.StatusCanceled:    NewActionSet(ActionReschedule, ActionDelete),
}

// ActionsFor returns the actions offered for a status. Unknown statuses offer
// nothing.
func ActionsFor(status models.MeetingStatus) ActionSet {
	return statusActions[status]
}

// Allowed reports whether the status offers the action.
func Allowed(status models.MeetingStatus, a Action) bool {
	return ActionsFor(status).Has(a)
}

// StatusesAllowing lists the statuses that offer an action, sorted.
func StatusesAllowing(a Action) []models.MeetingStatus {
	var out []models.MeetingStatus
	for st, set := range statusActions {
		if set.Has(a) {
			out = append(out, st)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// MeetingView pairs a meeting with its offered actions for list and detail views.
type MeetingView struct {
	models.Meeting
	Actions ActionSet `json:"actions"`
}

// Views decorates meetings with their action sets.
func Views(meetings []models.Meeting) []MeetingView {
	out := make([]MeetingView, 0, len(meetings))
	for _, m := range meetings {
		out = append(out, MeetingView{Meeting: m, Actions: ActionsFor(m.Status)})
	}
	return out
}

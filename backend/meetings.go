package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"

	"opsdash/models"
)

// CreateProjectRequest is the multipart body of create-project.
type CreateProjectRequest struct {
	Name        string
	Category    string
	MeetingName string
	StartTime   string // "HH:MM", optional
	EndTime     string // "HH:MM", optional
	SlotID      int    // 0 when no slot was chosen
	Description string
	Note        string
	Attachment  *models.Attachment
}

// RescheduleRequest is the body of reschedule-meeting.
type RescheduleRequest struct {
	SlotID      int    `json:"slot_id"`
	MeetingName string `json:"meeting_name"`
	Description string `json:"description"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	ProjectID   string `json:"project_id"`
	JitsiURL    string `json:"jitsi_url"`
	Status      string `json:"status"`
}

func meetingPath(prefix string, id models.MeetingID) string {
	return prefix + "/" + url.PathEscape(id.String())
}

func (c *HTTPClient) ListAvailableSlots(ctx context.Context) ([]models.AvailableSlot, error) {
	const op = "available-slots"
	data, err := c.getJSON(ctx, op, "/available-slots")
	if err != nil {
		return nil, err
	}
	slots, err := models.DecodeSlots(data)
	if err != nil {
		return nil, decodeErr(op, err)
	}
	return slots, nil
}

func (c *HTTPClient) ListMeetings(ctx context.Context) ([]models.Meeting, error) {
	const op = "meetings"
	data, err := c.getJSON(ctx, op, "/meetings")
	if err != nil {
		return nil, err
	}
	meetings, err := models.DecodeMeetings(data)
	if err != nil {
		return nil, decodeErr(op, err)
	}
	return meetings, nil
}

func (c *HTTPClient) ListProjects(ctx context.Context) ([]models.Project, error) {
	const op = "projects"
	data, err := c.getJSON(ctx, op, "/projects")
	if err != nil {
		return nil, err
	}
	projects, err := models.DecodeProjects(data)
	if err != nil {
		return nil, decodeErr(op, err)
	}
	return projects, nil
}

func (c *HTTPClient) GetMeetingSummary(ctx context.Context, id models.MeetingID) (*models.MeetingSummary, error) {
	const op = "meeting-summary"
	data, err := c.getJSON(ctx, op, meetingPath("/meeting-summary", id))
	if err != nil {
		return nil, err
	}
	var raw models.RawSummary
	if len(data) > 0 && string(data) != "null" {
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, decodeErr(op, err)
		}
	}
	summary := raw.Summary()
	return &summary, nil
}

// CreateProject posts the add-meeting form as multipart/form-data.
func (c *HTTPClient) CreateProject(ctx context.Context, req CreateProjectRequest) (*models.Meeting, error) {
	const op = "create-project"

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fields := []struct{ name, value string }{
		{"name", req.Name},
		{"category", req.Category},
		{"meeting_name", req.MeetingName},
	}
	optional := []struct{ name, value string }{
		{"start_time", models.ShortClock(req.StartTime)},
		{"end_time", models.ShortClock(req.EndTime)},
		{"description", req.Description},
		{"note", req.Note},
	}
	if req.SlotID != 0 {
		optional = append(optional, struct{ name, value string }{"slot_id", strconv.Itoa(req.SlotID)})
	}
	for _, f := range fields {
		if err := w.WriteField(f.name, f.value); err != nil {
			return nil, &Error{Op: op, Message: "could not encode request", Err: err}
		}
	}
	for _, f := range optional {
		if f.value == "" {
			continue
		}
		if err := w.WriteField(f.name, f.value); err != nil {
			return nil, &Error{Op: op, Message: "could not encode request", Err: err}
		}
	}
	if a := req.Attachment; a != nil && a.Filename != "" {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="attachment"; filename="`+escapeQuotes(a.Filename)+`"`)
		ct := a.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		h.Set("Content-Type", ct)
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, &Error{Op: op, Message: "could not encode attachment", Err: err}
		}
		if _, err := part.Write(a.Content); err != nil {
			return nil, &Error{Op: op, Message: "could not encode attachment", Err: err}
		}
	}
	if err := w.Close(); err != nil {
		return nil, &Error{Op: op, Message: "could not encode request", Err: err}
	}

	data, err := c.do(ctx, op, http.MethodPost, "/create-project", &buf, w.FormDataContentType())
	if err != nil {
		return nil, err
	}
	return decodeCreatedMeeting(op, data)
}

func (c *HTTPClient) RescheduleMeeting(ctx context.Context, id models.MeetingID, req RescheduleRequest) (*models.Meeting, error) {
	const op = "reschedule-meeting"
	req.StartTime = models.ShortClock(req.StartTime)
	req.EndTime = models.ShortClock(req.EndTime)
	data, err := c.postJSON(ctx, op, meetingPath("/reschedule-meeting", id), req)
	if err != nil {
		return nil, err
	}
	return decodeOptionalMeeting(op, data)
}

func (c *HTTPClient) CancelMeeting(ctx context.Context, id models.MeetingID) (*models.Meeting, error) {
	const op = "cancel-meeting"
	data, err := c.postJSON(ctx, op, meetingPath("/cancel-meeting", id), nil)
	if err != nil {
		return nil, err
	}
	return decodeOptionalMeeting(op, data)
}

func (c *HTTPClient) DeleteMeeting(ctx context.Context, id models.MeetingID) error {
	_, err := c.do(ctx, "delete-meeting", http.MethodDelete, meetingPath("/meeting", id), nil, "")
	return err
}

func (c *HTTPClient) JoinMeeting(ctx context.Context, id models.MeetingID) (string, error) {
	const op = "join-meeting"
	data, err := c.getJSON(ctx, op, meetingPath("/join-meeting", id))
	if err != nil {
		return "", err
	}
	var payload struct {
		JitsiURL string `json:"jitsi_url"`
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &payload); err != nil {
			return "", decodeErr(op, err)
		}
	}
	if payload.JitsiURL == "" {
		return "", &Error{Op: op, Status: http.StatusOK, Message: "meeting link is not available yet"}
	}
	return payload.JitsiURL, nil
}

// decodeOptionalMeeting decodes a meeting record when the backend returned
// one; mutation endpoints are allowed to answer with an empty data member.
func decodeOptionalMeeting(op string, data json.RawMessage) (*models.Meeting, error) {
	if len(data) == 0 || string(data) == "null" || data[0] != '{' {
		return nil, nil
	}
	m, err := models.DecodeMeeting(data)
	if err != nil {
		return nil, decodeErr(op, err)
	}
	return m, nil
}

// decodeCreatedMeeting reads the meeting out of a create-project answer. The
// backend may answer with the meeting, with the project wrapping a "meeting"
// member, or with the bare project; a project's id is never taken as the
// meeting id, so the bare project yields nil.
func decodeCreatedMeeting(op string, data json.RawMessage) (*models.Meeting, error) {
	if len(data) == 0 || string(data) == "null" || data[0] != '{' {
		return nil, nil
	}
	var head struct {
		Meeting     json.RawMessage  `json:"meeting"`
		MeetingID   models.MeetingID `json:"meeting_id"`
		MeetingName string           `json:"meeting_name"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, decodeErr(op, err)
	}
	if len(head.Meeting) > 0 && head.Meeting[0] == '{' {
		return decodeOptionalMeeting(op, head.Meeting)
	}
	if head.MeetingID == "" && head.MeetingName == "" {
		return nil, nil
	}
	m, err := models.DecodeMeeting(data)
	if err != nil {
		return nil, decodeErr(op, err)
	}
	if head.MeetingID != "" {
		m.ID = head.MeetingID
	}
	return m, nil
}

func escapeQuotes(s string) string {
	var b bytes.Buffer
	for _, r := range s {
		if r == '"' || r == '\\' {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

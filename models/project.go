package models

import "encoding/json"

// Project is referenced by meeting forms to populate the project/task pickers.
type Project struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	CategoryID string `json:"categoryId"`
	Tasks      []Task `json:"tasks"`
}

type Task struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Attachment is an uploaded file forwarded with a meeting request.
type Attachment struct {
	Filename    string `json:"filename"`
	ContentType string `json:"contentType,omitempty"`
	Content     []byte `json:"-"`
}

// CreateMeetingInput holds the fields of the add-meeting form.
type CreateMeetingInput struct {
	ProjectName string         `json:"projectName"`
	CategoryID  string         `json:"categoryId"`
	MeetingName string         `json:"meetingName"`
	Slot        *AvailableSlot `json:"slot,omitempty"`
	Description string         `json:"description,omitempty"`
	Note        string         `json:"note,omitempty"`
	Attachment  *Attachment    `json:"attachment,omitempty"`
}

// RescheduleInput holds the fields of the edit-meeting form.
type RescheduleInput struct {
	MeetingID   MeetingID      `json:"meetingId"`
	Slot        *AvailableSlot `json:"slot,omitempty"`
	MeetingName string         `json:"meetingName"`
	Description string         `json:"description,omitempty"`
	Status      MeetingStatus  `json:"status,omitempty"`
	JitsiURL    string         `json:"jitsiUrl,omitempty"`
	ProjectID   string         `json:"projectId"`
}

type rawProject struct {
	ID         json.RawMessage `json:"id"`
	Name       string          `json:"name"`
	CategoryID json.RawMessage `json:"category_id"`
	Tasks      []struct {
		ID   json.RawMessage `json:"id"`
		Name string          `json:"name"`
	} `json:"tasks"`
}

// DecodeProjects converts the backend's project list payload.
func DecodeProjects(data json.RawMessage) ([]Project, error) {
	if len(data) == 0 || string(data) == "null" {
		return []Project{}, nil
	}
	var raw []rawProject
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	projects := make([]Project, 0, len(raw))
	for _, r := range raw {
		p := Project{
			ID:         looseString(r.ID),
			Name:       r.Name,
			CategoryID: looseString(r.CategoryID),
			Tasks:      make([]Task, 0, len(r.Tasks)),
		}
		for _, t := range r.Tasks {
			p.Tasks = append(p.Tasks, Task{ID: looseString(t.ID), Name: t.Name})
		}
		projects = append(projects, p)
	}
	return projects, nil
}

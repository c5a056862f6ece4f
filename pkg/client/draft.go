package client

import (
	"strings"
	"time"

	"educrm-api/pkg/model"
	"educrm-api/pkg/task"
)

// TaskDraft is the create/edit dialog state. Opened with an existing task it
// pre-populates every field; opened blank it applies the defaults: status
// todo, medium priority, due today, assigned to the current user.
type TaskDraft struct {
	editID      uint
	Title       string
	Description string
	DueDate     string
	Status      model.TaskStatus
	Priority    model.TaskPriority
	AssignedTo  uint
	ContactID   *uint
}

func NewTaskDraft(editTask *model.Task, currentUser uint) *TaskDraft {
	if editTask == nil {
		return &TaskDraft{
			DueDate:    time.Now().Format(time.DateOnly),
			Status:     model.TaskStatusToDo,
			Priority:   model.TaskPriorityMedium,
			AssignedTo: currentUser,
		}
	}

	draft := &TaskDraft{
		editID:      editTask.ID,
		Title:       editTask.Title,
		Description: editTask.Description,
		DueDate:     editTask.DueDate.Format(time.DateOnly),
		Status:      editTask.Status,
		Priority:    editTask.Priority,
		AssignedTo:  editTask.AssignedTo,
	}
	if editTask.ContactID != nil {
		id := *editTask.ContactID
		draft.ContactID = &id
	}
	return draft
}

func (d *TaskDraft) IsEdit() bool {
	return d.editID != 0
}

// Validate enforces the mandatory fields. A failing draft never reaches the
// network.
func (d *TaskDraft) Validate() error {
	return task.ValidateSaveTaskRequest(d.request())
}

// Payload normalizes the draft into the save payload, with the id present
// only when editing. The dialog itself never persists; the list view owns
// saving and the follow-up re-fetch.
func (d *TaskDraft) Payload() (TaskPayload, error) {
	if err := d.Validate(); err != nil {
		return TaskPayload{}, err
	}
	return TaskPayload{ID: d.editID, SaveTaskRequest: d.request()}, nil
}

func (d *TaskDraft) request() task.SaveTaskRequest {
	return task.SaveTaskRequest{
		Title:       strings.TrimSpace(d.Title),
		Description: d.Description,
		DueDate:     strings.TrimSpace(d.DueDate),
		Status:      d.Status,
		Priority:    d.Priority,
		AssignedTo:  d.AssignedTo,
		ContactID:   d.ContactID,
	}
}

// ContactPicker is the type-ahead contact search of the task dialog: typing
// filters the supplied directory, selecting a suggestion pins the contact,
// clearing the query drops the association.
type ContactPicker struct {
	contacts []model.Contact
	query    string
	selected *model.Contact
}

func NewContactPicker(contacts []model.Contact) *ContactPicker {
	return &ContactPicker{contacts: contacts}
}

// NameFor resolves a contact id to its display name by scanning the supplied
// directory.
func (p *ContactPicker) NameFor(contactID uint) string {
	for i := range p.contacts {
		if p.contacts[i].ID == contactID {
			return p.contacts[i].Name
		}
	}
	return ""
}

// SetQuery updates the typed text. An emptied field clears the pinned
// contact.
func (p *ContactPicker) SetQuery(query string) {
	p.query = query
	if strings.TrimSpace(query) == "" {
		p.selected = nil
	}
}

// Suggestions returns directory entries whose name or email contains the
// query, case-insensitively.
func (p *ContactPicker) Suggestions() []model.Contact {
	needle := strings.ToLower(strings.TrimSpace(p.query))
	if needle == "" {
		return nil
	}
	var matches []model.Contact
	for _, contact := range p.contacts {
		if strings.Contains(strings.ToLower(contact.Name), needle) ||
			strings.Contains(strings.ToLower(contact.Email), needle) {
			matches = append(matches, contact)
		}
	}
	return matches
}

// Select pins a suggestion.
func (p *ContactPicker) Select(contact model.Contact) {
	p.selected = &contact
	p.query = contact.Name
}

// ContactID reports the pinned association, if any.
func (p *ContactPicker) ContactID() *uint {
	if p.selected == nil {
		return nil
	}
	id := p.selected.ID
	return &id
}

package task

import (
	"strings"
	"time"

	"educrm-api/pkg/model"

	"github.com/google/uuid"
)

// SaveTaskRequest is the full-document payload for POST /tasks and
// PUT /tasks/:id. The update endpoint replaces the whole task, it does not
// merge partial fields; replies travel through their own sub-resource.
type SaveTaskRequest struct {
	Title       string             `json:"title"`
	Description string             `json:"description"`
	DueDate     string             `json:"dueDate"`
	Status      model.TaskStatus   `json:"status"`
	Priority    model.TaskPriority `json:"priority"`
	AssignedTo  uint               `json:"assignedTo"`
	ContactID   *uint              `json:"contactId,omitempty"`
}

// ReplyRequest carries a thread entry. Attachment metadata comes from the
// upload endpoint; the reply itself never carries file bytes.
type ReplyRequest struct {
	Message     string             `json:"message"`
	Attachments []model.Attachment `json:"attachments,omitempty"`
}

type ForwardTaskRequest struct {
	AssignedTo uint `json:"assignedTo"`
}

type CreateRecurringTaskRequest struct {
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	ContactID        uint     `json:"contactId"`
	FrequencyDays    int      `json:"frequencyDays"`
	VisibilityEmails []string `json:"visibilityEmails,omitempty"`
}

// UpdateRecurringTaskRequest is a partial update: only frequency, visibility
// and the active flag are editable after creation.
type UpdateRecurringTaskRequest struct {
	FrequencyDays    *int      `json:"frequencyDays,omitempty"`
	VisibilityEmails *[]string `json:"visibilityEmails,omitempty"`
	IsActive         *bool     `json:"isActive,omitempty"`
}

// RecurringTaskHistory summarizes the tasks materialized from one definition.
type RecurringTaskHistory struct {
	Definition model.RecurringTask          `json:"definition"`
	Tasks      []model.Task                 `json:"tasks"`
	Counts     map[model.TaskStatus]int     `json:"counts"`
}

// ListQuery mirrors the documented GET /tasks filters. With no filter the
// caller gets their own actionable tasks.
type ListQuery struct {
	UserID          *uint
	All             bool
	ContactID       *uint
	RecurringTaskID *uint
}

const DefaultFrequencyDays = 2

func ValidateSaveTaskRequest(req SaveTaskRequest) error {
	if strings.TrimSpace(req.Title) == "" {
		return validationErr("title is required")
	}
	if strings.TrimSpace(req.DueDate) == "" {
		return validationErr("dueDate is required")
	}
	if _, err := parseDueDate(req.DueDate); err != nil {
		return validationErr("dueDate must be a calendar date (YYYY-MM-DD)")
	}
	if req.Status != "" && !req.Status.Valid() {
		return validationErr("invalid status")
	}
	if req.Priority != "" && !req.Priority.Valid() {
		return validationErr("invalid priority")
	}
	return nil
}

func ValidateCreateRecurringTaskRequest(req CreateRecurringTaskRequest) error {
	if strings.TrimSpace(req.Title) == "" {
		return validationErr("title is required")
	}
	if req.ContactID == 0 {
		return validationErr("contactId is required")
	}
	if req.FrequencyDays < 0 {
		return validationErr("frequencyDays must be positive")
	}
	return nil
}

func (r ReplyRequest) IsEmpty() bool {
	return strings.TrimSpace(r.Message) == "" && len(r.Attachments) == 0
}

func parseDueDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, raw)
}

// NewTaskCode mints the human-readable display code carried alongside the
// numeric primary key.
func NewTaskCode() string {
	return "TSK-" + strings.ToUpper(uuid.New().String()[:8])
}

func NewRecurringTaskCode() string {
	return "RT-" + strings.ToUpper(uuid.New().String()[:8])
}

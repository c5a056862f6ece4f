package model

import "time"

type TaskStatus string

const (
	TaskStatusToDo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusDone       TaskStatus = "done"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusToDo, TaskStatusInProgress, TaskStatusDone:
		return true
	}
	return false
}

type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
)

func (p TaskPriority) Valid() bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh:
		return true
	}
	return false
}

// Attachment is file metadata carried inside a reply. The binary itself lives
// in object storage; only {name, url, size} is persisted with the task.
type Attachment struct {
	Name string `json:"name"`
	URL  string `json:"url"`
	Size int64  `json:"size"`
}

// Reply is a timestamped thread entry on a task. UserName is denormalized at
// write time so the thread stays readable even if the staff record changes.
type Reply struct {
	ID          string       `gorm:"primaryKey" json:"id"`
	TaskID      uint         `gorm:"index" json:"taskId"`
	UserID      uint         `json:"userId"`
	UserName    string       `json:"userName"`
	Message     string       `json:"message"`
	Timestamp   time.Time    `json:"timestamp"`
	Attachments []Attachment `gorm:"serializer:json" json:"attachments,omitempty"`
}

// Task is a unit of work assigned to a staff member, optionally linked to a
// CRM contact. A task generated from a recurring definition carries
// RecurringTaskID for its whole lifetime.
type Task struct {
	ID              uint         `gorm:"primaryKey" json:"id"`
	TaskID          string       `gorm:"uniqueIndex" json:"taskId"`
	Title           string       `json:"title"`
	Description     string       `json:"description"`
	DueDate         time.Time    `json:"dueDate"`
	Status          TaskStatus   `gorm:"index" json:"status"`
	Priority        TaskPriority `json:"priority"`
	AssignedTo      uint         `gorm:"index" json:"assignedTo"`
	AssignedBy      uint         `json:"assignedBy"`
	ContactID       *uint        `gorm:"index" json:"contactId,omitempty"`
	RecurringTaskID *uint        `gorm:"index" json:"recurringTaskId,omitempty"`
	CompletedBy     *uint        `json:"completedBy,omitempty"`
	CompletedAt     *time.Time   `json:"completedAt,omitempty"`
	CreatedAt       time.Time    `json:"createdAt"`
	UpdatedAt       time.Time    `json:"updatedAt"`
	Replies         []Reply      `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE" json:"replies"`
}

func (t *Task) IsDone() bool {
	return t.Status == TaskStatusDone
}

// IsRecurring reports whether the task was materialized from a recurring
// definition.
func (t *Task) IsRecurring() bool {
	return t.RecurringTaskID != nil
}

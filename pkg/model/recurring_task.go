package model

import "time"

// RecurringTask is a template the materializer turns into concrete tasks on a
// fixed-day cadence. Pausing (IsActive=false) halts materialization without
// touching history; deleting the definition never deletes generated tasks.
type RecurringTask struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	TaskID           string     `gorm:"uniqueIndex" json:"taskId"`
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	ContactID        uint       `gorm:"index" json:"contactId"`
	FrequencyDays    int        `json:"frequencyDays"`
	VisibilityEmails []string   `gorm:"serializer:json" json:"visibilityEmails"`
	IsActive         bool       `json:"isActive"`
	LastGeneratedAt  *time.Time `json:"lastGeneratedAt,omitempty"`
	NextGenerationAt time.Time  `json:"nextGenerationAt"`
	CreatedBy        uint       `json:"createdBy"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

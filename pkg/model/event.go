package model

import "time"

type EventType string

const (
	EventTypeTaskCompleted EventType = "task_completed"
	EventTypeTaskForwarded EventType = "task_forwarded"
)

// Event is an append-only audit record of a lifecycle action. The payload
// shape depends on the type; task_completed carries the completion timing the
// metrics aggregation feeds on.
type Event struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Type      EventType      `gorm:"index" json:"type"`
	Data      map[string]any `gorm:"serializer:json" json:"data"`
	CreatedAt time.Time      `json:"createdAt"`
}

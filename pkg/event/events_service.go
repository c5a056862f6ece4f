// Package event records lifecycle actions as append-only audit rows.
package event

import (
	"context"
	"time"

	"educrm-api/pkg/model"
	"educrm-api/pkg/orm"

	"gorm.io/gorm"
)

type EventService struct {
	eventsORM *orm.EventsORM
}

func NewEventService(db *gorm.DB) *EventService {
	return &EventService{
		eventsORM: orm.NewEventsORM(db),
	}
}

// CreateTaskCompletionEvent records how long the task was open, from creation
// to completion, for the metrics aggregation.
func (s *EventService) CreateTaskCompletionEvent(ctx context.Context, t model.Task) error {
	completionSeconds := int(time.Since(t.CreatedAt).Seconds())
	return s.eventsORM.CreateEventByType(ctx, model.EventTypeTaskCompleted, map[string]any{
		"taskId":            t.TaskID,
		"completedBy":       t.CompletedBy,
		"completionSeconds": completionSeconds,
	})
}

// CreateTaskForwardedEvent records a reassignment hop.
func (s *EventService) CreateTaskForwardedEvent(ctx context.Context, t model.Task, previousAssignee uint) error {
	return s.eventsORM.CreateEventByType(ctx, model.EventTypeTaskForwarded, map[string]any{
		"taskId": t.TaskID,
		"from":   previousAssignee,
		"to":     t.AssignedTo,
	})
}

package orm

import (
	"context"

	"educrm-api/pkg/model"

	"gorm.io/gorm"
)

type EventsORM struct {
	db *gorm.DB
}

func NewEventsORM(db *gorm.DB) *EventsORM {
	return &EventsORM{db: db}
}

func (o *EventsORM) CreateEventByType(ctx context.Context, eventType model.EventType, data map[string]any) error {
	return o.db.WithContext(ctx).Create(&model.Event{Type: eventType, Data: data}).Error
}

func (o *EventsORM) GetByType(ctx context.Context, eventType model.EventType) ([]model.Event, error) {
	var events []model.Event
	err := o.db.WithContext(ctx).
		Where("type = ?", eventType).
		Order("created_at ASC").
		Find(&events).Error
	return events, err
}

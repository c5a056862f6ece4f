package orm

import (
	"context"
	"time"

	"educrm-api/pkg/model"

	"gorm.io/gorm"
)

type RecurringTaskORM struct {
	db *gorm.DB
}

func NewRecurringTaskORM(db *gorm.DB) *RecurringTaskORM {
	return &RecurringTaskORM{db: db}
}

func (o *RecurringTaskORM) Create(ctx context.Context, def *model.RecurringTask) error {
	return o.db.WithContext(ctx).Create(def).Error
}

func (o *RecurringTaskORM) GetByID(ctx context.Context, id uint) (*model.RecurringTask, error) {
	var def model.RecurringTask
	if err := o.db.WithContext(ctx).First(&def, id).Error; err != nil {
		return nil, err
	}
	return &def, nil
}

func (o *RecurringTaskORM) GetAll(ctx context.Context) ([]model.RecurringTask, error) {
	var defs []model.RecurringTask
	if err := o.db.WithContext(ctx).Order("id ASC").Find(&defs).Error; err != nil {
		return nil, err
	}
	return defs, nil
}

// GetDue returns active definitions whose next generation time has passed.
func (o *RecurringTaskORM) GetDue(ctx context.Context, now time.Time) ([]model.RecurringTask, error) {
	var defs []model.RecurringTask
	err := o.db.WithContext(ctx).
		Where("is_active = ? AND next_generation_at <= ?", true, now).
		Find(&defs).Error
	if err != nil {
		return nil, err
	}
	return defs, nil
}

func (o *RecurringTaskORM) Update(ctx context.Context, def *model.RecurringTask) error {
	return o.db.WithContext(ctx).Save(def).Error
}

// Delete removes the definition only. Tasks already generated from it keep
// their recurring_task_id back-reference and stay queryable.
func (o *RecurringTaskORM) Delete(ctx context.Context, id uint) error {
	return o.db.WithContext(ctx).Delete(&model.RecurringTask{}, id).Error
}

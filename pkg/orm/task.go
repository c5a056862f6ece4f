package orm

import (
	"context"

	"educrm-api/pkg/model"

	"gorm.io/gorm"
)

type TaskORM struct {
	db *gorm.DB
}

func NewTaskORM(db *gorm.DB) *TaskORM {
	return &TaskORM{db: db}
}

// TaskQuery mirrors the documented list filters: no filter means the caller's
// own actionable tasks, which the service layer resolves into AssignedTo.
type TaskQuery struct {
	AssignedTo      *uint
	ContactID       *uint
	RecurringTaskID *uint
}

func (o *TaskORM) Create(ctx context.Context, task *model.Task) error {
	return o.db.WithContext(ctx).Create(task).Error
}

func (o *TaskORM) GetCompletedTaskCount(ctx context.Context) (int64, error) {
	var count int64
	err := o.db.WithContext(ctx).Model(&model.Task{}).
		Where("status = ?", model.TaskStatusDone).
		Count(&count).Error
	return count, err
}

func (o *TaskORM) GetOpenTaskCount(ctx context.Context) (int64, error) {
	var count int64
	err := o.db.WithContext(ctx).Model(&model.Task{}).
		Where("status <> ?", model.TaskStatusDone).
		Count(&count).Error
	return count, err
}

func (o *TaskORM) GetByID(ctx context.Context, id uint) (*model.Task, error) {
	var task model.Task
	err := o.db.WithContext(ctx).
		Preload("Replies", func(db *gorm.DB) *gorm.DB {
			return db.Order("timestamp ASC")
		}).
		First(&task, id).Error
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (o *TaskORM) GetFiltered(ctx context.Context, query TaskQuery) ([]model.Task, error) {
	tx := o.db.WithContext(ctx).Model(&model.Task{})
	if query.AssignedTo != nil {
		tx = tx.Where("assigned_to = ?", *query.AssignedTo)
	}
	if query.ContactID != nil {
		tx = tx.Where("contact_id = ?", *query.ContactID)
	}
	if query.RecurringTaskID != nil {
		tx = tx.Where("recurring_task_id = ?", *query.RecurringTaskID)
	}

	var tasks []model.Task
	err := tx.
		Preload("Replies", func(db *gorm.DB) *gorm.DB {
			return db.Order("timestamp ASC")
		}).
		Order("due_date ASC, id ASC").
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

// Update persists the task document itself. Replies are managed through the
// dedicated reply methods so two concurrent repliers never overwrite each
// other's thread entries.
func (o *TaskORM) Update(ctx context.Context, task *model.Task) error {
	return o.db.WithContext(ctx).Omit("Replies").Save(task).Error
}

func (o *TaskORM) Delete(ctx context.Context, id uint) error {
	return o.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", id).Delete(&model.Reply{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Task{}, id).Error
	})
}

func (o *TaskORM) CreateReply(ctx context.Context, reply *model.Reply) error {
	return o.db.WithContext(ctx).Create(reply).Error
}

func (o *TaskORM) GetReply(ctx context.Context, taskID uint, replyID string) (*model.Reply, error) {
	var reply model.Reply
	err := o.db.WithContext(ctx).
		Where("task_id = ? AND id = ?", taskID, replyID).
		First(&reply).Error
	if err != nil {
		return nil, err
	}
	return &reply, nil
}

func (o *TaskORM) UpdateReply(ctx context.Context, reply *model.Reply) error {
	return o.db.WithContext(ctx).Save(reply).Error
}

func (o *TaskORM) DeleteReply(ctx context.Context, taskID uint, replyID string) error {
	return o.db.WithContext(ctx).
		Where("task_id = ? AND id = ?", taskID, replyID).
		Delete(&model.Reply{}).Error
}

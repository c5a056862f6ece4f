package task

import (
	"context"
	"errors"
	"time"

	"educrm-api/pkg/model"
	"educrm-api/pkg/orm"

	"gorm.io/gorm"
)

// RecurringTaskService manages the definitions the materializer feeds on.
// All of its operations sit behind the admin role at the API layer.
type RecurringTaskService struct {
	recurringORM *orm.RecurringTaskORM
	contactORM   *orm.ContactORM
	taskORM      *orm.TaskORM
}

func NewRecurringTaskService(db *gorm.DB) *RecurringTaskService {
	return &RecurringTaskService{
		recurringORM: orm.NewRecurringTaskORM(db),
		contactORM:   orm.NewContactORM(db),
		taskORM:      orm.NewTaskORM(db),
	}
}

func (s *RecurringTaskService) Create(ctx context.Context, req CreateRecurringTaskRequest, actor *model.Staff) (*model.RecurringTask, error) {
	if err := ValidateCreateRecurringTaskRequest(req); err != nil {
		return nil, err
	}
	if _, err := s.contactORM.GetByID(ctx, req.ContactID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Kind: "contact", ID: itoa(req.ContactID)}
		}
		return nil, err
	}

	frequency := req.FrequencyDays
	if frequency == 0 {
		frequency = DefaultFrequencyDays
	}

	def := &model.RecurringTask{
		TaskID:           NewRecurringTaskCode(),
		Title:            req.Title,
		Description:      req.Description,
		ContactID:        req.ContactID,
		FrequencyDays:    frequency,
		VisibilityEmails: req.VisibilityEmails,
		IsActive:         true,
		// due immediately, the first concrete task appears on the next sweep
		NextGenerationAt: time.Now().UTC(),
		CreatedBy:        actor.ID,
	}
	if err := s.recurringORM.Create(ctx, def); err != nil {
		return nil, err
	}
	return def, nil
}

func (s *RecurringTaskService) GetAll(ctx context.Context) ([]model.RecurringTask, error) {
	return s.recurringORM.GetAll(ctx)
}

func (s *RecurringTaskService) Update(ctx context.Context, id uint, req UpdateRecurringTaskRequest) (*model.RecurringTask, error) {
	def, err := s.recurringORM.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Kind: "recurring task", ID: itoa(id)}
		}
		return nil, err
	}

	if req.FrequencyDays != nil {
		if *req.FrequencyDays <= 0 {
			return nil, validationErr("frequencyDays must be positive")
		}
		def.FrequencyDays = *req.FrequencyDays
	}
	if req.VisibilityEmails != nil {
		def.VisibilityEmails = *req.VisibilityEmails
	}
	if req.IsActive != nil {
		def.IsActive = *req.IsActive
	}

	if err := s.recurringORM.Update(ctx, def); err != nil {
		return nil, err
	}
	return def, nil
}

// Delete removes the definition without touching its generated tasks; the
// history stays queryable via the recurringTaskId list filter.
func (s *RecurringTaskService) Delete(ctx context.Context, id uint) error {
	if _, err := s.recurringORM.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &NotFoundError{Kind: "recurring task", ID: itoa(id)}
		}
		return err
	}
	return s.recurringORM.Delete(ctx, id)
}

// History returns every task materialized from the definition plus a
// per-status tally for the admin history viewer.
func (s *RecurringTaskService) History(ctx context.Context, id uint) (*RecurringTaskHistory, error) {
	def, err := s.recurringORM.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Kind: "recurring task", ID: itoa(id)}
		}
		return nil, err
	}

	defID := def.ID
	tasks, err := s.taskORM.GetFiltered(ctx, orm.TaskQuery{RecurringTaskID: &defID})
	if err != nil {
		return nil, err
	}

	return &RecurringTaskHistory{
		Definition: *def,
		Tasks:      tasks,
		Counts:     CountByStatus(tasks),
	}, nil
}

// CountByStatus tallies tasks per lifecycle status.
func CountByStatus(tasks []model.Task) map[model.TaskStatus]int {
	counts := make(map[model.TaskStatus]int, 3)
	for _, t := range tasks {
		counts[t.Status]++
	}
	return counts
}

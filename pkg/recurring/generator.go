// Package recurring materializes concrete tasks from recurring definitions on
// a fixed-day cadence.
package recurring

import (
	"context"
	"fmt"
	"time"

	"educrm-api/pkg/model"
	"educrm-api/pkg/orm"
	"educrm-api/pkg/task"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type Generator struct {
	recurringORM *orm.RecurringTaskORM
	taskORM      *orm.TaskORM
	staffORM     *orm.StaffORM
	cron         *cron.Cron
}

func NewGenerator(db *gorm.DB) *Generator {
	return &Generator{
		recurringORM: orm.NewRecurringTaskORM(db),
		taskORM:      orm.NewTaskORM(db),
		staffORM:     orm.NewStaffORM(db),
		cron:         cron.New(),
	}
}

// Start schedules a periodic sweep over due definitions.
func (g *Generator) Start(interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("interval must be positive")
	}
	spec := fmt.Sprintf("@every %ds", int(interval.Seconds()))
	_, err := g.cron.AddFunc(spec, func() {
		if _, err := g.Sweep(context.Background()); err != nil {
			log.Error().Err(err).Msg("Recurring task sweep failed")
		}
	})
	if err != nil {
		return err
	}
	g.cron.Start()
	log.Info().Dur("interval", interval).Msg("Recurring task generator started")
	return nil
}

func (g *Generator) Stop() {
	ctx := g.cron.Stop()
	<-ctx.Done()
	log.Info().Msg("Recurring task generator stopped")
}

// Sweep materializes one task for every active definition whose next
// generation time has passed, then advances the definition's schedule by its
// frequency. Returns how many tasks were created.
func (g *Generator) Sweep(ctx context.Context) (int, error) {
	now := time.Now().UTC()
	due, err := g.recurringORM.GetDue(ctx, now)
	if err != nil {
		return 0, err
	}

	created := 0
	for i := range due {
		if err := g.materialize(ctx, &due[i], now); err != nil {
			log.Error().Err(err).Str("taskId", due[i].TaskID).Msg("Failed to materialize recurring task")
			continue
		}
		created++
	}
	if created > 0 {
		log.Info().Int("created", created).Msg("Materialized recurring tasks")
	}
	return created, nil
}

func (g *Generator) materialize(ctx context.Context, def *model.RecurringTask, now time.Time) error {
	contactID := def.ContactID
	defID := def.ID
	newTask := &model.Task{
		TaskID:          task.NewTaskCode(),
		Title:           def.Title,
		Description:     def.Description,
		DueDate:         today(now),
		Status:          model.TaskStatusToDo,
		Priority:        model.TaskPriorityMedium,
		AssignedTo:      g.resolveAssignee(ctx, def),
		AssignedBy:      def.CreatedBy,
		ContactID:       &contactID,
		RecurringTaskID: &defID,
	}
	if err := g.taskORM.Create(ctx, newTask); err != nil {
		return err
	}

	generatedAt := now
	def.LastGeneratedAt = &generatedAt
	def.NextGenerationAt = now.AddDate(0, 0, def.FrequencyDays)
	return g.recurringORM.Update(ctx, def)
}

// resolveAssignee picks the first visibility email that maps to a staff
// record; generated tasks fall back to the definition's creator.
func (g *Generator) resolveAssignee(ctx context.Context, def *model.RecurringTask) uint {
	for _, email := range def.VisibilityEmails {
		staff, err := g.staffORM.GetByEmail(ctx, email)
		if err != nil {
			continue
		}
		return staff.ID
	}
	return def.CreatedBy
}

func today(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Package metric aggregates workload numbers for the admin dashboard.
package metric

import (
	"context"
	"encoding/json"
	"time"

	"educrm-api/pkg/cache"
	"educrm-api/pkg/model"
	"educrm-api/pkg/orm"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const (
	taskMetricsCacheKey = "educrm_api:metrics:tasks"
	taskMetricsCacheTTL = 60 * time.Second
)

type MetricService struct {
	taskORM   *orm.TaskORM
	eventsORM *orm.EventsORM
	cache     *cache.Cache
}

func NewMetricService(db *gorm.DB) *MetricService {
	return &MetricService{
		taskORM:   orm.NewTaskORM(db),
		eventsORM: orm.NewEventsORM(db),
		cache:     cache.GetCacheInstance(),
	}
}

// GetTaskMetrics serves the snapshot from cache when fresh and recomputes it
// from the database otherwise. Any cache failure counts as a miss.
func (s *MetricService) GetTaskMetrics(ctx context.Context) (*TaskMetrics, error) {
	if cached, err := s.cache.Get(ctx, taskMetricsCacheKey); err == nil {
		var metrics TaskMetrics
		if err := json.Unmarshal([]byte(cached), &metrics); err == nil {
			return &metrics, nil
		}
	}

	metrics, err := s.computeTaskMetrics(ctx)
	if err != nil {
		return nil, err
	}

	if encoded, err := json.Marshal(metrics); err == nil {
		if err := s.cache.SetWithExpire(ctx, taskMetricsCacheKey, string(encoded), taskMetricsCacheTTL); err != nil {
			log.Warn().Err(err).Msg("Failed to cache task metrics")
		}
	}
	return metrics, nil
}

func (s *MetricService) computeTaskMetrics(ctx context.Context) (*TaskMetrics, error) {
	completed, err := s.taskORM.GetCompletedTaskCount(ctx)
	if err != nil {
		return nil, err
	}
	open, err := s.taskORM.GetOpenTaskCount(ctx)
	if err != nil {
		return nil, err
	}
	avg, err := s.avgCompletionSeconds(ctx)
	if err != nil {
		return nil, err
	}

	return &TaskMetrics{
		CompletedTasks:       completed,
		OpenTasks:            open,
		AvgCompletionSeconds: avg,
		GeneratedAt:          time.Now().UTC(),
	}, nil
}

// avgCompletionSeconds averages the timings carried by completion events.
func (s *MetricService) avgCompletionSeconds(ctx context.Context) (int, error) {
	events, err := s.eventsORM.GetByType(ctx, model.EventTypeTaskCompleted)
	if err != nil {
		return 0, err
	}
	if len(events) == 0 {
		return 0, nil
	}

	total := 0
	counted := 0
	for _, e := range events {
		seconds, ok := e.Data["completionSeconds"].(float64)
		if !ok {
			continue
		}
		total += int(seconds)
		counted++
	}
	if counted == 0 {
		return 0, nil
	}
	return total / counted, nil
}

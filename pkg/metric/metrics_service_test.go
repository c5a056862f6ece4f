package metric

import (
	"context"
	"fmt"
	"testing"

	"educrm-api/pkg/model"
	"educrm-api/pkg/orm"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := orm.Connect(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String()))
	require.NoError(t, err)
	return db
}

func seedTask(t *testing.T, db *gorm.DB, status model.TaskStatus) {
	t.Helper()
	require.NoError(t, db.Create(&model.Task{
		TaskID:   "TSK-" + uuid.New().String()[:8],
		Title:    "seeded",
		Status:   status,
		Priority: model.TaskPriorityMedium,
	}).Error)
}

func TestGetTaskMetricsCounts(t *testing.T) {
	db := newTestDB(t)
	seedTask(t, db, model.TaskStatusToDo)
	seedTask(t, db, model.TaskStatusInProgress)
	seedTask(t, db, model.TaskStatusDone)

	metrics, err := NewMetricService(db).GetTaskMetrics(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1, metrics.CompletedTasks)
	assert.EqualValues(t, 2, metrics.OpenTasks)
	assert.Zero(t, metrics.AvgCompletionSeconds)
	assert.False(t, metrics.GeneratedAt.IsZero())
}

func TestGetTaskMetricsAveragesCompletionEvents(t *testing.T) {
	db := newTestDB(t)
	events := orm.NewEventsORM(db)
	require.NoError(t, events.CreateEventByType(context.Background(), model.EventTypeTaskCompleted,
		map[string]any{"taskId": "TSK-A", "completionSeconds": 100}))
	require.NoError(t, events.CreateEventByType(context.Background(), model.EventTypeTaskCompleted,
		map[string]any{"taskId": "TSK-B", "completionSeconds": 300}))
	// other event types never enter the average
	require.NoError(t, events.CreateEventByType(context.Background(), model.EventTypeTaskForwarded,
		map[string]any{"taskId": "TSK-A", "from": 1, "to": 2}))

	metrics, err := NewMetricService(db).GetTaskMetrics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 200, metrics.AvgCompletionSeconds)
}

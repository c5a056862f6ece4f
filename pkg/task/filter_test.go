package task

import (
	"testing"
	"time"

	"educrm-api/pkg/model"

	"github.com/stretchr/testify/assert"
)

func day(value string) time.Time {
	t, err := time.Parse(time.DateOnly, value)
	if err != nil {
		panic(err)
	}
	return t
}

func dayPtr(value string) *time.Time {
	t := day(value)
	return &t
}

func openTask(id string, title string) model.Task {
	return model.Task{
		TaskID:   id,
		Title:    title,
		DueDate:  day("2026-09-01"),
		Status:   model.TaskStatusToDo,
		Priority: model.TaskPriorityMedium,
	}
}

func doneTask(id string, completedAt string) model.Task {
	by := uint(1)
	t := openTask(id, "done "+id)
	t.Status = model.TaskStatusDone
	t.CompletedBy = &by
	t.CompletedAt = dayPtr(completedAt)
	return t
}

func taskIDs(tasks []model.Task) []string {
	ids := make([]string, 0, len(tasks))
	for _, t := range tasks {
		ids = append(ids, t.TaskID)
	}
	return ids
}

func TestFilterDefaultTabHidesDone(t *testing.T) {
	tasks := []model.Task{
		openTask("TSK-A", "Call student"),
		doneTask("TSK-B", "2026-08-20"),
	}

	assert.Equal(t, []string{"TSK-A"}, taskIDs(ListFilter{}.Apply(tasks)))
	assert.Equal(t, []string{"TSK-A", "TSK-B"}, taskIDs(ListFilter{Status: FilterAll}.Apply(tasks)))
	assert.Equal(t, []string{"TSK-B"}, taskIDs(ListFilter{Status: string(model.TaskStatusDone)}.Apply(tasks)))
}

func TestFilterSearchMatchesTitleDescriptionAndCode(t *testing.T) {
	a := openTask("TSK-AAAA1111", "Call student")
	a.Description = "about the visa interview"
	b := openTask("TSK-BBBB2222", "Send brochure")
	tasks := []model.Task{a, b}

	assert.Equal(t, []string{"TSK-AAAA1111"}, taskIDs(ListFilter{Search: "VISA"}.Apply(tasks)))
	assert.Equal(t, []string{"TSK-BBBB2222"}, taskIDs(ListFilter{Search: "bbbb"}.Apply(tasks)))
	assert.Equal(t, []string{"TSK-AAAA1111"}, taskIDs(ListFilter{Search: "  call "}.Apply(tasks)))
	assert.Empty(t, ListFilter{Search: "nothing"}.Apply(tasks))
}

func TestFilterHistoryTabUsesCompletionDate(t *testing.T) {
	early := doneTask("TSK-EARLY", "2026-08-10")
	late := doneTask("TSK-LATE", "2026-08-25")
	open := openTask("TSK-OPEN", "still going")
	tasks := []model.Task{early, late, open}

	// history shows done tasks only, whatever the other filters say
	got := ListFilter{Tab: TabHistory, Status: string(model.TaskStatusToDo)}.Apply(tasks)
	assert.ElementsMatch(t, []string{"TSK-EARLY", "TSK-LATE"}, taskIDs(got))

	// the date range binds to when the task was completed, not when it was due
	got = ListFilter{
		Tab:      TabHistory,
		DateFrom: dayPtr("2026-08-20"),
		DateTo:   dayPtr("2026-08-31"),
	}.Apply(tasks)
	assert.Equal(t, []string{"TSK-LATE"}, taskIDs(got))
}

func TestFilterDateRangeComparesCalendarDays(t *testing.T) {
	a := openTask("TSK-A", "due sep 1")
	a.DueDate = time.Date(2026, 9, 1, 23, 59, 0, 0, time.UTC)
	b := openTask("TSK-B", "due sep 5")
	b.DueDate = day("2026-09-05")
	undated := openTask("TSK-C", "no due date")
	undated.DueDate = time.Time{}
	tasks := []model.Task{a, b, undated}

	got := ListFilter{DateFrom: dayPtr("2026-09-01"), DateTo: dayPtr("2026-09-01")}.Apply(tasks)
	assert.Equal(t, []string{"TSK-A"}, taskIDs(got))

	// a bound excludes tasks with no resolvable date
	got = ListFilter{DateFrom: dayPtr("2026-01-01")}.Apply(tasks)
	assert.ElementsMatch(t, []string{"TSK-A", "TSK-B"}, taskIDs(got))
}

func TestFilterPersonalTab(t *testing.T) {
	selfAssigned := openTask("TSK-SELF", "my own note")
	selfAssigned.AssignedTo = 7
	selfAssigned.AssignedBy = 7

	delegated := openTask("TSK-DELEGATED", "from the boss")
	delegated.AssignedTo = 7
	delegated.AssignedBy = 1

	finished := doneTask("TSK-FINISHED", "2026-08-20")
	finished.AssignedTo = 7
	finished.AssignedBy = 7

	got := ListFilter{Tab: TabPersonal, CurrentUser: 7}.Apply([]model.Task{selfAssigned, delegated, finished})
	assert.Equal(t, []string{"TSK-SELF"}, taskIDs(got))
}

func TestFilterByPriorityAndType(t *testing.T) {
	defID := uint(3)
	manual := openTask("TSK-MANUAL", "one-off")
	manual.Priority = model.TaskPriorityHigh
	generated := openTask("TSK-GEN", "from definition")
	generated.RecurringTaskID = &defID
	tasks := []model.Task{manual, generated}

	assert.Equal(t, []string{"TSK-MANUAL"}, taskIDs(ListFilter{Priority: string(model.TaskPriorityHigh)}.Apply(tasks)))
	assert.Equal(t, []string{"TSK-MANUAL"}, taskIDs(ListFilter{Type: TypeFilterManual}.Apply(tasks)))
	assert.Equal(t, []string{"TSK-GEN"}, taskIDs(ListFilter{Type: TypeFilterRecurring}.Apply(tasks)))
	assert.Len(t, ListFilter{Priority: FilterAll}.Apply(tasks), 2)
}

func TestFilterStagesCompose(t *testing.T) {
	defID := uint(3)
	match := openTask("TSK-MATCH", "Visa paperwork")
	match.Priority = model.TaskPriorityHigh
	match.RecurringTaskID = &defID

	wrongPriority := openTask("TSK-LOW", "Visa paperwork")
	wrongPriority.Priority = model.TaskPriorityLow
	wrongPriority.RecurringTaskID = &defID

	wrongSearch := openTask("TSK-OTHER", "Flight booking")
	wrongSearch.Priority = model.TaskPriorityHigh
	wrongSearch.RecurringTaskID = &defID

	got := ListFilter{
		Search:   "visa",
		Priority: string(model.TaskPriorityHigh),
		Type:     TypeFilterRecurring,
		DateFrom: dayPtr("2026-08-01"),
		DateTo:   dayPtr("2026-09-30"),
	}.Apply([]model.Task{match, wrongPriority, wrongSearch})
	assert.Equal(t, []string{"TSK-MATCH"}, taskIDs(got))
}

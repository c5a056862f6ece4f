package client

import (
	"context"

	"educrm-api/pkg/model"
	"educrm-api/pkg/task"
)

// ActorScope is the admin-only actor filter of the tasks view: own tasks,
// everyone's tasks, or one specific staff member's.
type ActorScope struct {
	All     bool
	StaffID *uint
}

// TasksView drives the task list screen: it fetches per the actor scope and
// applies the in-memory filter pipeline. Mutations go through the Client
// directly; the view's job after any mutation is Refresh, never an optimistic
// patch.
type TasksView struct {
	client      *Client
	CurrentUser uint
	IsAdmin     bool

	Filter task.ListFilter
	Scope  ActorScope

	tasks []model.Task
}

func NewTasksView(c *Client, currentUser uint, isAdmin bool) *TasksView {
	return &TasksView{
		client:      c,
		CurrentUser: currentUser,
		IsAdmin:     isAdmin,
		Filter:      task.ListFilter{CurrentUser: currentUser},
	}
}

// Refresh re-fetches the authoritative task list. The "all" and specific
// staff scopes only apply for admins; anyone else always sees their own
// tasks.
func (v *TasksView) Refresh(ctx context.Context) error {
	filters := TaskFilters{}
	if v.IsAdmin {
		filters.All = v.Scope.All
		if !v.Scope.All {
			filters.UserID = v.Scope.StaffID
		}
	}

	tasks, err := v.client.GetTasks(ctx, filters)
	if err != nil {
		return err
	}
	v.tasks = tasks
	return nil
}

// VisibleTasks runs the filter pipeline over the fetched list.
func (v *TasksView) VisibleTasks() []model.Task {
	v.Filter.CurrentUser = v.CurrentUser
	return v.Filter.Apply(v.tasks)
}

// ShowsAssigneeColumn reports whether the extra "assigned to" column is
// rendered, which only happens in the admin-wide scope.
func (v *TasksView) ShowsAssigneeColumn() bool {
	return v.IsAdmin && v.Scope.All
}

// FrequencyEdit models the inline click-to-edit frequency cell of the
// recurring admin panel: commit on blur or Enter, revert on Escape.
type FrequencyEdit struct {
	original int
	Value    int
}

func NewFrequencyEdit(current int) *FrequencyEdit {
	return &FrequencyEdit{original: current, Value: current}
}

// Commit returns the edited value and whether it actually changed to
// something usable; an unchanged or non-positive value is a no-op.
func (e *FrequencyEdit) Commit() (int, bool) {
	if e.Value <= 0 || e.Value == e.original {
		return e.original, false
	}
	return e.Value, true
}

// Revert restores the pre-edit value.
func (e *FrequencyEdit) Revert() {
	e.Value = e.original
}

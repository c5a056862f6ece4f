package task

import (
	"strings"
	"time"

	"educrm-api/pkg/model"
)

type Tab string

const (
	TabTasks    Tab = "tasks"
	TabHistory  Tab = "history"
	TabPersonal Tab = "personal"
)

const FilterAll = "all"

const (
	TypeFilterManual    = "manual"
	TypeFilterRecurring = "recurring"
)

// ListFilter is the composable in-memory pipeline behind the tasks view.
// The stages are order-independent: free-text search, date range, tab
// semantics, and the status/priority/type filters the default tab applies.
// Actor scoping (self / all / specific staff) happens at fetch time via
// ListQuery, not here.
type ListFilter struct {
	Tab      Tab
	Search   string
	DateFrom *time.Time
	DateTo   *time.Time

	// Status, Priority and Type accept "", "all" or a concrete value. They
	// only apply on the default tab; History and Personal ignore them.
	Status   string
	Priority string
	Type     string

	// CurrentUser drives the Personal tab.
	CurrentUser uint
}

func (f ListFilter) Apply(tasks []model.Task) []model.Task {
	out := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if f.matches(&t) {
			out = append(out, t)
		}
	}
	return out
}

func (f ListFilter) matches(t *model.Task) bool {
	if !f.matchesSearch(t) {
		return false
	}
	if !f.matchesDateRange(t) {
		return false
	}

	switch f.Tab {
	case TabHistory:
		return t.IsDone()
	case TabPersonal:
		return t.AssignedTo == f.CurrentUser && t.AssignedBy == f.CurrentUser && !t.IsDone()
	default:
		return f.matchesStatus(t) && f.matchesPriority(t) && f.matchesType(t)
	}
}

func (f ListFilter) matchesSearch(t *model.Task) bool {
	needle := strings.ToLower(strings.TrimSpace(f.Search))
	if needle == "" {
		return true
	}
	return strings.Contains(strings.ToLower(t.Title), needle) ||
		strings.Contains(strings.ToLower(t.Description), needle) ||
		strings.Contains(strings.ToLower(t.TaskID), needle)
}

// matchesDateRange compares calendar dates, not instants. A task with no
// resolvable date is excluded whenever any bound is set.
func (f ListFilter) matchesDateRange(t *model.Task) bool {
	if f.DateFrom == nil && f.DateTo == nil {
		return true
	}
	d := f.effectiveDate(t)
	if d == nil {
		return false
	}
	day := toDay(*d)
	if f.DateFrom != nil && day.Before(toDay(*f.DateFrom)) {
		return false
	}
	if f.DateTo != nil && day.After(toDay(*f.DateTo)) {
		return false
	}
	return true
}

// effectiveDate is the completion date on the History tab for done tasks and
// the due date everywhere else.
func (f ListFilter) effectiveDate(t *model.Task) *time.Time {
	if f.Tab == TabHistory && t.IsDone() {
		return t.CompletedAt
	}
	if t.DueDate.IsZero() {
		return nil
	}
	return &t.DueDate
}

// matchesStatus defaults to hiding completed tasks: they only show up when
// the filter explicitly asks for done or all.
func (f ListFilter) matchesStatus(t *model.Task) bool {
	switch f.Status {
	case "":
		return !t.IsDone()
	case FilterAll:
		return true
	default:
		return t.Status == model.TaskStatus(f.Status)
	}
}

func (f ListFilter) matchesPriority(t *model.Task) bool {
	if f.Priority == "" || f.Priority == FilterAll {
		return true
	}
	return t.Priority == model.TaskPriority(f.Priority)
}

func (f ListFilter) matchesType(t *model.Task) bool {
	switch f.Type {
	case TypeFilterManual:
		return !t.IsRecurring()
	case TypeFilterRecurring:
		return t.IsRecurring()
	default:
		return true
	}
}

func toDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

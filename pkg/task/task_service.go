package task

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"educrm-api/pkg/event"
	"educrm-api/pkg/model"
	"educrm-api/pkg/orm"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Notifier receives best-effort assignment notifications. Failures are logged
// and never fail the mutation that triggered them.
type Notifier interface {
	TaskAssigned(ctx context.Context, assignee model.Staff, task model.Task)
}

type TaskService struct {
	taskORM      *orm.TaskORM
	recurringORM *orm.RecurringTaskORM
	staffORM     *orm.StaffORM
	contactORM   *orm.ContactORM
	events       *event.EventService
	notifier     Notifier
}

func NewTaskService(db *gorm.DB) *TaskService {
	return &TaskService{
		taskORM:      orm.NewTaskORM(db),
		recurringORM: orm.NewRecurringTaskORM(db),
		staffORM:     orm.NewStaffORM(db),
		contactORM:   orm.NewContactORM(db),
		events:       event.NewEventService(db),
	}
}

// WithNotifier attaches an assignment notifier, e.g. the email sender.
func (s *TaskService) WithNotifier(n Notifier) *TaskService {
	s.notifier = n
	return s
}

// CreateTask persists a new task on behalf of actor. An omitted assignee
// defaults to the actor; a status of done is rejected outright since a task
// cannot be born completed.
func (s *TaskService) CreateTask(ctx context.Context, req SaveTaskRequest, actor *model.Staff) (*model.Task, error) {
	if err := ValidateSaveTaskRequest(req); err != nil {
		return nil, err
	}
	if req.Status == model.TaskStatusDone {
		return nil, ErrDoneViaUpdate
	}

	dueDate, _ := parseDueDate(req.DueDate)
	assignee := req.AssignedTo
	if assignee == 0 {
		assignee = actor.ID
	}
	assigneeStaff, err := s.staffORM.GetByID(ctx, assignee)
	if err != nil {
		return nil, s.wrapNotFound(err, "staff", assignee)
	}
	if req.ContactID != nil {
		if _, err := s.contactORM.GetByID(ctx, *req.ContactID); err != nil {
			return nil, s.wrapNotFound(err, "contact", *req.ContactID)
		}
	}

	status := req.Status
	if status == "" {
		status = model.TaskStatusToDo
	}
	priority := req.Priority
	if priority == "" {
		priority = model.TaskPriorityMedium
	}

	newTask := &model.Task{
		TaskID:      NewTaskCode(),
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		DueDate:     dueDate,
		Status:      status,
		Priority:    priority,
		AssignedTo:  assignee,
		AssignedBy:  actor.ID,
		ContactID:   req.ContactID,
	}
	if err := s.taskORM.Create(ctx, newTask); err != nil {
		return nil, err
	}

	if assignee != actor.ID {
		s.notifyAssigned(ctx, *assigneeStaff, *newTask)
	}
	return newTask, nil
}

// UpdateTask replaces the task document. The recurring back-reference is
// sticky: an update can never detach a generated task from its definition.
// Transitions into done are rejected here; completion has its own action so
// completedBy/completedAt are always recorded.
func (s *TaskService) UpdateTask(ctx context.Context, id uint, req SaveTaskRequest, actor *model.Staff) (*model.Task, error) {
	if err := ValidateSaveTaskRequest(req); err != nil {
		return nil, err
	}
	existing, err := s.taskORM.GetByID(ctx, id)
	if err != nil {
		return nil, s.wrapNotFound(err, "task", id)
	}
	if req.Status == model.TaskStatusDone && !existing.IsDone() {
		return nil, ErrDoneViaUpdate
	}

	assignee := req.AssignedTo
	if assignee == 0 {
		assignee = existing.AssignedTo
	}
	assigneeStaff, err := s.staffORM.GetByID(ctx, assignee)
	if err != nil {
		return nil, s.wrapNotFound(err, "staff", assignee)
	}
	if req.ContactID != nil {
		if _, err := s.contactORM.GetByID(ctx, *req.ContactID); err != nil {
			return nil, s.wrapNotFound(err, "contact", *req.ContactID)
		}
	}
	previousAssignee := existing.AssignedTo

	dueDate, _ := parseDueDate(req.DueDate)
	existing.Title = strings.TrimSpace(req.Title)
	existing.Description = req.Description
	existing.DueDate = dueDate
	existing.Priority = req.Priority
	if existing.Priority == "" {
		existing.Priority = model.TaskPriorityMedium
	}
	existing.AssignedTo = assignee
	existing.ContactID = req.ContactID
	if req.Status != "" {
		existing.Status = req.Status
	}
	if !existing.IsDone() {
		// leaving done through a plain update clears the completion record,
		// keeping the done => completedBy/completedAt invariant intact
		existing.CompletedBy = nil
		existing.CompletedAt = nil
	}

	if err := s.taskORM.Update(ctx, existing); err != nil {
		return nil, err
	}
	if assignee != previousAssignee && assignee != actor.ID {
		s.notifyAssigned(ctx, *assigneeStaff, *existing)
	}
	return s.taskORM.GetByID(ctx, id)
}

// GetTasks resolves the documented list filters. A plain call returns the
// actor's own tasks; listing another user's tasks, everyone's tasks, or a
// definition's generated history requires the admin role.
func (s *TaskService) GetTasks(ctx context.Context, query ListQuery, actor *model.Staff) ([]model.Task, error) {
	ormQuery := orm.TaskQuery{
		ContactID:       query.ContactID,
		RecurringTaskID: query.RecurringTaskID,
	}

	switch {
	case query.All:
		if !actor.IsAdmin() {
			return nil, ErrForbidden
		}
	case query.UserID != nil:
		if *query.UserID != actor.ID && !actor.IsAdmin() {
			return nil, ErrForbidden
		}
		ormQuery.AssignedTo = query.UserID
	case query.RecurringTaskID != nil:
		if !actor.IsAdmin() {
			return nil, ErrForbidden
		}
	case query.ContactID != nil:
		// contact-scoped listing is open to all staff
	default:
		userID := actor.ID
		ormQuery.AssignedTo = &userID
	}

	return s.taskORM.GetFiltered(ctx, ormQuery)
}

func (s *TaskService) GetTaskByID(ctx context.Context, id uint) (*model.Task, error) {
	t, err := s.taskORM.GetByID(ctx, id)
	if err != nil {
		return nil, s.wrapNotFound(err, "task", id)
	}
	return t, nil
}

// DeleteTask is restricted to admins and the task's creator.
func (s *TaskService) DeleteTask(ctx context.Context, id uint, actor *model.Staff) error {
	existing, err := s.taskORM.GetByID(ctx, id)
	if err != nil {
		return s.wrapNotFound(err, "task", id)
	}
	if !actor.IsAdmin() && existing.AssignedBy != actor.ID {
		return ErrForbidden
	}
	return s.taskORM.Delete(ctx, id)
}

// AddReply appends a thread entry. Only the current assignee may reply, only
// while the task is open, and an entry needs a message or an attachment.
// Replying never changes the task's status.
func (s *TaskService) AddReply(ctx context.Context, taskID uint, req ReplyRequest, actor *model.Staff) (*model.Reply, error) {
	if req.IsEmpty() {
		return nil, ErrEmptyReply
	}
	t, err := s.taskORM.GetByID(ctx, taskID)
	if err != nil {
		return nil, s.wrapNotFound(err, "task", taskID)
	}
	if t.IsDone() {
		return nil, ErrTaskDone
	}
	if t.AssignedTo != actor.ID {
		return nil, ErrNotAssignee
	}

	reply := &model.Reply{
		ID:          uuid.New().String(),
		TaskID:      t.ID,
		UserID:      actor.ID,
		UserName:    actor.Name,
		Message:     strings.TrimSpace(req.Message),
		Timestamp:   time.Now().UTC(),
		Attachments: req.Attachments,
	}
	if err := s.taskORM.CreateReply(ctx, reply); err != nil {
		return nil, err
	}
	return reply, nil
}

// UpdateReply rewrites a single thread entry in place. One row, one write; no
// full-document round trip.
func (s *TaskService) UpdateReply(ctx context.Context, taskID uint, replyID string, req ReplyRequest, actor *model.Staff) (*model.Reply, error) {
	if req.IsEmpty() {
		return nil, ErrEmptyReply
	}
	reply, err := s.taskORM.GetReply(ctx, taskID, replyID)
	if err != nil {
		return nil, s.wrapNotFound(err, "reply", replyID)
	}
	if reply.UserID != actor.ID {
		return nil, ErrNotReplyAuthor
	}

	reply.Message = strings.TrimSpace(req.Message)
	reply.Attachments = req.Attachments
	if err := s.taskORM.UpdateReply(ctx, reply); err != nil {
		return nil, err
	}
	return reply, nil
}

func (s *TaskService) DeleteReply(ctx context.Context, taskID uint, replyID string, actor *model.Staff) error {
	reply, err := s.taskORM.GetReply(ctx, taskID, replyID)
	if err != nil {
		return s.wrapNotFound(err, "reply", replyID)
	}
	if reply.UserID != actor.ID && !actor.IsAdmin() {
		return ErrNotReplyAuthor
	}
	return s.taskORM.DeleteReply(ctx, taskID, replyID)
}

// ForwardTask reassigns the task and always restarts its lifecycle at todo,
// whatever the prior status. The new assignee is never implicitly credited
// with earlier progress, so completion bookkeeping is cleared as well.
func (s *TaskService) ForwardTask(ctx context.Context, taskID uint, newAssignee uint, actor *model.Staff) (*model.Task, error) {
	t, err := s.taskORM.GetByID(ctx, taskID)
	if err != nil {
		return nil, s.wrapNotFound(err, "task", taskID)
	}
	if t.AssignedTo != actor.ID && !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	assigneeStaff, err := s.staffORM.GetByID(ctx, newAssignee)
	if err != nil {
		return nil, s.wrapNotFound(err, "staff", newAssignee)
	}

	previousAssignee := t.AssignedTo
	t.AssignedTo = newAssignee
	t.Status = model.TaskStatusToDo
	t.CompletedBy = nil
	t.CompletedAt = nil
	if err := s.taskORM.Update(ctx, t); err != nil {
		return nil, err
	}
	if err := s.events.CreateTaskForwardedEvent(ctx, *t, previousAssignee); err != nil {
		log.Warn().Err(err).Str("taskId", t.TaskID).Msg("Failed to record forward event")
	}

	if newAssignee != actor.ID {
		s.notifyAssigned(ctx, *assigneeStaff, *t)
	}
	return t, nil
}

// CompleteTask is the only path into the done status. It records who finished
// the task and when, which the done invariant requires.
func (s *TaskService) CompleteTask(ctx context.Context, taskID uint, actor *model.Staff) (*model.Task, error) {
	t, err := s.taskORM.GetByID(ctx, taskID)
	if err != nil {
		return nil, s.wrapNotFound(err, "task", taskID)
	}
	if t.IsDone() {
		return nil, ErrTaskDone
	}
	if t.AssignedTo != actor.ID {
		return nil, ErrNotAssignee
	}

	now := time.Now().UTC()
	completedBy := actor.ID
	t.Status = model.TaskStatusDone
	t.CompletedBy = &completedBy
	t.CompletedAt = &now
	if err := s.taskORM.Update(ctx, t); err != nil {
		return nil, err
	}
	if err := s.events.CreateTaskCompletionEvent(ctx, *t); err != nil {
		log.Warn().Err(err).Str("taskId", t.TaskID).Msg("Failed to record completion event")
	}
	return t, nil
}

func (s *TaskService) notifyAssigned(ctx context.Context, assignee model.Staff, t model.Task) {
	if s.notifier == nil {
		return
	}
	s.notifier.TaskAssigned(ctx, assignee, t)
}

func (s *TaskService) wrapNotFound(err error, kind string, id any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		switch v := id.(type) {
		case uint:
			return &NotFoundError{Kind: kind, ID: strconv.FormatUint(uint64(v), 10)}
		default:
			return &NotFoundError{Kind: kind, ID: fmt.Sprintf("%v", v)}
		}
	}
	log.Error().Err(err).Str("kind", kind).Msg("Database error")
	return err
}

package task

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

func createStaff(t *testing.T, db *gorm.DB, name string, role string) *model.Staff {
	t.Helper()
	staff := &model.Staff{
		Name:  name,
		Email: fmt.Sprintf("%s@educrm.local", uuid.New().String()[:8]),
		Role:  role,
	}
	require.NoError(t, db.Create(staff).Error)
	return staff
}

func createContact(t *testing.T, db *gorm.DB, name string) *model.Contact {
	t.Helper()
	contact := &model.Contact{Name: name, Email: fmt.Sprintf("%s@example.com", uuid.New().String()[:8])}
	require.NoError(t, db.Create(contact).Error)
	return contact
}

func saveRequest(assignedTo uint) SaveTaskRequest {
	return SaveTaskRequest{
		Title:      "Follow up on application",
		DueDate:    "2026-09-01",
		AssignedTo: assignedTo,
	}
}

func TestCreateTaskDefaults(t *testing.T) {
	db := newTestDB(t)
	svc := NewTaskService(db)
	actor := createStaff(t, db, "Alice", model.RoleStaff)

	created, err := svc.CreateTask(context.Background(), SaveTaskRequest{
		Title:   "  Call student  ",
		DueDate: "2026-09-01",
	}, actor)
	require.NoError(t, err)

	assert.Equal(t, "Call student", created.Title)
	assert.Equal(t, model.TaskStatusToDo, created.Status)
	assert.Equal(t, model.TaskPriorityMedium, created.Priority)
	assert.Equal(t, actor.ID, created.AssignedTo)
	assert.Equal(t, actor.ID, created.AssignedBy)
	assert.Regexp(t, `^TSK-[0-9A-F]{8}$`, created.TaskID)
}

func TestCreateTaskValidation(t *testing.T) {
	db := newTestDB(t)
	svc := NewTaskService(db)
	actor := createStaff(t, db, "Alice", model.RoleStaff)

	_, err := svc.CreateTask(context.Background(), SaveTaskRequest{DueDate: "2026-09-01"}, actor)
	assert.True(t, IsValidationError(err))

	_, err = svc.CreateTask(context.Background(), SaveTaskRequest{Title: "x", DueDate: "tomorrow"}, actor)
	assert.True(t, IsValidationError(err))

	_, err = svc.CreateTask(context.Background(), SaveTaskRequest{Title: "x", DueDate: "2026-09-01", Status: "archived"}, actor)
	assert.True(t, IsValidationError(err))
}

func TestCreateTaskCannotBeBornDone(t *testing.T) {
	db := newTestDB(t)
	svc := NewTaskService(db)
	actor := createStaff(t, db, "Alice", model.RoleStaff)

	req := saveRequest(actor.ID)
	req.Status = model.TaskStatusDone
	_, err := svc.CreateTask(context.Background(), req, actor)
	assert.ErrorIs(t, err, ErrDoneViaUpdate)
}

func TestCreateTaskUnknownAssignee(t *testing.T) {
	db := newTestDB(t)
	svc := NewTaskService(db)
	actor := createStaff(t, db, "Alice", model.RoleStaff)

	_, err := svc.CreateTask(context.Background(), saveRequest(9999), actor)
	var notFound *NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestUpdateTaskRejectsDoneTransition(t *testing.T) {
	db := newTestDB(t)
	svc := NewTaskService(db)
	actor := createStaff(t, db, "Alice", model.RoleStaff)

	created, err := svc.CreateTask(context.Background(), saveRequest(actor.ID), actor)
	require.NoError(t, err)

	req := saveRequest(actor.ID)
	req.Status = model.TaskStatusDone
	_, err = svc.UpdateTask(context.Background(), created.ID, req, actor)
	assert.ErrorIs(t, err, ErrDoneViaUpdate)

	// status must still be what creation left it at
	reloaded, err := svc.GetTaskByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, model.TaskStatusToDo, reloaded.Status)
}

func TestUpdateTaskLeavingDoneClearsCompletion(t *testing.T) {
	db := newTestDB(t)
	svc := NewTaskService(db)
	actor := createStaff(t, db, "Alice", model.RoleStaff)

	created, err := svc.CreateTask(context.Background(), saveRequest(actor.ID), actor)
	require.NoError(t, err)
	_, err = svc.CompleteTask(context.Background(), created.ID, actor)
	require.NoError(t, err)

	req := saveRequest(actor.ID)
	req.Status = model.TaskStatusInProgress
	updated, err := svc.UpdateTask(context.Background(), created.ID, req, actor)
	require.NoError(t, err)

	assert.Equal(t, model.TaskStatusInProgress, updated.Status)
	assert.Nil(t, updated.CompletedBy)
	assert.Nil(t, updated.CompletedAt)
}

func TestUpdateTaskKeepsRecurringBackReference(t *testing.T) {
	db := newTestDB(t)
	svc := NewTaskService(db)
	actor := createStaff(t, db, "Alice", model.RoleStaff)

	defID := uint(42)
	seeded := &model.Task{
		TaskID:          NewTaskCode(),
		Title:           "Weekly check-in",
		Status:          model.TaskStatusToDo,
		Priority:        model.TaskPriorityMedium,
		AssignedTo:      actor.ID,
		AssignedBy:      actor.ID,
		RecurringTaskID: &defID,
	}
	require.NoError(t, db.Create(seeded).Error)

	updated, err := svc.UpdateTask(context.Background(), seeded.ID, saveRequest(actor.ID), actor)
	require.NoError(t, err)
	require.NotNil(t, updated.RecurringTaskID)
	assert.Equal(t, defID, *updated.RecurringTaskID)
}

func TestCompleteTask(t *testing.T) {
	db := newTestDB(t)
	svc := NewTaskService(db)
	assignee := createStaff(t, db, "Alice", model.RoleStaff)
	other := createStaff(t, db, "Bob", model.RoleStaff)

	created, err := svc.CreateTask(context.Background(), saveRequest(assignee.ID), assignee)
	require.NoError(t, err)

	_, err = svc.CompleteTask(context.Background(), created.ID, other)
	assert.ErrorIs(t, err, ErrNotAssignee)

	completed, err := svc.CompleteTask(context.Background(), created.ID, assignee)
	require.NoError(t, err)
	assert.Equal(t, model.TaskStatusDone, completed.Status)
	require.NotNil(t, completed.CompletedBy)
	assert.Equal(t, assignee.ID, *completed.CompletedBy)
	assert.NotNil(t, completed.CompletedAt)

	_, err = svc.CompleteTask(context.Background(), created.ID, assignee)
	assert.ErrorIs(t, err, ErrTaskDone)

	// completion leaves an audit event behind
	var events int64
	require.NoError(t, db.Model(&model.Event{}).
		Where("type = ?", model.EventTypeTaskCompleted).Count(&events).Error)
	assert.EqualValues(t, 1, events)
}

func TestForwardTaskRestartsLifecycle(t *testing.T) {
	db := newTestDB(t)
	svc := NewTaskService(db)
	assignee := createStaff(t, db, "Alice", model.RoleStaff)
	next := createStaff(t, db, "Bob", model.RoleStaff)

	created, err := svc.CreateTask(context.Background(), saveRequest(assignee.ID), assignee)
	require.NoError(t, err)
	_, err = svc.CompleteTask(context.Background(), created.ID, assignee)
	require.NoError(t, err)

	forwarded, err := svc.ForwardTask(context.Background(), created.ID, next.ID, assignee)
	require.NoError(t, err)
	assert.Equal(t, next.ID, forwarded.AssignedTo)
	assert.Equal(t, model.TaskStatusToDo, forwarded.Status)
	assert.Nil(t, forwarded.CompletedBy)
	assert.Nil(t, forwarded.CompletedAt)
}

func TestForwardTaskPermissions(t *testing.T) {
	db := newTestDB(t)
	svc := NewTaskService(db)
	assignee := createStaff(t, db, "Alice", model.RoleStaff)
	bystander := createStaff(t, db, "Bob", model.RoleStaff)
	admin := createStaff(t, db, "Root", model.RoleAdmin)

	created, err := svc.CreateTask(context.Background(), saveRequest(assignee.ID), assignee)
	require.NoError(t, err)

	_, err = svc.ForwardTask(context.Background(), created.ID, bystander.ID, bystander)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.ForwardTask(context.Background(), created.ID, bystander.ID, admin)
	assert.NoError(t, err)
}

func TestAddReplyRules(t *testing.T) {
	db := newTestDB(t)
	svc := NewTaskService(db)
	assignee := createStaff(t, db, "Alice", model.RoleStaff)
	other := createStaff(t, db, "Bob", model.RoleStaff)

	created, err := svc.CreateTask(context.Background(), saveRequest(assignee.ID), assignee)
	require.NoError(t, err)

	_, err = svc.AddReply(context.Background(), created.ID, ReplyRequest{Message: "   "}, assignee)
	assert.ErrorIs(t, err, ErrEmptyReply)

	_, err = svc.AddReply(context.Background(), created.ID, ReplyRequest{Message: "on it"}, other)
	assert.ErrorIs(t, err, ErrNotAssignee)

	reply, err := svc.AddReply(context.Background(), created.ID, ReplyRequest{Message: "on it"}, assignee)
	require.NoError(t, err)
	assert.Equal(t, assignee.ID, reply.UserID)
	assert.Equal(t, assignee.Name, reply.UserName)
	assert.NotEmpty(t, reply.ID)

	// replying never moves the task's status
	reloaded, err := svc.GetTaskByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, model.TaskStatusToDo, reloaded.Status)
	require.Len(t, reloaded.Replies, 1)

	_, err = svc.CompleteTask(context.Background(), created.ID, assignee)
	require.NoError(t, err)
	_, err = svc.AddReply(context.Background(), created.ID, ReplyRequest{Message: "too late"}, assignee)
	assert.ErrorIs(t, err, ErrTaskDone)
}

func TestAddReplyAttachmentOnly(t *testing.T) {
	db := newTestDB(t)
	svc := NewTaskService(db)
	assignee := createStaff(t, db, "Alice", model.RoleStaff)

	created, err := svc.CreateTask(context.Background(), saveRequest(assignee.ID), assignee)
	require.NoError(t, err)

	reply, err := svc.AddReply(context.Background(), created.ID, ReplyRequest{
		Attachments: []model.Attachment{{Name: "offer.pdf", URL: "https://bucket/offer.pdf", Size: 1024}},
	}, assignee)
	require.NoError(t, err)
	assert.Empty(t, reply.Message)
	require.Len(t, reply.Attachments, 1)
	assert.Equal(t, "offer.pdf", reply.Attachments[0].Name)
}

func TestUpdateReplyAuthorOnly(t *testing.T) {
	db := newTestDB(t)
	svc := NewTaskService(db)
	assignee := createStaff(t, db, "Alice", model.RoleStaff)
	admin := createStaff(t, db, "Root", model.RoleAdmin)

	created, err := svc.CreateTask(context.Background(), saveRequest(assignee.ID), assignee)
	require.NoError(t, err)
	reply, err := svc.AddReply(context.Background(), created.ID, ReplyRequest{Message: "draft"}, assignee)
	require.NoError(t, err)

	_, err = svc.UpdateReply(context.Background(), created.ID, reply.ID, ReplyRequest{Message: "edited"}, admin)
	assert.ErrorIs(t, err, ErrNotReplyAuthor)

	updated, err := svc.UpdateReply(context.Background(), created.ID, reply.ID, ReplyRequest{Message: "edited"}, assignee)
	require.NoError(t, err)
	assert.Equal(t, "edited", updated.Message)
}

func TestDeleteReplyAuthorOrAdmin(t *testing.T) {
	db := newTestDB(t)
	svc := NewTaskService(db)
	assignee := createStaff(t, db, "Alice", model.RoleStaff)
	other := createStaff(t, db, "Bob", model.RoleStaff)
	admin := createStaff(t, db, "Root", model.RoleAdmin)

	created, err := svc.CreateTask(context.Background(), saveRequest(assignee.ID), assignee)
	require.NoError(t, err)
	reply, err := svc.AddReply(context.Background(), created.ID, ReplyRequest{Message: "note"}, assignee)
	require.NoError(t, err)

	err = svc.DeleteReply(context.Background(), created.ID, reply.ID, other)
	assert.ErrorIs(t, err, ErrNotReplyAuthor)

	require.NoError(t, svc.DeleteReply(context.Background(), created.ID, reply.ID, admin))

	reloaded, err := svc.GetTaskByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Empty(t, reloaded.Replies)
}

func TestGetTasksScoping(t *testing.T) {
	db := newTestDB(t)
	svc := NewTaskService(db)
	alice := createStaff(t, db, "Alice", model.RoleStaff)
	bob := createStaff(t, db, "Bob", model.RoleStaff)
	admin := createStaff(t, db, "Root", model.RoleAdmin)

	_, err := svc.CreateTask(context.Background(), saveRequest(alice.ID), alice)
	require.NoError(t, err)
	_, err = svc.CreateTask(context.Background(), saveRequest(bob.ID), bob)
	require.NoError(t, err)

	mine, err := svc.GetTasks(context.Background(), ListQuery{}, alice)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, alice.ID, mine[0].AssignedTo)

	_, err = svc.GetTasks(context.Background(), ListQuery{All: true}, alice)
	assert.ErrorIs(t, err, ErrForbidden)

	all, err := svc.GetTasks(context.Background(), ListQuery{All: true}, admin)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = svc.GetTasks(context.Background(), ListQuery{UserID: &bob.ID}, alice)
	assert.ErrorIs(t, err, ErrForbidden)

	bobs, err := svc.GetTasks(context.Background(), ListQuery{UserID: &bob.ID}, admin)
	require.NoError(t, err)
	require.Len(t, bobs, 1)
	assert.Equal(t, bob.ID, bobs[0].AssignedTo)
}

func TestGetTasksContactScopeOpenToStaff(t *testing.T) {
	db := newTestDB(t)
	svc := NewTaskService(db)
	alice := createStaff(t, db, "Alice", model.RoleStaff)
	bob := createStaff(t, db, "Bob", model.RoleStaff)
	contact := createContact(t, db, "Daniel")

	req := saveRequest(alice.ID)
	req.ContactID = &contact.ID
	_, err := svc.CreateTask(context.Background(), req, alice)
	require.NoError(t, err)

	tasks, err := svc.GetTasks(context.Background(), ListQuery{ContactID: &contact.ID}, bob)
	require.NoError(t, err)
	assert.Len(t, tasks, 1)
}

func TestDeleteTaskPermissions(t *testing.T) {
	db := newTestDB(t)
	svc := NewTaskService(db)
	creator := createStaff(t, db, "Alice", model.RoleStaff)
	other := createStaff(t, db, "Bob", model.RoleStaff)

	created, err := svc.CreateTask(context.Background(), saveRequest(creator.ID), creator)
	require.NoError(t, err)

	err = svc.DeleteTask(context.Background(), created.ID, other)
	assert.ErrorIs(t, err, ErrForbidden)

	require.NoError(t, svc.DeleteTask(context.Background(), created.ID, creator))

	_, err = svc.GetTaskByID(context.Background(), created.ID)
	assert.True(t, IsNotFoundError(err))
}

func TestDeleteTaskRemovesReplies(t *testing.T) {
	db := newTestDB(t)
	svc := NewTaskService(db)
	assignee := createStaff(t, db, "Alice", model.RoleStaff)

	created, err := svc.CreateTask(context.Background(), saveRequest(assignee.ID), assignee)
	require.NoError(t, err)
	_, err = svc.AddReply(context.Background(), created.ID, ReplyRequest{Message: "note"}, assignee)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteTask(context.Background(), created.ID, assignee))

	var count int64
	require.NoError(t, db.Model(&model.Reply{}).Where("task_id = ?", created.ID).Count(&count).Error)
	assert.Zero(t, count)
}

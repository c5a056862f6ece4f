package task

import (
	"errors"
	"fmt"
	"strconv"
)

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID %s not found", e.Kind, e.ID)
}

// IsNotFoundError checks if an error is a NotFoundError
func IsNotFoundError(err error) bool {
	var notFound *NotFoundError
	return errors.As(err, &notFound)
}

// ValidationError marks input problems caught before any state change, so the
// API layer can answer 400 instead of 500.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string {
	return e.msg
}

func IsValidationError(err error) bool {
	var validation *ValidationError
	return errors.As(err, &validation)
}

func validationErr(msg string) error {
	return &ValidationError{msg: msg}
}

var (
	// ErrNotAssignee is returned when someone other than the task's current
	// assignee tries to reply to it or complete it.
	ErrNotAssignee = errors.New("only the task's assignee may perform this action")

	// ErrTaskDone guards thread mutations on an already completed task.
	ErrTaskDone = errors.New("task is already completed")

	// ErrEmptyReply is returned for a reply with a blank message and no
	// attachments. Rejected before any state change.
	ErrEmptyReply = errors.New("reply requires a message or at least one attachment")

	// ErrDoneViaUpdate rejects status writes into done through the generic
	// save path. Completion must go through the explicit complete action so a
	// completion owner and timestamp are always recorded.
	ErrDoneViaUpdate = errors.New("completion must use the complete action, not a status update")

	// ErrNotReplyAuthor guards edits and deletions of someone else's reply.
	ErrNotReplyAuthor = errors.New("only the reply's author may modify it")

	// ErrForbidden is returned when a non-admin requests another user's or
	// all users' tasks.
	ErrForbidden = errors.New("insufficient permissions")
)

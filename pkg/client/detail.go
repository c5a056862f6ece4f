package client

import (
	"path/filepath"
	"strings"

	"educrm-api/pkg/model"
	"educrm-api/pkg/task"
)

// TaskDetail gates the thread and lifecycle actions of the detail dialog for
// one task and one viewer. The server enforces the same rules; the gating
// here decides which controls are even offered.
type TaskDetail struct {
	Task        model.Task
	CurrentUser uint
}

func NewTaskDetail(t model.Task, currentUser uint) *TaskDetail {
	return &TaskDetail{Task: t, CurrentUser: currentUser}
}

func (d *TaskDetail) isAssignee() bool {
	return d.Task.AssignedTo == d.CurrentUser
}

// CanReply permits thread entries only from the current assignee while the
// task is open.
func (d *TaskDetail) CanReply() bool {
	return d.isAssignee() && !d.Task.IsDone()
}

// CanComplete mirrors the mark-complete control: assignee only, not already
// done.
func (d *TaskDetail) CanComplete() bool {
	return d.isAssignee() && !d.Task.IsDone()
}

// CanForward offers reassignment to the current assignee.
func (d *TaskDetail) CanForward() bool {
	return d.isAssignee()
}

// CanEditReply restricts reply edits to their author.
func (d *TaskDetail) CanEditReply(reply model.Reply) bool {
	return reply.UserID == d.CurrentUser
}

// ValidateReply rejects an empty submission before any network call: a reply
// needs a message or at least one attachment.
func (d *TaskDetail) ValidateReply(draft task.ReplyRequest) error {
	if !d.CanReply() {
		if d.Task.IsDone() {
			return task.ErrTaskDone
		}
		return task.ErrNotAssignee
	}
	if draft.IsEmpty() {
		return task.ErrEmptyReply
	}
	return nil
}

// PreviewKind classifies an attachment for display purposes only.
type PreviewKind string

const (
	PreviewImage    PreviewKind = "image"
	PreviewPDF      PreviewKind = "pdf"
	PreviewDownload PreviewKind = "download"
)

var imageExtensions = map[string]struct{}{
	".jpg": {}, ".jpeg": {}, ".png": {}, ".gif": {},
	".bmp": {}, ".webp": {}, ".svg": {},
}

// ClassifyAttachment decides how an attachment renders: a known image
// extension inline, a PDF in the embedded viewer, anything else as a plain
// download.
func ClassifyAttachment(name string) PreviewKind {
	ext := strings.ToLower(filepath.Ext(name))
	if _, ok := imageExtensions[ext]; ok {
		return PreviewImage
	}
	if ext == ".pdf" {
		return PreviewPDF
	}
	return PreviewDownload
}

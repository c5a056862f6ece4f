// Package client is the Go face of the task workflow: a thin REST client plus
// the draft, detail and list-view logic the CRM frontend is built from.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"educrm-api/pkg/auth"
	"educrm-api/pkg/metric"
	"educrm-api/pkg/model"
	"educrm-api/pkg/task"
)

var (
	// ErrUnauthorized reports a 401: the session has been torn down and the
	// caller must re-authenticate.
	ErrUnauthorized = errors.New("unauthorized: session expired")

	// ErrRequestFailed wraps any other non-2xx response. No retry is
	// attempted; the caller's prior state is untouched.
	ErrRequestFailed = errors.New("request failed")
)

type Client struct {
	baseURL    string
	httpClient *http.Client
	session    *Session
}

func New(baseURL string, session *Session) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		session:    session,
	}
}

func (c *Client) Session() *Session {
	return c.session
}

// Login authenticates and begins the session with the issued token.
func (c *Client) Login(ctx context.Context, email, password string, remember bool) (*model.Staff, error) {
	var out auth.LoginResponse
	err := c.do(ctx, http.MethodPost, "/api/v1/auth/login", auth.LoginRequest{
		Email:    email,
		Password: password,
		Remember: remember,
	}, &out)
	if err != nil {
		return nil, err
	}
	c.session.Begin(out.Token, out.ExpiresAt, remember)
	return &out.Staff, nil
}

func (c *Client) Logout(ctx context.Context) error {
	if err := c.do(ctx, http.MethodPost, "/api/v1/auth/logout", nil, nil); err != nil {
		return err
	}
	c.session.Clear()
	return nil
}

// TaskFilters mirror the documented GET /tasks parameters. The zero value
// requests the caller's own actionable tasks.
type TaskFilters struct {
	UserID          *uint
	All             bool
	ContactID       *uint
	RecurringTaskID *uint
}

func (f TaskFilters) query() string {
	values := url.Values{}
	if f.UserID != nil {
		values.Set("userId", strconv.FormatUint(uint64(*f.UserID), 10))
	}
	if f.All {
		values.Set("all", "true")
	}
	if f.ContactID != nil {
		values.Set("contactId", strconv.FormatUint(uint64(*f.ContactID), 10))
	}
	if f.RecurringTaskID != nil {
		values.Set("recurringTaskId", strconv.FormatUint(uint64(*f.RecurringTaskID), 10))
	}
	if len(values) == 0 {
		return ""
	}
	return "?" + values.Encode()
}

func (c *Client) GetTasks(ctx context.Context, filters TaskFilters) ([]model.Task, error) {
	var out []model.Task
	if err := c.do(ctx, http.MethodGet, "/api/v1/tasks"+filters.query(), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// TaskPayload is what a confirmed task dialog emits: the full desired task
// state, with ID present only when editing.
type TaskPayload struct {
	ID uint `json:"id,omitempty"`
	task.SaveTaskRequest
}

// SaveTask routes by identity: a zero ID creates, a set ID replaces that task
// document. The authoritative post-save state comes from a re-fetch, not from
// optimistic merging.
func (c *Client) SaveTask(ctx context.Context, payload TaskPayload) (*model.Task, error) {
	var out model.Task
	var err error
	if payload.ID == 0 {
		err = c.do(ctx, http.MethodPost, "/api/v1/tasks", payload.SaveTaskRequest, &out)
	} else {
		err = c.do(ctx, http.MethodPut, fmt.Sprintf("/api/v1/tasks/%d", payload.ID), payload.SaveTaskRequest, &out)
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteTask(ctx context.Context, id uint) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/v1/tasks/%d", id), nil, nil)
}

func (c *Client) AddReply(ctx context.Context, taskID uint, reply task.ReplyRequest) (*model.Reply, error) {
	var out model.Reply
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/api/v1/tasks/%d/replies", taskID), reply, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateReply(ctx context.Context, taskID uint, replyID string, reply task.ReplyRequest) (*model.Reply, error) {
	var out model.Reply
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/v1/tasks/%d/replies/%s", taskID, replyID), reply, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteReply(ctx context.Context, taskID uint, replyID string) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/v1/tasks/%d/replies/%s", taskID, replyID), nil, nil)
}

func (c *Client) ForwardTask(ctx context.Context, taskID uint, assignedTo uint) (*model.Task, error) {
	var out model.Task
	err := c.do(ctx, http.MethodPost, fmt.Sprintf("/api/v1/tasks/%d/forward", taskID),
		task.ForwardTaskRequest{AssignedTo: assignedTo}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CompleteTask(ctx context.Context, taskID uint) (*model.Task, error) {
	var out model.Task
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/api/v1/tasks/%d/complete", taskID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetRecurringTasks(ctx context.Context) ([]model.RecurringTask, error) {
	var out []model.RecurringTask
	if err := c.do(ctx, http.MethodGet, "/api/v1/recurring-tasks", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateRecurringTask(ctx context.Context, req task.CreateRecurringTaskRequest) (*model.RecurringTask, error) {
	var out model.RecurringTask
	if err := c.do(ctx, http.MethodPost, "/api/v1/recurring-tasks", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateRecurringTask(ctx context.Context, id uint, req task.UpdateRecurringTaskRequest) (*model.RecurringTask, error) {
	var out model.RecurringTask
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/v1/recurring-tasks/%d", id), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteRecurringTask(ctx context.Context, id uint) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/v1/recurring-tasks/%d", id), nil, nil)
}

func (c *Client) GetRecurringTaskHistory(ctx context.Context, id uint) (*task.RecurringTaskHistory, error) {
	var out task.RecurringTaskHistory
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/v1/recurring-tasks/%d/history", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetTaskMetrics(ctx context.Context) (*metric.TaskMetrics, error) {
	var out metric.TaskMetrics
	if err := c.do(ctx, http.MethodGet, "/api/v1/metrics", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetStaffMembers(ctx context.Context) ([]model.Staff, error) {
	var out []model.Staff
	if err := c.do(ctx, http.MethodGet, "/api/v1/staff", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetContacts(ctx context.Context) ([]model.Contact, error) {
	var out []model.Contact
	if err := c.do(ctx, http.MethodGet, "/api/v1/contacts", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

type apiEnvelope struct {
	Success bool            `json:"success"`
	Body    json.RawMessage `json:"body"`
	Error   json.RawMessage `json:"error"`
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token, ok := c.session.Token(); ok {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		c.session.Expire()
		return ErrUnauthorized
	}

	var envelope apiEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil && resp.StatusCode < 300 {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: %s %s: status %d: %s", ErrRequestFailed, method, path, resp.StatusCode, string(envelope.Error))
	}

	if out != nil && len(envelope.Body) > 0 {
		return json.Unmarshal(envelope.Body, out)
	}
	return nil
}

package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"educrm-api/pkg/auth"
	"educrm-api/pkg/model"
	"educrm-api/pkg/task"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	method string
	path   string
	query  string
	auth   string
	body   []byte
}

// newRecordingServer answers every request with a success envelope wrapping
// body and records what arrived.
func newRecordingServer(t *testing.T, status int, body any) (*httptest.Server, *recordedRequest) {
	t.Helper()
	rec := &recordedRequest{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.method = r.Method
		rec.path = r.URL.Path
		rec.query = r.URL.RawQuery
		rec.auth = r.Header.Get("Authorization")
		rec.body, _ = io.ReadAll(r.Body)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": status < 300,
			"body":    json.RawMessage(encoded),
			"error":   nil,
		})
	}))
	t.Cleanup(server.Close)
	return server, rec
}

func liveSession() *Session {
	s := NewSession()
	s.Begin("test-token", time.Now().Add(time.Hour), false)
	return s
}

func TestLoginBeginsSession(t *testing.T) {
	expires := time.Now().Add(24 * time.Hour).UTC().Truncate(time.Second)
	server, rec := newRecordingServer(t, http.StatusOK, auth.LoginResponse{
		Token:     "issued-token",
		ExpiresAt: expires,
		Staff:     model.Staff{ID: 7, Name: "Alice", Role: model.RoleStaff},
	})

	c := New(server.URL, NewSession())
	staff, err := c.Login(context.Background(), "alice@educrm.local", "secret", true)
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, rec.method)
	assert.Equal(t, "/api/v1/auth/login", rec.path)
	assert.Equal(t, uint(7), staff.ID)

	token, ok := c.Session().Token()
	assert.True(t, ok)
	assert.Equal(t, "issued-token", token)
	assert.True(t, c.Session().Persistent())
}

func TestSaveTaskRoutesByIdentity(t *testing.T) {
	payload := TaskPayload{SaveTaskRequest: task.SaveTaskRequest{
		Title:   "Call student",
		DueDate: "2026-09-01",
	}}

	server, rec := newRecordingServer(t, http.StatusOK, model.Task{ID: 1})
	c := New(server.URL, liveSession())

	_, err := c.SaveTask(context.Background(), payload)
	require.NoError(t, err)
	assert.Equal(t, http.MethodPost, rec.method)
	assert.Equal(t, "/api/v1/tasks", rec.path)
	assert.Equal(t, "Bearer test-token", rec.auth)
	// the create payload must not leak an id field
	assert.NotContains(t, string(rec.body), `"id"`)

	payload.ID = 42
	server2, rec2 := newRecordingServer(t, http.StatusOK, model.Task{ID: 42})
	c2 := New(server2.URL, liveSession())
	_, err = c2.SaveTask(context.Background(), payload)
	require.NoError(t, err)
	assert.Equal(t, http.MethodPut, rec2.method)
	assert.Equal(t, "/api/v1/tasks/42", rec2.path)
}

func TestGetTasksEncodesFilters(t *testing.T) {
	server, rec := newRecordingServer(t, http.StatusOK, []model.Task{})
	c := New(server.URL, liveSession())

	userID := uint(3)
	contactID := uint(9)
	_, err := c.GetTasks(context.Background(), TaskFilters{UserID: &userID, ContactID: &contactID})
	require.NoError(t, err)
	assert.Equal(t, "/api/v1/tasks", rec.path)
	assert.Contains(t, rec.query, "userId=3")
	assert.Contains(t, rec.query, "contactId=9")

	_, err = c.GetTasks(context.Background(), TaskFilters{All: true})
	require.NoError(t, err)
	assert.Equal(t, "all=true", rec.query)

	_, err = c.GetTasks(context.Background(), TaskFilters{})
	require.NoError(t, err)
	assert.Empty(t, rec.query)
}

func TestReplyEndpoints(t *testing.T) {
	server, rec := newRecordingServer(t, http.StatusOK, model.Reply{ID: "r1"})
	c := New(server.URL, liveSession())

	_, err := c.AddReply(context.Background(), 5, task.ReplyRequest{Message: "on it"})
	require.NoError(t, err)
	assert.Equal(t, http.MethodPost, rec.method)
	assert.Equal(t, "/api/v1/tasks/5/replies", rec.path)

	_, err = c.UpdateReply(context.Background(), 5, "r1", task.ReplyRequest{Message: "edited"})
	require.NoError(t, err)
	assert.Equal(t, http.MethodPut, rec.method)
	assert.Equal(t, "/api/v1/tasks/5/replies/r1", rec.path)

	require.NoError(t, c.DeleteReply(context.Background(), 5, "r1"))
	assert.Equal(t, http.MethodDelete, rec.method)
}

func TestLifecycleEndpoints(t *testing.T) {
	server, rec := newRecordingServer(t, http.StatusOK, model.Task{ID: 5})
	c := New(server.URL, liveSession())

	_, err := c.ForwardTask(context.Background(), 5, 9)
	require.NoError(t, err)
	assert.Equal(t, "/api/v1/tasks/5/forward", rec.path)
	assert.Contains(t, string(rec.body), `"assignedTo":9`)

	_, err = c.CompleteTask(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, "/api/v1/tasks/5/complete", rec.path)
	assert.Equal(t, http.MethodPost, rec.method)
}

func TestUnauthorizedTearsDownSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	t.Cleanup(server.Close)

	session := liveSession()
	expired := false
	session.OnExpire(func() { expired = true })

	c := New(server.URL, session)
	_, err := c.GetTasks(context.Background(), TaskFilters{})
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.False(t, session.Valid())
	assert.True(t, expired)
}

func TestRequestFailureLeavesSessionAlone(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": false, "body": nil, "error": "Forbidden",
		})
	}))
	t.Cleanup(server.Close)

	session := liveSession()
	c := New(server.URL, session)
	_, err := c.CompleteTask(context.Background(), 5)
	assert.ErrorIs(t, err, ErrRequestFailed)
	assert.True(t, session.Valid())
}

func TestSessionLifecycle(t *testing.T) {
	s := NewSession()
	assert.False(t, s.Valid())

	// an already expired token is never restored
	s.Restore("stale", time.Now().Add(-time.Minute), true)
	assert.False(t, s.Valid())

	s.Restore("fresh", time.Now().Add(time.Hour), true)
	assert.True(t, s.Valid())
	assert.True(t, s.Persistent())

	s.Clear()
	assert.False(t, s.Valid())
}

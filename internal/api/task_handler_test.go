package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/tasklane-api/internal/api/shared"
	"github.com/phrazzld/tasklane-api/internal/domain"
	"github.com/phrazzld/tasklane-api/internal/service"
	"github.com/phrazzld/tasklane-api/internal/store"
)

const testUserID int64 = 7

// newRequest builds a request carrying a trace id, an authenticated user and
// chi path params, as the middleware chain would.
func newRequest(method, target, body string, params map[string]string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	ctx := shared.WithUserID(shared.SetTraceID(req.Context()), testUserID)
	if len(params) > 0 {
		rctx := chi.NewRouteContext()
		for k, v := range params {
			rctx.URLParams.Add(k, v)
		}
		ctx = context.WithValue(ctx, chi.RouteCtxKey, rctx)
	}
	return req.WithContext(ctx)
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) shared.ErrorResponse {
	t.Helper()
	var resp shared.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestCreateTask(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantKind   string
	}{
		{name: "valid", body: `{"title":"Ship it","status":"TODO"}`, wantStatus: http.StatusCreated},
		{name: "with description", body: `{"title":"Ship it","description":"soon","status":"DONE"}`, wantStatus: http.StatusCreated},
		{name: "bad status", body: `{"title":"Ship it","status":"LATER"}`, wantStatus: http.StatusBadRequest, wantKind: KindValidation},
		{name: "missing title", body: `{"status":"TODO"}`, wantStatus: http.StatusBadRequest, wantKind: KindValidation},
		{name: "not json", body: `{"title":`, wantStatus: http.StatusBadRequest, wantKind: KindMalformedInput},
		{name: "array body", body: `[1,2]`, wantStatus: http.StatusBadRequest, wantKind: KindMalformedInput},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var gotOwner int64
			svc := &mockTaskService{
				CreateFn: func(_ context.Context, ownerID int64, in domain.TaskInput) (*domain.Task, error) {
					gotOwner = ownerID
					task := domain.NewTask(in, ownerID)
					task.ID = 42
					return task, nil
				},
			}
			h := NewTaskHandler(svc)

			rec := httptest.NewRecorder()
			h.CreateTask(rec, newRequest(http.MethodPost, "/api/tasks", tc.body, nil))

			assert.Equal(t, tc.wantStatus, rec.Code)
			if tc.wantKind != "" {
				assert.Equal(t, tc.wantKind, decodeError(t, rec).Kind)
				return
			}

			var task domain.Task
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&task))
			assert.Equal(t, int64(42), task.ID)
			assert.Equal(t, testUserID, gotOwner)
			assert.Equal(t, testUserID, task.OwnerID)
		})
	}
}

func TestCreateTaskIgnoresOwnerInBody(t *testing.T) {
	var gotOwner int64
	svc := &mockTaskService{
		CreateFn: func(_ context.Context, ownerID int64, in domain.TaskInput) (*domain.Task, error) {
			gotOwner = ownerID
			return domain.NewTask(in, ownerID), nil
		},
	}

	rec := httptest.NewRecorder()
	NewTaskHandler(svc).CreateTask(rec, newRequest(http.MethodPost, "/api/tasks",
		`{"title":"x","status":"TODO","owner_id":999}`, nil))

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, testUserID, gotOwner)
}

func TestCreateTaskWithoutUser(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/tasks", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()

	NewTaskHandler(&mockTaskService{}).CreateTask(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGetTask(t *testing.T) {
	tests := []struct {
		name       string
		id         string
		err        error
		wantStatus int
	}{
		{name: "found", id: "3", wantStatus: http.StatusOK},
		{name: "not found", id: "3", err: store.ErrTaskNotFound, wantStatus: http.StatusNotFound},
		{name: "non numeric id", id: "abc", wantStatus: http.StatusBadRequest},
		{name: "zero id", id: "0", wantStatus: http.StatusBadRequest},
		{name: "storage failure", id: "3", err: errors.New("disk on fire"), wantStatus: http.StatusInternalServerError},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := &mockTaskService{
				GetFn: func(_ context.Context, ownerID, id int64) (*domain.Task, error) {
					if tc.err != nil {
						return nil, tc.err
					}
					return &domain.Task{ID: id, OwnerID: ownerID, Title: "t", Status: domain.TaskStatusTodo}, nil
				},
			}

			rec := httptest.NewRecorder()
			NewTaskHandler(svc).GetTask(rec, newRequest(http.MethodGet, "/api/tasks/"+tc.id, "", map[string]string{"id": tc.id}))

			assert.Equal(t, tc.wantStatus, rec.Code)
			if tc.wantStatus == http.StatusInternalServerError {
				resp := decodeError(t, rec)
				assert.NotContains(t, resp.Error, "disk on fire")
				assert.Equal(t, KindStorage, resp.Kind)
				assert.NotEmpty(t, resp.TraceID)
			}
		})
	}
}

func TestListTasksQuery(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantStatus int
		check      func(t *testing.T, opts store.ListOptions)
	}{
		{
			name:       "defaults",
			wantStatus: http.StatusOK,
			check: func(t *testing.T, opts store.ListOptions) {
				assert.Equal(t, 1, opts.Page)
				assert.Equal(t, store.DefaultPageSize, opts.Limit)
				assert.Nil(t, opts.Status)
			},
		},
		{
			name:       "status filter",
			query:      "?status=DONE&page=2&limit=5",
			wantStatus: http.StatusOK,
			check: func(t *testing.T, opts store.ListOptions) {
				require.NotNil(t, opts.Status)
				assert.Equal(t, domain.TaskStatusDone, *opts.Status)
				assert.Equal(t, 2, opts.Page)
				assert.Equal(t, 5, opts.Limit)
			},
		},
		{name: "limit too large", query: "?limit=1000", wantStatus: http.StatusBadRequest},
		{name: "bad status", query: "?status=SOMEDAY", wantStatus: http.StatusBadRequest},
		{name: "bad page", query: "?page=-1", wantStatus: http.StatusBadRequest},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var got store.ListOptions
			svc := &mockTaskService{
				ListFn: func(_ context.Context, _ int64, opts store.ListOptions) (*service.TaskPage, error) {
					got = opts
					return &service.TaskPage{Tasks: []*domain.Task{}, Page: opts.Page, Limit: opts.Limit}, nil
				},
			}

			rec := httptest.NewRecorder()
			NewTaskHandler(svc).ListTasks(rec, newRequest(http.MethodGet, "/api/tasks"+tc.query, "", nil))

			assert.Equal(t, tc.wantStatus, rec.Code)
			if tc.check != nil {
				tc.check(t, got)
			}
		})
	}
}

func TestUpdateTaskUsesPathID(t *testing.T) {
	var got domain.TaskPatch
	svc := &mockTaskService{
		UpdateFn: func(_ context.Context, ownerID int64, patch domain.TaskPatch) (*domain.Task, error) {
			got = patch
			return &domain.Task{ID: patch.ID, OwnerID: ownerID, Title: "old", Status: *patch.Status}, nil
		},
	}

	rec := httptest.NewRecorder()
	NewTaskHandler(svc).UpdateTask(rec, newRequest(http.MethodPatch, "/api/tasks/5",
		`{"id":99,"status":"IN_PROGRESS"}`, map[string]string{"id": "5"}))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(5), got.ID)
	require.NotNil(t, got.Status)
	assert.Equal(t, domain.TaskStatusInProgress, *got.Status)
	assert.Nil(t, got.Title)
}

func TestUpdateTaskRejectsInvalidField(t *testing.T) {
	rec := httptest.NewRecorder()
	NewTaskHandler(&mockTaskService{}).UpdateTask(rec, newRequest(http.MethodPatch, "/api/tasks/5",
		`{"status":"NOPE"}`, map[string]string{"id": "5"}))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, KindValidation, decodeError(t, rec).Kind)
}

func TestDeleteTask(t *testing.T) {
	t.Run("deleted", func(t *testing.T) {
		svc := &mockTaskService{
			DeleteFn: func(_ context.Context, ownerID, id int64) (*domain.Task, error) {
				return &domain.Task{ID: id, OwnerID: ownerID}, nil
			},
		}
		rec := httptest.NewRecorder()
		NewTaskHandler(svc).DeleteTask(rec, newRequest(http.MethodDelete, "/api/tasks/8", "", map[string]string{"id": "8"}))

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Empty(t, rec.Body.String())
	})

	t.Run("other owner", func(t *testing.T) {
		rec := httptest.NewRecorder()
		NewTaskHandler(&mockTaskService{}).DeleteTask(rec, newRequest(http.MethodDelete, "/api/tasks/8", "", map[string]string{"id": "8"}))

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, KindNotFound, decodeError(t, rec).Kind)
	})
}

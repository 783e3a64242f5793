package api

import (
	"context"
	"io"

	"github.com/phrazzld/tasklane-api/internal/domain"
	"github.com/phrazzld/tasklane-api/internal/ingest"
	"github.com/phrazzld/tasklane-api/internal/schema"
	"github.com/phrazzld/tasklane-api/internal/service"
	"github.com/phrazzld/tasklane-api/internal/store"
)

// mockTaskService implements service.TaskService with overridable functions.
type mockTaskService struct {
	CreateFn func(ctx context.Context, ownerID int64, in domain.TaskInput) (*domain.Task, error)
	GetFn    func(ctx context.Context, ownerID, id int64) (*domain.Task, error)
	ListFn   func(ctx context.Context, ownerID int64, opts store.ListOptions) (*service.TaskPage, error)
	UpdateFn func(ctx context.Context, ownerID int64, patch domain.TaskPatch) (*domain.Task, error)
	DeleteFn func(ctx context.Context, ownerID, id int64) (*domain.Task, error)
	ImportFn func(ctx context.Context, ownerID int64, r io.Reader) (*ingest.Result, error)
}

var _ service.TaskService = (*mockTaskService)(nil)

func (m *mockTaskService) Create(ctx context.Context, ownerID int64, in domain.TaskInput) (*domain.Task, error) {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, ownerID, in)
	}
	task := domain.NewTask(in, ownerID)
	task.ID = 1
	return task, nil
}

func (m *mockTaskService) Get(ctx context.Context, ownerID, id int64) (*domain.Task, error) {
	if m.GetFn != nil {
		return m.GetFn(ctx, ownerID, id)
	}
	return nil, store.ErrTaskNotFound
}

func (m *mockTaskService) List(ctx context.Context, ownerID int64, opts store.ListOptions) (*service.TaskPage, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, ownerID, opts)
	}
	return &service.TaskPage{Tasks: []*domain.Task{}, Page: opts.Page, Limit: opts.Limit}, nil
}

func (m *mockTaskService) Update(ctx context.Context, ownerID int64, patch domain.TaskPatch) (*domain.Task, error) {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, ownerID, patch)
	}
	return nil, store.ErrTaskNotFound
}

func (m *mockTaskService) Delete(ctx context.Context, ownerID, id int64) (*domain.Task, error) {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, ownerID, id)
	}
	return nil, store.ErrTaskNotFound
}

func (m *mockTaskService) Import(ctx context.Context, ownerID int64, r io.Reader) (*ingest.Result, error) {
	if m.ImportFn != nil {
		return m.ImportFn(ctx, ownerID, r)
	}
	return &ingest.Result{}, nil
}

// mockUserService implements service.UserService with overridable functions.
type mockUserService struct {
	SignupFn  func(ctx context.Context, creds schema.Credentials) (*service.Session, error)
	SigninFn  func(ctx context.Context, creds schema.Credentials) (*service.Session, error)
	GetUserFn func(ctx context.Context, id int64) (*domain.User, error)
}

var _ service.UserService = (*mockUserService)(nil)

func (m *mockUserService) Signup(ctx context.Context, creds schema.Credentials) (*service.Session, error) {
	return m.SignupFn(ctx, creds)
}

func (m *mockUserService) Signin(ctx context.Context, creds schema.Credentials) (*service.Session, error) {
	return m.SigninFn(ctx, creds)
}

func (m *mockUserService) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	return m.GetUserFn(ctx, id)
}

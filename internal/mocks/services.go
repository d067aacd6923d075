package mocks

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/phrazzld/tasks-api/internal/domain"
	"github.com/phrazzld/tasks-api/internal/service"
)

var errNotConfigured = errors.New("mock method not configured")

// MockTaskService implements service.TaskService for testing
type MockTaskService struct {
	ListFn           func(ctx context.Context, userID string, q domain.TaskQuery) (*domain.Page[domain.TaskView], error)
	GetFn            func(ctx context.Context, userID string, id uuid.UUID) (*domain.TaskView, error)
	CreateFn         func(ctx context.Context, userID string, in domain.TaskInput) (*domain.TaskView, error)
	UpdateFn         func(ctx context.Context, userID string, id uuid.UUID, patch domain.TaskPatch) (*domain.TaskView, error)
	DeleteFn         func(ctx context.Context, userID string, id uuid.UUID) error
	ToggleCompleteFn func(ctx context.Context, userID string, id uuid.UUID) (*domain.TaskCompletion, error)
	AddTagFn         func(ctx context.Context, userID string, taskID, tagID uuid.UUID) (*domain.TaskView, error)
	RemoveTagFn      func(ctx context.Context, userID string, taskID, tagID uuid.UUID) (*domain.TaskView, error)
}

var _ service.TaskService = (*MockTaskService)(nil)

func (m *MockTaskService) List(ctx context.Context, userID string, q domain.TaskQuery) (*domain.Page[domain.TaskView], error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, userID, q)
	}
	return nil, errNotConfigured
}

func (m *MockTaskService) Get(ctx context.Context, userID string, id uuid.UUID) (*domain.TaskView, error) {
	if m.GetFn != nil {
		return m.GetFn(ctx, userID, id)
	}
	return nil, errNotConfigured
}

func (m *MockTaskService) Create(ctx context.Context, userID string, in domain.TaskInput) (*domain.TaskView, error) {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, userID, in)
	}
	return nil, errNotConfigured
}

func (m *MockTaskService) Update(ctx context.Context, userID string, id uuid.UUID, patch domain.TaskPatch) (*domain.TaskView, error) {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, userID, id, patch)
	}
	return nil, errNotConfigured
}

func (m *MockTaskService) Delete(ctx context.Context, userID string, id uuid.UUID) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, userID, id)
	}
	return errNotConfigured
}

func (m *MockTaskService) ToggleComplete(ctx context.Context, userID string, id uuid.UUID) (*domain.TaskCompletion, error) {
	if m.ToggleCompleteFn != nil {
		return m.ToggleCompleteFn(ctx, userID, id)
	}
	return nil, errNotConfigured
}

func (m *MockTaskService) AddTag(ctx context.Context, userID string, taskID, tagID uuid.UUID) (*domain.TaskView, error) {
	if m.AddTagFn != nil {
		return m.AddTagFn(ctx, userID, taskID, tagID)
	}
	return nil, errNotConfigured
}

func (m *MockTaskService) RemoveTag(ctx context.Context, userID string, taskID, tagID uuid.UUID) (*domain.TaskView, error) {
	if m.RemoveTagFn != nil {
		return m.RemoveTagFn(ctx, userID, taskID, tagID)
	}
	return nil, errNotConfigured
}

// MockProjectService implements service.ProjectService for testing
type MockProjectService struct {
	CreateFn func(ctx context.Context, userID string, in domain.ProjectInput) (*domain.ProjectView, error)
	GetFn    func(ctx context.Context, userID string, id uuid.UUID) (*domain.ProjectView, error)
	ListFn   func(ctx context.Context, userID string, page domain.PageRequest) (*domain.Page[domain.ProjectView], error)
	UpdateFn func(ctx context.Context, userID string, id uuid.UUID, patch domain.ProjectPatch) (*domain.ProjectView, error)
	DeleteFn func(ctx context.Context, userID string, id uuid.UUID) error
}

var _ service.ProjectService = (*MockProjectService)(nil)

func (m *MockProjectService) Create(ctx context.Context, userID string, in domain.ProjectInput) (*domain.ProjectView, error) {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, userID, in)
	}
	return nil, errNotConfigured
}

func (m *MockProjectService) Get(ctx context.Context, userID string, id uuid.UUID) (*domain.ProjectView, error) {
	if m.GetFn != nil {
		return m.GetFn(ctx, userID, id)
	}
	return nil, errNotConfigured
}

func (m *MockProjectService) List(ctx context.Context, userID string, page domain.PageRequest) (*domain.Page[domain.ProjectView], error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, userID, page)
	}
	return nil, errNotConfigured
}

func (m *MockProjectService) Update(ctx context.Context, userID string, id uuid.UUID, patch domain.ProjectPatch) (*domain.ProjectView, error) {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, userID, id, patch)
	}
	return nil, errNotConfigured
}

func (m *MockProjectService) Delete(ctx context.Context, userID string, id uuid.UUID) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, userID, id)
	}
	return errNotConfigured
}

// MockTagService implements service.TagService for testing
type MockTagService struct {
	CreateFn func(ctx context.Context, userID string, in domain.TagInput) (*domain.TagView, error)
	GetFn    func(ctx context.Context, userID string, id uuid.UUID) (*domain.TagView, error)
	ListFn   func(ctx context.Context, userID string, page domain.PageRequest) (*domain.Page[domain.TagView], error)
	UpdateFn func(ctx context.Context, userID string, id uuid.UUID, patch domain.TagPatch) (*domain.TagView, error)
	DeleteFn func(ctx context.Context, userID string, id uuid.UUID) error
}

var _ service.TagService = (*MockTagService)(nil)

func (m *MockTagService) Create(ctx context.Context, userID string, in domain.TagInput) (*domain.TagView, error) {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, userID, in)
	}
	return nil, errNotConfigured
}

func (m *MockTagService) Get(ctx context.Context, userID string, id uuid.UUID) (*domain.TagView, error) {
	if m.GetFn != nil {
		return m.GetFn(ctx, userID, id)
	}
	return nil, errNotConfigured
}

func (m *MockTagService) List(ctx context.Context, userID string, page domain.PageRequest) (*domain.Page[domain.TagView], error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, userID, page)
	}
	return nil, errNotConfigured
}

func (m *MockTagService) Update(ctx context.Context, userID string, id uuid.UUID, patch domain.TagPatch) (*domain.TagView, error) {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, userID, id, patch)
	}
	return nil, errNotConfigured
}

func (m *MockTagService) Delete(ctx context.Context, userID string, id uuid.UUID) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, userID, id)
	}
	return errNotConfigured
}

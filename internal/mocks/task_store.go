package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/tasks-api/internal/domain"
	"github.com/phrazzld/tasks-api/internal/store"
)

// MockTaskStore implements store.TaskStore for testing
type MockTaskStore struct {
	CreateFn        func(ctx context.Context, task *domain.Task) error
	GetByIDFn       func(ctx context.Context, userID string, id uuid.UUID) (*domain.Task, error)
	UpdateFn        func(ctx context.Context, task *domain.Task) error
	DeleteFn        func(ctx context.Context, userID string, id uuid.UUID) error
	QueryFn         func(ctx context.Context, userID string, q domain.TaskQuery) ([]domain.Task, int, error)
	TagIDsFn        func(ctx context.Context, taskIDs []uuid.UUID) (map[uuid.UUID][]uuid.UUID, error)
	HasTagFn        func(ctx context.Context, taskID, tagID uuid.UUID) (bool, error)
	AddTagFn        func(ctx context.Context, taskID, tagID uuid.UUID, at time.Time) error
	RemoveTagFn     func(ctx context.Context, taskID, tagID uuid.UUID) error
	DetachProjectFn func(ctx context.Context, userID string, projectID uuid.UUID) (int64, error)
}

var _ store.TaskStore = (*MockTaskStore)(nil)

func (m *MockTaskStore) Create(ctx context.Context, task *domain.Task) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, task)
	}
	return nil
}

func (m *MockTaskStore) GetByID(ctx context.Context, userID string, id uuid.UUID) (*domain.Task, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, userID, id)
	}
	return nil, store.ErrTaskNotFound
}

func (m *MockTaskStore) Update(ctx context.Context, task *domain.Task) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, task)
	}
	return nil
}

func (m *MockTaskStore) Delete(ctx context.Context, userID string, id uuid.UUID) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, userID, id)
	}
	return nil
}

func (m *MockTaskStore) Query(ctx context.Context, userID string, q domain.TaskQuery) ([]domain.Task, int, error) {
	if m.QueryFn != nil {
		return m.QueryFn(ctx, userID, q)
	}
	return nil, 0, nil
}

func (m *MockTaskStore) TagIDs(ctx context.Context, taskIDs []uuid.UUID) (map[uuid.UUID][]uuid.UUID, error) {
	if m.TagIDsFn != nil {
		return m.TagIDsFn(ctx, taskIDs)
	}
	return map[uuid.UUID][]uuid.UUID{}, nil
}

func (m *MockTaskStore) HasTag(ctx context.Context, taskID, tagID uuid.UUID) (bool, error) {
	if m.HasTagFn != nil {
		return m.HasTagFn(ctx, taskID, tagID)
	}
	return false, nil
}

func (m *MockTaskStore) AddTag(ctx context.Context, taskID, tagID uuid.UUID, at time.Time) error {
	if m.AddTagFn != nil {
		return m.AddTagFn(ctx, taskID, tagID, at)
	}
	return nil
}

func (m *MockTaskStore) RemoveTag(ctx context.Context, taskID, tagID uuid.UUID) error {
	if m.RemoveTagFn != nil {
		return m.RemoveTagFn(ctx, taskID, tagID)
	}
	return store.ErrTaskTagNotFound
}

func (m *MockTaskStore) DetachProject(ctx context.Context, userID string, projectID uuid.UUID) (int64, error) {
	if m.DetachProjectFn != nil {
		return m.DetachProjectFn(ctx, userID, projectID)
	}
	return 0, nil
}

// WithTx returns the mock itself.
func (m *MockTaskStore) WithTx(tx *sqlx.Tx) store.TaskStore {
	return m
}

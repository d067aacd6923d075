package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/tasks-api/internal/domain"
)

// TaskStore defines the interface for task and task-tag persistence.
type TaskStore interface {
	Create(ctx context.Context, task *domain.Task) error

	// GetByID returns ErrTaskNotFound if the task is missing or owned by another user.
	GetByID(ctx context.Context, userID string, id uuid.UUID) (*domain.Task, error)

	// Update persists every mutable field. Returns ErrTaskNotFound if no row matched.
	Update(ctx context.Context, task *domain.Task) error

	// Delete removes the task and its tag associations.
	// Returns ErrTaskNotFound if no row matched.
	Delete(ctx context.Context, userID string, id uuid.UUID) error

	// Query returns the page of the user's tasks selected by q and the number of
	// tasks matching the filter before paging. q must be normalized and valid.
	Query(ctx context.Context, userID string, q domain.TaskQuery) ([]domain.Task, int, error)

	// TagIDs returns the tag ids of each task, keyed by task id.
	TagIDs(ctx context.Context, taskIDs []uuid.UUID) (map[uuid.UUID][]uuid.UUID, error)

	// HasTag reports whether the association exists.
	HasTag(ctx context.Context, taskID, tagID uuid.UUID) (bool, error)

	// AddTag creates the association. Returns ErrTaskTagExists if it already exists.
	AddTag(ctx context.Context, taskID, tagID uuid.UUID, at time.Time) error

	// RemoveTag deletes the association. Returns ErrTaskTagNotFound if it does not exist.
	RemoveTag(ctx context.Context, taskID, tagID uuid.UUID) error

	// DetachProject clears the project reference of every task of userID in the project
	// and returns how many tasks moved to the inbox.
	DetachProject(ctx context.Context, userID string, projectID uuid.UUID) (int64, error)

	WithTx(tx *sqlx.Tx) TaskStore
}

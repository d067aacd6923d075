package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/tasks-api/internal/domain"
)

// ProjectTaskCounts are the derived counts shown alongside a project.
type ProjectTaskCounts struct {
	Total     int
	Completed int
}

// ProjectStore defines the interface for project persistence.
type ProjectStore interface {
	// Create saves a new project. Returns ErrProjectNameExists when the
	// case-insensitive unique index rejects the name.
	Create(ctx context.Context, project *domain.Project) error

	// GetByID returns ErrProjectNotFound if the project is missing or owned by another user.
	GetByID(ctx context.Context, userID string, id uuid.UUID) (*domain.Project, error)

	// FindByName looks a project up by case-insensitive name.
	// Returns ErrProjectNotFound when there is none.
	FindByName(ctx context.Context, userID, name string) (*domain.Project, error)

	// List returns one page of the user's projects ordered by name, and the total count.
	List(ctx context.Context, userID string, page domain.PageRequest) ([]domain.Project, int, error)

	// Update persists every mutable field. Returns ErrProjectNotFound if no row matched.
	Update(ctx context.Context, project *domain.Project) error

	// Delete removes the project. Returns ErrProjectNotFound if no row matched.
	Delete(ctx context.Context, userID string, id uuid.UUID) error

	// CountTasks returns task counts keyed by project id. Projects without tasks are
	// present with zero counts.
	CountTasks(ctx context.Context, projectIDs []uuid.UUID) (map[uuid.UUID]ProjectTaskCounts, error)

	WithTx(tx *sqlx.Tx) ProjectStore
}

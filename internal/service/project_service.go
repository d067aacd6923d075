package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/tasks-api/internal/domain"
	"github.com/phrazzld/tasks-api/internal/platform/logger"
	"github.com/phrazzld/tasks-api/internal/store"
)

// ProjectService manages a user's projects.
type ProjectService interface {
	Create(ctx context.Context, userID string, in domain.ProjectInput) (*domain.ProjectView, error)
	Get(ctx context.Context, userID string, id uuid.UUID) (*domain.ProjectView, error)
	List(ctx context.Context, userID string, page domain.PageRequest) (*domain.Page[domain.ProjectView], error)
	Update(ctx context.Context, userID string, id uuid.UUID, patch domain.ProjectPatch) (*domain.ProjectView, error)
	// Delete removes the project and moves its tasks to the inbox.
	Delete(ctx context.Context, userID string, id uuid.UUID) error
}

type projectService struct {
	db       *sqlx.DB
	projects store.ProjectStore
	tasks    store.TaskStore
	logger   *slog.Logger
	now      func() time.Time
}

// NewProjectService creates a ProjectService.
// It returns an error if any of the required dependencies are nil.
func NewProjectService(
	db *sqlx.DB,
	projects store.ProjectStore,
	tasks store.TaskStore,
	logger *slog.Logger,
	opts ...Option,
) (ProjectService, error) {
	if db == nil {
		return nil, newDependencyError("db")
	}
	if projects == nil {
		return nil, newDependencyError("projects")
	}
	if tasks == nil {
		return nil, newDependencyError("tasks")
	}
	if logger == nil {
		logger = slog.Default()
	}
	o := applyOptions(opts)
	return &projectService{
		db:       db,
		projects: projects,
		tasks:    tasks,
		logger:   logger.With(slog.String("component", "project_service")),
		now:      o.now,
	}, nil
}

func (s *projectService) Create(ctx context.Context, userID string, in domain.ProjectInput) (*domain.ProjectView, error) {
	project, err := domain.NewProject(userID, in, s.now())
	if err != nil {
		return nil, err
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sqlx.Tx) error {
		projects := s.projects.WithTx(tx)
		if err := ensureProjectNameFree(ctx, projects, userID, project.Name, uuid.Nil); err != nil {
			return err
		}
		if err := projects.Create(ctx, project); err != nil {
			return projectWriteError(err, project.Name)
		}
		return nil
	})
	if err != nil {
		return nil, wrapError("project", "create", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("project created",
		slog.String("project_id", project.ID.String()),
		slog.String("user_id", userID))
	return s.Get(ctx, userID, project.ID)
}

func (s *projectService) Get(ctx context.Context, userID string, id uuid.UUID) (*domain.ProjectView, error) {
	project, err := s.projects.GetByID(ctx, userID, id)
	if err != nil {
		return nil, wrapError("project", "get", notFound(err, domain.ResourceProject, id.String()))
	}
	views, err := s.withCounts(ctx, []domain.Project{*project})
	if err != nil {
		return nil, wrapError("project", "get", err)
	}
	return &views[0], nil
}

func (s *projectService) List(ctx context.Context, userID string, page domain.PageRequest) (*domain.Page[domain.ProjectView], error) {
	if err := page.Validate(); err != nil {
		return nil, err
	}
	projects, total, err := s.projects.List(ctx, userID, page)
	if err != nil {
		return nil, wrapError("project", "list", err)
	}
	views, err := s.withCounts(ctx, projects)
	if err != nil {
		return nil, wrapError("project", "list", err)
	}
	return domain.NewPage(views, total, page), nil
}

func (s *projectService) Update(
	ctx context.Context,
	userID string,
	id uuid.UUID,
	patch domain.ProjectPatch,
) (*domain.ProjectView, error) {
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sqlx.Tx) error {
		projects := s.projects.WithTx(tx)
		project, err := projects.GetByID(ctx, userID, id)
		if err != nil {
			return notFound(err, domain.ResourceProject, id.String())
		}

		nameChanged, err := project.Apply(patch, s.now())
		if err != nil {
			return err
		}
		if nameChanged {
			if err := ensureProjectNameFree(ctx, projects, userID, project.Name, project.ID); err != nil {
				return err
			}
		}
		if err := projects.Update(ctx, project); err != nil {
			return projectWriteError(notFound(err, domain.ResourceProject, id.String()), project.Name)
		}
		return nil
	})
	if err != nil {
		return nil, wrapError("project", "update", err)
	}
	return s.Get(ctx, userID, id)
}

func (s *projectService) Delete(ctx context.Context, userID string, id uuid.UUID) error {
	var detached int64
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sqlx.Tx) error {
		projects := s.projects.WithTx(tx)
		if _, err := projects.GetByID(ctx, userID, id); err != nil {
			return notFound(err, domain.ResourceProject, id.String())
		}

		var err error
		detached, err = s.tasks.WithTx(tx).DetachProject(ctx, userID, id)
		if err != nil {
			return err
		}
		return notFound(projects.Delete(ctx, userID, id), domain.ResourceProject, id.String())
	})
	if err != nil {
		return wrapError("project", "delete", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("project deleted",
		slog.String("project_id", id.String()),
		slog.Int64("tasks_moved_to_inbox", detached))
	return nil
}

func (s *projectService) withCounts(ctx context.Context, projects []domain.Project) ([]domain.ProjectView, error) {
	ids := make([]uuid.UUID, len(projects))
	for i, p := range projects {
		ids[i] = p.ID
	}
	counts, err := s.projects.CountTasks(ctx, ids)
	if err != nil {
		return nil, err
	}

	views := make([]domain.ProjectView, len(projects))
	for i, p := range projects {
		c := counts[p.ID]
		views[i] = domain.ProjectView{Project: p, TaskCount: c.Total, CompletedTaskCount: c.Completed}
	}
	return views, nil
}

// ensureProjectNameFree fails with a DuplicateError when another project of the user,
// other than self, already has name (case-insensitively).
func ensureProjectNameFree(ctx context.Context, projects store.ProjectStore, userID, name string, self uuid.UUID) error {
	existing, err := projects.FindByName(ctx, userID, name)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return nil
	case err != nil:
		return err
	case existing.ID != self:
		return domain.NewDuplicateError(domain.ResourceProject, "name", name)
	}
	return nil
}

func projectWriteError(err error, name string) error {
	if errors.Is(err, store.ErrProjectNameExists) {
		return domain.NewDuplicateError(domain.ResourceProject, "name", name)
	}
	return err
}

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

// TaskService queries and mutates a user's tasks. Every returned task carries its
// tag ids and derived fields evaluated against the service clock.
type TaskService interface {
	// List returns one page of the tasks selected by q together with the size of
	// the filtered set.
	List(ctx context.Context, userID string, q domain.TaskQuery) (*domain.Page[domain.TaskView], error)
	Get(ctx context.Context, userID string, id uuid.UUID) (*domain.TaskView, error)
	// Create stores a new task and attaches in.TagIDs. The referenced project and
	// tags must belong to the user.
	Create(ctx context.Context, userID string, in domain.TaskInput) (*domain.TaskView, error)
	// Update applies the fields set in patch and always refreshes updated_at.
	Update(ctx context.Context, userID string, id uuid.UUID, patch domain.TaskPatch) (*domain.TaskView, error)
	Delete(ctx context.Context, userID string, id uuid.UUID) error
	ToggleComplete(ctx context.Context, userID string, id uuid.UUID) (*domain.TaskCompletion, error)
	// AddTag attaches a tag. Attaching a tag twice is a validation error.
	AddTag(ctx context.Context, userID string, taskID, tagID uuid.UUID) (*domain.TaskView, error)
	// RemoveTag detaches a tag. Detaching a tag that is not attached is a not-found error.
	RemoveTag(ctx context.Context, userID string, taskID, tagID uuid.UUID) (*domain.TaskView, error)
}

type taskService struct {
	db       *sqlx.DB
	tasks    store.TaskStore
	projects store.ProjectStore
	tags     store.TagStore
	logger   *slog.Logger
	now      func() time.Time
}

// NewTaskService creates a TaskService.
// It returns an error if any of the required dependencies are nil.
func NewTaskService(
	db *sqlx.DB,
	tasks store.TaskStore,
	projects store.ProjectStore,
	tags store.TagStore,
	logger *slog.Logger,
	opts ...Option,
) (TaskService, error) {
	if db == nil {
		return nil, newDependencyError("db")
	}
	if tasks == nil {
		return nil, newDependencyError("tasks")
	}
	if projects == nil {
		return nil, newDependencyError("projects")
	}
	if tags == nil {
		return nil, newDependencyError("tags")
	}
	if logger == nil {
		logger = slog.Default()
	}
	o := applyOptions(opts)
	return &taskService{
		db:       db,
		tasks:    tasks,
		projects: projects,
		tags:     tags,
		logger:   logger.With(slog.String("component", "task_service")),
		now:      o.now,
	}, nil
}

func (s *taskService) List(ctx context.Context, userID string, q domain.TaskQuery) (*domain.Page[domain.TaskView], error) {
	q = q.Normalize()
	if err := q.Validate(); err != nil {
		return nil, err
	}

	tasks, total, err := s.tasks.Query(ctx, userID, q)
	if err != nil {
		return nil, wrapError("task", "list", err)
	}
	views, err := s.views(ctx, tasks)
	if err != nil {
		return nil, wrapError("task", "list", err)
	}
	return domain.NewPage(views, total, q.Page), nil
}

func (s *taskService) Get(ctx context.Context, userID string, id uuid.UUID) (*domain.TaskView, error) {
	task, err := s.tasks.GetByID(ctx, userID, id)
	if err != nil {
		return nil, wrapError("task", "get", notFound(err, domain.ResourceTask, id.String()))
	}
	views, err := s.views(ctx, []domain.Task{*task})
	if err != nil {
		return nil, wrapError("task", "get", err)
	}
	return &views[0], nil
}

func (s *taskService) Create(ctx context.Context, userID string, in domain.TaskInput) (*domain.TaskView, error) {
	now := s.now()
	task, err := domain.NewTask(userID, in, now)
	if err != nil {
		return nil, err
	}
	tagIDs := uniqueIDs(in.TagIDs)

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sqlx.Tx) error {
		if task.ProjectID != nil {
			if err := s.ensureProjectOwned(ctx, tx, userID, *task.ProjectID); err != nil {
				return err
			}
		}

		tasks := s.tasks.WithTx(tx)
		if err := tasks.Create(ctx, task); err != nil {
			return err
		}

		tags := s.tags.WithTx(tx)
		for _, tagID := range tagIDs {
			if _, err := tags.GetByID(ctx, userID, tagID); err != nil {
				return notFound(err, domain.ResourceTag, tagID.String())
			}
			if err := tasks.AddTag(ctx, task.ID, tagID, now); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, wrapError("task", "create", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("task created",
		slog.String("task_id", task.ID.String()),
		slog.String("user_id", userID),
		slog.Int("tag_count", len(tagIDs)))
	return s.Get(ctx, userID, task.ID)
}

func (s *taskService) Update(ctx context.Context, userID string, id uuid.UUID, patch domain.TaskPatch) (*domain.TaskView, error) {
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sqlx.Tx) error {
		tasks := s.tasks.WithTx(tx)
		task, err := tasks.GetByID(ctx, userID, id)
		if err != nil {
			return notFound(err, domain.ResourceTask, id.String())
		}

		previousProject := task.ProjectID
		if err := task.Apply(patch, s.now()); err != nil {
			return err
		}
		if task.ProjectID != nil && (previousProject == nil || *previousProject != *task.ProjectID) {
			if err := s.ensureProjectOwned(ctx, tx, userID, *task.ProjectID); err != nil {
				return err
			}
		}
		return notFound(tasks.Update(ctx, task), domain.ResourceTask, id.String())
	})
	if err != nil {
		return nil, wrapError("task", "update", err)
	}
	return s.Get(ctx, userID, id)
}

func (s *taskService) Delete(ctx context.Context, userID string, id uuid.UUID) error {
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sqlx.Tx) error {
		return notFound(s.tasks.WithTx(tx).Delete(ctx, userID, id), domain.ResourceTask, id.String())
	})
	if err != nil {
		return wrapError("task", "delete", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("task deleted",
		slog.String("task_id", id.String()),
		slog.String("user_id", userID))
	return nil
}

func (s *taskService) ToggleComplete(ctx context.Context, userID string, id uuid.UUID) (*domain.TaskCompletion, error) {
	var completion domain.TaskCompletion
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sqlx.Tx) error {
		tasks := s.tasks.WithTx(tx)
		task, err := tasks.GetByID(ctx, userID, id)
		if err != nil {
			return notFound(err, domain.ResourceTask, id.String())
		}
		completion = task.ToggleCompletion(s.now())
		return notFound(tasks.Update(ctx, task), domain.ResourceTask, id.String())
	})
	if err != nil {
		return nil, wrapError("task", "toggle_complete", err)
	}
	return &completion, nil
}

func (s *taskService) AddTag(ctx context.Context, userID string, taskID, tagID uuid.UUID) (*domain.TaskView, error) {
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sqlx.Tx) error {
		tasks := s.tasks.WithTx(tx)
		if _, err := tasks.GetByID(ctx, userID, taskID); err != nil {
			return notFound(err, domain.ResourceTask, taskID.String())
		}
		if _, err := s.tags.WithTx(tx).GetByID(ctx, userID, tagID); err != nil {
			return notFound(err, domain.ResourceTag, tagID.String())
		}

		attached, err := tasks.HasTag(ctx, taskID, tagID)
		if err != nil {
			return err
		}
		if attached {
			return errTagAlreadyAttached()
		}

		err = tasks.AddTag(ctx, taskID, tagID, s.now())
		if errors.Is(err, store.ErrTaskTagExists) {
			return errTagAlreadyAttached()
		}
		return err
	})
	if err != nil {
		return nil, wrapError("task", "add_tag", err)
	}
	return s.Get(ctx, userID, taskID)
}

func (s *taskService) RemoveTag(ctx context.Context, userID string, taskID, tagID uuid.UUID) (*domain.TaskView, error) {
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sqlx.Tx) error {
		tasks := s.tasks.WithTx(tx)
		if _, err := tasks.GetByID(ctx, userID, taskID); err != nil {
			return notFound(err, domain.ResourceTask, taskID.String())
		}
		return notFound(tasks.RemoveTag(ctx, taskID, tagID), domain.ResourceTaskTag, tagID.String())
	})
	if err != nil {
		return nil, wrapError("task", "remove_tag", err)
	}
	return s.Get(ctx, userID, taskID)
}

// views attaches tag ids with one batched query and evaluates the derived fields
// against a single reading of the clock.
func (s *taskService) views(ctx context.Context, tasks []domain.Task) ([]domain.TaskView, error) {
	ids := make([]uuid.UUID, len(tasks))
	for i, t := range tasks {
		ids[i] = t.ID
	}
	tagIDs, err := s.tasks.TagIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	now := s.now()
	views := make([]domain.TaskView, len(tasks))
	for i := range tasks {
		views[i] = tasks[i].View(tagIDs[tasks[i].ID], now)
	}
	return views, nil
}

func (s *taskService) ensureProjectOwned(ctx context.Context, tx *sqlx.Tx, userID string, projectID uuid.UUID) error {
	if _, err := s.projects.WithTx(tx).GetByID(ctx, userID, projectID); err != nil {
		return notFound(err, domain.ResourceProject, projectID.String())
	}
	return nil
}

func errTagAlreadyAttached() error {
	return domain.NewValidationError("tag_id", "tag is already attached to this task", nil)
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/tasks-api/internal/domain"
	"github.com/phrazzld/tasks-api/internal/platform/logger"
	"github.com/phrazzld/tasks-api/internal/store"
)

// TaskStore implements store.TaskStore.
type TaskStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewTaskStore creates a TaskStore over a database connection or transaction.
func NewTaskStore(db store.DBTX, logger *slog.Logger) *TaskStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_store")),
	}
}

var _ store.TaskStore = (*TaskStore)(nil)

const taskColumns = `t.id, t.user_id, t.project_id, t.title, t.description, t.priority,
	t.deadline, t.time_estimate, t.is_completed, t.created_at, t.updated_at`

type taskRow struct {
	ID           uuid.UUID      `db:"id"`
	UserID       string         `db:"user_id"`
	ProjectID    uuid.NullUUID  `db:"project_id"`
	Title        string         `db:"title"`
	Description  sql.NullString `db:"description"`
	Priority     int            `db:"priority"`
	Deadline     sql.NullTime   `db:"deadline"`
	TimeEstimate sql.NullInt64  `db:"time_estimate"`
	IsCompleted  bool           `db:"is_completed"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
}

func (r taskRow) toDomain() domain.Task {
	t := domain.Task{
		ID:           r.ID,
		UserID:       r.UserID,
		Title:        r.Title,
		Description:  stringPtr(r.Description),
		Priority:     domain.Priority(r.Priority),
		Deadline:     timePtr(r.Deadline),
		TimeEstimate: intPtr(r.TimeEstimate),
		IsCompleted:  r.IsCompleted,
		CreatedAt:    r.CreatedAt.UTC(),
		UpdatedAt:    r.UpdatedAt.UTC(),
	}
	if r.ProjectID.Valid {
		id := r.ProjectID.UUID
		t.ProjectID = &id
	}
	return t
}

func nullUUID(id *uuid.UUID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: *id, Valid: true}
}

func (s *TaskStore) Create(ctx context.Context, t *domain.Task) error {
	query := s.db.Rebind(`
		INSERT INTO tasks (id, user_id, project_id, title, description, priority,
			deadline, time_estimate, is_completed, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	_, err := s.db.ExecContext(ctx, query,
		t.ID, t.UserID, nullUUID(t.ProjectID), t.Title, nullString(t.Description), int(t.Priority),
		nullTime(t.Deadline), nullInt(t.TimeEstimate), t.IsCompleted, t.CreatedAt.UTC(), t.UpdatedAt.UTC())
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to create task",
			slog.String("error", err.Error()),
			slog.String("task_id", t.ID.String()))
		return MapError(err, domain.ResourceTask, "create")
	}
	return nil
}

func (s *TaskStore) GetByID(ctx context.Context, userID string, id uuid.UUID) (*domain.Task, error) {
	var row taskRow
	query := s.db.Rebind(`SELECT ` + taskColumns + ` FROM tasks t WHERE t.id = ? AND t.user_id = ?`)
	if err := s.db.GetContext(ctx, &row, query, id, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrTaskNotFound
		}
		return nil, MapError(err, domain.ResourceTask, "get")
	}
	t := row.toDomain()
	return &t, nil
}

func (s *TaskStore) Update(ctx context.Context, t *domain.Task) error {
	query := s.db.Rebind(`
		UPDATE tasks SET project_id = ?, title = ?, description = ?, priority = ?, deadline = ?,
			time_estimate = ?, is_completed = ?, updated_at = ?
		WHERE id = ? AND user_id = ?
	`)
	result, err := s.db.ExecContext(ctx, query,
		nullUUID(t.ProjectID), t.Title, nullString(t.Description), int(t.Priority), nullTime(t.Deadline),
		nullInt(t.TimeEstimate), t.IsCompleted, t.UpdatedAt.UTC(), t.ID, t.UserID)
	if err != nil {
		return MapError(err, domain.ResourceTask, "update")
	}
	return CheckRowsAffected(result, store.ErrTaskNotFound, domain.ResourceTask, "update")
}

func (s *TaskStore) Delete(ctx context.Context, userID string, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM tasks WHERE id = ? AND user_id = ?`), id, userID)
	if err != nil {
		return MapError(err, domain.ResourceTask, "delete")
	}
	return CheckRowsAffected(result, store.ErrTaskNotFound, domain.ResourceTask, "delete")
}

// Query counts the filtered set first, then fetches the requested window of it.
func (s *TaskStore) Query(ctx context.Context, userID string, q domain.TaskQuery) ([]domain.Task, int, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	where := buildTaskWhere(userID, q.Filter)

	var total int
	countQuery := s.db.Rebind(`SELECT COUNT(*) FROM tasks t WHERE ` + where.String())
	if err := s.db.GetContext(ctx, &total, countQuery, where.args...); err != nil {
		log.Error("failed to count tasks",
			slog.String("error", err.Error()),
			slog.String("user_id", userID))
		return nil, 0, MapError(err, domain.ResourceTask, "count")
	}

	args := append(append([]any{}, where.args...), q.Page.Limit, q.Page.Offset)
	listQuery := s.db.Rebind(`SELECT ` + taskColumns + ` FROM tasks t WHERE ` + where.String() +
		` ORDER BY ` + taskOrderBy(q.Sort) + ` LIMIT ? OFFSET ?`)

	var rows []taskRow
	if err := s.db.SelectContext(ctx, &rows, listQuery, args...); err != nil {
		log.Error("failed to query tasks",
			slog.String("error", err.Error()),
			slog.String("user_id", userID))
		return nil, 0, MapError(err, domain.ResourceTask, "query")
	}

	tasks := make([]domain.Task, 0, len(rows))
	for _, r := range rows {
		tasks = append(tasks, r.toDomain())
	}

	log.Debug("task query executed",
		slog.Int("conditions", len(where.conds)),
		slog.Int("total", total),
		slog.Int("returned", len(tasks)))
	return tasks, total, nil
}

func (s *TaskStore) TagIDs(ctx context.Context, taskIDs []uuid.UUID) (map[uuid.UUID][]uuid.UUID, error) {
	result := make(map[uuid.UUID][]uuid.UUID, len(taskIDs))
	if len(taskIDs) == 0 {
		return result, nil
	}
	for _, id := range taskIDs {
		result[id] = []uuid.UUID{}
	}

	query, args, err := sqlx.In(`
		SELECT task_id, tag_id FROM task_tags
		WHERE task_id IN (?)
		ORDER BY created_at ASC, tag_id ASC
	`, taskIDs)
	if err != nil {
		return nil, store.NewStoreError(domain.ResourceTaskTag, "list", "failed to build query", err)
	}

	var rows []struct {
		TaskID uuid.UUID `db:"task_id"`
		TagID  uuid.UUID `db:"tag_id"`
	}
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		return nil, MapError(err, domain.ResourceTaskTag, "list")
	}
	for _, r := range rows {
		result[r.TaskID] = append(result[r.TaskID], r.TagID)
	}
	return result, nil
}

func (s *TaskStore) HasTag(ctx context.Context, taskID, tagID uuid.UUID) (bool, error) {
	var n int
	query := s.db.Rebind(`SELECT COUNT(*) FROM task_tags WHERE task_id = ? AND tag_id = ?`)
	if err := s.db.GetContext(ctx, &n, query, taskID, tagID); err != nil {
		return false, MapError(err, domain.ResourceTaskTag, "get")
	}
	return n > 0, nil
}

func (s *TaskStore) AddTag(ctx context.Context, taskID, tagID uuid.UUID, at time.Time) error {
	query := s.db.Rebind(`INSERT INTO task_tags (task_id, tag_id, created_at) VALUES (?, ?, ?)`)
	if _, err := s.db.ExecContext(ctx, query, taskID, tagID, at.UTC()); err != nil {
		if IsUniqueViolation(err) {
			return store.ErrTaskTagExists
		}
		return MapError(err, domain.ResourceTaskTag, "create")
	}
	return nil
}

func (s *TaskStore) RemoveTag(ctx context.Context, taskID, tagID uuid.UUID) error {
	query := s.db.Rebind(`DELETE FROM task_tags WHERE task_id = ? AND tag_id = ?`)
	result, err := s.db.ExecContext(ctx, query, taskID, tagID)
	if err != nil {
		return MapError(err, domain.ResourceTaskTag, "delete")
	}
	return CheckRowsAffected(result, store.ErrTaskTagNotFound, domain.ResourceTaskTag, "delete")
}

func (s *TaskStore) DetachProject(ctx context.Context, userID string, projectID uuid.UUID) (int64, error) {
	query := s.db.Rebind(`UPDATE tasks SET project_id = NULL WHERE project_id = ? AND user_id = ?`)
	result, err := s.db.ExecContext(ctx, query, projectID, userID)
	if err != nil {
		return 0, MapError(err, domain.ResourceTask, "detach_project")
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, store.NewStoreError(domain.ResourceTask, "detach_project", "failed to get rows affected", err)
	}
	return n, nil
}

func (s *TaskStore) WithTx(tx *sqlx.Tx) store.TaskStore {
	return &TaskStore{db: tx, logger: s.logger}
}

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

// ProjectStore implements store.ProjectStore.
type ProjectStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewProjectStore creates a ProjectStore over a database connection or transaction.
func NewProjectStore(db store.DBTX, logger *slog.Logger) *ProjectStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ProjectStore{
		db:     db,
		logger: logger.With(slog.String("component", "project_store")),
	}
}

var _ store.ProjectStore = (*ProjectStore)(nil)

const projectColumns = `id, user_id, name, description, created_at, updated_at`

type projectRow struct {
	ID          uuid.UUID      `db:"id"`
	UserID      string         `db:"user_id"`
	Name        string         `db:"name"`
	Description sql.NullString `db:"description"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

func (r projectRow) toDomain() domain.Project {
	return domain.Project{
		ID:          r.ID,
		UserID:      r.UserID,
		Name:        r.Name,
		Description: stringPtr(r.Description),
		CreatedAt:   r.CreatedAt.UTC(),
		UpdatedAt:   r.UpdatedAt.UTC(),
	}
}

func (s *ProjectStore) Create(ctx context.Context, p *domain.Project) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := s.db.Rebind(`
		INSERT INTO projects (` + projectColumns + `)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	_, err := s.db.ExecContext(ctx, query,
		p.ID, p.UserID, p.Name, nullString(p.Description), p.CreatedAt.UTC(), p.UpdatedAt.UTC())
	if err != nil {
		if IsUniqueViolation(err) {
			return store.ErrProjectNameExists
		}
		log.Error("failed to create project",
			slog.String("error", err.Error()),
			slog.String("project_id", p.ID.String()))
		return MapError(err, domain.ResourceProject, "create")
	}
	return nil
}

func (s *ProjectStore) GetByID(ctx context.Context, userID string, id uuid.UUID) (*domain.Project, error) {
	query := s.db.Rebind(`SELECT ` + projectColumns + ` FROM projects WHERE id = ? AND user_id = ?`)
	return s.getOne(ctx, "get", query, id, userID)
}

func (s *ProjectStore) FindByName(ctx context.Context, userID, name string) (*domain.Project, error) {
	query := s.db.Rebind(`SELECT ` + projectColumns + ` FROM projects WHERE user_id = ? AND LOWER(name) = LOWER(?)`)
	return s.getOne(ctx, "find_by_name", query, userID, name)
}

func (s *ProjectStore) getOne(ctx context.Context, operation, query string, args ...any) (*domain.Project, error) {
	var row projectRow
	if err := s.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrProjectNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to read project",
			slog.String("error", err.Error()),
			slog.String("operation", operation))
		return nil, MapError(err, domain.ResourceProject, operation)
	}
	p := row.toDomain()
	return &p, nil
}

func (s *ProjectStore) List(ctx context.Context, userID string, page domain.PageRequest) ([]domain.Project, int, error) {
	var total int
	countQuery := s.db.Rebind(`SELECT COUNT(*) FROM projects WHERE user_id = ?`)
	if err := s.db.GetContext(ctx, &total, countQuery, userID); err != nil {
		return nil, 0, MapError(err, domain.ResourceProject, "count")
	}

	var rows []projectRow
	query := s.db.Rebind(`
		SELECT ` + projectColumns + ` FROM projects
		WHERE user_id = ?
		ORDER BY LOWER(name) ASC, name ASC
		LIMIT ? OFFSET ?
	`)
	if err := s.db.SelectContext(ctx, &rows, query, userID, page.Limit, page.Offset); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list projects",
			slog.String("error", err.Error()),
			slog.String("user_id", userID))
		return nil, 0, MapError(err, domain.ResourceProject, "list")
	}

	projects := make([]domain.Project, 0, len(rows))
	for _, r := range rows {
		projects = append(projects, r.toDomain())
	}
	return projects, total, nil
}

func (s *ProjectStore) Update(ctx context.Context, p *domain.Project) error {
	query := s.db.Rebind(`
		UPDATE projects SET name = ?, description = ?, updated_at = ?
		WHERE id = ? AND user_id = ?
	`)
	result, err := s.db.ExecContext(ctx, query,
		p.Name, nullString(p.Description), p.UpdatedAt.UTC(), p.ID, p.UserID)
	if err != nil {
		if IsUniqueViolation(err) {
			return store.ErrProjectNameExists
		}
		return MapError(err, domain.ResourceProject, "update")
	}
	return CheckRowsAffected(result, store.ErrProjectNotFound, domain.ResourceProject, "update")
}

func (s *ProjectStore) Delete(ctx context.Context, userID string, id uuid.UUID) error {
	query := s.db.Rebind(`DELETE FROM projects WHERE id = ? AND user_id = ?`)
	result, err := s.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return MapError(err, domain.ResourceProject, "delete")
	}
	return CheckRowsAffected(result, store.ErrProjectNotFound, domain.ResourceProject, "delete")
}

func (s *ProjectStore) CountTasks(ctx context.Context, projectIDs []uuid.UUID) (map[uuid.UUID]store.ProjectTaskCounts, error) {
	counts := make(map[uuid.UUID]store.ProjectTaskCounts, len(projectIDs))
	if len(projectIDs) == 0 {
		return counts, nil
	}
	for _, id := range projectIDs {
		counts[id] = store.ProjectTaskCounts{}
	}

	query, args, err := sqlx.In(`
		SELECT project_id,
		       COUNT(*) AS total,
		       COALESCE(SUM(CASE WHEN is_completed THEN 1 ELSE 0 END), 0) AS completed
		FROM tasks
		WHERE project_id IN (?)
		GROUP BY project_id
	`, projectIDs)
	if err != nil {
		return nil, store.NewStoreError(domain.ResourceProject, "count_tasks", "failed to build query", err)
	}

	var rows []struct {
		ProjectID uuid.UUID `db:"project_id"`
		Total     int       `db:"total"`
		Completed int       `db:"completed"`
	}
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		return nil, MapError(err, domain.ResourceProject, "count_tasks")
	}
	for _, r := range rows {
		counts[r.ProjectID] = store.ProjectTaskCounts{Total: r.Total, Completed: r.Completed}
	}
	return counts, nil
}

func (s *ProjectStore) WithTx(tx *sqlx.Tx) store.ProjectStore {
	return &ProjectStore{db: tx, logger: s.logger}
}

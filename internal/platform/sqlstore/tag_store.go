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

// TagStore implements store.TagStore.
type TagStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewTagStore creates a TagStore over a database connection or transaction.
func NewTagStore(db store.DBTX, logger *slog.Logger) *TagStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TagStore{
		db:     db,
		logger: logger.With(slog.String("component", "tag_store")),
	}
}

var _ store.TagStore = (*TagStore)(nil)

const tagColumns = `id, user_id, label, color, created_at`

type tagRow struct {
	ID        uuid.UUID      `db:"id"`
	UserID    string         `db:"user_id"`
	Label     string         `db:"label"`
	Color     sql.NullString `db:"color"`
	CreatedAt time.Time      `db:"created_at"`
}

func (r tagRow) toDomain() domain.Tag {
	return domain.Tag{
		ID:        r.ID,
		UserID:    r.UserID,
		Label:     r.Label,
		Color:     stringPtr(r.Color),
		CreatedAt: r.CreatedAt.UTC(),
	}
}

func (s *TagStore) Create(ctx context.Context, t *domain.Tag) error {
	query := s.db.Rebind(`INSERT INTO tags (` + tagColumns + `) VALUES (?, ?, ?, ?, ?)`)
	_, err := s.db.ExecContext(ctx, query, t.ID, t.UserID, t.Label, nullString(t.Color), t.CreatedAt.UTC())
	if err != nil {
		if IsUniqueViolation(err) {
			return store.ErrTagLabelExists
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to create tag",
			slog.String("error", err.Error()),
			slog.String("tag_id", t.ID.String()))
		return MapError(err, domain.ResourceTag, "create")
	}
	return nil
}

func (s *TagStore) GetByID(ctx context.Context, userID string, id uuid.UUID) (*domain.Tag, error) {
	query := s.db.Rebind(`SELECT ` + tagColumns + ` FROM tags WHERE id = ? AND user_id = ?`)
	return s.getOne(ctx, "get", query, id, userID)
}

func (s *TagStore) FindByLabel(ctx context.Context, userID, label string) (*domain.Tag, error) {
	query := s.db.Rebind(`SELECT ` + tagColumns + ` FROM tags WHERE user_id = ? AND LOWER(label) = LOWER(?)`)
	return s.getOne(ctx, "find_by_label", query, userID, label)
}

func (s *TagStore) getOne(ctx context.Context, operation, query string, args ...any) (*domain.Tag, error) {
	var row tagRow
	if err := s.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrTagNotFound
		}
		return nil, MapError(err, domain.ResourceTag, operation)
	}
	t := row.toDomain()
	return &t, nil
}

func (s *TagStore) List(ctx context.Context, userID string, page domain.PageRequest) ([]domain.Tag, int, error) {
	var total int
	if err := s.db.GetContext(ctx, &total, s.db.Rebind(`SELECT COUNT(*) FROM tags WHERE user_id = ?`), userID); err != nil {
		return nil, 0, MapError(err, domain.ResourceTag, "count")
	}

	var rows []tagRow
	query := s.db.Rebind(`
		SELECT ` + tagColumns + ` FROM tags
		WHERE user_id = ?
		ORDER BY LOWER(label) ASC, label ASC
		LIMIT ? OFFSET ?
	`)
	if err := s.db.SelectContext(ctx, &rows, query, userID, page.Limit, page.Offset); err != nil {
		return nil, 0, MapError(err, domain.ResourceTag, "list")
	}

	tags := make([]domain.Tag, 0, len(rows))
	for _, r := range rows {
		tags = append(tags, r.toDomain())
	}
	return tags, total, nil
}

func (s *TagStore) Update(ctx context.Context, t *domain.Tag) error {
	query := s.db.Rebind(`UPDATE tags SET label = ?, color = ? WHERE id = ? AND user_id = ?`)
	result, err := s.db.ExecContext(ctx, query, t.Label, nullString(t.Color), t.ID, t.UserID)
	if err != nil {
		if IsUniqueViolation(err) {
			return store.ErrTagLabelExists
		}
		return MapError(err, domain.ResourceTag, "update")
	}
	return CheckRowsAffected(result, store.ErrTagNotFound, domain.ResourceTag, "update")
}

func (s *TagStore) Delete(ctx context.Context, userID string, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM tags WHERE id = ? AND user_id = ?`), id, userID)
	if err != nil {
		return MapError(err, domain.ResourceTag, "delete")
	}
	return CheckRowsAffected(result, store.ErrTagNotFound, domain.ResourceTag, "delete")
}

func (s *TagStore) CountTasks(ctx context.Context, tagIDs []uuid.UUID) (map[uuid.UUID]int, error) {
	counts := make(map[uuid.UUID]int, len(tagIDs))
	if len(tagIDs) == 0 {
		return counts, nil
	}
	for _, id := range tagIDs {
		counts[id] = 0
	}

	query, args, err := sqlx.In(`
		SELECT tag_id, COUNT(*) AS total
		FROM task_tags
		WHERE tag_id IN (?)
		GROUP BY tag_id
	`, tagIDs)
	if err != nil {
		return nil, store.NewStoreError(domain.ResourceTag, "count_tasks", "failed to build query", err)
	}

	var rows []struct {
		TagID uuid.UUID `db:"tag_id"`
		Total int       `db:"total"`
	}
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		return nil, MapError(err, domain.ResourceTag, "count_tasks")
	}
	for _, r := range rows {
		counts[r.TagID] = r.Total
	}
	return counts, nil
}

func (s *TagStore) WithTx(tx *sqlx.Tx) store.TagStore {
	return &TagStore{db: tx, logger: s.logger}
}

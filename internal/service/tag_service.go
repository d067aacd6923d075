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

// TagService manages a user's tags.
type TagService interface {
	Create(ctx context.Context, userID string, in domain.TagInput) (*domain.TagView, error)
	Get(ctx context.Context, userID string, id uuid.UUID) (*domain.TagView, error)
	List(ctx context.Context, userID string, page domain.PageRequest) (*domain.Page[domain.TagView], error)
	Update(ctx context.Context, userID string, id uuid.UUID, patch domain.TagPatch) (*domain.TagView, error)
	// Delete removes the tag from every task and then the tag itself.
	Delete(ctx context.Context, userID string, id uuid.UUID) error
}

type tagService struct {
	db     *sqlx.DB
	tags   store.TagStore
	logger *slog.Logger
	now    func() time.Time
}

// NewTagService creates a TagService.
func NewTagService(db *sqlx.DB, tags store.TagStore, logger *slog.Logger, opts ...Option) (TagService, error) {
	if db == nil {
		return nil, newDependencyError("db")
	}
	if tags == nil {
		return nil, newDependencyError("tags")
	}
	if logger == nil {
		logger = slog.Default()
	}
	o := applyOptions(opts)
	return &tagService{
		db:     db,
		tags:   tags,
		logger: logger.With(slog.String("component", "tag_service")),
		now:    o.now,
	}, nil
}

func (s *tagService) Create(ctx context.Context, userID string, in domain.TagInput) (*domain.TagView, error) {
	tag, err := domain.NewTag(userID, in, s.now())
	if err != nil {
		return nil, err
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sqlx.Tx) error {
		tags := s.tags.WithTx(tx)
		if err := ensureTagLabelFree(ctx, tags, userID, tag.Label, uuid.Nil); err != nil {
			return err
		}
		return tagWriteError(tags.Create(ctx, tag), tag.Label)
	})
	if err != nil {
		return nil, wrapError("tag", "create", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("tag created",
		slog.String("tag_id", tag.ID.String()),
		slog.String("user_id", userID))
	return s.Get(ctx, userID, tag.ID)
}

func (s *tagService) Get(ctx context.Context, userID string, id uuid.UUID) (*domain.TagView, error) {
	tag, err := s.tags.GetByID(ctx, userID, id)
	if err != nil {
		return nil, wrapError("tag", "get", notFound(err, domain.ResourceTag, id.String()))
	}
	views, err := s.withCounts(ctx, []domain.Tag{*tag})
	if err != nil {
		return nil, wrapError("tag", "get", err)
	}
	return &views[0], nil
}

func (s *tagService) List(ctx context.Context, userID string, page domain.PageRequest) (*domain.Page[domain.TagView], error) {
	if err := page.Validate(); err != nil {
		return nil, err
	}
	tags, total, err := s.tags.List(ctx, userID, page)
	if err != nil {
		return nil, wrapError("tag", "list", err)
	}
	views, err := s.withCounts(ctx, tags)
	if err != nil {
		return nil, wrapError("tag", "list", err)
	}
	return domain.NewPage(views, total, page), nil
}

func (s *tagService) Update(ctx context.Context, userID string, id uuid.UUID, patch domain.TagPatch) (*domain.TagView, error) {
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sqlx.Tx) error {
		tags := s.tags.WithTx(tx)
		tag, err := tags.GetByID(ctx, userID, id)
		if err != nil {
			return notFound(err, domain.ResourceTag, id.String())
		}

		labelChanged, err := tag.Apply(patch)
		if err != nil {
			return err
		}
		if labelChanged {
			if err := ensureTagLabelFree(ctx, tags, userID, tag.Label, tag.ID); err != nil {
				return err
			}
		}
		return tagWriteError(notFound(tags.Update(ctx, tag), domain.ResourceTag, id.String()), tag.Label)
	})
	if err != nil {
		return nil, wrapError("tag", "update", err)
	}
	return s.Get(ctx, userID, id)
}

func (s *tagService) Delete(ctx context.Context, userID string, id uuid.UUID) error {
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sqlx.Tx) error {
		return notFound(s.tags.WithTx(tx).Delete(ctx, userID, id), domain.ResourceTag, id.String())
	})
	if err != nil {
		return wrapError("tag", "delete", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("tag deleted",
		slog.String("tag_id", id.String()),
		slog.String("user_id", userID))
	return nil
}

func (s *tagService) withCounts(ctx context.Context, tags []domain.Tag) ([]domain.TagView, error) {
	ids := make([]uuid.UUID, len(tags))
	for i, t := range tags {
		ids[i] = t.ID
	}
	counts, err := s.tags.CountTasks(ctx, ids)
	if err != nil {
		return nil, err
	}

	views := make([]domain.TagView, len(tags))
	for i, t := range tags {
		views[i] = domain.TagView{Tag: t, TaskCount: counts[t.ID]}
	}
	return views, nil
}

func ensureTagLabelFree(ctx context.Context, tags store.TagStore, userID, label string, self uuid.UUID) error {
	existing, err := tags.FindByLabel(ctx, userID, label)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return nil
	case err != nil:
		return err
	case existing.ID != self:
		return domain.NewDuplicateError(domain.ResourceTag, "label", label)
	}
	return nil
}

func tagWriteError(err error, label string) error {
	if errors.Is(err, store.ErrTagLabelExists) {
		return domain.NewDuplicateError(domain.ResourceTag, "label", label)
	}
	return err
}

package domain

import (
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Paging limits.
const (
	DefaultTaskLimit       = 20
	DefaultProjectPageSize = 20
	DefaultTagPageSize     = 50
	MaxPageSize            = 100
	MaxSearchLength        = 200
)

// TaskSortField is a column tasks can be ordered by.
type TaskSortField string

const (
	SortByCreatedAt TaskSortField = "created_at"
	SortByDeadline  TaskSortField = "deadline"
	SortByPriority  TaskSortField = "priority"
	SortByTitle     TaskSortField = "title"
)

// SortOrder is ascending or descending.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// TaskFilter holds the optional, independent task predicates. Present predicates are ANDed.
type TaskFilter struct {
	IsCompleted *bool
	Priority    *Priority
	// Project unset means any project; set to Null means tasks without a project (the inbox).
	Project        Optional[uuid.UUID]
	DeadlineAfter  *time.Time
	DeadlineBefore *time.Time
	Search         string
	// TagIDs requires a task to carry every listed tag.
	TagIDs []uuid.UUID
}

// TaskSort orders a task listing. Ascending priority lists CRITICAL first.
type TaskSort struct {
	Field TaskSortField
	Order SortOrder
}

// DefaultTaskSort is newest first.
var DefaultTaskSort = TaskSort{Field: SortByCreatedAt, Order: SortDesc}

// PageRequest selects a window of a result set.
type PageRequest struct {
	Offset int
	Limit  int
}

// PageFromNumber converts a legacy 1-based page number and page size to a PageRequest.
func PageFromNumber(page, pageSize int) PageRequest {
	if page < 1 {
		page = 1
	}
	return PageRequest{Offset: (page - 1) * pageSize, Limit: pageSize}
}

// Validate checks the offset and limit bounds.
func (p PageRequest) Validate() error {
	if p.Offset < 0 {
		return NewValidationError("offset", "must not be negative", nil)
	}
	if p.Limit < 1 || p.Limit > MaxPageSize {
		return NewValidationError("limit", "must be between 1 and 100", nil)
	}
	return nil
}

// TaskQuery combines filter, sort and page for a task listing.
type TaskQuery struct {
	Filter TaskFilter
	Sort   TaskSort
	Page   PageRequest
}

// Normalize fills defaults and collapses duplicate tag ids.
func (q TaskQuery) Normalize() TaskQuery {
	if q.Sort.Field == "" {
		q.Sort.Field = DefaultTaskSort.Field
	}
	if q.Sort.Order == "" {
		q.Sort.Order = DefaultTaskSort.Order
	}
	if len(q.Filter.TagIDs) > 0 {
		seen := make(map[uuid.UUID]struct{}, len(q.Filter.TagIDs))
		unique := make([]uuid.UUID, 0, len(q.Filter.TagIDs))
		for _, id := range q.Filter.TagIDs {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			unique = append(unique, id)
		}
		q.Filter.TagIDs = unique
	}
	return q
}

// Validate checks a normalized query.
func (q TaskQuery) Validate() error {
	switch q.Sort.Field {
	case SortByCreatedAt, SortByDeadline, SortByPriority, SortByTitle:
	default:
		return NewValidationError("sort_by", "must be one of created_at, deadline, priority, title", nil)
	}
	switch q.Sort.Order {
	case SortAsc, SortDesc:
	default:
		return NewValidationError("sort_order", "must be asc or desc", nil)
	}
	if q.Filter.Priority != nil {
		if err := validatePriority(*q.Filter.Priority); err != nil {
			return err
		}
	}
	if utf8.RuneCountInString(q.Filter.Search) > MaxSearchLength {
		return NewValidationError("search", "must be at most 200 characters", nil)
	}
	return q.Page.Validate()
}

// Page is one window of a listing together with the size of the whole filtered set.
type Page[T any] struct {
	Items    []T
	Total    int
	Page     int
	PageSize int
	Pages    int
}

// NewPage derives the legacy page number and page count from req.
func NewPage[T any](items []T, total int, req PageRequest) *Page[T] {
	if items == nil {
		items = []T{}
	}
	return &Page[T]{
		Items:    items,
		Total:    total,
		Page:     PageNumber(req.Offset, req.Limit),
		PageSize: req.Limit,
		Pages:    PageCount(total, req.Limit),
	}
}

// PageNumber is offset/limit+1, or 1 when limit is not positive.
func PageNumber(offset, limit int) int {
	if limit <= 0 {
		return 1
	}
	return offset/limit + 1
}

// PageCount is ceil(total/limit), and 1 for an empty set or a non-positive limit.
func PageCount(total, limit int) int {
	if total <= 0 || limit <= 0 {
		return 1
	}
	return (total + limit - 1) / limit
}

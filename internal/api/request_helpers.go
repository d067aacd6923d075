package api

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/tasks-api/internal/api/shared"
	"github.com/phrazzld/tasks-api/internal/domain"
	"github.com/phrazzld/tasks-api/internal/service/auth"
)

// inboxProjectID selects tasks without a project in the project_id filter.
const inboxProjectID = "inbox"

// currentUser returns the user the authentication middleware resolved. Its absence
// means the route was mounted without authentication, which is reported as such.
func currentUser(r *http.Request) (*domain.User, error) {
	user, ok := shared.UserFromContext(r.Context())
	if !ok {
		return nil, auth.ErrMissingToken
	}
	return user, nil
}

// pathUUID extracts and parses a UUID path parameter.
func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	raw := chi.URLParam(r, name)
	if raw == "" {
		return uuid.Nil, domain.NewValidationError(name, "is required", nil)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, domain.NewValidationError(name, "must be a valid UUID", err)
	}
	return id, nil
}

// userAndPathID is a composite helper that extracts both the authenticated user and
// the "id" path parameter. It writes an error response if either extraction fails.
func userAndPathID(w http.ResponseWriter, r *http.Request, errs *ErrorResponder) (*domain.User, uuid.UUID, bool) {
	user, err := currentUser(r)
	if err != nil {
		errs.Respond(w, r, err)
		return nil, uuid.Nil, false
	}
	id, err := pathUUID(r, "id")
	if err != nil {
		errs.Respond(w, r, err)
		return nil, uuid.Nil, false
	}
	return user, id, true
}

// decodeAndValidate decodes the body into v and runs its validate tags.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v any) error {
	if err := shared.DecodeJSON(w, r, v); err != nil {
		return err
	}
	return shared.ValidateRequest(v)
}

// parseTaskQuery reads the GET /tasks query string. Parameters that are present
// but unparseable are validation errors; absent ones leave the filter open.
func parseTaskQuery(values url.Values) (domain.TaskQuery, error) {
	var q domain.TaskQuery

	if raw := values.Get("is_completed"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return q, domain.NewValidationError("is_completed", "must be true or false", err)
		}
		q.Filter.IsCompleted = &v
	}

	if raw := values.Get("priority"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return q, domain.NewValidationError("priority", "must be an integer between 0 and 3", err)
		}
		p := domain.Priority(v)
		q.Filter.Priority = &p
	}

	if raw := values.Get("project_id"); raw != "" {
		if strings.EqualFold(raw, inboxProjectID) {
			q.Filter.Project = domain.Null[uuid.UUID]()
		} else {
			id, err := uuid.Parse(raw)
			if err != nil {
				return q, domain.NewValidationError("project_id", "must be a UUID or \"inbox\"", err)
			}
			q.Filter.Project = domain.Some(id)
		}
	}

	for _, raw := range values["tag_ids"] {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := uuid.Parse(part)
			if err != nil {
				return q, domain.NewValidationError("tag_ids", "must be a list of UUIDs", err)
			}
			q.Filter.TagIDs = append(q.Filter.TagIDs, id)
		}
	}

	var err error
	if q.Filter.DeadlineAfter, err = parseTimeParam(values, "deadline_after"); err != nil {
		return q, err
	}
	if q.Filter.DeadlineBefore, err = parseTimeParam(values, "deadline_before"); err != nil {
		return q, err
	}

	q.Filter.Search = values.Get("search")
	q.Sort.Field = domain.TaskSortField(values.Get("sort_by"))
	q.Sort.Order = domain.SortOrder(strings.ToLower(values.Get("sort_order")))

	offset, err := intParam(values, "offset", 0)
	if err != nil {
		return q, err
	}
	limit, err := intParam(values, "limit", domain.DefaultTaskLimit)
	if err != nil {
		return q, err
	}
	q.Page = domain.PageRequest{Offset: offset, Limit: limit}
	return q, nil
}

// parsePageRequest reads offset/limit or the legacy page/page_size pair; page wins
// when both are present.
func parsePageRequest(values url.Values, defaultSize int) (domain.PageRequest, error) {
	if values.Has("page") || values.Has("page_size") {
		page, err := intParam(values, "page", 1)
		if err != nil {
			return domain.PageRequest{}, err
		}
		if page < 1 {
			return domain.PageRequest{}, domain.NewValidationError("page", "must be at least 1", nil)
		}
		size, err := intParam(values, "page_size", defaultSize)
		if err != nil {
			return domain.PageRequest{}, err
		}
		if size < 1 || size > domain.MaxPageSize {
			return domain.PageRequest{}, domain.NewValidationError("page_size", "must be between 1 and 100", nil)
		}
		return domain.PageFromNumber(page, size), nil
	}

	offset, err := intParam(values, "offset", 0)
	if err != nil {
		return domain.PageRequest{}, err
	}
	limit, err := intParam(values, "limit", defaultSize)
	if err != nil {
		return domain.PageRequest{}, err
	}
	return domain.PageRequest{Offset: offset, Limit: limit}, nil
}

func intParam(values url.Values, name string, fallback int) (int, error) {
	raw := values.Get(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.NewValidationError(name, "must be an integer", err)
	}
	return v, nil
}

func parseTimeParam(values url.Values, name string) (*time.Time, error) {
	raw := values.Get(name)
	if raw == "" {
		return nil, nil
	}
	// An unescaped "+" in the offset arrives as a space.
	t, err := time.Parse(time.RFC3339, strings.ReplaceAll(raw, " ", "+"))
	if err != nil {
		return nil, domain.NewValidationError(name, "must be an RFC 3339 timestamp", err)
	}
	return &t, nil
}

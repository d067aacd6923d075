package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/tasks-api/internal/api/shared"
	"github.com/phrazzld/tasks-api/internal/domain"
	"github.com/phrazzld/tasks-api/internal/service"
)

// TagHandler handles tag-related HTTP requests
type TagHandler struct {
	tags   service.TagService
	errs   *ErrorResponder
	logger *slog.Logger
}

// NewTagHandler creates a new TagHandler
func NewTagHandler(tags service.TagService, errs *ErrorResponder, logger *slog.Logger) *TagHandler {
	if tags == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("tag service cannot be nil for TagHandler")
	}
	if errs == nil {
		errs = NewErrorResponder(false)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TagHandler{
		tags:   tags,
		errs:   errs,
		logger: logger.With(slog.String("component", "tag_handler")),
	}
}

// ListTags handles GET /tags
func (h *TagHandler) ListTags(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		h.errs.Respond(w, r, err)
		return
	}
	req, err := parsePageRequest(r.URL.Query(), domain.DefaultTagPageSize)
	if err != nil {
		h.errs.Respond(w, r, err)
		return
	}

	page, err := h.tags.List(r.Context(), user.ID, req)
	if err != nil {
		h.errs.Respond(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, toListResponse(page, tagToResponse))
}

// CreateTag handles POST /tags
func (h *TagHandler) CreateTag(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		h.errs.Respond(w, r, err)
		return
	}
	var req CreateTagRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		h.errs.Respond(w, r, err)
		return
	}

	tag, err := h.tags.Create(r.Context(), user.ID, domain.TagInput{Label: req.Label, Color: req.Color})
	if err != nil {
		h.errs.Respond(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, tagToResponse(*tag))
}

// GetTag handles GET /tags/{id}
func (h *TagHandler) GetTag(w http.ResponseWriter, r *http.Request) {
	user, id, ok := userAndPathID(w, r, h.errs)
	if !ok {
		return
	}
	tag, err := h.tags.Get(r.Context(), user.ID, id)
	if err != nil {
		h.errs.Respond(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, tagToResponse(*tag))
}

// UpdateTag handles PATCH /tags/{id}. An explicit null colour clears it.
func (h *TagHandler) UpdateTag(w http.ResponseWriter, r *http.Request) {
	user, id, ok := userAndPathID(w, r, h.errs)
	if !ok {
		return
	}
	var patch domain.TagPatch
	if err := shared.DecodeJSON(w, r, &patch); err != nil {
		h.errs.Respond(w, r, err)
		return
	}

	tag, err := h.tags.Update(r.Context(), user.ID, id, patch)
	if err != nil {
		h.errs.Respond(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, tagToResponse(*tag))
}

// DeleteTag handles DELETE /tags/{id}
func (h *TagHandler) DeleteTag(w http.ResponseWriter, r *http.Request) {
	user, id, ok := userAndPathID(w, r, h.errs)
	if !ok {
		return
	}
	if err := h.tags.Delete(r.Context(), user.ID, id); err != nil {
		h.errs.Respond(w, r, err)
		return
	}
	shared.RespondWithNoContent(w)
}

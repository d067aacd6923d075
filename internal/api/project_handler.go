package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/tasks-api/internal/api/shared"
	"github.com/phrazzld/tasks-api/internal/domain"
	"github.com/phrazzld/tasks-api/internal/service"
)

// ProjectHandler handles project-related HTTP requests
type ProjectHandler struct {
	projects service.ProjectService
	errs     *ErrorResponder
	logger   *slog.Logger
}

// NewProjectHandler creates a new ProjectHandler
func NewProjectHandler(projects service.ProjectService, errs *ErrorResponder, logger *slog.Logger) *ProjectHandler {
	if projects == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("project service cannot be nil for ProjectHandler")
	}
	if errs == nil {
		errs = NewErrorResponder(false)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ProjectHandler{
		projects: projects,
		errs:     errs,
		logger:   logger.With(slog.String("component", "project_handler")),
	}
}

// ListProjects handles GET /projects
func (h *ProjectHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		h.errs.Respond(w, r, err)
		return
	}
	req, err := parsePageRequest(r.URL.Query(), domain.DefaultProjectPageSize)
	if err != nil {
		h.errs.Respond(w, r, err)
		return
	}

	page, err := h.projects.List(r.Context(), user.ID, req)
	if err != nil {
		h.errs.Respond(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, toListResponse(page, projectToResponse))
}

// CreateProject handles POST /projects
func (h *ProjectHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		h.errs.Respond(w, r, err)
		return
	}
	var req CreateProjectRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		h.errs.Respond(w, r, err)
		return
	}

	project, err := h.projects.Create(r.Context(), user.ID, domain.ProjectInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		h.errs.Respond(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, projectToResponse(*project))
}

// GetProject handles GET /projects/{id}
func (h *ProjectHandler) GetProject(w http.ResponseWriter, r *http.Request) {
	user, id, ok := userAndPathID(w, r, h.errs)
	if !ok {
		return
	}
	project, err := h.projects.Get(r.Context(), user.ID, id)
	if err != nil {
		h.errs.Respond(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, projectToResponse(*project))
}

// UpdateProject handles PATCH /projects/{id}
func (h *ProjectHandler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	user, id, ok := userAndPathID(w, r, h.errs)
	if !ok {
		return
	}
	var patch domain.ProjectPatch
	if err := shared.DecodeJSON(w, r, &patch); err != nil {
		h.errs.Respond(w, r, err)
		return
	}

	project, err := h.projects.Update(r.Context(), user.ID, id, patch)
	if err != nil {
		h.errs.Respond(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, projectToResponse(*project))
}

// DeleteProject handles DELETE /projects/{id}. Its tasks move to the inbox.
func (h *ProjectHandler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	user, id, ok := userAndPathID(w, r, h.errs)
	if !ok {
		return
	}
	if err := h.projects.Delete(r.Context(), user.ID, id); err != nil {
		h.errs.Respond(w, r, err)
		return
	}
	shared.RespondWithNoContent(w)
}

package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/tasks-api/internal/api/shared"
	"github.com/phrazzld/tasks-api/internal/domain"
	"github.com/phrazzld/tasks-api/internal/platform/logger"
	"github.com/phrazzld/tasks-api/internal/service"
)

// TaskHandler handles task-related HTTP requests
type TaskHandler struct {
	tasks  service.TaskService
	errs   *ErrorResponder
	logger *slog.Logger
}

// NewTaskHandler creates a new TaskHandler
func NewTaskHandler(tasks service.TaskService, errs *ErrorResponder, logger *slog.Logger) *TaskHandler {
	if tasks == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("task service cannot be nil for TaskHandler")
	}
	if errs == nil {
		errs = NewErrorResponder(false)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskHandler{
		tasks:  tasks,
		errs:   errs,
		logger: logger.With(slog.String("component", "task_handler")),
	}
}

// ListTasks handles GET /tasks
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		h.errs.Respond(w, r, err)
		return
	}
	q, err := parseTaskQuery(r.URL.Query())
	if err != nil {
		h.errs.Respond(w, r, err)
		return
	}

	page, err := h.tasks.List(r.Context(), user.ID, q)
	if err != nil {
		h.errs.Respond(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, toListResponse(page, taskToResponse))
}

// CreateTask handles POST /tasks
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	user, err := currentUser(r)
	if err != nil {
		h.errs.Respond(w, r, err)
		return
	}
	var req CreateTaskRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		h.errs.Respond(w, r, err)
		return
	}

	task, err := h.tasks.Create(r.Context(), user.ID, req.toInput())
	if err != nil {
		h.errs.Respond(w, r, err)
		return
	}
	log.Debug("task created via API", slog.String("task_id", task.ID.String()))
	shared.RespondWithJSON(w, r, http.StatusCreated, taskToResponse(*task))
}

// GetTask handles GET /tasks/{id}
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	user, id, ok := userAndPathID(w, r, h.errs)
	if !ok {
		return
	}
	task, err := h.tasks.Get(r.Context(), user.ID, id)
	if err != nil {
		h.errs.Respond(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(*task))
}

// UpdateTask handles PATCH /tasks/{id}. Fields absent from the body are left
// unchanged; an explicit null clears the optional ones.
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	user, id, ok := userAndPathID(w, r, h.errs)
	if !ok {
		return
	}
	var patch domain.TaskPatch
	if err := shared.DecodeJSON(w, r, &patch); err != nil {
		h.errs.Respond(w, r, err)
		return
	}

	task, err := h.tasks.Update(r.Context(), user.ID, id, patch)
	if err != nil {
		h.errs.Respond(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(*task))
}

// DeleteTask handles DELETE /tasks/{id}
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	user, id, ok := userAndPathID(w, r, h.errs)
	if !ok {
		return
	}
	if err := h.tasks.Delete(r.Context(), user.ID, id); err != nil {
		h.errs.Respond(w, r, err)
		return
	}
	shared.RespondWithNoContent(w)
}

// ToggleComplete handles PATCH /tasks/{id}/complete
func (h *TaskHandler) ToggleComplete(w http.ResponseWriter, r *http.Request) {
	user, id, ok := userAndPathID(w, r, h.errs)
	if !ok {
		return
	}
	result, err := h.tasks.ToggleComplete(r.Context(), user.ID, id)
	if err != nil {
		h.errs.Respond(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, TaskToggleResponse{
		ID:          result.ID,
		IsCompleted: result.IsCompleted,
		UpdatedAt:   result.UpdatedAt,
	})
}

// AddTag handles POST /tasks/{id}/tags/{tag_id}
func (h *TaskHandler) AddTag(w http.ResponseWriter, r *http.Request) {
	user, id, ok := userAndPathID(w, r, h.errs)
	if !ok {
		return
	}
	tagID, err := pathUUID(r, "tag_id")
	if err != nil {
		h.errs.Respond(w, r, err)
		return
	}
	task, err := h.tasks.AddTag(r.Context(), user.ID, id, tagID)
	if err != nil {
		h.errs.Respond(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(*task))
}

// RemoveTag handles DELETE /tasks/{id}/tags/{tag_id}
func (h *TaskHandler) RemoveTag(w http.ResponseWriter, r *http.Request) {
	user, id, ok := userAndPathID(w, r, h.errs)
	if !ok {
		return
	}
	tagID, err := pathUUID(r, "tag_id")
	if err != nil {
		h.errs.Respond(w, r, err)
		return
	}
	task, err := h.tasks.RemoveTag(r.Context(), user.ID, id, tagID)
	if err != nil {
		h.errs.Respond(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(*task))
}

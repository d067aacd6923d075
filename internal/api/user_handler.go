package api

import (
	"net/http"

	"github.com/phrazzld/tasks-api/internal/api/shared"
)

// UserHandler serves the authenticated user's own profile.
type UserHandler struct {
	errs *ErrorResponder
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(errs *ErrorResponder) *UserHandler {
	if errs == nil {
		errs = NewErrorResponder(false)
	}
	return &UserHandler{errs: errs}
}

// GetCurrentUser handles GET /users/me. The user was resolved, and provisioned
// if new, by the authentication middleware.
func (h *UserHandler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		h.errs.Respond(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, userToResponse(user))
}

package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/tasks-api/internal/api/shared"
	"github.com/phrazzld/tasks-api/internal/domain"
	"github.com/phrazzld/tasks-api/internal/redact"
	"github.com/phrazzld/tasks-api/internal/service/auth"
	"github.com/phrazzld/tasks-api/internal/store"
)

// Error codes carried in the error envelope.
const (
	CodeNotFound       = "RESOURCE_NOT_FOUND"
	CodeDuplicate      = "DUPLICATE_RESOURCE"
	CodeValidation     = "VALIDATION_ERROR"
	CodeAuthentication = "AUTHENTICATION_ERROR"
	CodeDatabase       = "DATABASE_ERROR"
	CodeInternal       = "INTERNAL_SERVER_ERROR"
	CodeBadRequest     = "BAD_REQUEST"
)

// ErrorResponder translates errors into HTTP error envelopes. It is the only
// place that decides status codes.
type ErrorResponder struct {
	// Debug exposes redacted internal error text in the details of 5xx responses.
	Debug bool
}

// NewErrorResponder creates an ErrorResponder.
func NewErrorResponder(debug bool) *ErrorResponder {
	return &ErrorResponder{Debug: debug}
}

// Respond writes the error envelope for err.
func (e *ErrorResponder) Respond(w http.ResponseWriter, r *http.Request, err error) {
	status, detail := MapError(err, e.Debug)
	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", "Bearer")
	}
	shared.RespondWithError(w, r, status, detail, redact.Error(err))
}

// MapErrorToStatusCode maps an error to its HTTP status code.
func MapErrorToStatusCode(err error) int {
	status, _ := MapError(err, false)
	return status
}

// MapError maps an error to its HTTP status and envelope body. Internal error
// text only reaches details when debug is set, and then only redacted.
func MapError(err error, debug bool) (int, shared.ErrorDetail) {
	var (
		notFound   *domain.NotFoundError
		duplicate  *domain.DuplicateError
		validation *domain.ValidationError
		fieldErrs  validator.ValidationErrors
	)

	switch {
	case err == nil:
		return http.StatusInternalServerError, shared.ErrorDetail{
			Code:    CodeInternal,
			Message: "An unexpected error occurred",
		}

	case errors.Is(err, shared.ErrMalformedBody):
		return http.StatusBadRequest, shared.ErrorDetail{
			Code:    CodeBadRequest,
			Message: "Request body must be a valid JSON object",
		}

	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized, shared.ErrorDetail{
			Code:    CodeAuthentication,
			Message: authenticationMessage(err),
		}

	case errors.As(err, &notFound):
		return http.StatusNotFound, shared.ErrorDetail{
			Code:    CodeNotFound,
			Message: fmt.Sprintf("%s not found", resourceLabel(notFound.Resource)),
			Details: map[string]any{"resource": notFound.Resource, "resource_id": notFound.ID},
		}

	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, shared.ErrorDetail{
			Code:    CodeNotFound,
			Message: "Resource not found",
		}

	case errors.As(err, &duplicate):
		return http.StatusConflict, shared.ErrorDetail{
			Code:    CodeDuplicate,
			Message: fmt.Sprintf("%s with this %s already exists", resourceLabel(duplicate.Resource), duplicate.Field),
			Details: map[string]any{"resource": duplicate.Resource, "field": duplicate.Field},
		}

	case errors.Is(err, domain.ErrDuplicate):
		return http.StatusConflict, shared.ErrorDetail{
			Code:    CodeDuplicate,
			Message: "Resource already exists",
		}

	case errors.As(err, &fieldErrs):
		return http.StatusUnprocessableEntity, shared.ErrorDetail{
			Code:    CodeValidation,
			Message: "Request validation failed",
			Details: map[string]any{"errors": describeFieldErrors(fieldErrs)},
		}

	case errors.As(err, &validation):
		detail := shared.ErrorDetail{
			Code:    CodeValidation,
			Message: validation.Error(),
		}
		if validation.Field != "" {
			detail.Details = map[string]any{"field": validation.Field}
		}
		return http.StatusUnprocessableEntity, detail

	case errors.Is(err, domain.ErrValidation):
		return http.StatusUnprocessableEntity, shared.ErrorDetail{
			Code:    CodeValidation,
			Message: "Validation failed",
		}

	case errors.Is(err, auth.ErrKeySetUnavailable):
		return http.StatusServiceUnavailable, withDebugDetails(shared.ErrorDetail{
			Code:    CodeDatabase,
			Message: "Authentication service is temporarily unavailable",
		}, err, debug)

	case errors.Is(err, store.ErrStoreFailure):
		return http.StatusServiceUnavailable, withDebugDetails(shared.ErrorDetail{
			Code:    CodeDatabase,
			Message: "A database error occurred",
		}, err, debug)

	default:
		return http.StatusInternalServerError, withDebugDetails(shared.ErrorDetail{
			Code:    CodeInternal,
			Message: "An unexpected error occurred",
		}, err, debug)
	}
}

// authenticationMessage only distinguishes missing, expired and invalid tokens.
func authenticationMessage(err error) string {
	switch {
	case errors.Is(err, auth.ErrMissingToken):
		return "Authentication token is missing"
	case errors.Is(err, auth.ErrExpiredToken):
		return "Authentication token has expired"
	default:
		return "Invalid authentication token"
	}
}

func resourceLabel(resource string) string {
	switch resource {
	case domain.ResourceTask:
		return "Task"
	case domain.ResourceProject:
		return "Project"
	case domain.ResourceTag:
		return "Tag"
	case domain.ResourceUser:
		return "User"
	case domain.ResourceTaskTag:
		return "Tag on task"
	default:
		return "Resource"
	}
}

func withDebugDetails(detail shared.ErrorDetail, err error, debug bool) shared.ErrorDetail {
	if debug {
		detail.Details = map[string]any{"error": redact.Error(err)}
	}
	return detail
}

type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func describeFieldErrors(errs validator.ValidationErrors) []fieldError {
	out := make([]fieldError, 0, len(errs))
	for _, fe := range errs {
		out = append(out, fieldError{Field: fe.Field(), Message: validationTagMessage(fe)})
	}
	return out
}

// validationTagMessage maps validation tags to user-friendly error messages
func validationTagMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min", "gte":
		return "must be at least " + fe.Param()
	case "max", "lte":
		return "must be at most " + fe.Param()
	case "oneof":
		return "must be one of " + fe.Param()
	case "hexcolor":
		return "must be a hex colour like #FF5733"
	default:
		return "is invalid"
	}
}

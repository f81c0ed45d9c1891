package httpx

import (
	"errors"
	"net/http"

	"github.com/vinyldesk/vinyldesk/internal/shared"
)

// Sentinel errors shared by handler layers.
var (
	ErrValidation = errors.New("validation failed")
)

// RespondError maps generic domain errors to HTTP responses. Handlers with a
// richer taxonomy (auth, rbac) map their own typed errors before falling back
// to this.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, shared.ErrDuplicate):
		Problem(w, http.StatusConflict, "Duplicate", err.Error())
	case errors.Is(err, ErrValidation):
		Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case shared.IsTransient(err):
		Problem(w, http.StatusServiceUnavailable, "Service Unavailable", "store unavailable, retry later")
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

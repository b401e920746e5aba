package httpadapter

import (
	"net/http"

	"github.com/mkrashin/document-insight/internal/core/domain"
)

func mapErrorToHTTPStatus(err error) int {
	switch {
	case domain.IsKind(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrAccessDenied):
		return http.StatusForbidden
	case domain.IsKind(err, domain.ErrNotFound):
		return http.StatusNotFound
	case domain.IsKind(err, domain.ErrUpstream):
		return http.StatusBadGateway
	case domain.IsKind(err, domain.ErrTemporary):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

var genericStatusMessages = map[int]string{
	http.StatusBadRequest:          "invalid request",
	http.StatusForbidden:           "access denied",
	http.StatusNotFound:            "not found",
	http.StatusBadGateway:          "upstream service failure",
	http.StatusServiceUnavailable:  "temporarily unavailable",
	http.StatusInternalServerError: "internal error",
}

// writeError hides error detail unless dev mode is on; production callers
// get a stable generic message per status.
func (rt *Router) writeError(w http.ResponseWriter, err error) {
	status := mapErrorToHTTPStatus(err)
	message := genericStatusMessages[status]
	if rt.cfg.DevMode {
		message = err.Error()
	}
	writeJSON(w, status, map[string]string{"error": message})
}

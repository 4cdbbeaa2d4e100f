package http

import (
	"errors"
	"net/http"

	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/observability"
	"github.com/aretw0/waypoint/pkg/session"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// statusFor maps an error to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, session.ErrSessionBusy),
		errors.Is(err, domain.ErrDuplicateKey),
		errors.Is(err, domain.ErrDuplicateEdge),
		errors.Is(err, domain.ErrDuplicateMapping),
		errors.Is(err, domain.ErrDuplicateID):
		return http.StatusConflict
	case errors.Is(err, session.ErrSessionNotFound),
		errors.Is(err, domain.ErrJourneyNotFound),
		errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrSelfLoop),
		errors.Is(err, domain.ErrDanglingReference),
		errors.Is(err, domain.ErrMissingRequiredField),
		errors.Is(err, domain.ErrInvalidValue),
		errors.Is(err, domain.ErrIndexOutOfRange):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func codeFor(err error) string {
	switch {
	case errors.Is(err, session.ErrSessionBusy):
		return "session_busy"
	case errors.Is(err, session.ErrSessionNotFound):
		return "session_not_found"
	case errors.Is(err, domain.ErrJourneyNotFound):
		return "journey_not_found"
	}
	return observability.Outcome(err)
}

// fail writes err with the status and code derived from it.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("Request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	} else {
		s.logger.Debug("Request rejected", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error(), Code: codeFor(err)})
}

package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"letterbox/internal/lb"
)

type errorResponse struct {
	Message string     `json:"message"`
	OpenAt  *time.Time `json:"openAt,omitempty"`
}

func (s *Server) respondWithJSON(w http.ResponseWriter, code int, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		s.logger.Error("failed to encode response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(data)
}

func (s *Server) respondWithError(w http.ResponseWriter, code int, msg string, err error) {
	if err != nil && code >= http.StatusInternalServerError {
		s.logger.Error(msg, "error", err)
	}
	s.respondWithJSON(w, code, errorResponse{Message: msg})
}

// respondWithServiceError maps service errors onto status codes.
// Internal details never reach the client.
func (s *Server) respondWithServiceError(w http.ResponseWriter, err error) {
	var gate *lb.NotYetOpenError
	switch {
	case errors.As(err, &gate):
		openAt := gate.OpenAt
		s.respondWithJSON(w, http.StatusForbidden, errorResponse{Message: "this letter cannot be opened yet", OpenAt: &openAt})
	case errors.Is(err, lb.ErrValidation):
		s.respondWithError(w, http.StatusBadRequest, err.Error(), err)
	case errors.Is(err, lb.ErrNotFound):
		s.respondWithError(w, http.StatusNotFound, "not found", err)
	default:
		s.respondWithError(w, http.StatusInternalServerError, "internal error", err)
	}
}

package endpoints

import (
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"

	"github.com/jackzampolin/postgen/internal/corpus"
	"github.com/jackzampolin/postgen/internal/post"
	"github.com/jackzampolin/postgen/internal/processor"
	"github.com/jackzampolin/postgen/internal/prompts"
	"github.com/jackzampolin/postgen/internal/providers"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// ErrorResponse is a standard error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

// writeErr maps err to a status code. Collaborator failures are reported
// with a short user-facing message rather than the raw provider error.
func writeErr(w http.ResponseWriter, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusBadGateway {
		msg = providers.FriendlyMessage(err)
	}
	writeError(w, status, msg)
}

func statusFor(err error) int {
	var formatErr *corpus.FormatError
	var validationErr *post.ValidationError
	var collabErr *providers.CollaboratorError
	switch {
	case errors.As(err, &formatErr), errors.As(err, &validationErr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, processor.ErrInvalidName):
		return http.StatusBadRequest
	case errors.Is(err, fs.ErrNotExist), errors.Is(err, prompts.ErrTemplateNotFound):
		return http.StatusNotFound
	case errors.As(err, &collabErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// decodeBody decodes a JSON request body into v, writing a 400 on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

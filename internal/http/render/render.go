package render

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/MrJamesThe3rd/fundflow/internal/rowstore"
	"github.com/MrJamesThe3rd/fundflow/internal/schema"
	"github.com/MrJamesThe3rd/fundflow/internal/sequence"
	"github.com/MrJamesThe3rd/fundflow/internal/workflow"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
	Field string `json:"field,omitempty"`
}

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// Error writes err with the status its kind maps to.
func Error(w http.ResponseWriter, err error) {
	var verr *schema.ValidationError

	switch {
	case errors.As(err, &verr):
		JSON(w, http.StatusBadRequest, errorResponse{Error: err.Error(), Code: "invalid", Field: verr.Field})
	case errors.Is(err, workflow.ErrNotFound):
		JSON(w, http.StatusNotFound, errorResponse{Error: err.Error(), Code: "not_found"})
	case errors.Is(err, workflow.ErrInvalidTransition):
		JSON(w, http.StatusConflict, errorResponse{Error: err.Error(), Code: "invalid_transition"})
	case errors.Is(err, workflow.ErrConflict), errors.Is(err, sequence.ErrSequencerConflict):
		JSON(w, http.StatusConflict, errorResponse{Error: err.Error(), Code: "conflict"})
	case errors.Is(err, rowstore.ErrUnavailable):
		JSON(w, http.StatusServiceUnavailable, errorResponse{Error: err.Error(), Code: "store_unavailable"})
	default:
		slog.Error("request failed", "error", err)
		JSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error", Code: "internal"})
	}
}

// BadRequest reports malformed input that never reached the engine.
func BadRequest(w http.ResponseWriter, msg string) {
	JSON(w, http.StatusBadRequest, errorResponse{Error: msg, Code: "bad_request"})
}

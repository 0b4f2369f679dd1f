package middleware

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"gorm.io/gorm"

	"github.com/defectlens/defectlens/internal/database"
)

// ErrBadRequest marks client errors so WriteError maps them to 400.
var ErrBadRequest = errors.New("bad request")

// ErrorResponse is the JSON body written for failed requests.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// WriteError writes a JSON error response with a status derived from
// the error type.
func WriteError(w http.ResponseWriter, r *http.Request, err error, logger *slog.Logger) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, database.ErrNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		status = http.StatusNotFound
	case errors.Is(err, ErrBadRequest):
		status = http.StatusBadRequest
	}

	if logger != nil {
		logger.Error("request error",
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.Int("status", status),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
	}

	WriteJSON(w, status, ErrorResponse{Success: false, Error: err.Error()})
}

// WriteJSON writes a JSON response.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

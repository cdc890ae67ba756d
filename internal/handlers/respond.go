package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/clipstream/backend/internal/auth"
	"github.com/clipstream/backend/internal/logging"
	"github.com/clipstream/backend/internal/repositories"
)

// apiResponse is the uniform JSON envelope every handler returns.
type apiResponse struct {
	StatusCode int    `json:"statusCode"`
	Success    bool   `json:"success"`
	Data       any    `json:"data"`
	Message    string `json:"message"`
}

func respondJSON(ctx context.Context, w http.ResponseWriter, status int, data any, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	payload := apiResponse{
		StatusCode: status,
		Success:    status < 400,
		Data:       data,
		Message:    message,
	}

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.FromContext(ctx).Error("encode response body", "status", status, "error", err)
		return
	}

	logger := logging.FromContext(ctx)
	switch {
	case status >= http.StatusInternalServerError:
		logger.Error("request failed", "status", status, "message", message)
	case status >= http.StatusBadRequest:
		logger.Warn("request returned client error", "status", status, "message", message)
	}
}

// respondError translates the enumerated error kinds into envelope statuses.
// Unrecognized errors are reported as 500 without leaking internals.
func respondError(ctx context.Context, w http.ResponseWriter, err error, message string) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, repositories.ErrNotFound), errors.Is(err, auth.ErrIdentityNotFound):
		status = http.StatusNotFound
	case errors.Is(err, repositories.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrStaleToken),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrNotOwner):
		status = http.StatusUnauthorized
	}

	if status == http.StatusInternalServerError {
		logging.FromContext(ctx).Error("internal error", "error", err)
	}

	respondJSON(ctx, w, status, nil, message)
}

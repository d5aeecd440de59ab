// Package handler provides HTTP request handlers.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/mealdeck/mealdeck/internal/handler/dto"
	"github.com/mealdeck/mealdeck/internal/service"
	"github.com/mealdeck/mealdeck/internal/validation"
)

// Handler provides the root and fallback endpoints.
type Handler struct{}

// New creates a new Handler instance.
func New() *Handler {
	return &Handler{}
}

// Hello is a simple hello endpoint.
// GET /
func (h *Handler) Hello(w http.ResponseWriter, r *http.Request) {
	response := map[string]string{
		"message": "Hello from Mealdeck!",
		"version": "0.1.0",
	}
	writeJSON(w, http.StatusOK, response)
}

// NotFound handles 404 responses.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "NOT_FOUND", "Resource not found")
}

// MethodNotAllowed handles 405 responses.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed")
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		_ = err
	}
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// handleServiceError maps service errors to HTTP responses.
// Errors without a mapping are logged and answered with an opaque 500.
func handleServiceError(logger *slog.Logger, w http.ResponseWriter, err error) {
	var verr *validation.Error
	if errors.As(err, &verr) {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{
			Error:  "Validation failed",
			Code:   "VALIDATION_ERROR",
			Fields: verr.Fields,
		})
		return
	}

	switch {
	case errors.Is(err, service.ErrEmailExists):
		writeError(w, http.StatusBadRequest, "EMAIL_TAKEN", "Email already registered")
	case errors.Is(err, service.ErrInvalidCredentials):
		writeError(w, http.StatusBadRequest, "INVALID_CREDENTIALS", "Unable to authenticate with provided credentials")
	case errors.Is(err, service.ErrNameTaken):
		writeError(w, http.StatusBadRequest, "NAME_TAKEN", "Name already in use")
	case errors.Is(err, service.ErrNotAnImage):
		writeError(w, http.StatusBadRequest, "INVALID_IMAGE", "Uploaded file is not a supported image")
	case errors.Is(err, service.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Resource not found")
	case errors.Is(err, service.ErrTagNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Resource not found")
	case errors.Is(err, service.ErrIngredientNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Resource not found")
	case errors.Is(err, service.ErrRecipeNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Resource not found")
	default:
		logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}

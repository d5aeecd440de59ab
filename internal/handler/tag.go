package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mealdeck/mealdeck/internal/auth"
	"github.com/mealdeck/mealdeck/internal/handler/dto"
	"github.com/mealdeck/mealdeck/internal/service"
)

// TagHandler handles HTTP requests for tag operations.
type TagHandler struct {
	svc    *service.TagService
	logger *slog.Logger
}

// NewTagHandler creates a new TagHandler.
func NewTagHandler(svc *service.TagService, logger *slog.Logger) *TagHandler {
	return &TagHandler{
		svc:    svc,
		logger: logger,
	}
}

// List handles GET /api/v1/tags.
// With ?assigned_only=1 only tags attached to a recipe are returned.
func (h *TagHandler) List(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.MustAuthFromContext(r.Context())
	assignedOnly := parseBoolParam(r.URL.Query().Get("assigned_only"))

	tags, err := h.svc.List(r.Context(), authCtx.UserID, assignedOnly)
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToTagResponses(tags))
}

// Create handles POST /api/v1/tags.
func (h *TagHandler) Create(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.MustAuthFromContext(r.Context())

	var req dto.TaxonomyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	tag, err := h.svc.Create(r.Context(), authCtx.UserID, service.TaxonomyInput{Name: req.Name})
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}

	h.logger.Info("tag_created", "tag_id", tag.ID, "user_id", authCtx.UserID)

	writeJSON(w, http.StatusCreated, dto.ToTagResponse(tag))
}

// Get handles GET /api/v1/tags/{id}.
func (h *TagHandler) Get(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.MustAuthFromContext(r.Context())
	id := chi.URLParam(r, "id")

	tag, err := h.svc.Get(r.Context(), id, authCtx.UserID)
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToTagResponse(tag))
}

// Update handles PATCH /api/v1/tags/{id}.
func (h *TagHandler) Update(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.MustAuthFromContext(r.Context())
	id := chi.URLParam(r, "id")

	var req dto.TaxonomyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	tag, err := h.svc.Update(r.Context(), id, authCtx.UserID, service.TaxonomyInput{Name: req.Name})
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}

	h.logger.Info("tag_updated", "tag_id", tag.ID, "user_id", authCtx.UserID)

	writeJSON(w, http.StatusOK, dto.ToTagResponse(tag))
}

// Delete handles DELETE /api/v1/tags/{id}.
func (h *TagHandler) Delete(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.MustAuthFromContext(r.Context())
	id := chi.URLParam(r, "id")

	if err := h.svc.Delete(r.Context(), id, authCtx.UserID); err != nil {
		handleServiceError(h.logger, w, err)
		return
	}

	h.logger.Info("tag_deleted", "tag_id", id, "user_id", authCtx.UserID)

	w.WriteHeader(http.StatusNoContent)
}

// parseBoolParam interprets a query flag the permissive way: "1" and
// "true" enable it, anything else does not.
func parseBoolParam(value string) bool {
	return value == "1" || value == "true"
}

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

// IngredientHandler handles HTTP requests for ingredient operations.
type IngredientHandler struct {
	svc    *service.IngredientService
	logger *slog.Logger
}

// NewIngredientHandler creates a new IngredientHandler.
func NewIngredientHandler(svc *service.IngredientService, logger *slog.Logger) *IngredientHandler {
	return &IngredientHandler{
		svc:    svc,
		logger: logger,
	}
}

// List handles GET /api/v1/ingredients.
// With ?assigned_only=1 only ingredients attached to a recipe are returned.
func (h *IngredientHandler) List(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.MustAuthFromContext(r.Context())
	assignedOnly := parseBoolParam(r.URL.Query().Get("assigned_only"))

	ingredients, err := h.svc.List(r.Context(), authCtx.UserID, assignedOnly)
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToIngredientResponses(ingredients))
}

// Create handles POST /api/v1/ingredients.
func (h *IngredientHandler) Create(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.MustAuthFromContext(r.Context())

	var req dto.TaxonomyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	ingredient, err := h.svc.Create(r.Context(), authCtx.UserID, service.TaxonomyInput{Name: req.Name})
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}

	h.logger.Info("ingredient_created", "ingredient_id", ingredient.ID, "user_id", authCtx.UserID)

	writeJSON(w, http.StatusCreated, dto.ToIngredientResponse(ingredient))
}

// Get handles GET /api/v1/ingredients/{id}.
func (h *IngredientHandler) Get(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.MustAuthFromContext(r.Context())
	id := chi.URLParam(r, "id")

	ingredient, err := h.svc.Get(r.Context(), id, authCtx.UserID)
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToIngredientResponse(ingredient))
}

// Update handles PATCH /api/v1/ingredients/{id}.
func (h *IngredientHandler) Update(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.MustAuthFromContext(r.Context())
	id := chi.URLParam(r, "id")

	var req dto.TaxonomyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	ingredient, err := h.svc.Update(r.Context(), id, authCtx.UserID, service.TaxonomyInput{Name: req.Name})
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}

	h.logger.Info("ingredient_updated", "ingredient_id", ingredient.ID, "user_id", authCtx.UserID)

	writeJSON(w, http.StatusOK, dto.ToIngredientResponse(ingredient))
}

// Delete handles DELETE /api/v1/ingredients/{id}.
func (h *IngredientHandler) Delete(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.MustAuthFromContext(r.Context())
	id := chi.URLParam(r, "id")

	if err := h.svc.Delete(r.Context(), id, authCtx.UserID); err != nil {
		handleServiceError(h.logger, w, err)
		return
	}

	h.logger.Info("ingredient_deleted", "ingredient_id", id, "user_id", authCtx.UserID)

	w.WriteHeader(http.StatusNoContent)
}

package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/mealdeck/mealdeck/internal/auth"
	"github.com/mealdeck/mealdeck/internal/handler/dto"
	"github.com/mealdeck/mealdeck/internal/service"
	"github.com/mealdeck/mealdeck/internal/validation"
)

// RecipeHandler handles HTTP requests for recipe operations.
type RecipeHandler struct {
	svc           *service.RecipeService
	logger        *slog.Logger
	mediaBaseURL  string
	maxUploadSize int64
}

// NewRecipeHandler creates a new RecipeHandler. mediaBaseURL is the
// absolute prefix under which stored media is served.
func NewRecipeHandler(svc *service.RecipeService, logger *slog.Logger, mediaBaseURL string, maxUploadSize int64) *RecipeHandler {
	return &RecipeHandler{
		svc:           svc,
		logger:        logger,
		mediaBaseURL:  strings.TrimSuffix(mediaBaseURL, "/"),
		maxUploadSize: maxUploadSize,
	}
}

// List handles GET /api/v1/recipes.
// ?tags= and ?ingredients= take comma-separated ids and act as a
// union filter within each kind.
func (h *RecipeHandler) List(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.MustAuthFromContext(r.Context())
	query := r.URL.Query()

	recipes, err := h.svc.List(r.Context(), service.RecipeListInput{
		UserID:        authCtx.UserID,
		TagIDs:        parseIDList(query.Get("tags")),
		IngredientIDs: parseIDList(query.Get("ingredients")),
	})
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToRecipeListResponse(recipes))
}

// Get handles GET /api/v1/recipes/{id}.
func (h *RecipeHandler) Get(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.MustAuthFromContext(r.Context())
	id := chi.URLParam(r, "id")

	recipe, err := h.svc.Get(r.Context(), id, authCtx.UserID)
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToRecipeDetailResponse(recipe, h.mediaBaseURL))
}

// Create handles POST /api/v1/recipes.
func (h *RecipeHandler) Create(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.MustAuthFromContext(r.Context())

	var req dto.CreateRecipeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	recipe, err := h.svc.Create(r.Context(), authCtx.UserID, service.CreateRecipeInput{
		Title:       req.Title,
		TimeMinutes: req.TimeMinutes,
		Price:       req.Price,
		Description: req.Description,
		Link:        req.Link,
		Tags:        dto.Names(req.Tags),
		Ingredients: dto.Names(req.Ingredients),
	})
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}

	h.logger.Info("recipe_created", "recipe_id", recipe.ID, "user_id", authCtx.UserID)

	writeJSON(w, http.StatusCreated, dto.ToRecipeDetailResponse(recipe, h.mediaBaseURL))
}

// Update handles PATCH and PUT /api/v1/recipes/{id}.
func (h *RecipeHandler) Update(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.MustAuthFromContext(r.Context())
	id := chi.URLParam(r, "id")

	var req dto.UpdateRecipeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	// PUT is a full update: the scalars a recipe cannot exist without
	// must all be present. PATCH stays partial.
	if r.Method == http.MethodPut {
		if err := requireFullRecipePayload(&req); err != nil {
			handleServiceError(h.logger, w, err)
			return
		}
	}

	input := service.UpdateRecipeInput{
		Title:       req.Title,
		TimeMinutes: req.TimeMinutes,
		Price:       req.Price,
		Description: req.Description,
		Link:        req.Link,
	}
	if req.Tags != nil {
		names := dto.Names(*req.Tags)
		input.Tags = &names
	}
	if req.Ingredients != nil {
		names := dto.Names(*req.Ingredients)
		input.Ingredients = &names
	}

	recipe, err := h.svc.Update(r.Context(), id, authCtx.UserID, input)
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}

	h.logger.Info("recipe_updated", "recipe_id", recipe.ID, "user_id", authCtx.UserID)

	writeJSON(w, http.StatusOK, dto.ToRecipeDetailResponse(recipe, h.mediaBaseURL))
}

// Delete handles DELETE /api/v1/recipes/{id}.
func (h *RecipeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.MustAuthFromContext(r.Context())
	id := chi.URLParam(r, "id")

	if err := h.svc.Delete(r.Context(), id, authCtx.UserID); err != nil {
		handleServiceError(h.logger, w, err)
		return
	}

	h.logger.Info("recipe_deleted", "recipe_id", id, "user_id", authCtx.UserID)

	w.WriteHeader(http.StatusNoContent)
}

// UploadImage handles POST /api/v1/recipes/{id}/upload-image.
// Expects a multipart form with an "image" file field.
func (h *RecipeHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.MustAuthFromContext(r.Context())
	id := chi.URLParam(r, "id")

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_UPLOAD", "Expected a multipart form with an image field")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_UPLOAD", "Expected a multipart form with an image field")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_UPLOAD", "Could not read uploaded file")
		return
	}

	recipe, err := h.svc.UploadImage(r.Context(), id, authCtx.UserID, header.Filename, data)
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}

	h.logger.Info("recipe_image_uploaded",
		"recipe_id", recipe.ID,
		"user_id", authCtx.UserID,
		"size_bytes", len(data),
	)

	writeJSON(w, http.StatusOK, dto.ToRecipeDetailResponse(recipe, h.mediaBaseURL))
}

// requireFullRecipePayload checks that a full-update payload carries
// every required scalar field.
func requireFullRecipePayload(req *dto.UpdateRecipeRequest) error {
	fields := make(map[string]string)
	if req.Title == nil {
		fields["title"] = "is required"
	}
	if req.TimeMinutes == nil {
		fields["time_minutes"] = "is required"
	}
	if req.Price == nil {
		fields["price"] = "is required"
	}

	if len(fields) > 0 {
		return &validation.Error{Fields: fields}
	}
	return nil
}

// parseIDList splits a comma-separated id list, dropping empty entries.
func parseIDList(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	ids := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			ids = append(ids, trimmed)
		}
	}
	return ids
}

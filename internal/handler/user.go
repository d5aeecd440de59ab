package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/mealdeck/mealdeck/internal/auth"
	"github.com/mealdeck/mealdeck/internal/handler/dto"
	"github.com/mealdeck/mealdeck/internal/service"
)

// AuthCacheInvalidator drops a cached auth context by cache key.
// *cache.Cache satisfies it.
type AuthCacheInvalidator interface {
	DeleteAuthContext(ctx context.Context, cacheKey string) error
}

// UserHandler handles HTTP requests for account operations.
type UserHandler struct {
	svc       *service.UserService
	authCache AuthCacheInvalidator
	logger    *slog.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(svc *service.UserService, authCache AuthCacheInvalidator, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		svc:       svc,
		authCache: authCache,
		logger:    logger,
	}
}

// Create handles POST /api/v1/users.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	user, err := h.svc.Register(r.Context(), service.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
	})
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}

	h.logger.Info("user_registered", "user_id", user.ID)

	writeJSON(w, http.StatusCreated, dto.ToUserResponse(user))
}

// Token handles POST /api/v1/users/token.
func (h *UserHandler) Token(w http.ResponseWriter, r *http.Request) {
	var req dto.TokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	token, err := h.svc.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TokenResponse{Token: token})
}

// Me handles GET /api/v1/users/me.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.MustAuthFromContext(r.Context())

	user, err := h.svc.GetProfile(r.Context(), authCtx.UserID)
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToUserResponse(user))
}

// UpdateMe handles PATCH and PUT /api/v1/users/me.
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.MustAuthFromContext(r.Context())

	var req dto.UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	user, err := h.svc.UpdateProfile(r.Context(), authCtx.UserID, service.UpdateProfileInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
	})
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}

	// The cached auth context carries the email, so drop it after a
	// profile change instead of waiting out the TTL.
	h.invalidateAuthContext(r)

	h.logger.Info("user_updated", "user_id", user.ID)

	writeJSON(w, http.StatusOK, dto.ToUserResponse(user))
}

// invalidateAuthContext removes the cached auth context for the
// request's bearer token.
func (h *UserHandler) invalidateAuthContext(r *http.Request) {
	if h.authCache == nil {
		return
	}

	header := r.Header.Get("Authorization")
	token := strings.TrimPrefix(header, "Bearer ")
	if token == "" || token == header {
		return
	}

	if err := h.authCache.DeleteAuthContext(r.Context(), auth.QuickHash(token)); err != nil {
		h.logger.Warn("failed to invalidate auth context cache", "error", err)
	}
}

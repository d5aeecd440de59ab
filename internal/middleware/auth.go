package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mealdeck/mealdeck/internal/auth"
	"github.com/mealdeck/mealdeck/internal/metrics"
	"github.com/mealdeck/mealdeck/internal/model"
)

const (
	// minAuthDuration is the minimum time to spend on auth to prevent timing attacks.
	minAuthDuration = 200 * time.Millisecond
)

// UserGetter loads a user by id. *repository.Repository satisfies it.
type UserGetter interface {
	GetUserByID(ctx context.Context, id string) (*model.User, error)
}

// AuthCache caches resolved auth contexts keyed by token hash.
// *cache.Cache satisfies it.
type AuthCache interface {
	GetAuthContext(ctx context.Context, cacheKey string) (*model.AuthContext, error)
	SetAuthContext(ctx context.Context, cacheKey string, authCtx *model.AuthContext) error
}

// AuthConfig holds configuration for the auth middleware.
type AuthConfig struct {
	Logger  *slog.Logger
	Secret  []byte
	Users   UserGetter
	Cache   AuthCache
	Metrics metrics.Recorder
}

// Auth returns a middleware that authenticates API requests.
// It extracts the bearer token from the Authorization header, verifies
// its signature, resolves the account (with a Redis-backed cache in
// front of the user store), and injects the auth context into the
// request. Inactive accounts fail authentication.
func Auth(cfg AuthConfig) func(http.Handler) http.Handler {
	recorder := cfg.Metrics
	if recorder == nil {
		recorder = metrics.NewNoop()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			startTime := time.Now()

			// Ensure consistent timing regardless of outcome
			defer func() {
				elapsed := time.Since(startTime)
				if elapsed < minAuthDuration {
					time.Sleep(minAuthDuration - elapsed)
				}
			}()

			token := extractBearerToken(r)
			if token == "" {
				logAuthFailure(cfg.Logger, r, "missing_token")
				writeAuthError(w)
				return
			}

			userID, err := auth.ParseToken(token, cfg.Secret)
			if err != nil {
				logAuthFailure(cfg.Logger, r, "invalid_token")
				writeAuthError(w)
				return
			}

			// Check cache first
			cacheKey := auth.QuickHash(token)
			authCtx, _ := cfg.Cache.GetAuthContext(r.Context(), cacheKey)

			if authCtx != nil {
				recorder.IncAuthCacheHit()
			} else {
				recorder.IncAuthCacheMiss()

				// Cache miss - resolve the account
				user, err := cfg.Users.GetUserByID(r.Context(), userID)
				if err != nil || !user.IsActive {
					logAuthFailure(cfg.Logger, r, "unknown_or_inactive_user")
					writeAuthError(w)
					return
				}

				authCtx = &model.AuthContext{
					UserID:  user.ID,
					Email:   user.Email,
					IsStaff: user.IsStaff,
				}

				_ = cfg.Cache.SetAuthContext(r.Context(), cacheKey, authCtx)
			}

			ctx := auth.ContextWithAuth(r.Context(), authCtx)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractBearerToken extracts the access token from the Authorization header.
func extractBearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}

func logAuthFailure(logger *slog.Logger, r *http.Request, reason string) {
	logger.Warn("authentication failed",
		slog.String("reason", reason),
		slog.String("ip", r.RemoteAddr),
		slog.String("endpoint", r.Method+" "+r.URL.Path),
		slog.String("request_id", GetRequestID(r.Context())),
	)
}

// writeAuthError writes a 401 Unauthorized response.
// Uses the same message for all auth failures to prevent enumeration.
func writeAuthError(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"Invalid or missing credentials","code":"UNAUTHORIZED"}`))
}

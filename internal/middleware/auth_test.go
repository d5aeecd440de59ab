package middleware

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mealdeck/mealdeck/internal/auth"
	"github.com/mealdeck/mealdeck/internal/metrics"
	"github.com/mealdeck/mealdeck/internal/model"
)

var testSecret = []byte("test-secret-for-middleware")

type fakeUsers struct {
	users map[string]*model.User
	calls int
}

func (f *fakeUsers) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	f.calls++
	u, ok := f.users[id]
	if !ok {
		return nil, errors.New("user not found")
	}
	return u, nil
}

type fakeAuthCache struct {
	entries map[string]*model.AuthContext
}

func newFakeAuthCache() *fakeAuthCache {
	return &fakeAuthCache{entries: make(map[string]*model.AuthContext)}
}

func (f *fakeAuthCache) GetAuthContext(ctx context.Context, key string) (*model.AuthContext, error) {
	return f.entries[key], nil
}

func (f *fakeAuthCache) SetAuthContext(ctx context.Context, key string, authCtx *model.AuthContext) error {
	f.entries[key] = authCtx
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func authTestHandler(t *testing.T, gotCtx **model.AuthContext) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*gotCtx = auth.AuthFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuth(t *testing.T) {
	activeUser := &model.User{
		ID:       "01HZXK5Q8PMXY0000000000001",
		Email:    "user@example.com",
		IsActive: true,
	}
	inactiveUser := &model.User{
		ID:       "01HZXK5Q8PMXY0000000000002",
		Email:    "gone@example.com",
		IsActive: false,
	}

	validToken, err := auth.GenerateToken(activeUser.ID, testSecret, time.Hour)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	inactiveToken, err := auth.GenerateToken(inactiveUser.ID, testSecret, time.Hour)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	unknownToken, err := auth.GenerateToken("01HZXK5Q8PMXY0000000000099", testSecret, time.Hour)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	wrongSecretToken, err := auth.GenerateToken(activeUser.ID, []byte("other-secret"), time.Hour)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	tests := []struct {
		name       string
		authHeader string
		wantStatus int
		wantUserID string
	}{
		{
			name:       "valid token authenticates",
			authHeader: "Bearer " + validToken,
			wantStatus: http.StatusOK,
			wantUserID: activeUser.ID,
		},
		{
			name:       "missing header rejected",
			authHeader: "",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "non-bearer scheme rejected",
			authHeader: "Basic dXNlcjpwYXNz",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "garbage token rejected",
			authHeader: "Bearer not-a-jwt",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "wrong signature rejected",
			authHeader: "Bearer " + wrongSecretToken,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "unknown user rejected",
			authHeader: "Bearer " + unknownToken,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "inactive user rejected",
			authHeader: "Bearer " + inactiveToken,
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := &fakeUsers{users: map[string]*model.User{
				activeUser.ID:   activeUser,
				inactiveUser.ID: inactiveUser,
			}}

			var gotCtx *model.AuthContext
			handler := Auth(AuthConfig{
				Logger: discardLogger(),
				Secret: testSecret,
				Users:  users,
				Cache:  newFakeAuthCache(),
			})(authTestHandler(t, &gotCtx))

			req := httptest.NewRequest(http.MethodGet, "/api/v1/recipes", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantUserID != "" {
				if gotCtx == nil {
					t.Fatal("auth context not injected")
				}
				if gotCtx.UserID != tt.wantUserID {
					t.Errorf("user id = %q, want %q", gotCtx.UserID, tt.wantUserID)
				}
			}
			if tt.wantStatus == http.StatusUnauthorized {
				if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
					t.Errorf("Content-Type = %q, want application/json", ct)
				}
			}
		})
	}
}

func TestAuthCacheHit(t *testing.T) {
	user := &model.User{
		ID:       "01HZXK5Q8PMXY0000000000001",
		Email:    "user@example.com",
		IsActive: true,
	}
	token, err := auth.GenerateToken(user.ID, testSecret, time.Hour)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	users := &fakeUsers{users: map[string]*model.User{user.ID: user}}
	authCache := newFakeAuthCache()
	recorder := metrics.NewInMemory()

	var gotCtx *model.AuthContext
	handler := Auth(AuthConfig{
		Logger:  discardLogger(),
		Secret:  testSecret,
		Users:   users,
		Cache:   authCache,
		Metrics: recorder,
	})(authTestHandler(t, &gotCtx))

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/recipes", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i, rec.Code)
		}
	}

	// Only the first request should hit the user store.
	if users.calls != 1 {
		t.Errorf("user store calls = %d, want 1", users.calls)
	}
	if gotCtx == nil || gotCtx.Email != user.Email {
		t.Errorf("cached auth context not propagated: %+v", gotCtx)
	}

	snap := recorder.Snapshot()
	if snap.AuthCacheMisses != 1 {
		t.Errorf("auth cache misses = %d, want 1", snap.AuthCacheMisses)
	}
	if snap.AuthCacheHits != 2 {
		t.Errorf("auth cache hits = %d, want 2", snap.AuthCacheHits)
	}
}

func TestAuthMinDuration(t *testing.T) {
	user := &model.User{
		ID:       "01HZXK5Q8PMXY0000000000001",
		Email:    "user@example.com",
		IsActive: true,
	}
	unknownToken, err := auth.GenerateToken("01HZXK5Q8PMXY0000000000099", testSecret, time.Hour)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	tests := []struct {
		name       string
		authHeader string
	}{
		{name: "missing header", authHeader: ""},
		{name: "garbage token", authHeader: "Bearer not-a-jwt"},
		{name: "unknown user", authHeader: "Bearer " + unknownToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := &fakeUsers{users: map[string]*model.User{user.ID: user}}

			var gotCtx *model.AuthContext
			handler := Auth(AuthConfig{
				Logger: discardLogger(),
				Secret: testSecret,
				Users:  users,
				Cache:  newFakeAuthCache(),
			})(authTestHandler(t, &gotCtx))

			req := httptest.NewRequest(http.MethodGet, "/api/v1/recipes", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rec := httptest.NewRecorder()

			start := time.Now()
			handler.ServeHTTP(rec, req)
			elapsed := time.Since(start)

			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("status = %d, want 401", rec.Code)
			}
			if elapsed < minAuthDuration {
				t.Errorf("rejection took %v, want at least %v", elapsed, minAuthDuration)
			}
		})
	}
}

func TestExtractBearerToken(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{name: "bearer token", header: "Bearer abc123", want: "abc123"},
		{name: "empty header", header: "", want: ""},
		{name: "wrong scheme", header: "Token abc123", want: ""},
		{name: "lowercase bearer not accepted", header: "bearer abc123", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if got := extractBearerToken(req); got != tt.want {
				t.Errorf("extractBearerToken() = %q, want %q", got, tt.want)
			}
		})
	}
}

package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mealdeck/mealdeck/internal/auth"
	"github.com/mealdeck/mealdeck/internal/cache"
	"github.com/mealdeck/mealdeck/internal/model"
)

type fakeLimiter struct {
	result *cache.RateLimitResult
	err    error
	calls  int
}

func (f *fakeLimiter) CheckUserRateLimit(ctx context.Context, userID string, rpm, burst int) (*cache.RateLimitResult, error) {
	f.calls++
	return f.result, f.err
}

func authedRequest(userID string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/recipes", nil)
	ctx := auth.ContextWithAuth(req.Context(), &model.AuthContext{UserID: userID})
	return req.WithContext(ctx)
}

func TestRateLimitAPI(t *testing.T) {
	tests := []struct {
		name       string
		enabled    bool
		result     *cache.RateLimitResult
		err        error
		wantStatus int
		wantCalls  int
	}{
		{
			name:    "allowed request passes",
			enabled: true,
			result: &cache.RateLimitResult{
				Allowed:   true,
				Remaining: 29,
				ResetAt:   time.Now().Add(time.Minute),
			},
			wantStatus: http.StatusOK,
			wantCalls:  1,
		},
		{
			name:    "exceeded request gets 429",
			enabled: true,
			result: &cache.RateLimitResult{
				Allowed:    false,
				Remaining:  0,
				ResetAt:    time.Now().Add(time.Minute),
				RetryAfter: 12 * time.Second,
			},
			wantStatus: http.StatusTooManyRequests,
			wantCalls:  1,
		},
		{
			name:       "disabled skips check",
			enabled:    false,
			wantStatus: http.StatusOK,
			wantCalls:  0,
		},
		{
			name:       "limiter error fails open",
			enabled:    true,
			err:        errors.New("redis down"),
			wantStatus: http.StatusOK,
			wantCalls:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			limiter := &fakeLimiter{result: tt.result, err: tt.err}

			handler := RateLimitAPI(RateLimitConfig{
				Logger:            discardLogger(),
				Limiter:           limiter,
				Enabled:           tt.enabled,
				RequestsPerMinute: 300,
				Burst:             30,
			})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, authedRequest("01HZXK5Q8PMXY0000000000001"))

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if limiter.calls != tt.wantCalls {
				t.Errorf("limiter calls = %d, want %d", limiter.calls, tt.wantCalls)
			}
		})
	}
}

func TestRateLimitHeaders(t *testing.T) {
	resetAt := time.Now().Add(45 * time.Second)
	limiter := &fakeLimiter{result: &cache.RateLimitResult{
		Allowed:   true,
		Remaining: 17,
		ResetAt:   resetAt,
	}}

	handler := RateLimitAPI(RateLimitConfig{
		Logger:            discardLogger(),
		Limiter:           limiter,
		Enabled:           true,
		RequestsPerMinute: 300,
		Burst:             30,
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, authedRequest("01HZXK5Q8PMXY0000000000001"))

	if got := rec.Header().Get("X-RateLimit-Limit"); got != "300" {
		t.Errorf("X-RateLimit-Limit = %q, want 300", got)
	}
	if got := rec.Header().Get("X-RateLimit-Remaining"); got != "17" {
		t.Errorf("X-RateLimit-Remaining = %q, want 17", got)
	}
	if rec.Header().Get("X-RateLimit-Reset") == "" {
		t.Error("X-RateLimit-Reset not set")
	}
}

func TestRateLimitRetryAfter(t *testing.T) {
	limiter := &fakeLimiter{result: &cache.RateLimitResult{
		Allowed:    false,
		ResetAt:    time.Now().Add(time.Minute),
		RetryAfter: 30 * time.Second,
	}}

	handler := RateLimitAPI(RateLimitConfig{
		Logger:            discardLogger(),
		Limiter:           limiter,
		Enabled:           true,
		RequestsPerMinute: 60,
		Burst:             10,
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be called when rate limited")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, authedRequest("01HZXK5Q8PMXY0000000000001"))

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}
	if got := rec.Header().Get("Retry-After"); got != "30" {
		t.Errorf("Retry-After = %q, want 30", got)
	}
}

func TestRateLimitNoAuthContext(t *testing.T) {
	limiter := &fakeLimiter{}

	handler := RateLimitAPI(RateLimitConfig{
		Logger:            discardLogger(),
		Limiter:           limiter,
		Enabled:           true,
		RequestsPerMinute: 60,
		Burst:             10,
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/recipes", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if limiter.calls != 0 {
		t.Errorf("limiter calls = %d, want 0", limiter.calls)
	}
}

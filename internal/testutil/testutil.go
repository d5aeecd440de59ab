// Package testutil provides helpers for integration tests.
package testutil

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/mealdeck/mealdeck/internal/auth"
	"github.com/mealdeck/mealdeck/internal/model"
	"github.com/mealdeck/mealdeck/internal/repository"
)

// RequireEnv returns an environment variable or skips the test if missing.
func RequireEnv(t testing.TB, key string) string {
	t.Helper()
	value := os.Getenv(key)
	if value == "" {
		t.Skipf("%s not set", key)
	}
	return value
}

const advisoryLockID int64 = 240240

// AcquireDBLock grabs a global advisory lock to serialize DB tests.
func AcquireDBLock(ctx context.Context, pool *pgxpool.Pool) (func() error, error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}

	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock($1)", advisoryLockID); err != nil {
		conn.Release()
		return nil, fmt.Errorf("acquire advisory lock: %w", err)
	}

	unlock := func() error {
		defer conn.Release()
		if _, err := conn.Exec(ctx, "SELECT pg_advisory_unlock($1)", advisoryLockID); err != nil {
			return fmt.Errorf("release advisory lock: %w", err)
		}
		return nil
	}

	return unlock, nil
}

// SetupDB connects to the test database, applies migrations, and
// truncates all tables. The returned repository is closed on cleanup.
func SetupDB(t testing.TB) *repository.Repository {
	t.Helper()

	databaseURL := RequireEnv(t, "TEST_DATABASE_URL")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := repository.Migrate(ctx, databaseURL); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	repo, err := repository.New(ctx, databaseURL)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(repo.Close)

	unlock, err := AcquireDBLock(ctx, repo.Pool())
	if err != nil {
		t.Fatalf("lock: %v", err)
	}
	t.Cleanup(func() { _ = unlock() })

	if err := ResetSchema(ctx, repo.Pool()); err != nil {
		t.Fatalf("reset schema: %v", err)
	}

	return repo
}

// ResetSchema empties all application tables. Join tables are cleared
// by the cascade.
func ResetSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, "TRUNCATE users, tags, ingredients, recipes CASCADE")
	if err != nil {
		return fmt.Errorf("truncate tables: %w", err)
	}
	return nil
}

// FlushRedis clears the current Redis database.
func FlushRedis(ctx context.Context, client *redis.Client) error {
	return client.FlushDB(ctx).Err()
}

// NewTestUser creates an active user with the given email.
func NewTestUser(t testing.TB, repo *repository.Repository, email string) *model.User {
	t.Helper()

	hash, err := auth.HashPassword("testpass123")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	now := time.Now().UTC()
	user := &model.User{
		ID:           model.NewID(),
		Email:        email,
		PasswordHash: hash,
		Name:         "Test User",
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := repo.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("create user: %v", err)
	}

	return user
}

// NewTestRecipe returns an unsaved recipe owned by userID with
// reasonable defaults.
func NewTestRecipe(userID, title string) *model.Recipe {
	now := time.Now().UTC()
	return &model.Recipe{
		ID:          model.NewID(),
		UserID:      userID,
		Title:       title,
		TimeMinutes: 10,
		Price:       decimal.New(550, -2),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mealdeck/mealdeck/internal/auth"
	"github.com/mealdeck/mealdeck/internal/metrics"
	"github.com/mealdeck/mealdeck/internal/model"
	"github.com/mealdeck/mealdeck/internal/repository"
	"github.com/mealdeck/mealdeck/internal/validation"
)

// Service errors.
var (
	ErrEmailExists        = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
)

// minAuthDuration is the minimum time Authenticate spends before
// returning, so an unknown email costs the same as a wrong password.
const minAuthDuration = 200 * time.Millisecond

// UserService handles account business logic.
type UserService struct {
	repo     *repository.Repository
	validate *validation.Validator
	metrics  metrics.Recorder
	secret   []byte
	tokenTTL time.Duration
}

// NewUserService creates a new UserService.
func NewUserService(repo *repository.Repository, secret []byte, tokenTTL time.Duration, recorder metrics.Recorder) *UserService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &UserService{
		repo:     repo,
		validate: validation.New(),
		metrics:  recorder,
		secret:   secret,
		tokenTTL: tokenTTL,
	}
}

// RegisterInput defines input for creating an account.
type RegisterInput struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=5,max=128"`
	Name     string `json:"name" validate:"required,max=255"`
}

// Register creates a new active, non-staff account.
func (s *UserService) Register(ctx context.Context, input RegisterInput) (*model.User, error) {
	input.Email = NormalizeEmail(input.Email)

	if err := s.validate.Validate(input); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &model.User{
		ID:           model.NewID(),
		Email:        input.Email,
		PasswordHash: hash,
		Name:         input.Name,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.metrics.IncUserRegistered()

	return user, nil
}

// Authenticate verifies credentials and issues an access token.
// All failure modes return ErrInvalidCredentials so callers cannot
// distinguish unknown accounts from wrong passwords, and every call
// takes at least minAuthDuration so timing does not distinguish them
// either.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (string, error) {
	startTime := time.Now()

	// Ensure consistent timing regardless of outcome
	defer func() {
		elapsed := time.Since(startTime)
		if elapsed < minAuthDuration {
			time.Sleep(minAuthDuration - elapsed)
		}
	}()

	email = NormalizeEmail(email)

	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("get user: %w", err)
	}

	ok, err := auth.VerifyPassword(password, user.PasswordHash)
	if err != nil || !ok {
		return "", ErrInvalidCredentials
	}

	if !user.IsActive {
		return "", ErrInvalidCredentials
	}

	token, err := auth.GenerateToken(user.ID, s.secret, s.tokenTTL)
	if err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}

	s.metrics.IncTokenIssued()

	return token, nil
}

// GetProfile returns the account for the given user id.
func (s *UserService) GetProfile(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// UpdateProfileInput defines input for a partial profile update.
// Nil fields are left unchanged.
type UpdateProfileInput struct {
	Email    *string `json:"email" validate:"omitempty,email,max=255"`
	Password *string `json:"password" validate:"omitempty,min=5,max=128"`
	Name     *string `json:"name" validate:"omitempty,max=255"`
}

// UpdateProfile applies a partial update to the account.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, input UpdateProfileInput) (*model.User, error) {
	if input.Email != nil {
		normalized := NormalizeEmail(*input.Email)
		input.Email = &normalized
	}

	if err := s.validate.Validate(input); err != nil {
		return nil, err
	}

	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	if input.Email != nil {
		user.Email = *input.Email
	}
	if input.Name != nil {
		user.Name = *input.Name
	}
	if input.Password != nil {
		hash, err := auth.HashPassword(*input.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = hash
	}
	user.UpdatedAt = time.Now().UTC()

	if err := s.repo.UpdateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return nil, ErrEmailExists
		}
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("update user: %w", err)
	}

	return user, nil
}

// NormalizeEmail trims whitespace and lowercases the domain part of an
// email address. The local part is preserved as entered.
func NormalizeEmail(email string) string {
	email = strings.TrimSpace(email)

	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}

	return email[:at] + "@" + strings.ToLower(email[at+1:])
}

// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import "github.com/mealdeck/mealdeck/internal/model"

// CreateUserRequest represents the request body for registering an account.
type CreateUserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// TokenRequest represents the request body for obtaining an access token.
type TokenRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenResponse carries a freshly issued access token.
type TokenResponse struct {
	Token string `json:"token"`
}

// UpdateUserRequest represents a partial profile update.
// Absent fields are left unchanged.
type UpdateUserRequest struct {
	Email    *string `json:"email,omitempty"`
	Password *string `json:"password,omitempty"`
	Name     *string `json:"name,omitempty"`
}

// UserResponse represents an account in API responses.
// The password never appears here.
type UserResponse struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// ToUserResponse converts a user model to its API representation.
func ToUserResponse(user *model.User) UserResponse {
	return UserResponse{
		Email: user.Email,
		Name:  user.Name,
	}
}

// ErrorResponse represents an API error.
type ErrorResponse struct {
	Error  string            `json:"error"`
	Code   string            `json:"code"`
	Fields map[string]string `json:"fields,omitempty"`
}

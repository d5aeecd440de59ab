// Package model defines domain entities for the application.
package model

import "time"

// User is an account in the system, keyed by email.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	IsActive     bool      `json:"is_active"`
	IsStaff      bool      `json:"is_staff"`
	IsSuperuser  bool      `json:"is_superuser"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// AuthContext carries the authenticated identity through a request.
type AuthContext struct {
	UserID  string
	Email   string
	IsStaff bool
}

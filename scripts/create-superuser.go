// Command create-superuser provisions a staff/superuser account.
// Intended for operational bootstrap, not exposed through the API.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mealdeck/mealdeck/internal/auth"
	"github.com/mealdeck/mealdeck/internal/model"
	"github.com/mealdeck/mealdeck/internal/repository"
	"github.com/mealdeck/mealdeck/internal/service"
)

type output struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
}

func main() {
	var (
		databaseURL = flag.String("database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string")
		email       = flag.String("email", "", "Superuser email (required)")
		password    = flag.String("password", "", "Superuser password (required, min 5 characters)")
		name        = flag.String("name", "Admin", "Display name")
		format      = flag.String("format", "plain", "Output format: plain or json")
	)
	flag.Parse()

	if *databaseURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is required")
		os.Exit(1)
	}
	if *email == "" || *password == "" {
		fmt.Fprintln(os.Stderr, "-email and -password are required")
		os.Exit(1)
	}
	if len(*password) < 5 {
		fmt.Fprintln(os.Stderr, "password must be at least 5 characters")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := repository.Migrate(ctx, *databaseURL); err != nil {
		fmt.Fprintln(os.Stderr, "migrate:", err)
		os.Exit(1)
	}

	repo, err := repository.New(ctx, *databaseURL)
	if err != nil {
		fmt.Fprintln(os.Stderr, "connect database:", err)
		os.Exit(1)
	}
	defer repo.Close()

	hash, err := auth.HashPassword(*password)
	if err != nil {
		fmt.Fprintln(os.Stderr, "hash password:", err)
		os.Exit(1)
	}

	now := time.Now().UTC()
	user := &model.User{
		ID:           model.NewID(),
		Email:        service.NormalizeEmail(*email),
		PasswordHash: hash,
		Name:         *name,
		IsActive:     true,
		IsStaff:      true,
		IsSuperuser:  true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			fmt.Fprintln(os.Stderr, "a user with that email already exists")
		} else {
			fmt.Fprintln(os.Stderr, "create user:", err)
		}
		os.Exit(1)
	}

	out := output{
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.Name,
	}

	switch strings.ToLower(*format) {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			fmt.Fprintln(os.Stderr, "encode output:", err)
			os.Exit(1)
		}
	default:
		fmt.Printf("created superuser %s (%s)\n", out.Email, out.UserID)
	}
}

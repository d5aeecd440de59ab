package validation

import (
	"errors"
	"strings"
	"testing"
)

type sampleInput struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name" validate:"max=255"`
	Count int    `json:"count" validate:"gte=1"`
}

func TestValidate(t *testing.T) {
	v := New()

	t.Run("valid input passes", func(t *testing.T) {
		err := v.Validate(sampleInput{Email: "user@example.com", Name: "ok", Count: 5})
		if err != nil {
			t.Errorf("Validate() = %v, want nil", err)
		}
	})

	t.Run("invalid input yields field errors", func(t *testing.T) {
		err := v.Validate(sampleInput{Email: "not-an-email", Name: strings.Repeat("x", 300), Count: 0})
		if err == nil {
			t.Fatal("Validate() = nil, want error")
		}

		var verr *Error
		if !errors.As(err, &verr) {
			t.Fatalf("error type = %T, want *Error", err)
		}

		if verr.Fields["email"] != "must be a valid email address" {
			t.Errorf("email message = %q", verr.Fields["email"])
		}
		if verr.Fields["name"] != "must not exceed 255 characters" {
			t.Errorf("name message = %q", verr.Fields["name"])
		}
		if verr.Fields["count"] != "must be greater than or equal to 1" {
			t.Errorf("count message = %q", verr.Fields["count"])
		}
	})

	t.Run("json tag names used in messages", func(t *testing.T) {
		err := v.Validate(sampleInput{})
		var verr *Error
		if !errors.As(err, &verr) {
			t.Fatalf("error type = %T, want *Error", err)
		}
		if _, ok := verr.Fields["email"]; !ok {
			t.Errorf("fields = %v, want key %q", verr.Fields, "email")
		}
	})
}

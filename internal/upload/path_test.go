package upload

import (
	"strings"
	"testing"
)

func TestRecipeImagePath(t *testing.T) {
	tests := []struct {
		name     string
		id       string
		filename string
		want     string
	}{
		{
			name:     "jpg extension kept",
			id:       "abc123",
			filename: "dinner.jpg",
			want:     "uploads/recipe/abc123.jpg",
		},
		{
			name:     "extension lowercased",
			id:       "abc123",
			filename: "photo.JPG",
			want:     "uploads/recipe/abc123.jpg",
		},
		{
			name:     "original name discarded",
			id:       "abc123",
			filename: "../../etc/passwd.png",
			want:     "uploads/recipe/abc123.png",
		},
		{
			name:     "no extension",
			id:       "abc123",
			filename: "payload",
			want:     "uploads/recipe/abc123",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := recipeImagePath(tt.id, tt.filename); got != tt.want {
				t.Errorf("recipeImagePath(%q, %q) = %q, want %q", tt.id, tt.filename, got, tt.want)
			}
		})
	}
}

func TestNewRecipeImagePathUnique(t *testing.T) {
	a := NewRecipeImagePath("a.png")
	b := NewRecipeImagePath("a.png")

	if a == b {
		t.Errorf("two generated paths are equal: %q", a)
	}
	if !strings.HasPrefix(a, "uploads/recipe/") {
		t.Errorf("path %q does not start with uploads/recipe/", a)
	}
	if !strings.HasSuffix(a, ".png") {
		t.Errorf("path %q does not keep extension", a)
	}
}

package upload

import (
	"path"
	"strings"

	"github.com/google/uuid"
)

// recipeImageDir is the directory for recipe images, relative to the media root.
const recipeImageDir = "uploads/recipe"

// NewRecipeImagePath returns a fresh media-relative path for a recipe image.
// The original filename is discarded except for its extension, which is
// lowercased. Paths always use forward slashes.
func NewRecipeImagePath(originalFilename string) string {
	return recipeImagePath(uuid.New().String(), originalFilename)
}

func recipeImagePath(id, originalFilename string) string {
	ext := strings.ToLower(path.Ext(originalFilename))
	return path.Join(recipeImageDir, id+ext)
}

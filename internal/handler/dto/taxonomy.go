package dto

import "github.com/mealdeck/mealdeck/internal/model"

// TaxonomyRequest represents the request body for creating or renaming
// a tag or ingredient.
type TaxonomyRequest struct {
	Name string `json:"name"`
}

// TagResponse represents a tag in API responses.
type TagResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// IngredientResponse represents an ingredient in API responses.
type IngredientResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ToTagResponse converts a tag model to its API representation.
func ToTagResponse(tag *model.Tag) TagResponse {
	return TagResponse{ID: tag.ID, Name: tag.Name}
}

// ToTagResponses converts a slice of tags, never returning nil.
func ToTagResponses(tags []*model.Tag) []TagResponse {
	out := make([]TagResponse, len(tags))
	for i, tag := range tags {
		out[i] = ToTagResponse(tag)
	}
	return out
}

// ToIngredientResponse converts an ingredient model to its API representation.
func ToIngredientResponse(ingredient *model.Ingredient) IngredientResponse {
	return IngredientResponse{ID: ingredient.ID, Name: ingredient.Name}
}

// ToIngredientResponses converts a slice of ingredients, never returning nil.
func ToIngredientResponses(ingredients []*model.Ingredient) []IngredientResponse {
	out := make([]IngredientResponse, len(ingredients))
	for i, ingredient := range ingredients {
		out[i] = ToIngredientResponse(ingredient)
	}
	return out
}

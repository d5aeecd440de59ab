package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/mealdeck/mealdeck/internal/model"
)

// TaxonomyRef names a tag or ingredient inside a recipe payload.
// Existing names are reused, new ones created.
type TaxonomyRef struct {
	Name string `json:"name"`
}

// CreateRecipeRequest represents the request body for creating a recipe.
type CreateRecipeRequest struct {
	Title       string          `json:"title"`
	TimeMinutes int             `json:"time_minutes"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description,omitempty"`
	Link        string          `json:"link,omitempty"`
	Tags        []TaxonomyRef   `json:"tags,omitempty"`
	Ingredients []TaxonomyRef   `json:"ingredients,omitempty"`
}

// UpdateRecipeRequest represents a partial recipe update. Absent fields
// are left unchanged; an explicit empty tags or ingredients list clears
// the relation.
type UpdateRecipeRequest struct {
	Title       *string          `json:"title,omitempty"`
	TimeMinutes *int             `json:"time_minutes,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	Description *string          `json:"description,omitempty"`
	Link        *string          `json:"link,omitempty"`
	Tags        *[]TaxonomyRef   `json:"tags,omitempty"`
	Ingredients *[]TaxonomyRef   `json:"ingredients,omitempty"`
}

// RecipeResponse represents a recipe in list responses.
type RecipeResponse struct {
	ID          string               `json:"id"`
	Title       string               `json:"title"`
	TimeMinutes int                  `json:"time_minutes"`
	Price       decimal.Decimal      `json:"price"`
	Link        string               `json:"link"`
	Tags        []TagResponse        `json:"tags"`
	Ingredients []IngredientResponse `json:"ingredients"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
}

// RecipeDetailResponse adds the long fields to a recipe response.
type RecipeDetailResponse struct {
	RecipeResponse
	Description   string  `json:"description"`
	ImageURL      *string `json:"image,omitempty"`
	ImageBlurhash *string `json:"image_blurhash,omitempty"`
}

// RecipeListResponse represents a list of recipes.
type RecipeListResponse struct {
	Data []RecipeResponse `json:"data"`
}

// Names extracts the name list from taxonomy refs.
func Names(refs []TaxonomyRef) []string {
	names := make([]string, len(refs))
	for i, ref := range refs {
		names[i] = ref.Name
	}
	return names
}

// ToRecipeResponse converts a recipe model to its list representation.
func ToRecipeResponse(recipe *model.Recipe) RecipeResponse {
	return RecipeResponse{
		ID:          recipe.ID,
		Title:       recipe.Title,
		TimeMinutes: recipe.TimeMinutes,
		Price:       recipe.Price,
		Link:        recipe.Link,
		Tags:        ToTagResponses(recipe.Tags),
		Ingredients: ToIngredientResponses(recipe.Ingredients),
		CreatedAt:   recipe.CreatedAt,
		UpdatedAt:   recipe.UpdatedAt,
	}
}

// ToRecipeListResponse converts recipes to a list response.
func ToRecipeListResponse(recipes []*model.Recipe) RecipeListResponse {
	data := make([]RecipeResponse, len(recipes))
	for i, recipe := range recipes {
		data[i] = ToRecipeResponse(recipe)
	}
	return RecipeListResponse{Data: data}
}

// ToRecipeDetailResponse converts a recipe model to its detail
// representation. mediaBaseURL prefixes the stored image path.
func ToRecipeDetailResponse(recipe *model.Recipe, mediaBaseURL string) RecipeDetailResponse {
	resp := RecipeDetailResponse{
		RecipeResponse: ToRecipeResponse(recipe),
		Description:    recipe.Description,
		ImageBlurhash:  recipe.ImageBlurhash,
	}

	if recipe.ImagePath != nil {
		url := mediaBaseURL + "/" + *recipe.ImagePath
		resp.ImageURL = &url
	}

	return resp
}

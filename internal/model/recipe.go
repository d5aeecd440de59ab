package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Recipe is the central entity: scalar attributes plus many-to-many
// relations to the owner's tags and ingredients, and an optional image.
//
// The owner is set at creation time and never changes; update payloads
// carrying a different user are ignored at the service layer and the
// repository never includes user_id in UPDATE statements.
type Recipe struct {
	ID            string          `json:"id"`
	UserID        string          `json:"-"`
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	TimeMinutes   int             `json:"time_minutes"`
	Price         decimal.Decimal `json:"price"`
	Link          string          `json:"link"`
	ImagePath     *string         `json:"-"`
	ImageBlurhash *string         `json:"image_blurhash,omitempty"`
	Tags          []*Tag          `json:"tags"`
	Ingredients   []*Ingredient   `json:"ingredients"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// HasImage reports whether an image has been uploaded for the recipe.
func (r *Recipe) HasImage() bool {
	return r.ImagePath != nil && *r.ImagePath != ""
}

// TagIDs returns the ids of the recipe's tags.
func (r *Recipe) TagIDs() []string {
	ids := make([]string, len(r.Tags))
	for i, t := range r.Tags {
		ids[i] = t.ID
	}
	return ids
}

// IngredientIDs returns the ids of the recipe's ingredients.
func (r *Recipe) IngredientIDs() []string {
	ids := make([]string, len(r.Ingredients))
	for i, ing := range r.Ingredients {
		ids[i] = ing.ID
	}
	return ids
}

package model

// Tag labels recipes for a single owner. Names are unique per owner;
// the same name used by two users is two distinct tags.
type Tag struct {
	ID     string `json:"id"`
	UserID string `json:"-"`
	Name   string `json:"name"`
}

// Ingredient is a named component of recipes, owned by a single user.
// It shares the Tag shape but lives in an independent namespace.
type Ingredient struct {
	ID     string `json:"id"`
	UserID string `json:"-"`
	Name   string `json:"name"`
}

package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/mealdeck/mealdeck/internal/model"
)

// Common errors for ingredient repository operations.
var (
	ErrIngredientNotFound = errors.New("ingredient not found")
	ErrIngredientExists   = errors.New("ingredient name already exists for user")
)

// CreateIngredient inserts a new ingredient owned by ingredient.UserID.
func (r *Repository) CreateIngredient(ctx context.Context, ingredient *model.Ingredient) error {
	query := `
		INSERT INTO ingredients (id, user_id, name)
		VALUES ($1, $2, $3)
	`

	_, err := r.pool.Exec(ctx, query, ingredient.ID, ingredient.UserID, ingredient.Name)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrIngredientExists
		}
		return fmt.Errorf("failed to create ingredient: %w", err)
	}

	return nil
}

// GetIngredientByID retrieves an ingredient owned by userID.
func (r *Repository) GetIngredientByID(ctx context.Context, id, userID string) (*model.Ingredient, error) {
	query := `
		SELECT id, user_id, name
		FROM ingredients
		WHERE id = $1 AND user_id = $2
	`

	var ingredient model.Ingredient
	err := r.pool.QueryRow(ctx, query, id, userID).Scan(&ingredient.ID, &ingredient.UserID, &ingredient.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrIngredientNotFound
		}
		return nil, fmt.Errorf("failed to get ingredient by ID: %w", err)
	}

	return &ingredient, nil
}

// ListIngredients retrieves the user's ingredients in reverse-alphabetical order.
func (r *Repository) ListIngredients(ctx context.Context, filter TaxonomyFilter) ([]*model.Ingredient, error) {
	query := `
		SELECT id, user_id, name
		FROM ingredients
		WHERE user_id = $1
		ORDER BY name DESC
	`

	if filter.AssignedOnly {
		query = `
			SELECT DISTINCT i.id, i.user_id, i.name
			FROM ingredients i
			JOIN recipe_ingredients ri ON ri.ingredient_id = i.id
			JOIN recipes rec ON rec.id = ri.recipe_id
			WHERE i.user_id = $1 AND rec.user_id = $1
			ORDER BY i.name DESC
		`
	}

	rows, err := r.pool.Query(ctx, query, filter.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list ingredients: %w", err)
	}
	defer rows.Close()

	var ingredients []*model.Ingredient
	for rows.Next() {
		var ingredient model.Ingredient
		if err := rows.Scan(&ingredient.ID, &ingredient.UserID, &ingredient.Name); err != nil {
			return nil, fmt.Errorf("failed to scan ingredient: %w", err)
		}
		ingredients = append(ingredients, &ingredient)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ingredients: %w", err)
	}

	return ingredients, nil
}

// UpdateIngredient renames an ingredient owned by ingredient.UserID.
func (r *Repository) UpdateIngredient(ctx context.Context, ingredient *model.Ingredient) error {
	query := `
		UPDATE ingredients
		SET name = $3
		WHERE id = $1 AND user_id = $2
	`

	result, err := r.pool.Exec(ctx, query, ingredient.ID, ingredient.UserID, ingredient.Name)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrIngredientExists
		}
		return fmt.Errorf("failed to update ingredient: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrIngredientNotFound
	}

	return nil
}

// DeleteIngredient removes an ingredient owned by userID. Relation rows
// cascade; recipes that referenced the ingredient are untouched.
func (r *Repository) DeleteIngredient(ctx context.Context, id, userID string) error {
	query := `
		DELETE FROM ingredients
		WHERE id = $1 AND user_id = $2
	`

	result, err := r.pool.Exec(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete ingredient: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrIngredientNotFound
	}

	return nil
}

// UpsertIngredientsByName resolves names into existing-or-newly-created
// ingredients for the user, with the same conflict-as-fetch semantics as
// UpsertTagsByName.
func UpsertIngredientsByName(ctx context.Context, tx pgx.Tx, userID string, names []string) ([]*model.Ingredient, error) {
	query := `
		INSERT INTO ingredients (id, user_id, name)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, name) DO UPDATE SET name = excluded.name
		RETURNING id, user_id, name
	`

	ingredients := make([]*model.Ingredient, 0, len(names))
	seen := make(map[string]bool, len(names))

	for _, name := range names {
		if seen[name] {
			continue
		}
		seen[name] = true

		var ingredient model.Ingredient
		err := tx.QueryRow(ctx, query, model.NewID(), userID, name).Scan(&ingredient.ID, &ingredient.UserID, &ingredient.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to upsert ingredient %q: %w", name, err)
		}
		ingredients = append(ingredients, &ingredient)
	}

	return ingredients, nil
}

// ReplaceRecipeIngredients sets the recipe's ingredient relation to exactly
// ingredientIDs, removing prior members not in the new set.
func ReplaceRecipeIngredients(ctx context.Context, tx pgx.Tx, recipeID string, ingredientIDs []string) error {
	if _, err := tx.Exec(ctx, `DELETE FROM recipe_ingredients WHERE recipe_id = $1`, recipeID); err != nil {
		return fmt.Errorf("failed to clear recipe ingredients: %w", err)
	}

	for _, ingredientID := range ingredientIDs {
		_, err := tx.Exec(ctx,
			`INSERT INTO recipe_ingredients (recipe_id, ingredient_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			recipeID, ingredientID,
		)
		if err != nil {
			return fmt.Errorf("failed to attach ingredient: %w", err)
		}
	}

	return nil
}

package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"

	"github.com/mealdeck/mealdeck/internal/model"
)

// Common errors for recipe repository operations.
var (
	ErrRecipeNotFound = errors.New("recipe not found")
)

// RecipeFilter defines filters for listing recipes. TagIDs and
// IngredientIDs each restrict to recipes referencing at least one of the
// given ids; the EXISTS form keeps join-induced duplicates out of the
// result by construction.
type RecipeFilter struct {
	UserID        string
	TagIDs        []string
	IngredientIDs []string
}

const recipeColumns = `id, user_id, title, description, time_minutes, price, link, image_path, image_blurhash, created_at, updated_at`

// CreateRecipe inserts a new recipe inside the caller's transaction.
func CreateRecipe(ctx context.Context, tx pgx.Tx, recipe *model.Recipe) error {
	query := `
		INSERT INTO recipes (id, user_id, title, description, time_minutes, price, link, image_path, image_blurhash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := tx.Exec(ctx, query,
		recipe.ID,
		recipe.UserID,
		recipe.Title,
		recipe.Description,
		recipe.TimeMinutes,
		recipe.Price,
		recipe.Link,
		recipe.ImagePath,
		recipe.ImageBlurhash,
		recipe.CreatedAt,
		recipe.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create recipe: %w", err)
	}

	return nil
}

// GetRecipeByID retrieves a recipe owned by userID, with tags and
// ingredients loaded. A recipe owned by someone else is indistinguishable
// from a missing one.
func (r *Repository) GetRecipeByID(ctx context.Context, id, userID string) (*model.Recipe, error) {
	query := `
		SELECT ` + recipeColumns + `
		FROM recipes
		WHERE id = $1 AND user_id = $2
	`

	recipe, err := scanRecipe(r.pool.QueryRow(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRecipeNotFound
		}
		return nil, fmt.Errorf("failed to get recipe by ID: %w", err)
	}

	if err := r.loadRecipeRelations(ctx, []*model.Recipe{recipe}); err != nil {
		return nil, err
	}

	return recipe, nil
}

// GetRecipeForUpdate locks a recipe row inside the caller's transaction so
// relation replacement cannot interleave with a concurrent writer.
func GetRecipeForUpdate(ctx context.Context, tx pgx.Tx, id, userID string) (*model.Recipe, error) {
	query := `
		SELECT ` + recipeColumns + `
		FROM recipes
		WHERE id = $1 AND user_id = $2
		FOR UPDATE
	`

	recipe, err := scanRecipe(tx.QueryRow(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRecipeNotFound
		}
		return nil, fmt.Errorf("failed to lock recipe: %w", err)
	}

	return recipe, nil
}

// ListRecipes retrieves the user's recipes, newest first, with relations
// loaded.
func (r *Repository) ListRecipes(ctx context.Context, filter RecipeFilter) ([]*model.Recipe, error) {
	query := `
		SELECT ` + recipeColumns + `
		FROM recipes
		WHERE user_id = $1
	`
	args := []any{filter.UserID}
	argIndex := 2

	if len(filter.TagIDs) > 0 {
		query += fmt.Sprintf(` AND EXISTS (
			SELECT 1 FROM recipe_tags rt
			WHERE rt.recipe_id = recipes.id AND rt.tag_id = ANY($%d)
		)`, argIndex)
		args = append(args, pq.Array(filter.TagIDs))
		argIndex++
	}

	if len(filter.IngredientIDs) > 0 {
		query += fmt.Sprintf(` AND EXISTS (
			SELECT 1 FROM recipe_ingredients ri
			WHERE ri.recipe_id = recipes.id AND ri.ingredient_id = ANY($%d)
		)`, argIndex)
		args = append(args, pq.Array(filter.IngredientIDs))
		argIndex++
	}

	query += ` ORDER BY id DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}
	defer rows.Close()

	var recipes []*model.Recipe
	for rows.Next() {
		recipe, err := scanRecipe(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan recipe: %w", err)
		}
		recipes = append(recipes, recipe)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating recipes: %w", err)
	}

	if err := r.loadRecipeRelations(ctx, recipes); err != nil {
		return nil, err
	}

	return recipes, nil
}

// UpdateRecipe updates a recipe's scalar fields inside the caller's
// transaction. The owner column is never part of the SET list.
func UpdateRecipe(ctx context.Context, tx pgx.Tx, recipe *model.Recipe) error {
	query := `
		UPDATE recipes
		SET title = $3, description = $4, time_minutes = $5, price = $6, link = $7, updated_at = $8
		WHERE id = $1 AND user_id = $2
	`

	result, err := tx.Exec(ctx, query,
		recipe.ID,
		recipe.UserID,
		recipe.Title,
		recipe.Description,
		recipe.TimeMinutes,
		recipe.Price,
		recipe.Link,
		recipe.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update recipe: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrRecipeNotFound
	}

	return nil
}

// DeleteRecipe removes a recipe owned by userID. Relation rows cascade;
// the referenced tags and ingredients persist.
func (r *Repository) DeleteRecipe(ctx context.Context, id, userID string) error {
	query := `
		DELETE FROM recipes
		WHERE id = $1 AND user_id = $2
	`

	result, err := r.pool.Exec(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete recipe: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrRecipeNotFound
	}

	return nil
}

// SetRecipeImage records the stored image path and blurhash for a recipe
// owned by userID.
func (r *Repository) SetRecipeImage(ctx context.Context, id, userID, imagePath, blurhash string) error {
	query := `
		UPDATE recipes
		SET image_path = $3, image_blurhash = NULLIF($4, ''), updated_at = NOW()
		WHERE id = $1 AND user_id = $2
	`

	result, err := r.pool.Exec(ctx, query, id, userID, imagePath, blurhash)
	if err != nil {
		return fmt.Errorf("failed to set recipe image: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrRecipeNotFound
	}

	return nil
}

// loadRecipeRelations populates Tags and Ingredients for the given recipes
// with one query per relation kind.
func (r *Repository) loadRecipeRelations(ctx context.Context, recipes []*model.Recipe) error {
	byID := make(map[string]*model.Recipe, len(recipes))
	ids := make([]string, len(recipes))
	for i, recipe := range recipes {
		recipe.Tags = []*model.Tag{}
		recipe.Ingredients = []*model.Ingredient{}
		byID[recipe.ID] = recipe
		ids[i] = recipe.ID
	}

	if len(ids) == 0 {
		return nil
	}

	tagQuery := `
		SELECT rt.recipe_id, t.id, t.user_id, t.name
		FROM recipe_tags rt
		JOIN tags t ON t.id = rt.tag_id
		WHERE rt.recipe_id = ANY($1)
		ORDER BY t.name
	`

	rows, err := r.pool.Query(ctx, tagQuery, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("failed to load recipe tags: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var recipeID string
		var tag model.Tag
		if err := rows.Scan(&recipeID, &tag.ID, &tag.UserID, &tag.Name); err != nil {
			return fmt.Errorf("failed to scan recipe tag: %w", err)
		}
		if recipe, ok := byID[recipeID]; ok {
			recipe.Tags = append(recipe.Tags, &tag)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating recipe tags: %w", err)
	}
	rows.Close()

	ingredientQuery := `
		SELECT ri.recipe_id, i.id, i.user_id, i.name
		FROM recipe_ingredients ri
		JOIN ingredients i ON i.id = ri.ingredient_id
		WHERE ri.recipe_id = ANY($1)
		ORDER BY i.name
	`

	rows, err = r.pool.Query(ctx, ingredientQuery, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("failed to load recipe ingredients: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var recipeID string
		var ingredient model.Ingredient
		if err := rows.Scan(&recipeID, &ingredient.ID, &ingredient.UserID, &ingredient.Name); err != nil {
			return fmt.Errorf("failed to scan recipe ingredient: %w", err)
		}
		if recipe, ok := byID[recipeID]; ok {
			recipe.Ingredients = append(recipe.Ingredients, &ingredient)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating recipe ingredients: %w", err)
	}

	return nil
}

// scanRecipe scans a single row into a Recipe model.
func scanRecipe(row pgx.Row) (*model.Recipe, error) {
	var recipe model.Recipe
	err := row.Scan(
		&recipe.ID,
		&recipe.UserID,
		&recipe.Title,
		&recipe.Description,
		&recipe.TimeMinutes,
		&recipe.Price,
		&recipe.Link,
		&recipe.ImagePath,
		&recipe.ImageBlurhash,
		&recipe.CreatedAt,
		&recipe.UpdatedAt,
	)
	return &recipe, err
}

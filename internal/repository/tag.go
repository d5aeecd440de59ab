package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/mealdeck/mealdeck/internal/model"
)

// Common errors for tag repository operations.
var (
	ErrTagNotFound = errors.New("tag not found")
	ErrTagExists   = errors.New("tag name already exists for user")
)

// TaxonomyFilter defines filters for listing tags or ingredients.
type TaxonomyFilter struct {
	UserID string
	// AssignedOnly restricts results to entities referenced by at least
	// one recipe of the same user, deduplicated.
	AssignedOnly bool
}

// CreateTag inserts a new tag owned by tag.UserID.
func (r *Repository) CreateTag(ctx context.Context, tag *model.Tag) error {
	query := `
		INSERT INTO tags (id, user_id, name)
		VALUES ($1, $2, $3)
	`

	_, err := r.pool.Exec(ctx, query, tag.ID, tag.UserID, tag.Name)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrTagExists
		}
		return fmt.Errorf("failed to create tag: %w", err)
	}

	return nil
}

// GetTagByID retrieves a tag owned by userID. A tag owned by someone else
// is indistinguishable from a missing one.
func (r *Repository) GetTagByID(ctx context.Context, id, userID string) (*model.Tag, error) {
	query := `
		SELECT id, user_id, name
		FROM tags
		WHERE id = $1 AND user_id = $2
	`

	var tag model.Tag
	err := r.pool.QueryRow(ctx, query, id, userID).Scan(&tag.ID, &tag.UserID, &tag.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTagNotFound
		}
		return nil, fmt.Errorf("failed to get tag by ID: %w", err)
	}

	return &tag, nil
}

// ListTags retrieves the user's tags in reverse-alphabetical order.
func (r *Repository) ListTags(ctx context.Context, filter TaxonomyFilter) ([]*model.Tag, error) {
	query := `
		SELECT id, user_id, name
		FROM tags
		WHERE user_id = $1
		ORDER BY name DESC
	`

	if filter.AssignedOnly {
		query = `
			SELECT DISTINCT t.id, t.user_id, t.name
			FROM tags t
			JOIN recipe_tags rt ON rt.tag_id = t.id
			JOIN recipes rec ON rec.id = rt.recipe_id
			WHERE t.user_id = $1 AND rec.user_id = $1
			ORDER BY t.name DESC
		`
	}

	rows, err := r.pool.Query(ctx, query, filter.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	defer rows.Close()

	var tags []*model.Tag
	for rows.Next() {
		var tag model.Tag
		if err := rows.Scan(&tag.ID, &tag.UserID, &tag.Name); err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		tags = append(tags, &tag)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tags: %w", err)
	}

	return tags, nil
}

// UpdateTag renames a tag owned by tag.UserID.
func (r *Repository) UpdateTag(ctx context.Context, tag *model.Tag) error {
	query := `
		UPDATE tags
		SET name = $3
		WHERE id = $1 AND user_id = $2
	`

	result, err := r.pool.Exec(ctx, query, tag.ID, tag.UserID, tag.Name)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrTagExists
		}
		return fmt.Errorf("failed to update tag: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrTagNotFound
	}

	return nil
}

// DeleteTag removes a tag owned by userID. Relation rows cascade; recipes
// that referenced the tag are untouched.
func (r *Repository) DeleteTag(ctx context.Context, id, userID string) error {
	query := `
		DELETE FROM tags
		WHERE id = $1 AND user_id = $2
	`

	result, err := r.pool.Exec(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete tag: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrTagNotFound
	}

	return nil
}

// UpsertTagsByName resolves names into existing-or-newly-created tags for
// the user. The lookup key is the exact name string as stored. Races on
// the same name resolve on the (user_id, name) unique constraint: the
// conflicting writer fetches the surviving row.
func UpsertTagsByName(ctx context.Context, tx pgx.Tx, userID string, names []string) ([]*model.Tag, error) {
	query := `
		INSERT INTO tags (id, user_id, name)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, name) DO UPDATE SET name = excluded.name
		RETURNING id, user_id, name
	`

	tags := make([]*model.Tag, 0, len(names))
	seen := make(map[string]bool, len(names))

	for _, name := range names {
		if seen[name] {
			continue
		}
		seen[name] = true

		var tag model.Tag
		err := tx.QueryRow(ctx, query, model.NewID(), userID, name).Scan(&tag.ID, &tag.UserID, &tag.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to upsert tag %q: %w", name, err)
		}
		tags = append(tags, &tag)
	}

	return tags, nil
}

// ReplaceRecipeTags sets the recipe's tag relation to exactly tagIDs,
// removing prior members not in the new set.
func ReplaceRecipeTags(ctx context.Context, tx pgx.Tx, recipeID string, tagIDs []string) error {
	if _, err := tx.Exec(ctx, `DELETE FROM recipe_tags WHERE recipe_id = $1`, recipeID); err != nil {
		return fmt.Errorf("failed to clear recipe tags: %w", err)
	}

	for _, tagID := range tagIDs {
		_, err := tx.Exec(ctx,
			`INSERT INTO recipe_tags (recipe_id, tag_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			recipeID, tagID,
		)
		if err != nil {
			return fmt.Errorf("failed to attach tag: %w", err)
		}
	}

	return nil
}

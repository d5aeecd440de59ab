//go:build integration

package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"

	"github.com/mealdeck/mealdeck/internal/model"
	"github.com/mealdeck/mealdeck/internal/testutil"
)

func TestIntegrationUserRepository_DuplicateEmail(t *testing.T) {
	repo := testutil.SetupDB(t)
	ctx := context.Background()

	testutil.NewTestUser(t, repo, "dup@example.com")

	second := &model.User{
		ID:           model.NewID(),
		Email:        "dup@example.com",
		PasswordHash: "irrelevant",
		Name:         "Clone",
		IsActive:     true,
	}
	if err := repo.CreateUser(ctx, second); !errors.Is(err, ErrEmailExists) {
		t.Errorf("CreateUser duplicate = %v, want ErrEmailExists", err)
	}
}

func TestIntegrationTagRepository_UpsertByName(t *testing.T) {
	repo := testutil.SetupDB(t)
	ctx := context.Background()
	user := testutil.NewTestUser(t, repo, "upsert@example.com")

	existing := &model.Tag{ID: model.NewID(), UserID: user.ID, Name: "dinner"}
	if err := repo.CreateTag(ctx, existing); err != nil {
		t.Fatalf("CreateTag failed: %v", err)
	}

	var tags []*model.Tag
	err := repo.WithTx(ctx, func(tx pgx.Tx) error {
		var err error
		tags, err = UpsertTagsByName(ctx, tx, user.ID, []string{"dinner", "dinner", "lunch"})
		return err
	})
	if err != nil {
		t.Fatalf("UpsertTagsByName failed: %v", err)
	}

	if len(tags) != 2 {
		t.Fatalf("got %d tags, want 2 (input deduplicated)", len(tags))
	}
	if tags[0].Name != "dinner" || tags[0].ID != existing.ID {
		t.Errorf("existing tag not reused: got %+v", tags[0])
	}
	if tags[1].Name != "lunch" {
		t.Errorf("new tag name = %q, want lunch", tags[1].Name)
	}
}

func TestIntegrationRecipeRepository_DeleteCascadesJoinRows(t *testing.T) {
	repo := testutil.SetupDB(t)
	ctx := context.Background()
	user := testutil.NewTestUser(t, repo, "cascade@example.com")

	recipe := testutil.NewTestRecipe(user.ID, "Doomed")
	err := repo.WithTx(ctx, func(tx pgx.Tx) error {
		if err := CreateRecipe(ctx, tx, recipe); err != nil {
			return err
		}
		tags, err := UpsertTagsByName(ctx, tx, user.ID, []string{"temp"})
		if err != nil {
			return err
		}
		return ReplaceRecipeTags(ctx, tx, recipe.ID, []string{tags[0].ID})
	})
	if err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	if err := repo.DeleteRecipe(ctx, recipe.ID, user.ID); err != nil {
		t.Fatalf("DeleteRecipe failed: %v", err)
	}

	var count int
	err = repo.Pool().QueryRow(ctx, "SELECT COUNT(*) FROM recipe_tags WHERE recipe_id = $1", recipe.ID).Scan(&count)
	if err != nil {
		t.Fatalf("count join rows: %v", err)
	}
	if count != 0 {
		t.Errorf("join rows remaining = %d, want 0", count)
	}

	// The tag itself survives.
	tags, err := repo.ListTags(ctx, TaxonomyFilter{UserID: user.ID})
	if err != nil {
		t.Fatalf("ListTags failed: %v", err)
	}
	if len(tags) != 1 {
		t.Errorf("got %d tags after recipe delete, want 1", len(tags))
	}
}

func TestIntegrationRecipeRepository_SetImageScopedToOwner(t *testing.T) {
	repo := testutil.SetupDB(t)
	ctx := context.Background()
	owner := testutil.NewTestUser(t, repo, "imgowner@example.com")
	other := testutil.NewTestUser(t, repo, "imgother@example.com")

	recipe := testutil.NewTestRecipe(owner.ID, "Pretty")
	err := repo.WithTx(ctx, func(tx pgx.Tx) error {
		return CreateRecipe(ctx, tx, recipe)
	})
	if err != nil {
		t.Fatalf("CreateRecipe failed: %v", err)
	}

	if err := repo.SetRecipeImage(ctx, recipe.ID, other.ID, "uploads/recipe/x.png", ""); !errors.Is(err, ErrRecipeNotFound) {
		t.Errorf("cross-user SetRecipeImage = %v, want ErrRecipeNotFound", err)
	}

	if err := repo.SetRecipeImage(ctx, recipe.ID, owner.ID, "uploads/recipe/x.png", "LKO2?U%2Tw=w"); err != nil {
		t.Fatalf("SetRecipeImage failed: %v", err)
	}

	got, err := repo.GetRecipeByID(ctx, recipe.ID, owner.ID)
	if err != nil {
		t.Fatalf("GetRecipeByID failed: %v", err)
	}
	if got.ImagePath == nil || *got.ImagePath != "uploads/recipe/x.png" {
		t.Errorf("image path = %v", got.ImagePath)
	}
	if got.ImageBlurhash == nil {
		t.Error("blurhash not stored")
	}
}

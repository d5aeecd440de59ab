package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/mealdeck/mealdeck/internal/metrics"
	"github.com/mealdeck/mealdeck/internal/model"
	"github.com/mealdeck/mealdeck/internal/repository"
	"github.com/mealdeck/mealdeck/internal/upload"
	"github.com/mealdeck/mealdeck/internal/validation"
)

// Recipe errors.
var (
	ErrRecipeNotFound = errors.New("recipe not found")
	ErrNotAnImage     = errors.New("uploaded file is not a supported image")
)

// maxPrice mirrors the NUMERIC(5,2) column: at most 999.99.
var maxPrice = decimal.New(99999, -2)

// RecipeService handles recipe business logic.
type RecipeService struct {
	repo     *repository.Repository
	storage  *upload.Storage
	validate *validation.Validator
	metrics  metrics.Recorder
}

// NewRecipeService creates a new RecipeService.
func NewRecipeService(repo *repository.Repository, storage *upload.Storage, recorder metrics.Recorder) *RecipeService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &RecipeService{
		repo:     repo,
		storage:  storage,
		validate: validation.New(),
		metrics:  recorder,
	}
}

// RecipeListInput defines filters for listing recipes.
type RecipeListInput struct {
	UserID        string
	TagIDs        []string
	IngredientIDs []string
}

// List returns the user's recipes, newest first. Tag and ingredient
// filters match recipes carrying any of the given ids; a recipe
// matching several appears once.
func (s *RecipeService) List(ctx context.Context, input RecipeListInput) ([]*model.Recipe, error) {
	recipes, err := s.repo.ListRecipes(ctx, repository.RecipeFilter{
		UserID:        input.UserID,
		TagIDs:        input.TagIDs,
		IngredientIDs: input.IngredientIDs,
	})
	if err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}
	return recipes, nil
}

// Get returns one of the user's recipes with tags and ingredients loaded.
func (s *RecipeService) Get(ctx context.Context, id, userID string) (*model.Recipe, error) {
	recipe, err := s.repo.GetRecipeByID(ctx, id, userID)
	if err != nil {
		if errors.Is(err, repository.ErrRecipeNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, fmt.Errorf("get recipe: %w", err)
	}
	return recipe, nil
}

// CreateRecipeInput defines input for creating a recipe.
// Tags and Ingredients are names; existing ones (by name, per user)
// are reused, new ones are created.
type CreateRecipeInput struct {
	Title       string          `json:"title" validate:"required,max=255"`
	TimeMinutes int             `json:"time_minutes" validate:"gte=0"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
	Link        string          `json:"link" validate:"max=255"`
	Tags        []string        `json:"tags" validate:"dive,required,max=255"`
	Ingredients []string        `json:"ingredients" validate:"dive,required,max=255"`
}

// Create creates a recipe owned by userID, reconciling tag and
// ingredient names inside a single transaction.
func (s *RecipeService) Create(ctx context.Context, userID string, input CreateRecipeInput) (*model.Recipe, error) {
	if err := s.validate.Validate(input); err != nil {
		return nil, err
	}
	if err := validatePrice(input.Price); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	recipe := &model.Recipe{
		ID:          model.NewID(),
		UserID:      userID,
		Title:       input.Title,
		Description: input.Description,
		TimeMinutes: input.TimeMinutes,
		Price:       input.Price,
		Link:        input.Link,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err := s.repo.WithTx(ctx, func(tx pgx.Tx) error {
		if err := repository.CreateRecipe(ctx, tx, recipe); err != nil {
			return err
		}
		return s.reconcileRelations(ctx, tx, recipe, input.Tags, input.Ingredients)
	})
	if err != nil {
		return nil, fmt.Errorf("create recipe: %w", err)
	}

	s.metrics.IncRecipeCreated()

	return recipe, nil
}

// UpdateRecipeInput defines a partial recipe update. Nil fields are
// left unchanged. A non-nil empty Tags or Ingredients slice clears
// the relation.
type UpdateRecipeInput struct {
	Title       *string          `json:"title" validate:"omitempty,max=255"`
	TimeMinutes *int             `json:"time_minutes" validate:"omitempty,gte=0"`
	Price       *decimal.Decimal `json:"price"`
	Description *string          `json:"description"`
	Link        *string          `json:"link" validate:"omitempty,max=255"`
	Tags        *[]string        `json:"tags" validate:"omitempty,dive,required,max=255"`
	Ingredients *[]string        `json:"ingredients" validate:"omitempty,dive,required,max=255"`
}

// Update applies a partial update to one of the user's recipes.
// The owner never changes.
func (s *RecipeService) Update(ctx context.Context, id, userID string, input UpdateRecipeInput) (*model.Recipe, error) {
	if err := s.validate.Validate(input); err != nil {
		return nil, err
	}
	if input.Title != nil && *input.Title == "" {
		return nil, &validation.Error{Fields: map[string]string{"title": "is required"}}
	}
	if input.Price != nil {
		if err := validatePrice(*input.Price); err != nil {
			return nil, err
		}
	}

	err := s.repo.WithTx(ctx, func(tx pgx.Tx) error {
		recipe, err := repository.GetRecipeForUpdate(ctx, tx, id, userID)
		if err != nil {
			return err
		}

		if input.Title != nil {
			recipe.Title = *input.Title
		}
		if input.TimeMinutes != nil {
			recipe.TimeMinutes = *input.TimeMinutes
		}
		if input.Price != nil {
			recipe.Price = *input.Price
		}
		if input.Description != nil {
			recipe.Description = *input.Description
		}
		if input.Link != nil {
			recipe.Link = *input.Link
		}
		recipe.UpdatedAt = time.Now().UTC()

		if err := repository.UpdateRecipe(ctx, tx, recipe); err != nil {
			return err
		}

		if input.Tags != nil {
			tags, err := repository.UpsertTagsByName(ctx, tx, userID, *input.Tags)
			if err != nil {
				return err
			}
			if err := repository.ReplaceRecipeTags(ctx, tx, recipe.ID, tagIDs(tags)); err != nil {
				return err
			}
		}
		if input.Ingredients != nil {
			ingredients, err := repository.UpsertIngredientsByName(ctx, tx, userID, *input.Ingredients)
			if err != nil {
				return err
			}
			if err := repository.ReplaceRecipeIngredients(ctx, tx, recipe.ID, ingredientIDs(ingredients)); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrRecipeNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, fmt.Errorf("update recipe: %w", err)
	}

	s.metrics.IncRecipeUpdated()

	// Reload to return relations as stored.
	return s.Get(ctx, id, userID)
}

// Delete removes one of the user's recipes and its image file.
func (s *RecipeService) Delete(ctx context.Context, id, userID string) error {
	recipe, err := s.repo.GetRecipeByID(ctx, id, userID)
	if err != nil {
		if errors.Is(err, repository.ErrRecipeNotFound) {
			return ErrRecipeNotFound
		}
		return fmt.Errorf("get recipe: %w", err)
	}

	if err := s.repo.DeleteRecipe(ctx, id, userID); err != nil {
		if errors.Is(err, repository.ErrRecipeNotFound) {
			return ErrRecipeNotFound
		}
		return fmt.Errorf("delete recipe: %w", err)
	}

	if recipe.ImagePath != nil {
		// Best effort. The row is already gone.
		_ = s.storage.Delete(*recipe.ImagePath)
	}

	s.metrics.IncRecipeDeleted()

	return nil
}

// UploadImage validates and stores an image for one of the user's
// recipes, replacing any previous one. The stored filename is random;
// only the extension of the original name survives.
func (s *RecipeService) UploadImage(ctx context.Context, id, userID, filename string, data []byte) (*model.Recipe, error) {
	recipe, err := s.repo.GetRecipeByID(ctx, id, userID)
	if err != nil {
		if errors.Is(err, repository.ErrRecipeNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, fmt.Errorf("get recipe: %w", err)
	}

	start := time.Now()

	img, _, err := upload.DecodeImage(data)
	if err != nil {
		return nil, ErrNotAnImage
	}

	blurhash, err := upload.ComputeBlurHash(img)
	if err != nil {
		// The image decoded fine; store it without a placeholder.
		blurhash = ""
	}

	s.metrics.ObserveImageProcessingDuration(time.Since(start))

	path := upload.NewRecipeImagePath(filename)
	if err := s.storage.Save(path, data); err != nil {
		return nil, fmt.Errorf("store image: %w", err)
	}

	if err := s.repo.SetRecipeImage(ctx, id, userID, path, blurhash); err != nil {
		_ = s.storage.Delete(path)
		if errors.Is(err, repository.ErrRecipeNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, fmt.Errorf("set recipe image: %w", err)
	}

	if recipe.ImagePath != nil && *recipe.ImagePath != path {
		_ = s.storage.Delete(*recipe.ImagePath)
	}

	s.metrics.IncImageUploaded()

	return s.Get(ctx, id, userID)
}

// reconcileRelations upserts tag and ingredient names and attaches
// them to the recipe, replacing any existing associations.
func (s *RecipeService) reconcileRelations(ctx context.Context, tx pgx.Tx, recipe *model.Recipe, tagNames, ingredientNames []string) error {
	tags, err := repository.UpsertTagsByName(ctx, tx, recipe.UserID, tagNames)
	if err != nil {
		return err
	}
	if err := repository.ReplaceRecipeTags(ctx, tx, recipe.ID, tagIDs(tags)); err != nil {
		return err
	}

	ingredients, err := repository.UpsertIngredientsByName(ctx, tx, recipe.UserID, ingredientNames)
	if err != nil {
		return err
	}
	if err := repository.ReplaceRecipeIngredients(ctx, tx, recipe.ID, ingredientIDs(ingredients)); err != nil {
		return err
	}

	recipe.Tags = tags
	recipe.Ingredients = ingredients
	return nil
}

// validatePrice enforces the NUMERIC(5,2) column shape: non-negative,
// at most two decimal places, at most 999.99.
func validatePrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return &validation.Error{Fields: map[string]string{"price": "must be greater than or equal to 0"}}
	}
	if price.Exponent() < -2 {
		return &validation.Error{Fields: map[string]string{"price": "must have at most 2 decimal places"}}
	}
	if price.GreaterThan(maxPrice) {
		return &validation.Error{Fields: map[string]string{"price": "must not exceed 999.99"}}
	}
	return nil
}

func tagIDs(tags []*model.Tag) []string {
	ids := make([]string, len(tags))
	for i, t := range tags {
		ids[i] = t.ID
	}
	return ids
}

func ingredientIDs(ingredients []*model.Ingredient) []string {
	ids := make([]string, len(ingredients))
	for i, ing := range ingredients {
		ids[i] = ing.ID
	}
	return ids
}

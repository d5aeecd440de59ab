package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/mealdeck/mealdeck/internal/metrics"
	"github.com/mealdeck/mealdeck/internal/model"
	"github.com/mealdeck/mealdeck/internal/repository"
	"github.com/mealdeck/mealdeck/internal/validation"
)

// IngredientService handles ingredient business logic.
type IngredientService struct {
	repo     *repository.Repository
	validate *validation.Validator
	metrics  metrics.Recorder
}

// NewIngredientService creates a new IngredientService.
func NewIngredientService(repo *repository.Repository, recorder metrics.Recorder) *IngredientService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &IngredientService{
		repo:     repo,
		validate: validation.New(),
		metrics:  recorder,
	}
}

// List returns the user's ingredients ordered by name descending.
// With assignedOnly, only ingredients attached to at least one of
// the user's recipes are returned.
func (s *IngredientService) List(ctx context.Context, userID string, assignedOnly bool) ([]*model.Ingredient, error) {
	ingredients, err := s.repo.ListIngredients(ctx, repository.TaxonomyFilter{
		UserID:       userID,
		AssignedOnly: assignedOnly,
	})
	if err != nil {
		return nil, fmt.Errorf("list ingredients: %w", err)
	}
	return ingredients, nil
}

// Get returns one of the user's ingredients.
func (s *IngredientService) Get(ctx context.Context, id, userID string) (*model.Ingredient, error) {
	ingredient, err := s.repo.GetIngredientByID(ctx, id, userID)
	if err != nil {
		if errors.Is(err, repository.ErrIngredientNotFound) {
			return nil, ErrIngredientNotFound
		}
		return nil, fmt.Errorf("get ingredient: %w", err)
	}
	return ingredient, nil
}

// Create adds an ingredient for the user.
func (s *IngredientService) Create(ctx context.Context, userID string, input TaxonomyInput) (*model.Ingredient, error) {
	if err := s.validate.Validate(input); err != nil {
		return nil, err
	}

	ingredient := &model.Ingredient{
		ID:     model.NewID(),
		UserID: userID,
		Name:   input.Name,
	}

	if err := s.repo.CreateIngredient(ctx, ingredient); err != nil {
		if errors.Is(err, repository.ErrIngredientExists) {
			return nil, ErrNameTaken
		}
		return nil, fmt.Errorf("create ingredient: %w", err)
	}

	return ingredient, nil
}

// Update renames one of the user's ingredients.
func (s *IngredientService) Update(ctx context.Context, id, userID string, input TaxonomyInput) (*model.Ingredient, error) {
	if err := s.validate.Validate(input); err != nil {
		return nil, err
	}

	ingredient, err := s.repo.GetIngredientByID(ctx, id, userID)
	if err != nil {
		if errors.Is(err, repository.ErrIngredientNotFound) {
			return nil, ErrIngredientNotFound
		}
		return nil, fmt.Errorf("get ingredient: %w", err)
	}

	ingredient.Name = input.Name

	if err := s.repo.UpdateIngredient(ctx, ingredient); err != nil {
		switch {
		case errors.Is(err, repository.ErrIngredientExists):
			return nil, ErrNameTaken
		case errors.Is(err, repository.ErrIngredientNotFound):
			return nil, ErrIngredientNotFound
		}
		return nil, fmt.Errorf("update ingredient: %w", err)
	}

	return ingredient, nil
}

// Delete removes one of the user's ingredients. Recipe associations
// are removed by the schema's cascade.
func (s *IngredientService) Delete(ctx context.Context, id, userID string) error {
	if err := s.repo.DeleteIngredient(ctx, id, userID); err != nil {
		if errors.Is(err, repository.ErrIngredientNotFound) {
			return ErrIngredientNotFound
		}
		return fmt.Errorf("delete ingredient: %w", err)
	}
	return nil
}

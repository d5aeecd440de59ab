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

// Taxonomy errors shared by tags and ingredients.
var (
	ErrTagNotFound        = errors.New("tag not found")
	ErrIngredientNotFound = errors.New("ingredient not found")
	ErrNameTaken          = errors.New("name already in use")
)

// TagService handles tag business logic.
type TagService struct {
	repo     *repository.Repository
	validate *validation.Validator
	metrics  metrics.Recorder
}

// NewTagService creates a new TagService.
func NewTagService(repo *repository.Repository, recorder metrics.Recorder) *TagService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &TagService{
		repo:     repo,
		validate: validation.New(),
		metrics:  recorder,
	}
}

// TaxonomyInput defines input for creating or renaming a tag or ingredient.
type TaxonomyInput struct {
	Name string `json:"name" validate:"required,max=255"`
}

// List returns the user's tags ordered by name descending.
// With assignedOnly, only tags attached to at least one of the
// user's recipes are returned.
func (s *TagService) List(ctx context.Context, userID string, assignedOnly bool) ([]*model.Tag, error) {
	tags, err := s.repo.ListTags(ctx, repository.TaxonomyFilter{
		UserID:       userID,
		AssignedOnly: assignedOnly,
	})
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	return tags, nil
}

// Get returns one of the user's tags.
func (s *TagService) Get(ctx context.Context, id, userID string) (*model.Tag, error) {
	tag, err := s.repo.GetTagByID(ctx, id, userID)
	if err != nil {
		if errors.Is(err, repository.ErrTagNotFound) {
			return nil, ErrTagNotFound
		}
		return nil, fmt.Errorf("get tag: %w", err)
	}
	return tag, nil
}

// Create adds a tag for the user.
func (s *TagService) Create(ctx context.Context, userID string, input TaxonomyInput) (*model.Tag, error) {
	if err := s.validate.Validate(input); err != nil {
		return nil, err
	}

	tag := &model.Tag{
		ID:     model.NewID(),
		UserID: userID,
		Name:   input.Name,
	}

	if err := s.repo.CreateTag(ctx, tag); err != nil {
		if errors.Is(err, repository.ErrTagExists) {
			return nil, ErrNameTaken
		}
		return nil, fmt.Errorf("create tag: %w", err)
	}

	return tag, nil
}

// Update renames one of the user's tags.
func (s *TagService) Update(ctx context.Context, id, userID string, input TaxonomyInput) (*model.Tag, error) {
	if err := s.validate.Validate(input); err != nil {
		return nil, err
	}

	tag, err := s.repo.GetTagByID(ctx, id, userID)
	if err != nil {
		if errors.Is(err, repository.ErrTagNotFound) {
			return nil, ErrTagNotFound
		}
		return nil, fmt.Errorf("get tag: %w", err)
	}

	tag.Name = input.Name

	if err := s.repo.UpdateTag(ctx, tag); err != nil {
		switch {
		case errors.Is(err, repository.ErrTagExists):
			return nil, ErrNameTaken
		case errors.Is(err, repository.ErrTagNotFound):
			return nil, ErrTagNotFound
		}
		return nil, fmt.Errorf("update tag: %w", err)
	}

	return tag, nil
}

// Delete removes one of the user's tags. Recipe associations are
// removed by the schema's cascade.
func (s *TagService) Delete(ctx context.Context, id, userID string) error {
	if err := s.repo.DeleteTag(ctx, id, userID); err != nil {
		if errors.Is(err, repository.ErrTagNotFound) {
			return ErrTagNotFound
		}
		return fmt.Errorf("delete tag: %w", err)
	}
	return nil
}

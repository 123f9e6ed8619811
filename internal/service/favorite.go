package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/recipe-share/internal/apperror"
	"github.com/sakif/recipe-share/internal/model"
	"github.com/sakif/recipe-share/internal/repository"
)

type FavoriteService struct {
	favorites repository.FavoriteRepository
	recipes   repository.RecipeRepository
	logger    *slog.Logger
}

func NewFavoriteService(favorites repository.FavoriteRepository, recipes repository.RecipeRepository, logger *slog.Logger) *FavoriteService {
	return &FavoriteService{
		favorites: favorites,
		recipes:   recipes,
		logger:    logger,
	}
}

// Add marks a recipe as a favorite of userID. Adding twice is harmless.
func (s *FavoriteService) Add(ctx context.Context, userID, recipeID string) error {
	r, err := visibleRecipe(ctx, s.recipes, userID, recipeID)
	if err != nil {
		return err
	}
	if err := s.favorites.Add(ctx, r.ID, userID); err != nil {
		return fmt.Errorf("adding favorite: %w", err)
	}
	s.logger.Info("favorite added", slog.String("recipeID", r.ID), slog.String("userID", userID))
	return nil
}

// Remove unmarks a favorite. Removing a recipe that was never a favorite is
// not an error, nor is removing one whose recipe has since been deleted.
func (s *FavoriteService) Remove(ctx context.Context, userID, recipeID string) error {
	if userID == "" {
		return apperror.Unauthorized("sign in to manage favorites")
	}
	recipeID = strings.TrimSpace(recipeID)
	if recipeID == "" {
		return apperror.ValidationFailed("id", "recipe ID is required")
	}
	if err := s.favorites.Remove(ctx, recipeID, userID); err != nil {
		return fmt.Errorf("removing favorite: %w", err)
	}
	return nil
}

func (s *FavoriteService) List(ctx context.Context, userID string) ([]model.Favorite, error) {
	favs, err := s.favorites.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing favorites: %w", err)
	}
	return favs, nil
}

// visibleRecipe loads a recipe the user may interact with: any published
// recipe, or one of their own drafts. Other drafts look missing.
func visibleRecipe(ctx context.Context, recipes repository.RecipeRepository, userID, id string) (*model.Recipe, error) {
	if userID == "" {
		return nil, apperror.Unauthorized("sign in first")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "recipe ID is required")
	}
	r, err := recipes.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !r.IsPublished && r.AuthorID != userID {
		return nil, apperror.NotFound("recipe", id)
	}
	return r, nil
}

package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/recipe-share/internal/model"
	"github.com/sakif/recipe-share/internal/repository"
)

// RatingInput is a 1 to 5 star rating with an optional comment.
type RatingInput struct {
	Rating  int    `json:"rating" validate:"min=1,max=5"`
	Comment string `json:"comment" validate:"max=1000"`
}

type RatingService struct {
	ratings repository.RatingRepository
	recipes repository.RecipeRepository
	logger  *slog.Logger
}

func NewRatingService(ratings repository.RatingRepository, recipes repository.RecipeRepository, logger *slog.Logger) *RatingService {
	return &RatingService{
		ratings: ratings,
		recipes: recipes,
		logger:  logger,
	}
}

// Rate records userID's rating of a recipe, replacing any earlier one.
func (s *RatingService) Rate(ctx context.Context, userID, recipeID string, in RatingInput) (*model.Rating, error) {
	in.Comment = strings.TrimSpace(in.Comment)
	if err := validateInput(in); err != nil {
		return nil, err
	}

	r, err := visibleRecipe(ctx, s.recipes, userID, recipeID)
	if err != nil {
		return nil, err
	}

	rating := &model.Rating{
		RecipeID: r.ID,
		UserID:   userID,
		Rating:   in.Rating,
		Comment:  in.Comment,
	}
	if err := s.ratings.Upsert(ctx, rating); err != nil {
		return nil, fmt.Errorf("saving rating: %w", err)
	}

	s.logger.Info("recipe rated",
		slog.String("recipeID", r.ID),
		slog.String("userID", userID),
		slog.Int("rating", in.Rating),
	)
	return rating, nil
}

func (s *RatingService) ListByUser(ctx context.Context, userID string) ([]model.Rating, error) {
	ratings, err := s.ratings.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing ratings: %w", err)
	}
	return ratings, nil
}

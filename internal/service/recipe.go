package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/recipe-share/internal/apperror"
	"github.com/sakif/recipe-share/internal/cache"
	"github.com/sakif/recipe-share/internal/model"
	"github.com/sakif/recipe-share/internal/repository"
	"github.com/sakif/recipe-share/internal/shaper"
)

// RecipeInput is the authoring form. Strings are trimmed before the tags
// are checked.
type RecipeInput struct {
	Title           string                `json:"title" validate:"required,max=200"`
	Description     string                `json:"description" validate:"max=2000"`
	CategoryID      string                `json:"categoryId" validate:"required"`
	CuisineID       string                `json:"cuisineId"`
	PreparationTime int                   `json:"preparationTime" validate:"gte=0,lte=1440"`
	CookingTime     *int                  `json:"cookingTime" validate:"omitempty,gte=0,lte=1440"`
	Servings        int                   `json:"servings" validate:"gt=0,lte=100"`
	Difficulty      model.Difficulty      `json:"difficulty" validate:"required,oneof=easy medium hard"`
	ImageURL        string                `json:"imageUrl" validate:"omitempty,url"`
	Ingredients     []IngredientLineInput `json:"ingredients" validate:"required,min=1,max=50,dive"`
	Steps           []StepInput           `json:"steps" validate:"required,min=1,max=50,dive"`
	Tags            []string              `json:"tags" validate:"max=10,dive,required,max=30"`
}

type IngredientLineInput struct {
	IngredientID string `json:"ingredientId" validate:"required"`
	Quantity     string `json:"quantity" validate:"required,max=50"`
	Unit         string `json:"unit" validate:"max=30"`
	Notes        string `json:"notes" validate:"max=200"`
}

type StepInput struct {
	Instruction string `json:"instruction" validate:"required,max=2000"`
	ImageURL    string `json:"imageUrl" validate:"omitempty,url"`
	Duration    *int   `json:"duration" validate:"omitempty,gte=0,lte=1440"`
}

func (in *RecipeInput) normalize() {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.CategoryID = strings.TrimSpace(in.CategoryID)
	in.CuisineID = strings.TrimSpace(in.CuisineID)
	in.ImageURL = strings.TrimSpace(in.ImageURL)
	for i := range in.Ingredients {
		l := &in.Ingredients[i]
		l.IngredientID = strings.TrimSpace(l.IngredientID)
		l.Quantity = strings.TrimSpace(l.Quantity)
		l.Unit = strings.TrimSpace(l.Unit)
		l.Notes = strings.TrimSpace(l.Notes)
	}
	for i := range in.Steps {
		in.Steps[i].Instruction = strings.TrimSpace(in.Steps[i].Instruction)
		in.Steps[i].ImageURL = strings.TrimSpace(in.Steps[i].ImageURL)
	}
	for i, t := range in.Tags {
		in.Tags[i] = strings.ToLower(strings.TrimSpace(t))
	}
}

// RecipeService handles recipe authoring and the author's own recipe list.
type RecipeService struct {
	recipes repository.RecipeRepository
	cache   cache.Cache
	logger  *slog.Logger
}

func NewRecipeService(recipes repository.RecipeRepository, c cache.Cache, logger *slog.Logger) *RecipeService {
	return &RecipeService{
		recipes: recipes,
		cache:   c,
		logger:  logger,
	}
}

// Create validates the form and stores the recipe, published, with its
// cuisine link, ingredient lines (in form order), steps (numbered from 1)
// and tags. The store writes all of it in one transaction.
func (s *RecipeService) Create(ctx context.Context, authorID string, in RecipeInput) (*model.Recipe, error) {
	if authorID == "" {
		return nil, apperror.Unauthorized("sign in to publish recipes")
	}

	in.normalize()
	if err := validateInput(in); err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(in.Ingredients))
	for i, l := range in.Ingredients {
		if seen[l.IngredientID] {
			return nil, apperror.ValidationFailed(fmt.Sprintf("ingredients[%d].ingredientId", i),
				"each ingredient may only be listed once")
		}
		seen[l.IngredientID] = true
	}

	r := &model.Recipe{
		Title:           in.Title,
		Description:     in.Description,
		CategoryID:      in.CategoryID,
		PreparationTime: in.PreparationTime,
		CookingTime:     in.CookingTime,
		Servings:        in.Servings,
		Difficulty:      in.Difficulty,
		ImageURL:        in.ImageURL,
		IsPublished:     true,
		AuthorID:        authorID,
	}
	if in.CuisineID != "" {
		r.Cuisines = []model.Cuisine{{ID: in.CuisineID}}
	}
	for i, l := range in.Ingredients {
		r.Ingredients = append(r.Ingredients, model.RecipeIngredient{
			IngredientID: l.IngredientID,
			Quantity:     l.Quantity,
			Unit:         l.Unit,
			Notes:        l.Notes,
			Position:     i,
		})
	}
	for i, st := range in.Steps {
		r.Steps = append(r.Steps, model.CookingStep{
			StepNumber:  i + 1,
			Instruction: st.Instruction,
			ImageURL:    st.ImageURL,
			Duration:    st.Duration,
		})
	}
	for _, name := range dedupe(in.Tags) {
		r.Tags = append(r.Tags, model.Tag{Name: name})
	}

	if err := s.recipes.Create(ctx, r); err != nil {
		return nil, fmt.Errorf("creating recipe: %w", err)
	}

	s.invalidateLookups(ctx)
	s.logger.Info("recipe created",
		slog.String("id", r.ID),
		slog.String("authorID", authorID),
		slog.String("title", r.Title),
	)
	return r, nil
}

// SetPublished publishes or unpublishes one of the caller's recipes.
func (s *RecipeService) SetPublished(ctx context.Context, userID, id string, published bool) error {
	r, err := s.ownedRecipe(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.recipes.SetPublished(ctx, r.ID, published); err != nil {
		return fmt.Errorf("updating recipe %s: %w", r.ID, err)
	}
	s.invalidateLookups(ctx)
	s.logger.Info("recipe publication changed",
		slog.String("id", r.ID),
		slog.Bool("published", published),
	)
	return nil
}

// Delete removes one of the caller's recipes with everything attached to it.
func (s *RecipeService) Delete(ctx context.Context, userID, id string) error {
	r, err := s.ownedRecipe(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.recipes.Delete(ctx, r.ID); err != nil {
		return fmt.Errorf("deleting recipe %s: %w", r.ID, err)
	}
	s.invalidateLookups(ctx)
	s.logger.Info("recipe deleted", slog.String("id", r.ID), slog.String("userID", userID))
	return nil
}

// ListByAuthor returns every recipe of authorID, drafts included, newest
// first. It backs the "my recipes" tab, so failures are returned.
func (s *RecipeService) ListByAuthor(ctx context.Context, authorID string) ([]model.RecipeView, error) {
	if authorID == "" {
		return nil, apperror.ValidationFailed("authorId", "author ID is required")
	}
	recipes, err := s.recipes.Search(ctx, repository.RecipeQuery{AuthorID: authorID})
	if err != nil {
		return nil, fmt.Errorf("listing recipes of %s: %w", authorID, err)
	}
	return shaper.ShapeAll(recipes), nil
}

func (s *RecipeService) ownedRecipe(ctx context.Context, userID, id string) (*model.Recipe, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "recipe ID is required")
	}
	r, err := s.recipes.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if r.AuthorID != userID {
		return nil, apperror.Forbidden("only the author can change this recipe")
	}
	return r, nil
}

// invalidateLookups drops cached aggregates that count recipes. A cache
// failure only delays freshness until the TTL expires.
func (s *RecipeService) invalidateLookups(ctx context.Context) {
	if err := s.cache.Delete(ctx, cacheKeyTopCategories); err != nil {
		s.logger.Warn("failed to invalidate lookup cache", slog.String("error", err.Error()))
	}
}

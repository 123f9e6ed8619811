package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/sakif/recipe-share/internal/apperror"
	"github.com/sakif/recipe-share/internal/metrics"
	"github.com/sakif/recipe-share/internal/model"
	"github.com/sakif/recipe-share/internal/repository"
)

const (
	// MinSuggestQueryLength is the shortest query that reaches the store.
	MinSuggestQueryLength = 2

	SearchSuggestLimit    = 10
	AuthoringSuggestLimit = 5

	MaxIngredientNameLength = 100
)

// Suggestion contexts accepted by SuggestLimitFor.
const (
	SuggestContextSearch    = "search"
	SuggestContextAuthoring = "authoring"
)

// SuggestLimitFor maps the screen asking for suggestions to its list size.
// Unknown contexts get the search page limit.
func SuggestLimitFor(screen string) int {
	if screen == SuggestContextAuthoring {
		return AuthoringSuggestLimit
	}
	return SearchSuggestLimit
}

type IngredientService struct {
	ingredients repository.IngredientRepository
	metrics     *metrics.Metrics
	logger      *slog.Logger
}

func NewIngredientService(ingredients repository.IngredientRepository, m *metrics.Metrics, logger *slog.Logger) *IngredientService {
	return &IngredientService{
		ingredients: ingredients,
		metrics:     m,
		logger:      logger,
	}
}

// Suggest returns up to limit ingredients whose name contains query,
// ignoring case, ordered by name. Queries shorter than two characters (after
// trimming) return an empty list without touching the store. Store failures
// are logged and also yield an empty list; autocomplete never errors.
func (s *IngredientService) Suggest(ctx context.Context, query string, limit int) []model.Ingredient {
	query = strings.TrimSpace(query)
	if utf8.RuneCountInString(query) < MinSuggestQueryLength {
		return []model.Ingredient{}
	}
	if limit <= 0 {
		limit = SearchSuggestLimit
	}

	found, err := s.ingredients.Suggest(ctx, query, limit)
	if err != nil {
		if ctx.Err() == nil {
			s.metrics.SearchFailures.WithLabelValues("ingredients").Inc()
			s.logger.Error("ingredient suggestion failed",
				slog.String("query", query),
				slog.String("error", err.Error()),
			)
		}
		return []model.Ingredient{}
	}
	if found == nil {
		found = []model.Ingredient{}
	}
	return found
}

// FindByName resolves a typed ingredient name to the stored ingredient,
// ignoring case. Unlike Suggest it is exact and not capped by a list size.
func (s *IngredientService) FindByName(ctx context.Context, name string) (*model.Ingredient, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperror.ValidationFailed("name", "ingredient name is required")
	}
	ing, err := s.ingredients.GetByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("finding ingredient %q: %w", name, err)
	}
	return ing, nil
}

// Create adds an ingredient from the authoring form. Names are unique
// regardless of case; a clash is reported as a conflict.
func (s *IngredientService) Create(ctx context.Context, name, description string) (*model.Ingredient, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperror.ValidationFailed("name", "ingredient name is required")
	}
	if utf8.RuneCountInString(name) > MaxIngredientNameLength {
		return nil, apperror.ValidationFailed("name",
			fmt.Sprintf("ingredient name must be %d characters or less", MaxIngredientNameLength))
	}

	ing := &model.Ingredient{
		Name:        name,
		Description: strings.TrimSpace(description),
	}
	if err := s.ingredients.Create(ctx, ing); err != nil {
		return nil, fmt.Errorf("creating ingredient: %w", err)
	}

	s.logger.Info("ingredient created",
		slog.String("id", ing.ID),
		slog.String("name", ing.Name),
	)
	return ing, nil
}

// Package service holds the business rules of the recipe site.
//
// Handlers call services with plain Go values; services validate, enforce
// ownership and call the repository interfaces. Nothing in here knows about
// HTTP or SQL.
//
// Two error policies coexist:
//   - recipe LISTS (search, quick search, latest) are fail-soft: a store
//     failure is logged, counted, and served as an empty list
//   - single-entity loads and all writes return explicit errors
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/recipe-share/internal/apperror"
	"github.com/sakif/recipe-share/internal/metrics"
	"github.com/sakif/recipe-share/internal/model"
	"github.com/sakif/recipe-share/internal/repository"
	"github.com/sakif/recipe-share/internal/shaper"
)

const (
	QuickSearchLimit = 20
	HomeLatestCount  = 6
)

// SearchService composes recipe filters and loads recipe details.
type SearchService struct {
	recipes   repository.RecipeRepository
	favorites repository.FavoriteRepository
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

func NewSearchService(
	recipes repository.RecipeRepository,
	favorites repository.FavoriteRepository,
	m *metrics.Metrics,
	logger *slog.Logger,
) *SearchService {
	return &SearchService{
		recipes:   recipes,
		favorites: favorites,
		metrics:   m,
		logger:    logger,
	}
}

// Search returns the published recipes matching c, newest first, shaped for
// display. The result is never nil.
//
// When c names ingredients the search runs in two phases: first the recipe
// IDs using any of those ingredients are collected (deduplicated, first-seen
// order), then the main query is restricted to them. If no recipe uses the
// ingredients the main query is skipped entirely.
func (s *SearchService) Search(ctx context.Context, c model.FilterCriteria) []model.RecipeView {
	q := repository.RecipeQuery{
		Term:          strings.TrimSpace(c.Term),
		CategoryID:    c.CategoryID,
		CuisineID:     c.CuisineID,
		Difficulty:    c.Difficulty,
		MaxPrepTime:   c.MaxPrepTime,
		PublishedOnly: true,
	}

	if len(c.IngredientIDs) > 0 {
		ids, err := s.recipes.RecipeIDsByIngredients(ctx, dedupe(c.IngredientIDs))
		if err != nil {
			s.listFailed(ctx, "search", err)
			return []model.RecipeView{}
		}
		ids = dedupe(ids)
		if len(ids) == 0 {
			s.metrics.SearchResults.Observe(0)
			return []model.RecipeView{}
		}
		q.RecipeIDs = ids
	}

	views := s.list(ctx, "search", q)
	s.metrics.SearchResults.Observe(float64(len(views)))
	return views
}

// QuickSearch is the term-only search behind the header search box and the
// quick-search chips. A blank term matches nothing.
func (s *SearchService) QuickSearch(ctx context.Context, term string) []model.RecipeView {
	term = strings.TrimSpace(term)
	if term == "" {
		return []model.RecipeView{}
	}
	return s.list(ctx, "quick", repository.RecipeQuery{
		Term:          term,
		PublishedOnly: true,
		Limit:         QuickSearchLimit,
	})
}

// Latest returns the n newest published recipes.
func (s *SearchService) Latest(ctx context.Context, n int) []model.RecipeView {
	if n <= 0 {
		n = HomeLatestCount
	}
	return s.list(ctx, "latest", repository.RecipeQuery{
		PublishedOnly: true,
		Limit:         n,
	})
}

func (s *SearchService) list(ctx context.Context, op string, q repository.RecipeQuery) []model.RecipeView {
	recipes, err := s.recipes.Search(ctx, q)
	if err != nil {
		s.listFailed(ctx, op, err)
		return []model.RecipeView{}
	}
	return shaper.ShapeAll(recipes)
}

// listFailed records a swallowed list failure. A cancelled context means the
// caller went away (or a newer search replaced this one) and is not counted.
func (s *SearchService) listFailed(ctx context.Context, op string, err error) {
	if ctx.Err() != nil {
		s.logger.Debug("recipe list abandoned",
			slog.String("operation", op),
			slog.String("error", err.Error()),
		)
		return
	}
	s.metrics.SearchFailures.WithLabelValues(op).Inc()
	s.logger.Error("recipe list failed, serving empty result",
		slog.String("operation", op),
		slog.String("error", err.Error()),
	)
}

// Detail loads one published recipe with all relations. viewerID may be
// empty for anonymous visitors; otherwise a separate lookup sets IsFavorite.
//
// Unpublished recipes are not found for everyone, the author included.
// Failures are returned as errors, never as partial data.
func (s *SearchService) Detail(ctx context.Context, id, viewerID string) (*model.RecipeDetail, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "recipe ID is required")
	}

	r, err := s.recipes.GetPublished(ctx, id)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, err
		}
		s.logger.Error("failed to load recipe",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("loading recipe %s: %w", id, err)
	}

	detail := &model.RecipeDetail{RecipeView: shaper.Shape(*r)}

	if viewerID != "" {
		fav, err := s.favorites.Exists(ctx, id, viewerID)
		if err != nil {
			s.logger.Error("failed to check favorite",
				slog.String("recipeID", id),
				slog.String("userID", viewerID),
				slog.String("error", err.Error()),
			)
			return nil, fmt.Errorf("checking favorite for recipe %s: %w", id, err)
		}
		detail.IsFavorite = fav
	}

	return detail, nil
}

// dedupe drops repeated IDs, keeping the first occurrence of each.
func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

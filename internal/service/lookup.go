package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sakif/recipe-share/internal/cache"
	"github.com/sakif/recipe-share/internal/metrics"
	"github.com/sakif/recipe-share/internal/model"
	"github.com/sakif/recipe-share/internal/repository"
)

const (
	HomeCategoryCount     = 3
	HomeCuisineCount      = 3
	FilterIngredientCount = 20
)

const (
	cacheKeyCategories    = "lookup:categories"
	cacheKeyCuisines      = "lookup:cuisines"
	cacheKeyTopCategories = "lookup:top-categories"
)

// Home is everything the landing page shows.
type Home struct {
	LatestRecipes []model.RecipeView `json:"latestRecipes"`
	Categories    []model.Category   `json:"categories"`
	Cuisines      []model.Cuisine    `json:"cuisines"`
}

// FilterOptions populates the search page's filter panel.
type FilterOptions struct {
	Categories  []model.Category   `json:"categories"`
	Cuisines    []model.Cuisine    `json:"cuisines"`
	Ingredients []model.Ingredient `json:"ingredients"`
	Difficulty  []model.Difficulty `json:"difficulty"`
}

// LookupService serves the reference data around recipes. Categories and
// cuisines change rarely and are cached.
type LookupService struct {
	lookups     repository.LookupRepository
	ingredients repository.IngredientRepository
	search      *SearchService
	cache       cache.Cache
	cacheTTL    time.Duration
	metrics     *metrics.Metrics
	logger      *slog.Logger
}

func NewLookupService(
	lookups repository.LookupRepository,
	ingredients repository.IngredientRepository,
	search *SearchService,
	c cache.Cache,
	cacheTTL time.Duration,
	m *metrics.Metrics,
	logger *slog.Logger,
) *LookupService {
	return &LookupService{
		lookups:     lookups,
		ingredients: ingredients,
		search:      search,
		cache:       c,
		cacheTTL:    cacheTTL,
		metrics:     m,
		logger:      logger,
	}
}

func (s *LookupService) Categories(ctx context.Context) ([]model.Category, error) {
	return cached(ctx, s, cacheKeyCategories, s.lookups.Categories)
}

func (s *LookupService) Cuisines(ctx context.Context) ([]model.Cuisine, error) {
	return cached(ctx, s, cacheKeyCuisines, s.lookups.Cuisines)
}

// Home loads the newest recipes, the busiest categories and a few cuisines
// concurrently. The recipe list is fail-soft like every recipe list; the
// lookups are not.
func (s *LookupService) Home(ctx context.Context) (*Home, error) {
	var home Home
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		home.LatestRecipes = s.search.Latest(gctx, HomeLatestCount)
		return nil
	})
	g.Go(func() error {
		cats, err := cached(gctx, s, cacheKeyTopCategories, func(ctx context.Context) ([]model.Category, error) {
			return s.lookups.CategoriesWithCounts(ctx, HomeCategoryCount)
		})
		home.Categories = cats
		return err
	})
	g.Go(func() error {
		cuisines, err := s.Cuisines(gctx)
		if len(cuisines) > HomeCuisineCount {
			cuisines = cuisines[:HomeCuisineCount]
		}
		home.Cuisines = cuisines
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("loading home page: %w", err)
	}
	return &home, nil
}

// FilterOptions loads categories, cuisines and the first ingredients
// concurrently.
func (s *LookupService) FilterOptions(ctx context.Context) (*FilterOptions, error) {
	opts := FilterOptions{
		Difficulty: []model.Difficulty{model.DifficultyEasy, model.DifficultyMedium, model.DifficultyHard},
	}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		opts.Categories, err = s.Categories(gctx)
		return err
	})
	g.Go(func() (err error) {
		opts.Cuisines, err = s.Cuisines(gctx)
		return err
	})
	g.Go(func() (err error) {
		opts.Ingredients, err = s.ingredients.List(gctx, FilterIngredientCount)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("loading filter options: %w", err)
	}
	return &opts, nil
}

// cached reads key from the cache or calls load and stores its result. Cache
// errors are logged and bypassed; only load errors reach the caller.
func cached[T any](ctx context.Context, s *LookupService, key string, load func(context.Context) ([]T, error)) ([]T, error) {
	var out []T
	err := cache.GetJSON(ctx, s.cache, key, &out)
	switch {
	case err == nil:
		s.metrics.CacheHit()
		return out, nil
	case !errors.Is(err, cache.ErrMiss):
		s.logger.Warn("cache read failed", slog.String("key", key), slog.String("error", err.Error()))
	}
	s.metrics.CacheMiss()

	out, err = load(ctx)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []T{}
	}
	if err := cache.SetJSON(ctx, s.cache, key, out, s.cacheTTL); err != nil {
		s.logger.Warn("cache write failed", slog.String("key", key), slog.String("error", err.Error()))
	}
	return out, nil
}

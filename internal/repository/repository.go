// Package repository declares the storage contracts the services depend on.
// The only implementation lives in repository/sqlstore; tests use in-memory
// fakes.
package repository

import (
	"context"

	"github.com/sakif/recipe-share/internal/model"
)

// RecipeQuery is the composed predicate for a recipe list. Every non-zero
// field narrows the result; all of them are AND'd together.
//
// RecipeIDs distinguishes nil (no restriction) from an empty, non-nil slice
// (restrict to nothing, so the result is empty).
type RecipeQuery struct {
	Term          string // case-insensitive substring of title OR description
	CategoryID    string
	CuisineID     string // matches when any cuisine link has this ID
	Difficulty    model.Difficulty
	MaxPrepTime   *int // preparation_time <= MaxPrepTime
	RecipeIDs     []string
	AuthorID      string
	PublishedOnly bool
	Limit         int // 0 means no limit
}

// RecipeRepository reads and writes recipes with their relations.
type RecipeRepository interface {
	// Search returns recipes matching q, newest first, with author,
	// category, cuisines, ratings and ingredient lines expanded.
	Search(ctx context.Context, q RecipeQuery) ([]model.Recipe, error)

	// RecipeIDsByIngredients returns the recipe ID of every ingredient line
	// whose ingredient is in ingredientIDs. IDs repeat when a recipe uses
	// more than one of the requested ingredients.
	RecipeIDsByIngredients(ctx context.Context, ingredientIDs []string) ([]string, error)

	// GetPublished loads a published recipe with every relation, steps in
	// step order. Unpublished and missing recipes are both ErrNotFound.
	GetPublished(ctx context.Context, id string) (*model.Recipe, error)

	// GetByID loads the bare recipe row regardless of publication.
	GetByID(ctx context.Context, id string) (*model.Recipe, error)

	// Create inserts the recipe with its cuisine links, ingredient lines,
	// steps and tags in one transaction. Tags are matched by name and
	// created when missing.
	Create(ctx context.Context, r *model.Recipe) error

	SetPublished(ctx context.Context, id string, published bool) error
	Delete(ctx context.Context, id string) error
}

type IngredientRepository interface {
	// Suggest returns ingredients whose name contains query, ignoring case,
	// ordered by name.
	Suggest(ctx context.Context, query string, limit int) ([]model.Ingredient, error)
	// GetByName finds the ingredient with exactly this name, ignoring case.
	GetByName(ctx context.Context, name string) (*model.Ingredient, error)
	List(ctx context.Context, limit int) ([]model.Ingredient, error)
	Create(ctx context.Context, ing *model.Ingredient) error
}

type LookupRepository interface {
	Categories(ctx context.Context) ([]model.Category, error)
	Cuisines(ctx context.Context) ([]model.Cuisine, error)
	// CategoriesWithCounts returns categories with their published recipe
	// counts, most populated first.
	CategoriesWithCounts(ctx context.Context, limit int) ([]model.Category, error)
}

type FavoriteRepository interface {
	// Add and Remove are idempotent.
	Add(ctx context.Context, recipeID, userID string) error
	Remove(ctx context.Context, recipeID, userID string) error
	Exists(ctx context.Context, recipeID, userID string) (bool, error)
	ListByUser(ctx context.Context, userID string) ([]model.Favorite, error)
}

type RatingRepository interface {
	// Upsert replaces the user's previous rating of the recipe, if any.
	Upsert(ctx context.Context, r *model.Rating) error
	ListByUser(ctx context.Context, userID string) ([]model.Rating, error)
}

type ProfileRepository interface {
	Create(ctx context.Context, p *model.Profile) error
	GetByID(ctx context.Context, id string) (*model.Profile, error)
	GetByEmail(ctx context.Context, email string) (*model.Profile, error)
	// UsernameTaken reports whether another profile (not excludeID) uses
	// username.
	UsernameTaken(ctx context.Context, username, excludeID string) (bool, error)
	Update(ctx context.Context, p *model.Profile) error
	// UpsertGitHub creates or refreshes the profile linked to p.GitHubID.
	UpsertGitHub(ctx context.Context, p *model.Profile) error
}

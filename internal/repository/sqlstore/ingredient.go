package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/sakif/recipe-share/internal/apperror"
	"github.com/sakif/recipe-share/internal/model"
	"github.com/sakif/recipe-share/internal/repository"
)

var _ repository.IngredientRepository = (*IngredientStore)(nil)

type IngredientStore struct {
	db *DB
}

// Suggest matches query anywhere in the name, ignoring case, ordered by
// name and capped at limit.
func (s *IngredientStore) Suggest(ctx context.Context, query string, limit int) ([]model.Ingredient, error) {
	return s.list(ctx,
		`SELECT id, name, description FROM ingredients
		 WHERE {fold}(name) LIKE ? ESCAPE '\'
		 ORDER BY name LIMIT ?`,
		likePattern(query), limit,
	)
}

// GetByName compares folded names, the same way the unique index does, so
// at most one row can match.
func (s *IngredientStore) GetByName(ctx context.Context, name string) (*model.Ingredient, error) {
	var ing model.Ingredient
	err := s.db.queryRow(ctx, s.db.conn,
		`SELECT id, name, description FROM ingredients WHERE {fold}(name) = ?`,
		strings.ToLower(name),
	).Scan(&ing.ID, &ing.Name, &ing.Description)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("ingredient", name)
		}
		return nil, fmt.Errorf("sqlstore: getting ingredient %q: %w", name, err)
	}
	return &ing, nil
}

// List returns the first ingredients by name, for populating pickers.
func (s *IngredientStore) List(ctx context.Context, limit int) ([]model.Ingredient, error) {
	return s.list(ctx,
		`SELECT id, name, description FROM ingredients ORDER BY name LIMIT ?`, limit,
	)
}

func (s *IngredientStore) list(ctx context.Context, query string, args ...any) ([]model.Ingredient, error) {
	rows, err := s.db.query(ctx, s.db.conn, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: listing ingredients: %w", err)
	}
	defer rows.Close()

	out := []model.Ingredient{}
	for rows.Next() {
		var ing model.Ingredient
		if err := rows.Scan(&ing.ID, &ing.Name, &ing.Description); err != nil {
			return nil, fmt.Errorf("sqlstore: scanning ingredient: %w", err)
		}
		out = append(out, ing)
	}
	return out, rows.Err()
}

// Create inserts a new ingredient. A name that already exists in any letter
// case is a conflict.
func (s *IngredientStore) Create(ctx context.Context, ing *model.Ingredient) error {
	ing.ID = newID()
	_, err := s.db.exec(ctx, s.db.conn,
		`INSERT INTO ingredients (id, name, description) VALUES (?, ?, ?)`,
		ing.ID, ing.Name, ing.Description,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Duplicate("name")
		}
		return fmt.Errorf("sqlstore: inserting ingredient %q: %w", ing.Name, err)
	}
	return nil
}

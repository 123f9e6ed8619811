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

// compile-time check that *RecipeStore implements repository.RecipeRepository
var _ repository.RecipeRepository = (*RecipeStore)(nil)

type RecipeStore struct {
	db *DB
}

const recipeColumns = `r.id, r.title, r.description, r.category_id, r.preparation_time,
	r.cooking_time, r.servings, r.difficulty, r.image_url, r.is_published,
	r.author_id, r.created_at, r.updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecipe(s rowScanner) (model.Recipe, error) {
	var r model.Recipe
	var cooking sql.NullInt64
	var difficulty string
	err := s.Scan(
		&r.ID,
		&r.Title,
		&r.Description,
		&r.CategoryID,
		&r.PreparationTime,
		&cooking,
		&r.Servings,
		&difficulty,
		&r.ImageURL,
		&r.IsPublished,
		&r.AuthorID,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	r.CookingTime = intFromNull(cooking)
	r.Difficulty = model.Difficulty(difficulty)
	return r, err
}

// buildSearch composes the SELECT for a recipe list. Term predicates are
// OR'd with each other; everything else is AND'd.
func buildSearch(q repository.RecipeQuery) (string, []any) {
	var (
		where []string
		args  []any
	)

	if q.PublishedOnly {
		where = append(where, "r.is_published = ?")
		args = append(args, true)
	}
	if q.AuthorID != "" {
		where = append(where, "r.author_id = ?")
		args = append(args, q.AuthorID)
	}
	if term := strings.TrimSpace(q.Term); term != "" {
		where = append(where, `({fold}(r.title) LIKE ? ESCAPE '\' OR {fold}(r.description) LIKE ? ESCAPE '\')`)
		p := likePattern(term)
		args = append(args, p, p)
	}
	if q.CategoryID != "" {
		where = append(where, "r.category_id = ?")
		args = append(args, q.CategoryID)
	}
	if q.Difficulty != "" {
		where = append(where, "r.difficulty = ?")
		args = append(args, string(q.Difficulty))
	}
	if q.MaxPrepTime != nil {
		where = append(where, "r.preparation_time <= ?")
		args = append(args, *q.MaxPrepTime)
	}
	if q.CuisineID != "" {
		where = append(where, "EXISTS (SELECT 1 FROM recipe_cuisines rc WHERE rc.recipe_id = r.id AND rc.cuisine_id = ?)")
		args = append(args, q.CuisineID)
	}
	if len(q.RecipeIDs) > 0 {
		placeholders, idArgs := inArgs(q.RecipeIDs)
		where = append(where, "r.id IN ("+placeholders+")")
		args = append(args, idArgs...)
	}

	query := `SELECT ` + recipeColumns + ` FROM recipes r`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY r.created_at DESC, r.id DESC"
	if q.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, q.Limit)
	}
	return query, args
}

// Search returns matching recipes newest first with list-level relations.
func (s *RecipeStore) Search(ctx context.Context, q repository.RecipeQuery) ([]model.Recipe, error) {
	if q.RecipeIDs != nil && len(q.RecipeIDs) == 0 {
		return []model.Recipe{}, nil
	}

	query, args := buildSearch(q)
	rows, err := s.db.query(ctx, s.db.conn, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: searching recipes: %w", err)
	}

	recipes := []model.Recipe{}
	for rows.Next() {
		r, err := scanRecipe(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("sqlstore: scanning recipe: %w", err)
		}
		recipes = append(recipes, r)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("sqlstore: iterating recipes: %w", err)
	}
	rows.Close()

	if err := s.db.expand(ctx, s.db.conn, recipes, expandList); err != nil {
		return nil, err
	}
	return recipes, nil
}

// RecipeIDsByIngredients runs the ingredient sub-query of a search. The
// result keeps one entry per matching ingredient line; callers dedupe.
func (s *RecipeStore) RecipeIDsByIngredients(ctx context.Context, ingredientIDs []string) ([]string, error) {
	if len(ingredientIDs) == 0 {
		return []string{}, nil
	}

	placeholders, args := inArgs(ingredientIDs)
	rows, err := s.db.query(ctx, s.db.conn,
		`SELECT recipe_id FROM recipe_ingredients WHERE ingredient_id IN (`+placeholders+`)`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: selecting recipes by ingredient: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("sqlstore: scanning recipe id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// GetPublished loads a published recipe with every relation expanded.
func (s *RecipeStore) GetPublished(ctx context.Context, id string) (*model.Recipe, error) {
	r, err := scanRecipe(s.db.queryRow(ctx, s.db.conn,
		`SELECT `+recipeColumns+` FROM recipes r WHERE r.id = ? AND r.is_published = ?`,
		id, true,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("recipe", id)
		}
		return nil, fmt.Errorf("sqlstore: getting recipe %s: %w", id, err)
	}

	recipes := []model.Recipe{r}
	if err := s.db.expand(ctx, s.db.conn, recipes, expandDetail); err != nil {
		return nil, err
	}
	return &recipes[0], nil
}

// GetByID returns the bare recipe row, published or not.
func (s *RecipeStore) GetByID(ctx context.Context, id string) (*model.Recipe, error) {
	r, err := scanRecipe(s.db.queryRow(ctx, s.db.conn,
		`SELECT `+recipeColumns+` FROM recipes r WHERE r.id = ?`, id,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("recipe", id)
		}
		return nil, fmt.Errorf("sqlstore: getting recipe %s: %w", id, err)
	}
	return &r, nil
}

// Create writes the recipe and everything hanging off it in a single
// transaction. On any failure nothing is left behind.
//
// Fills in r.ID, timestamps, and the IDs of tags that were created.
func (s *RecipeStore) Create(ctx context.Context, r *model.Recipe) error {
	tx, err := s.db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlstore: beginning recipe transaction: %w", err)
	}
	// Rollback after Commit is a no-op.
	defer tx.Rollback()

	ts := now()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = ts
	}
	r.UpdatedAt = r.CreatedAt
	r.ID = newID()

	_, err = s.db.exec(ctx, tx,
		`INSERT INTO recipes (id, title, description, category_id, preparation_time, cooking_time,
		                      servings, difficulty, image_url, is_published, author_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID,
		r.Title,
		r.Description,
		r.CategoryID,
		r.PreparationTime,
		nullableInt(r.CookingTime),
		r.Servings,
		string(r.Difficulty),
		r.ImageURL,
		r.IsPublished,
		r.AuthorID,
		r.CreatedAt,
		r.UpdatedAt,
	)
	if err != nil {
		return s.writeError("inserting recipe", err)
	}

	for i, c := range r.Cuisines {
		if _, err := s.db.exec(ctx, tx,
			`INSERT INTO recipe_cuisines (recipe_id, cuisine_id, position) VALUES (?, ?, ?)`,
			r.ID, c.ID, i,
		); err != nil {
			return s.writeError("linking cuisine", err)
		}
	}

	for i := range r.Ingredients {
		line := &r.Ingredients[i]
		line.RecipeID = r.ID
		line.Position = i
		if _, err := s.db.exec(ctx, tx,
			`INSERT INTO recipe_ingredients (recipe_id, ingredient_id, quantity, unit, notes, position)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			r.ID, line.IngredientID, line.Quantity, line.Unit, line.Notes, line.Position,
		); err != nil {
			return s.writeError("inserting ingredient line", err)
		}
	}

	for _, step := range r.Steps {
		if _, err := s.db.exec(ctx, tx,
			`INSERT INTO cooking_steps (recipe_id, step_number, instruction, image_url, duration)
			 VALUES (?, ?, ?, ?, ?)`,
			r.ID, step.StepNumber, step.Instruction, step.ImageURL, nullableInt(step.Duration),
		); err != nil {
			return s.writeError("inserting step", err)
		}
	}

	linked := make(map[string]bool, len(r.Tags))
	for i := range r.Tags {
		tag := &r.Tags[i]
		if err := s.findOrCreateTag(ctx, tx, tag); err != nil {
			return err
		}
		if linked[tag.ID] {
			continue
		}
		linked[tag.ID] = true
		if _, err := s.db.exec(ctx, tx,
			`INSERT INTO recipe_tags (recipe_id, tag_id) VALUES (?, ?)`, r.ID, tag.ID,
		); err != nil {
			return s.writeError("linking tag", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlstore: committing recipe: %w", err)
	}
	return nil
}

// findOrCreateTag resolves tag by name inside tx, inserting it when new.
func (s *RecipeStore) findOrCreateTag(ctx context.Context, tx *sql.Tx, tag *model.Tag) error {
	err := s.db.queryRow(ctx, tx,
		`SELECT id, color FROM tags WHERE name = ?`, tag.Name,
	).Scan(&tag.ID, &tag.Color)
	if err == nil {
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("sqlstore: looking up tag %q: %w", tag.Name, err)
	}

	tag.ID = newID()
	if _, err := s.db.exec(ctx, tx,
		`INSERT INTO tags (id, name, color) VALUES (?, ?, ?)`, tag.ID, tag.Name, tag.Color,
	); err != nil {
		return s.writeError("inserting tag", err)
	}
	return nil
}

// writeError translates constraint failures into domain errors and wraps
// anything else.
func (s *RecipeStore) writeError(action string, err error) error {
	switch {
	case isUniqueViolation(err):
		return apperror.Duplicate("")
	case isForeignKeyViolation(err):
		return apperror.ValidationFailed("",
			"referenced category, cuisine or ingredient does not exist")
	}
	return fmt.Errorf("sqlstore: %s: %w", action, err)
}

func (s *RecipeStore) SetPublished(ctx context.Context, id string, published bool) error {
	res, err := s.db.exec(ctx, s.db.conn,
		`UPDATE recipes SET is_published = ?, updated_at = ? WHERE id = ?`,
		published, now(), id,
	)
	if err != nil {
		return fmt.Errorf("sqlstore: updating recipe %s: %w", id, err)
	}
	return requireAffected(res, "recipe", id)
}

// Delete removes the recipe; links, steps, ratings and favorites go with it
// through ON DELETE CASCADE.
func (s *RecipeStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.exec(ctx, s.db.conn, `DELETE FROM recipes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlstore: deleting recipe %s: %w", id, err)
	}
	return requireAffected(res, "recipe", id)
}

func requireAffected(res sql.Result, resource, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlstore: checking rows affected: %w", err)
	}
	if n == 0 {
		return apperror.NotFound(resource, id)
	}
	return nil
}

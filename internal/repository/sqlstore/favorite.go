package sqlstore

import (
	"context"
	"fmt"

	"github.com/sakif/recipe-share/internal/apperror"
	"github.com/sakif/recipe-share/internal/model"
	"github.com/sakif/recipe-share/internal/repository"
)

var (
	_ repository.FavoriteRepository = (*FavoriteStore)(nil)
	_ repository.RatingRepository   = (*RatingStore)(nil)
)

type FavoriteStore struct {
	db *DB
}

// Add marks the recipe as a favorite of the user. Marking it twice is fine.
func (s *FavoriteStore) Add(ctx context.Context, recipeID, userID string) error {
	_, err := s.db.exec(ctx, s.db.conn,
		`INSERT INTO favorites (recipe_id, user_id, created_at) VALUES (?, ?, ?)
		 ON CONFLICT (recipe_id, user_id) DO NOTHING`,
		recipeID, userID, now(),
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperror.NotFound("recipe", recipeID)
		}
		return fmt.Errorf("sqlstore: adding favorite %s for %s: %w", recipeID, userID, err)
	}
	return nil
}

// Remove unmarks the recipe. Removing a missing favorite is not an error.
func (s *FavoriteStore) Remove(ctx context.Context, recipeID, userID string) error {
	_, err := s.db.exec(ctx, s.db.conn,
		`DELETE FROM favorites WHERE recipe_id = ? AND user_id = ?`, recipeID, userID,
	)
	if err != nil {
		return fmt.Errorf("sqlstore: removing favorite %s for %s: %w", recipeID, userID, err)
	}
	return nil
}

func (s *FavoriteStore) Exists(ctx context.Context, recipeID, userID string) (bool, error) {
	var n int
	err := s.db.queryRow(ctx, s.db.conn,
		`SELECT COUNT(*) FROM favorites WHERE recipe_id = ? AND user_id = ?`, recipeID, userID,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("sqlstore: checking favorite %s for %s: %w", recipeID, userID, err)
	}
	return n > 0, nil
}

// ListByUser returns the user's favorites newest first.
func (s *FavoriteStore) ListByUser(ctx context.Context, userID string) ([]model.Favorite, error) {
	rows, err := s.db.query(ctx, s.db.conn,
		`SELECT f.recipe_id, f.user_id, f.created_at, r.title, r.image_url
		 FROM favorites f
		 JOIN recipes r ON r.id = f.recipe_id
		 WHERE f.user_id = ?
		 ORDER BY f.created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: listing favorites of %s: %w", userID, err)
	}
	defer rows.Close()

	out := []model.Favorite{}
	for rows.Next() {
		var f model.Favorite
		ref := &model.RecipeRef{}
		if err := rows.Scan(&f.RecipeID, &f.UserID, &f.CreatedAt, &ref.Title, &ref.ImageURL); err != nil {
			return nil, fmt.Errorf("sqlstore: scanning favorite: %w", err)
		}
		ref.ID = f.RecipeID
		f.Recipe = ref
		out = append(out, f)
	}
	return out, rows.Err()
}

type RatingStore struct {
	db *DB
}

// Upsert writes the user's rating for a recipe, replacing an earlier one.
// The original created_at is kept on replacement.
func (s *RatingStore) Upsert(ctx context.Context, r *model.Rating) error {
	ts := now()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = ts
	}
	_, err := s.db.exec(ctx, s.db.conn,
		`INSERT INTO ratings (recipe_id, user_id, rating, comment, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (recipe_id, user_id)
		 DO UPDATE SET rating = excluded.rating, comment = excluded.comment, updated_at = excluded.updated_at`,
		r.RecipeID, r.UserID, r.Rating, r.Comment, r.CreatedAt, ts,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperror.NotFound("recipe", r.RecipeID)
		}
		return fmt.Errorf("sqlstore: rating recipe %s: %w", r.RecipeID, err)
	}
	return nil
}

// ListByUser returns the user's ratings newest first.
func (s *RatingStore) ListByUser(ctx context.Context, userID string) ([]model.Rating, error) {
	rows, err := s.db.query(ctx, s.db.conn,
		`SELECT ra.recipe_id, ra.user_id, ra.rating, ra.comment, ra.created_at, r.title, r.image_url
		 FROM ratings ra
		 JOIN recipes r ON r.id = ra.recipe_id
		 WHERE ra.user_id = ?
		 ORDER BY ra.created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: listing ratings of %s: %w", userID, err)
	}
	defer rows.Close()

	out := []model.Rating{}
	for rows.Next() {
		var rt model.Rating
		ref := &model.RecipeRef{}
		if err := rows.Scan(&rt.RecipeID, &rt.UserID, &rt.Rating, &rt.Comment, &rt.CreatedAt,
			&ref.Title, &ref.ImageURL); err != nil {
			return nil, fmt.Errorf("sqlstore: scanning rating: %w", err)
		}
		ref.ID = rt.RecipeID
		rt.Recipe = ref
		out = append(out, rt)
	}
	return out, rows.Err()
}

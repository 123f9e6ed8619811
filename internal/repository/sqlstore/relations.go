package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sakif/recipe-share/internal/model"
)

// Relations are loaded in batches: one query per relation for the whole
// page of recipes, keyed back by recipe ID. Each loader reads its rows to
// completion before returning, because SQLite runs on a single connection
// and an open *sql.Rows would block the next query.

type expandLevel int

const (
	// expandList is what recipe cards need.
	expandList expandLevel = iota
	// expandDetail adds steps, tags, favorite markers and rating authors.
	expandDetail
)

func (db *DB) expand(ctx context.Context, q queryer, recipes []model.Recipe, level expandLevel) error {
	if len(recipes) == 0 {
		return nil
	}

	index := make(map[string]int, len(recipes))
	ids := make([]string, 0, len(recipes))
	authorIDs := make([]string, 0, len(recipes))
	categoryIDs := make([]string, 0, len(recipes))
	for i := range recipes {
		r := &recipes[i]
		index[r.ID] = i
		ids = append(ids, r.ID)
		authorIDs = append(authorIDs, r.AuthorID)
		categoryIDs = append(categoryIDs, r.CategoryID)
		r.Cuisines = []model.Cuisine{}
		r.Ratings = []model.Rating{}
		r.Ingredients = []model.RecipeIngredient{}
	}

	authors, err := db.loadAuthors(ctx, q, authorIDs)
	if err != nil {
		return err
	}
	categories, err := db.loadCategories(ctx, q, categoryIDs)
	if err != nil {
		return err
	}
	for i := range recipes {
		if a, ok := authors[recipes[i].AuthorID]; ok {
			recipes[i].Author = &a
		}
		if c, ok := categories[recipes[i].CategoryID]; ok {
			recipes[i].Category = &c
		}
	}

	if err := db.loadCuisines(ctx, q, ids, recipes, index); err != nil {
		return err
	}
	if err := db.loadRatings(ctx, q, ids, recipes, index); err != nil {
		return err
	}
	if err := db.loadIngredientLines(ctx, q, ids, recipes, index); err != nil {
		return err
	}

	if level < expandDetail {
		return nil
	}

	for i := range recipes {
		recipes[i].Steps = []model.CookingStep{}
		recipes[i].Tags = []model.Tag{}
		recipes[i].FavoritedBy = []string{}
	}
	if err := db.loadSteps(ctx, q, ids, recipes, index); err != nil {
		return err
	}
	if err := db.loadTags(ctx, q, ids, recipes, index); err != nil {
		return err
	}
	return db.loadFavoriteMarkers(ctx, q, ids, recipes, index)
}

func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func (db *DB) loadAuthors(ctx context.Context, q queryer, ids []string) (map[string]model.ProfileSummary, error) {
	placeholders, args := inArgs(dedupe(ids))
	rows, err := db.query(ctx, q,
		`SELECT id, username, full_name, avatar_url FROM profiles WHERE id IN (`+placeholders+`)`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: loading authors: %w", err)
	}
	defer rows.Close()

	out := make(map[string]model.ProfileSummary)
	for rows.Next() {
		var p model.ProfileSummary
		if err := rows.Scan(&p.ID, &p.Username, &p.FullName, &p.AvatarURL); err != nil {
			return nil, fmt.Errorf("sqlstore: scanning author: %w", err)
		}
		out[p.ID] = p
	}
	return out, rows.Err()
}

func (db *DB) loadCategories(ctx context.Context, q queryer, ids []string) (map[string]model.Category, error) {
	placeholders, args := inArgs(dedupe(ids))
	rows, err := db.query(ctx, q,
		`SELECT id, name, description FROM categories WHERE id IN (`+placeholders+`)`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: loading categories: %w", err)
	}
	defer rows.Close()

	out := make(map[string]model.Category)
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description); err != nil {
			return nil, fmt.Errorf("sqlstore: scanning category: %w", err)
		}
		out[c.ID] = c
	}
	return out, rows.Err()
}

func (db *DB) loadCuisines(ctx context.Context, q queryer, ids []string, recipes []model.Recipe, index map[string]int) error {
	placeholders, args := inArgs(ids)
	rows, err := db.query(ctx, q,
		`SELECT rc.recipe_id, c.id, c.name, c.country_code
		 FROM recipe_cuisines rc
		 JOIN cuisines c ON c.id = rc.cuisine_id
		 WHERE rc.recipe_id IN (`+placeholders+`)
		 ORDER BY rc.recipe_id, rc.position`,
		args...,
	)
	if err != nil {
		return fmt.Errorf("sqlstore: loading cuisines: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var recipeID string
		var c model.Cuisine
		if err := rows.Scan(&recipeID, &c.ID, &c.Name, &c.CountryCode); err != nil {
			return fmt.Errorf("sqlstore: scanning cuisine: %w", err)
		}
		r := &recipes[index[recipeID]]
		r.Cuisines = append(r.Cuisines, c)
	}
	return rows.Err()
}

func (db *DB) loadRatings(ctx context.Context, q queryer, ids []string, recipes []model.Recipe, index map[string]int) error {
	placeholders, args := inArgs(ids)
	rows, err := db.query(ctx, q,
		`SELECT ra.recipe_id, ra.user_id, ra.rating, ra.comment, ra.created_at,
		        p.username, p.full_name, p.avatar_url
		 FROM ratings ra
		 LEFT JOIN profiles p ON p.id = ra.user_id
		 WHERE ra.recipe_id IN (`+placeholders+`)
		 ORDER BY ra.created_at DESC`,
		args...,
	)
	if err != nil {
		return fmt.Errorf("sqlstore: loading ratings: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var rt model.Rating
		var username, fullName, avatar sql.NullString
		if err := rows.Scan(&rt.RecipeID, &rt.UserID, &rt.Rating, &rt.Comment, &rt.CreatedAt,
			&username, &fullName, &avatar); err != nil {
			return fmt.Errorf("sqlstore: scanning rating: %w", err)
		}
		if username.Valid {
			rt.Author = &model.ProfileSummary{
				ID:        rt.UserID,
				Username:  username.String,
				FullName:  fullName.String,
				AvatarURL: avatar.String,
			}
		}
		r := &recipes[index[rt.RecipeID]]
		r.Ratings = append(r.Ratings, rt)
	}
	return rows.Err()
}

func (db *DB) loadIngredientLines(ctx context.Context, q queryer, ids []string, recipes []model.Recipe, index map[string]int) error {
	placeholders, args := inArgs(ids)
	rows, err := db.query(ctx, q,
		`SELECT ri.recipe_id, ri.ingredient_id, ri.quantity, ri.unit, ri.notes, ri.position,
		        i.name, i.description
		 FROM recipe_ingredients ri
		 JOIN ingredients i ON i.id = ri.ingredient_id
		 WHERE ri.recipe_id IN (`+placeholders+`)
		 ORDER BY ri.recipe_id, ri.position`,
		args...,
	)
	if err != nil {
		return fmt.Errorf("sqlstore: loading ingredient lines: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var line model.RecipeIngredient
		ing := &model.Ingredient{}
		if err := rows.Scan(&line.RecipeID, &line.IngredientID, &line.Quantity, &line.Unit,
			&line.Notes, &line.Position, &ing.Name, &ing.Description); err != nil {
			return fmt.Errorf("sqlstore: scanning ingredient line: %w", err)
		}
		ing.ID = line.IngredientID
		line.Ingredient = ing
		r := &recipes[index[line.RecipeID]]
		r.Ingredients = append(r.Ingredients, line)
	}
	return rows.Err()
}

func (db *DB) loadSteps(ctx context.Context, q queryer, ids []string, recipes []model.Recipe, index map[string]int) error {
	placeholders, args := inArgs(ids)
	rows, err := db.query(ctx, q,
		`SELECT recipe_id, step_number, instruction, image_url, duration
		 FROM cooking_steps
		 WHERE recipe_id IN (`+placeholders+`)
		 ORDER BY recipe_id, step_number ASC`,
		args...,
	)
	if err != nil {
		return fmt.Errorf("sqlstore: loading steps: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var recipeID string
		var s model.CookingStep
		var duration sql.NullInt64
		if err := rows.Scan(&recipeID, &s.StepNumber, &s.Instruction, &s.ImageURL, &duration); err != nil {
			return fmt.Errorf("sqlstore: scanning step: %w", err)
		}
		s.Duration = intFromNull(duration)
		r := &recipes[index[recipeID]]
		r.Steps = append(r.Steps, s)
	}
	return rows.Err()
}

func (db *DB) loadTags(ctx context.Context, q queryer, ids []string, recipes []model.Recipe, index map[string]int) error {
	placeholders, args := inArgs(ids)
	rows, err := db.query(ctx, q,
		`SELECT rt.recipe_id, t.id, t.name, t.color
		 FROM recipe_tags rt
		 JOIN tags t ON t.id = rt.tag_id
		 WHERE rt.recipe_id IN (`+placeholders+`)
		 ORDER BY rt.recipe_id, t.name`,
		args...,
	)
	if err != nil {
		return fmt.Errorf("sqlstore: loading tags: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var recipeID string
		var t model.Tag
		if err := rows.Scan(&recipeID, &t.ID, &t.Name, &t.Color); err != nil {
			return fmt.Errorf("sqlstore: scanning tag: %w", err)
		}
		r := &recipes[index[recipeID]]
		r.Tags = append(r.Tags, t)
	}
	return rows.Err()
}

func (db *DB) loadFavoriteMarkers(ctx context.Context, q queryer, ids []string, recipes []model.Recipe, index map[string]int) error {
	placeholders, args := inArgs(ids)
	rows, err := db.query(ctx, q,
		`SELECT recipe_id, user_id FROM favorites WHERE recipe_id IN (`+placeholders+`)`,
		args...,
	)
	if err != nil {
		return fmt.Errorf("sqlstore: loading favorites: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var recipeID, userID string
		if err := rows.Scan(&recipeID, &userID); err != nil {
			return fmt.Errorf("sqlstore: scanning favorite: %w", err)
		}
		r := &recipes[index[recipeID]]
		r.FavoritedBy = append(r.FavoritedBy, userID)
	}
	return rows.Err()
}

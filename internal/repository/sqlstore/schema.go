package sqlstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/recipe-share/internal/model"
)

// schema is applied statement by statement on every start. {ts} stands for
// the timestamp column type of the dialect and {fold} for its lowercasing
// function.
//
// For now CREATE ... IF NOT EXISTS is enough. Once a column has to change
// on a live database this needs real versioned migrations.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS profiles (
		id                 TEXT PRIMARY KEY,
		username           TEXT NOT NULL UNIQUE,
		email              TEXT NOT NULL UNIQUE,
		full_name          TEXT NOT NULL DEFAULT '',
		bio                TEXT NOT NULL DEFAULT '',
		avatar_url         TEXT NOT NULL DEFAULT '',
		cooking_experience TEXT NOT NULL DEFAULT 'beginner',
		password_hash      TEXT NOT NULL DEFAULT '',
		github_id          BIGINT UNIQUE,
		created_at         {ts} NOT NULL,
		updated_at         {ts} NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS categories (
		id          TEXT PRIMARY KEY,
		name        TEXT NOT NULL UNIQUE,
		description TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS cuisines (
		id           TEXT PRIMARY KEY,
		name         TEXT NOT NULL UNIQUE,
		country_code TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS ingredients (
		id          TEXT PRIMARY KEY,
		name        TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT ''
	)`,
	// idx_ingredients_name used SQLite's ASCII-only LOWER and is replaced.
	`DROP INDEX IF EXISTS idx_ingredients_name`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_ingredients_name_folded ON ingredients ({fold}(name))`,
	`CREATE TABLE IF NOT EXISTS tags (
		id    TEXT PRIMARY KEY,
		name  TEXT NOT NULL UNIQUE,
		color TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS recipes (
		id               TEXT PRIMARY KEY,
		title            TEXT NOT NULL,
		description      TEXT NOT NULL DEFAULT '',
		category_id      TEXT NOT NULL REFERENCES categories(id),
		preparation_time INTEGER NOT NULL,
		cooking_time     INTEGER,
		servings         INTEGER NOT NULL,
		difficulty       TEXT NOT NULL,
		image_url        TEXT NOT NULL DEFAULT '',
		is_published     BOOLEAN NOT NULL DEFAULT FALSE,
		author_id        TEXT NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
		created_at       {ts} NOT NULL,
		updated_at       {ts} NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_recipes_created_at ON recipes (created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_recipes_author_id ON recipes (author_id)`,
	`CREATE INDEX IF NOT EXISTS idx_recipes_category_id ON recipes (category_id)`,
	`CREATE TABLE IF NOT EXISTS recipe_cuisines (
		recipe_id  TEXT NOT NULL REFERENCES recipes(id) ON DELETE CASCADE,
		cuisine_id TEXT NOT NULL REFERENCES cuisines(id),
		position   INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (recipe_id, cuisine_id)
	)`,
	`CREATE TABLE IF NOT EXISTS recipe_ingredients (
		recipe_id     TEXT NOT NULL REFERENCES recipes(id) ON DELETE CASCADE,
		ingredient_id TEXT NOT NULL REFERENCES ingredients(id),
		quantity      TEXT NOT NULL,
		unit          TEXT NOT NULL DEFAULT '',
		notes         TEXT NOT NULL DEFAULT '',
		position      INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (recipe_id, ingredient_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_recipe_ingredients_ingredient ON recipe_ingredients (ingredient_id)`,
	`CREATE TABLE IF NOT EXISTS cooking_steps (
		recipe_id   TEXT NOT NULL REFERENCES recipes(id) ON DELETE CASCADE,
		step_number INTEGER NOT NULL,
		instruction TEXT NOT NULL,
		image_url   TEXT NOT NULL DEFAULT '',
		duration    INTEGER,
		PRIMARY KEY (recipe_id, step_number)
	)`,
	`CREATE TABLE IF NOT EXISTS recipe_tags (
		recipe_id TEXT NOT NULL REFERENCES recipes(id) ON DELETE CASCADE,
		tag_id    TEXT NOT NULL REFERENCES tags(id),
		PRIMARY KEY (recipe_id, tag_id)
	)`,
	`CREATE TABLE IF NOT EXISTS ratings (
		recipe_id  TEXT NOT NULL REFERENCES recipes(id) ON DELETE CASCADE,
		user_id    TEXT NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
		rating     INTEGER NOT NULL CHECK (rating BETWEEN 1 AND 5),
		comment    TEXT NOT NULL DEFAULT '',
		created_at {ts} NOT NULL,
		updated_at {ts} NOT NULL,
		PRIMARY KEY (recipe_id, user_id)
	)`,
	`CREATE TABLE IF NOT EXISTS favorites (
		recipe_id  TEXT NOT NULL REFERENCES recipes(id) ON DELETE CASCADE,
		user_id    TEXT NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
		created_at {ts} NOT NULL,
		PRIMARY KEY (recipe_id, user_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_favorites_user_id ON favorites (user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_ratings_user_id ON ratings (user_id)`,
}

func (db *DB) migrate() error {
	tsType := "DATETIME"
	if db.dialect == DialectPostgres {
		tsType = "TIMESTAMPTZ"
	}
	tokens := strings.NewReplacer("{ts}", tsType, "{fold}", db.foldFunc())
	for i, stmt := range schema {
		if _, err := db.conn.Exec(tokens.Replace(stmt)); err != nil {
			return fmt.Errorf("schema statement %d: %w", i, err)
		}
	}
	return nil
}

var (
	defaultCategories = []model.Category{
		{Name: "Breakfast", Description: "Morning dishes and brunch"},
		{Name: "Soups", Description: "Broths, stews and cream soups"},
		{Name: "Salads", Description: "Fresh and warm salads"},
		{Name: "Main Course", Description: "Hearty dishes for lunch and dinner"},
		{Name: "Baking", Description: "Bread, pies and pastries"},
		{Name: "Desserts", Description: "Sweet dishes and treats"},
		{Name: "Drinks", Description: "Smoothies, lemonades and hot drinks"},
	}
	defaultCuisines = []model.Cuisine{
		{Name: "Italian", CountryCode: "IT"},
		{Name: "French", CountryCode: "FR"},
		{Name: "Mexican", CountryCode: "MX"},
		{Name: "Japanese", CountryCode: "JP"},
		{Name: "Indian", CountryCode: "IN"},
		{Name: "Georgian", CountryCode: "GE"},
		{Name: "Russian", CountryCode: "RU"},
	}
)

// SeedLookups fills categories and cuisines with a default set when the
// tables are empty. Existing rows are never touched.
func (db *DB) SeedLookups(ctx context.Context) error {
	lookups := db.Lookups()

	var n int
	if err := db.queryRow(ctx, db.conn, `SELECT COUNT(*) FROM categories`).Scan(&n); err != nil {
		return fmt.Errorf("sqlstore: counting categories: %w", err)
	}
	if n == 0 {
		for _, c := range defaultCategories {
			if err := lookups.CreateCategory(ctx, &c); err != nil {
				return err
			}
		}
	}

	if err := db.queryRow(ctx, db.conn, `SELECT COUNT(*) FROM cuisines`).Scan(&n); err != nil {
		return fmt.Errorf("sqlstore: counting cuisines: %w", err)
	}
	if n == 0 {
		for _, c := range defaultCuisines {
			if err := lookups.CreateCuisine(ctx, &c); err != nil {
				return err
			}
		}
	}
	return nil
}

func newID() string { return xid.New().String() }

// now is UTC so SQLite's text timestamps sort chronologically.
func now() time.Time { return time.Now().UTC() }

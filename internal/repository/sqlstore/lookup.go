package sqlstore

import (
	"context"
	"fmt"

	"github.com/sakif/recipe-share/internal/apperror"
	"github.com/sakif/recipe-share/internal/model"
	"github.com/sakif/recipe-share/internal/repository"
)

var _ repository.LookupRepository = (*LookupStore)(nil)

// LookupStore serves the small reference tables: categories and cuisines.
type LookupStore struct {
	db *DB
}

func (s *LookupStore) Categories(ctx context.Context) ([]model.Category, error) {
	rows, err := s.db.query(ctx, s.db.conn,
		`SELECT id, name, description FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: listing categories: %w", err)
	}
	defer rows.Close()

	out := []model.Category{}
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description); err != nil {
			return nil, fmt.Errorf("sqlstore: scanning category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *LookupStore) Cuisines(ctx context.Context) ([]model.Cuisine, error) {
	rows, err := s.db.query(ctx, s.db.conn,
		`SELECT id, name, country_code FROM cuisines ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: listing cuisines: %w", err)
	}
	defer rows.Close()

	out := []model.Cuisine{}
	for rows.Next() {
		var c model.Cuisine
		if err := rows.Scan(&c.ID, &c.Name, &c.CountryCode); err != nil {
			return nil, fmt.Errorf("sqlstore: scanning cuisine: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// CategoriesWithCounts counts published recipes per category. Categories
// without recipes are included with a zero count.
func (s *LookupStore) CategoriesWithCounts(ctx context.Context, limit int) ([]model.Category, error) {
	rows, err := s.db.query(ctx, s.db.conn,
		`SELECT c.id, c.name, c.description, COUNT(r.id) AS recipe_count
		 FROM categories c
		 LEFT JOIN recipes r ON r.category_id = c.id AND r.is_published = ?
		 GROUP BY c.id, c.name, c.description
		 ORDER BY recipe_count DESC, c.name
		 LIMIT ?`,
		true, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: counting recipes per category: %w", err)
	}
	defer rows.Close()

	out := []model.Category{}
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.RecipeCount); err != nil {
			return nil, fmt.Errorf("sqlstore: scanning category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *LookupStore) CreateCategory(ctx context.Context, c *model.Category) error {
	c.ID = newID()
	_, err := s.db.exec(ctx, s.db.conn,
		`INSERT INTO categories (id, name, description) VALUES (?, ?, ?)`,
		c.ID, c.Name, c.Description,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Duplicate("name")
		}
		return fmt.Errorf("sqlstore: inserting category %q: %w", c.Name, err)
	}
	return nil
}

func (s *LookupStore) CreateCuisine(ctx context.Context, c *model.Cuisine) error {
	c.ID = newID()
	_, err := s.db.exec(ctx, s.db.conn,
		`INSERT INTO cuisines (id, name, country_code) VALUES (?, ?, ?)`,
		c.ID, c.Name, c.CountryCode,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Duplicate("name")
		}
		return fmt.Errorf("sqlstore: inserting cuisine %q: %w", c.Name, err)
	}
	return nil
}

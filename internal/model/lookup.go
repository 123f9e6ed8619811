package model

// Category groups recipes by meal type (Breakfast, Desserts, ...).
// RecipeCount is only filled by queries that aggregate it.
type Category struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	RecipeCount int    `json:"recipeCount,omitempty"`
}

// Cuisine is a regional cooking style. CountryCode is ISO 3166 alpha-2.
type Cuisine struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	CountryCode string `json:"countryCode,omitempty"`
}

// Ingredient names are unique ignoring case.
type Ingredient struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Tag is a free-form label attached to recipes, found or created by name.
type Tag struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

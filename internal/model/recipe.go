// Package model defines the data structures used throughout the application.
//
// Rows that come back from the store carry their related rows inline
// (author, category, cuisines, ratings, ingredients...). A relation that was
// not loaded is left empty, so readers must treat a nil slice the same as an
// empty one.
package model

import "time"

// Difficulty is the self-assessed effort of a recipe.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Valid reports whether d is one of the known difficulty levels.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// Recipe is a published or draft recipe together with whatever relations
// the query expanded.
//
// CookingTime is a pointer because "no cooking" is a real value the author
// can leave blank; it is not the same as zero minutes in the form, but it
// counts as zero for total time.
type Recipe struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	CategoryID      string     `json:"categoryId"`
	PreparationTime int        `json:"preparationTime"`
	CookingTime     *int       `json:"cookingTime,omitempty"`
	Servings        int        `json:"servings"`
	Difficulty      Difficulty `json:"difficulty"`
	ImageURL        string     `json:"imageUrl,omitempty"`
	IsPublished     bool       `json:"isPublished"`
	AuthorID        string     `json:"authorId"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`

	Author      *ProfileSummary    `json:"author,omitempty"`
	Category    *Category          `json:"category,omitempty"`
	Cuisines    []Cuisine          `json:"cuisines"`
	Ratings     []Rating           `json:"ratings"`
	Ingredients []RecipeIngredient `json:"ingredients"`
	Steps       []CookingStep      `json:"steps,omitempty"`
	Tags        []Tag              `json:"tags,omitempty"`
	FavoritedBy []string           `json:"favoritedBy,omitempty"`
}

// Ref returns the short form of r used inside favorites and ratings lists.
func (r Recipe) Ref() RecipeRef {
	return RecipeRef{ID: r.ID, Title: r.Title, ImageURL: r.ImageURL}
}

// RecipeRef is the minimal recipe shape embedded in profile tabs.
type RecipeRef struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	ImageURL string `json:"imageUrl,omitempty"`
}

// RecipeIngredient links a recipe to an ingredient with an amount.
// Position keeps the order the author entered them in.
type RecipeIngredient struct {
	RecipeID     string      `json:"recipeId,omitempty"`
	IngredientID string      `json:"ingredientId"`
	Quantity     string      `json:"quantity"`
	Unit         string      `json:"unit,omitempty"`
	Notes        string      `json:"notes,omitempty"`
	Position     int         `json:"position"`
	Ingredient   *Ingredient `json:"ingredient,omitempty"`
}

// CookingStep is one numbered instruction. Duration is in minutes.
type CookingStep struct {
	StepNumber  int    `json:"stepNumber"`
	Instruction string `json:"instruction"`
	ImageURL    string `json:"imageUrl,omitempty"`
	Duration    *int   `json:"duration,omitempty"`
}

// Rating is a single user's score for a recipe. There is at most one per
// (recipe, user) pair.
type Rating struct {
	RecipeID  string          `json:"recipeId"`
	UserID    string          `json:"userId"`
	Rating    int             `json:"rating"`
	Comment   string          `json:"comment,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
	Author    *ProfileSummary `json:"author,omitempty"`
	Recipe    *RecipeRef      `json:"recipe,omitempty"`
}

// Favorite marks a recipe as saved by a user.
type Favorite struct {
	RecipeID  string     `json:"recipeId"`
	UserID    string     `json:"userId"`
	CreatedAt time.Time  `json:"createdAt"`
	Recipe    *RecipeRef `json:"recipe,omitempty"`
}

// RecipeView is a recipe plus the fields derived for list and detail
// display. AverageRating is nil when nobody has rated the recipe yet, which
// is not the same as an average of zero.
type RecipeView struct {
	Recipe
	AverageRating   *float64           `json:"averageRating"`
	Cuisine         *Cuisine           `json:"cuisine"`
	MainIngredients []RecipeIngredient `json:"mainIngredients"`
	TotalTime       int                `json:"totalTime"`
}

// RecipeDetail is the single-recipe page payload.
type RecipeDetail struct {
	RecipeView
	IsFavorite bool `json:"isFavorite"`
}

// Package shaper derives the display fields of a recipe from its raw row
// and expanded relations. Everything here is pure: no I/O, no clock, no
// mutation of the input.
package shaper

import "github.com/sakif/recipe-share/internal/model"

// MainIngredientCount is how many ingredients a recipe card shows.
const MainIngredientCount = 3

// AverageRating returns the arithmetic mean of the ratings, or nil when
// there are none. Callers render nil as "not rated yet".
func AverageRating(ratings []model.Rating) *float64 {
	if len(ratings) == 0 {
		return nil
	}
	sum := 0
	for _, r := range ratings {
		sum += r.Rating
	}
	avg := float64(sum) / float64(len(ratings))
	return &avg
}

// PrimaryCuisine is the first linked cuisine, if any.
func PrimaryCuisine(cuisines []model.Cuisine) *model.Cuisine {
	if len(cuisines) == 0 {
		return nil
	}
	c := cuisines[0]
	return &c
}

// MainIngredients returns at most the first three ingredient lines in the
// order they were entered. The result is a fresh slice.
func MainIngredients(ingredients []model.RecipeIngredient) []model.RecipeIngredient {
	n := min(len(ingredients), MainIngredientCount)
	out := make([]model.RecipeIngredient, n)
	copy(out, ingredients[:n])
	return out
}

// TotalTime is preparation plus cooking minutes; a missing cooking time
// counts as zero.
func TotalTime(preparation int, cooking *int) int {
	if cooking == nil {
		return preparation
	}
	return preparation + *cooking
}

// Shape builds the view of a single recipe.
func Shape(r model.Recipe) model.RecipeView {
	return model.RecipeView{
		Recipe:          r,
		AverageRating:   AverageRating(r.Ratings),
		Cuisine:         PrimaryCuisine(r.Cuisines),
		MainIngredients: MainIngredients(r.Ingredients),
		TotalTime:       TotalTime(r.PreparationTime, r.CookingTime),
	}
}

// ShapeAll shapes every recipe, preserving order. It never returns nil.
func ShapeAll(recipes []model.Recipe) []model.RecipeView {
	views := make([]model.RecipeView, 0, len(recipes))
	for _, r := range recipes {
		views = append(views, Shape(r))
	}
	return views
}

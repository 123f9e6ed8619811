package handler

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/sakif/recipe-share/internal/apperror"
	"github.com/sakif/recipe-share/internal/model"
)

// maxIngredientFilters caps the repeatable ingredient parameter. Each ID
// becomes a bound SQL variable.
const maxIngredientFilters = 50

// parseCriteria reads the search panel's query string:
//
//	?q=pasta&category=ID&cuisine=ID&difficulty=easy&max_time=30&ingredient=ID&ingredient=ID
//
// Absent or blank parameters leave that dimension open.
func parseCriteria(q url.Values) (model.FilterCriteria, error) {
	c := model.FilterCriteria{
		Term:       strings.TrimSpace(q.Get("q")),
		CategoryID: strings.TrimSpace(q.Get("category")),
		CuisineID:  strings.TrimSpace(q.Get("cuisine")),
	}

	if raw := strings.TrimSpace(q.Get("difficulty")); raw != "" {
		d := model.Difficulty(strings.ToLower(raw))
		if !d.Valid() {
			return c, apperror.ValidationFailed("difficulty", "difficulty must be one of: easy, medium, hard")
		}
		c.Difficulty = d
	}

	if raw := strings.TrimSpace(q.Get("max_time")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return c, apperror.ValidationFailed("max_time", "max_time must be a whole number of minutes")
		}
		c.MaxPrepTime = &n
	}

	for _, id := range q["ingredient"] {
		if id = strings.TrimSpace(id); id != "" {
			c.IngredientIDs = append(c.IngredientIDs, id)
		}
	}
	if len(c.IngredientIDs) > maxIngredientFilters {
		return c, apperror.ValidationFailed("ingredient",
			fmt.Sprintf("at most %d ingredients can be selected", maxIngredientFilters))
	}
	return c, nil
}

package model

// FilterCriteria is what the search panel submits. Zero values mean "no
// constraint": an empty Term, CategoryID, CuisineID or Difficulty, a nil
// MaxPrepTime and an empty IngredientIDs all leave that dimension open.
//
// MaxPrepTime is compared against the preparation time only; cooking time
// is not part of the threshold.
type FilterCriteria struct {
	Term          string     `json:"term,omitempty"`
	CategoryID    string     `json:"categoryId,omitempty"`
	CuisineID     string     `json:"cuisineId,omitempty"`
	Difficulty    Difficulty `json:"difficulty,omitempty"`
	MaxPrepTime   *int       `json:"maxPrepTime,omitempty"`
	IngredientIDs []string   `json:"ingredientIds,omitempty"`
}

// IngredientSelection is the ordered set of ingredients picked in a search
// or authoring form. Adding an ingredient that is already present and
// removing one that is absent are both no-ops.
//
// The zero value is ready to use. Not safe for concurrent use.
type IngredientSelection struct {
	order []string
	items map[string]Ingredient
}

// Add appends ing unless an ingredient with the same ID is already selected.
// It reports whether the selection changed.
func (s *IngredientSelection) Add(ing Ingredient) bool {
	if s.items == nil {
		s.items = make(map[string]Ingredient)
	}
	if _, ok := s.items[ing.ID]; ok {
		return false
	}
	s.items[ing.ID] = ing
	s.order = append(s.order, ing.ID)
	return true
}

// Remove drops the ingredient with the given ID and reports whether it was
// selected.
func (s *IngredientSelection) Remove(id string) bool {
	if _, ok := s.items[id]; !ok {
		return false
	}
	delete(s.items, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

// Contains reports whether id is selected.
func (s *IngredientSelection) Contains(id string) bool {
	_, ok := s.items[id]
	return ok
}

// IDs returns the selected IDs in insertion order.
func (s *IngredientSelection) IDs() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Items returns the selected ingredients in insertion order.
func (s *IngredientSelection) Items() []Ingredient {
	out := make([]Ingredient, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.items[id])
	}
	return out
}

func (s *IngredientSelection) Len() int { return len(s.order) }

package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/sakif/recipe-share/internal/apperror"
	"github.com/sakif/recipe-share/internal/model"
)

func newTestRecipeService(t *testing.T) (*RecipeService, *fakeRecipeRepo, *memCache) {
	t.Helper()
	repo := newFakeRecipeRepo()
	c := newMemCache()
	return NewRecipeService(repo, c, testLogger()), repo, c
}

func validRecipeInput() RecipeInput {
	return RecipeInput{
		Title:           "  Shakshuka ",
		Description:     "Eggs poached in spiced tomato sauce",
		CategoryID:      "cat-breakfast",
		CuisineID:       "cuisine-tn",
		PreparationTime: 10,
		CookingTime:     intPtr(20),
		Servings:        2,
		Difficulty:      model.DifficultyEasy,
		Ingredients: []IngredientLineInput{
			{IngredientID: "egg", Quantity: "4"},
			{IngredientID: "tomato", Quantity: "400", Unit: "g"},
		},
		Steps: []StepInput{
			{Instruction: "Simmer the sauce"},
			{Instruction: "Crack in the eggs", Duration: intPtr(8)},
		},
		Tags: []string{"Spicy", "spicy ", "vegetarian"},
	}
}

// =========================================================================
// CREATE TESTS
// =========================================================================

func TestRecipeCreate(t *testing.T) {
	svc, repo, _ := newTestRecipeService(t)

	r, err := svc.Create(context.Background(), "author-1", validRecipeInput())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if r.ID == "" || repo.recipes[r.ID] == nil {
		t.Fatal("Create() should store the recipe and set its ID")
	}
	if r.Title != "Shakshuka" {
		t.Errorf("Title = %q, want trimmed", r.Title)
	}
	if !r.IsPublished || r.AuthorID != "author-1" {
		t.Errorf("IsPublished = %v, AuthorID = %q", r.IsPublished, r.AuthorID)
	}
	if len(r.Cuisines) != 1 || r.Cuisines[0].ID != "cuisine-tn" {
		t.Errorf("Cuisines = %+v", r.Cuisines)
	}
	for i, line := range r.Ingredients {
		if line.Position != i {
			t.Errorf("Ingredients[%d].Position = %d", i, line.Position)
		}
	}
	for i, st := range r.Steps {
		if st.StepNumber != i+1 {
			t.Errorf("Steps[%d].StepNumber = %d, want %d", i, st.StepNumber, i+1)
		}
	}
	if len(r.Tags) != 2 || r.Tags[0].Name != "spicy" || r.Tags[1].Name != "vegetarian" {
		t.Errorf("Tags = %+v, want lower-cased and deduplicated", r.Tags)
	}
}

func TestRecipeCreate_WithoutCuisine(t *testing.T) {
	svc, _, _ := newTestRecipeService(t)
	in := validRecipeInput()
	in.CuisineID = ""

	r, err := svc.Create(context.Background(), "author-1", in)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if len(r.Cuisines) != 0 {
		t.Errorf("Cuisines = %+v, want none", r.Cuisines)
	}
}

func TestRecipeCreate_Validation(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*RecipeInput)
		wantField string
	}{
		{"missing title", func(in *RecipeInput) { in.Title = "   " }, "title"},
		{"missing category", func(in *RecipeInput) { in.CategoryID = "" }, "categoryId"},
		{"zero servings", func(in *RecipeInput) { in.Servings = 0 }, "servings"},
		{"negative prep time", func(in *RecipeInput) { in.PreparationTime = -5 }, "preparationTime"},
		{"unknown difficulty", func(in *RecipeInput) { in.Difficulty = "extreme" }, "difficulty"},
		{"no ingredients", func(in *RecipeInput) { in.Ingredients = nil }, "ingredients"},
		{"empty ingredient list", func(in *RecipeInput) { in.Ingredients = []IngredientLineInput{} }, "ingredients"},
		{"line without quantity", func(in *RecipeInput) { in.Ingredients[1].Quantity = " " }, "ingredients[1].quantity"},
		{"no steps", func(in *RecipeInput) { in.Steps = nil }, "steps"},
		{"blank step", func(in *RecipeInput) { in.Steps[0].Instruction = "" }, "steps[0].instruction"},
		{"too many tags", func(in *RecipeInput) {
			in.Tags = strings.Split("a,b,c,d,e,f,g,h,i,j,k", ",")
		}, "tags"},
		{"duplicate ingredient", func(in *RecipeInput) {
			in.Ingredients[1].IngredientID = "egg"
		}, "ingredients[1].ingredientId"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, _ := newTestRecipeService(t)
			in := validRecipeInput()
			tt.mutate(&in)

			_, err := svc.Create(context.Background(), "author-1", in)

			if !errors.Is(err, apperror.ErrValidation) {
				t.Fatalf("error = %v, want ErrValidation", err)
			}
			var appErr *apperror.AppError
			if errors.As(err, &appErr) && appErr.Field != tt.wantField {
				t.Errorf("Field = %q, want %q", appErr.Field, tt.wantField)
			}
			if len(repo.recipes) != 0 {
				t.Error("an invalid recipe must not be stored")
			}
		})
	}
}

func TestRecipeCreate_RequiresAuthor(t *testing.T) {
	svc, _, _ := newTestRecipeService(t)
	_, err := svc.Create(context.Background(), "", validRecipeInput())
	if !errors.Is(err, apperror.ErrUnauthorized) {
		t.Errorf("error = %v, want ErrUnauthorized", err)
	}
}

func TestRecipeCreate_InvalidatesCategoryCounts(t *testing.T) {
	svc, _, c := newTestRecipeService(t)
	_ = c.Set(context.Background(), cacheKeyTopCategories, []byte(`[]`), 0)
	_ = c.Set(context.Background(), cacheKeyCuisines, []byte(`[]`), 0)

	if _, err := svc.Create(context.Background(), "author-1", validRecipeInput()); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if c.has(cacheKeyTopCategories) {
		t.Error("category counts should be dropped after a new recipe")
	}
	if !c.has(cacheKeyCuisines) {
		t.Error("the cuisine list does not depend on recipes and should stay cached")
	}
}

// =========================================================================
// OWNERSHIP TESTS
// =========================================================================

func TestSetPublished(t *testing.T) {
	svc, repo, _ := newTestRecipeService(t)
	repo.add(publishedRecipe("r1", "Pancakes", 1))

	if err := svc.SetPublished(context.Background(), "author-1", " r1 ", false); err != nil {
		t.Fatalf("SetPublished() error = %v", err)
	}
	if repo.recipes["r1"].IsPublished {
		t.Error("recipe should be unpublished")
	}

	err := svc.SetPublished(context.Background(), "intruder", "r1", true)
	if !errors.Is(err, apperror.ErrForbidden) {
		t.Errorf("error = %v, want ErrForbidden", err)
	}
	if repo.recipes["r1"].IsPublished {
		t.Error("a forbidden call must not change the recipe")
	}
}

func TestRecipeDelete(t *testing.T) {
	svc, repo, _ := newTestRecipeService(t)
	repo.add(publishedRecipe("r1", "Pancakes", 1))

	if err := svc.Delete(context.Background(), "intruder", "r1"); !errors.Is(err, apperror.ErrForbidden) {
		t.Errorf("Delete() by non-author error = %v, want ErrForbidden", err)
	}
	if err := svc.Delete(context.Background(), "author-1", "r1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, ok := repo.recipes["r1"]; ok {
		t.Error("recipe still stored after Delete()")
	}
	if err := svc.Delete(context.Background(), "author-1", "r1"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("second Delete() error = %v, want ErrNotFound", err)
	}
}

func TestListByAuthor_IncludesDrafts(t *testing.T) {
	svc, repo, _ := newTestRecipeService(t)
	repo.add(publishedRecipe("r1", "Pancakes", 1))
	draft := publishedRecipe("r2", "Waffles", 2)
	draft.IsPublished = false
	repo.add(draft)
	other := publishedRecipe("r3", "Curry", 3)
	other.AuthorID = "author-2"
	repo.add(other)

	got, err := svc.ListByAuthor(context.Background(), "author-1")
	if err != nil {
		t.Fatalf("ListByAuthor() error = %v", err)
	}
	if want := []string{"r2", "r1"}; !equalIDs(viewIDs(got), want) {
		t.Errorf("ListByAuthor() = %v, want %v", viewIDs(got), want)
	}
}

func TestListByAuthor_StoreFailureIsReturned(t *testing.T) {
	svc, repo, _ := newTestRecipeService(t)
	repo.searchErr = errors.New("database is locked")

	if _, err := svc.ListByAuthor(context.Background(), "author-1"); err == nil {
		t.Error("ListByAuthor() should return store failures")
	}
}

package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sakif/recipe-share/internal/apperror"
	"github.com/sakif/recipe-share/internal/cache"
	"github.com/sakif/recipe-share/internal/model"
	"github.com/sakif/recipe-share/internal/repository"
)

// =========================================================================
// FAKE REPOSITORIES
// =========================================================================
//
// In-memory stand-ins for the sqlstore types. They implement just enough of
// the query semantics for the services' rules to be observable, and count
// calls so tests can assert that a store was (or was not) consulted.

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

var _ repository.RecipeRepository = (*fakeRecipeRepo)(nil)

type fakeRecipeRepo struct {
	mu      sync.Mutex
	recipes map[string]*model.Recipe
	nextID  int

	searchCalls int
	idsCalls    int
	lastQuery   repository.RecipeQuery
	lastIDsArg  []string

	// idsOverride replaces the computed ingredient sub-query result.
	idsOverride []string

	searchErr error
	idsErr    error
	getErr    error
}

func newFakeRecipeRepo() *fakeRecipeRepo {
	return &fakeRecipeRepo{recipes: make(map[string]*model.Recipe)}
}

// add stores r as-is (ID included) for read tests.
func (f *fakeRecipeRepo) add(r model.Recipe) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored := r
	f.recipes[r.ID] = &stored
}

func (f *fakeRecipeRepo) Search(_ context.Context, q repository.RecipeQuery) ([]model.Recipe, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searchCalls++
	f.lastQuery = q
	if f.searchErr != nil {
		return nil, f.searchErr
	}

	var allowed map[string]bool
	if q.RecipeIDs != nil {
		allowed = make(map[string]bool, len(q.RecipeIDs))
		for _, id := range q.RecipeIDs {
			allowed[id] = true
		}
	}
	term := strings.ToLower(q.Term)

	out := []model.Recipe{}
	for _, r := range f.recipes {
		switch {
		case q.PublishedOnly && !r.IsPublished:
			continue
		case q.AuthorID != "" && r.AuthorID != q.AuthorID:
			continue
		case q.CategoryID != "" && r.CategoryID != q.CategoryID:
			continue
		case q.Difficulty != "" && r.Difficulty != q.Difficulty:
			continue
		case q.MaxPrepTime != nil && r.PreparationTime > *q.MaxPrepTime:
			continue
		case allowed != nil && !allowed[r.ID]:
			continue
		case term != "" &&
			!strings.Contains(strings.ToLower(r.Title), term) &&
			!strings.Contains(strings.ToLower(r.Description), term):
			continue
		}
		if q.CuisineID != "" && !hasCuisine(r, q.CuisineID) {
			continue
		}
		out = append(out, *r)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func hasCuisine(r *model.Recipe, id string) bool {
	for _, c := range r.Cuisines {
		if c.ID == id {
			return true
		}
	}
	return false
}

func (f *fakeRecipeRepo) RecipeIDsByIngredients(_ context.Context, ingredientIDs []string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.idsCalls++
	f.lastIDsArg = ingredientIDs
	if f.idsErr != nil {
		return nil, f.idsErr
	}
	if f.idsOverride != nil {
		return f.idsOverride, nil
	}

	want := make(map[string]bool, len(ingredientIDs))
	for _, id := range ingredientIDs {
		want[id] = true
	}
	ids := []string{}
	for _, r := range f.recipes {
		for _, line := range r.Ingredients {
			if want[line.IngredientID] {
				ids = append(ids, r.ID)
			}
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (f *fakeRecipeRepo) GetPublished(_ context.Context, id string) (*model.Recipe, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	r, ok := f.recipes[id]
	if !ok || !r.IsPublished {
		return nil, apperror.NotFound("recipe", id)
	}
	out := *r
	return &out, nil
}

func (f *fakeRecipeRepo) GetByID(_ context.Context, id string) (*model.Recipe, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	r, ok := f.recipes[id]
	if !ok {
		return nil, apperror.NotFound("recipe", id)
	}
	out := *r
	return &out, nil
}

func (f *fakeRecipeRepo) Create(_ context.Context, r *model.Recipe) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	r.ID = fmt.Sprintf("recipe-%d", f.nextID)
	r.CreatedAt = time.Date(2025, 1, 1, 0, f.nextID, 0, 0, time.UTC)
	r.UpdatedAt = r.CreatedAt
	stored := *r
	f.recipes[r.ID] = &stored
	return nil
}

func (f *fakeRecipeRepo) SetPublished(_ context.Context, id string, published bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.recipes[id]
	if !ok {
		return apperror.NotFound("recipe", id)
	}
	r.IsPublished = published
	return nil
}

func (f *fakeRecipeRepo) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.recipes[id]; !ok {
		return apperror.NotFound("recipe", id)
	}
	delete(f.recipes, id)
	return nil
}

// -------------------------------------------------------------------------

var _ repository.FavoriteRepository = (*fakeFavoriteRepo)(nil)

type fakeFavoriteRepo struct {
	mu          sync.Mutex
	marks       map[string]time.Time // "recipeID|userID"
	existsCalls int
	existsErr   error
}

func newFakeFavoriteRepo() *fakeFavoriteRepo {
	return &fakeFavoriteRepo{marks: make(map[string]time.Time)}
}

func favKey(recipeID, userID string) string { return recipeID + "|" + userID }

func (f *fakeFavoriteRepo) Add(_ context.Context, recipeID, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.marks[favKey(recipeID, userID)]; !ok {
		f.marks[favKey(recipeID, userID)] = time.Now()
	}
	return nil
}

func (f *fakeFavoriteRepo) Remove(_ context.Context, recipeID, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.marks, favKey(recipeID, userID))
	return nil
}

func (f *fakeFavoriteRepo) Exists(_ context.Context, recipeID, userID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.existsCalls++
	if f.existsErr != nil {
		return false, f.existsErr
	}
	_, ok := f.marks[favKey(recipeID, userID)]
	return ok, nil
}

func (f *fakeFavoriteRepo) ListByUser(_ context.Context, userID string) ([]model.Favorite, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.Favorite{}
	for k, at := range f.marks {
		recipeID, uid, _ := strings.Cut(k, "|")
		if uid == userID {
			out = append(out, model.Favorite{RecipeID: recipeID, UserID: uid, CreatedAt: at})
		}
	}
	return out, nil
}

// -------------------------------------------------------------------------

var _ repository.RatingRepository = (*fakeRatingRepo)(nil)

type fakeRatingRepo struct {
	ratings map[string]model.Rating
}

func newFakeRatingRepo() *fakeRatingRepo {
	return &fakeRatingRepo{ratings: make(map[string]model.Rating)}
}

func (f *fakeRatingRepo) Upsert(_ context.Context, r *model.Rating) error {
	r.CreatedAt = time.Now().UTC()
	f.ratings[favKey(r.RecipeID, r.UserID)] = *r
	return nil
}

func (f *fakeRatingRepo) ListByUser(_ context.Context, userID string) ([]model.Rating, error) {
	out := []model.Rating{}
	for _, r := range f.ratings {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

// -------------------------------------------------------------------------

var _ repository.ProfileRepository = (*fakeProfileRepo)(nil)

type fakeProfileRepo struct {
	profiles map[string]*model.Profile
	nextID   int
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{profiles: make(map[string]*model.Profile)}
}

func (f *fakeProfileRepo) Create(_ context.Context, p *model.Profile) error {
	for _, existing := range f.profiles {
		if existing.Username == p.Username || existing.Email == p.Email {
			return apperror.Duplicate("")
		}
	}
	f.nextID++
	p.ID = fmt.Sprintf("profile-%d", f.nextID)
	p.CreatedAt = time.Now().UTC()
	p.UpdatedAt = p.CreatedAt
	stored := *p
	f.profiles[p.ID] = &stored
	return nil
}

func (f *fakeProfileRepo) GetByID(_ context.Context, id string) (*model.Profile, error) {
	p, ok := f.profiles[id]
	if !ok {
		return nil, apperror.NotFound("profile", id)
	}
	out := *p
	return &out, nil
}

func (f *fakeProfileRepo) GetByEmail(_ context.Context, email string) (*model.Profile, error) {
	for _, p := range f.profiles {
		if p.Email == email {
			out := *p
			return &out, nil
		}
	}
	return nil, apperror.NotFound("profile", email)
}

func (f *fakeProfileRepo) UsernameTaken(_ context.Context, username, excludeID string) (bool, error) {
	for _, p := range f.profiles {
		if p.Username == username && p.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeProfileRepo) Update(_ context.Context, p *model.Profile) error {
	if _, ok := f.profiles[p.ID]; !ok {
		return apperror.NotFound("profile", p.ID)
	}
	stored := *p
	f.profiles[p.ID] = &stored
	return nil
}

func (f *fakeProfileRepo) UpsertGitHub(ctx context.Context, p *model.Profile) error {
	for _, existing := range f.profiles {
		if existing.GitHubID != nil && *existing.GitHubID == *p.GitHubID {
			*p = *existing
			return nil
		}
	}
	for _, existing := range f.profiles {
		if existing.Email == p.Email {
			existing.GitHubID = p.GitHubID
			*p = *existing
			return nil
		}
	}
	return f.Create(ctx, p)
}

// -------------------------------------------------------------------------

var _ repository.IngredientRepository = (*fakeIngredientRepo)(nil)

type fakeIngredientRepo struct {
	mu          sync.Mutex
	items       []model.Ingredient
	suggestCall int
	lastLimit   int
	err         error
}

func (f *fakeIngredientRepo) Suggest(_ context.Context, query string, limit int) ([]model.Ingredient, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.suggestCall++
	f.lastLimit = limit
	if f.err != nil {
		return nil, f.err
	}
	q := strings.ToLower(query)
	out := []model.Ingredient{}
	for _, ing := range f.sorted() {
		if strings.Contains(strings.ToLower(ing.Name), q) {
			out = append(out, ing)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeIngredientRepo) GetByName(_ context.Context, name string) (*model.Ingredient, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for _, ing := range f.items {
		if strings.ToLower(ing.Name) == strings.ToLower(name) {
			return &ing, nil
		}
	}
	return nil, apperror.NotFound("ingredient", name)
}

func (f *fakeIngredientRepo) List(_ context.Context, limit int) ([]model.Ingredient, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := f.sorted()
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeIngredientRepo) Create(_ context.Context, ing *model.Ingredient) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.items {
		if strings.EqualFold(existing.Name, ing.Name) {
			return apperror.Duplicate("name")
		}
	}
	ing.ID = fmt.Sprintf("ing-%d", len(f.items)+1)
	f.items = append(f.items, *ing)
	return nil
}

func (f *fakeIngredientRepo) sorted() []model.Ingredient {
	out := append([]model.Ingredient(nil), f.items...)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// -------------------------------------------------------------------------

var _ repository.LookupRepository = (*fakeLookupRepo)(nil)

type fakeLookupRepo struct {
	mu            sync.Mutex
	categories    []model.Category
	cuisines      []model.Cuisine
	categoryCalls int
	cuisineCalls  int
	topCalls      int
	err           error
}

func (f *fakeLookupRepo) Categories(context.Context) ([]model.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.categoryCalls++
	return f.categories, f.err
}

func (f *fakeLookupRepo) Cuisines(context.Context) ([]model.Cuisine, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cuisineCalls++
	return f.cuisines, f.err
}

func (f *fakeLookupRepo) CategoriesWithCounts(_ context.Context, limit int) ([]model.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.topCalls++
	if f.err != nil {
		return nil, f.err
	}
	out := append([]model.Category(nil), f.categories...)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// =========================================================================
// FAKE CACHE
// =========================================================================

var _ cache.Cache = (*memCache)(nil)

type memCache struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func newMemCache() *memCache {
	return &memCache{entries: make(map[string][]byte)}
}

func (c *memCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.entries[key]
	if !ok {
		return nil, cache.ErrMiss
	}
	return b, nil
}

func (c *memCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
	return nil
}

func (c *memCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.entries, k)
	}
	return nil
}

func (c *memCache) has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[key]
	return ok
}

// =========================================================================
// FIXTURES
// =========================================================================

var fixtureTime = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func intPtr(v int) *int { return &v }

// publishedRecipe builds a published recipe created minutesAfter fixtureTime.
func publishedRecipe(id, title string, minutesAfter int) model.Recipe {
	return model.Recipe{
		ID:              id,
		Title:           title,
		Description:     "about " + title,
		CategoryID:      "cat-main",
		PreparationTime: 10,
		Servings:        2,
		Difficulty:      model.DifficultyEasy,
		IsPublished:     true,
		AuthorID:        "author-1",
		CreatedAt:       fixtureTime.Add(time.Duration(minutesAfter) * time.Minute),
		Cuisines:        []model.Cuisine{},
		Ratings:         []model.Rating{},
		Ingredients:     []model.RecipeIngredient{},
	}
}

func withIngredients(r model.Recipe, ids ...string) model.Recipe {
	for i, id := range ids {
		r.Ingredients = append(r.Ingredients, model.RecipeIngredient{
			RecipeID:     r.ID,
			IngredientID: id,
			Quantity:     "1",
			Position:     i,
			Ingredient:   &model.Ingredient{ID: id, Name: id},
		})
	}
	return r
}

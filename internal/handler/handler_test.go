package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/sakif/recipe-share/internal/apperror"
	"github.com/sakif/recipe-share/internal/auth"
	"github.com/sakif/recipe-share/internal/cache"
	"github.com/sakif/recipe-share/internal/handler"
	"github.com/sakif/recipe-share/internal/metrics"
	"github.com/sakif/recipe-share/internal/model"
	"github.com/sakif/recipe-share/internal/repository/sqlstore"
	"github.com/sakif/recipe-share/internal/service"
)

// =========================================================================
// TEST HARNESS
// =========================================================================

// testAPI wires real services over an in-memory SQLite store and mounts the
// handlers the way the server does.
type testAPI struct {
	t      *testing.T
	db     *sqlstore.DB
	router http.Handler
	tokens *auth.TokenService
}

func newTestAPI(t *testing.T, uploader handler.ImageUploader) *testAPI {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	db, err := sqlstore.New(sqlstore.DialectSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.SeedLookups(context.Background()))

	tokens, err := auth.NewTokenService("handler-test-secret-0123456789", time.Hour)
	require.NoError(t, err)
	m := metrics.New()

	search := service.NewSearchService(db.Recipes(), db.Favorites(), m, logger)
	recipes := service.NewRecipeService(db.Recipes(), cache.Noop{}, logger)
	favorites := service.NewFavoriteService(db.Favorites(), db.Recipes(), logger)
	ratings := service.NewRatingService(db.Ratings(), db.Recipes(), logger)
	ingredients := service.NewIngredientService(db.Ingredients(), m, logger)
	lookups := service.NewLookupService(db.Lookups(), db.Ingredients(), search, cache.Noop{}, time.Minute, m, logger)
	profiles := service.NewProfileService(db.Profiles(), tokens, auth.NewPasswordServiceWithCost(bcrypt.MinCost), logger)

	authH := handler.NewAuthHandler(profiles, nil, tokens, false, logger)
	recipeH := handler.NewRecipeHandler(search, recipes, favorites, ratings, logger)
	lookupH := handler.NewLookupHandler(lookups, ingredients, logger)
	profileH := handler.NewProfileHandler(profiles, recipes, favorites, ratings, logger)
	imageH := handler.NewImageHandler(uploader, logger)

	r := chi.NewRouter()
	r.Post("/auth/register", authH.HandleRegister)
	r.Post("/auth/login", authH.HandleLogin)
	r.Post("/auth/logout", authH.HandleLogout)
	r.Get("/auth/github/login", authH.HandleGitHubLogin)
	r.Get("/api/home", lookupH.HandleHome)
	r.Get("/api/filters", lookupH.HandleFilters)
	r.Get("/api/categories", lookupH.HandleCategories)
	r.Get("/api/ingredients/suggest", lookupH.HandleSuggest)
	r.Get("/api/ingredients/lookup", lookupH.HandleIngredientByName)
	r.Get("/api/recipes/quick", recipeH.HandleQuickSearch)
	r.Group(func(r chi.Router) {
		r.Use(auth.OptionalAuth(tokens))
		r.Get("/api/recipes/search", recipeH.HandleSearch)
		r.Get("/api/recipes/{id}", recipeH.HandleDetail)
	})
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(tokens))
		r.Post("/api/recipes", recipeH.HandleCreate)
		r.Patch("/api/recipes/{id}/publish", recipeH.HandlePublish)
		r.Delete("/api/recipes/{id}", recipeH.HandleDelete)
		r.Put("/api/recipes/{id}/rating", recipeH.HandleRate)
		r.Post("/api/recipes/{id}/favorite", recipeH.HandleFavorite)
		r.Delete("/api/recipes/{id}/favorite", recipeH.HandleUnfavorite)
		r.Post("/api/ingredients", lookupH.HandleCreateIngredient)
		r.Post("/api/images", imageH.HandleUpload)
		r.Get("/api/me", profileH.HandleMe)
		r.Patch("/api/me", profileH.HandleUpdateMe)
		r.Get("/api/me/recipes", profileH.HandleMyRecipes)
		r.Get("/api/me/favorites", profileH.HandleMyFavorites)
	})

	return &testAPI{t: t, db: db, router: r, tokens: tokens}
}

// do sends a request with an optional JSON body and bearer token.
func (a *testAPI) do(method, path string, body any, token string) *httptest.ResponseRecorder {
	a.t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(a.t, err)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	a.router.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&v), "body: %s", rr.Body.String())
	return v
}

func (a *testAPI) register(username string) service.AuthResult {
	a.t.Helper()
	rr := a.do(http.MethodPost, "/auth/register", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": "correct-horse-battery",
	}, "")
	require.Equal(a.t, http.StatusCreated, rr.Code, rr.Body.String())
	return decode[service.AuthResult](a.t, rr)
}

func (a *testAPI) categoryID(name string) string {
	a.t.Helper()
	cats, err := a.db.Lookups().Categories(context.Background())
	require.NoError(a.t, err)
	for _, c := range cats {
		if c.Name == name {
			return c.ID
		}
	}
	a.t.Fatalf("category %q not seeded", name)
	return ""
}

func (a *testAPI) ingredient(name string) string {
	a.t.Helper()
	ing := &model.Ingredient{Name: name}
	require.NoError(a.t, a.db.Ingredients().Create(context.Background(), ing))
	return ing.ID
}

func (a *testAPI) createRecipe(token, title string, prep int, ingredientIDs ...string) model.Recipe {
	a.t.Helper()
	lines := make([]map[string]any, 0, len(ingredientIDs))
	for _, id := range ingredientIDs {
		lines = append(lines, map[string]any{"ingredientId": id, "quantity": "1"})
	}
	rr := a.do(http.MethodPost, "/api/recipes", map[string]any{
		"title":           title,
		"description":     "A test recipe",
		"categoryId":      a.categoryID("Main Course"),
		"preparationTime": prep,
		"servings":        2,
		"difficulty":      "easy",
		"ingredients":     lines,
		"steps":           []map[string]any{{"instruction": "Cook it"}},
	}, token)
	require.Equal(a.t, http.StatusCreated, rr.Code, rr.Body.String())
	return decode[model.Recipe](a.t, rr)
}

// =========================================================================
// AUTH
// =========================================================================

func TestRegisterAndLogin(t *testing.T) {
	api := newTestAPI(t, nil)

	res := api.register("julia")
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, "julia", res.Profile.Username)

	rr := api.do(http.MethodPost, "/auth/login", map[string]string{
		"email": "JULIA@example.com", "password": "correct-horse-battery",
	}, "")
	require.Equal(t, http.StatusOK, rr.Code)

	var cookie *http.Cookie
	for _, c := range rr.Result().Cookies() {
		if c.Name == auth.CookieName {
			cookie = c
		}
	}
	require.NotNil(t, cookie, "login should set the session cookie")
	assert.True(t, cookie.HttpOnly)

	rr = api.do(http.MethodPost, "/auth/login", map[string]string{
		"email": "julia@example.com", "password": "wrong-password",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestRegister_DuplicateUsernameIsConflict(t *testing.T) {
	api := newTestAPI(t, nil)
	api.register("julia")

	rr := api.do(http.MethodPost, "/auth/register", map[string]string{
		"username": "julia", "email": "other@example.com", "password": "correct-horse-battery",
	}, "")

	assert.Equal(t, http.StatusConflict, rr.Code)
	body := decode[handler.ErrorResponse](t, rr)
	assert.Equal(t, "username", body.Field)
}

func TestGitHubLogin_NotConfigured(t *testing.T) {
	api := newTestAPI(t, nil)
	rr := api.do(http.MethodGet, "/auth/github/login", nil, "")
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	api := newTestAPI(t, nil)

	for _, path := range []string{"/api/me", "/api/me/recipes", "/api/me/favorites"} {
		rr := api.do(http.MethodGet, path, nil, "")
		assert.Equal(t, http.StatusUnauthorized, rr.Code, path)
	}
	rr := api.do(http.MethodGet, "/api/me", nil, "not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

// =========================================================================
// SEARCH & DETAIL
// =========================================================================

func TestSearch_EndToEnd(t *testing.T) {
	api := newTestAPI(t, nil)
	author := api.register("chef")
	egg := api.ingredient("Egg")
	cheese := api.ingredient("Parmesan")

	carbonara := api.createRecipe(author.Token, "Pasta Carbonara", 15, egg, cheese)
	api.createRecipe(author.Token, "Tomato Soup", 40)

	rr := api.do(http.MethodGet, "/api/recipes/search?q=pasta", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	views := decode[[]model.RecipeView](t, rr)
	require.Len(t, views, 1)
	assert.Equal(t, carbonara.ID, views[0].ID)
	assert.Equal(t, "chef", views[0].Author.Username)
	assert.Len(t, views[0].MainIngredients, 2)

	rr = api.do(http.MethodGet, "/api/recipes/search?max_time=20", nil, "")
	views = decode[[]model.RecipeView](t, rr)
	require.Len(t, views, 1, "only the 15 minute recipe fits")

	rr = api.do(http.MethodGet, "/api/recipes/search?ingredient="+cheese+"&ingredient="+egg, nil, "")
	views = decode[[]model.RecipeView](t, rr)
	require.Len(t, views, 1, "a recipe matching two ingredients appears once")

	rr = api.do(http.MethodGet, "/api/recipes/search", nil, "")
	views = decode[[]model.RecipeView](t, rr)
	require.Len(t, views, 2)
	assert.Equal(t, "Tomato Soup", views[0].Title, "newest first")
}

func TestSearch_UnusedIngredientReturnsEmptyArray(t *testing.T) {
	api := newTestAPI(t, nil)
	saffron := api.ingredient("Saffron")

	rr := api.do(http.MethodGet, "/api/recipes/search?ingredient="+saffron, nil, "")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())
}

func TestSearch_BadQuery(t *testing.T) {
	api := newTestAPI(t, nil)

	rr := api.do(http.MethodGet, "/api/recipes/search?difficulty=impossible", nil, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestSearch_TooManyIngredients(t *testing.T) {
	api := newTestAPI(t, nil)

	path := "/api/recipes/search?" + strings.TrimPrefix(strings.Repeat("&ingredient=x", 51), "&")
	rr := api.do(http.MethodGet, path, nil, "")

	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "ingredient", decode[handler.ErrorResponse](t, rr).Field)
}

func TestSearch_CyrillicTermIgnoresCase(t *testing.T) {
	api := newTestAPI(t, nil)
	author := api.register("chef")
	api.createRecipe(author.Token, "Паста Карбонара", 10)

	for _, term := range []string{"паста", "ПАСТА"} {
		rr := api.do(http.MethodGet, "/api/recipes/search?q="+url.QueryEscape(term), nil, "")
		require.Equal(t, http.StatusOK, rr.Code)
		views := decode[[]model.RecipeView](t, rr)
		require.Len(t, views, 1, term)
		assert.Equal(t, "Паста Карбонара", views[0].Title)
	}
}

func TestDetail_FavoriteAndVisibility(t *testing.T) {
	api := newTestAPI(t, nil)
	author := api.register("chef")
	fan := api.register("fan")
	recipe := api.createRecipe(author.Token, "Shakshuka", 10)

	rr := api.do(http.MethodPost, "/api/recipes/"+recipe.ID+"/favorite", nil, fan.Token)
	require.Equal(t, http.StatusNoContent, rr.Code)

	rr = api.do(http.MethodGet, "/api/recipes/"+recipe.ID, nil, fan.Token)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, decode[model.RecipeDetail](t, rr).IsFavorite)

	rr = api.do(http.MethodGet, "/api/recipes/"+recipe.ID, nil, "")
	assert.False(t, decode[model.RecipeDetail](t, rr).IsFavorite)

	rr = api.do(http.MethodPatch, "/api/recipes/"+recipe.ID+"/publish", map[string]bool{"published": false}, author.Token)
	require.Equal(t, http.StatusOK, rr.Code)

	for _, token := range []string{"", fan.Token, author.Token} {
		rr = api.do(http.MethodGet, "/api/recipes/"+recipe.ID, nil, token)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	}
}

func TestQuickSearch(t *testing.T) {
	api := newTestAPI(t, nil)
	author := api.register("chef")
	api.createRecipe(author.Token, "Green Curry", 20)

	rr := api.do(http.MethodGet, "/api/recipes/quick?q=CURRY", nil, "")
	assert.Len(t, decode[[]model.RecipeView](t, rr), 1)

	rr = api.do(http.MethodGet, "/api/recipes/quick?q=", nil, "")
	assert.JSONEq(t, `[]`, rr.Body.String())
}

// =========================================================================
// AUTHORING
// =========================================================================

func TestCreateRecipe_Validation(t *testing.T) {
	api := newTestAPI(t, nil)
	author := api.register("chef")

	rr := api.do(http.MethodPost, "/api/recipes", map[string]any{
		"title":       "No steps",
		"categoryId":  api.categoryID("Main Course"),
		"servings":    2,
		"difficulty":  "easy",
		"ingredients": []map[string]any{{"ingredientId": api.ingredient("Egg"), "quantity": "2"}},
		"steps":       []map[string]any{},
	}, author.Token)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "steps", decode[handler.ErrorResponse](t, rr).Field)
}

func TestRecipeOwnership(t *testing.T) {
	api := newTestAPI(t, nil)
	author := api.register("chef")
	intruder := api.register("intruder")
	recipe := api.createRecipe(author.Token, "Shakshuka", 10)

	rr := api.do(http.MethodDelete, "/api/recipes/"+recipe.ID, nil, intruder.Token)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = api.do(http.MethodDelete, "/api/recipes/"+recipe.ID, nil, author.Token)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = api.do(http.MethodGet, "/api/recipes/"+recipe.ID, nil, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestPublish_RequiresFlag(t *testing.T) {
	api := newTestAPI(t, nil)
	author := api.register("chef")
	recipe := api.createRecipe(author.Token, "Shakshuka", 10)

	rr := api.do(http.MethodPatch, "/api/recipes/"+recipe.ID+"/publish", map[string]any{}, author.Token)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestRate(t *testing.T) {
	api := newTestAPI(t, nil)
	author := api.register("chef")
	fan := api.register("fan")
	recipe := api.createRecipe(author.Token, "Shakshuka", 10)

	rr := api.do(http.MethodPut, "/api/recipes/"+recipe.ID+"/rating", map[string]any{"rating": 6}, fan.Token)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	for _, stars := range []int{3, 5} {
		rr = api.do(http.MethodPut, "/api/recipes/"+recipe.ID+"/rating", map[string]any{"rating": stars}, fan.Token)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	}

	rr = api.do(http.MethodGet, "/api/recipes/"+recipe.ID, nil, "")
	detail := decode[model.RecipeDetail](t, rr)
	require.NotNil(t, detail.AverageRating)
	assert.Equal(t, 5.0, *detail.AverageRating, "the second rating replaces the first")
}

func TestCreateIngredient_Duplicate(t *testing.T) {
	api := newTestAPI(t, nil)
	author := api.register("chef")

	rr := api.do(http.MethodPost, "/api/ingredients", map[string]string{"name": "Sumac"}, author.Token)
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = api.do(http.MethodPost, "/api/ingredients", map[string]string{"name": "SUMAC"}, author.Token)
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, apperror.DuplicateMessage, decode[handler.ErrorResponse](t, rr).Message)
}

// =========================================================================
// LOOKUPS & AUTOCOMPLETE
// =========================================================================

func TestSuggest(t *testing.T) {
	api := newTestAPI(t, nil)
	for _, name := range []string{"Tomato", "Cherry tomato", "Tomatillo", "Sun-dried tomato", "Tomato paste", "Green tomato"} {
		api.ingredient(name)
	}

	rr := api.do(http.MethodGet, "/api/ingredients/suggest?q=t", nil, "")
	assert.JSONEq(t, `[]`, rr.Body.String())

	rr = api.do(http.MethodGet, "/api/ingredients/suggest?q=toma", nil, "")
	assert.Len(t, decode[[]model.Ingredient](t, rr), 6)

	rr = api.do(http.MethodGet, "/api/ingredients/suggest?q=toma&context=authoring", nil, "")
	assert.Len(t, decode[[]model.Ingredient](t, rr), service.AuthoringSuggestLimit)
}

func TestIngredientLookup(t *testing.T) {
	api := newTestAPI(t, nil)
	// eleven names that sort ahead of "Salt" push it out of the suggestions
	for i := range 11 {
		api.ingredient(fmt.Sprintf("Black salt %02d", i))
	}
	salt := api.ingredient("Salt")
	tomato := api.ingredient("Томат")

	rr := api.do(http.MethodGet, "/api/ingredients/suggest?q=salt", nil, "")
	for _, ing := range decode[[]model.Ingredient](t, rr) {
		require.NotEqual(t, "Salt", ing.Name)
	}

	rr = api.do(http.MethodGet, "/api/ingredients/lookup?name=SALT", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, salt, decode[model.Ingredient](t, rr).ID)

	rr = api.do(http.MethodGet, "/api/ingredients/lookup?name="+url.QueryEscape("томат"), nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, tomato, decode[model.Ingredient](t, rr).ID)

	rr = api.do(http.MethodGet, "/api/ingredients/lookup?name=salt+flakes", nil, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = api.do(http.MethodGet, "/api/ingredients/lookup?name=", nil, "")
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "name", decode[handler.ErrorResponse](t, rr).Field)
}

func TestHomeAndFilters(t *testing.T) {
	api := newTestAPI(t, nil)
	author := api.register("chef")
	api.createRecipe(author.Token, "Shakshuka", 10)

	rr := api.do(http.MethodGet, "/api/home", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	home := decode[service.Home](t, rr)
	assert.Len(t, home.LatestRecipes, 1)
	assert.LessOrEqual(t, len(home.Categories), service.HomeCategoryCount)
	assert.LessOrEqual(t, len(home.Cuisines), service.HomeCuisineCount)

	rr = api.do(http.MethodGet, "/api/filters", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	opts := decode[service.FilterOptions](t, rr)
	assert.NotEmpty(t, opts.Categories)
	assert.NotEmpty(t, opts.Cuisines)
	assert.Len(t, opts.Difficulty, 3)
}

// =========================================================================
// PROFILE
// =========================================================================

func TestMe(t *testing.T) {
	api := newTestAPI(t, nil)
	me := api.register("julia")
	api.createRecipe(me.Token, "Boeuf Bourguignon", 30)

	rr := api.do(http.MethodGet, "/api/me", nil, me.Token)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.NotContains(t, rr.Body.String(), "password", "the hash must never be serialised")

	rr = api.do(http.MethodPatch, "/api/me", map[string]string{"bio": "Cook"}, me.Token)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Cook", decode[model.Profile](t, rr).Bio)

	rr = api.do(http.MethodGet, "/api/me/recipes", nil, me.Token)
	assert.Len(t, decode[[]model.RecipeView](t, rr), 1)
}

// =========================================================================
// IMAGES
// =========================================================================

type fakeUploader struct {
	folder string
	data   []byte
	err    error
}

func (f *fakeUploader) Upload(_ context.Context, folder string, data []byte) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.folder, f.data = folder, data
	return "https://images.example.com/" + folder + "/x.png", nil
}

func multipartImage(t *testing.T, folder string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if folder != "" {
		require.NoError(t, mw.WriteField("folder", folder))
	}
	part, err := mw.CreateFormFile("file", "dish.png")
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestImageUpload(t *testing.T) {
	up := &fakeUploader{}
	api := newTestAPI(t, up)
	me := api.register("julia")
	png := []byte("\x89PNG\r\n\x1a\nrest-of-image")

	body, contentType := multipartImage(t, "avatars", png)
	req := httptest.NewRequest(http.MethodPost, "/api/images", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+me.Token)
	rr := httptest.NewRecorder()
	api.router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	assert.Equal(t, "avatars", up.folder)
	assert.Equal(t, png, up.data)
	assert.True(t, strings.HasSuffix(decode[map[string]string](t, rr)["url"], "/avatars/x.png"))
}

func TestImageUpload_Errors(t *testing.T) {
	t.Run("storage not configured", func(t *testing.T) {
		api := newTestAPI(t, nil)
		me := api.register("julia")
		rr := api.do(http.MethodPost, "/api/images", nil, me.Token)
		assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	})

	t.Run("not multipart", func(t *testing.T) {
		api := newTestAPI(t, &fakeUploader{})
		me := api.register("julia")
		rr := api.do(http.MethodPost, "/api/images", map[string]string{"file": "x"}, me.Token)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("rejected by store", func(t *testing.T) {
		api := newTestAPI(t, &fakeUploader{err: apperror.ValidationFailed("file", "only JPEG, PNG, GIF and WebP images are accepted")})
		me := api.register("julia")

		body, contentType := multipartImage(t, "", []byte("plain text"))
		req := httptest.NewRequest(http.MethodPost, "/api/images", body)
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("Authorization", "Bearer "+me.Token)
		rr := httptest.NewRecorder()
		api.router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/recipe-share/internal/apperror"
	"github.com/sakif/recipe-share/internal/service"
)

// RecipeHandler serves recipe search, detail and authoring, plus the
// favorite and rating actions that hang off a single recipe.
type RecipeHandler struct {
	search    *service.SearchService
	recipes   *service.RecipeService
	favorites *service.FavoriteService
	ratings   *service.RatingService
	logger    *slog.Logger
}

func NewRecipeHandler(
	search *service.SearchService,
	recipes *service.RecipeService,
	favorites *service.FavoriteService,
	ratings *service.RatingService,
	logger *slog.Logger,
) *RecipeHandler {
	return &RecipeHandler{
		search:    search,
		recipes:   recipes,
		favorites: favorites,
		ratings:   ratings,
		logger:    logger,
	}
}

// HandleSearch runs the filtered search. Store failures come back as an
// empty list, so apart from a malformed query this is always 200.
//
// HTTP: GET /api/recipes/search?q=&category=&cuisine=&difficulty=&max_time=&ingredient=
func (h *RecipeHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	c, err := parseCriteria(r.URL.Query())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.search.Search(r.Context(), c))
}

// HTTP: GET /api/recipes/quick?q=
func (h *RecipeHandler) HandleQuickSearch(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.search.QuickSearch(r.Context(), r.URL.Query().Get("q")))
}

// HandleDetail returns one published recipe. Signed-in viewers also learn
// whether they saved it.
//
// HTTP: GET /api/recipes/{id}
func (h *RecipeHandler) HandleDetail(w http.ResponseWriter, r *http.Request) {
	detail, err := h.search.Detail(r.Context(), chi.URLParam(r, "id"), callerID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// HTTP: POST /api/recipes
func (h *RecipeHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in service.RecipeInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, err)
		return
	}

	recipe, err := h.recipes.Create(r.Context(), callerID(r), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, recipe)
}

type publishRequest struct {
	Published *bool `json:"published"`
}

// HTTP: PATCH /api/recipes/{id}/publish  {"published": false}
func (h *RecipeHandler) HandlePublish(w http.ResponseWriter, r *http.Request) {
	var req publishRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Published == nil {
		writeError(w, apperror.ValidationFailed("published", "published is required"))
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.recipes.SetPublished(r.Context(), callerID(r), id, *req.Published); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "published": *req.Published})
}

// HTTP: DELETE /api/recipes/{id}
func (h *RecipeHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.recipes.Delete(r.Context(), callerID(r), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HTTP: PUT /api/recipes/{id}/rating  {"rating": 4, "comment": "..."}
func (h *RecipeHandler) HandleRate(w http.ResponseWriter, r *http.Request) {
	var in service.RatingInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, err)
		return
	}

	rating, err := h.ratings.Rate(r.Context(), callerID(r), chi.URLParam(r, "id"), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rating)
}

// HTTP: POST /api/recipes/{id}/favorite
func (h *RecipeHandler) HandleFavorite(w http.ResponseWriter, r *http.Request) {
	if err := h.favorites.Add(r.Context(), callerID(r), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HTTP: DELETE /api/recipes/{id}/favorite
func (h *RecipeHandler) HandleUnfavorite(w http.ResponseWriter, r *http.Request) {
	if err := h.favorites.Remove(r.Context(), callerID(r), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/recipe-share/internal/service"
)

// LookupHandler serves the reference data pages are built from: home page
// blocks, filter options and ingredient autocomplete.
type LookupHandler struct {
	lookups     *service.LookupService
	ingredients *service.IngredientService
	logger      *slog.Logger
}

func NewLookupHandler(lookups *service.LookupService, ingredients *service.IngredientService, logger *slog.Logger) *LookupHandler {
	return &LookupHandler{
		lookups:     lookups,
		ingredients: ingredients,
		logger:      logger,
	}
}

// HTTP: GET /api/home
func (h *LookupHandler) HandleHome(w http.ResponseWriter, r *http.Request) {
	home, err := h.lookups.Home(r.Context())
	if err != nil {
		h.logger.Error("failed to load home page", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, home)
}

// HTTP: GET /api/filters
func (h *LookupHandler) HandleFilters(w http.ResponseWriter, r *http.Request) {
	opts, err := h.lookups.FilterOptions(r.Context())
	if err != nil {
		h.logger.Error("failed to load filter options", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, opts)
}

// HTTP: GET /api/categories
func (h *LookupHandler) HandleCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.lookups.Categories(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cats)
}

// HTTP: GET /api/cuisines
func (h *LookupHandler) HandleCuisines(w http.ResponseWriter, r *http.Request) {
	cuisines, err := h.lookups.Cuisines(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cuisines)
}

// HandleSuggest is the ingredient autocomplete. The context parameter picks
// the list size: "search" (default) or "authoring".
//
// HTTP: GET /api/ingredients/suggest?q=tom&context=authoring
func (h *LookupHandler) HandleSuggest(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit := service.SuggestLimitFor(q.Get("context"))
	writeJSON(w, http.StatusOK, h.ingredients.Suggest(r.Context(), q.Get("q"), limit))
}

// HTTP: GET /api/ingredients/lookup?name=Salt
func (h *LookupHandler) HandleIngredientByName(w http.ResponseWriter, r *http.Request) {
	ing, err := h.ingredients.FindByName(r.Context(), r.URL.Query().Get("name"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ing)
}

type createIngredientRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// HTTP: POST /api/ingredients  {"name": "Sumac"}
func (h *LookupHandler) HandleCreateIngredient(w http.ResponseWriter, r *http.Request) {
	var req createIngredientRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	ing, err := h.ingredients.Create(r.Context(), req.Name, req.Description)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, ing)
}

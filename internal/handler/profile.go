package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/recipe-share/internal/service"
)

// ProfileHandler serves the signed-in user's own profile and its tabs. All
// routes sit behind RequireAuth.
type ProfileHandler struct {
	profiles  *service.ProfileService
	recipes   *service.RecipeService
	favorites *service.FavoriteService
	ratings   *service.RatingService
	logger    *slog.Logger
}

func NewProfileHandler(
	profiles *service.ProfileService,
	recipes *service.RecipeService,
	favorites *service.FavoriteService,
	ratings *service.RatingService,
	logger *slog.Logger,
) *ProfileHandler {
	return &ProfileHandler{
		profiles:  profiles,
		recipes:   recipes,
		favorites: favorites,
		ratings:   ratings,
		logger:    logger,
	}
}

// HandleMe returns the caller's profile. The CLI uses it to check that a
// saved session is still good.
//
// HTTP: GET /api/me
func (h *ProfileHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	p, err := h.profiles.Get(r.Context(), callerID(r))
	if err != nil {
		h.logger.Warn("HandleMe: profile lookup failed",
			slog.String("profileID", callerID(r)),
			slog.String("error", err.Error()),
		)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// HTTP: PATCH /api/me
func (h *ProfileHandler) HandleUpdateMe(w http.ResponseWriter, r *http.Request) {
	var u service.ProfileUpdate
	if err := decodeJSON(w, r, &u); err != nil {
		writeError(w, err)
		return
	}

	p, err := h.profiles.Update(r.Context(), callerID(r), u)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// HTTP: GET /api/me/recipes
func (h *ProfileHandler) HandleMyRecipes(w http.ResponseWriter, r *http.Request) {
	views, err := h.recipes.ListByAuthor(r.Context(), callerID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

// HTTP: GET /api/me/favorites
func (h *ProfileHandler) HandleMyFavorites(w http.ResponseWriter, r *http.Request) {
	favs, err := h.favorites.List(r.Context(), callerID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, favs)
}

// HTTP: GET /api/me/ratings
func (h *ProfileHandler) HandleMyRatings(w http.ResponseWriter, r *http.Request) {
	ratings, err := h.ratings.ListByUser(r.Context(), callerID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ratings)
}

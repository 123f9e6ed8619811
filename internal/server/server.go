// Package server is the composition root: it builds every store, service and
// handler from the Config, mounts them on a chi router and runs the HTTP
// server until a shutdown signal arrives.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/recipe-share/internal/auth"
	"github.com/sakif/recipe-share/internal/cache"
	"github.com/sakif/recipe-share/internal/config"
	"github.com/sakif/recipe-share/internal/handler"
	"github.com/sakif/recipe-share/internal/metrics"
	"github.com/sakif/recipe-share/internal/middleware"
	"github.com/sakif/recipe-share/internal/repository/sqlstore"
	"github.com/sakif/recipe-share/internal/service"
	"github.com/sakif/recipe-share/internal/storage"
)

const (
	shutdownTimeout = 30 * time.Second
	sweepInterval   = time.Minute
)

// Server owns the router and every resource that must be closed on
// shutdown.
type Server struct {
	router  *chi.Mux
	config  *config.Config
	logger  *slog.Logger
	db      *sqlstore.DB
	redis   *cache.Redis // nil when caching is off
	metrics *metrics.Metrics
	limiter *middleware.RateLimiter
}

// New opens the database and the optional Redis cache, S3 bucket and GitHub
// OAuth app, then wires the routes. Optional collaborators that are not
// configured are simply left out; a configured Redis that cannot be reached
// degrades to no caching rather than failing start-up.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Server, error) {
	if cfg.DBDriver == sqlstore.DialectSQLite && cfg.DBDSN != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.DBDSN), 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sqlstore.New(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if cfg.SeedLookups {
		if err := db.SeedLookups(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("seeding lookups: %w", err)
		}
	}

	s := &Server{
		router:  chi.NewRouter(),
		config:  cfg,
		logger:  logger,
		db:      db,
		metrics: metrics.New(),
		limiter: middleware.NewRateLimiter(cfg.SuggestRate, cfg.SuggestBurst),
	}

	var c cache.Cache = cache.Noop{}
	if cfg.CacheEnabled() {
		rdb, err := cache.NewRedis(ctx, cache.RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			logger.Warn("redis unavailable, lookups will not be cached",
				slog.String("addr", cfg.RedisAddr),
				slog.String("error", err.Error()),
			)
		} else {
			s.redis = rdb
			c = rdb
		}
	}

	// Left as a nil interface when unconfigured so the handler can tell.
	var uploader handler.ImageUploader
	if cfg.StorageEnabled() {
		store, err := storage.NewS3(ctx, storage.Options{
			Endpoint:  cfg.S3Endpoint,
			Region:    cfg.S3Region,
			Bucket:    cfg.S3Bucket,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			PublicURL: cfg.S3PublicURL,
		})
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("configuring image storage: %w", err)
		}
		uploader = store
	}

	if err := s.setupRoutes(c, uploader); err != nil {
		s.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}
	return s, nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.router }

// setupRoutes builds the dependency chain
//
//	sqlstore.DB → services → handlers → routes
//
// Middleware order: request ID first so every log line carries it, RealIP
// before anything that looks at the client address, Recoverer innermost of
// the global set so a panic is still logged as a 500.
func (s *Server) setupRoutes(c cache.Cache, uploader handler.ImageUploader) error {
	tokens, err := auth.NewTokenService(s.config.JWTSecret, s.config.TokenTTL)
	if err != nil {
		return err
	}
	passwords := auth.NewPasswordService()

	var github *auth.GitHubProvider
	if s.config.GitHubEnabled() {
		github = auth.NewGitHubProvider(s.config.GitHubClientID, s.config.GitHubClientSecret, s.config.CallbackURL())
	}

	recipes := s.db.Recipes()
	searchSvc := service.NewSearchService(recipes, s.db.Favorites(), s.metrics, s.logger)
	recipeSvc := service.NewRecipeService(recipes, c, s.logger)
	favoriteSvc := service.NewFavoriteService(s.db.Favorites(), recipes, s.logger)
	ratingSvc := service.NewRatingService(s.db.Ratings(), recipes, s.logger)
	ingredientSvc := service.NewIngredientService(s.db.Ingredients(), s.metrics, s.logger)
	lookupSvc := service.NewLookupService(s.db.Lookups(), s.db.Ingredients(), searchSvc, c, s.config.CacheTTL, s.metrics, s.logger)
	profileSvc := service.NewProfileService(s.db.Profiles(), tokens, passwords, s.logger)

	authHandler := handler.NewAuthHandler(profileSvc, github, tokens, s.config.SecureCookies, s.logger)
	recipeHandler := handler.NewRecipeHandler(searchSvc, recipeSvc, favoriteSvc, ratingSvc, s.logger)
	lookupHandler := handler.NewLookupHandler(lookupSvc, ingredientSvc, s.logger)
	profileHandler := handler.NewProfileHandler(profileSvc, recipeSvc, favoriteSvc, ratingSvc, s.logger)
	imageHandler := handler.NewImageHandler(uploader, s.logger)
	healthHandler := handler.NewHealthHandler(s.db, s.logger)

	requireAuth := auth.RequireAuth(tokens)
	optionalAuth := auth.OptionalAuth(tokens)

	r := s.router
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(s.logger, s.metrics))
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", healthHandler.HandleHealth)
	r.Handle("/metrics", s.metrics.Handler())

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.HandleRegister)
		r.Post("/login", authHandler.HandleLogin)
		r.Post("/logout", authHandler.HandleLogout)
		r.Get("/github/login", authHandler.HandleGitHubLogin)
		r.Get("/github/callback", authHandler.HandleGitHubCallback)
	})

	r.Route("/api", func(r chi.Router) {
		// public
		r.Get("/home", lookupHandler.HandleHome)
		r.Get("/filters", lookupHandler.HandleFilters)
		r.Get("/categories", lookupHandler.HandleCategories)
		r.Get("/cuisines", lookupHandler.HandleCuisines)
		r.Get("/recipes/quick", recipeHandler.HandleQuickSearch)
		r.With(s.limiter.Middleware("ingredients_suggest", s.metrics)).
			Get("/ingredients/suggest", lookupHandler.HandleSuggest)
		r.Get("/ingredients/lookup", lookupHandler.HandleIngredientByName)

		r.Group(func(r chi.Router) {
			r.Use(optionalAuth)
			r.Get("/recipes/search", recipeHandler.HandleSearch)
			r.Get("/recipes/{id}", recipeHandler.HandleDetail)
		})

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/recipes", recipeHandler.HandleCreate)
			r.Patch("/recipes/{id}/publish", recipeHandler.HandlePublish)
			r.Delete("/recipes/{id}", recipeHandler.HandleDelete)
			r.Put("/recipes/{id}/rating", recipeHandler.HandleRate)
			r.Post("/recipes/{id}/favorite", recipeHandler.HandleFavorite)
			r.Delete("/recipes/{id}/favorite", recipeHandler.HandleUnfavorite)
			r.Post("/ingredients", lookupHandler.HandleCreateIngredient)
			r.Post("/images", imageHandler.HandleUpload)

			r.Get("/me", profileHandler.HandleMe)
			r.Patch("/me", profileHandler.HandleUpdateMe)
			r.Get("/me/recipes", profileHandler.HandleMyRecipes)
			r.Get("/me/favorites", profileHandler.HandleMyFavorites)
			r.Get("/me/ratings", profileHandler.HandleMyRatings)
		})
	})

	s.logger.Info("routes ready",
		slog.Bool("github", github != nil),
		slog.Bool("cache", s.redis != nil),
		slog.Bool("images", uploader != nil),
	)
	return nil
}

// Start serves until SIGINT/SIGTERM, then drains in-flight requests for up
// to 30 seconds and closes the database and cache.
func (s *Server) Start() error {
	defer s.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go s.sweepLimiter(ctx)

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
			slog.String("driver", s.config.DBDriver),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
		s.logger.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}
	return nil
}

func (s *Server) sweepLimiter(ctx context.Context) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.limiter.Sweep(); n > 0 {
				s.logger.Debug("rate limiter swept", slog.Int("clients", n))
			}
		}
	}
}

// Close releases the cache and database. Start calls it on the way out.
func (s *Server) Close() {
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Warn("closing redis", slog.String("error", err.Error()))
		}
	}
	if err := s.db.Close(); err != nil {
		s.logger.Warn("closing database", slog.String("error", err.Error()))
	}
}

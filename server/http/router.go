package serverhttp

import (
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"colmap-service/internal/config"
	mapHnd "colmap-service/internal/mapping/handler"
	"colmap-service/internal/mapping/model"
	"colmap-service/internal/middleware"
	"colmap-service/server/http/handlers"
)

// NewRouter assembles the middleware chain and routes. The mapping
// configuration is loaded once at startup and shared read-only; each
// request builds its own mapper on top of it.
func NewRouter(cfg config.Config, mapping *model.Configuration, logger zerolog.Logger) *chi.Mux {
	r := chi.NewRouter()

	// order matters: recover -> requestID -> logging -> cors -> limit
	r.Use(middleware.Recover(logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS(cfg.AllowOrigins))
	r.Use(middleware.LimitBytes(int64(cfg.MaxUploadMB) * 1024 * 1024))

	r.Get("/health", handlers.Health)
	r.Post("/map", mapHnd.MapColumns(cfg, mapping, logger))

	return r
}

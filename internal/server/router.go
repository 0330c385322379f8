package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/cloo-solutions/shopmate/internal/api/handlers"
	"github.com/cloo-solutions/shopmate/internal/api/middleware"
)

type RouterConfig struct {
	// AuthValidator guards write endpoints. Nil leaves them open.
	AuthValidator  middleware.AuthValidator
	CORSOrigins    []string
	HealthHandler  *handlers.HealthHandler
	ChatHandler    *handlers.ChatHandler
	ProductHandler *handlers.ProductHandler
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	const maxBodyBytes int64 = 1 * 1024 * 1024

	r.Use(middleware.RequestID)
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(chimw.Recoverer)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog)
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	r.Get("/health", cfg.HealthHandler.Health)

	r.Post("/chat", cfg.ChatHandler.Chat)
	r.Post("/search", cfg.ProductHandler.Search)

	r.Route("/products", func(r chi.Router) {
		r.Get("/", cfg.ProductHandler.List)
		r.Get("/{id}", cfg.ProductHandler.Get)
	})

	r.Group(func(r chi.Router) {
		if cfg.AuthValidator != nil {
			r.Use(middleware.APIKeyAuth(cfg.AuthValidator))
		}
		r.Post("/analyze", cfg.ProductHandler.Analyze)
	})

	return r
}

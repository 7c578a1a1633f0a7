package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// RouterConfig carries the wiring the router needs beyond the handler
// itself.
type RouterConfig struct {
	CORSOrigins []string
	// AuthRequired wraps the mutating routes with the JWT middleware.
	AuthRequired bool
	// UploadsDir enables the read-only static file server for the local
	// storage backend; empty disables it.
	UploadsDir string
	Tracing    bool
}

// NewRouter builds the full HTTP surface.
func NewRouter(h *Handler, logger *zap.Logger, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(RequestLogger(logger))
	r.Use(chimiddleware.Recoverer)
	if cfg.Tracing {
		r.Use(Trace)
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: false,
		MaxAge:           86400,
	}))

	protect := func(next http.Handler) http.Handler { return next }
	if cfg.AuthRequired {
		protect = RequireAuth(h.auth)
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/properties", h.HandleListProperties)
		r.Get("/properties/{id}", h.HandleGetProperty)
		r.Post("/properties/{id}/view", h.HandleIncrementViews)
		r.Post("/properties/{id}/contact-request", h.HandleIncrementContactRequests)

		r.Post("/login", h.HandleLogin)
		r.Post("/register", h.HandleRegister)

		r.Group(func(r chi.Router) {
			r.Use(protect)
			r.Post("/properties", h.HandleCreateProperty)
			r.Put("/properties/{id}", h.HandleUpdateProperty)
			r.Delete("/properties/{id}", h.HandleDeleteProperty)
			r.Post("/upload-images", h.HandleUploadImages)
			r.Delete("/delete-image/{filename}", h.HandleDeleteImage)
		})
	})

	r.Get("/health", h.HandleHealth)

	if cfg.UploadsDir != "" {
		fs := http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadsDir)))
		r.Method(http.MethodGet, "/uploads/*", fs)
	}

	return r
}

package rest

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/ThatsDronzer/Bliss-Vendors-sub001/internal/adapter/rest/middleware"
	"github.com/ThatsDronzer/Bliss-Vendors-sub001/internal/platform/logger"
)

// NewRouter wires all routes. Reads are public; writes and uploads sit
// behind JWT auth, uploads additionally behind a per-IP rate limit.
func NewRouter(h *Handler, jwtSecret string, log *logger.Logger) http.Handler {
	mux := chi.NewRouter()

	mux.Use(chimw.RequestID)
	mux.Use(chimw.RealIP)
	mux.Use(chimw.Recoverer)
	mux.Use(middleware.RequestLogger(log))
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	mux.Get("/healthz", h.HandleHealthz)
	mux.Get("/api/listings/{id}", h.HandleGetListing)
	mux.Get("/api/listings", h.HandleSearchListings)

	mux.Group(func(r chi.Router) {
		r.Use(middleware.JWTAuth(jwtSecret, log))

		r.Post("/api/listings", h.HandleCreateListing)
		r.Patch("/api/listings/{id}", h.HandleUpdateListing)
		r.Delete("/api/listings/{id}", h.HandleDeleteListing)

		r.Group(func(r chi.Router) {
			r.Use(httprate.LimitByIP(30, 1*time.Minute))
			r.Post("/api/uploads", h.HandleUpload)
		})
	})

	return otelhttp.NewHandler(mux, "listing-service")
}

package api

import (
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// SetupRoutes configures all API routes.
func SetupRoutes(h *Handlers) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)

	// CORS - the public endpoints are called from the job-board front-end;
	// credentials carry the viewer/session cookies.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://ditalent.example", "http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Session-ID", "X-Viewer-ID", "X-Admin-Token"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check (no auth required)
	r.Get("/health", h.HandleHealth)

	r.Route("/api", func(r chi.Router) {
		// Public popup feed and tracking
		r.Get("/popups/active", h.HandleActivePopups)
		r.Post("/popups/{id}/shown", h.HandlePopupShown)
		r.Post("/popups/{id}/click", h.HandlePopupClick)

		// Admin catalog (token-protected outside dev)
		r.Route("/admin/popups", func(r chi.Router) {
			r.Use(adminAuth)
			r.Get("/", h.HandleListPopups)
			r.Post("/", h.HandleCreatePopup)
			r.Get("/{id}", h.HandleGetPopup)
			r.Put("/{id}", h.HandleUpdatePopup)
			r.Delete("/{id}", h.HandleDeletePopup)
			r.Put("/{id}/image", h.HandleUploadPopupImage)
		})
	})

	return r
}

// adminAuth gates the admin catalog behind a shared token. When no token is
// configured (local development) the check is skipped, matching how the rest
// of the platform's back-office runs locally.
func adminAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		token := os.Getenv("ADMIN_API_TOKEN")
		if token != "" && req.Header.Get("X-Admin-Token") != token {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":"unauthorized"}`))
			return
		}
		next.ServeHTTP(w, req)
	})
}

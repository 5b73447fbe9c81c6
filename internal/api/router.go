package api

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/isdelr/planforge-be/internal/api/handlers"
	"github.com/isdelr/planforge-be/internal/auth"
	"github.com/isdelr/planforge-be/internal/services"
)

// NewRouter creates and configures a new Chi router.
func NewRouter(userService services.UserServiceProvider, planService services.PlanServiceProvider, trendingService services.TrendingServiceProvider, staticDir string) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS configuration for development
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"}, // Adjust for your frontend URL
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize handlers
	userHandler := handlers.NewUserHandler(userService)
	planHandler := handlers.NewPlanHandler(planService)
	trendingHandler := handlers.NewTrendingHandler(trendingService)

	r.Route("/api", func(r chi.Router) {
		// Public endpoints
		r.Post("/register", userHandler.Register)
		r.Post("/login", userHandler.Login)
		r.Get("/trending-ideas", trendingHandler.Get)

		// Endpoints requiring a valid bearer token
		r.Group(func(r chi.Router) {
			r.Use(auth.JWTMiddleware())

			r.Get("/get-username", userHandler.GetUsername)
			r.Post("/generate-plan", planHandler.Generate)
			r.Post("/expand-section", planHandler.Expand)
			r.Post("/chat", planHandler.Chat)
			r.Post("/save-plan", planHandler.Save)
			r.Get("/profile", planHandler.Profile)
			r.Get("/plans", planHandler.List)
			r.Post("/delete-plan", planHandler.Delete)
		})
	})

	// Everything else is the SPA: serve the static file if it exists,
	// otherwise fall back to index.html.
	r.NotFound(spaHandler(staticDir))

	return r
}

// spaHandler serves files from staticDir with an index.html fallback
// for client-side routes.
func spaHandler(staticDir string) http.HandlerFunc {
	fileServer := http.FileServer(http.Dir(staticDir))
	return func(w http.ResponseWriter, r *http.Request) {
		path := filepath.Join(staticDir, filepath.Clean("/"+r.URL.Path))
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			fileServer.ServeHTTP(w, r)
			return
		}
		if strings.HasPrefix(r.URL.Path, "/api/") {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error":"Not found"}`))
			return
		}
		http.ServeFile(w, r, filepath.Join(staticDir, "index.html"))
	}
}

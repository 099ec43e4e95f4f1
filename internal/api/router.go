package api

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// SetupUIRouter serves the page, its JSON/CSV/chart endpoints and the live
// websocket.
func SetupUIRouter(apiHandler *APIHandler) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/", apiHandler.ServeWebUI)
	r.Get("/ws", apiHandler.HandleWebSocket)

	r.Route("/api", func(r chi.Router) {
		r.Get("/view", apiHandler.HandleView)
		r.Get("/readings.csv", apiHandler.HandleCSV)
		r.Get("/charts/{kind}.{format}", apiHandler.HandleChart)
		r.Get("/sites.geojson", apiHandler.HandleSites)
		r.Post("/login", apiHandler.HandleLogin)
		r.With(apiHandler.auth.Authenticate).Post("/refresh", apiHandler.HandleRefresh)
	})

	// Serve static files (CSS, JS) when a web directory is present
	staticPath := filepath.Join(apiHandler.webDir, "static")
	if info, err := os.Stat(staticPath); err == nil && info.IsDir() {
		fs := http.FileServer(http.Dir(staticPath))
		r.Handle("/static/*", http.StripPrefix("/static/", fs))
	}

	return r
}

// SetupAdminRouter serves the operator endpoints on a separate listener.
func SetupAdminRouter(apiHandler *APIHandler) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", apiHandler.HandleHealth)
	r.Group(func(r chi.Router) {
		r.Use(apiHandler.auth.APIKeyMiddleware)
		r.Post("/api/replay", apiHandler.HandleReplay)
		r.Post("/api/archive", apiHandler.HandleArchive)
	})

	return r
}

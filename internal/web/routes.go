package web

import (
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/satriadp/hadirku/internal/web/handlers"
	"github.com/satriadp/hadirku/internal/web/middleware"
	"github.com/satriadp/hadirku/internal/web/static"
)

func (s *Server) setupRoutes(sessionManager *middleware.SessionManager) {
	// Create handlers
	authHandler := handlers.NewAuthHandler(s.config, sessionManager)
	attendanceHandler := handlers.NewAttendanceHandler(s.deps.Ledger, s.deps.Store, s.deps.Extractor)
	enrollHandler := handlers.NewEnrollHandler(s.deps.Enrollment, s.deps.Extractor)
	identitiesHandler := handlers.NewIdentitiesHandler(s.deps.Store)
	exportHandler := handlers.NewExportHandler(s.deps.Store)

	// Health check (no auth required)
	s.router.Get("/api/v1/health", handlers.HealthCheck)

	// API routes
	s.router.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/logout", authHandler.Logout)
		r.Get("/auth/status", authHandler.Status)

		// Check-in stays open so the kiosk works without an operator login.
		r.Post("/attendance", attendanceHandler.Record)

		// Everything else is operator-only.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(sessionManager))

			r.Get("/attendance", attendanceHandler.List)
			r.Post("/enroll", enrollHandler.Enroll)
			r.Get("/identities", identitiesHandler.List)
			r.Get("/export/csv", exportHandler.CSV)
		})
	})

	// Serve static files for the kiosk frontend
	s.router.Get("/*", s.serveStatic)
}

// serveStatic serves the embedded kiosk page and its assets.
func (s *Server) serveStatic(w http.ResponseWriter, r *http.Request) {
	fs := static.GetFileSystem()
	path := r.URL.Path
	if path == "/" {
		path = "/index.html"
	}

	f, err := fs.Open(path)
	if err != nil {
		// Unknown paths fall back to the kiosk page.
		f, err = fs.Open("/index.html")
		if err != nil {
			http.NotFound(w, r)
			return
		}
		path = "/index.html"
	}
	defer f.Close()

	contentType := "application/octet-stream"
	switch {
	case strings.HasSuffix(path, ".html"):
		contentType = "text/html; charset=utf-8"
	case strings.HasSuffix(path, ".css"):
		contentType = "text/css; charset=utf-8"
	case strings.HasSuffix(path, ".js"):
		contentType = "application/javascript; charset=utf-8"
	case strings.HasSuffix(path, ".svg"):
		contentType = "image/svg+xml"
	case strings.HasSuffix(path, ".png"):
		contentType = "image/png"
	case strings.HasSuffix(path, ".ico"):
		contentType = "image/x-icon"
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	io.Copy(w, f)
}

// Package httpapi exposes the render pipeline over HTTP.
//
// Surface: GET /health, POST /render (PDF bytes), POST /render/html
// (HTML bytes), POST /render/link (stored artifact + expiring link) and
// GET /files/{fileName} (unauthenticated download; the link itself is
// the capability).
package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/alnah/go-pdfserve"
	"github.com/alnah/go-pdfserve/internal/artifact"
	"github.com/alnah/go-pdfserve/internal/config"
)

// server bundles the request handlers' shared dependencies.
type server struct {
	cfg    *config.Config
	pool   *pdfserve.ServicePool
	store  *artifact.Store
	logger *slog.Logger
}

// NewRouter builds the HTTP handler for the render service.
func NewRouter(cfg *config.Config, pool *pdfserve.ServicePool, store *artifact.Store, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	s := &server{cfg: cfg, pool: pool, store: store, logger: logger}

	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(s.recoverMiddleware)
	r.Use(s.loggingMiddleware)

	r.Get("/health", s.health)

	r.Group(func(r chi.Router) {
		r.Use(s.authMiddleware)
		r.Post("/render", s.renderPDF)
		r.Post("/render/html", s.renderHTML)
		r.Post("/render/link", s.renderLink)
	})

	// No auth on downloads: the unguessable storage name is the capability.
	r.Get("/files/{fileName}", s.downloadFile)

	return r
}

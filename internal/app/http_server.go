// Package app wires the touchpad HTTP surface, gesture pipeline and transport together.
package app

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"os"

	"github.com/frudas24/remotemouse/internal/web"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Router returns the pad HTTP routes. staticDir, when it exists, is served
// instead of the embedded page.
func (a *App) Router(staticDir string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/api/state", a.handleState)
	r.Get("/healthz", handleHealth)
	r.Handle("/ws/control", a.Control())
	if a.cfg.MetricsEnabled {
		r.Handle("/metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}))
	}
	r.Get("/favicon.ico", handleFavicon)
	r.Handle("/*", staticFileServer(staticDir, a.log))
	return r
}

// handleState returns the current session snapshot.
func (a *App) handleState(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(a.session.Snapshot())
}

// handleHealth reports liveness.
func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]bool{"ok": true})
}

// staticFileServer returns a handler for static assets, preferring disk then embed.
func staticFileServer(staticDir string, logger *slog.Logger) http.Handler {
	if staticDir != "" {
		if info, err := os.Stat(staticDir); err == nil && info.IsDir() {
			return http.FileServer(http.Dir(staticDir))
		}
	}

	embedded, err := web.StaticFS()
	if err != nil {
		logger.Error("static assets unavailable", "err", err)
		return http.NotFoundHandler()
	}
	return http.FileServer(http.FS(embedded))
}

// handleFavicon avoids noisy 404s for the default browser request.
func handleFavicon(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

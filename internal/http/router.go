// Package httpapi exposes the engine's introspection surface: health,
// Prometheus metrics, and read/toggle access to the layer registry.
package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"georisk/internal/layers"
	"georisk/internal/platform/middleware"
)

// Handler is the thin HTTP layer over the registry. It carries no business
// logic of its own.
type Handler struct {
	log      *slog.Logger
	registry *layers.Registry
}

// NewHandler builds the introspection handler.
func NewHandler(registry *layers.Registry, log *slog.Logger) *Handler {
	return &Handler{log: log, registry: registry}
}

// NewRouter wires all introspection endpoints.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(h.log))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(h.log))
	r.Use(middleware.Timeout(30 * time.Second))
	r.Get("/healthz", h.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	r.Get("/api/layers", h.handleLayers)
	r.Post("/api/layers/{id}/toggle", h.handleToggle)
	return r
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleLayers(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"layers": h.registry.Layers()})
}

func (h *Handler) handleToggle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	enabled, ok := h.registry.Toggle(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown layer"})
		return
	}
	h.log.Info("layer toggled", "layer", id, "enabled", enabled)
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "enabled": enabled})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// Package httptransport is the thin read-only lookup layer over the stores.
// It delegates to store interfaces without embedding resolution logic so
// transport concerns stay isolated.
package httptransport

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	pkgerrors "unify/pkg/errors"
)

// NewRouter wires the lookup endpoints plus health and metrics.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Get("/entities/{unifiedID}", h.handleGetEntity)
		r.Get("/entities", h.handleSearchEntities)
		r.Get("/matches", h.handleListMatches)
		r.Get("/relationships", h.handleListRelationships)
	})

	return r
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError centralizes domain error translation so every endpoint returns
// the same JSON error envelope.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	code := string(pkgerrors.CodeInternal)
	var de *pkgerrors.Error
	if errors.As(err, &de) {
		status = pkgerrors.ToHTTPStatus(de.Code)
		code = string(de.Code)
	}
	writeJSON(w, status, map[string]string{"error": code})
}

package httptransport

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"unify/internal/resolution/models"
	"unify/internal/store"
	pkgerrors "unify/pkg/errors"
)

// Handler serves read-only lookups against the batch's result stores. It
// never mutates anything: the pipeline is the only writer.
type Handler struct {
	entities      store.EntityStore
	matches       store.MatchStore
	relationships store.RelationshipStore
	logger        *slog.Logger
}

// NewHandler builds the lookup handler.
func NewHandler(entities store.EntityStore, matches store.MatchStore, relationships store.RelationshipStore, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		entities:      entities,
		matches:       matches,
		relationships: relationships,
		logger:        logger,
	}
}

func (h *Handler) handleGetEntity(w http.ResponseWriter, r *http.Request) {
	unifiedID := chi.URLParam(r, "unifiedID")
	entity, err := h.entities.FindByUnifiedID(r.Context(), unifiedID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entity)
}

func (h *Handler) handleSearchEntities(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		writeError(w, pkgerrors.New(pkgerrors.CodeInvalidInput, "name query parameter is required"))
		return
	}
	entities, err := h.entities.SearchByName(r.Context(), name)
	if err != nil {
		h.logger.Error("entity search failed", "name", name, "error", err)
		writeError(w, err)
		return
	}
	if entities == nil {
		entities = []models.UnifiedEntity{}
	}
	writeJSON(w, http.StatusOK, entities)
}

// handleListMatches serves the review workflow: ?action=REVIEW_REQUIRED
// returns the pairs awaiting a human decision.
func (h *Handler) handleListMatches(w http.ResponseWriter, r *http.Request) {
	action := models.MergeAction(strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("action"))))
	switch action {
	case models.MergeActionAutoMerge, models.MergeActionReviewRequired, models.MergeActionKeepSeparate:
	default:
		writeError(w, pkgerrors.New(pkgerrors.CodeInvalidInput, "action must be AUTO_MERGE, REVIEW_REQUIRED, or KEEP_SEPARATE"))
		return
	}
	matches, err := h.matches.ListByAction(r.Context(), action)
	if err != nil {
		h.logger.Error("match listing failed", "action", action, "error", err)
		writeError(w, err)
		return
	}
	if matches == nil {
		matches = []models.MatchScore{}
	}
	writeJSON(w, http.StatusOK, matches)
}

func (h *Handler) handleListRelationships(w http.ResponseWriter, r *http.Request) {
	source := strings.TrimSpace(r.URL.Query().Get("source"))
	id := strings.TrimSpace(r.URL.Query().Get("id"))
	if source == "" || id == "" {
		writeError(w, pkgerrors.New(pkgerrors.CodeInvalidInput, "source and id query parameters are required"))
		return
	}
	relationships, err := h.relationships.ListByRecord(r.Context(), models.RecordRef{Source: source, ID: id})
	if err != nil {
		h.logger.Error("relationship listing failed", "source", source, "id", id, "error", err)
		writeError(w, err)
		return
	}
	if relationships == nil {
		relationships = []models.InferredRelationship{}
	}
	writeJSON(w, http.StatusOK, relationships)
}

// Package service orchestrates the resolution pipeline: normalized records
// flow one way through blocking/scoring, then relationship inference and
// entity unification run as independent passes over the scored snapshot.
package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"unify/internal/resolution/blocking"
	"unify/internal/resolution/metrics"
	"unify/internal/resolution/models"
	"unify/internal/resolution/relationship"
	"unify/internal/resolution/unifier"
)

// Result is the output of one batch run: the three ordered collections plus
// the run identifier stamped into logs.
type Result struct {
	RunID         string
	Matches       []models.MatchScore
	Relationships []models.InferredRelationship
	Entities      []models.UnifiedEntity
}

// Resolver runs the batch pipeline. It never mutates input records.
type Resolver struct {
	candidates    *blocking.Generator
	relationships *relationship.Inferencer
	unifier       *unifier.Unifier
	metrics       *metrics.Metrics
	logger        *slog.Logger
	tracer        trace.Tracer
}

// NewResolver wires the pipeline stages. metrics may be nil to disable
// counters (tests).
func NewResolver(
	candidates *blocking.Generator,
	relationships *relationship.Inferencer,
	entityUnifier *unifier.Unifier,
	m *metrics.Metrics,
	logger *slog.Logger,
) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		candidates:    candidates,
		relationships: relationships,
		unifier:       entityUnifier,
		metrics:       m,
		logger:        logger,
		tracer:        otel.Tracer("unify/resolution"),
	}
}

// Resolve runs one batch pass over a snapshot of normalized records and
// returns the match scores, inferred relationships, and unified entities.
// Relationship inference and unification both read the scored snapshot but
// not each other's output, so they run concurrently.
func (r *Resolver) Resolve(ctx context.Context, records []*models.NormalizedRecord) (*Result, error) {
	runID := uuid.NewString()
	logger := r.logger.With("run_id", runID)

	ctx, span := r.tracer.Start(ctx, "resolution.batch",
		trace.WithAttributes(attribute.Int("records", len(records))))
	defer span.End()

	logger.Info("resolution batch starting", "records", len(records))

	matches, err := r.scoreCandidates(ctx, records)
	if err != nil {
		return nil, err
	}

	var autoMerges, reviews int
	for _, m := range matches {
		switch m.MergeAction {
		case models.MergeActionAutoMerge:
			autoMerges++
		case models.MergeActionReviewRequired:
			reviews++
		}
	}
	r.metrics.AddCandidates(len(matches), autoMerges, reviews)

	result := &Result{RunID: runID, Matches: matches}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		_, span := r.tracer.Start(egCtx, "resolution.relationships")
		defer span.End()
		result.Relationships = r.relationships.Infer(records, matches)
		return nil
	})
	eg.Go(func() error {
		_, span := r.tracer.Start(egCtx, "resolution.unify")
		defer span.End()
		result.Entities = r.unifier.Unify(records, matches)
		return nil
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	r.metrics.AddRelationships(len(result.Relationships))
	r.metrics.AddUnifiedEntities(len(result.Entities))

	logger.Info("resolution batch complete",
		"candidates", len(matches),
		"auto_merges", autoMerges,
		"reviews_required", reviews,
		"relationships", len(result.Relationships),
		"unified_entities", len(result.Entities),
	)
	return result, nil
}

func (r *Resolver) scoreCandidates(ctx context.Context, records []*models.NormalizedRecord) ([]models.MatchScore, error) {
	ctx, span := r.tracer.Start(ctx, "resolution.blocking")
	defer span.End()
	return r.candidates.Candidates(ctx, records)
}

// Package store persists batch results for downstream lookup consumers.
//
// Stores are interface-driven so the lookup API and downstream collaborators
// can run against in-memory, PostgreSQL, or cache-fronted implementations
// without rewiring. All stores are read-only contracts after a batch is
// saved: the pipeline writes once, consumers only read.
package store

import (
	"context"

	"unify/internal/resolution/models"
)

// EntityStore holds unified entities keyed by unified ID and searchable by
// canonical name.
type EntityStore interface {
	SaveEntities(ctx context.Context, entities []models.UnifiedEntity) error
	FindByUnifiedID(ctx context.Context, unifiedID string) (models.UnifiedEntity, error)
	SearchByName(ctx context.Context, name string) ([]models.UnifiedEntity, error)
}

// MatchStore holds scored candidate pairs, filterable by merge action for
// the human-in-the-loop review workflow.
type MatchStore interface {
	SaveMatches(ctx context.Context, matches []models.MatchScore) error
	ListByAction(ctx context.Context, action models.MergeAction) ([]models.MatchScore, error)
}

// RelationshipStore holds inferred relationships, queryable by either
// endpoint.
type RelationshipStore interface {
	SaveRelationships(ctx context.Context, relationships []models.InferredRelationship) error
	ListByRecord(ctx context.Context, ref models.RecordRef) ([]models.InferredRelationship, error)
}

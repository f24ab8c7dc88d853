package store

import (
	"context"
	"strings"
	"sync"

	"unify/internal/resolution/models"
)

// In-memory stores keep single-process deployments and tests lightweight.
// They favor clarity over performance and preserve insertion order on list
// operations.

// MemoryEntityStore is an in-memory EntityStore.
type MemoryEntityStore struct {
	mu      sync.RWMutex
	byID    map[string]models.UnifiedEntity
	ordered []string
}

// NewMemoryEntityStore builds an empty in-memory entity store.
func NewMemoryEntityStore() *MemoryEntityStore {
	return &MemoryEntityStore{byID: make(map[string]models.UnifiedEntity)}
}

func (s *MemoryEntityStore) SaveEntities(_ context.Context, entities []models.UnifiedEntity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range entities {
		if _, ok := s.byID[e.UnifiedID]; !ok {
			s.ordered = append(s.ordered, e.UnifiedID)
		}
		s.byID[e.UnifiedID] = e
	}
	return nil
}

func (s *MemoryEntityStore) FindByUnifiedID(_ context.Context, unifiedID string) (models.UnifiedEntity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if e, ok := s.byID[unifiedID]; ok {
		return e, nil
	}
	return models.UnifiedEntity{}, ErrNotFound
}

// SearchByName matches case-insensitively on canonical-name substring.
func (s *MemoryEntityStore) SearchByName(_ context.Context, name string) ([]models.UnifiedEntity, error) {
	needle := strings.ToUpper(strings.TrimSpace(name))
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.UnifiedEntity
	if needle == "" {
		return out, nil
	}
	for _, id := range s.ordered {
		e := s.byID[id]
		if strings.Contains(strings.ToUpper(e.CanonicalName), needle) {
			out = append(out, e)
		}
	}
	return out, nil
}

// MemoryMatchStore is an in-memory MatchStore.
type MemoryMatchStore struct {
	mu      sync.RWMutex
	matches []models.MatchScore
}

// NewMemoryMatchStore builds an empty in-memory match store.
func NewMemoryMatchStore() *MemoryMatchStore {
	return &MemoryMatchStore{}
}

func (s *MemoryMatchStore) SaveMatches(_ context.Context, matches []models.MatchScore) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.matches = append(s.matches, matches...)
	return nil
}

func (s *MemoryMatchStore) ListByAction(_ context.Context, action models.MergeAction) ([]models.MatchScore, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.MatchScore
	for _, m := range s.matches {
		if m.MergeAction == action {
			out = append(out, m)
		}
	}
	return out, nil
}

// MemoryRelationshipStore is an in-memory RelationshipStore.
type MemoryRelationshipStore struct {
	mu            sync.RWMutex
	relationships []models.InferredRelationship
}

// NewMemoryRelationshipStore builds an empty in-memory relationship store.
func NewMemoryRelationshipStore() *MemoryRelationshipStore {
	return &MemoryRelationshipStore{}
}

func (s *MemoryRelationshipStore) SaveRelationships(_ context.Context, relationships []models.InferredRelationship) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.relationships = append(s.relationships, relationships...)
	return nil
}

func (s *MemoryRelationshipStore) ListByRecord(_ context.Context, ref models.RecordRef) ([]models.InferredRelationship, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.InferredRelationship
	for _, r := range s.relationships {
		if r.Entity1 == ref || r.Entity2 == ref {
			out = append(out, r)
		}
	}
	return out, nil
}

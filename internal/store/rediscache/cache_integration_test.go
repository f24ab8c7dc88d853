//go:build integration

package rediscache

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"unify/internal/resolution/models"
	"unify/internal/store"
	"unify/pkg/testutil/containers"
)

// countingStore wraps the in-memory store to observe cache hits vs misses.
type countingStore struct {
	*store.MemoryEntityStore
	finds int
}

func (c *countingStore) FindByUnifiedID(ctx context.Context, unifiedID string) (models.UnifiedEntity, error) {
	c.finds++
	return c.MemoryEntityStore.FindByUnifiedID(ctx, unifiedID)
}

type CacheSuite struct {
	suite.Suite
	ctx   context.Context
	redis *containers.RedisContainer
	inner *countingStore
	cache *Cache
}

func TestCacheSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(CacheSuite))
}

func (s *CacheSuite) SetupSuite() {
	s.ctx = context.Background()
	s.redis = containers.NewRedisContainer(s.T())
}

func (s *CacheSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(s.ctx))
	s.inner = &countingStore{MemoryEntityStore: store.NewMemoryEntityStore()}
	s.cache = New(s.inner, s.redis.Client, time.Minute, slog.Default())
}

func entity(id, name string) models.UnifiedEntity {
	return models.UnifiedEntity{
		UnifiedID:     id,
		CanonicalName: name,
		EntityType:    models.EntityTypePerson,
		SourceRecords: []models.RecordRef{{Source: "deposit_core", ID: id}},
	}
}

func (s *CacheSuite) TestSavePrimesCache() {
	s.Require().NoError(s.cache.SaveEntities(s.ctx, []models.UnifiedEntity{
		entity("UNI-0001", "JOHN SMITH"),
	}))

	got, err := s.cache.FindByUnifiedID(s.ctx, "UNI-0001")
	s.Require().NoError(err)
	s.Equal("JOHN SMITH", got.CanonicalName)
	s.Equal(0, s.inner.finds, "primed lookup must not touch the inner store")
}

func (s *CacheSuite) TestReadThroughOnMiss() {
	// Write behind the cache's back so the first read is a miss.
	s.Require().NoError(s.inner.SaveEntities(s.ctx, []models.UnifiedEntity{
		entity("UNI-0002", "MARY SMITH"),
	}))

	got, err := s.cache.FindByUnifiedID(s.ctx, "UNI-0002")
	s.Require().NoError(err)
	s.Equal("MARY SMITH", got.CanonicalName)
	s.Equal(1, s.inner.finds)

	_, err = s.cache.FindByUnifiedID(s.ctx, "UNI-0002")
	s.Require().NoError(err)
	s.Equal(1, s.inner.finds, "second lookup must be served from cache")
}

func (s *CacheSuite) TestMissingEntity() {
	_, err := s.cache.FindByUnifiedID(s.ctx, "UNI-0404")
	s.ErrorIs(err, store.ErrNotFound)
}

func (s *CacheSuite) TestUndecodableEntryFallsThrough() {
	s.Require().NoError(s.inner.SaveEntities(s.ctx, []models.UnifiedEntity{
		entity("UNI-0003", "ACME LLC"),
	}))
	s.Require().NoError(s.redis.Client.Set(s.ctx, "unify:entity:UNI-0003", "{corrupt", time.Minute).Err())

	got, err := s.cache.FindByUnifiedID(s.ctx, "UNI-0003")
	s.Require().NoError(err)
	s.Equal("ACME LLC", got.CanonicalName)
}

func (s *CacheSuite) TestSearchDelegates() {
	s.Require().NoError(s.cache.SaveEntities(s.ctx, []models.UnifiedEntity{
		entity("UNI-0001", "JOHN SMITH"),
		entity("UNI-0002", "MARY SMITH"),
	}))

	got, err := s.cache.SearchByName(s.ctx, "smith")
	s.Require().NoError(err)
	s.Len(got, 2)
}

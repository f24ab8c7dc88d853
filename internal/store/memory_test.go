package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"unify/internal/resolution/models"
)

type MemoryStoreSuite struct {
	suite.Suite
	ctx context.Context
}

func TestMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(MemoryStoreSuite))
}

func (s *MemoryStoreSuite) SetupTest() {
	s.ctx = context.Background()
}

func entity(id, name string) models.UnifiedEntity {
	return models.UnifiedEntity{
		UnifiedID:     id,
		CanonicalName: name,
		EntityType:    models.EntityTypePerson,
		SourceRecords: []models.RecordRef{{Source: "deposit_core", ID: id}},
	}
}

func (s *MemoryStoreSuite) TestEntityStore() {
	store := NewMemoryEntityStore()

	s.Run("find missing returns ErrNotFound", func() {
		_, err := store.FindByUnifiedID(s.ctx, "UNI-0404")
		s.ErrorIs(err, ErrNotFound)
	})

	s.Require().NoError(store.SaveEntities(s.ctx, []models.UnifiedEntity{
		entity("UNI-0001", "JOHN SMITH"),
		entity("UNI-0002", "MARY SMITH"),
		entity("UNI-0003", "ACME LLC"),
	}))

	s.Run("find by id", func() {
		got, err := store.FindByUnifiedID(s.ctx, "UNI-0002")
		s.Require().NoError(err)
		s.Equal("MARY SMITH", got.CanonicalName)
	})

	s.Run("search is case-insensitive substring in insertion order", func() {
		got, err := store.SearchByName(s.ctx, "smith")
		s.Require().NoError(err)
		s.Require().Len(got, 2)
		s.Equal("UNI-0001", got[0].UnifiedID)
		s.Equal("UNI-0002", got[1].UnifiedID)
	})

	s.Run("blank search returns nothing", func() {
		got, err := store.SearchByName(s.ctx, "   ")
		s.Require().NoError(err)
		s.Empty(got)
	})

	s.Run("resave overwrites without duplicating", func() {
		updated := entity("UNI-0001", "JOHN R SMITH")
		s.Require().NoError(store.SaveEntities(s.ctx, []models.UnifiedEntity{updated}))

		got, err := store.FindByUnifiedID(s.ctx, "UNI-0001")
		s.Require().NoError(err)
		s.Equal("JOHN R SMITH", got.CanonicalName)

		all, err := store.SearchByName(s.ctx, "smith")
		s.Require().NoError(err)
		s.Len(all, 2)
	})
}

func (s *MemoryStoreSuite) TestMatchStore() {
	store := NewMemoryMatchStore()

	matches := []models.MatchScore{
		{Entity1: models.RecordRef{Source: "a", ID: "1"}, Entity2: models.RecordRef{Source: "b", ID: "2"}, MergeAction: models.MergeActionAutoMerge},
		{Entity1: models.RecordRef{Source: "a", ID: "1"}, Entity2: models.RecordRef{Source: "c", ID: "3"}, MergeAction: models.MergeActionReviewRequired},
		{Entity1: models.RecordRef{Source: "b", ID: "2"}, Entity2: models.RecordRef{Source: "c", ID: "3"}, MergeAction: models.MergeActionReviewRequired},
	}
	s.Require().NoError(store.SaveMatches(s.ctx, matches))

	reviews, err := store.ListByAction(s.ctx, models.MergeActionReviewRequired)
	s.Require().NoError(err)
	s.Len(reviews, 2)

	kept, err := store.ListByAction(s.ctx, models.MergeActionKeepSeparate)
	s.Require().NoError(err)
	s.Empty(kept)
}

func (s *MemoryStoreSuite) TestRelationshipStore() {
	store := NewMemoryRelationshipStore()

	john := models.RecordRef{Source: "deposit_core", ID: "1"}
	mary := models.RecordRef{Source: "deposit_core", ID: "2"}
	biz := models.RecordRef{Source: "business_banking", ID: "B-1"}

	s.Require().NoError(store.SaveRelationships(s.ctx, []models.InferredRelationship{
		{Entity1: john, Entity2: mary, RelationshipType: models.RelationshipHousehold},
		{Entity1: john, Entity2: biz, RelationshipType: models.RelationshipBusinessOwner},
	}))

	s.Run("matches either side of the edge", func() {
		got, err := store.ListByRecord(s.ctx, mary)
		s.Require().NoError(err)
		s.Require().Len(got, 1)
		s.Equal(models.RelationshipHousehold, got[0].RelationshipType)
	})

	s.Run("record with multiple edges", func() {
		got, err := store.ListByRecord(s.ctx, john)
		s.Require().NoError(err)
		s.Len(got, 2)
	})

	s.Run("unknown record has no edges", func() {
		got, err := store.ListByRecord(s.ctx, models.RecordRef{Source: "x", ID: "y"})
		s.Require().NoError(err)
		s.Empty(got)
	})
}

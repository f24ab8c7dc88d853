package httptransport

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/suite"

	"unify/internal/resolution/models"
	"unify/internal/store"
)

type HandlersSuite struct {
	suite.Suite
	server *httptest.Server
}

func TestHandlersSuite(t *testing.T) {
	suite.Run(t, new(HandlersSuite))
}

func (s *HandlersSuite) SetupTest() {
	ctx := context.Background()

	entities := store.NewMemoryEntityStore()
	s.Require().NoError(entities.SaveEntities(ctx, []models.UnifiedEntity{
		{
			UnifiedID:     "UNI-0001",
			CanonicalName: "JOHN R SMITH",
			EntityType:    models.EntityTypePerson,
			SourceRecords: []models.RecordRef{
				{Source: "deposit_core", ID: "CUST-001"},
				{Source: "card_system", ID: "CH-77"},
			},
		},
		{
			UnifiedID:     "UNI-0002",
			CanonicalName: "MARY SMITH",
			EntityType:    models.EntityTypePerson,
			SourceRecords: []models.RecordRef{{Source: "deposit_core", ID: "CUST-002"}},
		},
	}))

	matches := store.NewMemoryMatchStore()
	s.Require().NoError(matches.SaveMatches(ctx, []models.MatchScore{
		{
			Entity1:     models.RecordRef{Source: "deposit_core", ID: "CUST-001"},
			Entity2:     models.RecordRef{Source: "card_system", ID: "CH-77"},
			TotalScore:  0.97,
			MergeAction: models.MergeActionAutoMerge,
		},
		{
			Entity1:     models.RecordRef{Source: "deposit_core", ID: "CUST-002"},
			Entity2:     models.RecordRef{Source: "card_system", ID: "CH-90"},
			TotalScore:  0.81,
			MergeAction: models.MergeActionReviewRequired,
		},
	}))

	relationships := store.NewMemoryRelationshipStore()
	s.Require().NoError(relationships.SaveRelationships(ctx, []models.InferredRelationship{{
		Entity1:          models.RecordRef{Source: "deposit_core", ID: "CUST-001"},
		Entity2:          models.RecordRef{Source: "deposit_core", ID: "CUST-002"},
		RelationshipType: models.RelationshipHousehold,
		Confidence:       0.85,
	}}))

	s.server = httptest.NewServer(NewRouter(NewHandler(entities, matches, relationships, slog.Default())))
	s.T().Cleanup(s.server.Close)
}

func (s *HandlersSuite) get(path string) (*http.Response, []byte) {
	resp, err := http.Get(s.server.URL + path)
	s.Require().NoError(err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	return resp, body
}

func (s *HandlersSuite) TestHealth() {
	resp, body := s.get("/healthz")
	s.Equal(http.StatusOK, resp.StatusCode)
	s.JSONEq(`{"status":"ok"}`, string(body))
}

func (s *HandlersSuite) TestMetricsExposed() {
	resp, _ := s.get("/metrics")
	s.Equal(http.StatusOK, resp.StatusCode)
}

func (s *HandlersSuite) TestGetEntity() {
	s.Run("found", func() {
		resp, body := s.get("/v1/entities/UNI-0001")
		s.Equal(http.StatusOK, resp.StatusCode)

		var entity models.UnifiedEntity
		s.Require().NoError(json.Unmarshal(body, &entity))
		s.Equal("JOHN R SMITH", entity.CanonicalName)
		s.Len(entity.SourceRecords, 2)
	})

	s.Run("missing returns 404 with error envelope", func() {
		resp, body := s.get("/v1/entities/UNI-0404")
		s.Equal(http.StatusNotFound, resp.StatusCode)
		s.JSONEq(`{"error":"not_found"}`, string(body))
	})
}

func (s *HandlersSuite) TestSearchEntities() {
	s.Run("substring match", func() {
		resp, body := s.get("/v1/entities?name=smith")
		s.Equal(http.StatusOK, resp.StatusCode)

		var entities []models.UnifiedEntity
		s.Require().NoError(json.Unmarshal(body, &entities))
		s.Len(entities, 2)
	})

	s.Run("no hits returns empty array", func() {
		resp, body := s.get("/v1/entities?name=nobody")
		s.Equal(http.StatusOK, resp.StatusCode)
		s.JSONEq("[]", string(body))
	})

	s.Run("missing name is a 400", func() {
		resp, _ := s.get("/v1/entities")
		s.Equal(http.StatusBadRequest, resp.StatusCode)
	})
}

func (s *HandlersSuite) TestListMatches() {
	s.Run("filters by action", func() {
		resp, body := s.get("/v1/matches?action=REVIEW_REQUIRED")
		s.Equal(http.StatusOK, resp.StatusCode)

		var matches []models.MatchScore
		s.Require().NoError(json.Unmarshal(body, &matches))
		s.Require().Len(matches, 1)
		s.Equal(models.MergeActionReviewRequired, matches[0].MergeAction)
	})

	s.Run("action is case-insensitive", func() {
		resp, body := s.get("/v1/matches?action=auto_merge")
		s.Equal(http.StatusOK, resp.StatusCode)

		var matches []models.MatchScore
		s.Require().NoError(json.Unmarshal(body, &matches))
		s.Len(matches, 1)
	})

	s.Run("unknown action is a 400", func() {
		resp, _ := s.get("/v1/matches?action=MAYBE")
		s.Equal(http.StatusBadRequest, resp.StatusCode)
	})
}

func (s *HandlersSuite) TestListRelationships() {
	s.Run("by record ref", func() {
		resp, body := s.get("/v1/relationships?source=deposit_core&id=CUST-002")
		s.Equal(http.StatusOK, resp.StatusCode)

		var rels []models.InferredRelationship
		s.Require().NoError(json.Unmarshal(body, &rels))
		s.Require().Len(rels, 1)
		s.Equal(models.RelationshipHousehold, rels[0].RelationshipType)
	})

	s.Run("missing params is a 400", func() {
		resp, _ := s.get("/v1/relationships?source=deposit_core")
		s.Equal(http.StatusBadRequest, resp.StatusCode)
	})

	s.Run("no edges returns empty array", func() {
		resp, body := s.get("/v1/relationships?source=x&id=y")
		s.Equal(http.StatusOK, resp.StatusCode)
		s.JSONEq("[]", string(body))
	})
}

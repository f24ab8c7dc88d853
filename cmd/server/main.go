// Command server runs one identity-resolution batch: it loads normalized
// records, scores candidate pairs, infers relationships, builds the unified
// entity graph, writes the three result collections, and optionally persists
// them, publishes the review queue, and stays up serving read-only lookups.
//
// main only wires dependencies; resolution logic lives in the internal
// packages.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"unify/internal/ingest"
	"unify/internal/output"
	"unify/internal/platform/config"
	"unify/internal/platform/httpserver"
	"unify/internal/platform/logger"
	platformredis "unify/internal/platform/redis"
	"unify/internal/resolution/blocking"
	"unify/internal/resolution/metrics"
	"unify/internal/resolution/relationship"
	"unify/internal/resolution/scoring"
	resolutionservice "unify/internal/resolution/service"
	"unify/internal/resolution/similarity"
	"unify/internal/resolution/unifier"
	"unify/internal/review"
	"unify/internal/store"
	"unify/internal/store/postgres"
	"unify/internal/store/rediscache"
	httptransport "unify/internal/transport/http"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New(slog.LevelInfo)
	slog.SetDefault(log)

	if err := run(context.Background(), cfg, log, metrics.New()); err != nil {
		log.Error("resolver failed", "error", err)
		os.Exit(1)
	}
}

// run executes one batch end to end. All exits flow back through here as
// errors so deferred cleanup always releases store handles.
func run(ctx context.Context, cfg config.Resolver, log *slog.Logger, m *metrics.Metrics) error {
	// Weight misconfiguration is a startup error, never a scoring-time one.
	scorer, err := scoring.NewScorer(scoring.DefaultWeights(), similarity.NewMatcher(similarity.DefaultConfig()))
	if err != nil {
		return fmt.Errorf("scoring configuration: %w", err)
	}

	resolver := resolutionservice.NewResolver(
		blocking.NewGenerator(scorer, cfg.Workers, log),
		relationship.NewInferencer(relationship.DefaultConfig(), log),
		unifier.NewUnifier(log),
		m,
		log,
	)

	records, stats, err := ingest.NewLoader(log).LoadDir(cfg.InputDir)
	if err != nil {
		return fmt.Errorf("load normalized records: %w", err)
	}
	m.AddRecords(stats.Loaded, stats.Skipped)

	result, err := resolver.Resolve(ctx, records)
	if err != nil {
		return fmt.Errorf("resolution batch: %w", err)
	}

	if err := output.NewWriter(cfg.OutputDir, log).WriteResult(result); err != nil {
		return fmt.Errorf("write results: %w", err)
	}

	entities, matches, relationships, cleanup, err := buildStores(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("configure stores: %w", err)
	}
	defer cleanup()

	if err := entities.SaveEntities(ctx, result.Entities); err != nil {
		return fmt.Errorf("persist unified entities: %w", err)
	}
	if err := matches.SaveMatches(ctx, result.Matches); err != nil {
		return fmt.Errorf("persist match scores: %w", err)
	}
	if err := relationships.SaveRelationships(ctx, result.Relationships); err != nil {
		return fmt.Errorf("persist relationships: %w", err)
	}

	if len(cfg.KafkaBrokers) > 0 {
		publisher, err := review.NewPublisher(ctx, cfg.KafkaBrokers, cfg.ReviewTopic, log)
		if err != nil {
			return fmt.Errorf("connect review publisher: %w", err)
		}
		_, err = publisher.PublishReviewQueue(ctx, result.Matches)
		publisher.Close()
		if err != nil {
			return fmt.Errorf("publish review queue: %w", err)
		}
	}

	if cfg.HTTPAddr == "" {
		log.Info("batch complete", "run_id", result.RunID)
		return nil
	}

	handler := httptransport.NewHandler(entities, matches, relationships, log)
	srv := httpserver.New(cfg.HTTPAddr, httptransport.NewRouter(handler))

	serveErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serveErr <- err
		}
	}()
	log.Info("serving lookups", "addr", cfg.HTTPAddr, "run_id", result.RunID)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)

	select {
	case err := <-serveErr:
		return fmt.Errorf("lookup server: %w", err)
	case <-quit:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}

// buildStores picks the persistence wiring: PostgreSQL when a DSN is
// configured, in-memory otherwise, with an optional Redis read-through
// cache in front of entity lookups.
func buildStores(ctx context.Context, cfg config.Resolver, log *slog.Logger) (store.EntityStore, store.MatchStore, store.RelationshipStore, func(), error) {
	cleanup := func() {}

	var entities store.EntityStore
	var matches store.MatchStore
	var relationships store.RelationshipStore

	if cfg.PostgresDSN != "" {
		pg, err := postgres.Open(cfg.PostgresDSN)
		if err != nil {
			return nil, nil, nil, cleanup, err
		}
		if err := pg.EnsureSchema(ctx); err != nil {
			pg.Close()
			return nil, nil, nil, cleanup, err
		}
		entities, matches, relationships = pg, pg, pg
		cleanup = func() { pg.Close() }
	} else {
		entities = store.NewMemoryEntityStore()
		matches = store.NewMemoryMatchStore()
		relationships = store.NewMemoryRelationshipStore()
	}

	if cfg.RedisURL != "" {
		client, err := platformredis.New(cfg.RedisURL)
		if err != nil {
			cleanup()
			return nil, nil, nil, func() {}, err
		}
		entities = rediscache.New(entities, client.Client, config.EntityCacheTTL, log)
		inner := cleanup
		cleanup = func() {
			client.Close()
			inner()
		}
	}

	return entities, matches, relationships, cleanup, nil
}

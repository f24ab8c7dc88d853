// Package postgres persists batch results in PostgreSQL so downstream
// consumers can query unified entities and the review queue across process
// restarts.
//
// Full documents are stored as JSONB alongside the columns the lookup API
// filters on; the pipeline remains the only writer.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/lib/pq"

	"unify/internal/resolution/models"
	"unify/internal/store"
)

// Store implements the store interfaces on PostgreSQL.
type Store struct {
	db *sql.DB
}

// New wraps an open database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Open connects using a lib/pq DSN and verifies connectivity.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying pool.
func (s *Store) Close() error { return s.db.Close() }

// EnsureSchema creates the result tables when they do not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	const schema = `
CREATE TABLE IF NOT EXISTS unified_entities (
	unified_id     TEXT PRIMARY KEY,
	canonical_name TEXT NOT NULL,
	entity_type    TEXT NOT NULL,
	document       JSONB NOT NULL
);
CREATE INDEX IF NOT EXISTS unified_entities_name_idx
	ON unified_entities (UPPER(canonical_name));

CREATE TABLE IF NOT EXISTS match_scores (
	pair_key     TEXT PRIMARY KEY,
	merge_action TEXT NOT NULL,
	total_score  DOUBLE PRECISION NOT NULL,
	document     JSONB NOT NULL
);
CREATE INDEX IF NOT EXISTS match_scores_action_idx
	ON match_scores (merge_action);

CREATE TABLE IF NOT EXISTS inferred_relationships (
	id                BIGSERIAL PRIMARY KEY,
	entity1_ref       TEXT NOT NULL,
	entity2_ref       TEXT NOT NULL,
	relationship_type TEXT NOT NULL,
	document          JSONB NOT NULL
);
CREATE INDEX IF NOT EXISTS inferred_relationships_refs_idx
	ON inferred_relationships (entity1_ref, entity2_ref);
`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// SaveEntities upserts unified entities by unified ID.
func (s *Store) SaveEntities(ctx context.Context, entities []models.UnifiedEntity) error {
	const q = `
		INSERT INTO unified_entities (unified_id, canonical_name, entity_type, document)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (unified_id) DO UPDATE SET
			canonical_name = EXCLUDED.canonical_name,
			entity_type = EXCLUDED.entity_type,
			document = EXCLUDED.document
	`
	return s.inTx(ctx, func(tx *sql.Tx) error {
		for _, e := range entities {
			doc, err := json.Marshal(e)
			if err != nil {
				return fmt.Errorf("marshal entity %s: %w", e.UnifiedID, err)
			}
			if _, err := tx.ExecContext(ctx, q, e.UnifiedID, e.CanonicalName, string(e.EntityType), doc); err != nil {
				return fmt.Errorf("save entity %s: %w", e.UnifiedID, err)
			}
		}
		return nil
	})
}

// FindByUnifiedID returns one unified entity.
func (s *Store) FindByUnifiedID(ctx context.Context, unifiedID string) (models.UnifiedEntity, error) {
	var doc []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT document FROM unified_entities WHERE unified_id = $1`, unifiedID).Scan(&doc)
	if err == sql.ErrNoRows {
		return models.UnifiedEntity{}, store.ErrNotFound
	}
	if err != nil {
		return models.UnifiedEntity{}, fmt.Errorf("find entity %s: %w", unifiedID, err)
	}
	var e models.UnifiedEntity
	if err := json.Unmarshal(doc, &e); err != nil {
		return models.UnifiedEntity{}, fmt.Errorf("decode entity %s: %w", unifiedID, err)
	}
	return e, nil
}

// SearchByName matches case-insensitively on canonical-name substring,
// ordered by unified ID for stable paging.
func (s *Store) SearchByName(ctx context.Context, name string) ([]models.UnifiedEntity, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT document FROM unified_entities
		WHERE UPPER(canonical_name) LIKE '%' || UPPER($1) || '%'
		ORDER BY unified_id
	`, name)
	if err != nil {
		return nil, fmt.Errorf("search entities: %w", err)
	}
	defer rows.Close()

	var out []models.UnifiedEntity
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scan entity: %w", err)
		}
		var e models.UnifiedEntity
		if err := json.Unmarshal(doc, &e); err != nil {
			return nil, fmt.Errorf("decode entity: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// SaveMatches upserts match scores by pair key.
func (s *Store) SaveMatches(ctx context.Context, matches []models.MatchScore) error {
	const q = `
		INSERT INTO match_scores (pair_key, merge_action, total_score, document)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (pair_key) DO UPDATE SET
			merge_action = EXCLUDED.merge_action,
			total_score = EXCLUDED.total_score,
			document = EXCLUDED.document
	`
	return s.inTx(ctx, func(tx *sql.Tx) error {
		for i := range matches {
			m := &matches[i]
			doc, err := json.Marshal(m)
			if err != nil {
				return fmt.Errorf("marshal match %s: %w", m.Key(), err)
			}
			if _, err := tx.ExecContext(ctx, q, m.Key(), string(m.MergeAction), m.TotalScore, doc); err != nil {
				return fmt.Errorf("save match %s: %w", m.Key(), err)
			}
		}
		return nil
	})
}

// ListByAction returns matches with the given merge action, best first.
func (s *Store) ListByAction(ctx context.Context, action models.MergeAction) ([]models.MatchScore, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT document FROM match_scores
		WHERE merge_action = $1
		ORDER BY total_score DESC, pair_key
	`, string(action))
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	defer rows.Close()

	var out []models.MatchScore
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		var m models.MatchScore
		if err := json.Unmarshal(doc, &m); err != nil {
			return nil, fmt.Errorf("decode match: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// SaveRelationships appends inferred relationships.
func (s *Store) SaveRelationships(ctx context.Context, relationships []models.InferredRelationship) error {
	const q = `
		INSERT INTO inferred_relationships (entity1_ref, entity2_ref, relationship_type, document)
		VALUES ($1, $2, $3, $4)
	`
	return s.inTx(ctx, func(tx *sql.Tx) error {
		for i := range relationships {
			r := &relationships[i]
			doc, err := json.Marshal(r)
			if err != nil {
				return fmt.Errorf("marshal relationship: %w", err)
			}
			if _, err := tx.ExecContext(ctx, q,
				r.Entity1.String(), r.Entity2.String(), string(r.RelationshipType), doc); err != nil {
				return fmt.Errorf("save relationship: %w", err)
			}
		}
		return nil
	})
}

// ListByRecord returns relationships touching the given record.
func (s *Store) ListByRecord(ctx context.Context, ref models.RecordRef) ([]models.InferredRelationship, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT document FROM inferred_relationships
		WHERE entity1_ref = $1 OR entity2_ref = $1
		ORDER BY id
	`, ref.String())
	if err != nil {
		return nil, fmt.Errorf("list relationships: %w", err)
	}
	defer rows.Close()

	var out []models.InferredRelationship
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scan relationship: %w", err)
		}
		var r models.InferredRelationship
		if err := json.Unmarshal(doc, &r); err != nil {
			return nil, fmt.Errorf("decode relationship: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

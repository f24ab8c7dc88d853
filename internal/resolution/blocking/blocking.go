// Package blocking generates candidate pairs without O(n^2) comparison.
//
// Records are partitioned by a composite blocking key (entity type, ZIP5,
// and the first three characters of the uppercased last name); only pairs
// sharing a block are scored, and only cross-source pairs at that (records
// from the same source system are assumed deduplicated at the source).
//
// Known limitation, deliberate recall/cost tradeoff: two records of the same
// person with a different ZIP or a last name differing in its first three
// characters land in different blocks and are never compared.
package blocking

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"unify/internal/resolution/models"
	"unify/internal/resolution/scoring"
)

// CandidateFloor is the minimum total score for a pair to be retained. The
// floor is intentionally low so near-miss pairs surface for human review
// even though they classify as KEEP_SEPARATE.
const CandidateFloor = 0.30

const unknownKeyPart = "UNKNOWN"

// Generator partitions records into blocks and scores intra-block pairs.
type Generator struct {
	scorer  *scoring.Scorer
	workers int
	logger  *slog.Logger
}

// NewGenerator builds a candidate generator. workers bounds the number of
// concurrent block-scoring goroutines; values below 1 are treated as 1.
func NewGenerator(scorer *scoring.Scorer, workers int, logger *slog.Logger) *Generator {
	if workers < 1 {
		workers = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{scorer: scorer, workers: workers, logger: logger}
}

// BlockKey computes the composite blocking key for a record: ZIP5 plus the
// first three characters of the uppercased last name (the full last name
// when shorter), with UNKNOWN standing in for absent parts.
func BlockKey(r *models.NormalizedRecord) string {
	zip := unknownKeyPart
	if r.Address != nil && r.Address.Zip5 != "" {
		zip = r.Address.Zip5
	}
	last := strings.ToUpper(strings.TrimSpace(r.Name.Last))
	if last == "" {
		last = unknownKeyPart
	}
	prefix := last
	if len(last) > 3 {
		prefix = last[:3]
	}
	return string(r.EntityType) + "|" + zip + "|" + prefix
}

type block struct {
	key     string
	members []*models.NormalizedRecord
}

// Candidates scores every cross-source pair within each block and returns
// all pairs at or above CandidateFloor, sorted by total score descending
// with the pair key as tie-break so output ordering is reproducible.
//
// Blocks are scored in parallel; each worker appends to its own partial
// slice and the partials are merged and globally sorted at the end, so
// there is no shared mutable state during scoring.
func (g *Generator) Candidates(ctx context.Context, records []*models.NormalizedRecord) ([]models.MatchScore, error) {
	blocks := g.partition(records)

	multi := 0
	for _, b := range blocks {
		if len(b.members) >= 2 {
			multi++
		}
	}
	g.logger.Info("scoring candidate blocks",
		"records", len(records),
		"blocks", len(blocks),
		"blocks_with_pairs", multi,
		"workers", g.workers,
	)

	chunks := chunkBlocks(blocks, g.workers)
	partials := make([][]models.MatchScore, len(chunks))

	eg, ctx := errgroup.WithContext(ctx)
	for i, chunk := range chunks {
		eg.Go(func() error {
			out, err := g.scoreChunk(ctx, chunk)
			if err != nil {
				return err
			}
			partials[i] = out
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	var matches []models.MatchScore
	for _, p := range partials {
		matches = append(matches, p...)
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].TotalScore != matches[j].TotalScore {
			return matches[i].TotalScore > matches[j].TotalScore
		}
		return matches[i].Key() < matches[j].Key()
	})

	g.logger.Info("candidate generation complete", "candidates", len(matches))
	return matches, nil
}

// partition groups records by blocking key, preserving first-seen key order
// and input order within each block.
func (g *Generator) partition(records []*models.NormalizedRecord) []block {
	index := make(map[string]int)
	var blocks []block
	for _, r := range records {
		key := BlockKey(r)
		i, ok := index[key]
		if !ok {
			i = len(blocks)
			index[key] = i
			blocks = append(blocks, block{key: key})
		}
		blocks[i].members = append(blocks[i].members, r)
	}
	return blocks
}

func (g *Generator) scoreChunk(ctx context.Context, chunk []block) ([]models.MatchScore, error) {
	var out []models.MatchScore
	for _, b := range chunk {
		if len(b.members) < 2 {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for i, e1 := range b.members {
			for _, e2 := range b.members[i+1:] {
				if e1.SourceSystem == e2.SourceSystem {
					continue
				}
				score := g.scorer.Score(e1, e2)
				if score.TotalScore >= CandidateFloor {
					out = append(out, score)
				}
			}
		}
	}
	return out, nil
}

// chunkBlocks splits blocks into at most n contiguous chunks of near-equal
// size. A record belongs to exactly one block, so a pair is scored by
// exactly one worker and no cross-chunk deduplication is needed.
func chunkBlocks(blocks []block, n int) [][]block {
	if len(blocks) == 0 {
		return nil
	}
	if n > len(blocks) {
		n = len(blocks)
	}
	chunks := make([][]block, 0, n)
	size := (len(blocks) + n - 1) / n
	for start := 0; start < len(blocks); start += size {
		end := start + size
		if end > len(blocks) {
			end = len(blocks)
		}
		chunks = append(chunks, blocks[start:end])
	}
	return chunks
}

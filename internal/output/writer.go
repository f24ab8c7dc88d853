// Package output serializes the three result collections to JSON files,
// matching the layout downstream consumers already read.
package output

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"unify/internal/resolution/service"
	pkgerrors "unify/pkg/errors"
)

const (
	matchScoresFile   = "match_scores.json"
	relationshipsFile = "relationships.json"
	entitiesFile      = "unified_entities.json"
)

// Writer persists batch results as indented JSON arrays.
type Writer struct {
	dir    string
	logger *slog.Logger
}

// NewWriter builds a writer rooted at dir; the directory is created on
// first write.
func NewWriter(dir string, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{dir: dir, logger: logger}
}

// WriteResult writes the three collections. Ordering inside each collection
// is preserved exactly as produced by the pipeline.
func (w *Writer) WriteResult(result *service.Result) error {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return pkgerrors.Wrap(err, pkgerrors.CodeInternal, fmt.Sprintf("create output dir %s", w.dir))
	}

	if err := w.writeJSON(matchScoresFile, orEmpty(result.Matches)); err != nil {
		return err
	}
	if err := w.writeJSON(relationshipsFile, orEmpty(result.Relationships)); err != nil {
		return err
	}
	if err := w.writeJSON(entitiesFile, orEmpty(result.Entities)); err != nil {
		return err
	}

	w.logger.Info("results written", "dir", w.dir,
		"matches", len(result.Matches),
		"relationships", len(result.Relationships),
		"entities", len(result.Entities),
	)
	return nil
}

// orEmpty keeps empty collections serializing as [] rather than null.
func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func (w *Writer) writeJSON(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return pkgerrors.Wrap(err, pkgerrors.CodeInternal, fmt.Sprintf("marshal %s", name))
	}
	path := filepath.Join(w.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return pkgerrors.Wrap(err, pkgerrors.CodeInternal, fmt.Sprintf("write %s", path))
	}
	return nil
}

package store

import pkgerrors "unify/pkg/errors"

var (
	// ErrNotFound keeps store-specific 404s consistent across in-memory and
	// external implementations.
	ErrNotFound = pkgerrors.New(pkgerrors.CodeNotFound, "entity not found")
)

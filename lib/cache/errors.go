package cache

import (
	"errors"

	"github.com/ValentinKolb/kvsub/lib/blueprint"
)

var (
	// ErrPersistence wraps failures of the backing store. A false result without it
	// means the operation was rejected (validation, missing key) rather than failed.
	ErrPersistence = errors.New("backing store failure")
	// ErrInvalidKey is returned when a key can't be turned into a store key or key column value.
	ErrInvalidKey = errors.New("invalid key")
)

// Registry errors, re-exported so callers only need this package.
var (
	ErrNotConfigured = blueprint.ErrNotConfigured
	ErrNotAuthorized = blueprint.ErrNotAuthorized
	ErrAlreadyExists = blueprint.ErrAlreadyExists
	ErrNotFound      = blueprint.ErrNotFound
	ErrInvalidName   = blueprint.ErrInvalidName
	ErrInvalidSchema = blueprint.ErrInvalidSchema
)

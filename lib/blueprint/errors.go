package blueprint

import (
	"errors"

	"github.com/ValentinKolb/kvsub/lib/schema"
)

var (
	// ErrNotConfigured is returned by admin operations before a passphrase was set up.
	ErrNotConfigured = errors.New("passphrase is not set up")
	// ErrNotAuthorized is returned when the given passphrase does not match.
	ErrNotAuthorized = errors.New("passphrase does not match")
	// ErrAlreadyExists is returned when creating a sub whose name is taken.
	ErrAlreadyExists = errors.New("sub already exists")
	// ErrNotFound is returned for operations on a sub that does not exist.
	ErrNotFound = errors.New("sub does not exist")
	// ErrInvalidName is returned for sub names that can't be namespaced (empty or containing '/').
	ErrInvalidName = errors.New("invalid sub name")
	// ErrNoBlueprint is returned by a Persister when no blueprint has been written yet.
	ErrNoBlueprint = errors.New("no blueprint persisted")

	// ErrInvalidSchema is schema.ErrInvalidSchema, re-exported for callers of Create.
	ErrInvalidSchema = schema.ErrInvalidSchema
)

package blueprint

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/ValentinKolb/kvsub/lib/schema"
	"github.com/lni/dragonboat/v4/logger"
)

var log = logger.GetLogger("blueprint")

// RecordPurger removes and restores the stored records of a sub.
// The registry uses it to delete a sub together with its data.
type RecordPurger interface {
	// PurgeRecords deletes every record of the sub and returns what was deleted,
	// keyed by complete store key. On error the records deleted so far are returned.
	PurgeRecords(sub string) (captured map[string][]byte, err error)
	// RestoreRecords writes previously purged records back with one bulk write.
	RestoreRecords(captured map[string][]byte) error
}

// Registry is the durable mapping from sub name to schema.
// It is loaded once, kept in memory and persisted after every mutation.
// A mutation computes the next blueprint, persists it and only then swaps it in,
// so a failed write leaves the registry unchanged.
type Registry struct {
	mu        sync.RWMutex
	current   Blueprint
	gate      *Gate
	persister Persister
}

// NewRegistry creates an empty registry. Call Load to read the persisted blueprint.
func NewRegistry(persister Persister, gate *Gate) *Registry {
	if gate == nil {
		gate = NewGate()
	}
	return &Registry{persister: persister, gate: gate}
}

// Gate returns the admin gate guarding this registry
func (r *Registry) Gate() *Gate { return r.gate }

// --------------------------------------------------------------------------
// Persistence
// --------------------------------------------------------------------------

// Load replaces the in-memory blueprint with the persisted one.
// It returns false if nothing could be read, the in-memory state is then unchanged.
func (r *Registry) Load() bool {
	data, err := r.persister.Read()
	if errors.Is(err, ErrNoBlueprint) {
		log.Debugf("no blueprint at %s yet", r.persister.Name())
		return false
	}
	if err != nil {
		log.Errorf("failed to read blueprint from %s: %v", r.persister.Name(), err)
		return false
	}

	bp, err := Decode(data)
	if err != nil {
		log.Errorf("failed to decode blueprint from %s: %v", r.persister.Name(), err)
		return false
	}

	r.mu.Lock()
	r.current = bp
	r.mu.Unlock()

	log.Infof("loaded blueprint with %d subs from %s", bp.Len(), r.persister.Name())
	return true
}

// Save persists the in-memory blueprint and reports success.
func (r *Registry) Save() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.persist(r.current) == nil
}

// persist writes bp. The caller must hold mu.
func (r *Registry) persist(bp Blueprint) error {
	data, err := bp.Encode()
	if err == nil {
		err = r.persister.Write(data)
	}
	if err != nil {
		log.Errorf("failed to persist blueprint to %s: %v", r.persister.Name(), err)
	}
	return err
}

// --------------------------------------------------------------------------
// Queries
// --------------------------------------------------------------------------

// Exists reports whether a sub with the given name is registered
func (r *Registry) Exists(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current.Has(name)
}

// Schema returns the schema of a registered sub
func (r *Registry) Schema(name string) (schema.Schema, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current.Get(name)
}

// Names returns the registered sub names in creation order
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current.Names()
}

// Snapshot returns the current blueprint
func (r *Registry) Snapshot() Blueprint {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current
}

// --------------------------------------------------------------------------
// Mutations
// --------------------------------------------------------------------------

// CheckName returns ErrInvalidName for names that would break key namespacing.
func CheckName(name string) error {
	if name == "" || strings.Contains(name, "/") {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// Create registers a new sub.
//
// Errors are returned for a wrong or missing passphrase, a taken or invalid name and an
// invalid schema. If the blueprint can't be persisted Create returns false and a nil
// error, the sub is then not registered.
func (r *Registry) Create(name string, s schema.Schema, passphrase string) (bool, error) {
	if err := r.gate.require(passphrase); err != nil {
		return false, err
	}
	if err := CheckName(name); err != nil {
		return false, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.current.Has(name) {
		return false, fmt.Errorf("%w: %q", ErrAlreadyExists, name)
	}
	if err := s.CheckKeyColumn(); err != nil {
		return false, err
	}

	next := r.current.With(name, s)
	if err := r.persist(next); err != nil {
		return false, nil
	}
	r.current = next

	log.Infof("sub %q has been created", name)
	return true, nil
}

// Delete unregisters a sub and purges its records.
//
// If purging or persisting fails, the sub stays registered and the purged records
// are written back. Such a failure is reported as false with a nil error.
func (r *Registry) Delete(name, passphrase string, purger RecordPurger) (bool, error) {
	if err := r.gate.require(passphrase); err != nil {
		return false, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.current.Has(name) {
		return false, fmt.Errorf("%w: %q", ErrNotFound, name)
	}

	next := r.current.Without(name)

	captured, err := purger.PurgeRecords(name)
	if err != nil {
		log.Errorf("failed to purge records of sub %q: %v", name, err)
		r.rollbackRecords(name, purger, captured)
		return false, nil
	}

	if err := r.persist(next); err != nil {
		r.rollbackRecords(name, purger, captured)
		return false, nil
	}
	r.current = next

	log.Infof("sub %q has been deleted (%d records)", name, len(captured))
	return true, nil
}

// rollbackRecords restores purged records after a failed delete
func (r *Registry) rollbackRecords(name string, purger RecordPurger, captured map[string][]byte) {
	if len(captured) == 0 {
		return
	}
	log.Warningf("restoring %d records of sub %q", len(captured), name)
	if err := purger.RestoreRecords(captured); err != nil {
		log.Errorf("failed to restore records of sub %q: %v", name, err)
	}
}

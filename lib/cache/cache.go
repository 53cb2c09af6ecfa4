package cache

import (
	"fmt"
	"io"
	"sort"

	"github.com/ValentinKolb/kvsub/lib/blueprint"
	"github.com/ValentinKolb/kvsub/lib/schema"
	"github.com/ValentinKolb/kvsub/lib/store"
	"github.com/VictoriaMetrics/metrics"
	"github.com/lni/dragonboat/v4/logger"
)

var log = logger.GetLogger("cache")

// Cache binds a backing store to a blueprint registry and hands out Sub instances.
// All subs of a cache share the store and the key prefix "{name}/".
type Cache struct {
	name     string
	store    store.IStore
	registry *blueprint.Registry
	metrics  *cacheMetrics
}

// New creates a cache named name on top of s. The blueprint is read from p,
// a missing blueprint leaves the cache without subs.
func New(name string, s store.IStore, p blueprint.Persister) (*Cache, error) {
	if err := blueprint.CheckName(name); err != nil {
		return nil, fmt.Errorf("cache name: %w", err)
	}
	if s == nil || p == nil {
		return nil, fmt.Errorf("cache %q needs a store and a blueprint persister", name)
	}

	c := &Cache{
		name:     name,
		store:    s,
		registry: blueprint.NewRegistry(p, blueprint.NewGate()),
		metrics:  newCacheMetrics(),
	}
	c.registry.Load()

	log.Infof("cache %q ready with %d subs (blueprint: %s)", name, len(c.registry.Names()), p.Name())
	return c, nil
}

// Name returns the cache name
func (c *Cache) Name() string { return c.name }

// --------------------------------------------------------------------------
// Admin
// --------------------------------------------------------------------------

// SetupPassphrase sets the passphrase required by CreateSub and DeleteSub.
// Calling it again replaces the passphrase.
func (c *Cache) SetupPassphrase(passphrase string) {
	c.registry.Gate().Configure(passphrase)
}

// IsAdmin reports whether passphrase matches the configured one.
// ErrNotConfigured is returned if no passphrase was set up.
func (c *Cache) IsAdmin(passphrase string) (bool, error) {
	return c.registry.Gate().Authorize(passphrase)
}

// --------------------------------------------------------------------------
// Subs
// --------------------------------------------------------------------------

// SubExists reports whether a sub with that name is registered
func (c *Cache) SubExists(name string) bool {
	return c.registry.Exists(name)
}

// Subs returns the registered sub names in creation order
func (c *Cache) Subs() []string {
	return c.registry.Names()
}

// Sub returns the sub with the given name, or ErrNotFound.
func (c *Cache) Sub(name string) (*Sub, error) {
	s, ok := c.registry.Schema(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return &Sub{
		cache:   c.name,
		name:    name,
		schema:  s,
		store:   c.store,
		metrics: c.metrics,
	}, nil
}

// CreateSub registers a new sub with schema s.
// See blueprint.Registry.Create for the error and result semantics.
func (c *Cache) CreateSub(name string, s schema.Schema, passphrase string) (bool, error) {
	ok, err := c.registry.Create(name, s, passphrase)
	if ok {
		c.metrics.mutation(opCreateSub)
	}
	return ok, err
}

// DeleteSub unregisters a sub and deletes all of its records.
// See blueprint.Registry.Delete for the error and result semantics.
func (c *Cache) DeleteSub(name, passphrase string) (bool, error) {
	ok, err := c.registry.Delete(name, passphrase, &purger{cache: c})
	switch {
	case ok:
		c.metrics.mutation(opDeleteSub)
	case err == nil:
		c.metrics.rollbacks.Inc()
	}
	return ok, err
}

// LoadBlueprint re-reads the persisted blueprint and reports success.
func (c *Cache) LoadBlueprint() bool {
	return c.registry.Load()
}

// SaveBlueprint persists the in-memory blueprint and reports success.
func (c *Cache) SaveBlueprint() bool {
	return c.registry.Save()
}

// --------------------------------------------------------------------------
// Metrics
// --------------------------------------------------------------------------

// Metrics returns the metric set of this cache
func (c *Cache) Metrics() *metrics.Set {
	return c.metrics.set
}

// WriteMetrics writes the metrics of this cache in Prometheus text format
func (c *Cache) WriteMetrics(w io.Writer) {
	c.metrics.set.WritePrometheus(w)
}

// --------------------------------------------------------------------------
// Record purging
// --------------------------------------------------------------------------

// purger deletes and restores the records of a sub on behalf of the registry
type purger struct {
	cache *Cache
}

func (p *purger) PurgeRecords(sub string) (map[string][]byte, error) {
	s := p.cache.store
	captured := make(map[string][]byte)

	keys, err := s.Scan(Prefix(p.cache.name, sub))
	if err != nil {
		return captured, err
	}

	for _, key := range keys {
		value, ok, err := s.Get(key)
		if err != nil {
			return captured, err
		}
		if !ok {
			continue
		}
		deleted, err := s.Delete(key)
		if err != nil {
			return captured, err
		}
		if deleted {
			captured[key] = value
		}
	}
	return captured, nil
}

func (p *purger) RestoreRecords(captured map[string][]byte) error {
	keys := make([]string, 0, len(captured))
	for k := range captured {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	values := make([][]byte, len(keys))
	for i, k := range keys {
		values[i] = captured[k]
	}
	return p.cache.store.MSet(keys, values)
}

package cache

import (
	"context"
	"fmt"
	"sort"

	"github.com/ValentinKolb/kvsub/lib/schema"
	"github.com/ValentinKolb/kvsub/lib/store"
)

// --------------------------------------------------------------------------
// Options
// --------------------------------------------------------------------------

type opConfig struct {
	completeKey   bool
	completeValue bool
}

// Option changes how a Sub operation interprets its arguments.
type Option func(*opConfig)

// WithCompleteKey treats keys as complete store keys ("{cache}/{sub}/{key}") instead of logical keys.
func WithCompleteKey() Option {
	return func(c *opConfig) { c.completeKey = true }
}

// WithCompleteValue stores values as given instead of merging in the key column.
func WithCompleteValue() Option {
	return func(c *opConfig) { c.completeValue = true }
}

func collect(opts []Option) opConfig {
	var c opConfig
	for _, o := range opts {
		o(&c)
	}
	return c
}

// --------------------------------------------------------------------------
// Sub
// --------------------------------------------------------------------------

// Sub is a schema-bound table of a cache. It owns no records itself, every
// operation goes straight to the backing store.
type Sub struct {
	cache   string
	name    string
	schema  schema.Schema
	store   store.IStore
	metrics *cacheMetrics
}

// Name returns the sub name
func (s *Sub) Name() string { return s.name }

// Schema returns the schema records are validated against
func (s *Sub) Schema() schema.Schema { return s.schema }

// Prefix returns the store key prefix shared by all records of the sub
func (s *Sub) Prefix() string { return Prefix(s.cache, s.name) }

// completeKey resolves key according to the options
func (s *Sub) completeKey(key any, c opConfig) (string, error) {
	if c.completeKey {
		k, ok := key.(string)
		if !ok {
			return "", fmt.Errorf("%w: complete key must be a string, got %T", ErrInvalidKey, key)
		}
		return k, nil
	}
	return CompleteKey(s.cache, s.name, key)
}

// completeValue resolves the record to store for key according to the options
func (s *Sub) completeValue(key any, value Record, c opConfig) (Record, error) {
	if c.completeValue {
		return normalizeRecord(value), nil
	}
	if c.completeKey {
		k, ok := key.(string)
		if !ok {
			return nil, fmt.Errorf("%w: complete key must be a string, got %T", ErrInvalidKey, key)
		}
		logical, err := LogicalKey(s.cache, s.name, k)
		if err != nil {
			return nil, err
		}
		key = logical
	}
	return CompleteValue(s.schema, key, value)
}

func (s *Sub) storeFailure(op string, err error) error {
	s.metrics.storeErrors.Inc()
	log.Errorf("%s on %s failed: %v", op, s.Prefix(), err)
	return fmt.Errorf("%w: %s: %v", ErrPersistence, op, err)
}

// --------------------------------------------------------------------------
// Reads
// --------------------------------------------------------------------------

// Get returns the record stored under key, or nil if there is none.
func (s *Sub) Get(ctx context.Context, key any, opts ...Option) (Record, error) {
	s.metrics.op(opGet)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	completeKey, err := s.completeKey(key, collect(opts))
	if err != nil {
		return nil, err
	}

	data, ok, err := s.store.Get(completeKey)
	if err != nil {
		return nil, s.storeFailure(opGet, err)
	}
	if !ok {
		return nil, nil
	}
	return s.decode(completeKey, data)
}

// GetMany returns the records for keys in the same order. Missing records are nil.
func (s *Sub) GetMany(ctx context.Context, keys []any, opts ...Option) ([]Record, error) {
	s.metrics.op(opGetMany)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c := collect(opts)
	completeKeys := make([]string, len(keys))
	for i, key := range keys {
		k, err := s.completeKey(key, c)
		if err != nil {
			return nil, err
		}
		completeKeys[i] = k
	}
	return s.getMany(completeKeys)
}

// GetAll returns every record of the sub ordered by store key.
func (s *Sub) GetAll(ctx context.Context) ([]Record, error) {
	s.metrics.op(opGetAll)
	keys, err := s.Keys(ctx)
	if err != nil {
		return nil, err
	}

	records, err := s.getMany(keys)
	if err != nil {
		return nil, err
	}

	// records deleted between scan and read are dropped
	out := records[:0]
	for _, r := range records {
		if r != nil {
			out = append(out, r)
		}
	}
	return out, nil
}

// Keys returns the complete store keys of all records of the sub in ascending order.
func (s *Sub) Keys(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	keys, err := s.store.Scan(s.Prefix())
	if err != nil {
		return nil, s.storeFailure("scan", err)
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *Sub) getMany(completeKeys []string) ([]Record, error) {
	records := make([]Record, len(completeKeys))
	if len(completeKeys) == 0 {
		return records, nil
	}

	values, oks, err := s.store.MGet(completeKeys)
	if err != nil {
		return nil, s.storeFailure(opGetMany, err)
	}
	for i := range completeKeys {
		if !oks[i] {
			continue
		}
		if records[i], err = s.decode(completeKeys[i], values[i]); err != nil {
			return nil, err
		}
	}
	return records, nil
}

func (s *Sub) decode(completeKey string, data []byte) (Record, error) {
	r, err := decodeRecord(data, s.schema)
	if err != nil {
		return nil, fmt.Errorf("decode record %q: %w", completeKey, err)
	}
	return r, nil
}

// --------------------------------------------------------------------------
// Writes
// --------------------------------------------------------------------------

// Set validates the record for key and stores it.
// It returns false with a nil error if the record does not match the schema.
func (s *Sub) Set(ctx context.Context, key any, value Record, opts ...Option) (bool, error) {
	s.metrics.op(opSet)
	if err := ctx.Err(); err != nil {
		return false, err
	}

	completeKey, data, ok, err := s.prepare(key, value, collect(opts))
	if err != nil || !ok {
		return false, err
	}

	if err := s.store.Set(completeKey, data); err != nil {
		return false, s.storeFailure(opSet, err)
	}
	return true, nil
}

// SetMany validates every record first and stores them with one bulk write.
// If any record is invalid nothing is written. An empty batch succeeds without a write.
func (s *Sub) SetMany(ctx context.Context, pairs []KeyValue, opts ...Option) (bool, error) {
	s.metrics.op(opSetMany)
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if len(pairs) == 0 {
		return true, nil
	}

	c := collect(opts)
	keys := make([]string, 0, len(pairs))
	values := make([][]byte, 0, len(pairs))

	for _, p := range pairs {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		completeKey, data, ok, err := s.prepare(p.Key, p.Value, c)
		if err != nil || !ok {
			return false, err
		}
		keys = append(keys, completeKey)
		values = append(values, data)
	}

	if err := s.store.MSet(keys, values); err != nil {
		return false, s.storeFailure(opSetMany, err)
	}
	return true, nil
}

// prepare completes, validates and encodes one record.
// ok is false if the record was rejected by the schema.
func (s *Sub) prepare(key any, value Record, c opConfig) (completeKey string, data []byte, ok bool, err error) {
	if completeKey, err = s.completeKey(key, c); err != nil {
		return "", nil, false, err
	}
	record, err := s.completeValue(key, value, c)
	if err != nil {
		return "", nil, false, err
	}
	if !s.schema.Validate(record) {
		s.metrics.validationFailures.Inc()
		log.Debugf("record %q rejected: column %q does not match the schema", completeKey, s.schema.Invalid(record))
		return "", nil, false, nil
	}
	if data, err = encodeRecord(record); err != nil {
		return "", nil, false, fmt.Errorf("encode record %q: %w", completeKey, err)
	}
	return completeKey, data, true, nil
}

// Unset deletes the record under key and reports whether one existed.
func (s *Sub) Unset(ctx context.Context, key any, opts ...Option) (bool, error) {
	s.metrics.op(opUnset)
	if err := ctx.Err(); err != nil {
		return false, err
	}

	completeKey, err := s.completeKey(key, collect(opts))
	if err != nil {
		return false, err
	}

	deleted, err := s.store.Delete(completeKey)
	if err != nil {
		return false, s.storeFailure(opUnset, err)
	}
	return deleted, nil
}

// UnsetMany deletes the records under keys in order.
//
// The current values are read first. Keys without a value are skipped. The first
// delete that fails (or finds its record already gone) stops the loop, every value
// read at the start is then written back with one bulk write and false is returned.
// The restore can overwrite records changed by other writers in the meantime.
func (s *Sub) UnsetMany(ctx context.Context, keys []any, opts ...Option) (bool, error) {
	s.metrics.op(opUnsetMany)
	if err := ctx.Err(); err != nil {
		return false, err
	}

	c := collect(opts)
	completeKeys := make([]string, len(keys))
	for i, key := range keys {
		k, err := s.completeKey(key, c)
		if err != nil {
			return false, err
		}
		completeKeys[i] = k
	}
	return s.unsetMany(ctx, completeKeys)
}

// UnsetAll deletes every record of the sub with the semantics of UnsetMany.
func (s *Sub) UnsetAll(ctx context.Context) (bool, error) {
	s.metrics.op(opUnsetAll)
	keys, err := s.Keys(ctx)
	if err != nil {
		return false, err
	}
	return s.unsetMany(ctx, keys)
}

func (s *Sub) unsetMany(ctx context.Context, completeKeys []string) (bool, error) {
	if len(completeKeys) == 0 {
		return true, nil
	}

	values, oks, err := s.store.MGet(completeKeys)
	if err != nil {
		return false, s.storeFailure(opUnsetMany, err)
	}

	var failure error
	failed := false
	for i, key := range completeKeys {
		if err := ctx.Err(); err != nil {
			failed, failure = true, err
			break
		}
		if !oks[i] {
			continue
		}
		deleted, err := s.store.Delete(key)
		if err != nil {
			failed, failure = true, s.storeFailure(opUnset, err)
			break
		}
		if !deleted {
			log.Warningf("record %q vanished during unset", key)
			failed = true
			break
		}
	}

	if !failed {
		return true, nil
	}

	s.restore(completeKeys, values, oks)
	return false, failure
}

// restore writes back the values captured before a failed UnsetMany
func (s *Sub) restore(completeKeys []string, values [][]byte, oks []bool) {
	s.metrics.rollbacks.Inc()

	var (
		keys = make([]string, 0, len(completeKeys))
		vals = make([][]byte, 0, len(completeKeys))
	)
	for i, key := range completeKeys {
		if oks[i] {
			keys = append(keys, key)
			vals = append(vals, values[i])
		}
	}
	if len(keys) == 0 {
		return
	}

	log.Warningf("restoring %d records of %s after a failed unset", len(keys), s.Prefix())
	if err := s.store.MSet(keys, vals); err != nil {
		s.metrics.storeErrors.Inc()
		log.Errorf("failed to restore records of %s: %v", s.Prefix(), err)
	}
}

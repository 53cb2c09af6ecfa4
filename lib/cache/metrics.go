package cache

import (
	"fmt"

	"github.com/VictoriaMetrics/metrics"
)

// Operation names used as metric labels
const (
	opGet       = "get"
	opGetMany   = "get_many"
	opGetAll    = "get_all"
	opSet       = "set"
	opSetMany   = "set_many"
	opUnset     = "unset"
	opUnsetMany = "unset_many"
	opUnsetAll  = "unset_all"

	opCreateSub = "create_sub"
	opDeleteSub = "delete_sub"
)

// cacheMetrics holds the counters of one cache in its own set
type cacheMetrics struct {
	set                *metrics.Set
	validationFailures *metrics.Counter
	rollbacks          *metrics.Counter
	storeErrors        *metrics.Counter
}

func newCacheMetrics() *cacheMetrics {
	set := metrics.NewSet()
	return &cacheMetrics{
		set:                set,
		validationFailures: set.NewCounter("kvsub_sub_validation_failures_total"),
		rollbacks:          set.NewCounter("kvsub_sub_rollbacks_total"),
		storeErrors:        set.NewCounter("kvsub_sub_store_errors_total"),
	}
}

// op counts one call of a sub operation
func (m *cacheMetrics) op(name string) {
	m.set.GetOrCreateCounter(fmt.Sprintf(`kvsub_sub_operations_total{op=%q}`, name)).Inc()
}

// mutation counts one successful blueprint mutation
func (m *cacheMetrics) mutation(name string) {
	m.set.GetOrCreateCounter(fmt.Sprintf(`kvsub_blueprint_mutations_total{op=%q}`, name)).Inc()
}

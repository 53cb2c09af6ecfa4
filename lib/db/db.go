package db

import "io"

type Implementation string

const (
	ImplMaple Implementation = "maple"
)

// Feature represents database features as bit flags
type Feature uint64

const (
	FeatureSet    Feature = 1 << iota // Support for Set operations
	FeatureGet                        // Support for Get operations
	FeatureDelete                     // Support for Delete operations
	FeatureHas                        // Support for Has operations
	FeatureScan                       // Support for prefix Scan operations
	FeatureSave                       // Support for Save operations
	FeatureLoad                       // Support for Load operations
)

func (f Feature) String() string {
	switch f {
	case FeatureSet:
		return "Set"
	case FeatureGet:
		return "Get"
	case FeatureDelete:
		return "Delete"
	case FeatureHas:
		return "Has"
	case FeatureScan:
		return "Scan"
	case FeatureSave:
		return "Save"
	case FeatureLoad:
		return "Load"
	default:
		return "Unknown"
	}
}

// DatabaseInfo describes an engine instance, it is what the info commands print
type DatabaseInfo struct {
	SizeBytes         int            `json:"size_bytes"`
	KeyCount          int            `json:"key_count"`
	DbType            Implementation `json:"db_type"`
	SupportedFeatures []Feature      `json:"supported_features"`
	Metadata          interface{}    `json:"metadata"`
}

// KVDB is the single-node engine a store wraps. Every mutation carries a write
// index, engines drop writes older than the entry they would replace.
type KVDB interface {
	// Set overwrites the value of key unless the stored entry has a higher writeIndex
	Set(key string, value []byte, writeIndex uint64)

	// Delete reports whether an entry was removed
	Delete(key string, writeIndex uint64) (deleted bool)

	Get(key string) (value []byte, loaded bool)
	Has(key string) (loaded bool)

	// Scan returns all keys starting with prefix in ascending order.
	// An empty prefix matches every key.
	Scan(prefix string) (keys []string)

	// Save and Load move the full engine state, write index included
	Save(w io.Writer) (err error)
	Load(r io.Reader) (err error)

	// SupportsFeature accepts several features combined with |
	SupportsFeature(feature Feature) (ok bool)

	// GetInfo returns information about the database.
	GetInfo() (info DatabaseInfo)

	// SetWriteIdx only ever moves the index forward
	SetWriteIdx(index uint64)
	WriteIdx() (index uint64)

	Close() (err error)
}

// Package util provides utility components for
// database implementations that satisfy the db.KVDB interface.
//
// The package contains:
//   - statistics: distribution statistics for shard sizes and a SizeSampler, backed by a
//     go-metrics uniform sample histogram, that estimates entry sizes without a full scan
//   - functions: seed generation, prefix matching and the FNV-1a string hash used for shard selection
package util

// Package db provides a standardized interface for the key-value engines that back
// every kvsub store. It defines the KVDB interface that allows for consistent interaction
// with various database backends while abstracting implementation details.
//
// The package focuses on:
//   - A unified interface for key-value operations
//   - Prefix enumeration, which the sub layer uses to find all records of a sub
//   - Feature discovery through capability flags
//   - Standardized persistence operations
//
// Key Components:
//
//   - KVDB Interface: The core interface that all database implementations must satisfy.
//     It provides methods for basic operations (Set, Get, Has, Delete), prefix
//     enumeration (Scan), metadata retrieval (GetInfo) and persistence (Save, Load).
//
//   - Feature Flags: The Feature type defines capability flags that implementations
//     can advertise through the SupportsFeature method. This allows clients to
//     discover supported operations at runtime.
//
//   - Database Information: The DatabaseInfo structure reports size estimates, key counts,
//     the implementation type and implementation-specific metadata.
//
// Note on Write Indexes:
//   - All write operations take a write-index that serves as a logical timestamp.
//     The local store generates it from an atomic counter, the distributed store
//     uses the index of the raft log entry.
//   - A write carrying an index lower than the index of the stored entry is ignored,
//     which makes replaying a log idempotent.
//   - Monotonicity Guarantee: the database write-index only increases. Attempts to set
//     a write-index lower than the current one are ignored.
//
// Related Packages:
//
// The engines/maple package provides the sharded in-memory implementation of KVDB.
// The testing package provides the shared test suite (RunKVDBTests) and benchmarks
// (RunKVDBBenchmarks) every implementation is expected to pass.
package db

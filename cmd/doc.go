// Package cmd implements the command-line interface of kvsub. It provides a
// hierarchical command structure for running the store server and for working
// with caches, either in process or against a server.
//
// The package is organized into several subpackages:
//
//   - sub: Commands for subs and their records (list, create, delete, get, set, unset, ...)
//   - kv: Raw key-value store operations (get, set, del, has, scan, info)
//   - serve: Starting and configuring the store server
//   - demo: A walk-through of all sub operations
//   - util: Shared flags, configuration and store setup (internal use)
//
// See kvsub -help for a list of all commands.
package cmd

// Package storage provides pluggable persistence for rules.
//
// Three backends implement the same Backend contract:
//
//   - Memory: process-local map, insertion-ordered enumeration
//   - SQLite: single-writer embedded database, durable on return
//   - Redis: network key/value cache with automatic fallback to Memory
//     when the server is unreachable at construction
//
// Backends are interchangeable from the engine's point of view; the
// benchmark harness relies on that to drive identical workloads through
// each one. Every backend owns its rule set independently - there is no
// sharing between instances.
//
// Enumeration order is insertion order for Memory and SQLite. The Redis
// backend enumerates in whatever order the server's set iteration yields;
// that weaker guarantee is deliberate and callers must not depend on
// cross-backend ordering consistency.
package storage

// Package store provides SQLite-backed save games for paddock tables.
//
// A save game holds one table per entity with stable column names, the two
// live slot tables, the id sequences and run metadata.
//
// # Critical Patterns
//
// Whole-State Saves:
//   - Save replaces every row inside one transaction
//   - A failed Save leaves the previous game intact
//
// Deterministic Loads:
//   - All queries MUST include an ORDER BY over the primary key
//   - Append-only tables (results, standings, rules) keep insertion order
//     through an explicit seq column
//   - Empty tables load as empty, never nil
//
// Content Digest:
//   - Save stores the digest of the canonical snapshot in meta
//   - Load recomputes it and refuses a game whose content changed
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//
// Digests are computed via internal/ir using canonical JSON and SHA-256
// with domain separation.
package store

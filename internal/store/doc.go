// Package store holds the aggregate pattern state and persists it.
//
// The state is one document:
//   - patterns: pattern key → record (count, missing count, pattern, submission log)
//   - total_submissions: sum of every record count
//   - rare_patterns: the leaderboard, sorted by score descending
//
// # Invariants
//
//   - Count == len(Submissions) for every record
//   - MissingCount and Pattern are fixed when a record is created and
//     always agree with the key
//   - TotalSubmissions equals the sum of counts
//   - Every leaderboard key resolves to a record, at most once
//
// Check verifies the record invariants; Repair restores the two derived
// ones (the total and leaderboard membership/order) after a load.
//
// # Backends
//
//   - FileBackend: the JSON document on disk, replaced atomically
//     (temp file, fsync, rename) so a crash leaves either the old or the
//     new document
//   - SQLiteBackend: normalised tables, each save one transaction
//   - MemoryBackend: encoded bytes in memory, for the harness and tests
//
// Every backend loads through Decode, which validates the bytes against
// the CUE schema in schema.cue before the record invariants are checked.
// A document that fails either is reported as a *PersistenceError and is
// never replaced by an empty state.
//
// # SQLite Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=FULL: A committed save survives power loss
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store

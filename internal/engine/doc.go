// Package engine implements the toothdex submission service.
//
// ARCHITECTURE:
//
// One Service owns one store.State. Every submission runs the full
// pipeline inside a single critical section:
//
//  1. Validate the request (nothing is mutated on failure)
//  2. Encode the pattern and upsert it into the state
//  3. Score the record against the new submission total
//  4. Offer the result to the leaderboard
//  5. Save the complete state through the backend
//
// Holding the write lock across all five steps means two concurrent
// submissions of the same new pattern are ordered: the first sees
// isNew=true and count=1, the second count=2.
//
// Read paths (Snapshot, Stats, Leaderboard) take the lock in shared mode
// and never touch the backend; the in-memory state is the single source
// of truth for the process.
//
// DURABILITY:
//
// A failed save does not roll back the in-memory mutation. The result is
// returned with Durable=false, the failure is logged and counted, and the
// caller decides whether to Retry. The engine never retries internally.
package engine

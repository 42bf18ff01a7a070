// Package pattern defines the tooth presence pattern and its canonical key.
//
// A Pattern is an ordered vector of Size booleans: true marks a present
// tooth slot, false a missing one. The package treats the vector as opaque
// bits; it does not know about dental numbering systems.
//
// # Key Encoding
//
// Encode maps each slot to '1' (present) or '0' (missing) in index order.
// The mapping is total and injective, so two patterns are equal iff their
// keys are equal. Decode is the inverse and rejects anything that is not
// exactly Size characters drawn from {'0','1'}.
//
// Keys are the identity of a pattern everywhere else in toothdex: the store
// indexes records by Key and the leaderboard deduplicates by Key.
package pattern

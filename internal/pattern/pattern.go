package pattern

import (
	"fmt"
	"math/rand/v2"
	"sort"
)

// Size is the number of tooth slots in every pattern.
const Size = 28

// MaxRandomMissing bounds the missing count drawn by RandomMissing.
const MaxRandomMissing = 10

// Pattern is an ordered presence vector. Index i is slot i+1; true means
// the tooth is present.
type Pattern []bool

// Full returns a pattern with every tooth present.
func Full() Pattern {
	p := make(Pattern, Size)
	for i := range p {
		p[i] = true
	}
	return p
}

// Valid reports whether p has exactly Size slots.
func (p Pattern) Valid() bool {
	return len(p) == Size
}

// Present returns the number of present slots.
func (p Pattern) Present() int {
	n := 0
	for _, v := range p {
		if v {
			n++
		}
	}
	return n
}

// Missing returns Size minus the number of present slots.
func (p Pattern) Missing() int {
	return Size - p.Present()
}

// MissingSlots returns the 1-based slot numbers of missing teeth in
// ascending order.
func (p Pattern) MissingSlots() []int {
	var slots []int
	for i, v := range p {
		if !v {
			slots = append(slots, i+1)
		}
	}
	return slots
}

// Clone returns an independent copy of p.
func (p Pattern) Clone() Pattern {
	if p == nil {
		return nil
	}
	out := make(Pattern, len(p))
	copy(out, p)
	return out
}

// Equal reports whether a and b hold the same slots.
func Equal(a, b Pattern) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// FromMissingSlots builds a pattern where the given 1-based slots are
// missing and all others are present. Duplicate slots are tolerated.
func FromMissingSlots(slots []int) (Pattern, error) {
	p := Full()
	for _, s := range slots {
		if s < 1 || s > Size {
			return nil, NewSlotError(s)
		}
		p[s-1] = false
	}
	return p, nil
}

// Random returns a pattern with exactly missing slots absent, chosen
// uniformly without replacement.
func Random(r *rand.Rand, missing int) (Pattern, error) {
	if missing < 0 || missing > Size {
		return nil, fmt.Errorf("random pattern: missing count %d outside [0,%d]", missing, Size)
	}
	idx := r.Perm(Size)[:missing]
	sort.Ints(idx)
	p := Full()
	for _, i := range idx {
		p[i] = false
	}
	return p, nil
}

// RandomMissing draws a missing count in [0, MaxRandomMissing].
func RandomMissing(r *rand.Rand) int {
	return r.IntN(MaxRandomMissing + 1)
}

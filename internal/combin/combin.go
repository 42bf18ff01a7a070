// Package combin provides exact combinatorial counts over the pattern space.
//
// All results are *big.Int so larger slot counts never overflow.
package combin

import (
	"errors"
	"fmt"
	"math/big"
)

// ErrCodeOutOfRange is the code carried by RangeError.
const ErrCodeOutOfRange = "OUT_OF_RANGE"

// RangeError reports a k outside [0, n].
type RangeError struct {
	N, K int
}

// Error implements the error interface.
func (e *RangeError) Error() string {
	return fmt.Sprintf("%s: k=%d outside [0,%d]", ErrCodeOutOfRange, e.K, e.N)
}

// IsOutOfRange returns true if err is a RangeError.
func IsOutOfRange(err error) bool {
	var re *RangeError
	return errors.As(err, &re)
}

// Binomial returns the number of ways to choose k missing slots out of n.
func Binomial(n, k int) (*big.Int, error) {
	if n < 0 || k < 0 || k > n {
		return nil, &RangeError{N: n, K: k}
	}
	return new(big.Int).Binomial(int64(n), int64(k)), nil
}

// SpaceSize returns 2^n, the number of distinct n-slot patterns.
func SpaceSize(n int) *big.Int {
	return new(big.Int).Lsh(big.NewInt(1), uint(n))
}

// Percent returns part/whole*100. A zero or nil whole yields 0.
func Percent(part int, whole *big.Int) float64 {
	if part == 0 || whole == nil || whole.Sign() == 0 {
		return 0
	}
	q := new(big.Float).Quo(
		new(big.Float).SetInt64(int64(part)),
		new(big.Float).SetInt(whole),
	)
	f, _ := q.Mul(q, big.NewFloat(100)).Float64()
	return f
}

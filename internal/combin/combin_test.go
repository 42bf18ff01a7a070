package combin

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBinomial_KnownValues(t *testing.T) {
	tests := []struct {
		n, k int
		want int64
	}{
		{28, 0, 1},
		{28, 28, 1},
		{28, 1, 28},
		{28, 2, 378},
		{28, 14, 40116600},
		{14, 7, 3432},
		{0, 0, 1},
	}

	for _, tt := range tests {
		got, err := Binomial(tt.n, tt.k)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got.Int64(), "C(%d,%d)", tt.n, tt.k)
	}
}

func TestBinomial_SumsToSpaceSize(t *testing.T) {
	sum := new(big.Int)
	for k := 0; k <= 28; k++ {
		c, err := Binomial(28, k)
		require.NoError(t, err)
		sum.Add(sum, c)
	}

	assert.Equal(t, 0, sum.Cmp(SpaceSize(28)))
	assert.Equal(t, int64(268435456), sum.Int64())
}

func TestBinomial_OutOfRange(t *testing.T) {
	for _, k := range []int{-1, 29} {
		_, err := Binomial(28, k)
		require.Error(t, err)
		assert.True(t, IsOutOfRange(err))
	}
}

func TestBinomial_LargeNDoesNotOverflow(t *testing.T) {
	got, err := Binomial(100, 50)
	require.NoError(t, err)
	assert.Equal(t, "100891344545564193334812497256", got.String())
}

func TestSpaceSize(t *testing.T) {
	assert.Equal(t, int64(268435456), SpaceSize(28).Int64())
	assert.Equal(t, int64(1), SpaceSize(0).Int64())
}

func TestPercent(t *testing.T) {
	assert.Equal(t, 0.0, Percent(0, big.NewInt(10)))
	assert.Equal(t, 0.0, Percent(3, nil))
	assert.Equal(t, 50.0, Percent(1, big.NewInt(2)))
	assert.InDelta(t, 100.0/378.0, Percent(1, big.NewInt(378)), 1e-12)
}

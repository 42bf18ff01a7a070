package pattern

import (
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode_Full(t *testing.T) {
	k := Encode(Full())
	assert.Equal(t, Key(strings.Repeat("1", Size)), k)
	assert.Len(t, string(k), Size)
}

func TestEncode_MapsMissingToZero(t *testing.T) {
	p := Full()
	p[0] = false
	p[27] = false

	k := Encode(p)
	assert.Equal(t, "0"+strings.Repeat("1", 26)+"0", string(k))
}

func TestDecode_RoundTrip(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))

	cases := []Pattern{Full(), make(Pattern, Size)}
	for i := 0; i < 500; i++ {
		p, err := Random(r, r.IntN(Size+1))
		require.NoError(t, err)
		cases = append(cases, p)
	}

	for _, p := range cases {
		got, err := Decode(Encode(p))
		require.NoError(t, err)
		assert.True(t, Equal(p, got), "round trip changed %s", Encode(p))
	}
}

func TestEncode_Injective(t *testing.T) {
	a := Full()
	b := Full()
	b[13] = false

	assert.NotEqual(t, Encode(a), Encode(b))
	assert.Equal(t, Encode(a), Encode(Full()))
}

func TestDecode_WrongLength(t *testing.T) {
	for _, k := range []Key{"", "1", Key(strings.Repeat("1", Size-1)), Key(strings.Repeat("0", Size+1))} {
		_, err := Decode(k)
		require.Error(t, err, "key %q", k)
		assert.True(t, IsInvalidKey(err))
	}
}

func TestDecode_InvalidCharacter(t *testing.T) {
	k := Key(strings.Repeat("1", 10) + "x" + strings.Repeat("0", 17))

	_, err := Decode(k)
	require.Error(t, err)
	assert.True(t, IsInvalidKey(err))
	assert.Contains(t, err.Error(), "position 10")
	assert.False(t, k.Valid())
}

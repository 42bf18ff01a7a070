package pattern

import "strings"

// Key is the canonical string form of a Pattern.
type Key string

// Encode returns the canonical key of p. It never fails; callers are
// expected to have checked p.Valid() when a Size-length key matters.
func Encode(p Pattern) Key {
	var b strings.Builder
	b.Grow(len(p))
	for _, v := range p {
		if v {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	}
	return Key(b.String())
}

// Decode parses a canonical key back into a Pattern.
// Returns a *KeyError if the key has the wrong length or contains a
// character other than '0' or '1'.
func Decode(k Key) (Pattern, error) {
	if len(k) != Size {
		return nil, NewLengthError(k)
	}
	p := make(Pattern, Size)
	for i := 0; i < len(k); i++ {
		switch k[i] {
		case '1':
			p[i] = true
		case '0':
			p[i] = false
		default:
			return nil, NewCharError(k, i)
		}
	}
	return p, nil
}

// String implements fmt.Stringer.
func (k Key) String() string {
	return string(k)
}

// Valid reports whether k decodes without error.
func (k Key) Valid() bool {
	_, err := Decode(k)
	return err == nil
}

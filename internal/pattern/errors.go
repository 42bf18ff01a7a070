package pattern

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes pattern errors.
type ErrorCode string

const (
	// ErrCodeInvalidKey indicates a key that does not decode to a Pattern.
	ErrCodeInvalidKey ErrorCode = "INVALID_KEY"

	// ErrCodeInvalidSlot indicates a slot number outside [1, Size].
	ErrCodeInvalidSlot ErrorCode = "INVALID_SLOT"
)

// KeyError reports a malformed key or slot reference.
type KeyError struct {
	Code    ErrorCode
	Key     Key
	Message string
}

// Error implements the error interface.
func (e *KeyError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("%s: %s (key=%q)", e.Code, e.Message, string(e.Key))
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewLengthError creates a KeyError for a key of the wrong length.
func NewLengthError(k Key) *KeyError {
	return &KeyError{
		Code:    ErrCodeInvalidKey,
		Key:     k,
		Message: fmt.Sprintf("key length %d, want %d", len(k), Size),
	}
}

// NewCharError creates a KeyError for a non-binary character at pos.
func NewCharError(k Key, pos int) *KeyError {
	return &KeyError{
		Code:    ErrCodeInvalidKey,
		Key:     k,
		Message: fmt.Sprintf("invalid character %q at position %d", k[pos], pos),
	}
}

// NewSlotError creates a KeyError for an out-of-range slot number.
func NewSlotError(slot int) *KeyError {
	return &KeyError{
		Code:    ErrCodeInvalidSlot,
		Message: fmt.Sprintf("slot %d outside [1,%d]", slot, Size),
	}
}

// IsInvalidKey returns true if err is a key decoding error.
// Uses errors.As to handle wrapped errors.
func IsInvalidKey(err error) bool {
	var ke *KeyError
	if errors.As(err, &ke) {
		return ke.Code == ErrCodeInvalidKey
	}
	return false
}

// IsInvalidSlot returns true if err is a slot range error.
func IsInvalidSlot(err error) bool {
	var ke *KeyError
	if errors.As(err, &ke) {
		return ke.Code == ErrCodeInvalidSlot
	}
	return false
}

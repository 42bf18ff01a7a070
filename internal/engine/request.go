package engine

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/unicode/norm"

	"github.com/roach88/toothdex/internal/pattern"
)

// MaxAge bounds the optional submitter age.
const MaxAge = 120

// Submission is one request to record a pattern.
type Submission struct {
	// Pattern must hold exactly pattern.Size slots.
	Pattern pattern.Pattern `validate:"len=28"`

	// Name is the display name credited on the leaderboard. Surrounding
	// whitespace is trimmed and the result NFC-normalised.
	Name string `validate:"required"`

	// Age is optional.
	Age *float64 `validate:"omitempty,gte=0,lte=120"`
}

var submissionValidate = validator.New()

// normalize returns a copy of s with its name cleaned up.
func (s Submission) normalize() Submission {
	s.Name = norm.NFC.String(strings.TrimSpace(s.Name))
	return s
}

// validate checks s, returning a *ValidationError for the first failing
// field.
func (s Submission) validate() error {
	err := submissionValidate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &ValidationError{Message: err.Error()}
	}

	fe := verrs[0]
	switch fe.Field() {
	case "Name":
		return &ValidationError{Field: "Name", Message: "submitter name is required"}
	case "Pattern":
		return &ValidationError{
			Field:   "Pattern",
			Message: fmt.Sprintf("pattern has %d slots, want %d", len(s.Pattern), pattern.Size),
		}
	case "Age":
		return &ValidationError{
			Field:   "Age",
			Message: fmt.Sprintf("age must be in [0,%d]", MaxAge),
		}
	default:
		return &ValidationError{Field: fe.Field(), Message: fmt.Sprintf("failed %q check", fe.Tag())}
	}
}

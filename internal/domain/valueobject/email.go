package valueobject

import (
	"regexp"
	"strings"
)

const maxEmailLength = 254

var emailPattern = regexp.MustCompile(`^[^` + spaceClass + `@]+@[^` + spaceClass + `@]+\.[^` + spaceClass + `@]+$`)

// Email is a syntactically valid email address. Comparison ignores case.
type Email struct {
	value string
}

func NewEmail(value string) (Email, error) {
	if trimSpace(value) == "" {
		return Email{}, newValidationError("email", KindEmpty, "Email cannot be empty")
	}
	if !emailPattern.MatchString(value) {
		return Email{}, newValidationError("email", KindInvalidFormat, "Invalid email format")
	}
	if len(value) > maxEmailLength {
		return Email{}, newValidationError("email", KindOutOfRange, "Email is too long")
	}
	return Email{value: value}, nil
}

func (e Email) Value() string  { return e.value }
func (e Email) String() string { return e.value }

// Normalized is the lookup key used by repositories.
func (e Email) Normalized() string { return strings.ToLower(e.value) }

func (e Email) Equals(other Email) bool {
	return strings.EqualFold(e.value, other.value)
}

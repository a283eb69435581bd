package valueobject

import (
	"strings"

	"github.com/google/uuid"
)

// UserID is the opaque identifier of a user.
type UserID struct {
	value string
}

// NewUserID wraps value, or generates a random UUID when value is empty.
func NewUserID(value string) (UserID, error) {
	if value == "" {
		return UserID{value: uuid.NewString()}, nil
	}
	if strings.TrimSpace(value) == "" {
		return UserID{}, newValidationError("id", KindEmpty, "UserId cannot be empty")
	}
	return UserID{value: value}, nil
}

func (id UserID) Value() string  { return id.value }
func (id UserID) String() string { return id.value }

// IsZero reports whether id was never constructed.
func (id UserID) IsZero() bool { return id.value == "" }

func (id UserID) Equals(other UserID) bool {
	return id.value == other.value
}

package valueobject

import (
	"regexp"
	"unicode/utf8"
)

const (
	minUserNameLength = 2
	maxUserNameLength = 100
)

// letters, whitespace, hyphens and apostrophes
var userNamePattern = regexp.MustCompile(`^[a-zA-Z` + spaceClass + `\-']+$`)

// UserName is a trimmed display name.
type UserName struct {
	value string
}

func NewUserName(value string) (UserName, error) {
	v := trimSpace(value)
	if v == "" {
		return UserName{}, newValidationError("name", KindEmpty, "User name cannot be empty")
	}
	n := utf8.RuneCountInString(v)
	if n < minUserNameLength {
		return UserName{}, newValidationError("name", KindOutOfRange, "User name must be at least 2 characters long")
	}
	if n > maxUserNameLength {
		return UserName{}, newValidationError("name", KindOutOfRange, "User name cannot exceed 100 characters")
	}
	if !userNamePattern.MatchString(v) {
		return UserName{}, newValidationError("name", KindInvalidFormat, "User name contains invalid characters")
	}
	return UserName{value: v}, nil
}

func (n UserName) Value() string  { return n.value }
func (n UserName) String() string { return n.value }

func (n UserName) Equals(other UserName) bool {
	return n.value == other.value
}

package valueobject

import "fmt"

const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// UserRole is one of RoleUser or RoleAdmin.
type UserRole struct {
	value string
}

func NewUserRole(value string) (UserRole, error) {
	switch value {
	case RoleUser, RoleAdmin:
		return UserRole{value: value}, nil
	default:
		return UserRole{}, newValidationError("role", KindInvalidFormat, fmt.Sprintf("Invalid user role: %s", value))
	}
}

func UserRoleUser() UserRole  { return UserRole{value: RoleUser} }
func UserRoleAdmin() UserRole { return UserRole{value: RoleAdmin} }

func (r UserRole) Value() string  { return r.value }
func (r UserRole) String() string { return r.value }

func (r UserRole) IsAdmin() bool { return r.value == RoleAdmin }
func (r UserRole) IsUser() bool  { return r.value == RoleUser }

func (r UserRole) Equals(other UserRole) bool {
	return r.value == other.value
}

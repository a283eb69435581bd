package entity

import (
	"time"

	vo "github.com/dzikrisyairozi/turborepo-fullstack-starter/internal/domain/valueobject"
)

// User is the aggregate root for the user domain.
// Fields are only changed through its methods; every mutation bumps UpdatedAt.
type User struct {
	id        vo.UserID
	email     vo.Email
	name      vo.UserName
	role      vo.UserRole
	createdAt time.Time
	updatedAt time.Time

	now func() time.Time
}

// Record is the flat, primitive-typed form of a User used by storage.
type Record struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewUserParams are the inputs of NewUser. Role defaults to USER and ID is
// generated when empty.
type NewUserParams struct {
	Email string
	Name  string
	Role  string
	ID    string
}

// Option customises a User at construction.
type Option func(*User)

// WithClock overrides time.Now. Useful for testing.
func WithClock(now func() time.Time) Option {
	return func(u *User) {
		u.now = now
	}
}

func defaultClock() time.Time { return time.Now().UTC() }

// NewUser builds a new User, validating every field.
func NewUser(p NewUserParams, opts ...Option) (*User, error) {
	id, err := vo.NewUserID(p.ID)
	if err != nil {
		return nil, err
	}
	email, err := vo.NewEmail(p.Email)
	if err != nil {
		return nil, err
	}
	name, err := vo.NewUserName(p.Name)
	if err != nil {
		return nil, err
	}
	role := vo.UserRoleUser()
	if p.Role != "" {
		if role, err = vo.NewUserRole(p.Role); err != nil {
			return nil, err
		}
	}

	u := &User{id: id, email: email, name: name, role: role, now: defaultClock}
	for _, opt := range opts {
		opt(u)
	}
	now := u.now()
	u.createdAt = now
	u.updatedAt = now
	return u, nil
}

// Reconstitute rebuilds a User loaded from storage. Timestamps are trusted as stored.
func Reconstitute(r Record, opts ...Option) (*User, error) {
	id, err := vo.NewUserID(r.ID)
	if err != nil {
		return nil, err
	}
	if id.Value() != r.ID {
		// an empty stored id must not silently become a fresh one
		return nil, &vo.ValidationError{Field: "id", Kind: vo.KindEmpty, Message: "UserId cannot be empty"}
	}
	email, err := vo.NewEmail(r.Email)
	if err != nil {
		return nil, err
	}
	name, err := vo.NewUserName(r.Name)
	if err != nil {
		return nil, err
	}
	role, err := vo.NewUserRole(r.Role)
	if err != nil {
		return nil, err
	}
	u := &User{
		id:        id,
		email:     email,
		name:      name,
		role:      role,
		createdAt: r.CreatedAt,
		updatedAt: r.UpdatedAt,
		now:       defaultClock,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u, nil
}

func (u *User) ID() vo.UserID        { return u.id }
func (u *User) Email() vo.Email      { return u.email }
func (u *User) Name() vo.UserName    { return u.name }
func (u *User) Role() vo.UserRole    { return u.role }
func (u *User) CreatedAt() time.Time { return u.createdAt }
func (u *User) UpdatedAt() time.Time { return u.updatedAt }

func (u *User) UpdateName(name vo.UserName) {
	u.name = name
	u.touch()
}

func (u *User) UpdateEmail(email vo.Email) {
	u.email = email
	u.touch()
}

func (u *User) UpdateRole(role vo.UserRole) {
	u.role = role
	u.touch()
}

func (u *User) IsAdmin() bool { return u.role.IsAdmin() }

// CanManageUsers is currently the same as IsAdmin.
func (u *User) CanManageUsers() bool { return u.IsAdmin() }

// Equals compares identity only.
func (u *User) Equals(other *User) bool {
	if u == nil || other == nil {
		return u == other
	}
	return u.id.Equals(other.id)
}

func (u *User) ToPersistence() Record {
	return Record{
		ID:        u.id.Value(),
		Email:     u.email.Value(),
		Name:      u.name.Value(),
		Role:      u.role.Value(),
		CreatedAt: u.createdAt,
		UpdatedAt: u.updatedAt,
	}
}

// touch moves updatedAt strictly forward, even when the clock has not advanced.
func (u *User) touch() {
	t := u.now()
	if !t.After(u.updatedAt) {
		t = u.updatedAt.Add(time.Millisecond)
	}
	u.updatedAt = t
}

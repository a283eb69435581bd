package event

import "time"

// UserCreated is emitted after a new user was persisted.
type UserCreated struct {
	Base
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

func NewUserCreated(aggregateID, email, name, role string) UserCreated {
	return UserCreated{
		Base:  newBase(TypeUserCreated, aggregateID),
		Email: email,
		Name:  name,
		Role:  role,
	}
}

// Change is a previous/new pair for one field.
type Change struct {
	Previous string `json:"previous"`
	New      string `json:"new"`
}

// Changed reports whether the value actually differs.
func (c *Change) Changed() bool {
	return c != nil && c.Previous != c.New
}

// UserUpdated is emitted after a user was updated. Nil pairs were not touched.
type UserUpdated struct {
	Base
	Email *Change `json:"email,omitempty"`
	Name  *Change `json:"name,omitempty"`
	Role  *Change `json:"role,omitempty"`
}

// UserChanges collects the field changes of an update.
type UserChanges struct {
	Email *Change
	Name  *Change
	Role  *Change
}

// Empty reports whether no field actually changed.
func (c UserChanges) Empty() bool {
	return !c.Email.Changed() && !c.Name.Changed() && !c.Role.Changed()
}

func NewUserUpdated(aggregateID string, changes UserChanges) UserUpdated {
	return UserUpdated{
		Base:  newBase(TypeUserUpdated, aggregateID),
		Email: copyChange(changes.Email),
		Name:  copyChange(changes.Name),
		Role:  copyChange(changes.Role),
	}
}

func copyChange(c *Change) *Change {
	if c == nil {
		return nil
	}
	cp := *c
	return &cp
}

// UserDeleted is emitted after a user was removed from the repository.
type UserDeleted struct {
	Base
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	DeletedAt time.Time `json:"deleted_at"`
}

func NewUserDeleted(aggregateID, email, name, role string) UserDeleted {
	b := newBase(TypeUserDeleted, aggregateID)
	return UserDeleted{
		Base:      b,
		Email:     email,
		Name:      name,
		Role:      role,
		DeletedAt: b.OccurredOn,
	}
}

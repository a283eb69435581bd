package event

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var eventIDPattern = regexp.MustCompile(`^\d+-[0-9a-z]{9}$`)

func TestNewUserCreated(t *testing.T) {
	e := NewUserCreated("u-1", "john@example.com", "John Doe", "USER")
	meta := e.Meta()

	assert.Equal(t, TypeUserCreated, meta.Type)
	assert.Equal(t, "u-1", meta.AggregateID)
	assert.Equal(t, CurrentVersion, meta.Version)
	assert.False(t, meta.OccurredOn.IsZero())
	assert.Regexp(t, eventIDPattern, meta.ID)
	assert.Equal(t, "john@example.com", e.Email)
}

func TestEventIDsAreUnique(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 500; i++ {
		id := NewUserDeleted("u-1", "a@b.co", "Al", "USER").Meta().ID
		_, dup := seen[id]
		require.False(t, dup, id)
		seen[id] = struct{}{}
	}
}

func TestNewUserUpdated_CopiesChanges(t *testing.T) {
	changes := UserChanges{Email: &Change{Previous: "a@example.com", New: "b@example.com"}}
	e := NewUserUpdated("u-1", changes)

	changes.Email.New = "mutated@example.com"
	assert.Equal(t, "b@example.com", e.Email.New)
	assert.Nil(t, e.Name)
	assert.Nil(t, e.Role)
	assert.Equal(t, TypeUserUpdated, e.Meta().Type)
}

func TestUserChanges_Empty(t *testing.T) {
	assert.True(t, UserChanges{}.Empty())
	assert.True(t, UserChanges{Name: &Change{Previous: "Al", New: "Al"}}.Empty())
	assert.False(t, UserChanges{Role: &Change{Previous: "USER", New: "ADMIN"}}.Empty())
}

func TestNewUserDeleted(t *testing.T) {
	e := NewUserDeleted("u-9", "gone@example.com", "Gone User", "ADMIN")
	assert.Equal(t, TypeUserDeleted, e.Meta().Type)
	assert.Equal(t, e.OccurredOn, e.DeletedAt)
	assert.Equal(t, "ADMIN", e.Role)
}

package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vo "github.com/dzikrisyairozi/turborepo-fullstack-starter/internal/domain/valueobject"
)

var dummyTime = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

func fixedClock() func() time.Time {
	return func() time.Time { return dummyTime }
}

func TestNewUser(t *testing.T) {
	u, err := NewUser(NewUserParams{Email: "john@example.com", Name: "John Doe"}, WithClock(fixedClock()))
	require.NoError(t, err)

	assert.NotEmpty(t, u.ID().Value())
	assert.Equal(t, vo.RoleUser, u.Role().Value())
	assert.False(t, u.IsAdmin())
	assert.False(t, u.CanManageUsers())
	assert.Equal(t, dummyTime, u.CreatedAt())
	assert.Equal(t, dummyTime, u.UpdatedAt())
}

func TestNewUser_WithRoleAndID(t *testing.T) {
	u, err := NewUser(NewUserParams{
		Email: "admin@example.com",
		Name:  "Admin User",
		Role:  vo.RoleAdmin,
		ID:    "user-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "user-1", u.ID().Value())
	assert.True(t, u.IsAdmin())
	assert.True(t, u.CanManageUsers())
}

func TestNewUser_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		params NewUserParams
	}{
		{name: "bad email", params: NewUserParams{Email: "nope", Name: "John Doe"}},
		{name: "bad name", params: NewUserParams{Email: "john@example.com", Name: "J"}},
		{name: "bad role", params: NewUserParams{Email: "john@example.com", Name: "John Doe", Role: "ROOT"}},
		{name: "blank id", params: NewUserParams{Email: "john@example.com", Name: "John Doe", ID: " "}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := NewUser(tt.params)
			assert.Nil(t, u)
			assert.ErrorIs(t, err, vo.ErrValidation)
		})
	}
}

func TestUser_UpdatesBumpUpdatedAt(t *testing.T) {
	// the clock never advances: updates must still move updatedAt forward
	u, err := NewUser(NewUserParams{Email: "john@example.com", Name: "John Doe"}, WithClock(fixedClock()))
	require.NoError(t, err)

	name, _ := vo.NewUserName("Johnny Doe")
	email, _ := vo.NewEmail("johnny@example.com")

	steps := []func(){
		func() { u.UpdateName(name) },
		func() { u.UpdateEmail(email) },
		func() { u.UpdateRole(vo.UserRoleAdmin()) },
	}
	for _, step := range steps {
		before := u.UpdatedAt()
		step()
		assert.True(t, u.UpdatedAt().After(before))
		assert.Equal(t, dummyTime, u.CreatedAt())
		assert.False(t, u.UpdatedAt().Before(u.CreatedAt()))
	}

	assert.Equal(t, "Johnny Doe", u.Name().Value())
	assert.Equal(t, "johnny@example.com", u.Email().Value())
	assert.True(t, u.IsAdmin())
}

func TestUser_UpdateUsesClock(t *testing.T) {
	current := dummyTime
	u, err := NewUser(NewUserParams{Email: "john@example.com", Name: "John Doe"}, WithClock(func() time.Time { return current }))
	require.NoError(t, err)

	current = dummyTime.Add(time.Hour)
	u.UpdateRole(vo.UserRoleAdmin())
	assert.Equal(t, current, u.UpdatedAt())
}

func TestUser_Equals(t *testing.T) {
	a, _ := NewUser(NewUserParams{Email: "a@example.com", Name: "Alice", ID: "same"})
	b, _ := NewUser(NewUserParams{Email: "b@example.com", Name: "Bob", ID: "same"})
	c, _ := NewUser(NewUserParams{Email: "a@example.com", Name: "Alice"})

	assert.True(t, a.Equals(b))
	assert.False(t, a.Equals(c))
	assert.False(t, a.Equals(nil))
}

func TestUser_PersistenceRoundTrip(t *testing.T) {
	original, err := NewUser(NewUserParams{Email: "Mixed@Example.com", Name: "Mary Jane", Role: vo.RoleAdmin})
	require.NoError(t, err)
	name, _ := vo.NewUserName("Mary-Jane")
	original.UpdateName(name)

	restored, err := Reconstitute(original.ToPersistence())
	require.NoError(t, err)

	assert.True(t, restored.Equals(original))
	assert.Equal(t, original.ToPersistence(), restored.ToPersistence())
}

func TestReconstitute_RejectsInvalidRecord(t *testing.T) {
	good := Record{ID: "1", Email: "a@example.com", Name: "Alice", Role: vo.RoleUser, CreatedAt: dummyTime, UpdatedAt: dummyTime}

	_, err := Reconstitute(good)
	require.NoError(t, err)

	missingID := good
	missingID.ID = ""
	_, err = Reconstitute(missingID)
	assert.ErrorIs(t, err, vo.ErrValidation)

	badRole := good
	badRole.Role = "GUEST"
	_, err = Reconstitute(badRole)
	assert.ErrorIs(t, err, vo.ErrValidation)
}

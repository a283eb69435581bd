// Package repositorytest holds behaviour checks shared by every UserRepository implementation.
package repositorytest

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dzikrisyairozi/turborepo-fullstack-starter/internal/domain/entity"
	"github.com/dzikrisyairozi/turborepo-fullstack-starter/internal/domain/repository"
	vo "github.com/dzikrisyairozi/turborepo-fullstack-starter/internal/domain/valueobject"
)

// Factory returns an empty repository for one sub-test.
type Factory func(t *testing.T) repository.UserRepository

// NewUser builds a valid user or fails the test. Timestamps are truncated to
// microseconds so they survive a round trip through postgres.
func NewUser(t testing.TB, email, name, role string) *entity.User {
	t.Helper()
	now := time.Now().UTC().Truncate(time.Microsecond)
	u, err := entity.NewUser(entity.NewUserParams{Email: email, Name: name, Role: role},
		entity.WithClock(func() time.Time { return now }))
	require.NoError(t, err)
	return u
}

func mustEmail(t testing.TB, s string) vo.Email {
	t.Helper()
	e, err := vo.NewEmail(s)
	require.NoError(t, err)
	return e
}

// RunUserRepositoryContract runs the shared behaviour checks against newRepo.
func RunUserRepositoryContract(t *testing.T, newRepo Factory) {
	ctx := context.Background()

	t.Run("save then find by id", func(t *testing.T) {
		repo := newRepo(t)
		u := NewUser(t, "john@example.com", "John Doe", vo.RoleUser)

		saved, err := repo.Save(ctx, u)
		require.NoError(t, err)
		assert.True(t, saved.Equals(u))

		got, err := repo.FindByID(ctx, u.ID())
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, u.ToPersistence().Email, got.Email().Value())
		assert.Equal(t, u.Name().Value(), got.Name().Value())
		assert.True(t, u.CreatedAt().Equal(got.CreatedAt()))
	})

	t.Run("find missing returns nil", func(t *testing.T) {
		repo := newRepo(t)
		id, _ := vo.NewUserID("")

		got, err := repo.FindByID(ctx, id)
		require.NoError(t, err)
		assert.Nil(t, got)

		got, err = repo.FindByEmail(ctx, mustEmail(t, "ghost@example.com"))
		require.NoError(t, err)
		assert.Nil(t, got)

		ok, err := repo.Exists(ctx, id)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("email lookups ignore case", func(t *testing.T) {
		repo := newRepo(t)
		u := NewUser(t, "Jane.Doe@Example.com", "Jane Doe", vo.RoleUser)
		_, err := repo.Save(ctx, u)
		require.NoError(t, err)

		got, err := repo.FindByEmail(ctx, mustEmail(t, "jane.doe@example.com"))
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.True(t, got.Equals(u))

		ok, err := repo.ExistsByEmail(ctx, mustEmail(t, "JANE.DOE@EXAMPLE.COM"))
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("save rejects duplicate email", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.Save(ctx, NewUser(t, "dup@example.com", "First User", vo.RoleUser))
		require.NoError(t, err)

		_, err = repo.Save(ctx, NewUser(t, "DUP@example.com", "Second User", vo.RoleUser))
		assert.ErrorIs(t, err, repository.ErrDuplicateEmail)
	})

	t.Run("update persists changes", func(t *testing.T) {
		repo := newRepo(t)
		u := NewUser(t, "old@example.com", "Old Name", vo.RoleUser)
		_, err := repo.Save(ctx, u)
		require.NoError(t, err)

		newEmail := mustEmail(t, "new@example.com")
		u.UpdateEmail(newEmail)
		u.UpdateRole(vo.UserRoleAdmin())

		updated, err := repo.Update(ctx, u)
		require.NoError(t, err)
		assert.Equal(t, "new@example.com", updated.Email().Value())
		assert.True(t, updated.IsAdmin())

		byOld, err := repo.FindByEmail(ctx, mustEmail(t, "old@example.com"))
		require.NoError(t, err)
		assert.Nil(t, byOld)

		byNew, err := repo.FindByEmail(ctx, newEmail)
		require.NoError(t, err)
		require.NotNil(t, byNew)
		assert.True(t, byNew.Equals(u))
	})

	t.Run("re-save with changed email frees the old address", func(t *testing.T) {
		repo := newRepo(t)
		u := NewUser(t, "old@example.com", "Old Name", vo.RoleUser)
		_, err := repo.Save(ctx, u)
		require.NoError(t, err)

		u.UpdateEmail(mustEmail(t, "new@example.com"))
		_, err = repo.Save(ctx, u)
		require.NoError(t, err)

		byOld, err := repo.FindByEmail(ctx, mustEmail(t, "old@example.com"))
		require.NoError(t, err)
		assert.Nil(t, byOld)

		ok, err := repo.ExistsByEmail(ctx, mustEmail(t, "old@example.com"))
		require.NoError(t, err)
		assert.False(t, ok)

		_, err = repo.Save(ctx, NewUser(t, "old@example.com", "Someone Else", vo.RoleUser))
		assert.NoError(t, err)

		byNew, err := repo.FindByEmail(ctx, mustEmail(t, "new@example.com"))
		require.NoError(t, err)
		require.NotNil(t, byNew)
		assert.True(t, byNew.Equals(u))
	})

	t.Run("update unknown id", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.Update(ctx, NewUser(t, "nobody@example.com", "No Body", vo.RoleUser))
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("update rejects email of another user", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.Save(ctx, NewUser(t, "taken@example.com", "Taken User", vo.RoleUser))
		require.NoError(t, err)
		other := NewUser(t, "other@example.com", "Other User", vo.RoleUser)
		_, err = repo.Save(ctx, other)
		require.NoError(t, err)

		other.UpdateEmail(mustEmail(t, "taken@example.com"))
		_, err = repo.Update(ctx, other)
		assert.ErrorIs(t, err, repository.ErrDuplicateEmail)
	})

	t.Run("delete", func(t *testing.T) {
		repo := newRepo(t)
		u := NewUser(t, "bye@example.com", "Bye User", vo.RoleUser)
		_, err := repo.Save(ctx, u)
		require.NoError(t, err)

		require.NoError(t, repo.Delete(ctx, u.ID()))

		ok, err := repo.Exists(ctx, u.ID())
		require.NoError(t, err)
		assert.False(t, ok)

		ok, err = repo.ExistsByEmail(ctx, u.Email())
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("find all paginates", func(t *testing.T) {
		repo := newRepo(t)
		for i := 0; i < 15; i++ {
			name := "User " + strings.Repeat("x", i+1)
			_, err := repo.Save(ctx, NewUser(t, fmt.Sprintf("user%02d@example.com", i), name, vo.RoleUser))
			require.NoError(t, err)
		}

		first, err := repo.FindAll(ctx, repository.Pagination{Page: 1, Limit: 10})
		require.NoError(t, err)
		assert.Len(t, first.Data, 10)

		second, err := repo.FindAll(ctx, repository.Pagination{Page: 2, Limit: 10})
		require.NoError(t, err)
		assert.Len(t, second.Data, 5)
		assert.Equal(t, repository.PageMeta{Total: 15, Page: 2, Limit: 10, TotalPages: 2}, second.Meta)

		seen := make(map[string]bool)
		for _, u := range append(first.Data, second.Data...) {
			assert.False(t, seen[u.ID().Value()])
			seen[u.ID().Value()] = true
		}

		beyond, err := repo.FindAll(ctx, repository.Pagination{Page: 3, Limit: 10})
		require.NoError(t, err)
		assert.Empty(t, beyond.Data)
		assert.Equal(t, 15, beyond.Meta.Total)

		for _, p := range []repository.Pagination{{Page: 1, Limit: 0}, {Page: 1, Limit: -1}, {Page: 2, Limit: -5}} {
			page, err := repo.FindAll(ctx, p)
			require.NoError(t, err, "%+v", p)
			assert.Empty(t, page.Data, "%+v", p)
			assert.Equal(t, 15, page.Meta.Total)
			assert.Zero(t, page.Meta.TotalPages)
		}
	})
}

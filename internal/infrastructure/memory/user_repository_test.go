package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dzikrisyairozi/turborepo-fullstack-starter/internal/domain/repository"
	"github.com/dzikrisyairozi/turborepo-fullstack-starter/internal/domain/repository/repositorytest"
	vo "github.com/dzikrisyairozi/turborepo-fullstack-starter/internal/domain/valueobject"
)

func TestUserRepository_Contract(t *testing.T) {
	repositorytest.RunUserRepositoryContract(t, func(t *testing.T) repository.UserRepository {
		return NewUserRepository()
	})
}

func TestUserRepository_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository()
	u := repositorytest.NewUser(t, "copy@example.com", "Copy User", vo.RoleUser)
	_, err := repo.Save(ctx, u)
	require.NoError(t, err)

	// mutating the caller's aggregate must not leak into the store without Update
	u.UpdateRole(vo.UserRoleAdmin())

	stored, err := repo.FindByID(ctx, u.ID())
	require.NoError(t, err)
	assert.False(t, stored.IsAdmin())
}

func TestNewSeededUserRepository(t *testing.T) {
	repo, err := NewSeededUserRepository()
	require.NoError(t, err)
	assert.Equal(t, 2, repo.Len())

	admin, err := vo.NewEmail("admin@example.com")
	require.NoError(t, err)
	u, err := repo.FindByEmail(context.Background(), admin)
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.True(t, u.IsAdmin())
}

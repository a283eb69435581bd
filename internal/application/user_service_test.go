package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/dzikrisyairozi/turborepo-fullstack-starter/internal/domain/entity"
	"github.com/dzikrisyairozi/turborepo-fullstack-starter/internal/domain/event"
	"github.com/dzikrisyairozi/turborepo-fullstack-starter/internal/domain/repository"
	vo "github.com/dzikrisyairozi/turborepo-fullstack-starter/internal/domain/valueobject"
	"github.com/dzikrisyairozi/turborepo-fullstack-starter/internal/infrastructure/memory"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []event.DomainEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e event.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Meta().Type)
	}
	return out
}

type fakeSearcher struct {
	records []entity.Record
	query   string
	size    int
}

func (f *fakeSearcher) Search(_ context.Context, q string, size int) ([]entity.Record, error) {
	f.query, f.size = q, size
	return f.records, nil
}

func ptr(s string) *string { return &s }

type UserServiceSuite struct {
	suite.Suite
	ctx    context.Context
	repo   *memory.UserRepository
	events *recordingPublisher
	logs   *test.Hook
	svc    *Service
}

func (s *UserServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.repo = memory.NewUserRepository()
	s.events = &recordingPublisher{}
	logger, hook := test.NewNullLogger()
	s.logs = hook
	s.svc = NewService(s.repo, s.events, nil, logger)
}

func (s *UserServiceSuite) create(email, name string) *UserResponse {
	resp, err := s.svc.CreateUser(s.ctx, CreateUserInput{Email: email, Name: name})
	s.Require().NoError(err)
	return resp
}

func (s *UserServiceSuite) TestCreateUser_DefaultsRole() {
	resp := s.create("john@example.com", "John Doe")

	s.Equal(vo.RoleUser, resp.Role)
	s.NotEmpty(resp.ID)
	s.Equal(resp.CreatedAt, resp.UpdatedAt)
	s.Equal([]string{event.TypeUserCreated}, s.events.types())
}

func (s *UserServiceSuite) TestCreateUser_ConflictIgnoresCase() {
	s.create("john@example.com", "John Doe")

	_, err := s.svc.CreateUser(s.ctx, CreateUserInput{Email: "JOHN@Example.com", Name: "Other John"})

	var conflict *ConflictError
	s.Require().ErrorAs(err, &conflict)
	s.ErrorIs(err, ErrConflict)
	s.Equal("email", conflict.Field)
	s.Equal(1, s.repo.Len(), "store must not change")
	s.Len(s.events.types(), 1)
}

func (s *UserServiceSuite) TestCreateUser_InvalidInput() {
	_, err := s.svc.CreateUser(s.ctx, CreateUserInput{Email: "not-an-email", Name: "John Doe"})
	s.ErrorIs(err, vo.ErrValidation)

	_, err = s.svc.CreateUser(s.ctx, CreateUserInput{Email: "john@example.com", Name: "John Doe", Role: "ROOT"})
	s.ErrorIs(err, vo.ErrValidation)
	s.Zero(s.repo.Len())
}

func (s *UserServiceSuite) TestCreateUser_PublishFailureDoesNotFail() {
	s.events.err = errors.New("queue full")

	resp, err := s.svc.CreateUser(s.ctx, CreateUserInput{Email: "john@example.com", Name: "John Doe"})

	s.Require().NoError(err)
	s.NotNil(resp)
	s.Require().NotNil(s.logs.LastEntry())
	s.Equal(logrus.WarnLevel, s.logs.LastEntry().Level)
}

func (s *UserServiceSuite) TestFindAllUsers_Pagination() {
	for i := 0; i < 15; i++ {
		s.create(fmt.Sprintf("user%d@example.com", i), "Some User")
	}

	page, err := s.svc.FindAllUsers(s.ctx, PaginationInput{Page: 2, Limit: 10})
	s.Require().NoError(err)
	s.Len(page.Data, 5)
	s.Equal(repository.PageMeta{Total: 15, Page: 2, Limit: 10, TotalPages: 2}, page.Meta)
}

func (s *UserServiceSuite) TestFindAllUsers_Defaults() {
	s.create("john@example.com", "John Doe")

	page, err := s.svc.FindAllUsers(s.ctx, PaginationInput{})
	s.Require().NoError(err)
	s.Equal(1, page.Meta.Page)
	s.Equal(DefaultLimit, page.Meta.Limit)

	page, err = s.svc.FindAllUsers(s.ctx, PaginationInput{Limit: 5000})
	s.Require().NoError(err)
	s.Equal(MaxLimit, page.Meta.Limit)
}

func (s *UserServiceSuite) TestFindUserByID() {
	created := s.create("john@example.com", "John Doe")

	got, err := s.svc.FindUserByID(s.ctx, created.ID)
	s.Require().NoError(err)
	s.Equal(*created, *got)

	_, err = s.svc.FindUserByID(s.ctx, "missing-id")
	var nf *NotFoundError
	s.Require().ErrorAs(err, &nf)
	s.Equal("missing-id", nf.Value)

	_, err = s.svc.FindUserByID(s.ctx, "  ")
	s.ErrorIs(err, vo.ErrValidation)
}

func (s *UserServiceSuite) TestUpdateUser_OwnEmailIsNotConflict() {
	created := s.create("john@example.com", "John Doe")

	got, err := s.svc.UpdateUser(s.ctx, created.ID, UpdateUserInput{Email: ptr("john@example.com")})

	s.Require().NoError(err)
	s.Equal("john@example.com", got.Email)
	s.Equal([]string{event.TypeUserCreated}, s.events.types(), "no-op update publishes nothing")
}

func (s *UserServiceSuite) TestUpdateUser_EmailTakenByAnother() {
	s.create("jane@example.com", "Jane Doe")
	john := s.create("john@example.com", "John Doe")

	_, err := s.svc.UpdateUser(s.ctx, john.ID, UpdateUserInput{Email: ptr("Jane@example.com"), Name: ptr("Johnny")})

	s.ErrorIs(err, ErrConflict)
	stored, err := s.svc.FindUserByID(s.ctx, john.ID)
	s.Require().NoError(err)
	s.Equal("John Doe", stored.Name, "failed update leaves the user untouched")
}

func (s *UserServiceSuite) TestUpdateUser_AppliesOnlyPresentFields() {
	john := s.create("john@example.com", "John Doe")

	got, err := s.svc.UpdateUser(s.ctx, john.ID, UpdateUserInput{Role: ptr(vo.RoleAdmin)})

	s.Require().NoError(err)
	s.Equal(vo.RoleAdmin, got.Role)
	s.Equal("John Doe", got.Name)
	s.Equal("john@example.com", got.Email)
	s.True(got.UpdatedAt.After(john.UpdatedAt))
	s.Equal(john.CreatedAt, got.CreatedAt)

	s.Require().Len(s.events.events, 2)
	upd, ok := s.events.events[1].(event.UserUpdated)
	s.Require().True(ok)
	s.Nil(upd.Email)
	s.Nil(upd.Name)
	s.Equal(&event.Change{Previous: vo.RoleUser, New: vo.RoleAdmin}, upd.Role)
}

func (s *UserServiceSuite) TestUpdateUser_InvalidFieldLeavesUserUnchanged() {
	john := s.create("john@example.com", "John Doe")

	_, err := s.svc.UpdateUser(s.ctx, john.ID, UpdateUserInput{Email: ptr("new@example.com"), Name: ptr("1")})

	s.ErrorIs(err, vo.ErrValidation)
	stored, err := s.svc.FindUserByID(s.ctx, john.ID)
	s.Require().NoError(err)
	s.Equal("john@example.com", stored.Email)
}

func (s *UserServiceSuite) TestUpdateUser_SameValuesKeepTimestampAndPublishNothing() {
	john := s.create("john@example.com", "John Doe")

	got, err := s.svc.UpdateUser(s.ctx, john.ID, UpdateUserInput{
		Name: ptr("John Doe"),
		Role: ptr(vo.RoleUser),
	})

	s.Require().NoError(err)
	s.True(got.UpdatedAt.Equal(john.UpdatedAt))
	s.Equal([]string{event.TypeUserCreated}, s.events.types())
}

func (s *UserServiceSuite) TestUpdateUser_NotFound() {
	_, err := s.svc.UpdateUser(s.ctx, "missing", UpdateUserInput{Name: ptr("Nobody")})
	s.ErrorIs(err, ErrNotFound)
}

func (s *UserServiceSuite) TestDeleteUser() {
	john := s.create("john@example.com", "John Doe")

	res, err := s.svc.DeleteUser(s.ctx, john.ID)
	s.Require().NoError(err)
	s.Equal("User deleted successfully", res.Message)
	s.Zero(s.repo.Len())

	s.Require().Len(s.events.events, 2)
	del, ok := s.events.events[1].(event.UserDeleted)
	s.Require().True(ok)
	s.Equal("john@example.com", del.Email)
	s.Equal(john.ID, del.AggregateID)
}

func (s *UserServiceSuite) TestDeleteUser_NotFoundLeavesStore() {
	s.create("john@example.com", "John Doe")

	_, err := s.svc.DeleteUser(s.ctx, "missing")

	s.ErrorIs(err, ErrNotFound)
	s.Equal(1, s.repo.Len())
}

func (s *UserServiceSuite) TestGetUserStatistics() {
	s.create("john@example.com", "John Doe")
	_, err := s.svc.CreateUser(s.ctx, CreateUserInput{Email: "root@example.com", Name: "Root", Role: vo.RoleAdmin})
	s.Require().NoError(err)

	stats, err := s.svc.GetUserStatistics(s.ctx)
	s.Require().NoError(err)
	s.Equal(2, stats.TotalUsers)
	s.Equal(50.0, stats.AdminPercentage)
}

func TestUserServiceSuite(t *testing.T) {
	suite.Run(t, new(UserServiceSuite))
}

func TestSearchUsers(t *testing.T) {
	ctx := context.Background()
	u, err := entity.NewUser(entity.NewUserParams{Email: "john@example.com", Name: "John Doe"})
	require.NoError(t, err)
	searcher := &fakeSearcher{records: []entity.Record{u.ToPersistence(), {ID: "broken"}}}
	svc := NewService(memory.NewUserRepository(), nil, searcher, nil)

	got, err := svc.SearchUsers(ctx, "john", 0)
	require.NoError(t, err)
	require.Len(t, got, 1, "malformed hits are skipped")
	assert.Equal(t, u.ID().Value(), got[0].ID)
	assert.Equal(t, "john", searcher.query)
	assert.Equal(t, DefaultLimit, searcher.size)

	none, err := NewService(memory.NewUserRepository(), nil, nil, nil).SearchUsers(ctx, "john", 5)
	require.NoError(t, err)
	assert.Empty(t, none)
}

type duplicateOnSave struct{ *memory.UserRepository }

func (duplicateOnSave) Save(context.Context, *entity.User) (*entity.User, error) {
	return nil, fmt.Errorf("insert: %w", repository.ErrDuplicateEmail)
}

func TestCreateUser_StorageDuplicateBecomesConflict(t *testing.T) {
	svc := NewService(duplicateOnSave{memory.NewUserRepository()}, nil, nil, nil)

	_, err := svc.CreateUser(context.Background(), CreateUserInput{Email: "race@example.com", Name: "Race Condition"})

	assert.ErrorIs(t, err, ErrConflict)
}

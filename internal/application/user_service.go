package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/dzikrisyairozi/turborepo-fullstack-starter/internal/domain/entity"
	"github.com/dzikrisyairozi/turborepo-fullstack-starter/internal/domain/event"
	repo "github.com/dzikrisyairozi/turborepo-fullstack-starter/internal/domain/repository"
	"github.com/dzikrisyairozi/turborepo-fullstack-starter/internal/domain/service"
	vo "github.com/dzikrisyairozi/turborepo-fullstack-starter/internal/domain/valueobject"
)

const msgUserDeleted = "User deleted successfully"

// UserSearcher is a full-text index over users.
type UserSearcher interface {
	Search(ctx context.Context, query string, size int) ([]entity.Record, error)
}

// Service runs the user use-cases. It is the only layer that returns
// NotFoundError and ConflictError.
type Service struct {
	Repo     repo.UserRepository
	Domain   *service.UserDomainService
	Events   event.Publisher
	Searcher UserSearcher
	Logger   logrus.FieldLogger
}

// NewService wires a Service. A nil publisher discards events and a nil
// logger falls back to the logrus standard logger.
func NewService(r repo.UserRepository, publisher event.Publisher, searcher UserSearcher, logger logrus.FieldLogger) *Service {
	if publisher == nil {
		publisher = event.NopPublisher{}
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Service{
		Repo:     r,
		Domain:   service.NewUserDomainService(r),
		Events:   publisher,
		Searcher: searcher,
		Logger:   logger,
	}
}

func (s *Service) CreateUser(ctx context.Context, in CreateUserInput) (*UserResponse, error) {
	u, err := entity.NewUser(entity.NewUserParams{Email: in.Email, Name: in.Name, Role: in.Role})
	if err != nil {
		return nil, err
	}

	existing, err := s.Repo.FindByEmail(ctx, u.Email())
	if err != nil {
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	if existing != nil {
		return nil, emailConflict(in.Email)
	}

	saved, err := s.Repo.Save(ctx, u)
	if err != nil {
		if errors.Is(err, repo.ErrDuplicateEmail) {
			return nil, emailConflict(in.Email)
		}
		return nil, fmt.Errorf("save user: %w", err)
	}

	rec := saved.ToPersistence()
	s.publish(ctx, event.NewUserCreated(rec.ID, rec.Email, rec.Name, rec.Role))
	resp := toResponse(saved)
	return &resp, nil
}

func (s *Service) FindAllUsers(ctx context.Context, in PaginationInput) (*PaginatedResponse, error) {
	page, err := s.Repo.FindAll(ctx, in.normalize())
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	out := &PaginatedResponse{Data: make([]UserResponse, 0, len(page.Data)), Meta: page.Meta}
	for _, u := range page.Data {
		out.Data = append(out.Data, toResponse(u))
	}
	return out, nil
}

func (s *Service) FindUserByID(ctx context.Context, id string) (*UserResponse, error) {
	u, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toResponse(u)
	return &resp, nil
}

func (s *Service) UpdateUser(ctx context.Context, id string, in UpdateUserInput) (*UserResponse, error) {
	u, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	// build every value object before touching the aggregate so a bad field
	// leaves it unchanged
	var (
		email *vo.Email
		name  *vo.UserName
		role  *vo.UserRole
	)
	if in.Email != nil {
		e, err := vo.NewEmail(*in.Email)
		if err != nil {
			return nil, err
		}
		email = &e
	}
	if in.Name != nil {
		n, err := vo.NewUserName(*in.Name)
		if err != nil {
			return nil, err
		}
		name = &n
	}
	if in.Role != nil {
		r, err := vo.NewUserRole(*in.Role)
		if err != nil {
			return nil, err
		}
		role = &r
	}

	var changes event.UserChanges
	if email != nil && email.Value() != u.Email().Value() {
		unique, err := s.Domain.IsEmailUnique(ctx, *email, u.ID().Value())
		if err != nil {
			return nil, err
		}
		if !unique {
			return nil, emailConflict(email.Value())
		}
		changes.Email = &event.Change{Previous: u.Email().Value(), New: email.Value()}
		u.UpdateEmail(*email)
	}
	if name != nil && name.Value() != u.Name().Value() {
		changes.Name = &event.Change{Previous: u.Name().Value(), New: name.Value()}
		u.UpdateName(*name)
	}
	if role != nil && !role.Equals(u.Role()) {
		changes.Role = &event.Change{Previous: u.Role().Value(), New: role.Value()}
		u.UpdateRole(*role)
	}

	updated, err := s.Repo.Update(ctx, u)
	if err != nil {
		switch {
		case errors.Is(err, repo.ErrDuplicateEmail):
			return nil, emailConflict(u.Email().Value())
		case errors.Is(err, repo.ErrNotFound):
			return nil, userNotFound(id)
		}
		return nil, fmt.Errorf("update user: %w", err)
	}

	if !changes.Empty() {
		s.publish(ctx, event.NewUserUpdated(updated.ID().Value(), changes))
	}
	resp := toResponse(updated)
	return &resp, nil
}

func (s *Service) DeleteUser(ctx context.Context, id string) (*DeleteResult, error) {
	uid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	exists, err := s.Repo.Exists(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("check user exists: %w", err)
	}
	if !exists {
		return nil, userNotFound(id)
	}

	// the deleted event carries the last known state
	u, err := s.Repo.FindByID(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if err := s.Repo.Delete(ctx, uid); err != nil {
		return nil, fmt.Errorf("delete user: %w", err)
	}

	if u != nil {
		rec := u.ToPersistence()
		s.publish(ctx, event.NewUserDeleted(rec.ID, rec.Email, rec.Name, rec.Role))
	}
	return &DeleteResult{Message: msgUserDeleted}, nil
}

func (s *Service) GetUserStatistics(ctx context.Context) (service.UserStatistics, error) {
	return s.Domain.CalculateUserStatistics(ctx)
}

// SearchUsers returns an empty result when no searcher is configured.
func (s *Service) SearchUsers(ctx context.Context, query string, size int) ([]UserResponse, error) {
	out := []UserResponse{}
	if s.Searcher == nil || strings.TrimSpace(query) == "" {
		return out, nil
	}
	if size <= 0 {
		size = DefaultLimit
	}
	if size > MaxLimit {
		size = MaxLimit
	}
	recs, err := s.Searcher.Search(ctx, query, size)
	if err != nil {
		return nil, fmt.Errorf("search users: %w", err)
	}
	for _, r := range recs {
		u, err := entity.Reconstitute(r)
		if err != nil {
			s.Logger.WithError(err).WithField("user_id", r.ID).Warn("skip malformed search hit")
			continue
		}
		out = append(out, toResponse(u))
	}
	return out, nil
}

func (s *Service) load(ctx context.Context, id string) (*entity.User, error) {
	uid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	u, err := s.Repo.FindByID(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if u == nil {
		return nil, userNotFound(id)
	}
	return u, nil
}

// publish never fails the use-case.
func (s *Service) publish(ctx context.Context, e event.DomainEvent) {
	if err := s.Events.Publish(ctx, e); err != nil {
		m := e.Meta()
		s.Logger.WithError(err).WithFields(logrus.Fields{
			"event_type":   m.Type,
			"aggregate_id": m.AggregateID,
		}).Warn("publish domain event failed")
	}
}

// parseID rejects blank ids instead of generating a new one.
func parseID(id string) (vo.UserID, error) {
	if strings.TrimSpace(id) == "" {
		return vo.UserID{}, &vo.ValidationError{Field: "id", Kind: vo.KindEmpty, Message: "UserId cannot be empty"}
	}
	return vo.NewUserID(id)
}

func toResponse(u *entity.User) UserResponse {
	return UserResponse{
		ID:        u.ID().Value(),
		Email:     u.Email().Value(),
		Name:      u.Name().Value(),
		Role:      u.Role().Value(),
		CreatedAt: u.CreatedAt(),
		UpdatedAt: u.UpdatedAt(),
	}
}

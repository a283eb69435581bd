package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/dzikrisyairozi/turborepo-fullstack-starter/internal/domain/entity"
	"github.com/dzikrisyairozi/turborepo-fullstack-starter/internal/domain/repository"
	vo "github.com/dzikrisyairozi/turborepo-fullstack-starter/internal/domain/valueobject"
)

// UserRepository keeps users in process memory. It stores persistence records,
// never the caller's aggregate, so callers cannot mutate stored state.
type UserRepository struct {
	mu         sync.RWMutex
	users      map[string]entity.Record
	emailIndex map[string]string // lower-cased email -> id
	order      []string
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		users:      make(map[string]entity.Record),
		emailIndex: make(map[string]string),
	}
}

// NewSeededUserRepository returns a repository holding a default admin and user.
func NewSeededUserRepository() (*UserRepository, error) {
	r := NewUserRepository()
	seeds := []entity.NewUserParams{
		{Email: "admin@example.com", Name: "Admin User", Role: vo.RoleAdmin},
		{Email: "user@example.com", Name: "Regular User", Role: vo.RoleUser},
	}
	for _, s := range seeds {
		u, err := entity.NewUser(s)
		if err != nil {
			return nil, err
		}
		if _, err := r.Save(context.Background(), u); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *UserRepository) Save(_ context.Context, u *entity.User) (*entity.User, error) {
	rec := u.ToPersistence()
	key := strings.ToLower(rec.Email)

	r.mu.Lock()
	defer r.mu.Unlock()
	if owner, ok := r.emailIndex[key]; ok && owner != rec.ID {
		return nil, repository.ErrDuplicateEmail
	}
	if existing, ok := r.users[rec.ID]; !ok {
		r.order = append(r.order, rec.ID)
	} else if oldKey := strings.ToLower(existing.Email); oldKey != key {
		delete(r.emailIndex, oldKey)
	}
	r.users[rec.ID] = rec
	r.emailIndex[key] = rec.ID
	return entity.Reconstitute(rec)
}

func (r *UserRepository) FindByID(_ context.Context, id vo.UserID) (*entity.User, error) {
	r.mu.RLock()
	rec, ok := r.users[id.Value()]
	r.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	return entity.Reconstitute(rec)
}

func (r *UserRepository) FindByEmail(_ context.Context, email vo.Email) (*entity.User, error) {
	r.mu.RLock()
	id, ok := r.emailIndex[email.Normalized()]
	rec := r.users[id]
	r.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	return entity.Reconstitute(rec)
}

// FindAll lists users in insertion order.
func (r *UserRepository) FindAll(_ context.Context, p repository.Pagination) (*repository.Page[*entity.User], error) {
	r.mu.RLock()
	total := len(r.order)
	start := p.Offset()
	if start > total {
		start = total
	}
	end := start + max(p.Limit, 0)
	if end > total {
		end = total
	}
	recs := make([]entity.Record, 0, end-start)
	for _, id := range r.order[start:end] {
		recs = append(recs, r.users[id])
	}
	r.mu.RUnlock()

	data := make([]*entity.User, 0, len(recs))
	for _, rec := range recs {
		u, err := entity.Reconstitute(rec)
		if err != nil {
			return nil, fmt.Errorf("reconstitute user %s: %w", rec.ID, err)
		}
		data = append(data, u)
	}
	return &repository.Page[*entity.User]{Data: data, Meta: repository.NewPageMeta(total, p)}, nil
}

func (r *UserRepository) Update(_ context.Context, u *entity.User) (*entity.User, error) {
	rec := u.ToPersistence()
	key := strings.ToLower(rec.Email)

	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.users[rec.ID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if owner, taken := r.emailIndex[key]; taken && owner != rec.ID {
		return nil, repository.ErrDuplicateEmail
	}
	if oldKey := strings.ToLower(existing.Email); oldKey != key {
		delete(r.emailIndex, oldKey)
	}
	r.users[rec.ID] = rec
	r.emailIndex[key] = rec.ID
	return entity.Reconstitute(rec)
}

// Delete is a no-op for unknown ids.
func (r *UserRepository) Delete(_ context.Context, id vo.UserID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.users[id.Value()]
	if !ok {
		return nil
	}
	delete(r.emailIndex, strings.ToLower(rec.Email))
	delete(r.users, id.Value())
	for i, v := range r.order {
		if v == id.Value() {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func (r *UserRepository) Exists(_ context.Context, id vo.UserID) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.users[id.Value()]
	return ok, nil
}

func (r *UserRepository) ExistsByEmail(_ context.Context, email vo.Email) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.emailIndex[email.Normalized()]
	return ok, nil
}

// Len returns the number of stored users.
func (r *UserRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users)
}

var _ repository.UserRepository = (*UserRepository)(nil)

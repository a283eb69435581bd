package repository

import (
	"context"
	"errors"

	"github.com/dzikrisyairozi/turborepo-fullstack-starter/internal/domain/entity"
	vo "github.com/dzikrisyairozi/turborepo-fullstack-starter/internal/domain/valueobject"
)

var (
	// ErrNotFound is returned by Update when the user id is unknown to the store.
	ErrNotFound = errors.New("user not found")
	// ErrDuplicateEmail is returned when a write would break email uniqueness.
	ErrDuplicateEmail = errors.New("email already exists")
)

// UserRepository defines the persistence contract of the User aggregate.
// Find methods return (nil, nil) when nothing matches. Email lookups ignore case.
type UserRepository interface {
	Save(ctx context.Context, u *entity.User) (*entity.User, error)
	FindByID(ctx context.Context, id vo.UserID) (*entity.User, error)
	FindByEmail(ctx context.Context, email vo.Email) (*entity.User, error)
	FindAll(ctx context.Context, p Pagination) (*Page[*entity.User], error)
	Update(ctx context.Context, u *entity.User) (*entity.User, error)
	Delete(ctx context.Context, id vo.UserID) error
	Exists(ctx context.Context, id vo.UserID) (bool, error)
	ExistsByEmail(ctx context.Context, email vo.Email) (bool, error)
}

// Pagination is 1-indexed.
type Pagination struct {
	Page  int
	Limit int
}

// Offset is the number of rows skipped before the page starts.
func (p Pagination) Offset() int {
	if p.Page < 1 || p.Limit <= 0 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}

// PageMeta describes where a page sits in the full result set.
type PageMeta struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

type Page[T any] struct {
	Data []T
	Meta PageMeta
}

// NewPageMeta computes TotalPages as ceil(total/limit).
func NewPageMeta(total int, p Pagination) PageMeta {
	totalPages := 0
	if p.Limit > 0 {
		totalPages = (total + p.Limit - 1) / p.Limit
	}
	return PageMeta{Total: total, Page: p.Page, Limit: p.Limit, TotalPages: totalPages}
}

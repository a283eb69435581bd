package application

import (
	"time"

	"github.com/dzikrisyairozi/turborepo-fullstack-starter/internal/domain/repository"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

type CreateUserInput struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role,omitempty"`
}

// UpdateUserInput fields are optional; nil leaves the field untouched.
type UpdateUserInput struct {
	Email *string `json:"email,omitempty"`
	Name  *string `json:"name,omitempty"`
	Role  *string `json:"role,omitempty"`
}

type PaginationInput struct {
	Page  int `form:"page" binding:"omitempty,min=0"`
	Limit int `form:"limit" binding:"omitempty,min=0"`
}

func (p PaginationInput) normalize() repository.Pagination {
	page, limit := p.Page, p.Limit
	if page <= 0 {
		page = DefaultPage
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return repository.Pagination{Page: page, Limit: limit}
}

// UserResponse is the public projection of a user.
type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type PaginatedResponse struct {
	Data []UserResponse      `json:"data"`
	Meta repository.PageMeta `json:"meta"`
}

type DeleteResult struct {
	Message string `json:"message"`
}

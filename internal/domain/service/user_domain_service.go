package service

import (
	"context"
	"fmt"
	"math"

	"github.com/dzikrisyairozi/turborepo-fullstack-starter/internal/domain/repository"
	vo "github.com/dzikrisyairozi/turborepo-fullstack-starter/internal/domain/valueobject"
)

const (
	MsgEmailInUse         = "Email address is already in use"
	MsgInvalidEmailFormat = "Invalid email format"
	MsgInvalidNameFormat  = "Invalid name format"

	statisticsPageSize = 1000
)

// ValidationResult collects every problem found instead of stopping at the first.
type ValidationResult struct {
	IsValid bool     `json:"isValid"`
	Errors  []string `json:"errors"`
}

func newResult(errs []string) ValidationResult {
	if errs == nil {
		errs = []string{}
	}
	return ValidationResult{IsValid: len(errs) == 0, Errors: errs}
}

type UserStatistics struct {
	TotalUsers       int     `json:"totalUsers"`
	AdminCount       int     `json:"adminCount"`
	RegularUserCount int     `json:"regularUserCount"`
	AdminPercentage  float64 `json:"adminPercentage"`
}

// UserDomainService holds the user rules that need repository access.
type UserDomainService struct {
	repo repository.UserRepository
}

func NewUserDomainService(repo repository.UserRepository) *UserDomainService {
	return &UserDomainService{repo: repo}
}

// IsEmailUnique reports whether email is free, treating a match on
// excludeUserID as free so a user can keep their own address.
func (s *UserDomainService) IsEmailUnique(ctx context.Context, email vo.Email, excludeUserID string) (bool, error) {
	existing, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return false, fmt.Errorf("find user by email: %w", err)
	}
	if existing == nil {
		return true, nil
	}
	return excludeUserID != "" && existing.ID().Value() == excludeUserID, nil
}

func (s *UserDomainService) ValidateUserCreation(ctx context.Context, email, name string) (ValidationResult, error) {
	var errs []string

	if e, err := vo.NewEmail(email); err != nil {
		errs = append(errs, MsgInvalidEmailFormat)
	} else {
		unique, err := s.IsEmailUnique(ctx, e, "")
		if err != nil {
			return ValidationResult{}, err
		}
		if !unique {
			errs = append(errs, MsgEmailInUse)
		}
	}

	if _, err := vo.NewUserName(name); err != nil {
		errs = append(errs, MsgInvalidNameFormat)
	}
	return newResult(errs), nil
}

// ValidateUserUpdate checks only the fields that are supplied; nil and empty
// values are skipped.
func (s *UserDomainService) ValidateUserUpdate(ctx context.Context, userID string, email, name *string) (ValidationResult, error) {
	var errs []string

	if email != nil && *email != "" {
		if e, err := vo.NewEmail(*email); err != nil {
			errs = append(errs, MsgInvalidEmailFormat)
		} else {
			unique, err := s.IsEmailUnique(ctx, e, userID)
			if err != nil {
				return ValidationResult{}, err
			}
			if !unique {
				errs = append(errs, MsgEmailInUse)
			}
		}
	}

	if name != nil && *name != "" {
		if _, err := vo.NewUserName(*name); err != nil {
			errs = append(errs, MsgInvalidNameFormat)
		}
	}
	return newResult(errs), nil
}

// CanManageUser: everyone manages themselves, otherwise only admins manage others.
func (s *UserDomainService) CanManageUser(ctx context.Context, managerID, targetID string) (bool, error) {
	if managerID == targetID {
		return true, nil
	}
	id, err := vo.NewUserID(managerID)
	if err != nil {
		return false, err
	}
	manager, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return false, fmt.Errorf("find manager: %w", err)
	}
	if manager == nil {
		return false, nil
	}
	return manager.CanManageUsers(), nil
}

// CalculateUserStatistics walks every page of the repository.
func (s *UserDomainService) CalculateUserStatistics(ctx context.Context) (UserStatistics, error) {
	var stats UserStatistics
	for page := 1; ; page++ {
		res, err := s.repo.FindAll(ctx, repository.Pagination{Page: page, Limit: statisticsPageSize})
		if err != nil {
			return UserStatistics{}, fmt.Errorf("list users page %d: %w", page, err)
		}
		for _, u := range res.Data {
			stats.TotalUsers++
			if u.IsAdmin() {
				stats.AdminCount++
			}
		}
		if len(res.Data) == 0 || page >= res.Meta.TotalPages {
			break
		}
	}

	stats.RegularUserCount = stats.TotalUsers - stats.AdminCount
	if stats.TotalUsers > 0 {
		pct := float64(stats.AdminCount) / float64(stats.TotalUsers) * 100
		stats.AdminPercentage = math.Round(pct*100) / 100
	}
	return stats, nil
}

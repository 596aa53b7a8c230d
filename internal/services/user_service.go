package services

import (
	"context"

	"github.com/docvault/docvault/internal/models"
	pgrepo "github.com/docvault/docvault/internal/repositories/postgres"
	"github.com/docvault/docvault/internal/utils"
)

type UserService interface {
	// ListApplicants returns users with the applicant role, ordered by
	// username, for the recruiter-facing listing.
	ListApplicants(ctx context.Context, skip, limit int) ([]models.User, error)
}

type userService struct {
	users pgrepo.UserRepository
}

func NewUserService(users pgrepo.UserRepository) UserService {
	return &userService{users: users}
}

func (s *userService) ListApplicants(ctx context.Context, skip, limit int) ([]models.User, error) {
	const op = "UserService.ListApplicants"

	rows, err := s.users.ListByRole(ctx, models.RoleApplicant, skip, limit)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list applicants", err)
	}
	return rows, nil
}

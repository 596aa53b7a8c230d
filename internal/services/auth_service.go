package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/docvault/docvault/internal/auth"
	"github.com/docvault/docvault/internal/models"
	pgrepo "github.com/docvault/docvault/internal/repositories/postgres"
	"github.com/docvault/docvault/internal/utils"
)

// Both unknown-username and wrong-password collapse to this message so the
// login endpoint cannot be used to enumerate usernames.
const loginFailedMsg = "incorrect username or password"

type AuthService interface {
	SignUp(ctx context.Context, username, password string, role models.Role) (*models.User, error)
	Login(ctx context.Context, username, password string) (token string, err error)
	ResolveToken(ctx context.Context, raw string) (*models.User, error)
}

type authService struct {
	users  pgrepo.UserRepository
	tokens *auth.TokenManager
}

func NewAuthService(users pgrepo.UserRepository, tokens *auth.TokenManager) AuthService {
	return &authService{users: users, tokens: tokens}
}

func (s *authService) SignUp(ctx context.Context, username, password string, role models.Role) (*models.User, error) {
	const op = "AuthService.SignUp"

	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "username and password are required", nil)
	}
	if !models.ValidRole(role) {
		return nil, utils.E(utils.CodeInvalidArgument, op, "role must be 'applicant' or 'recruiter'", nil)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to hash password", err)
	}

	row := &models.User{
		Username:     username,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.users.Create(ctx, row); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, utils.E(utils.CodeConflict, op, "username already registered", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to create user", err)
	}
	return row, nil
}

func (s *authService) Login(ctx context.Context, username, password string) (string, error) {
	const op = "AuthService.Login"

	if username == "" || password == "" {
		return "", utils.E(utils.CodeUnauthorized, op, loginFailedMsg, nil)
	}

	user, err := s.users.ByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", utils.E(utils.CodeUnauthorized, op, loginFailedMsg, nil)
		}
		return "", utils.E(utils.CodeInternal, op, "failed to look up user", err)
	}
	if err := auth.CheckPassword(user.PasswordHash, password); err != nil {
		return "", utils.E(utils.CodeUnauthorized, op, loginFailedMsg, nil)
	}

	token, err := s.tokens.Issue(user.Username, 0)
	if err != nil {
		return "", utils.E(utils.CodeInternal, op, "failed to issue token", err)
	}
	return token, nil
}

func (s *authService) ResolveToken(ctx context.Context, raw string) (*models.User, error) {
	const op = "AuthService.ResolveToken"

	username, err := s.tokens.Parse(raw)
	if err != nil {
		return nil, utils.E(utils.CodeUnauthorized, op, "invalid or expired token", err)
	}

	user, err := s.users.ByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.E(utils.CodeUnauthorized, op, "invalid or expired token", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to look up user", err)
	}
	return user, nil
}

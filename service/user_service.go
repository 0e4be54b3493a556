package service

import (
	"context"
	"strings"

	"github.com/SachyamKarki/Karki-Scrapper/internal/auth"
	"github.com/SachyamKarki/Karki-Scrapper/internal/domain"
	"github.com/SachyamKarki/Karki-Scrapper/internal/port"
	"github.com/SachyamKarki/Karki-Scrapper/pkg/logger"
)

// UserService handles account signup and credential checks.
type UserService struct {
	users  port.UserStore
	logger logger.Logger
}

func NewUserService(users port.UserStore, log logger.Logger) *UserService {
	return &UserService{users: users, logger: log.WithModule("users")}
}

// Signup registers a new account with the default role.
func (s *UserService) Signup(ctx context.Context, email, password string) (*domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user, err := s.users.Create(ctx, email, hash, domain.RoleUser)
	if err != nil {
		return nil, err
	}
	s.logger.Infof("registered %s", email)
	return user, nil
}

// Login verifies credentials and returns the account.
func (s *UserService) Login(ctx context.Context, email, password string) (*domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.users.ByEmail(ctx, email)
	if err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	if !auth.CheckPassword(password, user.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}
	return user, nil
}

// ByID loads an account, used by session middleware after token validation.
func (s *UserService) ByID(ctx context.Context, id string) (*domain.User, error) {
	return s.users.ByID(ctx, id)
}

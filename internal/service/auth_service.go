package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/iliyamo/todo-list-api/internal/model"
	"github.com/iliyamo/todo-list-api/internal/repository"
	"github.com/iliyamo/todo-list-api/internal/utils"
)

// UserStore is the credential store the auth service persists users in.
type UserStore interface {
	Create(ctx context.Context, username, passwordHash string) (uint64, error)
	GetByUsername(ctx context.Context, username string) (model.User, error)
}

// TokenIssuer signs access tokens for authenticated users.
type TokenIssuer interface {
	Issue(userID uint64, username string) (utils.AccessToken, error)
}

// AuthService registers users and exchanges credentials for tokens.
type AuthService struct {
	users      UserStore
	tokens     TokenIssuer
	cost       int
	dummyHash  string
	maxNameLen int
}

// NewAuthService wires the service. cost is the bcrypt work factor.
func NewAuthService(users UserStore, tokens TokenIssuer, cost int) (*AuthService, error) {
	// Compared against when the username is unknown so a miss costs the
	// same bcrypt work as a wrong password.
	dummy, err := utils.HashPassword("unknown-user-placeholder", cost)
	if err != nil {
		return nil, err
	}
	return &AuthService{users: users, tokens: tokens, cost: cost, dummyHash: dummy, maxNameLen: 191}, nil
}

// Register creates a user with a bcrypt-hashed password.
func (s *AuthService) Register(ctx context.Context, username, password string) (model.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return model.User{}, fmt.Errorf("%w: username and password are required", ErrValidation)
	}
	if len(username) > s.maxNameLen {
		return model.User{}, fmt.Errorf("%w: username is too long", ErrValidation)
	}

	hash, err := utils.HashPassword(password, s.cost)
	if err != nil {
		if utils.IsPasswordTooLong(err) {
			return model.User{}, fmt.Errorf("%w: password is too long", ErrValidation)
		}
		return model.User{}, fmt.Errorf("hash password: %w", err)
	}

	id, err := s.users.Create(ctx, username, hash)
	if err != nil {
		if errors.Is(err, repository.ErrUsernameExists) {
			return model.User{}, fmt.Errorf("%w: username already exists", ErrConflict)
		}
		return model.User{}, fmt.Errorf("%w: create user: %w", ErrStorage, err)
	}
	return model.User{ID: id, Username: username}, nil
}

// Authenticate verifies the credentials and issues an access token. An
// unknown username and a wrong password produce the same error.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (utils.AccessToken, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return utils.AccessToken{}, fmt.Errorf("%w: username and password are required", ErrValidation)
	}

	u, err := s.users.GetByUsername(ctx, username)
	switch {
	case errors.Is(err, repository.ErrUserNotFound):
		utils.VerifyPassword(s.dummyHash, password)
		return utils.AccessToken{}, ErrInvalidCredentials
	case err != nil:
		return utils.AccessToken{}, fmt.Errorf("%w: load user: %w", ErrStorage, err)
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		return utils.AccessToken{}, ErrInvalidCredentials
	}

	tok, err := s.tokens.Issue(u.ID, u.Username)
	if err != nil {
		return utils.AccessToken{}, fmt.Errorf("issue token: %w", err)
	}
	return tok, nil
}

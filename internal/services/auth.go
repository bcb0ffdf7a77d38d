package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"ultrachat-backend/internal/models"
	"ultrachat-backend/internal/repository"
)

const defaultHashCost = 12

type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

type SessionIssuer interface {
	Issue(userID int64, username string) (string, *models.Session, error)
	Revoke(token string)
}

type AuthService struct {
	users    UserStore
	sessions SessionIssuer
	hashCost int
}

func NewAuthService(users UserStore, sessions SessionIssuer) *AuthService {
	return &AuthService{users: users, sessions: sessions, hashCost: defaultHashCost}
}

func (s *AuthService) Register(ctx context.Context, username, password string) error {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return &ValidationError{Message: "Username and password are required"}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return &ValidationError{Message: "Password must be at most 72 bytes"}
	}
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	err = s.users.Create(ctx, &models.User{Username: username, PasswordHash: string(hash)})
	if errors.Is(err, repository.ErrUsernameTaken) {
		return ErrDuplicateUsername
	}
	return err
}

// Login checks the credentials and opens a session, returning it with its signed token.
func (s *AuthService) Login(ctx context.Context, username, password string) (*models.Session, string, error) {
	user, err := s.users.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, sess, err := s.sessions.Issue(user.ID, user.Username)
	if err != nil {
		return nil, "", err
	}
	return sess, token, nil
}

// Logout ends the session behind token. It never fails.
func (s *AuthService) Logout(ctx context.Context, token string) {
	if token == "" {
		return
	}
	s.sessions.Revoke(token)
}

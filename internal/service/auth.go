package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/Skotchmaster/marketplace/internal/domain"
	"github.com/Skotchmaster/marketplace/internal/hash"
	"github.com/Skotchmaster/marketplace/internal/logging"
	"github.com/Skotchmaster/marketplace/internal/models"
	"github.com/Skotchmaster/marketplace/internal/mykafka"
	"github.com/Skotchmaster/marketplace/internal/repo"
	"github.com/Skotchmaster/marketplace/internal/throttle"
	"github.com/Skotchmaster/marketplace/internal/tokens"
)

const (
	MinUsernameLen = 3
	MinPasswordLen = 6
)

type AuthService struct {
	Repo    *repo.GormRepo
	Events  mykafka.Publisher
	Index   SearchIndex
	Limiter *throttle.Limiter

	JWTSecret []byte
	AccessTTL time.Duration
	Admins    []string
}

type LoginResult struct {
	User        *models.User
	AccessToken string
	AccessExp   time.Time
	IsAdmin     bool
}

func validateUsername(username string) error {
	if len(username) < MinUsernameLen {
		return fmt.Errorf("username must be at least %d characters: %w", MinUsernameLen, domain.ErrValidation)
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < MinPasswordLen {
		return fmt.Errorf("password must be at least %d characters: %w", MinPasswordLen, domain.ErrValidation)
	}
	return nil
}

func (s *AuthService) Register(ctx context.Context, username, password string) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	username = strings.TrimSpace(username)
	if err := validateUsername(username); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	pwHash, err := hash.HashPassword(password)
	if err != nil {
		l.Error("register_error", "reason", "cannot hash the password", "error", err)
		return nil, err
	}

	role := models.RoleUser
	if slices.Contains(s.Admins, username) {
		role = models.RoleAdmin
	}
	user := &models.User{Username: username, PasswordHash: pwHash, Role: role}

	if err := s.Repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			l.Info("register_rejected", "reason", "user already exists", "username", username)
			return nil, domain.ErrUserExists
		}
		l.Error("register_error", "reason", "db error", "error", err)
		return nil, err
	}

	l.Info("user_registered", "user_id", user.ID, "username", user.Username)
	publish(ctx, s.Events, mykafka.TopicUsers, key(user.ID), "user_registered", map[string]any{
		"user_id":  user.ID,
		"username": user.Username,
	})
	return user, nil
}

// Login verifies credentials. Attempts are throttled per username.
func (s *AuthService) Login(ctx context.Context, username, password string) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login", "username", username)

	username = strings.TrimSpace(username)
	if s.Limiter != nil && !s.Limiter.Allow(username) {
		l.Warn("login_failed", "reason", "throttled")
		return nil, domain.ErrTooManyAttempts
	}

	user, err := s.Repo.UserByUsername(ctx, username)
	if err != nil {
		err = notFound(err, domain.ErrUserNotFound, username)
		if errors.Is(err, domain.ErrUserNotFound) {
			l.Warn("login_failed", "reason", "unknown user")
			return nil, domain.ErrUserNotFound
		}
		l.Error("login_error", "error", err)
		return nil, err
	}
	if !hash.CheckPassword(user.PasswordHash, password) {
		l.Warn("login_failed", "reason", "invalid password")
		return nil, domain.ErrInvalidPassword
	}

	if s.Limiter != nil {
		s.Limiter.Reset(username)
	}
	l.Info("login_ok", "user_id", user.ID)
	return user, nil
}

// IssueToken signs an access token for an authenticated user.
func (s *AuthService) IssueToken(user *models.User) (*LoginResult, error) {
	ttl := s.AccessTTL
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	exp := time.Now().Add(ttl)
	role := models.RoleUser
	if s.IsAdmin(user) {
		role = models.RoleAdmin
	}

	token, err := tokens.NewAccessToken(user.ID, role, exp, s.JWTSecret)
	if err != nil {
		return nil, err
	}
	return &LoginResult{User: user, AccessToken: token, AccessExp: exp, IsAdmin: role == models.RoleAdmin}, nil
}

func (s *AuthService) IsAdmin(user *models.User) bool {
	if user == nil {
		return false
	}
	return user.Role == models.RoleAdmin || slices.Contains(s.Admins, user.Username)
}

func (s *AuthService) UserID(ctx context.Context, username string) (uint, error) {
	user, err := s.Repo.UserByUsername(ctx, username)
	if err != nil {
		return 0, notFound(err, domain.ErrNotFound, "user "+username)
	}
	return user.ID, nil
}

func (s *AuthService) User(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.Repo.UserByID(ctx, id)
	if err != nil {
		return nil, notFound(err, domain.ErrUserNotFound, "user")
	}
	return user, nil
}

func (s *AuthService) UpdateUsername(ctx context.Context, id uint, username string) error {
	l := logging.FromContext(ctx).With("svc", "auth.update_username", "user_id", id)

	username = strings.TrimSpace(username)
	if err := validateUsername(username); err != nil {
		return err
	}

	if err := s.Repo.UpdateUsername(ctx, id, username); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return domain.ErrUsernameTaken
		}
		err = notFound(err, domain.ErrUserNotFound, "user")
		if !errors.Is(err, domain.ErrUserNotFound) {
			l.Error("update_username_error", "error", err)
		}
		return err
	}
	l.Info("username_updated", "username", username)
	return nil
}

func (s *AuthService) UpdatePassword(ctx context.Context, id uint, current, next string) error {
	l := logging.FromContext(ctx).With("svc", "auth.update_password", "user_id", id)

	user, err := s.User(ctx, id)
	if err != nil {
		return err
	}
	if !hash.CheckPassword(user.PasswordHash, current) {
		return domain.ErrInvalidPassword
	}
	if err := validatePassword(next); err != nil {
		return err
	}

	pwHash, err := hash.HashPassword(next)
	if err != nil {
		l.Error("update_password_error", "reason", "cannot hash the password", "error", err)
		return err
	}
	if err := s.Repo.UpdatePasswordHash(ctx, id, pwHash); err != nil {
		return notFound(err, domain.ErrUserNotFound, "user")
	}
	l.Info("password_updated")
	return nil
}

// DeleteAccount removes the user with their products and cart rows.
// Orders are kept.
func (s *AuthService) DeleteAccount(ctx context.Context, id uint) error {
	l := logging.FromContext(ctx).With("svc", "auth.delete", "user_id", id)

	productIDs, err := s.Repo.DeleteUserCascade(ctx, id)
	if err != nil {
		return notFound(err, domain.ErrUserNotFound, "user")
	}

	if s.Index != nil && len(productIDs) > 0 {
		if err := s.Index.DeleteProducts(ctx, productIDs...); err != nil {
			l.Warn("index_error", "reason", "cannot drop products from index", "error", err)
		}
	}

	l.Info("user_deleted", "products_removed", len(productIDs))
	publish(ctx, s.Events, mykafka.TopicUsers, key(id), "user_deleted", map[string]any{
		"user_id":     id,
		"product_ids": productIDs,
	})
	return nil
}

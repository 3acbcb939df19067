package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/BuzzLyutic/taskauth-api/internal/auth"
	"github.com/BuzzLyutic/taskauth-api/internal/model"
	"github.com/BuzzLyutic/taskauth-api/internal/repo"
)

const (
	TokenTypeBearer = "bearer"

	maxPasswordBytes = 72
)

type TokenIssuer interface {
	Issue(subject string, ttl time.Duration) (string, error)
	Verify(token string) (string, error)
	TTL() time.Duration
}

type UserService struct {
	users  repo.UserRepository
	hasher auth.PasswordHasher
	tokens TokenIssuer
	logger *zap.Logger
}

func NewUserService(users repo.UserRepository, hasher auth.PasswordHasher, tokens TokenIssuer, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{
		users:  users,
		hasher: hasher,
		tokens: tokens,
		logger: logger,
	}
}

// NormalizeEmail is applied to every email before it reaches the store.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *UserService) Register(ctx context.Context, email, password string) (model.User, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return model.User{}, fmt.Errorf("%w: email is required", ErrValidation)
	}
	// bcrypt only reads the first 72 bytes.
	if len(password) == 0 || len(password) > maxPasswordBytes {
		return model.User{}, fmt.Errorf("%w: password must be 1..%d bytes", ErrValidation, maxPasswordBytes)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return model.User{}, err
	}

	u, err := s.users.CreateUser(ctx, model.User{
		Email:          email,
		HashedPassword: hash,
		IsActive:       true,
	})
	if err != nil {
		if errors.Is(err, repo.ErrorConflict) {
			s.logger.Debug("registration with existing email", zap.String("email", email))
			return model.User{}, ErrDuplicateIdentity
		}
		return model.User{}, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("user registered", zap.Int64("user_id", u.ID), zap.String("email", u.Email))
	return u, nil
}

// Authenticate does not reveal whether the email or the password was wrong.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (model.User, error) {
	u, err := s.users.GetUserByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, repo.ErrorNotFound) {
			return model.User{}, ErrInvalidCredentials
		}
		return model.User{}, fmt.Errorf("lookup user: %w", err)
	}

	if err := s.hasher.Compare(u.HashedPassword, password); err != nil {
		if !errors.Is(err, auth.ErrPasswordMismatch) {
			s.logger.Error("password compare failed", zap.Int64("user_id", u.ID), zap.Error(err))
		}
		return model.User{}, ErrInvalidCredentials
	}
	return u, nil
}

func (s *UserService) Login(ctx context.Context, email, password string) (model.Token, error) {
	u, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return model.Token{}, err
	}

	ttl := s.tokens.TTL()
	token, err := s.tokens.Issue(u.Email, ttl)
	if err != nil {
		return model.Token{}, err
	}

	return model.Token{
		AccessToken: token,
		TokenType:   TokenTypeBearer,
		ExpiresIn:   int(ttl.Seconds()),
	}, nil
}

// Resolve maps a bearer token to an active user.
func (s *UserService) Resolve(ctx context.Context, token string) (model.User, error) {
	subject, err := s.tokens.Verify(token)
	if err != nil {
		return model.User{}, err
	}

	u, err := s.users.GetUserByEmail(ctx, subject)
	if err != nil {
		if errors.Is(err, repo.ErrorNotFound) {
			return model.User{}, auth.ErrTokenInvalid
		}
		return model.User{}, fmt.Errorf("lookup token subject: %w", err)
	}
	if !u.IsActive {
		return model.User{}, ErrInactiveUser
	}
	return u, nil
}

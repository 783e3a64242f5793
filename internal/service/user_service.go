package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/tasklane-api/internal/domain"
	"github.com/phrazzld/tasklane-api/internal/platform/logger"
	"github.com/phrazzld/tasklane-api/internal/schema"
	"github.com/phrazzld/tasklane-api/internal/service/auth"
	"github.com/phrazzld/tasklane-api/internal/store"
)

// Session is the outcome of a successful signup or signin.
type Session struct {
	User      *domain.User
	Token     string
	ExpiresAt time.Time
}

// UserService provides account operations.
type UserService interface {
	// Signup registers a new account and opens a session for it.
	// Returns store.ErrEmailExists when the email is taken.
	Signup(ctx context.Context, creds schema.Credentials) (*Session, error)

	// Signin checks credentials and opens a session.
	// Returns ErrInvalidCredentials when the email or password is wrong.
	Signin(ctx context.Context, creds schema.Credentials) (*Session, error)

	// GetUser retrieves a user by their ID
	GetUser(ctx context.Context, userID int64) (*domain.User, error)
}

// UserServiceImpl implements the UserService interface
type UserServiceImpl struct {
	userStore store.UserStore
	hasher    auth.PasswordHasher
	verifier  auth.PasswordVerifier
	tokens    auth.JWTService
	logger    *slog.Logger
	now       func() time.Time
}

var _ UserService = (*UserServiceImpl)(nil)

// NewUserService creates a new UserService
func NewUserService(
	userStore store.UserStore,
	hasher auth.PasswordHasher,
	verifier auth.PasswordVerifier,
	tokens auth.JWTService,
	logger *slog.Logger,
) (*UserServiceImpl, error) {
	if userStore == nil || hasher == nil || verifier == nil || tokens == nil {
		return nil, fmt.Errorf("%w: user service collaborators", ErrNilDependency)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &UserServiceImpl{
		userStore: userStore,
		hasher:    hasher,
		verifier:  verifier,
		tokens:    tokens,
		logger:    logger.With("component", "user_service"),
		now:       time.Now,
	}, nil
}

// Signup implements UserService.
func (s *UserServiceImpl) Signup(ctx context.Context, creds schema.Credentials) (*Session, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	creds.Email = domain.NormalizeEmail(creds.Email)
	if err := schema.ValidateCredentials(creds); err != nil {
		return nil, err
	}

	hashed, err := s.hasher.Hash(creds.Password)
	if err != nil {
		log.Error("failed to hash password", "error", err)
		return nil, NewUserServiceError("signup", err)
	}

	user := domain.NewUser(creds.Email, hashed)
	if err := s.userStore.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			log.Debug("attempted to create user with existing email", "email", user.Email)
		} else {
			log.Error("failed to save user to database", "error", err, "email", user.Email)
		}
		return nil, NewUserServiceError("signup", err)
	}

	log.Info("user created successfully", "user_id", user.ID)
	return s.openSession(ctx, "signup", user)
}

// Signin implements UserService.
func (s *UserServiceImpl) Signin(ctx context.Context, creds schema.Credentials) (*Session, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	creds.Email = domain.NormalizeEmail(creds.Email)
	if err := schema.ValidateCredentials(creds); err != nil {
		return nil, err
	}

	user, err := s.userStore.GetByEmail(ctx, creds.Email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			log.Debug("signin for unknown email")
			return nil, ErrInvalidCredentials
		}
		log.Error("failed to retrieve user by email", "error", err)
		return nil, NewUserServiceError("signin", err)
	}

	if err := s.verifier.Compare(user.HashedPassword, creds.Password); err != nil {
		if !errors.Is(err, auth.ErrPasswordMismatch) {
			log.Error("password comparison failed", "error", err, "user_id", user.ID)
		}
		return nil, ErrInvalidCredentials
	}

	return s.openSession(ctx, "signin", user)
}

// GetUser implements UserService.
func (s *UserServiceImpl) GetUser(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.userStore.GetByID(ctx, userID)
	if err != nil {
		return nil, NewUserServiceError("get", err)
	}
	return user, nil
}

func (s *UserServiceImpl) openSession(ctx context.Context, op string, user *domain.User) (*Session, error) {
	token, err := s.tokens.GenerateToken(ctx, user.ID)
	if err != nil {
		return nil, NewUserServiceError(op, err)
	}
	return &Session{
		User:      user,
		Token:     token,
		ExpiresAt: s.now().Add(s.tokens.Lifetime()),
	}, nil
}

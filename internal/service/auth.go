// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/carepredict/authapi/internal/auth"
	"github.com/carepredict/authapi/internal/metrics"
	"github.com/carepredict/authapi/internal/model"
	"github.com/carepredict/authapi/internal/repository"
)

// DefaultTokenTTL is the lifetime of access tokens issued at login.
const DefaultTokenTTL = 60 * time.Minute

// Service errors.
var (
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrDuplicateUsername  = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// UserStore is the persistence collaborator for users. CreateUser must
// reject duplicates atomically with repository.ErrEmailExists or
// repository.ErrUsernameExists.
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
}

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, encodedHash string) (bool, error)
}

// TokenCodec issues and verifies access tokens.
type TokenCodec interface {
	Issue(subject string, ttl time.Duration) (string, error)
	Verify(token string) (string, error)
}

// SignupInput is a validated signup request.
type SignupInput struct {
	Username string
	Email    string
	Password string
}

// LoginInput is a validated login request.
type LoginInput struct {
	Email    string
	Password string
}

// AuthService implements signup, login and session resolution.
type AuthService struct {
	users    UserStore
	hasher   PasswordHasher
	tokens   TokenCodec
	tokenTTL time.Duration
	logger   *slog.Logger
	metrics  metrics.Recorder

	dummyHash string
}

// AuthOption customises an AuthService.
type AuthOption func(*AuthService)

// WithTokenTTL overrides the access token lifetime.
func WithTokenTTL(ttl time.Duration) AuthOption {
	return func(s *AuthService) {
		if ttl > 0 {
			s.tokenTTL = ttl
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) AuthOption {
	return func(s *AuthService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(recorder metrics.Recorder) AuthOption {
	return func(s *AuthService) {
		if recorder != nil {
			s.metrics = recorder
		}
	}
}

// NewAuthService creates an AuthService. It hashes a throwaway password so
// that logins for unknown emails cost one verification like any other.
func NewAuthService(users UserStore, hasher PasswordHasher, tokens TokenCodec, opts ...AuthOption) (*AuthService, error) {
	s := &AuthService{
		users:    users,
		hasher:   hasher,
		tokens:   tokens,
		tokenTTL: DefaultTokenTTL,
		logger:   slog.Default(),
		metrics:  metrics.NewNoop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	dummy, err := hasher.Hash(ulid.Make().String())
	if err != nil {
		return nil, fmt.Errorf("prepare dummy hash: %w", err)
	}
	s.dummyHash = dummy
	return s, nil
}

// Signup registers a new user. Email uniqueness is checked before username,
// so a request colliding on both reports ErrDuplicateEmail.
func (s *AuthService) Signup(ctx context.Context, input SignupInput) (*model.User, error) {
	if _, err := s.users.GetUserByEmail(ctx, input.Email); err == nil {
		s.metrics.IncSignup(metrics.OutcomeDuplicateEmail)
		return nil, ErrDuplicateEmail
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		s.metrics.IncSignup(metrics.OutcomeError)
		return nil, fmt.Errorf("lookup email: %w", err)
	}

	if _, err := s.users.GetUserByUsername(ctx, input.Username); err == nil {
		s.metrics.IncSignup(metrics.OutcomeDuplicateUsername)
		return nil, ErrDuplicateUsername
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		s.metrics.IncSignup(metrics.OutcomeError)
		return nil, fmt.Errorf("lookup username: %w", err)
	}

	hash, err := s.hash(input.Password)
	if err != nil {
		s.metrics.IncSignup(metrics.OutcomeError)
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		ID:           ulid.Make().String(),
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}

	// A concurrent signup may have claimed the email or username since the
	// checks above; the store's constraint decides.
	if err := s.users.CreateUser(ctx, user); err != nil {
		switch {
		case errors.Is(err, repository.ErrEmailExists):
			s.metrics.IncSignup(metrics.OutcomeDuplicateEmail)
			return nil, ErrDuplicateEmail
		case errors.Is(err, repository.ErrUsernameExists):
			s.metrics.IncSignup(metrics.OutcomeDuplicateUsername)
			return nil, ErrDuplicateUsername
		default:
			s.metrics.IncSignup(metrics.OutcomeError)
			return nil, fmt.Errorf("create user: %w", err)
		}
	}

	s.metrics.IncSignup(metrics.OutcomeSuccess)
	s.logger.Info("user registered", "user_id", user.ID)
	return user, nil
}

// Login checks credentials and returns a signed access token whose subject
// is the user's email. Unknown email and wrong password both return
// ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (string, error) {
	user, err := s.users.GetUserByEmail(ctx, input.Email)
	if err != nil {
		if !errors.Is(err, repository.ErrUserNotFound) {
			s.metrics.IncLogin(metrics.OutcomeError)
			return "", fmt.Errorf("lookup user: %w", err)
		}
		_, _ = s.verify(input.Password, s.dummyHash)
		s.metrics.IncLogin(metrics.OutcomeInvalid)
		return "", ErrInvalidCredentials
	}

	ok, err := s.verify(input.Password, user.PasswordHash)
	if err != nil {
		s.logger.Error("stored password hash is unreadable",
			"user_id", user.ID,
			"error", err,
		)
		s.metrics.IncLogin(metrics.OutcomeInvalid)
		return "", ErrInvalidCredentials
	}
	if !ok {
		s.metrics.IncLogin(metrics.OutcomeInvalid)
		return "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.Email, s.tokenTTL)
	if err != nil {
		s.metrics.IncLogin(metrics.OutcomeError)
		return "", fmt.Errorf("issue token: %w", err)
	}

	s.metrics.IncLogin(metrics.OutcomeSuccess)
	return token, nil
}

// ResolveSession maps a bearer token to the user it names. Every token
// failure, and a subject that no longer exists, is ErrInvalidCredentials.
func (s *AuthService) ResolveSession(ctx context.Context, token string) (*model.User, error) {
	email, err := s.tokens.Verify(token)
	if err != nil {
		s.logger.Debug("token rejected", "reason", tokenFailureReason(err))
		s.metrics.IncSessionResolve(metrics.OutcomeInvalid)
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.logger.Debug("token rejected", "reason", "unknown_subject")
			s.metrics.IncSessionResolve(metrics.OutcomeInvalid)
			return nil, ErrInvalidCredentials
		}
		s.metrics.IncSessionResolve(metrics.OutcomeError)
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	s.metrics.IncSessionResolve(metrics.OutcomeSuccess)
	return user, nil
}

// TokenTTL returns the lifetime of issued tokens.
func (s *AuthService) TokenTTL() time.Duration {
	return s.tokenTTL
}

func (s *AuthService) hash(password string) (string, error) {
	start := time.Now()
	defer func() { s.metrics.ObservePasswordHash(time.Since(start)) }()
	return s.hasher.Hash(password)
}

func (s *AuthService) verify(password, encodedHash string) (bool, error) {
	start := time.Now()
	defer func() { s.metrics.ObservePasswordHash(time.Since(start)) }()
	return s.hasher.Verify(password, encodedHash)
}

func tokenFailureReason(err error) string {
	switch {
	case errors.Is(err, auth.ErrInvalidSignature):
		return "invalid_signature"
	case errors.Is(err, auth.ErrTokenExpired):
		return "expired"
	case errors.Is(err, auth.ErrMalformedToken):
		return "malformed"
	default:
		return "unknown"
	}
}

package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strconv"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/redmonkez12/go-auth-service/internal/config"
	"github.com/redmonkez12/go-auth-service/internal/logging"
	"github.com/redmonkez12/go-auth-service/internal/user"
)

const (
	minPasswordLen = 8
	maxPasswordLen = 72 // bytes, bcrypt's input limit
	maxEmailLen    = 254

	TokenTypeBearer = "bearer"
)

// AuthToken is returned by a successful login.
type AuthToken struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"` // seconds
}

// Service handles authentication business logic
type Service struct {
	users    UserRepository
	hasher   PasswordHasher
	tokens   TokenService
	logger   *logging.Logger
	tokenTTL time.Duration

	dummyOnce sync.Once
	dummyHash string
}

func NewService(
	cfg *config.AuthConfig,
	users UserRepository,
	hasher PasswordHasher,
	tokens TokenService,
	logger *logging.Logger,
) *Service {
	return &Service{
		users:    users,
		hasher:   hasher,
		tokens:   tokens,
		logger:   logger,
		tokenTTL: cfg.AccessTokenTTL,
	}
}

// NewTokenService builds the token implementation selected by cfg.TokenFormat.
func NewTokenService(cfg *config.AuthConfig) (TokenService, error) {
	switch cfg.TokenFormat {
	case config.TokenFormatJWT:
		return NewJWTService([]byte(cfg.TokenSecret), cfg.TokenIssuer), nil
	case config.TokenFormatPaseto:
		return NewPasetoService([]byte(cfg.TokenSecret), cfg.TokenIssuer)
	default:
		return nil, fmt.Errorf("unsupported token format: %s", cfg.TokenFormat)
	}
}

// Register creates a new active user account.
func (s *Service) Register(ctx context.Context, email string, displayName *string, password string) (*user.User, error) {
	email = user.NormalizeEmail(email)
	if err := validateCredentialShape(email, displayName, password); err != nil {
		return nil, err
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailAlreadyRegistered
	} else if !errors.Is(err, user.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	passwordHash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	newUser, err := s.users.Create(ctx, &user.User{
		Email:        email,
		PasswordHash: passwordHash,
		DisplayName:  displayName,
		Role:         user.RoleUser,
		Active:       true,
		Premium:      false,
	})
	if err != nil {
		// Lost a race with a concurrent registration for the same email.
		if errors.Is(err, user.ErrDuplicateEmail) {
			return nil, ErrEmailAlreadyRegistered
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("user registered", "user_id", newUser.ID)

	return newUser, nil
}

// Login verifies credentials and issues an access token.
// Unknown email, wrong password and a disabled account are indistinguishable.
func (s *Service) Login(ctx context.Context, email, password string) (*AuthToken, error) {
	// No stored password can be this long, and bcrypt would truncate it.
	if len(password) > maxPasswordLen {
		s.burnVerify(password[:maxPasswordLen])
		return nil, ErrInvalidCredentials
	}

	existingUser, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			s.burnVerify(password)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	ok, err := s.hasher.Verify(password, existingUser.PasswordHash)
	if err != nil {
		s.logger.Error("stored password hash is unreadable", "user_id", existingUser.ID, "error", err)
		return nil, ErrInvalidCredentials
	}
	if !ok || !existingUser.Active {
		return nil, ErrInvalidCredentials
	}

	accessToken, err := s.tokens.Issue(strconv.FormatInt(existingUser.ID, 10), s.tokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	if s.hasher.NeedsRehash(existingUser.PasswordHash) {
		s.rehash(ctx, existingUser.ID, password)
	}

	return &AuthToken{
		AccessToken: accessToken,
		TokenType:   TokenTypeBearer,
		ExpiresIn:   int64(s.tokenTTL / time.Second),
	}, nil
}

// Identify resolves the user a token was issued to.
// Every token or identity failure is reported as ErrUnauthorized.
func (s *Service) Identify(ctx context.Context, token string) (*user.User, error) {
	subject, err := s.tokens.Validate(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}

	id, err := strconv.ParseInt(subject, 10, 64)
	if err != nil || id <= 0 {
		return nil, fmt.Errorf("%w: invalid subject", ErrUnauthorized)
	}

	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, fmt.Errorf("%w: %w", ErrUnauthorized, err)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !u.Active {
		return nil, fmt.Errorf("%w: account disabled", ErrUnauthorized)
	}

	return u, nil
}

// burnVerify runs a verification against a throwaway hash so a login for an
// unknown email costs about as much as one for a known email.
func (s *Service) burnVerify(password string) {
	s.dummyOnce.Do(func() {
		hash, err := s.hasher.Hash("not-a-real-password")
		if err != nil {
			s.logger.Warn("failed to prepare dummy hash", "error", err)
			return
		}
		s.dummyHash = hash
	})
	if s.dummyHash != "" {
		_, _ = s.hasher.Verify(password, s.dummyHash)
	}
}

// rehash upgrades a stored hash to the configured scheme. Failures are logged only.
func (s *Service) rehash(ctx context.Context, id int64, password string) {
	newHash, err := s.hasher.Hash(password)
	if err != nil {
		s.logger.Warn("failed to rehash password", "user_id", id, "error", err)
		return
	}
	if err := s.users.UpdatePasswordHash(ctx, id, newHash); err != nil {
		s.logger.Warn("failed to store rehashed password", "user_id", id, "error", err)
		return
	}
	s.logger.Info("password hash upgraded", "user_id", id)
}

func validateCredentialShape(email string, displayName *string, password string) error {
	if email == "" || len(email) > maxEmailLen {
		return ErrInvalidCredentialShape
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || addr.Name != "" {
		return ErrInvalidCredentialShape
	}

	if len(password) < minPasswordLen || len(password) > maxPasswordLen {
		return ErrInvalidCredentialShape
	}

	if displayName != nil && utf8.RuneCountInString(*displayName) > user.MaxDisplayNameLength {
		return ErrInvalidCredentialShape
	}

	return nil
}

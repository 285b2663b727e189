package auth

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	domain "authsvc/backend/internal/domain/auth"

	"github.com/google/uuid"
)

const (
	tokenKindAccess  = "access"
	tokenKindRefresh = "refresh"

	minPasswordLength = 6
)

// TokenType is the scheme clients present issued tokens under.
const TokenType = "Bearer"

// Result is the outcome of a successful login, register, or refresh: a
// freshly minted token pair plus an optional user summary.
type Result struct {
	AccessToken  string
	RefreshToken string
	TokenType    string
	ExpiresIn    int64 // access token lifetime in milliseconds
	User         *domain.User
}

// Service coordinates authentication workflows between domain and
// infrastructure. It holds no state of its own beyond configuration.
type Service struct {
	users      domain.UserRepository
	codec      TokenCodec
	hasher     *PasswordHasher
	accessTTL  time.Duration
	refreshTTL time.Duration
	nowFunc    func() time.Time
}

// NewService constructs an auth service.
func NewService(users domain.UserRepository, codec TokenCodec, hasher *PasswordHasher, accessTTL, refreshTTL time.Duration) *Service {
	return &Service{
		users:      users,
		codec:      codec,
		hasher:     hasher,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		nowFunc:    time.Now,
	}
}

// Login validates credentials and mints a token pair. Unknown usernames and
// wrong passwords are indistinguishable to the caller; the distinction is
// visible only in server logs.
func (s *Service) Login(ctx context.Context, creds domain.Credentials) (*Result, error) {
	username := strings.TrimSpace(creds.Username)
	password := creds.Password
	if username == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			log.Printf("login rejected: unknown user %q", username)
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if !s.hasher.Matches(password, user.PasswordHash) {
		log.Printf("login rejected: bad password for %q", username)
		return nil, domain.ErrInvalidCredentials
	}

	return s.issueTokens(user, true)
}

// Register creates a new identity with the default role and mints a token
// pair. Username uniqueness is enforced by the store's constraint, so
// concurrent registrations of the same name produce exactly one identity.
func (s *Service) Register(ctx context.Context, username, email, password string) (*Result, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(strings.ToLower(email))
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", domain.ErrInvalidInput)
	}
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", domain.ErrInvalidInput)
	}
	if len(password) < minPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least 6 characters", domain.ErrInvalidInput)
	}

	hashed, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	now := s.nowFunc().UTC()
	user := &domain.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		Roles:        []domain.Role{domain.RoleUser},
		PasswordHash: hashed,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	return s.issueTokens(user, false)
}

// Refresh exchanges a valid refresh token for a new token pair. Access
// tokens are rejected here.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*Result, error) {
	claims, err := s.codec.Verify(refreshToken)
	if err != nil {
		return nil, err
	}
	if claims.Kind() != tokenKindRefresh {
		return nil, domain.ErrTokenMalformed
	}

	user, err := s.users.GetByUsername(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrTokenMalformed
		}
		return nil, err
	}

	return s.issueTokens(user, true)
}

// Authenticate verifies a bearer access token and resolves the subject to
// a stored identity. Refresh tokens are not bearer credentials.
func (s *Service) Authenticate(ctx context.Context, accessToken string) (*domain.User, error) {
	claims, err := s.codec.Verify(accessToken)
	if err != nil {
		return nil, err
	}
	if claims.Kind() == tokenKindRefresh {
		return nil, domain.ErrTokenMalformed
	}

	// A token whose subject no longer resolves to a stored identity is not
	// a usable credential, regardless of its signature.
	user, err := s.users.GetByUsername(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrTokenMalformed
		}
		return nil, err
	}
	return sanitizeUser(user), nil
}

func (s *Service) issueTokens(user *domain.User, includeUser bool) (*Result, error) {
	access, err := s.codec.Issue(user.Username, map[string]any{
		"typ":   tokenKindAccess,
		"roles": user.RoleNames(),
	}, s.accessTTL)
	if err != nil {
		return nil, err
	}

	refresh, err := s.codec.Issue(user.Username, map[string]any{
		"typ": tokenKindRefresh,
	}, s.refreshTTL)
	if err != nil {
		return nil, err
	}

	result := &Result{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    TokenType,
		ExpiresIn:    s.accessTTL.Milliseconds(),
	}
	if includeUser {
		result.User = sanitizeUser(user)
	}
	return result, nil
}

func sanitizeUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	copy := *u
	copy.PasswordHash = ""
	return &copy
}

package user

import (
	"context"
	"fmt"
	"strings"

	domain "authsvc/backend/internal/domain/auth"
)

// Service provides profile and administrative read use cases over the
// identity store.
type Service struct {
	repo domain.UserRepository
}

// NewService constructs a user service around the provided repository.
func NewService(repo domain.UserRepository) *Service {
	return &Service{repo: repo}
}

// Filter captures supported filters for listing users.
type Filter struct {
	Role string
}

// Profile returns the identity for the given username without its hash.
func (s *Service) Profile(ctx context.Context, username string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", domain.ErrInvalidInput)
	}
	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return sanitizeUser(user), nil
}

// UpdateEmail changes the contact email of the identified user.
func (s *Service) UpdateEmail(ctx context.Context, id, email string) (*domain.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", domain.ErrInvalidInput)
	}
	user, err := s.repo.UpdateEmail(ctx, id, email)
	if err != nil {
		return nil, err
	}
	return sanitizeUser(user), nil
}

// List returns users matching the supplied filter.
func (s *Service) List(ctx context.Context, filter Filter) ([]*domain.User, error) {
	domainFilter := domain.UserFilter{}
	if trimmed := strings.TrimSpace(strings.ToUpper(filter.Role)); trimmed != "" {
		switch role := domain.Role(trimmed); role {
		case domain.RoleUser, domain.RoleAdmin:
			domainFilter.Role = role
		default:
			return nil, domain.ErrInvalidRole
		}
	}

	users, err := s.repo.List(ctx, domainFilter)
	if err != nil {
		return nil, err
	}
	return sanitizeUsers(users), nil
}

func sanitizeUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	copy := *u
	copy.PasswordHash = ""
	return &copy
}

func sanitizeUsers(items []*domain.User) []*domain.User {
	out := make([]*domain.User, 0, len(items))
	for _, item := range items {
		out = append(out, sanitizeUser(item))
	}
	return out
}

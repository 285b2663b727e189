package auth

import "context"

// UserRepository defines persistence operations for identities. Create must
// enforce username uniqueness atomically and return ErrUsernameTaken on a
// duplicate; a check-then-insert sequence is not a substitute.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	List(ctx context.Context, filter UserFilter) ([]*User, error)
	UpdateEmail(ctx context.Context, id, email string) (*User, error)
}

// UserFilter allows narrowing user queries.
type UserFilter struct {
	Role Role
}

package auth_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	domain "authsvc/backend/internal/domain/auth"
	"authsvc/backend/internal/infrastructure/token"
	auth "authsvc/backend/internal/usecase/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// memoryUsers is an in-memory UserRepository enforcing username uniqueness
// atomically, mirroring the database constraint.
type memoryUsers struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{users: make(map[string]*domain.User)}
}

func (m *memoryUsers) Create(_ context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.users[user.Username]; exists {
		return domain.ErrUsernameTaken
	}
	stored := *user
	m.users[user.Username] = &stored
	return nil
}

func (m *memoryUsers) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[username]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	found := *user
	return &found, nil
}

func (m *memoryUsers) GetByID(_ context.Context, id string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.users {
		if user.ID == id {
			found := *user
			return &found, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (m *memoryUsers) List(_ context.Context, filter domain.UserFilter) ([]*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.User
	for _, user := range m.users {
		if filter.Role != "" && !user.HasRole(filter.Role) {
			continue
		}
		found := *user
		out = append(out, &found)
	}
	return out, nil
}

func (m *memoryUsers) UpdateEmail(_ context.Context, id, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.users {
		if user.ID == id {
			user.Email = email
			user.UpdatedAt = time.Now().UTC()
			found := *user
			return &found, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func newTestService(accessTTL, refreshTTL time.Duration) (*auth.Service, *memoryUsers) {
	repo := newMemoryUsers()
	codec := token.NewCodec("0123456789abcdef0123456789abcdef", "authsvc-test")
	hasher := auth.NewPasswordHasher(bcrypt.MinCost)
	return auth.NewService(repo, codec, hasher, accessTTL, refreshTTL), repo
}

func TestRegisterThenLogin(t *testing.T) {
	svc, _ := newTestService(time.Hour, 24*time.Hour)
	ctx := context.Background()

	registered, err := svc.Register(ctx, "alice", "a@x.com", "secret1")
	require.NoError(t, err)
	assert.NotEmpty(t, registered.AccessToken)
	assert.NotEmpty(t, registered.RefreshToken)
	assert.Equal(t, "Bearer", registered.TokenType)
	assert.Equal(t, time.Hour.Milliseconds(), registered.ExpiresIn)
	assert.Nil(t, registered.User)

	result, err := svc.Login(ctx, domain.Credentials{Username: "alice", Password: "secret1"})
	require.NoError(t, err)
	require.NotNil(t, result.User)
	assert.Equal(t, "alice", result.User.Username)
	assert.Equal(t, "a@x.com", result.User.Email)
	assert.Equal(t, []string{"USER"}, result.User.RoleNames())
	assert.Empty(t, result.User.PasswordHash)

	// The issued access token authenticates back to the same subject.
	user, err := svc.Authenticate(ctx, result.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	svc, _ := newTestService(time.Hour, 24*time.Hour)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "a@x.com", "secret1")
	require.NoError(t, err)

	_, wrongPassword := svc.Login(ctx, domain.Credentials{Username: "alice", Password: "wrong"})
	_, unknownUser := svc.Login(ctx, domain.Credentials{Username: "nobody", Password: "secret1"})

	assert.ErrorIs(t, wrongPassword, domain.ErrInvalidCredentials)
	assert.ErrorIs(t, unknownUser, domain.ErrInvalidCredentials)
	assert.Equal(t, wrongPassword, unknownUser)
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newTestService(time.Hour, 24*time.Hour)
	ctx := context.Background()

	_, err := svc.Register(ctx, "", "a@x.com", "secret1")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.Register(ctx, "alice", "", "secret1")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.Register(ctx, "alice", "a@x.com", "short")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	svc, _ := newTestService(time.Hour, 24*time.Hour)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "a@x.com", "secret1")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "alice", "other@x.com", "secret2")
	assert.ErrorIs(t, err, domain.ErrUsernameTaken)
}

func TestRegisterConcurrentSameUsername(t *testing.T) {
	svc, repo := newTestService(time.Hour, 24*time.Hour)
	ctx := context.Background()

	const attempts = 10
	errs := make(chan error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Register(ctx, "alice", "a@x.com", "secret1")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var succeeded, taken int
	for err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, domain.ErrUsernameTaken):
			taken++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, attempts-1, taken)
	assert.Len(t, repo.users, 1)
}

func TestRefreshFlow(t *testing.T) {
	svc, _ := newTestService(time.Hour, 24*time.Hour)
	ctx := context.Background()

	registered, err := svc.Register(ctx, "alice", "a@x.com", "secret1")
	require.NoError(t, err)

	refreshed, err := svc.Refresh(ctx, registered.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)
	assert.NotEmpty(t, refreshed.RefreshToken)
	require.NotNil(t, refreshed.User)
	assert.Equal(t, "alice", refreshed.User.Username)

	// An access token is not accepted by the refresh path.
	_, err = svc.Refresh(ctx, registered.AccessToken)
	assert.ErrorIs(t, err, domain.ErrTokenMalformed)
}

func TestAuthenticateRejectsRefreshToken(t *testing.T) {
	svc, _ := newTestService(time.Hour, 24*time.Hour)
	ctx := context.Background()

	registered, err := svc.Register(ctx, "alice", "a@x.com", "secret1")
	require.NoError(t, err)

	_, err = svc.Authenticate(ctx, registered.RefreshToken)
	assert.ErrorIs(t, err, domain.ErrTokenMalformed)
}

func TestAuthenticateExpiredToken(t *testing.T) {
	svc, _ := newTestService(-time.Minute, 24*time.Hour)
	ctx := context.Background()

	registered, err := svc.Register(ctx, "alice", "a@x.com", "secret1")
	require.NoError(t, err)

	_, err = svc.Authenticate(ctx, registered.AccessToken)
	assert.ErrorIs(t, err, domain.ErrTokenExpired)
}

func TestAuthenticateUnknownSubject(t *testing.T) {
	svc, repo := newTestService(time.Hour, 24*time.Hour)
	ctx := context.Background()

	registered, err := svc.Register(ctx, "alice", "a@x.com", "secret1")
	require.NoError(t, err)

	// A token for an identity no longer in the store does not authenticate.
	repo.mu.Lock()
	delete(repo.users, "alice")
	repo.mu.Unlock()

	_, err = svc.Authenticate(ctx, registered.AccessToken)
	assert.ErrorIs(t, err, domain.ErrTokenMalformed)
}

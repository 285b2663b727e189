package auth_test

import (
	"testing"

	auth "authsvc/backend/internal/usecase/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHasherRoundTrip(t *testing.T) {
	hasher := auth.NewPasswordHasher(bcrypt.MinCost)

	hash, err := hasher.Hash("secret1")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", hash)

	assert.True(t, hasher.Matches("secret1", hash))
	assert.False(t, hasher.Matches("secret2", hash))
	assert.False(t, hasher.Matches("secret1", "not-a-bcrypt-hash"))
}

func TestPasswordHasherSalts(t *testing.T) {
	hasher := auth.NewPasswordHasher(bcrypt.MinCost)

	first, err := hasher.Hash("secret1")
	require.NoError(t, err)
	second, err := hasher.Hash("secret1")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, hasher.Matches("secret1", first))
	assert.True(t, hasher.Matches("secret1", second))
}

func TestPasswordHasherCostFallback(t *testing.T) {
	hasher := auth.NewPasswordHasher(0)

	hash, err := hasher.Hash("secret1")
	require.NoError(t, err)
	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, cost)
}

package auth

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	require.NoError(t, err)
	require.NotEqual(t, "s3cret-pass", hash)

	require.NoError(t, CheckPassword(hash, "s3cret-pass"))
	require.ErrorIs(t, CheckPassword(hash, "wrong"), ErrInvalidCredentials)
	require.ErrorIs(t, CheckPassword("", "anything"), ErrInvalidCredentials)
}

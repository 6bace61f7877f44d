package credentials

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func TestUserKeyFromToken(t *testing.T) {
	token := signedToken(t, jwt.MapClaims{
		"sub": "user-42",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	key, err := UserKeyFromToken(token)

	require.NoError(t, err)
	assert.Equal(t, "user-42", key)
}

func TestUserKeyFromToken_ExpiredTokenStillParses(t *testing.T) {
	// The claim is read without verification; an expired token still
	// yields a stable identity to key local state by.
	token := signedToken(t, jwt.MapClaims{
		"sub": "user-42",
		"exp": time.Now().Add(-time.Hour).Unix(),
	})

	key, err := UserKeyFromToken(token)

	require.NoError(t, err)
	assert.Equal(t, "user-42", key)
}

func TestUserKeyFromToken_MissingSubject(t *testing.T) {
	token := signedToken(t, jwt.MapClaims{"aud": "sync"})

	_, err := UserKeyFromToken(token)

	assert.Error(t, err)
}

func TestUserKeyFromToken_Garbage(t *testing.T) {
	_, err := UserKeyFromToken("not.a.token")

	assert.Error(t, err)
}

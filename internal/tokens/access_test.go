package tokens

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte("test-jwt-secret")

func TestNewAccessToken_SetsExpectedClaims(t *testing.T) {
	t.Parallel()

	exp := time.Now().Add(15 * time.Minute).UTC()
	token, err := NewAccessToken(42, "admin", exp, secret)
	require.NoError(t, err)

	claims, err := AccessClaimsFromToken(token, secret)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Role)
	assert.NotEmpty(t, claims.ID)
	assert.WithinDuration(t, exp, claims.ExpiresAt.Time, time.Second)

	id, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, uint(42), id)
}

func TestAccessClaimsFromToken_Rejects(t *testing.T) {
	t.Parallel()

	expired, err := NewAccessToken(1, "user", time.Now().Add(-time.Minute), secret)
	require.NoError(t, err)
	_, err = AccessClaimsFromToken(expired, secret)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)

	valid, err := NewAccessToken(1, "user", time.Now().Add(time.Minute), secret)
	require.NoError(t, err)
	_, err = AccessClaimsFromToken(valid, []byte("other"))
	assert.Error(t, err)

	_, err = AccessClaimsFromToken("garbage", secret)
	assert.Error(t, err)
}

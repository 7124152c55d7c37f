package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCSV(t *testing.T) {
	t.Parallel()

	assert.Nil(t, CSV(""))
	assert.Equal(t, []string{"a", "b"}, CSV(" a, ,b ,"))
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("SERVER_PORT", "not-a-number")
	t.Setenv("ACCESS_TTL", "")
	t.Setenv("ADMIN_USERNAMES", "root, ops")

	cfg := Load()

	assert.Equal(t, DefaultDatabaseURL, cfg.DatabaseURL)
	assert.Equal(t, 8080, cfg.ServerPort)
	assert.Equal(t, 15*time.Minute, cfg.AccessTTL)
	assert.Equal(t, []string{"root", "ops"}, cfg.AdminUsers)
	assert.Equal(t, 3, cfg.CheckoutMaxAttempts)
}

func TestEnvDurationDefault(t *testing.T) {
	t.Setenv("HTTP_TIMEOUT", "3s")
	assert.Equal(t, 3*time.Second, EnvDurationDefault("HTTP_TIMEOUT", time.Second))

	t.Setenv("HTTP_TIMEOUT", "soon")
	assert.Equal(t, time.Second, EnvDurationDefault("HTTP_TIMEOUT", time.Second))
}

func TestEnvBoolDefault(t *testing.T) {
	t.Setenv("COOKIE_SECURE", "true")
	assert.True(t, Load().CookieSecure)

	t.Setenv("COOKIE_SECURE", "maybe")
	assert.False(t, EnvBoolDefault("COOKIE_SECURE", false))
}

func TestValidateServe(t *testing.T) {
	t.Parallel()

	cfg := Config{ServerPort: 8080}
	assert.ErrorContains(t, cfg.ValidateServe(), "JWT_SECRET")

	cfg.JWTSecret = []byte("s")
	assert.NoError(t, cfg.ValidateServe())

	cfg.ServerPort = 0
	assert.ErrorContains(t, cfg.ValidateServe(), "SERVER_PORT")
}

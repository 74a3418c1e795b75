package auth_test

import (
	"testing"
	"time"

	"github.com/flexilearn/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigDefaults(t *testing.T) {
	cfg := auth.NewConfig("secret")

	assert.Equal(t, "secret", cfg.GetSigningKey())
	assert.Equal(t, "HS256", cfg.GetSigningMethod())
	assert.Equal(t, "user", cfg.GetContextKey())
	assert.Equal(t, 24, cfg.GetTokenExpiration())
	assert.Equal(t, "flexilearn", cfg.GetIssuer())
	assert.Equal(t, []string{"flexilearn"}, cfg.GetAudience())
	assert.Equal(t, auth.DefaultStudentEmailDomain, cfg.GetStudentEmailDomain())
	assert.True(t, cfg.GetVerificationRequired())

	policy := cfg.GetLockoutPolicy()
	assert.Equal(t, 5, policy.MaxAttempts)
	assert.Equal(t, 15*time.Minute, policy.LockDuration)
}

func TestNewConfigFromEnv(t *testing.T) {
	t.Run("requires signing key", func(t *testing.T) {
		t.Setenv("AUTH_SIGNING_KEY", "")

		_, err := auth.NewConfigFromEnv()
		assert.Error(t, err)
	})

	t.Run("reads overrides", func(t *testing.T) {
		t.Setenv("AUTH_SIGNING_KEY", "env-secret")
		t.Setenv("AUTH_ISSUER", "campus")
		t.Setenv("AUTH_BASE_URL", "https://campus.example.com")
		t.Setenv("AUTH_TOKEN_EXPIRATION", "48")
		t.Setenv("AUTH_VERIFICATION_REQUIRED", "false")
		t.Setenv("AUTH_LOCKOUT_MAX_ATTEMPTS", "10")
		t.Setenv("AUTH_LOCKOUT_DURATION", "10s")

		cfg, err := auth.NewConfigFromEnv()
		require.NoError(t, err)

		assert.Equal(t, "env-secret", cfg.GetSigningKey())
		assert.Equal(t, "campus", cfg.GetIssuer())
		assert.Equal(t, "https://campus.example.com", cfg.GetBaseURL())
		assert.Equal(t, 48, cfg.GetTokenExpiration())
		assert.False(t, cfg.GetVerificationRequired())

		policy := cfg.GetLockoutPolicy()
		assert.Equal(t, 10, policy.MaxAttempts)
		assert.Equal(t, 10*time.Second, policy.LockDuration)
	})

	t.Run("ignores malformed overrides", func(t *testing.T) {
		t.Setenv("AUTH_SIGNING_KEY", "env-secret")
		t.Setenv("AUTH_TOKEN_EXPIRATION", "soon")
		t.Setenv("AUTH_LOCKOUT_DURATION", "forever")

		cfg, err := auth.NewConfigFromEnv()
		require.NoError(t, err)

		assert.Equal(t, 24, cfg.GetTokenExpiration())
		assert.Equal(t, 15*time.Minute, cfg.GetLockoutPolicy().LockDuration)
	})
}

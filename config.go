package auth

import (
	"errors"
	"os"
	"strconv"
	"time"
)

// SimpleConfig is a plain struct implementation of Config. Fields map to
// environment variables through NewConfigFromEnv.
type SimpleConfig struct {
	SigningKey           string
	SigningMethod        string
	ContextKey           string
	TokenExpiration      int
	Issuer               string
	Audience             []string
	StudentEmailDomain   string
	VerificationRequired bool
	BaseURL              string
	Lockout              LockoutPolicy
}

var _ Config = (*SimpleConfig)(nil)

// NewConfig returns a config with sensible defaults, the signing key is
// the only required value.
func NewConfig(signingKey string) *SimpleConfig {
	return &SimpleConfig{
		SigningKey:           signingKey,
		SigningMethod:        "HS256",
		ContextKey:           "user",
		TokenExpiration:      24,
		Issuer:               "flexilearn",
		Audience:             []string{"flexilearn"},
		StudentEmailDomain:   DefaultStudentEmailDomain,
		VerificationRequired: true,
		BaseURL:              "http://localhost:3000",
		Lockout:              DefaultLockoutPolicy(),
	}
}

// NewConfigFromEnv reads AUTH_* environment variables on top of the
// defaults. AUTH_SIGNING_KEY is required.
func NewConfigFromEnv() (*SimpleConfig, error) {
	key := os.Getenv("AUTH_SIGNING_KEY")
	if key == "" {
		return nil, errors.New("AUTH_SIGNING_KEY is required")
	}

	cfg := NewConfig(key)

	if v := os.Getenv("AUTH_ISSUER"); v != "" {
		cfg.Issuer = v
	}

	if v := os.Getenv("AUTH_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}

	if v := os.Getenv("AUTH_STUDENT_EMAIL_DOMAIN"); v != "" {
		cfg.StudentEmailDomain = v
	}

	if v := os.Getenv("AUTH_TOKEN_EXPIRATION"); v != "" {
		if hours, err := strconv.Atoi(v); err == nil && hours > 0 {
			cfg.TokenExpiration = hours
		}
	}

	if v := os.Getenv("AUTH_VERIFICATION_REQUIRED"); v != "" {
		if required, err := strconv.ParseBool(v); err == nil {
			cfg.VerificationRequired = required
		}
	}

	if v := os.Getenv("AUTH_LOCKOUT_MAX_ATTEMPTS"); v != "" {
		if attempts, err := strconv.Atoi(v); err == nil && attempts > 0 {
			cfg.Lockout.MaxAttempts = attempts
		}
	}

	if v := os.Getenv("AUTH_LOCKOUT_DURATION"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.Lockout.LockDuration = d
		}
	}

	return cfg, nil
}

func (c *SimpleConfig) GetSigningKey() string { return c.SigningKey }

func (c *SimpleConfig) GetSigningMethod() string {
	if c.SigningMethod == "" {
		return "HS256"
	}
	return c.SigningMethod
}

func (c *SimpleConfig) GetContextKey() string {
	if c.ContextKey == "" {
		return "user"
	}
	return c.ContextKey
}

func (c *SimpleConfig) GetTokenExpiration() int {
	if c.TokenExpiration <= 0 {
		return 24
	}
	return c.TokenExpiration
}

func (c *SimpleConfig) GetIssuer() string { return c.Issuer }

func (c *SimpleConfig) GetAudience() []string { return c.Audience }

func (c *SimpleConfig) GetStudentEmailDomain() string {
	if c.StudentEmailDomain == "" {
		return DefaultStudentEmailDomain
	}
	return c.StudentEmailDomain
}

func (c *SimpleConfig) GetVerificationRequired() bool { return c.VerificationRequired }

func (c *SimpleConfig) GetBaseURL() string { return c.BaseURL }

func (c *SimpleConfig) GetLockoutPolicy() LockoutPolicy {
	return c.Lockout.normalized()
}

package auth_test

import (
	"testing"
	"time"

	"github.com/flexilearn/auth"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionObject(t *testing.T) {
	id := uuid.New()
	issued := time.Now()

	session := &auth.SessionObject{
		AccountID:    id.String(),
		Issuer:       "flexilearn",
		Seller:       true,
		IssuedAtTime: &issued,
	}

	assert.Equal(t, id.String(), session.GetAccountID())
	assert.Equal(t, "flexilearn", session.GetIssuer())
	assert.True(t, session.IsSeller())
	assert.False(t, session.IsAdmin())
	assert.Equal(t, &issued, session.GetIssuedAt())

	parsed, err := session.GetAccountUUID()
	require.NoError(t, err)
	assert.Equal(t, id, parsed)

	assert.Contains(t, session.String(), id.String())
	assert.Contains(t, session.String(), "seller=true")
}

func TestSessionObjectBadUUID(t *testing.T) {
	session := &auth.SessionObject{AccountID: "not-a-uuid"}
	_, err := session.GetAccountUUID()
	assert.Error(t, err)
}

func TestSessionFromTokenRoundTrip(t *testing.T) {
	cfg := auth.NewConfig("test-signing-key")
	service := auth.NewTokenService(
		[]byte(cfg.GetSigningKey()),
		cfg.GetTokenExpiration(),
		cfg.GetIssuer(),
		jwt.ClaimStrings(cfg.GetAudience()),
		nil,
	)

	identity := sellerIdentity()
	tokenString, err := service.Generate(identity)
	require.NoError(t, err)

	auther := auth.NewAuthenticator(nil, cfg)
	session, err := auther.SessionFromToken(tokenString)
	require.NoError(t, err)

	assert.Equal(t, "account-123", session.GetAccountID())
	assert.Equal(t, cfg.GetIssuer(), session.GetIssuer())
	assert.True(t, session.IsSeller())
	assert.False(t, session.IsAdmin())
	require.NotNil(t, session.GetIssuedAt())
	assert.WithinDuration(t, time.Now(), *session.GetIssuedAt(), time.Minute)
}

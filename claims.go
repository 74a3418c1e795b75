package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AuthClaims represents the structured claims carried by a session
// credential.
type AuthClaims interface {
	Subject() string
	AccountID() string
	IsSeller() bool
	IsAdmin() bool
	Expires() time.Time
	IssuedAt() time.Time
}

// JWTClaims is the concrete implementation of AuthClaims. The credential
// binds the account id plus the seller and admin flags, matching what
// the marketplace middleware needs to gate requests.
type JWTClaims struct {
	jwt.RegisteredClaims
	UID    string `json:"uid,omitempty"`
	Seller bool   `json:"seller,omitempty"`
	Admin  bool   `json:"admin,omitempty"`
}

var _ AuthClaims = (*JWTClaims)(nil)

// Subject returns the subject claim
func (c *JWTClaims) Subject() string {
	return c.RegisteredClaims.Subject
}

// AccountID returns the account id bound to the credential
func (c *JWTClaims) AccountID() string {
	if c.UID != "" {
		return c.UID
	}
	return c.Subject()
}

// IsSeller reports the seller flag bound at issuance time
func (c *JWTClaims) IsSeller() bool {
	return c.Seller
}

// IsAdmin reports the admin flag bound at issuance time
func (c *JWTClaims) IsAdmin() bool {
	return c.Admin
}

// Expires returns the expiration time
func (c *JWTClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// IssuedAt returns the issuance time
func (c *JWTClaims) IssuedAt() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}

// ensureTokenID assigns a unique jti when the claims carry none.
func ensureTokenID(claims *jwt.RegisteredClaims) {
	if claims.ID == "" {
		claims.ID = uuid.NewString()
	}
}

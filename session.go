package auth

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

var _ Session = &SessionObject{}

// SessionObject is the decoded view of a session credential.
type SessionObject struct {
	AccountID      string     `json:"account_id,omitempty"`
	Issuer         string     `json:"issuer,omitempty"`
	Seller         bool       `json:"seller,omitempty"`
	Admin          bool       `json:"admin,omitempty"`
	IssuedAtTime   *time.Time `json:"issued_at,omitempty"`
	ExpirationDate *time.Time `json:"expiration_date,omitempty"`
}

func (s *SessionObject) GetAccountID() string {
	return s.AccountID
}

func (s *SessionObject) GetAccountUUID() (uuid.UUID, error) {
	return uuid.Parse(s.AccountID)
}

func (s *SessionObject) GetIssuer() string {
	return s.Issuer
}

func (s *SessionObject) GetIssuedAt() *time.Time {
	return s.IssuedAtTime
}

func (s *SessionObject) IsSeller() bool {
	return s.Seller
}

func (s *SessionObject) IsAdmin() bool {
	return s.Admin
}

func (s SessionObject) String() string {
	issuedAt := "<nil>"
	if s.IssuedAtTime != nil {
		issuedAt = s.IssuedAtTime.Format(time.RFC1123)
	}
	return fmt.Sprintf(
		"account=%s iss=%s seller=%t admin=%t iat=%s",
		s.AccountID,
		s.Issuer,
		s.Seller,
		s.Admin,
		issuedAt,
	)
}

// sessionFromAuthClaims creates a SessionObject from validated claims
func sessionFromAuthClaims(claims AuthClaims) (*SessionObject, error) {
	if claims == nil {
		return nil, ErrUnableToDecodeSession
	}

	issuedAt := claims.IssuedAt()
	expiresAt := claims.Expires()

	session := &SessionObject{
		AccountID:      claims.AccountID(),
		Seller:         claims.IsSeller(),
		Admin:          claims.IsAdmin(),
		IssuedAtTime:   &issuedAt,
		ExpirationDate: &expiresAt,
	}

	if jwtClaims, ok := claims.(*JWTClaims); ok {
		session.Issuer = jwtClaims.RegisteredClaims.Issuer
	}

	return session, nil
}

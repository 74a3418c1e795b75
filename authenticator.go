package auth

import (
	"context"
	"reflect"
)

type Auther struct {
	provider        IdentityProvider
	signingKey      []byte
	tokenExpiration int
	issuer          string
	audience        []string
	logger          Logger
	tokenService    TokenService
}

// NewAuthenticator returns a new Authenticator
func NewAuthenticator(provider IdentityProvider, opts Config) *Auther {
	tokenService := NewTokenService(
		[]byte(opts.GetSigningKey()),
		opts.GetTokenExpiration(),
		opts.GetIssuer(),
		opts.GetAudience(),
		defLogger{},
	)

	return &Auther{
		provider:        provider,
		signingKey:      []byte(opts.GetSigningKey()),
		tokenExpiration: opts.GetTokenExpiration(),
		audience:        opts.GetAudience(),
		issuer:          opts.GetIssuer(),
		logger:          defLogger{},
		tokenService:    tokenService,
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	s.logger = logger
	s.tokenService = NewTokenService(
		s.signingKey,
		s.tokenExpiration,
		s.issuer,
		s.audience,
		logger,
	)
	return s
}

// TokenService returns the TokenService instance used by this Authenticator
func (s *Auther) TokenService() TokenService {
	return s.tokenService
}

// Login verifies credentials and issues a signed session credential
// alongside the account's public profile.
func (s *Auther) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	identity, err := s.provider.VerifyIdentity(ctx, username, password)
	if err != nil {
		s.logger.Error("Login verify identity error", "error", err)
		return nil, err
	}

	if identity == nil || reflect.ValueOf(identity).IsZero() {
		s.logger.Error("Login identity is nil or zero value")
		return nil, ErrAccountNotFound
	}

	token, err := s.tokenService.Generate(identity)
	if err != nil {
		s.logger.Error("Login failed to sign credential", "error", err)
		return nil, err
	}

	return &LoginResult{
		Token:   token,
		Profile: identityProfile(identity),
	}, nil
}

func (s *Auther) IdentityFromSession(ctx context.Context, session Session) (Identity, error) {
	identity, err := s.provider.FindIdentityByIdentifier(ctx, session.GetAccountID())
	if err != nil {
		s.logger.Error("IdentityFromSession find identity by identifier", "error", err)
		return nil, err
	}

	return identity, nil
}

func (s Auther) SessionFromToken(raw string) (Session, error) {
	claims, err := s.tokenService.Validate(raw)
	if err != nil {
		s.logger.Error("SessionFromToken validation failed", "error", err)
		return nil, err
	}

	session, err := sessionFromAuthClaims(claims)
	if err != nil {
		s.logger.Error("SessionFromToken failed to create session from claims", "error", err)
		return nil, err
	}

	return session, nil
}

type profileCapableIdentity interface {
	Profile() *AccountProfile
}

func identityProfile(identity Identity) *AccountProfile {
	if identity == nil {
		return nil
	}

	if pc, ok := identity.(profileCapableIdentity); ok {
		return pc.Profile()
	}

	return &AccountProfile{
		ID:       identity.ID(),
		Username: identity.Username(),
		Email:    identity.Email(),
		IsSeller: identity.Seller(),
		IsAdmin:  identity.Admin(),
	}
}

var _ Authenticator = (*Auther)(nil)

package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Logger takes a message followed by alternating key/value pairs, the
// way slog does.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Session holds attributes that are part of an auth session
type Session interface {
	GetAccountID() string
	GetAccountUUID() (uuid.UUID, error)
	GetIssuer() string
	GetIssuedAt() *time.Time
	IsSeller() bool
	IsAdmin() bool
}

// Authenticator holds methods to deal with authentication
type Authenticator interface {
	Login(ctx context.Context, username, password string) (*LoginResult, error)
	SessionFromToken(token string) (Session, error)
	IdentityFromSession(ctx context.Context, session Session) (Identity, error)
}

// LoginResult carries the signed credential plus the public profile of
// the account that logged in.
type LoginResult struct {
	Token   string          `json:"access_token"`
	Profile *AccountProfile `json:"profile"`
}

// Identity holds the attributes of an authenticated identity
type Identity interface {
	ID() string
	Username() string
	Email() string
	Seller() bool
	Admin() bool
}

// Config holds auth options
type Config interface {
	GetSigningKey() string
	GetSigningMethod() string
	GetContextKey() string
	GetTokenExpiration() int
	GetIssuer() string
	GetAudience() []string
	GetStudentEmailDomain() string
	GetVerificationRequired() bool
	GetBaseURL() string
	GetLockoutPolicy() LockoutPolicy
}

// IdentityProvider ensures we have a store to retrieve auth identities
type IdentityProvider interface {
	VerifyIdentity(ctx context.Context, username, password string) (Identity, error)
	FindIdentityByIdentifier(ctx context.Context, identifier string) (Identity, error)
}

// PasswordAuthenticator authenticates passwords
type PasswordAuthenticator interface {
	HashPassword(password string) (string, error)
	ComparePasswordAndHash(password, hash string) error
}

// Notifier delivers account lifecycle emails. Callers decide whether a
// delivery failure is fatal for the flow: registration and the welcome
// message log and move on, resend-verification and forgot-password fail
// because the email is the whole point of those flows.
type Notifier interface {
	SendVerification(ctx context.Context, email, rawToken, link string) error
	SendPasswordReset(ctx context.Context, email, rawToken, link string) error
	SendWelcome(ctx context.Context, email, username string) error
}

type defLogger struct{}

func (d defLogger) Error(msg string, args ...any) { d.print("[ERR]", msg, args) }

func (d defLogger) Warn(msg string, args ...any) { d.print("[WRN]", msg, args) }

func (d defLogger) Info(msg string, args ...any) { d.print("[INF]", msg, args) }

func (d defLogger) Debug(msg string, args ...any) { d.print("[DBG]", msg, args) }

func (d defLogger) print(level, msg string, args []any) {
	fmt.Println(formatLogLine(level, msg, args))
}

func formatLogLine(level, msg string, args []any) string {
	var b strings.Builder
	b.WriteString(level)
	b.WriteString(" AUTH ")
	b.WriteString(msg)
	for i := 0; i+1 < len(args); i += 2 {
		fmt.Fprintf(&b, " %v=%v", args[i], args[i+1])
	}
	if len(args)%2 == 1 {
		// a dangling value still gets printed rather than dropped
		fmt.Fprintf(&b, " %v", args[len(args)-1])
	}
	return b.String()
}

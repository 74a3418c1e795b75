package auth

import (
	"context"
	"time"

	"github.com/goliatone/go-repository-bun"
)

// AccountTracker is the slice of the account store the login flow needs.
type AccountTracker interface {
	GetByUsername(ctx context.Context, username string) (*Account, error)
	GetByIdentifier(ctx context.Context, identifier string, criteria ...repository.SelectCriteria) (*Account, error)
	ClearExpiredLock(ctx context.Context, account *Account) error
	TrackFailedLogin(ctx context.Context, account *Account, outcome FailureOutcome) error
	TrackSuccessfulLogin(ctx context.Context, account *Account) error
}

// AccountProvider verifies credentials against the account store and
// drives the lockout state machine.
type AccountProvider struct {
	store           AccountTracker
	policy          LockoutPolicy
	requireVerified bool
	logger          Logger
	now             func() time.Time
}

// AccountProviderOption customizes provider construction.
type AccountProviderOption func(*AccountProvider)

// WithLockoutPolicy overrides the default lockout policy.
func WithLockoutPolicy(policy LockoutPolicy) AccountProviderOption {
	return func(p *AccountProvider) {
		p.policy = policy.normalized()
	}
}

// WithVerificationRequired toggles whether unverified accounts may log
// in. Deployments without the verification flow run with this off.
func WithVerificationRequired(required bool) AccountProviderOption {
	return func(p *AccountProvider) {
		p.requireVerified = required
	}
}

// WithProviderClock injects a custom clock (useful for tests).
func WithProviderClock(clock func() time.Time) AccountProviderOption {
	return func(p *AccountProvider) {
		if clock != nil {
			p.now = clock
		}
	}
}

// WithProviderLogger overrides the provider logger.
func WithProviderLogger(logger Logger) AccountProviderOption {
	return func(p *AccountProvider) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewAccountProvider will create a new AccountProvider
func NewAccountProvider(store AccountTracker, opts ...AccountProviderOption) *AccountProvider {
	p := &AccountProvider{
		store:           store,
		policy:          DefaultLockoutPolicy(),
		requireVerified: true,
		logger:          defLogger{},
		now:             time.Now,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}

	return p
}

// VerifyIdentity runs one login attempt: lockout evaluation, credential
// check, and attempt bookkeeping.
func (p *AccountProvider) VerifyIdentity(ctx context.Context, username, password string) (Identity, error) {
	account, err := p.store.GetByUsername(ctx, username)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrAccountNotFound
		}
		return nil, WrapDependency(err, "failed to retrieve account during login")
	}

	now := p.now()

	switch p.policy.StateOf(account, now) {
	case LoginStateLocked:
		// active lock short-circuits, nothing is mutated and the
		// attempt is not counted
		return nil, LockedError(account.LockRemaining(now))
	case LoginStateUnlocked:
		if account.LockedUntil != nil {
			// the window passed, lift the stale lock and reset the
			// counter before evaluating the password
			if err := p.store.ClearExpiredLock(ctx, account); err != nil {
				return nil, WrapDependency(err, "failed to clear expired lockout")
			}
			account.LockedUntil = nil
			account.LoginAttempts = 0
		}
	}

	if p.requireVerified && !account.IsVerified {
		return nil, ErrNotVerified
	}

	if err := ComparePasswordAndHash(password, account.PasswordHash); err != nil {
		outcome := p.policy.OnFailure(account.LoginAttempts, now)
		if err2 := p.store.TrackFailedLogin(ctx, account, outcome); err2 != nil {
			return nil, WrapDependency(err2, "failed to track login attempt")
		}

		if outcome.Locked() {
			p.logger.Warn("account locked after repeated failures",
				"username", username, "attempts", outcome.Attempts)
		}

		return nil, ErrWrongCredentials
	}

	if err := p.store.TrackSuccessfulLogin(ctx, account); err != nil {
		// the attempt counter must reset on a successful login, so a
		// store failure here fails the attempt rather than leaving a
		// stale counter behind
		return nil, WrapDependency(err, "failed to record successful login")
	}

	lastLogin := now
	account.LoginAttempts = 0
	account.LockedUntil = nil
	account.LastLoginAt = &lastLogin

	return accountIdentity{account: account}, nil
}

// FindIdentityByIdentifier resolves an identity without a credential
// check, used when rehydrating a session.
func (p *AccountProvider) FindIdentityByIdentifier(ctx context.Context, identifier string) (Identity, error) {
	account, err := p.store.GetByIdentifier(ctx, identifier)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}

	return accountIdentity{account: account}, nil
}

type accountIdentity struct {
	account *Account
}

func (a accountIdentity) ID() string {
	return a.account.ID.String()
}

func (a accountIdentity) Username() string {
	return a.account.Username
}

func (a accountIdentity) Email() string {
	return a.account.Email
}

func (a accountIdentity) Seller() bool {
	return a.account.IsSeller
}

func (a accountIdentity) Admin() bool {
	return a.account.IsAdmin
}

// Profile exposes the public projection for login responses.
func (a accountIdentity) Profile() *AccountProfile {
	return a.account.PublicProfile()
}

var _ Identity = accountIdentity{}

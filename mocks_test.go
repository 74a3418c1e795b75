package auth_test

import (
	"context"
	"database/sql"
	"time"

	"github.com/flexilearn/auth"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/uptrace/bun"
)

// MockAuthenticator implements auth.Authenticator
type MockAuthenticator struct {
	mock.Mock
}

func (m *MockAuthenticator) Login(ctx context.Context, identifier, password string) (*auth.LoginResult, error) {
	args := m.Called(ctx, identifier, password)
	if res := args.Get(0); res != nil {
		return res.(*auth.LoginResult), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAuthenticator) SessionFromToken(token string) (auth.Session, error) {
	args := m.Called(token)
	if s := args.Get(0); s != nil {
		return s.(auth.Session), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAuthenticator) IdentityFromSession(ctx context.Context, session auth.Session) (auth.Identity, error) {
	args := m.Called(ctx, session)
	if id := args.Get(0); id != nil {
		return id.(auth.Identity), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockRepositoryManager implements auth.RepositoryManager
type MockRepositoryManager struct {
	mock.Mock
}

func (m *MockRepositoryManager) Accounts() auth.Accounts {
	args := m.Called()
	return args.Get(0).(auth.Accounts)
}

func (m *MockRepositoryManager) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	args := m.Called(ctx, opts, f)
	return args.Error(0)
}

func (m *MockRepositoryManager) Validate() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockRepositoryManager) MustValidate() {
	m.Called()
}

// MockAccounts implements the domain slice of auth.Accounts that the
// command handlers touch. The embedded interface panics for anything a
// test forgot to stub.
type MockAccounts struct {
	mock.Mock
	auth.Accounts
}

func (m *MockAccounts) GetByUsername(ctx context.Context, username string) (*auth.Account, error) {
	args := m.Called(ctx, username)
	if acc := args.Get(0); acc != nil {
		return acc.(*auth.Account), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAccounts) GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*auth.Account, error) {
	args := m.Called(ctx, tx, email)
	if acc := args.Get(0); acc != nil {
		return acc.(*auth.Account), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAccounts) GetByIdentifier(ctx context.Context, identifier string, criteria ...repository.SelectCriteria) (*auth.Account, error) {
	args := m.Called(ctx, identifier)
	if acc := args.Get(0); acc != nil {
		return acc.(*auth.Account), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAccounts) UsernameOrEmailTakenTx(ctx context.Context, tx bun.IDB, username, email string) (bool, error) {
	args := m.Called(ctx, tx, username, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockAccounts) RegisterTx(ctx context.Context, tx bun.IDB, account *auth.Account) (*auth.Account, error) {
	args := m.Called(ctx, tx, account)
	if acc := args.Get(0); acc != nil {
		return acc.(*auth.Account), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAccounts) ClearExpiredLock(ctx context.Context, account *auth.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccounts) TrackFailedLogin(ctx context.Context, account *auth.Account, outcome auth.FailureOutcome) error {
	args := m.Called(ctx, account, outcome)
	return args.Error(0)
}

func (m *MockAccounts) TrackSuccessfulLogin(ctx context.Context, account *auth.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccounts) SetVerificationTokenTx(ctx context.Context, tx bun.IDB, id uuid.UUID, tokenHash string, expires time.Time) error {
	args := m.Called(ctx, tx, id, tokenHash, expires)
	return args.Error(0)
}

func (m *MockAccounts) MarkVerifiedTx(ctx context.Context, tx bun.IDB, id uuid.UUID) error {
	args := m.Called(ctx, tx, id)
	return args.Error(0)
}

func (m *MockAccounts) SetResetTokenTx(ctx context.Context, tx bun.IDB, id uuid.UUID, tokenHash string, expires time.Time) error {
	args := m.Called(ctx, tx, id, tokenHash, expires)
	return args.Error(0)
}

func (m *MockAccounts) ResetCredentialsTx(ctx context.Context, tx bun.IDB, id uuid.UUID, passwordHash string) error {
	args := m.Called(ctx, tx, id, passwordHash)
	return args.Error(0)
}

// MockNotifier implements auth.Notifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) SendVerification(ctx context.Context, email, rawToken, link string) error {
	args := m.Called(ctx, email, rawToken, link)
	return args.Error(0)
}

func (m *MockNotifier) SendPasswordReset(ctx context.Context, email, rawToken, link string) error {
	args := m.Called(ctx, email, rawToken, link)
	return args.Error(0)
}

func (m *MockNotifier) SendWelcome(ctx context.Context, email, username string) error {
	args := m.Called(ctx, email, username)
	return args.Error(0)
}

// fakeRepoManager executes transactional closures inline with a
// zero-value bun.Tx so errors from the closure propagate to the caller.
type fakeRepoManager struct {
	accounts auth.Accounts
}

func (f *fakeRepoManager) Accounts() auth.Accounts { return f.accounts }

func (f *fakeRepoManager) RunInTx(ctx context.Context, opts *sql.TxOptions, fn func(ctx context.Context, tx bun.Tx) error) error {
	var tx bun.Tx
	return fn(ctx, tx)
}

func (f *fakeRepoManager) Validate() error { return nil }

func (f *fakeRepoManager) MustValidate() {}

func repositoryNotFound() error {
	return repository.NewRecordNotFound()
}

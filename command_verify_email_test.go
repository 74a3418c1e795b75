package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/flexilearn/auth"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func pendingAccount(t *testing.T, window time.Duration) (*auth.Account, string) {
	t.Helper()

	raw, hash, expires, err := auth.IssueToken(window)
	require.NoError(t, err)

	return &auth.Account{
		ID:                         uuid.New(),
		Username:                   "pepe",
		Email:                      "88871@siswa.unimas.my",
		EmailVerificationTokenHash: hash,
		EmailVerificationExpires:   &expires,
	}, raw
}

func TestVerifyEmailHandler(t *testing.T) {
	ctx := context.Background()
	accounts := &MockAccounts{}
	repo := &fakeRepoManager{accounts: accounts}

	account, raw := pendingAccount(t, auth.EmailVerificationWindow)

	accounts.On("GetByEmailTx", mock.Anything, mock.Anything, account.Email).
		Return(account, nil).Once()
	accounts.On("MarkVerifiedTx", mock.Anything, mock.Anything, account.ID).
		Return(nil).Once()

	var resp *auth.VerifyEmailResponse

	handler := auth.NewVerifyEmailHandler(repo)
	err := handler.Execute(ctx, auth.VerifyEmailMessage{
		Email: account.Email,
		Token: raw,
		OnResponse: func(r *auth.VerifyEmailResponse) {
			resp = r
		},
	})

	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.True(t, resp.Success)
	assert.True(t, resp.Account.IsVerified)
	assert.Empty(t, resp.Account.EmailVerificationTokenHash)

	accounts.AssertExpectations(t)
}

func TestVerifyEmailHandlerWrongToken(t *testing.T) {
	ctx := context.Background()
	accounts := &MockAccounts{}
	repo := &fakeRepoManager{accounts: accounts}

	account, _ := pendingAccount(t, auth.EmailVerificationWindow)

	accounts.On("GetByEmailTx", mock.Anything, mock.Anything, account.Email).
		Return(account, nil).Once()

	handler := auth.NewVerifyEmailHandler(repo)
	err := handler.Execute(ctx, auth.VerifyEmailMessage{
		Email: account.Email,
		Token: "not-the-token",
	})

	var richErr *goerrors.Error
	require.True(t, goerrors.As(err, &richErr))
	assert.Equal(t, auth.TextCodeInvalidToken, richErr.TextCode)

	accounts.AssertNotCalled(t, "MarkVerifiedTx", mock.Anything, mock.Anything, mock.Anything)
	accounts.AssertExpectations(t)
}

func TestVerifyEmailHandlerStoredHashIsNotAToken(t *testing.T) {
	ctx := context.Background()
	accounts := &MockAccounts{}
	repo := &fakeRepoManager{accounts: accounts}

	account, _ := pendingAccount(t, auth.EmailVerificationWindow)

	accounts.On("GetByEmailTx", mock.Anything, mock.Anything, account.Email).
		Return(account, nil).Once()

	handler := auth.NewVerifyEmailHandler(repo)
	err := handler.Execute(ctx, auth.VerifyEmailMessage{
		Email: account.Email,
		Token: account.EmailVerificationTokenHash,
	})

	var richErr *goerrors.Error
	require.True(t, goerrors.As(err, &richErr))
	assert.Equal(t, auth.TextCodeInvalidToken, richErr.TextCode)
}

func TestVerifyEmailHandlerExpiredToken(t *testing.T) {
	ctx := context.Background()
	accounts := &MockAccounts{}
	repo := &fakeRepoManager{accounts: accounts}

	account, raw := pendingAccount(t, -time.Minute)

	accounts.On("GetByEmailTx", mock.Anything, mock.Anything, account.Email).
		Return(account, nil).Once()

	handler := auth.NewVerifyEmailHandler(repo)
	err := handler.Execute(ctx, auth.VerifyEmailMessage{
		Email: account.Email,
		Token: raw,
	})

	var richErr *goerrors.Error
	require.True(t, goerrors.As(err, &richErr))
	assert.Equal(t, auth.TextCodeTokenExpired, richErr.TextCode)
}

func TestVerifyEmailHandlerAlreadyVerified(t *testing.T) {
	ctx := context.Background()
	accounts := &MockAccounts{}
	repo := &fakeRepoManager{accounts: accounts}

	account, raw := pendingAccount(t, auth.EmailVerificationWindow)
	account.IsVerified = true

	accounts.On("GetByEmailTx", mock.Anything, mock.Anything, account.Email).
		Return(account, nil).Once()

	handler := auth.NewVerifyEmailHandler(repo)
	err := handler.Execute(ctx, auth.VerifyEmailMessage{
		Email: account.Email,
		Token: raw,
	})

	var richErr *goerrors.Error
	require.True(t, goerrors.As(err, &richErr))
	assert.Equal(t, auth.TextCodeAlreadyVerified, richErr.TextCode)
}

func TestVerifyEmailHandlerUnknownEmail(t *testing.T) {
	ctx := context.Background()
	accounts := &MockAccounts{}
	repo := &fakeRepoManager{accounts: accounts}

	accounts.On("GetByEmailTx", mock.Anything, mock.Anything, "ghost@siswa.unimas.my").
		Return(nil, repository.NewRecordNotFound()).Once()

	handler := auth.NewVerifyEmailHandler(repo)
	err := handler.Execute(ctx, auth.VerifyEmailMessage{
		Email: "ghost@siswa.unimas.my",
		Token: "whatever",
	})

	require.Error(t, err)
	assert.True(t, goerrors.IsNotFound(err))
	assert.ErrorIs(t, err, auth.ErrAccountNotFound)
}

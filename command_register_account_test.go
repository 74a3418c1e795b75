package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/flexilearn/auth"
	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestRegisterAccountHandler(t *testing.T) {
	ctx := context.Background()
	accounts := &MockAccounts{}
	notifier := &MockNotifier{}
	repo := &fakeRepoManager{accounts: accounts}
	cfg := auth.NewConfig("test-signing-key")

	accounts.On("UsernameOrEmailTakenTx", mock.Anything, mock.Anything, "pepe", "88871@siswa.unimas.my").
		Return(false, nil).Once()

	var created *auth.Account
	accounts.On("RegisterTx", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			created = args.Get(2).(*auth.Account)
		}).
		Return(&auth.Account{Email: "88871@siswa.unimas.my"}, nil).Once()

	notifier.On("SendVerification", mock.Anything, "88871@siswa.unimas.my", mock.Anything, mock.Anything).
		Return(nil).Once()

	var resp *auth.RegisterAccountResponse

	event := auth.RegisterAccountMessage{
		Username: "pepe",
		Email:    "88871@SISWA.unimas.my",
		Password: "Abc12!",
		OnResponse: func(r *auth.RegisterAccountResponse) {
			resp = r
		},
	}

	handler := auth.NewRegisterAccountHandler(repo, notifier, cfg)
	err := handler.Execute(ctx, event)
	require.NoError(t, err)

	require.NotNil(t, resp)
	assert.True(t, resp.Success)

	require.NotNil(t, created)
	assert.Equal(t, "pepe", created.Username)
	assert.Equal(t, "88871@siswa.unimas.my", created.Email)
	assert.Equal(t, "88871", created.StudentID)
	assert.False(t, created.IsVerified)
	assert.NotEmpty(t, created.EmailVerificationTokenHash)
	require.NotNil(t, created.EmailVerificationExpires)
	assert.WithinDuration(t,
		time.Now().Add(auth.EmailVerificationWindow),
		*created.EmailVerificationExpires,
		time.Minute,
	)

	// the persisted value is the digest, not the emailed token
	sentToken := notifier.Calls[0].Arguments.String(2)
	assert.NotEqual(t, sentToken, created.EmailVerificationTokenHash)
	assert.Equal(t, auth.HashToken(sentToken), created.EmailVerificationTokenHash)

	accounts.AssertExpectations(t)
	notifier.AssertExpectations(t)
}

func TestRegisterAccountHandlerRejectsInvalidEmail(t *testing.T) {
	ctx := context.Background()
	repo := &fakeRepoManager{accounts: &MockAccounts{}}
	cfg := auth.NewConfig("test-signing-key")

	handler := auth.NewRegisterAccountHandler(repo, auth.NoopNotifier{}, cfg)

	err := handler.Execute(ctx, auth.RegisterAccountMessage{
		Username: "pepe",
		Email:    "pepe@gmail.com",
		Password: "Abc12!",
	})

	var richErr *goerrors.Error
	require.True(t, goerrors.As(err, &richErr))
	assert.Equal(t, auth.TextCodeInvalidStudentEmail, richErr.TextCode)
}

func TestRegisterAccountHandlerRejectsWeakPassword(t *testing.T) {
	ctx := context.Background()
	repo := &fakeRepoManager{accounts: &MockAccounts{}}
	cfg := auth.NewConfig("test-signing-key")

	handler := auth.NewRegisterAccountHandler(repo, auth.NoopNotifier{}, cfg)

	err := handler.Execute(ctx, auth.RegisterAccountMessage{
		Username: "pepe",
		Email:    "88871@siswa.unimas.my",
		Password: "abc123",
	})

	var richErr *goerrors.Error
	require.True(t, goerrors.As(err, &richErr))
	assert.Equal(t, auth.TextCodeWeakPassword, richErr.TextCode)
}

func TestRegisterAccountHandlerDuplicate(t *testing.T) {
	ctx := context.Background()
	accounts := &MockAccounts{}
	repo := &fakeRepoManager{accounts: accounts}
	cfg := auth.NewConfig("test-signing-key")

	accounts.On("UsernameOrEmailTakenTx", mock.Anything, mock.Anything, "pepe", "88871@siswa.unimas.my").
		Return(true, nil).Once()

	handler := auth.NewRegisterAccountHandler(repo, auth.NoopNotifier{}, cfg)

	err := handler.Execute(ctx, auth.RegisterAccountMessage{
		Username: "pepe",
		Email:    "88871@siswa.unimas.my",
		Password: "Abc12!",
	})

	var richErr *goerrors.Error
	require.True(t, goerrors.As(err, &richErr))
	assert.Equal(t, auth.TextCodeAccountExists, richErr.TextCode)

	accounts.AssertNotCalled(t, "RegisterTx", mock.Anything, mock.Anything, mock.Anything)
	accounts.AssertExpectations(t)
}

func TestRegisterAccountHandlerSurvivesDispatchFailure(t *testing.T) {
	ctx := context.Background()
	accounts := &MockAccounts{}
	notifier := &MockNotifier{}
	repo := &fakeRepoManager{accounts: accounts}
	cfg := auth.NewConfig("test-signing-key")

	accounts.On("UsernameOrEmailTakenTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(false, nil).Once()
	accounts.On("RegisterTx", mock.Anything, mock.Anything, mock.Anything).
		Return(&auth.Account{Email: "88871@siswa.unimas.my"}, nil).Once()

	notifier.On("SendVerification", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(assertableError("smtp down")).Once()

	var resp *auth.RegisterAccountResponse

	handler := auth.NewRegisterAccountHandler(repo, notifier, cfg)

	err := handler.Execute(ctx, auth.RegisterAccountMessage{
		Username: "pepe",
		Email:    "88871@siswa.unimas.my",
		Password: "Abc12!",
		OnResponse: func(r *auth.RegisterAccountResponse) {
			resp = r
		},
	})

	// the account is created, a resend covers the lost email
	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.True(t, resp.Success)

	accounts.AssertExpectations(t)
	notifier.AssertExpectations(t)
}

type assertableError string

func (e assertableError) Error() string { return string(e) }

func TestRegisterAccountHandlerSellerProfile(t *testing.T) {
	ctx := context.Background()
	accounts := &MockAccounts{}
	notifier := &MockNotifier{}
	repo := &fakeRepoManager{accounts: accounts}

	accounts.On("UsernameOrEmailTakenTx", mock.Anything, mock.Anything, "pepe", "88871@siswa.unimas.my").
		Return(false, nil).Once()

	var created *auth.Account
	accounts.On("RegisterTx", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			created = args.Get(2).(*auth.Account)
		}).
		Return(&auth.Account{Email: "88871@siswa.unimas.my"}, nil).Once()

	notifier.On("SendVerification", mock.Anything, "88871@siswa.unimas.my", mock.Anything, mock.Anything).
		Return(nil).Once()

	event := auth.RegisterAccountMessage{
		Username:     "pepe",
		Email:        "88871@siswa.unimas.my",
		Password:     "Abc12!",
		IsSeller:     true,
		BusinessType: auth.BusinessLLP,
		Img:          "https://cdn.example.com/pepe.png",
		RegNumber:    "LLP0012345-LGN",
	}

	handler := auth.NewRegisterAccountHandler(repo, notifier, auth.NewConfig("test-signing-key"))
	require.NoError(t, handler.Execute(ctx, event))

	require.NotNil(t, created)
	assert.True(t, created.IsSeller)
	assert.Equal(t, auth.BusinessLLP, created.BusinessType)
	assert.Equal(t, "https://cdn.example.com/pepe.png", created.Img)
	assert.Equal(t, "LLP0012345-LGN", created.RegistrationNumber)
}

package auth

import (
	"context"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
)

type FinalizePasswordResetMessage struct {
	Email      string `json:"email"`
	Token      string `json:"token"`
	Password   string `json:"password"`
	OnResponse func(resp *FinalizePasswordResetResponse)
}

func (e FinalizePasswordResetMessage) Type() string { return "account.password_reset_finalize" }

type FinalizePasswordResetResponse struct {
	Account *Account
	Success bool
}

// FinalizePasswordResetHandler consumes a reset token and installs the
// new password. A successful reset also clears any active lockout, the
// person proving mailbox ownership is not the one guessing passwords.
type FinalizePasswordResetHandler struct {
	repo RepositoryManager
	now  func() time.Time
}

func NewFinalizePasswordResetHandler(repo RepositoryManager) *FinalizePasswordResetHandler {
	return &FinalizePasswordResetHandler{
		repo: repo,
		now:  time.Now,
	}
}

func (h *FinalizePasswordResetHandler) Execute(ctx context.Context, event FinalizePasswordResetMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during password reset finalization",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *FinalizePasswordResetHandler) execute(ctx context.Context, event FinalizePasswordResetMessage) error {
	account := &Account{}
	resp := &FinalizePasswordResetResponse{}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	email := strings.ToLower(strings.TrimSpace(event.Email))

	if err := ValidatePassword(event.Password); err != nil {
		return err
	}

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var err error
		account, err = h.repo.Accounts().GetByEmailTx(ctx, tx, email)
		if err != nil {
			if repository.IsRecordNotFound(err) {
				return ErrAccountNotFound
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve account for password reset")
		}

		if account.PasswordResetTokenHash == "" {
			return ErrInvalidToken
		}

		if !account.HasOpenReset(h.now()) {
			return ErrTokenExpired
		}

		if !VerifyToken(event.Token, account.PasswordResetTokenHash) {
			return ErrInvalidToken
		}

		hash, err := HashPassword(event.Password)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
		}

		if err := h.repo.Accounts().ResetCredentialsTx(ctx, tx, account.ID, hash); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to reset credentials")
		}

		account.PasswordHash = hash
		account.PasswordResetTokenHash = ""
		account.PasswordResetExpires = nil
		account.LoginAttempts = 0
		account.LockedUntil = nil

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "password reset finalization failed")
	}

	resp.Account = account
	resp.Success = true

	if event.OnResponse != nil {
		event.OnResponse(resp)
	}

	return nil
}

package auth

import (
	"context"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
)

type VerifyEmailMessage struct {
	Email      string `json:"email"`
	Token      string `json:"token"`
	OnResponse func(resp *VerifyEmailResponse)
}

func (e VerifyEmailMessage) Type() string { return "account.verify_email" }

type VerifyEmailResponse struct {
	Account *Account
	Success bool
}

type VerifyEmailHandler struct {
	repo RepositoryManager
	now  func() time.Time
}

func NewVerifyEmailHandler(repo RepositoryManager) *VerifyEmailHandler {
	return &VerifyEmailHandler{
		repo: repo,
		now:  time.Now,
	}
}

func (h *VerifyEmailHandler) Execute(ctx context.Context, event VerifyEmailMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during email verification",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *VerifyEmailHandler) execute(ctx context.Context, event VerifyEmailMessage) error {
	account := &Account{}
	resp := &VerifyEmailResponse{}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	email := strings.ToLower(strings.TrimSpace(event.Email))

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var err error
		account, err = h.repo.Accounts().GetByEmailTx(ctx, tx, email)
		if err != nil {
			if repository.IsRecordNotFound(err) {
				return ErrAccountNotFound
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve account for verification")
		}

		if account.IsVerified {
			return ErrAlreadyVerified
		}

		if !account.HasOpenVerification(h.now()) {
			return ErrTokenExpired
		}

		if !VerifyToken(event.Token, account.EmailVerificationTokenHash) {
			return ErrInvalidToken
		}

		if err := h.repo.Accounts().MarkVerifiedTx(ctx, tx, account.ID); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to mark account verified")
		}

		account.IsVerified = true
		account.EmailVerificationTokenHash = ""
		account.EmailVerificationExpires = nil

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "email verification transaction failed")
	}

	resp.Account = account
	resp.Success = true

	if event.OnResponse != nil {
		event.OnResponse(resp)
	}

	return nil
}

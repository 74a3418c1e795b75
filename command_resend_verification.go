package auth

import (
	"context"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
)

type ResendVerificationMessage struct {
	Email      string `json:"email"`
	OnResponse func(resp *ResendVerificationResponse)
}

func (e ResendVerificationMessage) Type() string { return "account.resend_verification" }

type ResendVerificationResponse struct {
	Success bool
}

// ResendVerificationHandler rotates the verification token. The previous
// token stops working the moment the new one is stored.
type ResendVerificationHandler struct {
	repo     RepositoryManager
	notifier Notifier
	baseURL  string
	logger   Logger
}

func NewResendVerificationHandler(repo RepositoryManager, notifier Notifier, cfg Config) *ResendVerificationHandler {
	h := &ResendVerificationHandler{
		repo:     repo,
		notifier: notifier,
		baseURL:  cfg.GetBaseURL(),
		logger:   defLogger{},
	}

	if h.notifier == nil {
		h.notifier = NoopNotifier{}
	}

	return h
}

func (h *ResendVerificationHandler) Execute(ctx context.Context, event ResendVerificationMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during verification resend",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *ResendVerificationHandler) execute(ctx context.Context, event ResendVerificationMessage) error {
	account := &Account{}
	resp := &ResendVerificationResponse{}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	email := strings.ToLower(strings.TrimSpace(event.Email))

	rawToken, tokenHash, expires, err := IssueToken(EmailVerificationWindow)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to issue verification token")
	}

	err = h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var err error
		account, err = h.repo.Accounts().GetByEmailTx(ctx, tx, email)
		if err != nil {
			if repository.IsRecordNotFound(err) {
				return ErrAccountNotFound
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve account for verification resend")
		}

		if account.IsVerified {
			return ErrAlreadyVerified
		}

		if err := h.repo.Accounts().SetVerificationTokenTx(ctx, tx, account.ID, tokenHash, expires); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to store verification token")
		}

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "verification resend transaction failed")
	}

	link := VerificationLink(h.baseURL, account.Email, rawToken)
	if err := h.notifier.SendVerification(ctx, account.Email, rawToken, link); err != nil {
		h.logger.Error("verification email dispatch failed", "email", account.Email, "error", err)
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to send verification email").
			WithTextCode(TextCodeEmailDispatch)
	}

	resp.Success = true

	if event.OnResponse != nil {
		event.OnResponse(resp)
	}

	return nil
}

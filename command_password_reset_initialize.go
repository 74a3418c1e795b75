package auth

import (
	"context"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
)

type InitializePasswordResetMessage struct {
	Email      string `json:"email" example:"88871@siswa.unimas.my" doc:"Account email."`
	OnResponse func(resp *InitializePasswordResetResponse)
}

func (e InitializePasswordResetMessage) Type() string { return "account.password_reset" }

type InitializePasswordResetResponse struct {
	Success bool
}

// InitializePasswordResetHandler starts the forgot-password flow. The
// outcome is identical whether or not the email maps to an account, so
// callers cannot probe which addresses are registered.
type InitializePasswordResetHandler struct {
	repo     RepositoryManager
	notifier Notifier
	baseURL  string
	logger   Logger
}

func NewInitializePasswordResetHandler(repo RepositoryManager, notifier Notifier, cfg Config) *InitializePasswordResetHandler {
	h := &InitializePasswordResetHandler{
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

func (h *InitializePasswordResetHandler) Execute(ctx context.Context, event InitializePasswordResetMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during password reset initialization",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *InitializePasswordResetHandler) execute(ctx context.Context, event InitializePasswordResetMessage) error {
	account := &Account{}
	resp := &InitializePasswordResetResponse{}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	email := strings.ToLower(strings.TrimSpace(event.Email))

	rawToken, tokenHash, expires, err := IssueToken(PasswordResetWindow)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to issue reset token")
	}

	found := true

	err = h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var err error
		account, err = h.repo.Accounts().GetByEmailTx(ctx, tx, email)
		if err != nil {
			if repository.IsRecordNotFound(err) {
				found = false
				return nil
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve account for password reset")
		}

		if err := h.repo.Accounts().SetResetTokenTx(ctx, tx, account.ID, tokenHash, expires); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to store reset token")
		}

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "password reset transaction failed")
	}

	if found {
		link := PasswordResetLink(h.baseURL, account.Email, rawToken)
		if err := h.notifier.SendPasswordReset(ctx, account.Email, rawToken, link); err != nil {
			// the email is the deliverable here; the token persisted
			// above stays valid despite the failed send
			h.logger.Error("reset email dispatch failed", "email", account.Email, "error", err)
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to send password reset email").
				WithTextCode(TextCodeEmailDispatch)
		}
	}

	resp.Success = true

	if event.OnResponse != nil {
		event.OnResponse(resp)
	}

	return nil
}

package auth

import (
	"context"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/uptrace/bun"
)

type RegisterAccountMessage struct {
	Username     string `json:"username"`
	Email        string `json:"email" example:"88871@siswa.unimas.my" doc:"Institutional student email."`
	Password     string `json:"password"`
	Phone        string `json:"phone"`
	Country      string `json:"country"`
	Desc         string `json:"desc"`
	Img          string `json:"img"`
	IsSeller     bool   `json:"is_seller"`
	BusinessType string `json:"business_type"`
	RegNumber    string `json:"registration_number"`
	UseHashid    bool
	OnResponse   func(resp *RegisterAccountResponse)
}

func (e RegisterAccountMessage) Type() string { return "account.register" }

type RegisterAccountResponse struct {
	Account *Account
	Success bool
}

type RegisterAccountHandler struct {
	repo     RepositoryManager
	notifier Notifier
	baseURL  string
	domain   string
	logger   Logger
	now      func() time.Time
}

func NewRegisterAccountHandler(repo RepositoryManager, notifier Notifier, cfg Config) *RegisterAccountHandler {
	h := &RegisterAccountHandler{
		repo:     repo,
		notifier: notifier,
		baseURL:  cfg.GetBaseURL(),
		domain:   cfg.GetStudentEmailDomain(),
		logger:   defLogger{},
		now:      time.Now,
	}

	if h.notifier == nil {
		h.notifier = NoopNotifier{}
	}

	if h.domain == "" {
		h.domain = DefaultStudentEmailDomain
	}

	return h
}

func (h *RegisterAccountHandler) Execute(ctx context.Context, event RegisterAccountMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during account registration",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *RegisterAccountHandler) execute(ctx context.Context, event RegisterAccountMessage) error {
	account := &Account{}
	resp := &RegisterAccountResponse{}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	email := strings.ToLower(strings.TrimSpace(event.Email))
	username := strings.TrimSpace(event.Username)

	if err := ValidateStudentEmail(email, h.domain); err != nil {
		return err
	}

	if err := ValidateUsername(username); err != nil {
		return err
	}

	if err := ValidatePassword(event.Password); err != nil {
		return err
	}

	if err := ValidatePhone(event.Phone, ""); err != nil {
		return err
	}

	rawToken, tokenHash, expires, err := IssueToken(EmailVerificationWindow)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to issue verification token")
	}

	err = h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		taken, err := h.repo.Accounts().UsernameOrEmailTakenTx(ctx, tx, username, email)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check account uniqueness")
		}

		if taken {
			return ErrAccountExists
		}

		hash, err := HashPassword(event.Password)
		if err != nil {
			var richErr *goerrors.Error
			if goerrors.As(err, &richErr) {
				return goerrors.Wrap(richErr, goerrors.CategoryValidation, "invalid password provided")
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
		}

		account.Username = username
		account.Email = email
		account.StudentID = StudentIDFromEmail(email)
		account.PasswordHash = hash
		account.Phone = event.Phone
		account.Country = event.Country
		account.Desc = event.Desc
		account.Img = event.Img
		account.IsSeller = event.IsSeller
		account.BusinessType = event.BusinessType
		account.RegistrationNumber = event.RegNumber
		account.EmailVerificationTokenHash = tokenHash
		account.EmailVerificationExpires = &expires

		if event.UseHashid {
			if id, err := hashid.NewUUID(email); err == nil {
				account.ID = id
			}
		}

		if account, err = h.repo.Accounts().RegisterTx(ctx, tx, account); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryConflict, "could not create account").
				WithTextCode(TextCodeAccountExists)
		}

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "account registration transaction failed")
	}

	link := VerificationLink(h.baseURL, account.Email, rawToken)
	if err := h.notifier.SendVerification(ctx, account.Email, rawToken, link); err != nil {
		// the account exists either way; resend-verification covers a
		// lost email, so deliverability never fails the registration
		h.logger.Error("verification email dispatch failed", "email", account.Email, "error", err)
	}

	resp.Account = account
	resp.Success = true

	if event.OnResponse != nil {
		event.OnResponse(resp)
	}

	return nil
}

// VerificationLink builds the emailed confirmation URL. Token travels as a
// query parameter alongside the email so the landing page can submit both.
func VerificationLink(baseURL, email, rawToken string) string {
	return strings.TrimRight(baseURL, "/") + "/verify-email?token=" + rawToken + "&email=" + email
}

// PasswordResetLink builds the emailed reset URL.
func PasswordResetLink(baseURL, email, rawToken string) string {
	return strings.TrimRight(baseURL, "/") + "/reset-password?token=" + rawToken + "&email=" + email
}

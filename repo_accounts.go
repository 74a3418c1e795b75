package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ResetAccountCredentialsSQL replaces the password hash, burns the reset
// token, and lifts any active lockout in a single statement.
var ResetAccountCredentialsSQL = `UPDATE "accounts" AS "acc"
SET
	"password_hash" = ?,
	"password_reset_token_hash" = '',
	"password_reset_expires" = NULL,
	"login_attempts" = 0,
	"locked_until" = NULL
WHERE
	"acc"."deleted_at" IS NULL
AND (
	"acc"."id" = ?
) RETURNING *;`

type Accounts interface {
	repository.Repository[*Account]

	GetByUsername(ctx context.Context, username string) (*Account, error)
	GetByUsernameTx(ctx context.Context, tx bun.IDB, username string) (*Account, error)
	GetByEmail(ctx context.Context, email string) (*Account, error)
	GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*Account, error)
	UsernameOrEmailTaken(ctx context.Context, username, email string) (bool, error)
	UsernameOrEmailTakenTx(ctx context.Context, tx bun.IDB, username, email string) (bool, error)

	Register(ctx context.Context, account *Account) (*Account, error)
	RegisterTx(ctx context.Context, tx bun.IDB, account *Account) (*Account, error)

	ClearExpiredLock(ctx context.Context, account *Account) error
	ClearExpiredLockTx(ctx context.Context, tx bun.IDB, account *Account) error
	TrackFailedLogin(ctx context.Context, account *Account, outcome FailureOutcome) error
	TrackFailedLoginTx(ctx context.Context, tx bun.IDB, account *Account, outcome FailureOutcome) error
	TrackSuccessfulLogin(ctx context.Context, account *Account) error
	TrackSuccessfulLoginTx(ctx context.Context, tx bun.IDB, account *Account) error

	SetVerificationToken(ctx context.Context, id uuid.UUID, tokenHash string, expires time.Time) error
	SetVerificationTokenTx(ctx context.Context, tx bun.IDB, id uuid.UUID, tokenHash string, expires time.Time) error
	MarkVerified(ctx context.Context, id uuid.UUID) error
	MarkVerifiedTx(ctx context.Context, tx bun.IDB, id uuid.UUID) error
	SetResetToken(ctx context.Context, id uuid.UUID, tokenHash string, expires time.Time) error
	SetResetTokenTx(ctx context.Context, tx bun.IDB, id uuid.UUID, tokenHash string, expires time.Time) error

	ResetCredentials(ctx context.Context, id uuid.UUID, passwordHash string) error
	ResetCredentialsTx(ctx context.Context, tx bun.IDB, id uuid.UUID, passwordHash string) error
}

type accounts struct {
	repository.Repository[*Account]
	db *bun.DB
}

var (
	_ Accounts                        = (*accounts)(nil)
	_ repository.Repository[*Account] = (*accounts)(nil)
	_ AccountTracker                  = (*accounts)(nil)
)

func NewAccountsRepository(db *bun.DB) Accounts {
	repo := repository.NewRepository[*Account](db, repository.ModelHandlers[*Account]{
		NewRecord: func() *Account { return &Account{} },
		GetID: func(a *Account) uuid.UUID {
			if a == nil {
				return uuid.Nil
			}
			return a.ID
		},
		SetID: func(a *Account, id uuid.UUID) {
			if a != nil {
				a.ID = id
			}
		},
		GetIdentifier: func() string {
			return "username"
		},
	})

	return &accounts{
		Repository: repo,
		db:         db,
	}
}

func (a *accounts) GetByUsername(ctx context.Context, username string) (*Account, error) {
	return a.GetByUsernameTx(ctx, a.db, username)
}

func (a *accounts) GetByUsernameTx(ctx context.Context, tx bun.IDB, username string) (*Account, error) {
	return a.getByColumnTx(ctx, tx, "username", username)
}

func (a *accounts) GetByEmail(ctx context.Context, email string) (*Account, error) {
	return a.GetByEmailTx(ctx, a.db, email)
}

func (a *accounts) GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*Account, error) {
	return a.getByColumnTx(ctx, tx, "email", email)
}

func (a *accounts) getByColumnTx(ctx context.Context, tx bun.IDB, column, value string) (*Account, error) {
	record := &Account{}
	err := tx.NewSelect().
		Model(record).
		Where(fmt.Sprintf("?TableAlias.%s = ?", column), strings.TrimSpace(value)).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					column: value,
				})
		}
		return nil, err
	}

	return record, nil
}

// GetByIdentifier resolves an account by id, email, or username in that
// order, mirroring the lookup behavior of session rehydration.
func (a *accounts) GetByIdentifier(ctx context.Context, identifier string, criteria ...repository.SelectCriteria) (*Account, error) {
	return a.GetByIdentifierTx(ctx, a.db, identifier, criteria...)
}

func (a *accounts) GetByIdentifierTx(ctx context.Context, tx bun.IDB, identifier string, criteria ...repository.SelectCriteria) (*Account, error) {
	trimmed := strings.TrimSpace(identifier)

	columns := []string{"username"}
	if _, err := uuid.Parse(trimmed); err == nil {
		columns = []string{"id", "username"}
	} else if strings.Contains(trimmed, "@") {
		columns = []string{"email"}
	}

	for _, column := range columns {
		record := &Account{}
		q := tx.NewSelect().Model(record)

		for _, c := range criteria {
			q.Apply(c)
		}

		err := q.
			Where(fmt.Sprintf("?TableAlias.%s = ?", column), trimmed).
			Limit(1).
			Scan(ctx)

		if err != nil {
			if repository.IsRecordNotFound(err) {
				continue
			}
			return nil, err
		}

		return record, nil
	}

	return nil, repository.NewRecordNotFound().
		WithMetadata(map[string]any{
			"identifier": identifier,
		})
}

func (a *accounts) UsernameOrEmailTaken(ctx context.Context, username, email string) (bool, error) {
	return a.UsernameOrEmailTakenTx(ctx, a.db, username, email)
}

func (a *accounts) UsernameOrEmailTakenTx(ctx context.Context, tx bun.IDB, username, email string) (bool, error) {
	count, err := tx.NewSelect().
		Model((*Account)(nil)).
		Where("?TableAlias.username = ? OR ?TableAlias.email = ?", username, email).
		Count(ctx)

	if err != nil {
		return false, err
	}

	return count > 0, nil
}

func (a *accounts) Register(ctx context.Context, account *Account) (*Account, error) {
	return a.RegisterTx(ctx, a.db, account)
}

func (a *accounts) RegisterTx(ctx context.Context, tx bun.IDB, account *Account) (*Account, error) {
	prepareAccountDefaults(account)
	return a.Repository.CreateTx(ctx, tx, account)
}

func (a *accounts) ClearExpiredLock(ctx context.Context, account *Account) error {
	return a.ClearExpiredLockTx(ctx, a.db, account)
}

func (a *accounts) ClearExpiredLockTx(ctx context.Context, tx bun.IDB, account *Account) error {
	_, err := tx.NewRaw(`
		UPDATE "accounts" AS "acc"
		SET
			"login_attempts" = 0,
			"locked_until" = NULL
		WHERE
			("acc".id = ?)
			AND "acc"."deleted_at" IS NULL;
	`, account.ID).Exec(ctx)

	return err
}

// TrackFailedLogin persists the attempt counter and, when the threshold
// was crossed, the lockout window. A concurrent failed attempt between
// the read and this write can under-count the tally; accepted, lockout
// is not a financial consistency problem.
func (a *accounts) TrackFailedLogin(ctx context.Context, account *Account, outcome FailureOutcome) error {
	return a.TrackFailedLoginTx(ctx, a.db, account, outcome)
}

func (a *accounts) TrackFailedLoginTx(ctx context.Context, tx bun.IDB, account *Account, outcome FailureOutcome) error {
	_, err := tx.NewRaw(`
		UPDATE "accounts" AS "acc"
		SET
			"login_attempts" = ?,
			"locked_until" = ?
		WHERE
			("acc".id = ?)
			AND "acc"."deleted_at" IS NULL;
	`, outcome.Attempts, outcome.LockedUntil, account.ID).Exec(ctx)

	return err
}

func (a *accounts) TrackSuccessfulLogin(ctx context.Context, account *Account) error {
	return a.TrackSuccessfulLoginTx(ctx, a.db, account)
}

func (a *accounts) TrackSuccessfulLoginTx(ctx context.Context, tx bun.IDB, account *Account) error {
	lastLogin := time.Now()
	_, err := tx.NewRaw(`
		UPDATE "accounts" AS "acc"
		SET
			"last_login_at" = ?,
			"login_attempts" = 0,
			"locked_until" = NULL
		WHERE
			("acc".id = ?)
			AND "acc"."deleted_at" IS NULL;
	`, lastLogin, account.ID).Exec(ctx)

	return err
}

func (a *accounts) SetVerificationToken(ctx context.Context, id uuid.UUID, tokenHash string, expires time.Time) error {
	return a.SetVerificationTokenTx(ctx, a.db, id, tokenHash, expires)
}

func (a *accounts) SetVerificationTokenTx(ctx context.Context, tx bun.IDB, id uuid.UUID, tokenHash string, expires time.Time) error {
	_, err := tx.NewRaw(`
		UPDATE "accounts" AS "acc"
		SET
			"email_verification_token_hash" = ?,
			"email_verification_expires" = ?
		WHERE
			("acc".id = ?)
			AND "acc"."deleted_at" IS NULL;
	`, tokenHash, expires, id).Exec(ctx)

	return err
}

func (a *accounts) MarkVerified(ctx context.Context, id uuid.UUID) error {
	return a.MarkVerifiedTx(ctx, a.db, id)
}

func (a *accounts) MarkVerifiedTx(ctx context.Context, tx bun.IDB, id uuid.UUID) error {
	_, err := tx.NewRaw(`
		UPDATE "accounts" AS "acc"
		SET
			"is_verified" = TRUE,
			"email_verification_token_hash" = '',
			"email_verification_expires" = NULL
		WHERE
			("acc".id = ?)
			AND "acc"."deleted_at" IS NULL;
	`, id).Exec(ctx)

	return err
}

func (a *accounts) SetResetToken(ctx context.Context, id uuid.UUID, tokenHash string, expires time.Time) error {
	return a.SetResetTokenTx(ctx, a.db, id, tokenHash, expires)
}

func (a *accounts) SetResetTokenTx(ctx context.Context, tx bun.IDB, id uuid.UUID, tokenHash string, expires time.Time) error {
	_, err := tx.NewRaw(`
		UPDATE "accounts" AS "acc"
		SET
			"password_reset_token_hash" = ?,
			"password_reset_expires" = ?
		WHERE
			("acc".id = ?)
			AND "acc"."deleted_at" IS NULL;
	`, tokenHash, expires, id).Exec(ctx)

	return err
}

func (a *accounts) ResetCredentials(ctx context.Context, id uuid.UUID, passwordHash string) error {
	return a.ResetCredentialsTx(ctx, a.db, id, passwordHash)
}

func (a *accounts) ResetCredentialsTx(ctx context.Context, tx bun.IDB, id uuid.UUID, passwordHash string) error {
	res, err := a.Repository.RawTx(ctx, tx, ResetAccountCredentialsSQL, passwordHash, id.String())
	if err != nil {
		return err
	}

	if len(res) == 0 {
		return repository.NewRecordNotFound().
			WithMetadata(map[string]any{
				"id": id.String(),
			})
	}

	return nil
}

func prepareAccountDefaults(record *Account) {
	if record == nil {
		return
	}

	if record.BusinessType == "" {
		record.BusinessType = BusinessIndividual
	}

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
}

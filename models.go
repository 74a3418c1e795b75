package auth

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// BusinessType mirrors the seller onboarding choices
type BusinessType = string

const (
	BusinessIndividual    BusinessType = "individual"
	BusinessSoleProprieto BusinessType = "sole_proprietor"
	BusinessLLP           BusinessType = "llp"
	BusinessCompany       BusinessType = "company"
)

// Account is the canonical identity record
type Account struct {
	bun.BaseModel `bun:"table:accounts,alias:acc"`

	ID           uuid.UUID `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Username     string    `bun:"username,notnull,unique" json:"username,omitempty"`
	Email        string    `bun:"email,notnull,unique" json:"email,omitempty"`
	StudentID    string    `bun:"student_id,notnull" json:"student_id,omitempty"`
	PasswordHash string    `bun:"password_hash,notnull" json:"-"`

	IsVerified bool `bun:"is_verified" json:"is_verified"`
	IsSeller   bool `bun:"is_seller" json:"is_seller"`
	IsAdmin    bool `bun:"is_admin" json:"is_admin"`

	Img                string       `bun:"img" json:"img,omitempty"`
	Country            string       `bun:"country" json:"country,omitempty"`
	Phone              string       `bun:"phone" json:"phone,omitempty"`
	Desc               string       `bun:"description" json:"desc,omitempty"`
	BusinessType       BusinessType `bun:"business_type" json:"business_type,omitempty"`
	RegistrationNumber string       `bun:"registration_number" json:"registration_number,omitempty"`

	LoginAttempts int        `bun:"login_attempts" json:"-"`
	LockedUntil   *time.Time `bun:"locked_until,nullzero" json:"-"`
	LastLoginAt   *time.Time `bun:"last_login_at,nullzero" json:"-"`

	EmailVerificationTokenHash string     `bun:"email_verification_token_hash" json:"-"`
	EmailVerificationExpires   *time.Time `bun:"email_verification_expires,nullzero" json:"-"`
	PasswordResetTokenHash     string     `bun:"password_reset_token_hash" json:"-"`
	PasswordResetExpires       *time.Time `bun:"password_reset_expires,nullzero" json:"-"`

	CreatedAt *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"-"`
}

// AccountProfile is the public projection of an Account, safe to return
// from login and profile endpoints. Password and token material never
// leave the record.
type AccountProfile struct {
	ID           string     `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	StudentID    string     `json:"student_id"`
	IsVerified   bool       `json:"is_verified"`
	IsSeller     bool       `json:"is_seller"`
	IsAdmin      bool       `json:"is_admin"`
	Img          string     `json:"img,omitempty"`
	Country      string     `json:"country,omitempty"`
	Phone        string     `json:"phone,omitempty"`
	Desc         string     `json:"desc,omitempty"`
	BusinessType string     `json:"business_type,omitempty"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	CreatedAt    *time.Time `json:"created_at,omitempty"`
}

// PublicProfile strips credential and token material from the record.
func (a *Account) PublicProfile() *AccountProfile {
	if a == nil {
		return nil
	}
	return &AccountProfile{
		ID:           a.ID.String(),
		Username:     a.Username,
		Email:        a.Email,
		StudentID:    a.StudentID,
		IsVerified:   a.IsVerified,
		IsSeller:     a.IsSeller,
		IsAdmin:      a.IsAdmin,
		Img:          a.Img,
		Country:      a.Country,
		Phone:        a.Phone,
		Desc:         a.Desc,
		BusinessType: a.BusinessType,
		LastLoginAt:  a.LastLoginAt,
		CreatedAt:    a.CreatedAt,
	}
}

// IsLocked reports whether a lockout window is active at the given time.
func (a *Account) IsLocked(now time.Time) bool {
	return a.LockedUntil != nil && a.LockedUntil.After(now)
}

// LockRemaining returns how much of the lockout window is left.
func (a *Account) LockRemaining(now time.Time) time.Duration {
	if !a.IsLocked(now) {
		return 0
	}
	return a.LockedUntil.Sub(now)
}

// HasOpenVerification reports whether a verification token window is open.
func (a *Account) HasOpenVerification(now time.Time) bool {
	return a.EmailVerificationTokenHash != "" &&
		a.EmailVerificationExpires != nil &&
		a.EmailVerificationExpires.After(now)
}

// HasOpenReset reports whether a password reset token window is open.
func (a *Account) HasOpenReset(now time.Time) bool {
	return a.PasswordResetTokenHash != "" &&
		a.PasswordResetExpires != nil &&
		a.PasswordResetExpires.After(now)
}

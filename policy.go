package auth

import (
	"regexp"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/nyaruka/phonenumbers"
)

// DefaultStudentEmailDomain is the institutional domain student accounts
// must register with.
const DefaultStudentEmailDomain = "siswa.unimas.my"

const (
	passwordMinLen = 6
	passwordMaxLen = 8
	// PasswordSpecialSet is the allowed special character set.
	PasswordSpecialSet = "!@#$%^&*"
)

var (
	passwordUpper   = regexp.MustCompile(`[A-Z]`)
	passwordDigit   = regexp.MustCompile(`[0-9]`)
	passwordSpecial = regexp.MustCompile(`[!@#$%^&*]`)
	passwordCharset = regexp.MustCompile(`^[A-Za-z0-9!@#$%^&*]+$`)
)

// ValidatePassword enforces the account password policy: 6-8 characters,
// at least one uppercase letter, one digit, and one special character
// from PasswordSpecialSet, drawn only from that alphabet.
func ValidatePassword(password string) error {
	if len(password) < passwordMinLen || len(password) > passwordMaxLen {
		return ErrWeakPassword
	}
	if !passwordCharset.MatchString(password) {
		return ErrWeakPassword
	}
	if !passwordUpper.MatchString(password) {
		return ErrWeakPassword
	}
	if !passwordDigit.MatchString(password) {
		return ErrWeakPassword
	}
	if !passwordSpecial.MatchString(password) {
		return ErrWeakPassword
	}
	return nil
}

// StudentEmailPattern builds the matcher for institutional student
// addresses: a purely numeric local part at the given domain.
func StudentEmailPattern(domain string) *regexp.Regexp {
	if domain == "" {
		domain = DefaultStudentEmailDomain
	}
	return regexp.MustCompile(`^[0-9]+@` + regexp.QuoteMeta(domain) + `$`)
}

// ValidateStudentEmail checks the address against the institutional
// pattern for the configured domain.
func ValidateStudentEmail(email, domain string) error {
	if !StudentEmailPattern(domain).MatchString(email) {
		return ErrInvalidStudentEmail
	}
	return nil
}

// StudentIDFromEmail extracts the numeric local part of a student email.
// The email must already have passed ValidateStudentEmail.
func StudentIDFromEmail(email string) string {
	at := strings.Index(email, "@")
	if at <= 0 {
		return ""
	}
	return email[:at]
}

// ValidateUsername rejects usernames that are too short or look like an
// email address.
func ValidateUsername(username string) error {
	if strings.Contains(username, "@") {
		return ErrUsernameLooksLikeEmail
	}
	if len(username) < 3 {
		return goerrors.New("username must be at least 3 characters", goerrors.CategoryValidation).
			WithCode(goerrors.CodeBadRequest)
	}
	return nil
}

// ValidatePhone checks an optional profile phone number. Empty values
// are accepted; the field is not required at registration.
func ValidatePhone(phone, region string) error {
	if phone == "" {
		return nil
	}
	if region == "" {
		region = "MY"
	}

	parsed, err := phonenumbers.Parse(phone, region)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid phone number").
			WithCode(goerrors.CodeBadRequest)
	}

	if !phonenumbers.IsValidNumber(parsed) {
		return goerrors.New("invalid phone number", goerrors.CategoryValidation).
			WithCode(goerrors.CodeBadRequest)
	}

	return nil
}

package auth

import (
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

const (
	TextCodeInvalidStudentEmail = "INVALID_STUDENT_EMAIL"
	TextCodeWeakPassword        = "WEAK_PASSWORD"
	TextCodeUsernameLikeEmail   = "USERNAME_LOOKS_LIKE_EMAIL"
	TextCodeAccountExists       = "ACCOUNT_EXISTS"
	TextCodeWrongCredentials    = "WRONG_CREDENTIALS"
	TextCodeAccountLocked       = "ACCOUNT_LOCKED"
	TextCodeNotVerified         = "EMAIL_NOT_VERIFIED"
	TextCodeAlreadyVerified     = "ALREADY_VERIFIED"
	TextCodeTokenExpired        = "TOKEN_EXPIRED"
	TextCodeInvalidToken        = "INVALID_TOKEN"
	TextCodeEmailDispatch       = "EMAIL_DISPATCH_FAILED"
)

// ErrInvalidStudentEmail is returned when a registration email does not
// match the institutional student pattern.
var ErrInvalidStudentEmail = goerrors.New("email must be a student email address", goerrors.CategoryValidation).
	WithTextCode(TextCodeInvalidStudentEmail).
	WithCode(goerrors.CodeBadRequest)

// ErrWeakPassword is returned when a password fails the account policy.
var ErrWeakPassword = goerrors.New(
	"password must be 6-8 characters with one uppercase letter, one number, and one special character (!@#$%^&*)",
	goerrors.CategoryValidation,
).
	WithTextCode(TextCodeWeakPassword).
	WithCode(goerrors.CodeBadRequest)

// ErrUsernameLooksLikeEmail rejects usernames that contain an "@".
var ErrUsernameLooksLikeEmail = goerrors.New("username must not be an email address", goerrors.CategoryValidation).
	WithTextCode(TextCodeUsernameLikeEmail).
	WithCode(goerrors.CodeBadRequest)

// ErrAccountExists is returned on duplicate registrations. The message
// deliberately does not disclose whether the username or the email
// collided.
var ErrAccountExists = goerrors.New("username or email already exists", goerrors.CategoryConflict).
	WithTextCode(TextCodeAccountExists).
	WithCode(goerrors.CodeConflict)

// ErrAccountNotFound is returned when no account matches the lookup.
var ErrAccountNotFound = goerrors.New("account not found", goerrors.CategoryNotFound).
	WithCode(goerrors.CodeNotFound)

// ErrWrongCredentials is the uniform wrong-password/wrong-username error.
var ErrWrongCredentials = goerrors.New("wrong password or username", goerrors.CategoryAuth).
	WithTextCode(TextCodeWrongCredentials).
	WithCode(goerrors.CodeUnauthorized)

// ErrAccountLocked is returned while a lockout window is active.
var ErrAccountLocked = goerrors.New("account is temporarily locked, try again later", goerrors.CategoryAuth).
	WithTextCode(TextCodeAccountLocked).
	WithCode(goerrors.CodeUnauthorized)

// ErrNotVerified is returned when the account email was never verified.
var ErrNotVerified = goerrors.New("account email is not verified", goerrors.CategoryAuth).
	WithTextCode(TextCodeNotVerified).
	WithCode(goerrors.CodeUnauthorized)

// ErrAlreadyVerified is returned when a verification flow runs against
// an account that already completed it.
var ErrAlreadyVerified = goerrors.New("account email is already verified", goerrors.CategoryConflict).
	WithTextCode(TextCodeAlreadyVerified).
	WithCode(goerrors.CodeConflict)

// ErrTokenExpired is returned when a verification or reset window passed.
var ErrTokenExpired = goerrors.New("token has expired, request a new one", goerrors.CategoryValidation).
	WithTextCode(TextCodeTokenExpired).
	WithCode(goerrors.CodeBadRequest)

// ErrInvalidToken is returned when a presented token does not match the
// persisted token hash.
var ErrInvalidToken = goerrors.New("invalid token", goerrors.CategoryAuth).
	WithTextCode(TextCodeInvalidToken).
	WithCode(goerrors.CodeUnauthorized)

// ErrEmailDispatchFailed surfaces notifier failures for flows where the
// email is the deliverable (resend verification, forgot password).
var ErrEmailDispatchFailed = goerrors.New("could not send email, try again later", goerrors.CategoryInternal).
	WithTextCode(TextCodeEmailDispatch).
	WithCode(goerrors.CodeInternal)

// ErrMismatchedHashAndPassword is the bcrypt mismatch sentinel.
var ErrMismatchedHashAndPassword = goerrors.New("password does not match", goerrors.CategoryAuth).
	WithTextCode(TextCodeWrongCredentials).
	WithCode(goerrors.CodeUnauthorized)

// ErrNoEmptyString rejects empty hashing input.
var ErrNoEmptyString = goerrors.New("value must not be empty", goerrors.CategoryValidation).
	WithCode(goerrors.CodeBadRequest)

// ErrUnableToFindSession is the error when the request has no cookie
var ErrUnableToFindSession = goerrors.New("unable to find session", goerrors.CategoryAuth).
	WithCode(goerrors.CodeUnauthorized)

// ErrUnableToDecodeSession unable to decode JWT from session cookie
var ErrUnableToDecodeSession = goerrors.New("unable to decode session", goerrors.CategoryAuth).
	WithCode(goerrors.CodeUnauthorized)

// ErrJWTExpired is returned for expired session credentials.
var ErrJWTExpired = goerrors.New("session token is expired", goerrors.CategoryAuth).
	WithTextCode("SESSION_EXPIRED").
	WithCode(goerrors.CodeUnauthorized)

// ErrJWTMalformed is returned for credentials that fail to parse.
var ErrJWTMalformed = goerrors.New("session token is malformed", goerrors.CategoryAuth).
	WithTextCode("SESSION_MALFORMED").
	WithCode(goerrors.CodeUnauthorized)

// LockedError annotates ErrAccountLocked with the remaining lockout time.
func LockedError(remaining time.Duration) *goerrors.Error {
	secs := int(remaining.Round(time.Second).Seconds())
	if secs < 1 {
		secs = 1
	}
	return goerrors.New("account is temporarily locked, try again later", goerrors.CategoryAuth).
		WithTextCode(TextCodeAccountLocked).
		WithCode(goerrors.CodeUnauthorized).
		WithMetadata(map[string]any{
			"retry_after_seconds": secs,
		})
}

// WrapDependency normalizes store/notifier/hasher failures into a
// dependency error the caller may retry.
func WrapDependency(err error, msg string) *goerrors.Error {
	return goerrors.Wrap(err, goerrors.CategoryOperation, msg).
		WithTextCode("DEPENDENCY_UNAVAILABLE").
		WithCode(goerrors.CodeInternal)
}

// IsTokenExpiredError will check for expired JWT session tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for error message
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}

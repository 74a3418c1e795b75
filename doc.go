// Package auth implements account lifecycle and authentication for a
// campus freelance marketplace: registration gated on institutional
// student emails, email verification, login with lockout, password
// reset, and JWT session issuance.
//
// Registration:
//   - RegisterAccountHandler validates the student email against the
//     configured institutional domain, enforces the password policy, and
//     creates the account unverified with a hashed verification token.
//     The raw token only ever travels in the email link.
//
// Login:
//   - AccountProvider evaluates the lockout state before touching the
//     password, clears stale locks lazily, and tracks failed attempts.
//     Auther turns a verified identity into a signed JWT plus the public
//     profile projection.
//
// Tokens:
//   - Verification and reset tokens are random 32-byte values; only the
//     SHA-256 digest is persisted and comparison is constant time.
//     Issuing a new token invalidates the previous one.
//
// HTTP:
//   - AuthController exposes the JSON endpoints on Fiber and sets the
//     session JWT as an HTTP-only cookie while echoing it in the body.
//     Protected resolves tokens cookie-first, then the bearer header.
package auth

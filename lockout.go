package auth

import "time"

// LoginState is the lockout state of an account at login time.
type LoginState string

const (
	// LoginStateUnlocked means login attempts are evaluated normally.
	LoginStateUnlocked LoginState = "unlocked"
	// LoginStateLocked means attempts are refused until the window passes.
	LoginStateLocked LoginState = "locked"
)

// LockoutPolicy configures the failed-login lockout behavior.
// Deployments tune these constants differently (5 attempts with a 15
// minute lock vs 10 attempts with a 10 second lock), so both are
// injected configuration rather than hard-coded.
type LockoutPolicy struct {
	MaxAttempts  int
	LockDuration time.Duration
}

// DefaultLockoutPolicy locks an account for 15 minutes after 5
// consecutive failed attempts.
func DefaultLockoutPolicy() LockoutPolicy {
	return LockoutPolicy{
		MaxAttempts:  5,
		LockDuration: 15 * time.Minute,
	}
}

func (p LockoutPolicy) normalized() LockoutPolicy {
	out := p
	if out.MaxAttempts <= 0 {
		out.MaxAttempts = 5
	}
	if out.LockDuration <= 0 {
		out.LockDuration = 15 * time.Minute
	}
	return out
}

// StateOf reports the lockout state of the account at the given instant.
// An expired lock is reported as unlocked; callers are expected to clear
// the stale lock fields before evaluating credentials.
func (p LockoutPolicy) StateOf(acc *Account, now time.Time) LoginState {
	if acc != nil && acc.IsLocked(now) {
		return LoginStateLocked
	}
	return LoginStateUnlocked
}

// FailureOutcome is the result of recording a failed login attempt.
type FailureOutcome struct {
	Attempts    int
	LockedUntil *time.Time
}

// Locked reports whether the failure crossed the lockout threshold.
func (o FailureOutcome) Locked() bool {
	return o.LockedUntil != nil
}

// OnFailure computes the counter and lock produced by one more failed
// attempt on top of the current tally. The counter is never reset by a
// failure below the threshold.
func (p LockoutPolicy) OnFailure(attempts int, now time.Time) FailureOutcome {
	p = p.normalized()

	out := FailureOutcome{Attempts: attempts + 1}
	if out.Attempts >= p.MaxAttempts {
		until := now.Add(p.LockDuration)
		out.LockedUntil = &until
	}
	return out
}

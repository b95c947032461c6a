package domain

import "time"

// AttemptEntry counts failed validations for one user.
type AttemptEntry struct {
	Count         int
	LastAttemptAt time.Time
}

// LockoutEntry marks a user as blocked until BlockedUntil. It is logically ignored
// once the current time passes BlockedUntil.
type LockoutEntry struct {
	BlockedUntil time.Time
}

// AttemptStats is a read-only snapshot of a user's attempt and lockout state.
type AttemptStats struct {
	UserID        string     `json:"user_id"`
	Attempts      int        `json:"attempts"`
	LastAttemptAt *time.Time `json:"last_attempt_at,omitempty"`
	BlockedUntil  *time.Time `json:"blocked_until,omitempty"`
	Locked        bool       `json:"locked"`
}

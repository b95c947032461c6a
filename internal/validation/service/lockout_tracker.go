package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/allisson/fieldguard/internal/validation/domain"
)

// FormField is the field name used for findings that concern a whole form.
const FormField = "form"

// attemptEntry holds the attempt and lockout state of one user.
type attemptEntry struct {
	mu       sync.Mutex
	attempts domain.AttemptEntry
	lockout  *domain.LockoutEntry
	// inFlight counts attempts that passed BeginAttempt and have not finished.
	inFlight int
	// removed is set when the janitor drops the entry; holders must reload.
	removed bool
}

// LockoutTracker counts failed validations per user and locks users out after too many
// failures inside the block window. MaxAttempts and BlockDuration are read from the live
// configuration on every call. Access to one user's state is serialized by that entry's
// mutex.
type LockoutTracker struct {
	entries sync.Map // map[string]*attemptEntry
	config  ConfigProvider
	now     func() time.Time
	logger  *slog.Logger
}

// NewLockoutTracker creates a LockoutTracker. now may be nil to use the wall clock.
func NewLockoutTracker(config ConfigProvider, now func() time.Time, logger *slog.Logger) *LockoutTracker {
	if now == nil {
		now = time.Now
	}
	return &LockoutTracker{
		config: config,
		now:    now,
		logger: logger,
	}
}

// CheckRateLimit returns a blocking error when userID may not submit, or nil.
//
//   - inside an active lockout: RATE_LIMIT_EXCEEDED with the minutes remaining
//   - MaxAttempts reached inside the window: the lockout starts and ACCOUNT_LOCKED is returned
//   - window expired since the last attempt: the count resets and the call passes
func (t *LockoutTracker) CheckRateLimit(userID string) *domain.ValidationError {
	cfg := t.config.Get()
	if !cfg.EnableRateLimiting || userID == "" {
		return nil
	}

	val, ok := t.entries.Load(userID)
	if !ok {
		return nil
	}
	entry := val.(*attemptEntry)

	entry.mu.Lock()
	defer entry.mu.Unlock()

	return t.gate(userID, entry, cfg, t.now())
}

// BeginAttempt gates userID like CheckRateLimit and, when the call may proceed, reserves
// an in-flight slot in the same critical section. Reserved slots count toward MaxAttempts,
// so a burst of concurrent submissions cannot pass the gate before any of them is
// recorded. The caller must invoke finish exactly once with the outcome; a failed outcome
// is recorded like TrackFailedAttempt.
func (t *LockoutTracker) BeginAttempt(userID string) (finish func(failed bool), blocked *domain.ValidationError) {
	if userID == "" {
		return func(bool) {}, nil
	}

	cfg := t.config.Get()
	if !cfg.EnableRateLimiting {
		return func(failed bool) {
			if failed {
				t.TrackFailedAttempt(userID)
			}
		}, nil
	}

	for {
		val, _ := t.entries.LoadOrStore(userID, &attemptEntry{})
		entry := val.(*attemptEntry)

		entry.mu.Lock()
		if entry.removed {
			entry.mu.Unlock()
			continue
		}

		now := t.now()
		if err := t.gate(userID, entry, cfg, now); err != nil {
			entry.mu.Unlock()
			return func(bool) {}, err
		}

		if entry.attempts.Count+entry.inFlight >= cfg.MaxAttempts {
			entry.mu.Unlock()
			return func(bool) {}, &domain.ValidationError{
				Field:    FormField,
				Kind:     domain.KindRateLimit,
				Message:  "Too many attempts in progress. Please try again in a moment",
				Code:     domain.CodeRateLimitExceeded,
				Severity: domain.SeverityHigh,
			}
		}

		entry.inFlight++
		entry.mu.Unlock()

		var once sync.Once
		return func(failed bool) {
			once.Do(func() { t.finishAttempt(userID, entry, failed) })
		}, nil
	}
}

func (t *LockoutTracker) finishAttempt(userID string, entry *attemptEntry, failed bool) {
	entry.mu.Lock()
	if entry.removed {
		entry.mu.Unlock()
		if failed {
			t.TrackFailedAttempt(userID)
		}
		return
	}
	entry.inFlight--
	if failed {
		entry.attempts.Count++
		entry.attempts.LastAttemptAt = t.now()
	}
	entry.mu.Unlock()
}

// gate applies the lockout rules to entry. The caller holds entry.mu.
func (t *LockoutTracker) gate(
	userID string,
	entry *attemptEntry,
	cfg domain.SecurityConfig,
	now time.Time,
) *domain.ValidationError {
	if entry.lockout != nil && now.Before(entry.lockout.BlockedUntil) {
		minutes := minutesRemaining(entry.lockout.BlockedUntil.Sub(now))
		return &domain.ValidationError{
			Field:    FormField,
			Kind:     domain.KindRateLimit,
			Message:  fmt.Sprintf("Too many attempts. Please try again in %d %s", minutes, plural(minutes)),
			Code:     domain.CodeRateLimitExceeded,
			Severity: domain.SeverityHigh,
		}
	}

	sinceLast := now.Sub(entry.attempts.LastAttemptAt)

	if entry.attempts.Count >= cfg.MaxAttempts && sinceLast < cfg.BlockDuration {
		blockedUntil := now.Add(cfg.BlockDuration)
		entry.lockout = &domain.LockoutEntry{BlockedUntil: blockedUntil}

		t.logger.Warn("user locked out",
			slog.String("user_id", userID),
			slog.Int("attempts", entry.attempts.Count),
			slog.Time("blocked_until", blockedUntil))

		minutes := minutesRemaining(cfg.BlockDuration)
		return &domain.ValidationError{
			Field:    FormField,
			Kind:     domain.KindRateLimit,
			Message:  fmt.Sprintf("Account temporarily locked. Please try again in %d %s", minutes, plural(minutes)),
			Code:     domain.CodeAccountLocked,
			Severity: domain.SeverityCritical,
		}
	}

	if sinceLast >= cfg.BlockDuration {
		entry.attempts.Count = 0
	}

	return nil
}

// TrackFailedAttempt increments the user's failure count and stamps the attempt time.
func (t *LockoutTracker) TrackFailedAttempt(userID string) {
	if userID == "" {
		return
	}

	for {
		val, _ := t.entries.LoadOrStore(userID, &attemptEntry{})
		entry := val.(*attemptEntry)

		entry.mu.Lock()
		if entry.removed {
			entry.mu.Unlock()
			continue
		}
		entry.attempts.Count++
		entry.attempts.LastAttemptAt = t.now()
		entry.mu.Unlock()
		return
	}
}

// ResetUserAttempts clears the user's attempt and lockout state.
func (t *LockoutTracker) ResetUserAttempts(userID string) {
	val, ok := t.entries.LoadAndDelete(userID)
	if !ok {
		return
	}
	entry := val.(*attemptEntry)
	entry.mu.Lock()
	entry.removed = true
	entry.mu.Unlock()
}

// Stats returns a snapshot of the user's state.
func (t *LockoutTracker) Stats(userID string) domain.AttemptStats {
	stats := domain.AttemptStats{UserID: userID}

	val, ok := t.entries.Load(userID)
	if !ok {
		return stats
	}
	entry := val.(*attemptEntry)

	entry.mu.Lock()
	defer entry.mu.Unlock()

	stats.Attempts = entry.attempts.Count
	if !entry.attempts.LastAttemptAt.IsZero() {
		last := entry.attempts.LastAttemptAt
		stats.LastAttemptAt = &last
	}
	if entry.lockout != nil {
		until := entry.lockout.BlockedUntil
		stats.BlockedUntil = &until
		stats.Locked = t.now().Before(until)
	}
	return stats
}

// CleanupStale periodically drops entries whose window and lockout have both expired.
// It returns when ctx is done.
func (t *LockoutTracker) CleanupStale(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.sweep()
		}
	}
}

// sweep removes expired entries and returns how many were removed.
func (t *LockoutTracker) sweep() int {
	cfg := t.config.Get()
	now := t.now()
	removed := 0

	t.entries.Range(func(key, value any) bool {
		entry := value.(*attemptEntry)

		entry.mu.Lock()
		stale := entry.inFlight == 0 &&
			now.Sub(entry.attempts.LastAttemptAt) >= cfg.BlockDuration &&
			(entry.lockout == nil || !now.Before(entry.lockout.BlockedUntil))
		if stale {
			entry.removed = true
			t.entries.CompareAndDelete(key, entry)
			removed++
		}
		entry.mu.Unlock()
		return true
	})

	if removed > 0 {
		t.logger.Debug("removed stale attempt entries", slog.Int("count", removed))
	}
	return removed
}

func minutesRemaining(d time.Duration) int {
	return int(math.Ceil(d.Minutes()))
}

func plural(minutes int) string {
	if minutes == 1 {
		return "minute"
	}
	return "minutes"
}

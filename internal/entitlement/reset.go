package entitlement

import "time"

const (
	// ResetWindowDays is the number of whole days after which monthly
	// counters are zeroed.
	ResetWindowDays = 30

	// CommentWindow is the sliding window used to count recent comments.
	CommentWindow = 24 * time.Hour

	day = 24 * time.Hour
)

// DaysSinceReset returns the whole days elapsed between the account's reset
// anchor and now, rounded down.
func DaysSinceReset(acc Account, now time.Time) int {
	return int(now.Sub(acc.ResetAnchor()) / day)
}

// MaybeReset zeroes both monthly counters and moves LastResetDate to now when
// at least ResetWindowDays have passed. It reports whether it did. A clock
// that reads earlier than the anchor never resets, so LastResetDate only
// moves forward.
func MaybeReset(acc *Account, now time.Time) bool {
	if DaysSinceReset(*acc, now) < ResetWindowDays {
		return false
	}
	acc.DownloadsThisMonth = 0
	acc.CommentsThisMonth = 0
	resetAt := now
	acc.LastResetDate = &resetAt
	return true
}

// ResetCutoff is the latest anchor that is due for a reset at now. Bulk
// sweeps select accounts whose anchor is at or before it.
func ResetCutoff(now time.Time) time.Time {
	return now.Add(-ResetWindowDays * day)
}

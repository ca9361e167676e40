package entitlement

import (
	"time"

	"examplehub_backend/pkg/plan"
)

// Account is the slice of a user record the engine reads and mutates. It is
// loaded under a row lock at the start of a gated transaction and written
// back through Tx.SaveCounters.
type Account struct {
	UserID             uint
	Plan               plan.Plan
	DownloadsThisMonth int64
	// CommentsThisMonth is reported in usage summaries and zeroed with the
	// download counter. Comment gating uses the trailing 24h count instead.
	CommentsThisMonth int64
	DownloadCount     int64
	LastResetDate     *time.Time
	CreatedAt         time.Time
}

// ResetAnchor is the instant the current monthly window started.
func (a Account) ResetAnchor() time.Time {
	if a.LastResetDate != nil {
		return *a.LastResetDate
	}
	return a.CreatedAt
}

// NextReset is the earliest instant at which MaybeReset would zero the
// monthly counters.
func (a Account) NextReset() time.Time {
	return a.ResetAnchor().Add(ResetWindowDays * day)
}

// Clock is the time source. Tests inject a fixed clock.
type Clock interface {
	Now() time.Time
}

type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// SystemClock reads the wall clock in UTC.
var SystemClock Clock = ClockFunc(func() time.Time { return time.Now().UTC() })

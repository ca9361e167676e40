package entitlement

import "examplehub_backend/pkg/plan"

// Action is a gated user action.
type Action string

const (
	ActionSave     Action = "save"
	ActionDownload Action = "download"
	ActionComment  Action = "comment"
)

const (
	msgPaidOnly        = "This feature is available only for Standard or Premium users."
	msgDownloadCeiling = "Download limit reached. Upgrade to Premium for unlimited access."
	msgUpgradeGeneric  = "Please upgrade your plan to access this feature."
)

// CanSave reports whether a user holding savedCount favorites may add one more.
func CanSave(p plan.Plan, savedCount int64) bool {
	return plan.LimitsFor(p).MaxSaves.Allows(savedCount)
}

// CanDownload reports whether one more download is allowed this month. Plans
// without the download capability are refused before the counter is looked at.
func CanDownload(p plan.Plan, downloadsThisMonth int64) bool {
	return checkDownload(p, downloadsThisMonth) == nil
}

// CanComment reports whether a user with commentsLast24h comments in the
// trailing window may post another.
func CanComment(p plan.Plan, commentsLast24h int64) bool {
	return plan.LimitsFor(p).MaxCommentsPerDay.Allows(commentsLast24h)
}

func checkDownload(p plan.Plan, downloadsThisMonth int64) error {
	limits := plan.LimitsFor(p)
	if !limits.CanDownload {
		return ErrCapabilityDisabled
	}
	if !limits.MaxDownloadsPerMonth.Allows(downloadsThisMonth) {
		return ErrLimitExceeded
	}
	return nil
}

// Check evaluates action against usage and returns a *Denial when refused.
func Check(p plan.Plan, action Action, usage int64) error {
	var reason error
	switch action {
	case ActionSave:
		if !CanSave(p, usage) {
			reason = ErrLimitExceeded
		}
	case ActionDownload:
		reason = checkDownload(p, usage)
	case ActionComment:
		if !CanComment(p, usage) {
			reason = ErrLimitExceeded
		}
	default:
		reason = ErrCapabilityDisabled
	}
	if reason != nil {
		return newDenial(action, p, reason)
	}
	return nil
}

// UpgradeMessage picks the copy shown with a denial.
func UpgradeMessage(p plan.Plan, action Action) string {
	switch {
	case p == plan.Free || !p.Valid():
		return msgPaidOnly
	case p == plan.Standard && action == ActionDownload:
		return msgDownloadCeiling
	default:
		return msgUpgradeGeneric
	}
}

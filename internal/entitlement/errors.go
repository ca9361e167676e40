package entitlement

import (
	"errors"
	"fmt"

	"examplehub_backend/pkg/plan"
)

var (
	ErrUnauthenticated    = errors.New("entitlement: unauthenticated")
	ErrLimitExceeded      = errors.New("entitlement: plan limit exceeded")
	ErrCapabilityDisabled = errors.New("entitlement: action not available on plan")
	ErrAccountNotFound    = errors.New("entitlement: account not found")

	// ErrConflict is returned by a Store when a transaction could not be
	// serialized against a concurrent one. The service retries once.
	ErrConflict = errors.New("entitlement: concurrent update conflict")

	// ErrDuplicate is returned by a Store when an insert hits a uniqueness
	// constraint.
	ErrDuplicate = errors.New("entitlement: duplicate record")
)

// Denial is the structured refusal of a gated action. It unwraps to either
// ErrLimitExceeded or ErrCapabilityDisabled; callers that only need to show
// the upgrade prompt can ignore the difference.
type Denial struct {
	Action          Action    `json:"deniedAction"`
	Plan            plan.Plan `json:"currentPlan"`
	UpgradeMessage  string    `json:"upgradeMessage"`
	RequiresUpgrade bool      `json:"requiresUpgrade"`
	reason          error
}

func newDenial(action Action, p plan.Plan, reason error) *Denial {
	return &Denial{
		Action:          action,
		Plan:            p,
		UpgradeMessage:  UpgradeMessage(p, action),
		RequiresUpgrade: true,
		reason:          reason,
	}
}

func (d *Denial) Error() string {
	return fmt.Sprintf("%s denied on %s plan: %v", d.Action, d.Plan, d.reason)
}

func (d *Denial) Unwrap() error {
	return d.reason
}

// IsDenial reports whether err carries a *Denial and returns it.
func IsDenial(err error) (*Denial, bool) {
	var d *Denial
	if errors.As(err, &d) {
		return d, true
	}
	return nil, false
}

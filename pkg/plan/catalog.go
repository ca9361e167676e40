package plan

import (
	"database/sql/driver"
	"fmt"
)

// Plan is one of the subscription tiers. The zero value is not a valid plan;
// use Parse for values coming from outside the process.
type Plan string

const (
	Free     Plan = "Free"
	Standard Plan = "Standard"
	Premium  Plan = "Premium"
)

// Limit is a numeric ceiling on a usage counter. Unlimited never denies.
type Limit int64

const Unlimited Limit = -1

// Allows reports whether one more unit may be consumed when current units
// are already used. The ceiling itself is exclusive.
func (l Limit) Allows(current int64) bool {
	if l == Unlimited {
		return true
	}
	return current < int64(l)
}

// IsUnlimited reports whether l is the unbounded sentinel.
func (l Limit) IsUnlimited() bool {
	return l == Unlimited
}

type Limits struct {
	MaxSaves             Limit `json:"maxSaves"`
	MaxDownloadsPerMonth Limit `json:"maxDownloadsPerMonth"`
	MaxCommentsPerDay    Limit `json:"maxCommentsPerDay"`
	CanDownload          bool  `json:"canDownload"`
}

// Details is the catalog entry for a plan: its limits plus what the pricing
// page and checkout need.
type Details struct {
	Plan       Plan   `json:"plan"`
	Name       string `json:"name"`
	PriceCents int64  `json:"priceCents"`
	Limits     Limits `json:"limits"`
	rank       int
}

var catalog = map[Plan]Details{
	Free: {
		Plan:       Free,
		Name:       "Free",
		PriceCents: 0,
		Limits: Limits{
			MaxSaves:             5,
			MaxDownloadsPerMonth: 0,
			MaxCommentsPerDay:    5,
			CanDownload:          false,
		},
		rank: 0,
	},
	Standard: {
		Plan:       Standard,
		Name:       "Standard",
		PriceCents: 1200,
		Limits: Limits{
			MaxSaves:             20,
			MaxDownloadsPerMonth: 10,
			MaxCommentsPerDay:    50,
			CanDownload:          true,
		},
		rank: 1,
	},
	Premium: {
		Plan:       Premium,
		Name:       "Premium",
		PriceCents: 2900,
		Limits: Limits{
			MaxSaves:             Unlimited,
			MaxDownloadsPerMonth: Unlimited,
			MaxCommentsPerDay:    Unlimited,
			CanDownload:          true,
		},
		rank: 2,
	},
}

// Parse converts a raw identifier into a Plan, rejecting anything outside
// the catalog.
func Parse(s string) (Plan, error) {
	p := Plan(s)
	if _, ok := catalog[p]; !ok {
		return "", fmt.Errorf("unknown plan %q", s)
	}
	return p, nil
}

// Valid reports whether p is a catalog plan.
func (p Plan) Valid() bool {
	_, ok := catalog[p]
	return ok
}

func (p Plan) String() string {
	return string(p)
}

// Scan implements sql.Scanner. Unknown values stored in the database are
// read as Free so a bad row can never grant unlimited usage.
func (p *Plan) Scan(value any) error {
	var s string
	switch v := value.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	case nil:
		s = ""
	default:
		return fmt.Errorf("cannot scan %T into plan.Plan", value)
	}
	parsed, err := Parse(s)
	if err != nil {
		*p = Free
		return nil
	}
	*p = parsed
	return nil
}

// Value implements driver.Valuer.
func (p Plan) Value() (driver.Value, error) {
	if !p.Valid() {
		return string(Free), nil
	}
	return string(p), nil
}

// LimitsFor returns the limits of p. It never fails: anything outside the
// catalog gets the Free limits.
func LimitsFor(p Plan) Limits {
	return Lookup(p).Limits
}

// LimitsForID is LimitsFor for raw identifiers.
func LimitsForID(id string) Limits {
	return LimitsFor(Plan(id))
}

// Lookup returns the catalog entry for p, falling back to Free.
func Lookup(p Plan) Details {
	if d, ok := catalog[p]; ok {
		return d
	}
	return catalog[Free]
}

// All returns the catalog ordered from lowest to highest tier.
func All() []Details {
	return []Details{catalog[Free], catalog[Standard], catalog[Premium]}
}

// IsUpgrade reports whether moving from current to target is a strict upgrade.
func IsUpgrade(current, target Plan) bool {
	return Lookup(target).rank > Lookup(current).rank && target.Valid()
}

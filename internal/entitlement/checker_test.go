package entitlement_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"examplehub_backend/internal/entitlement"
	"examplehub_backend/pkg/plan"
)

func TestPremiumNeverDenied(t *testing.T) {
	t.Parallel()

	for _, n := range []int64{0, 1, 20, 10_000, 1_000_000_000} {
		assert.True(t, entitlement.CanSave(plan.Premium, n))
		assert.True(t, entitlement.CanDownload(plan.Premium, n))
		assert.True(t, entitlement.CanComment(plan.Premium, n))
	}
}

func TestFreeCannotDownload(t *testing.T) {
	t.Parallel()

	for _, n := range []int64{0, 1, 100} {
		assert.False(t, entitlement.CanDownload(plan.Free, n))
	}

	err := entitlement.Check(plan.Free, entitlement.ActionDownload, 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, entitlement.ErrCapabilityDisabled)
}

func TestBoundaryIsExclusive(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		plan   plan.Plan
		action entitlement.Action
		usage  int64
		allow  bool
	}{
		{"standard 19 saves", plan.Standard, entitlement.ActionSave, 19, true},
		{"standard 20 saves", plan.Standard, entitlement.ActionSave, 20, false},
		{"free 4 saves", plan.Free, entitlement.ActionSave, 4, true},
		{"free 5 saves", plan.Free, entitlement.ActionSave, 5, false},
		{"standard 9 downloads", plan.Standard, entitlement.ActionDownload, 9, true},
		{"standard 10 downloads", plan.Standard, entitlement.ActionDownload, 10, false},
		{"free 4 comments", plan.Free, entitlement.ActionComment, 4, true},
		{"free 5 comments", plan.Free, entitlement.ActionComment, 5, false},
		{"standard 49 comments", plan.Standard, entitlement.ActionComment, 49, true},
		{"standard 50 comments", plan.Standard, entitlement.ActionComment, 50, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := entitlement.Check(tt.plan, tt.action, tt.usage)
			if tt.allow {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, entitlement.ErrLimitExceeded)
		})
	}
}

func TestUnknownPlanGetsFreeLimits(t *testing.T) {
	t.Parallel()

	unknown := plan.Plan("Enterprise-unlisted")
	assert.False(t, entitlement.CanSave(unknown, 5))
	assert.True(t, entitlement.CanSave(unknown, 4))
	assert.False(t, entitlement.CanDownload(unknown, 0))
	assert.False(t, entitlement.CanComment(unknown, 5))
}

func TestDenialPayload(t *testing.T) {
	t.Parallel()

	err := entitlement.Check(plan.Standard, entitlement.ActionDownload, 10)
	d, ok := entitlement.IsDenial(err)
	require.True(t, ok)
	assert.Equal(t, entitlement.ActionDownload, d.Action)
	assert.Equal(t, plan.Standard, d.Plan)
	assert.True(t, d.RequiresUpgrade)
	assert.Equal(t, "Download limit reached. Upgrade to Premium for unlimited access.", d.UpgradeMessage)

	_, ok = entitlement.IsDenial(errors.New("other"))
	assert.False(t, ok)
}

func TestUpgradeMessage(t *testing.T) {
	t.Parallel()

	const (
		paidOnly = "This feature is available only for Standard or Premium users."
		ceiling  = "Download limit reached. Upgrade to Premium for unlimited access."
		generic  = "Please upgrade your plan to access this feature."
	)

	tests := []struct {
		plan   plan.Plan
		action entitlement.Action
		want   string
	}{
		{plan.Free, entitlement.ActionSave, paidOnly},
		{plan.Free, entitlement.ActionDownload, paidOnly},
		{plan.Free, entitlement.ActionComment, paidOnly},
		{plan.Standard, entitlement.ActionDownload, ceiling},
		{plan.Standard, entitlement.ActionSave, generic},
		{plan.Standard, entitlement.ActionComment, generic},
		{plan.Premium, entitlement.ActionSave, generic},
	}

	for _, tt := range tests {
		t.Run(string(tt.plan)+"/"+string(tt.action), func(t *testing.T) {
			assert.Equal(t, tt.want, entitlement.UpgradeMessage(tt.plan, tt.action))
		})
	}
}

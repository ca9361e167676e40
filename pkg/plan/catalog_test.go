package plan_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"examplehub_backend/pkg/plan"
)

func TestLimitsFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		plan plan.Plan
		want plan.Limits
	}{
		{plan.Free, plan.Limits{MaxSaves: 5, MaxDownloadsPerMonth: 0, MaxCommentsPerDay: 5, CanDownload: false}},
		{plan.Standard, plan.Limits{MaxSaves: 20, MaxDownloadsPerMonth: 10, MaxCommentsPerDay: 50, CanDownload: true}},
		{plan.Premium, plan.Limits{MaxSaves: plan.Unlimited, MaxDownloadsPerMonth: plan.Unlimited, MaxCommentsPerDay: plan.Unlimited, CanDownload: true}},
	}

	for _, tt := range tests {
		t.Run(string(tt.plan), func(t *testing.T) {
			assert.Equal(t, tt.want, plan.LimitsFor(tt.plan))
		})
	}
}

func TestLimitsFor_UnknownPlanFallsBackToFree(t *testing.T) {
	t.Parallel()

	free := plan.LimitsFor(plan.Free)

	assert.Equal(t, free, plan.LimitsForID("Enterprise-unlisted"))
	assert.Equal(t, free, plan.LimitsForID(""))
	assert.Equal(t, free, plan.LimitsForID("premium"))
	assert.False(t, plan.LimitsForID("Enterprise-unlisted").MaxSaves.IsUnlimited())
}

func TestLimitAllows(t *testing.T) {
	t.Parallel()

	assert.True(t, plan.Limit(20).Allows(19))
	assert.False(t, plan.Limit(20).Allows(20))
	assert.False(t, plan.Limit(0).Allows(0))
	assert.True(t, plan.Unlimited.Allows(0))
	assert.True(t, plan.Unlimited.Allows(1_000_000_000))
}

func TestParse(t *testing.T) {
	t.Parallel()

	p, err := plan.Parse("Standard")
	require.NoError(t, err)
	assert.Equal(t, plan.Standard, p)

	_, err = plan.Parse("Enterprise")
	assert.Error(t, err)
}

func TestPlanScan(t *testing.T) {
	t.Parallel()

	var p plan.Plan
	require.NoError(t, p.Scan("Premium"))
	assert.Equal(t, plan.Premium, p)

	require.NoError(t, p.Scan([]byte("Gold")))
	assert.Equal(t, plan.Free, p)

	assert.Error(t, p.Scan(42))
}

func TestIsUpgrade(t *testing.T) {
	t.Parallel()

	assert.True(t, plan.IsUpgrade(plan.Free, plan.Standard))
	assert.True(t, plan.IsUpgrade(plan.Standard, plan.Premium))
	assert.False(t, plan.IsUpgrade(plan.Standard, plan.Standard))
	assert.False(t, plan.IsUpgrade(plan.Premium, plan.Standard))
	assert.False(t, plan.IsUpgrade(plan.Free, plan.Plan("Enterprise")))
}

func TestAllIsOrdered(t *testing.T) {
	t.Parallel()

	all := plan.All()
	require.Len(t, all, 3)
	assert.Equal(t, plan.Free, all[0].Plan)
	assert.Equal(t, plan.Standard, all[1].Plan)
	assert.Equal(t, plan.Premium, all[2].Plan)
	assert.Equal(t, int64(1200), all[1].PriceCents)
	assert.Equal(t, int64(2900), all[2].PriceCents)
}

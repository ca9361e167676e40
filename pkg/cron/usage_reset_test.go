package cron_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"examplehub_backend/pkg/cron"
)

type fakeResetter struct {
	calledAt time.Time
	n        int64
	err      error
}

func (f *fakeResetter) ResetExpiredUsage(_ context.Context, now time.Time) (int64, error) {
	f.calledAt = now
	return f.n, f.err
}

func TestRunUsageReset(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 2, 1, 0, 15, 0, 0, time.UTC)
	r := &fakeResetter{n: 4}

	assert.Equal(t, int64(4), cron.RunUsageReset(context.Background(), r, now))
	assert.Equal(t, now, r.calledAt)

	r.err = errors.New("db down")
	assert.Zero(t, cron.RunUsageReset(context.Background(), r, now))
}

func TestInitUsageResetCron(t *testing.T) {
	t.Parallel()

	c := cron.NewScheduler()
	require.NoError(t, cron.InitUsageResetCron(c, &fakeResetter{}, time.Now))

	entries := c.Entries()
	require.Len(t, entries, 1)

	from := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 2, 2, 0, 15, 0, 0, time.UTC), entries[0].Schedule.Next(from))
}

func TestInitDailyDigestCronDisabledWithoutRecipient(t *testing.T) {
	t.Parallel()

	c := cron.NewScheduler()
	require.NoError(t, cron.InitDailyDigestCron(c, nil, nil, ""))
	assert.Empty(t, c.Entries())
}

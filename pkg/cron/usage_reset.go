package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"examplehub_backend/pkg/logging"
)

const usageResetSpec = "15 0 * * *"

// UsageResetter zeroes monthly counters that are due in bulk.
type UsageResetter interface {
	ResetExpiredUsage(ctx context.Context, now time.Time) (int64, error)
}

// InitUsageResetCron registers the daily sweep that applies the 30-day reset
// to accounts that have not made a gated request since their window ended.
func InitUsageResetCron(c *cron.Cron, r UsageResetter, now func() time.Time) error {
	_, err := c.AddFunc(usageResetSpec, func() {
		RunUsageReset(context.Background(), r, now())
	})
	if err != nil {
		return fmt.Errorf("could not schedule usage reset: %w", err)
	}
	logrus.Info("Usage reset cron initialized")
	return nil
}

func RunUsageReset(ctx context.Context, r UsageResetter, now time.Time) int64 {
	n, err := r.ResetExpiredUsage(ctx, now)
	if err != nil {
		logging.LogError("usage_reset_failed", err, map[string]interface{}{"run_at": now})
		return 0
	}
	logrus.WithFields(logrus.Fields{"accounts": n, "run_at": now}).Info("Monthly usage reset sweep finished")
	return n
}

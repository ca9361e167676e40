package cron

import (
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"examplehub_backend/internal/model"
	"examplehub_backend/pkg/email"
	"examplehub_backend/pkg/logging"
)

var (
	lastDigestRun time.Time
	digestMu      sync.Mutex
)

// InitDailyDigestCron mails the admin a summary of the last 24 hours every
// evening. Nothing is scheduled without a recipient.
func InitDailyDigestCron(c *cron.Cron, db *gorm.DB, mailer *email.EmailService, adminEmail string) error {
	if mailer == nil || adminEmail == "" {
		logrus.Info("Daily digest disabled: no mailer or ADMIN_EMAIL")
		return nil
	}

	_, err := c.AddFunc("0 19 * * *", func() {
		digestMu.Lock()
		defer digestMu.Unlock()

		if time.Since(lastDigestRun) < 23*time.Hour {
			logrus.Info("Daily digest already sent today, skipping")
			return
		}

		now := time.Now().UTC()
		data, err := CollectDigest(db, now)
		if err != nil {
			logging.LogError("daily_digest_query_failed", err, nil)
			return
		}
		if err := mailer.SendDailyDigest(adminEmail, data); err != nil {
			logging.LogError("daily_digest_send_failed", err, nil)
			return
		}
		lastDigestRun = now
	})
	if err != nil {
		return fmt.Errorf("could not schedule daily digest: %w", err)
	}

	logrus.Info("Daily digest cron initialized")
	return nil
}

// CollectDigest counts what happened in the 24 hours before now.
func CollectDigest(db *gorm.DB, now time.Time) (email.DailyDigestData, error) {
	since := now.Add(-24 * time.Hour)
	data := email.DailyDigestData{Date: now}

	counts := []struct {
		model interface{}
		where string
		args  []interface{}
		dst   *int64
	}{
		{&model.User{}, "created_at >= ?", []interface{}{since}, &data.NewUsers},
		{&model.Subscriber{}, "created_at >= ?", []interface{}{since}, &data.NewSubscribers},
		{&model.DownloadRecord{}, "created_at >= ?", []interface{}{since}, &data.Downloads},
		{&model.Comment{}, "created_at >= ?", []interface{}{since}, &data.Comments},
		{&model.ActivityLog{}, "created_at >= ? AND type = ?", []interface{}{since, model.ActivityUpgrade}, &data.Upgrades},
	}

	for _, q := range counts {
		if err := db.Model(q.model).Where(q.where, q.args...).Count(q.dst).Error; err != nil {
			return email.DailyDigestData{}, fmt.Errorf("count %T: %w", q.model, err)
		}
	}
	return data, nil
}

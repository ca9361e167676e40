package cron

import (
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// NewScheduler returns a UTC cron runner that recovers from panicking jobs.
func NewScheduler() *cron.Cron {
	return cron.New(
		cron.WithLocation(time.UTC),
		cron.WithChain(cron.Recover(cron.VerbosePrintfLogger(logrus.StandardLogger()))),
	)
}

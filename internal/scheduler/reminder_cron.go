package scheduler

import (
	"context"
	"time"

	"github.com/kmehta/water-intake-tracker/internal/config"
	"github.com/kmehta/water-intake-tracker/internal/jobs"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// StartReminderJobs wires the reminder job into the process scheduler. Push
// mode checks once per hour on the hour, like the original scheduled
// function; poll mode ticks every five minutes while the process runs. Both
// modes share the daily marker cleanup.
func StartReminderJobs(job *jobs.ReminderJob, cfg *config.Config) *cron.Cron {
	c := cron.New()

	if cfg.ReminderMode == "poll" {
		c.AddFunc("*/5 * * * *", func() {
			if err := job.RunPollScan(context.Background()); err != nil {
				logrus.WithError(err).Error("Reminder poll scan failed")
			}
		})
		logrus.Info("Reminder scheduler started in poll mode (5-minute window)")
	} else {
		// Every hour on the hour
		c.AddFunc("0 * * * *", func() {
			if err := job.RunHourlyScan(context.Background()); err != nil {
				logrus.WithError(err).Error("Hourly reminder scan failed")
			}
		})
		logrus.Info("Reminder scheduler started in push mode (hourly)")
	}

	// Drop stale sent-markers nightly
	c.AddFunc("0 3 * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if err := job.RunMarkerCleanup(ctx); err != nil {
			logrus.WithError(err).Error("Reminder marker cleanup failed")
		}
	})

	c.Start()
	return c
}

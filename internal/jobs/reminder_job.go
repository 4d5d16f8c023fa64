package jobs

import (
	"context"
	"time"

	"github.com/kmehta/water-intake-tracker/internal/services"
	"github.com/sirupsen/logrus"
)

// ReminderJob drives the reminder scans from the scheduler. Each invocation
// is independent; the persisted markers keep overlapping runs from double
// sending.
type ReminderJob struct {
	ReminderService *services.ReminderService
}

// NewReminderJob creates a new instance of ReminderJob.
func NewReminderJob(reminderService *services.ReminderService) *ReminderJob {
	return &ReminderJob{ReminderService: reminderService}
}

// RunHourlyScan performs the push-mode reminder pass for the current hour.
func (j *ReminderJob) RunHourlyScan(ctx context.Context) error {
	logrus.Info("Starting hourly reminder scan")
	return j.ReminderService.RunHourlyCheck(ctx, time.Now())
}

// RunPollScan performs one poll-mode pass against the 5-minute window.
func (j *ReminderJob) RunPollScan(ctx context.Context) error {
	return j.ReminderService.RunPollCheck(ctx, time.Now())
}

// RunMarkerCleanup drops sent-markers older than a week.
func (j *ReminderJob) RunMarkerCleanup(ctx context.Context) error {
	return j.ReminderService.CleanupOldMarkers(ctx)
}

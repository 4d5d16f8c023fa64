package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kmehta/water-intake-tracker/internal/config"
	"github.com/kmehta/water-intake-tracker/internal/models"
	"github.com/kmehta/water-intake-tracker/internal/repository"
	"github.com/kmehta/water-intake-tracker/pkg/datekey"
	"github.com/kmehta/water-intake-tracker/pkg/email"
	"github.com/sirupsen/logrus"
)

// ErrEmailDisabled is returned when the admin kill switch blocks a send.
var ErrEmailDisabled = errors.New("email system is disabled")

// ErrInvalidSlot is returned for a reminder slot whose time cannot be resolved.
var ErrInvalidSlot = errors.New("reminder slot has no valid time")

// pollWindow is how far past its scheduled instant a slot may still fire in
// poll mode; it equals the poll interval so each slot fires at most once.
const pollWindow = 5 * time.Minute

// SlotTime is a resolved reminder time of day.
type SlotTime struct {
	Hour   int
	Minute int
}

// ResolveSlotTime resolves a slot's HH:MM from its preset, or from its custom
// time when the preset is the literal "custom".
func ResolveSlotTime(slot models.ReminderSlot) (SlotTime, error) {
	raw := slot.Preset
	if raw == "" || raw == "custom" {
		raw = slot.Custom
	}
	if raw == "" {
		return SlotTime{}, ErrInvalidSlot
	}

	var st SlotTime
	if _, err := fmt.Sscanf(raw, "%d:%d", &st.Hour, &st.Minute); err != nil {
		return SlotTime{}, fmt.Errorf("malformed reminder time %q", raw)
	}
	if st.Hour < 0 || st.Hour > 23 || st.Minute < 0 || st.Minute > 59 {
		return SlotTime{}, fmt.Errorf("reminder time %q out of range", raw)
	}
	return st, nil
}

// MatchHour reports whether an enabled slot fires for the given hour. Push
// mode runs hourly, so matching is hour-granularity like the original
// scheduled job.
func MatchHour(slot models.ReminderSlot, hour int) bool {
	if !slot.Enabled {
		return false
	}
	st, err := ResolveSlotTime(slot)
	if err != nil {
		return false
	}
	return st.Hour == hour
}

// MatchWindow reports whether an enabled slot fires at now in poll mode: now
// must fall within [slot, slot+pollWindow).
func MatchWindow(slot models.ReminderSlot, now time.Time) bool {
	if !slot.Enabled {
		return false
	}
	st, err := ResolveSlotTime(slot)
	if err != nil {
		return false
	}
	scheduled := time.Date(now.Year(), now.Month(), now.Day(), st.Hour, st.Minute, 0, 0, now.Location())
	diff := now.Sub(scheduled)
	return diff >= 0 && diff < pollWindow
}

// progressProvider supplies the current-day progress embedded in emails.
type progressProvider interface {
	TodayProgress(ctx context.Context, userID string, defaultGoal int, loc *time.Location) (*Progress, error)
}

// notifiableUsers lists accounts eligible for reminders.
type notifiableUsers interface {
	GetUsersWithNotifications(ctx context.Context) ([]models.User, error)
}

// emailConfigSource provides the global admin email configuration.
type emailConfigSource interface {
	Get(ctx context.Context) (*models.EmailConfig, error)
}

// ReminderService matches reminder slots against the clock and dispatches
// emails. It is stateless between runs: duplicate-send suppression lives in
// the persisted reminder log, so overlapping job invocations stay safe.
type ReminderService struct {
	users       notifiableUsers
	progress    progressProvider
	emailConfig emailConfigSource
	log         repository.ReminderLogStore
	dispatcher  email.Dispatcher
	cfg         *config.Config
}

// NewReminderService creates a new instance of ReminderService.
func NewReminderService(users notifiableUsers, progress progressProvider, emailConfig emailConfigSource, log repository.ReminderLogStore, dispatcher email.Dispatcher, cfg *config.Config) *ReminderService {
	return &ReminderService{
		users:       users,
		progress:    progress,
		emailConfig: emailConfig,
		log:         log,
		dispatcher:  dispatcher,
		cfg:         cfg,
	}
}

func (s *ReminderService) userLocation(user *models.User) *time.Location {
	tz := user.Settings.Timezone
	if tz == "" {
		tz = s.cfg.DefaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		logrus.WithField("timezone", tz).Warn("Unknown timezone, falling back to UTC")
		return time.UTC
	}
	return loc
}

func (s *ReminderService) emailEnabled(ctx context.Context) (bool, error) {
	cfg, err := s.emailConfig.Get(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to read email config: %v", err)
	}
	return cfg.Enabled, nil
}

// RunHourlyCheck is the push-mode pass: for every eligible user and every
// enabled slot whose hour matches the current hour in the user's timezone,
// dispatch one reminder. Each user's send is independent; failures are
// counted, never propagated.
func (s *ReminderService) RunHourlyCheck(ctx context.Context, now time.Time) error {
	enabled, err := s.emailEnabled(ctx)
	if err != nil {
		return err
	}
	if !enabled {
		logrus.Info("Email system disabled, skipping reminder check")
		return nil
	}

	users, err := s.users.GetUsersWithNotifications(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch users: %v", err)
	}

	sent, failed := 0, 0
	for i := range users {
		user := &users[i]
		loc := s.userLocation(user)
		localNow := now.In(loc)
		hour := localNow.Hour()
		today := datekey.Format(localNow)

		for slotIdx, slot := range user.Settings.Slots() {
			slotNum := slotIdx + 1
			if !MatchHour(slot, hour) {
				continue
			}

			// Claim the marker first so an overlapping run cannot send twice.
			claimed, err := s.log.MarkSent(ctx, user.ID.Hex(), slotNum, today)
			if err != nil {
				logrus.WithError(err).Warnf("Failed to record reminder marker for user %s", user.ID.Hex())
				failed++
				continue
			}
			if !claimed {
				continue
			}

			if err := s.sendReminder(ctx, user, loc, fmt.Sprintf("Reminder %d", slotNum), false); err != nil {
				logrus.WithError(err).Warnf("Failed to send reminder to %s", user.Email)
				failed++
				continue
			}
			sent++
		}
	}

	logrus.WithFields(logrus.Fields{
		"sent":   sent,
		"failed": failed,
	}).Info("Hourly reminder check completed")
	return nil
}

// RunPollCheck is the poll-mode pass, run every five minutes: a slot fires
// when now falls inside its window and it has not already fired today. The
// marker is set only after a successful send.
func (s *ReminderService) RunPollCheck(ctx context.Context, now time.Time) error {
	enabled, err := s.emailEnabled(ctx)
	if err != nil {
		return err
	}
	if !enabled {
		return nil
	}

	users, err := s.users.GetUsersWithNotifications(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch users: %v", err)
	}

	for i := range users {
		user := &users[i]
		loc := s.userLocation(user)
		localNow := now.In(loc)
		today := datekey.Format(localNow)

		for slotIdx, slot := range user.Settings.Slots() {
			slotNum := slotIdx + 1
			if !MatchWindow(slot, localNow) {
				continue
			}

			already, err := s.log.WasSent(ctx, user.ID.Hex(), slotNum, today)
			if err != nil || already {
				continue
			}

			if err := s.sendReminder(ctx, user, loc, fmt.Sprintf("Reminder %d", slotNum), false); err != nil {
				logrus.WithError(err).Warnf("Failed to send reminder to %s", user.Email)
				continue
			}
			if _, err := s.log.MarkSent(ctx, user.ID.Hex(), slotNum, today); err != nil {
				logrus.WithError(err).Warn("Reminder sent but marker not recorded")
			}
		}
	}
	return nil
}

// SendTestEmail sends an on-demand test reminder to the caller. It requires
// power-user verification and respects the admin kill switch.
func (s *ReminderService) SendTestEmail(ctx context.Context, user *models.User) (string, error) {
	if !user.Settings.PowerUserVerified {
		return "", ErrNotPowerUser
	}

	enabled, err := s.emailEnabled(ctx)
	if err != nil {
		return "", err
	}
	if !enabled {
		return "", ErrEmailDisabled
	}

	if err := s.sendReminder(ctx, user, s.userLocation(user), "Test Email", true); err != nil {
		return "", fmt.Errorf("failed to send test email: %v", err)
	}

	logrus.WithField("email", user.Email).Info("Test email sent")
	return user.Email, nil
}

// CleanupOldMarkers drops reminder markers older than a week.
func (s *ReminderService) CleanupOldMarkers(ctx context.Context) error {
	return s.log.DeleteOlderThan(ctx, time.Now().Add(-7*24*time.Hour))
}

func (s *ReminderService) sendReminder(ctx context.Context, user *models.User, loc *time.Location, timeLabel string, isTest bool) error {
	progress, err := s.progress.TodayProgress(ctx, user.ID.Hex(), user.Settings.DefaultDailyGoal, loc)
	if err != nil {
		// A reminder is still worth sending when progress cannot be read.
		logrus.WithError(err).Warn("Failed to read progress for reminder email")
		goal := user.Settings.DefaultDailyGoal
		if goal <= 0 {
			goal = 2000
		}
		progress = &Progress{Amount: 0, Goal: goal, Percentage: 0}
	}

	subject, body := buildReminderEmail(progress, s.cfg.AppURL, timeLabel, isTest)
	return s.dispatcher.Send(user.Email, subject, body)
}

// buildReminderEmail renders the templated reminder: greeting, current
// intake, goal, percentage and a call-to-action link back to the app.
func buildReminderEmail(progress *Progress, appURL, timeLabel string, isTest bool) (subject, body string) {
	subject = "Time to Hydrate!"
	heading := "Time for a water break!"
	if isTest {
		subject = "TEST - Water Intake Reminder"
		heading = "This is a test email to verify your notification setup."
	} else if timeLabel != "" {
		subject = fmt.Sprintf("%s - Water Reminder", timeLabel)
	}

	capped := progress.Percentage
	if capped > 100 {
		capped = 100
	}

	encouragement := "Remember to drink a glass of water and update your intake."
	if progress.Percentage >= 100 {
		encouragement = "Congratulations! You've already met your goal for today. Keep it up!"
	}

	body = fmt.Sprintf(`<html><body>
<h1>Time to Hydrate!</h1>
<p>%s</p>
<p>Hi there! Here's your progress today:</p>
<div style="width:100%%;background:#e0e0e0;border-radius:15px"><div style="width:%d%%;height:30px;background:#4A90E2;border-radius:15px"></div></div>
<ul>
<li>Current: %d ml</li>
<li>Goal: %d ml</li>
<li>Progress: %d%%</li>
</ul>
<p>%s</p>
<p><a href=%q>Update Now</a></p>
<p style="color:#999;font-size:12px">Water Intake Tracker &middot; <a href=%q>Manage notification settings</a></p>
</body></html>`,
		heading, capped, progress.Amount, progress.Goal, progress.Percentage, encouragement, appURL, appURL)
	return subject, body
}

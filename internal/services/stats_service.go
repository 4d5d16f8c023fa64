package services

import (
	"github.com/kmehta/water-intake-tracker/internal/models"
	"github.com/kmehta/water-intake-tracker/pkg/datekey"
)

// Bucket labels, highest threshold first.
var bucketLabels = []string{"100", "75", "50", "25", "0"}

// Statistics summarizes a user's tracked days.
type Statistics struct {
	// BucketCounts maps achievement thresholds ("100", "75", "50", "25",
	// "0") to the number of days whose percentage meets that threshold.
	BucketCounts map[string]int `json:"bucket_counts"`
	// TotalTrackedDays counts every saved record, including zero-intake days.
	// Zero-intake days land in no bucket: the record exists because the user
	// tracked the day, but buckets measure drinking achievement.
	TotalTrackedDays int `json:"total_tracked_days"`
	// CurrentStreak counts consecutive days at >=100%, walking backward from
	// today. A day with no record breaks the streak.
	CurrentStreak int `json:"current_streak"`
}

// StatsService computes statistics over a user's records.
type StatsService struct{}

// NewStatsService creates a new instance of StatsService.
func NewStatsService() *StatsService {
	return &StatsService{}
}

// bucketFor assigns a percentage to the highest threshold it meets.
func bucketFor(pct int) string {
	switch {
	case pct >= 100:
		return "100"
	case pct >= 75:
		return "75"
	case pct >= 50:
		return "50"
	case pct >= 25:
		return "25"
	default:
		return "0"
	}
}

// Compute builds bucket counts and the current streak for a record set.
// today is the caller's current date key, injected so scheduled jobs and
// tests agree on what "today" means.
func (s *StatsService) Compute(records []models.DailyRecord, defaultGoal int, today string) Statistics {
	stats := Statistics{BucketCounts: make(map[string]int, len(bucketLabels))}
	for _, label := range bucketLabels {
		stats.BucketCounts[label] = 0
	}

	byDate := make(map[string]int, len(records))
	for _, rec := range records {
		pct := rec.Percentage(defaultGoal)
		byDate[rec.Date] = pct
		stats.TotalTrackedDays++
		if rec.Intake > 0 {
			stats.BucketCounts[bucketFor(pct)]++
		}
	}

	// Walk backward from today; the first missing or sub-100% day stops the
	// streak, it does not skip.
	day := today
	for {
		pct, ok := byDate[day]
		if !ok || pct < 100 {
			break
		}
		stats.CurrentStreak++
		prev, err := datekey.AddDays(day, -1)
		if err != nil {
			break
		}
		day = prev
	}

	return stats
}

package services

import (
	"testing"

	"github.com/kmehta/water-intake-tracker/internal/models"
	"github.com/kmehta/water-intake-tracker/pkg/datekey"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rec(date string, intake, goal int) models.DailyRecord {
	return models.DailyRecord{Date: date, Intake: intake, Goal: goal}
}

func TestPercentage(t *testing.T) {
	assert.Equal(t, 100, models.Percentage(2000, 2000))
	assert.Equal(t, 50, models.Percentage(1000, 2000))
	assert.Equal(t, 63, models.Percentage(1250, 2000), "rounded, not truncated")
	assert.Equal(t, 125, models.Percentage(2500, 2000), "not capped")
	assert.Equal(t, 0, models.Percentage(500, 0), "zero goal yields zero")
}

func TestBucketAssignment(t *testing.T) {
	s := NewStatsService()
	records := []models.DailyRecord{
		rec("2024-01-01", 2000, 2000), // 100%
		rec("2024-01-02", 1500, 2000), // 75%
		rec("2024-01-03", 1000, 2000), // 50%
		rec("2024-01-04", 500, 2000),  // 25%
		rec("2024-01-05", 100, 2000),  // 5%
		rec("2024-01-06", 2400, 2000), // 120%, still bucket 100
	}

	stats := s.Compute(records, 2000, "2024-02-01")
	assert.Equal(t, 2, stats.BucketCounts["100"])
	assert.Equal(t, 1, stats.BucketCounts["75"])
	assert.Equal(t, 1, stats.BucketCounts["50"])
	assert.Equal(t, 1, stats.BucketCounts["25"])
	assert.Equal(t, 1, stats.BucketCounts["0"])
	assert.Equal(t, 6, stats.TotalTrackedDays)
}

func TestBucketingIsMonotonic(t *testing.T) {
	// A higher percentage must never land in a lower bucket.
	order := map[string]int{"0": 0, "25": 1, "50": 2, "75": 3, "100": 4}
	last := 0
	for pct := 0; pct <= 150; pct++ {
		rank := order[bucketFor(pct)]
		assert.GreaterOrEqual(t, rank, last, "bucket dropped at pct=%d", pct)
		last = rank
	}
}

func TestZeroIntakeDayPolicy(t *testing.T) {
	// A saved zero-intake day counts as tracked but lands in no bucket.
	s := NewStatsService()
	records := []models.DailyRecord{
		rec("2024-01-01", 0, 2000),
		rec("2024-01-02", 2000, 2000),
	}

	stats := s.Compute(records, 2000, "2024-02-01")
	assert.Equal(t, 2, stats.TotalTrackedDays)

	total := 0
	for _, n := range stats.BucketCounts {
		total += n
	}
	assert.Equal(t, 1, total, "zero-intake day must not appear in any bucket")
}

func TestDefaultGoalFallback(t *testing.T) {
	s := NewStatsService()
	records := []models.DailyRecord{rec("2024-01-01", 2000, 0)}

	stats := s.Compute(records, 2000, "2024-02-01")
	assert.Equal(t, 1, stats.BucketCounts["100"], "goal 0 falls back to the default goal")
}

func TestCurrentStreak(t *testing.T) {
	today := "2024-06-10"
	yesterday := "2024-06-09"

	s := NewStatsService()

	t.Run("streak of two with gap before", func(t *testing.T) {
		records := []models.DailyRecord{
			rec(today, 2000, 2000),
			rec(yesterday, 2100, 2000),
			// no record for 2024-06-08
			rec("2024-06-07", 2000, 2000),
		}
		stats := s.Compute(records, 2000, today)
		assert.Equal(t, 2, stats.CurrentStreak, "a missing day breaks the streak, it does not skip")
	})

	t.Run("below goal breaks the streak", func(t *testing.T) {
		records := []models.DailyRecord{
			rec(today, 2000, 2000),
			rec(yesterday, 1999, 2000),
			rec("2024-06-08", 2000, 2000),
		}
		stats := s.Compute(records, 2000, today)
		assert.Equal(t, 1, stats.CurrentStreak)
	})

	t.Run("no record today means no streak", func(t *testing.T) {
		records := []models.DailyRecord{rec(yesterday, 2000, 2000)}
		stats := s.Compute(records, 2000, today)
		assert.Equal(t, 0, stats.CurrentStreak)
	})

	t.Run("streak crosses month boundary", func(t *testing.T) {
		var records []models.DailyRecord
		day := "2024-03-02"
		for i := 0; i < 5; i++ {
			records = append(records, rec(day, 2000, 2000))
			prev, err := datekey.AddDays(day, -1)
			require.NoError(t, err)
			day = prev
		}
		stats := s.Compute(records, 2000, "2024-03-02")
		assert.Equal(t, 5, stats.CurrentStreak)
	})
}

func TestEmptyRecordSet(t *testing.T) {
	s := NewStatsService()
	stats := s.Compute(nil, 2000, "2024-06-10")
	assert.Equal(t, 0, stats.TotalTrackedDays)
	assert.Equal(t, 0, stats.CurrentStreak)
	for _, label := range []string{"100", "75", "50", "25", "0"} {
		assert.Contains(t, stats.BucketCounts, label)
		assert.Equal(t, 0, stats.BucketCounts[label])
	}
}

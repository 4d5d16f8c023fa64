package services

import (
	"testing"
	"time"

	"github.com/kmehta/water-intake-tracker/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderMonthGridShape(t *testing.T) {
	s := NewCalendarService()
	now := time.Date(2024, time.February, 15, 12, 0, 0, 0, time.UTC)

	cells := s.RenderMonth(2024, time.February, nil, "", 2000, now)
	require.Len(t, cells, 29, "February 2024 has 29 days")
	assert.Equal(t, 1, cells[0].DayNumber)
	assert.Equal(t, "2024-02-01", cells[0].DateKey)
	assert.Equal(t, 29, cells[28].DayNumber)

	cells = s.RenderMonth(2023, time.February, nil, "", 2000, now)
	assert.Len(t, cells, 28)

	cells = s.RenderMonth(2024, time.January, nil, "", 2000, now)
	assert.Len(t, cells, 31)
}

func TestRenderMonthTodaySelectedFuture(t *testing.T) {
	s := NewCalendarService()
	now := time.Date(2024, time.February, 15, 12, 0, 0, 0, time.UTC)

	cells := s.RenderMonth(2024, time.February, nil, "2024-02-10", 2000, now)

	for _, cell := range cells {
		switch {
		case cell.DayNumber < 15:
			assert.False(t, cell.IsToday, "day %d", cell.DayNumber)
			assert.False(t, cell.IsFuture, "day %d", cell.DayNumber)
		case cell.DayNumber == 15:
			assert.True(t, cell.IsToday)
			assert.False(t, cell.IsFuture)
		default:
			assert.False(t, cell.IsToday, "day %d", cell.DayNumber)
			assert.True(t, cell.IsFuture, "days after today are rendered but non-interactive")
		}
	}

	assert.True(t, cells[9].IsSelected)
	assert.False(t, cells[10].IsSelected)
}

func TestRenderMonthAchievementLevels(t *testing.T) {
	s := NewCalendarService()
	now := time.Date(2024, time.February, 28, 0, 0, 0, 0, time.UTC)

	records := []models.DailyRecord{
		{Date: "2024-02-01", Intake: 2000, Goal: 2000},
		{Date: "2024-02-02", Intake: 600, Goal: 2000},
		{Date: "2024-02-03", Intake: 0, Goal: 2000},
	}

	cells := s.RenderMonth(2024, time.February, records, "", 2000, now)

	assert.True(t, cells[0].HasRecord)
	assert.Equal(t, "100", cells[0].AchievementLevel)
	assert.Equal(t, 100, cells[0].Percentage)

	assert.Equal(t, "25", cells[1].AchievementLevel) // 30%
	assert.Equal(t, 30, cells[1].Percentage)

	assert.True(t, cells[2].HasRecord)
	assert.Equal(t, "0", cells[2].AchievementLevel)

	assert.False(t, cells[3].HasRecord)
	assert.Equal(t, "none", cells[3].AchievementLevel)
}

func TestCompanionIsDeterministic(t *testing.T) {
	// The companion is keyed by day-of-year, so the same date always gets the
	// same creature and consecutive days walk the list in order.
	jan1 := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, creatures[1], CreatureForDate(jan1), "Jan 1 is day-of-year 1")

	feb1 := time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, creatures[32%len(creatures)], CreatureForDate(feb1))

	assert.Equal(t, CreatureForDate(jan1), CreatureForDate(jan1))
}

func TestCompanionAppearsOnCells(t *testing.T) {
	s := NewCalendarService()
	now := time.Date(2024, time.February, 28, 0, 0, 0, 0, time.UTC)

	cells := s.RenderMonth(2024, time.February, nil, "", 2000, now)
	for _, cell := range cells {
		assert.NotEmpty(t, cell.Companion.Icon, "day %d has no companion", cell.DayNumber)
	}
	// Day-of-year spacing of one means adjacent days differ.
	assert.NotEqual(t, cells[0].Companion, cells[1].Companion)
}

package services

import (
	"strconv"
	"strings"
	"testing"

	"github.com/kmehta/water-intake-tracker/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportHeaderAndRows(t *testing.T) {
	s := NewExportService()
	records := []models.DailyRecord{
		rec("2024-02-01", 1500, 2000),
		rec("2024-02-02", 2000, 2000),
	}

	out, err := s.Export(records, "2024-02-01", "2024-02-29", 2000)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Date,Water Intake (ml),Daily Goal (ml),Percentage", lines[0])
	assert.Equal(t, "2024-02-01,1500,2000,75%", lines[1])
	assert.Equal(t, "2024-02-02,2000,2000,100%", lines[2])
}

func TestExportRangeFilterInclusive(t *testing.T) {
	s := NewExportService()
	records := []models.DailyRecord{
		rec("2024-01-31", 1000, 2000),
		rec("2024-02-01", 1000, 2000),
		rec("2024-02-10", 1000, 2000),
		rec("2024-02-11", 1000, 2000),
	}

	out, err := s.Export(records, "2024-02-01", "2024-02-10", 2000)
	require.NoError(t, err)

	assert.Contains(t, out, "2024-02-01")
	assert.Contains(t, out, "2024-02-10")
	assert.NotContains(t, out, "2024-01-31")
	assert.NotContains(t, out, "2024-02-11")
}

func TestExportSortsRowsByDate(t *testing.T) {
	s := NewExportService()
	records := []models.DailyRecord{
		rec("2024-02-10", 1000, 2000),
		rec("2024-02-01", 1200, 2000),
		rec("2024-02-05", 1400, 2000),
	}

	out, err := s.Export(records, "2024-02-01", "2024-02-29", 2000)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[1], "2024-02-01,"))
	assert.True(t, strings.HasPrefix(lines[2], "2024-02-05,"))
	assert.True(t, strings.HasPrefix(lines[3], "2024-02-10,"), "rows come out chronological regardless of input order")
}

func TestExportSwapsReversedBounds(t *testing.T) {
	s := NewExportService()
	records := []models.DailyRecord{
		rec("2024-02-03", 1000, 2000),
		rec("2024-02-05", 1200, 2000),
	}

	forward, err := s.Export(records, "2024-02-01", "2024-02-10", 2000)
	require.NoError(t, err)
	reversed, err := s.Export(records, "2024-02-10", "2024-02-01", 2000)
	require.NoError(t, err)

	assert.Equal(t, forward, reversed)
}

func TestExportEmptyRangeIsAnError(t *testing.T) {
	s := NewExportService()
	records := []models.DailyRecord{rec("2024-02-01", 1000, 2000)}

	_, err := s.Export(records, "2024-03-01", "2024-03-31", 2000)
	assert.ErrorIs(t, err, ErrNoRecordsInRange, "must signal instead of emitting a header-only file")

	_, err = s.Export(nil, "2024-02-01", "2024-02-29", 2000)
	assert.ErrorIs(t, err, ErrNoRecordsInRange)
}

func TestCSVEscaping(t *testing.T) {
	assert.Equal(t, "plain", escapeCSV("plain"))
	assert.Equal(t, `"2,000"`, escapeCSV("2,000"))
	assert.Equal(t, `"say ""hi"""`, escapeCSV(`say "hi"`))
	assert.Equal(t, "\"line\nbreak\"", escapeCSV("line\nbreak"))
}

func TestExportRoundTrip(t *testing.T) {
	// Reparsing the export reproduces every (date, intake, goal) triple with
	// identically recomputed percentages.
	s := NewExportService()
	records := []models.DailyRecord{
		rec("2024-02-01", 1500, 2000),
		rec("2024-02-02", 950, 1900),
		rec("2024-02-03", 0, 2500),
		rec("2024-02-04", 3000, 0), // unset goal, default applies
	}

	out, err := s.Export(records, "2024-02-01", "2024-02-29", 2000)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")[1:]
	require.Len(t, lines, len(records))

	for i, line := range lines {
		fields := strings.Split(line, ",")
		require.Len(t, fields, 4)

		intake, err := strconv.Atoi(fields[1])
		require.NoError(t, err)
		goal, err := strconv.Atoi(fields[2])
		require.NoError(t, err)
		pct, err := strconv.Atoi(strings.TrimSuffix(fields[3], "%"))
		require.NoError(t, err)

		assert.Equal(t, records[i].Date, fields[0])
		assert.Equal(t, records[i].Intake, intake)
		assert.Equal(t, records[i].EffectiveGoal(2000), goal)
		assert.Equal(t, records[i].Percentage(2000), pct)
	}
}

func TestExportFilename(t *testing.T) {
	s := NewExportService()
	assert.Equal(t, "water-intake-2024-02-01-to-2024-02-29.csv", s.Filename("2024-02-01", "2024-02-29"))
	assert.Equal(t, "water-intake-2024-02-01-to-2024-02-29.csv", s.Filename("2024-02-29", "2024-02-01"))
}

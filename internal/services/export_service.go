package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/kmehta/water-intake-tracker/internal/models"
	"github.com/kmehta/water-intake-tracker/pkg/logger"
)

// ErrNoRecordsInRange is returned when an export matches nothing; the caller
// must surface it instead of silently producing a header-only file.
var ErrNoRecordsInRange = errors.New("no records in the requested date range")

// csvHeader is the fixed export header row.
const csvHeader = "Date,Water Intake (ml),Daily Goal (ml),Percentage"

// ExportService produces CSV exports of a user's records.
type ExportService struct{}

// NewExportService creates a new instance of ExportService.
func NewExportService() *ExportService {
	return &ExportService{}
}

// escapeCSV wraps a field in quotes when it contains a comma, quote or
// newline, doubling embedded quotes.
func escapeCSV(field string) string {
	if !strings.ContainsAny(field, ",\"\n\r") {
		return field
	}
	return `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
}

// Export renders records whose date lies in [start, end] inclusive as CSV,
// ascending by date. Reversed bounds are swapped before filtering.
func (s *ExportService) Export(records []models.DailyRecord, start, end string, defaultGoal int) (string, error) {
	if start > end {
		start, end = end, start
	}

	var matched []models.DailyRecord
	for _, rec := range records {
		if rec.Date >= start && rec.Date <= end {
			matched = append(matched, rec)
		}
	}
	if len(matched) == 0 {
		return "", ErrNoRecordsInRange
	}
	// Keys compare lexicographically, so this is chronological order.
	sort.Slice(matched, func(i, j int) bool { return matched[i].Date < matched[j].Date })

	var b strings.Builder
	b.WriteString(csvHeader)
	b.WriteString("\n")

	for _, rec := range matched {
		pct := rec.Percentage(defaultGoal)
		fields := []string{
			escapeCSV(rec.Date),
			escapeCSV(fmt.Sprintf("%d", rec.Intake)),
			escapeCSV(fmt.Sprintf("%d", rec.EffectiveGoal(defaultGoal))),
			escapeCSV(fmt.Sprintf("%d%%", pct)),
		}
		b.WriteString(strings.Join(fields, ","))
		b.WriteString("\n")
	}

	logger.Log.WithField("rows", len(matched)).Info("CSV export generated")
	return b.String(), nil
}

// Filename returns the download filename for an export range.
func (s *ExportService) Filename(start, end string) string {
	if start > end {
		start, end = end, start
	}
	return fmt.Sprintf("water-intake-%s-to-%s.csv", start, end)
}

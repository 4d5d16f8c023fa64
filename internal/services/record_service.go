package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kmehta/water-intake-tracker/internal/models"
	"github.com/kmehta/water-intake-tracker/internal/repository"
	"github.com/kmehta/water-intake-tracker/pkg/datekey"
	"github.com/kmehta/water-intake-tracker/pkg/logger"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrInvalidInput marks requests rejected by validation, as opposed to store
// failures; handlers map it to 400 and everything else to 500.
var ErrInvalidInput = errors.New("invalid input")

// Progress is the current-day summary shown on the tracker and embedded in
// reminder emails.
type Progress struct {
	Amount     int `json:"amount"`
	Goal       int `json:"goal"`
	Percentage int `json:"percentage"`
}

// RecordService encapsulates the business logic for daily records. It is
// backend-agnostic: the store may be the hosted database or the in-memory
// fallback.
type RecordService struct {
	store repository.RecordStore
}

// NewRecordService creates a new instance of RecordService.
func NewRecordService(store repository.RecordStore) *RecordService {
	return &RecordService{store: store}
}

func parseUserID(userID string) (primitive.ObjectID, error) {
	objID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: invalid user ID: %v", ErrInvalidInput, err)
	}
	return objID, nil
}

func validateRecordInput(dateKey string, intake, goal *int) error {
	if !datekey.Valid(dateKey) {
		return fmt.Errorf("%w: invalid date %q, expected YYYY-MM-DD", ErrInvalidInput, dateKey)
	}
	if intake != nil && *intake < 0 {
		return fmt.Errorf("%w: intake must be a non-negative number of milliliters", ErrInvalidInput)
	}
	if goal != nil && *goal <= 0 {
		return fmt.Errorf("%w: goal must be a positive number of milliliters", ErrInvalidInput)
	}
	return nil
}

// SaveRecord validates and upserts a record. Fields passed as nil are left
// untouched (merge semantics). The in-memory state a caller renders from is
// updated optimistically; a failing persist surfaces as an error to report,
// not a rollback.
func (s *RecordService) SaveRecord(ctx context.Context, userID, dateKey string, intake, goal *int) (*models.DailyRecord, error) {
	objID, err := parseUserID(userID)
	if err != nil {
		return nil, err
	}
	if intake == nil && goal == nil {
		return nil, fmt.Errorf("%w: nothing to save, provide intake and/or goal", ErrInvalidInput)
	}
	if err := validateRecordInput(dateKey, intake, goal); err != nil {
		logger.Log.WithField("date", dateKey).Warnf("Record validation failed: %v", err)
		return nil, err
	}

	record, err := s.store.Upsert(ctx, objID, dateKey, intake, goal)
	if err != nil {
		logger.Log.WithError(err).Error("Service failed to save record")
		return nil, fmt.Errorf("failed to save record: %v", err)
	}
	return record, nil
}

// QuickAdd reads the day's record and adds delta milliliters to its intake.
// This is the only operation that merges intake deltas; plain saves are
// last-write-wins.
func (s *RecordService) QuickAdd(ctx context.Context, userID, dateKey string, delta int) (*models.DailyRecord, error) {
	objID, err := parseUserID(userID)
	if err != nil {
		return nil, err
	}
	if !datekey.Valid(dateKey) {
		return nil, fmt.Errorf("%w: invalid date %q, expected YYYY-MM-DD", ErrInvalidInput, dateKey)
	}
	if delta <= 0 {
		return nil, fmt.Errorf("%w: quick-add amount must be positive", ErrInvalidInput)
	}

	current := 0
	existing, err := s.store.Get(ctx, objID, dateKey)
	if err != nil && err != repository.ErrRecordNotFound {
		return nil, fmt.Errorf("failed to read record: %v", err)
	}
	if existing != nil {
		current = existing.Intake
	}

	intake := current + delta
	record, err := s.store.Upsert(ctx, objID, dateKey, &intake, nil)
	if err != nil {
		logger.Log.WithError(err).Error("Service failed to quick-add")
		return nil, fmt.Errorf("failed to save record: %v", err)
	}

	logrus.WithFields(logrus.Fields{
		"date":   dateKey,
		"delta":  delta,
		"intake": intake,
	}).Info("Quick-add applied")
	return record, nil
}

// GetRecord fetches a single record by date key.
func (s *RecordService) GetRecord(ctx context.Context, userID, dateKey string) (*models.DailyRecord, error) {
	objID, err := parseUserID(userID)
	if err != nil {
		return nil, err
	}
	if !datekey.Valid(dateKey) {
		return nil, fmt.Errorf("%w: invalid date %q, expected YYYY-MM-DD", ErrInvalidInput, dateKey)
	}
	return s.store.Get(ctx, objID, dateKey)
}

// ListRecords fetches every record for a user.
func (s *RecordService) ListRecords(ctx context.Context, userID string) ([]models.DailyRecord, error) {
	objID, err := parseUserID(userID)
	if err != nil {
		return nil, err
	}
	return s.store.List(ctx, objID)
}

// ListRange fetches records within an inclusive date range, swapping
// reversed bounds.
func (s *RecordService) ListRange(ctx context.Context, userID, start, end string) ([]models.DailyRecord, error) {
	objID, err := parseUserID(userID)
	if err != nil {
		return nil, err
	}
	if !datekey.Valid(start) || !datekey.Valid(end) {
		return nil, fmt.Errorf("%w: invalid date range %q..%q", ErrInvalidInput, start, end)
	}
	if start > end {
		start, end = end, start
	}
	return s.store.ListRange(ctx, objID, start, end)
}

// DeleteRecord removes a record by date key.
func (s *RecordService) DeleteRecord(ctx context.Context, userID, dateKey string) error {
	objID, err := parseUserID(userID)
	if err != nil {
		return err
	}
	if !datekey.Valid(dateKey) {
		return fmt.Errorf("%w: invalid date %q, expected YYYY-MM-DD", ErrInvalidInput, dateKey)
	}
	if err := s.store.Delete(ctx, objID, dateKey); err != nil {
		return fmt.Errorf("failed to delete record: %v", err)
	}
	return nil
}

// TodayProgress returns the current day's amount, goal and percentage with
// the user's default goal applied when the day has no explicit goal.
func (s *RecordService) TodayProgress(ctx context.Context, userID string, defaultGoal int, loc *time.Location) (*Progress, error) {
	objID, err := parseUserID(userID)
	if err != nil {
		return nil, err
	}

	today := datekey.Today(loc)
	record, err := s.store.Get(ctx, objID, today)
	if err == repository.ErrRecordNotFound {
		goal := defaultGoal
		if goal <= 0 {
			goal = 2000
		}
		return &Progress{Amount: 0, Goal: goal, Percentage: 0}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read today's record: %v", err)
	}

	return &Progress{
		Amount:     record.Intake,
		Goal:       record.EffectiveGoal(defaultGoal),
		Percentage: record.Percentage(defaultGoal),
	}, nil
}

// MigrateRecords bulk-imports legacy client records after validating each
// entry. The store chunks writes below its per-batch operation ceiling.
func (s *RecordService) MigrateRecords(ctx context.Context, userID string, records []models.DailyRecord) (int, error) {
	objID, err := parseUserID(userID)
	if err != nil {
		return 0, err
	}

	for _, rec := range records {
		intake, goal := rec.Intake, rec.Goal
		goalPtr := &goal
		if goal == 0 {
			goalPtr = nil
		}
		if err := validateRecordInput(rec.Date, &intake, goalPtr); err != nil {
			return 0, fmt.Errorf("record for %q: %w", rec.Date, err)
		}
	}

	written, err := s.store.BulkUpsert(ctx, objID, records)
	if err != nil {
		logger.Log.WithError(err).Error("Record migration failed")
		return written, fmt.Errorf("failed to migrate records: %v", err)
	}

	logger.Log.WithFields(logrus.Fields{
		"user_id": userID,
		"count":   written,
	}).Info("Record migration completed")
	return written, nil
}

// Subscribe registers a change listener for the user's records.
func (s *RecordService) Subscribe(ctx context.Context, userID string, fn func(models.ChangeBatch)) (func(), error) {
	objID, err := parseUserID(userID)
	if err != nil {
		return nil, err
	}
	return s.store.Subscribe(ctx, objID, fn)
}

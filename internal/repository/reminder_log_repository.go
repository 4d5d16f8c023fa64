package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/kmehta/water-intake-tracker/internal/models"
	"github.com/kmehta/water-intake-tracker/pkg/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// ReminderLogStore persists "already sent" markers. Concurrent overlapping
// reminder runs are not excluded by any lock, so duplicate-send suppression
// relies on these markers, never on in-memory state.
type ReminderLogStore interface {
	// MarkSent records a send for (user, slot, date). It returns false when a
	// marker already existed, meaning this slot already fired today.
	MarkSent(ctx context.Context, userID string, slot int, date string) (bool, error)
	// WasSent reports whether a marker exists for (user, slot, date).
	WasSent(ctx context.Context, userID string, slot int, date string) (bool, error)
	// DeleteOlderThan removes markers recorded before the cutoff.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) error
}

func reminderLogID(userID string, slot int, date string) string {
	return fmt.Sprintf("%s:%d:%s", userID, slot, date)
}

// ReminderLogRepository is the MongoDB-backed marker store. The unique _id
// makes MarkSent an atomic insert-or-already-sent check.
type ReminderLogRepository struct {
	collection *mongo.Collection
}

// NewReminderLogRepository creates a new instance of ReminderLogRepository.
func NewReminderLogRepository(db *mongo.Database) *ReminderLogRepository {
	return &ReminderLogRepository{
		collection: db.Collection("reminder_log"),
	}
}

func (r *ReminderLogRepository) MarkSent(ctx context.Context, userID string, slot int, date string) (bool, error) {
	entry := models.ReminderLog{
		ID:     reminderLogID(userID, slot, date),
		UserID: userID,
		Slot:   slot,
		Date:   date,
		SentAt: time.Now(),
	}

	_, err := r.collection.InsertOne(ctx, entry)
	if mongo.IsDuplicateKeyError(err) {
		return false, nil
	}
	if err != nil {
		logger.Log.WithError(err).Error("Failed to insert reminder log entry")
		return false, err
	}
	return true, nil
}

func (r *ReminderLogRepository) WasSent(ctx context.Context, userID string, slot int, date string) (bool, error) {
	err := r.collection.FindOne(ctx, bson.M{"_id": reminderLogID(userID, slot, date)}).Err()
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *ReminderLogRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) error {
	result, err := r.collection.DeleteMany(ctx, bson.M{"sent_at": bson.M{"$lt": cutoff}})
	if err != nil {
		return fmt.Errorf("failed to delete old reminder log entries: %v", err)
	}
	logger.Log.Infof("Deleted %d old reminder log entries", result.DeletedCount)
	return nil
}

// MemoryReminderLog is the in-process marker store used with the memory
// record backend and in tests.
type MemoryReminderLog struct {
	mu      sync.Mutex
	entries map[string]time.Time
}

func NewMemoryReminderLog() *MemoryReminderLog {
	return &MemoryReminderLog{entries: make(map[string]time.Time)}
}

func (m *MemoryReminderLog) MarkSent(ctx context.Context, userID string, slot int, date string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := reminderLogID(userID, slot, date)
	if _, ok := m.entries[id]; ok {
		return false, nil
	}
	m.entries[id] = time.Now()
	return true, nil
}

func (m *MemoryReminderLog) WasSent(ctx context.Context, userID string, slot int, date string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.entries[reminderLogID(userID, slot, date)]
	return ok, nil
}

func (m *MemoryReminderLog) DeleteOlderThan(ctx context.Context, cutoff time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, at := range m.entries {
		if at.Before(cutoff) {
			delete(m.entries, id)
		}
	}
	return nil
}

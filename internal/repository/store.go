package repository

import (
	"context"
	"errors"

	"github.com/kmehta/water-intake-tracker/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrRecordNotFound is returned when no record exists for a date key.
var ErrRecordNotFound = errors.New("record not found")

// migrationBatchSize keeps bulk imports below the hosted store's 500
// operations-per-batch ceiling with a safety margin.
const migrationBatchSize = 490

// RecordStore is the persistence contract for daily records. The Mongo and
// in-memory backends are interchangeable so the calendar, statistics and
// reminder logic stay backend-agnostic.
type RecordStore interface {
	// Get returns the record for a date key, or ErrRecordNotFound.
	Get(ctx context.Context, userID primitive.ObjectID, dateKey string) (*models.DailyRecord, error)
	// Upsert creates or merges a record. Nil fields are left untouched on an
	// existing record (merge semantics).
	Upsert(ctx context.Context, userID primitive.ObjectID, dateKey string, intake, goal *int) (*models.DailyRecord, error)
	// Delete removes a record. Deleting an absent record is not an error.
	Delete(ctx context.Context, userID primitive.ObjectID, dateKey string) error
	// List returns all records for a user.
	List(ctx context.Context, userID primitive.ObjectID) ([]models.DailyRecord, error)
	// ListRange returns records with start <= date <= end, ascending.
	ListRange(ctx context.Context, userID primitive.ObjectID, start, end string) ([]models.DailyRecord, error)
	// Subscribe registers a change listener for a user's records and returns
	// an unsubscribe handle. Every store change is delivered, including the
	// one that originated locally.
	Subscribe(ctx context.Context, userID primitive.ObjectID, fn func(models.ChangeBatch)) (func(), error)
	// BulkUpsert imports records in chunks below the per-batch operation
	// ceiling, returning the number written.
	BulkUpsert(ctx context.Context, userID primitive.ObjectID, records []models.DailyRecord) (int, error)
}

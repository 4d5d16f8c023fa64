package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kmehta/water-intake-tracker/internal/models"
	"github.com/kmehta/water-intake-tracker/pkg/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// RecordRepository is the MongoDB-backed record store. Documents use a
// deterministic "<userID>:<date>" _id, one document per user per day, which
// also lets delete events from the change stream be mapped back to a date.
type RecordRepository struct {
	collection *mongo.Collection
}

// NewRecordRepository creates a new instance of RecordRepository.
func NewRecordRepository(db *mongo.Database) *RecordRepository {
	return &RecordRepository{
		collection: db.Collection("records"),
	}
}

func recordID(userID primitive.ObjectID, dateKey string) string {
	return userID.Hex() + ":" + dateKey
}

// Get fetches the record for a single date key.
func (r *RecordRepository) Get(ctx context.Context, userID primitive.ObjectID, dateKey string) (*models.DailyRecord, error) {
	var record models.DailyRecord
	err := r.collection.FindOne(ctx, bson.M{"_id": recordID(userID, dateKey)}).Decode(&record)
	if err == mongo.ErrNoDocuments {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		logger.Log.WithError(err).WithField("date", dateKey).Error("Failed to find record")
		return nil, err
	}
	return &record, nil
}

// Upsert creates or merges the record for a date key. Fields passed as nil
// are left untouched on an existing document.
func (r *RecordRepository) Upsert(ctx context.Context, userID primitive.ObjectID, dateKey string, intake, goal *int) (*models.DailyRecord, error) {
	set := bson.M{
		"user_id":   userID,
		"date":      dateKey,
		"timestamp": time.Now(),
	}
	setOnInsert := bson.M{}
	if intake != nil {
		set["intake"] = *intake
	} else {
		setOnInsert["intake"] = 0
	}
	if goal != nil {
		set["goal"] = *goal
	} else {
		setOnInsert["goal"] = 0
	}

	update := bson.M{"$set": set}
	if len(setOnInsert) > 0 {
		update["$setOnInsert"] = setOnInsert
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var record models.DailyRecord
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": recordID(userID, dateKey)}, update, opts).Decode(&record)
	if err != nil {
		logger.Log.WithError(err).WithField("date", dateKey).Error("Failed to upsert record")
		return nil, err
	}

	logger.Log.WithFields(map[string]interface{}{
		"user_id": userID.Hex(),
		"date":    dateKey,
	}).Info("Record saved")
	return &record, nil
}

// Delete removes the record for a date key.
func (r *RecordRepository) Delete(ctx context.Context, userID primitive.ObjectID, dateKey string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": recordID(userID, dateKey)})
	if err != nil {
		logger.Log.WithError(err).WithField("date", dateKey).Error("Failed to delete record")
		return err
	}
	logger.Log.WithField("date", dateKey).Info("Record deleted")
	return nil
}

// List fetches every record belonging to a user, ascending by date.
func (r *RecordRepository) List(ctx context.Context, userID primitive.ObjectID) ([]models.DailyRecord, error) {
	return r.find(ctx, bson.M{"user_id": userID})
}

// ListRange fetches records with start <= date <= end. Lexicographic
// comparison is valid because date keys are zero-padded ISO strings.
func (r *RecordRepository) ListRange(ctx context.Context, userID primitive.ObjectID, start, end string) ([]models.DailyRecord, error) {
	filter := bson.M{
		"user_id": userID,
		"date":    bson.M{"$gte": start, "$lte": end},
	}
	return r.find(ctx, filter)
}

func (r *RecordRepository) find(ctx context.Context, filter bson.M) ([]models.DailyRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to fetch records")
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []models.DailyRecord
	if err := cursor.All(ctx, &records); err != nil {
		logger.Log.WithError(err).Error("Failed to decode records")
		return nil, err
	}
	return records, nil
}

// Subscribe watches the user's records through a change stream and invokes fn
// with an added/modified/removed batch for every change, including writes that
// originated from this process.
func (r *RecordRepository) Subscribe(ctx context.Context, userID primitive.ObjectID, fn func(models.ChangeBatch)) (func(), error) {
	// Every _id for this user starts with "<hex>:", so a prefix match covers
	// deletes too, where only the document key is available.
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"documentKey._id": bson.M{"$regex": "^" + userID.Hex() + ":"},
		}}},
	}

	opts := options.ChangeStream().SetFullDocument(options.UpdateLookup)
	streamCtx, cancel := context.WithCancel(ctx)

	stream, err := r.collection.Watch(streamCtx, pipeline, opts)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to open change stream: %v", err)
	}

	go func() {
		defer stream.Close(context.Background())
		for stream.Next(streamCtx) {
			var event struct {
				OperationType string             `bson:"operationType"`
				FullDocument  models.DailyRecord `bson:"fullDocument"`
				DocumentKey   struct {
					ID string `bson:"_id"`
				} `bson:"documentKey"`
			}
			if err := stream.Decode(&event); err != nil {
				logger.Log.WithError(err).Warn("Failed to decode change stream event")
				continue
			}

			var batch models.ChangeBatch
			switch event.OperationType {
			case "insert":
				batch.Added = append(batch.Added, event.FullDocument)
			case "update", "replace":
				batch.Modified = append(batch.Modified, event.FullDocument)
			case "delete":
				// Only the key survives a delete; reconstruct the date from it.
				if idx := strings.Index(event.DocumentKey.ID, ":"); idx >= 0 {
					batch.Removed = append(batch.Removed, models.DailyRecord{
						ID:     event.DocumentKey.ID,
						UserID: userID,
						Date:   event.DocumentKey.ID[idx+1:],
					})
				}
			default:
				continue
			}

			if !batch.Empty() {
				fn(batch)
			}
		}
	}()

	return cancel, nil
}

// BulkUpsert imports legacy records in chunks below the per-batch operation
// ceiling, issuing a fresh batch after each chunk commits.
func (r *RecordRepository) BulkUpsert(ctx context.Context, userID primitive.ObjectID, records []models.DailyRecord) (int, error) {
	written := 0
	for start := 0; start < len(records); start += migrationBatchSize {
		end := start + migrationBatchSize
		if end > len(records) {
			end = len(records)
		}

		writes := make([]mongo.WriteModel, 0, end-start)
		for _, rec := range records[start:end] {
			doc := bson.M{
				"user_id":   userID,
				"date":      rec.Date,
				"intake":    rec.Intake,
				"goal":      rec.Goal,
				"timestamp": time.Now(),
			}
			writes = append(writes, mongo.NewReplaceOneModel().
				SetFilter(bson.M{"_id": recordID(userID, rec.Date)}).
				SetReplacement(doc).
				SetUpsert(true))
		}

		result, err := r.collection.BulkWrite(ctx, writes)
		if err != nil {
			logger.Log.WithError(err).WithField("chunk_start", start).Error("Bulk record import failed")
			return written, fmt.Errorf("bulk import failed after %d records: %v", written, err)
		}
		// Fresh inserts report through Upserted, existing docs through Matched;
		// Modified overlaps Matched and must not be added on top.
		written += int(result.UpsertedCount + result.MatchedCount)
	}

	logger.Log.WithFields(map[string]interface{}{
		"user_id": userID.Hex(),
		"count":   written,
	}).Info("Bulk record import completed")
	return written, nil
}

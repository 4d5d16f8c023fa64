package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/kmehta/water-intake-tracker/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryRecordStore is the in-process record store, the successor of the
// browser local-storage backend. It implements the same contract as the Mongo
// repository, including change notification, and backs tests and single-node
// deployments without a database.
type MemoryRecordStore struct {
	mu          sync.RWMutex
	records     map[string]map[string]models.DailyRecord // userID hex -> date -> record
	subscribers map[int]memorySubscriber
	nextSubID   int
}

type memorySubscriber struct {
	userID string
	fn     func(models.ChangeBatch)
}

// NewMemoryRecordStore creates an empty in-memory store.
func NewMemoryRecordStore() *MemoryRecordStore {
	return &MemoryRecordStore{
		records:     make(map[string]map[string]models.DailyRecord),
		subscribers: make(map[int]memorySubscriber),
	}
}

// Get fetches the record for a single date key.
func (s *MemoryRecordStore) Get(ctx context.Context, userID primitive.ObjectID, dateKey string) (*models.DailyRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[userID.Hex()][dateKey]
	if !ok {
		return nil, ErrRecordNotFound
	}
	copy := rec
	return &copy, nil
}

// Upsert creates or merges the record for a date key and notifies
// subscribers, including the caller's own subscription.
func (s *MemoryRecordStore) Upsert(ctx context.Context, userID primitive.ObjectID, dateKey string, intake, goal *int) (*models.DailyRecord, error) {
	s.mu.Lock()

	uid := userID.Hex()
	if s.records[uid] == nil {
		s.records[uid] = make(map[string]models.DailyRecord)
	}

	rec, existed := s.records[uid][dateKey]
	if !existed {
		rec = models.DailyRecord{
			ID:     uid + ":" + dateKey,
			UserID: userID,
			Date:   dateKey,
		}
	}
	if intake != nil {
		rec.Intake = *intake
	}
	if goal != nil {
		rec.Goal = *goal
	}
	rec.Timestamp = time.Now()
	s.records[uid][dateKey] = rec

	var batch models.ChangeBatch
	if existed {
		batch.Modified = append(batch.Modified, rec)
	} else {
		batch.Added = append(batch.Added, rec)
	}
	subs := s.matchingSubscribers(uid)
	s.mu.Unlock()

	notify(subs, batch)

	copy := rec
	return &copy, nil
}

// Delete removes the record for a date key.
func (s *MemoryRecordStore) Delete(ctx context.Context, userID primitive.ObjectID, dateKey string) error {
	s.mu.Lock()

	uid := userID.Hex()
	rec, ok := s.records[uid][dateKey]
	if !ok {
		s.mu.Unlock()
		return nil
	}
	delete(s.records[uid], dateKey)

	batch := models.ChangeBatch{Removed: []models.DailyRecord{rec}}
	subs := s.matchingSubscribers(uid)
	s.mu.Unlock()

	notify(subs, batch)
	return nil
}

// List returns every record belonging to a user, ascending by date.
func (s *MemoryRecordStore) List(ctx context.Context, userID primitive.ObjectID) ([]models.DailyRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var records []models.DailyRecord
	for _, rec := range s.records[userID.Hex()] {
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Date < records[j].Date })
	return records, nil
}

// ListRange returns records with start <= date <= end, ascending.
func (s *MemoryRecordStore) ListRange(ctx context.Context, userID primitive.ObjectID, start, end string) ([]models.DailyRecord, error) {
	all, _ := s.List(ctx, userID)
	var records []models.DailyRecord
	for _, rec := range all {
		if rec.Date >= start && rec.Date <= end {
			records = append(records, rec)
		}
	}
	return records, nil
}

// Subscribe registers a change listener and returns its unsubscribe handle.
func (s *MemoryRecordStore) Subscribe(ctx context.Context, userID primitive.ObjectID, fn func(models.ChangeBatch)) (func(), error) {
	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = memorySubscriber{userID: userID.Hex(), fn: fn}
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subscribers, id)
		s.mu.Unlock()
	}, nil
}

// BulkUpsert imports records, chunked like the hosted backend for identical
// observable behavior.
func (s *MemoryRecordStore) BulkUpsert(ctx context.Context, userID primitive.ObjectID, records []models.DailyRecord) (int, error) {
	written := 0
	for start := 0; start < len(records); start += migrationBatchSize {
		end := start + migrationBatchSize
		if end > len(records) {
			end = len(records)
		}
		for _, rec := range records[start:end] {
			intake, goal := rec.Intake, rec.Goal
			if _, err := s.Upsert(ctx, userID, rec.Date, &intake, &goal); err != nil {
				return written, err
			}
			written++
		}
	}
	return written, nil
}

func (s *MemoryRecordStore) matchingSubscribers(uid string) []func(models.ChangeBatch) {
	var subs []func(models.ChangeBatch)
	for _, sub := range s.subscribers {
		if sub.userID == uid {
			subs = append(subs, sub.fn)
		}
	}
	return subs
}

func notify(subs []func(models.ChangeBatch), batch models.ChangeBatch) {
	for _, fn := range subs {
		fn(batch)
	}
}

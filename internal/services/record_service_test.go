package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/kmehta/water-intake-tracker/internal/models"
	"github.com/kmehta/water-intake-tracker/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func intPtr(v int) *int { return &v }

func newRecordFixture(t *testing.T) (*RecordService, string) {
	t.Helper()
	svc := NewRecordService(repository.NewMemoryRecordStore())
	return svc, primitive.NewObjectID().Hex()
}

func TestSaveRecordMergeSemantics(t *testing.T) {
	svc, uid := newRecordFixture(t)
	ctx := context.Background()

	saved, err := svc.SaveRecord(ctx, uid, "2024-06-10", intPtr(1500), intPtr(2500))
	require.NoError(t, err)
	assert.Equal(t, 1500, saved.Intake)
	assert.Equal(t, 2500, saved.Goal)

	// Updating only the intake must leave the stored goal untouched.
	saved, err = svc.SaveRecord(ctx, uid, "2024-06-10", intPtr(1800), nil)
	require.NoError(t, err)
	assert.Equal(t, 1800, saved.Intake)
	assert.Equal(t, 2500, saved.Goal)

	// And vice versa.
	saved, err = svc.SaveRecord(ctx, uid, "2024-06-10", nil, intPtr(3000))
	require.NoError(t, err)
	assert.Equal(t, 1800, saved.Intake)
	assert.Equal(t, 3000, saved.Goal)
}

func TestSaveRecordIsIdempotent(t *testing.T) {
	svc, uid := newRecordFixture(t)
	ctx := context.Background()

	first, err := svc.SaveRecord(ctx, uid, "2024-06-10", intPtr(1500), intPtr(2000))
	require.NoError(t, err)
	second, err := svc.SaveRecord(ctx, uid, "2024-06-10", intPtr(1500), intPtr(2000))
	require.NoError(t, err)

	assert.Equal(t, first.Intake, second.Intake)
	assert.Equal(t, first.Goal, second.Goal)

	records, err := svc.ListRecords(ctx, uid)
	require.NoError(t, err)
	assert.Len(t, records, 1, "repeated saves must not duplicate the day")
}

func TestSaveRecordValidation(t *testing.T) {
	svc, uid := newRecordFixture(t)
	ctx := context.Background()

	_, err := svc.SaveRecord(ctx, uid, "2024-06-10", nil, nil)
	assert.ErrorIs(t, err, ErrInvalidInput, "a save must carry at least one field")

	_, err = svc.SaveRecord(ctx, uid, "10.06.2024", intPtr(1500), nil)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.SaveRecord(ctx, uid, "2024-06-10", intPtr(-1), nil)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.SaveRecord(ctx, uid, "2024-06-10", nil, intPtr(0))
	assert.ErrorIs(t, err, ErrInvalidInput, "an explicit goal must be positive")

	_, err = svc.SaveRecord(ctx, "not-an-object-id", "2024-06-10", intPtr(1500), nil)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

type downStore struct{}

func (downStore) Get(ctx context.Context, userID primitive.ObjectID, dateKey string) (*models.DailyRecord, error) {
	return nil, errors.New("store unavailable")
}
func (downStore) Upsert(ctx context.Context, userID primitive.ObjectID, dateKey string, intake, goal *int) (*models.DailyRecord, error) {
	return nil, errors.New("store unavailable")
}
func (downStore) Delete(ctx context.Context, userID primitive.ObjectID, dateKey string) error {
	return errors.New("store unavailable")
}
func (downStore) List(ctx context.Context, userID primitive.ObjectID) ([]models.DailyRecord, error) {
	return nil, errors.New("store unavailable")
}
func (downStore) ListRange(ctx context.Context, userID primitive.ObjectID, start, end string) ([]models.DailyRecord, error) {
	return nil, errors.New("store unavailable")
}
func (downStore) Subscribe(ctx context.Context, userID primitive.ObjectID, fn func(models.ChangeBatch)) (func(), error) {
	return nil, errors.New("store unavailable")
}
func (downStore) BulkUpsert(ctx context.Context, userID primitive.ObjectID, records []models.DailyRecord) (int, error) {
	return 0, errors.New("store unavailable")
}

func TestStoreFailureIsNotInvalidInput(t *testing.T) {
	// Handlers branch on ErrInvalidInput to pick 400 over 500, so a
	// persistence failure must never satisfy it.
	svc := NewRecordService(downStore{})
	uid := primitive.NewObjectID().Hex()
	ctx := context.Background()

	_, err := svc.SaveRecord(ctx, uid, "2024-06-10", intPtr(1500), nil)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidInput)

	err = svc.DeleteRecord(ctx, uid, "2024-06-10")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidInput)

	_, err = svc.MigrateRecords(ctx, uid, []models.DailyRecord{rec("2024-06-10", 1500, 2000)})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidInput)
}

func TestQuickAddAccumulates(t *testing.T) {
	svc, uid := newRecordFixture(t)
	ctx := context.Background()

	rec, err := svc.QuickAdd(ctx, uid, "2024-06-10", 200)
	require.NoError(t, err)
	assert.Equal(t, 200, rec.Intake, "quick-add on an empty day starts from zero")

	rec, err = svc.QuickAdd(ctx, uid, "2024-06-10", 300)
	require.NoError(t, err)
	assert.Equal(t, 500, rec.Intake)

	_, err = svc.QuickAdd(ctx, uid, "2024-06-10", 0)
	assert.Error(t, err)
	_, err = svc.QuickAdd(ctx, uid, "2024-06-10", -100)
	assert.Error(t, err)
}

func TestGetAndDeleteRecord(t *testing.T) {
	svc, uid := newRecordFixture(t)
	ctx := context.Background()

	_, err := svc.GetRecord(ctx, uid, "2024-06-10")
	assert.ErrorIs(t, err, repository.ErrRecordNotFound)

	_, err = svc.SaveRecord(ctx, uid, "2024-06-10", intPtr(1000), nil)
	require.NoError(t, err)

	rec, err := svc.GetRecord(ctx, uid, "2024-06-10")
	require.NoError(t, err)
	assert.Equal(t, 1000, rec.Intake)

	require.NoError(t, svc.DeleteRecord(ctx, uid, "2024-06-10"))
	_, err = svc.GetRecord(ctx, uid, "2024-06-10")
	assert.ErrorIs(t, err, repository.ErrRecordNotFound)
}

func TestListRangeSwapsBounds(t *testing.T) {
	svc, uid := newRecordFixture(t)
	ctx := context.Background()

	for _, date := range []string{"2024-06-01", "2024-06-05", "2024-06-09"} {
		_, err := svc.SaveRecord(ctx, uid, date, intPtr(1000), nil)
		require.NoError(t, err)
	}

	forward, err := svc.ListRange(ctx, uid, "2024-06-01", "2024-06-09")
	require.NoError(t, err)
	reversed, err := svc.ListRange(ctx, uid, "2024-06-09", "2024-06-01")
	require.NoError(t, err)

	assert.Len(t, forward, 3)
	assert.Equal(t, forward, reversed)
}

func TestTodayProgressWithoutRecord(t *testing.T) {
	svc, uid := newRecordFixture(t)

	progress, err := svc.TodayProgress(context.Background(), uid, 2500, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, progress.Amount)
	assert.Equal(t, 2500, progress.Goal, "an empty day reports the default goal")
	assert.Equal(t, 0, progress.Percentage)

	progress, err = svc.TodayProgress(context.Background(), uid, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, 2000, progress.Goal, "unset default goal falls back to 2000")
}

func TestMigrateRecords(t *testing.T) {
	svc, uid := newRecordFixture(t)
	ctx := context.Background()

	var imported []models.DailyRecord
	for day := 1; day <= 28; day++ {
		imported = append(imported, rec(fmt.Sprintf("2024-02-%02d", day), 1500, 2000))
	}

	written, err := svc.MigrateRecords(ctx, uid, imported)
	require.NoError(t, err)
	assert.Equal(t, 28, written)

	records, err := svc.ListRecords(ctx, uid)
	require.NoError(t, err)
	assert.Len(t, records, 28)

	// Re-importing the same batch reports one per record, not two; the
	// hosted backend counts matched replacements the same as fresh inserts.
	written, err = svc.MigrateRecords(ctx, uid, imported)
	require.NoError(t, err)
	assert.Equal(t, 28, written, "re-migration must be idempotent in its count")
	records, err = svc.ListRecords(ctx, uid)
	require.NoError(t, err)
	assert.Len(t, records, 28)

	// One bad entry rejects the whole batch before any write.
	fresh, freshUID := newRecordFixture(t)
	bad := append([]models.DailyRecord{rec("bogus", 1500, 2000)}, imported...)
	_, err = fresh.MigrateRecords(ctx, freshUID, bad)
	assert.Error(t, err)
	records, err = fresh.ListRecords(ctx, freshUID)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestSubscribeReceivesOwnWrites(t *testing.T) {
	svc, uid := newRecordFixture(t)
	ctx := context.Background()

	var batches []models.ChangeBatch
	unsubscribe, err := svc.Subscribe(ctx, uid, func(b models.ChangeBatch) {
		batches = append(batches, b)
	})
	require.NoError(t, err)
	defer unsubscribe()

	_, err = svc.SaveRecord(ctx, uid, "2024-06-10", intPtr(1000), nil)
	require.NoError(t, err)

	require.Len(t, batches, 1, "the writer's own subscription is notified too")
	require.Len(t, batches[0].Added, 1)
	assert.Equal(t, "2024-06-10", batches[0].Added[0].Date)
}

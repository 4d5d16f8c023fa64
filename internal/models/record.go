package models

import (
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DailyRecord represents one user's water intake for one calendar day. The
// date key ("YYYY-MM-DD") is the unique identifier within a user's record
// set; Percentage is always derived, never stored.
type DailyRecord struct {
	ID        string             `bson:"_id,omitempty" json:"-"`
	UserID    primitive.ObjectID `bson:"user_id" json:"user_id"`
	Date      string             `bson:"date" json:"date"`
	Intake    int                `bson:"intake" json:"intake"`
	Goal      int                `bson:"goal" json:"goal"` // 0 means "use the user default"
	Timestamp time.Time          `bson:"timestamp" json:"timestamp"`
}

// EffectiveGoal resolves the record's goal, falling back to defaultGoal (and
// finally 2000 ml) when unset.
func (r *DailyRecord) EffectiveGoal(defaultGoal int) int {
	if r.Goal > 0 {
		return r.Goal
	}
	if defaultGoal > 0 {
		return defaultGoal
	}
	return 2000
}

// Percentage returns round(intake/goal*100) for the record.
func (r *DailyRecord) Percentage(defaultGoal int) int {
	return Percentage(r.Intake, r.EffectiveGoal(defaultGoal))
}

// Percentage computes the achievement percentage for an intake/goal pair.
func Percentage(intake, goal int) int {
	if goal <= 0 {
		return 0
	}
	return int(math.Round(float64(intake) / float64(goal) * 100))
}

// ChangeBatch is delivered to record-store subscribers whenever the backing
// store changes, including for the local write that originated the change.
type ChangeBatch struct {
	Added    []DailyRecord `json:"added"`
	Modified []DailyRecord `json:"modified"`
	Removed  []DailyRecord `json:"removed"`
}

// Empty reports whether the batch carries no changes.
func (b ChangeBatch) Empty() bool {
	return len(b.Added) == 0 && len(b.Modified) == 0 && len(b.Removed) == 0
}

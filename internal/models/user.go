package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MaxReminderSlots caps the configurable reminder times per user.
const MaxReminderSlots = 5

// ReminderSlot is one configurable time-of-day trigger for a reminder email.
// Preset is an "HH:MM" label or the literal "custom", in which case Custom
// holds the "HH:MM" time.
type ReminderSlot struct {
	Enabled bool   `bson:"enabled" json:"enabled"`
	Preset  string `bson:"preset" json:"preset"`
	Custom  string `bson:"custom,omitempty" json:"custom,omitempty"`
}

// UserSettings holds the per-user tracker preferences, embedded in the user
// document the same way the hosted-store lineage kept them on the user doc.
type UserSettings struct {
	DefaultDailyGoal     int          `bson:"default_daily_goal" json:"default_daily_goal"`
	NotificationsEnabled bool         `bson:"notifications_enabled" json:"notifications_enabled"`
	Timezone             string       `bson:"timezone,omitempty" json:"timezone,omitempty"`
	Reminder1            ReminderSlot `bson:"reminder1" json:"reminder1"`
	Reminder2            ReminderSlot `bson:"reminder2" json:"reminder2"`
	Reminder3            ReminderSlot `bson:"reminder3" json:"reminder3"`
	Reminder4            ReminderSlot `bson:"reminder4" json:"reminder4"`
	Reminder5            ReminderSlot `bson:"reminder5" json:"reminder5"`
	PowerUserVerified    bool         `bson:"power_user_verified" json:"power_user_verified"`
}

// Slots returns the reminder slots as a slice, in order.
func (s *UserSettings) Slots() []ReminderSlot {
	return []ReminderSlot{s.Reminder1, s.Reminder2, s.Reminder3, s.Reminder4, s.Reminder5}
}

// User represents an account in the tracker.
type User struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username       string             `bson:"username" json:"username"`
	Email          string             `bson:"email" json:"email"`
	HashedPassword string             `bson:"hashed_password" json:"-"`
	Role           string             `bson:"role" json:"role"`
	IsVerified     bool               `bson:"is_verified" json:"is_verified"`
	VerifyToken    string             `bson:"verify_token,omitempty" json:"-"`
	Settings       UserSettings       `bson:"settings" json:"settings"`
	CreatedAt      time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time          `bson:"updated_at" json:"updated_at"`
}

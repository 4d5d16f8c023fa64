package models

import "time"

// EmailConfig is the single process-wide email configuration document,
// writable only by an admin. Enabled is the kill switch: when false no
// reminder or test email may be sent regardless of per-user settings.
type EmailConfig struct {
	ID           string    `bson:"_id" json:"-"`
	ServiceID    string    `bson:"service_id,omitempty" json:"service_id,omitempty"`
	TemplateID   string    `bson:"template_id,omitempty" json:"template_id,omitempty"`
	PublicKey    string    `bson:"public_key,omitempty" json:"public_key,omitempty"`
	Enabled      bool      `bson:"enabled" json:"enabled"`
	ConfiguredBy string    `bson:"configured_by,omitempty" json:"configured_by,omitempty"`
	LastUpdated  time.Time `bson:"last_updated" json:"last_updated"`
}

// ReminderLog is a persisted "already sent" marker. Its _id encodes
// user:slot:date so duplicate sends across overlapping job runs fail on the
// unique key instead of reaching the mailer.
type ReminderLog struct {
	ID     string    `bson:"_id" json:"id"`
	UserID string    `bson:"user_id" json:"user_id"`
	Slot   int       `bson:"slot" json:"slot"`
	Date   string    `bson:"date" json:"date"`
	SentAt time.Time `bson:"sent_at" json:"sent_at"`
}

package repository

import (
	"context"
	"time"

	"github.com/kmehta/water-intake-tracker/internal/models"
	"github.com/kmehta/water-intake-tracker/pkg/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// emailConfigID is the fixed key of the single process-wide config document.
const emailConfigID = "global"

// EmailConfigRepository stores the admin-managed email configuration.
type EmailConfigRepository struct {
	collection *mongo.Collection
}

// NewEmailConfigRepository creates a new instance of EmailConfigRepository.
func NewEmailConfigRepository(db *mongo.Database) *EmailConfigRepository {
	return &EmailConfigRepository{
		collection: db.Collection("email_config"),
	}
}

// Get returns the global email config. A missing document is returned as a
// disabled config rather than an error, so the email feature degrades
// gracefully when it was never set up.
func (r *EmailConfigRepository) Get(ctx context.Context) (*models.EmailConfig, error) {
	var cfg models.EmailConfig
	err := r.collection.FindOne(ctx, bson.M{"_id": emailConfigID}).Decode(&cfg)
	if err == mongo.ErrNoDocuments {
		return &models.EmailConfig{ID: emailConfigID, Enabled: false}, nil
	}
	if err != nil {
		logger.Log.WithError(err).Error("Failed to fetch email config")
		return nil, err
	}
	return &cfg, nil
}

// Update replaces the global email config.
func (r *EmailConfigRepository) Update(ctx context.Context, cfg *models.EmailConfig) error {
	cfg.ID = emailConfigID
	cfg.LastUpdated = time.Now()

	opts := options.Replace().SetUpsert(true)
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": emailConfigID}, cfg, opts)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to update email config")
		return err
	}

	logger.Log.WithField("configured_by", cfg.ConfiguredBy).Info("Email config updated")
	return nil
}

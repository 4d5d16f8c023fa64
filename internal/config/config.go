package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// Config holds every runtime setting for the tracker, loaded once at startup.
type Config struct {
	Port        string
	MongoURI    string
	MongoDB     string
	JWTSecret   string
	TokenExpiry int // hours

	SMTPHost     string
	SMTPPort     string
	SMTPSender   string
	SMTPPassword string

	AppURL          string
	AdminEmail      string
	PowerUserCode   string
	DefaultTimezone string
	DefaultGoal     int

	// StoreBackend selects the record store: "mongo" or "memory".
	StoreBackend string
	// ReminderMode selects reminder matching: "push" (hourly cron, hour
	// granularity) or "poll" (5-minute ticker, minute window).
	ReminderMode string
}

// LoadConfig reads the .env file (if present) and environment variables.
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		log.Info("No .env file found, relying on environment")
	}

	return &Config{
		Port:        getEnv("PORT", "8080"),
		MongoURI:    getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:     getEnv("MONGO_DB", "water_tracker"),
		JWTSecret:   getEnv("JWT_SECRET", ""),
		TokenExpiry: getEnvInt("TOKEN_EXPIRY_HOURS", 72),

		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getEnv("SMTP_PORT", "587"),
		SMTPSender:   getEnv("SMTP_SENDER", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),

		AppURL:          getEnv("APP_URL", "http://localhost:8080"),
		AdminEmail:      getEnv("ADMIN_EMAIL", ""),
		PowerUserCode:   getEnv("POWER_USER_CODE", ""),
		DefaultTimezone: getEnv("DEFAULT_TIMEZONE", "America/New_York"),
		DefaultGoal:     getEnvInt("DEFAULT_DAILY_GOAL", 2000),

		StoreBackend: getEnv("STORE_BACKEND", "mongo"),
		ReminderMode: getEnv("REMINDER_MODE", "push"),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.WithField("key", key).Warnf("Invalid integer %q, using default %d", value, fallback)
		return fallback
	}
	return n
}

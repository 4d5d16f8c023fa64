package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/kmehta/water-intake-tracker/internal/config"
	"github.com/kmehta/water-intake-tracker/internal/models"
	"github.com/kmehta/water-intake-tracker/internal/repository"
	"github.com/kmehta/water-intake-tracker/pkg/email"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrNotPowerUser is returned when a notification feature requires the
// power-user gate and the caller has not unlocked it.
var ErrNotPowerUser = errors.New("power user verification required")

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// UserService encapsulates the business logic for accounts and settings.
type UserService struct {
	repo       *repository.UserRepository
	dispatcher email.Dispatcher
	cfg        *config.Config
}

// NewUserService creates a new instance of UserService.
func NewUserService(repo *repository.UserRepository, dispatcher email.Dispatcher, cfg *config.Config) *UserService {
	return &UserService{repo: repo, dispatcher: dispatcher, cfg: cfg}
}

// RegisterUser registers a new user after hashing their password and sends a
// verification email.
func (s *UserService) RegisterUser(ctx context.Context, user *models.User) (*models.User, error) {
	logrus.Info("Registering new user")

	if user.Email == "" || user.Username == "" || user.HashedPassword == "" {
		logrus.Warn("Missing required fields during registration")
		return nil, fmt.Errorf("missing required user fields")
	}

	if !emailRegex.MatchString(user.Email) {
		logrus.WithField("email", user.Email).Warn("Invalid email format during registration")
		return nil, fmt.Errorf("invalid email format")
	}

	existingUser, _ := s.repo.GetUserByEmail(ctx, user.Email)
	if existingUser != nil {
		logrus.WithField("email", user.Email).Warn("Email already in use")
		return nil, fmt.Errorf("email already in use")
	}

	hashedPwd, err := bcrypt.GenerateFromPassword([]byte(user.HashedPassword), bcrypt.DefaultCost)
	if err != nil {
		logrus.WithError(err).Error("Password hashing failed")
		return nil, fmt.Errorf("failed to hash password: %v", err)
	}

	user.HashedPassword = string(hashedPwd)
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()

	if user.Role == "" {
		user.Role = "user"
	}
	if user.Email == s.cfg.AdminEmail {
		user.Role = "admin"
	}

	user.VerifyToken = uuid.NewString()
	user.IsVerified = false
	user.Settings = models.UserSettings{
		DefaultDailyGoal: s.cfg.DefaultGoal,
		Timezone:         s.cfg.DefaultTimezone,
	}

	createdUser, err := s.repo.CreateUser(ctx, user)
	if err != nil {
		logrus.WithError(err).Error("User registration failed")
		return nil, fmt.Errorf("failed to register user: %v", err)
	}

	verificationLink := fmt.Sprintf("%s/users/verify?token=%s", s.cfg.AppURL, user.VerifyToken)
	emailBody := fmt.Sprintf("<p>Welcome to Water Intake Tracker!</p><p>Please verify your email by clicking the link below:</p><p><a href=%q>%s</a></p>", verificationLink, verificationLink)

	if err := s.dispatcher.Send(user.Email, "Verify your Water Tracker account", emailBody); err != nil {
		// Account creation stands; the user can request verification later.
		logrus.WithError(err).Warn("Failed to send verification email")
	} else {
		logrus.Infof("Sent verification email to %s", user.Email)
	}

	logrus.WithFields(logrus.Fields{
		"userID": createdUser.ID.Hex(),
		"role":   createdUser.Role,
	}).Info("User registered successfully")
	return createdUser, nil
}

// VerifyEmail marks the account matching the token as verified.
func (s *UserService) VerifyEmail(ctx context.Context, token string) error {
	user, err := s.repo.GetUserByVerificationToken(ctx, token)
	if err != nil {
		return fmt.Errorf("invalid or expired verification token")
	}

	update := map[string]interface{}{
		"is_verified":  true,
		"verify_token": "",
	}
	if _, err := s.repo.UpdateUser(ctx, user.ID, update); err != nil {
		return fmt.Errorf("failed to update user verification status: %v", err)
	}
	return nil
}

// AuthenticateUser checks credentials and returns the account on success.
func (s *UserService) AuthenticateUser(ctx context.Context, emailAddr, password string) (*models.User, error) {
	user, err := s.repo.GetUserByEmail(ctx, emailAddr)
	if err != nil {
		return nil, fmt.Errorf("invalid email or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)); err != nil {
		return nil, fmt.Errorf("invalid email or password")
	}
	return user, nil
}

// GetUser fetches a user by hex ID.
func (s *UserService) GetUser(ctx context.Context, id string) (*models.User, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID: %v", err)
	}
	return s.repo.GetUserByID(ctx, objID)
}

// UpdateSettings validates and replaces a user's tracker settings.
func (s *UserService) UpdateSettings(ctx context.Context, id string, settings models.UserSettings) (*models.UserSettings, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID: %v", err)
	}

	current, err := s.repo.GetUserByID(ctx, objID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %v", err)
	}

	if settings.DefaultDailyGoal <= 0 {
		return nil, fmt.Errorf("default daily goal must be a positive number of milliliters")
	}
	if settings.Timezone != "" {
		if _, err := time.LoadLocation(settings.Timezone); err != nil {
			return nil, fmt.Errorf("unknown timezone %q", settings.Timezone)
		}
	}
	for i, slot := range settings.Slots() {
		if !slot.Enabled {
			continue
		}
		if _, err := ResolveSlotTime(slot); err != nil {
			return nil, fmt.Errorf("reminder %d: %v", i+1, err)
		}
	}

	// The notification surface stays behind the power-user gate; the flag
	// itself is only ever set through VerifyPowerUserCode.
	settings.PowerUserVerified = current.Settings.PowerUserVerified
	if settings.NotificationsEnabled && !settings.PowerUserVerified {
		return nil, ErrNotPowerUser
	}

	if err := s.repo.UpdateSettings(ctx, objID, settings); err != nil {
		return nil, fmt.Errorf("failed to update settings: %v", err)
	}
	return &settings, nil
}

// VerifyPowerUserCode compares the supplied code against the configured
// shared secret and unlocks the notification UI on a match.
func (s *UserService) VerifyPowerUserCode(ctx context.Context, id, code string) (bool, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, fmt.Errorf("invalid user ID: %v", err)
	}

	if s.cfg.PowerUserCode == "" {
		return false, fmt.Errorf("power user code not configured")
	}

	verified := code == s.cfg.PowerUserCode
	logrus.WithFields(logrus.Fields{
		"userID":   id,
		"verified": verified,
	}).Info("Power user verification attempt")

	if !verified {
		return false, nil
	}

	if _, err := s.repo.UpdateUser(ctx, objID, map[string]interface{}{
		"settings.power_user_verified": true,
	}); err != nil {
		return false, fmt.Errorf("failed to persist power user status: %v", err)
	}
	return true, nil
}

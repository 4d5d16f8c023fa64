package handlers

import (
	"net/http"

	"github.com/kmehta/water-intake-tracker/internal/services"
	"github.com/kmehta/water-intake-tracker/pkg/middleware"
	log "github.com/sirupsen/logrus"
)

// ReminderHandler serves the on-demand reminder actions.
type ReminderHandler struct {
	Reminders   *services.ReminderService
	UserService *services.UserService
}

// NewReminderHandler creates a new instance of ReminderHandler.
func NewReminderHandler(reminders *services.ReminderService, userService *services.UserService) *ReminderHandler {
	return &ReminderHandler{Reminders: reminders, UserService: userService}
}

// SendTestEmailHandler sends a test reminder to the authenticated caller.
func (h *ReminderHandler) SendTestEmailHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	user, err := h.UserService.GetUser(r.Context(), claims.UserID)
	if err != nil {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}

	sentTo, err := h.Reminders.SendTestEmail(r.Context(), user)
	switch err {
	case nil:
	case services.ErrNotPowerUser:
		http.Error(w, "Power user verification required", http.StatusForbidden)
		return
	case services.ErrEmailDisabled:
		http.Error(w, "Email system is disabled", http.StatusServiceUnavailable)
		return
	default:
		log.WithError(err).Error("Test email failed")
		http.Error(w, "Failed to send test email", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Test email sent successfully!",
		"sentTo":  sentTo,
	})
}

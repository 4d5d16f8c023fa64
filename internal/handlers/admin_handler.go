package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/kmehta/water-intake-tracker/internal/models"
	"github.com/kmehta/water-intake-tracker/internal/repository"
	"github.com/kmehta/water-intake-tracker/pkg/middleware"
	log "github.com/sirupsen/logrus"
)

// AdminHandler manages the global email configuration. Routes using it sit
// behind the admin role middleware.
type AdminHandler struct {
	EmailConfig *repository.EmailConfigRepository
}

// NewAdminHandler creates a new instance of AdminHandler.
func NewAdminHandler(emailConfig *repository.EmailConfigRepository) *AdminHandler {
	return &AdminHandler{EmailConfig: emailConfig}
}

// GetEmailConfigHandler returns the current global email configuration.
func (h *AdminHandler) GetEmailConfigHandler(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.EmailConfig.Get(r.Context())
	if err != nil {
		log.WithError(err).Error("Failed to fetch email config")
		http.Error(w, "Failed to fetch email config", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

// UpdateEmailConfigHandler replaces the global email configuration, recording
// which admin changed it.
func (h *AdminHandler) UpdateEmailConfigHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var cfg models.EmailConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	cfg.ConfiguredBy = claims.Email

	if err := h.EmailConfig.Update(r.Context(), &cfg); err != nil {
		log.WithError(err).Error("Failed to update email config")
		http.Error(w, "Failed to update email config", http.StatusInternalServerError)
		return
	}

	log.WithFields(log.Fields{
		"enabled": cfg.Enabled,
		"admin":   claims.Email,
	}).Info("Email config updated")
	writeJSON(w, http.StatusOK, cfg)
}

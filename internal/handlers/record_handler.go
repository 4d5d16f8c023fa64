package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/kmehta/water-intake-tracker/internal/models"
	"github.com/kmehta/water-intake-tracker/internal/repository"
	"github.com/kmehta/water-intake-tracker/internal/services"
	"github.com/kmehta/water-intake-tracker/pkg/middleware"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

// RecordHandler handles HTTP requests for daily intake records.
type RecordHandler struct {
	Service     *services.RecordService
	UserService *services.UserService
}

// NewRecordHandler creates a new instance of RecordHandler.
func NewRecordHandler(service *services.RecordService, userService *services.UserService) *RecordHandler {
	return &RecordHandler{Service: service, UserService: userService}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// recordErrorStatus distinguishes rejected input from store failures.
func recordErrorStatus(err error) int {
	if errors.Is(err, services.ErrInvalidInput) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// SaveRecordHandler upserts the record for a date. Intake and goal are both
// optional; omitted fields keep their stored values.
func (h *RecordHandler) SaveRecordHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	dateKey := mux.Vars(r)["date"]

	var payload struct {
		Intake *int `json:"intake"`
		Goal   *int `json:"goal"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		log.WithError(err).Warn("Failed to decode record payload")
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	record, err := h.Service.SaveRecord(r.Context(), claims.UserID, dateKey, payload.Intake, payload.Goal)
	if err != nil {
		log.WithError(err).WithField("date", dateKey).Warn("Failed to save record")
		http.Error(w, err.Error(), recordErrorStatus(err))
		return
	}

	writeJSON(w, http.StatusOK, record)
}

// QuickAddHandler adds an amount to the day's intake (read-modify-write).
func (h *RecordHandler) QuickAddHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	dateKey := mux.Vars(r)["date"]

	var payload struct {
		Amount int `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	record, err := h.Service.QuickAdd(r.Context(), claims.UserID, dateKey, payload.Amount)
	if err != nil {
		log.WithError(err).WithField("date", dateKey).Warn("Quick-add failed")
		http.Error(w, err.Error(), recordErrorStatus(err))
		return
	}

	writeJSON(w, http.StatusOK, record)
}

// GetRecordHandler fetches a single record by date.
func (h *RecordHandler) GetRecordHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	dateKey := mux.Vars(r)["date"]

	record, err := h.Service.GetRecord(r.Context(), claims.UserID, dateKey)
	if err == repository.ErrRecordNotFound {
		http.Error(w, "Record not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), recordErrorStatus(err))
		return
	}

	writeJSON(w, http.StatusOK, record)
}

// ListRecordsHandler returns all of the user's records.
func (h *RecordHandler) ListRecordsHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	records, err := h.Service.ListRecords(r.Context(), claims.UserID)
	if err != nil {
		log.WithError(err).Error("Failed to list records")
		http.Error(w, "Failed to fetch records", http.StatusInternalServerError)
		return
	}
	if records == nil {
		records = []models.DailyRecord{}
	}

	writeJSON(w, http.StatusOK, records)
}

// DeleteRecordHandler removes a record by date.
func (h *RecordHandler) DeleteRecordHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	dateKey := mux.Vars(r)["date"]

	if err := h.Service.DeleteRecord(r.Context(), claims.UserID, dateKey); err != nil {
		log.WithError(err).WithField("date", dateKey).Error("Failed to delete record")
		http.Error(w, err.Error(), recordErrorStatus(err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// TodayProgressHandler returns the current day's amount, goal and percentage.
func (h *RecordHandler) TodayProgressHandler(w http.ResponseWriter, r *http.Request) {
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

	loc := time.UTC
	if user.Settings.Timezone != "" {
		if l, err := time.LoadLocation(user.Settings.Timezone); err == nil {
			loc = l
		}
	}

	progress, err := h.Service.TodayProgress(r.Context(), claims.UserID, user.Settings.DefaultDailyGoal, loc)
	if err != nil {
		log.WithError(err).Error("Failed to compute today's progress")
		http.Error(w, "Failed to fetch progress", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, progress)
}

// MigrateRecordsHandler bulk-imports legacy client records.
func (h *RecordHandler) MigrateRecordsHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var payload struct {
		Records []models.DailyRecord `json:"records"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	written, err := h.Service.MigrateRecords(r.Context(), claims.UserID, payload.Records)
	if err != nil {
		log.WithError(err).Error("Record migration failed")
		http.Error(w, err.Error(), recordErrorStatus(err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{"migrated": written})
}

package handlers

import (
	"fmt"
	"net/http"

	"github.com/kmehta/water-intake-tracker/internal/services"
	"github.com/kmehta/water-intake-tracker/pkg/middleware"
	log "github.com/sirupsen/logrus"
)

// ExportHandler serves CSV downloads of a user's records.
type ExportHandler struct {
	Records     *services.RecordService
	UserService *services.UserService
	Export      *services.ExportService
}

// NewExportHandler creates a new instance of ExportHandler.
func NewExportHandler(records *services.RecordService, userService *services.UserService, export *services.ExportService) *ExportHandler {
	return &ExportHandler{Records: records, UserService: userService, Export: export}
}

// ExportCSVHandler streams the date-range export as a CSV attachment. An
// empty range is a 404, never a silent header-only file.
func (h *ExportHandler) ExportCSVHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	start := r.URL.Query().Get("start")
	end := r.URL.Query().Get("end")
	if start == "" || end == "" {
		http.Error(w, "start and end query parameters are required (YYYY-MM-DD)", http.StatusBadRequest)
		return
	}

	records, err := h.Records.ListRange(r.Context(), claims.UserID, start, end)
	if err != nil {
		log.WithError(err).Warn("Export range fetch failed")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	user, err := h.UserService.GetUser(r.Context(), claims.UserID)
	if err != nil {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}

	csv, err := h.Export.Export(records, start, end, user.Settings.DefaultDailyGoal)
	if err == services.ErrNoRecordsInRange {
		http.Error(w, "No records in the requested date range", http.StatusNotFound)
		return
	}
	if err != nil {
		log.WithError(err).Error("CSV export failed")
		http.Error(w, "Export failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", h.Export.Filename(start, end)))
	w.Write([]byte(csv))
}

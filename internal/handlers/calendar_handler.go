package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/kmehta/water-intake-tracker/internal/services"
	"github.com/kmehta/water-intake-tracker/pkg/datekey"
	"github.com/kmehta/water-intake-tracker/pkg/middleware"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

// CalendarHandler serves the month grid and the statistics summary.
type CalendarHandler struct {
	Records     *services.RecordService
	UserService *services.UserService
	Calendar    *services.CalendarService
	Stats       *services.StatsService
}

// NewCalendarHandler creates a new instance of CalendarHandler.
func NewCalendarHandler(records *services.RecordService, userService *services.UserService, calendar *services.CalendarService, stats *services.StatsService) *CalendarHandler {
	return &CalendarHandler{Records: records, UserService: userService, Calendar: calendar, Stats: stats}
}

func (h *CalendarHandler) userContext(r *http.Request) (userID string, defaultGoal int, loc *time.Location, err error) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		return "", 0, nil, fmt.Errorf("unauthorized")
	}

	user, err := h.UserService.GetUser(r.Context(), claims.UserID)
	if err != nil {
		return "", 0, nil, fmt.Errorf("user not found")
	}

	loc = time.UTC
	if user.Settings.Timezone != "" {
		if l, lerr := time.LoadLocation(user.Settings.Timezone); lerr == nil {
			loc = l
		}
	}
	return claims.UserID, user.Settings.DefaultDailyGoal, loc, nil
}

// RenderMonthHandler returns the day cells for one month.
func (h *CalendarHandler) RenderMonthHandler(w http.ResponseWriter, r *http.Request) {
	userID, defaultGoal, loc, err := h.userContext(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	vars := mux.Vars(r)
	year, err := strconv.Atoi(vars["year"])
	if err != nil || year < 1 {
		http.Error(w, "Invalid year", http.StatusBadRequest)
		return
	}
	monthNum, err := strconv.Atoi(vars["month"])
	if err != nil || monthNum < 1 || monthNum > 12 {
		http.Error(w, "Invalid month", http.StatusBadRequest)
		return
	}
	month := time.Month(monthNum)

	start := fmt.Sprintf("%04d-%02d-01", year, monthNum)
	end := fmt.Sprintf("%04d-%02d-31", year, monthNum)
	records, err := h.Records.ListRange(r.Context(), userID, start, end)
	if err != nil {
		log.WithError(err).Error("Failed to fetch month records")
		http.Error(w, "Failed to fetch records", http.StatusInternalServerError)
		return
	}

	cells := h.Calendar.RenderMonth(year, month, records, r.URL.Query().Get("selected"), defaultGoal, time.Now().In(loc))
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"year":  year,
		"month": monthNum,
		"days":  cells,
	})
}

// StatisticsHandler returns bucket counts, tracked-day total and streak.
func (h *CalendarHandler) StatisticsHandler(w http.ResponseWriter, r *http.Request) {
	userID, defaultGoal, loc, err := h.userContext(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	records, err := h.Records.ListRecords(r.Context(), userID)
	if err != nil {
		log.WithError(err).Error("Failed to fetch records for statistics")
		http.Error(w, "Failed to fetch records", http.StatusInternalServerError)
		return
	}

	stats := h.Stats.Compute(records, defaultGoal, datekey.Today(loc))
	writeJSON(w, http.StatusOK, stats)
}

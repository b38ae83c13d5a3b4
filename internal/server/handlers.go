package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ktrou69-commits/energy-coins/internal/budget"
	"github.com/ktrou69-commits/energy-coins/internal/models"
	"github.com/ktrou69-commits/energy-coins/internal/occupancy"
	"github.com/ktrou69-commits/energy-coins/internal/scheduler"
	"github.com/ktrou69-commits/energy-coins/internal/stats"
	"github.com/ktrou69-commits/energy-coins/internal/utils"
	"github.com/ktrou69-commits/energy-coins/internal/validation"
)

// DayResponse is a day together with its budget figures
type DayResponse struct {
	Date           string          `json:"date"`
	Actions        []models.Action `json:"actions"`
	Notes          string          `json:"notes"`
	AvailableCoins int             `json:"availableCoins"`
	UsedCoins      int             `json:"usedCoins"`
}

// CoinsResponse is the hour-by-hour timeline of the awake window
type CoinsResponse struct {
	Date           string              `json:"date"`
	AvailableCoins int                 `json:"availableCoins"`
	UsedCoins      int                 `json:"usedCoins"`
	CurrentHour    *int                `json:"currentHour,omitempty"`
	SleepCountdown string              `json:"sleepCountdown"`
	Coins          []models.CoinStatus `json:"coins"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"time":    s.now().UTC(),
		"clients": s.hub.ClientCount(),
	})
}

// dateParam reads {date} and writes a 400 if it is malformed
func dateParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	date := chi.URLParam(r, "date")
	if _, err := utils.ParseDate(date); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return "", false
	}
	return date, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON")
		return false
	}
	return true
}

func (s *Server) handleGetDay(w http.ResponseWriter, r *http.Request) {
	date, ok := dateParam(w, r)
	if !ok {
		return
	}
	day := s.store.Day(date)
	respondJSON(w, http.StatusOK, DayResponse{
		Date:           date,
		Actions:        day.Actions,
		Notes:          day.Notes,
		AvailableCoins: budget.AvailableCoins(s.store.Settings()),
		UsedCoins:      occupancy.UsedCoins(day.Actions),
	})
}

func (s *Server) handleGetCoins(w http.ResponseWriter, r *http.Request) {
	date, ok := dateParam(w, r)
	if !ok {
		return
	}
	settings := s.store.Settings()
	day := s.store.Day(date)
	now := s.now()

	resp := CoinsResponse{
		Date:           date,
		AvailableCoins: budget.AvailableCoins(settings),
		UsedCoins:      occupancy.UsedCoins(day.Actions),
		SleepCountdown: budget.SleepCountdown(settings, now).Round(time.Minute).String(),
		Coins:          occupancy.Timeline(day.Actions, scheduler.ActiveHoursFor(settings)),
	}
	if budget.IsCurrentHour(date, now.Hour(), now) {
		h := now.Hour()
		resp.CurrentHour = &h
	}
	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleNextSlot(w http.ResponseWriter, r *http.Request) {
	date, ok := dateParam(w, r)
	if !ok {
		return
	}
	duration := 0
	if v := r.URL.Query().Get("duration"); v != "" {
		d, err := strconv.Atoi(v)
		if err != nil || d < 0 {
			respondError(w, http.StatusBadRequest, "duration must be a non-negative number of minutes")
			return
		}
		duration = d
	}
	slot := s.scheduler.NextAvailableSlot(s.store.Day(date).Actions, s.store.Settings(), duration)
	respondJSON(w, http.StatusOK, slot)
}

func (s *Server) handleCheckDay(w http.ResponseWriter, r *http.Request) {
	date, ok := dateParam(w, r)
	if !ok {
		return
	}
	result := s.validator.ValidateDay(date, s.store.Day(date), s.store.Settings())
	if result.Conflicts == nil {
		result.Conflicts = []validation.Conflict{}
	}
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleSetNotes(w http.ResponseWriter, r *http.Request) {
	date, ok := dateParam(w, r)
	if !ok {
		return
	}
	var body struct {
		Notes string `json:"notes"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	if err := s.store.SetNotes(date, body.Notes); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, s.store.Day(date))
}

func (s *Server) handleCreateAction(w http.ResponseWriter, r *http.Request) {
	date, ok := dateParam(w, r)
	if !ok {
		return
	}
	var patch models.ActionPatch
	if !decodeBody(w, r, &patch) {
		return
	}
	// creation always assigns a fresh id
	patch.ID = ""
	saved, err := s.store.SaveAction(date, patch)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, saved)
}

func (s *Server) handleUpdateAction(w http.ResponseWriter, r *http.Request) {
	date, ok := dateParam(w, r)
	if !ok {
		return
	}
	var patch models.ActionPatch
	if !decodeBody(w, r, &patch) {
		return
	}
	patch.ID = chi.URLParam(r, "id")
	saved, err := s.store.SaveAction(date, patch)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, saved)
}

func (s *Server) handleDeleteAction(w http.ResponseWriter, r *http.Request) {
	date, ok := dateParam(w, r)
	if !ok {
		return
	}
	if err := s.store.DeleteAction(date, chi.URLParam(r, "id")); err != nil {
		respondDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMoveAction(w http.ResponseWriter, r *http.Request) {
	date, ok := dateParam(w, r)
	if !ok {
		return
	}
	var body struct {
		Hour *int `json:"hour"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	if body.Hour == nil {
		respondError(w, http.StatusBadRequest, "hour is required")
		return
	}
	moved, err := s.store.MoveAction(date, chi.URLParam(r, "id"), *body.Hour)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, moved)
}

// --- Stats ---

func (s *Server) handleDayStats(w http.ResponseWriter, r *http.Request) {
	date, ok := dateParam(w, r)
	if !ok {
		return
	}
	cats := s.stats.CategoryStats(date)
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"date":       date,
		"totalHours": cats.Total(),
		"categories": cats,
		"productive": s.stats.IsDayProductive(date),
	})
}

func (s *Server) handleWeekStats(w http.ResponseWriter, r *http.Request) {
	date, ok := dateParam(w, r)
	if !ok {
		return
	}
	days := s.stats.WeekStats(date)
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"start":      date,
		"days":       days,
		"categories": s.stats.WeekCategoryStats(date),
	})
}

func (s *Server) handleMonthStats(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil || year < 1 {
		respondError(w, http.StatusBadRequest, "invalid year")
		return
	}
	month, err := strconv.Atoi(chi.URLParam(r, "month"))
	if err != nil || month < 1 || month > 12 {
		respondError(w, http.StatusBadRequest, "invalid month")
		return
	}
	cats := s.stats.MonthCategoryStats(year, time.Month(month))
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"year":       year,
		"month":      month,
		"totalHours": cats.Total(),
		"categories": cats,
		"productive": s.stats.IsMonthProductive(year, time.Month(month)),
	})
}

func (s *Server) handleHourlyStats(w http.ResponseWriter, r *http.Request) {
	date, ok := dateParam(w, r)
	if !ok {
		return
	}
	hist := s.stats.HourlyStats(date)
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"date":  date,
		"hours": hist[:],
	})
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	date, ok := dateParam(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, s.stats.SummaryReport(date))
}

// LifeResponse is the life calendar summary plus the productivity of one week and year.
// Week is a zero-based week index counted from the birth date.
type LifeResponse struct {
	BirthDate      string          `json:"birthDate"`
	LifeExpectancy int             `json:"lifeExpectancy"`
	Stats          stats.LifeStats `json:"stats"`
	Week           int             `json:"week"`
	WeekProductive bool            `json:"weekProductive"`
	Year           int             `json:"year"`
	YearProductive bool            `json:"yearProductive"`
}

func (s *Server) handleLifeStats(w http.ResponseWriter, r *http.Request) {
	life := s.store.Settings().Life
	now := s.now()
	ls := s.stats.LifeStats(life.BirthDate, life.Years(), now)

	week := ls.WeeksLived
	if v := r.URL.Query().Get("week"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			respondError(w, http.StatusBadRequest, "invalid week")
			return
		}
		week = n
	}
	year := now.Year()
	if v := r.URL.Query().Get("year"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			respondError(w, http.StatusBadRequest, "invalid year")
			return
		}
		year = n
	}

	respondJSON(w, http.StatusOK, LifeResponse{
		BirthDate:      life.BirthDate,
		LifeExpectancy: life.Years(),
		Stats:          ls,
		Week:           week,
		WeekProductive: s.stats.IsWeekProductive(life.BirthDate, week),
		Year:           year,
		YearProductive: s.stats.IsYearProductive(year),
	})
}

// --- Settings and suggestions ---

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	settings := s.store.Settings()
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"settings":       settings,
		"availableCoins": budget.AvailableCoins(settings),
	})
}

func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var patch models.SettingsPatch
	if !decodeBody(w, r, &patch) {
		return
	}
	updated, err := s.store.UpdateSettings(patch)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			// anything but a write failure is a rejected value
			status = http.StatusBadRequest
		}
		respondError(w, status, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"settings":       updated,
		"availableCoins": budget.AvailableCoins(updated),
	})
}

func (s *Server) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.store.Suggestions(r.URL.Query().Get("q")))
}

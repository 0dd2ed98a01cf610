// Package web serves a localhost-only single-user UI; it intentionally has no
// auth/CSRF protection in this mode.
package web

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"daytally/balance"
	"daytally/entry"
	"daytally/reconcile"
	"daytally/storage"
)

//go:embed templates/*.html
var templateFS embed.FS

// pendingPlanTTL bounds how long a previewed plan stays applicable.
const pendingPlanTTL = 10 * time.Minute

type Server struct {
	store    *storage.SQLiteStore
	schedule balance.Schedule
	mux      *http.ServeMux

	// planMu guards the pending previews and serializes applies, so two
	// concurrent balance requests for the same day cannot interleave their
	// writes.
	planMu       sync.Mutex
	pendingPlans map[string]pendingPlan
}

type pendingPlan struct {
	date      string
	result    *reconcile.Result
	createdAt time.Time
}

type balanceEntryView struct {
	ID                int64   `json:"id"`
	OriginalDuration  int64   `json:"originalDuration"`
	UnroundedDuration float64 `json:"unroundedDuration"`
	Duration          int64   `json:"duration"`
}

type balancePreviewResponse struct {
	Token                  string             `json:"token"`
	Date                   string             `json:"date"`
	NoOp                   bool               `json:"noOp"`
	TimeDifferenceHours    *float64           `json:"timeDifferenceHours"`
	RoundedDifferenceHours *float64           `json:"roundedDifferenceHours"`
	Entries                []balanceEntryView `json:"entries"`
}

type balanceApplyRequest struct {
	Token string `json:"token"`
}

type balanceApplyResponse struct {
	Date        string `json:"date"`
	RowsUpdated int    `json:"rowsUpdated"`
}

type undoResponse struct {
	Date    string `json:"date"`
	Cleared int    `json:"cleared"`
}

type timerStartRequest struct {
	ProjectNumber string `json:"projectNumber"`
}

type timerResponse struct {
	ID            int64  `json:"id"`
	ProjectNumber string `json:"projectNumber"`
	Start         string `json:"start"`
	End           string `json:"end,omitempty"`
}

type entryMutationRequest struct {
	ProjectNumber string `json:"projectNumber"`
	Start         string `json:"start"`
	End           string `json:"end"`
}

type dayPageView struct {
	Title  string
	Day    string
	Month  string
	DayRow DayRow
}

type monthPageView struct {
	Title         string
	CurrentMonth  string
	PreviousMonth string
	NextMonth     string
	Summary       MonthSummary
}

func NewServer(store *storage.SQLiteStore, schedule balance.Schedule) http.Handler {
	server := &Server{
		store:        store,
		schedule:     schedule,
		pendingPlans: make(map[string]pendingPlan),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /month/{month}", server.handleMonth)
	mux.HandleFunc("GET /day/{date}", server.handleDay)
	mux.HandleFunc("GET /api/day/{date}", server.handleAPIDay)
	mux.HandleFunc("POST /api/balance/{date}", server.handleAPIBalancePreview)
	mux.HandleFunc("POST /api/balance/{date}/apply", server.handleAPIBalanceApply)
	mux.HandleFunc("DELETE /api/balance/{date}", server.handleAPIBalanceUndo)
	mux.HandleFunc("POST /api/timer/start", server.handleAPITimerStart)
	mux.HandleFunc("POST /api/timer/stop", server.handleAPITimerStop)
	mux.HandleFunc("POST /api/entry", server.handleAPIEntryCreate)
	mux.HandleFunc("PATCH /api/entry/{id}", server.handleAPIEntryPatch)
	mux.HandleFunc("DELETE /api/entry/{id}", server.handleAPIEntryDelete)
	server.mux = mux

	return server
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) handleMonth(w http.ResponseWriter, r *http.Request) {
	monthStart, err := parseMonth(strings.TrimSpace(r.PathValue("month")))
	if err != nil {
		http.Error(w, "invalid month format (expected YYYY-MM)", http.StatusBadRequest)
		return
	}

	entries, err := s.store.ListEntries()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	view := monthPageView{
		Title:         "daytally " + monthStart.Format("2006-01"),
		CurrentMonth:  monthStart.Format("2006-01"),
		PreviousMonth: monthStart.AddDate(0, -1, 0).Format("2006-01"),
		NextMonth:     monthStart.AddDate(0, 1, 0).Format("2006-01"),
		Summary:       BuildMonthSummary(monthStart, entries, s.schedule),
	}
	s.renderTemplate(w, "month.html", view)
}

func (s *Server) handleDay(w http.ResponseWriter, r *http.Request) {
	day, err := parseDay(strings.TrimSpace(r.PathValue("date")))
	if err != nil {
		http.Error(w, "invalid date format (expected YYYY-MM-DD)", http.StatusBadRequest)
		return
	}

	row, err := s.dayRow(day)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	view := dayPageView{
		Title:  "daytally " + day.Format("2006-01-02"),
		Day:    day.Format("2006-01-02"),
		Month:  day.Format("2006-01"),
		DayRow: row,
	}
	s.renderTemplate(w, "day.html", view)
}

func (s *Server) handleAPIDay(w http.ResponseWriter, r *http.Request) {
	day, err := parseDay(strings.TrimSpace(r.PathValue("date")))
	if err != nil {
		http.Error(w, "invalid date format (expected YYYY-MM-DD)", http.StatusBadRequest)
		return
	}

	row, err := s.dayRow(day)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, row.Entries)
}

// handleAPIBalancePreview computes the adjustment plan for the day and
// stashes it under a one-time token. Nothing is written yet; the UI shows the
// residual and posts the token to the apply endpoint once the user confirms.
func (s *Server) handleAPIBalancePreview(w http.ResponseWriter, r *http.Request) {
	day, err := parseDay(strings.TrimSpace(r.PathValue("date")))
	if err != nil {
		http.Error(w, "invalid date format (expected YYYY-MM-DD)", http.StatusBadRequest)
		return
	}

	result, err := reconcile.Preview(s.store, day, s.schedule)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, balance.ErrInvalidSchedule) || errors.Is(err, balance.ErrZeroTotalDuration) {
			status = http.StatusUnprocessableEntity
		}
		http.Error(w, err.Error(), status)
		return
	}

	response := balancePreviewResponse{
		Date:                   result.Day,
		NoOp:                   result.Plan.NoOp(),
		TimeDifferenceHours:    result.TimeDifferenceHours,
		RoundedDifferenceHours: result.RoundedDifferenceHours,
		Entries:                make([]balanceEntryView, 0, len(result.Plan.Entries)),
	}
	for _, adjusted := range result.Plan.Entries {
		response.Entries = append(response.Entries, balanceEntryView{
			ID:                adjusted.ID,
			OriginalDuration:  adjusted.OriginalDuration,
			UnroundedDuration: adjusted.UnroundedDuration,
			Duration:          adjusted.Duration,
		})
	}

	if !result.Plan.NoOp() {
		token := uuid.NewString()
		s.planMu.Lock()
		s.prunePendingPlans(time.Now())
		s.pendingPlans[token] = pendingPlan{
			date:      result.Day,
			result:    result,
			createdAt: time.Now(),
		}
		s.planMu.Unlock()
		response.Token = token
	}

	writeJSON(w, http.StatusOK, response)
}

func (s *Server) handleAPIBalanceApply(w http.ResponseWriter, r *http.Request) {
	date := strings.TrimSpace(r.PathValue("date"))
	if _, err := parseDay(date); err != nil {
		http.Error(w, "invalid date format (expected YYYY-MM-DD)", http.StatusBadRequest)
		return
	}

	var request balanceApplyRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil || strings.TrimSpace(request.Token) == "" {
		http.Error(w, "missing balance token", http.StatusBadRequest)
		return
	}

	// Single-use token, date-bound; holding planMu across the write gives
	// at most one effective adjustment per day at a time.
	s.planMu.Lock()
	defer s.planMu.Unlock()

	pending, ok := s.pendingPlans[request.Token]
	if !ok || pending.date != date || time.Since(pending.createdAt) > pendingPlanTTL {
		http.Error(w, "unknown or expired balance token", http.StatusConflict)
		return
	}
	delete(s.pendingPlans, request.Token)
	s.dropPlansForDate(date)

	updated, err := reconcile.Apply(s.store, pending.result)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, balanceApplyResponse{Date: date, RowsUpdated: updated})
}

func (s *Server) handleAPIBalanceUndo(w http.ResponseWriter, r *http.Request) {
	day, err := parseDay(strings.TrimSpace(r.PathValue("date")))
	if err != nil {
		http.Error(w, "invalid date format (expected YYYY-MM-DD)", http.StatusBadRequest)
		return
	}

	s.planMu.Lock()
	defer s.planMu.Unlock()
	s.dropPlansForDate(day.Format("2006-01-02"))

	cleared, err := reconcile.UndoDay(s.store, day)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, undoResponse{Date: day.Format("2006-01-02"), Cleared: cleared})
}

func (s *Server) handleAPITimerStart(w http.ResponseWriter, r *http.Request) {
	var request timerStartRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	start := time.Now()
	id, err := s.store.StartEntry(strings.TrimSpace(request.ProjectNumber), start)
	if err != nil {
		if errors.Is(err, storage.ErrTimerRunning) {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, timerResponse{
		ID:            id,
		ProjectNumber: strings.TrimSpace(request.ProjectNumber),
		Start:         start.Format(time.RFC3339),
	})
}

func (s *Server) handleAPITimerStop(w http.ResponseWriter, r *http.Request) {
	stopped, err := s.store.StopEntry(time.Now())
	if err != nil {
		if errors.Is(err, storage.ErrNoTimer) {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, timerResponse{
		ID:            stopped.ID,
		ProjectNumber: stopped.ProjectNumber,
		Start:         stopped.StartDateTime.Format(time.RFC3339),
		End:           stopped.EndDateTime.Format(time.RFC3339),
	})
}

func (s *Server) handleAPIEntryCreate(w http.ResponseWriter, r *http.Request) {
	mutated, err := decodeEntryMutation(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if _, err := s.store.InsertEntries([]entry.Entry{mutated}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (s *Server) handleAPIEntryPatch(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "invalid entry id", http.StatusBadRequest)
		return
	}

	mutated, err := decodeEntryMutation(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	mutated.ID = id

	if err := s.store.UpdateEntry(mutated); err != nil {
		if errors.Is(err, storage.ErrEntryNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAPIEntryDelete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "invalid entry id", http.StatusBadRequest)
		return
	}

	deleted, err := s.store.DeleteEntry(id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if !deleted {
		http.Error(w, "entry not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) dayRow(day time.Time) (DayRow, error) {
	entries, err := s.store.ListEntries()
	if err != nil {
		return DayRow{}, err
	}

	dayEntries := make([]entry.Entry, 0, len(entries))
	for _, e := range entries {
		if sameLocalDay(e.StartDateTime, day) {
			dayEntries = append(dayEntries, e)
		}
	}
	return BuildDayRow(day, dayEntries, s.schedule), nil
}

// dropPlansForDate invalidates previews of the given date; callers hold planMu.
func (s *Server) dropPlansForDate(date string) {
	for token, pending := range s.pendingPlans {
		if pending.date == date {
			delete(s.pendingPlans, token)
		}
	}
}

// prunePendingPlans drops expired previews; callers hold planMu.
func (s *Server) prunePendingPlans(now time.Time) {
	for token, pending := range s.pendingPlans {
		if now.Sub(pending.createdAt) > pendingPlanTTL {
			delete(s.pendingPlans, token)
		}
	}
}

func (s *Server) renderTemplate(w http.ResponseWriter, name string, data any) {
	parsed, err := template.ParseFS(templateFS, "templates/"+name)
	if err != nil {
		http.Error(w, fmt.Sprintf("parse template %s: %v", name, err), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := parsed.Execute(w, data); err != nil {
		http.Error(w, fmt.Sprintf("render template %s: %v", name, err), http.StatusInternalServerError)
	}
}

func decodeEntryMutation(r *http.Request) (entry.Entry, error) {
	var request entryMutationRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		return entry.Entry{}, fmt.Errorf("invalid request body")
	}

	start, err := time.ParseInLocation(time.RFC3339, strings.TrimSpace(request.Start), time.Local)
	if err != nil {
		return entry.Entry{}, fmt.Errorf("invalid start datetime (expected RFC3339)")
	}

	mutated := entry.Entry{
		ProjectNumber: strings.TrimSpace(request.ProjectNumber),
		StartDateTime: start,
	}

	if end := strings.TrimSpace(request.End); end != "" {
		parsedEnd, err := time.ParseInLocation(time.RFC3339, end, time.Local)
		if err != nil {
			return entry.Entry{}, fmt.Errorf("invalid end datetime (expected RFC3339)")
		}
		if !parsedEnd.After(start) {
			return entry.Entry{}, fmt.Errorf("end datetime must be after start datetime")
		}
		mutated.EndDateTime = parsedEnd
	}

	return mutated, nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func parseMonth(value string) (time.Time, error) {
	parsed, err := time.ParseInLocation("2006-01", value, time.Local)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(parsed.Year(), parsed.Month(), 1, 0, 0, 0, 0, time.Local), nil
}

func parseDay(value string) (time.Time, error) {
	parsed, err := time.ParseInLocation("2006-01-02", value, time.Local)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 0, 0, 0, 0, time.Local), nil
}

func sameLocalDay(a, b time.Time) bool {
	a = a.In(time.Local)
	b = b.In(time.Local)
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

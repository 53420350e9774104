package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"tutor-mailer/database"
	"tutor-mailer/services"
	"tutor-mailer/utils"
)

const maxCSVBytes = 5 << 20

// SendMailRequest is the JSON payload of POST /api/send.
type SendMailRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
}

// Deps are the collaborators the HTTP API needs. DB may be nil, in which case
// the log and stats routes are not mounted.
type Deps struct {
	Sender    services.Sender
	Reminders *services.ReminderService
	DB        *sql.DB
	Logger    *zap.Logger
}

// NewRouter mounts the API routes.
func NewRouter(d Deps) *mux.Router {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}

	r := mux.NewRouter()
	r.HandleFunc("/api/send", SendMailHandler(d.Sender, d.Logger)).Methods(http.MethodPost)
	r.HandleFunc("/api/reminders", RemindersHandler(d.Reminders, d.Logger)).Methods(http.MethodPost)
	if d.DB != nil {
		r.HandleFunc("/api/logs", GetLogsHandler(database.NewEmailLogRepository(d.DB), d.Logger)).Methods(http.MethodGet)
		r.HandleFunc("/api/stats", GetStatsHandler(d.DB, d.Logger)).Methods(http.MethodGet)
	}
	return r
}

// SendMailHandler sends one greeting email.
func SendMailHandler(sender services.Sender, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SendMailRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			errorResponse(w, "Invalid request payload", http.StatusBadRequest)
			return
		}

		req.Name = strings.TrimSpace(req.Name)
		req.Email = strings.TrimSpace(req.Email)
		req.Subject = strings.TrimSpace(req.Subject)
		if req.Name == "" || req.Email == "" || req.Subject == "" {
			errorResponse(w, "Fields 'name', 'email', and 'subject' are required.", http.StatusBadRequest)
			return
		}

		if err := sender.SendEmail(r.Context(), req.Name, req.Email, req.Subject); err != nil {
			logger.Error("error sending email", zap.String("to", req.Email), zap.Error(err))
			errorResponse(w, "Failed to send email: "+err.Error(), http.StatusBadGateway)
			return
		}

		successResponse(w, "Email sent successfully", nil)
	}
}

// RemindersHandler runs the reminder query over a CSV schedule posted as the body.
func RemindersHandler(reminders *services.ReminderService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessions, err := database.LoadSessionsCSV(http.MaxBytesReader(w, r.Body, maxCSVBytes))
		if err != nil {
			errorResponse(w, "Invalid sessions CSV: "+err.Error(), http.StatusBadRequest)
			return
		}

		if err := reminders.SendReminders(r.Context(), sessions); err != nil {
			logger.Error("reminder run had failures", zap.Error(err))
			errorResponse(w, "Some reminders failed: "+err.Error(), http.StatusBadGateway)
			return
		}

		successResponse(w, "Reminders processed", map[string]int{"sessions": len(sessions)})
	}
}

// GetLogsHandler lists send attempts for ?date=YYYY-MM-DD (default today).
func GetLogsHandler(repo *database.EmailLogRepository, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		day := database.NewDate(time.Now())
		if s := r.URL.Query().Get("date"); s != "" {
			parsed, err := time.Parse("2006-01-02", s)
			if err != nil {
				errorResponse(w, "Invalid date format. Use YYYY-MM-DD.", http.StatusBadRequest)
				return
			}
			day = database.NewDate(parsed)
		}

		limit := 50
		if s := r.URL.Query().Get("limit"); s != "" {
			if parsed, err := strconv.Atoi(s); err == nil && parsed > 0 {
				limit = parsed
			}
		}

		logs, err := repo.ListByDate(r.Context(), day, limit)
		if err != nil {
			logger.Error("error querying email logs", zap.Error(err))
			errorResponse(w, "Internal server error fetching logs", http.StatusInternalServerError)
			return
		}
		successResponse(w, "Email logs retrieved successfully", logs)
	}
}

// GetStatsHandler reports today's volume, status split and per-day sends for ?days=N.
func GetStatsHandler(db *sql.DB, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		days := 7
		if s := r.URL.Query().Get("days"); s != "" {
			if parsed, err := strconv.Atoi(s); err == nil && parsed > 0 {
				days = parsed
			}
		}

		ctx := r.Context()
		count, err := utils.GetDailyMailCount(ctx, db)
		if err != nil {
			logger.Error("error getting daily mail count", zap.Error(err))
			errorResponse(w, "Internal server error fetching stats", http.StatusInternalServerError)
			return
		}
		statuses, err := utils.GetEmailStatusDistribution(ctx, db)
		if err != nil {
			logger.Error("error getting status distribution", zap.Error(err))
			errorResponse(w, "Internal server error fetching stats", http.StatusInternalServerError)
			return
		}
		daily, err := utils.GetDailySendsOverPeriod(ctx, db, time.Now(), days)
		if err != nil {
			logger.Error("error getting daily sends", zap.Error(err))
			errorResponse(w, "Internal server error fetching stats", http.StatusInternalServerError)
			return
		}

		successResponse(w, "Email stats retrieved", map[string]interface{}{
			"today_count": count,
			"status":      statuses,
			"daily_sends": daily,
		})
	}
}

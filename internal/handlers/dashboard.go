package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"techvisit-backend/internal/database"
	"techvisit-backend/internal/models"
	"techvisit-backend/internal/report"
)

// DashboardHandler serves the console landing-page aggregates.
type DashboardHandler struct {
	db database.Service
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(db database.Service) *DashboardHandler {
	return &DashboardHandler{db: db}
}

// Metrics handles GET /api/dashboard/metrics
func (h *DashboardHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	pool := h.db.GetPool()

	var m models.DashboardMetrics
	err := pool.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM clients WHERE status = 'active')::int,
			(SELECT COUNT(*) FROM bookings WHERE visit_date = CURRENT_DATE AND status != 'cancelled')::int,
			(SELECT COUNT(*) FROM bookings
				WHERE visit_date >= date_trunc('week', CURRENT_DATE)::date
				  AND visit_date < (date_trunc('week', CURRENT_DATE) + INTERVAL '7 days')::date
				  AND status != 'cancelled')::int,
			(SELECT COUNT(*) FROM reports
				WHERE created_at >= date_trunc('month', CURRENT_DATE)
				  AND is_deleted = FALSE)::int,
			(SELECT COUNT(*) FROM visit_tasks WHERE status = 'pending')::int,
			(SELECT COUNT(*) FROM visit_tasks WHERE status = 'postponed')::int
	`).Scan(
		&m.TotalClients, &m.VisitsToday, &m.VisitsThisWeek,
		&m.ReportsThisMonth, &m.OpenTasks, &m.PostponedTasks,
	)
	if err != nil {
		log.Printf("Error fetching dashboard metrics: %v", err)
		JSONError(w, http.StatusInternalServerError, "Failed to fetch metrics")
		return
	}

	JSON(w, http.StatusOK, map[string]interface{}{
		"data": m,
	})
}

// Upcoming handles GET /api/dashboard/upcoming
// Returns the next 7 days of scheduled visits.
func (h *DashboardHandler) Upcoming(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	pool := h.db.GetPool()

	rows, err := pool.Query(ctx, `
		SELECT b.id, c.name, COALESCE(b.branch_name, ''),
			b.visit_date::text, COALESCE(b.visit_time, ''),
			(SELECT COUNT(*) FROM visit_tasks t WHERE t.booking_id = b.id)::int
		FROM bookings b
		JOIN clients c ON b.client_id = c.id
		WHERE b.status = 'scheduled'
		  AND b.visit_date >= CURRENT_DATE
		  AND b.visit_date < CURRENT_DATE + INTERVAL '7 days'
		ORDER BY b.visit_date ASC, b.visit_time ASC
	`)
	if err != nil {
		log.Printf("Error fetching upcoming visits: %v", err)
		JSONError(w, http.StatusInternalServerError, "Failed to fetch upcoming visits")
		return
	}
	defer rows.Close()

	visits := []models.UpcomingVisit{}
	for rows.Next() {
		var v models.UpcomingVisit
		if err := rows.Scan(&v.BookingID, &v.ClientName, &v.BranchName, &v.Date, &v.Time, &v.TaskCount); err != nil {
			continue
		}
		visits = append(visits, v)
	}

	JSON(w, http.StatusOK, map[string]interface{}{
		"data": visits,
	})
}

// ClientActivity handles GET /api/dashboard/clients
// Per-client service summary for the current month, flagging clients with
// no monthly technical report yet.
func (h *DashboardHandler) ClientActivity(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	pool := h.db.GetPool()

	monthLabel := report.FormatMonthYear(time.Now())

	rows, err := pool.Query(ctx, `
		SELECT c.id, c.name,
			(SELECT COUNT(*) FROM bookings b
				WHERE b.client_id = c.id AND b.status = 'completed'
				  AND b.visit_date >= date_trunc('month', CURRENT_DATE)::date)::int,
			(SELECT COUNT(*) FROM visit_tasks t
				WHERE t.client_id = c.id AND t.status != 'completed')::int,
			(SELECT MAX(rp.created_at)::date::text FROM reports rp
				WHERE rp.client_id = c.id AND rp.is_deleted = FALSE),
			NOT EXISTS (
				SELECT 1 FROM reports rp
				WHERE rp.client_id = c.id AND rp.is_deleted = FALSE
				  AND rp.type = 'monthly_technical' AND rp.month = $1
			)
		FROM clients c
		WHERE c.status = 'active'
		ORDER BY c.name ASC
	`, monthLabel)
	if err != nil {
		log.Printf("Error fetching client activity: %v", err)
		JSONError(w, http.StatusInternalServerError, "Failed to fetch client activity")
		return
	}
	defer rows.Close()

	activity := []models.ClientActivity{}
	for rows.Next() {
		var a models.ClientActivity
		if err := rows.Scan(&a.ClientID, &a.ClientName, &a.VisitsThisMonth, &a.OpenTasks, &a.LastReportDate, &a.MissingMonthly); err != nil {
			continue
		}
		activity = append(activity, a)
	}

	JSON(w, http.StatusOK, map[string]interface{}{
		"data": activity,
	})
}

package cron

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"techvisit-backend/internal/database"
	"techvisit-backend/internal/report"
)

// StartNotifier launches a background goroutine that runs once per day
// (and once immediately) to generate visit reminders and monthly-report
// alerts for admin users.
func StartNotifier(db database.Service) {
	go func() {
		runCycle(db)

		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()

		for range ticker.C {
			runCycle(db)
		}
	}()

	log.Println("[cron] visit notifier started – runs every 24 h")
}

// runCycle inserts tomorrow's visit reminders plus alerts for active clients
// without a monthly technical report this month. Notifications are
// de-duplicated by (user_id, entity_type, entity_id) on the same day.
func runCycle(db database.Service) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool := db.GetPool()
	now := time.Now()

	adminIDs := fetchAdminIDs(ctx, pool)
	if len(adminIDs) == 0 {
		log.Println("[cron] no admin users found, skipping cycle")
		return
	}

	inserted := 0
	inserted += visitReminders(ctx, pool, adminIDs, now)
	inserted += monthlyReportAlerts(ctx, pool, adminIDs, now)

	log.Printf("[cron] cycle complete – %d new notifications", inserted)
}

func fetchAdminIDs(ctx context.Context, pool *pgxpool.Pool) []string {
	rows, err := pool.Query(ctx,
		`SELECT id FROM users WHERE role IN ('admin', 'super_admin')`)
	if err != nil {
		log.Printf("[cron] error querying admins: %v", err)
		return nil
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if rows.Scan(&id) == nil {
			ids = append(ids, id)
		}
	}
	return ids
}

// visitReminders notifies admins about every visit scheduled for tomorrow.
func visitReminders(ctx context.Context, pool *pgxpool.Pool, adminIDs []string, now time.Time) int {
	rows, err := pool.Query(ctx, `
		SELECT b.id, c.name, COALESCE(b.branch_name, ''),
			b.visit_date::text, COALESCE(b.visit_time, '')
		FROM bookings b
		JOIN clients c ON b.client_id = c.id
		WHERE b.status = 'scheduled'
		  AND b.visit_date = CURRENT_DATE + INTERVAL '1 day'
	`)
	if err != nil {
		log.Printf("[cron] error querying tomorrow's bookings: %v", err)
		return 0
	}
	defer rows.Close()

	type visitRow struct {
		BookingID  string
		ClientName string
		BranchName string
		Date       string
		Time       string
	}

	var visits []visitRow
	for rows.Next() {
		var v visitRow
		if err := rows.Scan(&v.BookingID, &v.ClientName, &v.BranchName, &v.Date, &v.Time); err != nil {
			log.Printf("[cron] scan error: %v", err)
			continue
		}
		visits = append(visits, v)
	}

	inserted := 0
	for _, v := range visits {
		location := v.ClientName
		if v.BranchName != "" {
			location = fmt.Sprintf("%s – %s", v.ClientName, v.BranchName)
		}
		title := "زيارة مجدولة غداً"
		message := fmt.Sprintf("زيارة %s بتاريخ %s", location, v.Date)
		if v.Time != "" {
			message += fmt.Sprintf(" الساعة %s", v.Time)
		}

		for _, userID := range adminIDs {
			if insertNotification(ctx, pool, userID, title, message,
				"visit_reminder", "booking", v.BookingID, now) {
				inserted++
			}
		}
	}
	return inserted
}

// monthlyReportAlerts notifies admins about active clients that have no
// monthly technical report for the current month. The month is matched on
// the same display label the report builder derives.
func monthlyReportAlerts(ctx context.Context, pool *pgxpool.Pool, adminIDs []string, now time.Time) int {
	// Only nag during the last week of the month.
	if now.AddDate(0, 0, 7).Month() == now.Month() {
		return 0
	}

	monthLabel := report.FormatMonthYear(now)

	rows, err := pool.Query(ctx, `
		SELECT c.id, c.name
		FROM clients c
		WHERE c.status = 'active'
		  AND NOT EXISTS (
			SELECT 1 FROM reports rp
			WHERE rp.client_id = c.id AND rp.is_deleted = FALSE
			  AND rp.type = 'monthly_technical' AND rp.month = $1
		  )
	`, monthLabel)
	if err != nil {
		log.Printf("[cron] error querying clients missing monthly reports: %v", err)
		return 0
	}
	defer rows.Close()

	type clientRow struct {
		ID   string
		Name string
	}

	var clients []clientRow
	for rows.Next() {
		var c clientRow
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			continue
		}
		clients = append(clients, c)
	}

	inserted := 0
	for _, c := range clients {
		title := "تقرير شهري مستحق"
		message := fmt.Sprintf("لم يتم إرسال التقرير الفني الشهري للعميل %s لشهر %s", c.Name, monthLabel)

		for _, userID := range adminIDs {
			if insertNotification(ctx, pool, userID, title, message,
				"monthly_report_due", "client", c.ID, now) {
				inserted++
			}
		}
	}
	return inserted
}

// insertNotification writes one notification unless an identical one was
// already sent to the same user today.
func insertNotification(ctx context.Context, pool *pgxpool.Pool, userID, title, message, nType, entityType, entityID string, now time.Time) bool {
	today := now.Format("2006-01-02")

	var exists bool
	_ = pool.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM notifications
			WHERE user_id     = $1
			  AND entity_type = $2
			  AND entity_id   = $3
			  AND created_at::date = $4::date
		)
	`, userID, entityType, entityID, today).Scan(&exists)

	if exists {
		return false
	}

	_, err := pool.Exec(ctx, `
		INSERT INTO notifications (user_id, title, message, type, entity_type, entity_id)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, userID, title, message, nType, entityType, entityID)
	if err != nil {
		log.Printf("[cron] insert notification error: %v", err)
		return false
	}
	return true
}

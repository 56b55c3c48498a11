package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"techvisit-backend/internal/ctxkeys"
	"techvisit-backend/internal/database"
	"techvisit-backend/internal/models"
)

// BookingHandler handles visit booking HTTP requests.
type BookingHandler struct {
	db database.Service
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(db database.Service) *BookingHandler {
	return &BookingHandler{db: db}
}

// ── Columns ────────────────────────────────────────────────────

const bookingCols = `b.id, b.client_id, b.branch_id, COALESCE(b.branch_name, ''),
	b.visit_date::text, COALESCE(b.visit_time, ''), b.status, b.notes,
	b.created_at, b.updated_at`

const bookingRetCols = `id, client_id, branch_id, COALESCE(branch_name, ''),
	visit_date::text, COALESCE(visit_time, ''), status, notes,
	created_at, updated_at`

// ── Scan Helpers ───────────────────────────────────────────────

func scanBooking(scanner interface {
	Scan(dest ...interface{}) error
}, b *models.Booking) error {
	return scanner.Scan(
		&b.ID, &b.ClientID, &b.BranchID, &b.BranchName,
		&b.Date, &b.Time, &b.Status, &b.Notes,
		&b.CreatedAt, &b.UpdatedAt,
	)
}

// ── List ───────────────────────────────────────────────────────

// List handles GET /api/bookings
// Supports filtering by client, status, and a visit-date window.
func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(q.Get("limit"))
	if limit < 1 || limit > 100 {
		limit = 20
	}
	offset := (page - 1) * limit

	clientID := q.Get("client_id")
	status := q.Get("status")
	dateFrom := q.Get("date_from")
	dateTo := q.Get("date_to")

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	pool := h.db.GetPool()

	// Build dynamic WHERE clause
	where := "WHERE 1=1"
	args := []interface{}{}
	argIdx := 1

	where, args, argIdx = appendClientScope(ctx, where, args, argIdx, "b.client_id")

	if clientID != "" {
		where += fmt.Sprintf(" AND b.client_id = $%d", argIdx)
		args = append(args, clientID)
		argIdx++
	}
	if status != "" {
		where += fmt.Sprintf(" AND b.status = $%d", argIdx)
		args = append(args, status)
		argIdx++
	}
	if dateFrom != "" {
		where += fmt.Sprintf(" AND b.visit_date >= $%d", argIdx)
		args = append(args, dateFrom)
		argIdx++
	}
	if dateTo != "" {
		where += fmt.Sprintf(" AND b.visit_date <= $%d", argIdx)
		args = append(args, dateTo)
		argIdx++
	}

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM bookings b %s`, where)
	if err := pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		log.Printf("Error counting bookings: %v", err)
		JSONError(w, http.StatusInternalServerError, "Failed to fetch bookings")
		return
	}

	query := fmt.Sprintf(`
		SELECT
			%s,
			c.name AS client_name,
			(SELECT COUNT(*) FROM visit_tasks t WHERE t.booking_id = b.id)::int AS task_count,
			(SELECT COUNT(*) FROM visit_tasks t WHERE t.booking_id = b.id
				AND (t.status = 'completed' OR t.is_completed))::int AS done_task_count
		FROM bookings b
		JOIN clients c ON b.client_id = c.id
		%s
		ORDER BY b.visit_date DESC, b.created_at DESC
		LIMIT $%d OFFSET $%d
	`, bookingCols, where, argIdx, argIdx+1)

	args = append(args, limit, offset)

	rows, err := pool.Query(ctx, query, args...)
	if err != nil {
		log.Printf("Error querying bookings: %v", err)
		JSONError(w, http.StatusInternalServerError, "Failed to fetch bookings")
		return
	}
	defer rows.Close()

	bookings := []models.BookingWithClient{}
	for rows.Next() {
		var b models.BookingWithClient
		if err := rows.Scan(
			&b.ID, &b.ClientID, &b.BranchID, &b.BranchName,
			&b.Date, &b.Time, &b.Status, &b.Notes,
			&b.CreatedAt, &b.UpdatedAt,
			&b.ClientName, &b.TaskCount, &b.DoneTaskCount,
		); err != nil {
			log.Printf("Error scanning booking: %v", err)
			continue
		}
		bookings = append(bookings, b)
	}

	JSON(w, http.StatusOK, PaginatedResponse{
		Data: bookings,
		Pagination: PaginationMeta{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: int(math.Ceil(float64(total) / float64(limit))),
		},
	})
}

// ── GetByID ────────────────────────────────────────────────────

// GetByID handles GET /api/bookings/{id}
// Returns the booking plus its tasks.
func (h *BookingHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		JSONError(w, http.StatusBadRequest, "Booking ID is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	pool := h.db.GetPool()

	var booking models.Booking
	row := pool.QueryRow(ctx, fmt.Sprintf(`SELECT %s FROM bookings b WHERE b.id = $1`, bookingCols), id)
	if err := scanBooking(row, &booking); err != nil {
		JSONError(w, http.StatusNotFound, "Booking not found")
		return
	}

	if !checkClientAccess(r.Context(), booking.ClientID) {
		JSONError(w, http.StatusForbidden, "Access denied to this booking")
		return
	}

	tasks, err := fetchTasks(ctx, pool, "t.booking_id = $1", id)
	if err != nil {
		log.Printf("Error fetching tasks for booking %s: %v", id, err)
		JSONError(w, http.StatusInternalServerError, "Failed to fetch booking")
		return
	}

	JSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"booking": booking,
			"tasks":   tasks,
		},
	})
}

// ── Create ─────────────────────────────────────────────────────

// Create handles POST /api/bookings
// When branch_id is given, the branch name is denormalized onto the
// booking row so reports keep the location after a branch rename.
func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		JSONError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		JSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"error":   "Validation failed",
			"details": errs,
		})
		return
	}

	if !checkClientAccess(r.Context(), req.ClientID) {
		JSONError(w, http.StatusForbidden, "Access denied to this client")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	pool := h.db.GetPool()

	branchName := req.BranchName
	if req.BranchID != nil && branchName == "" {
		err := pool.QueryRow(ctx,
			"SELECT name FROM branches WHERE id = $1 AND client_id = $2",
			*req.BranchID, req.ClientID,
		).Scan(&branchName)
		if err != nil {
			JSONError(w, http.StatusUnprocessableEntity, "Branch not found for this client")
			return
		}
	}

	var booking models.Booking
	err := pool.QueryRow(ctx, `
		INSERT INTO bookings (client_id, branch_id, branch_name, visit_date, visit_time, status, notes)
		VALUES ($1, $2, $3, $4, $5, 'scheduled', $6)
		RETURNING `+bookingRetCols,
		req.ClientID, req.BranchID, nilIfEmpty(branchName), req.Date, nilIfEmpty(req.Time), req.Notes,
	).Scan(
		&booking.ID, &booking.ClientID, &booking.BranchID, &booking.BranchName,
		&booking.Date, &booking.Time, &booking.Status, &booking.Notes,
		&booking.CreatedAt, &booking.UpdatedAt,
	)
	if err != nil {
		log.Printf("Error creating booking: %v", err)
		JSONError(w, http.StatusInternalServerError, "Failed to create booking")
		return
	}

	// Audit trail
	userID, _ := r.Context().Value(ctxkeys.UserID).(string)
	logActivity(pool, userID, "created", "booking", booking.ID, map[string]interface{}{
		"clientId": booking.ClientID, "date": booking.Date,
	})

	JSON(w, http.StatusCreated, map[string]interface{}{
		"data":    booking,
		"message": "Booking created successfully",
	})
}

// ── Update ─────────────────────────────────────────────────────

// Update handles PUT /api/bookings/{id}
func (h *BookingHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		JSONError(w, http.StatusBadRequest, "Booking ID is required")
		return
	}

	if !checkBookingAccess(r.Context(), h.db.GetPool(), id) {
		JSONError(w, http.StatusForbidden, "Access denied to this booking")
		return
	}

	var req models.UpdateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		JSONError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	if req.Date != nil {
		if _, err := time.Parse("2006-01-02", *req.Date); err != nil {
			JSONError(w, http.StatusUnprocessableEntity, "Visit date must be YYYY-MM-DD")
			return
		}
	}
	if req.Status != nil {
		valid := map[string]bool{"scheduled": true, "completed": true, "cancelled": true}
		if !valid[*req.Status] {
			JSONError(w, http.StatusUnprocessableEntity, "Status must be 'scheduled', 'completed', or 'cancelled'")
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	pool := h.db.GetPool()

	// Build dynamic SET clause — only update provided fields
	setClauses := []string{}
	args := []interface{}{}
	argIdx := 1

	addField := func(col string, val interface{}) {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", col, argIdx))
		args = append(args, val)
		argIdx++
	}

	if req.BranchID != nil {
		addField("branch_id", *req.BranchID)
	}
	if req.BranchName != nil {
		addField("branch_name", *req.BranchName)
	}
	if req.Date != nil {
		addField("visit_date", *req.Date)
	}
	if req.Time != nil {
		addField("visit_time", *req.Time)
	}
	if req.Status != nil {
		addField("status", *req.Status)
	}
	if req.Notes != nil {
		addField("notes", *req.Notes)
	}

	if len(setClauses) == 0 {
		JSONError(w, http.StatusBadRequest, "No fields to update")
		return
	}

	setClauses = append(setClauses, "updated_at = NOW()")

	query := fmt.Sprintf(`
		UPDATE bookings SET %s
		WHERE id = $%d
		RETURNING %s
	`, strings.Join(setClauses, ", "), argIdx, bookingRetCols)
	args = append(args, id)

	var booking models.Booking
	if err := scanBooking(pool.QueryRow(ctx, query, args...), &booking); err != nil {
		log.Printf("Error updating booking %s: %v", id, err)
		JSONError(w, http.StatusNotFound, "Booking not found")
		return
	}

	// Audit trail
	userID, _ := r.Context().Value(ctxkeys.UserID).(string)
	logActivity(pool, userID, "updated", "booking", booking.ID, nil)

	JSON(w, http.StatusOK, map[string]interface{}{
		"data":    booking,
		"message": "Booking updated successfully",
	})
}

// ── Delete ─────────────────────────────────────────────────────

// Delete handles DELETE /api/bookings/{id}
// Tasks linked to the booking keep their row; their booking_id is nulled
// by the FK so they fall back to their own visit_date.
func (h *BookingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		JSONError(w, http.StatusBadRequest, "Booking ID is required")
		return
	}

	if !checkBookingAccess(r.Context(), h.db.GetPool(), id) {
		JSONError(w, http.StatusForbidden, "Access denied to this booking")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	pool := h.db.GetPool()

	tag, err := pool.Exec(ctx, "DELETE FROM bookings WHERE id = $1", id)
	if err != nil {
		log.Printf("Error deleting booking %s: %v", id, err)
		JSONError(w, http.StatusInternalServerError, "Failed to delete booking")
		return
	}
	if tag.RowsAffected() == 0 {
		JSONError(w, http.StatusNotFound, "Booking not found")
		return
	}

	// Audit trail
	userID, _ := r.Context().Value(ctxkeys.UserID).(string)
	logActivity(pool, userID, "deleted", "booking", id, nil)

	JSON(w, http.StatusOK, map[string]string{
		"message": "Booking deleted successfully",
	})
}

// ── Export ──────────────────────────────────────────────────────

// Export handles GET /api/bookings/export — returns CSV
func (h *BookingHandler) Export(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	pool := h.db.GetPool()

	where := "WHERE 1=1"
	args := []interface{}{}
	argIdx := 1
	where, args, argIdx = appendClientScope(ctx, where, args, argIdx, "b.client_id")
	_ = argIdx

	rows, err := pool.Query(ctx, fmt.Sprintf(`
		SELECT c.name, COALESCE(b.branch_name,''), b.visit_date::text,
			COALESCE(b.visit_time,''), b.status, COALESCE(b.notes,'')
		FROM bookings b
		JOIN clients c ON b.client_id = c.id
		%s
		ORDER BY b.visit_date DESC
	`, where), args...)
	if err != nil {
		log.Printf("Error exporting bookings: %v", err)
		JSONError(w, http.StatusInternalServerError, "Failed to export")
		return
	}
	defer rows.Close()

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename=bookings.csv")

	// Write CSV header
	fmt.Fprintln(w, "Client,Branch,Date,Time,Status,Notes")

	for rows.Next() {
		var client, branch, date, visitTime, status, notes string
		if err := rows.Scan(&client, &branch, &date, &visitTime, &status, &notes); err != nil {
			continue
		}
		fmt.Fprintf(w, "%s,%s,%s,%s,%s,%s\n",
			csvEscape(client), csvEscape(branch), date, visitTime, status, csvEscape(notes))
	}
}

package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"techvisit-backend/internal/ctxkeys"
	"techvisit-backend/internal/database"
	"techvisit-backend/internal/models"
	"techvisit-backend/internal/report"
	"techvisit-backend/internal/settings"
)

// ReportHandler handles report HTTP requests. All derivation and rendering
// happens in the report package; this handler only materializes the input
// snapshot and persists the result.
type ReportHandler struct {
	db       database.Service
	settings *settings.Store
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(db database.Service, settings *settings.Store) *ReportHandler {
	return &ReportHandler{db: db, settings: settings}
}

// ── Columns ────────────────────────────────────────────────────

const reportCols = `r.id, r.client_id, r.month, r.type, r.content,
	r.is_deleted, r.created_at`

// ── List ───────────────────────────────────────────────────────

// List handles GET /api/reports
// Soft-deleted reports are hidden unless include_deleted=true is passed
// by an admin.
func (h *ReportHandler) List(w http.ResponseWriter, r *http.Request) {
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
	reportType := q.Get("type")
	month := q.Get("month")

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	pool := h.db.GetPool()

	where := "WHERE 1=1"
	args := []interface{}{}
	argIdx := 1

	where, args, argIdx = appendClientScope(ctx, where, args, argIdx, "r.client_id")

	if q.Get("include_deleted") == "true" && ctxkeys.IsGlobalScope(ctx) {
		// no deleted filter
	} else {
		where += " AND r.is_deleted = FALSE"
	}

	if clientID != "" {
		where += fmt.Sprintf(" AND r.client_id = $%d", argIdx)
		args = append(args, clientID)
		argIdx++
	}
	if reportType != "" {
		where += fmt.Sprintf(" AND r.type = $%d", argIdx)
		args = append(args, reportType)
		argIdx++
	}
	if month != "" {
		where += fmt.Sprintf(" AND r.month = $%d", argIdx)
		args = append(args, month)
		argIdx++
	}

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM reports r %s`, where)
	if err := pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		log.Printf("Error counting reports: %v", err)
		JSONError(w, http.StatusInternalServerError, "Failed to fetch reports")
		return
	}

	query := fmt.Sprintf(`
		SELECT %s, c.name AS client_name
		FROM reports r
		JOIN clients c ON r.client_id = c.id
		%s
		ORDER BY r.created_at DESC
		LIMIT $%d OFFSET $%d
	`, reportCols, where, argIdx, argIdx+1)

	args = append(args, limit, offset)

	rows, err := pool.Query(ctx, query, args...)
	if err != nil {
		log.Printf("Error querying reports: %v", err)
		JSONError(w, http.StatusInternalServerError, "Failed to fetch reports")
		return
	}
	defer rows.Close()

	reports := []models.ReportWithClient{}
	for rows.Next() {
		var rep models.ReportWithClient
		if err := rows.Scan(
			&rep.ID, &rep.ClientID, &rep.Month, &rep.Type, &rep.Content,
			&rep.IsDeleted, &rep.CreatedAt,
			&rep.ClientName,
		); err != nil {
			log.Printf("Error scanning report: %v", err)
			continue
		}
		reports = append(reports, rep)
	}

	JSON(w, http.StatusOK, PaginatedResponse{
		Data: reports,
		Pagination: PaginationMeta{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: int(math.Ceil(float64(total) / float64(limit))),
		},
	})
}

// ── GetByID ────────────────────────────────────────────────────

// GetByID handles GET /api/reports/{id}
func (h *ReportHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	rep, ok := h.fetchReport(w, r)
	if !ok {
		return
	}

	JSON(w, http.StatusOK, map[string]interface{}{
		"data": rep,
	})
}

// ── Preview ────────────────────────────────────────────────────

// Preview handles POST /api/reports/preview
// Materializes the client's bookings and tasks and runs the content builder
// without persisting anything. The console calls this on every selection
// change; identical snapshots produce identical content.
func (h *ReportHandler) Preview(w http.ResponseWriter, r *http.Request) {
	var req models.PreviewReportRequest
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

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	pool := h.db.GetPool()

	in, err := h.buildInput(ctx, pool, req)
	if err != nil {
		log.Printf("Error materializing report input: %v", err)
		JSONError(w, http.StatusInternalServerError, "Failed to build report")
		return
	}

	doc := report.Build(in)
	content := doc.Flatten()

	JSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"type":    req.Type,
			"month":   report.FormatMonthYear(in.Now),
			"content": content,
			"view":    report.Render(req.Type, content),
		},
	})
}

// buildInput loads the booking/task snapshot the builder derives from.
func (h *ReportHandler) buildInput(ctx context.Context, pool *pgxpool.Pool, req models.PreviewReportRequest) (report.BuildInput, error) {
	in := report.BuildInput{
		Type:           req.Type,
		ClientID:       req.ClientID,
		TechnicianName: req.TechnicianName,
		Now:            time.Now(),
	}

	rows, err := pool.Query(ctx, `
		SELECT id, client_id, visit_date::text, COALESCE(visit_time, ''),
			COALESCE(branch_name, ''), status
		FROM bookings WHERE client_id = $1
	`, req.ClientID)
	if err != nil {
		return in, err
	}
	defer rows.Close()

	for rows.Next() {
		var b report.Booking
		if err := rows.Scan(&b.ID, &b.ClientID, &b.Date, &b.Time, &b.BranchName, &b.Status); err != nil {
			continue
		}
		in.Bookings = append(in.Bookings, b)
		if req.BookingID != nil && b.ID == *req.BookingID {
			booking := b
			in.Booking = &booking
		}
	}

	taskRows, err := pool.Query(ctx, `
		SELECT id, client_id, COALESCE(booking_id::text, ''), text,
			status, is_completed, COALESCE(visit_date::text, '')
		FROM visit_tasks WHERE client_id = $1
	`, req.ClientID)
	if err != nil {
		return in, err
	}
	defer taskRows.Close()

	for taskRows.Next() {
		var t report.Task
		if err := taskRows.Scan(&t.ID, &t.ClientID, &t.BookingID, &t.Text, &t.Status, &t.Completed, &t.VisitDate); err != nil {
			continue
		}
		in.Tasks = append(in.Tasks, t)
	}

	return in, nil
}

// ── Create ─────────────────────────────────────────────────────

// Create handles POST /api/reports — the send action.
// The content document arrives already built (and possibly hand-edited) and
// is persisted verbatim. Rows are insert-only; nothing ever updates them.
func (h *ReportHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateReportRequest
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

	if req.Month == "" {
		req.Month = report.FormatMonthYear(time.Now())
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	pool := h.db.GetPool()

	contentJSON, err := json.Marshal(req.Content)
	if err != nil {
		JSONError(w, http.StatusBadRequest, "Invalid report content")
		return
	}

	var rep models.Report
	err = pool.QueryRow(ctx, `
		INSERT INTO reports (client_id, month, type, content)
		VALUES ($1, $2, $3, $4)
		RETURNING id, client_id, month, type, content, is_deleted, created_at
	`, req.ClientID, req.Month, req.Type, contentJSON,
	).Scan(&rep.ID, &rep.ClientID, &rep.Month, &rep.Type, &rep.Content, &rep.IsDeleted, &rep.CreatedAt)
	if err != nil {
		log.Printf("Error creating report: %v", err)
		JSONError(w, http.StatusInternalServerError, "Failed to create report")
		return
	}

	// Audit trail
	userID, _ := r.Context().Value(ctxkeys.UserID).(string)
	logActivity(pool, userID, "created", "report", rep.ID, map[string]interface{}{
		"clientId": rep.ClientID, "type": string(rep.Type), "month": rep.Month,
	})

	JSON(w, http.StatusCreated, map[string]interface{}{
		"data":    rep,
		"message": "Report sent successfully",
	})
}

// ── Delete ─────────────────────────────────────────────────────

// Delete handles DELETE /api/reports/{id}
// Soft delete: the row stays for audit, the console stops listing it.
func (h *ReportHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		JSONError(w, http.StatusBadRequest, "Report ID is required")
		return
	}

	if !checkReportAccess(r.Context(), h.db.GetPool(), id) {
		JSONError(w, http.StatusForbidden, "Access denied to this report")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	pool := h.db.GetPool()

	tag, err := pool.Exec(ctx,
		"UPDATE reports SET is_deleted = TRUE WHERE id = $1 AND is_deleted = FALSE", id)
	if err != nil {
		log.Printf("Error deleting report %s: %v", id, err)
		JSONError(w, http.StatusInternalServerError, "Failed to delete report")
		return
	}
	if tag.RowsAffected() == 0 {
		JSONError(w, http.StatusNotFound, "Report not found")
		return
	}

	// Audit trail
	userID, _ := r.Context().Value(ctxkeys.UserID).(string)
	logActivity(pool, userID, "deleted", "report", id, nil)

	JSON(w, http.StatusOK, map[string]string{
		"message": "Report deleted successfully",
	})
}

// ── View ───────────────────────────────────────────────────────

// View handles GET /api/reports/{id}/view
// Renders the stored content into the display tree the portal consumes.
func (h *ReportHandler) View(w http.ResponseWriter, r *http.Request) {
	rep, ok := h.fetchReport(w, r)
	if !ok {
		return
	}

	JSON(w, http.StatusOK, map[string]interface{}{
		"data": report.Render(rep.Type, rep.Content),
	})
}

// ── Print ──────────────────────────────────────────────────────

// Print handles GET /api/reports/{id}/print
// Returns a self-contained RTL HTML page that opens the print dialog.
// The logo comes from the current global settings, not the report row.
func (h *ReportHandler) Print(w http.ResponseWriter, r *http.Request) {
	rep, ok := h.fetchReport(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var clientName string
	if err := h.db.GetPool().QueryRow(ctx,
		"SELECT name FROM clients WHERE id = $1", rep.ClientID,
	).Scan(&clientName); err != nil {
		clientName = ""
	}

	data := report.PrintData{
		View:       report.Render(rep.Type, rep.Content),
		ClientName: clientName,
		Month:      rep.Month,
		CreatedAt:  rep.CreatedAt.Format("2006-01-02"),
		LogoSize:   1,
	}

	if cfg, err := h.settings.Get(ctx); err == nil {
		if cfg.LogoData != nil {
			data.LogoData = *cfg.LogoData
		}
		if cfg.LogoSize > 0 {
			data.LogoSize = cfg.LogoSize
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := report.WritePrintHTML(w, data); err != nil {
		log.Printf("Error writing print page for report %s: %v", rep.ID, err)
	}
}

// fetchReport loads a report by URL param and enforces scope. Writes the
// error response itself and reports success through the bool.
func (h *ReportHandler) fetchReport(w http.ResponseWriter, r *http.Request) (*models.Report, bool) {
	id := chi.URLParam(r, "id")
	if id == "" {
		JSONError(w, http.StatusBadRequest, "Report ID is required")
		return nil, false
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var rep models.Report
	err := h.db.GetPool().QueryRow(ctx, fmt.Sprintf(`
		SELECT %s FROM reports r WHERE r.id = $1 AND r.is_deleted = FALSE
	`, reportCols), id,
	).Scan(&rep.ID, &rep.ClientID, &rep.Month, &rep.Type, &rep.Content, &rep.IsDeleted, &rep.CreatedAt)
	if err != nil {
		JSONError(w, http.StatusNotFound, "Report not found")
		return nil, false
	}

	if !checkClientAccess(r.Context(), rep.ClientID) {
		JSONError(w, http.StatusForbidden, "Access denied to this report")
		return nil, false
	}

	return &rep, true
}

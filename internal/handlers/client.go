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

// ClientHandler handles client and branch HTTP requests.
type ClientHandler struct {
	db database.Service
}

// NewClientHandler creates a new ClientHandler.
func NewClientHandler(db database.Service) *ClientHandler {
	return &ClientHandler{db: db}
}

// ── Columns ────────────────────────────────────────────────────
// Central column lists keep Create/GetByID/List in sync.
// Aliased version (for SELECT with FROM clause):
const clientCols = `c.id, c.name, c.contact_name, c.phone, c.email, c.city,
	c.contract_plan, c.visits_per_week, c.notes, c.status,
	c.created_at, c.updated_at`

// Unaliased version (for INSERT/UPDATE RETURNING):
const clientRetCols = `id, name, contact_name, phone, email, city,
	contract_plan, visits_per_week, notes, status,
	created_at, updated_at`

// ── Scan Helpers ───────────────────────────────────────────────

func scanClient(scanner interface {
	Scan(dest ...interface{}) error
}, c *models.Client) error {
	return scanner.Scan(
		&c.ID, &c.Name, &c.ContactName, &c.Phone, &c.Email, &c.City,
		&c.ContractPlan, &c.VisitsPerWeek, &c.Notes, &c.Status,
		&c.CreatedAt, &c.UpdatedAt,
	)
}

// ── List ───────────────────────────────────────────────────────

// List handles GET /api/clients
// Returns clients with aggregate counters for the console list view.
func (h *ClientHandler) List(w http.ResponseWriter, r *http.Request) {
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

	search := q.Get("search")
	status := q.Get("status")
	plan := q.Get("plan")
	city := q.Get("city")

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	pool := h.db.GetPool()

	// Build dynamic WHERE clause
	where := "WHERE 1=1"
	args := []interface{}{}
	argIdx := 1

	// Client scope (role-based)
	where, args, argIdx = appendClientScope(ctx, where, args, argIdx, "c.id")

	if search != "" {
		where += fmt.Sprintf(" AND (c.name ILIKE $%d OR c.phone ILIKE $%d)", argIdx, argIdx)
		args = append(args, "%"+search+"%")
		argIdx++
	}
	if status != "" {
		where += fmt.Sprintf(" AND c.status = $%d", argIdx)
		args = append(args, status)
		argIdx++
	}
	if plan != "" {
		where += fmt.Sprintf(" AND c.contract_plan = $%d", argIdx)
		args = append(args, plan)
		argIdx++
	}
	if city != "" {
		where += fmt.Sprintf(" AND c.city ILIKE $%d", argIdx)
		args = append(args, "%"+city+"%")
		argIdx++
	}

	// Count total for pagination
	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM clients c %s`, where)
	if err := pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		log.Printf("Error counting clients: %v", err)
		JSONError(w, http.StatusInternalServerError, "Failed to fetch clients")
		return
	}

	query := fmt.Sprintf(`
		SELECT
			%s,
			cs.branch_count, cs.booking_count, cs.report_count,
			cs.open_task_count, cs.last_visit_date::text
		FROM clients c
		LEFT JOIN LATERAL (
			SELECT
				(SELECT COUNT(*) FROM branches br WHERE br.client_id = c.id)::int AS branch_count,
				(SELECT COUNT(*) FROM bookings b WHERE b.client_id = c.id)::int AS booking_count,
				(SELECT COUNT(*) FROM reports rp WHERE rp.client_id = c.id AND rp.is_deleted = FALSE)::int AS report_count,
				(SELECT COUNT(*) FROM visit_tasks t WHERE t.client_id = c.id AND t.status != 'completed')::int AS open_task_count,
				(SELECT MAX(b2.visit_date) FROM bookings b2 WHERE b2.client_id = c.id AND b2.status = 'completed') AS last_visit_date
		) cs ON TRUE
		%s
		ORDER BY c.name ASC
		LIMIT $%d OFFSET $%d
	`, clientCols, where, argIdx, argIdx+1)

	args = append(args, limit, offset)

	rows, err := pool.Query(ctx, query, args...)
	if err != nil {
		log.Printf("Error querying clients: %v", err)
		JSONError(w, http.StatusInternalServerError, "Failed to fetch clients")
		return
	}
	defer rows.Close()

	clients := []models.ClientWithStats{}
	for rows.Next() {
		var c models.ClientWithStats
		if err := rows.Scan(
			&c.ID, &c.Name, &c.ContactName, &c.Phone, &c.Email, &c.City,
			&c.ContractPlan, &c.VisitsPerWeek, &c.Notes, &c.Status,
			&c.CreatedAt, &c.UpdatedAt,
			&c.BranchCount, &c.BookingCount, &c.ReportCount,
			&c.OpenTaskCount, &c.LastVisitDate,
		); err != nil {
			log.Printf("Error scanning client: %v", err)
			continue
		}
		clients = append(clients, c)
	}

	JSON(w, http.StatusOK, PaginatedResponse{
		Data: clients,
		Pagination: PaginationMeta{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: int(math.Ceil(float64(total) / float64(limit))),
		},
	})
}

// ── GetByID ────────────────────────────────────────────────────

// GetByID handles GET /api/clients/{id}
// Returns the client profile plus its branches.
func (h *ClientHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		JSONError(w, http.StatusBadRequest, "Client ID is required")
		return
	}

	if !checkClientAccess(r.Context(), id) {
		JSONError(w, http.StatusForbidden, "Access denied to this client")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	pool := h.db.GetPool()

	var client models.Client
	row := pool.QueryRow(ctx, fmt.Sprintf(`SELECT %s FROM clients c WHERE c.id = $1`, clientCols), id)
	if err := scanClient(row, &client); err != nil {
		JSONError(w, http.StatusNotFound, "Client not found")
		return
	}

	branches, err := h.fetchBranches(ctx, id)
	if err != nil {
		log.Printf("Error fetching branches for client %s: %v", id, err)
		JSONError(w, http.StatusInternalServerError, "Failed to fetch client")
		return
	}

	JSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"client":   client,
			"branches": branches,
		},
	})
}

// ── Create ─────────────────────────────────────────────────────

// Create handles POST /api/clients
func (h *ClientHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateClientRequest
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

	if req.ContractPlan == "" {
		req.ContractPlan = "basic"
	}
	if req.Status == "" {
		req.Status = "active"
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	pool := h.db.GetPool()

	var client models.Client
	err := pool.QueryRow(ctx, `
		INSERT INTO clients (
			name, contact_name, phone, email, city,
			contract_plan, visits_per_week, notes, status
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING `+clientRetCols,
		req.Name, req.ContactName, req.Phone, req.Email, req.City,
		req.ContractPlan, req.VisitsPerWeek, req.Notes, req.Status,
	).Scan(
		&client.ID, &client.Name, &client.ContactName, &client.Phone,
		&client.Email, &client.City, &client.ContractPlan, &client.VisitsPerWeek,
		&client.Notes, &client.Status, &client.CreatedAt, &client.UpdatedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			JSONError(w, http.StatusConflict, "A client with this name already exists")
			return
		}
		log.Printf("Error creating client: %v", err)
		JSONError(w, http.StatusInternalServerError, "Failed to create client")
		return
	}

	// Audit trail
	userID, _ := r.Context().Value(ctxkeys.UserID).(string)
	logActivity(pool, userID, "created", "client", client.ID, map[string]interface{}{
		"name": client.Name,
	})

	JSON(w, http.StatusCreated, map[string]interface{}{
		"data":    client,
		"message": "Client created successfully",
	})
}

// ── Update ─────────────────────────────────────────────────────

// Update handles PUT /api/clients/{id}
func (h *ClientHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		JSONError(w, http.StatusBadRequest, "Client ID is required")
		return
	}

	if !checkClientAccess(r.Context(), id) {
		JSONError(w, http.StatusForbidden, "Access denied to this client")
		return
	}

	var req models.UpdateClientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		JSONError(w, http.StatusBadRequest, "Invalid JSON body")
		return
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

	if req.Name != nil {
		addField("name", *req.Name)
	}
	if req.ContactName != nil {
		addField("contact_name", *req.ContactName)
	}
	if req.Phone != nil {
		addField("phone", *req.Phone)
	}
	if req.Email != nil {
		addField("email", *req.Email)
	}
	if req.City != nil {
		addField("city", *req.City)
	}
	if req.ContractPlan != nil {
		addField("contract_plan", *req.ContractPlan)
	}
	if req.VisitsPerWeek != nil {
		if *req.VisitsPerWeek < 0 || *req.VisitsPerWeek > 7 {
			JSONError(w, http.StatusUnprocessableEntity, "Visits per week must be between 0 and 7")
			return
		}
		addField("visits_per_week", *req.VisitsPerWeek)
	}
	if req.Notes != nil {
		addField("notes", *req.Notes)
	}
	if req.Status != nil {
		addField("status", *req.Status)
	}

	if len(setClauses) == 0 {
		JSONError(w, http.StatusBadRequest, "No fields to update")
		return
	}

	// Always update updated_at
	setClauses = append(setClauses, "updated_at = NOW()")

	query := fmt.Sprintf(`
		UPDATE clients SET %s
		WHERE id = $%d
		RETURNING %s
	`, strings.Join(setClauses, ", "), argIdx, clientRetCols)
	args = append(args, id)

	var client models.Client
	if err := scanClient(pool.QueryRow(ctx, query, args...), &client); err != nil {
		log.Printf("Error updating client %s: %v", id, err)
		JSONError(w, http.StatusNotFound, "Client not found")
		return
	}

	// Audit trail
	userID, _ := r.Context().Value(ctxkeys.UserID).(string)
	logActivity(pool, userID, "updated", "client", client.ID, map[string]interface{}{
		"name": client.Name,
	})

	JSON(w, http.StatusOK, map[string]interface{}{
		"data":    client,
		"message": "Client updated successfully",
	})
}

// ── Delete ─────────────────────────────────────────────────────

// Delete handles DELETE /api/clients/{id}
// Cascades to branches, bookings, and tasks. Reports keep their client_id
// but the join row disappears, so the console shows them as orphaned.
func (h *ClientHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		JSONError(w, http.StatusBadRequest, "Client ID is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	pool := h.db.GetPool()

	tag, err := pool.Exec(ctx, "DELETE FROM clients WHERE id = $1", id)
	if err != nil {
		log.Printf("Error deleting client %s: %v", id, err)
		JSONError(w, http.StatusInternalServerError, "Failed to delete client")
		return
	}

	if tag.RowsAffected() == 0 {
		JSONError(w, http.StatusNotFound, "Client not found")
		return
	}

	// Audit trail
	userID, _ := r.Context().Value(ctxkeys.UserID).(string)
	logActivity(pool, userID, "deleted", "client", id, nil)

	JSON(w, http.StatusOK, map[string]string{
		"message": "Client deleted successfully",
	})
}

// ── Branches ───────────────────────────────────────────────────

// ListBranches handles GET /api/clients/{id}/branches
func (h *ClientHandler) ListBranches(w http.ResponseWriter, r *http.Request) {
	clientID := chi.URLParam(r, "id")
	if clientID == "" {
		JSONError(w, http.StatusBadRequest, "Client ID is required")
		return
	}

	if !checkClientAccess(r.Context(), clientID) {
		JSONError(w, http.StatusForbidden, "Access denied to this client")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	branches, err := h.fetchBranches(ctx, clientID)
	if err != nil {
		log.Printf("Error fetching branches for client %s: %v", clientID, err)
		JSONError(w, http.StatusInternalServerError, "Failed to fetch branches")
		return
	}

	JSON(w, http.StatusOK, map[string]interface{}{
		"data": branches,
	})
}

// CreateBranch handles POST /api/clients/{id}/branches
func (h *ClientHandler) CreateBranch(w http.ResponseWriter, r *http.Request) {
	clientID := chi.URLParam(r, "id")
	if clientID == "" {
		JSONError(w, http.StatusBadRequest, "Client ID is required")
		return
	}

	if !checkClientAccess(r.Context(), clientID) {
		JSONError(w, http.StatusForbidden, "Access denied to this client")
		return
	}

	var req models.CreateBranchRequest
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

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	pool := h.db.GetPool()

	var branch models.Branch
	err := pool.QueryRow(ctx, `
		INSERT INTO branches (client_id, name, address, phone)
		VALUES ($1, $2, $3, $4)
		RETURNING id, client_id, name, address, phone, created_at::text
	`, clientID, req.Name, req.Address, req.Phone,
	).Scan(&branch.ID, &branch.ClientID, &branch.Name, &branch.Address, &branch.Phone, &branch.CreatedAt)
	if err != nil {
		log.Printf("Error creating branch: %v", err)
		JSONError(w, http.StatusInternalServerError, "Failed to create branch")
		return
	}

	JSON(w, http.StatusCreated, map[string]interface{}{
		"data":    branch,
		"message": "Branch created successfully",
	})
}

// DeleteBranch handles DELETE /api/clients/{id}/branches/{branchId}
func (h *ClientHandler) DeleteBranch(w http.ResponseWriter, r *http.Request) {
	clientID := chi.URLParam(r, "id")
	branchID := chi.URLParam(r, "branchId")
	if clientID == "" || branchID == "" {
		JSONError(w, http.StatusBadRequest, "Client ID and branch ID are required")
		return
	}

	if !checkClientAccess(r.Context(), clientID) {
		JSONError(w, http.StatusForbidden, "Access denied to this client")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	tag, err := h.db.GetPool().Exec(ctx,
		"DELETE FROM branches WHERE id = $1 AND client_id = $2", branchID, clientID)
	if err != nil {
		log.Printf("Error deleting branch %s: %v", branchID, err)
		JSONError(w, http.StatusInternalServerError, "Failed to delete branch")
		return
	}
	if tag.RowsAffected() == 0 {
		JSONError(w, http.StatusNotFound, "Branch not found")
		return
	}

	JSON(w, http.StatusOK, map[string]string{
		"message": "Branch deleted successfully",
	})
}

func (h *ClientHandler) fetchBranches(ctx context.Context, clientID string) ([]models.Branch, error) {
	rows, err := h.db.GetPool().Query(ctx, `
		SELECT id, client_id, name, address, phone, created_at::text
		FROM branches WHERE client_id = $1
		ORDER BY name ASC
	`, clientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	branches := []models.Branch{}
	for rows.Next() {
		var b models.Branch
		if err := rows.Scan(&b.ID, &b.ClientID, &b.Name, &b.Address, &b.Phone, &b.CreatedAt); err != nil {
			continue
		}
		branches = append(branches, b)
	}
	return branches, nil
}

// ── Export ──────────────────────────────────────────────────────

// Export handles GET /api/clients/export — returns CSV
func (h *ClientHandler) Export(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	pool := h.db.GetPool()

	where := "WHERE 1=1"
	args := []interface{}{}
	argIdx := 1
	where, args, argIdx = appendClientScope(ctx, where, args, argIdx, "c.id")
	_ = argIdx

	rows, err := pool.Query(ctx, fmt.Sprintf(`
		SELECT c.name, COALESCE(c.contact_name,''), c.phone,
			COALESCE(c.email,''), COALESCE(c.city,''),
			c.contract_plan, c.visits_per_week, c.status
		FROM clients c
		%s
		ORDER BY c.name ASC
	`, where), args...)
	if err != nil {
		log.Printf("Error exporting clients: %v", err)
		JSONError(w, http.StatusInternalServerError, "Failed to export")
		return
	}
	defer rows.Close()

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename=clients.csv")

	// Write CSV header
	fmt.Fprintln(w, "Name,Contact,Phone,Email,City,Plan,Visits Per Week,Status")

	for rows.Next() {
		var name, contact, phone, email, city, plan, status string
		var visits int
		if err := rows.Scan(&name, &contact, &phone, &email, &city, &plan, &visits, &status); err != nil {
			continue
		}
		fmt.Fprintf(w, "%s,%s,%s,%s,%s,%s,%d,%s\n",
			csvEscape(name), csvEscape(contact), csvEscape(phone),
			csvEscape(email), csvEscape(city), plan, visits, status)
	}
}

package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"techvisit-backend/internal/ctxkeys"
	"techvisit-backend/internal/database"
	"techvisit-backend/internal/models"
)

// TaskHandler handles visit task HTTP requests.
type TaskHandler struct {
	db database.Service
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(db database.Service) *TaskHandler {
	return &TaskHandler{db: db}
}

// ── Columns ────────────────────────────────────────────────────

const taskCols = `t.id, t.client_id, t.booking_id, t.text,
	t.is_completed, t.status, t.visit_date::text,
	t.created_at, t.updated_at`

const taskRetCols = `id, client_id, booking_id, text,
	is_completed, status, visit_date::text,
	created_at, updated_at`

// ── Scan Helpers ───────────────────────────────────────────────

func scanTask(scanner interface {
	Scan(dest ...interface{}) error
}, t *models.VisitTask) error {
	return scanner.Scan(
		&t.ID, &t.ClientID, &t.BookingID, &t.Text,
		&t.IsCompleted, &t.Status, &t.VisitDate,
		&t.CreatedAt, &t.UpdatedAt,
	)
}

// fetchTasks returns tasks matching a single-arg filter expression.
// Shared with the booking handler's detail view.
func fetchTasks(ctx context.Context, pool *pgxpool.Pool, filter string, arg interface{}) ([]models.VisitTask, error) {
	rows, err := pool.Query(ctx, fmt.Sprintf(`
		SELECT %s FROM visit_tasks t
		WHERE %s
		ORDER BY t.created_at ASC
	`, taskCols, filter), arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []models.VisitTask{}
	for rows.Next() {
		var t models.VisitTask
		if err := scanTask(rows, &t); err != nil {
			continue
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

// ── List ───────────────────────────────────────────────────────

// List handles GET /api/tasks
// Filterable by client, booking, and status.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	clientID := q.Get("client_id")
	bookingID := q.Get("booking_id")
	status := q.Get("status")

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	pool := h.db.GetPool()

	where := "WHERE 1=1"
	args := []interface{}{}
	argIdx := 1

	where, args, argIdx = appendClientScope(ctx, where, args, argIdx, "t.client_id")

	if clientID != "" {
		where += fmt.Sprintf(" AND t.client_id = $%d", argIdx)
		args = append(args, clientID)
		argIdx++
	}
	if bookingID != "" {
		where += fmt.Sprintf(" AND t.booking_id = $%d", argIdx)
		args = append(args, bookingID)
		argIdx++
	}
	if status != "" {
		where += fmt.Sprintf(" AND t.status = $%d", argIdx)
		args = append(args, status)
		argIdx++
	}

	rows, err := pool.Query(ctx, fmt.Sprintf(`
		SELECT %s FROM visit_tasks t
		%s
		ORDER BY t.created_at DESC
		LIMIT 500
	`, taskCols, where), args...)
	if err != nil {
		log.Printf("Error querying tasks: %v", err)
		JSONError(w, http.StatusInternalServerError, "Failed to fetch tasks")
		return
	}
	defer rows.Close()

	tasks := []models.VisitTask{}
	for rows.Next() {
		var t models.VisitTask
		if err := scanTask(rows, &t); err != nil {
			log.Printf("Error scanning task: %v", err)
			continue
		}
		tasks = append(tasks, t)
	}

	JSON(w, http.StatusOK, map[string]interface{}{
		"data": tasks,
	})
}

// ── Create ─────────────────────────────────────────────────────

// Create handles POST /api/tasks
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateTaskRequest
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

	var task models.VisitTask
	row := pool.QueryRow(ctx, `
		INSERT INTO visit_tasks (client_id, booking_id, text, status, visit_date)
		VALUES ($1, $2, $3, 'pending', $4)
		RETURNING `+taskRetCols,
		req.ClientID, req.BookingID, req.Text, req.VisitDate)
	if err := scanTask(row, &task); err != nil {
		log.Printf("Error creating task: %v", err)
		JSONError(w, http.StatusInternalServerError, "Failed to create task")
		return
	}

	JSON(w, http.StatusCreated, map[string]interface{}{
		"data":    task,
		"message": "Task created successfully",
	})
}

// ── Update ─────────────────────────────────────────────────────

// Update handles PUT /api/tasks/{id}
// Keeps status and is_completed consistent when either changes.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		JSONError(w, http.StatusBadRequest, "Task ID is required")
		return
	}

	if !checkTaskAccess(r.Context(), h.db.GetPool(), id) {
		JSONError(w, http.StatusForbidden, "Access denied to this task")
		return
	}

	var req models.UpdateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		JSONError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	if req.Status != nil {
		valid := map[string]bool{"pending": true, "completed": true, "postponed": true}
		if !valid[*req.Status] {
			JSONError(w, http.StatusUnprocessableEntity, "Status must be 'pending', 'completed', or 'postponed'")
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	pool := h.db.GetPool()

	setClauses := []string{}
	args := []interface{}{}
	argIdx := 1

	addField := func(col string, val interface{}) {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", col, argIdx))
		args = append(args, val)
		argIdx++
	}

	if req.Text != nil {
		addField("text", *req.Text)
	}
	if req.Status != nil {
		addField("status", *req.Status)
		// Mirror the boolean flag for older console builds
		addField("is_completed", *req.Status == "completed")
	}
	if req.IsCompleted != nil && req.Status == nil {
		addField("is_completed", *req.IsCompleted)
		if *req.IsCompleted {
			addField("status", "completed")
		} else {
			addField("status", "pending")
		}
	}
	if req.BookingID != nil {
		addField("booking_id", nilIfEmpty(*req.BookingID))
	}
	if req.VisitDate != nil {
		addField("visit_date", nilIfEmpty(*req.VisitDate))
	}

	if len(setClauses) == 0 {
		JSONError(w, http.StatusBadRequest, "No fields to update")
		return
	}

	setClauses = append(setClauses, "updated_at = NOW()")

	query := fmt.Sprintf(`
		UPDATE visit_tasks SET %s
		WHERE id = $%d
		RETURNING %s
	`, strings.Join(setClauses, ", "), argIdx, taskRetCols)
	args = append(args, id)

	var task models.VisitTask
	if err := scanTask(pool.QueryRow(ctx, query, args...), &task); err != nil {
		log.Printf("Error updating task %s: %v", id, err)
		JSONError(w, http.StatusNotFound, "Task not found")
		return
	}

	JSON(w, http.StatusOK, map[string]interface{}{
		"data":    task,
		"message": "Task updated successfully",
	})
}

// ── BulkComplete ───────────────────────────────────────────────

// BulkComplete handles POST /api/tasks/bulk-complete
// Accepts { "ids": [...] } and marks them completed in one statement.
func (h *TaskHandler) BulkComplete(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IDs []string `json:"ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		JSONError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if len(req.IDs) == 0 {
		JSONError(w, http.StatusBadRequest, "No task IDs provided")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	pool := h.db.GetPool()

	scope := ctxkeys.GetClientScope(r.Context())
	var tag interface{ RowsAffected() int64 }
	var err error
	if scope == nil {
		tag, err = pool.Exec(ctx, `
			UPDATE visit_tasks SET status = 'completed', is_completed = TRUE, updated_at = NOW()
			WHERE id = ANY($1::uuid[])`, req.IDs)
	} else {
		tag, err = pool.Exec(ctx, `
			UPDATE visit_tasks SET status = 'completed', is_completed = TRUE, updated_at = NOW()
			WHERE id = ANY($1::uuid[]) AND client_id = ANY($2)`, req.IDs, scope)
	}
	if err != nil {
		log.Printf("Error bulk completing tasks: %v", err)
		JSONError(w, http.StatusInternalServerError, "Failed to update tasks")
		return
	}

	JSON(w, http.StatusOK, map[string]interface{}{
		"message": fmt.Sprintf("%d task(s) completed", tag.RowsAffected()),
		"updated": tag.RowsAffected(),
	})
}

// ── Delete ─────────────────────────────────────────────────────

// Delete handles DELETE /api/tasks/{id}
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		JSONError(w, http.StatusBadRequest, "Task ID is required")
		return
	}

	if !checkTaskAccess(r.Context(), h.db.GetPool(), id) {
		JSONError(w, http.StatusForbidden, "Access denied to this task")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	tag, err := h.db.GetPool().Exec(ctx, "DELETE FROM visit_tasks WHERE id = $1", id)
	if err != nil {
		log.Printf("Error deleting task %s: %v", id, err)
		JSONError(w, http.StatusInternalServerError, "Failed to delete task")
		return
	}
	if tag.RowsAffected() == 0 {
		JSONError(w, http.StatusNotFound, "Task not found")
		return
	}

	JSON(w, http.StatusOK, map[string]string{
		"message": "Task deleted successfully",
	})
}

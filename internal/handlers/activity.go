package handlers

import (
	"context"
	"fmt"
	"log"
	"math"
	"net/http"
	"strconv"
	"time"

	"techvisit-backend/internal/database"
	"techvisit-backend/internal/models"
)

// ActivityHandler serves the audit trail. Admin only.
type ActivityHandler struct {
	db database.Service
}

// NewActivityHandler creates a new ActivityHandler.
func NewActivityHandler(db database.Service) *ActivityHandler {
	return &ActivityHandler{db: db}
}

// List handles GET /api/activity
func (h *ActivityHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(q.Get("limit"))
	if limit < 1 || limit > 100 {
		limit = 50
	}
	offset := (page - 1) * limit

	entityType := q.Get("entity_type")
	action := q.Get("action")

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	pool := h.db.GetPool()

	where := "WHERE 1=1"
	args := []interface{}{}
	argIdx := 1

	if entityType != "" {
		where += fmt.Sprintf(" AND a.entity_type = $%d", argIdx)
		args = append(args, entityType)
		argIdx++
	}
	if action != "" {
		where += fmt.Sprintf(" AND a.action = $%d", argIdx)
		args = append(args, action)
		argIdx++
	}

	var total int
	if err := pool.QueryRow(ctx,
		fmt.Sprintf(`SELECT COUNT(*) FROM activity_log a %s`, where), args...,
	).Scan(&total); err != nil {
		log.Printf("Error counting activity: %v", err)
		JSONError(w, http.StatusInternalServerError, "Failed to fetch activity")
		return
	}

	query := fmt.Sprintf(`
		SELECT a.id, a.user_id::text, u.name,
			a.action, a.entity_type, COALESCE(a.entity_id::text, ''),
			a.details, a.created_at::text
		FROM activity_log a
		LEFT JOIN users u ON u.id = a.user_id
		%s
		ORDER BY a.created_at DESC
		LIMIT $%d OFFSET $%d
	`, where, argIdx, argIdx+1)

	args = append(args, limit, offset)

	rows, err := pool.Query(ctx, query, args...)
	if err != nil {
		log.Printf("Error querying activity: %v", err)
		JSONError(w, http.StatusInternalServerError, "Failed to fetch activity")
		return
	}
	defer rows.Close()

	entries := []models.ActivityEntry{}
	for rows.Next() {
		var e models.ActivityEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.UserName,
			&e.Action, &e.EntityType, &e.EntityID,
			&e.Details, &e.CreatedAt); err != nil {
			continue
		}
		entries = append(entries, e)
	}

	JSON(w, http.StatusOK, PaginatedResponse{
		Data: entries,
		Pagination: PaginationMeta{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: int(math.Ceil(float64(total) / float64(limit))),
		},
	})
}

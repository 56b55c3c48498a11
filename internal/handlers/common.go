// Package handlers contains the HTTP handlers for the API.
package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// JSONError writes a JSON error response.
func JSONError(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// PaginationMeta describes the page window of a list response.
type PaginationMeta struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// PaginatedResponse wraps list data with its pagination metadata.
type PaginatedResponse struct {
	Data       interface{}    `json:"data"`
	Pagination PaginationMeta `json:"pagination"`
}

// logActivity records an audit entry. Failures are logged and swallowed;
// audit writes never fail the request that triggered them.
func logActivity(pool *pgxpool.Pool, userID, action, entityType, entityID string, details map[string]interface{}) {
	var detailsJSON []byte
	if details != nil {
		detailsJSON, _ = json.Marshal(details)
	}

	_, err := pool.Exec(context.Background(),
		`INSERT INTO activity_log (user_id, action, entity_type, entity_id, details)
		 VALUES ($1, $2, $3, $4, $5)`,
		nilIfEmpty(userID), action, entityType, nilIfEmpty(entityID), detailsJSON)
	if err != nil {
		log.Printf("[activity] failed to log %s %s: %v", action, entityType, err)
	}
}

// nilIfEmpty returns nil if the string is empty, otherwise a pointer to it.
// Used for nullable DB columns.
func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// csvEscape quotes a CSV field when it contains a delimiter, quote, or newline.
func csvEscape(s string) string {
	if strings.ContainsAny(s, ",\"\n\r") {
		return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
	}
	return s
}

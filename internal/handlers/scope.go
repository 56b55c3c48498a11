package handlers

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"techvisit-backend/internal/ctxkeys"
)

// appendClientScope adds a client_id scope filter to a dynamic WHERE clause.
// colExpr is the SQL column expression to filter on (e.g. "b.client_id", "c.id").
// If the user has global scope (admin/super_admin), nothing is added.
func appendClientScope(ctx context.Context, where string, args []interface{}, argIdx int, colExpr string) (string, []interface{}, int) {
	scope := ctxkeys.GetClientScope(ctx)
	if scope == nil {
		return where, args, argIdx
	}
	where += fmt.Sprintf(" AND %s = ANY($%d)", colExpr, argIdx)
	args = append(args, scope)
	argIdx++
	return where, args, argIdx
}

// checkClientAccess verifies that the given clientID is within the user's scope.
func checkClientAccess(ctx context.Context, clientID string) bool {
	scope := ctxkeys.GetClientScope(ctx)
	if scope == nil {
		return true
	}
	for _, id := range scope {
		if id == clientID {
			return true
		}
	}
	return false
}

// checkBookingAccess looks up the booking's client_id and checks scope.
func checkBookingAccess(ctx context.Context, pool *pgxpool.Pool, bookingID string) bool {
	if ctxkeys.IsGlobalScope(ctx) {
		return true
	}
	var clientID string
	err := pool.QueryRow(ctx, "SELECT client_id::text FROM bookings WHERE id = $1", bookingID).Scan(&clientID)
	if err != nil {
		return false
	}
	return checkClientAccess(ctx, clientID)
}

// checkReportAccess looks up the report's client_id and checks scope.
func checkReportAccess(ctx context.Context, pool *pgxpool.Pool, reportID string) bool {
	if ctxkeys.IsGlobalScope(ctx) {
		return true
	}
	var clientID string
	err := pool.QueryRow(ctx, "SELECT client_id::text FROM reports WHERE id = $1", reportID).Scan(&clientID)
	if err != nil {
		return false
	}
	return checkClientAccess(ctx, clientID)
}

// checkTaskAccess looks up the task's client_id and checks scope.
func checkTaskAccess(ctx context.Context, pool *pgxpool.Pool, taskID string) bool {
	if ctxkeys.IsGlobalScope(ctx) {
		return true
	}
	var clientID string
	err := pool.QueryRow(ctx, "SELECT client_id::text FROM visit_tasks WHERE id = $1", taskID).Scan(&clientID)
	if err != nil {
		return false
	}
	return checkClientAccess(ctx, clientID)
}

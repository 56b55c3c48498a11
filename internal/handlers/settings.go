package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"techvisit-backend/internal/ctxkeys"
	"techvisit-backend/internal/database"
	"techvisit-backend/internal/models"
	"techvisit-backend/internal/settings"
)

// SettingsHandler handles the global console settings.
type SettingsHandler struct {
	db    database.Service
	store *settings.Store
}

// NewSettingsHandler creates a new SettingsHandler.
func NewSettingsHandler(db database.Service, store *settings.Store) *SettingsHandler {
	return &SettingsHandler{db: db, store: store}
}

// Get handles GET /api/settings
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	cfg, err := h.store.Get(ctx)
	if err != nil {
		log.Printf("Error fetching settings: %v", err)
		JSONError(w, http.StatusInternalServerError, "Failed to fetch settings")
		return
	}

	JSON(w, http.StatusOK, map[string]interface{}{
		"data": cfg,
	})
}

// Update handles PUT /api/settings
// Last write wins: the row is upserted and the merged result pushed to
// every connected console.
func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateSettingsRequest
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

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	cfg, err := h.store.Update(ctx, &req)
	if err != nil {
		log.Printf("Error updating settings: %v", err)
		JSONError(w, http.StatusInternalServerError, "Failed to update settings")
		return
	}

	// Audit trail
	userID, _ := r.Context().Value(ctxkeys.UserID).(string)
	logActivity(h.db.GetPool(), userID, "updated", "settings", "", nil)

	JSON(w, http.StatusOK, map[string]interface{}{
		"data":    cfg,
		"message": "Settings updated successfully",
	})
}

// Events handles GET /api/settings/events — server-sent events.
// Each settings write arrives as one `settings` event; consoles apply the
// latest event they receive and ignore ordering beyond that.
func (h *SettingsHandler) Events(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		JSONError(w, http.StatusInternalServerError, "Streaming not supported")
		return
	}

	updates := h.store.Subscribe(r.Context())
	if updates == nil {
		JSONError(w, http.StatusServiceUnavailable, "Realtime updates not configured")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	// Heartbeat keeps proxies from closing the idle stream.
	heartbeat := time.NewTicker(30 * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		case update, ok := <-updates:
			if !ok {
				return
			}
			payload, err := json.Marshal(update)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: settings\ndata: %s\n\n", payload)
			flusher.Flush()
		}
	}
}

package models

import "encoding/json"

// Notification is a per-user console alert (visit reminders, missing monthly
// reports). Generated by the cron notifier and read over the API.
type Notification struct {
	ID         string  `json:"id"`
	UserID     string  `json:"userId"`
	Title      string  `json:"title"`
	Message    string  `json:"message"`
	Type       string  `json:"type"` // visit_reminder, monthly_report_due
	EntityType string  `json:"entityType"`
	EntityID   *string `json:"entityId,omitempty"`
	IsRead     bool    `json:"isRead"`
	CreatedAt  string  `json:"createdAt"`
}

// ActivityEntry is one audit-trail row. Every mutating handler appends one.
type ActivityEntry struct {
	ID         string          `json:"id"`
	UserID     *string         `json:"userId,omitempty"`
	UserName   *string         `json:"userName,omitempty"`
	Action     string          `json:"action"` // created, updated, deleted, sent, ...
	EntityType string          `json:"entityType"`
	EntityID   string          `json:"entityId"`
	Details    json.RawMessage `json:"details,omitempty"`
	CreatedAt  string          `json:"createdAt"`
}

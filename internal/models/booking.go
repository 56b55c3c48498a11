package models

import "time"

// Booking represents a scheduled technician visit to a client branch.
type Booking struct {
	ID         string    `json:"id"`
	ClientID   string    `json:"clientId"`
	BranchID   *string   `json:"branchId,omitempty"`
	BranchName string    `json:"branchName"`
	Date       string    `json:"date"` // YYYY-MM-DD
	Time       string    `json:"time"` // HH:MM, free text from the scheduler
	Status     string    `json:"status"` // scheduled, completed, cancelled
	Notes      *string   `json:"notes,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// BookingWithClient includes the client name for console listings.
type BookingWithClient struct {
	Booking
	ClientName    string `json:"clientName"`
	TaskCount     int    `json:"taskCount"`
	DoneTaskCount int    `json:"doneTaskCount"`
}

// VisitTask is a single work item inside (or outside) a visit.
// It is a read-only input to report derivation; reports never mutate tasks.
type VisitTask struct {
	ID          string    `json:"id"`
	ClientID    string    `json:"clientId"`
	BookingID   *string   `json:"bookingId,omitempty"`
	Text        string    `json:"text"`
	IsCompleted bool      `json:"isCompleted"`
	Status      string    `json:"status"` // pending, completed, postponed
	VisitDate   *string   `json:"visitDate,omitempty"` // YYYY-MM-DD, overrides the booking date
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// CreateBookingRequest holds the fields needed to schedule a visit.
type CreateBookingRequest struct {
	ClientID   string  `json:"clientId"`
	BranchID   *string `json:"branchId,omitempty"`
	BranchName string  `json:"branchName,omitempty"`
	Date       string  `json:"date"`
	Time       string  `json:"time,omitempty"`
	Notes      *string `json:"notes,omitempty"`
}

// Validate checks if the booking request contains valid data.
func (r *CreateBookingRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.ClientID == "" {
		errors["clientId"] = "Client is required"
	}
	if r.Date == "" {
		errors["date"] = "Visit date is required"
	} else if _, err := time.Parse("2006-01-02", r.Date); err != nil {
		errors["date"] = "Visit date must be YYYY-MM-DD"
	}

	return errors
}

// UpdateBookingRequest holds the booking fields that can be updated.
type UpdateBookingRequest struct {
	BranchID   *string `json:"branchId,omitempty"`
	BranchName *string `json:"branchName,omitempty"`
	Date       *string `json:"date,omitempty"`
	Time       *string `json:"time,omitempty"`
	Status     *string `json:"status,omitempty"`
	Notes      *string `json:"notes,omitempty"`
}

// CreateTaskRequest holds the fields needed to add a visit task.
type CreateTaskRequest struct {
	ClientID  string  `json:"clientId"`
	BookingID *string `json:"bookingId,omitempty"`
	Text      string  `json:"text"`
	VisitDate *string `json:"visitDate,omitempty"`
}

// Validate checks required task fields.
func (r *CreateTaskRequest) Validate() map[string]string {
	errors := make(map[string]string)
	if r.ClientID == "" {
		errors["clientId"] = "Client is required"
	}
	if len(r.Text) < 2 {
		errors["text"] = "Task text is required (min 2 characters)"
	}
	if r.VisitDate != nil && *r.VisitDate != "" {
		if _, err := time.Parse("2006-01-02", *r.VisitDate); err != nil {
			errors["visitDate"] = "Visit date must be YYYY-MM-DD"
		}
	}
	return errors
}

// UpdateTaskRequest holds the task fields that can be updated.
type UpdateTaskRequest struct {
	Text        *string `json:"text,omitempty"`
	Status      *string `json:"status,omitempty"`
	IsCompleted *bool   `json:"isCompleted,omitempty"`
	BookingID   *string `json:"bookingId,omitempty"`
	VisitDate   *string `json:"visitDate,omitempty"`
}

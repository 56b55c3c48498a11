package models

import "time"

// Client represents a contracted client of the support service.
type Client struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	ContactName   *string   `json:"contactName,omitempty"`
	Phone         string    `json:"phone"`
	Email         *string   `json:"email,omitempty"`
	City          *string   `json:"city,omitempty"`
	ContractPlan  string    `json:"contractPlan"` // basic, standard, premium
	VisitsPerWeek int       `json:"visitsPerWeek"`
	Notes         *string   `json:"notes,omitempty"`
	Status        string    `json:"status"` // active, suspended, archived
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// ClientWithStats adds aggregate counters used by the console list view.
type ClientWithStats struct {
	Client
	BranchCount   int     `json:"branchCount"`
	BookingCount  int     `json:"bookingCount"`
	ReportCount   int     `json:"reportCount"`
	OpenTaskCount int     `json:"openTaskCount"`
	LastVisitDate *string `json:"lastVisitDate,omitempty"`
}

// Branch is a physical location of a client; visits are booked per branch.
type Branch struct {
	ID        string  `json:"id"`
	ClientID  string  `json:"clientId"`
	Name      string  `json:"name"`
	Address   *string `json:"address,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	CreatedAt string  `json:"createdAt"`
}

// CreateClientRequest holds the fields needed to register a client.
type CreateClientRequest struct {
	Name          string  `json:"name"`
	ContactName   *string `json:"contactName,omitempty"`
	Phone         string  `json:"phone"`
	Email         *string `json:"email,omitempty"`
	City          *string `json:"city,omitempty"`
	ContractPlan  string  `json:"contractPlan,omitempty"`
	VisitsPerWeek int     `json:"visitsPerWeek,omitempty"`
	Notes         *string `json:"notes,omitempty"`
	Status        string  `json:"status,omitempty"`
}

// Validate checks if the create request contains valid data.
func (r *CreateClientRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if len(r.Name) < 2 || len(r.Name) > 100 {
		errors["name"] = "Name must be between 2 and 100 characters"
	}
	if r.Phone == "" {
		errors["phone"] = "Phone number is required"
	}
	if r.VisitsPerWeek < 0 || r.VisitsPerWeek > 7 {
		errors["visitsPerWeek"] = "Visits per week must be between 0 and 7"
	}

	return errors
}

// UpdateClientRequest holds the fields that can be updated.
type UpdateClientRequest struct {
	Name          *string `json:"name,omitempty"`
	ContactName   *string `json:"contactName,omitempty"`
	Phone         *string `json:"phone,omitempty"`
	Email         *string `json:"email,omitempty"`
	City          *string `json:"city,omitempty"`
	ContractPlan  *string `json:"contractPlan,omitempty"`
	VisitsPerWeek *int    `json:"visitsPerWeek,omitempty"`
	Notes         *string `json:"notes,omitempty"`
	Status        *string `json:"status,omitempty"`
}

// CreateBranchRequest holds the fields needed to add a branch.
type CreateBranchRequest struct {
	Name    string  `json:"name"`
	Address *string `json:"address,omitempty"`
	Phone   *string `json:"phone,omitempty"`
}

// Validate checks required branch fields.
func (r *CreateBranchRequest) Validate() map[string]string {
	errors := make(map[string]string)
	if len(r.Name) < 2 {
		errors["name"] = "Branch name is required (min 2 characters)"
	}
	return errors
}

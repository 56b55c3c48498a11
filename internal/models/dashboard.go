package models

// ── Dashboard Metrics ────────────────────────────────────────────

// DashboardMetrics holds the main console statistics.
type DashboardMetrics struct {
	TotalClients     int `json:"totalClients"`
	VisitsToday      int `json:"visitsToday"`
	VisitsThisWeek   int `json:"visitsThisWeek"`
	ReportsThisMonth int `json:"reportsThisMonth"`
	OpenTasks        int `json:"openTasks"`
	PostponedTasks   int `json:"postponedTasks"`
}

// ClientActivity summarizes one client's recent service level for the
// dashboard breakdown table.
type ClientActivity struct {
	ClientID        string  `json:"clientId"`
	ClientName      string  `json:"clientName"`
	VisitsThisMonth int     `json:"visitsThisMonth"`
	OpenTasks       int     `json:"openTasks"`
	LastReportDate  *string `json:"lastReportDate,omitempty"`
	MissingMonthly  bool    `json:"missingMonthly"` // no monthly report for the current month yet
}

// UpcomingVisit is one row of the dashboard's schedule panel.
type UpcomingVisit struct {
	BookingID  string `json:"bookingId"`
	ClientName string `json:"clientName"`
	BranchName string `json:"branchName"`
	Date       string `json:"date"`
	Time       string `json:"time"`
	TaskCount  int    `json:"taskCount"`
}

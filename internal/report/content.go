package report

// ── Content Document ─────────────────────────────────────────────
// Content is the flat persisted payload of a report. Field names are the
// wire contract between the Builder and the Renderer: the renderer reads
// exactly the keys the builder writes, with no schema negotiation. List
// fields hold newline-joined text (see list.go).
type Content struct {
	// Common fields
	Summary         string `json:"summary,omitempty"`
	TechnicianName  string `json:"technician_name,omitempty"`
	Duration        string `json:"duration,omitempty"`
	VisitLocation   string `json:"visit_location,omitempty"`
	HealthScore     int    `json:"healthScore,omitempty"`
	Efficiency      string `json:"efficiency,omitempty"`
	SystemStatus    string `json:"system_status,omitempty"`
	BackupStatus    string `json:"backup_status,omitempty"`
	RiskLevel       string `json:"riskLevel,omitempty"`
	Warnings        string `json:"warnings,omitempty"`
	PendingTasks    string `json:"pendingTasks,omitempty"`
	LicenseActive   string `json:"licenseActive,omitempty"`
	LicenseExpiring string `json:"licenseExpiring,omitempty"`
	LicenseExpired  string `json:"licenseExpired,omitempty"`

	// visit_log only
	CompletedTasks  string `json:"completed_tasks,omitempty"`
	Recommendations string `json:"recommendations,omitempty"`

	// monthly_technical only
	KeyAchievements          string `json:"key_achievements,omitempty"`
	StrategicRecommendations string `json:"strategic_recommendations,omitempty"`

	// incident only
	IncidentDetails string `json:"incident_details,omitempty"`
	RootCause       string `json:"root_cause,omitempty"`
	Resolution      string `json:"resolution,omitempty"`
	Prevention      string `json:"prevention,omitempty"`
}

// ── Typed Document ───────────────────────────────────────────────
// In memory the builder works on a tagged union keyed by Type, so a report
// of one type cannot carry another type's fields. The union is converted
// to/from the flat Content at the storage boundary only.

// Document is the in-memory form of a report: common fields plus exactly
// one populated type-specific section.
type Document struct {
	Type     Type
	Common   Common
	VisitLog *VisitLogFields
	Monthly  *MonthlyFields
	Incident *IncidentFields
}

// Common holds the fields shared by every report type.
type Common struct {
	Summary         string
	TechnicianName  string
	Duration        string
	VisitLocation   string
	HealthScore     int
	Efficiency      string
	SystemStatus    string
	BackupStatus    string
	RiskLevel       string
	Warnings        string
	PendingTasks    string
	LicenseActive   string
	LicenseExpiring string
	LicenseExpired  string
}

// VisitLogFields are populated only for visit_log reports.
type VisitLogFields struct {
	CompletedTasks  string
	Recommendations string
}

// MonthlyFields are populated only for monthly_technical reports.
type MonthlyFields struct {
	KeyAchievements          string
	StrategicRecommendations string
}

// IncidentFields are populated only for incident reports.
type IncidentFields struct {
	IncidentDetails string
	RootCause       string
	Resolution      string
	Prevention      string
}

// Flatten converts the typed document into the flat persisted Content.
// Only the section matching the document's type contributes fields, so a
// type switch can never leak a previous type's values into storage.
func (d Document) Flatten() Content {
	c := Content{
		Summary:         d.Common.Summary,
		TechnicianName:  d.Common.TechnicianName,
		Duration:        d.Common.Duration,
		VisitLocation:   d.Common.VisitLocation,
		HealthScore:     d.Common.HealthScore,
		Efficiency:      d.Common.Efficiency,
		SystemStatus:    d.Common.SystemStatus,
		BackupStatus:    d.Common.BackupStatus,
		RiskLevel:       d.Common.RiskLevel,
		Warnings:        d.Common.Warnings,
		PendingTasks:    d.Common.PendingTasks,
		LicenseActive:   d.Common.LicenseActive,
		LicenseExpiring: d.Common.LicenseExpiring,
		LicenseExpired:  d.Common.LicenseExpired,
	}

	switch d.Type {
	case TypeVisitLog:
		if d.VisitLog != nil {
			c.CompletedTasks = d.VisitLog.CompletedTasks
			c.Recommendations = d.VisitLog.Recommendations
		}
	case TypeMonthlyTechnical:
		if d.Monthly != nil {
			c.KeyAchievements = d.Monthly.KeyAchievements
			c.StrategicRecommendations = d.Monthly.StrategicRecommendations
		}
	case TypeIncident:
		if d.Incident != nil {
			c.IncidentDetails = d.Incident.IncidentDetails
			c.RootCause = d.Incident.RootCause
			c.Resolution = d.Incident.Resolution
			c.Prevention = d.Incident.Prevention
		}
	}

	return c
}

// ParseDocument reconstructs the typed document from a persisted Content.
// Used when an interactive form re-opens a stored document for editing.
func ParseDocument(t Type, c Content) Document {
	d := Document{
		Type: t,
		Common: Common{
			Summary:         c.Summary,
			TechnicianName:  c.TechnicianName,
			Duration:        c.Duration,
			VisitLocation:   c.VisitLocation,
			HealthScore:     c.HealthScore,
			Efficiency:      c.Efficiency,
			SystemStatus:    c.SystemStatus,
			BackupStatus:    c.BackupStatus,
			RiskLevel:       c.RiskLevel,
			Warnings:        c.Warnings,
			PendingTasks:    c.PendingTasks,
			LicenseActive:   c.LicenseActive,
			LicenseExpiring: c.LicenseExpiring,
			LicenseExpired:  c.LicenseExpired,
		},
	}

	switch t {
	case TypeVisitLog:
		d.VisitLog = &VisitLogFields{
			CompletedTasks:  c.CompletedTasks,
			Recommendations: c.Recommendations,
		}
	case TypeMonthlyTechnical:
		d.Monthly = &MonthlyFields{
			KeyAchievements:          c.KeyAchievements,
			StrategicRecommendations: c.StrategicRecommendations,
		}
	case TypeIncident:
		d.Incident = &IncidentFields{
			IncidentDetails: c.IncidentDetails,
			RootCause:       c.RootCause,
			Resolution:      c.Resolution,
			Prevention:      c.Prevention,
		}
	}

	return d
}

// Package report provides pure functions for deriving and rendering
// technical visit reports. These functions have ZERO dependencies on HTTP,
// database, or any other infrastructure — making them trivially testable
// and reusable.
//
// The package has two halves that never talk to each other directly:
// the Builder derives a report document from client/booking/task records,
// and the Renderer turns a persisted document into a view tree. Their only
// contract is the flat Content schema and the newline-list convention.
package report

// ── Report Types ─────────────────────────────────────────────────

// Type identifies the kind of report. Adding a value here requires updating
// every switch in this package; the compiler-visible enum is deliberate.
type Type string

const (
	TypeVisitLog         Type = "visit_log"
	TypeMonthlyTechnical Type = "monthly_technical"
	TypeIncident         Type = "incident"
)

// Valid reports whether t is one of the known report types.
func (t Type) Valid() bool {
	switch t {
	case TypeVisitLog, TypeMonthlyTechnical, TypeIncident:
		return true
	}
	return false
}

// Types lists all report types in display order.
var Types = []Type{TypeVisitLog, TypeMonthlyTechnical, TypeIncident}

// ── Enum Field Values ────────────────────────────────────────────
// Stored as raw strings in the content document. The renderer maps them to
// display labels through static tables and falls back to the raw value for
// anything unrecognized.

const (
	SystemStable      = "stable"
	SystemCritical    = "critical"
	SystemMaintenance = "maintenance"
	SystemNoServer    = "no_server"
	SystemUnstable    = "unstable"
)

const (
	BackupSuccess      = "success"
	BackupFailed       = "failed"
	BackupPending      = "pending"
	BackupNotPerformed = "not_performed"
)

const (
	EfficiencyHigh   = "high"
	EfficiencyMedium = "medium"
	EfficiencyLow    = "low"
)

const (
	RiskLow      = "low"
	RiskMedium   = "medium"
	RiskHigh     = "high"
	RiskCritical = "critical"
)

// ── Source Records ───────────────────────────────────────────────
// Read-only inputs to the Builder. The data-access layer materializes these
// from its own models; this package never queries anything itself.

// Task is a single visit task as consumed by the Builder.
type Task struct {
	ID        string
	ClientID  string
	BookingID string // empty when not linked to a visit
	Text      string
	Status    string // pending | completed | postponed
	Completed bool   // legacy completion flag, honored alongside Status
	VisitDate string // YYYY-MM-DD, empty when the linked booking's date applies
}

// Booking is a scheduled visit as consumed by the Builder.
type Booking struct {
	ID         string
	ClientID   string
	Date       string // YYYY-MM-DD
	Time       string
	BranchName string
	Status     string
}

// Task status values.
const (
	TaskPending   = "pending"
	TaskCompleted = "completed"
	TaskPostponed = "postponed"
)

// IsDone reports whether a task counts as completed for derivation purposes.
func (t Task) IsDone() bool {
	return t.Status == TaskCompleted || t.Completed
}

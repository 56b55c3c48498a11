package report

import (
	"reflect"
	"strings"
	"testing"
	"time"
)

var testNow = time.Date(2026, time.January, 15, 10, 0, 0, 0, time.UTC)

func visitInput(tasks []Task) BuildInput {
	return BuildInput{
		Type:     TypeVisitLog,
		ClientID: "client-1",
		Booking: &Booking{
			ID:         "booking-1",
			ClientID:   "client-1",
			Date:       "2026-01-12",
			BranchName: "الفرع الرئيسي",
		},
		Tasks:          tasks,
		TechnicianName: "أحمد",
		Now:            testNow,
	}
}

func TestVisitLogPartitionAndScore(t *testing.T) {
	tasks := []Task{
		{ID: "t1", BookingID: "booking-1", Text: "فحص الخادم", Status: TaskCompleted},
		{ID: "t2", BookingID: "booking-1", Text: "تحديث الحماية", Completed: true},
		{ID: "t3", BookingID: "booking-1", Text: "صيانة الطابعة", Status: TaskCompleted},
		{ID: "t4", BookingID: "booking-1", Text: "تركيب كاميرا", Status: TaskPostponed},
		{ID: "t5", BookingID: "other-booking", Text: "خارج الزيارة", Status: TaskPending},
	}

	d := Build(visitInput(tasks))

	// 3 of 4 booking tasks completed → 75, medium.
	if d.Common.HealthScore != 75 {
		t.Fatalf("healthScore = %d, want 75", d.Common.HealthScore)
	}
	if d.Common.Efficiency != EfficiencyMedium {
		t.Fatalf("efficiency = %q, want medium", d.Common.Efficiency)
	}

	completed := ParseList(d.VisitLog.CompletedTasks)
	pending := ParseList(d.Common.PendingTasks)
	if len(completed)+len(pending) != 4 {
		t.Fatalf("completed(%d) + pending(%d) != total(4)", len(completed), len(pending))
	}
	if want := []string{"- فحص الخادم", "- تحديث الحماية", "- صيانة الطابعة"}; !reflect.DeepEqual(completed, want) {
		t.Fatalf("completed = %q, want %q (natural order preserved)", completed, want)
	}
	if len(pending) != 1 || !strings.HasSuffix(pending[0], suffixPostponed) {
		t.Fatalf("postponed task missing its suffix: %q", pending)
	}
}

func TestVisitLogNoTasksIsHealthy(t *testing.T) {
	d := Build(visitInput(nil))
	if d.Common.HealthScore != 100 {
		t.Fatalf("healthScore = %d, want 100 for zero tasks", d.Common.HealthScore)
	}
	if d.Common.Efficiency != EfficiencyHigh {
		t.Fatalf("efficiency = %q, want high", d.Common.Efficiency)
	}
	if got := ParseList(d.VisitLog.CompletedTasks); len(got) != 0 {
		t.Fatalf("expected no completed tasks, got %q", got)
	}
}

func TestVisitLogPendingSuffixesDiffer(t *testing.T) {
	tasks := []Task{
		{ID: "t1", BookingID: "booking-1", Text: "مهمة مؤجلة", Status: TaskPostponed},
		{ID: "t2", BookingID: "booking-1", Text: "مهمة منتظرة", Status: TaskPending},
	}
	d := Build(visitInput(tasks))
	pending := ParseList(d.Common.PendingTasks)
	if len(pending) != 2 {
		t.Fatalf("pending = %q, want 2 items", pending)
	}
	if !strings.HasSuffix(pending[0], suffixPostponed) {
		t.Errorf("postponed item %q missing %q", pending[0], suffixPostponed)
	}
	if !strings.HasSuffix(pending[1], suffixPending) {
		t.Errorf("pending item %q missing %q", pending[1], suffixPending)
	}
}

func TestVisitLogDerivedMetadata(t *testing.T) {
	d := Build(visitInput(nil))
	if d.Common.VisitLocation != "الفرع الرئيسي" {
		t.Fatalf("visit_location = %q", d.Common.VisitLocation)
	}
	if d.Common.Duration != FormatDuration(2, 0) {
		t.Fatalf("duration = %q, want the 2h baseline", d.Common.Duration)
	}
	// Booking date 2026-01-12 is a Monday.
	if want := summaryVisitLabel + " - الاثنين، 12 يناير 2026"; d.Common.Summary != want {
		t.Fatalf("summary = %q, want %q", d.Common.Summary, want)
	}
	if d.Common.TechnicianName != "أحمد" {
		t.Fatalf("technician name not preserved: %q", d.Common.TechnicianName)
	}
}

func TestMonthlyFiltersByClientMonthAndCompletion(t *testing.T) {
	in := BuildInput{
		Type:     TypeMonthlyTechnical,
		ClientID: "client-1",
		Tasks: []Task{
			{ID: "t1", ClientID: "client-1", Text: "ترقية الخادم", Status: TaskCompleted, VisitDate: "2026-01-03"},
			{ID: "t2", ClientID: "client-1", Text: "عبر الحجز", Status: TaskCompleted, BookingID: "b1"},
			{ID: "t3", ClientID: "client-1", Text: "الشهر الماضي", Status: TaskCompleted, VisitDate: "2025-12-28"},
			{ID: "t4", ClientID: "client-2", Text: "عميل آخر", Status: TaskCompleted, VisitDate: "2026-01-05"},
			{ID: "t5", ClientID: "client-1", Text: "غير منجزة", Status: TaskPending, VisitDate: "2026-01-06"},
		},
		Bookings: []Booking{
			{ID: "b1", ClientID: "client-1", Date: "2026-01-20"},
		},
		Now: testNow,
	}

	d := Build(in)
	got := ParseList(d.Monthly.KeyAchievements)
	want := []string{"- ترقية الخادم", "- عبر الحجز"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("key_achievements = %q, want %q", got, want)
	}
}

func TestMonthlyBoilerplateWhenNoTasksMatch(t *testing.T) {
	d := Build(BuildInput{Type: TypeMonthlyTechnical, ClientID: "client-1", Now: testNow})

	if d.Monthly.KeyAchievements != defaultAchievements {
		t.Fatalf("key_achievements = %q, want the fixed boilerplate", d.Monthly.KeyAchievements)
	}
	if n := len(ParseList(d.Monthly.KeyAchievements)); n != 3 {
		t.Fatalf("boilerplate has %d lines, want 3", n)
	}
}

func TestMonthlyFixedFields(t *testing.T) {
	d := Build(BuildInput{Type: TypeMonthlyTechnical, ClientID: "client-1", Now: testNow})

	if d.Common.HealthScore != 98 {
		t.Errorf("healthScore = %d, want 98", d.Common.HealthScore)
	}
	if d.Common.Efficiency != EfficiencyHigh {
		t.Errorf("efficiency = %q, want high", d.Common.Efficiency)
	}
	if d.Common.SystemStatus != SystemStable {
		t.Errorf("system_status = %q, want stable", d.Common.SystemStatus)
	}
	if d.Common.BackupStatus != BackupSuccess {
		t.Errorf("backup_status = %q, want success", d.Common.BackupStatus)
	}
	if d.Common.LicenseActive != defaultLicenseActive {
		t.Errorf("licenseActive = %q, want the two-line default", d.Common.LicenseActive)
	}
	if d.Common.LicenseExpiring != "" || d.Common.LicenseExpired != "" {
		t.Errorf("expiring/expired tiers must start empty")
	}
	if want := summaryMonthlyLabel + " - يناير 2026"; d.Common.Summary != want {
		t.Errorf("summary = %q, want %q", d.Common.Summary, want)
	}
	if d.Common.Duration != FormatDuration(0, 0) {
		t.Errorf("duration = %q, want the 0h reset", d.Common.Duration)
	}
}

func TestIncidentResetsNarrativeFields(t *testing.T) {
	d := Build(BuildInput{Type: TypeIncident, ClientID: "client-1", Now: testNow})

	if d.Incident == nil {
		t.Fatal("incident section missing")
	}
	if d.Incident.IncidentDetails != "" || d.Incident.RootCause != "" ||
		d.Incident.Resolution != "" || d.Incident.Prevention != "" {
		t.Fatalf("incident narrative fields must reset to empty: %+v", d.Incident)
	}
	if d.Common.Duration != FormatDuration(1, 30) {
		t.Fatalf("duration = %q, want the 1h30 baseline", d.Common.Duration)
	}
	// testNow 2026-01-15 is a Thursday.
	if want := summaryIncidentLabel + " - الخميس، 15 يناير 2026"; d.Common.Summary != want {
		t.Fatalf("summary = %q, want %q", d.Common.Summary, want)
	}
}

func TestBuildIsIdempotent(t *testing.T) {
	in := visitInput([]Task{
		{ID: "t1", BookingID: "booking-1", Text: "فحص", Status: TaskCompleted},
		{ID: "t2", BookingID: "booking-1", Text: "تنظيف", Status: TaskPending},
	})

	first := Build(in).Flatten()
	second := Build(in).Flatten()
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("identical inputs produced different content:\n%+v\n%+v", first, second)
	}
}

func TestTypeSwitchLeavesNoStaleFields(t *testing.T) {
	in := BuildInput{Type: TypeIncident, ClientID: "client-1", Now: testNow}
	incident := Build(in)
	incident.Incident.IncidentDetails = "انقطاع كامل للشبكة"
	incident.Incident.RootCause = "عطل في المحول الرئيسي"

	// Switching the type rebuilds from scratch; nothing carries over except
	// the manual technician name.
	in.Type = TypeMonthlyTechnical
	in.TechnicianName = "أحمد"
	monthly := Build(in).Flatten()

	if monthly.IncidentDetails != "" || monthly.RootCause != "" ||
		monthly.Resolution != "" || monthly.Prevention != "" {
		t.Fatalf("incident fields leaked into monthly content: %+v", monthly)
	}
	if monthly.TechnicianName != "أحمد" {
		t.Fatalf("technician name not preserved across type switch")
	}
}

func TestFlattenParseDocumentRoundTrip(t *testing.T) {
	for _, typ := range Types {
		in := BuildInput{
			Type:           typ,
			ClientID:       "client-1",
			Booking:        &Booking{ID: "b1", Date: "2026-01-12", BranchName: "فرع"},
			TechnicianName: "سارة",
			Now:            testNow,
		}
		d := Build(in)
		flat := d.Flatten()
		back := ParseDocument(typ, flat)
		if !reflect.DeepEqual(back.Flatten(), flat) {
			t.Fatalf("%s: flatten/parse round trip drifted", typ)
		}
	}
}

package report

import (
	"bytes"
	"reflect"
	"strings"
	"testing"
)

func findSection(v View, key string) *Section {
	for i := range v.Sections {
		if v.Sections[i].Key == key {
			return &v.Sections[i]
		}
	}
	return nil
}

func TestRenderIsPure(t *testing.T) {
	c := Content{
		Summary:      "تقرير زيارة",
		SystemStatus: SystemStable,
		Warnings:     "- تنبيه أول\n- تنبيه ثاني",
		HealthScore:  75,
	}
	before := c

	first := Render(TypeVisitLog, c)
	second := Render(TypeVisitLog, c)

	if !reflect.DeepEqual(first, second) {
		t.Fatal("equal inputs rendered to different views")
	}
	if !reflect.DeepEqual(c, before) {
		t.Fatal("Render mutated its content argument")
	}
}

func TestRenderOmitsEmptyLicensePanel(t *testing.T) {
	c := Content{LicenseActive: "", LicenseExpiring: "", LicenseExpired: ""}
	v := Render(TypeVisitLog, c)
	if findSection(v, "licenses") != nil {
		t.Fatal("license panel rendered despite all tiers being empty")
	}
}

func TestRenderLicensePanelTagsTiers(t *testing.T) {
	c := Content{
		LicenseActive:  "- ترخيص ويندوز",
		LicenseExpired: "- ترخيص قديم",
	}
	v := Render(TypeMonthlyTechnical, c)
	sec := findSection(v, "licenses")
	if sec == nil {
		t.Fatal("license panel missing")
	}
	if len(sec.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(sec.Items))
	}
	if sec.Items[0].Tag != "active" || sec.Items[1].Tag != "expired" {
		t.Fatalf("tier tags wrong: %+v", sec.Items)
	}
	if sec.Items[0].Text != "ترخيص ويندوز" {
		t.Fatalf("bullet prefix not stripped at render time: %q", sec.Items[0].Text)
	}
}

func TestRenderUnknownEnumFallsBackToRawNeutral(t *testing.T) {
	c := Content{SystemStatus: "unknown_value"}
	v := Render(TypeVisitLog, c)
	sec := findSection(v, "status")
	if sec == nil {
		t.Fatal("status section missing")
	}
	f := sec.Fields[0]
	if f.Value != "unknown_value" {
		t.Fatalf("value = %q, want the raw stored string", f.Value)
	}
	if f.Tone != ToneNeutral {
		t.Fatalf("tone = %q, want neutral", f.Tone)
	}
}

func TestRenderKnownEnumLabels(t *testing.T) {
	c := Content{
		SystemStatus: SystemCritical,
		BackupStatus: BackupSuccess,
		Efficiency:   EfficiencyMedium,
		RiskLevel:    RiskHigh,
	}
	v := Render(TypeVisitLog, c)
	sec := findSection(v, "status")
	if sec == nil || len(sec.Fields) != 4 {
		t.Fatalf("expected 4 status fields, got %+v", sec)
	}
	tones := map[string]Tone{}
	for _, f := range sec.Fields {
		tones[f.Value] = f.Tone
	}
	if tones["حرج"] != ToneDanger || tones["ناجح"] != ToneSuccess ||
		tones["متوسطة"] != ToneWarning || tones["مرتفع"] != ToneDanger {
		t.Fatalf("label/tone table mismatch: %v", tones)
	}
}

func TestRenderOmitsEmptyPendingPanel(t *testing.T) {
	v := Render(TypeVisitLog, Content{})
	if findSection(v, "pending_tasks") != nil {
		t.Fatal("pending panel rendered for empty list")
	}

	v = Render(TypeVisitLog, Content{PendingTasks: "- مهمة (مؤجلة)"})
	sec := findSection(v, "pending_tasks")
	if sec == nil || len(sec.Items) != 1 {
		t.Fatalf("pending panel missing: %+v", sec)
	}
}

func TestRenderIncidentPlaceholders(t *testing.T) {
	v := Render(TypeIncident, Content{IncidentDetails: "انقطاع الشبكة"})

	details := findSection(v, "incident_details")
	if details == nil || details.Text != "انقطاع الشبكة" {
		t.Fatalf("incident details not rendered: %+v", details)
	}
	cause := findSection(v, "root_cause")
	if cause == nil || cause.Text != PlaceholderNoData {
		t.Fatalf("absent field should render the placeholder, got %+v", cause)
	}
}

func TestRenderClampsGauge(t *testing.T) {
	v := Render(TypeVisitLog, Content{HealthScore: 150})
	sec := findSection(v, "health")
	if sec == nil || sec.Gauge == nil {
		t.Fatal("health gauge missing")
	}
	if sec.Gauge.Value != 100 {
		t.Fatalf("gauge = %d, want clamp to 100", sec.Gauge.Value)
	}

	v = Render(TypeMonthlyTechnical, Content{HealthScore: -5})
	if g := findSection(v, "health").Gauge.Value; g != 0 {
		t.Fatalf("gauge = %d, want clamp to 0", g)
	}
}

func TestRenderMonthlySections(t *testing.T) {
	c := Build(BuildInput{Type: TypeMonthlyTechnical, ClientID: "c1", Now: testNow}).Flatten()
	v := Render(TypeMonthlyTechnical, c)

	ach := findSection(v, "key_achievements")
	if ach == nil || len(ach.Items) != 3 {
		t.Fatalf("expected the 3 boilerplate achievements, got %+v", ach)
	}
	if findSection(v, "licenses") == nil {
		t.Fatal("license panel missing despite default active tier")
	}
	if findSection(v, "incident_details") != nil {
		t.Fatal("incident section rendered inside a monthly report")
	}
}

func TestWritePrintHTML(t *testing.T) {
	c := Build(visitInput([]Task{
		{ID: "t1", BookingID: "booking-1", Text: "فحص الخادم", Status: TaskCompleted},
	})).Flatten()

	var buf bytes.Buffer
	err := WritePrintHTML(&buf, PrintData{
		View:       Render(TypeVisitLog, c),
		ClientName: "شركة الاختبار",
		Month:      "يناير 2026",
	})
	if err != nil {
		t.Fatalf("print render failed: %v", err)
	}
	html := buf.String()
	if !strings.Contains(html, `dir="rtl"`) {
		t.Error("printed page must be RTL")
	}
	if !strings.Contains(html, "فحص الخادم") {
		t.Error("completed task missing from printed page")
	}
	if !strings.Contains(html, "شركة الاختبار") {
		t.Error("client name missing from printed page")
	}
}

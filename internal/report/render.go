package report

// ── Report Renderer ──────────────────────────────────────────────
// Render maps a persisted content document into a view tree, independent of
// how the document was produced. It is a pure function: it never mutates the
// content and returns equal output for equal input. Missing optional fields
// render as omitted sections or placeholder text — absence of data is an
// expected state here, never an error.

// Tone is the visual emphasis attached to a rendered value.
type Tone string

const (
	ToneSuccess Tone = "success"
	ToneWarning Tone = "warning"
	ToneDanger  Tone = "danger"
	ToneInfo    Tone = "info"
	ToneNeutral Tone = "neutral"
)

// View is the root of a rendered report.
type View struct {
	Type     Type      `json:"type"`
	Title    string    `json:"title"`
	Sections []Section `json:"sections"`
}

// Section is one panel of the rendered report. Exactly one of Fields,
// Items, Gauge, or Text is populated, depending on the panel kind.
type Section struct {
	Key    string  `json:"key"`
	Title  string  `json:"title"`
	Fields []Field `json:"fields,omitempty"`
	Items  []Item  `json:"items,omitempty"`
	Gauge  *Gauge  `json:"gauge,omitempty"`
	Text   string  `json:"text,omitempty"`
}

// Field is a labeled value with visual emphasis.
type Field struct {
	Label string `json:"label"`
	Value string `json:"value"`
	Tone  Tone   `json:"tone"`
}

// Item is one entry of a rendered list. Tag distinguishes sub-groups inside
// a combined panel (license tiers).
type Item struct {
	Text string `json:"text"`
	Tag  string `json:"tag,omitempty"`
}

// Gauge is a circular proportion indicator.
type Gauge struct {
	Value int `json:"value"` // clamped to [0,100]
}

// ── Static Label Tables ──────────────────────────────────────────
// Enum-valued fields map to a fixed label/tone pair. Unrecognized values
// fall back to the raw stored string with neutral emphasis.

type display struct {
	Label string
	Tone  Tone
}

var systemStatusDisplay = map[string]display{
	SystemStable:      {"مستقر", ToneSuccess},
	SystemCritical:    {"حرج", ToneDanger},
	SystemMaintenance: {"تحت الصيانة", ToneWarning},
	SystemNoServer:    {"لا يوجد خادم", ToneNeutral},
	SystemUnstable:    {"غير مستقر", ToneWarning},
}

var backupStatusDisplay = map[string]display{
	BackupSuccess:      {"ناجح", ToneSuccess},
	BackupFailed:       {"فاشل", ToneDanger},
	BackupPending:      {"قيد التنفيذ", ToneWarning},
	BackupNotPerformed: {"لم يتم", ToneNeutral},
}

var efficiencyDisplay = map[string]display{
	EfficiencyHigh:   {"عالية", ToneSuccess},
	EfficiencyMedium: {"متوسطة", ToneWarning},
	EfficiencyLow:    {"منخفضة", ToneDanger},
}

var riskLevelDisplay = map[string]display{
	RiskLow:      {"منخفض", ToneSuccess},
	RiskMedium:   {"متوسط", ToneWarning},
	RiskHigh:     {"مرتفع", ToneDanger},
	RiskCritical: {"حرج", ToneDanger},
}

func lookupDisplay(table map[string]display, raw string) display {
	if d, ok := table[raw]; ok {
		return d
	}
	return display{Label: raw, Tone: ToneNeutral}
}

// ── Render ───────────────────────────────────────────────────────

// Render builds the view tree for a stored report.
func Render(t Type, c Content) View {
	v := View{
		Type:  t,
		Title: c.Summary,
	}
	if v.Title == "" {
		v.Title = PlaceholderNoData
	}

	v.Sections = append(v.Sections, overviewSection(c)...)

	switch t {
	case TypeVisitLog:
		v.Sections = append(v.Sections, healthSections(c)...)
		v.Sections = append(v.Sections, listSection("completed_tasks", "المهام المنجزة", c.CompletedTasks)...)
		v.Sections = append(v.Sections, pendingSection(c)...)
		v.Sections = append(v.Sections, listSection("recommendations", "التوصيات", c.Recommendations)...)
		v.Sections = append(v.Sections, warningsSection(c)...)
		v.Sections = append(v.Sections, licenseSection(c)...)

	case TypeMonthlyTechnical:
		v.Sections = append(v.Sections, healthSections(c)...)
		v.Sections = append(v.Sections, listSection("key_achievements", "أبرز الإنجازات", c.KeyAchievements)...)
		v.Sections = append(v.Sections, pendingSection(c)...)
		v.Sections = append(v.Sections, listSection("strategic_recommendations", "التوصيات الاستراتيجية", c.StrategicRecommendations)...)
		v.Sections = append(v.Sections, warningsSection(c)...)
		v.Sections = append(v.Sections, licenseSection(c)...)

	case TypeIncident:
		v.Sections = append(v.Sections,
			textSection("incident_details", "تفاصيل العطل", c.IncidentDetails),
			textSection("root_cause", "السبب الجذري", c.RootCause),
			textSection("resolution", "الإجراء المتخذ", c.Resolution),
			textSection("prevention", "إجراءات الوقاية", c.Prevention),
		)
		v.Sections = append(v.Sections, warningsSection(c)...)
	}

	return v
}

// overviewSection lists the visit metadata fields that are present.
func overviewSection(c Content) []Section {
	var fields []Field
	if c.TechnicianName != "" {
		fields = append(fields, Field{Label: "اسم الفني", Value: c.TechnicianName, Tone: ToneInfo})
	}
	if c.Duration != "" {
		fields = append(fields, Field{Label: "مدة الزيارة", Value: c.Duration, Tone: ToneInfo})
	}
	if c.VisitLocation != "" {
		fields = append(fields, Field{Label: "موقع الزيارة", Value: c.VisitLocation, Tone: ToneInfo})
	}
	if len(fields) == 0 {
		return nil
	}
	return []Section{{Key: "overview", Title: "بيانات الزيارة", Fields: fields}}
}

// healthSections renders the health gauge and the enum status fields.
func healthSections(c Content) []Section {
	sections := []Section{{
		Key:   "health",
		Title: "الحالة العامة للأنظمة",
		Gauge: &Gauge{Value: clampScore(c.HealthScore)},
	}}

	var fields []Field
	if c.SystemStatus != "" {
		d := lookupDisplay(systemStatusDisplay, c.SystemStatus)
		fields = append(fields, Field{Label: "حالة النظام", Value: d.Label, Tone: d.Tone})
	}
	if c.BackupStatus != "" {
		d := lookupDisplay(backupStatusDisplay, c.BackupStatus)
		fields = append(fields, Field{Label: "النسخ الاحتياطي", Value: d.Label, Tone: d.Tone})
	}
	if c.Efficiency != "" {
		d := lookupDisplay(efficiencyDisplay, c.Efficiency)
		fields = append(fields, Field{Label: "الكفاءة", Value: d.Label, Tone: d.Tone})
	}
	if c.RiskLevel != "" {
		d := lookupDisplay(riskLevelDisplay, c.RiskLevel)
		fields = append(fields, Field{Label: "مستوى الخطورة", Value: d.Label, Tone: d.Tone})
	}
	if len(fields) > 0 {
		sections = append(sections, Section{Key: "status", Title: "مؤشرات التشغيل", Fields: fields})
	}

	return sections
}

// listSection renders a newline-list field as an item panel, omitted when
// the parsed list is empty.
func listSection(key, title, raw string) []Section {
	items := ParseList(raw)
	if len(items) == 0 {
		return nil
	}
	rendered := make([]Item, 0, len(items))
	for _, it := range items {
		rendered = append(rendered, Item{Text: StripBullet(it)})
	}
	return []Section{{Key: key, Title: title, Items: rendered}}
}

func pendingSection(c Content) []Section {
	return listSection("pending_tasks", "المهام المعلقة", c.PendingTasks)
}

func warningsSection(c Content) []Section {
	return listSection("warnings", "تنبيهات", c.Warnings)
}

// licenseSection combines the three license tiers into one panel. The panel
// is omitted entirely when every tier is empty.
func licenseSection(c Content) []Section {
	tiers := []struct {
		tag string
		raw string
	}{
		{"active", c.LicenseActive},
		{"expiring", c.LicenseExpiring},
		{"expired", c.LicenseExpired},
	}

	var items []Item
	for _, tier := range tiers {
		for _, it := range ParseList(tier.raw) {
			items = append(items, Item{Text: StripBullet(it), Tag: tier.tag})
		}
	}
	if len(items) == 0 {
		return nil
	}
	return []Section{{Key: "licenses", Title: "التراخيص", Items: items}}
}

// textSection renders a free-text field, substituting the placeholder when
// the field is absent.
func textSection(key, title, text string) Section {
	if text == "" {
		text = PlaceholderNoData
	}
	return Section{Key: key, Title: title, Text: text}
}

// clampScore bounds a health score to [0,100] for display. The builder is
// expected to already produce values in range.
func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

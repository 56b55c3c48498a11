package report

import (
	"fmt"
	"time"
)

// ── Arabic Display Formatting ────────────────────────────────────
// The console and its printed reports are Arabic-facing. All derived display
// strings are produced here so the builder and renderer agree on them.

var arabicMonths = [...]string{
	"يناير", "فبراير", "مارس", "أبريل", "مايو", "يونيو",
	"يوليو", "أغسطس", "سبتمبر", "أكتوبر", "نوفمبر", "ديسمبر",
}

var arabicWeekdays = [...]string{
	"الأحد", "الاثنين", "الثلاثاء", "الأربعاء", "الخميس", "الجمعة", "السبت",
}

// FormatLongDate renders a date in the long localized style used in report
// summaries, e.g. "الاثنين، 2 يناير 2026".
func FormatLongDate(t time.Time) string {
	return fmt.Sprintf("%s، %d %s %d",
		arabicWeekdays[int(t.Weekday())], t.Day(), arabicMonths[int(t.Month())-1], t.Year())
}

// FormatMonthYear renders "يناير 2026" for monthly report summaries.
func FormatMonthYear(t time.Time) string {
	return fmt.Sprintf("%s %d", arabicMonths[int(t.Month())-1], t.Year())
}

// FormatDuration renders a visit duration as free text, e.g. "2 ساعة و 30 دقيقة".
func FormatDuration(hours, minutes int) string {
	return fmt.Sprintf("%d ساعة و %d دقيقة", hours, minutes)
}

// ── Fixed Labels & Boilerplate ───────────────────────────────────

const (
	summaryVisitLabel    = "تقرير زيارة"
	summaryMonthlyLabel  = "التقرير الفني الشهري"
	summaryIncidentLabel = "تقرير عطل"

	suffixPostponed = " (مؤجلة)"
	suffixPending   = " (قيد الانتظار)"

	// PlaceholderNoData is rendered for absent optional text fields.
	PlaceholderNoData = "لا توجد بيانات"
)

// defaultAchievements is the fixed three-line achievement text substituted
// when no completed tasks fall within the reported month.
const defaultAchievements = "- متابعة دورية لجميع الأنظمة والخوادم\n" +
	"- التأكد من سلامة النسخ الاحتياطية اليومية\n" +
	"- معالجة الأعطال الفنية الطارئة فور حدوثها"

// defaultLicenseActive is the two-line default for the active license tier
// on monthly reports.
const defaultLicenseActive = "- تراخيص أنظمة التشغيل مفعلة\n" +
	"- برنامج الحماية مفعل"

package report

import (
	"html/template"
	"io"
)

// ── Print Rendering ──────────────────────────────────────────────
// The console's only export path is the native print dialog. WritePrintHTML
// walks a rendered view into a self-contained RTL page sized for printing;
// no PDF bytes are ever produced programmatically.

// PrintData is everything the printed page needs beyond the view itself.
type PrintData struct {
	View       View
	ClientName string
	Month      string
	CreatedAt  string
	LogoData   string  // base64 data URI payload, empty when no logo is set
	LogoSize   float64 // scale multiplier from the console settings
}

var printTmpl = template.Must(template.New("print").Parse(`<!DOCTYPE html>
<html lang="ar" dir="rtl">
<head>
<meta charset="utf-8">
<title>{{.View.Title}}</title>
<style>
  body { font-family: "Tahoma", "Segoe UI", sans-serif; margin: 24px; color: #1a1a2e; }
  header { display: flex; justify-content: space-between; align-items: center; border-bottom: 2px solid #1a1a2e; padding-bottom: 12px; }
  header img { height: calc(48px * {{printf "%.2f" .LogoSize}}); }
  h1 { font-size: 20px; margin: 0; }
  .meta { color: #555; font-size: 12px; }
  section { margin-top: 18px; page-break-inside: avoid; }
  section h2 { font-size: 15px; border-right: 4px solid #1a1a2e; padding-right: 8px; }
  table { width: 100%; border-collapse: collapse; }
  td { padding: 4px 8px; font-size: 13px; }
  ul { margin: 4px 0; padding-right: 20px; }
  li { font-size: 13px; margin: 2px 0; }
  .gauge { font-size: 28px; font-weight: bold; }
  .tone-success { color: #1c7c43; }
  .tone-warning { color: #b97a00; }
  .tone-danger { color: #c0262d; }
  .tone-info { color: #1d5fa7; }
  .tone-neutral { color: #555; }
  .tag { font-size: 11px; color: #777; }
  @media print { body { margin: 0; } }
</style>
</head>
<body onload="window.print()">
<header>
  <div>
    <h1>{{.View.Title}}</h1>
    <div class="meta">{{.ClientName}}{{if .Month}} — {{.Month}}{{end}}{{if .CreatedAt}} — {{.CreatedAt}}{{end}}</div>
  </div>
  {{if .LogoData}}<img src="data:image/png;base64,{{.LogoData}}" alt="">{{end}}
</header>
{{range .View.Sections}}
<section>
  <h2>{{.Title}}</h2>
  {{if .Gauge}}<div class="gauge">{{.Gauge.Value}}%</div>{{end}}
  {{if .Fields}}
  <table>
    {{range .Fields}}<tr><td>{{.Label}}</td><td class="tone-{{.Tone}}">{{.Value}}</td></tr>
    {{end}}
  </table>
  {{end}}
  {{if .Items}}
  <ul>
    {{range .Items}}<li>{{.Text}}{{if .Tag}} <span class="tag">{{.Tag}}</span>{{end}}</li>
    {{end}}
  </ul>
  {{end}}
  {{if .Text}}<p>{{.Text}}</p>{{end}}
</section>
{{end}}
</body>
</html>
`))

// WritePrintHTML writes the print-ready page for a rendered report.
func WritePrintHTML(w io.Writer, data PrintData) error {
	if data.LogoSize <= 0 {
		data.LogoSize = 1
	}
	return printTmpl.Execute(w, data)
}

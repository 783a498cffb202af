package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"time"
)

// WriteCSV writes headers and rows with RFC 4180 quoting: fields holding a
// comma, quote or newline are quoted and inner quotes doubled.
func WriteCSV(w io.Writer, headers []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	if len(headers) > 0 {
		if err := cw.Write(headers); err != nil {
			return fmt.Errorf("export: csv header: %w", err)
		}
	}
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("export: csv rows: %w", err)
	}
	return nil
}

// WriteJSON pretty-prints v with two-space indentation.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("export: json: %w", err)
	}
	return nil
}

var printable = template.Must(template.New("printable").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
  body { font-family: -apple-system, "Segoe UI", Helvetica, Arial, sans-serif; margin: 24px; color: #1f2937; }
  h1 { font-size: 20px; margin: 0 0 4px; }
  .generated { color: #6b7280; font-size: 12px; margin-bottom: 16px; }
  table { border-collapse: collapse; width: 100%; font-size: 12px; }
  th, td { border: 1px solid #d1d5db; padding: 6px 8px; text-align: left; }
  th { background: #f3f4f6; }
  tr:nth-child(even) td { background: #fafafa; }
  @media print { .no-print { display: none; } body { margin: 0; } }
</style>
</head>
<body>
<button class="no-print" onclick="window.print()">Print / Save as PDF</button>
<h1>{{.Title}}</h1>
<div class="generated">Generated {{.Generated}}</div>
<table>
<thead><tr>{{range .Headers}}<th>{{.}}</th>{{end}}</tr></thead>
<tbody>
{{range .Rows}}<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>
{{end}}</tbody>
</table>
</body>
</html>
`))

// WritePrintableHTML renders a self-contained HTML page the browser can print
// to PDF. All cell text is escaped.
func WritePrintableHTML(w io.Writer, title string, headers []string, rows [][]string) error {
	return writePrintableHTML(w, title, headers, rows, time.Now())
}

func writePrintableHTML(w io.Writer, title string, headers []string, rows [][]string, now time.Time) error {
	err := printable.Execute(w, struct {
		Title     string
		Generated string
		Headers   []string
		Rows      [][]string
	}{title, now.Format("Jan 2, 2006 3:04 PM"), headers, rows})
	if err != nil {
		return fmt.Errorf("export: html: %w", err)
	}
	return nil
}

// Package export renders tabular data as CSV, JSON or a printable HTML page
// and optionally archives the result to S3.
package export

import (
	"fmt"
	"strings"
	"time"
)

// Format is an export file type.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	// FormatPDF is a printable HTML page; the user prints it to PDF.
	FormatPDF Format = "pdf"
)

// ParseFormat accepts csv, json, pdf or html (an alias of pdf).
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	case "pdf", "html":
		return FormatPDF, nil
	}
	return "", fmt.Errorf("export: unknown format %q (want csv, json or pdf)", s)
}

// ContentType is the MIME type of the rendered file.
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatJSON:
		return "application/json"
	default:
		return "text/html; charset=utf-8"
	}
}

// Extension is the file extension, without the dot.
func (f Format) Extension() string {
	if f == FormatPDF {
		return "html"
	}
	return string(f)
}

// Filename builds "<name>-<YYYY-MM-DD>.<ext>".
func Filename(name string, f Format, at time.Time) string {
	name = strings.ToLower(strings.Join(strings.Fields(name), "-"))
	return fmt.Sprintf("%s-%s.%s", name, at.Format("2006-01-02"), f.Extension())
}

package reports

import (
	"fmt"
	"strconv"
)

// Table flattens a report into headers and rows for CSV and printable export.
func Table(r Report) (headers []string, rows [][]string) {
	switch r := r.(type) {
	case *RevenueReport:
		headers = []string{"Date", "Orders", "Amount"}
		for _, d := range r.ByDay {
			rows = append(rows, []string{d.Date, strconv.Itoa(d.Orders), FormatCents(d.AmountCents)})
		}
		for _, m := range r.ByMethod {
			rows = append(rows, []string{"Method: " + m.Method, "", FormatCents(m.AmountCents)})
		}
		rows = append(rows,
			[]string{"Gross", strconv.Itoa(r.OrderCount), FormatCents(r.GrossCents)},
			[]string{"Refunds", "", FormatCents(-r.RefundsCents)},
			[]string{"Net", "", FormatCents(r.NetCents)},
		)
	case *AppointmentReport:
		headers = []string{"Group", "Name", "Count"}
		for _, s := range r.ByService {
			rows = append(rows, []string{"Service", s.Name, strconv.Itoa(s.Count)})
		}
		for _, p := range r.ByProvider {
			rows = append(rows, []string{"Provider", p.Name, strconv.Itoa(p.Count)})
		}
		rows = append(rows,
			[]string{"Total", "", strconv.Itoa(r.Total)},
			[]string{"Completed", "", strconv.Itoa(r.Completed)},
			[]string{"Cancelled", "", strconv.Itoa(r.Cancelled)},
			[]string{"No-shows", "", strconv.Itoa(r.NoShows)},
		)
	case *ClientReport:
		headers = []string{"Client ID", "Name", "Visits", "Spent"}
		for _, c := range r.TopClients {
			rows = append(rows, []string{c.ClientID, c.Name, strconv.Itoa(c.Visits), FormatCents(c.SpentCents)})
		}
		rows = append(rows,
			[]string{"", "Total clients", strconv.Itoa(r.TotalClients), ""},
			[]string{"", "New clients", strconv.Itoa(r.NewClients), ""},
			[]string{"", "Returning clients", strconv.Itoa(r.ReturningClients), ""},
			[]string{"", "Retention", fmt.Sprintf("%.1f%%", r.RetentionRate*100), ""},
		)
	case *ProductReport:
		headers = []string{"Product ID", "Name", "Units", "Revenue"}
		for _, p := range r.TopProducts {
			rows = append(rows, []string{p.ProductID, p.Name, strconv.Itoa(p.Units), FormatCents(p.RevenueCents)})
		}
		rows = append(rows,
			[]string{"", "Total", strconv.Itoa(r.UnitsSold), FormatCents(r.RevenueCents)},
			[]string{"", "Low stock items", strconv.Itoa(r.LowStockCount), ""},
		)
	}
	return headers, rows
}

// FormatCents renders cents as a decimal amount, e.g. -1234 -> "-12.34".
func FormatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

// Title is the human heading for a report.
func Title(r Report) string {
	var name string
	switch r.Kind() {
	case KindRevenue:
		name = "Revenue Report"
	case KindAppointments:
		name = "Appointments Report"
	case KindClients:
		name = "Client Report"
	case KindProducts:
		name = "Product Report"
	default:
		name = "Report"
	}
	return fmt.Sprintf("%s (%s)", name, r.Period())
}

package mockapi

import (
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/wolfman30/clinicdesk/internal/reports"
)

const topN = 5

// report computes one analytics report from the stored records.
func (s *server) report(w http.ResponseWriter, r *http.Request) {
	kind, err := reports.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_REPORT", err.Error(), nil)
		return
	}
	rng, err := s.reportRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return
	}

	var out reports.Report
	switch kind {
	case reports.KindRevenue:
		out = s.revenueReport(rng)
	case reports.KindAppointments:
		out = s.appointmentReport(rng)
	case reports.KindClients:
		out = s.clientReport(rng)
	case reports.KindProducts:
		out = s.productReport(rng)
	}
	writeData(w, http.StatusOK, out, nil)
}

func (s *server) reportRange(r *http.Request) (reports.DateRange, error) {
	q := r.URL.Query()
	if q.Get("startDate") == "" && q.Get("endDate") == "" {
		return reports.RangeFor(reports.PresetLast30, s.now(), time.UTC)
	}
	start, okStart := parseInstant(q.Get("startDate"))
	end, okEnd := parseInstant(q.Get("endDate"))
	if !okStart || !okEnd {
		return reports.DateRange{}, fmt.Errorf("startDate and endDate must be YYYY-MM-DD")
	}
	return reports.NewDateRange(start, end, time.UTC)
}

// within reports whether t falls on one of the range's days.
func within(rng reports.DateRange, t time.Time) bool {
	return !t.Before(rng.Start) && t.Before(rng.End.AddDate(0, 0, 1))
}

func (s *server) inRange(collection string, rng reports.DateRange) []Record {
	var out []Record
	for _, rec := range s.store.All(collection) {
		if t, ok := eventTime(rec); ok && within(rng, t) {
			out = append(out, rec)
		}
	}
	return out
}

func settled(p Record) bool {
	switch p.String("status") {
	case "completed", "refunded", "partially_refunded":
		return true
	}
	return false
}

func (s *server) revenueReport(rng reports.DateRange) *reports.RevenueReport {
	rep := &reports.RevenueReport{ByDay: []reports.RevenueDay{}, ByMethod: []reports.MethodAmount{}}
	rep.Type, rep.Range = reports.KindRevenue, rng

	days := map[string]*reports.RevenueDay{}
	dayOrders := map[string]map[string]bool{}
	methods := map[string]int64{}
	orders := map[string]bool{}
	for _, p := range s.inRange("payments", rng) {
		if !settled(p) {
			continue
		}
		amount := p.Int("amountCents")
		rep.GrossCents += amount
		rep.RefundsCents += p.Int("refundedCents")
		orders[p.String("orderId")] = true
		methods[p.String("method")] += amount

		t, _ := eventTime(p)
		key := t.UTC().Format("2006-01-02")
		d, ok := days[key]
		if !ok {
			d = &reports.RevenueDay{Date: key}
			days[key] = d
			dayOrders[key] = map[string]bool{}
		}
		d.AmountCents += amount
		if !dayOrders[key][p.String("orderId")] {
			dayOrders[key][p.String("orderId")] = true
			d.Orders++
		}
	}
	rep.NetCents = rep.GrossCents - rep.RefundsCents
	rep.OrderCount = len(orders)
	if rep.OrderCount > 0 {
		rep.AverageCents = rep.GrossCents / int64(rep.OrderCount)
	}
	for _, d := range days {
		rep.ByDay = append(rep.ByDay, *d)
	}
	sort.Slice(rep.ByDay, func(i, j int) bool { return rep.ByDay[i].Date < rep.ByDay[j].Date })
	for m, amount := range methods {
		rep.ByMethod = append(rep.ByMethod, reports.MethodAmount{Method: m, AmountCents: amount})
	}
	sort.Slice(rep.ByMethod, func(i, j int) bool { return rep.ByMethod[i].AmountCents > rep.ByMethod[j].AmountCents })
	return rep
}

func (s *server) appointmentReport(rng reports.DateRange) *reports.AppointmentReport {
	rep := &reports.AppointmentReport{}
	rep.Type, rep.Range = reports.KindAppointments, rng

	services := map[string]int{}
	providers := map[string]int{}
	for _, a := range s.inRange("appointments", rng) {
		rep.Total++
		switch a.String("status") {
		case "completed":
			rep.Completed++
		case "cancelled":
			rep.Cancelled++
		case "no_show":
			rep.NoShows++
		}
		services[a.String("service")]++
		if id := a.String("providerId"); id != "" {
			providers[s.userName(id)]++
		}
	}
	rep.ByService = rankCounts(services)
	rep.ByProvider = rankCounts(providers)
	return rep
}

func (s *server) clientReport(rng reports.DateRange) *reports.ClientReport {
	rep := &reports.ClientReport{TopClients: []reports.TopClient{}}
	rep.Type, rep.Range = reports.KindClients, rng

	clients := s.store.All("clients")
	rep.TotalClients = len(clients)

	visits := map[string]int{}
	for _, a := range s.inRange("appointments", rng) {
		if a.String("status") == "completed" {
			visits[a.String("clientId")]++
		}
	}
	spent := map[string]int64{}
	for _, p := range s.inRange("payments", rng) {
		if settled(p) {
			spent[p.String("clientId")] += p.Int("amountCents") - p.Int("refundedCents")
		}
	}

	active := 0
	for _, c := range clients {
		created, _ := c.Time("createdAt")
		if within(rng, created) {
			rep.NewClients++
		}
		if visits[c.ID()] == 0 && spent[c.ID()] == 0 {
			continue
		}
		active++
		if created.Before(rng.Start) {
			rep.ReturningClients++
		}
		rep.TopClients = append(rep.TopClients, reports.TopClient{
			ClientID:   c.ID(),
			Name:       c.String("firstName") + " " + c.String("lastName"),
			Visits:     visits[c.ID()],
			SpentCents: spent[c.ID()],
		})
	}
	if active > 0 {
		rep.RetentionRate = float64(rep.ReturningClients) / float64(active)
	}
	sort.SliceStable(rep.TopClients, func(i, j int) bool {
		return rep.TopClients[i].SpentCents > rep.TopClients[j].SpentCents
	})
	if len(rep.TopClients) > topN {
		rep.TopClients = rep.TopClients[:topN]
	}
	return rep
}

func (s *server) productReport(rng reports.DateRange) *reports.ProductReport {
	rep := &reports.ProductReport{TopProducts: []reports.ProductSales{}}
	rep.Type, rep.Range = reports.KindProducts, rng

	sales := map[string]*reports.ProductSales{}
	for _, o := range s.inRange("orders", rng) {
		if o.String("status") == "cancelled" {
			continue
		}
		items, _ := o["items"].([]any)
		for _, raw := range items {
			m, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			item := Record(m)
			id := item.String("productId")
			if id == "" {
				continue
			}
			ps, ok := sales[id]
			if !ok {
				ps = &reports.ProductSales{ProductID: id, Name: item.String("name")}
				sales[id] = ps
			}
			ps.Units += int(item.Int("quantity"))
			ps.RevenueCents += item.Int("totalCents")
			rep.UnitsSold += int(item.Int("quantity"))
			rep.RevenueCents += item.Int("totalCents")
		}
	}
	for _, p := range s.store.All("products") {
		if p.Int("stockQuantity") <= p.Int("reorderLevel") {
			rep.LowStockCount++
		}
	}
	for _, ps := range sales {
		rep.TopProducts = append(rep.TopProducts, *ps)
	}
	sort.Slice(rep.TopProducts, func(i, j int) bool {
		if rep.TopProducts[i].RevenueCents != rep.TopProducts[j].RevenueCents {
			return rep.TopProducts[i].RevenueCents > rep.TopProducts[j].RevenueCents
		}
		return rep.TopProducts[i].ProductID < rep.TopProducts[j].ProductID
	})
	if len(rep.TopProducts) > topN {
		rep.TopProducts = rep.TopProducts[:topN]
	}
	return rep
}

// billing lists a client's payments as billing entries.
func (s *server) billing(w http.ResponseWriter, r *http.Request, client Record) {
	q := ParseListQuery(r.URL.Query())
	q.Filters = map[string]string{"clientId": client.ID()}
	payments, p := s.store.Find("payments", q)

	entries := make([]map[string]any, 0, len(payments))
	for _, pay := range payments {
		date, _ := eventTime(pay)
		entries = append(entries, map[string]any{
			"id":          pay.ID(),
			"orderId":     pay.String("orderId"),
			"description": fmt.Sprintf("Payment (%s)", pay.String("method")),
			"amountCents": pay.Int("amountCents") - pay.Int("refundedCents"),
			"status":      pay.String("status"),
			"date":        date.UTC().Format(time.RFC3339),
		})
	}
	writeData(w, http.StatusOK, entries, &p)
}

func (s *server) userName(id string) string {
	if u, ok := s.store.Get("users", id); ok {
		return u.String("firstName") + " " + u.String("lastName")
	}
	return id
}

func rankCounts(counts map[string]int) []reports.ServiceCount {
	out := make([]reports.ServiceCount, 0, len(counts))
	for name, n := range counts {
		out = append(out, reports.ServiceCount{Name: name, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return out
}

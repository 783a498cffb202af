package mockapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/wolfman30/clinicdesk/internal/clinic"
)

const (
	defaultSlotMinutes   = 30
	availabilityStep     = time.Hour
	maxAvailabilityRange = 31 * 24 * time.Hour
)

type interval struct {
	start, end time.Time
	id         string
}

func (i interval) overlaps(start, end time.Time) bool {
	return i.start.Before(end) && start.Before(i.end)
}

// busy returns the active appointments that match keep.
func (s *server) busy(keep func(Record) bool) []interval {
	var out []interval
	for _, a := range s.store.All("appointments") {
		if !activeStatus(a.String("status")) || !keep(a) {
			continue
		}
		start, ok1 := a.Time("startTime")
		end, ok2 := a.Time("endTime")
		if ok1 && ok2 {
			out = append(out, interval{start: start, end: end, id: a.ID()})
		}
	}
	return out
}

// currentClinic decodes the clinic singleton, defaulting to weekday hours.
func (s *server) currentClinic() clinic.Clinic {
	c := clinic.Clinic{Timezone: "UTC", BusinessHours: clinic.DefaultBusinessHours()}
	if all := s.store.All("clinic"); len(all) > 0 {
		if raw, err := json.Marshal(all[0]); err == nil {
			_ = json.Unmarshal(raw, &c)
		}
	}
	return c
}

// slots lists free slots of the requested length inside business hours.
func (s *server) slots(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	c := s.currentClinic()
	loc := c.Location()

	day, err := time.ParseInLocation("2006-01-02", q.Get("date"), loc)
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "date must be YYYY-MM-DD", map[string]any{"field": "date"})
		return
	}
	minutes := atoiDefault(q.Get("duration"), defaultSlotMinutes)
	if minutes <= 0 {
		minutes = defaultSlotMinutes
	}
	length := time.Duration(minutes) * time.Minute
	providerID := q.Get("providerId")

	slots := []map[string]any{}
	open, closing, ok := c.OpeningHours(day.Add(12 * time.Hour))
	if !ok {
		writeData(w, http.StatusOK, slots, nil)
		return
	}
	taken := s.busy(func(a Record) bool {
		return providerID == "" || a.String("providerId") == providerID
	})
	for start := open; !start.Add(length).After(closing); start = start.Add(length) {
		end := start.Add(length)
		free := true
		for _, b := range taken {
			if b.overlaps(start, end) {
				free = false
				break
			}
		}
		if !free {
			continue
		}
		slot := map[string]any{
			"start": start.UTC().Format(time.RFC3339),
			"end":   end.UTC().Format(time.RFC3339),
		}
		if providerID != "" {
			slot["providerId"] = providerID
		}
		slots = append(slots, slot)
	}
	writeData(w, http.StatusOK, slots, nil)
}

// availability splits [from, to) into hourly windows for one bookable
// resource, marking the windows an appointment holds.
func (s *server) availability(w http.ResponseWriter, r *http.Request, res Record) {
	from, okFrom := parseInstant(r.URL.Query().Get("from"))
	to, okTo := parseInstant(r.URL.Query().Get("to"))
	if !okFrom || !okTo || !to.After(from) {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "from and to must form a non-empty range", nil)
		return
	}
	if to.Sub(from) > maxAvailabilityRange {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "range may not exceed 31 days", nil)
		return
	}

	taken := s.busy(func(a Record) bool { return a.String("resourceId") == res.ID() })
	windows := []map[string]any{}
	for start := from; start.Before(to); start = start.Add(availabilityStep) {
		end := start.Add(availabilityStep)
		if end.After(to) {
			end = to
		}
		window := map[string]any{
			"start":     start.UTC().Format(time.RFC3339),
			"end":       end.UTC().Format(time.RFC3339),
			"available": res.String("status") == "available",
		}
		for _, b := range taken {
			if b.overlaps(start, end) {
				window["available"] = false
				window["appointmentId"] = b.id
				break
			}
		}
		windows = append(windows, window)
	}
	writeData(w, http.StatusOK, windows, nil)
}

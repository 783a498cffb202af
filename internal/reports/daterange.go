package reports

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/wolfman30/clinicdesk/internal/apiclient"
)

// Preset names a common reporting window.
type Preset string

const (
	PresetToday     Preset = "today"
	PresetLast7     Preset = "last7"
	PresetLast30    Preset = "last30"
	PresetThisMonth Preset = "thisMonth"
	PresetLastMonth Preset = "lastMonth"
	PresetYTD       Preset = "ytd"
)

// Presets lists every preset in display order.
var Presets = []Preset{PresetToday, PresetLast7, PresetLast30, PresetThisMonth, PresetLastMonth, PresetYTD}

// DateRange is an inclusive range of calendar days.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewDateRange truncates both ends to midnight in loc.
func NewDateRange(start, end time.Time, loc *time.Location) (DateRange, error) {
	if loc == nil {
		loc = time.UTC
	}
	r := DateRange{Start: midnight(start, loc), End: midnight(end, loc)}
	if r.End.Before(r.Start) {
		return DateRange{}, fmt.Errorf("reports: range end %s before start %s", apiclient.Date(r.End), apiclient.Date(r.Start))
	}
	return r, nil
}

// RangeFor resolves a preset relative to now in the clinic's time zone.
func RangeFor(p Preset, now time.Time, loc *time.Location) (DateRange, error) {
	if loc == nil {
		loc = time.UTC
	}
	today := midnight(now, loc)
	switch Preset(strings.TrimSpace(string(p))) {
	case PresetToday:
		return DateRange{Start: today, End: today}, nil
	case PresetLast7:
		return DateRange{Start: today.AddDate(0, 0, -6), End: today}, nil
	case PresetLast30:
		return DateRange{Start: today.AddDate(0, 0, -29), End: today}, nil
	case PresetThisMonth:
		return DateRange{Start: firstOfMonth(today), End: today}, nil
	case PresetLastMonth:
		first := firstOfMonth(today)
		return DateRange{Start: first.AddDate(0, -1, 0), End: first.AddDate(0, 0, -1)}, nil
	case PresetYTD:
		return DateRange{Start: time.Date(today.Year(), time.January, 1, 0, 0, 0, 0, loc), End: today}, nil
	}
	return DateRange{}, fmt.Errorf("reports: unknown range preset %q", p)
}

// Days is the number of calendar days in the range, counting both ends.
func (r DateRange) Days() int {
	if r.Start.IsZero() || r.End.Before(r.Start) {
		return 0
	}
	days := 0
	for d := r.Start; !d.After(r.End); d = d.AddDate(0, 0, 1) {
		days++
	}
	return days
}

// Params renders startDate/endDate.
func (r DateRange) Params() apiclient.Params {
	return apiclient.Params{
		{Key: "startDate", Value: apiclient.Date(r.Start)},
		{Key: "endDate", Value: apiclient.Date(r.End)},
	}
}

func (r DateRange) String() string {
	return apiclient.Date(r.Start) + ".." + apiclient.Date(r.End)
}

type wireRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// MarshalJSON writes both ends as YYYY-MM-DD.
func (r DateRange) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireRange{Start: apiclient.Date(r.Start), End: apiclient.Date(r.End)})
}

// UnmarshalJSON accepts YYYY-MM-DD or RFC 3339 ends.
func (r *DateRange) UnmarshalJSON(data []byte) error {
	var w wireRange
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	start, err := parseDay(w.Start)
	if err != nil {
		return err
	}
	end, err := parseDay(w.End)
	if err != nil {
		return err
	}
	r.Start, r.End = start, end
	return nil
}

func parseDay(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(apiclient.DateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("reports: invalid date %q", s)
	}
	return t, nil
}

func midnight(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

func firstOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

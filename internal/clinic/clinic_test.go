package clinic

import (
	"testing"
	"time"
)

func testClinic() *Clinic {
	return &Clinic{ID: "bodybliss", Name: "Body Bliss", Timezone: "America/New_York", BusinessHours: DefaultBusinessHours()}
}

func TestIsOpenAt(t *testing.T) {
	c := testClinic()
	loc, _ := time.LoadLocation("America/New_York")

	// Monday 10 AM EST - should be open
	monday10am := time.Date(2025, 12, 8, 10, 0, 0, 0, loc)
	if !c.IsOpenAt(monday10am) {
		t.Error("expected clinic to be open Monday 10 AM")
	}

	// Saturday 10 AM EST - should be closed
	saturday := time.Date(2025, 12, 13, 10, 0, 0, 0, loc)
	if c.IsOpenAt(saturday) {
		t.Error("expected clinic to be closed Saturday")
	}

	// Monday 7 AM EST - before opening
	monday7am := time.Date(2025, 12, 8, 7, 0, 0, 0, loc)
	if c.IsOpenAt(monday7am) {
		t.Error("expected clinic to be closed at 7 AM")
	}

	// Closing minute is exclusive
	monday6pm := time.Date(2025, 12, 8, 18, 0, 0, 0, loc)
	if c.IsOpenAt(monday6pm) {
		t.Error("expected clinic to be closed at 6 PM")
	}

	// Instants in other zones are converted: 15:00 UTC is 10 AM EST
	if !c.IsOpenAt(time.Date(2025, 12, 8, 15, 0, 0, 0, time.UTC)) {
		t.Error("expected UTC instant to be evaluated in clinic time")
	}
}

func TestIsOpenAt_NoHoursMeansAlwaysOpen(t *testing.T) {
	c := &Clinic{Timezone: "America/Chicago"}
	if !c.IsOpenAt(time.Date(2025, 12, 14, 3, 0, 0, 0, time.UTC)) {
		t.Error("expected appointment-only clinic to be open")
	}
}

func TestNextOpenTime(t *testing.T) {
	c := testClinic()

	// Friday 8 PM EST - should return Monday 9 AM
	loc, _ := time.LoadLocation("America/New_York")
	friday8pm := time.Date(2025, 12, 5, 20, 0, 0, 0, loc)

	next := c.NextOpenTime(friday8pm)
	if next.Weekday() != time.Monday {
		t.Errorf("expected next open to be Monday, got %s", next.Weekday())
	}
	if next.Hour() != 9 {
		t.Errorf("expected next open at 9 AM, got %d", next.Hour())
	}

	// Already open returns the same instant
	tuesday11 := time.Date(2025, 12, 9, 11, 0, 0, 0, loc)
	if got := c.NextOpenTime(tuesday11); !got.Equal(tuesday11) {
		t.Errorf("expected %s, got %s", tuesday11, got)
	}

	// Early morning returns today's opening
	tuesday6 := time.Date(2025, 12, 9, 6, 0, 0, 0, loc)
	want := time.Date(2025, 12, 9, 9, 0, 0, 0, loc)
	if got := c.NextOpenTime(tuesday6); !got.Equal(want) {
		t.Errorf("expected %s, got %s", want, got)
	}
}

func TestNextOpenTime_SingleDayWeek(t *testing.T) {
	c := &Clinic{Timezone: "UTC", BusinessHours: BusinessHours{Wednesday: &DayHours{Open: "10:00", Close: "12:00"}}}

	// Wednesday after closing: next Wednesday
	wed := time.Date(2025, 12, 10, 13, 0, 0, 0, time.UTC)
	want := time.Date(2025, 12, 17, 10, 0, 0, 0, time.UTC)
	if got := c.NextOpenTime(wed); !got.Equal(want) {
		t.Errorf("expected %s, got %s", want, got)
	}
}

func TestLocationFallsBackToUTC(t *testing.T) {
	c := &Clinic{Timezone: "Not/AZone"}
	if c.Location() != time.UTC {
		t.Errorf("expected UTC, got %s", c.Location())
	}
}

func TestOpeningHours(t *testing.T) {
	c := &Clinic{Timezone: "UTC", BusinessHours: DefaultBusinessHours()}

	open, close, ok := c.OpeningHours(time.Date(2025, 12, 9, 15, 30, 0, 0, time.UTC))
	if !ok {
		t.Fatal("expected Tuesday to be open")
	}
	if want := time.Date(2025, 12, 9, 9, 0, 0, 0, time.UTC); !open.Equal(want) {
		t.Errorf("expected open %s, got %s", want, open)
	}
	if want := time.Date(2025, 12, 9, 18, 0, 0, 0, time.UTC); !close.Equal(want) {
		t.Errorf("expected close %s, got %s", want, close)
	}

	if _, _, ok := c.OpeningHours(time.Date(2025, 12, 7, 12, 0, 0, 0, time.UTC)); ok {
		t.Error("expected Sunday to be closed")
	}
}

// Package clinic holds the clinic profile, its business hours and settings.
package clinic

import (
	"time"
)

// DayHours represents the opening hours for a single day.
// Nil means the clinic is closed that day.
type DayHours struct {
	Open  string `json:"open"`  // "09:00" in 24-hour format
	Close string `json:"close"` // "18:00" in 24-hour format
}

// BusinessHours maps day names to their hours.
type BusinessHours struct {
	Monday    *DayHours `json:"monday,omitempty"`
	Tuesday   *DayHours `json:"tuesday,omitempty"`
	Wednesday *DayHours `json:"wednesday,omitempty"`
	Thursday  *DayHours `json:"thursday,omitempty"`
	Friday    *DayHours `json:"friday,omitempty"`
	Saturday  *DayHours `json:"saturday,omitempty"`
	Sunday    *DayHours `json:"sunday,omitempty"`
}

// Clinic is the practice profile.
type Clinic struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	Slug          string        `json:"slug,omitempty"`
	Email         string        `json:"email,omitempty"`
	Phone         string        `json:"phone,omitempty"`
	Address       string        `json:"address,omitempty"`
	City          string        `json:"city,omitempty"`
	State         string        `json:"state,omitempty"`
	ZipCode       string        `json:"zipCode,omitempty"`
	WebsiteURL    string        `json:"websiteUrl,omitempty"`
	Timezone      string        `json:"timezone"` // e.g., "America/New_York"
	BusinessHours BusinessHours `json:"businessHours"`
	Services      []string      `json:"services,omitempty"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

// Input is the profile update payload.
type Input struct {
	Name          string         `json:"name,omitempty"`
	Email         string         `json:"email,omitempty"`
	Phone         string         `json:"phone,omitempty"`
	Address       string         `json:"address,omitempty"`
	City          string         `json:"city,omitempty"`
	State         string         `json:"state,omitempty"`
	ZipCode       string         `json:"zipCode,omitempty"`
	WebsiteURL    string         `json:"websiteUrl,omitempty"`
	Timezone      string         `json:"timezone,omitempty"`
	BusinessHours *BusinessHours `json:"businessHours,omitempty"`
	Services      []string       `json:"services,omitempty"`
}

// NotificationPrefs controls which reminders the clinic sends.
type NotificationPrefs struct {
	EmailEnabled  bool     `json:"emailEnabled"`
	SMSEnabled    bool     `json:"smsEnabled"`
	ReminderHours []int    `json:"reminderHours,omitempty"` // hours before an appointment, e.g. [48, 2]
	Recipients    []string `json:"recipients,omitempty"`
}

// Settings are the operational knobs of the clinic.
type Settings struct {
	Currency                   string            `json:"currency"`
	DefaultAppointmentMinutes  int               `json:"defaultAppointmentMinutes"`
	BufferMinutes              int               `json:"bufferMinutes"`
	CancellationNoticeHours    int               `json:"cancellationNoticeHours"`
	DepositAmountCents         int64             `json:"depositAmountCents"`
	TaxRatePercent             float64           `json:"taxRatePercent"`
	AllowOnlineBooking         bool              `json:"allowOnlineBooking"`
	Notifications              NotificationPrefs `json:"notifications"`
	LowStockNotificationsEmail string            `json:"lowStockNotificationsEmail,omitempty"`
}

// DefaultBusinessHours is Monday to Friday, 9 AM to 6 PM.
func DefaultBusinessHours() BusinessHours {
	weekday := func() *DayHours { return &DayHours{Open: "09:00", Close: "18:00"} }
	return BusinessHours{
		Monday:    weekday(),
		Tuesday:   weekday(),
		Wednesday: weekday(),
		Thursday:  weekday(),
		Friday:    weekday(),
	}
}

// Location resolves the clinic time zone, falling back to UTC.
func (c *Clinic) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// GetHoursForDay returns the hours for a given weekday (0=Sunday, 6=Saturday).
func (b *BusinessHours) GetHoursForDay(weekday time.Weekday) *DayHours {
	switch weekday {
	case time.Sunday:
		return b.Sunday
	case time.Monday:
		return b.Monday
	case time.Tuesday:
		return b.Tuesday
	case time.Wednesday:
		return b.Wednesday
	case time.Thursday:
		return b.Thursday
	case time.Friday:
		return b.Friday
	case time.Saturday:
		return b.Saturday
	default:
		return nil
	}
}

// HasAnyHours returns true if at least one day has business hours configured.
func (b *BusinessHours) HasAnyHours() bool {
	return b.Sunday != nil || b.Monday != nil || b.Tuesday != nil ||
		b.Wednesday != nil || b.Thursday != nil || b.Friday != nil || b.Saturday != nil
}

// IsOpenAt checks if the clinic is open at the given time.
// If no business hours are configured, the clinic is treated as always open
// (appointment-only practices).
func (c *Clinic) IsOpenAt(t time.Time) bool {
	localTime := t.In(c.Location())

	hours := c.BusinessHours.GetHoursForDay(localTime.Weekday())
	if hours == nil {
		return !c.BusinessHours.HasAnyHours()
	}

	openMinutes, ok := parseClock(hours.Open)
	if !ok {
		return false
	}
	closeMinutes, ok := parseClock(hours.Close)
	if !ok {
		return false
	}

	currentMinutes := localTime.Hour()*60 + localTime.Minute()
	return currentMinutes >= openMinutes && currentMinutes < closeMinutes
}

// NextOpenTime returns when the clinic next opens, or t itself (in clinic
// time) if already open. With no hours configured every instant is open.
func (c *Clinic) NextOpenTime(t time.Time) time.Time {
	loc := c.Location()
	localTime := t.In(loc)
	if !c.BusinessHours.HasAnyHours() {
		return localTime
	}

	// A full week plus today covers "closed for the rest of today".
	for i := 0; i <= 7; i++ {
		checkDate := localTime.AddDate(0, 0, i)
		hours := c.BusinessHours.GetHoursForDay(checkDate.Weekday())
		if hours == nil {
			continue
		}
		openMinutes, ok := parseClock(hours.Open)
		if !ok {
			continue
		}
		openDateTime := atMinutes(checkDate, openMinutes, loc)

		if i == 0 {
			closeMinutes, ok := parseClock(hours.Close)
			if !ok {
				continue
			}
			if localTime.Before(openDateTime) {
				return openDateTime
			}
			if localTime.Before(atMinutes(checkDate, closeMinutes, loc)) {
				return localTime
			}
			continue
		}
		return openDateTime
	}

	// Only reachable when every configured day has unparsable hours.
	return time.Date(localTime.Year(), localTime.Month(), localTime.Day()+1, 9, 0, 0, 0, loc)
}

// OpeningHours returns the open and close instants of the clinic day
// containing day. ok is false when the clinic is closed that day.
func (c *Clinic) OpeningHours(day time.Time) (open, close time.Time, ok bool) {
	loc := c.Location()
	local := day.In(loc)
	hours := c.BusinessHours.GetHoursForDay(local.Weekday())
	if hours == nil {
		return time.Time{}, time.Time{}, false
	}
	openMinutes, okOpen := parseClock(hours.Open)
	closeMinutes, okClose := parseClock(hours.Close)
	if !okOpen || !okClose || closeMinutes <= openMinutes {
		return time.Time{}, time.Time{}, false
	}
	return atMinutes(local, openMinutes, loc), atMinutes(local, closeMinutes, loc), true
}

func parseClock(s string) (int, bool) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, false
	}
	return t.Hour()*60 + t.Minute(), true
}

func atMinutes(day time.Time, minutes int, loc *time.Location) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), minutes/60, minutes%60, 0, 0, loc)
}

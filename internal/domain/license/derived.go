package license

import (
	"fmt"
	"math"
	"time"
)

// StatusClass is the expiry urgency bucket shown next to each record.
type StatusClass string

const (
	StatusHealthy StatusClass = "healthy"
	StatusWarning StatusClass = "warning"
	StatusDanger  StatusClass = "danger"
)

// Status thresholds in days. A record at exactly 7 days left is healthy,
// at exactly 3 days left is warning.
const (
	warningThreshold = 7
	dangerThreshold  = 3
)

// Revenue constants: a new license is worth baseRevenue for its first year,
// and each renewal adds renewalRevenue.
const (
	baseRevenue    = 7000
	renewalRevenue = 3000
)

// View is a record plus its derived, never-persisted display state.
type View struct {
	Record
	DaysLeft       int         `json:"days_left"`
	Status         StatusClass `json:"status"`
	LastActiveText string      `json:"last_active_text,omitempty"`
}

// Stats is the derived summary over the whole collection.
type Stats struct {
	TotalClients    int `json:"total_clients"`
	ActiveServices  int `json:"active_services"`
	ExpiringSoon    int `json:"expiring_soon"`
	ProjectedYearly int `json:"projected_yearly"`
	OverallRevenue  int `json:"overall_revenue"`
}

// DaysLeft returns the number of whole or partial days between now and the
// expiry date, rounded up. Already-expired records yield negative values.
func DaysLeft(expiry Date, now time.Time) int {
	return int(math.Ceil(expiry.Sub(now).Hours() / 24))
}

// Classify maps a days-left count to its status class.
func Classify(daysLeft int) StatusClass {
	switch {
	case daysLeft < dangerThreshold:
		return StatusDanger
	case daysLeft < warningThreshold:
		return StatusWarning
	default:
		return StatusHealthy
	}
}

// NewView computes the derived display state for a single record.
func NewView(rec Record, now time.Time) View {
	d := DaysLeft(rec.ExpiryDate, now)
	v := View{
		Record:   rec,
		DaysLeft: d,
		Status:   Classify(d),
	}
	if rec.LastActive != nil {
		v.LastActiveText = RelativeTime(*rec.LastActive, now)
	}
	return v
}

// NewViews computes display state for a whole collection.
func NewViews(recs []Record, now time.Time) []View {
	views := make([]View, 0, len(recs))
	for _, rec := range recs {
		views = append(views, NewView(rec, now))
	}
	return views
}

// ComputeStats derives the summary counters and revenue projection.
// Records flagged ExcludeFromRevenue contribute to the client counters but
// to neither revenue figure.
func ComputeStats(recs []Record, now time.Time) Stats {
	st := Stats{TotalClients: len(recs)}
	for _, rec := range recs {
		if rec.IsActive {
			st.ActiveServices++
		}
		if d := DaysLeft(rec.ExpiryDate, now); d >= 0 && d < warningThreshold {
			st.ExpiringSoon++
		}
		if rec.ExcludeFromRevenue {
			continue
		}
		st.ProjectedYearly += renewalRevenue
		st.OverallRevenue += baseRevenue + rec.RenewalCount*renewalRevenue
	}
	return st
}

// Fixed divisors for relative time buckets: 365-day years, 30-day months.
const (
	secondsPerMinute = 60
	secondsPerHour   = 60 * secondsPerMinute
	secondsPerDay    = 24 * secondsPerHour
	secondsPerMonth  = 30 * secondsPerDay
	secondsPerYear   = 365 * secondsPerDay
)

// RelativeTime renders a timestamp as coarse "N units ago" text,
// falling back to "just now" below one minute.
func RelativeTime(t, now time.Time) string {
	seconds := int64(now.Sub(t).Seconds())

	switch {
	case seconds >= secondsPerYear:
		return plural(seconds/secondsPerYear, "year")
	case seconds >= secondsPerMonth:
		return plural(seconds/secondsPerMonth, "month")
	case seconds >= secondsPerDay:
		return plural(seconds/secondsPerDay, "day")
	case seconds >= secondsPerHour:
		return plural(seconds/secondsPerHour, "hour")
	case seconds >= secondsPerMinute:
		return plural(seconds/secondsPerMinute, "minute")
	default:
		return "just now"
	}
}

func plural(n int64, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s ago", unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}

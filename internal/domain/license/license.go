// Package license defines the license record domain model for the console.
package license

import (
	"errors"
	"strings"
	"time"
)

// dateLayout is the wire format for calendar dates (no time component).
const dateLayout = "2006-01-02"

// Date is a calendar date serialized as "YYYY-MM-DD".
type Date struct {
	time.Time
}

// NewDate builds a Date at UTC midnight for the given calendar day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a "YYYY-MM-DD" string into a Date.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, errors.New("expiry date must be in YYYY-MM-DD format")
	}
	return Date{t}, nil
}

// MarshalJSON serializes the date as "YYYY-MM-DD".
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(dateLayout) + `"`), nil
}

// UnmarshalJSON parses a "YYYY-MM-DD" JSON string.
func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "null" || s == "" {
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// NextRenewal returns the date exactly one calendar year later.
// Month and day are preserved; Feb-29 rolls over to Mar-1 on non-leap
// years, which is Go's AddDate behavior.
func (d Date) NextRenewal() Date {
	return Date{d.AddDate(1, 0, 0)}
}

// Record is one managed client's subscription entry. The identifier is
// caller-assigned at creation and immutable afterwards.
type Record struct {
	ID                 string     `json:"id"`
	ClientName         string     `json:"client_name"`
	ExpiryDate         Date       `json:"expiry_date"`
	IsActive           bool       `json:"is_active"`
	ExcludeFromRevenue bool       `json:"exclude_from_revenue"`
	RenewalCount       int        `json:"renewal_count"`
	LastActive         *time.Time `json:"last_active,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// CreateRequest is the input for adding a new license record.
// IsActive is not accepted from the caller: new records are always active.
type CreateRequest struct {
	ID                 string `json:"id"`
	ClientName         string `json:"client_name"`
	ExpiryDate         Date   `json:"expiry_date"`
	ExcludeFromRevenue bool   `json:"exclude_from_revenue"`
}

// Validate checks that the CreateRequest has all required fields.
func (r *CreateRequest) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return errors.New("license id is required")
	}
	if len(r.ID) > 128 {
		return errors.New("license id too long (max 128 chars)")
	}
	if strings.TrimSpace(r.ClientName) == "" {
		return errors.New("client name is required")
	}
	if r.ExpiryDate.IsZero() {
		return errors.New("expiry date is required")
	}
	return nil
}

// UpdateRequest is the input for editing an existing record. The identifier
// is structurally absent: it cannot be changed once created. Nil or empty
// fields are left untouched.
type UpdateRequest struct {
	ClientName         string `json:"client_name,omitempty"`
	ExpiryDate         *Date  `json:"expiry_date,omitempty"`
	ExcludeFromRevenue *bool  `json:"exclude_from_revenue,omitempty"`
}

// Validate checks that the UpdateRequest touches at least one field.
func (r *UpdateRequest) Validate() error {
	if r.ClientName == "" && r.ExpiryDate == nil && r.ExcludeFromRevenue == nil {
		return errors.New("no fields to update")
	}
	if r.ExpiryDate != nil && r.ExpiryDate.IsZero() {
		return errors.New("expiry date must be a valid calendar date")
	}
	return nil
}

// ApplyTo merges the supplied fields into rec.
func (r *UpdateRequest) ApplyTo(rec *Record) {
	if r.ClientName != "" {
		rec.ClientName = r.ClientName
	}
	if r.ExpiryDate != nil {
		rec.ExpiryDate = *r.ExpiryDate
	}
	if r.ExcludeFromRevenue != nil {
		rec.ExcludeFromRevenue = *r.ExcludeFromRevenue
	}
}

// Package settings defines the singleton console settings record.
package settings

import (
	"errors"
	"time"
)

// Settings is the single console-wide settings record.
type Settings struct {
	AdminEmail  string    `json:"admin_email"`
	TrialPeriod int       `json:"trial_period"` // days
	UpdatedAt   time.Time `json:"updated_at"`
}

// UpdateRequest replaces the settings record.
type UpdateRequest struct {
	AdminEmail  string `json:"admin_email"`
	TrialPeriod int    `json:"trial_period"`
}

// Validate checks field presence and range.
func (r *UpdateRequest) Validate() error {
	if r.AdminEmail == "" {
		return errors.New("admin email is required")
	}
	if r.TrialPeriod < 0 {
		return errors.New("trial period must not be negative")
	}
	return nil
}

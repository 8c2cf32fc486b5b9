package service

import (
	"fmt"

	"github.com/raghavbhatia332/licensedesk/internal/domain"
)

// validationErr tags a validation failure with the domain sentinel so the
// HTTP adapter maps it to a 400.
func validationErr(err error) error {
	return fmt.Errorf("%s: %w", err.Error(), domain.ErrValidation)
}

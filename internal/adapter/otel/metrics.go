package otel

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "licensedesk"

// Metrics holds all LicenseDesk metric instruments.
type Metrics struct {
	Mutations metric.Int64Counter
	Renewals  metric.Int64Counter
	Denials   metric.Int64Counter
	SignIns   metric.Int64Counter
}

// NewMetrics creates all metric instruments.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(meterName)
	m := &Metrics{}
	var err error

	m.Mutations, err = meter.Int64Counter("licensedesk.mutations",
		metric.WithDescription("Number of committed license mutations"))
	if err != nil {
		return nil, err
	}

	m.Renewals, err = meter.Int64Counter("licensedesk.renewals",
		metric.WithDescription("Number of license renewals"))
	if err != nil {
		return nil, err
	}

	m.Denials, err = meter.Int64Counter("licensedesk.auth.denials",
		metric.WithDescription("Number of authorization denials"))
	if err != nil {
		return nil, err
	}

	m.SignIns, err = meter.Int64Counter("licensedesk.auth.signins",
		metric.WithDescription("Number of successful sign-ins"))
	if err != nil {
		return nil, err
	}

	return m, nil
}

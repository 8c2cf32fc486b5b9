package http

import (
	"net/http"

	"github.com/raghavbhatia332/licensedesk/internal/adapter/otel"
	"github.com/raghavbhatia332/licensedesk/internal/adapter/ws"
	"github.com/raghavbhatia332/licensedesk/internal/service"
)

// Handlers bundles the services the HTTP layer exposes.
type Handlers struct {
	licenses  *service.LicenseService
	allowlist *service.AllowlistService
	settings  *service.SettingsService
	gate      *service.Gate
	hub       *ws.Hub
	metrics   *otel.Metrics
}

// NewHandlers wires the services into the HTTP layer. metrics may be nil
// when telemetry is disabled.
func NewHandlers(
	licenses *service.LicenseService,
	allowlist *service.AllowlistService,
	settings *service.SettingsService,
	gate *service.Gate,
	hub *ws.Hub,
	metrics *otel.Metrics,
) *Handlers {
	return &Handlers{
		licenses:  licenses,
		allowlist: allowlist,
		settings:  settings,
		gate:      gate,
		hub:       hub,
		metrics:   metrics,
	}
}

// Health reports liveness.
func (h *Handlers) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HealthReady reports readiness, including connected console count.
func (h *Handlers) HealthReady(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"connections": h.hub.ConnectionCount(),
	})
}

// HandleWS upgrades the request to a websocket and joins the console feed.
func (h *Handlers) HandleWS(w http.ResponseWriter, r *http.Request) {
	h.hub.HandleWS(w, r)
}

package http

import (
	"github.com/go-chi/chi/v5"
)

// MountRoutes registers all API routes on the given chi router.
func MountRoutes(r chi.Router, h *Handlers) {
	r.Get("/health", h.Health)
	r.Get("/health/ready", h.HealthReady)
	r.Get("/ws", h.HandleWS)

	r.Route("/api/v1", func(r chi.Router) {
		// Auth
		r.Post("/auth/signin", h.SignIn)
		r.Post("/auth/signout", h.SignOut)
		r.Get("/auth/me", h.Me)

		// Licenses
		r.Get("/licenses", h.ListLicenses)
		r.Post("/licenses", h.CreateLicense)
		r.Get("/licenses/stats", h.LicenseStats)
		r.Get("/licenses/{id}", h.GetLicense)
		r.Put("/licenses/{id}", h.UpdateLicense)
		r.Delete("/licenses/{id}", h.DeleteLicense)
		r.Post("/licenses/{id}/toggle", h.ToggleLicenseStatus)
		r.Post("/licenses/{id}/renew", h.RenewLicense)

		// Authorized admins
		r.Get("/admins", h.ListAdmins)
		r.Post("/admins", h.AddAdmin)
		r.Delete("/admins/{id}", h.RemoveAdmin)

		// Settings
		r.Get("/settings", h.GetSettings)
		r.Put("/settings", h.UpdateSettings)

		// Change-feed catch-up
		r.Get("/events", h.ListEvents)
	})
}

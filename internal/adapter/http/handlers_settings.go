package http

import (
	"net/http"

	"github.com/raghavbhatia332/licensedesk/internal/domain/settings"
)

// GetSettings returns the console settings singleton.
func (h *Handlers) GetSettings(w http.ResponseWriter, r *http.Request) {
	st, err := h.settings.Get(r.Context())
	if err != nil {
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// UpdateSettings replaces the console settings singleton.
func (h *Handlers) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[settings.UpdateRequest](w, r)
	if !ok {
		return
	}
	st, err := h.settings.Update(r.Context(), req)
	if err != nil {
		writeDomainError(w, err, "settings not found")
		return
	}
	writeJSON(w, http.StatusOK, st)
}

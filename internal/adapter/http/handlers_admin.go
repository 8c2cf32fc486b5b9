package http

import (
	"net/http"

	"github.com/raghavbhatia332/licensedesk/internal/domain/admin"
	"github.com/raghavbhatia332/licensedesk/internal/middleware"
)

// ListAdmins returns the authorized-admin allowlist.
func (h *Handlers) ListAdmins(w http.ResponseWriter, r *http.Request) {
	entries, err := h.allowlist.List(r.Context())
	if err != nil {
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// AddAdmin appends an email to the allowlist.
func (h *Handlers) AddAdmin(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[admin.AddRequest](w, r)
	if !ok {
		return
	}

	addedBy := ""
	if ident := middleware.IdentityFromContext(r.Context()); ident != nil {
		addedBy = ident.Email
	}

	entry, err := h.allowlist.Add(r.Context(), &req, addedBy)
	if err != nil {
		writeDomainError(w, err, "admin not found")
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

// RemoveAdmin deletes an allowlist entry. Active sessions for the removed
// email are refused on their next request by the per-request authorization
// check.
func (h *Handlers) RemoveAdmin(w http.ResponseWriter, r *http.Request) {
	if err := h.allowlist.Remove(r.Context(), urlParam(r, "id")); err != nil {
		writeDomainError(w, err, "admin entry not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

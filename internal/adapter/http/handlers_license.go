package http

import (
	"net/http"
	"strconv"

	"github.com/raghavbhatia332/licensedesk/internal/domain/license"
)

const defaultEventsLimit = 500

func (h *Handlers) countMutation(r *http.Request) {
	if h.metrics != nil {
		h.metrics.Mutations.Add(r.Context(), 1)
	}
}

// ListLicenses returns all license records with derived fields.
func (h *Handlers) ListLicenses(w http.ResponseWriter, r *http.Request) {
	views, err := h.licenses.List(r.Context())
	if err != nil {
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

// GetLicense returns one license record with derived fields.
func (h *Handlers) GetLicense(w http.ResponseWriter, r *http.Request) {
	view, err := h.licenses.Get(r.Context(), urlParam(r, "id"))
	if err != nil {
		writeDomainError(w, err, "license not found")
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// CreateLicense adds a new license record. A duplicate ID is a conflict.
func (h *Handlers) CreateLicense(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[license.CreateRequest](w, r)
	if !ok {
		return
	}
	rec, err := h.licenses.Create(r.Context(), &req)
	if err != nil {
		writeDomainError(w, err, "license not found")
		return
	}
	h.countMutation(r)
	writeJSON(w, http.StatusCreated, rec)
}

// UpdateLicense edits the mutable fields of a record.
func (h *Handlers) UpdateLicense(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[license.UpdateRequest](w, r)
	if !ok {
		return
	}
	rec, err := h.licenses.Update(r.Context(), urlParam(r, "id"), req)
	if err != nil {
		writeDomainError(w, err, "license not found")
		return
	}
	h.countMutation(r)
	writeJSON(w, http.StatusOK, rec)
}

// ToggleLicenseStatus flips a record between active and inactive.
func (h *Handlers) ToggleLicenseStatus(w http.ResponseWriter, r *http.Request) {
	rec, err := h.licenses.ToggleStatus(r.Context(), urlParam(r, "id"))
	if err != nil {
		writeDomainError(w, err, "license not found")
		return
	}
	h.countMutation(r)
	writeJSON(w, http.StatusOK, rec)
}

type renewRequest struct {
	Confirm bool `json:"confirm"`
}

// RenewLicense extends the expiry by one year and bumps the renewal count.
// The caller must confirm explicitly.
func (h *Handlers) RenewLicense(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[renewRequest](w, r)
	if !ok {
		return
	}
	if !req.Confirm {
		writeError(w, http.StatusBadRequest, "renewal requires confirmation")
		return
	}
	rec, err := h.licenses.Renew(r.Context(), urlParam(r, "id"))
	if err != nil {
		writeDomainError(w, err, "license not found")
		return
	}
	h.countMutation(r)
	if h.metrics != nil {
		h.metrics.Renewals.Add(r.Context(), 1)
	}
	writeJSON(w, http.StatusOK, rec)
}

// DeleteLicense removes a record. The caller must confirm explicitly.
func (h *Handlers) DeleteLicense(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("confirm") != "true" {
		writeError(w, http.StatusBadRequest, "deletion requires confirmation")
		return
	}
	if err := h.licenses.Delete(r.Context(), urlParam(r, "id")); err != nil {
		writeDomainError(w, err, "license not found")
		return
	}
	h.countMutation(r)
	w.WriteHeader(http.StatusNoContent)
}

// LicenseStats returns the derived dashboard totals.
func (h *Handlers) LicenseStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.licenses.Stats(r.Context())
	if err != nil {
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// ListEvents returns change events after the given sequence number, for
// console catch-up after a reconnect.
func (h *Handlers) ListEvents(w http.ResponseWriter, r *http.Request) {
	var since int64
	if raw := r.URL.Query().Get("since"); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || v < 0 {
			writeError(w, http.StatusBadRequest, "since must be a non-negative integer")
			return
		}
		since = v
	}

	limit := defaultEventsLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 || v > defaultEventsLimit {
			writeError(w, http.StatusBadRequest, "limit must be between 1 and 500")
			return
		}
		limit = v
	}

	events, err := h.licenses.EventsSince(r.Context(), since, limit)
	if err != nil {
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

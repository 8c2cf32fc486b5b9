package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/raghavbhatia332/licensedesk/internal/domain"
	"github.com/raghavbhatia332/licensedesk/internal/middleware"
)

type signInRequest struct {
	IDToken string `json:"id_token"`
}

// SignIn exchanges a Google ID token for a console session. Identities not
// on the authorized-admin list are refused.
func (h *Handlers) SignIn(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[signInRequest](w, r)
	if !ok {
		return
	}
	if req.IDToken == "" {
		writeError(w, http.StatusBadRequest, "id_token is required")
		return
	}

	result, err := h.gate.SignIn(r.Context(), req.IDToken)
	if err != nil {
		if h.metrics != nil && errors.Is(err, domain.ErrDenied) {
			h.metrics.Denials.Add(r.Context(), 1)
		}
		writeDomainError(w, err, "sign-in failed")
		return
	}
	if h.metrics != nil {
		h.metrics.SignIns.Add(r.Context(), 1)
	}
	writeJSON(w, http.StatusOK, result)
}

// SignOut deletes the caller's session. Idempotent.
func (h *Handlers) SignOut(w http.ResponseWriter, r *http.Request) {
	token := requestToken(r)
	if token == "" {
		writeError(w, http.StatusUnauthorized, "authorization required")
		return
	}
	if err := h.gate.SignOut(r.Context(), token); err != nil {
		writeInternalError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Me returns the authenticated identity.
func (h *Handlers) Me(w http.ResponseWriter, r *http.Request) {
	ident := middleware.IdentityFromContext(r.Context())
	if ident == nil {
		writeError(w, http.StatusUnauthorized, "authorization required")
		return
	}
	writeJSON(w, http.StatusOK, ident)
}

func requestToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	token := strings.TrimPrefix(h, "Bearer ")
	if token == h {
		return ""
	}
	return token
}

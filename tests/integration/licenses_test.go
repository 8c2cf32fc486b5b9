//go:build integration

package integration_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"testing"
)

func doJSON(t *testing.T, method, path string, body any) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, testServer.URL+path, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, into any) {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	if err := json.NewDecoder(resp.Body).Decode(into); err != nil {
		t.Fatalf("decode body: %v", err)
	}
}

func TestLicenseCRUDLifecycle(t *testing.T) {
	cleanDB(testPool)

	// 1. List — should be empty.
	resp := doJSON(t, http.MethodGet, "/api/v1/licenses", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", resp.StatusCode)
	}
	var views []map[string]any
	decodeBody(t, resp, &views)
	if len(views) != 0 {
		t.Fatalf("expected 0 licenses, got %d", len(views))
	}

	// 2. Create.
	create := map[string]any{
		"id":          "acme-prod",
		"client_name": "Acme Corp",
		"expiry_date": "2030-05-01",
	}
	resp = doJSON(t, http.MethodPost, "/api/v1/licenses", create)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d", resp.StatusCode)
	}
	var created map[string]any
	decodeBody(t, resp, &created)
	if created["is_active"] != true {
		t.Fatal("new license should start active")
	}
	if created["renewal_count"] != float64(0) {
		t.Fatalf("expected renewal_count 0, got %v", created["renewal_count"])
	}

	// 3. Duplicate ID is a conflict.
	resp = doJSON(t, http.MethodPost, "/api/v1/licenses", create)
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("duplicate create: expected 409, got %d", resp.StatusCode)
	}

	// 4. Get returns derived fields.
	resp = doJSON(t, http.MethodGet, "/api/v1/licenses/acme-prod", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get: expected 200, got %d", resp.StatusCode)
	}
	var view map[string]any
	decodeBody(t, resp, &view)
	if view["status"] != "healthy" {
		t.Fatalf("expected status healthy, got %v", view["status"])
	}

	// 5. Renew requires confirmation.
	resp = doJSON(t, http.MethodPost, "/api/v1/licenses/acme-prod/renew", map[string]any{})
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("unconfirmed renew: expected 400, got %d", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodPost, "/api/v1/licenses/acme-prod/renew", map[string]any{"confirm": true})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("renew: expected 200, got %d", resp.StatusCode)
	}
	var renewed map[string]any
	decodeBody(t, resp, &renewed)
	if renewed["expiry_date"] != "2031-05-01" {
		t.Fatalf("expected expiry 2031-05-01, got %v", renewed["expiry_date"])
	}
	if renewed["renewal_count"] != float64(1) {
		t.Fatalf("expected renewal_count 1, got %v", renewed["renewal_count"])
	}

	// 6. Toggle deactivates.
	resp = doJSON(t, http.MethodPost, "/api/v1/licenses/acme-prod/toggle", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("toggle: expected 200, got %d", resp.StatusCode)
	}
	var toggled map[string]any
	decodeBody(t, resp, &toggled)
	if toggled["is_active"] != false {
		t.Fatal("expected license to be inactive after toggle")
	}

	// 7. Stats reflect the single record.
	resp = doJSON(t, http.MethodGet, "/api/v1/licenses/stats", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("stats: expected 200, got %d", resp.StatusCode)
	}
	var stats map[string]any
	decodeBody(t, resp, &stats)
	if stats["total_clients"] != float64(1) {
		t.Fatalf("expected 1 total client, got %v", stats["total_clients"])
	}
	if stats["overall_revenue"] != float64(10000) {
		t.Fatalf("expected overall revenue 10000, got %v", stats["overall_revenue"])
	}

	// 8. Delete requires confirmation.
	resp = doJSON(t, http.MethodDelete, "/api/v1/licenses/acme-prod", nil)
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("unconfirmed delete: expected 400, got %d", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodDelete, "/api/v1/licenses/acme-prod?confirm=true", nil)
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete: expected 204, got %d", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodGet, "/api/v1/licenses/acme-prod", nil)
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("get after delete: expected 404, got %d", resp.StatusCode)
	}
}

func TestAdminAllowlist(t *testing.T) {
	cleanDB(testPool)

	// Adding the master address is refused; it is always authorized.
	resp := doJSON(t, http.MethodPost, "/api/v1/admins", map[string]any{"email": "raghavbhatia332@gmail.com"})
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("master add: expected 409, got %d", resp.StatusCode)
	}

	// Entries are normalized on insert.
	resp = doJSON(t, http.MethodPost, "/api/v1/admins", map[string]any{"email": "  Ops@Example.COM "})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("add: expected 201, got %d", resp.StatusCode)
	}
	var entry map[string]any
	decodeBody(t, resp, &entry)
	if entry["email"] != "ops@example.com" {
		t.Fatalf("expected normalized email, got %v", entry["email"])
	}

	resp = doJSON(t, http.MethodGet, "/api/v1/admins", nil)
	var entries []map[string]any
	decodeBody(t, resp, &entries)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}

	id, _ := entry["id"].(string)
	resp = doJSON(t, http.MethodDelete, "/api/v1/admins/"+id, nil)
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("remove: expected 204, got %d", resp.StatusCode)
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	resp := doJSON(t, http.MethodGet, "/api/v1/settings", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get settings: expected 200, got %d", resp.StatusCode)
	}
	var before map[string]any
	decodeBody(t, resp, &before)

	resp = doJSON(t, http.MethodPut, "/api/v1/settings", map[string]any{
		"admin_email":  "ops@example.com",
		"trial_period": 14,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update settings: expected 200, got %d", resp.StatusCode)
	}
	var after map[string]any
	decodeBody(t, resp, &after)
	if after["admin_email"] != "ops@example.com" {
		t.Fatalf("expected updated admin_email, got %v", after["admin_email"])
	}
	if after["trial_period"] != float64(14) {
		t.Fatalf("expected trial_period 14, got %v", after["trial_period"])
	}
}

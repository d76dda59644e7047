package httpapi

import (
	"net/http"
	"strings"
	"testing"
)

func TestGetVersions_RequiresParams(t *testing.T) {
	env := newTestEnv(t)

	w := env.doJSON(t, http.MethodGet, "/admin/status/getVersions", adminToken, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without params, got %d: %s", w.Code, w.Body.String())
	}

	w = env.doJSON(t, http.MethodGet, "/admin/status/getVersions?uid=u1", adminToken, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without parentId, got %d: %s", w.Code, w.Body.String())
	}
}

func TestGetVersions_SupersededThread(t *testing.T) {
	env := newTestEnv(t)

	env.doJSON(t, http.MethodPost, "/status/createStatus", residentToken, createBody("affected", 12))
	env.doJSON(t, http.MethodPost, "/status/createStatus", residentToken, createBody("evacuated", 12))

	// resolve parentId from the current record
	w := env.doJSON(t, http.MethodGet, "/status/getStatus/u1", residentToken, nil)
	var got struct {
		Data map[string]any `json:"data"`
	}
	decodeBody(t, w, &got)
	parentID, _ := got.Data["parentId"].(string)
	if parentID == "" {
		t.Fatalf("missing parentId in %v", got.Data)
	}

	w = env.doJSON(t, http.MethodGet, "/admin/status/getVersions?uid=u1&parentId="+parentID, adminToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Success  bool             `json:"success"`
		Versions []map[string]any `json:"versions"`
		Count    int              `json:"count"`
	}
	decodeBody(t, w, &resp)
	if !resp.Success || resp.Count != 2 || len(resp.Versions) != 2 {
		t.Fatalf("expected both versions of the thread: %+v", resp)
	}
	if resp.Versions[0]["condition"] != "evacuated" {
		t.Fatalf("expected newest first, got %v", resp.Versions[0])
	}

	// empty history is still a success
	w = env.doJSON(t, http.MethodGet, "/admin/status/getVersions?uid=u1&parentId=no-such-thread", adminToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for empty history, got %d: %s", w.Code, w.Body.String())
	}
	decodeBody(t, w, &resp)
	if resp.Count != 0 {
		t.Fatalf("expected empty history, got %+v", resp)
	}
}

func TestGetAllLatestStatuses(t *testing.T) {
	env := newTestEnv(t)

	env.doJSON(t, http.MethodPost, "/status/createStatus", residentToken, createBody("safe", 12))
	env.doJSON(t, http.MethodPost, "/status/createStatus", resident2Token, createBody("affected", 24))

	w := env.doJSON(t, http.MethodGet, "/admin/status/getAllLatestStatuses", adminToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Statuses []map[string]any `json:"statuses"`
	}
	decodeBody(t, w, &resp)
	if len(resp.Statuses) != 2 {
		t.Fatalf("expected one current per resident, got %d", len(resp.Statuses))
	}
}

func TestResolvedStatus(t *testing.T) {
	env := newTestEnv(t)

	env.doJSON(t, http.MethodPost, "/status/createStatus", residentToken, createBody("affected", 24))
	w := env.doJSON(t, http.MethodGet, "/status/getStatus/u1", residentToken, nil)
	var got struct {
		Data map[string]any `json:"data"`
	}
	decodeBody(t, w, &got)
	parentID := got.Data["parentId"].(string)

	w = env.doJSON(t, http.MethodPut, "/admin/status/resolvedStatus", adminToken, map[string]string{"parentId": parentID})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	// resolving again finds no current version
	w = env.doJSON(t, http.MethodPut, "/admin/status/resolvedStatus", adminToken, map[string]string{"parentId": parentID})
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 on second resolve, got %d: %s", w.Code, w.Body.String())
	}

	w = env.doJSON(t, http.MethodPut, "/admin/status/resolvedStatus", adminToken, map[string]string{})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without parentId, got %d: %s", w.Code, w.Body.String())
	}
}

func TestExport_ReturnsWorkbook(t *testing.T) {
	env := newTestEnv(t)

	env.doJSON(t, http.MethodPost, "/status/createStatus", residentToken, createBody("safe", 12))

	w := env.doJSON(t, http.MethodGet, "/admin/status/export", adminToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "spreadsheetml") {
		t.Fatalf("unexpected content type %q", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, ".xlsx") {
		t.Fatalf("unexpected content disposition %q", cd)
	}
	// xlsx files are zip archives
	if body := w.Body.Bytes(); len(body) < 4 || body[0] != 'P' || body[1] != 'K' {
		t.Fatalf("expected a zip payload, got %d bytes", w.Body.Len())
	}
}

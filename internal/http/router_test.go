package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kuyajp123/Rescuenect-sub003/internal/auth"
	"github.com/kuyajp123/Rescuenect-sub003/internal/repository"
	"github.com/kuyajp123/Rescuenect-sub003/internal/service"
)

const (
	residentToken  = "tok-resident-u1"
	resident2Token = "tok-resident-u2"
	adminToken     = "tok-admin"
)

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type testEnv struct {
	router     *Router
	statusRepo *repository.MemoryStatusRepository
	notifRepo  *repository.MemoryNotificationsRepository
	tokenRepo  *repository.MemoryDeviceTokensRepository
	clock      *testClock
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := zap.NewNop()
	clock := &testClock{t: time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)}

	verifier := auth.NewStaticVerifier()
	verifier.Add(residentToken, auth.Identity{UID: "u1", Role: auth.RoleResident})
	verifier.Add(resident2Token, auth.Identity{UID: "u2", Role: auth.RoleResident})
	verifier.Add(adminToken, auth.Identity{UID: "admin1", Role: auth.RoleAdmin})

	statusRepo := repository.NewMemoryStatusRepository()
	notifRepo := repository.NewMemoryNotificationsRepository()
	tokenRepo := repository.NewMemoryDeviceTokensRepository()

	statusSvc := service.NewStatusServiceWithClock(statusRepo, logger, clock.Now)
	notifSvc := service.NewNotificationService(notifRepo, tokenRepo, service.NopSender{}, logger)

	r := NewRouter(verifier, logger, 0)
	r.RegisterStatusRoutes(NewStatusHandler(statusSvc, logger))
	r.RegisterAdminStatusRoutes(NewAdminStatusHandler(statusSvc, logger))
	r.RegisterNotificationRoutes(NewNotificationHandler(notifSvc, logger))
	r.RegisterHealthRoute()

	return &testEnv{
		router:     r,
		statusRepo: statusRepo,
		notifRepo:  notifRepo,
		tokenRepo:  tokenRepo,
		clock:      clock,
	}
}

func (e *testEnv) doJSON(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
}

func TestHealthz_NoAuthRequired(t *testing.T) {
	env := newTestEnv(t)

	w := env.doJSON(t, http.MethodGet, "/healthz", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
}

func TestAuth_MissingToken(t *testing.T) {
	env := newTestEnv(t)

	w := env.doJSON(t, http.MethodGet, "/notification/list", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d: %s", w.Code, w.Body.String())
	}
}

func TestAuth_InvalidToken(t *testing.T) {
	env := newTestEnv(t)

	w := env.doJSON(t, http.MethodGet, "/notification/list", "tok-unknown", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d: %s", w.Code, w.Body.String())
	}
}

func TestAuth_ResidentBlockedFromAdminRoute(t *testing.T) {
	env := newTestEnv(t)

	w := env.doJSON(t, http.MethodGet, "/admin/status/getAllLatestStatuses", residentToken, nil)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d: %s", w.Code, w.Body.String())
	}
}

func TestRouter_MethodNotAllowed(t *testing.T) {
	env := newTestEnv(t)

	w := env.doJSON(t, http.MethodGet, "/status/createStatus", residentToken, nil)
	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d: %s", w.Code, w.Body.String())
	}
}

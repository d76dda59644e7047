package httpapi

import (
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kuyajp123/Rescuenect-sub003/internal/auth"
)

// Router uses the standard library http.ServeMux (avoids pulling in a
// third-party routing dependency).
type Router struct {
	mux      *http.ServeMux
	verifier auth.Verifier
	logger   *zap.Logger
	timeout  time.Duration
}

func NewRouter(verifier auth.Verifier, logger *zap.Logger, requestTimeout time.Duration) *Router {
	return &Router{
		mux:      http.NewServeMux(),
		verifier: verifier,
		logger:   logger,
		timeout:  requestTimeout,
	}
}

func (r *Router) Handle(pattern string, h http.HandlerFunc) {
	r.mux.HandleFunc(pattern, h)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	if r.timeout > 0 {
		http.TimeoutHandler(r.mux, r.timeout, `{"error":"request timed out"}`).ServeHTTP(w, req)
		return
	}
	r.mux.ServeHTTP(w, req)
}

// resident wraps a handler with bearer-token auth.
func (r *Router) resident(next http.HandlerFunc) http.HandlerFunc {
	return requireAuth(r.verifier, r.logger, false, next)
}

// admin wraps a handler with bearer-token auth and an admin role check.
func (r *Router) admin(next http.HandlerFunc) http.HandlerFunc {
	return requireAuth(r.verifier, r.logger, true, next)
}

// RegisterStatusRoutes registers the resident-facing status lifecycle routes.
func (r *Router) RegisterStatusRoutes(h *StatusHandler) {
	r.Handle("/status/createStatus", r.resident(func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.CreateStatus(w, req)
	}))

	// getStatus/{uid}
	r.Handle("/status/getStatus/", r.resident(func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		uid := strings.TrimPrefix(req.URL.Path, "/status/getStatus/")
		if uid == "" || strings.Contains(uid, "/") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		h.GetStatus(w, req, uid)
	}))

	// deleteStatus/{uid}
	r.Handle("/status/deleteStatus/", r.resident(func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodDelete {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		uid := strings.TrimPrefix(req.URL.Path, "/status/deleteStatus/")
		if uid == "" || strings.Contains(uid, "/") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		h.DeleteStatus(w, req, uid)
	}))
}

// RegisterAdminStatusRoutes registers the admin status console routes.
func (r *Router) RegisterAdminStatusRoutes(h *AdminStatusHandler) {
	r.Handle("/admin/status/getVersions", r.admin(func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.GetVersions(w, req)
	}))

	r.Handle("/admin/status/getAllLatestStatuses", r.admin(func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.GetAllLatestStatuses(w, req)
	}))

	r.Handle("/admin/status/resolvedStatus", r.admin(func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodPut {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.ResolvedStatus(w, req)
	}))

	r.Handle("/admin/status/export", r.admin(func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.Export(w, req)
	}))
}

// RegisterNotificationRoutes registers notification delivery and read-receipt
// routes plus the FCM token lifecycle.
func (r *Router) RegisterNotificationRoutes(h *NotificationHandler) {
	r.Handle("/notification/list", r.resident(func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.List(w, req)
	}))

	r.Handle("/notification/markAsRead", r.resident(func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.MarkAsRead(w, req)
	}))

	r.Handle("/admin/notification/create", r.admin(func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.Create(w, req)
	}))

	r.Handle("/user/fcmToken", r.resident(func(w http.ResponseWriter, req *http.Request) {
		switch req.Method {
		case http.MethodPost:
			h.RegisterToken(w, req)
		case http.MethodDelete:
			h.RemoveToken(w, req)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}))
}

// RegisterWeatherRoutes registers the cached weather snapshot route.
func (r *Router) RegisterWeatherRoutes(h *WeatherHandler) {
	r.Handle("/weather/current", r.resident(func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.GetCurrent(w, req)
	}))
}

// RegisterHealthRoute registers the unauthenticated liveness probe.
func (r *Router) RegisterHealthRoute() {
	r.Handle("/healthz", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
}

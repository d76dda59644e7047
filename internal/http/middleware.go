package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/kuyajp123/Rescuenect-sub003/internal/auth"
)

type ctxKey string

const identityKey ctxKey = "identity"

// identityFrom returns the verified identity set by the auth middleware.
func identityFrom(r *http.Request) *auth.Identity {
	id, _ := r.Context().Value(identityKey).(*auth.Identity)
	return id
}

// bearerToken extracts the credential from "Authorization: Bearer <token>".
func bearerToken(r *http.Request) string {
	authz := strings.TrimSpace(r.Header.Get("Authorization"))
	if authz == "" {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(authz), "bearer ") {
		return strings.TrimSpace(authz[len("bearer "):])
	}
	return ""
}

// requireAuth verifies the bearer token before any domain logic runs. When
// adminOnly is set, a verified non-admin gets 403.
func requireAuth(verifier auth.Verifier, logger *zap.Logger, adminOnly bool, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		id, err := verifier.Verify(r.Context(), token)
		if err != nil {
			if !errors.Is(err, auth.ErrInvalidToken) {
				logger.Error("token verification failed", zap.Error(err))
				writeError(w, http.StatusInternalServerError, "auth verifier unavailable")
				return
			}
			writeError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}
		if adminOnly && id.Role != auth.RoleAdmin {
			writeError(w, http.StatusForbidden, "admin access required")
			return
		}
		next(w, r.WithContext(context.WithValue(r.Context(), identityKey, id)))
	}
}

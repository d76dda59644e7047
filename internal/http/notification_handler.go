package httpapi

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/kuyajp123/Rescuenect-sub003/internal/repository"
	"github.com/kuyajp123/Rescuenect-sub003/internal/service"
)

// NotificationHandler serves notification listing, read receipts and FCM
// token registration.
type NotificationHandler struct {
	notificationService service.NotificationService
	logger              *zap.Logger
}

func NewNotificationHandler(notificationService service.NotificationService, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService, logger: logger}
}

// List handles GET /notification/list.
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	id := identityFrom(r)
	if id == nil {
		writeError(w, http.StatusUnauthorized, "no verified identity")
		return
	}

	limit := parseInt(r.URL.Query().Get("limit"), 50)
	views, err := h.notificationService.List(r.Context(), id.UID, limit)
	if err != nil {
		h.logger.Error("list notifications failed", zap.String("uid", id.UID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list notifications")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"notifications": views})
}

// MarkAsRead handles POST /notification/markAsRead with {notificationId}.
func (h *NotificationHandler) MarkAsRead(w http.ResponseWriter, r *http.Request) {
	id := identityFrom(r)
	if id == nil {
		writeError(w, http.StatusUnauthorized, "no verified identity")
		return
	}

	var body struct {
		NotificationID string `json:"notificationId"`
	}
	if err := readBodyJSON(r, 1<<20, &body); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	err := h.notificationService.MarkAsRead(r.Context(), body.NotificationID, id.UID)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]string{"message": "Notification marked as read"})
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "notification not found")
	case service.IsValidation(err):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error("markAsRead failed",
			zap.String("uid", id.UID),
			zap.String("notification_id", body.NotificationID),
			zap.Error(err),
		)
		writeError(w, http.StatusInternalServerError, "failed to mark notification as read")
	}
}

// Create handles POST /admin/notification/create: persist + FCM fan-out.
func (h *NotificationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.CreateNotificationRequest
	if err := readBodyJSON(r, 1<<20, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	n, err := h.notificationService.Create(r.Context(), req)
	if err != nil {
		if service.IsValidation(err) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("create notification failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to create notification")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message":        "Notification created",
		"notificationId": n.ID,
	})
}

// RegisterToken handles POST /user/fcmToken with {token, platform}.
func (h *NotificationHandler) RegisterToken(w http.ResponseWriter, r *http.Request) {
	id := identityFrom(r)
	if id == nil {
		writeError(w, http.StatusUnauthorized, "no verified identity")
		return
	}

	var body struct {
		Token    string `json:"token"`
		Platform string `json:"platform"`
	}
	if err := readBodyJSON(r, 1<<20, &body); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	if err := h.notificationService.RegisterToken(r.Context(), id.UID, body.Token, body.Platform); err != nil {
		if service.IsValidation(err) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("register token failed", zap.String("uid", id.UID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to register token")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Token registered"})
}

// RemoveToken handles DELETE /user/fcmToken with {token}.
func (h *NotificationHandler) RemoveToken(w http.ResponseWriter, r *http.Request) {
	if id := identityFrom(r); id == nil {
		writeError(w, http.StatusUnauthorized, "no verified identity")
		return
	}

	var body struct {
		Token string `json:"token"`
	}
	if err := readBodyJSON(r, 1<<20, &body); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	if err := h.notificationService.RemoveToken(r.Context(), body.Token); err != nil {
		if service.IsValidation(err) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("remove token failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to remove token")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Token removed"})
}

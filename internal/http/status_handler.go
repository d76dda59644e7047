package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/kuyajp123/Rescuenect-sub003/internal/auth"
	"github.com/kuyajp123/Rescuenect-sub003/internal/repository"
	"github.com/kuyajp123/Rescuenect-sub003/internal/service"
)

// StatusHandler serves the resident-facing status endpoints.
type StatusHandler struct {
	statusService service.StatusService
	logger        *zap.Logger
}

func NewStatusHandler(statusService service.StatusService, logger *zap.Logger) *StatusHandler {
	return &StatusHandler{statusService: statusService, logger: logger}
}

// CreateStatus handles POST /status/createStatus. The mobile app submits
// multipart form data (status fields + optional image URL from the external
// upload path); JSON bodies are accepted too.
func (h *StatusHandler) CreateStatus(w http.ResponseWriter, r *http.Request) {
	id := identityFrom(r)
	if id == nil {
		writeError(w, http.StatusUnauthorized, "no verified identity")
		return
	}

	req, err := decodeCreateStatus(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	resp, err := h.statusService.CreateStatus(r.Context(), id.UID, *req)
	if err != nil {
		if service.IsValidation(err) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("createStatus failed", zap.String("uid", id.UID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to create status")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"message":  "Status created successfully",
		"statusId": resp.VersionID,
	})
}

// GetStatus handles GET /status/getStatus/:uid. Absence (including lazy
// expiration) is a success with a null payload, not an error.
func (h *StatusHandler) GetStatus(w http.ResponseWriter, r *http.Request, uid string) {
	if !h.authorizeOwner(w, r, uid) {
		return
	}

	rec, err := h.statusService.GetStatus(r.Context(), uid)
	if err != nil {
		if service.IsValidation(err) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("getStatus failed", zap.String("uid", uid), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to get status")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"data": rec})
}

// DeleteStatus handles DELETE /status/deleteStatus/:uid.
func (h *StatusHandler) DeleteStatus(w http.ResponseWriter, r *http.Request, uid string) {
	if !h.authorizeOwner(w, r, uid) {
		return
	}

	err := h.statusService.DeleteStatus(r.Context(), uid)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]string{"message": "Status deleted successfully"})
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "no current status to delete")
	case service.IsValidation(err):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error("deleteStatus failed", zap.String("uid", uid), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to delete status")
	}
}

// authorizeOwner lets a resident act only on their own uid; admins may act
// on any.
func (h *StatusHandler) authorizeOwner(w http.ResponseWriter, r *http.Request, uid string) bool {
	id := identityFrom(r)
	if id == nil {
		writeError(w, http.StatusUnauthorized, "no verified identity")
		return false
	}
	if id.UID != uid && id.Role != auth.RoleAdmin {
		writeError(w, http.StatusForbidden, "cannot act on another resident's status")
		return false
	}
	return true
}

func decodeCreateStatus(r *http.Request) (*service.CreateStatusRequest, error) {
	ct := r.Header.Get("Content-Type")
	if strings.HasPrefix(ct, "multipart/form-data") {
		if err := r.ParseMultipartForm(5 << 20); err != nil {
			return nil, err
		}
		return createStatusFromForm(r), nil
	}

	req := &service.CreateStatusRequest{}
	if err := readBodyJSON(r, 1<<20, req); err != nil {
		return nil, err
	}
	return req, nil
}

func createStatusFromForm(r *http.Request) *service.CreateStatusRequest {
	req := &service.CreateStatusRequest{
		Condition:       r.FormValue("condition"),
		Description:     r.FormValue("description"),
		ShareLocation:   r.FormValue("shareLocation") == "true",
		ShareContact:    r.FormValue("shareContact") == "true",
		People:          parseInt(r.FormValue("people"), 0),
		ExpirationHours: parseInt(r.FormValue("expirationDuration"), 0),
	}
	if v := r.FormValue("lat"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			req.Lat = &f
		}
	}
	if v := r.FormValue("lng"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			req.Lng = &f
		}
	}
	if v := r.FormValue("location"); v != "" {
		req.LocationName = &v
	}
	if v := r.FormValue("phoneNumber"); v != "" {
		req.PhoneNumber = &v
	}
	if v := r.FormValue("image"); v != "" {
		req.Image = &v
	}
	// category arrives either repeated or comma-separated.
	if vals := r.Form["category"]; len(vals) > 1 {
		req.Categories = vals
	} else if v := r.FormValue("category"); v != "" {
		for _, tag := range strings.Split(v, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				req.Categories = append(req.Categories, tag)
			}
		}
	}
	return req
}

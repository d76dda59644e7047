package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/kuyajp123/Rescuenect-sub003/internal/repository"
	"github.com/kuyajp123/Rescuenect-sub003/internal/service"
)

// AdminStatusHandler serves the dashboard's status endpoints.
type AdminStatusHandler struct {
	statusService service.StatusService
	logger        *zap.Logger
}

func NewAdminStatusHandler(statusService service.StatusService, logger *zap.Logger) *AdminStatusHandler {
	return &AdminStatusHandler{statusService: statusService, logger: logger}
}

// GetVersions handles GET /admin/status/getVersions?uid=..&parentId=..
// Missing params are a client error; an empty history is not.
func (h *AdminStatusHandler) GetVersions(w http.ResponseWriter, r *http.Request) {
	uid := r.URL.Query().Get("uid")
	parentID := r.URL.Query().Get("parentId")
	if uid == "" || parentID == "" {
		writeError(w, http.StatusBadRequest, "uid and parentId are required")
		return
	}

	versions, err := h.statusService.GetVersions(r.Context(), uid, parentID)
	if err != nil {
		if service.IsValidation(err) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("getVersions failed",
			zap.String("uid", uid),
			zap.String("parent_id", parentID),
			zap.Error(err),
		)
		writeError(w, http.StatusInternalServerError, "failed to get versions")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"versions": versions,
		"count":    len(versions),
	})
}

// GetAllLatestStatuses handles GET /admin/status/getAllLatestStatuses.
func (h *AdminStatusHandler) GetAllLatestStatuses(w http.ResponseWriter, r *http.Request) {
	statuses, err := h.statusService.GetAllLatestStatuses(r.Context())
	if err != nil {
		h.logger.Error("getAllLatestStatuses failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to get latest statuses")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"statuses": statuses})
}

// ResolvedStatus handles PUT /admin/status/resolvedStatus with {parentId}.
func (h *AdminStatusHandler) ResolvedStatus(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ParentID string `json:"parentId"`
	}
	if err := readBodyJSON(r, 1<<20, &body); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if body.ParentID == "" {
		writeError(w, http.StatusBadRequest, "parentId is required")
		return
	}

	err := h.statusService.ResolveStatus(r.Context(), body.ParentID)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]string{"message": "Status resolved successfully"})
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "no current status for this parentId")
	case service.IsValidation(err):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error("resolvedStatus failed", zap.String("parent_id", body.ParentID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to resolve status")
	}
}

// Export handles GET /admin/status/export, streaming the latest statuses as
// an Excel workbook for offline barangay reporting.
func (h *AdminStatusHandler) Export(w http.ResponseWriter, r *http.Request) {
	statuses, err := h.statusService.GetAllLatestStatuses(r.Context())
	if err != nil {
		h.logger.Error("export: load statuses failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load statuses")
		return
	}

	data, err := GenerateStatusExport(statuses)
	if err != nil {
		h.logger.Error("export: workbook generation failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to generate export")
		return
	}

	filename := fmt.Sprintf("statuses-%s.xlsx", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

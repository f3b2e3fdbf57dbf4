package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/assettrack/assettrack/internal/audit"
	"github.com/assettrack/assettrack/internal/middleware"
	"github.com/go-chi/chi/v5"
)

// AuditHandler serves the audit lifecycle, the scan endpoint and the report.
type AuditHandler struct {
	Engine *audit.Engine
}

// CreateAudit opens a new audit.
func (h *AuditHandler) CreateAudit(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		JSONError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	a, err := h.Engine.Create(r.Context(), input.Name, userID)
	if err != nil {
		RespondError(w, err)
		return
	}
	JSON(w, a, http.StatusCreated)
}

// ListAudits returns audits newest first. Query: page, size.
func (h *AuditHandler) ListAudits(w http.ResponseWriter, r *http.Request) {
	page, size := pageParams(r)
	audits, err := h.Engine.List(r.Context(), page, size)
	if err != nil {
		RespondError(w, err)
		return
	}
	JSON(w, audits, http.StatusOK)
}

// GetAudit returns one audit.
func (h *AuditHandler) GetAudit(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		JSONError(w, "invalid audit id", http.StatusBadRequest)
		return
	}
	a, err := h.Engine.Get(r.Context(), id)
	if err != nil {
		RespondError(w, err)
		return
	}
	JSON(w, a, http.StatusOK)
}

// ScanItem records an item scan within an audit. The endpoint is
// idempotent per (audit, item): rescanning returns the original scan.
func (h *AuditHandler) ScanItem(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		JSONError(w, "invalid audit id", http.StatusBadRequest)
		return
	}

	var input struct {
		ItemID     int    `json:"item_id"`
		ItemCode   string `json:"item_code"`
		LocationID *int   `json:"location_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	req := audit.ScanRequest{
		ItemID:     input.ItemID,
		ItemCode:   input.ItemCode,
		LocationID: input.LocationID,
	}
	if userID, ok := middleware.GetUserID(r.Context()); ok {
		req.ActorID = &userID
	}

	scan, err := h.Engine.Scan(r.Context(), id, req)
	if err != nil {
		RespondError(w, err)
		return
	}
	JSON(w, scan, http.StatusOK)
}

// CloseAudit closes an open audit. Closing twice is an error.
func (h *AuditHandler) CloseAudit(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		JSONError(w, "invalid audit id", http.StatusBadRequest)
		return
	}

	var actorID *int
	if userID, ok := middleware.GetUserID(r.Context()); ok {
		actorID = &userID
	}

	a, err := h.Engine.Close(r.Context(), id, actorID)
	if err != nil {
		RespondError(w, err)
		return
	}
	JSON(w, a, http.StatusOK)
}

// GetReport returns the reconciliation report for an audit of any status.
func (h *AuditHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		JSONError(w, "invalid audit id", http.StatusBadRequest)
		return
	}
	report, err := h.Engine.Report(r.Context(), id)
	if err != nil {
		RespondError(w, err)
		return
	}
	JSON(w, report, http.StatusOK)
}

package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/assettrack/assettrack/internal/audit"
	"github.com/assettrack/assettrack/internal/export"
	"github.com/assettrack/assettrack/internal/repo"
	"github.com/go-chi/chi/v5"
	"github.com/xuri/excelize/v2"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportHandler serves spreadsheet downloads.
type ExportHandler struct {
	Engine    *audit.Engine
	Items     *repo.ItemRepo
	Locations *repo.LocationRepo
	Log       *repo.AssignmentLog
}

// ExportItems streams the full item register as an xlsx workbook.
func (h *ExportHandler) ExportItems(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	items, err := h.Items.All(ctx)
	if err != nil {
		RespondError(w, err)
		return
	}
	current, err := h.Log.CurrentLocations(ctx)
	if err != nil {
		RespondError(w, err)
		return
	}
	history, err := h.Log.FullHistory(ctx)
	if err != nil {
		RespondError(w, err)
		return
	}

	f, err := export.Items(items, current, history)
	if err != nil {
		RespondError(w, err)
		return
	}
	name := fmt.Sprintf("items-%s.xlsx", time.Now().Format("2006-01-02"))
	writeWorkbook(w, f, name)
}

// ExportAuditReport streams one audit's reconciliation report as an xlsx
// workbook. The numbers are the same ones the JSON report endpoint serves.
func (h *ExportHandler) ExportAuditReport(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		JSONError(w, "invalid audit id", http.StatusBadRequest)
		return
	}
	ctx := r.Context()

	report, err := h.Engine.Report(ctx, id)
	if err != nil {
		RespondError(w, err)
		return
	}

	itemIDs := make([]int, 0, len(report.Scans))
	locIDs := make([]int, 0, len(report.Scans))
	for _, s := range report.Scans {
		itemIDs = append(itemIDs, s.ItemID)
		if s.LocationID != nil {
			locIDs = append(locIDs, *s.LocationID)
		}
	}
	itemNames, err := h.Items.SummariesByIDs(ctx, itemIDs)
	if err != nil {
		RespondError(w, err)
		return
	}
	locNames, err := h.Locations.NamesByIDs(ctx, locIDs)
	if err != nil {
		RespondError(w, err)
		return
	}

	f, err := export.AuditReport(report, itemNames, locNames)
	if err != nil {
		RespondError(w, err)
		return
	}
	writeWorkbook(w, f, fmt.Sprintf("audit-%d-report.xlsx", id))
}

func writeWorkbook(w http.ResponseWriter, f *excelize.File, filename string) {
	defer f.Close()
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	f.Write(w)
}

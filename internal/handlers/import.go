package handlers

import (
	"net/http"

	"github.com/assettrack/assettrack/internal/importer"
	"github.com/assettrack/assettrack/internal/repo"
)

// maxImportSize caps an uploaded workbook at 10 MiB.
const maxImportSize = 10 << 20

// ImportHandler serves the bulk item import.
type ImportHandler struct {
	Items *repo.ItemRepo
}

// ImportItems accepts a multipart upload with a "file" field holding an
// xlsx workbook and creates the items it describes. Duplicate codes are
// skipped, bad rows are reported per row, neither aborts the run.
func (h *ImportHandler) ImportItems(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxImportSize); err != nil {
		JSONError(w, "invalid multipart form", http.StatusBadRequest)
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		JSONError(w, "missing file field", http.StatusBadRequest)
		return
	}
	defer file.Close()

	res, err := importer.Items(r.Context(), h.Items, file)
	if err != nil {
		RespondError(w, err)
		return
	}
	JSON(w, res, http.StatusOK)
}

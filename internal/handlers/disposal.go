package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/assettrack/assettrack/internal/middleware"
	"github.com/assettrack/assettrack/internal/models"
	"github.com/assettrack/assettrack/internal/repo"
	"github.com/go-chi/chi/v5"
)

// DisposalHandler serves permanent item retirement.
type DisposalHandler struct {
	Disposals *repo.DisposalRepo
}

type disposalInput struct {
	Reason      string     `json:"reason"`
	DisposedAt  *time.Time `json:"disposed_at"`
	Note        string     `json:"note"`
	DocumentRef string     `json:"document_ref"`
}

func (in disposalInput) validate() map[string]string {
	fields := make(map[string]string)
	if in.Reason == "" {
		fields["reason"] = "required"
	} else if !models.ValidDisposalReason(in.Reason) {
		fields["reason"] = "must be one of liquidation, sale, donation, theft, loss, transfer"
	}
	return fields
}

func (in disposalInput) toRepo() repo.DisposalInput {
	return repo.DisposalInput{
		Reason:      in.Reason,
		DisposedAt:  in.DisposedAt,
		Note:        in.Note,
		DocumentRef: in.DocumentRef,
	}
}

// DisposeItem retires a single item. Already-disposed items return 409.
func (h *DisposalHandler) DisposeItem(w http.ResponseWriter, r *http.Request) {
	itemID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		JSONError(w, "invalid item id", http.StatusBadRequest)
		return
	}
	var input disposalInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if fields := input.validate(); len(fields) > 0 {
		JSONValidationError(w, "validation failed", fields, http.StatusBadRequest)
		return
	}

	var userID *int
	if id, ok := middleware.GetUserID(r.Context()); ok {
		userID = &id
	}

	d, err := h.Disposals.Dispose(r.Context(), itemID, input.toRepo(), userID)
	if err != nil {
		RespondError(w, err)
		return
	}
	JSON(w, d, http.StatusCreated)
}

// BulkDispose retires several items at once; unknown or already-disposed
// ids are skipped and listed in the response.
func (h *DisposalHandler) BulkDispose(w http.ResponseWriter, r *http.Request) {
	var input struct {
		ItemIDs []int `json:"item_ids"`
		disposalInput
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	fields := input.validate()
	if len(input.ItemIDs) == 0 {
		fields["item_ids"] = "required"
	}
	if len(fields) > 0 {
		JSONValidationError(w, "validation failed", fields, http.StatusBadRequest)
		return
	}

	var userID *int
	if id, ok := middleware.GetUserID(r.Context()); ok {
		userID = &id
	}

	disposed, skipped, err := h.Disposals.BulkDispose(r.Context(), input.ItemIDs, input.toRepo(), userID)
	if err != nil {
		RespondError(w, err)
		return
	}
	if disposed == nil {
		disposed = []models.Disposal{}
	}
	if skipped == nil {
		skipped = []int{}
	}
	JSON(w, map[string]any{"disposed": disposed, "skipped_ids": skipped}, http.StatusOK)
}

// ListDisposals returns disposal events newest first. Query: page, size,
// year, reason.
func (h *DisposalHandler) ListDisposals(w http.ResponseWriter, r *http.Request) {
	page, size := pageParams(r)

	var year *int
	if y := r.URL.Query().Get("year"); y != "" {
		if val, err := strconv.Atoi(y); err == nil {
			year = &val
		}
	}

	list, err := h.Disposals.List(r.Context(), page, size, year, r.URL.Query().Get("reason"))
	if err != nil {
		RespondError(w, err)
		return
	}
	JSON(w, list, http.StatusOK)
}

// GetDisposal returns one disposal event.
func (h *DisposalHandler) GetDisposal(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		JSONError(w, "invalid disposal id", http.StatusBadRequest)
		return
	}
	d, err := h.Disposals.Get(r.Context(), id)
	if err != nil {
		RespondError(w, err)
		return
	}
	JSON(w, d, http.StatusOK)
}

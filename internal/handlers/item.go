package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/assettrack/assettrack/internal/models"
	"github.com/assettrack/assettrack/internal/repo"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

// ItemHandler serves item CRUD, history and current location.
type ItemHandler struct {
	Items *repo.ItemRepo
	Log   *repo.AssignmentLog
}

type itemInput struct {
	Code              string   `json:"code" validate:"required,min=1,max=64"`
	Name              string   `json:"name" validate:"required,min=1,max=255"`
	Category          string   `json:"category" validate:"max=128"`
	Description       string   `json:"description" validate:"max=2000"`
	SerialNumber      string   `json:"serial_number" validate:"max=128"`
	PurchaseDate      *string  `json:"purchase_date"` // YYYY-MM-DD
	PurchasePrice     *float64 `json:"purchase_price"`
	ResponsiblePerson string   `json:"responsible_person" validate:"max=255"`
}

func (in itemInput) toRepo() (repo.ItemInput, error) {
	out := repo.ItemInput{
		Code:              in.Code,
		Name:              in.Name,
		Category:          in.Category,
		Description:       in.Description,
		SerialNumber:      in.SerialNumber,
		PurchasePrice:     in.PurchasePrice,
		ResponsiblePerson: in.ResponsiblePerson,
	}
	if in.PurchaseDate != nil && *in.PurchaseDate != "" {
		d, err := time.Parse("2006-01-02", *in.PurchaseDate)
		if err != nil {
			return out, err
		}
		out.PurchaseDate = &d
	}
	return out, nil
}

// CreateItem registers a new asset.
func (h *ItemHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	var input itemInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if err := validator.New().Struct(input); err != nil {
		JSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	in, err := input.toRepo()
	if err != nil {
		JSONValidationError(w, "validation failed", map[string]string{"purchase_date": "must be YYYY-MM-DD"}, http.StatusBadRequest)
		return
	}

	item, err := h.Items.Create(r.Context(), in)
	if err != nil {
		RespondError(w, err)
		return
	}
	JSON(w, item, http.StatusCreated)
}

// ListItems returns active items. Query: page, size, search, category.
func (h *ItemHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	page, size := pageParams(r)
	items, err := h.Items.List(r.Context(), page, size,
		r.URL.Query().Get("search"), r.URL.Query().Get("category"))
	if err != nil {
		RespondError(w, err)
		return
	}
	JSON(w, items, http.StatusOK)
}

// GetItem returns one item, active or not.
func (h *ItemHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		JSONError(w, "invalid item id", http.StatusBadRequest)
		return
	}
	item, err := h.Items.Get(r.Context(), id)
	if err != nil {
		RespondError(w, err)
		return
	}
	JSON(w, item, http.StatusOK)
}

// UpdateItem overwrites an item's writable fields.
func (h *ItemHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		JSONError(w, "invalid item id", http.StatusBadRequest)
		return
	}
	var input itemInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if err := validator.New().Struct(input); err != nil {
		JSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	in, err := input.toRepo()
	if err != nil {
		JSONValidationError(w, "validation failed", map[string]string{"purchase_date": "must be YYYY-MM-DD"}, http.StatusBadRequest)
		return
	}

	item, err := h.Items.Update(r.Context(), id, in)
	if err != nil {
		RespondError(w, err)
		return
	}
	JSON(w, item, http.StatusOK)
}

// DeleteItem soft-deletes an item (active = false). The row is kept for
// history, reports and disposals.
func (h *ItemHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		JSONError(w, "invalid item id", http.StatusBadRequest)
		return
	}
	if _, err := h.Items.Deactivate(r.Context(), id); err != nil {
		RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetHistory returns an item's full relocation history, oldest first.
func (h *ItemHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		JSONError(w, "invalid item id", http.StatusBadRequest)
		return
	}
	if _, err := h.Items.Get(r.Context(), id); err != nil {
		RespondError(w, err)
		return
	}
	history, err := h.Log.History(r.Context(), id)
	if err != nil {
		RespondError(w, err)
		return
	}
	if history == nil {
		history = []models.Assignment{}
	}
	JSON(w, history, http.StatusOK)
}

// GetCurrentLocation returns the item's latest assignment, or 204 when the
// item has never been assigned anywhere.
func (h *ItemHandler) GetCurrentLocation(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		JSONError(w, "invalid item id", http.StatusBadRequest)
		return
	}
	if _, err := h.Items.Get(r.Context(), id); err != nil {
		RespondError(w, err)
		return
	}
	current, err := h.Log.Current(r.Context(), id)
	if err != nil {
		RespondError(w, err)
		return
	}
	if current == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	JSON(w, current, http.StatusOK)
}

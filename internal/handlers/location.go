package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/assettrack/assettrack/internal/models"
	"github.com/assettrack/assettrack/internal/repo"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

// LocationHandler serves location CRUD and the items-at-location view.
type LocationHandler struct {
	Locations *repo.LocationRepo
}

type locationInput struct {
	Code        string `json:"code" validate:"required,min=1,max=64"`
	Name        string `json:"name" validate:"required,min=1,max=255"`
	Building    string `json:"building" validate:"max=128"`
	Floor       string `json:"floor" validate:"max=32"`
	Description string `json:"description" validate:"max=1000"`
}

func (in locationInput) toRepo() repo.LocationInput {
	return repo.LocationInput{
		Code:        in.Code,
		Name:        in.Name,
		Building:    in.Building,
		Floor:       in.Floor,
		Description: in.Description,
	}
}

func (h *LocationHandler) CreateLocation(w http.ResponseWriter, r *http.Request) {
	var input locationInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if err := validator.New().Struct(input); err != nil {
		JSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	loc, err := h.Locations.Create(r.Context(), input.toRepo())
	if err != nil {
		RespondError(w, err)
		return
	}
	JSON(w, loc, http.StatusCreated)
}

func (h *LocationHandler) ListLocations(w http.ResponseWriter, r *http.Request) {
	page, size := pageParams(r)
	locs, err := h.Locations.List(r.Context(), page, size)
	if err != nil {
		RespondError(w, err)
		return
	}
	JSON(w, locs, http.StatusOK)
}

func (h *LocationHandler) GetLocation(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		JSONError(w, "invalid location id", http.StatusBadRequest)
		return
	}
	loc, err := h.Locations.Get(r.Context(), id)
	if err != nil {
		RespondError(w, err)
		return
	}
	JSON(w, loc, http.StatusOK)
}

func (h *LocationHandler) UpdateLocation(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		JSONError(w, "invalid location id", http.StatusBadRequest)
		return
	}
	var input locationInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if err := validator.New().Struct(input); err != nil {
		JSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	loc, err := h.Locations.Update(r.Context(), id, input.toRepo())
	if err != nil {
		RespondError(w, err)
		return
	}
	JSON(w, loc, http.StatusOK)
}

func (h *LocationHandler) DeleteLocation(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		JSONError(w, "invalid location id", http.StatusBadRequest)
		return
	}
	if _, err := h.Locations.Deactivate(r.Context(), id); err != nil {
		RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetItemsAt lists the active items currently located here (by latest assignment).
func (h *LocationHandler) GetItemsAt(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		JSONError(w, "invalid location id", http.StatusBadRequest)
		return
	}
	if _, err := h.Locations.Get(r.Context(), id); err != nil {
		RespondError(w, err)
		return
	}
	items, err := h.Locations.ItemsAt(r.Context(), id)
	if err != nil {
		RespondError(w, err)
		return
	}
	if items == nil {
		items = []models.Item{}
	}
	JSON(w, items, http.StatusOK)
}

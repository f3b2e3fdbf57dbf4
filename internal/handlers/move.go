package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/assettrack/assettrack/internal/apperr"
	"github.com/assettrack/assettrack/internal/middleware"
	"github.com/assettrack/assettrack/internal/repo"
	"github.com/go-chi/chi/v5"
)

// MoveHandler appends direct relocations to the assignment log.
type MoveHandler struct {
	Items     *repo.ItemRepo
	Locations *repo.LocationRepo
	Log       *repo.AssignmentLog
}

// MoveItem relocates an item: both the item and the target location must
// exist and be active. The move is a plain append; history is never rewritten.
func (h *MoveHandler) MoveItem(w http.ResponseWriter, r *http.Request) {
	itemID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		JSONError(w, "invalid item id", http.StatusBadRequest)
		return
	}

	var input struct {
		LocationID int    `json:"location_id"`
		Note       string `json:"note"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if input.LocationID == 0 {
		JSONValidationError(w, "validation failed",
			map[string]string{"location_id": "required"}, http.StatusBadRequest)
		return
	}

	item, err := h.Items.Get(r.Context(), itemID)
	if err != nil {
		RespondError(w, err)
		return
	}
	if !item.Active {
		RespondError(w, apperr.NotFound("item %q is inactive", item.Code))
		return
	}

	loc, err := h.Locations.Get(r.Context(), input.LocationID)
	if err != nil {
		RespondError(w, err)
		return
	}
	if !loc.Active {
		RespondError(w, apperr.NotFound("location %q is inactive", loc.Code))
		return
	}

	var userID *int
	if id, ok := middleware.GetUserID(r.Context()); ok {
		userID = &id
	}

	a, err := h.Log.Append(r.Context(), item.ID, loc.ID, userID, input.Note)
	if err != nil {
		RespondError(w, err)
		return
	}
	JSON(w, a, http.StatusCreated)
}

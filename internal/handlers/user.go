package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/assettrack/assettrack/internal/models"
	"github.com/assettrack/assettrack/internal/repo"
	"github.com/go-chi/chi/v5"
)

// UserHandler serves account administration (admin only, enforced by routing).
type UserHandler struct {
	Users *repo.UserRepo
}

func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	page, size := pageParams(r)
	users, err := h.Users.List(r.Context(), page, size)
	if err != nil {
		RespondError(w, err)
		return
	}
	JSON(w, users, http.StatusOK)
}

func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		JSONError(w, "invalid user id", http.StatusBadRequest)
		return
	}
	user, err := h.Users.GetByID(r.Context(), id)
	if err != nil {
		RespondError(w, err)
		return
	}
	JSON(w, user, http.StatusOK)
}

// SetRole changes a user's role.
func (h *UserHandler) SetRole(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		JSONError(w, "invalid user id", http.StatusBadRequest)
		return
	}
	var input struct {
		Role string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if !models.ValidRole(input.Role) {
		JSONValidationError(w, "validation failed",
			map[string]string{"role": "must be user, manager or admin"}, http.StatusBadRequest)
		return
	}

	user, err := h.Users.SetRole(r.Context(), id, input.Role)
	if err != nil {
		RespondError(w, err)
		return
	}
	JSON(w, user, http.StatusOK)
}

// DeactivateUser disables an account. The row stays so historical records
// (scans, moves, disposals) keep their author.
func (h *UserHandler) DeactivateUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		JSONError(w, "invalid user id", http.StatusBadRequest)
		return
	}
	if err := h.Users.SetActive(r.Context(), id, false); err != nil {
		RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

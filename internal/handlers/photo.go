package handlers

import (
	"net/http"
	"strconv"

	"github.com/assettrack/assettrack/internal/imaging"
	"github.com/assettrack/assettrack/internal/repo"
	"github.com/go-chi/chi/v5"
)

// maxPhotoSize caps an uploaded photo at 8 MiB before normalization.
const maxPhotoSize = 8 << 20

// PhotoHandler serves item photo uploads.
type PhotoHandler struct {
	Items *repo.ItemRepo
	Store *imaging.Store
}

// UploadPhoto accepts a multipart upload with a "photo" field, normalizes
// the image and records its path on the item.
func (h *PhotoHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		JSONError(w, "invalid item id", http.StatusBadRequest)
		return
	}

	// Fail fast on missing items before reading the upload.
	if _, err := h.Items.Get(r.Context(), id); err != nil {
		RespondError(w, err)
		return
	}

	if err := r.ParseMultipartForm(maxPhotoSize); err != nil {
		JSONError(w, "invalid multipart form", http.StatusBadRequest)
		return
	}
	file, _, err := r.FormFile("photo")
	if err != nil {
		JSONError(w, "missing photo field", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := imaging.Normalize(file)
	if err != nil {
		RespondError(w, err)
		return
	}
	name, err := h.Store.Save(id, data)
	if err != nil {
		RespondError(w, err)
		return
	}

	url := "/photos/" + name
	if err := h.Items.SetPhotoURL(r.Context(), id, url); err != nil {
		RespondError(w, err)
		return
	}
	JSON(w, map[string]string{"photo_url": url}, http.StatusOK)
}

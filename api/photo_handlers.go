package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/thsvo/Ilyes-Myriam-Wedding-Album/model"
	"github.com/thsvo/Ilyes-Myriam-Wedding-Album/service"
	"github.com/thsvo/Ilyes-Myriam-Wedding-Album/storage"
)

// maxUploadSize caps a whole multipart batch.
const maxUploadSize int64 = 200 * 1024 * 1024 // 200 MB

type PhotoHandlers struct {
	Service *service.PhotoService
	Log     *zap.Logger
}

func (h *PhotoHandlers) Register(r *mux.Router) {
	r.HandleFunc("/photos", h.handleListPhotos).Methods(http.MethodGet)
	r.HandleFunc("/photos", h.handleAddExternal).Methods(http.MethodPost)
	r.HandleFunc("/photos/{id}", h.handleDeletePhoto).Methods(http.MethodDelete)
	r.HandleFunc("/uploads", h.handleUploadBatch).Methods(http.MethodPost)
	r.HandleFunc("/healthz", h.handleHealth).Methods(http.MethodGet)
}

func (h *PhotoHandlers) handleListPhotos(w http.ResponseWriter, r *http.Request) {
	section := model.Section(r.URL.Query().Get("section"))
	if section != "" && !section.Valid() {
		h.writeError(w, http.StatusBadRequest, "unknown section")
		return
	}

	photos, err := h.Service.List(r.Context(), section)
	if err != nil {
		h.Log.Error("failed to list photos", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "Failed to fetch photos")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{"photos": photos})
}

func (h *PhotoHandlers) handleAddExternal(w http.ResponseWriter, r *http.Request) {
	var photo model.Photo
	if err := json.NewDecoder(r.Body).Decode(&photo); err != nil {
		h.Log.Error("failed to decode photo body", zap.Error(err))
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if photo.Name == "" || photo.URL == "" {
		h.writeError(w, http.StatusBadRequest, "name and url are required")
		return
	}

	created, err := h.Service.AddExternal(r.Context(), photo)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrInvalidSection):
			h.writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, storage.ErrDuplicateID):
			h.writeError(w, http.StatusConflict, err.Error())
		default:
			h.Log.Error("failed to add external photo", zap.Error(err))
			h.writeError(w, http.StatusInternalServerError, "Failed to save photo")
		}
		return
	}

	h.writeJSON(w, http.StatusCreated, created)
}

func (h *PhotoHandlers) handleUploadBatch(w http.ResponseWriter, r *http.Request) {
	if r.ContentLength > maxUploadSize {
		h.Log.Warn("upload exceeds size limit", zap.Int64("content_length", r.ContentLength))
		h.writeError(w, http.StatusRequestEntityTooLarge, "Upload exceeds size limit")
		return
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		h.Log.Error("failed to parse multipart form", zap.Error(err))
		h.writeError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	section := model.Section(r.FormValue("section"))

	// Multipart file fields arrive as a map; the client numbers them
	// file-0, file-1, ... so sorting on the numeric suffix restores the
	// submission order. A plain string sort would put file-10 before
	// file-2.
	var keys []string
	for key := range r.MultipartForm.File {
		if strings.HasPrefix(key, "file-") {
			keys = append(keys, key)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		ni, iok := fileFieldIndex(keys[i])
		nj, jok := fileFieldIndex(keys[j])
		if iok && jok && ni != nj {
			return ni < nj
		}
		if iok != jok {
			return iok
		}
		return keys[i] < keys[j]
	})

	if len(keys) == 0 {
		h.writeError(w, http.StatusBadRequest, "No files uploaded")
		return
	}

	var items []service.UploadItem
	for _, key := range keys {
		for _, fileHeader := range r.MultipartForm.File[key] {
			file, err := fileHeader.Open()
			if err != nil {
				h.Log.Error("failed to open uploaded file",
					zap.String("name", fileHeader.Filename),
					zap.Error(err),
				)
				h.writeError(w, http.StatusInternalServerError, "Error opening uploaded file")
				return
			}
			defer file.Close()
			items = append(items, service.UploadItem{Name: fileHeader.Filename, Data: file})
		}
	}

	result, err := h.Service.UploadBatch(r.Context(), section, items)
	if err != nil {
		if errors.Is(err, model.ErrInvalidSection) {
			h.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.Log.Error("upload batch aborted", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "Failed to upload photos")
		return
	}

	h.writeJSON(w, http.StatusOK, result)
}

// fileFieldIndex extracts N from a "file-N" field name.
func fileFieldIndex(key string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimPrefix(key, "file-"))
	return n, err == nil
}

func (h *PhotoHandlers) handleDeletePhoto(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := h.Service.Delete(r.Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			h.writeError(w, http.StatusNotFound, "Photo not found")
			return
		}
		h.Log.Error("failed to delete photo", zap.String("id", id), zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "Failed to delete photo")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *PhotoHandlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *PhotoHandlers) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.Log.Error("failed to encode response", zap.Error(err))
	}
}

func (h *PhotoHandlers) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, map[string]string{"error": msg})
}

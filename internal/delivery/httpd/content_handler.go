package httpd

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/openclass/portal-service/internal/models"
	"github.com/openclass/portal-service/internal/service"
)

func (h *Handler) CreateLecture(w http.ResponseWriter, r *http.Request) {
	var req models.CreateLectureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}

	lecture, err := h.contentService.CreateLecture(r.Context(), &req)
	if err != nil {
		h.handleContentError(w, err)
		return
	}

	writeSuccess(w, lecture)
}

func (h *Handler) GetAllLectures(w http.ResponseWriter, r *http.Request) {
	lectures, err := h.contentService.GetAllLectures(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to get lectures")
		writeError(w, http.StatusInternalServerError, "Failed to get lectures")
		return
	}

	writeSuccess(w, lectures)
}

func (h *Handler) UpdateLecture(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "Lecture ID is required")
		return
	}

	var req models.CreateLectureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	lecture, err := h.contentService.UpdateLecture(r.Context(), id, &req)
	if err != nil {
		h.handleContentError(w, err)
		return
	}

	writeSuccess(w, lecture)
}

func (h *Handler) DeleteLecture(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "Lecture ID is required")
		return
	}

	if err := h.contentService.DeleteLecture(r.Context(), id); err != nil {
		h.handleContentError(w, err)
		return
	}

	writeSuccess(w, map[string]interface{}{
		"message": "Lecture deleted successfully",
	})
}

func (h *Handler) CreateMaterial(w http.ResponseWriter, r *http.Request) {
	var req models.CreateMaterialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}

	material, err := h.contentService.CreateMaterial(r.Context(), &req)
	if err != nil {
		h.handleContentError(w, err)
		return
	}

	writeSuccess(w, material)
}

func (h *Handler) GetAllMaterials(w http.ResponseWriter, r *http.Request) {
	materials, err := h.contentService.GetAllMaterials(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to get materials")
		writeError(w, http.StatusInternalServerError, "Failed to get materials")
		return
	}

	writeSuccess(w, materials)
}

func (h *Handler) UpdateMaterial(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "Material ID is required")
		return
	}

	var req models.CreateMaterialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	material, err := h.contentService.UpdateMaterial(r.Context(), id, &req)
	if err != nil {
		h.handleContentError(w, err)
		return
	}

	writeSuccess(w, material)
}

func (h *Handler) DeleteMaterial(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "Material ID is required")
		return
	}

	if err := h.contentService.DeleteMaterial(r.Context(), id); err != nil {
		h.handleContentError(w, err)
		return
	}

	writeSuccess(w, map[string]interface{}{
		"message": "Material deleted successfully",
	})
}

func (h *Handler) handleContentError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrLectureNotFound):
		writeError(w, http.StatusNotFound, "Lecture not found")
	case errors.Is(err, service.ErrMaterialNotFound):
		writeError(w, http.StatusNotFound, "Material not found")
	case errors.Is(err, service.ErrNameRequired):
		writeError(w, http.StatusBadRequest, "title is required")
	default:
		h.logger.Error().Err(err).Msg("Content service error")
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

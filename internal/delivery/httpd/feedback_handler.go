package httpd

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/openclass/portal-service/internal/models"
	"github.com/openclass/portal-service/internal/service"
)

func (h *Handler) CreateFeedback(w http.ResponseWriter, r *http.Request) {
	var req models.CreateFeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.LectureID == "" {
		writeError(w, http.StatusBadRequest, "lecture_id is required")
		return
	}

	if req.Text == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	// Feedback is always attributed to the calling session.
	session := sessionFromContext(r.Context())
	req.StudentEmail = session.Email

	feedback, err := h.feedbackService.CreateFeedback(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrLectureNotFound):
			writeError(w, http.StatusNotFound, "Lecture not found")
		case errors.Is(err, service.ErrNameRequired):
			writeError(w, http.StatusBadRequest, "text is required")
		default:
			h.logger.Error().Err(err).Msg("Feedback service error")
			writeError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	writeSuccess(w, feedback)
}

func (h *Handler) GetLectureFeedback(w http.ResponseWriter, r *http.Request) {
	lectureID := chi.URLParam(r, "id")
	if lectureID == "" {
		writeError(w, http.StatusBadRequest, "Lecture ID is required")
		return
	}

	feedback, err := h.feedbackService.GetLectureFeedback(r.Context(), lectureID)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to get lecture feedback")
		writeError(w, http.StatusInternalServerError, "Failed to get lecture feedback")
		return
	}

	writeSuccess(w, feedback)
}

func (h *Handler) GetAllFeedback(w http.ResponseWriter, r *http.Request) {
	limit := getIntQueryParam(r, "limit", 20)
	offset := getIntQueryParam(r, "offset", 0)

	feedback, total, err := h.feedbackService.GetAllFeedback(r.Context(), limit, offset)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to get feedback")
		writeError(w, http.StatusInternalServerError, "Failed to get feedback")
		return
	}

	writeSuccess(w, map[string]interface{}{
		"feedback": feedback,
		"total":    total,
		"limit":    limit,
		"offset":   offset,
	})
}

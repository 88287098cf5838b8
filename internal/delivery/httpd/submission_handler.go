package httpd

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/openclass/portal-service/internal/models"
	"github.com/openclass/portal-service/internal/service"
)

const maxSubmissionSize = 50 << 20 // 50 MiB

func (h *Handler) CreateSubmission(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxSubmissionSize); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	title := r.FormValue("title")
	if title == "" {
		title = header.Filename
	}

	// Students always submit as themselves; admins may submit on a
	// student's behalf.
	session := sessionFromContext(r.Context())
	email := session.Email
	if session.IsAdmin {
		if formEmail := r.FormValue("student_email"); formEmail != "" {
			email = formEmail
		}
	}

	submission, err := h.submissionService.CreateSubmission(r.Context(), email, title, header.Filename, file, header.Size)
	if err != nil {
		h.handleSubmissionError(w, err)
		return
	}

	writeSuccess(w, models.CreateSubmissionResponse{
		ID:        submission.ID,
		Status:    submission.Status,
		FileURL:   submission.FileURL,
		CreatedAt: submission.CreatedAt,
	})
}

func (h *Handler) GetAllSubmissions(w http.ResponseWriter, r *http.Request) {
	limit := getIntQueryParam(r, "limit", 20)
	offset := getIntQueryParam(r, "offset", 0)

	submissions, total, err := h.submissionService.GetAllSubmissions(r.Context(), limit, offset)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to get submissions")
		writeError(w, http.StatusInternalServerError, "Failed to get submissions")
		return
	}

	writeSuccess(w, map[string]interface{}{
		"submissions": submissions,
		"total":       total,
		"limit":       limit,
		"offset":      offset,
	})
}

func (h *Handler) GetSubmissionByID(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "Submission ID is required")
		return
	}

	submission, err := h.submissionService.GetSubmission(r.Context(), id)
	if err != nil {
		h.handleSubmissionError(w, err)
		return
	}

	session := sessionFromContext(r.Context())
	if !session.IsAdmin && session.Email != submission.StudentEmail {
		writeError(w, http.StatusForbidden, "Access denied")
		return
	}

	writeSuccess(w, submission)
}

func (h *Handler) GetStudentSubmissions(w http.ResponseWriter, r *http.Request) {
	studentID := chi.URLParam(r, "id")
	if studentID == "" {
		writeError(w, http.StatusBadRequest, "Student ID is required")
		return
	}

	student, err := h.studentService.GetStudent(r.Context(), studentID)
	if err != nil {
		h.handleStudentError(w, err)
		return
	}

	session := sessionFromContext(r.Context())
	if !session.IsAdmin && session.Email != student.Email {
		writeError(w, http.StatusForbidden, "Access denied")
		return
	}

	limit := getIntQueryParam(r, "limit", 20)
	offset := getIntQueryParam(r, "offset", 0)

	submissions, total, err := h.submissionService.GetStudentSubmissions(r.Context(), student.Email, limit, offset)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to get student submissions")
		writeError(w, http.StatusInternalServerError, "Failed to get student submissions")
		return
	}

	writeSuccess(w, map[string]interface{}{
		"submissions": submissions,
		"total":       total,
		"limit":       limit,
		"offset":      offset,
	})
}

func (h *Handler) DeleteSubmission(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "Submission ID is required")
		return
	}

	if err := h.submissionService.DeleteSubmission(r.Context(), id); err != nil {
		h.handleSubmissionError(w, err)
		return
	}

	writeSuccess(w, map[string]interface{}{
		"message": "Submission deleted successfully",
	})
}

// EvaluateSubmission re-runs the evaluation pipeline synchronously.
// The async path through the queue is the normal one; this endpoint
// covers stuck or failed submissions.
func (h *Handler) EvaluateSubmission(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "Submission ID is required")
		return
	}

	submission, err := h.submissionService.GetSubmission(r.Context(), id)
	if err != nil {
		h.handleSubmissionError(w, err)
		return
	}

	if err := h.evaluationWorker.ProcessSubmission(r.Context(), submission.ID, submission.StudentEmail, submission.FileURL); err != nil {
		h.logger.Error().Err(err).Str("submission_id", id).Msg("Manual evaluation failed")
		writeError(w, http.StatusBadGateway, "Evaluation failed")
		return
	}

	submission, err = h.submissionService.GetSubmission(r.Context(), id)
	if err != nil {
		h.handleSubmissionError(w, err)
		return
	}

	writeSuccess(w, submission)
}

func (h *Handler) handleSubmissionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrSubmissionNotFound):
		writeError(w, http.StatusNotFound, "Submission not found")
	case errors.Is(err, service.ErrStudentNotFound):
		writeError(w, http.StatusNotFound, "Student not found")
	default:
		h.logger.Error().Err(err).Msg("Submission service error")
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

package httpd

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/openclass/portal-service/internal/models"
	"github.com/openclass/portal-service/internal/service"
)

func (h *Handler) CreateStudent(w http.ResponseWriter, r *http.Request) {
	var req models.CreateStudentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	if req.Email == "" {
		writeError(w, http.StatusBadRequest, "email is required")
		return
	}

	student, err := h.studentService.CreateStudent(r.Context(), &req)
	if err != nil {
		h.handleStudentError(w, err)
		return
	}

	writeSuccess(w, student)
}

func (h *Handler) GetStudentByID(w http.ResponseWriter, r *http.Request) {
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

	writeSuccess(w, student)
}

func (h *Handler) GetAllStudents(w http.ResponseWriter, r *http.Request) {
	limit := getIntQueryParam(r, "limit", 20)
	offset := getIntQueryParam(r, "offset", 0)

	students, total, err := h.studentService.GetAllStudents(r.Context(), limit, offset)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to get students")
		writeError(w, http.StatusInternalServerError, "Failed to get students")
		return
	}

	response := map[string]interface{}{
		"students": students,
		"total":    total,
		"limit":    limit,
		"offset":   offset,
	}

	writeSuccess(w, response)
}

func (h *Handler) UpdateStudent(w http.ResponseWriter, r *http.Request) {
	studentID := chi.URLParam(r, "id")
	if studentID == "" {
		writeError(w, http.StatusBadRequest, "Student ID is required")
		return
	}

	var req models.CreateStudentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Name == "" && req.Email == "" {
		writeError(w, http.StatusBadRequest, "nothing to update")
		return
	}

	student, err := h.studentService.UpdateStudent(r.Context(), studentID, &req)
	if err != nil {
		h.handleStudentError(w, err)
		return
	}

	writeSuccess(w, student)
}

func (h *Handler) DeleteStudent(w http.ResponseWriter, r *http.Request) {
	studentID := chi.URLParam(r, "id")
	if studentID == "" {
		writeError(w, http.StatusBadRequest, "Student ID is required")
		return
	}

	if err := h.studentService.DeleteStudent(r.Context(), studentID); err != nil {
		h.handleStudentError(w, err)
		return
	}

	writeSuccess(w, map[string]interface{}{
		"message": "Student deleted successfully",
	})
}

func (h *Handler) handleStudentError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrStudentNotFound):
		writeError(w, http.StatusNotFound, "Student not found")
	case errors.Is(err, service.ErrStudentExists):
		writeError(w, http.StatusConflict, "Student with this email already exists")
	case errors.Is(err, service.ErrNameRequired):
		writeError(w, http.StatusBadRequest, "name and email are required")
	default:
		h.logger.Error().Err(err).Msg("Student service error")
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

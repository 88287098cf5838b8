package httpd

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/openclass/portal-service/internal/models"
	"github.com/openclass/portal-service/internal/service"
)

const maxImportSize = 10 << 20 // 10 MiB

func (h *Handler) GetAllRecords(w http.ResponseWriter, r *http.Request) {
	records, err := h.ledgerService.GetAllRecords(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to get ledger records")
		writeError(w, http.StatusInternalServerError, "Failed to get ledger records")
		return
	}

	writeSuccess(w, models.LedgerResponse{
		Records: records,
		Total:   len(records),
	})
}

func (h *Handler) GetRecord(w http.ResponseWriter, r *http.Request) {
	studentID := chi.URLParam(r, "studentId")
	if studentID == "" {
		writeError(w, http.StatusBadRequest, "Student ID is required")
		return
	}

	// Students may only read their own record.
	session := sessionFromContext(r.Context())
	if !session.IsAdmin && session.Email != studentID {
		writeError(w, http.StatusForbidden, "Access denied")
		return
	}

	record, err := h.ledgerService.GetRecord(r.Context(), studentID)
	if err != nil {
		h.handleLedgerError(w, err)
		return
	}

	writeSuccess(w, record)
}

func (h *Handler) AddPartialScore(w http.ResponseWriter, r *http.Request) {
	studentID := chi.URLParam(r, "studentId")
	if studentID == "" {
		writeError(w, http.StatusBadRequest, "Student ID is required")
		return
	}

	var req models.AddPartialScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	entry, err := h.ledgerService.AddPartialScore(r.Context(), studentID, req.Name, req.Score, req.Feedback)
	if err != nil {
		h.handleLedgerError(w, err)
		return
	}

	writeSuccess(w, entry)
}

func (h *Handler) DeletePartialScore(w http.ResponseWriter, r *http.Request) {
	studentID := chi.URLParam(r, "studentId")
	scoreID := chi.URLParam(r, "scoreId")
	if studentID == "" || scoreID == "" {
		writeError(w, http.StatusBadRequest, "Student ID and score ID are required")
		return
	}

	if err := h.ledgerService.DeletePartialScore(r.Context(), studentID, scoreID); err != nil {
		h.handleLedgerError(w, err)
		return
	}

	writeSuccess(w, map[string]interface{}{
		"message": "Partial score deleted successfully",
	})
}

func (h *Handler) DeletePartialScoreByName(w http.ResponseWriter, r *http.Request) {
	var req models.DeleteByNameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	count, err := h.ledgerService.DeletePartialScoreByNameFromAll(r.Context(), req.Name)
	if err != nil {
		h.handleLedgerError(w, err)
		return
	}

	writeSuccess(w, models.DeleteByNameResponse{
		Name:         req.Name,
		UpdatedCount: count,
	})
}

func (h *Handler) ImportScores(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxImportSize); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	summary, err := h.importService.ImportScores(r.Context(), file)
	if err != nil {
		if errors.Is(err, service.ErrImportHeader) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error().Err(err).Msg("Score import failed")
		writeError(w, http.StatusInternalServerError, "Score import failed")
		return
	}

	writeSuccess(w, summary)
}

func (h *Handler) handleLedgerError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrRecordNotFound):
		writeError(w, http.StatusNotFound, "Evaluation record not found")
	case errors.Is(err, service.ErrNoPartialScores):
		writeError(w, http.StatusNotFound, "Record has no partial scores")
	case errors.Is(err, service.ErrPartialScoreNotFound):
		writeError(w, http.StatusNotFound, "Partial score not found")
	case errors.Is(err, service.ErrNameRequired):
		writeError(w, http.StatusBadRequest, "name is required")
	case errors.Is(err, service.ErrStudentNotFound):
		writeError(w, http.StatusBadRequest, "Student ID is required")
	default:
		h.logger.Error().Err(err).Msg("Ledger service error")
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

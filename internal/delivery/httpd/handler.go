package httpd

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/openclass/portal-service/internal/service"
	"github.com/openclass/portal-service/internal/worker"
)

type Handler struct {
	authService       service.AuthService
	studentService    service.StudentService
	ledgerService     service.LedgerService
	importService     service.ImportService
	submissionService service.SubmissionService
	contentService    service.ContentService
	feedbackService   service.FeedbackService
	evaluationWorker  worker.EvaluationWorker
	logger            zerolog.Logger
}

func NewHandler(
	authService service.AuthService,
	studentService service.StudentService,
	ledgerService service.LedgerService,
	importService service.ImportService,
	submissionService service.SubmissionService,
	contentService service.ContentService,
	feedbackService service.FeedbackService,
	evaluationWorker worker.EvaluationWorker,
	logger zerolog.Logger,
) *Handler {
	return &Handler{
		authService:       authService,
		studentService:    studentService,
		ledgerService:     ledgerService,
		importService:     importService,
		submissionService: submissionService,
		contentService:    contentService,
		feedbackService:   feedbackService,
		evaluationWorker:  evaluationWorker,
		logger:            logger,
	}
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/health", h.HealthCheck)

	router.Route("/api/v1", func(api chi.Router) {
		api.Route("/auth", func(r chi.Router) {
			r.Post("/login", h.AdminLogin)
			r.Post("/student-login", h.StudentLogin)
			r.Post("/logout", h.Logout)
		})

		api.Group(func(r chi.Router) {
			r.Use(h.sessionAuth)

			r.Route("/students", func(r chi.Router) {
				r.With(h.adminOnly).Post("/", h.CreateStudent)
				r.With(h.adminOnly).Get("/", h.GetAllStudents)
				r.Get("/{id}", h.GetStudentByID)
				r.With(h.adminOnly).Put("/{id}", h.UpdateStudent)
				r.With(h.adminOnly).Delete("/{id}", h.DeleteStudent)
				r.Get("/{id}/submissions", h.GetStudentSubmissions)
			})

			r.Route("/ledger", func(r chi.Router) {
				r.With(h.adminOnly).Get("/", h.GetAllRecords)
				r.Get("/{studentId}", h.GetRecord)
				r.With(h.adminOnly).Post("/{studentId}/scores", h.AddPartialScore)
				r.With(h.adminOnly).Delete("/{studentId}/scores/{scoreId}", h.DeletePartialScore)
				r.With(h.adminOnly).Delete("/scores", h.DeletePartialScoreByName)
				r.With(h.adminOnly).Post("/import", h.ImportScores)
			})

			r.Route("/submissions", func(r chi.Router) {
				r.Post("/", h.CreateSubmission)
				r.With(h.adminOnly).Get("/", h.GetAllSubmissions)
				r.Get("/{id}", h.GetSubmissionByID)
				r.With(h.adminOnly).Delete("/{id}", h.DeleteSubmission)
				r.With(h.adminOnly).Post("/{id}/evaluate", h.EvaluateSubmission)
			})

			r.Route("/lectures", func(r chi.Router) {
				r.Get("/", h.GetAllLectures)
				r.With(h.adminOnly).Post("/", h.CreateLecture)
				r.With(h.adminOnly).Put("/{id}", h.UpdateLecture)
				r.With(h.adminOnly).Delete("/{id}", h.DeleteLecture)
				r.Get("/{id}/feedback", h.GetLectureFeedback)
			})

			r.Route("/materials", func(r chi.Router) {
				r.Get("/", h.GetAllMaterials)
				r.With(h.adminOnly).Post("/", h.CreateMaterial)
				r.With(h.adminOnly).Put("/{id}", h.UpdateMaterial)
				r.With(h.adminOnly).Delete("/{id}", h.DeleteMaterial)
			})

			r.Route("/feedback", func(r chi.Router) {
				r.Post("/", h.CreateFeedback)
				r.With(h.adminOnly).Get("/", h.GetAllFeedback)
			})

			r.With(h.adminOnly).Get("/workers/stats", h.GetWorkerStats)
		})
	})
}

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":    "healthy",
		"service":   "portal-service",
		"timestamp": time.Now().UTC(),
	}

	writeJSON(w, http.StatusOK, response)
}

func (h *Handler) GetWorkerStats(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, h.evaluationWorker.GetStats())
}

func getIntQueryParam(r *http.Request, key string, defaultValue int) int {
	value := r.URL.Query().Get(key)
	if value == "" {
		return defaultValue
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return intValue
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]interface{}{
		"error":   http.StatusText(status),
		"message": message,
	})
}

func writeSuccess(w http.ResponseWriter, data interface{}) {
	response := map[string]interface{}{
		"success": true,
		"data":    data,
	}
	writeJSON(w, http.StatusOK, response)
}

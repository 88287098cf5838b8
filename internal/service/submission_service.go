package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/openclass/portal-service/internal/models"
	"github.com/openclass/portal-service/internal/repository"
	"github.com/openclass/portal-service/internal/service/storage"
)

type SubmissionService interface {
	CreateSubmission(ctx context.Context, studentEmail, title, fileName string, file io.Reader, size int64) (*models.Submission, error)
	GetSubmission(ctx context.Context, id string) (*models.Submission, error)
	GetStudentSubmissions(ctx context.Context, email string, limit, offset int) ([]models.Submission, int, error)
	GetAllSubmissions(ctx context.Context, limit, offset int) ([]models.Submission, int, error)
	UpdateStatus(ctx context.Context, id, status string) error
	DeleteSubmission(ctx context.Context, id string) error
}

type submissionService struct {
	submissionRepo repository.SubmissionRepository
	studentRepo    repository.StudentRepository
	storage        storage.Storage
	publisher      repository.RabbitMQRepository
	exchange       string
	routingKey     string
	logger         zerolog.Logger
}

func NewSubmissionService(
	submissionRepo repository.SubmissionRepository,
	studentRepo repository.StudentRepository,
	store storage.Storage,
	publisher repository.RabbitMQRepository,
	exchange, routingKey string,
	logger zerolog.Logger,
) SubmissionService {
	return &submissionService{
		submissionRepo: submissionRepo,
		studentRepo:    studentRepo,
		storage:        store,
		publisher:      publisher,
		exchange:       exchange,
		routingKey:     routingKey,
		logger:         logger,
	}
}

// CreateSubmission stores the uploaded file, records the submission as
// pending and publishes the event that triggers its evaluation. A
// failed publish leaves the submission pending; the admin resubmit
// path covers that case.
func (s *submissionService) CreateSubmission(ctx context.Context, studentEmail, title, fileName string, file io.Reader, size int64) (*models.Submission, error) {
	studentEmail = strings.TrimSpace(strings.ToLower(studentEmail))

	student, err := s.studentRepo.GetByEmail(ctx, studentEmail)
	if err != nil {
		return nil, fmt.Errorf("failed to get student: %w", err)
	}
	if student == nil {
		return nil, ErrStudentNotFound
	}

	id := uuid.New().String()
	key := fmt.Sprintf("submissions/%s/%s%s", studentEmail, id, filepath.Ext(fileName))
	if err := s.storage.Upload(ctx, key, file, size, "application/octet-stream"); err != nil {
		return nil, fmt.Errorf("failed to upload submission file: %w", err)
	}

	now := time.Now()
	submission := &models.Submission{
		ID:           id,
		StudentEmail: studentEmail,
		Title:        strings.TrimSpace(title),
		FileKey:      key,
		FileURL:      s.storage.GetURL(key),
		Status:       models.SubmissionStatusPending.String(),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.submissionRepo.Create(ctx, submission); err != nil {
		return nil, fmt.Errorf("failed to create submission: %w", err)
	}

	if err := s.publishCreated(ctx, submission); err != nil {
		s.logger.Error().Err(err).
			Str("submission_id", submission.ID).
			Msg("Failed to publish submission event, submission stays pending")
	}

	s.logger.Info().
		Str("submission_id", submission.ID).
		Str("student_email", studentEmail).
		Msg("Submission created")

	return submission, nil
}

func (s *submissionService) publishCreated(ctx context.Context, submission *models.Submission) error {
	event := models.SubmissionCreatedEvent{
		SubmissionID: submission.ID,
		StudentEmail: submission.StudentEmail,
		FileURL:      submission.FileURL,
		Timestamp:    time.Now().Unix(),
	}
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	return s.publisher.Publish(ctx, s.exchange, s.routingKey, body)
}

func (s *submissionService) GetSubmission(ctx context.Context, id string) (*models.Submission, error) {
	submission, err := s.submissionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}
	if submission == nil {
		return nil, ErrSubmissionNotFound
	}
	return submission, nil
}

func (s *submissionService) GetStudentSubmissions(ctx context.Context, email string, limit, offset int) ([]models.Submission, int, error) {
	return s.submissionRepo.GetByStudentEmail(ctx, strings.TrimSpace(strings.ToLower(email)), limit, offset)
}

func (s *submissionService) GetAllSubmissions(ctx context.Context, limit, offset int) ([]models.Submission, int, error) {
	return s.submissionRepo.GetAll(ctx, limit, offset)
}

func (s *submissionService) UpdateStatus(ctx context.Context, id, status string) error {
	if !models.IsValidSubmissionStatus(status) {
		return fmt.Errorf("invalid submission status %q", status)
	}
	if err := s.submissionRepo.UpdateStatus(ctx, id, status); err != nil {
		return fmt.Errorf("failed to update submission status: %w", err)
	}
	return nil
}

// DeleteSubmission removes the database row and then the stored file.
// A failed file delete is logged, not surfaced; the row is already
// gone and the object is unreachable.
func (s *submissionService) DeleteSubmission(ctx context.Context, id string) error {
	submission, err := s.submissionRepo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get submission: %w", err)
	}
	if submission == nil {
		return ErrSubmissionNotFound
	}

	if err := s.submissionRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete submission: %w", err)
	}

	if err := s.storage.Delete(ctx, submission.FileKey); err != nil {
		s.logger.Warn().Err(err).
			Str("submission_id", id).
			Str("file_key", submission.FileKey).
			Msg("Failed to delete submission file")
	}

	return nil
}
